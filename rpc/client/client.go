package client

import (
	"bytes"

	"github.com/ValentinKolb/infostress/rpc/common"
	"github.com/ValentinKolb/infostress/rpc/transport"
	"github.com/cockroachdb/errors"
)

// InfoClient speaks the infod protocol over a single frame transport.
// It is not safe for concurrent use: every call sends its commands and
// consumes exactly the responses belonging to them before returning.
type InfoClient struct {
	config    common.ClientConfig
	transport transport.IFrameTransport
}

// NewInfoClient connects the transport and returns a client using it
func NewInfoClient(config common.ClientConfig, transport transport.IFrameTransport) (*InfoClient, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}
	return &InfoClient{
		config:    config,
		transport: transport,
	}, nil
}

// --------------------------------------------------------------------------
// Point operations
// --------------------------------------------------------------------------

// Read returns the value stored for key.
// ok is false if the key does not exist, which is different from an empty value.
func (c *InfoClient) Read(key string) (value []byte, ok bool, err error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	if err := c.send(common.CmdRead, common.EncodeKey(key)); err != nil {
		return nil, false, err
	}

	resp, err := c.transport.Recv()
	if err != nil {
		return nil, false, err
	}
	if err := expectCode("read", resp, common.MsgInfo); err != nil {
		return nil, false, err
	}

	// The answer must echo the key, then end or continue with NUL and the value
	keyLen := len(key)
	if len(resp.Payload) < keyLen || !bytes.Equal(resp.Payload[:keyLen], []byte(key)) {
		return nil, false, protocolErrorf("read %s: answer is for another key: %s",
			common.Abbrev([]byte(key), 32), resp)
	}
	if len(resp.Payload) == keyLen {
		return nil, false, nil
	}
	if resp.Payload[keyLen] != 0 {
		return nil, false, protocolErrorf("read %s: missing separator after key: %s",
			common.Abbrev([]byte(key), 32), resp)
	}
	return resp.Payload[keyLen+1:], true, nil
}

// Write stores value under key. The server does not answer writes, use Ping
// to wait until the write has been applied.
func (c *InfoClient) Write(key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return c.send(common.CmdWrite, common.EncodeKeyValue(key, value))
}

// Delete removes key. A WRITE without a value is a delete on the wire.
// Deleting a missing key is not an error. Use Ping to wait for completion.
func (c *InfoClient) Delete(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return c.send(common.CmdWrite, common.EncodeKey(key))
}

// Ping sends a PING and blocks until the PONG arrives. All commands sent
// before have been processed by the server once Ping returns.
func (c *InfoClient) Ping() error {
	if err := c.send(common.CmdPing, nil); err != nil {
		return err
	}
	resp, err := c.transport.Recv()
	if err != nil {
		return err
	}
	if err := expectCode("ping", resp, common.MsgPong); err != nil {
		return err
	}
	if len(resp.Payload) != 0 {
		return protocolErrorf("ping: pong carries unexpected payload: %s", resp)
	}
	return nil
}

// Hello asks the server for its version string
func (c *InfoClient) Hello() (string, error) {
	if err := c.send(common.CmdHello, []byte{0}); err != nil {
		return "", err
	}
	resp, err := c.transport.Recv()
	if err != nil {
		return "", err
	}
	if err := expectCode("hello", resp, common.MsgVersion); err != nil {
		return "", err
	}
	if len(resp.Payload) < 1 {
		return "", protocolErrorf("hello: version message without id: %s", resp)
	}
	return string(resp.Payload[1:]), nil
}

// --------------------------------------------------------------------------
// Bulk operation
// --------------------------------------------------------------------------

// All returns every live key and value of the store.
//
// Inside a BEGIN/COMMIT bracket it subscribes to all keys, which makes the
// server send one INFO per existing key, cancels the subscription again and
// sends a PING as end marker. The server executes the bracket as a unit, so
// the INFO burst before the PONG is a consistent snapshot.
func (c *InfoClient) All() ([]common.KeyValue, error) {
	requests := []common.Frame{
		common.NewFrame(common.CmdBegin, nil),
		common.NewFrame(common.CmdSub, []byte(common.PatternAll)),
		common.NewFrame(common.CmdUnsub, []byte(common.PatternAll)),
		common.NewFrame(common.CmdPing, nil),
		common.NewFrame(common.CmdCommit, nil),
	}
	for _, f := range requests {
		if err := c.transport.Send(f); err != nil {
			return nil, err
		}
	}

	var accum []common.KeyValue
	for {
		resp, err := c.transport.Recv()
		if err != nil {
			return nil, errors.Wrapf(err, "all: after %d entries", len(accum))
		}
		if resp.Code == common.MsgPong {
			break
		}
		if err := expectCode("all", resp, common.MsgInfo); err != nil {
			return nil, err
		}
		key, value, ok := common.SplitKeyValue(resp.Payload)
		if !ok {
			return nil, protocolErrorf("all: snapshot entry without value: %s", resp)
		}
		accum = append(accum, common.KeyValue{Key: key, Value: value})
	}

	Logger.Debugf("all: received %d entries", len(accum))
	return accum, nil
}

// --------------------------------------------------------------------------
// Subscription
// --------------------------------------------------------------------------

// Subscribe subscribes to pattern ('*' matches any run of bytes) and calls fn
// for every INFO the server sends: first one per existing matching key, then
// one per change. ok is false for a deleted key.
// Subscribe blocks until fn or the transport returns an error; the client
// cannot be used for anything else meanwhile.
func (c *InfoClient) Subscribe(pattern string, fn func(key string, value []byte, ok bool) error) error {
	if err := checkKey(pattern); err != nil {
		return err
	}
	if err := c.send(common.CmdSub, []byte(pattern)); err != nil {
		return err
	}

	for {
		resp, err := c.transport.Recv()
		if err != nil {
			return err
		}
		if err := expectCode("sub", resp, common.MsgInfo); err != nil {
			return err
		}
		key, value, ok := common.SplitKeyValue(resp.Payload)
		if err := fn(key, value, ok); err != nil {
			return err
		}
	}
}

// Close closes the underlying transport
func (c *InfoClient) Close() error {
	return c.transport.Close()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func (c *InfoClient) send(code common.Code, payload []byte) error {
	return c.transport.Send(common.NewFrame(code, payload))
}
