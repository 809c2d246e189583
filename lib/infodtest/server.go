package infodtest

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"os"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ValentinKolb/infostress/rpc/common"
	"github.com/ValentinKolb/infostress/rpc/transport/base"
	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("infodtest")

const (
	maxSubscriptions    = 16
	maxBufferedCommands = 32

	// Version is reported in reply to HELLO
	Version = "infodtest"
)

var serverCounter atomic.Uint64

// Faults lets tests make the server misbehave. All hooks are optional.
type Faults struct {
	// DropWrite makes the server ignore a write or delete of key
	DropWrite func(key string) bool
	// CorruptValue may replace the value stored by a write
	CorruptValue func(key string, value []byte) []byte
	// DuplicateSnapshot makes subscriptions report the first matching key twice
	DuplicateSnapshot bool
	// Reject makes the server answer a command with an ERROR instead of executing it
	Reject func(code common.Code) bool
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

type framing struct {
	write func(net.Conn, common.Frame) error
	read  func(net.Conn, []byte) (common.Frame, error)
}

// serverConn is one client connection
type serverConn struct {
	id       uint64
	conn     net.Conn
	subs     map[string]struct{}
	begins   int
	buffered []common.Frame
}

// Server is an in-memory server speaking the infod protocol, for tests.
// Commands of all connections are executed one at a time, so a BEGIN/COMMIT
// bracket is replayed without interleaving with other clients.
type Server struct {
	listener net.Listener
	network  string
	framing  framing
	store    *xsync.MapOf[string, []byte]
	conns    *xsync.MapOf[uint64, *serverConn]
	nextID   atomic.Uint64

	mu     sync.Mutex // serializes command execution
	faults Faults

	wg     sync.WaitGroup
	closed atomic.Bool
}

// -----------------------------------------------------------
// Factory Methods
// -----------------------------------------------------------

// StartUnix starts a server on a fresh abstract unix packet socket
func StartUnix() (*Server, error) {
	name := fmt.Sprintf("@infodtest-%d-%d", os.Getpid(), serverCounter.Add(1))
	return Start("unixpacket", name)
}

// StartTCP starts a server on a random local TCP port
func StartTCP() (*Server, error) {
	return Start("tcp", "127.0.0.1:0")
}

// Start starts a server listening on the given network ("unixpacket" or "tcp")
func Start(network, address string) (*Server, error) {
	var f framing
	switch network {
	case "unixpacket":
		f = framing{write: base.WritePacket, read: base.ReadPacket}
	case "tcp":
		f = framing{write: base.WriteStream, read: base.ReadStream}
	default:
		return nil, errors.Newf("unsupported network %s", network)
	}

	listener, err := net.Listen(network, address)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to listen on %s", address)
	}

	s := &Server{
		listener: listener,
		network:  network,
		framing:  f,
		store:    xsync.NewMapOf[string, []byte](),
		conns:    xsync.NewMapOf[uint64, *serverConn](),
	}

	Logger.Infof("Starting %s test server on %s", network, s.Endpoint())

	s.wg.Add(1)
	go s.acceptLoop()
	return s, nil
}

// --------------------------------------------------------------------------
// Public Methods
// --------------------------------------------------------------------------

// Endpoint returns the address clients connect to
func (s *Server) Endpoint() string {
	return s.listener.Addr().String()
}

// Network returns the network the server listens on
func (s *Server) Network() string {
	return s.network
}

// SetFaults replaces the fault hooks
func (s *Server) SetFaults(f Faults) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = f
}

// Put stores a value directly, bypassing the protocol
func (s *Server) Put(key string, value []byte) {
	s.store.Store(key, append([]byte(nil), value...))
}

// Snapshot returns a copy of the stored data
func (s *Server) Snapshot() map[string][]byte {
	data := make(map[string][]byte, s.store.Size())
	s.store.Range(func(k string, v []byte) bool {
		data[k] = append([]byte(nil), v...)
		return true
	})
	return data
}

// Len returns the number of stored keys
func (s *Server) Len() int {
	return s.store.Size()
}

// Close stops the server and closes all connections
func (s *Server) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	err := s.listener.Close()
	s.conns.Range(func(_ uint64, c *serverConn) bool {
		c.conn.Close()
		return true
	})
	s.wg.Wait()
	return err
}

// --------------------------------------------------------------------------
// Connection Handling
// --------------------------------------------------------------------------

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return
			}
			Logger.Errorf("Accept error: %v", err)
			continue
		}

		c := &serverConn{
			id:   s.nextID.Add(1),
			conn: conn,
			subs: make(map[string]struct{}),
		}
		s.conns.Store(c.id, c)
		if s.closed.Load() {
			// Close may have missed this connection
			conn.Close()
		}

		s.wg.Add(1)
		go s.handleConnection(c)
	}
}

// handleConnection reads frames of one connection until it is closed
func (s *Server) handleConnection(c *serverConn) {
	defer s.wg.Done()
	defer func() {
		s.conns.Delete(c.id)
		c.conn.Close()
	}()

	buf := make([]byte, base.PacketBufferSize)
	for {
		f, err := s.framing.read(c.conn, buf)
		if err == io.EOF {
			Logger.Debugf("Connection %d closed by client", c.id)
			return
		}
		if err != nil {
			if !s.closed.Load() {
				Logger.Errorf("Error reading from connection %d: %v", c.id, err)
			}
			return
		}

		// buffered commands outlive the read buffer
		f.Payload = append([]byte(nil), f.Payload...)

		s.mu.Lock()
		err = s.dispatch(c, f)
		s.mu.Unlock()
		if err != nil {
			Logger.Errorf("Error writing to connection %d: %v", c.id, err)
			return
		}
	}
}

// --------------------------------------------------------------------------
// Command Execution (called with s.mu held)
// --------------------------------------------------------------------------

func (s *Server) dispatch(c *serverConn, f common.Frame) error {
	if c.begins > 0 {
		return s.bufferCommand(c, f)
	}
	if s.faults.Reject != nil && s.faults.Reject(f.Code) {
		return s.sendError(c, fmt.Sprintf("%s: rejected", f.Code))
	}

	switch f.Code {
	case common.CmdHello:
		return s.send(c, common.MsgVersion, append([]byte{0}, Version...))

	case common.CmdSub:
		if len(c.subs) >= maxSubscriptions {
			return s.sendError(c, "sub: too many subscriptions")
		}
		if len(f.Payload) == 0 || bytes.IndexByte(f.Payload, 0) >= 0 {
			return s.sendError(c, "sub: invalid pattern")
		}
		pattern := string(f.Payload)
		c.subs[pattern] = struct{}{}

		var keys []string
		s.store.Range(func(k string, _ []byte) bool {
			if match(pattern, k) {
				keys = append(keys, k)
			}
			return true
		})
		sort.Strings(keys)
		if s.faults.DuplicateSnapshot && len(keys) > 0 {
			keys = append(keys, keys[0])
		}
		for _, k := range keys {
			v, ok := s.store.Load(k)
			if !ok {
				continue
			}
			if err := s.send(c, common.MsgInfo, common.EncodeKeyValue(k, v)); err != nil {
				return err
			}
		}
		return nil

	case common.CmdUnsub:
		delete(c.subs, string(f.Payload))
		return nil

	case common.CmdRead:
		if bytes.IndexByte(f.Payload, 0) >= 0 {
			return s.sendError(c, "get: invalid key")
		}
		key := string(f.Payload)
		v, ok := s.store.Load(key)
		if !ok {
			return s.send(c, common.MsgInfo, common.EncodeKey(key))
		}
		return s.send(c, common.MsgInfo, common.EncodeKeyValue(key, v))

	case common.CmdWrite:
		return s.write(f.Payload)

	case common.CmdPing:
		return s.send(c, common.MsgPong, f.Payload)

	case common.CmdBegin:
		c.begins = 1
		c.buffered = nil
		return nil

	case common.CmdCommit:
		return s.sendError(c, "commit: no begin")

	default:
		return s.sendError(c, "bad message")
	}
}

// bufferCommand queues a command received inside BEGIN. The balancing
// COMMIT replays the queue.
func (s *Server) bufferCommand(c *serverConn, f common.Frame) error {
	switch f.Code {
	case common.CmdBegin:
		c.begins++
		return nil
	case common.CmdCommit:
		c.begins--
		if c.begins > 0 {
			return nil
		}
		cmds := c.buffered
		c.buffered = nil
		for _, cmd := range cmds {
			if err := s.dispatch(c, cmd); err != nil {
				return err
			}
		}
		return nil
	}

	if len(c.buffered) >= maxBufferedCommands {
		return s.sendError(c, "commit buffer overflow")
	}
	c.buffered = append(c.buffered, f)
	return nil
}

// write stores or deletes a key and notifies the subscribers
func (s *Server) write(payload []byte) error {
	key, value, hasValue := common.SplitKeyValue(payload)

	if s.faults.DropWrite != nil && s.faults.DropWrite(key) {
		return nil
	}

	if !hasValue {
		if _, ok := s.store.LoadAndDelete(key); !ok {
			return nil // already deleted
		}
	} else {
		if s.faults.CorruptValue != nil {
			value = s.faults.CorruptValue(key, value)
			payload = common.EncodeKeyValue(key, value)
		}
		if old, ok := s.store.Load(key); ok && bytes.Equal(old, value) {
			return nil // no change
		}
		s.store.Store(key, value)
	}

	s.conns.Range(func(_ uint64, c *serverConn) bool {
		for pattern := range c.subs {
			if match(pattern, key) {
				if err := s.send(c, common.MsgInfo, payload); err != nil {
					Logger.Warningf("Failed to notify connection %d: %v", c.id, err)
				}
				break
			}
		}
		return true
	})
	return nil
}

func (s *Server) send(c *serverConn, code common.Code, payload []byte) error {
	return s.framing.write(c.conn, common.NewFrame(code, payload))
}

func (s *Server) sendError(c *serverConn, msg string) error {
	return s.send(c, common.MsgError, []byte(msg))
}
