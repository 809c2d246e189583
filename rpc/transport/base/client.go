package base

import (
	"net"
	"time"

	"github.com/ValentinKolb/infostress/rpc/common"
	"github.com/ValentinKolb/infostress/rpc/transport"
	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint
	Connect(endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// DefaultEndpoint returns the endpoint used when the configuration names none
	DefaultEndpoint() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error

	// WriteFrame writes one frame using the transport's framing
	WriteFrame(conn net.Conn, f common.Frame) error

	// ReadFrame reads one frame using the transport's framing.
	// The returned payload may alias buf.
	ReadFrame(conn net.Conn, buf []byte) (common.Frame, error)
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// frameTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp).
// It owns exactly one connection and is not safe for concurrent use.
type frameTransport struct {
	connector IClientConnector
	config    common.ClientConfig
	endpoint  string
	conn      net.Conn
	readBuf   []byte
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix)
// -----------------------------------------------------------

// NewBaseFrameTransport creates a new base frame transport with the specified connector
func NewBaseFrameTransport(connector IClientConnector) transport.IFrameTransport {
	return &frameTransport{
		connector: connector,
		readBuf:   make([]byte, PacketBufferSize),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IFrameTransport)
// --------------------------------------------------------------------------

func (t *frameTransport) Connect(config common.ClientConfig) error {
	// Close an existing connection
	if t.conn != nil {
		_ = t.Close()
	}

	t.config = config
	t.endpoint = config.Transport.Endpoint
	if t.endpoint == "" {
		t.endpoint = t.connector.DefaultEndpoint()
	}

	conn, err := t.connector.Connect(t.endpoint)
	if err != nil {
		return errors.Wrapf(err, "failed to connect to %s", t.endpoint)
	}

	// Upgrade the connection with protocol-specific settings
	if err := t.connector.UpgradeConnection(conn, config); err != nil {
		conn.Close()
		return errors.Wrapf(err, "failed to upgrade connection to %s", t.endpoint)
	}

	t.conn = conn
	Logger.Infof("Connected to %s using %s transport", t.endpoint, t.connector.GetName())
	return nil
}

func (t *frameTransport) Send(f common.Frame) error {
	if t.conn == nil {
		return transport.ErrClosed
	}

	if t.config.TimeoutSecond > 0 {
		timeout := time.Duration(t.config.TimeoutSecond) * time.Second
		if err := t.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}

	if err := t.connector.WriteFrame(t.conn, f); err != nil {
		return errors.Wrapf(err, "sending %s to %s", f.Code, t.endpoint)
	}
	Logger.Debugf("sent %s", f)
	return nil
}

func (t *frameTransport) Recv() (common.Frame, error) {
	if t.conn == nil {
		return common.Frame{}, transport.ErrClosed
	}

	if t.config.TimeoutSecond > 0 {
		timeout := time.Duration(t.config.TimeoutSecond) * time.Second
		if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return common.Frame{}, err
		}
	}

	f, err := t.connector.ReadFrame(t.conn, t.readBuf)
	if err != nil {
		return common.Frame{}, errors.Wrapf(err, "receiving from %s", t.endpoint)
	}
	Logger.Debugf("received %s", f)

	// The read buffer is reused, hand out a private copy
	f.Payload = append([]byte(nil), f.Payload...)
	return f, nil
}

func (t *frameTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}
