package tcp

import (
	"net"
	"time"

	"github.com/ValentinKolb/infostress/rpc/common"
	"github.com/ValentinKolb/infostress/rpc/transport"
	"github.com/ValentinKolb/infostress/rpc/transport/base"
)

const (
	// DefaultPort is the infod TCP port ('i3')
	DefaultPort = "26931"

	// DefaultEndpoint is used when the configuration names no endpoint
	DefaultEndpoint = "localhost:" + DefaultPort
)

// clientConnector implements the IClientConnector interface for TCP sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "tcp"
}

func (c *clientConnector) DefaultEndpoint() string {
	return DefaultEndpoint
}

func (c *clientConnector) Connect(endpoint string) (net.Conn, error) {
	// Allow a bare host, infod always listens on the same port
	if _, _, err := net.SplitHostPort(endpoint); err != nil {
		endpoint = net.JoinHostPort(endpoint, DefaultPort)
	}
	return net.Dial("tcp", endpoint)
}

// UpgradeConnection applies TCP options from TCPConf and SocketConf
func (c *clientConnector) UpgradeConnection(conn net.Conn, config common.ClientConfig) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil // Not a TCP connection, nothing to upgrade
	}

	// Disable Nagle's algorithm (TCPNoDelay) if configured
	if err := tcpConn.SetNoDelay(config.Transport.TCPNoDelay); err != nil {
		return err
	}

	if config.Transport.WriteBufferSize > 0 {
		if err := tcpConn.SetWriteBuffer(config.Transport.WriteBufferSize); err != nil {
			return err
		}
	}

	if config.Transport.ReadBufferSize > 0 {
		if err := tcpConn.SetReadBuffer(config.Transport.ReadBufferSize); err != nil {
			return err
		}
	}

	if config.Transport.TCPKeepAliveSec > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return err
		}
		keepAlivePeriod := time.Duration(config.Transport.TCPKeepAliveSec) * time.Second
		if err := tcpConn.SetKeepAlivePeriod(keepAlivePeriod); err != nil {
			return err
		}
	}

	if config.Transport.TCPLingerSec > 0 {
		if err := tcpConn.SetLinger(config.Transport.TCPLingerSec); err != nil {
			return err
		}
	}

	return nil
}

func (c *clientConnector) WriteFrame(conn net.Conn, f common.Frame) error {
	return base.WriteStream(conn, f)
}

func (c *clientConnector) ReadFrame(conn net.Conn, buf []byte) (common.Frame, error) {
	return base.ReadStream(conn, buf)
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewTCPClientTransport creates a new TCP client transport
func NewTCPClientTransport() transport.IFrameTransport {
	return base.NewBaseFrameTransport(&clientConnector{})
}
