package unix

import (
	"net"
	"os"
	"strings"

	"github.com/ValentinKolb/infostress/rpc/common"
	"github.com/ValentinKolb/infostress/rpc/transport"
	"github.com/ValentinKolb/infostress/rpc/transport/base"
)

const (
	// DefaultEndpoint is the abstract socket name infod listens on
	DefaultEndpoint = "@INFOD"

	// EnvSocket overrides the default endpoint, like it does for infod itself
	EnvSocket = "INFOD_SOCKET"

	network = "unixpacket"
)

// clientConnector implements the IClientConnector interface for Unix packet sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "unix"
}

func (c *clientConnector) DefaultEndpoint() string {
	if env := os.Getenv(EnvSocket); env != "" {
		return NormalizeEndpoint(env)
	}
	return DefaultEndpoint
}

func (c *clientConnector) Connect(endpoint string) (net.Conn, error) {
	return net.Dial(network, NormalizeEndpoint(endpoint))
}

func (c *clientConnector) UpgradeConnection(conn net.Conn, config common.ClientConfig) error {
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return nil
	}

	if config.Transport.WriteBufferSize > 0 {
		if err := unixConn.SetWriteBuffer(config.Transport.WriteBufferSize); err != nil {
			return err
		}
	}

	if config.Transport.ReadBufferSize > 0 {
		if err := unixConn.SetReadBuffer(config.Transport.ReadBufferSize); err != nil {
			return err
		}
	}
	return nil
}

func (c *clientConnector) WriteFrame(conn net.Conn, f common.Frame) error {
	return base.WritePacket(conn, f)
}

func (c *clientConnector) ReadFrame(conn net.Conn, buf []byte) (common.Frame, error) {
	return base.ReadPacket(conn, buf)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// NormalizeEndpoint maps the C convention for abstract socket names
// (a leading NUL byte) to the Go convention (a leading '@').
func NormalizeEndpoint(endpoint string) string {
	if strings.HasPrefix(endpoint, "\x00") {
		return "@" + endpoint[1:]
	}
	return endpoint
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewUnixClientTransport creates a new Unix packet socket transport
func NewUnixClientTransport() transport.IFrameTransport {
	return base.NewBaseFrameTransport(&clientConnector{})
}
