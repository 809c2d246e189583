package transport

import (
	"github.com/ValentinKolb/infostress/rpc/common"
	"github.com/cockroachdb/errors"
)

var (
	// ErrPayloadTooLarge is returned when a frame exceeds common.MaxPayload
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrClosed is returned when using a transport that is not connected
	ErrClosed = errors.New("transport is closed")
)

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IFrameTransport is the interface for the client side frame transport.
// It carries whole frames: every Send produces exactly one frame on the
// server side and every Recv returns exactly one frame sent by the server.
type IFrameTransport interface {
	// Connect opens the connection described by the configuration
	Connect(config common.ClientConfig) error
	// Send writes a single frame to the server
	Send(f common.Frame) error
	// Recv blocks until the next frame from the server has been received
	Recv() (common.Frame, error)
	// Close closes the transport connection
	Close() error
}
