package base

import (
	"encoding/binary"
	"io"
	"net"

	"github.com/ValentinKolb/infostress/rpc/common"
	"github.com/ValentinKolb/infostress/rpc/transport"
	"github.com/cockroachdb/errors"
)

const (
	// PacketBufferSize is large enough for the biggest packet plus one byte,
	// so an oversized packet is detected instead of silently truncated.
	PacketBufferSize = 1 + common.MaxPayload + 1

	streamHeaderSize = 3
)

// --------------------------------------------------------------------------
// Packet framing (SOCK_SEQPACKET): the socket preserves message boundaries
// --------------------------------------------------------------------------

// WritePacket writes a frame as a single packet with the format:
// - 1 byte: code
// - N bytes: payload
func WritePacket(conn net.Conn, f common.Frame) error {
	if len(f.Payload) > common.MaxPayload {
		return errors.Wrapf(transport.ErrPayloadTooLarge, "%s frame with %d bytes", f.Code, len(f.Payload))
	}
	buf := make([]byte, 0, 1+len(f.Payload))
	buf = append(buf, byte(f.Code))
	buf = append(buf, f.Payload...)
	_, err := conn.Write(buf)
	return err
}

// ReadPacket reads one packet into buf and returns the frame it contains.
// The returned payload aliases buf.
func ReadPacket(conn net.Conn, buf []byte) (common.Frame, error) {
	if len(buf) < PacketBufferSize {
		buf = make([]byte, PacketBufferSize)
	}

	n, err := conn.Read(buf)
	if err != nil {
		return common.Frame{}, err
	}
	if n == 0 {
		return common.Frame{}, io.EOF
	}
	if n > 1+common.MaxPayload {
		return common.Frame{}, errors.Wrapf(transport.ErrPayloadTooLarge, "received packet of at least %d bytes", n)
	}
	return common.NewFrame(common.Code(buf[0]), buf[1:n]), nil
}

// --------------------------------------------------------------------------
// Stream framing (TCP): message boundaries are carried by a length field
// --------------------------------------------------------------------------

// WriteStream writes a frame to the connection with the format:
// - 1 byte: code
// - 2 bytes: payload length (uint16, big endian)
// - N bytes: payload
func WriteStream(conn net.Conn, f common.Frame) error {
	if len(f.Payload) > common.MaxPayload {
		return errors.Wrapf(transport.ErrPayloadTooLarge, "%s frame with %d bytes", f.Code, len(f.Payload))
	}
	header := make([]byte, streamHeaderSize)
	header[0] = byte(f.Code)
	binary.BigEndian.PutUint16(header[1:3], uint16(len(f.Payload)))

	b := net.Buffers{header, f.Payload}
	_, err := b.WriteTo(conn)
	return err
}

// ReadStream reads one length prefixed frame using the provided buffer
// If the buffer is too small, it will allocate a new temporary buffer for the payload
func ReadStream(conn net.Conn, buf []byte) (common.Frame, error) {
	if len(buf) < streamHeaderSize {
		buf = make([]byte, streamHeaderSize)
	}

	// Read header
	if _, err := io.ReadFull(conn, buf[:streamHeaderSize]); err != nil {
		return common.Frame{}, err
	}
	code := common.Code(buf[0])
	length := int(binary.BigEndian.Uint16(buf[1:3]))

	if length == 0 {
		return common.NewFrame(code, []byte{}), nil
	}

	if len(buf) < length {
		buf = make([]byte, length)
	}

	if _, err := io.ReadFull(conn, buf[:length]); err != nil {
		return common.Frame{}, errors.Wrapf(err, "reading %d byte payload of %s frame", length, code)
	}
	return common.NewFrame(code, buf[:length]), nil
}
