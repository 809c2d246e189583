package base

import (
	"bytes"
	"net"
	"testing"

	"github.com/ValentinKolb/infostress/rpc/common"
	"github.com/ValentinKolb/infostress/rpc/transport"
	"github.com/cockroachdb/errors"
)

// TestStreamFraming tests that frames survive the length prefixed encoding
func TestStreamFraming(t *testing.T) {
	frames := []common.Frame{
		common.NewFrame(common.CmdPing, nil),
		common.NewFrame(common.CmdWrite, common.EncodeKeyValue("key", []byte("value"))),
		common.NewFrame(common.MsgInfo, bytes.Repeat([]byte("x"), common.MaxPayload)),
	}

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		for _, f := range frames {
			if err := WriteStream(client, f); err != nil {
				t.Errorf("Failed to write %s: %v", f, err)
				return
			}
		}
	}()

	buf := make([]byte, PacketBufferSize)
	for i, expected := range frames {
		got, err := ReadStream(server, buf)
		if err != nil {
			t.Fatalf("Failed to read frame %d: %v", i, err)
		}
		if got.Code != expected.Code {
			t.Errorf("Frame %d: expected code %s, got %s", i, expected.Code, got.Code)
		}
		if !bytes.Equal(got.Payload, expected.Payload) {
			t.Errorf("Frame %d: payload mismatch (%d vs %d bytes)", i, len(got.Payload), len(expected.Payload))
		}
	}
}

// TestPayloadTooLarge tests that oversized frames are refused before writing
func TestPayloadTooLarge(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	f := common.NewFrame(common.CmdWrite, make([]byte, common.MaxPayload+1))

	if err := WriteStream(client, f); !errors.Is(err, transport.ErrPayloadTooLarge) {
		t.Errorf("Expected ErrPayloadTooLarge from WriteStream, got %v", err)
	}
	if err := WritePacket(client, f); !errors.Is(err, transport.ErrPayloadTooLarge) {
		t.Errorf("Expected ErrPayloadTooLarge from WritePacket, got %v", err)
	}
}

// TestPacketFraming tests packet framing over a unix packet socket pair
func TestPacketFraming(t *testing.T) {
	listener, err := net.Listen("unixpacket", "@infostress-base-test")
	if err != nil {
		t.Skipf("unix packet sockets not available: %v", err)
	}
	defer listener.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- conn
	}()

	client, err := net.Dial("unixpacket", "@infostress-base-test")
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer client.Close()

	server, ok := <-accepted
	if !ok {
		t.Fatal("Failed to accept")
	}
	defer server.Close()

	frames := []common.Frame{
		common.NewFrame(common.CmdPing, nil),
		common.NewFrame(common.CmdWrite, common.EncodeKeyValue("b", nil)),
		common.NewFrame(common.CmdWrite, bytes.Repeat([]byte("y"), common.MaxPayload)),
	}
	for _, f := range frames {
		if err := WritePacket(client, f); err != nil {
			t.Fatalf("Failed to write %s: %v", f, err)
		}
	}

	buf := make([]byte, PacketBufferSize)
	for i, expected := range frames {
		got, err := ReadPacket(server, buf)
		if err != nil {
			t.Fatalf("Failed to read packet %d: %v", i, err)
		}
		if got.Code != expected.Code || !bytes.Equal(got.Payload, expected.Payload) {
			t.Errorf("Packet %d: expected %s, got %s", i, expected, got)
		}
	}
}
