package common

import (
	"bytes"
	"fmt"
)

// --------------------------------------------------------------------------
// Wire Codes
// --------------------------------------------------------------------------

// Code is the leading byte of every frame. Values below 0x80 are commands
// sent by the client, values from 0x80 are messages sent by the server.
type Code uint8

const (
	// Commands (client -> server)

	CmdHello  Code = 0x00 // Ask for the server version
	CmdSub    Code = 0x01 // Subscribe to a key pattern
	CmdUnsub  Code = 0x02 // Cancel a subscription
	CmdRead   Code = 0x03 // Read a single key
	CmdWrite  Code = 0x04 // Write (key NUL value) or delete (key only)
	CmdBegin  Code = 0x05 // Start buffering commands
	CmdCommit Code = 0x06 // Execute the buffered commands
	CmdPing   Code = 0x07 // Request a PONG carrying the same payload

	// Messages (server -> client)

	MsgVersion Code = 0x80 // Reply to HELLO
	MsgInfo    Code = 0x81 // A key, optionally followed by NUL and its value
	MsgPong    Code = 0x82 // Reply to PING
	MsgError   Code = 0x83 // Protocol level failure, payload is the error text
)

const (
	// MaxPayload is the largest payload a single frame may carry.
	MaxPayload = 0xffff

	// PatternAll is the subscription pattern matching every key.
	PatternAll = "*"

	separator byte = 0
)

// String returns the string representation of a Code.
func (c Code) String() string {
	switch c {
	case CmdHello:
		return "hello"
	case CmdSub:
		return "sub"
	case CmdUnsub:
		return "unsub"
	case CmdRead:
		return "read"
	case CmdWrite:
		return "write"
	case CmdBegin:
		return "begin"
	case CmdCommit:
		return "commit"
	case CmdPing:
		return "ping"
	case MsgVersion:
		return "version"
	case MsgInfo:
		return "info"
	case MsgPong:
		return "pong"
	case MsgError:
		return "error"
	default:
		return fmt.Sprintf("0x%02x", uint8(c))
	}
}

// IsCommand reports whether the code is sent from client to server.
func (c Code) IsCommand() bool {
	return c < 0x80
}

// --------------------------------------------------------------------------
// Frame
// --------------------------------------------------------------------------

// Frame is a single protocol message: one code byte and a payload.
type Frame struct {
	Code    Code
	Payload []byte
}

// NewFrame creates a frame for the given code and payload
func NewFrame(code Code, payload []byte) Frame {
	return Frame{Code: code, Payload: payload}
}

// String renders the frame for diagnostics, truncating long payloads
func (f Frame) String() string {
	return fmt.Sprintf("%s:%s", f.Code, Abbrev(f.Payload, 64))
}

// --------------------------------------------------------------------------
// Payload Encoding
// --------------------------------------------------------------------------

// KeyValue is a live key and its value, as reported by an INFO message.
type KeyValue struct {
	Key   string `yaml:"key"`
	Value []byte `yaml:"value"`
}

// EncodeKey returns the payload for a READ or a deleting WRITE.
func EncodeKey(key string) []byte {
	return []byte(key)
}

// EncodeKeyValue returns the payload "key NUL value" used by WRITE and INFO.
func EncodeKeyValue(key string, value []byte) []byte {
	payload := make([]byte, 0, len(key)+1+len(value))
	payload = append(payload, key...)
	payload = append(payload, separator)
	return append(payload, value...)
}

// SplitKeyValue splits an INFO payload at the first NUL byte.
// ok is false when the payload carries no separator, which the server uses
// to report a key without a value (deleted or never written).
func SplitKeyValue(payload []byte) (key string, value []byte, ok bool) {
	i := bytes.IndexByte(payload, separator)
	if i < 0 {
		return string(payload), nil, false
	}
	return string(payload[:i]), payload[i+1:], true
}

// ValidKey reports whether key can be represented on the wire.
// Keys must not contain the NUL separator.
func ValidKey(key string) bool {
	return len(key) > 0 && !bytes.Contains([]byte(key), []byte{separator})
}

// Abbrev quotes b, shortening it to at most limit bytes of content.
func Abbrev(b []byte, limit int) string {
	if len(b) <= limit {
		return fmt.Sprintf("%q", b)
	}
	return fmt.Sprintf("%q...(%d bytes)", b[:limit], len(b))
}
