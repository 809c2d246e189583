package common

import (
	"bytes"
	"strings"
	"testing"
)

// TestSplitKeyValue tests splitting INFO payloads at the first NUL
func TestSplitKeyValue(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		key     string
		value   []byte
		ok      bool
	}{
		{"key only", []byte("foo"), "foo", nil, false},
		{"empty value", []byte("b\x00"), "b", []byte{}, true},
		{"value", []byte("a\x00xyz"), "a", []byte("xyz"), true},
		{"value with NUL", []byte("a\x00x\x00y"), "a", []byte("x\x00y"), true},
		{"empty payload", []byte{}, "", nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key, value, ok := SplitKeyValue(tc.payload)
			if key != tc.key {
				t.Errorf("Expected key %q, got %q", tc.key, key)
			}
			if ok != tc.ok {
				t.Errorf("Expected ok=%v, got %v", tc.ok, ok)
			}
			if !bytes.Equal(value, tc.value) {
				t.Errorf("Expected value %q, got %q", tc.value, value)
			}
			if tc.ok && value == nil {
				t.Error("An empty value must not be reported as nil")
			}
		})
	}
}

// TestEncodeKeyValue tests the payload layout of writes
func TestEncodeKeyValue(t *testing.T) {
	if got := EncodeKeyValue("b", nil); !bytes.Equal(got, []byte("b\x00")) {
		t.Errorf("Expected %q for an empty value, got %q", "b\x00", got)
	}
	if got := EncodeKeyValue("key", []byte("value")); !bytes.Equal(got, []byte("key\x00value")) {
		t.Errorf("Unexpected payload %q", got)
	}
	if got := EncodeKey("key"); !bytes.Equal(got, []byte("key")) {
		t.Errorf("A delete payload must be the bare key, got %q", got)
	}

	// largest key with the largest value fills a frame exactly
	key := strings.Repeat("K", 30000)
	value := bytes.Repeat([]byte("V"), 65534-30000)
	if got := len(EncodeKeyValue(key, value)); got != MaxPayload {
		t.Errorf("Expected payload of %d bytes, got %d", MaxPayload, got)
	}
}

// TestValidKey tests which keys can be put on the wire
func TestValidKey(t *testing.T) {
	if !ValidKey("a") {
		t.Error("Single byte key should be valid")
	}
	if !ValidKey(strings.Repeat("K", 30000)) {
		t.Error("Long key should be valid")
	}
	if ValidKey("") {
		t.Error("Empty key should be invalid")
	}
	if ValidKey("a\x00b") {
		t.Error("Key containing NUL should be invalid")
	}
}

// TestCodeString tests code names and the command range
func TestCodeString(t *testing.T) {
	names := map[Code]string{
		CmdHello:   "hello",
		CmdWrite:   "write",
		CmdPing:    "ping",
		MsgInfo:    "info",
		MsgError:   "error",
		Code(0x42): "0x42",
	}
	for code, name := range names {
		if code.String() != name {
			t.Errorf("Expected %q for code %d, got %q", name, code, code.String())
		}
	}

	if !CmdCommit.IsCommand() || MsgPong.IsCommand() {
		t.Error("IsCommand must split codes at 0x80")
	}
}

// TestAbbrev tests shortening of diagnostic output
func TestAbbrev(t *testing.T) {
	if got := Abbrev([]byte("abc"), 10); got != `"abc"` {
		t.Errorf("Unexpected short form %s", got)
	}
	if got := Abbrev([]byte("abcdef"), 3); got != `"abc"...(6 bytes)` {
		t.Errorf("Unexpected long form %s", got)
	}
}
