// Package unix implements the infod frame transport over Unix domain sockets of
// type SOCK_SEQPACKET. This is the transport infod offers by default: the
// server binds the abstract name "\0INFOD" (written "@INFOD" in Go), and the
// INFOD_SOCKET environment variable overrides it for both sides.
//
// The socket preserves message boundaries, so every frame is sent as exactly
// one packet holding the code byte followed by the payload. No length prefix
// is needed.
//
// Key Components:
//
//   - clientConnector: Establishes connections and implements packet framing
//
//   - NormalizeEndpoint: Converts "\0name" abstract addresses to "@name"
package unix
