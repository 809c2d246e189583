// Package tcp implements the infod frame transport over TCP, for servers started
// with a TCP listener (port 26931 by default).
//
// TCP is a byte stream, so frames use the binary framing of infod: a code
// byte, a 16-bit big endian payload length and the payload. See the base
// package for the framing helpers and the shared connection handling.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector,
//     applying TCP_NODELAY, keep-alive, linger and buffer sizes from the
//     client configuration.
package tcp
