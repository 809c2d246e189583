// Package base provides a foundation for the infod frame transports,
// implementing the connection handling independent of the specific network
// protocol (TCP, Unix packet sockets). It serves as a base layer that is
// extended with protocol-specific connectors.
//
// Key Components:
//
//   - IClientConnector: Interface for protocol-specific operations (dialing,
//     socket tuning and framing) that allows extending the base transport with
//     different network protocols.
//
//   - frameTransport: Core client implementation that owns a single connection
//     and exchanges whole frames over it. There is no pooling, retrying or
//     reconnecting: a broken connection is reported to the caller.
//
//   - WritePacket/ReadPacket: framing for sockets that preserve message
//     boundaries, one packet is one frame.
//
//   - WriteStream/ReadStream: framing for byte streams, a three byte header
//     (code and 16-bit big endian length) precedes the payload.
//
// Thread Safety:
//
//	A frameTransport is meant to be owned by a single goroutine.
package base
