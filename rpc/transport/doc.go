// Package transport defines the interfaces and abstractions for carrying infod
// frames between the client and the server. It provides a common contract that
// all transport implementations must fulfill, so the protocol client never
// needs to know whether it talks over a unix packet socket or TCP.
//
// The package focuses on:
//   - Defining a clear interface for client-side frame transports
//   - Preserving message boundaries (one Send is one frame, one Recv is one frame)
//   - Enabling multiple transport implementations (Unix packet sockets, TCP)
//
// Key Components:
//
//   - IFrameTransport: Interface for client-side transport implementations that
//     handles connection management and frame exchange.
//
//   - ErrPayloadTooLarge, ErrClosed: errors shared by all implementations.
package transport
