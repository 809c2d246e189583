// Package common provides the data structures and utilities shared across
// the infostress protocol stack. It defines the infod wire codes, the frame
// type exchanged with the server, the client configuration and the logging
// setup used by every other package.
//
// The package focuses on:
//   - Protocol definition (command and message codes, payload encoding)
//   - Configuration structures for the client side of the connection
//   - Custom logging implementation integrated with Dragonboat's logger facade
//
// Key Components:
//
//   - Frame: One transport level message, a one byte code followed by an
//     opaque payload. Every request and every response is a single Frame.
//
//   - Code: Enumeration of all command codes (client to server) and message
//     codes (server to client).
//
//   - KeyValue: A key and its value as carried by INFO messages. Helper
//     functions encode and split the "key NUL value" payload convention.
//
//   - ClientConfig: Configuration for the client connection, selecting the
//     endpoint, deadlines and socket options.
//
//   - Logger: Custom logging implementation that plugs into Dragonboat's
//     logging system while providing consistent formatting across the application.
package common
