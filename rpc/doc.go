// Package rpc provides the client side of the infod wire protocol. It acts as
// the communication layer between the stress driver and a live infod server.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the package,
//     including the frame codes, payload encoding, configuration structures
//     and logging.
//
//   - transport: Frame transport abstraction with pluggable implementations
//     (Unix packet sockets, TCP).
//
//   - client: The protocol client: point reads, writes and deletes, PING
//     synchronization and the consistent read-all.
package rpc
