// Package cmd implements the command-line interface of infostress.
// Called without a subcommand it runs the stress test against a live infod
// server.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for single key operations (get, set, del, all, hello),
//     useful to inspect a store after a failed run
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See infostress -help for a list of all commands.
package cmd
