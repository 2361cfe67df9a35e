// Package cmd implements the command-line interface for tcpc. It provides a
// hierarchical command structure with operations for talking to a remote TCP
// endpoint and for running the bundled echo server.
//
// The package is organized into several subpackages:
//
//   - client: Commands for connecting to an endpoint (send, recv, ping, perf)
//   - serve: Commands for starting and configuring the echo/discard server
//   - util: Shared utilities for command-line processing, configuration and
//     logging setup (internal use)
//
// See tcpc -help for a list of all commands.
package cmd
