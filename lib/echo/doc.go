// Package echo implements a small echo/discard TCP server used as a peer for
// the client package: the serve command runs it standalone, the ping and perf
// commands measure round trips against it, and the package tests use it as a
// loopback endpoint.
//
// Key Components:
//
//   - Server: accept loop with one goroutine per connection, buffer reuse via
//     sync.Pool, and a live-connection registry so Close can unblock every
//     pending read. ModeEcho writes received bytes straight back, ModeDiscard
//     drops them.
//
//   - Config: listen endpoint, mode, per-connection buffer size, and the
//     socket level settings (shared with the client package) applied to
//     accepted connections.
package echo
