// Package client implements a minimal cross-platform TCP client with
// synchronous, blocking semantics. A Client resolves a hostname and port,
// establishes a single stream connection and exposes send/receive operations
// on raw bytes plus deterministic resource cleanup.
//
// The package focuses on:
//   - Blocking connection establishment with candidate-by-candidate dialing
//     in resolver order (both address families, TCP only)
//   - Full-buffer send with chunked writes and single-read receive
//   - Exclusive socket ownership with explicit transfer between instances
//   - Uniform error reporting via dedicated error kinds
//
// Key Components:
//
//   - Client: owns zero or one live socket, manages its full lifecycle
//     (acquire, connect, transfer, release). Not safe for concurrent use of
//     a single instance; ownership is exclusive and instances must not be
//     copied.
//
//   - Config: socket level tuning (TCP_NODELAY, keep-alive, linger, buffer
//     sizes) applied to every freshly connected socket. Timeouts are
//     deliberately absent from this layer; callers needing bounded waits
//     must manage them externally.
//
//   - Error kinds: ErrInvalidArgument, ErrNotConnected and ErrPlatformInit
//     sentinels plus ResolutionError, ConnectionError and TransferError
//     types carrying the platform error detail. An orderly shutdown by the
//     peer is not an error: Receive returns an empty result and the client
//     transitions to the disconnected state.
//
// Higher level concerns such as TLS, framing, multiplexing and retry policy
// are out of scope and must be built on top.
package client
