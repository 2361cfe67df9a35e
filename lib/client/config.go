package client

import (
	"net"
	"time"
)

// Config holds the socket level settings applied to a freshly connected
// socket. The zero value applies nothing; use DefaultConfig for sensible
// defaults.
type Config struct {
	// TCPNoDelay disables Nagle's algorithm when true
	TCPNoDelay bool

	// TCPKeepAliveSec enables TCP keep-alive with the given interval in
	// seconds. Zero leaves keep-alive at the OS default.
	TCPKeepAliveSec int

	// TCPLingerSec sets the socket linger time in seconds. Negative values
	// leave the OS default untouched.
	TCPLingerSec int

	// ReadBufferSize sets the socket read buffer size in bytes (0 = OS default)
	ReadBufferSize int

	// WriteBufferSize sets the socket write buffer size in bytes (0 = OS default)
	WriteBufferSize int
}

// DefaultConfig returns the default socket configuration
func DefaultConfig() Config {
	return Config{
		TCPNoDelay:   true,
		TCPLingerSec: -1,
	}
}

// Apply applies the socket settings to an established TCP connection
func (conf Config) Apply(conn *net.TCPConn) error {
	// Disable Nagle's algorithm (TCPNoDelay) if configured
	if err := conn.SetNoDelay(conf.TCPNoDelay); err != nil {
		return err
	}

	// Set socket write buffer size if configured
	if conf.WriteBufferSize > 0 {
		if err := conn.SetWriteBuffer(conf.WriteBufferSize); err != nil {
			return err
		}
	}

	// Set socket read buffer size if configured
	if conf.ReadBufferSize > 0 {
		if err := conn.SetReadBuffer(conf.ReadBufferSize); err != nil {
			return err
		}
	}

	// Enable TCP keep-alive if configured
	if conf.TCPKeepAliveSec > 0 {
		if err := conn.SetKeepAlive(true); err != nil {
			return err
		}
		if err := conn.SetKeepAlivePeriod(time.Duration(conf.TCPKeepAliveSec) * time.Second); err != nil {
			return err
		}
	}

	// Set TCP linger option if configured
	if conf.TCPLingerSec >= 0 {
		if err := conn.SetLinger(conf.TCPLingerSec); err != nil {
			return err
		}
	}

	return nil
}
