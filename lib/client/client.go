package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"strconv"

	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("tcp/client")

const (
	// DefaultReceiveSize is the buffer capacity used by ReceiveDefault
	DefaultReceiveSize = 4096

	// maxChunkSize caps the slice handed to a single write or read system
	// call, mirroring the int-sized length limit of the platform primitives
	maxChunkSize = math.MaxInt32
)

// Client is a minimal blocking TCP client. It owns zero or one live socket at
// a time: the socket is acquired by Connect, released by Close (or by an
// orderly peer shutdown observed during Receive), and can be handed to
// another instance with Adopt. A Client must not be copied; every instance is
// the exclusive owner of its socket. Instances are not safe for concurrent
// use without external synchronization.
type Client struct {
	noCopy noCopy

	conf      Config
	conn      *net.TCPConn
	connected bool
}

// --------------------------------------------------------------------------
// Factory Methods
// --------------------------------------------------------------------------

// New creates a disconnected client with the default socket configuration
func New() *Client {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a disconnected client with the given socket
// configuration. The configuration is applied to every socket the client
// connects, including sockets acquired later via Adopt-then-Connect cycles.
func NewWithConfig(conf Config) *Client {
	// Trigger the one-time platform startup early. A startup failure is
	// reported by the first Connect call, construction itself cannot fail.
	_ = initializePlatform()

	return &Client{conf: conf}
}

// --------------------------------------------------------------------------
// Connection Establishment
// --------------------------------------------------------------------------

// Connect resolves host and port and establishes a blocking TCP connection.
// An already connected client first closes its current socket. Candidates are
// tried in resolver order until one connects; only after all candidates fail
// is a *ConnectionError returned. Resolution failures (including an empty
// candidate set) return a *ResolutionError. The call may block indefinitely,
// there is no timeout at this layer.
func (c *Client) Connect(host string, port uint16) error {
	if host == "" {
		return fmt.Errorf("%w: host must not be empty", ErrInvalidArgument)
	}

	// Idempotent cleanup of a previous connection
	_ = c.Close()

	if err := initializePlatform(); err != nil {
		return err
	}

	// Resolve to candidate addresses (both families, resolver order)
	addrs, err := net.DefaultResolver.LookupIPAddr(context.Background(), host)
	if err != nil {
		metricConnectErrors.Inc()
		return &ResolutionError{Host: host, Err: err}
	}
	if len(addrs) == 0 {
		metricConnectErrors.Inc()
		return &ResolutionError{Host: host, Err: errors.New("no addresses resolved")}
	}

	endpoint := net.JoinHostPort(host, strconv.Itoa(int(port)))

	// Try each candidate in order, first successful connect wins
	var lastErr error
	for _, addr := range addrs {
		raddr := &net.TCPAddr{IP: addr.IP, Zone: addr.Zone, Port: int(port)}

		conn, err := net.DialTCP("tcp", nil, raddr)
		if err != nil {
			lastErr = err
			continue
		}

		// Apply socket level settings; a failing candidate is closed and
		// the next one is tried
		if err := c.conf.Apply(conn); err != nil {
			_ = conn.Close()
			lastErr = err
			continue
		}

		c.conn = conn
		c.connected = true
		metricConnects.Inc()
		Logger.Debugf("connected to %s via %s", endpoint, raddr.String())
		return nil
	}

	metricConnectErrors.Inc()
	return &ConnectionError{Endpoint: endpoint, Candidates: len(addrs), Err: lastErr}
}

// --------------------------------------------------------------------------
// Data Transfer
// --------------------------------------------------------------------------

// Send transmits the full buffer over the connection, blocking until every
// byte has been handed to the OS. A single write call is not guaranteed to
// consume the whole buffer, so Send loops over chunks. On success the
// returned count always equals len(p); on failure a *TransferError is
// returned (carrying the bytes moved before the failing call) and no partial
// count is reported.
func (c *Client) Send(p []byte) (int, error) {
	if err := c.ensureConnected(); err != nil {
		return 0, err
	}

	total := 0
	for total < len(p) {
		chunk := min(len(p)-total, maxChunkSize)

		n, err := c.conn.Write(p[total : total+chunk])
		if n > 0 {
			total += n
			metricBytesSent.Add(n)
		}
		if err != nil {
			return 0, &TransferError{Op: "send", Transferred: total, Err: err}
		}
		if n <= 0 {
			// No progress and no error: treat as a failed write rather
			// than spinning
			return 0, &TransferError{Op: "send", Transferred: total, Err: errors.New("write made no progress")}
		}
	}

	return total, nil
}

// SendString transmits the byte content of s. An empty string is a no-op
// that returns 0 without touching the connection state.
func (c *Client) SendString(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return c.Send([]byte(s))
}

// Receive issues exactly one blocking read of at most maxBytes bytes and
// returns whatever arrived. Partial reads are a normal successful outcome.
// A zero-byte read caused by an orderly peer shutdown closes the client and
// returns an empty, non-error result. maxBytes == 0 returns immediately
// without a system call.
func (c *Client) Receive(maxBytes int) ([]byte, error) {
	if err := c.ensureConnected(); err != nil {
		return nil, err
	}
	if maxBytes < 0 {
		return nil, fmt.Errorf("%w: receive size must not be negative", ErrInvalidArgument)
	}
	if maxBytes == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, min(maxBytes, maxChunkSize))

	n, err := c.conn.Read(buf)
	switch {
	case n > 0:
		// Data wins over a simultaneous EOF; the shutdown is observed by
		// the next call
		metricBytesReceived.Add(n)
		return buf[:n], nil
	case errors.Is(err, io.EOF):
		// Orderly shutdown by the peer, not a failure
		Logger.Debugf("peer closed connection")
		_ = c.Close()
		return []byte{}, nil
	case err != nil:
		return nil, &TransferError{Op: "receive", Err: err}
	default:
		return []byte{}, nil
	}
}

// ReceiveDefault is Receive with the default buffer capacity
func (c *Client) ReceiveDefault() ([]byte, error) {
	return c.Receive(DefaultReceiveSize)
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Close releases the socket if one is held and resets the client to the
// no-socket state. It is idempotent and never fails; the error return only
// exists to satisfy io.Closer.
func (c *Client) Close() error {
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.reset()
	return nil
}

// IsConnected reports whether the client currently owns a live socket
func (c *Client) IsConnected() bool {
	return c.connected
}

// Adopt transfers socket ownership from src to c. Any socket c currently
// holds is closed first; src is reset to the no-socket state and must not be
// used to reach the transferred socket afterwards. Adopting from nil or from
// itself is a no-op.
func (c *Client) Adopt(src *Client) {
	if src == nil || src == c {
		return
	}

	_ = c.Close()

	c.conn = src.conn
	c.connected = src.connected
	src.reset()
}

// Take creates a fresh client owning src's socket and configuration and
// resets src to the no-socket state.
func Take(src *Client) *Client {
	c := NewWithConfig(src.conf)
	c.Adopt(src)
	return c
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// reset clears the handle and the connected flag without touching the socket
func (c *Client) reset() {
	c.conn = nil
	c.connected = false
}

// ensureConnected guards transfer operations against caller-state misuse
func (c *Client) ensureConnected() error {
	if !c.connected || c.conn == nil {
		return ErrNotConnected
	}
	return nil
}

// noCopy triggers go vet's copylocks check when a Client is copied by value
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
