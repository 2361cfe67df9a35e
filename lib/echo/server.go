package echo

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"
	"github.com/ValentinKolb/tcpc/lib/client"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("tcp/echo")

const (
	// ModeEcho writes every received byte back to the peer
	ModeEcho = "echo"
	// ModeDiscard reads and drops everything
	ModeDiscard = "discard"

	defaultBufferSize = 64 * 1024 // 64 KB
)

var (
	metricAccepted    = metrics.NewCounter("tcpc_echo_accepted_total")
	metricBytesEchoed = metrics.NewCounter("tcpc_echo_bytes_total")
)

// Config holds the server configuration
type Config struct {
	// Endpoint is the listen address (e.g. "127.0.0.1:0", "0.0.0.0:7777")
	Endpoint string

	// Mode is ModeEcho or ModeDiscard
	Mode string

	// BufferSize is the per-connection read buffer size in bytes
	BufferSize int

	// Socket holds the socket level settings applied to accepted connections
	Socket client.Config
}

// Server is a minimal echo/discard TCP server. It exists as a peer for the
// client: manual testing, the ping and perf commands and the package tests
// all talk to it.
type Server struct {
	conf       Config
	listener   net.Listener
	conns      *xsync.MapOf[uint64, net.Conn]
	nextConnID atomic.Uint64
	stopping   atomic.Bool
	bufferPool *sync.Pool
	wg         sync.WaitGroup
}

// --------------------------------------------------------------------------
// Factory Method
// --------------------------------------------------------------------------

// NewServer creates a server for the given configuration. Call Start to bind
// the listener.
func NewServer(conf Config) *Server {
	if conf.Mode == "" {
		conf.Mode = ModeEcho
	}
	bufferSize := conf.BufferSize
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	return &Server{
		conf:  conf,
		conns: xsync.NewMapOf[uint64, net.Conn](),
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return make([]byte, bufferSize)
			},
		},
	}
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Start binds the listener and begins accepting connections in the
// background. It returns once the listener is bound; Addr is valid after a
// successful Start.
func (s *Server) Start() error {
	if s.conf.Mode != ModeEcho && s.conf.Mode != ModeDiscard {
		return fmt.Errorf("invalid server mode: %s (expected one of: %s, %s)", s.conf.Mode, ModeEcho, ModeDiscard)
	}

	listener, err := net.Listen("tcp", s.conf.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to create TCP listener: %v", err)
	}
	s.listener = listener

	Logger.Infof("%s server listening on %s", s.conf.Mode, listener.Addr())

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Addr returns the bound listener address, or nil before Start
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close stops accepting, closes every live connection and waits for the
// connection handlers to drain. It is idempotent.
func (s *Server) Close() error {
	if s.stopping.Swap(true) {
		return nil
	}

	if s.listener != nil {
		_ = s.listener.Close()
	}

	// Close all live connections so blocked reads return
	s.conns.Range(func(id uint64, conn net.Conn) bool {
		_ = conn.Close()
		return true
	})

	s.wg.Wait()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// acceptLoop accepts connections until the listener is closed
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.stopping.Load() {
				return
			}
			Logger.Errorf("accept error: %v", err)
			continue
		}

		metricAccepted.Inc()

		id := s.nextConnID.Add(1)
		s.conns.Store(id, conn)

		s.wg.Add(1)
		go s.handleConnection(id, conn)
	}
}

// handleConnection serves a single peer until it disconnects
func (s *Server) handleConnection(id uint64, conn net.Conn) {
	defer s.wg.Done()
	defer s.conns.Delete(id)
	defer conn.Close()

	// Apply socket level settings to the accepted connection
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := s.conf.Socket.Apply(tcpConn); err != nil {
			Logger.Warningf("failed to configure socket for %s: %v", conn.RemoteAddr(), err)
		}
	}

	Logger.Debugf("connection %d from %s", id, conn.RemoteAddr())

	buf := s.bufferPool.Get().([]byte)
	defer s.bufferPool.Put(buf)

	for {
		n, err := conn.Read(buf)
		if n > 0 && s.conf.Mode == ModeEcho {
			if _, werr := conn.Write(buf[:n]); werr != nil {
				Logger.Debugf("connection %d write error: %v", id, werr)
				return
			}
			metricBytesEchoed.Add(n)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !s.stopping.Load() {
				Logger.Debugf("connection %d read error: %v", id, err)
			}
			return
		}
	}
}
