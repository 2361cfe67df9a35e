package client

import (
	"bytes"
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

// startListener starts a loopback listener on an ephemeral port
func startListener(t *testing.T) (net.Listener, uint16) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to start listener: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	return ln, uint16(ln.Addr().(*net.TCPAddr).Port)
}

// serveEcho accepts a single connection and echoes everything back
func serveEcho(ln net.Listener) {
	conn, err := ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()
	_, _ = io.Copy(conn, conn)
}

// TestConnectEmptyHost tests that an empty host fails before resolution
func TestConnectEmptyHost(t *testing.T) {
	c := New()

	err := c.Connect("", 80)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Connect(\"\") = %v, want ErrInvalidArgument", err)
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after failed connect")
	}
}

// TestConnectResolutionError tests that an unresolvable name fails with ResolutionError
func TestConnectResolutionError(t *testing.T) {
	c := New()

	err := c.Connect("invalid..host", 80)
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("Connect(invalid..host) = %v, want *ResolutionError", err)
	}
	if resErr.Host != "invalid..host" {
		t.Errorf("ResolutionError.Host = %q, want %q", resErr.Host, "invalid..host")
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after resolution failure")
	}
}

// TestConnectConnectionRefused tests that a port with no listener fails with ConnectionError
func TestConnectConnectionRefused(t *testing.T) {
	ln, port := startListener(t)
	_ = ln.Close() // free the port so the connect attempt is refused

	c := New()
	err := c.Connect("127.0.0.1", port)

	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("Connect() = %v, want *ConnectionError", err)
	}
	if connErr.Candidates < 1 {
		t.Errorf("ConnectionError.Candidates = %d, want >= 1", connErr.Candidates)
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after connection failure")
	}
}

// TestConnectCloseLifecycle tests the connected flag transitions and close idempotency
func TestConnectCloseLifecycle(t *testing.T) {
	ln, port := startListener(t)
	go serveEcho(ln)

	c := New()
	if c.IsConnected() {
		t.Error("fresh client reports connected")
	}

	if err := c.Connect("127.0.0.1", port); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	if !c.IsConnected() {
		t.Error("IsConnected() = false after successful connect")
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after close")
	}

	// repeated close is a no-op
	if err := c.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
}

// TestReconnectClosesPrevious tests that connecting again releases the old socket
func TestReconnectClosesPrevious(t *testing.T) {
	ln1, port1 := startListener(t)
	ln2, port2 := startListener(t)
	go serveEcho(ln2)

	firstClosed := make(chan struct{})
	go func() {
		conn, err := ln1.Accept()
		if err != nil {
			return
		}
		_, _ = io.ReadAll(conn) // returns once the client side is closed
		close(firstClosed)
	}()

	c := New()
	if err := c.Connect("127.0.0.1", port1); err != nil {
		t.Fatalf("first Connect() failed: %v", err)
	}
	if err := c.Connect("127.0.0.1", port2); err != nil {
		t.Fatalf("second Connect() failed: %v", err)
	}
	defer c.Close()

	select {
	case <-firstClosed:
	case <-time.After(2 * time.Second):
		t.Fatal("first connection was not closed by reconnect")
	}
	if !c.IsConnected() {
		t.Error("IsConnected() = false after reconnect")
	}
}

// TestSendReceiveRoundTrip tests the end-to-end PING/PONG scenario
func TestSendReceiveRoundTrip(t *testing.T) {
	ln, port := startListener(t)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4)
		if _, err := io.ReadFull(conn, buf); err != nil {
			return
		}
		_, _ = conn.Write([]byte("PONG"))
	}()

	c := NewWithConfig(DefaultConfig())
	if err := c.Connect("127.0.0.1", port); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}

	n, err := c.SendString("PING")
	if err != nil {
		t.Fatalf("SendString(PING) failed: %v", err)
	}
	if n != 4 {
		t.Errorf("SendString(PING) = %d, want 4", n)
	}

	resp, err := c.Receive(4096)
	if err != nil {
		t.Fatalf("Receive() failed: %v", err)
	}
	if string(resp) != "PONG" {
		t.Errorf("Receive() = %q, want %q", resp, "PONG")
	}

	_ = c.Close()
	if c.IsConnected() {
		t.Error("IsConnected() = true after close")
	}
}

// TestSendNotConnected tests that transfers on a disconnected client fail with ErrNotConnected
func TestSendNotConnected(t *testing.T) {
	c := New()

	if _, err := c.Send([]byte("data")); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send() = %v, want ErrNotConnected", err)
	}
	if _, err := c.SendString("data"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("SendString() = %v, want ErrNotConnected", err)
	}
	if _, err := c.Receive(16); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Receive() = %v, want ErrNotConnected", err)
	}
	if _, err := c.ReceiveDefault(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("ReceiveDefault() = %v, want ErrNotConnected", err)
	}
}

// TestZeroLengthOperations tests the no-op paths of send and receive
func TestZeroLengthOperations(t *testing.T) {
	ln, port := startListener(t)
	go serveEcho(ln)

	c := New()
	if err := c.Connect("127.0.0.1", port); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	defer c.Close()

	tests := []struct {
		name string
		fn   func() (int, error)
	}{
		{"Send(nil)", func() (int, error) { return c.Send(nil) }},
		{"Send(empty)", func() (int, error) { return c.Send([]byte{}) }},
		{"SendString(empty)", func() (int, error) { return c.SendString("") }},
		{"Receive(0)", func() (int, error) { b, err := c.Receive(0); return len(b), err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tt.fn()
			if err != nil {
				t.Errorf("got error %v, want nil", err)
			}
			if n != 0 {
				t.Errorf("got %d, want 0", n)
			}
		})
	}

	// an empty string send does not even require a connection
	d := New()
	if n, err := d.SendString(""); n != 0 || err != nil {
		t.Errorf("disconnected SendString(\"\") = (%d, %v), want (0, nil)", n, err)
	}

	// a negative receive size is caller misuse
	if _, err := c.Receive(-1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Receive(-1) = %v, want ErrInvalidArgument", err)
	}
}

// TestReceivePartial tests that a short read is a normal successful outcome
func TestReceivePartial(t *testing.T) {
	ln, port := startListener(t)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		_, _ = conn.Write([]byte("AB"))
		// keep the connection open so the read result is unambiguous
		time.Sleep(500 * time.Millisecond)
		_ = conn.Close()
	}()

	c := New()
	if err := c.Connect("127.0.0.1", port); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	defer c.Close()

	resp, err := c.Receive(4096)
	if err != nil {
		t.Fatalf("Receive() failed: %v", err)
	}
	if string(resp) != "AB" {
		t.Errorf("Receive() = %q, want %q", resp, "AB")
	}
	if !c.IsConnected() {
		t.Error("IsConnected() = false after a partial read")
	}
}

// TestPeerClose tests that an orderly peer shutdown yields an empty result and disconnects
func TestPeerClose(t *testing.T) {
	ln, port := startListener(t)

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		accepted <- conn
	}()

	c := New()
	if err := c.Connect("127.0.0.1", port); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}

	conn := <-accepted
	_ = conn.Close()

	resp, err := c.Receive(4096)
	if err != nil {
		t.Fatalf("Receive() after peer close = %v, want nil", err)
	}
	if len(resp) != 0 {
		t.Errorf("Receive() after peer close = %q, want empty", resp)
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after peer close")
	}

	// subsequent transfers are caller-state misuse
	if _, err := c.Receive(4096); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Receive() on closed client = %v, want ErrNotConnected", err)
	}
}

// TestSendLarge tests the chunked send loop with a payload above one read buffer
func TestSendLarge(t *testing.T) {
	ln, port := startListener(t)
	go serveEcho(ln)

	c := New()
	if err := c.Connect("127.0.0.1", port); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	defer c.Close()

	payload := bytes.Repeat([]byte("0123456789abcdef"), 8*1024) // 128 KB

	n, err := c.Send(payload)
	if err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	if n != len(payload) {
		t.Errorf("Send() = %d, want %d", n, len(payload))
	}

	// drain the echo in as many reads as needed
	got := make([]byte, 0, len(payload))
	for len(got) < len(payload) {
		chunk, err := c.Receive(len(payload) - len(got))
		if err != nil {
			t.Fatalf("Receive() failed after %d bytes: %v", len(got), err)
		}
		if len(chunk) == 0 {
			t.Fatalf("peer closed after %d of %d bytes", len(got), len(payload))
		}
		got = append(got, chunk...)
	}

	if !bytes.Equal(got, payload) {
		t.Error("echoed payload does not match the sent payload")
	}
}

// TestAdopt tests ownership transfer between two clients
func TestAdopt(t *testing.T) {
	ln, port := startListener(t)
	go serveEcho(ln)

	a := New()
	if err := a.Connect("127.0.0.1", port); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}

	b := New()
	b.Adopt(a)

	if !b.IsConnected() {
		t.Error("destination not connected after Adopt")
	}
	if a.IsConnected() {
		t.Error("source still connected after Adopt")
	}

	// closing the drained source must not affect the destination
	if err := a.Close(); err != nil {
		t.Errorf("Close() on drained source = %v, want nil", err)
	}

	if _, err := b.SendString("hello"); err != nil {
		t.Fatalf("SendString() on adopted socket failed: %v", err)
	}
	resp, err := b.Receive(4096)
	if err != nil {
		t.Fatalf("Receive() on adopted socket failed: %v", err)
	}
	if string(resp) != "hello" {
		t.Errorf("Receive() = %q, want %q", resp, "hello")
	}

	_ = b.Close()
}

// TestAdoptClosesDestination tests that adopting into a connected client closes its old socket
func TestAdoptClosesDestination(t *testing.T) {
	ln1, port1 := startListener(t)
	ln2, port2 := startListener(t)
	go serveEcho(ln2)

	oldClosed := make(chan struct{})
	go func() {
		conn, err := ln1.Accept()
		if err != nil {
			return
		}
		_, _ = io.ReadAll(conn)
		close(oldClosed)
	}()

	dst := New()
	if err := dst.Connect("127.0.0.1", port1); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	src := New()
	if err := src.Connect("127.0.0.1", port2); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}

	dst.Adopt(src)
	defer dst.Close()

	select {
	case <-oldClosed:
	case <-time.After(2 * time.Second):
		t.Fatal("destination's previous socket was not closed by Adopt")
	}

	// no-op transfers
	dst.Adopt(nil)
	dst.Adopt(dst)
	if !dst.IsConnected() {
		t.Error("self/nil Adopt changed the connection state")
	}
}

// TestTake tests transfer into a fresh instance
func TestTake(t *testing.T) {
	ln, port := startListener(t)
	go serveEcho(ln)

	src := New()
	if err := src.Connect("127.0.0.1", port); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}

	dst := Take(src)
	defer dst.Close()

	if !dst.IsConnected() {
		t.Error("Take() result not connected")
	}
	if src.IsConnected() {
		t.Error("source still connected after Take")
	}
}
