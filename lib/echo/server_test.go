package echo

import (
	"net"
	"testing"
	"time"

	"github.com/ValentinKolb/tcpc/lib/client"
)

// startServer starts a server on an ephemeral loopback port
func startServer(t *testing.T, mode string) (*Server, uint16) {
	t.Helper()

	srv := NewServer(Config{Endpoint: "127.0.0.1:0", Mode: mode})
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })

	return srv, uint16(srv.Addr().(*net.TCPAddr).Port)
}

// TestEchoRoundTrip tests that the echo mode writes received bytes back
func TestEchoRoundTrip(t *testing.T) {
	_, port := startServer(t, ModeEcho)

	c := client.New()
	if err := c.Connect("127.0.0.1", port); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	defer c.Close()

	for _, msg := range []string{"hello", "world", "a longer message across the loopback"} {
		if _, err := c.SendString(msg); err != nil {
			t.Fatalf("SendString(%q) failed: %v", msg, err)
		}

		got := make([]byte, 0, len(msg))
		for len(got) < len(msg) {
			chunk, err := c.Receive(len(msg) - len(got))
			if err != nil {
				t.Fatalf("Receive() failed: %v", err)
			}
			if len(chunk) == 0 {
				t.Fatal("server closed the connection mid-echo")
			}
			got = append(got, chunk...)
		}

		if string(got) != msg {
			t.Errorf("echo = %q, want %q", got, msg)
		}
	}
}

// TestDiscardMode tests that the discard mode consumes bytes without replying
func TestDiscardMode(t *testing.T) {
	srv, port := startServer(t, ModeDiscard)

	c := client.New()
	if err := c.Connect("127.0.0.1", port); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	defer c.Close()

	if _, err := c.SendString("into the void"); err != nil {
		t.Fatalf("SendString() failed: %v", err)
	}

	// give the server time to drain the payload so its close is a clean FIN
	time.Sleep(100 * time.Millisecond)

	// closing the server unblocks the pending read with an orderly shutdown
	if err := srv.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	resp, err := c.Receive(4096)
	if err != nil {
		t.Fatalf("Receive() after server close = %v, want nil", err)
	}
	if len(resp) != 0 {
		t.Errorf("Receive() in discard mode = %q, want empty", resp)
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after server close")
	}
}

// TestInvalidMode tests that an unknown mode is rejected on start
func TestInvalidMode(t *testing.T) {
	srv := NewServer(Config{Endpoint: "127.0.0.1:0", Mode: "bogus"})
	if err := srv.Start(); err == nil {
		_ = srv.Close()
		t.Error("Start() with invalid mode succeeded, want error")
	}
}

// TestCloseIdempotent tests that closing a server twice is a no-op
func TestCloseIdempotent(t *testing.T) {
	srv, _ := startServer(t, ModeEcho)

	if err := srv.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
	if err := srv.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
}

// TestDefaultMode tests that an empty mode defaults to echo
func TestDefaultMode(t *testing.T) {
	srv := NewServer(Config{Endpoint: "127.0.0.1:0"})
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() with default mode failed: %v", err)
	}
	defer srv.Close()

	if srv.Addr() == nil {
		t.Error("Addr() = nil after Start")
	}
}
