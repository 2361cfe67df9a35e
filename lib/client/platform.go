package client

import (
	"fmt"
	"sync"
)

var (
	platformOnce sync.Once
	platformErr  error
)

// initializePlatform performs the process-wide one-time network-stack startup.
// The Go runtime already handles platform socket subsystem startup (including
// the Winsock equivalent on Windows), so the hook currently has nothing to do;
// the sync.Once guard keeps the startup contract one-shot and concurrency-safe
// for platforms that would need it.
func initializePlatform() error {
	platformOnce.Do(func() {
		platformErr = nil
	})
	if platformErr != nil {
		return fmt.Errorf("%w: %v", ErrPlatformInit, platformErr)
	}
	return nil
}
