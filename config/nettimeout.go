package config

import (
	"sync"
	"time"
)

// DefaultNetTimeoutValue is the process-wide default network I/O timeout
// before any override.
const DefaultNetTimeoutValue = 30 * time.Second

var (
	netMu             sync.Mutex
	defaultNetTimeout = DefaultNetTimeoutValue
)

// DefaultNetTimeout returns the current process-wide default network I/O
// timeout. Components performing network I/O should consult it when no
// explicit timeout is configured.
func DefaultNetTimeout() time.Duration {
	netMu.Lock()
	defer netMu.Unlock()
	return defaultNetTimeout
}

// SetDefaultNetTimeout replaces the process-wide default network I/O
// timeout.
func SetDefaultNetTimeout(d time.Duration) {
	netMu.Lock()
	defer netMu.Unlock()
	defaultNetTimeout = d
}

// OverrideNetTimeout temporarily replaces the default network I/O timeout
// and returns a restore function. The shutdown path lowers the timeout to a
// bounded value so a hung socket operation inside a component's stop call
// cannot block shutdown indefinitely, then restores the prior value on
// every exit path:
//
//	restore := config.OverrideNetTimeout(5 * time.Second)
//	defer restore()
func OverrideNetTimeout(d time.Duration) (restore func()) {
	netMu.Lock()
	previous := defaultNetTimeout
	defaultNetTimeout = d
	netMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			SetDefaultNetTimeout(previous)
		})
	}
}
