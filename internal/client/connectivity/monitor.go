// Package connectivity tracks whether the remote event API is reachable.
// Reachability is defined by the health probe alone: a failed push does not
// flip the status, only the next probe does.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/dverbitsky/chronokeeper/internal/logging"
)

// Pinger probes the remote API. Satisfied by remote.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor exposes the current reachability status and change notifications.
type Monitor interface {
	IsOnline() bool
	// Subscribe registers fn to be called on every status transition.
	// Callbacks run on the watcher goroutine and must not block.
	Subscribe(fn func(online bool))
}

// PollingMonitor probes the remote API on a fixed interval.
type PollingMonitor struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	logger   logging.Logger

	mu     sync.RWMutex
	online bool
	subs   []func(online bool)
}

func NewPollingMonitor(pinger Pinger, interval, timeout time.Duration, logger logging.Logger) *PollingMonitor {
	return &PollingMonitor{
		pinger:   pinger,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

func (m *PollingMonitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

func (m *PollingMonitor) Subscribe(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// CheckNow runs a single probe and applies the result. The watcher calls it
// on every tick; callers may invoke it directly for an immediate refresh.
func (m *PollingMonitor) CheckNow(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	err := m.pinger.Ping(probeCtx)
	cancel()

	online := err == nil
	m.setOnline(ctx, online)
	return online
}

// Start runs the polling loop until ctx is cancelled. An initial probe runs
// before the first tick so the status is meaningful right away.
func (m *PollingMonitor) Start(ctx context.Context) {
	m.CheckNow(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CheckNow(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *PollingMonitor) setOnline(ctx context.Context, online bool) {
	m.mu.Lock()
	changed := m.online != online
	m.online = online
	subs := m.subs
	m.mu.Unlock()

	if !changed {
		return
	}

	if online {
		m.logger.Info(ctx, "remote API reachable, switching to online mode")
	} else {
		m.logger.Warn(ctx, "remote API unreachable, switching to offline mode")
	}

	for _, fn := range subs {
		fn(online)
	}
}
