// Package health tracks whether the analysis backend is reachable.
package health

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// State is the last observed connectivity of the backend.
type State string

const (
	StateUnknown State = "unknown"
	StateOnline  State = "online"
	StateOffline State = "offline"
)

const (
	DefaultInterval = 30 * time.Second
	DefaultTimeout  = 3 * time.Second
)

// Prober performs a single health check. A nil error means online.
type Prober interface {
	Probe(ctx context.Context) error
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context) error

func (f ProberFunc) Probe(ctx context.Context) error { return f(ctx) }

// Listener observes every completed probe.
type Listener func(state State, err error)

// Monitor owns the connectivity state. Only probes write it.
type Monitor struct {
	prober    Prober
	interval  time.Duration
	timeout   time.Duration
	now       func() time.Time
	logger    *slog.Logger
	listeners []Listener

	mu        sync.RWMutex
	state     State
	checkedAt time.Time
	lastErr   error

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval sets the period between scheduled probes.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithTimeout bounds each probe.
func WithTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithClock replaces time.Now, used for cache freshness.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the logger for state transitions.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithListener registers fn to be called after every probe, in probe order.
func WithListener(fn Listener) Option {
	return func(m *Monitor) {
		if fn != nil {
			m.listeners = append(m.listeners, fn)
		}
	}
}

// NewMonitor returns a monitor in the unknown state. Nothing runs until Start.
func NewMonitor(p Prober, opts ...Option) *Monitor {
	m := &Monitor{
		prober:   p,
		interval: DefaultInterval,
		timeout:  DefaultTimeout,
		now:      time.Now,
		logger:   slog.Default(),
		state:    StateUnknown,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Interval returns the probe period.
func (m *Monitor) Interval() time.Duration { return m.interval }

// State returns the last observed state.
func (m *Monitor) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Snapshot returns the last state, when it was observed and the error of that probe.
func (m *Monitor) Snapshot() (State, time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, m.checkedAt, m.lastErr
}

// Start probes immediately and then every interval until ctx is done or Stop is
// called. Calling Start on a running monitor does nothing.
func (m *Monitor) Start(ctx context.Context) {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		m.ProbeNow(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.ProbeNow(ctx)
			}
		}
	}()
}

// Stop cancels scheduled probes and waits for the loop to exit. It is safe to call
// more than once and on a monitor that was never started.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.runMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Wait blocks until a started loop exits, either through Stop or its context.
func (m *Monitor) Wait() {
	m.runMu.Lock()
	done := m.done
	m.runMu.Unlock()
	if done != nil {
		<-done
	}
}

// ProbeNow runs one bounded probe and records its outcome. If ctx is canceled
// before the probe completes the outcome is discarded and the previous state returned.
func (m *Monitor) ProbeNow(ctx context.Context) State {
	pctx, cancel := context.WithTimeout(ctx, m.timeout)
	err := m.prober.Probe(pctx)
	cancel()
	if ctx.Err() != nil {
		return m.State()
	}

	next := StateOnline
	if err != nil {
		next = StateOffline
	}
	m.mu.Lock()
	prev := m.state
	m.state = next
	m.checkedAt = m.now()
	m.lastErr = err
	m.mu.Unlock()

	if prev != next {
		if err != nil {
			m.logger.Warn("backend connectivity changed", "from", prev, "to", next, "err", err)
		} else {
			m.logger.Info("backend connectivity changed", "from", prev, "to", next)
		}
	} else {
		m.logger.Debug("backend probe", "state", next)
	}
	for _, fn := range m.listeners {
		fn(next, err)
	}
	return next
}

// Ensure returns the cached state when it is known and younger than one interval,
// otherwise it probes synchronously and returns that outcome.
func (m *Monitor) Ensure(ctx context.Context) State {
	state, at, _ := m.Snapshot()
	if state != StateUnknown && m.now().Sub(at) < m.interval {
		return state
	}
	return m.ProbeNow(ctx)
}
