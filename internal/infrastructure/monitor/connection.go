package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CheckFunc reports whether a dependency answers.
type CheckFunc func(ctx context.Context) error

type check struct {
	name     string
	fn       CheckFunc
	required bool
	timeout  time.Duration
}

// Monitor periodically pings the provider, the database and the session
// store, and keeps the latest result for the health endpoint.
type Monitor struct {
	checks []check

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// Register adds a dependency check. Register before Start. A failing
// required check makes the monitor report offline.
func (m *Monitor) Register(name string, fn CheckFunc, required bool, timeout time.Duration) {
	if fn == nil {
		return
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	m.checks = append(m.checks, check{name: name, fn: fn, required: required, timeout: timeout})
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether every required dependency answered on the last check.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.checks {
		if c.required && !m.status.Services[c.name] {
			return false
		}
	}
	return true
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	services := make(map[string]bool, len(m.status.Services))
	for k, v := range m.status.Services {
		services[k] = v
	}
	return Status{Services: services, LastCheck: m.status.LastCheck}
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every check once.
func (m *Monitor) Refresh() {
	services := make(map[string]bool, len(m.checks))
	for _, c := range m.checks {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		err := c.fn(ctx)
		cancel()
		if err != nil {
			m.logger.Warn("dependency check failed", zap.String("service", c.name), zap.Error(err))
		}
		services[c.name] = err == nil
	}

	m.mu.Lock()
	m.status = Status{Services: services, LastCheck: time.Now()}
	m.mu.Unlock()
}
