package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

// StopFunc releases one component during shutdown.
type StopFunc func(ctx context.Context) error

type component struct {
	name string
	stop StopFunc
}

// Manager tears components down in reverse registration order. Teardown runs
// once; repeated Shutdown calls return the first result.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu         sync.Mutex
	components []component
	stopping   bool

	once   sync.Once
	result error
}

func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{timeout: timeout, logger: logger.Named("lifecycle")}
}

// Register adds a component to release on shutdown. Registrations made after
// shutdown has begun are ignored.
func (m *Manager) Register(name string, stop StopFunc) {
	if stop == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopping {
		m.logger.Warn("component registered after shutdown", zap.String("component", name))
		return
	}
	m.components = append(m.components, component{name: name, stop: stop})
}

// Shutdown releases every registered component within the manager timeout and
// joins their errors.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.once.Do(func() {
		m.result = m.shutdown(ctx)
	})
	return m.result
}

func (m *Manager) shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.Lock()
	m.stopping = true
	components := m.components
	m.components = nil
	m.mu.Unlock()

	var result error
	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		started := time.Now()
		if err := c.stop(ctx); err != nil {
			m.logger.Error("component stop failed", zap.String("component", c.name), zap.Error(err))
			result = errors.Join(result, err)
			continue
		}
		m.logger.Info("component stopped",
			zap.String("component", c.name),
			zap.Duration("took", time.Since(started)))
	}
	return result
}

// Listen calls cancel on the first SIGINT or SIGTERM. The returned func stops
// listening without calling cancel.
func (m *Manager) Listen(cancel context.CancelFunc) (stop func()) {
	if cancel == nil {
		return func() {}
	}
	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
			cancel()
		case <-done:
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
