package auth

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/bizdesk/domain"
)

// State is the controller's published view of authentication.
type State struct {
	User       *domain.User `json:"user"`
	Loading    bool         `json:"loading"`
	Err        string       `json:"error,omitempty"`
	Configured bool         `json:"configured"`
}

// Authenticated is true only for a configured provider with a current user.
func (s State) Authenticated() bool {
	return s.Configured && s.Err == "" && s.User != nil
}

// Controller bridges provider session changes to State and fronts the
// credential operations. Updates are applied in provider sequence order: an
// update older than the last applied one is discarded.
type Controller struct {
	configured bool
	provider   Provider
	profiles   ProfileWriter
	logger     *zap.Logger

	mu      sync.RWMutex
	state   State
	lastSeq uint64

	startOnce   sync.Once
	closeOnce   sync.Once
	closed      bool
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
}

// New builds a controller. configured is the provider configuration check,
// evaluated once by the caller at startup.
func New(configured bool, provider Provider, profiles ProfileWriter, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		configured: configured,
		provider:   provider,
		profiles:   profiles,
		logger:     logger.Named("auth"),
		state:      State{Loading: true, Configured: configured},
	}
}

// Start runs the initialization protocol once; later calls do nothing. The
// session fetch and the change subscription run in the background.
func (c *Controller) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		if !c.configured {
			c.mu.Lock()
			c.state.Err = domain.NotConfiguredMessage
			c.state.Loading = false
			c.mu.Unlock()
			c.logger.Warn("session provider not configured")
			return
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		fetchCtx, cancel := context.WithCancel(ctx)
		events, unsubscribe := c.provider.Subscribe()
		c.cancel = cancel
		c.unsubscribe = unsubscribe
		// Close waits on wg once it sees closed, so Add must happen under mu.
		c.wg.Add(2)
		c.mu.Unlock()

		go c.listen(events)
		go c.fetch(fetchCtx)
	})
}

func (c *Controller) listen(events <-chan domain.AuthEvent) {
	defer c.wg.Done()
	for ev := range events {
		if !c.apply(ev.Seq, ev.Session.UserOrNil()) {
			c.logger.Debug("stale auth event skipped",
				zap.String("event", string(ev.Kind)),
				zap.Uint64("seq", ev.Seq))
		}
	}
}

func (c *Controller) fetch(ctx context.Context) {
	defer c.wg.Done()

	snap, err := c.provider.GetSession(ctx)
	if err != nil {
		c.logger.Error("session retrieval failed", zap.Error(err))
		c.mu.Lock()
		c.state.Err = err.Error()
		if snap.Seq >= c.lastSeq {
			c.lastSeq = snap.Seq
			c.state.User = nil
		}
		c.state.Loading = false
		c.mu.Unlock()
		return
	}

	if !c.apply(snap.Seq, snap.Session.UserOrNil()) {
		c.logger.Debug("stale initial session skipped", zap.Uint64("seq", snap.Seq))
	}
}

// apply stores user when seq is not older than the last applied update.
func (c *Controller) apply(seq uint64, user *domain.User) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.lastSeq {
		return false
	}
	c.lastSeq = seq
	c.state.User = user
	c.state.Loading = false
	return true
}

// State returns a copy of the current published state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Close releases the change subscription and waits for the background work
// to stop. Safe to call more than once.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		cancel, unsubscribe := c.cancel, c.unsubscribe
		c.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if unsubscribe != nil {
			unsubscribe()
		}
		c.wg.Wait()
	})
}

// SignUp creates credentials and then, best effort, the business profile.
// A failed profile write is logged and does not fail the sign-up.
func (c *Controller) SignUp(ctx context.Context, email, password string, fields domain.ProfileFields) (*domain.SignUpResult, error) {
	if !c.configured {
		return nil, domain.ErrNotConfigured
	}

	result, err := c.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if result != nil && result.User != nil && c.profiles != nil {
		profile := domain.NewProfile(result.User, fields)
		if err := c.profiles.InsertProfile(ctx, profile); err != nil {
			c.logger.Warn("profile creation failed",
				zap.String("user_id", result.User.ID),
				zap.Error(err))
		}
	}
	return result, nil
}

// SignIn exchanges credentials for a session. Provider errors are returned
// as they are.
func (c *Controller) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	if !c.configured {
		return nil, domain.ErrNotConfigured
	}
	return c.provider.SignIn(ctx, email, password)
}

// SignOut ends the current session.
func (c *Controller) SignOut(ctx context.Context) error {
	if !c.configured {
		return domain.ErrNotConfigured
	}
	return c.provider.SignOut(ctx)
}
