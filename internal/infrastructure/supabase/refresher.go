package supabase

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher keeps the client's session alive by refreshing it shortly before
// the access token expires.
type Refresher struct {
	client *Client
	cron   *cron.Cron
	tick   time.Duration
	logger *zap.Logger
}

// NewRefresher schedules a refresh check every tick.
func NewRefresher(client *Client, tick time.Duration, logger *zap.Logger) *Refresher {
	if tick <= 0 {
		tick = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Refresher{
		client: client,
		cron:   cron.New(cron.WithSeconds()),
		tick:   tick,
		logger: logger,
	}

	r.cron.Schedule(cron.Every(tick), cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), tick)
		defer cancel()
		r.Tick(ctx)
	}))

	return r
}

// Tick runs one refresh check.
func (r *Refresher) Tick(ctx context.Context) {
	refreshed, err := r.client.RefreshIfExpiring(ctx)
	if err != nil {
		r.logger.Warn("session auto-refresh failed", zap.Error(err))
		return
	}
	if refreshed {
		r.logger.Debug("session refreshed")
	}
}

// Start launches the cron scheduler.
func (r *Refresher) Start() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Start()
	r.logger.Info("session auto-refresh started", zap.Duration("tick", r.tick))
}

// Stop gracefully stops the scheduler.
func (r *Refresher) Stop(ctx context.Context) {
	if r == nil || r.cron == nil {
		return
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("session auto-refresh stopped")
}
