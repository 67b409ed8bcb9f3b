package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/bizdesk/domain"
	"github.com/fastygo/bizdesk/repository"
)

// Config holds the connection parameters for the hosted project.
type Config struct {
	URL           string
	AnonKey       string
	JWTSecret     string
	Timeout       time.Duration
	RefreshMargin time.Duration
}

// Client talks to a GoTrue-compatible auth API and a PostgREST-compatible row
// API. It owns the current session: every change is persisted, stamped with
// the next sequence number and published to subscribers while mu is held, so
// subscribers observe changes in sequence order.
type Client struct {
	cfg    Config
	http   *fasthttp.Client
	store  repository.SessionStore
	hub    *hub
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	session *domain.Session
	loaded  bool
	seq     uint64
}

// New builds a provider client. store may be nil, in which case the session
// only lives in memory.
func New(cfg Config, store repository.SessionStore, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RefreshMargin <= 0 {
		cfg.RefreshMargin = 90 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg: cfg,
		http: &fasthttp.Client{
			Name:                "bizdesk",
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxIdleConnDuration: 90 * time.Second,
		},
		store:  store,
		hub:    newHub(logger),
		logger: logger.Named("supabase"),
		now:    time.Now,
	}
}

// Close releases every subscription. The client must not be used afterwards.
func (c *Client) Close() {
	c.hub.closeAll()
	c.http.CloseIdleConnections()
}

// Subscribe registers for session change notifications. The returned function
// releases the subscription; calling it more than once is safe.
func (c *Client) Subscribe() (<-chan domain.AuthEvent, func()) {
	return c.hub.subscribe()
}

// Ping checks that the auth API answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, request{method: fasthttp.MethodGet, path: "/auth/v1/health"}, nil)
}

type request struct {
	method string
	path   string
	bearer string
	body   interface{}
	prefer string
}

// do performs one API call. Non-2xx answers become *domain.ProviderError with
// the provider's message; transport failures are classified as unavailable.
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.cfg.URL + r.path)
	req.Header.SetMethod(r.method)
	req.Header.Set("apikey", c.cfg.AnonKey)
	bearer := r.bearer
	if bearer == "" {
		bearer = c.cfg.AnonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("X-Client-Info", "bizdesk-go")
	if r.prefer != "" {
		req.Header.Set("Prefer", r.prefer)
	}
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return err
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	deadline := c.now().Add(c.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "failed to connect to session provider", err)
	}

	status := resp.StatusCode()
	if status >= http.StatusBadRequest {
		return decodeError(status, resp.Body())
	}
	if out == nil || status == http.StatusNoContent || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s response: %w", r.path, err)
	}
	return nil
}

type errorBody struct {
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	ErrorCode        string          `json:"error_code"`
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	Code             json.RawMessage `json:"code"`
}

func decodeError(status int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	pErr := &domain.ProviderError{Status: status}
	for _, msg := range []string{eb.ErrorDescription, eb.Msg, eb.Message, eb.Error} {
		if msg != "" {
			pErr.Message = msg
			break
		}
	}
	if pErr.Message == "" {
		pErr.Message = http.StatusText(status)
	}

	pErr.Code = eb.ErrorCode
	if pErr.Code == "" {
		var code string
		if json.Unmarshal(eb.Code, &code) == nil {
			pErr.Code = code
		}
	}
	if pErr.Code == "" {
		pErr.Code = eb.Error
	}
	return pErr
}

// isSessionRejected reports whether err means the provider no longer accepts
// the session's tokens, as opposed to being unreachable.
func isSessionRejected(err error) bool {
	pErr, ok := domain.AsProviderError(err)
	if !ok {
		return false
	}
	return pErr.Status >= http.StatusBadRequest && pErr.Status < http.StatusInternalServerError
}

// setSessionLocked replaces the current session, persists it and publishes
// kind. Callers hold c.mu.
func (c *Client) setSessionLocked(ctx context.Context, kind domain.AuthEventKind, session *domain.Session) {
	c.session = session
	c.loaded = true
	c.seq++

	if c.store != nil {
		var err error
		if session == nil {
			err = c.store.Delete(ctx)
		} else {
			err = c.store.Save(ctx, session)
		}
		if err != nil {
			c.logger.Warn("session persistence failed", zap.String("event", string(kind)), zap.Error(err))
		}
	}

	c.hub.publish(domain.AuthEvent{Kind: kind, Session: session, Seq: c.seq})
	c.logger.Debug("auth state changed", zap.String("event", string(kind)), zap.Uint64("seq", c.seq))
}

// loadLocked restores the persisted session once per client. Callers hold c.mu.
func (c *Client) loadLocked(ctx context.Context) error {
	if c.loaded || c.store == nil {
		c.loaded = true
		return nil
	}
	stored, err := c.store.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.loaded = true
			return nil
		}
		return fmt.Errorf("restore session: %w", err)
	}
	c.loaded = true
	if err := c.verifyAccessToken(stored.AccessToken); err != nil {
		c.logger.Warn("discarding stored session", zap.Error(err))
		if delErr := c.store.Delete(ctx); delErr != nil {
			c.logger.Warn("stored session cleanup failed", zap.Error(delErr))
		}
		return nil
	}
	c.session = stored
	c.seq++
	c.hub.publish(domain.AuthEvent{Kind: domain.EventInitialSession, Session: stored, Seq: c.seq})
	return nil
}
