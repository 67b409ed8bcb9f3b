package router

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/bizdesk/api/handler"
	"github.com/fastygo/bizdesk/api/transport"
	"github.com/fastygo/bizdesk/domain"
	"github.com/fastygo/bizdesk/internal/infrastructure/monitor"
	"github.com/fastygo/bizdesk/internal/middleware"
	authUC "github.com/fastygo/bizdesk/usecase/auth"
	pagesUC "github.com/fastygo/bizdesk/usecase/pages"
)

type fakeAuth struct {
	mu        sync.Mutex
	state     authUC.State
	signInErr error
	signUps   []domain.ProfileFields
}

func (f *fakeAuth) State() authUC.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeAuth) SignUp(_ context.Context, email, _ string, fields domain.ProfileFields) (*domain.SignUpResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signUps = append(f.signUps, fields)
	return &domain.SignUpResult{User: &domain.User{ID: "new-user", Email: email}}, nil
}

func (f *fakeAuth) SignIn(_ context.Context, email, _ string) (*domain.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	user := &domain.User{ID: "user-1", Email: email}
	f.mu.Lock()
	f.state.User = user
	f.mu.Unlock()
	return &domain.Session{User: user, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeAuth) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.state.Configured {
		return domain.ErrNotConfigured
	}
	f.state.User = nil
	return nil
}

func newTestRouter(auth *fakeAuth) fasthttp.RequestHandler {
	shellHandler := apiHandler.NewShellHandler(nil, nil)
	handlers := Handlers{
		Auth:   apiHandler.NewAuthHandler(auth, nil, nil, nil),
		Pages:  apiHandler.NewPageHandler(pagesUC.New(nil, nil, nil, nil, nil), nil, nil),
		Shell:  shellHandler,
		Health: apiHandler.NewHealthHandler(monitor.New(time.Minute, nil), nil, nil),
	}
	gate := middleware.Shell(auth.State, shellHandler.Render, nil)
	return New(handlers, gate).Handler
}

func serve(h fasthttp.RequestHandler, method, uri, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	ctx.Request.Header.SetHost("bizdesk.local")
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	h(ctx)
	return ctx
}

func envelope(t *testing.T, ctx *fasthttp.RequestCtx) transport.Envelope {
	t.Helper()
	var env transport.Envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	return env
}

func TestRouter_LoadingView(t *testing.T) {
	h := newTestRouter(&fakeAuth{state: authUC.State{Loading: true, Configured: true}})

	ctx := serve(h, fasthttp.MethodGet, "/bookings", "")
	assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode())
	assert.Equal(t, "1", string(ctx.Response.Header.Peek("Retry-After")))
	assert.Equal(t, "loading", envelope(t, ctx).Code)
}

func TestRouter_UnconfiguredView(t *testing.T) {
	auth := &fakeAuth{state: authUC.State{Err: domain.NotConfiguredMessage}}
	h := newTestRouter(auth)

	ctx := serve(h, fasthttp.MethodGet, "/", "")
	assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode())
	assert.Equal(t, string(domain.ErrCodeUnconfigured), envelope(t, ctx).Code)

	assert.Contains(t, string(ctx.Response.Body()), `"view":"unconfigured"`)

	ctx = serve(h, fasthttp.MethodPost, "/auth/sign-out", "")
	assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode())
}

func TestRouter_UnconfiguredWinsOverBadPayload(t *testing.T) {
	auth := &fakeAuth{state: authUC.State{Err: domain.NotConfiguredMessage}}
	h := newTestRouter(auth)

	for _, path := range []string{"/auth/sign-in", "/auth/sign-up"} {
		ctx := serve(h, fasthttp.MethodPost, path, `not json`)
		assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode(), path)
		assert.Equal(t, string(domain.ErrCodeUnconfigured), envelope(t, ctx).Code, path)

		ctx = serve(h, fasthttp.MethodPost, path, `{"email":"nope"}`)
		assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode(), path)
	}
	assert.Empty(t, auth.signUps)
}

func TestRouter_AuthViewThenSignIn(t *testing.T) {
	auth := &fakeAuth{state: authUC.State{Configured: true}}
	h := newTestRouter(auth)

	ctx := serve(h, fasthttp.MethodGet, "/clients", "")
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "Hair Stylist/Barber")

	ctx = serve(h, fasthttp.MethodPost, "/auth/sign-in", `{"email":"Owner@Example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "owner@example.com")

	// page data needs DATABASE_URL; the router is mounted though
	ctx = serve(h, fasthttp.MethodGet, "/clients", "")
	assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode())
	assert.Equal(t, string(domain.ErrCodeUnavailable), envelope(t, ctx).Code)

	ctx = serve(h, fasthttp.MethodGet, "/bookings?filter=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
}

func TestRouter_UnknownPathRedirectsHome(t *testing.T) {
	h := newTestRouter(&fakeAuth{state: authUC.State{Configured: true, User: &domain.User{ID: "user-1"}}})

	ctx := serve(h, fasthttp.MethodGet, "/ai-chat", "")
	assert.Equal(t, http.StatusFound, ctx.Response.StatusCode())
	assert.True(t, strings.HasSuffix(string(ctx.Response.Header.Peek("Location")), "/"))

	ctx = serve(h, fasthttp.MethodDelete, "/ai-chat", "")
	assert.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())
}

func TestRouter_SignInProviderError(t *testing.T) {
	auth := &fakeAuth{
		state:     authUC.State{Configured: true},
		signInErr: &domain.ProviderError{Status: 400, Code: "invalid_grant", Message: "Invalid login credentials"},
	}
	h := newTestRouter(auth)

	ctx := serve(h, fasthttp.MethodPost, "/auth/sign-in", `{"email":"owner@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	env := envelope(t, ctx)
	assert.Equal(t, "invalid_grant", env.Code)
	assert.Equal(t, "Invalid login credentials", env.Error)
}

func TestRouter_SignUpValidation(t *testing.T) {
	auth := &fakeAuth{state: authUC.State{Configured: true}}
	h := newTestRouter(auth)

	ctx := serve(h, fasthttp.MethodPost, "/auth/sign-up", `{"email":"owner@example.com","password":"123"}`)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	assert.Empty(t, auth.signUps)

	ctx = serve(h, fasthttp.MethodPost, "/auth/sign-up", `not json`)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	ctx = serve(h, fasthttp.MethodPost, "/auth/sign-up",
		`{"email":"owner@example.com","password":"secret1","business_name":"Ada Styles","business_type":"Photography"}`)
	assert.Equal(t, http.StatusCreated, ctx.Response.StatusCode())
	require.Len(t, auth.signUps, 1)
	assert.Equal(t, "Ada Styles", auth.signUps[0].BusinessName)
	assert.Contains(t, string(ctx.Response.Body()), `"confirmation_needed":true`)
}

func TestRouter_StateAndHealth(t *testing.T) {
	h := newTestRouter(&fakeAuth{state: authUC.State{Configured: true}})

	ctx := serve(h, fasthttp.MethodGet, "/auth/state", "")
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), `"view":"auth"`)

	ctx = serve(h, fasthttp.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
}
