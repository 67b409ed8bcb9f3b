package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/bizdesk/api/transport"
	"github.com/fastygo/bizdesk/domain"
	"github.com/fastygo/bizdesk/internal/shell"
	"github.com/fastygo/bizdesk/pkg/httpcontext"
	authUC "github.com/fastygo/bizdesk/usecase/auth"
)

// Authenticator is the part of the auth controller the handlers use.
type Authenticator interface {
	State() authUC.State
	SignUp(ctx context.Context, email, password string, fields domain.ProfileFields) (*domain.SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context) error
}

type AuthHandler struct {
	baseHandler
	auth      Authenticator
	validator *transport.Validator
}

func NewAuthHandler(auth Authenticator, validator *transport.Validator, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	if validator == nil {
		validator = transport.NewValidator()
	}
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		auth:        auth,
		validator:   validator,
	}
}

type sessionView struct {
	User      *domain.User `json:"user"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}

func newSessionView(user *domain.User, session *domain.Session) sessionView {
	view := sessionView{User: user}
	if session != nil {
		expires := session.ExpiresAt
		view.ExpiresAt = &expires
	}
	return view
}

// configured answers ErrNotConfigured when the provider is missing, ahead of
// any payload checks.
func (h *AuthHandler) configured(ctx *fasthttp.RequestCtx) bool {
	if h.auth.State().Configured {
		return true
	}
	h.respondError(ctx, domain.ErrNotConfigured)
	return false
}

// @Summary Sign in with email and password
// @Tags auth
// @Router /auth/sign-in [post]
func (h *AuthHandler) SignIn(ctx *fasthttp.RequestCtx) {
	if !h.configured(ctx) {
		return
	}
	var req transport.SignInRequest
	if err := decode(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}
	req.Normalize()
	if err := h.validator.Validate(req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.auth.SignIn(stdCtx, req.Email, req.Password)
	if err != nil {
		h.loggerFor(stdCtx).Info("sign-in rejected", zap.Error(err))
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, newSessionView(session.User, session))
}

// @Summary Register a business owner
// @Tags auth
// @Router /auth/sign-up [post]
func (h *AuthHandler) SignUp(ctx *fasthttp.RequestCtx) {
	if !h.configured(ctx) {
		return
	}
	var req transport.SignUpRequest
	if err := decode(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}
	req.Normalize()
	if err := h.validator.Validate(req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.auth.SignUp(stdCtx, req.Email, req.Password, req.Fields())
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	payload := map[string]interface{}{
		"user":                result.User,
		"confirmation_needed": result.Session == nil,
	}
	if result.Session != nil {
		payload["expires_at"] = result.Session.ExpiresAt
	}
	h.respondSuccess(ctx, http.StatusCreated, payload)
}

// @Summary Sign out
// @Tags auth
// @Router /auth/sign-out [post]
func (h *AuthHandler) SignOut(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.auth.SignOut(stdCtx); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]bool{"signed_out": true})
}

// @Summary Current auth state and resolved view
// @Tags auth
// @Router /auth/state [get]
func (h *AuthHandler) State(ctx *fasthttp.RequestCtx) {
	state := h.auth.State()
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"state": state,
		"view":  shell.Resolve(state).Kind,
	})
}
