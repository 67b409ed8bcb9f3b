package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/bizdesk/api/transport"
	"github.com/fastygo/bizdesk/domain"
	"github.com/fastygo/bizdesk/pkg/httpcontext"
	appLogger "github.com/fastygo/bizdesk/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	var vErr *transport.ValidationError
	if errors.As(err, &vErr) {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), err.Error(), vErr.Errors))
		return
	}

	status, code := mapError(err)
	env := transport.NewError(code, err.Error(), nil)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", string(ctx.Path())),
			zap.Int("status", status),
			zap.Stringer("response", env),
			zap.Error(err))
	}
	h.respondJSON(ctx, status, env)
}

// loggerFor returns the handler logger tagged with the request id.
func (h baseHandler) loggerFor(stdCtx context.Context) *zap.Logger {
	return appLogger.WithRequestID(stdCtx, h.logger)
}

// decode reads a JSON body into dst. Malformed bodies are domain.ErrInvalidPayload.
func decode(ctx *fasthttp.RequestCtx, dst interface{}) error {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		return domain.ErrInvalidPayload
	}
	return nil
}

func mapError(err error) (int, string) {
	if pErr, ok := domain.AsProviderError(err); ok {
		code := pErr.Code
		if code == "" {
			code = "PROVIDER_ERROR"
		}
		if pErr.Status >= http.StatusBadRequest && pErr.Status < http.StatusInternalServerError {
			return pErr.Status, code
		}
		return http.StatusBadGateway, code
	}

	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnconfigured):
		return http.StatusServiceUnavailable, string(domain.ErrCodeUnconfigured)
	case domain.IsDomainError(err, domain.ErrCodeUnavailable):
		return http.StatusServiceUnavailable, string(domain.ErrCodeUnavailable)
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}
