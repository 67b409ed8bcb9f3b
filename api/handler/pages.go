package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/bizdesk/domain"
	"github.com/fastygo/bizdesk/internal/middleware"
	"github.com/fastygo/bizdesk/pkg/httpcontext"
	pagesUC "github.com/fastygo/bizdesk/usecase/pages"
)

type PageHandler struct {
	baseHandler
	pages *pagesUC.UseCase
}

func NewPageHandler(pages *pagesUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		baseHandler: newBaseHandler(adapter, logger),
		pages:       pages,
	}
}

func (h *PageHandler) userID(ctx *fasthttp.RequestCtx) (string, bool) {
	user := middleware.UserFrom(ctx)
	if user == nil || user.ID == "" {
		h.respondError(ctx, domain.ErrNoSession)
		return "", false
	}
	return user.ID, true
}

func pagination(ctx *fasthttp.RequestCtx) (int, int) {
	args := ctx.QueryArgs()
	return args.GetUintOrZero("limit"), args.GetUintOrZero("offset")
}

// @Summary Home summary
// @Tags pages
// @Router / [get]
func (h *PageHandler) Home(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	home, err := h.pages.Home(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, home)
}

// @Summary List bookings (filter=all|today|upcoming)
// @Tags pages
// @Router /bookings [get]
func (h *PageHandler) Bookings(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	scope, err := pagesUC.ParseBookingScope(string(ctx.QueryArgs().Peek("filter")))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	bookings, err := h.pages.Bookings(stdCtx, userID, scope)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"filter":   scope,
		"bookings": bookings,
	})
}

// @Summary Search clients by name or phone
// @Tags pages
// @Router /clients [get]
func (h *PageHandler) Clients(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	limit, offset := pagination(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	page, err := h.pages.Clients(stdCtx, userID, string(ctx.QueryArgs().Peek("q")), limit, offset)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, page)
}

// @Summary List invoices
// @Tags pages
// @Router /invoices [get]
func (h *PageHandler) Invoices(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	limit, offset := pagination(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	invoices, err := h.pages.Invoices(stdCtx, userID, limit, offset)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, invoices)
}

// @Summary Business analytics
// @Tags pages
// @Router /analytics [get]
func (h *PageHandler) Analytics(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	analytics, err := h.pages.Analytics(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, analytics)
}
