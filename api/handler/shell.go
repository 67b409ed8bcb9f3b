package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/bizdesk/api/transport"
	"github.com/fastygo/bizdesk/domain"
	"github.com/fastygo/bizdesk/internal/shell"
	"github.com/fastygo/bizdesk/pkg/httpcontext"
)

// ShellHandler renders the views shown instead of the page router.
type ShellHandler struct {
	baseHandler
}

func NewShellHandler(adapter *httpcontext.Adapter, logger *zap.Logger) *ShellHandler {
	return &ShellHandler{baseHandler: newBaseHandler(adapter, logger)}
}

type credentialEntry struct {
	SignIn        string   `json:"sign_in"`
	SignUp        string   `json:"sign_up"`
	BusinessTypes []string `json:"business_types"`
}

// Render writes view. It is the shell middleware's RenderFunc.
func (h *ShellHandler) Render(ctx *fasthttp.RequestCtx, view shell.View) {
	kind := string(view.Kind)
	switch view.Kind {
	case shell.ViewLoading:
		ctx.Response.Header.Set("Retry-After", "1")
		h.respondJSON(ctx, view.Status, transport.NewViewError(kind, kind, "loading", nil))
	case shell.ViewUnconfigured:
		h.respondJSON(ctx, view.Status, transport.NewViewError(kind, string(domain.ErrCodeUnconfigured), view.Message, view.Detail))
	case shell.ViewAuth:
		h.respondJSON(ctx, view.Status, transport.NewViewError(kind, string(domain.ErrCodeUnauthorized), "sign in to continue", credentialEntry{
			SignIn:        "POST /auth/sign-in",
			SignUp:        "POST /auth/sign-up",
			BusinessTypes: domain.BusinessTypes,
		}))
	default:
		h.respondJSON(ctx, http.StatusInternalServerError, transport.NewViewError(kind, string(domain.ErrCodeInternal), "unexpected view", nil))
	}
}

// Home redirects unknown page paths to the home page.
func (h *ShellHandler) Home(ctx *fasthttp.RequestCtx) {
	ctx.Redirect("/", fasthttp.StatusFound)
}
