package middleware

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/bizdesk/domain"
	"github.com/fastygo/bizdesk/internal/shell"
	"github.com/fastygo/bizdesk/usecase/auth"
)

const userKey = "bizdesk.user"

// StateFunc returns the auth controller's current state.
type StateFunc func() auth.State

// RenderFunc writes a view that is not the page router.
type RenderFunc func(ctx *fasthttp.RequestCtx, view shell.View)

// Shell gates page handlers on the auth state read at request time. Only the
// authenticated view reaches next; it finds the signed-in user with UserFrom.
func Shell(state StateFunc, render RenderFunc, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			current := state()
			view := shell.Resolve(current)
			if !view.Mounted() {
				logger.Debug("page router not mounted",
					zap.String("view", string(view.Kind)),
					zap.ByteString("path", ctx.Path()))
				render(ctx, view)
				return
			}

			ctx.SetUserValue(userKey, current.User)
			next(ctx)
		}
	}
}

// UserFrom returns the user stored by Shell, or nil outside the gate.
func UserFrom(ctx *fasthttp.RequestCtx) *domain.User {
	user, _ := ctx.UserValue(userKey).(*domain.User)
	return user
}
