package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/bizdesk/api/handler"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Pages  *apiHandler.PageHandler
	Shell  *apiHandler.ShellHandler
	Health *apiHandler.HealthHandler
}

// New mounts the credential routes and the shell-gated page router.
func New(handlers Handlers, shellMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Credential routes
	r.POST("/auth/sign-in", handlers.Auth.SignIn)
	r.POST("/auth/sign-up", handlers.Auth.SignUp)
	r.POST("/auth/sign-out", handlers.Auth.SignOut)
	r.GET("/auth/state", handlers.Auth.State)

	// Page router
	r.GET("/", shellMiddleware(handlers.Pages.Home))
	r.GET("/bookings", shellMiddleware(handlers.Pages.Bookings))
	r.GET("/clients", shellMiddleware(handlers.Pages.Clients))
	r.GET("/invoices", shellMiddleware(handlers.Pages.Invoices))
	r.GET("/analytics", shellMiddleware(handlers.Pages.Analytics))

	notFound := shellMiddleware(handlers.Shell.Home)
	r.NotFound = func(ctx *fasthttp.RequestCtx) {
		if ctx.IsGet() {
			notFound(ctx)
			return
		}
		ctx.Error(fasthttp.StatusMessage(fasthttp.StatusNotFound), fasthttp.StatusNotFound)
	}

	return r
}
