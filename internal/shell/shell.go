// Package shell decides which top-level view a request gets from the
// published auth state.
package shell

import (
	"net/http"

	"github.com/fastygo/bizdesk/domain"
	"github.com/fastygo/bizdesk/usecase/auth"
)

// ViewKind names a top-level view.
type ViewKind string

const (
	ViewLoading      ViewKind = "loading"
	ViewUnconfigured ViewKind = "unconfigured"
	ViewAuth         ViewKind = "auth"
	ViewApp          ViewKind = "app"
)

// RemediationMessage is shown while the provider is unconfigured or the
// session could not be retrieved.
const RemediationMessage = "Connect this app to its session provider: set SUPABASE_URL and SUPABASE_ANON_KEY, then restart."

// View is the resolved view with the HTTP status it is served with.
type View struct {
	Kind    ViewKind `json:"view"`
	Status  int      `json:"-"`
	Message string   `json:"message,omitempty"`
	Detail  string   `json:"detail,omitempty"`
}

// Mounted reports whether the page router runs for this view.
func (v View) Mounted() bool {
	return v.Kind == ViewApp
}

// Resolve picks the view for state. Checks run in priority order: loading,
// unconfigured or errored, unauthenticated, authenticated.
func Resolve(state auth.State) View {
	switch {
	case state.Loading:
		return View{Kind: ViewLoading, Status: http.StatusServiceUnavailable}
	case !state.Configured || state.Err != "":
		detail := state.Err
		if detail == "" {
			detail = domain.NotConfiguredMessage
		}
		return View{
			Kind:    ViewUnconfigured,
			Status:  http.StatusServiceUnavailable,
			Message: RemediationMessage,
			Detail:  detail,
		}
	case state.User == nil:
		return View{Kind: ViewAuth, Status: http.StatusUnauthorized}
	default:
		return View{Kind: ViewApp, Status: http.StatusOK}
	}
}
