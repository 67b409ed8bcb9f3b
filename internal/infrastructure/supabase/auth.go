package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/bizdesk/domain"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         *domain.User `json:"user"`
}

func (c *Client) sessionFromToken(tr tokenResponse) *domain.Session {
	session := &domain.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
		User:         tr.User,
	}
	switch {
	case tr.ExpiresAt > 0:
		session.ExpiresAt = time.Unix(tr.ExpiresAt, 0).UTC()
	case tr.ExpiresIn > 0:
		session.ExpiresAt = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second).UTC()
	default:
		session.ExpiresAt = tokenExpiry(tr.AccessToken)
	}
	if session.User == nil {
		if claims, err := parseAccessToken(tr.AccessToken); err == nil {
			session.User = &domain.User{ID: claims.Subject, Email: claims.Email, Role: claims.Role}
		}
	}
	return session
}

// GetSession returns the current session, restoring it from the store on
// first use and refreshing it when it has expired. A session whose refresh
// token the provider rejects is dropped and reported as no session.
func (c *Client) GetSession(ctx context.Context) (domain.SessionSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadLocked(ctx); err != nil {
		return domain.SessionSnapshot{Seq: c.seq}, err
	}

	if c.session != nil && c.session.IsExpired(c.now()) {
		if err := c.refreshLocked(ctx); err != nil && !isSessionRejected(err) {
			return domain.SessionSnapshot{Seq: c.seq}, err
		}
	}
	return domain.SessionSnapshot{Session: c.session, Seq: c.seq}, nil
}

// SignUp registers new credentials. When the project auto-confirms emails the
// provider answers with a session and the client becomes signed in.
func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.SignUpResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var raw json.RawMessage
	if err := c.do(ctx, request{
		method: fasthttp.MethodPost,
		path:   "/auth/v1/signup",
		body:   credentials{Email: email, Password: password},
	}, &raw); err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		c.logger.Warn("sign-up accepted without a user in the response")
		return &domain.SignUpResult{}, nil
	}

	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, err
	}
	if tr.AccessToken != "" {
		session := c.sessionFromToken(tr)
		c.setSessionLocked(ctx, domain.EventSignedIn, session)
		return &domain.SignUpResult{User: session.User, Session: session}, nil
	}

	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, err
	}
	return &domain.SignUpResult{User: &user}, nil
}

// SignIn exchanges email and password for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var tr tokenResponse
	if err := c.do(ctx, request{
		method: fasthttp.MethodPost,
		path:   "/auth/v1/token?grant_type=password",
		body:   credentials{Email: email, Password: password},
	}, &tr); err != nil {
		return nil, err
	}

	session := c.sessionFromToken(tr)
	c.setSessionLocked(ctx, domain.EventSignedIn, session)
	return session, nil
}

// SignOut revokes the session at the provider and forgets it locally. A
// provider answer meaning the token is already dead still signs out.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadLocked(ctx); err != nil {
		c.logger.Warn("sign-out without restored session", zap.Error(err))
	}

	if c.session != nil {
		err := c.do(ctx, request{
			method: fasthttp.MethodPost,
			path:   "/auth/v1/logout",
			bearer: c.session.AccessToken,
		}, nil)
		if err != nil {
			pErr, ok := domain.AsProviderError(err)
			if !ok {
				return err
			}
			switch pErr.Status {
			case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
				c.logger.Debug("logout on dead token", zap.Int("status", pErr.Status))
			default:
				return err
			}
		}
	}

	c.setSessionLocked(ctx, domain.EventSignedOut, nil)
	return nil
}

// RefreshIfExpiring refreshes the current session when it expires within the
// configured margin. It returns whether a refresh happened.
func (c *Client) RefreshIfExpiring(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil || !c.session.ExpiresWithin(c.now(), c.cfg.RefreshMargin) {
		return false, nil
	}
	if err := c.refreshLocked(ctx); err != nil {
		return false, err
	}
	return c.session != nil, nil
}

// refreshLocked swaps the refresh token for a new session. A rejected refresh
// token signs the client out. Callers hold c.mu.
func (c *Client) refreshLocked(ctx context.Context) error {
	var tr tokenResponse
	err := c.do(ctx, request{
		method: fasthttp.MethodPost,
		path:   "/auth/v1/token?grant_type=refresh_token",
		body:   map[string]string{"refresh_token": c.session.RefreshToken},
	}, &tr)
	if err != nil {
		if isSessionRejected(err) {
			c.logger.Info("refresh token rejected, signing out", zap.Error(err))
			c.setSessionLocked(ctx, domain.EventSignedOut, nil)
		}
		return err
	}

	c.setSessionLocked(ctx, domain.EventTokenRefreshed, c.sessionFromToken(tr))
	return nil
}
