package supabase

import (
	"context"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/bizdesk/domain"
)

type profileRow struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	BusinessName string `json:"business_name"`
	BusinessType string `json:"business_type"`
	Phone        string `json:"phone,omitempty"`
	ReferralCode string `json:"referral_code"`
}

// InsertProfile writes a row to the profiles table through the row API,
// authorized as the current session when there is one.
func (c *Client) InsertProfile(ctx context.Context, profile *domain.Profile) error {
	if profile == nil || profile.ID == "" {
		return domain.ErrInvalidPayload
	}

	c.mu.Lock()
	bearer := ""
	if c.session != nil {
		bearer = c.session.AccessToken
	}
	c.mu.Unlock()

	return c.do(ctx, request{
		method: fasthttp.MethodPost,
		path:   "/rest/v1/profiles",
		bearer: bearer,
		prefer: "return=minimal",
		body: profileRow{
			ID:           profile.ID,
			Email:        profile.Email,
			BusinessName: profile.BusinessName,
			BusinessType: profile.BusinessType,
			Phone:        profile.Phone,
			ReferralCode: profile.ReferralCode,
		},
	}, nil)
}
