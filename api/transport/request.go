package transport

import (
	"strings"

	"github.com/fastygo/bizdesk/domain"
)

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignUpRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	BusinessName string `json:"business_name" validate:"required,max=120"`
	BusinessType string `json:"business_type" validate:"required,business_type"`
	Phone        string `json:"phone" validate:"omitempty,max=32"`
	ReferralCode string `json:"referral_code" validate:"omitempty,max=32"`
}

// Normalize trims the free-text fields and lower-cases the email.
func (r *SignUpRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.BusinessName = strings.TrimSpace(r.BusinessName)
	r.BusinessType = strings.TrimSpace(r.BusinessType)
	r.Phone = strings.TrimSpace(r.Phone)
	r.ReferralCode = strings.ToUpper(strings.TrimSpace(r.ReferralCode))
}

// Fields returns the profile metadata carried by the form.
func (r SignUpRequest) Fields() domain.ProfileFields {
	return domain.ProfileFields{
		BusinessName: r.BusinessName,
		BusinessType: r.BusinessType,
		Phone:        r.Phone,
		ReferralCode: r.ReferralCode,
	}
}

func (r *SignInRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}
