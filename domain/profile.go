package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BusinessTypes lists the categories offered on the sign-up form.
var BusinessTypes = []string{
	"Tailor/Fashion Designer",
	"Hair Stylist/Barber",
	"Food Vendor/Catering",
	"POS Agent",
	"Beauty Services",
	"Repair Services",
	"Photography",
	"Other",
}

// ProfileFields is the business metadata captured at sign-up.
type ProfileFields struct {
	BusinessName string `json:"business_name"`
	BusinessType string `json:"business_type"`
	Phone        string `json:"phone"`
	ReferralCode string `json:"referral_code"`
}

// Profile is the business record keyed by the user id. It is not required
// for authentication.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	ProfileFields
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// NewProfile builds the profile row for a freshly created user.
func NewProfile(user *User, fields ProfileFields) *Profile {
	if fields.ReferralCode == "" {
		fields.ReferralCode = NewReferralCode()
	}
	return &Profile{
		ID:            user.ID,
		Email:         user.Email,
		ProfileFields: fields,
	}
}

// NewReferralCode returns an eight character upper-case code.
func NewReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:8])
}
