package onboarding

import (
	"errors"
	"strings"
)

// Wizard steps, in order. A session's current_step is the furthest
// step the user has reached.
const (
	StepPersonalInfo = 1
	StepCredentials  = 2
	StepPayment      = 3
)

type PersonalInfo struct {
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
	Company  string `json:"company,omitempty"`
	Tel      string `json:"tel,omitempty"`
}

type Credentials struct {
	Email string `json:"email"`
	// Plaintext password as submitted by the wizard. The tracker hashes it
	// into PasswordHash before the row is written; it never reaches the DB.
	Password     string `json:"password,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
}

type PaymentMeta struct {
	StripeSessionID string `json:"stripe_session_id"`
	PriceID         string `json:"price_id,omitempty"`
}

// SessionData holds one optional variant per wizard step instead of a
// free-form blob, so the shape is checked at every save boundary.
type SessionData struct {
	PersonalInfo *PersonalInfo `json:"personal_info,omitempty"`
	Credentials  *Credentials  `json:"credentials,omitempty"`
	Payment      *PaymentMeta  `json:"payment,omitempty"`
}

var ErrInvalidData = errors.New("session data does not match wizard step")

// Validate checks that the variant for the given step is present and
// minimally filled. Earlier steps' variants may also be present.
func (d SessionData) Validate(step int) error {
	switch step {
	case StepPersonalInfo:
		if d.PersonalInfo == nil || strings.TrimSpace(d.PersonalInfo.Name) == "" {
			return ErrInvalidData
		}
	case StepCredentials:
		if d.Credentials == nil || strings.TrimSpace(d.Credentials.Email) == "" {
			return ErrInvalidData
		}
	case StepPayment:
		if d.Payment == nil || strings.TrimSpace(d.Payment.StripeSessionID) == "" {
			return ErrInvalidData
		}
	default:
		return ErrInvalidData
	}
	return nil
}

// Merge overlays non-nil variants of incoming onto d. Variants the client
// did not send this save keep their stored value.
func (d SessionData) Merge(incoming SessionData) SessionData {
	out := d
	if incoming.PersonalInfo != nil {
		out.PersonalInfo = incoming.PersonalInfo
	}
	if incoming.Credentials != nil {
		out.Credentials = incoming.Credentials
	}
	if incoming.Payment != nil {
		out.Payment = incoming.Payment
	}
	return out
}

// ContactEmail returns the address collected at the credentials step, if any.
func (d SessionData) ContactEmail() *string {
	if d.Credentials == nil {
		return nil
	}
	email := strings.TrimSpace(d.Credentials.Email)
	if email == "" {
		return nil
	}
	return &email
}

// StripeSession returns the payment-session correlation key, if any.
func (d SessionData) StripeSession() *string {
	if d.Payment == nil {
		return nil
	}
	id := strings.TrimSpace(d.Payment.StripeSessionID)
	if id == "" {
		return nil
	}
	return &id
}
