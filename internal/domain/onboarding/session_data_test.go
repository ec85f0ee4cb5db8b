package onboarding

import (
	"errors"
	"testing"
)

func TestSessionDataValidate(t *testing.T) {
	tests := []struct {
		name    string
		data    SessionData
		step    int
		wantErr bool
	}{
		{
			name: "personal info present",
			data: SessionData{PersonalInfo: &PersonalInfo{Name: "Ada"}},
			step: StepPersonalInfo,
		},
		{
			name:    "personal info missing",
			data:    SessionData{},
			step:    StepPersonalInfo,
			wantErr: true,
		},
		{
			name:    "credentials without email",
			data:    SessionData{Credentials: &Credentials{}},
			step:    StepCredentials,
			wantErr: true,
		},
		{
			name: "payment present",
			data: SessionData{Payment: &PaymentMeta{StripeSessionID: "cs_1"}},
			step: StepPayment,
		},
		{
			name:    "unknown step",
			data:    SessionData{PersonalInfo: &PersonalInfo{Name: "Ada"}},
			step:    9,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate(tt.step)
			if tt.wantErr && !errors.Is(err, ErrInvalidData) {
				t.Fatalf("expected ErrInvalidData, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSessionDataMergeKeepsEarlierSteps(t *testing.T) {
	stored := SessionData{
		PersonalInfo: &PersonalInfo{Name: "Ada", Lastname: "Lovelace"},
	}
	incoming := SessionData{
		Credentials: &Credentials{Email: "ada@example.com"},
	}

	merged := stored.Merge(incoming)

	if merged.PersonalInfo == nil || merged.PersonalInfo.Name != "Ada" {
		t.Fatal("merge dropped the stored personal info")
	}
	if merged.Credentials == nil || merged.Credentials.Email != "ada@example.com" {
		t.Fatal("merge dropped the incoming credentials")
	}
}

func TestContactEmail(t *testing.T) {
	var empty SessionData
	if empty.ContactEmail() != nil {
		t.Fatal("no credentials means no contact email")
	}

	blank := SessionData{Credentials: &Credentials{Email: "   "}}
	if blank.ContactEmail() != nil {
		t.Fatal("whitespace email must not count as a contact address")
	}

	set := SessionData{Credentials: &Credentials{Email: "ada@example.com"}}
	if got := set.ContactEmail(); got == nil || *got != "ada@example.com" {
		t.Fatalf("ContactEmail = %v", got)
	}
}
