package session

import (
	"context"
	"errors"
	"testing"

	"squircle/internal/domain"
	"squircle/internal/infra/identity"
	"squircle/internal/infra/policymfa"

	"github.com/rs/zerolog"
)

type fakeSessionAPI struct {
	resp  *identity.SessionAuthenticateResponse
	err   error
	calls int
}

func (f *fakeSessionAPI) AuthenticateSession(_ context.Context, _ string) (*identity.SessionAuthenticateResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type failingPolicy struct{}

func (failingPolicy) Evaluate(_ context.Context, _ []string) (policymfa.Decision, error) {
	return policymfa.Decision{}, errors.New("bundle broken")
}

func sessionResponse(factorKinds ...string) *identity.SessionAuthenticateResponse {
	factors := make([]domain.AuthenticationFactor, 0, len(factorKinds))
	for _, kind := range factorKinds {
		factors = append(factors, domain.AuthenticationFactor{Type: kind})
	}
	return &identity.SessionAuthenticateResponse{
		Member: domain.Member{
			MemberID:       "member-1",
			OrganizationID: "org-1",
			EmailAddress:   "ada@example.com",
			Roles:          []domain.MemberRole{{RoleID: "stytch_member"}},
		},
		MemberSession: domain.MemberSession{
			MemberID:              "member-1",
			OrganizationID:        "org-1",
			Roles:                 []string{"stytch_member"},
			AuthenticationFactors: factors,
		},
	}
}

func TestAuthenticateFactorPolicy(t *testing.T) {
	cases := []struct {
		name    string
		factors []string
		wantErr error
	}{
		{"password only", []string{domain.FactorPassword}, domain.ErrInsufficientFactors},
		{"second factor only", []string{domain.FactorTOTP}, domain.ErrInsufficientFactors},
		{"three possession factors no password", []string{domain.FactorEmailOTP, domain.FactorSMSOTP, domain.FactorTOTP}, domain.ErrInsufficientFactors},
		{"password and email otp", []string{domain.FactorPassword, domain.FactorEmailOTP}, nil},
		{"password and sms otp", []string{domain.FactorPassword, domain.FactorSMSOTP}, nil},
		{"password and totp", []string{domain.FactorPassword, domain.FactorTOTP}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeSessionAPI{resp: sessionResponse(tc.factors...)}
			auth := New(api, nil, zerolog.Nop())

			principal, err := auth.Authenticate(context.Background(), "session-token")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("authenticate: %v", err)
			}
			if principal.MemberID != "member-1" || principal.OrganizationID != "org-1" {
				t.Fatalf("unexpected principal: %+v", principal)
			}
			if len(principal.Roles) != 1 || principal.Roles[0] != "stytch_member" {
				t.Fatalf("unexpected roles: %v", principal.Roles)
			}
		})
	}
}

func TestAuthenticateEmptyTokenSkipsProvider(t *testing.T) {
	api := &fakeSessionAPI{resp: sessionResponse(domain.FactorPassword, domain.FactorTOTP)}
	auth := New(api, nil, zerolog.Nop())

	if _, err := auth.Authenticate(context.Background(), "  "); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if api.calls != 0 {
		t.Fatalf("identity service called %d times for empty token", api.calls)
	}
}

func TestAuthenticateProviderRejection(t *testing.T) {
	api := &fakeSessionAPI{err: domain.ErrUnauthorized}
	auth := New(api, nil, zerolog.Nop())

	if _, err := auth.Authenticate(context.Background(), "bad-token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestAuthenticateUpstreamUnavailable(t *testing.T) {
	api := &fakeSessionAPI{err: domain.ErrUpstreamUnavailable}
	auth := New(api, nil, zerolog.Nop())

	if _, err := auth.Authenticate(context.Background(), "token"); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestAuthenticateFailsClosedOnPolicyError(t *testing.T) {
	api := &fakeSessionAPI{resp: sessionResponse(domain.FactorPassword, domain.FactorTOTP)}
	auth := New(api, failingPolicy{}, zerolog.Nop())

	if _, err := auth.Authenticate(context.Background(), "token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized on policy failure", err)
	}
}

func TestPrincipalFallsBackToMemberRoles(t *testing.T) {
	resp := sessionResponse(domain.FactorPassword, domain.FactorTOTP)
	resp.MemberSession.Roles = nil
	resp.Member.Roles = []domain.MemberRole{{RoleID: domain.AdminRoleID}}
	api := &fakeSessionAPI{resp: resp}
	auth := New(api, nil, zerolog.Nop())

	principal, err := auth.Authenticate(context.Background(), "token")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if len(principal.Roles) != 1 || principal.Roles[0] != domain.AdminRoleID {
		t.Fatalf("unexpected roles: %v", principal.Roles)
	}
}
