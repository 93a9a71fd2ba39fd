package session

import (
	"context"
	"errors"
	"strings"

	"squircle/internal/domain"
	"squircle/internal/infra/identity"
	"squircle/internal/infra/policymfa"

	"github.com/rs/zerolog"
)

// SessionAPI is the slice of the identity service this authenticator needs.
type SessionAPI interface {
	AuthenticateSession(ctx context.Context, sessionToken string) (*identity.SessionAuthenticateResponse, error)
}

// Authenticator delegates session validity to the identity service, then
// applies the local factor policy as an explicit post-check. Provider-level
// validity alone is not enough to admit a request.
type Authenticator struct {
	api    SessionAPI
	policy policymfa.Policy
	log    zerolog.Logger
}

func New(api SessionAPI, policy policymfa.Policy, log zerolog.Logger) *Authenticator {
	if policy == nil {
		policy = policymfa.DefaultPolicy{}
	}
	return &Authenticator{api: api, policy: policy, log: log}
}

func (a *Authenticator) Authenticate(ctx context.Context, sessionToken string) (domain.Principal, error) {
	if a == nil || a.api == nil {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	if strings.TrimSpace(sessionToken) == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}

	resp, err := a.api.AuthenticateSession(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			a.log.Warn().Err(err).Msg("identity service unavailable during session authenticate")
			return domain.Principal{}, err
		}
		a.log.Debug().Msg("session rejected by identity service")
		return domain.Principal{}, domain.ErrUnauthorized
	}

	decision, err := a.policy.Evaluate(ctx, resp.MemberSession.FactorKinds())
	if err != nil {
		// Fail closed: an unevaluable policy never admits a session.
		a.log.Error().Err(err).Msg("factor policy evaluation failed")
		return domain.Principal{}, domain.ErrUnauthorized
	}
	if !decision.Allow {
		a.log.Debug().
			Strs("missing", decision.Missing).
			Str("member_id", resp.Member.MemberID).
			Msg("session lacks required authentication factors")
		return domain.Principal{}, domain.ErrInsufficientFactors
	}

	return principalFromResponse(resp), nil
}

func principalFromResponse(resp *identity.SessionAuthenticateResponse) domain.Principal {
	principal := domain.Principal{
		MemberID:       resp.Member.MemberID,
		OrganizationID: resp.Member.OrganizationID,
		EmailAddress:   resp.Member.EmailAddress,
		Roles:          resp.MemberSession.Roles,
	}
	if principal.MemberID == "" {
		principal.MemberID = resp.MemberSession.MemberID
	}
	if principal.OrganizationID == "" {
		principal.OrganizationID = resp.MemberSession.OrganizationID
	}
	if len(principal.Roles) == 0 {
		principal.Roles = resp.Member.RoleIDs()
	}
	return principal
}
