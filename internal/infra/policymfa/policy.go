package policymfa

import (
	"context"

	"squircle/internal/config"
	"squircle/internal/domain"
)

// Decision is the outcome of evaluating the authentication-factor policy
// against the factors present on a validated session.
type Decision struct {
	Allow   bool     `json:"allow"`
	Missing []string `json:"missing"`
}

// Policy decides whether a set of factor kinds satisfies the local
// multi-factor rule. This is product policy layered on top of provider-level
// session validity, so it is kept behind an interface and swappable.
type Policy interface {
	Evaluate(ctx context.Context, factorKinds []string) (Decision, error)
}

// DefaultPolicy is the compiled-in rule: at least one knowledge factor
// (password) and at least one second factor (email OTP, SMS OTP, or TOTP).
type DefaultPolicy struct{}

func (DefaultPolicy) Evaluate(_ context.Context, factorKinds []string) (Decision, error) {
	hasKnowledge := false
	hasSecond := false
	for _, kind := range factorKinds {
		switch kind {
		case domain.FactorPassword:
			hasKnowledge = true
		case domain.FactorEmailOTP, domain.FactorSMSOTP, domain.FactorTOTP:
			hasSecond = true
		}
	}
	var missing []string
	if !hasKnowledge {
		missing = append(missing, "password")
	}
	if !hasSecond {
		missing = append(missing, "second_factor")
	}
	return Decision{Allow: len(missing) == 0, Missing: missing}, nil
}

// FromConfig selects the policy implementation: the rego engine when a
// bundle path is configured, otherwise the compiled-in default.
func FromConfig(ctx context.Context, cfg config.Config) (Policy, error) {
	if cfg.MFAPolicyBundlePath == "" {
		return DefaultPolicy{}, nil
	}
	return NewEngineFromBundlePath(ctx, cfg.MFAPolicyBundlePath)
}
