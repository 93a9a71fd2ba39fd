package policymfa

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/open-policy-agent/opa/rego"
)

const defaultQuery = "data.squircle.mfa.result"

// Engine evaluates the factor policy from a rego bundle. The bundle must
// define data.squircle.mfa.result as {"allow": bool, "missing": [string]}.
type Engine struct {
	query rego.PreparedEvalQuery
}

type policyInput struct {
	Factors []string `json:"factors"`
}

func NewEngineFromBundlePath(ctx context.Context, bundlePath string) (*Engine, error) {
	if bundlePath == "" {
		return nil, errors.New("policy bundle path is required")
	}
	r := rego.New(
		rego.Query(defaultQuery),
		rego.StrictBuiltinErrors(true),
		rego.Load([]string{bundlePath}, nil),
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{query: prepared}, nil
}

func (e *Engine) Evaluate(ctx context.Context, factorKinds []string) (Decision, error) {
	if e == nil {
		return Decision{}, errors.New("policy engine is nil")
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(policyInput{Factors: factorKinds}))
	if err != nil {
		return Decision{}, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Decision{}, errors.New("empty policy result")
	}
	return decodeDecision(results[0].Expressions[0].Value)
}

func decodeDecision(value any) (Decision, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return Decision{}, err
	}
	var decision Decision
	if err := json.Unmarshal(payload, &decision); err != nil {
		return Decision{}, err
	}
	return decision, nil
}
