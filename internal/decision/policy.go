package decision

import (
	"context"

	"github.com/pfl-dev/paperfolio/internal/logger"
)

// Policy fuses the two decision paths: the external model under its strict
// JSON contract, and the deterministic rule engine when the model is
// unavailable or misbehaves. Both produce the same Decision shape; Source
// records which path won.
type Policy struct {
	model  Model // nil means no model configured
	rules  *RuleEngine
	logger *logger.Logger
}

func NewPolicy(model Model, log *logger.Logger) *Policy {
	return &Policy{
		model:  model,
		rules:  NewRuleEngine(),
		logger: log,
	}
}

// Decide never fails: any model-path problem degrades to the rule path with
// the original error recorded on the decision.
func (p *Policy) Decide(ctx context.Context, dc *Context) *Decision {
	// Stop loss overrides both paths.
	if dc.Risk.StopLossTriggered {
		return p.rules.Decide(dc)
	}

	var llmErr error
	if p.model != nil {
		if d, err := p.decideLLM(ctx, dc); err == nil {
			return d
		} else {
			llmErr = err
			p.logger.Warn("model path failed, using rule engine", "symbol", dc.Symbol, "error", err)
		}
	}

	d := p.rules.Decide(dc)
	if llmErr != nil {
		d.LLMError = llmErr.Error()
	}
	return d
}

func (p *Policy) decideLLM(ctx context.Context, dc *Context) (*Decision, error) {
	raw, err := p.model.Complete(ctx, systemPrompt, BuildUserPrompt(dc))
	if err != nil {
		return nil, err
	}

	parsed, err := ParseResponse(raw)
	if err != nil {
		return nil, err
	}

	reasoning := parsed.Reasoning
	if len(reasoning) > maxReasoningLen {
		reasoning = reasoning[:maxReasoningLen]
	}

	return &Decision{
		Symbol:     dc.Symbol,
		Action:     parsed.Action,
		Confidence: parsed.Confidence,
		Reasoning:  reasoning,
		Source:     SourceLLM,
	}, nil
}
