package semantic

import (
	"github.com/howard-nolan/llmgateway/internal/uir"
)

// Default multipliers/threshold per spec §4.3. Exposed as package vars
// (not consts) so a deployment can override them — see DESIGN.md's Open
// Question decision #2.
var (
	DefaultMaxTokens        int64 = 8192
	EffortLowMultiplier           = 0.20
	EffortMediumMultiplier        = 0.50
	EffortHighMultiplier          = 0.80
	MinBudgetTokens         int64 = 1024

	BudgetLowThreshold    = 0.35
	BudgetMediumThreshold = 0.65
)

// ReasoningConverter bundles the effort<->budget multipliers so callers
// can build one with overridden constants without touching the package
// defaults.
type ReasoningConverter struct {
	LowMultiplier, MediumMultiplier, HighMultiplier float64
	LowThreshold, MediumThreshold                   float64
	MinBudget                                       int64
	DefaultMaxTokens                                int64
}

// NewReasoningConverter builds a converter using the spec-defined
// defaults.
func NewReasoningConverter() *ReasoningConverter {
	return &ReasoningConverter{
		LowMultiplier:     EffortLowMultiplier,
		MediumMultiplier:  EffortMediumMultiplier,
		HighMultiplier:    EffortHighMultiplier,
		LowThreshold:      BudgetLowThreshold,
		MediumThreshold:   BudgetMediumThreshold,
		MinBudget:         MinBudgetTokens,
		DefaultMaxTokens:  DefaultMaxTokens,
	}
}

// EffortToBudget converts an OpenAI-style effort level to a token budget,
// given the caller's max_tokens (or the converter's default when maxTokens
// is nil) — spec §4.3: Low -> 0.20*M, Medium -> 0.50*M, High -> 0.80*M,
// floored at MinBudget.
func (c *ReasoningConverter) EffortToBudget(effort uir.ReasoningEffort, maxTokens *int64) int64 {
	m := c.DefaultMaxTokens
	if maxTokens != nil {
		m = *maxTokens
	}
	var mult float64
	switch effort {
	case uir.ReasoningLow:
		mult = c.LowMultiplier
	case uir.ReasoningMedium:
		mult = c.MediumMultiplier
	case uir.ReasoningHigh:
		mult = c.HighMultiplier
	default:
		mult = c.MediumMultiplier
	}
	budget := int64(float64(m) * mult)
	if budget < c.MinBudget {
		budget = c.MinBudget
	}
	return budget
}

// BudgetToEffort is the inverse threshold-based conversion: < 0.35*M ->
// Low, < 0.65*M -> Medium, else High.
func (c *ReasoningConverter) BudgetToEffort(budget int64, maxTokens *int64) uir.ReasoningEffort {
	m := c.DefaultMaxTokens
	if maxTokens != nil {
		m = *maxTokens
	}
	ratio := float64(budget) / float64(m)
	switch {
	case ratio < c.LowThreshold:
		return uir.ReasoningLow
	case ratio < c.MediumThreshold:
		return uir.ReasoningMedium
	default:
		return uir.ReasoningHigh
	}
}
