package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/uir"
)

func TestFinishReasonRoundTripsPerProvider(t *testing.T) {
	providers := []capabilities.ProviderFormat{
		capabilities.FormatOpenAIChat,
		capabilities.FormatOpenAIResponses,
		capabilities.FormatAnthropic,
		capabilities.FormatBedrockConverse,
		capabilities.FormatGoogle,
		capabilities.FormatMistral,
	}
	canonical := []uir.FinishReason{
		{Kind: uir.FinishStop},
		{Kind: uir.FinishLength},
		{Kind: uir.FinishToolCalls},
	}
	for _, p := range providers {
		for _, fr := range canonical {
			s := FinishReasonToProviderString(fr, p)
			got := FinishReasonFromProviderString(s, p)
			assert.Equalf(t, fr, got, "provider=%s reason=%v string=%q", p, fr, s)
		}
	}
}

func TestFinishReasonOtherPassesThrough(t *testing.T) {
	got := FinishReasonFromProviderString("weird_reason", capabilities.FormatOpenAIChat)
	assert.Equal(t, uir.FinishReason{Kind: uir.FinishReasonOther, Other: "weird_reason"}, got)
	assert.Equal(t, "weird_reason", FinishReasonToProviderString(got, capabilities.FormatAnthropic))
}

func TestReasoningEffortToBudgetDefaults(t *testing.T) {
	c := NewReasoningConverter()
	m := int64(8192)
	assert.Equal(t, int64(1638), c.EffortToBudget(uir.ReasoningLow, &m))
	assert.Equal(t, int64(4096), c.EffortToBudget(uir.ReasoningMedium, &m))
	assert.Equal(t, int64(6553), c.EffortToBudget(uir.ReasoningHigh, &m))
}

func TestReasoningEffortToBudgetFloor(t *testing.T) {
	c := NewReasoningConverter()
	small := int64(1000)
	assert.Equal(t, int64(1024), c.EffortToBudget(uir.ReasoningLow, &small))
}

func TestReasoningBudgetToEffortThresholds(t *testing.T) {
	c := NewReasoningConverter()
	m := int64(8192)
	assert.Equal(t, uir.ReasoningLow, c.BudgetToEffort(1000, &m))
	assert.Equal(t, uir.ReasoningMedium, c.BudgetToEffort(4000, &m))
	assert.Equal(t, uir.ReasoningHigh, c.BudgetToEffort(7000, &m))
}

func TestUsageProviderRoundTrip(t *testing.T) {
	prompt := int64(100)
	completion := int64(50)
	u := &uir.Usage{PromptTokens: &prompt, CompletionTokens: &completion}
	for _, p := range []capabilities.ProviderFormat{
		capabilities.FormatOpenAIChat, capabilities.FormatOpenAIResponses,
		capabilities.FormatAnthropic, capabilities.FormatBedrockConverse, capabilities.FormatGoogle,
	} {
		wire := UsageToProviderValue(u, p)
		back := UsageFromProviderValue(wire, p)
		assert.Equal(t, *u.PromptTokens, *back.PromptTokens, "provider=%s", p)
		assert.Equal(t, *u.CompletionTokens, *back.CompletionTokens, "provider=%s", p)
	}
}
