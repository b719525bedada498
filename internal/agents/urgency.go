package agents

import (
	"context"
	"fmt"

	"github.com/MrWong99/soapscribe/internal/callstate"
	"github.com/MrWong99/soapscribe/pkg/provider/llm"
)

// UrgencyAgentName identifies the urgency engine in audit messages.
const UrgencyAgentName = "urgency_agent"

const urgencyPrompt = `You are a triage analyst for a health plan's member services line.

Rate how urgent this call is on a 0-10 scale, with a per-category breakdown.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "level": <0-10 overall urgency>,
  "indicators": {
    "medical": <0-10 clinical urgency>,
    "administrative": <0-10 deadline or coverage-lapse pressure>,
    "emotional": <0-10 caller distress>
  },
  "reasoning": "<one sentence>"
}`

// urgencyResponse is the expected JSON structure returned by the model.
type urgencyResponse struct {
	Level      int `json:"level"`
	Indicators struct {
		Medical        int `json:"medical"`
		Administrative int `json:"administrative"`
		Emotional      int `json:"emotional"`
	} `json:"indicators"`
	Reasoning string `json:"reasoning"`
}

// Ensure UrgencyEngine satisfies Agent at compile time.
var _ Agent = (*UrgencyEngine)(nil)

// UrgencyEngine scores the call's urgency. A reply that fails to decode
// degrades to level 0 rather than aborting the run.
type UrgencyEngine struct {
	llm llm.Provider
}

// NewUrgencyEngine returns an UrgencyEngine backed by the given provider.
func NewUrgencyEngine(provider llm.Provider) *UrgencyEngine {
	return &UrgencyEngine{llm: provider}
}

// Name implements Agent.
func (e *UrgencyEngine) Name() string { return UrgencyAgentName }

// Process implements Agent by populating the state's urgency assessment.
func (e *UrgencyEngine) Process(ctx context.Context, st callstate.State) (callstate.State, error) {
	reply, err := e.llm.Generate(ctx, urgencyPrompt, "Transcript:\n"+st.Transcript)
	if err != nil {
		return st, fmt.Errorf("urgency engine: %w", err)
	}

	out := st.Clone()
	parsed, decodeErr := decodeJSON[urgencyResponse](reply)
	if decodeErr != nil {
		out.Urgency = &callstate.Urgency{Level: 0}
		out.Messages = append(out.Messages, callstate.NewMessage(
			UrgencyAgentName, callstate.Broadcast,
			"Urgency response could not be parsed; defaulting to level 0 (No urgency).",
		))
		return out, nil
	}

	out.Urgency = &callstate.Urgency{
		Level: parsed.Level,
		Indicators: callstate.UrgencyIndicators{
			Medical:        parsed.Indicators.Medical,
			Administrative: parsed.Indicators.Administrative,
			Emotional:      parsed.Indicators.Emotional,
		},
		Reasoning: parsed.Reasoning,
	}
	out.Messages = append(out.Messages, callstate.NewMessage(
		UrgencyAgentName, callstate.Broadcast,
		fmt.Sprintf("Urgency level %d (%s): medical %d, administrative %d, emotional %d.",
			parsed.Level, callstate.UrgencyLabel(parsed.Level),
			parsed.Indicators.Medical, parsed.Indicators.Administrative, parsed.Indicators.Emotional),
	))
	return out, nil
}
