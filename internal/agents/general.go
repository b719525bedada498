package agents

import (
	"context"
	"fmt"

	"github.com/MrWong99/soapscribe/internal/callstate"
	"github.com/MrWong99/soapscribe/pkg/provider/llm"
)

// Names and state keys for the general-inquiry specialist. This is the
// catch-all branch: every disposition without a dedicated specialist lands
// here.
const (
	GeneralAgentName = "general_agent"
	GeneralKey       = "general"
)

const generalPrompt = `You are a member services specialist for a health plan.

Extract the general inquiry details from the call transcript.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "topic": "<main subject of the call>",
  "questions": ["<questions the caller asked>"],
  "resolution": "<what was resolved or promised on the call>",
  "followUpNeeded": <true|false>
}

Use an empty string or empty array for anything the transcript does not mention.`

// GeneralDetails is the typed fragment produced by the general-inquiry
// specialist.
type GeneralDetails struct {
	Topic          string   `json:"topic"`
	Questions      []string `json:"questions"`
	Resolution     string   `json:"resolution"`
	FollowUpNeeded bool     `json:"followUpNeeded"`
}

// Ensure GeneralAgent satisfies Agent at compile time.
var _ Agent = (*GeneralAgent)(nil)

// GeneralAgent extracts general inquiry details from the transcript,
// degrading to a raw-text fragment when the reply is not valid JSON.
type GeneralAgent struct {
	llm llm.Provider
}

// NewGeneralAgent returns a GeneralAgent backed by the given provider.
func NewGeneralAgent(provider llm.Provider) *GeneralAgent {
	return &GeneralAgent{llm: provider}
}

// Name implements Agent.
func (a *GeneralAgent) Name() string { return GeneralAgentName }

// Process implements Agent by populating the "general" extracted fragment.
func (a *GeneralAgent) Process(ctx context.Context, st callstate.State) (callstate.State, error) {
	reply, err := a.llm.Generate(ctx, generalPrompt, "Transcript:\n"+st.Transcript)
	if err != nil {
		return st, fmt.Errorf("general agent: %w", err)
	}

	out := st.Clone()
	details, decodeErr := decodeJSON[GeneralDetails](reply)
	if decodeErr != nil {
		out.Extracted[GeneralKey] = callstate.Unparsed(reply)
		out.Messages = append(out.Messages, callstate.NewMessage(
			GeneralAgentName, callstate.Broadcast,
			"General inquiry extraction could not be parsed; raw response retained.",
		))
		return out, nil
	}

	followUp := "no follow-up needed"
	if details.FollowUpNeeded {
		followUp = "follow-up needed"
	}
	out.Extracted[GeneralKey] = callstate.Parsed(details)
	out.Messages = append(out.Messages, callstate.NewMessage(
		GeneralAgentName, callstate.Broadcast,
		fmt.Sprintf("General inquiry about %s: %d question(s), %s.",
			orNotFound(details.Topic), len(details.Questions), followUp),
	))
	return out, nil
}
