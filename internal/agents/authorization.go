package agents

import (
	"context"
	"fmt"

	"github.com/MrWong99/soapscribe/internal/callstate"
	"github.com/MrWong99/soapscribe/pkg/provider/llm"
)

// Names and state keys for the authorization specialist.
const (
	AuthorizationAgentName = "authorization_agent"
	AuthorizationKey       = "authorization"
)

// authorizationPrompt fixes the extraction schema for prior-authorization
// calls.
const authorizationPrompt = `You are a prior-authorization intake specialist for a health plan.

Extract the authorization request details from the call transcript.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "procedure": "<requested procedure or service>",
  "medicalNecessity": "<stated clinical justification>",
  "provider": "<requesting or performing provider>",
  "timeline": "<requested or required timing>",
  "previousAttempts": "<earlier requests, denials, or peer-to-peer reviews mentioned>",
  "documentation": ["<supporting documents mentioned>"]
}

Use an empty string or empty array for anything the transcript does not mention.`

// AuthorizationDetails is the typed fragment produced by the authorization
// specialist.
type AuthorizationDetails struct {
	Procedure        string   `json:"procedure"`
	MedicalNecessity string   `json:"medicalNecessity"`
	Provider         string   `json:"provider"`
	Timeline         string   `json:"timeline"`
	PreviousAttempts string   `json:"previousAttempts"`
	Documentation    []string `json:"documentation"`
}

// Ensure AuthorizationAgent satisfies Agent at compile time.
var _ Agent = (*AuthorizationAgent)(nil)

// AuthorizationAgent extracts prior-authorization details from the
// transcript. A reply that fails to decode is stored raw and flagged; the run
// continues either way.
type AuthorizationAgent struct {
	llm llm.Provider
}

// NewAuthorizationAgent returns an AuthorizationAgent backed by the given
// provider.
func NewAuthorizationAgent(provider llm.Provider) *AuthorizationAgent {
	return &AuthorizationAgent{llm: provider}
}

// Name implements Agent.
func (a *AuthorizationAgent) Name() string { return AuthorizationAgentName }

// Process implements Agent by populating the "authorization" extracted
// fragment.
func (a *AuthorizationAgent) Process(ctx context.Context, st callstate.State) (callstate.State, error) {
	reply, err := a.llm.Generate(ctx, authorizationPrompt, "Transcript:\n"+st.Transcript)
	if err != nil {
		return st, fmt.Errorf("authorization agent: %w", err)
	}

	out := st.Clone()
	details, decodeErr := decodeJSON[AuthorizationDetails](reply)
	if decodeErr != nil {
		out.Extracted[AuthorizationKey] = callstate.Unparsed(reply)
		out.Messages = append(out.Messages, callstate.NewMessage(
			AuthorizationAgentName, callstate.Broadcast,
			"Authorization extraction could not be parsed; raw response retained.",
		))
		return out, nil
	}

	out.Extracted[AuthorizationKey] = callstate.Parsed(details)
	out.Messages = append(out.Messages, callstate.NewMessage(
		AuthorizationAgentName, callstate.Broadcast,
		fmt.Sprintf("Authorization request: procedure %s, provider %s, timeline %s, %d supporting document(s).",
			orNotFound(details.Procedure), orNotFound(details.Provider),
			orNotFound(details.Timeline), len(details.Documentation)),
	))
	return out, nil
}
