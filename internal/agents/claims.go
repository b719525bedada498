package agents

import (
	"context"
	"fmt"

	"github.com/MrWong99/soapscribe/internal/callstate"
	"github.com/MrWong99/soapscribe/pkg/provider/llm"
)

// Names and state keys for the claims specialist.
const (
	ClaimsAgentName = "claims_agent"
	ClaimsKey       = "claims"
)

const claimsPrompt = `You are a claims inquiry specialist for a health plan.

Extract the claim details being discussed in the call transcript.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "claimNumber": "<claim or reference number>",
  "serviceDate": "<date of service>",
  "billedAmount": "<amount billed or disputed>",
  "status": "<claim status as stated on the call>",
  "denialReason": "<denial or adjustment reason, if any>",
  "disputedItems": ["<line items or charges in dispute>"]
}

Use an empty string or empty array for anything the transcript does not mention.`

// ClaimsDetails is the typed fragment produced by the claims specialist.
type ClaimsDetails struct {
	ClaimNumber   string   `json:"claimNumber"`
	ServiceDate   string   `json:"serviceDate"`
	BilledAmount  string   `json:"billedAmount"`
	Status        string   `json:"status"`
	DenialReason  string   `json:"denialReason"`
	DisputedItems []string `json:"disputedItems"`
}

// Ensure ClaimsAgent satisfies Agent at compile time.
var _ Agent = (*ClaimsAgent)(nil)

// ClaimsAgent extracts claim inquiry details from the transcript, degrading
// to a raw-text fragment when the reply is not valid JSON.
type ClaimsAgent struct {
	llm llm.Provider
}

// NewClaimsAgent returns a ClaimsAgent backed by the given provider.
func NewClaimsAgent(provider llm.Provider) *ClaimsAgent {
	return &ClaimsAgent{llm: provider}
}

// Name implements Agent.
func (a *ClaimsAgent) Name() string { return ClaimsAgentName }

// Process implements Agent by populating the "claims" extracted fragment.
func (a *ClaimsAgent) Process(ctx context.Context, st callstate.State) (callstate.State, error) {
	reply, err := a.llm.Generate(ctx, claimsPrompt, "Transcript:\n"+st.Transcript)
	if err != nil {
		return st, fmt.Errorf("claims agent: %w", err)
	}

	out := st.Clone()
	details, decodeErr := decodeJSON[ClaimsDetails](reply)
	if decodeErr != nil {
		out.Extracted[ClaimsKey] = callstate.Unparsed(reply)
		out.Messages = append(out.Messages, callstate.NewMessage(
			ClaimsAgentName, callstate.Broadcast,
			"Claims extraction could not be parsed; raw response retained.",
		))
		return out, nil
	}

	out.Extracted[ClaimsKey] = callstate.Parsed(details)
	out.Messages = append(out.Messages, callstate.NewMessage(
		ClaimsAgentName, callstate.Broadcast,
		fmt.Sprintf("Claim %s: service date %s, billed %s, status %s.",
			orNotFound(details.ClaimNumber), orNotFound(details.ServiceDate),
			orNotFound(details.BilledAmount), orNotFound(details.Status)),
	))
	return out, nil
}
