package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MrWong99/soapscribe/internal/callstate"
	"github.com/MrWong99/soapscribe/internal/soap"
	"github.com/MrWong99/soapscribe/pkg/provider/llm"
)

// SOAPAgentName identifies the SOAP generator in audit messages.
const SOAPAgentName = "soap_agent"

const soapPrompt = `You are a clinical documentation scribe.

Write a SOAP note documenting the healthcare call below. You are given the
raw transcript plus structured findings already extracted from it; fold the
findings into the note where they belong.

Format the note as four plain-text sections with exactly these headers:
SUBJECTIVE:
OBJECTIVE:
ASSESSMENT:
PLAN:

No markdown, no extra sections.`

// stateSnapshot is the structured-findings block embedded in the generation
// prompt. Field names match the state's wire names so the model sees the
// same vocabulary the audit log uses.
type stateSnapshot struct {
	Disposition callstate.Disposition          `json:"disposition"`
	Extracted   map[string]callstate.Extracted `json:"extractedInfo"`
	Urgency     *callstate.Urgency             `json:"urgency,omitempty"`
	Sentiment   *callstate.Sentiment           `json:"sentiment,omitempty"`
	Medical     *callstate.Extracted           `json:"medicalInfo,omitempty"`
}

// Ensure SOAPGenerator satisfies Agent at compile time.
var _ Agent = (*SOAPGenerator)(nil)

// SOAPGenerator synthesises all accumulated state into the final SOAP note.
// The reply goes through [soap.Parse], which never fails, so this step always
// succeeds once the model call returns.
type SOAPGenerator struct {
	llm llm.Provider
}

// NewSOAPGenerator returns a SOAPGenerator backed by the given provider.
func NewSOAPGenerator(provider llm.Provider) *SOAPGenerator {
	return &SOAPGenerator{llm: provider}
}

// Name implements Agent.
func (g *SOAPGenerator) Name() string { return SOAPAgentName }

// Process implements Agent by generating and storing the SOAP note.
func (g *SOAPGenerator) Process(ctx context.Context, st callstate.State) (callstate.State, error) {
	snapshot, err := json.MarshalIndent(stateSnapshot{
		Disposition: st.Disposition,
		Extracted:   st.Extracted,
		Urgency:     st.Urgency,
		Sentiment:   st.Sentiment,
		Medical:     st.Medical,
	}, "", "  ")
	if err != nil {
		return st, fmt.Errorf("soap generator: marshal snapshot: %w", err)
	}

	user := fmt.Sprintf("Extracted findings:\n%s\n\nTranscript:\n%s", snapshot, st.Transcript)
	reply, err := g.llm.Generate(ctx, soapPrompt, user)
	if err != nil {
		return st, fmt.Errorf("soap generator: %w", err)
	}

	out := st.Clone()
	out.Note = soap.Parse(reply)
	out.Messages = append(out.Messages, callstate.NewMessage(
		SOAPAgentName, callstate.Broadcast,
		fmt.Sprintf("SOAP note generated: subjective %d, objective %d, assessment %d, plan %d words.",
			soap.WordCount(out.Note.Subjective), soap.WordCount(out.Note.Objective),
			soap.WordCount(out.Note.Assessment), soap.WordCount(out.Note.Plan)),
	))
	return out, nil
}
