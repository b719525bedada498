package agents

import (
	"context"
	"fmt"

	"github.com/MrWong99/soapscribe/internal/callstate"
	"github.com/MrWong99/soapscribe/pkg/provider/llm"
)

// MedicalAgentName identifies the medical-entity agent in audit messages.
const MedicalAgentName = "medical_agent"

const medicalPrompt = `You are a clinical information extractor.

List every medical entity mentioned in the call transcript.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "conditions": ["<diagnoses or conditions>"],
  "medications": ["<medications, with dose if stated>"],
  "symptoms": ["<symptoms the caller reports>"],
  "procedures": ["<procedures, tests, or treatments>"],
  "allergies": ["<stated allergies>"]
}

Use empty arrays for categories the transcript does not mention. Do not infer
entities that are not stated.`

// MedicalEntities is the typed fragment produced by the medical-entity agent.
type MedicalEntities struct {
	Conditions  []string `json:"conditions"`
	Medications []string `json:"medications"`
	Symptoms    []string `json:"symptoms"`
	Procedures  []string `json:"procedures"`
	Allergies   []string `json:"allergies"`
}

// Ensure MedicalAgent satisfies Agent at compile time.
var _ Agent = (*MedicalAgent)(nil)

// MedicalAgent extracts medical entities from the transcript. It owns the
// state's Medical field and, like every JSON-producing agent, stores the raw
// reply instead of failing when decoding breaks.
type MedicalAgent struct {
	llm llm.Provider
}

// NewMedicalAgent returns a MedicalAgent backed by the given provider.
func NewMedicalAgent(provider llm.Provider) *MedicalAgent {
	return &MedicalAgent{llm: provider}
}

// Name implements Agent.
func (a *MedicalAgent) Name() string { return MedicalAgentName }

// Process implements Agent by populating the state's medical-entity field.
func (a *MedicalAgent) Process(ctx context.Context, st callstate.State) (callstate.State, error) {
	reply, err := a.llm.Generate(ctx, medicalPrompt, "Transcript:\n"+st.Transcript)
	if err != nil {
		return st, fmt.Errorf("medical agent: %w", err)
	}

	out := st.Clone()
	entities, decodeErr := decodeJSON[MedicalEntities](reply)
	if decodeErr != nil {
		frag := callstate.Unparsed(reply)
		out.Medical = &frag
		out.Messages = append(out.Messages, callstate.NewMessage(
			MedicalAgentName, callstate.Broadcast,
			"Medical entity extraction could not be parsed; raw response retained.",
		))
		return out, nil
	}

	frag := callstate.Parsed(entities)
	out.Medical = &frag
	out.Messages = append(out.Messages, callstate.NewMessage(
		MedicalAgentName, callstate.Broadcast,
		fmt.Sprintf("Medical entities: %d condition(s), %d medication(s), %d symptom(s), %d procedure(s), %d allergy(ies).",
			len(entities.Conditions), len(entities.Medications),
			len(entities.Symptoms), len(entities.Procedures), len(entities.Allergies)),
	))
	return out, nil
}
