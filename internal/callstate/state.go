// Package callstate defines the shared record threaded through a
// documentation run: the transcript, the classified disposition, every
// agent's extracted fragment, the generated note, and the append-only
// message log.
//
// State is mutable by convention only: every pipeline step receives its own
// copy (see [State.Clone]) and returns a modified copy, so concurrent steps
// never share memory. A fresh State is created per submitted transcript and
// is never persisted.
package callstate

import (
	"maps"
	"slices"

	"github.com/MrWong99/soapscribe/internal/evaluation"
	"github.com/MrWong99/soapscribe/internal/soap"
)

// State is the shared record for one documentation run.
type State struct {
	// Transcript is the raw call transcript. Set once, never mutated.
	Transcript string `json:"transcript"`

	// Disposition is the classified call-type category. Set exactly once by
	// the routing agent; it selects which specialist runs next.
	Disposition Disposition `json:"disposition"`

	// Extracted holds one fragment per specialist, keyed by specialist name
	// ("authorization", "claims", "general"). Each specialist writes exactly
	// one key and never overwrites another's.
	Extracted map[string]Extracted `json:"extractedInfo"`

	// Urgency is written exactly once by the urgency engine.
	Urgency *Urgency `json:"urgency,omitempty"`

	// Sentiment is written exactly once by the sentiment engine.
	Sentiment *Sentiment `json:"sentiment,omitempty"`

	// Medical is written exactly once by the medical-entity agent.
	Medical *Extracted `json:"medicalInfo,omitempty"`

	// Note is the generated SOAP note, written once after all specialist and
	// analysis steps complete.
	Note soap.Note `json:"soapNote"`

	// Evaluation is the head-to-head comparison output, written once, last.
	Evaluation *evaluation.Results `json:"evaluationResults,omitempty"`

	// Messages is the append-only audit log. Every step appends exactly one
	// explanatory message. Ordering is insertion order, not step number:
	// concurrent steps may append in nondeterministic relative order.
	Messages MessageLog `json:"messages"`
}

// New creates a fresh State for the given transcript.
func New(transcript string) State {
	return State{
		Transcript: transcript,
		Extracted:  make(map[string]Extracted),
	}
}

// Clone returns a copy of s whose map and slice fields are independent of the
// original. Pipeline steps operate on clones so parallel branches cannot
// interleave writes.
func (s State) Clone() State {
	out := s
	out.Extracted = maps.Clone(s.Extracted)
	if out.Extracted == nil {
		out.Extracted = make(map[string]Extracted)
	}
	out.Messages = slices.Clone(s.Messages)
	return out
}
