package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MrWong99/soapscribe/internal/soap"
	"github.com/MrWong99/soapscribe/pkg/provider/llm"
)

// systemPrompt instructs the judging model. Note A is always the multi-agent
// note and note B the sequential one; the model never learns which pipeline
// produced which.
const systemPrompt = `You are a clinical documentation quality reviewer.

You will receive a healthcare call transcript and two SOAP notes (Note A and Note B) that document the same call. Score each note on four dimensions, 0-10 each:
- completeness: does the note capture everything clinically and administratively relevant from the call?
- accuracy: is every statement supported by the transcript, with nothing invented?
- clinicalRelevance: does the note prioritise clinically meaningful information?
- actionability: could a care team act on the plan without going back to the recording?

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "noteA": {
    "completeness": {"score": 0, "comments": ""},
    "accuracy": {"score": 0, "comments": ""},
    "clinicalRelevance": {"score": 0, "comments": ""},
    "actionability": {"score": 0, "comments": ""}
  },
  "noteB": {
    "completeness": {"score": 0, "comments": ""},
    "accuracy": {"score": 0, "comments": ""},
    "clinicalRelevance": {"score": 0, "comments": ""},
    "actionability": {"score": 0, "comments": ""}
  },
  "winner": "A" | "B" | "tie",
  "reasoning": "<one short paragraph>"
}`

// judgeResponse is the expected JSON structure returned by the judge.
type judgeResponse struct {
	NoteA     judgedNote `json:"noteA"`
	NoteB     judgedNote `json:"noteB"`
	Winner    string     `json:"winner"`
	Reasoning string     `json:"reasoning"`
}

// judgedNote carries the four dimension scores for one note.
type judgedNote struct {
	Completeness      DimensionScore `json:"completeness"`
	Accuracy          DimensionScore `json:"accuracy"`
	ClinicalRelevance DimensionScore `json:"clinicalRelevance"`
	Actionability     DimensionScore `json:"actionability"`
}

// Engine issues the head-to-head judging call. Safe for concurrent use.
type Engine struct {
	llm llm.Provider
}

// New returns an Engine backed by the given provider.
func New(provider llm.Provider) *Engine {
	return &Engine{llm: provider}
}

// Compare judges multiAgent against sequential for the given transcript.
//
// One model call is issued. When the reply cannot be decoded as the expected
// JSON, Compare degrades to a fixed neutral result — every dimension scored
// 5, winner tie, reasoning stating the parse failure — rather than surfacing
// an error. Transport failures are returned as errors.
//
// OverallQuality on both sides and OverallScore are always recomputed locally
// from the per-dimension scores, regardless of what the judge supplied.
func (e *Engine) Compare(ctx context.Context, transcript string, multiAgent, sequential soap.Note) (Results, error) {
	user := buildUserPrompt(transcript, multiAgent, sequential)

	reply, err := e.llm.Generate(ctx, systemPrompt, user)
	if err != nil {
		return Results{}, fmt.Errorf("evaluation: compare: %w", err)
	}

	var jr judgeResponse
	if decodeErr := json.Unmarshal([]byte(stripFences(reply)), &jr); decodeErr != nil {
		return neutralResults(), nil
	}

	res := Results{
		MultiAgent: scoredEvaluation(jr.NoteA),
		Sequential: scoredEvaluation(jr.NoteB),
		Reasoning:  jr.Reasoning,
	}
	switch strings.ToLower(strings.TrimSpace(jr.Winner)) {
	case "a":
		res.Winner = WinnerMultiAgent
	case "b":
		res.Winner = WinnerLegacy
	default:
		res.Winner = WinnerTie
	}
	res.OverallScore = (res.MultiAgent.OverallQuality + res.Sequential.OverallQuality) / 2
	return res, nil
}

// scoredEvaluation copies the judged dimensions and applies the weighted
// recompute.
func scoredEvaluation(n judgedNote) SystemEvaluation {
	e := SystemEvaluation{
		Completeness:      n.Completeness,
		Accuracy:          n.Accuracy,
		ClinicalRelevance: n.ClinicalRelevance,
		Actionability:     n.Actionability,
	}
	e.OverallQuality = OverallQuality(e)
	return e
}

// neutralResults is the fixed fallback when the judge's reply is unparseable:
// all scores 5, winner tie.
func neutralResults() Results {
	dim := DimensionScore{Score: 5, Comments: "Unable to parse evaluation response"}
	ev := SystemEvaluation{
		Completeness:      dim,
		Accuracy:          dim,
		ClinicalRelevance: dim,
		Actionability:     dim,
	}
	ev.OverallQuality = OverallQuality(ev)
	return Results{
		OverallScore: ev.OverallQuality,
		MultiAgent:   ev,
		Sequential:   ev,
		Winner:       WinnerTie,
		Reasoning:    "The evaluation response could not be parsed; defaulting to a tie.",
	}
}

// buildUserPrompt lays out the transcript and both notes for the judge.
func buildUserPrompt(transcript string, a, b soap.Note) string {
	var sb strings.Builder
	sb.WriteString("Transcript:\n")
	sb.WriteString(transcript)
	sb.WriteString("\n\nNote A:\n")
	writeNote(&sb, a)
	sb.WriteString("\nNote B:\n")
	writeNote(&sb, b)
	return sb.String()
}

// writeNote renders a SOAP note with its canonical headers.
func writeNote(sb *strings.Builder, n soap.Note) {
	fmt.Fprintf(sb, "SUBJECTIVE: %s\nOBJECTIVE: %s\nASSESSMENT: %s\nPLAN: %s\n",
		n.Subjective, n.Objective, n.Assessment, n.Plan)
}

// stripFences removes optional markdown code fences (```json ... ```) that
// some models wrap around JSON output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```json", "```"} {
		if after, ok := strings.CutPrefix(s, prefix); ok {
			s = after
			break
		}
	}
	if before, ok := strings.CutSuffix(s, "```"); ok {
		s = before
	}
	return strings.TrimSpace(s)
}
