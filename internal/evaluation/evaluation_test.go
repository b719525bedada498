package evaluation_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MrWong99/soapscribe/internal/evaluation"
	"github.com/MrWong99/soapscribe/internal/soap"
	"github.com/MrWong99/soapscribe/pkg/provider/llm/mock"
)

func TestOverallQuality_WeightedFormula(t *testing.T) {
	t.Parallel()

	ev := evaluation.SystemEvaluation{
		Completeness:      evaluation.DimensionScore{Score: 8},
		Accuracy:          evaluation.DimensionScore{Score: 6},
		ClinicalRelevance: evaluation.DimensionScore{Score: 10},
		Actionability:     evaluation.DimensionScore{Score: 4},
	}

	// 0.3*8 + 0.3*6 + 0.2*10 + 0.2*4 = 7.0 exactly.
	if got := evaluation.OverallQuality(ev); got != 7.0 {
		t.Errorf("OverallQuality = %v, want 7.0", got)
	}
}

const judgeReply = `{
  "noteA": {
    "completeness": {"score": 8, "comments": "thorough"},
    "accuracy": {"score": 6, "comments": "one unsupported claim"},
    "clinicalRelevance": {"score": 10, "comments": "focused"},
    "actionability": {"score": 4, "comments": "plan is vague"}
  },
  "noteB": {
    "completeness": {"score": 5, "comments": ""},
    "accuracy": {"score": 5, "comments": ""},
    "clinicalRelevance": {"score": 5, "comments": ""},
    "actionability": {"score": 5, "comments": ""}
  },
  "winner": "A",
  "reasoning": "Note A captures more of the call."
}`

func TestCompare_DecodesJudgeReply(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{Responses: []string{judgeReply}}
	engine := evaluation.New(p)

	res, err := engine.Compare(context.Background(), "transcript", soap.Note{Subjective: "a"}, soap.Note{Subjective: "b"})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if res.Winner != evaluation.WinnerMultiAgent {
		t.Errorf("Winner = %q, want %q", res.Winner, evaluation.WinnerMultiAgent)
	}
	if res.MultiAgent.OverallQuality != 7.0 {
		t.Errorf("MultiAgent.OverallQuality = %v, want 7.0", res.MultiAgent.OverallQuality)
	}
	if res.Sequential.OverallQuality != 5.0 {
		t.Errorf("Sequential.OverallQuality = %v, want 5.0", res.Sequential.OverallQuality)
	}
	if res.OverallScore != 6.0 {
		t.Errorf("OverallScore = %v, want 6.0", res.OverallScore)
	}
	if res.Reasoning != "Note A captures more of the call." {
		t.Errorf("Reasoning = %q", res.Reasoning)
	}
}

func TestCompare_WinnerBMapsToLegacy(t *testing.T) {
	t.Parallel()

	reply := strings.Replace(judgeReply, `"winner": "A"`, `"winner": "B"`, 1)
	p := &mock.Provider{Responses: []string{reply}}

	res, err := evaluation.New(p).Compare(context.Background(), "t", soap.Note{}, soap.Note{})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if res.Winner != evaluation.WinnerLegacy {
		t.Errorf("Winner = %q, want %q", res.Winner, evaluation.WinnerLegacy)
	}
}

func TestCompare_FencedReplyStillDecodes(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{Responses: []string{"```json\n" + judgeReply + "\n```"}}

	res, err := evaluation.New(p).Compare(context.Background(), "t", soap.Note{}, soap.Note{})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if res.Winner != evaluation.WinnerMultiAgent {
		t.Errorf("Winner = %q, want %q", res.Winner, evaluation.WinnerMultiAgent)
	}
}

func TestCompare_UnparseableReplyDegradesToNeutralTie(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{Responses: []string{"I think Note A is better overall."}}

	res, err := evaluation.New(p).Compare(context.Background(), "t", soap.Note{}, soap.Note{})
	if err != nil {
		t.Fatalf("Compare should not error on a parse failure: %v", err)
	}

	if res.Winner != evaluation.WinnerTie {
		t.Errorf("Winner = %q, want %q", res.Winner, evaluation.WinnerTie)
	}
	for _, ev := range []evaluation.SystemEvaluation{res.MultiAgent, res.Sequential} {
		if ev.Completeness.Score != 5 || ev.Accuracy.Score != 5 ||
			ev.ClinicalRelevance.Score != 5 || ev.Actionability.Score != 5 {
			t.Errorf("neutral fallback scores = %+v, want all 5", ev)
		}
		if ev.OverallQuality != 5.0 {
			t.Errorf("neutral fallback OverallQuality = %v, want 5.0", ev.OverallQuality)
		}
	}
	if !strings.Contains(res.Reasoning, "could not be parsed") {
		t.Errorf("Reasoning = %q, want parse-failure notice", res.Reasoning)
	}
}

func TestCompare_TransportFailurePropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	p := &mock.Provider{Err: boom}

	_, err := evaluation.New(p).Compare(context.Background(), "t", soap.Note{}, soap.Note{})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}

func TestCompare_PromptContainsBothNotes(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{Responses: []string{judgeReply}}
	multi := soap.Note{Subjective: "multi-agent subjective text"}
	seq := soap.Note{Subjective: "sequential subjective text"}

	if _, err := evaluation.New(p).Compare(context.Background(), "the transcript", multi, seq); err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if len(p.Calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(p.Calls))
	}
	user := p.Calls[0].UserPrompt
	if !strings.Contains(user, "multi-agent subjective text") || !strings.Contains(user, "sequential subjective text") {
		t.Errorf("user prompt missing a note: %q", user)
	}
	if !strings.Contains(user, "the transcript") {
		t.Errorf("user prompt missing the transcript: %q", user)
	}
}
