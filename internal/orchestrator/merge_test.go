package orchestrator

import (
	"errors"
	"testing"

	"github.com/MrWong99/soapscribe/internal/callstate"
)

func TestMergeAnalyses_TakesEachOwnedField(t *testing.T) {
	t.Parallel()

	base := callstate.New("transcript")
	base.Messages = append(base.Messages, callstate.NewMessage("routing_agent", callstate.Broadcast, "classified"))

	urgencyBranch := base.Clone()
	urgencyBranch.Urgency = &callstate.Urgency{Level: 7}
	urgencyBranch.Messages = append(urgencyBranch.Messages, callstate.NewMessage("urgency_agent", callstate.Broadcast, "scored"))

	sentimentBranch := base.Clone()
	sentimentBranch.Sentiment = &callstate.Sentiment{Score: 4, Label: callstate.SentimentPositive}
	sentimentBranch.Messages = append(sentimentBranch.Messages, callstate.NewMessage("sentiment_agent", callstate.Broadcast, "scored"))

	medicalFrag := callstate.Unparsed("raw entities")
	medicalBranch := base.Clone()
	medicalBranch.Medical = &medicalFrag
	medicalBranch.Messages = append(medicalBranch.Messages, callstate.NewMessage("medical_agent", callstate.Broadcast, "extracted"))

	merged, err := mergeAnalyses(base, []callstate.State{urgencyBranch, sentimentBranch, medicalBranch})
	if err != nil {
		t.Fatalf("mergeAnalyses: %v", err)
	}

	if merged.Urgency == nil || merged.Urgency.Level != 7 {
		t.Errorf("Urgency = %+v", merged.Urgency)
	}
	if merged.Sentiment == nil || merged.Sentiment.Score != 4 {
		t.Errorf("Sentiment = %+v", merged.Sentiment)
	}
	if merged.Medical == nil || merged.Medical.Raw != "raw entities" {
		t.Errorf("Medical = %+v", merged.Medical)
	}

	// The shared pre-branch message was handed to every branch; it must
	// appear once, followed by one message per branch.
	if len(merged.Messages) != 4 {
		t.Fatalf("messages = %d, want 4 (no duplicates)", len(merged.Messages))
	}
	if merged.Messages[0].From != "routing_agent" {
		t.Errorf("first message from %q, want routing_agent", merged.Messages[0].From)
	}
}

func TestMergeAnalyses_RejectsOverlappingFields(t *testing.T) {
	t.Parallel()

	base := callstate.New("transcript")

	first := base.Clone()
	first.Urgency = &callstate.Urgency{Level: 2}
	second := base.Clone()
	second.Urgency = &callstate.Urgency{Level: 8}

	_, err := mergeAnalyses(base, []callstate.State{first, second})
	if !errors.Is(err, ErrOverlappingResults) {
		t.Errorf("err = %v, want ErrOverlappingResults", err)
	}
}

func TestMergeAnalyses_EmptyBranchChangesNothing(t *testing.T) {
	t.Parallel()

	base := callstate.New("transcript")
	merged, err := mergeAnalyses(base, []callstate.State{base.Clone()})
	if err != nil {
		t.Fatalf("mergeAnalyses: %v", err)
	}
	if merged.Urgency != nil || merged.Sentiment != nil || merged.Medical != nil {
		t.Errorf("merged analysis fields should stay nil: %+v", merged)
	}
}
