package orchestrator

import (
	"errors"
	"fmt"

	"github.com/MrWong99/soapscribe/internal/callstate"
)

// ErrOverlappingResults is returned when two parallel analysis branches claim
// the same state field. The analysis engines own disjoint fields (urgency,
// sentiment, medical) so an overlap means an agent wrote outside its lane.
var ErrOverlappingResults = errors.New("orchestrator: overlapping analysis results")

// mergeAnalyses folds the states produced by the parallel analysis branches
// back into base. Each branch started from a clone of base, so the merge
// takes only what a branch added: its owned analysis field and its audit
// messages. Messages are deduplicated by ID, letting the shared pre-branch
// history appear once in the merged log.
func mergeAnalyses(base callstate.State, branches []callstate.State) (callstate.State, error) {
	out := base.Clone()
	for _, br := range branches {
		if err := claimUrgency(&out, br); err != nil {
			return callstate.State{}, err
		}
		if err := claimSentiment(&out, br); err != nil {
			return callstate.State{}, err
		}
		if err := claimMedical(&out, br); err != nil {
			return callstate.State{}, err
		}
		out.Messages = out.Messages.AppendUnique(br.Messages...)
	}
	return out, nil
}

func claimUrgency(out *callstate.State, br callstate.State) error {
	if br.Urgency == nil {
		return nil
	}
	if out.Urgency != nil {
		return fmt.Errorf("%w: urgency set by more than one branch", ErrOverlappingResults)
	}
	out.Urgency = br.Urgency
	return nil
}

func claimSentiment(out *callstate.State, br callstate.State) error {
	if br.Sentiment == nil {
		return nil
	}
	if out.Sentiment != nil {
		return fmt.Errorf("%w: sentiment set by more than one branch", ErrOverlappingResults)
	}
	out.Sentiment = br.Sentiment
	return nil
}

func claimMedical(out *callstate.State, br callstate.State) error {
	if br.Medical == nil {
		return nil
	}
	if out.Medical != nil {
		return fmt.Errorf("%w: medical entities set by more than one branch", ErrOverlappingResults)
	}
	out.Medical = br.Medical
	return nil
}
