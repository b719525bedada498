package agents

import (
	"context"
	"fmt"

	"github.com/MrWong99/soapscribe/internal/callstate"
	"github.com/MrWong99/soapscribe/pkg/provider/llm"
)

// SentimentAgentName identifies the sentiment engine in audit messages.
const SentimentAgentName = "sentiment_agent"

const sentimentPrompt = `You are a caller-experience analyst for a health plan's member services line.

Rate the caller's overall sentiment on a -10 (furious) to 10 (delighted) scale.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "score": <-10 to 10>,
  "explanation": "<one sentence>"
}`

// sentimentResponse is the expected JSON structure returned by the model.
type sentimentResponse struct {
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// Ensure SentimentEngine satisfies Agent at compile time.
var _ Agent = (*SentimentEngine)(nil)

// SentimentEngine scores the caller's mood. A reply that fails to decode
// degrades to a neutral score of 0 rather than aborting the run.
type SentimentEngine struct {
	llm llm.Provider
}

// NewSentimentEngine returns a SentimentEngine backed by the given provider.
func NewSentimentEngine(provider llm.Provider) *SentimentEngine {
	return &SentimentEngine{llm: provider}
}

// Name implements Agent.
func (e *SentimentEngine) Name() string { return SentimentAgentName }

// Process implements Agent by populating the state's sentiment assessment.
func (e *SentimentEngine) Process(ctx context.Context, st callstate.State) (callstate.State, error) {
	reply, err := e.llm.Generate(ctx, sentimentPrompt, "Transcript:\n"+st.Transcript)
	if err != nil {
		return st, fmt.Errorf("sentiment engine: %w", err)
	}

	out := st.Clone()
	parsed, decodeErr := decodeJSON[sentimentResponse](reply)
	if decodeErr != nil {
		out.Sentiment = &callstate.Sentiment{
			Score: 0,
			Label: callstate.SentimentLabel(0),
		}
		out.Messages = append(out.Messages, callstate.NewMessage(
			SentimentAgentName, callstate.Broadcast,
			"Sentiment response could not be parsed; defaulting to neutral.",
		))
		return out, nil
	}

	out.Sentiment = &callstate.Sentiment{
		Score:       parsed.Score,
		Label:       callstate.SentimentLabel(parsed.Score),
		Explanation: parsed.Explanation,
	}
	out.Messages = append(out.Messages, callstate.NewMessage(
		SentimentAgentName, callstate.Broadcast,
		fmt.Sprintf("Caller sentiment %.1f (%s).", parsed.Score, out.Sentiment.Label),
	))
	return out, nil
}
