// Package sequential implements the linear baseline documentation pipeline:
// disposition, SOAP note, sentiment, topics — four model calls strictly in
// order with no shared state beyond the transcript and the disposition string
// passed forward. It exists purely as the comparison point for the
// multi-agent pipeline; the two are never mixed.
//
// Unlike the multi-agent specialists there is no degrade-and-continue here: a
// transport failure in any step aborts the whole pipeline. Parse looseness is
// handled per step with lenient defaults instead (disposition falls back to
// "other", sentiment to neutral).
package sequential

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/MrWong99/soapscribe/internal/callstate"
	"github.com/MrWong99/soapscribe/internal/soap"
	"github.com/MrWong99/soapscribe/pkg/provider/llm"
)

// DispositionOther is the fallback category when the classifier's response
// contains none of the known disposition substrings.
const DispositionOther = "other"

// dispositions is the classifier vocabulary for this pipeline. It is richer
// than the multi-agent routing set; the two pipelines keep independent
// vocabularies since only their SOAP notes are ever compared.
var dispositions = []string{
	"billing_question",
	"billing_dispute",
	"authorization",
	"claims_inquiry",
	"benefits",
	"coverage_question",
	"grievance",
	"appeal",
	"enrollment",
	"eligibility",
	"pharmacy",
	"referral",
	"provider_search",
	"id_card",
	"premium_payment",
	"appointment",
	"technical_support",
	DispositionOther,
}

// maxTopics caps how many topic lines are retained from the model reply.
const maxTopics = 3

// defaultTopicConfidence is assumed when a topic line carries no trailing
// confidence parenthetical.
const defaultTopicConfidence = 0.8

// topicConfidenceRE matches an optional trailing "(0.85)" style parenthetical
// at the end of a topic line.
var topicConfidenceRE = regexp.MustCompile(`\(([0-9.]+)\)\s*$`)

// Topic is one labelled call topic with its model-reported (or defaulted)
// confidence.
type Topic struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// DocumentationResult is the output of one full pipeline run.
type DocumentationResult struct {
	Disposition string              `json:"disposition"`
	Note        soap.Note           `json:"soapNote"`
	Sentiment   callstate.Sentiment `json:"sentiment"`
	Topics      []Topic             `json:"topics"`
}

// Pipeline runs the four steps against a single provider. It holds no
// per-run state and is safe for concurrent use.
type Pipeline struct {
	llm llm.Provider
}

// New returns a Pipeline backed by the given provider.
func New(provider llm.Provider) *Pipeline {
	return &Pipeline{llm: provider}
}

const dispositionPrompt = `You are a call-center classifier for a health plan's member services line.

Classify the call into exactly one category from this list:

%s

Respond with ONLY the category word.`

const soapStepPrompt = `You are a clinical documentation scribe.

Write a SOAP note documenting the healthcare call below. The call has been
classified as: %s.

Format the note as four plain-text sections with exactly these headers:
SUBJECTIVE:
OBJECTIVE:
ASSESSMENT:
PLAN:

No markdown, no extra sections.`

const sentimentStepPrompt = `You are a caller-experience analyst for a health plan's member services line.

Rate the caller's overall sentiment on a -10 (furious) to 10 (delighted) scale.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "score": <-10 to 10>,
  "explanation": "<one sentence>"
}`

const topicsPrompt = `You are a call-center analyst.

List the main topics discussed in this healthcare call, one per line, most
important first. You may append a confidence between 0 and 1 in parentheses
after each topic, e.g.:

prior authorization delay (0.92)

No numbering, no markdown, no other text.`

// Run executes all four steps in order. Any step error aborts the run.
func (p *Pipeline) Run(ctx context.Context, transcript string) (DocumentationResult, error) {
	disposition, err := p.classify(ctx, transcript)
	if err != nil {
		return DocumentationResult{}, fmt.Errorf("sequential: disposition: %w", err)
	}

	note, err := p.generateNote(ctx, transcript, disposition)
	if err != nil {
		return DocumentationResult{}, fmt.Errorf("sequential: soap note: %w", err)
	}

	sentiment, err := p.analyzeSentiment(ctx, transcript)
	if err != nil {
		return DocumentationResult{}, fmt.Errorf("sequential: sentiment: %w", err)
	}

	topics, err := p.labelTopics(ctx, transcript)
	if err != nil {
		return DocumentationResult{}, fmt.Errorf("sequential: topics: %w", err)
	}

	return DocumentationResult{
		Disposition: disposition,
		Note:        note,
		Sentiment:   sentiment,
		Topics:      topics,
	}, nil
}

// classify runs the disposition step. The reply is scanned for the known
// category substrings in vocabulary order; a reply matching none of them
// falls back to [DispositionOther] rather than erroring.
func (p *Pipeline) classify(ctx context.Context, transcript string) (string, error) {
	system := fmt.Sprintf(dispositionPrompt, strings.Join(dispositions, "\n"))
	reply, err := p.llm.Generate(ctx, system, "Transcript:\n"+transcript)
	if err != nil {
		return "", err
	}
	return matchDisposition(reply), nil
}

// matchDisposition maps a raw classifier reply onto the vocabulary by
// substring containment.
func matchDisposition(reply string) string {
	lowered := strings.ToLower(reply)
	for _, d := range dispositions {
		if strings.Contains(lowered, d) {
			return d
		}
	}
	return DispositionOther
}

func (p *Pipeline) generateNote(ctx context.Context, transcript, disposition string) (soap.Note, error) {
	system := fmt.Sprintf(soapStepPrompt, disposition)
	reply, err := p.llm.Generate(ctx, system, "Transcript:\n"+transcript)
	if err != nil {
		return soap.Note{}, err
	}
	return soap.Parse(reply), nil
}

// analyzeSentiment runs the sentiment step. A reply that is not the expected
// JSON is handled leniently: the text is scanned for "positive"/"negative"
// and the score left at 0; only transport failures propagate.
func (p *Pipeline) analyzeSentiment(ctx context.Context, transcript string) (callstate.Sentiment, error) {
	reply, err := p.llm.Generate(ctx, sentimentStepPrompt, "Transcript:\n"+transcript)
	if err != nil {
		return callstate.Sentiment{}, err
	}

	var parsed struct {
		Score       float64 `json:"score"`
		Explanation string  `json:"explanation"`
	}
	if jsonErr := json.Unmarshal([]byte(stripFences(reply)), &parsed); jsonErr != nil {
		return callstate.Sentiment{
			Label:       scanSentimentLabel(reply),
			Explanation: strings.TrimSpace(reply),
		}, nil
	}
	return callstate.Sentiment{
		Score:       parsed.Score,
		Label:       callstate.SentimentLabel(parsed.Score),
		Explanation: parsed.Explanation,
	}, nil
}

// scanSentimentLabel is the lenient fallback for non-JSON sentiment replies.
func scanSentimentLabel(reply string) string {
	lowered := strings.ToLower(reply)
	switch {
	case strings.Contains(lowered, callstate.SentimentPositive):
		return callstate.SentimentPositive
	case strings.Contains(lowered, callstate.SentimentNegative):
		return callstate.SentimentNegative
	default:
		return callstate.SentimentNeutral
	}
}

// labelTopics runs the topic step and parses the line-oriented reply: every
// non-empty line is one topic, an optional trailing "(confidence)" is
// extracted, and only the first [maxTopics] lines are retained.
func (p *Pipeline) labelTopics(ctx context.Context, transcript string) ([]Topic, error) {
	reply, err := p.llm.Generate(ctx, topicsPrompt, "Transcript:\n"+transcript)
	if err != nil {
		return nil, err
	}
	return parseTopics(reply), nil
}

func parseTopics(reply string) []Topic {
	var topics []Topic
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		topic := Topic{Label: line, Confidence: defaultTopicConfidence}
		if m := topicConfidenceRE.FindStringSubmatch(line); m != nil {
			if conf, convErr := strconv.ParseFloat(m[1], 64); convErr == nil {
				topic.Label = strings.TrimSpace(strings.TrimSuffix(line, m[0]))
				topic.Confidence = conf
			}
		}
		topics = append(topics, topic)
		if len(topics) == maxTopics {
			break
		}
	}
	return topics
}

// stripFences removes a surrounding markdown code fence from a model reply.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
