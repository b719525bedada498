package callstate

// Urgency is the urgency engine's assessment of the call.
type Urgency struct {
	// Level is the overall urgency on a 0–10 scale.
	Level int `json:"level"`

	// Indicators breaks the assessment down by category, each 0–10.
	Indicators UrgencyIndicators `json:"indicators"`

	// Reasoning is the model's short justification, if it gave one.
	Reasoning string `json:"reasoning,omitempty"`
}

// UrgencyIndicators is the per-category urgency breakdown.
type UrgencyIndicators struct {
	Medical        int `json:"medical"`
	Administrative int `json:"administrative"`
	Emotional      int `json:"emotional"`
}

// Label maps the overall level onto a display category.
func (u Urgency) Label() string {
	return UrgencyLabel(u.Level)
}

// UrgencyLabel maps an urgency level onto its display category:
// >=9 HIGH URGENCY, >=6 Moderate, >=3 Mild, otherwise No urgency.
func UrgencyLabel(level int) string {
	switch {
	case level >= 9:
		return "HIGH URGENCY"
	case level >= 6:
		return "Moderate"
	case level >= 3:
		return "Mild"
	default:
		return "No urgency"
	}
}

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Sentiment is the sentiment engine's assessment of the caller's mood.
type Sentiment struct {
	// Score is the numeric sentiment on a -10..10 scale.
	Score float64 `json:"score"`

	// Label is the tri-state category derived from Score via
	// [SentimentLabel].
	Label string `json:"label"`

	// Explanation is the model's short justification, if it gave one.
	Explanation string `json:"explanation,omitempty"`
}

// SentimentLabel maps a score onto the tri-state label. The thresholds are
// strict: a score must exceed 3 to count as positive and fall below -3 to
// count as negative, so exactly 3 and exactly -3 are both neutral.
func SentimentLabel(score float64) string {
	switch {
	case score > 3:
		return SentimentPositive
	case score < -3:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
