// Package evaluation scores two independently produced SOAP notes against
// each other with a single judging model call and a deterministic weighted
// quality formula.
package evaluation

// Winner identifies which documentation system produced the better note.
type Winner string

const (
	// WinnerMultiAgent means the branching multi-agent pipeline won.
	WinnerMultiAgent Winner = "multiagent"

	// WinnerLegacy means the linear baseline pipeline won.
	WinnerLegacy Winner = "legacy"

	// WinnerTie means neither note was judged better.
	WinnerTie Winner = "tie"
)

// Weights of the overall-quality formula. Fixed: completeness and accuracy
// carry 0.3 each, clinical relevance and actionability 0.2 each.
const (
	weightCompleteness      = 0.3
	weightAccuracy          = 0.3
	weightClinicalRelevance = 0.2
	weightActionability     = 0.2
)

// DimensionScore is one judged dimension: a 0–10 score plus the judge's
// comments.
type DimensionScore struct {
	Score    float64 `json:"score"`
	Comments string  `json:"comments"`
}

// SystemEvaluation holds the four judged dimensions for one note plus the
// derived overall quality.
type SystemEvaluation struct {
	Completeness      DimensionScore `json:"completeness"`
	Accuracy          DimensionScore `json:"accuracy"`
	ClinicalRelevance DimensionScore `json:"clinicalRelevance"`
	Actionability     DimensionScore `json:"actionability"`

	// OverallQuality is always the local weighted recomputation over the four
	// dimension scores — model-supplied values are discarded for internal
	// consistency. See [OverallQuality].
	OverallQuality float64 `json:"overallQuality"`
}

// Results is the full comparison output for one documentation run.
type Results struct {
	// OverallScore is the mean of the two systems' overall qualities.
	OverallScore float64 `json:"overallScore"`

	MultiAgent SystemEvaluation `json:"multiAgent"`
	Sequential SystemEvaluation `json:"sequential"`

	Winner    Winner `json:"winner"`
	Reasoning string `json:"reasoning"`
}

// OverallQuality applies the fixed weighting to the four dimension scores:
// 0.3*completeness + 0.3*accuracy + 0.2*clinicalRelevance + 0.2*actionability.
func OverallQuality(e SystemEvaluation) float64 {
	return weightCompleteness*e.Completeness.Score +
		weightAccuracy*e.Accuracy.Score +
		weightClinicalRelevance*e.ClinicalRelevance.Score +
		weightActionability*e.Actionability.Score
}
