// Package soap defines the four-section clinical note format and a tolerant
// parser that recovers sections from free-form model output.
package soap

import (
	"regexp"
	"strings"
)

// Note is a four-section clinical document. Any subset of sections may be
// empty — partially populated notes are valid everywhere and must render and
// compare without error.
type Note struct {
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`
}

// IsEmpty reports whether every section of the note is empty.
func (n Note) IsEmpty() bool {
	return n.Subjective == "" && n.Objective == "" && n.Assessment == "" && n.Plan == ""
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// WordCount returns the whitespace-split token count of the trimmed text.
// An empty section counts as 1: splitting the empty string yields a single
// empty token. Callers use the value for display only.
func WordCount(s string) int {
	return len(whitespaceRE.Split(strings.TrimSpace(s), -1))
}
