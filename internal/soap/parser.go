package soap

import "strings"

// sectionHeaders lists the canonical headers in S→O→A→P order. Matching is
// case-insensitive and an optional colon after the header is consumed.
var sectionHeaders = []string{"SUBJECTIVE", "OBJECTIVE", "ASSESSMENT", "PLAN"}

// Parse extracts the four named sections from free-form model text.
//
// Each section's content runs from the end of its header to the earliest
// first occurrence of any canonically later header. A section whose header is
// absent yields an empty string — this is not an error, and arbitrary input
// (including the empty string) parses without failing.
//
// Headers appearing out of canonical order are not specially handled: the
// scan only ever looks forward for the next canonical header type, so a
// misplaced PLAN before ASSESSMENT absorbs ASSESSMENT's content into PLAN and
// leaves ASSESSMENT empty. Known data-loss shape, kept deliberately so both
// pipelines and their tests agree on one behaviour.
func Parse(raw string) Note {
	upper := strings.ToUpper(raw)

	// First occurrence of each header, -1 when absent.
	starts := make([]int, len(sectionHeaders))
	ends := make([]int, len(sectionHeaders)) // index just past the header and optional colon
	for i, h := range sectionHeaders {
		idx := strings.Index(upper, h)
		starts[i] = idx
		if idx < 0 {
			continue
		}
		end := idx + len(h)
		// Consume whitespace and a single optional colon after the header.
		for end < len(raw) && (raw[end] == ' ' || raw[end] == '\t') {
			end++
		}
		if end < len(raw) && raw[end] == ':' {
			end++
		}
		ends[i] = end
	}

	sections := make([]string, len(sectionHeaders))
	for i := range sectionHeaders {
		if starts[i] < 0 {
			continue
		}
		contentStart := ends[i]
		contentEnd := len(raw)
		for j := i + 1; j < len(sectionHeaders); j++ {
			if starts[j] >= 0 && starts[j] < contentEnd {
				contentEnd = starts[j]
			}
		}
		if contentEnd < contentStart {
			// A later header type occurs before this section begins; the
			// earlier occurrence already swallowed this section's text.
			continue
		}
		sections[i] = strings.TrimSpace(raw[contentStart:contentEnd])
	}

	return Note{
		Subjective: sections[0],
		Objective:  sections[1],
		Assessment: sections[2],
		Plan:       sections[3],
	}
}
