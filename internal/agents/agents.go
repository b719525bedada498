// Package agents implements the single-purpose transforms of the multi-agent
// documentation pipeline: call-type routing, the specialist extraction agents
// (authorization, claims, general inquiry, medical entities), the urgency and
// sentiment analysis engines, and the SOAP note generator.
//
// Every agent follows the same shape: one model call built from a fixed
// system prompt, then a tolerant decode of the reply. Agents that produce
// structured JSON never abort the run on a malformed reply — they store the
// raw text in an error-flagged fragment and continue, so a misbehaving model
// degrades the documentation instead of destroying it. Transport failures,
// by contrast, always propagate.
//
// Agents are stateless aside from configuration and safe for concurrent use.
// Process receives a [callstate.State] copy and returns a modified copy with
// the agent's owned field populated and exactly one audit message appended.
package agents

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/MrWong99/soapscribe/internal/callstate"
)

// Agent is a single pipeline step.
type Agent interface {
	// Name identifies the agent in audit messages and progress events.
	Name() string

	// Process runs the agent's one model call against st and returns the
	// updated state. A returned error aborts the whole run.
	Process(ctx context.Context, st callstate.State) (callstate.State, error)
}

// decodeJSON strips optional markdown fences and unmarshals the reply into T.
func decodeJSON[T any](raw string) (*T, error) {
	var v T
	if err := json.Unmarshal([]byte(stripFences(raw)), &v); err != nil {
		return nil, err
	}
	return &v, nil
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

// orNotFound substitutes "not found" for empty extracted fields so summary
// messages never render blanks.
func orNotFound(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not found"
	}
	return s
}
