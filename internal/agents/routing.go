package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrWong99/soapscribe/internal/callstate"
	"github.com/MrWong99/soapscribe/pkg/provider/llm"
)

// RoutingAgentName identifies the routing agent in audit messages.
const RoutingAgentName = "routing_agent"

// routingPromptTemplate asks for a single bare category word. The category
// list is rendered at construction time from [callstate.RoutingDispositions].
const routingPromptTemplate = `You are a healthcare call router for a health plan's member services line.

Classify the call transcript into exactly one of these categories:
%s

Respond with ONLY the single category word, lowercase, nothing else.`

// Ensure Router satisfies Agent at compile time.
var _ Agent = (*Router)(nil)

// Router classifies the transcript into a call disposition with one model
// call. The reply is lowercased, trimmed, and stored verbatim — membership in
// the offered category set is deliberately not enforced here; the
// orchestrator's branch table gives every unknown tag one documented default
// path instead.
type Router struct {
	llm          llm.Provider
	systemPrompt string
}

// NewRouter returns a Router backed by the given provider.
func NewRouter(provider llm.Provider) *Router {
	cats := make([]string, len(callstate.RoutingDispositions))
	for i, d := range callstate.RoutingDispositions {
		cats[i] = "- " + string(d)
	}
	return &Router{
		llm:          provider,
		systemPrompt: fmt.Sprintf(routingPromptTemplate, strings.Join(cats, "\n")),
	}
}

// Name implements Agent.
func (r *Router) Name() string { return RoutingAgentName }

// Process implements Agent by setting the state's disposition.
func (r *Router) Process(ctx context.Context, st callstate.State) (callstate.State, error) {
	reply, err := r.llm.Generate(ctx, r.systemPrompt, "Transcript:\n"+st.Transcript)
	if err != nil {
		return st, fmt.Errorf("routing agent: %w", err)
	}

	out := st.Clone()
	out.Disposition = callstate.NormalizeDisposition(reply)
	out.Messages = append(out.Messages, callstate.NewMessage(
		RoutingAgentName, callstate.Broadcast,
		fmt.Sprintf("Call classified as %q.", out.Disposition),
	))
	return out, nil
}
