// Package orchestrator runs the branching multi-agent documentation
// pipeline: routing, one disposition-selected specialist, the three analysis
// engines in parallel, and the SOAP generator.
//
// One [callstate.State] threads through the run. Sequential stages each
// receive the previous stage's result; the parallel stage hands every engine
// its own snapshot and merges the three results afterwards (see merge.go).
// Any stage error aborts the whole run — partial state is never returned.
// Per-reply decode failures inside the agents are not stage errors; the
// agents degrade and continue on their own.
package orchestrator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/soapscribe/internal/agents"
	"github.com/MrWong99/soapscribe/internal/callstate"
	"github.com/MrWong99/soapscribe/pkg/provider/llm"
)

// TotalSteps is the number of progress stages in one orchestrator run:
// routing, specialist, analysis, note generation. Callers that append an
// evaluation stage renumber the events themselves.
const TotalSteps = 4

// Progress is invoked synchronously at stage boundaries. It is purely
// observational: a nil Progress is valid and correctness never depends on it
// being called.
type Progress func(st callstate.State, step, total int, agent, input, output string)

// Orchestrator wires the agents of the multi-agent pipeline. All fields are
// fixed at construction; the orchestrator itself is stateless per run and
// safe for concurrent use.
type Orchestrator struct {
	router      agents.Agent
	specialists map[callstate.Disposition]agents.Agent
	fallback    agents.Agent
	analyses    []agents.Agent
	generator   agents.Agent
}

// New builds an Orchestrator with the full agent set backed by the given
// provider. The specialist branch table maps authorization and claims_inquiry
// to their dedicated specialists; every other disposition — recognised or
// not — takes the general-inquiry branch.
func New(provider llm.Provider) *Orchestrator {
	general := agents.NewGeneralAgent(provider)
	return &Orchestrator{
		router: agents.NewRouter(provider),
		specialists: map[callstate.Disposition]agents.Agent{
			callstate.DispositionAuthorization: agents.NewAuthorizationAgent(provider),
			callstate.DispositionClaimsInquiry: agents.NewClaimsAgent(provider),
		},
		fallback: general,
		analyses: []agents.Agent{
			agents.NewUrgencyEngine(provider),
			agents.NewSentimentEngine(provider),
			agents.NewMedicalAgent(provider),
		},
		generator: agents.NewSOAPGenerator(provider),
	}
}

// Run executes the full multi-agent pipeline for transcript and returns the
// final state. progress may be nil.
func (o *Orchestrator) Run(ctx context.Context, transcript string, progress Progress) (callstate.State, error) {
	st := callstate.New(transcript)

	// Stage 1: routing.
	st, err := o.router.Process(ctx, st)
	if err != nil {
		return callstate.State{}, fmt.Errorf("orchestrator: routing: %w", err)
	}
	report(progress, st, 1, o.router.Name(), "transcript", string(st.Disposition))

	// Stage 2: disposition-selected specialist.
	specialist := o.specialist(st.Disposition)
	st, err = specialist.Process(ctx, st)
	if err != nil {
		return callstate.State{}, fmt.Errorf("orchestrator: specialist %s: %w", specialist.Name(), err)
	}
	report(progress, st, 2, specialist.Name(), string(st.Disposition), lastMessage(st))

	// Stage 3: the three analysis engines, in parallel. Each receives its own
	// snapshot of the pre-branch state; join semantics are wait-for-all,
	// fail-if-any — there is no partial-results path.
	branches := make([]callstate.State, len(o.analyses))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, engine := range o.analyses {
		eg.Go(func() error {
			res, engineErr := engine.Process(egCtx, st.Clone())
			if engineErr != nil {
				return fmt.Errorf("orchestrator: %s: %w", engine.Name(), engineErr)
			}
			branches[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return callstate.State{}, err
	}
	st, err = mergeAnalyses(st, branches)
	if err != nil {
		return callstate.State{}, fmt.Errorf("orchestrator: merge: %w", err)
	}
	report(progress, st, 3, "analysis", "transcript", lastMessage(st))

	// Stage 4: SOAP note generation from the accumulated state.
	st, err = o.generator.Process(ctx, st)
	if err != nil {
		return callstate.State{}, fmt.Errorf("orchestrator: soap generation: %w", err)
	}
	report(progress, st, 4, o.generator.Name(), "accumulated state", lastMessage(st))

	return st, nil
}

// specialist resolves the branch table for a disposition. Unknown tags are
// not errors: they fall through to the general-inquiry agent.
func (o *Orchestrator) specialist(d callstate.Disposition) agents.Agent {
	if s, ok := o.specialists[d]; ok {
		return s
	}
	return o.fallback
}

// report fires the progress callback when one is registered.
func report(p Progress, st callstate.State, step int, agent, input, output string) {
	if p != nil {
		p(st, step, TotalSteps, agent, input, output)
	}
}

// lastMessage returns the content of the most recently appended audit
// message, used as the progress output summary.
func lastMessage(st callstate.State) string {
	if len(st.Messages) == 0 {
		return ""
	}
	return st.Messages[len(st.Messages)-1].Content
}
