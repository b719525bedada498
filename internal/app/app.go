// Package app wires the two documentation pipelines and the evaluation engine
// into the caller-facing entry points: run one pipeline, run the other, or
// run both and have the judge compare their notes.
package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/soapscribe/internal/callstate"
	"github.com/MrWong99/soapscribe/internal/evaluation"
	"github.com/MrWong99/soapscribe/internal/observe"
	"github.com/MrWong99/soapscribe/internal/orchestrator"
	"github.com/MrWong99/soapscribe/internal/sequential"
	"github.com/MrWong99/soapscribe/pkg/provider/llm"
)

// EvaluationAgentName identifies the judging step in audit messages.
const EvaluationAgentName = "evaluation_agent"

// evaluatedTotalSteps is the progress total for a full dual-pipeline run: the
// orchestrator's stages plus the evaluation stage.
const evaluatedTotalSteps = orchestrator.TotalSteps + 1

// App bundles the pipelines behind the three entry points. It holds no
// per-run state; concurrent calls are safe (one-run-in-flight is the
// caller's policy, not enforced here).
type App struct {
	provider     llm.Provider
	providerName string
	orch         *orchestrator.Orchestrator
	seq          *sequential.Pipeline
	eval         *evaluation.Engine
	metrics      *observe.Metrics
}

// Option is a functional option for configuring an [App].
type Option func(*App)

// WithMetrics sets the metrics instance. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// New creates an App whose model calls all go through provider. providerName
// is only used as a metric attribute.
func New(providerName string, provider llm.Provider, opts ...Option) *App {
	a := &App{
		provider:     provider,
		providerName: providerName,
		orch:         orchestrator.New(provider),
		seq:          sequential.New(provider),
		eval:         evaluation.New(provider),
	}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}
	return a
}

// Provider returns the model provider the app was built with, for status
// probes.
func (a *App) Provider() llm.Provider { return a.provider }

// RunSequentialPipeline runs the linear baseline pipeline on transcript.
func (a *App) RunSequentialPipeline(ctx context.Context, transcript string) (sequential.DocumentationResult, error) {
	a.metrics.ActiveRuns.Add(ctx, 1)
	defer a.metrics.ActiveRuns.Add(ctx, -1)
	start := time.Now()

	res, err := a.seq.Run(ctx, transcript)
	if err != nil {
		a.metrics.RecordProviderError(ctx, a.providerName)
		return sequential.DocumentationResult{}, err
	}
	a.metrics.RecordPipelineRun(ctx, "sequential", time.Since(start).Seconds())

	observe.Logger(ctx).Info("sequential pipeline completed",
		"disposition", res.Disposition,
		"topics", len(res.Topics),
	)
	return res, nil
}

// RunMultiAgentSystem runs the branching multi-agent pipeline on transcript.
// progress may be nil.
func (a *App) RunMultiAgentSystem(ctx context.Context, transcript string, progress orchestrator.Progress) (callstate.State, error) {
	a.metrics.ActiveRuns.Add(ctx, 1)
	defer a.metrics.ActiveRuns.Add(ctx, -1)
	start := time.Now()

	st, err := a.orch.Run(ctx, transcript, progress)
	if err != nil {
		a.metrics.RecordProviderError(ctx, a.providerName)
		return callstate.State{}, err
	}
	a.metrics.RecordPipelineRun(ctx, "multiagent", time.Since(start).Seconds())

	observe.Logger(ctx).Info("multi-agent pipeline completed",
		"disposition", st.Disposition,
		"messages", len(st.Messages),
	)
	return st, nil
}

// ProcessAndEvaluateCall runs both pipelines on transcript (concurrently),
// has the judge compare their SOAP notes, and returns the multi-agent state
// with the evaluation results attached. progress may be nil; when supplied it
// receives the orchestrator's stage events renumbered out of
// [evaluatedTotalSteps], then one final event for the evaluation stage.
func (a *App) ProcessAndEvaluateCall(ctx context.Context, transcript string, progress orchestrator.Progress) (callstate.State, error) {
	a.metrics.ActiveRuns.Add(ctx, 1)
	defer a.metrics.ActiveRuns.Add(ctx, -1)
	start := time.Now()

	var wrapped orchestrator.Progress
	if progress != nil {
		wrapped = func(st callstate.State, step, _ int, agent, input, output string) {
			progress(st, step, evaluatedTotalSteps, agent, input, output)
		}
	}

	var (
		multiState callstate.State
		seqResult  sequential.DocumentationResult
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		st, err := a.orch.Run(egCtx, transcript, wrapped)
		if err != nil {
			return err
		}
		multiState = st
		return nil
	})
	eg.Go(func() error {
		res, err := a.seq.Run(egCtx, transcript)
		if err != nil {
			return err
		}
		seqResult = res
		return nil
	})
	if err := eg.Wait(); err != nil {
		a.metrics.RecordProviderError(ctx, a.providerName)
		return callstate.State{}, fmt.Errorf("app: process call: %w", err)
	}

	results, err := a.eval.Compare(ctx, transcript, multiState.Note, seqResult.Note)
	if err != nil {
		a.metrics.RecordProviderError(ctx, a.providerName)
		return callstate.State{}, fmt.Errorf("app: process call: %w", err)
	}
	a.metrics.RecordEvaluationOutcome(ctx, string(results.Winner))

	out := multiState.Clone()
	out.Evaluation = &results
	out.Messages = append(out.Messages, callstate.NewMessage(
		EvaluationAgentName, callstate.Broadcast,
		fmt.Sprintf("Evaluation complete: winner %s (multi-agent %.1f vs sequential %.1f).",
			results.Winner, results.MultiAgent.OverallQuality, results.Sequential.OverallQuality),
	))
	if progress != nil {
		progress(out, evaluatedTotalSteps, evaluatedTotalSteps,
			EvaluationAgentName, "both SOAP notes", results.Reasoning)
	}
	a.metrics.RecordPipelineRun(ctx, "evaluated", time.Since(start).Seconds())

	observe.Logger(ctx).Info("dual-pipeline evaluation completed",
		"winner", results.Winner,
		"overall_score", results.OverallScore,
	)
	return out, nil
}
