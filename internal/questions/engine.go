package questions

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/angelmondragon/quizfinderz-backend/internal/catalog"
	"github.com/angelmondragon/quizfinderz-backend/pkg/enums"
	"github.com/angelmondragon/quizfinderz-backend/pkg/logger"
	"github.com/angelmondragon/quizfinderz-backend/pkg/metrics"
)

// EngineOptions wires the engine collaborators. Generative may be nil.
type EngineOptions struct {
	Generative   Source
	Logger       *logger.Logger
	Metrics      *metrics.GenerationMetrics
	MinQuestions int
	MaxQuestions int
}

// Engine turns a catalog into a validated, deduplicated question set.
// It holds no per-run state and is safe for concurrent use.
type Engine struct {
	generative Source
	fallback   RuleBased
	logg       *logger.Logger
	metrics    *metrics.GenerationMetrics
	minQ       int
	maxQ       int
	now        func() time.Time
}

func NewEngine(opts EngineOptions) *Engine {
	logg := opts.Logger
	if logg == nil {
		logg = logger.New(logger.Options{ServiceName: "questions", Output: io.Discard})
	}
	maxQ := opts.MaxQuestions
	if maxQ <= 0 || maxQ > MaxQuestions {
		maxQ = MaxQuestions
	}
	minQ := opts.MinQuestions
	if minQ <= 0 || minQ > maxQ {
		minQ = min(MinQuestions, maxQ)
	}
	return &Engine{
		generative: opts.Generative,
		logg:       logg,
		metrics:    opts.Metrics,
		minQ:       minQ,
		maxQ:       maxQ,
		now:        time.Now,
	}
}

// Generate summarizes products and runs the pipeline. The only error is catalog.ErrEmptyCatalog.
func (e *Engine) Generate(ctx context.Context, products []catalog.Product, style enums.QuizStyle) (*Result, error) {
	in, err := NewInput(products, style)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, in), nil
}

// Run executes one generation run against a prepared input.
func (e *Engine) Run(ctx context.Context, in Input) *Result {
	started := e.now()
	source, batch, reason := e.produce(ctx, in)

	merged := Dedupe(batch.Questions)
	merged, backfilled := Backfill(merged, e.fallback.Build(in), e.minQ)
	if len(merged) > e.maxQ {
		merged = merged[:e.maxQ]
	}
	normalizeOrder(merged)

	result := &Result{
		Questions:      merged,
		Source:         source,
		Backfilled:     backfilled,
		Sanitize:       batch.Sanitize,
		FallbackReason: reason,
	}

	if !batch.Sanitize.Empty() {
		e.metrics.AddSanitizeDrops(metrics.SanitizeDrops{
			Tags:          batch.Sanitize.DroppedTags,
			Types:         batch.Sanitize.DroppedTypes,
			NarrowedTypes: batch.Sanitize.NarrowedTypes,
			Budgets:       batch.Sanitize.DroppedBudgets,
			Questions:     batch.Sanitize.DroppedQuestions,
		})
		e.logg.Info(e.logg.WithFields(ctx, map[string]any{
			"dropped_tags":      batch.Sanitize.DroppedTags,
			"dropped_types":     batch.Sanitize.DroppedTypes,
			"narrowed_types":    batch.Sanitize.NarrowedTypes,
			"dropped_budgets":   batch.Sanitize.DroppedBudgets,
			"dropped_questions": batch.Sanitize.DroppedQuestions,
		}), "questions.sanitized")
	}
	e.metrics.ObserveRun(source.String(), len(merged), backfilled, e.now().Sub(started))
	e.logg.Info(e.logg.WithFields(ctx, map[string]any{
		"source":     source.String(),
		"count":      len(merged),
		"backfilled": backfilled,
		"style":      in.Style.String(),
	}), "questions.generated")
	return result
}

// produce selects the source for this run. A generative failure falls back to the rule-based builder.
func (e *Engine) produce(ctx context.Context, in Input) (enums.QuestionSource, Batch, string) {
	if e.generative != nil {
		batch, err := e.generative.Generate(ctx, in)
		if err == nil {
			return e.generative.Name(), batch, ""
		}
		reason := FallbackReason(err)
		e.metrics.IncFallback(reason)
		fields := e.logg.WithFields(ctx, map[string]any{"reason": reason, "error": err.Error()})
		if errors.Is(err, ErrGeneratorUnavailable) {
			e.logg.Debug(fields, "questions.generative_disabled")
		} else {
			e.logg.Warn(fields, "questions.generative_failed")
		}
		batch, _ = e.fallback.Generate(ctx, in)
		return e.fallback.Name(), batch, reason
	}
	batch, _ := e.fallback.Generate(ctx, in)
	return e.fallback.Name(), batch, ""
}
