package questions

import (
	"context"

	"github.com/angelmondragon/quizfinderz-backend/internal/catalog"
	"github.com/angelmondragon/quizfinderz-backend/pkg/enums"
)

const (
	// MinQuestions is the count backfill tries to reach.
	MinQuestions = 5
	// MaxQuestions is the hard cap on any result.
	MaxQuestions = 7
)

// Input is the read-only state shared by every stage of one run.
type Input struct {
	Summary  *catalog.Summary
	Brackets []Bracket
	Style    enums.QuizStyle
}

// NewInput summarizes products and plans brackets for a run.
func NewInput(products []catalog.Product, style enums.QuizStyle) (Input, error) {
	summary, err := catalog.Summarize(products)
	if err != nil {
		return Input{}, err
	}
	return Input{
		Summary:  summary,
		Brackets: PlanBrackets(summary),
		Style:    style,
	}, nil
}

// Batch is what a Source hands to the merge stages.
type Batch struct {
	Questions []Question
	Sanitize  SanitizeReport
}

// Source produces a candidate question set.
type Source interface {
	Name() enums.QuestionSource
	Generate(ctx context.Context, in Input) (Batch, error)
}
