package questions

import (
	"context"
	"strings"

	"github.com/angelmondragon/quizfinderz-backend/internal/catalog"
	"github.com/angelmondragon/quizfinderz-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxCategoryOptions = 6
	maxStyleOptions    = 4
	minStyleTags       = 2
	minCategoryTypes   = 2
)

const (
	orderUseCase = iota
	orderBudget
	orderCategory
	orderStyle
	orderFeature
)

// styleKeywords are matched as substrings of catalog tags.
var styleKeywords = []string{
	"minimal", "modern", "classic", "vintage", "retro", "boho", "rustic", "elegant",
	"luxury", "casual", "sporty", "street", "bold", "chic", "natural", "industrial",
}

type fixedOption struct {
	text string
	tags []string
}

var useCaseOptions = []fixedOption{
	{text: "Everyday use", tags: []string{"everyday", "daily", "essentials"}},
	{text: "A gift for someone", tags: []string{"gift", "present", "occasion"}},
	{text: "Work or professional use", tags: []string{"work", "professional", "office"}},
	{text: "Outdoors and adventure", tags: []string{"outdoor", "adventure", "travel"}},
}

var featureOptions = []fixedOption{
	{text: "Quality and durability", tags: []string{"quality", "durable", "premium"}},
	{text: "Best value for money", tags: []string{"value", "affordable", "sale"}},
	{text: "Unique design", tags: []string{"unique", "design", "handmade"}},
	{text: "Sustainable materials", tags: []string{"eco-friendly", "sustainable", "organic"}},
}

type archetypeText struct {
	useCase, budget, category, style, feature string
}

var rulebasedText = map[enums.QuizStyle]archetypeText{
	enums.QuizStyleFun: {
		useCase:  "What's the big plan for your new find?",
		budget:   "How much are you looking to splash out?",
		category: "Which of these catches your eye?",
		style:    "Pick the vibe that feels most like you!",
		feature:  "What would make you love it even more?",
	},
	enums.QuizStyleProfessional: {
		useCase:  "What will you mainly use this for?",
		budget:   "What is your budget?",
		category: "Which product category are you interested in?",
		style:    "Which style do you prefer?",
		feature:  "Which feature matters most to you?",
	},
	enums.QuizStyleDetailed: {
		useCase:  "Tell us how you plan to use your purchase so we can narrow down the right fit.",
		budget:   "Which price range fits the budget you have in mind for this purchase?",
		category: "Which of our product categories best matches what you are shopping for today?",
		style:    "Which of these design styles best reflects your personal taste?",
		feature:  "When comparing options, which quality would you weigh most heavily?",
	},
}

// RuleBased builds the deterministic fallback question set.
type RuleBased struct{}

// Name implements Source.
func (RuleBased) Name() enums.QuestionSource {
	return enums.QuestionSourceFallback
}

// Generate implements Source. It never fails.
func (r RuleBased) Generate(_ context.Context, in Input) (Batch, error) {
	return Batch{Questions: r.Build(in)}, nil
}

// Build emits every archetype whose precondition holds, in fixed order, capped at MaxQuestions.
func (RuleBased) Build(in Input) []Question {
	text, ok := rulebasedText[in.Style]
	if !ok {
		text = rulebasedText[enums.QuizStyleProfessional]
	}
	summary := in.Summary
	if summary == nil {
		summary = &catalog.Summary{}
	}

	out := []Question{fixedQuestion(text.useCase, orderUseCase, useCaseOptions)}
	if len(summary.Prices) > 0 {
		out = append(out, budgetQuestion(text.budget, in.Brackets))
	}
	if q, ok := categoryQuestion(text.category, summary); ok {
		out = append(out, q)
	}
	if q, ok := styleQuestion(text.style, summary.Vocabulary.Tags); ok {
		out = append(out, q)
	}
	out = append(out, fixedQuestion(text.feature, orderFeature, featureOptions))

	if len(out) > MaxQuestions {
		out = out[:MaxQuestions]
	}
	return out
}

func fixedQuestion(text string, order int, fixed []fixedOption) Question {
	opts := make([]Option, 0, len(fixed))
	for _, f := range fixed {
		opts = append(opts, Option{
			Text:          f.text,
			MatchingTags:  append([]string(nil), f.tags...),
			MatchingTypes: []string{},
		})
	}
	return Question{
		Text:    text,
		Type:    enums.QuestionTypeMultipleChoice,
		Order:   order,
		Options: opts,
	}
}

func budgetQuestion(text string, brackets []Bracket) Question {
	opts := make([]Option, 0, len(brackets))
	labels := Labels(brackets)
	for i, b := range brackets {
		opts = append(opts, Option{
			Text:          labels[i],
			MatchingTags:  []string{},
			MatchingTypes: append([]string{}, b.EligibleTypes...),
			BudgetMin:     decimalPtr(b.Min),
			BudgetMax:     cloneDecimal(b.Max),
		})
	}
	return Question{
		Text:    text,
		Type:    enums.QuestionTypeMultipleChoice,
		Order:   orderBudget,
		Options: opts,
	}
}

func categoryQuestion(text string, summary *catalog.Summary) (Question, bool) {
	types := summary.Vocabulary.Types
	if len(types) < minCategoryTypes {
		return Question{}, false
	}
	if len(types) > maxCategoryOptions {
		types = types[:maxCategoryOptions]
	}
	opts := make([]Option, 0, len(types))
	for _, t := range types {
		rng := PriceRange{Min: decimal.Zero, Max: decimal.Zero}
		if tp, ok := summary.TypePrices(t); ok {
			if lo, ok := tp.Min(); ok {
				hi, _ := tp.Max()
				rng = PriceRange{Min: lo, Max: hi}
			}
		}
		opts = append(opts, Option{
			Text:          t,
			MatchingTags:  []string{},
			MatchingTypes: []string{t},
			PriceRange:    &rng,
		})
	}
	return Question{
		Text:    text,
		Type:    enums.QuestionTypeMultipleChoice,
		Order:   orderCategory,
		Options: opts,
	}, true
}

func styleQuestion(text string, tags []string) (Question, bool) {
	matches := styleTags(tags)
	if len(matches) < minStyleTags {
		return Question{}, false
	}
	if len(matches) > maxStyleOptions {
		matches = matches[:maxStyleOptions]
	}
	caser := cases.Title(language.English)
	opts := make([]Option, 0, len(matches))
	for _, tag := range matches {
		opts = append(opts, Option{
			Text:          caser.String(tag),
			MatchingTags:  []string{tag},
			MatchingTypes: []string{},
		})
	}
	return Question{
		Text:    text,
		Type:    enums.QuestionTypeMultipleChoice,
		Order:   orderStyle,
		Options: opts,
	}, true
}

func styleTags(tags []string) []string {
	out := []string{}
	for _, tag := range tags {
		lower := strings.ToLower(tag)
		for _, kw := range styleKeywords {
			if strings.Contains(lower, kw) {
				out = append(out, tag)
				break
			}
		}
	}
	return out
}
