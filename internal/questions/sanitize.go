package questions

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/angelmondragon/quizfinderz-backend/internal/catalog"
	"github.com/angelmondragon/quizfinderz-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// MaxOptionsPerQuestion caps sanitized option lists.
const MaxOptionsPerQuestion = 6

// MaxBudgetBound is the largest budget bound a NUMERIC(12,2) column holds.
var MaxBudgetBound = decimal.RequireFromString("9999999999.99")

// Sanitize coerces raw generative questions into Questions and restricts every
// tag and type to the run vocabulary. It never fails; it only narrows.
func Sanitize(raw []any, in Input) ([]Question, SanitizeReport) {
	summary := in.Summary
	if summary == nil {
		summary = &catalog.Summary{}
	}
	var report SanitizeReport
	out := make([]Question, 0, len(raw))

	for i, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			report.DroppedQuestions++
			continue
		}
		q := Question{
			Text:  stringOr(field(obj, "text"), fmt.Sprintf("Question %d", i+1)),
			Type:  questionType(field(obj, "type")),
			Order: orderOr(field(obj, "order"), i),
		}
		if rules, ok := field(obj, "conditionalRules", "conditional_rules").(map[string]any); ok {
			q.ConditionalRules = rules
		}

		rawOpts, _ := field(obj, "options").([]any)
		for _, ro := range rawOpts {
			if len(q.Options) == MaxOptionsPerQuestion {
				break
			}
			optObj, ok := ro.(map[string]any)
			if !ok {
				continue
			}
			q.Options = append(q.Options, sanitizeOption(optObj, summary, &report))
		}
		if len(q.Options) == 0 {
			report.DroppedQuestions++
			continue
		}
		out = append(out, q)
	}
	return out, report
}

func sanitizeOption(obj map[string]any, summary *catalog.Summary, report *SanitizeReport) Option {
	opt := Option{
		Text:      stringOr(field(obj, "text"), "Option"),
		BudgetMin: budgetBound(field(obj, "budgetMin", "budget_min"), report),
		BudgetMax: budgetBound(field(obj, "budgetMax", "budget_max"), report),
	}

	tags, dropped := intersect(stringList(field(obj, "matchingTags", "matching_tags")), summary.Vocabulary.CanonicalTag)
	opt.MatchingTags = tags
	report.DroppedTags += dropped

	types, dropped := intersect(stringList(field(obj, "matchingTypes", "matching_types")), summary.Vocabulary.CanonicalType)
	report.DroppedTypes += dropped
	if opt.BudgetMin != nil || opt.BudgetMax != nil {
		types, dropped = narrowToBudget(types, opt, summary)
		report.NarrowedTypes += dropped
	}
	opt.MatchingTypes = types
	return opt
}

// narrowToBudget keeps the types whose price range overlaps the option's budget bounds.
func narrowToBudget(types []string, opt Option, summary *catalog.Summary) ([]string, int) {
	b := Bracket{Min: decimal.Zero, Max: cloneDecimal(opt.BudgetMax)}
	if opt.BudgetMin != nil {
		b.Min = *opt.BudgetMin
	}
	kept := make([]string, 0, len(types))
	for _, t := range types {
		tp, ok := summary.TypePrices(t)
		if !ok {
			continue
		}
		lo, ok := tp.Min()
		if !ok {
			continue
		}
		hi, _ := tp.Max()
		if b.Overlaps(lo, hi) {
			kept = append(kept, t)
		}
	}
	return kept, len(types) - len(kept)
}

func intersect(values []string, canonical func(string) (string, bool)) ([]string, int) {
	out := []string{}
	seen := map[string]struct{}{}
	dropped := 0
	for _, v := range values {
		c, ok := canonical(v)
		if !ok {
			dropped++
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, dropped
}

func field(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringOr(v any, fallback string) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fallback
	}
	return strings.TrimSpace(s)
}

func questionType(v any) enums.QuestionType {
	s, _ := v.(string)
	t, err := enums.ParseQuestionType(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return enums.QuestionTypeMultipleChoice
	}
	return t
}

func orderOr(v any, fallback int) int {
	n, ok := v.(json.Number)
	if !ok {
		return fallback
	}
	f, err := n.Float64()
	if err != nil || f < 0 || f > math.MaxInt32 || math.IsNaN(f) {
		return fallback
	}
	return int(f)
}

func numberOrNil(v any) *decimal.Decimal {
	var raw string
	switch n := v.(type) {
	case json.Number:
		raw = n.String()
	case float64:
		raw = strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}

// budgetBound keeps numeric bounds in [0, MaxBudgetBound] rounded to cents.
// Anything else is dropped and counted.
func budgetBound(v any, report *SanitizeReport) *decimal.Decimal {
	d := numberOrNil(v)
	if d == nil {
		return nil
	}
	rounded := d.Round(bracketBoundsDigits)
	if rounded.IsNegative() || rounded.GreaterThan(MaxBudgetBound) {
		report.DroppedBudgets++
		return nil
	}
	return &rounded
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
