package questions

import (
	"github.com/angelmondragon/quizfinderz-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// PriceRange is the observed price span of a product type.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Option is one answer with the product predicates it selects.
type Option struct {
	Text          string           `json:"text"`
	MatchingTags  []string         `json:"matchingTags"`
	MatchingTypes []string         `json:"matchingTypes"`
	BudgetMin     *decimal.Decimal `json:"budgetMin,omitempty"`
	BudgetMax     *decimal.Decimal `json:"budgetMax,omitempty"`
	PriceRange    *PriceRange      `json:"priceRange,omitempty"`
}

// Question is a generated quiz question. Order, not slice position, is the sort key.
type Question struct {
	Text             string             `json:"text"`
	Type             enums.QuestionType `json:"type"`
	Order            int                `json:"order"`
	ConditionalRules map[string]any     `json:"conditionalRules,omitempty"`
	Options          []Option           `json:"options"`
}

// SanitizeReport counts what the validator removed from generative output.
// DroppedTypes are outside the vocabulary; NarrowedTypes are in it but priced
// outside the option's budget.
type SanitizeReport struct {
	DroppedTags      int `json:"droppedTags"`
	DroppedTypes     int `json:"droppedTypes"`
	NarrowedTypes    int `json:"narrowedTypes"`
	DroppedBudgets   int `json:"droppedBudgets"`
	DroppedQuestions int `json:"droppedQuestions"`
}

// Empty reports whether nothing was removed.
func (r SanitizeReport) Empty() bool {
	return r.DroppedTags == 0 && r.DroppedTypes == 0 && r.NarrowedTypes == 0 &&
		r.DroppedBudgets == 0 && r.DroppedQuestions == 0
}

// Result is the outcome of one generation run.
type Result struct {
	Questions  []Question           `json:"questions"`
	Source     enums.QuestionSource `json:"source"`
	Backfilled int                  `json:"backfilled"`
	Sanitize   SanitizeReport       `json:"sanitize"`
	// FallbackReason is set when the generative source failed.
	FallbackReason string `json:"fallbackReason,omitempty"`
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	return decimalPtr(*d)
}
