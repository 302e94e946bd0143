package questions

import (
	"fmt"

	"github.com/angelmondragon/quizfinderz-backend/internal/catalog"
	"github.com/shopspring/decimal"
)

const (
	bracketCount        = 4
	maxTypesPerBracket  = 3
	bracketBoundsDigits = 2
)

// centsBelow is the bound under which labels keep cents.
var centsBelow = decimal.NewFromInt(10)

// defaultAverage seeds the brackets when no product carries a usable price.
var defaultAverage = decimal.NewFromInt(100)

// bracketFactors are the lower bounds of each bracket in units of the average price.
var bracketFactors = []decimal.Decimal{
	decimal.Zero,
	decimal.RequireFromString("0.5"),
	decimal.NewFromInt(1),
	decimal.RequireFromString("1.5"),
}

// Bracket is a half-open price range [Min, Max). A nil Max is unbounded.
type Bracket struct {
	Index         int
	Min           decimal.Decimal
	Max           *decimal.Decimal
	EligibleTypes []string
}

// Open reports whether the bracket has no upper bound.
func (b Bracket) Open() bool {
	return b.Max == nil
}

// Overlaps applies the inclusive overlap test between [lo, hi] and the bracket.
func (b Bracket) Overlaps(lo, hi decimal.Decimal) bool {
	if hi.LessThan(b.Min) {
		return false
	}
	if b.Max != nil && lo.GreaterThan(*b.Max) {
		return false
	}
	return true
}

// PlanBrackets derives four contiguous, average-relative brackets from the summary prices.
// Without prices it returns default brackets with no eligible types.
func PlanBrackets(summary *catalog.Summary) []Bracket {
	var prices []decimal.Decimal
	if summary != nil {
		prices = summary.Prices
	}
	avg := defaultAverage
	if len(prices) > 0 {
		avg = decimal.Avg(prices[0], prices[1:]...)
	}

	brackets := make([]Bracket, bracketCount)
	for i := 0; i < bracketCount; i++ {
		b := Bracket{
			Index: i,
			Min:   avg.Mul(bracketFactors[i]).Round(bracketBoundsDigits),
		}
		if i+1 < bracketCount {
			b.Max = decimalPtr(avg.Mul(bracketFactors[i+1]).Round(bracketBoundsDigits))
		}
		if len(prices) > 0 {
			b.EligibleTypes = eligibleTypes(b, summary.PricesByType)
		}
		brackets[i] = b
	}
	return brackets
}

func eligibleTypes(b Bracket, byType []catalog.TypePrices) []string {
	out := []string{}
	for _, tp := range byType {
		if len(out) == maxTypesPerBracket {
			break
		}
		lo, ok := tp.Min()
		if !ok {
			continue
		}
		hi, _ := tp.Max()
		if b.Overlaps(lo, hi) {
			out = append(out, tp.Type)
		}
	}
	return out
}

// Label renders the bracket bounds as shopper-facing text.
func (b Bracket) Label() string {
	switch {
	case b.Index == 0 && b.Max != nil:
		return "Under " + dollars(*b.Max)
	case b.Max == nil:
		return "Over " + dollars(b.Min)
	default:
		return dollars(b.Min) + " - " + dollars(*b.Max)
	}
}

// Labels renders one label per bracket. Labels that still collide after
// rounding get a tier suffix so every bracket keeps its own option.
func Labels(brackets []Bracket) []string {
	labels := make([]string, len(brackets))
	seen := make(map[string]int, len(brackets))
	for i, b := range brackets {
		labels[i] = b.Label()
		seen[MergeKey(labels[i])]++
	}
	for i := range labels {
		if seen[MergeKey(labels[i])] > 1 {
			labels[i] = fmt.Sprintf("%s (tier %d)", labels[i], i+1)
		}
	}
	return labels
}

func dollars(d decimal.Decimal) string {
	if d.LessThan(centsBelow) && !d.Equal(d.Truncate(0)) {
		return "$" + d.StringFixed(bracketBoundsDigits)
	}
	return "$" + d.Round(0).String()
}
