package catalog

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmptyCatalog is returned when summarization is asked to work on no products.
var ErrEmptyCatalog = errors.New("catalog: no products supplied")

// Vocabulary is the closed set of tags and types known for one catalog, in first-seen order.
type Vocabulary struct {
	Tags  []string
	Types []string
}

// HasTag reports whether tag is a member, ignoring case.
func (v Vocabulary) HasTag(tag string) bool {
	_, ok := v.CanonicalTag(tag)
	return ok
}

// HasType reports whether productType is a member, ignoring case.
func (v Vocabulary) HasType(productType string) bool {
	_, ok := v.CanonicalType(productType)
	return ok
}

// CanonicalTag returns the vocabulary spelling of tag.
func (v Vocabulary) CanonicalTag(tag string) (string, bool) {
	return lookupFold(v.Tags, tag)
}

// CanonicalType returns the vocabulary spelling of productType.
func (v Vocabulary) CanonicalType(productType string) (string, bool) {
	return lookupFold(v.Types, productType)
}

func lookupFold(values []string, candidate string) (string, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return "", false
	}
	for _, v := range values {
		if strings.EqualFold(v, candidate) {
			return v, true
		}
	}
	return "", false
}

// TypePrices holds the prices of one product type.
type TypePrices struct {
	Type   string
	Prices []decimal.Decimal
}

// Min returns the lowest price. ok is false when the type has no prices.
func (t TypePrices) Min() (decimal.Decimal, bool) {
	if len(t.Prices) == 0 {
		return decimal.Zero, false
	}
	return decimal.Min(t.Prices[0], t.Prices[1:]...), true
}

// Max returns the highest price. ok is false when the type has no prices.
func (t TypePrices) Max() (decimal.Decimal, bool) {
	if len(t.Prices) == 0 {
		return decimal.Zero, false
	}
	return decimal.Max(t.Prices[0], t.Prices[1:]...), true
}

// Summary is everything the question engine knows about a catalog.
type Summary struct {
	Products   []ProductSummary
	Vocabulary Vocabulary
	Prices     []decimal.Decimal
	// PricesByType follows Vocabulary.Types order.
	PricesByType []TypePrices
}

// TypePrices returns the price list of productType, matched case-insensitively.
func (s Summary) TypePrices(productType string) (TypePrices, bool) {
	for _, tp := range s.PricesByType {
		if strings.EqualFold(tp.Type, productType) {
			return tp, true
		}
	}
	return TypePrices{}, false
}

// Summarize reduces products into vocabulary and price distributions.
func Summarize(products []Product) (*Summary, error) {
	if len(products) == 0 {
		return nil, ErrEmptyCatalog
	}

	summary := &Summary{Products: make([]ProductSummary, 0, len(products))}
	seenTags := map[string]struct{}{}
	seenTypes := map[string]struct{}{}
	typeIndex := map[string]int{}

	for _, p := range products {
		ps := ProductSummary{
			ID:    string(p.ID),
			Title: strings.TrimSpace(p.Title),
			Type:  strings.TrimSpace(p.ProductType),
		}
		for _, tag := range p.Tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			ps.Tags = append(ps.Tags, tag)
			if _, ok := seenTags[tag]; !ok {
				seenTags[tag] = struct{}{}
				summary.Vocabulary.Tags = append(summary.Vocabulary.Tags, tag)
			}
		}
		if ps.Type != "" {
			if _, ok := seenTypes[ps.Type]; !ok {
				seenTypes[ps.Type] = struct{}{}
				summary.Vocabulary.Types = append(summary.Vocabulary.Types, ps.Type)
				typeIndex[ps.Type] = len(summary.PricesByType)
				summary.PricesByType = append(summary.PricesByType, TypePrices{Type: ps.Type})
			}
		}
		if len(p.Variants) > 0 {
			if price, ok := p.Variants[0].Price.Decimal(); ok {
				ps.Price = price
				ps.Priced = true
				summary.Prices = append(summary.Prices, price)
				if ps.Type != "" {
					idx := typeIndex[ps.Type]
					summary.PricesByType[idx].Prices = append(summary.PricesByType[idx].Prices, price)
				}
			}
		}
		summary.Products = append(summary.Products, ps)
	}
	return summary, nil
}
