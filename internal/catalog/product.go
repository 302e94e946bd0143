package catalog

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is one catalog entry as supplied by the commerce provider.
type Product struct {
	ID          ProductID `json:"id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	ProductType string    `json:"product_type,omitempty"`
	Vendor      string    `json:"vendor,omitempty"`
	Tags        []string  `json:"tags"`
	Variants    []Variant `json:"variants"`
}

// Variant carries the variant price. Only the first variant of a product is priced.
type Variant struct {
	Price RawPrice `json:"price"`
}

// ProductID accepts a JSON string or number. Provider REST payloads use numeric ids.
type ProductID string

func (id *ProductID) UnmarshalJSON(data []byte) error {
	raw, err := scalarText(data)
	if err != nil {
		return err
	}
	*id = ProductID(raw)
	return nil
}

// RawPrice accepts a JSON string, number or null and keeps the literal text.
type RawPrice string

func (p *RawPrice) UnmarshalJSON(data []byte) error {
	raw, err := scalarText(data)
	if err != nil {
		return err
	}
	*p = RawPrice(raw)
	return nil
}

func scalarText(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// Decimal parses the price. ok is false for blank, non-numeric or non-positive values.
func (p RawPrice) Decimal() (decimal.Decimal, bool) {
	raw := strings.TrimSpace(string(p))
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// ProductSummary is the reduced, immutable view of a product used by one generation run.
type ProductSummary struct {
	ID    string
	Title string
	Type  string
	Tags  []string
	Price decimal.Decimal
	// Priced is false when the first variant had no usable price.
	Priced bool
}
