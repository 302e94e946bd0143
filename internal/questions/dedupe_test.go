package questions

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMergeKey(t *testing.T) {
	if MergeKey("  What's   your\tBudget? ") != "what's your budget?" {
		t.Fatalf("unexpected merge key %q", MergeKey("  What's   your\tBudget? "))
	}
}

func TestDedupeIsIdempotentOnUniqueInput(t *testing.T) {
	in := []Question{
		{Text: "B", Order: 1, Options: []Option{{Text: "x", MatchingTags: []string{"a"}, MatchingTypes: []string{}}}},
		{Text: "A", Order: 0, Options: []Option{{Text: "y", MatchingTags: []string{}, MatchingTypes: []string{"t"}}}},
	}
	once := Dedupe(in)
	twice := Dedupe(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("dedupe is not idempotent:\n%+v\n%+v", once, twice)
	}
	if once[0].Text != "A" || once[1].Text != "B" {
		t.Fatalf("expected order sort, got %q %q", once[0].Text, once[1].Text)
	}
}

func TestDedupeStableOnOrderTies(t *testing.T) {
	got := Dedupe([]Question{
		{Text: "first", Order: 2, Options: []Option{{Text: "o"}}},
		{Text: "second", Order: 2, Options: []Option{{Text: "o"}}},
		{Text: "zero", Order: 0, Options: []Option{{Text: "o"}}},
	})
	if got[0].Text != "zero" || got[1].Text != "first" || got[2].Text != "second" {
		t.Fatalf("unexpected order %q %q %q", got[0].Text, got[1].Text, got[2].Text)
	}
}

func TestUnionIsCommutative(t *testing.T) {
	a := Option{Text: "Warm", MatchingTags: []string{"a"}}
	b := Option{Text: "warm ", MatchingTags: []string{"b"}}

	ab := mergeOptions([]Option{a}, []Option{b})
	ba := mergeOptions([]Option{b}, []Option{a})
	if len(ab) != 1 || len(ba) != 1 {
		t.Fatalf("expected a single merged option, got %d and %d", len(ab), len(ba))
	}
	want := map[string]bool{"a": true, "b": true}
	for _, merged := range [][]string{ab[0].MatchingTags, ba[0].MatchingTags} {
		if len(merged) != 2 || !want[merged[0]] || !want[merged[1]] {
			t.Fatalf("expected {a,b}, got %v", merged)
		}
	}
}

func TestUnionIsAssociative(t *testing.T) {
	a := []Option{{Text: "o", MatchingTypes: []string{"x"}}}
	b := []Option{{Text: "o", MatchingTypes: []string{"y"}}}
	c := []Option{{Text: "o", MatchingTypes: []string{"z", "x"}}}

	left := mergeOptions(mergeOptions(a, b), c)
	right := mergeOptions(a, mergeOptions(b, c))
	if !reflect.DeepEqual(left[0].MatchingTypes, right[0].MatchingTypes) {
		t.Fatalf("merge is not associative: %v vs %v", left[0].MatchingTypes, right[0].MatchingTypes)
	}
}

func TestMergeKeepsFirstBudgetBound(t *testing.T) {
	ten := decimal.NewFromInt(10)
	twenty := decimal.NewFromInt(20)
	fifty := decimal.NewFromInt(50)

	got := Dedupe([]Question{
		{Text: "Budget", Order: 0, Options: []Option{{Text: "Low", BudgetMax: &fifty}}},
		{Text: "budget", Order: 4, Options: []Option{
			{Text: "low", BudgetMin: &ten, BudgetMax: &twenty},
			{Text: "High", BudgetMin: &fifty},
		}},
	})
	if len(got) != 1 {
		t.Fatalf("expected one merged question, got %d", len(got))
	}
	opts := got[0].Options
	if len(opts) != 2 || opts[0].Text != "Low" || opts[1].Text != "High" {
		t.Fatalf("unexpected merged options %+v", opts)
	}
	if !opts[0].BudgetMax.Equal(fifty) || !opts[0].BudgetMin.Equal(ten) {
		t.Fatalf("expected first-registered max and filled min, got %v %v", opts[0].BudgetMin, opts[0].BudgetMax)
	}
	if got[0].Order != 0 {
		t.Fatalf("order must come from the first registration, got %d", got[0].Order)
	}
}

func TestDedupeWithinOneQuestion(t *testing.T) {
	got := Dedupe([]Question{{Text: "Q", Options: []Option{
		{Text: "Same", MatchingTags: []string{"a"}},
		{Text: "same", MatchingTags: []string{"b"}},
	}}})
	if len(got[0].Options) != 1 || len(got[0].Options[0].MatchingTags) != 2 {
		t.Fatalf("expected colliding options in one question to merge, got %+v", got[0].Options)
	}
}

func TestBackfillSkipsCollisions(t *testing.T) {
	have := []Question{{Text: "What is your budget?"}}
	supply := []Question{{Text: "what is  your budget?"}, {Text: "Style"}, {Text: "Use"}, {Text: "More"}}

	got, added := Backfill(have, supply, 3)
	if added != 2 || len(got) != 3 {
		t.Fatalf("expected two appended questions, got %d (%d)", added, len(got))
	}
	if got[1].Text != "Style" || got[2].Text != "Use" {
		t.Fatalf("unexpected backfill order %q %q", got[1].Text, got[2].Text)
	}

	full, added := Backfill(got, supply, 3)
	if added != 0 || len(full) != 3 {
		t.Fatal("backfill must not run once the target is reached")
	}
}

func TestNormalizeOrder(t *testing.T) {
	qs := []Question{{Order: 0}, {Order: 0}, {Order: 5}, {Order: 1}}
	normalizeOrder(qs)
	want := []int{0, 1, 5, 6}
	for i, q := range qs {
		if q.Order != want[i] {
			t.Fatalf("question %d: expected order %d got %d", i, want[i], q.Order)
		}
	}
}
