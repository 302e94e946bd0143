package questions

import (
	"sort"
	"strings"
)

// MergeKey normalizes text so case and whitespace variants collide.
func MergeKey(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// Dedupe merges questions sharing a merge key and sorts the result by the
// order recorded at first registration. Ties keep first-seen order.
func Dedupe(questions []Question) []Question {
	index := map[string]int{}
	out := make([]Question, 0, len(questions))

	for _, q := range questions {
		key := MergeKey(q.Text)
		if pos, ok := index[key]; ok {
			out[pos].Options = mergeOptions(out[pos].Options, q.Options)
			continue
		}
		index[key] = len(out)
		registered := q
		registered.Options = mergeOptions(nil, q.Options)
		out = append(out, registered)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// mergeOptions folds incoming into existing by option merge key. New texts are appended.
func mergeOptions(existing, incoming []Option) []Option {
	merged := make([]Option, 0, len(existing)+len(incoming))
	index := map[string]int{}
	for _, opt := range existing {
		index[MergeKey(opt.Text)] = len(merged)
		merged = append(merged, opt)
	}
	for _, opt := range incoming {
		key := MergeKey(opt.Text)
		if pos, ok := index[key]; ok {
			merged[pos] = unionOption(merged[pos], opt)
			continue
		}
		index[key] = len(merged)
		merged = append(merged, cloneOption(opt))
	}
	return merged
}

// unionOption unions match sets. Bounds already set on first are kept.
func unionOption(first, second Option) Option {
	out := cloneOption(first)
	out.MatchingTags = union(out.MatchingTags, second.MatchingTags)
	out.MatchingTypes = union(out.MatchingTypes, second.MatchingTypes)
	if out.BudgetMin == nil {
		out.BudgetMin = cloneDecimal(second.BudgetMin)
	}
	if out.BudgetMax == nil {
		out.BudgetMax = cloneDecimal(second.BudgetMax)
	}
	if out.PriceRange == nil && second.PriceRange != nil {
		rng := *second.PriceRange
		out.PriceRange = &rng
	}
	return out
}

func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := map[string]struct{}{}
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func cloneOption(o Option) Option {
	out := o
	out.MatchingTags = append([]string{}, o.MatchingTags...)
	out.MatchingTypes = append([]string{}, o.MatchingTypes...)
	out.BudgetMin = cloneDecimal(o.BudgetMin)
	out.BudgetMax = cloneDecimal(o.BudgetMax)
	if o.PriceRange != nil {
		rng := *o.PriceRange
		out.PriceRange = &rng
	}
	return out
}
