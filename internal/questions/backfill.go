package questions

// Backfill appends supply questions whose merge key is not present until the
// result has target questions or supply runs out. It returns the new slice and
// how many questions were appended.
func Backfill(questions, supply []Question, target int) ([]Question, int) {
	if len(questions) >= target {
		return questions, 0
	}
	present := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		present[MergeKey(q.Text)] = struct{}{}
	}
	added := 0
	for _, q := range supply {
		if len(questions) >= target {
			break
		}
		key := MergeKey(q.Text)
		if _, ok := present[key]; ok {
			continue
		}
		present[key] = struct{}{}
		questions = append(questions, q)
		added++
	}
	return questions, added
}

// normalizeOrder makes order values strictly increasing in slice order.
func normalizeOrder(questions []Question) {
	for i := 1; i < len(questions); i++ {
		if questions[i].Order <= questions[i-1].Order {
			questions[i].Order = questions[i-1].Order + 1
		}
	}
}
