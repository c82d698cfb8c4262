package engine

// weightedRandomSelect picks one option with probability proportional to
// its weight. A weight list that is absent or mismatched in length falls
// back to a uniform pick. Zero-weight options are never selected; if no
// option carries positive weight nothing is selected.
func (e *Engine) weightedRandomSelect(options []string, weights []int) (string, bool) {
	if len(options) == 0 {
		return "", false
	}
	if len(weights) != len(options) {
		return options[e.rng.Intn(len(options))], true
	}

	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return "", false
	}

	r := e.rng.Intn(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if r < w {
			return options[i], true
		}
		r -= w
	}
	return options[len(options)-1], true
}
