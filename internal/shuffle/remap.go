package shuffle

import "fmt"

// Option is one populated answer option, tagged with its canonical
// 1-based number so the correct answer can be located after shuffling.
type Option struct {
	Num  int    `json:"num"`
	Text string `json:"text"`
}

// OptionSeed derives the per-question option-shuffle seed from the
// attempt's seed and the question's internal id. Different (attempt,
// question) pairs can collide when the sums match; that is accepted as
// a benign property of a presentation-only shuffle.
func OptionSeed(attemptSeed int64, questionID uint) int64 {
	return attemptSeed + int64(questionID)
}

// RemapOptions shuffles a question's populated options with the given
// seed and returns them together with the new 1-based position of the
// canonical answer within the shuffled order. answer must reference a
// populated option; the option list must be non-empty.
func RemapOptions(opts []Option, answer int, seed int64) ([]Option, int, error) {
	if len(opts) == 0 {
		return nil, 0, fmt.Errorf("shuffle: no options to remap")
	}

	found := false
	for _, opt := range opts {
		if opt.Num == answer {
			found = true
			break
		}
	}
	if !found {
		return nil, 0, fmt.Errorf("shuffle: answer index %d not among %d populated options", answer, len(opts))
	}

	shuffled := Permute(opts, seed)
	for i, opt := range shuffled {
		if opt.Num == answer {
			return shuffled, i + 1, nil
		}
	}
	// Unreachable: Permute is a bijection, the answer was found above.
	return nil, 0, fmt.Errorf("shuffle: answer lost during permutation")
}

// CanonicalChoice translates a 1-based shuffle-relative choice back to
// canonical option numbering for the given shuffled order.
func CanonicalChoice(shuffled []Option, choice int) (int, error) {
	if choice < 1 || choice > len(shuffled) {
		return 0, fmt.Errorf("shuffle: choice %d outside shuffled option range 1..%d", choice, len(shuffled))
	}
	return shuffled[choice-1].Num, nil
}
