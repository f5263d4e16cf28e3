package shuffle

import "testing"

func fiveOptions() []Option {
	return []Option{
		{Num: 1, Text: "alpha"},
		{Num: 2, Text: "bravo"},
		{Num: 3, Text: "charlie"},
		{Num: 4, Text: "delta"},
		{Num: 5, Text: "echo"},
	}
}

func TestRemapOptionsAnswerInvariant(t *testing.T) {
	// The shuffled option at the remapped position must be the option
	// that held the canonical answer position before shuffling.
	opts := fiveOptions()
	for answer := 1; answer <= 5; answer++ {
		for seed := int64(1); seed <= 300; seed++ {
			shuffled, remapped, err := RemapOptions(opts, answer, seed)
			if err != nil {
				t.Fatalf("answer %d seed %d: %v", answer, seed, err)
			}
			if remapped < 1 || remapped > len(shuffled) {
				t.Fatalf("answer %d seed %d: remapped index %d out of range", answer, seed, remapped)
			}
			if shuffled[remapped-1].Num != answer {
				t.Fatalf("answer %d seed %d: option at remapped position is %d", answer, seed, shuffled[remapped-1].Num)
			}
			if shuffled[remapped-1].Text != opts[answer-1].Text {
				t.Fatalf("answer %d seed %d: text mismatch %q", answer, seed, shuffled[remapped-1].Text)
			}
		}
	}
}

func TestRemapOptionsDeterministic(t *testing.T) {
	opts := fiveOptions()
	first, idx1, err := RemapOptions(opts, 3, 4242)
	if err != nil {
		t.Fatal(err)
	}
	second, idx2, err := RemapOptions(opts, 3, 4242)
	if err != nil {
		t.Fatal(err)
	}
	if idx1 != idx2 {
		t.Errorf("remapped index differs across calls: %d vs %d", idx1, idx2)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("position %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestRemapOptionsTwoOptions(t *testing.T) {
	// A question with only two populated options must stay at two, with
	// the remapped answer inside {1,2}.
	opts := []Option{{Num: 1, Text: "yes"}, {Num: 2, Text: "no"}}
	for seed := int64(1); seed <= 200; seed++ {
		shuffled, remapped, err := RemapOptions(opts, 2, seed)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if len(shuffled) != 2 {
			t.Fatalf("seed %d: option count changed to %d", seed, len(shuffled))
		}
		if remapped != 1 && remapped != 2 {
			t.Fatalf("seed %d: remapped answer %d outside populated range", seed, remapped)
		}
		if shuffled[remapped-1].Text != "no" {
			t.Fatalf("seed %d: remapped position holds %q", seed, shuffled[remapped-1].Text)
		}
	}
}

func TestRemapOptionsInvalidInput(t *testing.T) {
	if _, _, err := RemapOptions(nil, 1, 42); err == nil {
		t.Error("expected error for empty option set")
	}
	opts := []Option{{Num: 1, Text: "a"}, {Num: 2, Text: "b"}}
	if _, _, err := RemapOptions(opts, 4, 42); err == nil {
		t.Error("expected error for answer outside populated range")
	}
}

func TestCanonicalChoiceRoundTrip(t *testing.T) {
	opts := fiveOptions()
	for seed := int64(1); seed <= 100; seed++ {
		shuffled := Permute(opts, seed)
		for choice := 1; choice <= len(shuffled); choice++ {
			canonical, err := CanonicalChoice(shuffled, choice)
			if err != nil {
				t.Fatalf("seed %d choice %d: %v", seed, choice, err)
			}
			if canonical != shuffled[choice-1].Num {
				t.Fatalf("seed %d choice %d: canonical %d", seed, choice, canonical)
			}
		}
	}

	if _, err := CanonicalChoice(opts, 0); err == nil {
		t.Error("expected error for choice 0")
	}
	if _, err := CanonicalChoice(opts[:2], 3); err == nil {
		t.Error("expected error for choice beyond populated options")
	}
}

func TestOptionSeedDerivation(t *testing.T) {
	if got := OptionSeed(42, 7); got != 49 {
		t.Errorf("OptionSeed(42, 7) = %d, want 49", got)
	}
	// Same (attempt seed, question id) always derives the same seed, so
	// no per-question seed needs persisting.
	if OptionSeed(100, 3) != OptionSeed(100, 3) {
		t.Error("seed derivation not stable")
	}
}
