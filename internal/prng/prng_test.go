package prng

import (
	"sort"
	"testing"
)

func TestShuffleReproducible(t *testing.T) {
	in := []string{"a", "b", "c", "d"}
	first := Shuffle(12345, in)
	second := Shuffle(12345, in)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed gave different permutations: %v vs %v", first, second)
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	in := []string{"a", "b", "c", "d", "e", "f", "g"}
	for seed := uint32(0); seed < 200; seed++ {
		out := Shuffle(seed, in)
		if len(out) != len(in) {
			t.Fatalf("seed %d: length changed from %d to %d", seed, len(in), len(out))
		}
		a := append([]string(nil), in...)
		b := append([]string(nil), out...)
		sort.Strings(a)
		sort.Strings(b)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("seed %d: output %v is not a permutation of %v", seed, out, in)
			}
		}
	}
}

func TestShuffleDoesNotMutateInput(t *testing.T) {
	in := []string{"a", "b", "c", "d"}
	Shuffle(99, in)
	want := []string{"a", "b", "c", "d"}
	for i := range want {
		if in[i] != want[i] {
			t.Fatalf("input mutated: %v", in)
		}
	}
}

func TestShuffleShortInputs(t *testing.T) {
	if out := Shuffle(7, []string{}); len(out) != 0 {
		t.Errorf("empty input should stay empty, got %v", out)
	}
	if out := Shuffle(7, []string{"only"}); len(out) != 1 || out[0] != "only" {
		t.Errorf("single element should be untouched, got %v", out)
	}
}

func TestShuffleSeedsDiffer(t *testing.T) {
	in := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	base := Shuffle(1, in)
	differing := 0
	for seed := uint32(2); seed < 50; seed++ {
		out := Shuffle(seed, in)
		for i := range out {
			if out[i] != base[i] {
				differing++
				break
			}
		}
	}
	if differing == 0 {
		t.Error("48 different seeds all produced the same permutation")
	}
}

func TestFloat64Range(t *testing.T) {
	s := New(424242)
	for i := 0; i < 10000; i++ {
		v := s.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("value %g outside [0,1)", v)
		}
	}
}

func TestQuestionSeedNonce(t *testing.T) {
	day := uint32(20250824)
	plain := QuestionSeed(day, "", 0)
	rerolled := QuestionSeed(day, "abc", 0)
	if plain == rerolled {
		t.Error("nonce should perturb the seed")
	}
	if QuestionSeed(day, "abc", 0) != rerolled {
		t.Error("nonce seed should be deterministic")
	}
	if QuestionSeed(day, "", 0) == QuestionSeed(day, "", 1) {
		t.Error("question index should change the seed")
	}
}

func TestPoolSeedIndependentOfQuestionSeed(t *testing.T) {
	day := uint32(20250824)
	if PoolSeed(day, "abc", 1) == QuestionSeed(day, "abc", 1) {
		t.Error("pool and question seed streams should differ for the same ordinal")
	}
}
