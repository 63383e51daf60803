package selector

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/playdailyfive/daily5/internal/normalize"
	"github.com/playdailyfive/daily5/internal/source"
)

func q(text, category string, d source.Difficulty) source.Question {
	return source.Question{
		Text:       text,
		Correct:    "answer to " + text,
		Incorrect:  []string{"wrong 1", "wrong 2", "wrong 3"},
		Category:   category,
		Difficulty: d,
	}
}

func testConfig() Config {
	return Config{
		Total: 5,
		Quota: map[source.Difficulty]int{
			source.Easy:   2,
			source.Medium: 2,
			source.Hard:   1,
		},
		GeneralCategory: "General Knowledge",
		GeneralMin:      2,
		CategoryCap:     2,
		DayKey:          20250824,
	}
}

// richPools has distinct categories and general-knowledge material in
// every bucket.
func richPools() source.Pools {
	return source.Pools{
		source.Easy: {
			q("easy gk 1", "General Knowledge", source.Easy),
			q("easy geo 1", "Geography", source.Easy),
			q("easy hist 1", "History", source.Easy),
			q("easy gk 2", "General Knowledge", source.Easy),
		},
		source.Medium: {
			q("medium sci 1", "Science & Nature", source.Medium),
			q("medium gk 1", "General Knowledge", source.Medium),
			q("medium geo 1", "Geography", source.Medium),
		},
		source.Hard: {
			q("hard hist 1", "History", source.Hard),
			q("hard sci 1", "Science & Nature", source.Hard),
		},
	}
}

func allFresh(source.Question) bool { return true }

func difficulties(qs []source.Question) map[source.Difficulty]int {
	counts := map[source.Difficulty]int{}
	for _, x := range qs {
		counts[x.Difficulty]++
	}
	return counts
}

func TestQuotaHonored(t *testing.T) {
	res, err := Select(richPools(), allFresh, nil, nil, testConfig())
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(res.Questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(res.Questions))
	}
	counts := difficulties(res.Questions)
	if counts[source.Easy] != 2 || counts[source.Medium] != 2 || counts[source.Hard] != 1 {
		t.Errorf("quota not honored: %v", counts)
	}
	if res.Stale != 0 {
		t.Errorf("expected no stale picks, got %d", res.Stale)
	}
}

func TestGeneralKnowledgeMinimum(t *testing.T) {
	res, err := Select(richPools(), allFresh, nil, nil, testConfig())
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	gk := 0
	for _, x := range res.Questions {
		if x.Category == "General Knowledge" {
			gk++
		}
	}
	if gk < 2 {
		t.Errorf("expected at least 2 general-knowledge picks, got %d", gk)
	}
}

func TestGeneralMinimumViaSwap(t *testing.T) {
	// The only general-knowledge material sits behind non-GK questions
	// in the easy pool; the swap pass has to dig it out.
	pools := source.Pools{
		source.Easy: {
			q("easy geo 1", "Geography", source.Easy),
			q("easy hist 1", "History", source.Easy),
			q("easy gk 1", "General Knowledge", source.Easy),
			q("easy gk 2", "General Knowledge", source.Easy),
		},
		source.Medium: {
			q("medium sci 1", "Science & Nature", source.Medium),
			q("medium sci 2", "Science & Nature", source.Medium),
		},
		source.Hard: {
			q("hard hist 1", "History", source.Hard),
		},
	}
	res, err := Select(pools, allFresh, nil, nil, testConfig())
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	gk := 0
	for _, x := range res.Questions {
		if x.Category == "General Knowledge" {
			gk++
		}
	}
	if gk != 2 {
		t.Errorf("expected exactly 2 general-knowledge picks after swaps, got %d", gk)
	}
	counts := difficulties(res.Questions)
	if counts[source.Easy] != 2 || counts[source.Medium] != 2 || counts[source.Hard] != 1 {
		t.Errorf("swaps must not disturb the quota: %v", counts)
	}
}

func TestCategoryCap(t *testing.T) {
	// Plenty of geography; cap should force variety where possible.
	pools := source.Pools{
		source.Easy: {
			q("easy geo 1", "Geography", source.Easy),
			q("easy geo 2", "Geography", source.Easy),
			q("easy geo 3", "Geography", source.Easy),
			q("easy gk 1", "General Knowledge", source.Easy),
		},
		source.Medium: {
			q("medium geo 1", "Geography", source.Medium),
			q("medium gk 1", "General Knowledge", source.Medium),
			q("medium sci 1", "Science & Nature", source.Medium),
		},
		source.Hard: {
			q("hard geo 1", "Geography", source.Hard),
			q("hard hist 1", "History", source.Hard),
		},
	}
	res, err := Select(pools, allFresh, nil, nil, testConfig())
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	perCat := map[string]int{}
	for _, x := range res.Questions {
		perCat[x.Category]++
	}
	if perCat["Geography"] > 2 {
		t.Errorf("category cap exceeded: %v", perCat)
	}
}

func TestCapRelaxedWhenMaterialIsUniform(t *testing.T) {
	pools := source.Pools{
		source.Easy: {
			q("easy geo 1", "Geography", source.Easy),
			q("easy geo 2", "Geography", source.Easy),
			q("easy geo 3", "Geography", source.Easy),
		},
		source.Medium: {
			q("medium geo 1", "Geography", source.Medium),
			q("medium geo 2", "Geography", source.Medium),
		},
		source.Hard: {
			q("hard geo 1", "Geography", source.Hard),
		},
	}
	cfg := testConfig()
	cfg.GeneralMin = 0
	res, err := Select(pools, allFresh, nil, nil, cfg)
	if err != nil {
		t.Fatalf("expected cap to relax rather than fail: %v", err)
	}
	if len(res.Questions) != 5 {
		t.Errorf("expected 5 questions, got %d", len(res.Questions))
	}
}

func TestBackfillAcrossDifficulties(t *testing.T) {
	// No hard material at all; the fifth pick must come from the fresh
	// remainder of other buckets.
	pools := richPools()
	pools[source.Hard] = nil
	res, err := Select(pools, allFresh, nil, nil, testConfig())
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(res.Questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(res.Questions))
	}
	if difficulties(res.Questions)[source.Hard] != 0 {
		t.Error("no hard material existed, yet a hard question appeared")
	}
}

func TestStaleBackfill(t *testing.T) {
	pools := source.Pools{
		source.Easy: {
			q("fresh 1", "Geography", source.Easy),
			q("stale 1", "History", source.Easy),
			q("stale 2", "History", source.Easy),
		},
		source.Medium: {
			q("fresh 2", "Science & Nature", source.Medium),
			q("stale 3", "Geography", source.Medium),
		},
		source.Hard: {
			q("fresh 3", "History", source.Hard),
		},
	}
	staleTexts := map[string]bool{"stale 1": true, "stale 2": true, "stale 3": true}
	isFresh := func(x source.Question) bool { return !staleTexts[x.Text] }

	cfg := testConfig()
	cfg.GeneralMin = 0
	res, err := Select(pools, isFresh, nil, nil, cfg)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(res.Questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(res.Questions))
	}
	if res.Stale != 2 {
		t.Errorf("expected 2 stale picks, got %d", res.Stale)
	}
	// Every fresh question must be used before any stale one.
	for _, want := range []string{"fresh 1", "fresh 2", "fresh 3"} {
		found := false
		for _, x := range res.Questions {
			if x.Text == want {
				found = true
			}
		}
		if !found {
			t.Errorf("fresh question %q skipped in favor of stale material", want)
		}
	}
}

func TestArchiveBeforeStatic(t *testing.T) {
	pools := source.Pools{}
	archive := []source.Question{q("archived 1", "History", source.Medium)}
	static := []source.Question{
		q("static 1", "Geography", source.Easy),
		q("static 2", "Geography", source.Easy),
		q("static 3", "History", source.Medium),
		q("static 4", "Science & Nature", source.Medium),
		q("static 5", "History", source.Hard),
	}
	cfg := testConfig()
	cfg.GeneralMin = 0
	res, err := Select(pools, allFresh, archive, static, cfg)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	found := false
	for _, x := range res.Questions {
		if x.Text == "archived 1" {
			found = true
		}
	}
	if !found {
		t.Error("archive tier should be drawn on before the static tier")
	}
}

func TestExhaustedFailsLoudly(t *testing.T) {
	static := []source.Question{
		q("static 1", "Geography", source.Easy),
		q("static 2", "History", source.Medium),
	}
	_, err := Select(source.Pools{}, allFresh, nil, static, testConfig())
	if !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
}

func TestDuplicateAcrossTiersPickedOnce(t *testing.T) {
	dup := q("shared question", "Geography", source.Easy)
	pools := source.Pools{source.Easy: {dup, q("easy 2", "History", source.Easy)}}
	static := []source.Question{
		dup,
		q("static 2", "Science & Nature", source.Medium),
		q("static 3", "History", source.Medium),
		q("static 4", "Geography", source.Hard),
		q("static 5", "General Knowledge", source.Easy),
	}
	cfg := testConfig()
	cfg.GeneralMin = 0
	res, err := Select(pools, allFresh, nil, static, cfg)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	seen := map[string]int{}
	for _, x := range res.Questions {
		seen[normalize.Key(x.Text, x.Correct)]++
	}
	for k, n := range seen {
		if n > 1 {
			t.Errorf("question %s selected %d times", k, n)
		}
	}
}

func TestSelectionDeterministic(t *testing.T) {
	a, err := Select(richPools(), allFresh, nil, nil, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Select(richPools(), allFresh, nil, nil, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Questions, b.Questions) {
		t.Error("identical inputs produced different selections")
	}
}

func TestNonceDeterministicPerturbation(t *testing.T) {
	big := source.Pools{}
	for _, d := range source.Difficulties() {
		for i := 0; i < 12; i++ {
			big[d] = append(big[d], q(fmt.Sprintf("%s question %d", d, i), "Geography", d))
		}
	}
	cfg := testConfig()
	cfg.GeneralMin = 0

	base, err := Select(big, allFresh, nil, nil, cfg)
	if err != nil {
		t.Fatal(err)
	}

	cfg.Nonce = "abc"
	first, err := Select(big, allFresh, nil, nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Select(big, allFresh, nil, nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Questions, second.Questions) {
		t.Error("same nonce must reproduce the same selection")
	}

	// With 12 candidates per bucket, at least one of these nonces has
	// to land on a different selection than pool order.
	differs := false
	for _, nonce := range []string{"abc", "xyz", "reroll-3"} {
		cfg.Nonce = nonce
		res, err := Select(big, allFresh, nil, nil, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(res.Questions, base.Questions) {
			differs = true
			break
		}
	}
	if !differs {
		t.Error("no nonce perturbed the selection")
	}
}
