// Package selector assembles the day's five questions from the
// difficulty pools. Selection itself is deterministic: ties always go
// to pool order, and only the option order is ever randomized. A reroll
// nonce changes the outcome by deterministically permuting the pools up
// front, never by introducing randomness into the picking rules.
//
// Precedence when constraints collide: difficulty quota first, then the
// general-knowledge minimum, then the per-category cap. The cap may be
// relaxed for a general-knowledge pick or when a bucket has no other
// material; the quota is never traded away for either.
package selector

import (
	"errors"
	"strings"

	"github.com/playdailyfive/daily5/internal/normalize"
	"github.com/playdailyfive/daily5/internal/prng"
	"github.com/playdailyfive/daily5/internal/source"
)

// ErrPoolExhausted means every backfill tier ran dry before reaching
// the target count. With a configured floor set this should never
// surface.
var ErrPoolExhausted = errors.New("not enough questions after all fallback tiers")

// Config tunes the selection policy.
type Config struct {
	Total           int                       // questions per day
	Quota           map[source.Difficulty]int // target per difficulty
	GeneralCategory string                    // label counted toward the minimum
	GeneralMin      int                       // soft minimum of general-knowledge picks
	CategoryCap     int                       // soft per-category maximum
	DayKey          uint32
	Nonce           string
}

// Result is the assembled selection.
type Result struct {
	Questions []source.Question
	Stale     int // picks that were not fresh (dedup waived)
}

// Select picks cfg.Total questions. Backfill order on shortfall:
// fresh quota bucket, fresh remainder across difficulties, non-fresh
// material from the current pools, the archive of previously served
// questions, then the static set.
func Select(pools source.Pools, isFresh func(source.Question) bool, archive, static []source.Question, cfg Config) (Result, error) {
	if cfg.Total <= 0 {
		cfg.Total = 5
	}
	if cfg.CategoryCap <= 0 {
		cfg.CategoryCap = 2
	}

	fresh := map[source.Difficulty][]source.Question{}
	var seen []source.Question
	for i, d := range source.Difficulties() {
		pool := pools[d]
		if cfg.Nonce != "" {
			pool = prng.Shuffle(prng.PoolSeed(cfg.DayKey, cfg.Nonce, i), pool)
		}
		for _, q := range pool {
			if isFresh(q) {
				fresh[d] = append(fresh[d], q)
			} else {
				seen = append(seen, q)
			}
		}
	}

	p := &picker{cfg: cfg, keys: map[string]bool{}, catCount: map[string]int{}}

	// Quota pass over each fresh bucket.
	for _, d := range source.Difficulties() {
		for i := 0; i < cfg.Quota[d]; i++ {
			idx := p.pickIndex(fresh[d])
			if idx < 0 {
				break
			}
			p.take(fresh[d][idx])
			fresh[d] = append(fresh[d][:idx:idx], fresh[d][idx+1:]...)
		}
	}

	// Satisfy the general-knowledge minimum by same-difficulty swaps so
	// the quota stays intact.
	for _, d := range source.Difficulties() {
		for i := 0; p.gkShort() && i < len(fresh[d]); i++ {
			cand := fresh[d][i]
			if !p.isGeneral(cand) || p.keys[key(cand)] {
				continue
			}
			if p.swapFor(cand, d) {
				fresh[d] = append(fresh[d][:i:i], fresh[d][i+1:]...)
				i--
			}
		}
	}

	// Backfill tiers, in priority order.
	var remainder []source.Question
	for _, d := range source.Difficulties() {
		remainder = append(remainder, fresh[d]...)
	}
	for _, tier := range [][]source.Question{remainder, seen, archive, static} {
		p.fill(tier)
		if len(p.chosen) >= cfg.Total {
			break
		}
	}

	if len(p.chosen) < cfg.Total {
		return Result{}, ErrPoolExhausted
	}

	stale := 0
	for _, q := range p.chosen {
		if !isFresh(q) {
			stale++
		}
	}
	return Result{Questions: p.chosen, Stale: stale}, nil
}

type picker struct {
	cfg      Config
	chosen   []source.Question
	keys     map[string]bool
	catCount map[string]int
	gkCount  int
}

func key(q source.Question) string {
	return normalize.Key(q.Text, q.Correct)
}

func (p *picker) isGeneral(q source.Question) bool {
	return p.cfg.GeneralCategory != "" && strings.EqualFold(q.Category, p.cfg.GeneralCategory)
}

func (p *picker) gkShort() bool {
	return p.gkCount < p.cfg.GeneralMin
}

func (p *picker) catOK(q source.Question) bool {
	if q.Category == "" {
		return true
	}
	return p.catCount[strings.ToLower(q.Category)] < p.cfg.CategoryCap
}

// pickIndex finds the next candidate in pool order: a general-knowledge
// question while the minimum is unmet, else the first pick under the
// category cap, else the first pick at all.
func (p *picker) pickIndex(pool []source.Question) int {
	if p.gkShort() {
		for i, q := range pool {
			if p.isGeneral(q) && !p.keys[key(q)] {
				return i
			}
		}
	}
	relaxed := -1
	for i, q := range pool {
		if p.keys[key(q)] {
			continue
		}
		if p.catOK(q) {
			return i
		}
		if relaxed < 0 {
			relaxed = i
		}
	}
	return relaxed
}

func (p *picker) take(q source.Question) {
	p.chosen = append(p.chosen, q)
	p.keys[key(q)] = true
	if q.Category != "" {
		p.catCount[strings.ToLower(q.Category)]++
	}
	if p.isGeneral(q) {
		p.gkCount++
	}
}

func (p *picker) drop(i int) {
	q := p.chosen[i]
	delete(p.keys, key(q))
	if q.Category != "" {
		p.catCount[strings.ToLower(q.Category)]--
	}
	if p.isGeneral(q) {
		p.gkCount--
	}
	p.chosen = append(p.chosen[:i:i], p.chosen[i+1:]...)
}

// swapFor replaces the most recently chosen non-general question of the
// given difficulty with cand. Returns false if no such pick exists.
func (p *picker) swapFor(cand source.Question, d source.Difficulty) bool {
	for i := len(p.chosen) - 1; i >= 0; i-- {
		if p.chosen[i].Difficulty == d && !p.isGeneral(p.chosen[i]) {
			p.drop(i)
			p.take(cand)
			return true
		}
	}
	return false
}

// fill takes from the tier in order until the total is reached, first
// honoring the category cap, then ignoring it.
func (p *picker) fill(tier []source.Question) {
	for _, q := range tier {
		if len(p.chosen) >= p.cfg.Total {
			return
		}
		if !p.keys[key(q)] && p.catOK(q) {
			p.take(q)
		}
	}
	for _, q := range tier {
		if len(p.chosen) >= p.cfg.Total {
			return
		}
		if !p.keys[key(q)] {
			p.take(q)
		}
	}
}
