// Package source produces candidate question pools. Strategies are
// tried in order: the trivia API, local pool files, the embedded bank
// and finally a tiny floor set, so a run always has material to work
// with even fully offline.
package source

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
)

// Difficulty labels one of the three candidate pools.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties returns the pool order used everywhere: easy, medium, hard.
func Difficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

// Question is a raw candidate as delivered by a strategy. Text fields
// may still contain encoded entities at this point.
type Question struct {
	Text       string
	Correct    string
	Incorrect  []string
	Category   string
	Difficulty Difficulty
}

// Pools holds one candidate list per difficulty, in source order.
type Pools map[Difficulty][]Question

// Total counts questions across all pools.
func (p Pools) Total() int {
	n := 0
	for _, qs := range p {
		n += len(qs)
	}
	return n
}

// Flatten returns all questions in difficulty order, preserving each
// pool's internal order.
func (p Pools) Flatten() []Question {
	var out []Question
	for _, d := range Difficulties() {
		out = append(out, p[d]...)
	}
	return out
}

// ErrSourceUnavailable marks a strategy that cannot currently produce
// pools (network exhausted, file missing). The provider moves on to the
// next tier.
var ErrSourceUnavailable = errors.New("source unavailable")

// Strategy is one tier of the fallback chain.
type Strategy interface {
	Name() string
	Pools(ctx context.Context) (Pools, error)
}

// Provider walks an ordered strategy list until one yields pools.
type Provider struct {
	strategies []Strategy
	log        *log.Logger
}

func NewProvider(logger *log.Logger, strategies ...Strategy) *Provider {
	return &Provider{strategies: strategies, log: logger}
}

// Fetch returns the first successful strategy's pools and its name.
// It fails only if every tier fails, which a configured floor set
// prevents.
func (p *Provider) Fetch(ctx context.Context) (Pools, string, error) {
	var lastErr error
	for _, s := range p.strategies {
		pools, err := s.Pools(ctx)
		if err != nil {
			p.log.Warn("source tier failed", "tier", s.Name(), "err", err)
			lastErr = err
			continue
		}
		return pools, s.Name(), nil
	}
	if lastErr == nil {
		lastErr = ErrSourceUnavailable
	}
	return nil, "", lastErr
}
