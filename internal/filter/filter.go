// Package filter rejects questions that would read badly in a daily
// quiz: trick phrasings, over-long text, niche categories and shouty
// garbage. The checks are conservative heuristics; a smaller pool is
// acceptable because the selector has fallbacks.
package filter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/playdailyfive/daily5/internal/source"
)

// Phrasings that make a question unpleasant in a four-option format:
// meta-questions about the option list, negated stems, date recall,
// chemistry notation and century ordinals.
var bannedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)which of (the following|these)`),
	regexp.MustCompile(`\bNOT\b`),
	regexp.MustCompile(`\bEXCEPT\b`),
	regexp.MustCompile(`(?i)\b(in|what|which) year\b`),
	regexp.MustCompile(`(?i)chemical (symbol|formula|element)`),
	regexp.MustCompile(`(?i)\b\d+(st|nd|rd|th)[ -]century\b`),
}

// Config holds the tunable bounds.
type Config struct {
	MaxQuestionLen int
	MaxOptionLen   int
	Categories     []string // allowlist; a question with no label passes
}

type Filter struct {
	cfg   Config
	allow map[string]bool
}

func New(cfg Config) *Filter {
	if cfg.MaxQuestionLen <= 0 {
		cfg.MaxQuestionLen = 110
	}
	if cfg.MaxOptionLen <= 0 {
		cfg.MaxOptionLen = 50
	}
	allow := make(map[string]bool, len(cfg.Categories))
	for _, c := range cfg.Categories {
		allow[strings.ToLower(strings.TrimSpace(c))] = true
	}
	return &Filter{cfg: cfg, allow: allow}
}

// Keep reports whether q passes every check.
func (f *Filter) Keep(q source.Question) bool {
	return f.Check(q) == nil
}

// Check returns the first reason q fails, or nil. Question text is
// expected to be normalized already.
func (f *Filter) Check(q source.Question) error {
	if q.Text == "" || q.Correct == "" {
		return fmt.Errorf("missing text or answer")
	}
	if len(q.Incorrect) != 3 {
		return fmt.Errorf("expected 3 incorrect answers, got %d", len(q.Incorrect))
	}
	if n := len([]rune(q.Text)); n > f.cfg.MaxQuestionLen {
		return fmt.Errorf("question too long (%d > %d chars)", n, f.cfg.MaxQuestionLen)
	}
	for _, opt := range append([]string{q.Correct}, q.Incorrect...) {
		if opt == "" {
			return fmt.Errorf("empty answer option")
		}
		if n := len([]rune(opt)); n > f.cfg.MaxOptionLen {
			return fmt.Errorf("option too long (%d > %d chars)", n, f.cfg.MaxOptionLen)
		}
	}
	for _, re := range bannedPatterns {
		if re.MatchString(q.Text) {
			return fmt.Errorf("banned phrasing %q", re.String())
		}
	}
	if len(f.allow) > 0 && q.Category != "" && !f.allow[strings.ToLower(q.Category)] {
		return fmt.Errorf("category %q not in allowlist", q.Category)
	}
	if shouting(q.Text) {
		return fmt.Errorf("text is mostly uppercase")
	}
	return nil
}

// Apply filters every pool, preserving order.
func (f *Filter) Apply(pools source.Pools) source.Pools {
	out := source.Pools{}
	for d, qs := range pools {
		kept := make([]source.Question, 0, len(qs))
		for _, q := range qs {
			if f.Keep(q) {
				kept = append(kept, q)
			}
		}
		out[d] = kept
	}
	return out
}

// shouting flags text whose uppercase letters outnumber lowercase ones
// two to one, a cheap proxy for ALL-CAPS or garbled input.
func shouting(s string) bool {
	var upper, lower int
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper++
		case unicode.IsLower(r):
			lower++
		}
	}
	return upper > 2*lower
}
