// Package pipeline runs one generation pass: load state, fetch
// candidates, normalize and filter them, select five questions, shuffle
// their options and persist the artifact, ledger and history together.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/playdailyfive/daily5/internal/artifact"
	"github.com/playdailyfive/daily5/internal/config"
	"github.com/playdailyfive/daily5/internal/daykey"
	"github.com/playdailyfive/daily5/internal/filter"
	"github.com/playdailyfive/daily5/internal/history"
	"github.com/playdailyfive/daily5/internal/ledger"
	"github.com/playdailyfive/daily5/internal/normalize"
	"github.com/playdailyfive/daily5/internal/selector"
	"github.com/playdailyfive/daily5/internal/source"
)

// Options are the per-invocation knobs.
type Options struct {
	Now     time.Time
	Nonce   string // reroll trigger; any non-empty value
	Offline bool   // skip the network tier
	Force   bool   // regenerate even if today's artifact exists
	OutPath string // artifact path override
}

type Pipeline struct {
	cfg   *config.Config
	log   *log.Logger
	floor []source.Question
}

// New builds a pipeline with the stock floor set, or the one configured
// at floor_path. The floor is injected state, not control flow: tests
// and deployments can swap it.
func New(cfg *config.Config, logger *log.Logger) *Pipeline {
	floor := source.DefaultFloorSet()
	if cfg.FloorPath != "" {
		if qs, err := source.FloorFromFile(cfg.FloorPath); err != nil {
			logger.Warn("floor file unusable, keeping stock set", "path", cfg.FloorPath, "err", err)
		} else {
			floor = qs
		}
	}
	return &Pipeline{cfg: cfg, log: logger, floor: floor}
}

// SetFloor replaces the last-resort question set.
func (p *Pipeline) SetFloor(qs []source.Question) { p.floor = qs }

// Run produces the day's artifact. On any persisted-state problem short
// of a full failure it degrades and keeps going; it returns an error
// only when the five-question contract cannot be met or a write fails,
// and in that case previously written files are left untouched.
func (p *Pipeline) Run(ctx context.Context, opts Options) (artifact.Artifact, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	day, err := daykey.Compute(now, p.cfg.Timezone, p.cfg.Epoch)
	if err != nil {
		return artifact.Artifact{}, err
	}

	outPath := opts.OutPath
	if outPath == "" {
		outPath = p.cfg.ArtifactFile()
	}

	if !opts.Force && opts.Nonce == "" {
		if existing, err := artifact.Read(outPath); err == nil && existing.Day == day.Day {
			p.log.Info("artifact already generated", "day", day.Day, "path", outPath)
			return existing, nil
		}
	}

	led, err := ledger.Load(p.cfg.LedgerFile(), p.cfg.LedgerCap)
	if err != nil {
		p.log.Warn("ledger unreadable, starting empty", "err", err)
	}

	hist, err := history.Open(p.cfg.HistoryFile())
	if err != nil {
		p.log.Warn("history unavailable for this run", "err", err)
		hist = nil
	} else {
		defer hist.Close()
	}

	pools, tier, err := p.fetch(ctx, opts.Offline)
	if err != nil {
		return artifact.Artifact{}, fmt.Errorf("all source tiers failed: %w", err)
	}
	p.log.Info("candidate pools loaded", "tier", tier, "questions", pools.Total())

	f := filter.New(filter.Config{
		MaxQuestionLen: p.cfg.Filter.MaxQuestionChars,
		MaxOptionLen:   p.cfg.Filter.MaxOptionChars,
		Categories:     p.cfg.Filter.Categories,
	})
	pools = f.Apply(normalizePools(pools))

	res, err := p.selectQuestions(ctx, day, pools, led, hist, opts.Nonce)
	if err != nil {
		return artifact.Artifact{}, err
	}
	if res.Stale > 0 {
		p.log.Warn("freshness waived for some picks", "stale", res.Stale)
	}

	art, err := artifact.Build(day, res.Questions, opts.Nonce, tier)
	if err != nil {
		return artifact.Artifact{}, err
	}
	if err := artifact.Write(outPath, art); err != nil {
		return artifact.Artifact{}, err
	}

	served := map[string]source.Question{}
	for _, q := range res.Questions {
		served[normalize.Key(q.Text, q.Correct)] = q
	}
	for hash := range served {
		led.Add(hash)
	}
	if err := led.Save(); err != nil {
		// The artifact is already in place; surface the error so the
		// scheduler retries. Worst case is one repeated question, never
		// a partial file.
		return art, fmt.Errorf("artifact written but ledger update failed: %w", err)
	}

	if hist != nil {
		runID := uuid.NewString()
		if err := hist.RecordServed(runID, day.Day, served); err != nil {
			p.log.Warn("recording history failed", "run", runID, "err", err)
		}
	}

	p.log.Info("artifact written",
		"day", day.Day, "index", day.Index, "tier", tier,
		"reroll", opts.Nonce != "", "path", outPath)
	return art, nil
}

func (p *Pipeline) fetch(ctx context.Context, offline bool) (source.Pools, string, error) {
	var strategies []source.Strategy
	if !offline {
		strategies = append(strategies, source.NewAPI(source.APIConfig{
			BaseURL:     p.cfg.APIURL,
			Amount:      p.cfg.PoolSize,
			Timeout:     p.cfg.RequestTimeout(),
			MaxAttempts: p.cfg.Retry.MaxAttempts,
			BaseDelay:   p.cfg.BaseDelay(),
			Politeness:  p.cfg.PolitenessDelay(),
		}))
	}
	if p.cfg.PoolsDir != "" {
		strategies = append(strategies, source.NewFiles(p.cfg.PoolsDir))
	}
	strategies = append(strategies, source.NewBuiltin(), source.NewFloor(p.floor))

	return source.NewProvider(p.log, strategies...).Fetch(ctx)
}

func (p *Pipeline) selectQuestions(ctx context.Context, day daykey.Info, pools source.Pools, led *ledger.Ledger, hist *history.Store, nonce string) (selector.Result, error) {
	isFresh := func(q source.Question) bool {
		return !led.Contains(normalize.Key(q.Text, q.Correct))
	}

	var archive []source.Question
	if hist != nil {
		stale, err := hist.Stale(10 * p.cfg.Total())
		if err != nil {
			p.log.Warn("history backfill unavailable", "err", err)
		} else {
			archive = normalizeList(stale)
		}
	}

	var static []source.Question
	if builtin, err := source.NewBuiltin().Pools(ctx); err == nil {
		static = builtin.Flatten()
	}
	static = normalizeList(append(static, p.floor...))

	quota := map[source.Difficulty]int{}
	for _, d := range source.Difficulties() {
		quota[d] = p.cfg.QuotaFor(d)
	}

	return selector.Select(pools, isFresh, archive, static, selector.Config{
		Total:           p.cfg.Total(),
		Quota:           quota,
		GeneralCategory: p.cfg.Selection.GeneralCategory,
		GeneralMin:      p.cfg.Selection.GeneralMin,
		CategoryCap:     p.cfg.Selection.CategoryCap,
		DayKey:          day.Numeric(),
		Nonce:           nonce,
	})
}

func normalizePools(pools source.Pools) source.Pools {
	out := source.Pools{}
	for d, qs := range pools {
		out[d] = normalizeList(qs)
	}
	return out
}

func normalizeList(qs []source.Question) []source.Question {
	out := make([]source.Question, 0, len(qs))
	for _, q := range qs {
		q.Text = normalize.Text(q.Text)
		q.Correct = normalize.Text(q.Correct)
		q.Category = normalize.Text(q.Category)
		incorrect := make([]string, len(q.Incorrect))
		for i, opt := range q.Incorrect {
			incorrect[i] = normalize.Text(opt)
		}
		q.Incorrect = incorrect
		out = append(out, q)
	}
	return out
}
