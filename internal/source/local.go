package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Files reads per-difficulty pool files (easy.json, medium.json,
// hard.json) from a directory. Each file holds either a bare array of
// question records or an OpenTDB-style {"results": [...]} wrapper, so a
// saved API response can be dropped in as-is.
type Files struct {
	dir string
}

func NewFiles(dir string) *Files {
	return &Files{dir: dir}
}

func (f *Files) Name() string { return "local" }

func (f *Files) Pools(ctx context.Context) (Pools, error) {
	if f.dir == "" {
		return nil, fmt.Errorf("%w: no pools directory configured", ErrSourceUnavailable)
	}
	pools := Pools{}
	for _, d := range Difficulties() {
		path := filepath.Join(f.dir, string(d)+".json")
		qs, err := readPoolFile(path, d)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		pools[d] = qs
	}
	if pools.Total() == 0 {
		return nil, fmt.Errorf("%w: pool files in %s are empty", ErrSourceUnavailable, f.dir)
	}
	return pools, nil
}

func readPoolFile(path string, d Difficulty) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return parsePool(data, d, path)
}

func parsePool(data []byte, d Difficulty, name string) ([]Question, error) {
	var records []apiQuestion
	if err := json.Unmarshal(data, &records); err != nil {
		var wrapped apiResponse
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		records = wrapped.Results
	}

	qs := make([]Question, 0, len(records))
	for _, r := range records {
		qs = append(qs, Question{
			Text:       r.Question,
			Correct:    r.CorrectAnswer,
			Incorrect:  r.IncorrectAnswers,
			Category:   r.Category,
			Difficulty: d,
		})
	}
	return qs, nil
}
