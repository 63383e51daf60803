// Package artifact builds and persists the daily quiz file the front
// end consumes.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/playdailyfive/daily5/internal/daykey"
	"github.com/playdailyfive/daily5/internal/prng"
	"github.com/playdailyfive/daily5/internal/source"
)

// Question is one shuffled multiple-choice entry. The contract with the
// front end: Options[Correct] is always the right answer.
type Question struct {
	Text       string   `json:"text"`
	Options    []string `json:"options"`
	Correct    int      `json:"correct"`
	Difficulty string   `json:"difficulty"`
	Category   string   `json:"category,omitempty"`
}

// Artifact is the whole daily file.
type Artifact struct {
	Day       string     `json:"day"`
	DayIndex  int        `json:"dayIndex"`
	Questions []Question `json:"questions"`
	Reroll    bool       `json:"reroll,omitempty"`
	Source    string     `json:"source,omitempty"`
}

// Build shuffles each selected question's options with a per-day,
// per-question seed and records where the correct answer landed.
// Question text must already be normalized.
func Build(day daykey.Info, selected []source.Question, nonce, tier string) (Artifact, error) {
	a := Artifact{
		Day:      day.Day,
		DayIndex: day.Index,
		Reroll:   nonce != "",
		Source:   tier,
	}

	for i, q := range selected {
		options := append([]string{q.Correct}, q.Incorrect...)
		if len(options) != 4 {
			return Artifact{}, fmt.Errorf("question %d: expected 4 options, got %d", i, len(options))
		}
		shuffled := prng.Shuffle(prng.QuestionSeed(day.Numeric(), nonce, i), options)

		correct := -1
		for j, opt := range shuffled {
			if opt == q.Correct {
				correct = j
				break
			}
		}
		if correct < 0 {
			return Artifact{}, fmt.Errorf("question %d: correct answer lost in shuffle", i)
		}

		a.Questions = append(a.Questions, Question{
			Text:       q.Text,
			Options:    shuffled,
			Correct:    correct,
			Difficulty: string(q.Difficulty),
			Category:   q.Category,
		})
	}
	return a, nil
}

// Write replaces the artifact at path atomically. A previously written
// artifact is never touched unless the new one is fully on disk.
func Write(path string, a Artifact) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating artifact dir: %w", err)
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding artifact: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing artifact: %w", err)
	}
	return nil
}

// Read loads an artifact from disk.
func Read(path string) (Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("reading artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return Artifact{}, fmt.Errorf("parsing artifact %s: %w", path, err)
	}
	return a, nil
}
