package source

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed bank/*.json
var bankFS embed.FS

// Builtin serves the question bank compiled into the binary. It is the
// tier that keeps the pipeline alive with no network and no local
// files.
type Builtin struct{}

func NewBuiltin() *Builtin { return &Builtin{} }

func (b *Builtin) Name() string { return "builtin" }

func (b *Builtin) Pools(ctx context.Context) (Pools, error) {
	pools := Pools{}
	for _, d := range Difficulties() {
		name := fmt.Sprintf("bank/%s.json", d)
		data, err := bankFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("%w: reading embedded %s: %v", ErrSourceUnavailable, name, err)
		}
		qs, err := parsePool(data, d, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		pools[d] = qs
	}
	return pools, nil
}

// Floor serves an injected question set, the absolute last resort. The
// set lives in configuration-shaped data rather than control flow so
// tests and deployments can swap it.
type Floor struct {
	questions []Question
}

func NewFloor(qs []Question) *Floor {
	return &Floor{questions: qs}
}

func (f *Floor) Name() string { return "floor" }

func (f *Floor) Pools(ctx context.Context) (Pools, error) {
	if len(f.questions) == 0 {
		return nil, fmt.Errorf("%w: empty floor set", ErrSourceUnavailable)
	}
	pools := Pools{}
	for _, q := range f.questions {
		pools[q.Difficulty] = append(pools[q.Difficulty], q)
	}
	return pools, nil
}

// FloorFromFile loads a replacement floor set: a JSON array of question
// records, each carrying its own difficulty label.
func FloorFromFile(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading floor file: %w", err)
	}
	var records []apiQuestion
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing floor file %s: %w", path, err)
	}
	qs := make([]Question, 0, len(records))
	for i, r := range records {
		d := Difficulty(r.Difficulty)
		switch d {
		case Easy, Medium, Hard:
		default:
			return nil, fmt.Errorf("floor question %d: unknown difficulty %q", i, r.Difficulty)
		}
		qs = append(qs, Question{
			Text:       r.Question,
			Correct:    r.CorrectAnswer,
			Incorrect:  r.IncorrectAnswers,
			Category:   r.Category,
			Difficulty: d,
		})
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("floor file %s holds no questions", path)
	}
	return qs, nil
}

// DefaultFloorSet is the stock five-question floor: two easy, two
// medium, one hard.
func DefaultFloorSet() []Question {
	return []Question{
		{
			Text:       "What is the capital of Japan?",
			Correct:    "Tokyo",
			Incorrect:  []string{"Seoul", "Beijing", "Bangkok"},
			Category:   "Geography",
			Difficulty: Easy,
		},
		{
			Text:       "How many legs does a spider have?",
			Correct:    "Eight",
			Incorrect:  []string{"Six", "Ten", "Twelve"},
			Category:   "Animals",
			Difficulty: Easy,
		},
		{
			Text:       "Who painted the Mona Lisa?",
			Correct:    "Leonardo da Vinci",
			Incorrect:  []string{"Vincent van Gogh", "Pablo Picasso", "Claude Monet"},
			Category:   "General Knowledge",
			Difficulty: Medium,
		},
		{
			Text:       "What is the longest river in Africa?",
			Correct:    "The Nile",
			Incorrect:  []string{"The Congo", "The Niger", "The Zambezi"},
			Category:   "Geography",
			Difficulty: Medium,
		},
		{
			Text:       "Who was the first person to walk on the Moon?",
			Correct:    "Neil Armstrong",
			Incorrect:  []string{"Buzz Aldrin", "Michael Collins", "Yuri Gagarin"},
			Category:   "General Knowledge",
			Difficulty: Hard,
		},
	}
}
