package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// APIConfig tunes the question-bank client.
type APIConfig struct {
	BaseURL     string
	Amount      int           // questions requested per difficulty
	Timeout     time.Duration // per-request bound
	MaxAttempts int           // total tries per difficulty
	BaseDelay   time.Duration // initial backoff interval
	Politeness  time.Duration // pause between difficulty requests
}

// API fetches the three difficulty pools from an OpenTDB-shaped
// endpoint. The upstream is treated as untrusted: non-200 status,
// malformed JSON and empty result sets are all retryable failures,
// never crashes.
type API struct {
	cfg    APIConfig
	client *http.Client
}

func NewAPI(cfg APIConfig) *API {
	if cfg.Amount <= 0 {
		cfg.Amount = 20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	return &API{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

func (a *API) Name() string { return "api" }

func (a *API) Pools(ctx context.Context) (Pools, error) {
	pools := Pools{}
	for i, d := range Difficulties() {
		if i > 0 && a.cfg.Politeness > 0 {
			select {
			case <-time.After(a.cfg.Politeness):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		qs, err := a.fetch(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("%w: fetching %s pool: %v", ErrSourceUnavailable, d, err)
		}
		pools[d] = qs
	}
	return pools, nil
}

func (a *API) fetch(ctx context.Context, d Difficulty) ([]Question, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = a.cfg.BaseDelay

	var wrapped backoff.BackOff = backoff.WithMaxRetries(policy, uint64(a.cfg.MaxAttempts-1))
	wrapped = backoff.WithContext(wrapped, ctx)

	return backoff.RetryWithData(func() ([]Question, error) {
		return a.fetchOnce(ctx, d)
	}, wrapped)
}

func (a *API) fetchOnce(ctx context.Context, d Difficulty) ([]Question, error) {
	url := fmt.Sprintf("%s?amount=%d&type=multiple&difficulty=%s", a.cfg.BaseURL, a.cfg.Amount, d)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// proceed
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	default:
		io.Copy(io.Discard, resp.Body)
		return nil, backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if payload.ResponseCode != 0 || len(payload.Results) == 0 {
		return nil, fmt.Errorf("empty result set (code %d)", payload.ResponseCode)
	}

	qs := make([]Question, 0, len(payload.Results))
	for _, r := range payload.Results {
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

type apiResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []apiQuestion `json:"results"`
}

type apiQuestion struct {
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}
