// Package ledger persists the set of question hashes already served,
// so the same question does not come back day after day.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Ledger is an insertion-ordered set of hash keys. Order matters: when
// the ledger is capped, the oldest entries are evicted first.
type Ledger struct {
	path string
	cap  int
	seen []string
	set  map[string]struct{}
}

type ledgerFile struct {
	Seen []string `json:"seen"`
}

// Load reads the ledger at path. A missing or corrupt file yields an
// empty ledger and a nil error: losing dedup history is an
// inconvenience, refusing to run is worse. cap <= 0 means unbounded.
func Load(path string, cap int) (*Ledger, error) {
	l := &Ledger{path: path, cap: cap, set: map[string]struct{}{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return l, fmt.Errorf("reading ledger: %w", err)
	}

	var f ledgerFile
	if err := json.Unmarshal(data, &f); err != nil {
		// Corrupt state is treated as absent.
		return l, nil
	}
	for _, h := range f.Seen {
		l.add(h)
	}
	l.trim()
	return l, nil
}

// Contains reports whether hash has been served before.
func (l *Ledger) Contains(hash string) bool {
	_, ok := l.set[hash]
	return ok
}

// Add appends hashes, skipping ones already present, and evicts the
// oldest entries if the cap is exceeded.
func (l *Ledger) Add(hashes ...string) {
	for _, h := range hashes {
		l.add(h)
	}
	l.trim()
}

func (l *Ledger) add(h string) {
	if h == "" || l.Contains(h) {
		return
	}
	l.seen = append(l.seen, h)
	l.set[h] = struct{}{}
}

func (l *Ledger) trim() {
	if l.cap <= 0 || len(l.seen) <= l.cap {
		return
	}
	evicted := l.seen[:len(l.seen)-l.cap]
	for _, h := range evicted {
		delete(l.set, h)
	}
	l.seen = append([]string(nil), l.seen[len(l.seen)-l.cap:]...)
}

// Len returns the number of retained hashes.
func (l *Ledger) Len() int { return len(l.seen) }

// Save replaces the ledger file atomically (write temp, then rename).
func (l *Ledger) Save() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}
	data, err := json.MarshalIndent(ledgerFile{Seen: l.seen}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}
