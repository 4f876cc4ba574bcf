// Package history tracks topics used in past runs so the script stage can
// avoid repeating itself. The backing store is a single human-inspectable
// JSON file. A missing or corrupt file is treated as empty history; the
// pipeline must never fail because of it.
//
// Access is read-then-write without locking. The scheduler guarantees runs
// do not overlap, so concurrent writers are an assumption, not something
// enforced here.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/renameio/v2"

	"satire-shorts/types"
)

// DefaultMaxEntries keeps roughly 45 days of history at two runs per day.
const DefaultMaxEntries = 90

// Store is a file-backed, append-only topic history.
type Store struct {
	path    string
	max     int
	entries []types.HistoryEntry
	now     func() time.Time
}

// Open loads the history file at path, silently starting empty when the
// file is absent or unreadable.
func Open(path string) *Store {
	return OpenWithCap(path, DefaultMaxEntries)
}

// OpenWithCap is Open with an explicit retention cap.
func OpenWithCap(path string, max int) *Store {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	s := &Store{path: path, max: max, now: time.Now}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var entries []types.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return
	}
	s.entries = entries
}

// Add records a topic with the current date and time and persists
// immediately. Oldest entries beyond the retention cap are evicted.
func (s *Store) Add(title, angle string) error {
	now := s.now()
	s.entries = append(s.entries, types.HistoryEntry{
		Title: title,
		Angle: angle,
		Date:  now.Format("2006-01-02"),
		Time:  now.Format("15:04:05"),
	})
	return s.save()
}

func (s *Store) save() error {
	if len(s.entries) > s.max {
		s.entries = s.entries[len(s.entries)-s.max:]
	}
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	// Full rewrite through a temp file so a crash mid-write cannot corrupt
	// previously committed entries.
	return renameio.WriteFile(s.path, data, 0o644)
}

// RecentTitles returns the last n titles in chronological order.
func (s *Store) RecentTitles(n int) []string {
	var titles []string
	for _, e := range s.tail(n) {
		titles = append(titles, e.Title)
	}
	return titles
}

// RecentAngles returns the last n entries' angles, skipping empty ones.
func (s *Store) RecentAngles(n int) []string {
	var angles []string
	for _, e := range s.tail(n) {
		if e.Angle != "" {
			angles = append(angles, e.Angle)
		}
	}
	return angles
}

// TitlesToday returns titles recorded under today's calendar date.
func (s *Store) TitlesToday() []string {
	today := s.now().Format("2006-01-02")
	var titles []string
	for _, e := range s.entries {
		if e.Date == today {
			titles = append(titles, e.Title)
		}
	}
	return titles
}

// IsDuplicate reports whether candidate is too similar to a recent title,
// using word-set Jaccard similarity over normalized text. An empty candidate
// word set is never a duplicate.
func (s *Store) IsDuplicate(candidate string, threshold float64) bool {
	candWords := wordSet(normalize(candidate))
	if len(candWords) == 0 {
		return false
	}
	for _, past := range s.RecentTitles(30) {
		pastWords := wordSet(normalize(past))
		if len(pastWords) == 0 {
			continue
		}
		inter := 0
		for w := range candWords {
			if pastWords[w] {
				inter++
			}
		}
		union := len(candWords) + len(pastWords) - inter
		if union > 0 && float64(inter)/float64(union) >= threshold {
			return true
		}
	}
	return false
}

// Len reports the number of retained entries.
func (s *Store) Len() int { return len(s.entries) }

func (s *Store) tail(n int) []types.HistoryEntry {
	if n <= 0 || len(s.entries) == 0 {
		return nil
	}
	if n > len(s.entries) {
		n = len(s.entries)
	}
	return s.entries[len(s.entries)-n:]
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s]`)
var wsRe = regexp.MustCompile(`\s+`)

func normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = nonAlnumRe.ReplaceAllString(text, "")
	return strings.TrimSpace(wsRe.ReplaceAllString(text, " "))
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(text) {
		set[w] = true
	}
	return set
}
