package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return Open(filepath.Join(t.TempDir(), "topic_history.json"))
}

func TestMissingFileIsEmptyHistory(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "does", "not", "exist.json"))
	assert.Zero(t, s.Len())
	assert.Empty(t, s.RecentTitles(10))
}

func TestCorruptFileIsEmptyHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topic_history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	s := Open(path)
	assert.Zero(t, s.Len())
}

func TestAddPersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topic_history.json")
	s := Open(path)
	require.NoError(t, s.Add("Petrol price comedy", "inflation"))
	require.NoError(t, s.Add("Job server down", "unemployment"))

	reloaded := Open(path)
	assert.Equal(t, []string{"Petrol price comedy", "Job server down"}, reloaded.RecentTitles(10))
	assert.Equal(t, []string{"inflation", "unemployment"}, reloaded.RecentAngles(10))
}

func TestRetentionCapEvictsOldest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topic_history.json")
	s := OpenWithCap(path, 3)
	for _, title := range []string{"one", "two", "three", "four"} {
		require.NoError(t, s.Add(title, ""))
	}
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"two", "three", "four"}, s.RecentTitles(10))
}

func TestRecentAnglesSkipsEmpty(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Add("a", "elections"))
	require.NoError(t, s.Add("b", ""))
	require.NoError(t, s.Add("c", "budget"))
	assert.Equal(t, []string{"elections", "budget"}, s.RecentAngles(10))
}

func TestTitlesToday(t *testing.T) {
	s := tempStore(t)
	s.now = func() time.Time { return time.Date(2026, 8, 1, 7, 0, 0, 0, time.UTC) }
	require.NoError(t, s.Add("yesterday's topic", ""))
	s.now = func() time.Time { return time.Date(2026, 8, 2, 7, 0, 0, 0, time.UTC) }
	require.NoError(t, s.Add("today's topic", ""))
	assert.Equal(t, []string{"today's topic"}, s.TitlesToday())
}

func TestIsDuplicateIdenticalTitle(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Add("Modi vs Rahul petrol debate", "inflation"))
	assert.True(t, s.IsDuplicate("Modi vs Rahul petrol debate", 1.0))
	assert.True(t, s.IsDuplicate("MODI vs rahul PETROL debate!!", 0.6))
}

func TestIsDuplicateDisjointWords(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Add("Modi vs Rahul petrol debate", "inflation"))
	assert.False(t, s.IsDuplicate("Cricket auction madness tonight", 0.1))
}

func TestIsDuplicateEmptyCandidate(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Add("anything", ""))
	assert.False(t, s.IsDuplicate("", 0.0))
	assert.False(t, s.IsDuplicate("!!! ???", 0.0))
}
