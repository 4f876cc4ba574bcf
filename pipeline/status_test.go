package pipeline

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusLogOrderAndRecent(t *testing.T) {
	l := NewStatusLog()
	l.Add("one")
	l.Add("two %d", 2)
	l.Add("three")

	assert.Equal(t, []string{"two 2", "three"}, l.Recent(2))
	assert.Equal(t, []string{"one", "two 2", "three"}, l.Lines())
	assert.Equal(t, []string{"one", "two 2", "three"}, l.Recent(99))
	assert.Nil(t, l.Recent(0))
}

func TestStatusLogTruncatesErrorDetail(t *testing.T) {
	l := NewStatusLog()
	l.AddError("Scene 3 image failed", errors.New(strings.Repeat("x", 500)))

	lines := l.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, len("Scene 3 image failed: ")+errDetailLen, len(lines[0]))
}

func TestStatusLogConcurrentAppends(t *testing.T) {
	l := NewStatusLog()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Add("line")
		}()
	}
	wg.Wait()
	assert.Len(t, l.Lines(), 50)
}

func TestRunIDIsShort(t *testing.T) {
	id := newRunID()
	assert.Len(t, id, 8)
	assert.NotEqual(t, id, newRunID())
}
