package pipeline

import (
	"fmt"
	"sync"
)

// errDetailLen bounds error text in status lines so one giant provider
// response cannot flood the log an operator reads.
const errDetailLen = 100

// StatusLog is the per-run progress feed. One instance lives for one Run;
// stage workers append to it concurrently.
type StatusLog struct {
	mu    sync.Mutex
	lines []string
}

// NewStatusLog creates an empty feed.
func NewStatusLog() *StatusLog {
	return &StatusLog{}
}

// Add appends a formatted status line.
func (l *StatusLog) Add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// AddError appends a failure line with the error text truncated.
func (l *StatusLog) AddError(prefix string, err error) {
	detail := err.Error()
	if len(detail) > errDetailLen {
		detail = detail[:errDetailLen]
	}
	l.Add("%s: %s", prefix, detail)
}

// Recent returns the last n lines in order.
func (l *StatusLog) Recent(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || len(l.lines) == 0 {
		return nil
	}
	if n > len(l.lines) {
		n = len(l.lines)
	}
	out := make([]string, n)
	copy(out, l.lines[len(l.lines)-n:])
	return out
}

// Lines returns a copy of the whole feed.
func (l *StatusLog) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}
