// Package recovery extracts structured JSON payloads from free-form
// generator text. Generators wrap payloads in markdown fences, leak
// reasoning tags, emit trailing prose, truncate output mid-array and
// occasionally double-encode the whole thing; Recover works through a
// fixed sequence of strategies before giving up.
package recovery

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// RecoveryError reports that every repair strategy failed for one raw text.
type RecoveryError struct {
	RawLen int
	Err    error
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("no recoverable JSON in %d bytes of generator text: %v", e.RawLen, e.Err)
}

func (e *RecoveryError) Unwrap() error { return e.Err }

var (
	thinkRe         = regexp.MustCompile(`(?s)<think>.*?</think>`)
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)
	controlRe       = regexp.MustCompile("[\x00-\x1f\x7f]")
	adjacentObjRe   = regexp.MustCompile(`}\s*{`)
)

// Recover parses raw generator text into a JSON-compatible structure
// (map[string]any, []any, or scalars). It is single-shot per text;
// retrying the whole generate+recover cycle is the caller's job.
func Recover(raw string) (any, error) {
	cleaned := clean(raw)

	result, err := parse(cleaned)
	if err != nil {
		result, err = parse(repairText(cleaned))
		if err != nil {
			return nil, &RecoveryError{RawLen: len(raw), Err: err}
		}
	}

	// The model sometimes returns a JSON-encoded string holding the real
	// payload. Unwrap up to 3 nesting levels, then give up and return the
	// string as-is.
	for range [3]struct{}{} {
		s, ok := result.(string)
		if !ok {
			break
		}
		var inner any
		if err := json.Unmarshal([]byte(s), &inner); err == nil {
			result = inner
			continue
		}
		if err := json.Unmarshal([]byte(clean(s)), &inner); err == nil {
			result = inner
			continue
		}
		break
	}

	return result, nil
}

func parse(text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// clean strips fences and reasoning tags, then picks the best JSON candidate
// span. Objects are checked before arrays, but the largest valid candidate
// wins: a valid larger array must not lose to a smaller object slice.
func clean(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[i+1:]
		} else {
			text = text[3:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	text = strings.TrimSpace(thinkRe.ReplaceAllString(text, ""))

	best := ""
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(text, pair[0])
		end := strings.LastIndex(text, pair[1])
		if start == -1 || end <= start {
			continue
		}
		candidate := text[start : end+1]
		if best != "" && len(candidate) <= len(best) {
			continue
		}
		if json.Valid([]byte(candidate)) {
			best = candidate
			continue
		}
		// Incremental decode: accept the longest valid prefix so truncated
		// trailing content does not sink an otherwise good payload.
		if prefix, ok := decodePrefix(candidate); ok {
			best = prefix
		} else if best == "" {
			best = candidate
		}
	}
	if best != "" {
		return best
	}
	return text
}

// decodePrefix decodes the first complete JSON value in s, ignoring
// whatever follows it, and returns the value re-encoded canonically.
func decodePrefix(s string) (string, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(out), true
}

// repairText applies textual fixes for the malformations generators
// actually produce: trailing commas, single-quoted strings, stray control
// characters, and concatenated objects missing their separator.
func repairText(text string) string {
	text = trailingCommaRe.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "'", `"`)
	text = controlRe.ReplaceAllString(text, " ")
	text = adjacentObjRe.ReplaceAllString(text, "},{")
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(text, pair[0])
		end := strings.LastIndex(text, pair[1])
		if start != -1 && end > start {
			return text[start : end+1]
		}
	}
	return text
}
