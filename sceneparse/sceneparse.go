// Package sceneparse turns raw generated script text into an ordered list
// of typed scenes. Generators format scripts inconsistently: markdown
// emphasis around labels, emoji decorations, echoed template blocks before
// the real output, non-monotonic scene numbers. The parser works in two
// passes so the failure modes stay independent: a boundary pass that finds
// scene markers, then a field pass that extracts the visual description and
// narration from each body.
package sceneparse

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"satire-shorts/textclean"
	"satire-shorts/types"
)

// ParseError reports that a text yielded zero scenes. The text itself must
// change for a retry to help, so this is fatal at this layer.
type ParseError struct {
	TextLen int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no scene markers found in %d chars of script text", e.TextLen)
}

// MaxVisualLen caps the visual description passed to image providers.
const MaxVisualLen = 500

// DefaultSpeakers are the character labels recognized in dialogue lines.
var DefaultSpeakers = []string{
	"Rahul", "Modi", "Kejriwal", "Yogi", "Shah", "Amit", "Common Man", "Narendra",
}

var markerRe = regexp.MustCompile(`(?im)(?:^[#\s]*)?(?:🎬\s*)?Scene\s*(\d+)\s*(?:[:\-—–]+[^\n]*)?`)

var visualLabelRe = regexp.MustCompile(`(?i)\*{0,2}Visual[:\s]*\*{0,2}\s*[:\-]?\s*`)

var quotedSpanRe = regexp.MustCompile(`"([^"]{5,})"`)

// Parser extracts scenes from script text. The zero value is not usable;
// call New.
type Parser struct {
	narratorRe *regexp.Regexp
	speakerRe  *regexp.Regexp
	cutRe      *regexp.Regexp
}

// New builds a Parser recognizing the given character names in dialogue
// labels. With no names, DefaultSpeakers is used.
func New(speakers ...string) *Parser {
	if len(speakers) == 0 {
		speakers = DefaultSpeakers
	}
	alts := make([]string, len(speakers))
	for i, s := range speakers {
		alts[i] = strings.ReplaceAll(regexp.QuoteMeta(s), ` `, `\s*`)
	}
	names := strings.Join(alts, "|")

	return &Parser{
		narratorRe: regexp.MustCompile(`(?i)\*{0,2}Narrator[^:\n]*:\*{0,2}\s*["“]?([^"”\n]+)["”]?`),
		speakerRe:  regexp.MustCompile(`(?i)\*{0,2}(?:` + names + `)[^:\n]*:\*{0,2}\s*["“]?([^"”\n]+)["”]?`),
		// A field label ends the visual capture: a known label or speaker
		// name with optional decoration, or any parenthesized cue line,
		// terminated by a colon or emphasis marker.
		cutRe: regexp.MustCompile(
			`(?i)\n\s*\*{0,2}(?:Camera|Narrator|Text|Background|End|Audience|` + names + `)\b[^\n]*?[:*]` +
				`|\n\s*\*{0,2}\w+\s*\([^)\n]*\)[^\n]*?[:*]`),
	}
}

type marker struct {
	id         int
	start, end int
}

// Parse extracts the ordered scene list from raw script text. It returns
// *ParseError when no scene survives; partial formatting damage inside a
// body is tolerated, never fatal.
func (p *Parser) Parse(text string) ([]types.Scene, error) {
	markers := scanMarkers(text)
	if len(markers) == 0 {
		return nil, &ParseError{TextLen: len(text)}
	}

	var scenes []types.Scene
	for i, m := range markers {
		bodyEnd := len(text)
		if i+1 < len(markers) {
			bodyEnd = markers[i+1].start
		}
		body := text[m.end:bodyEnd]
		if strings.TrimSpace(body) == "" {
			continue
		}

		scene := types.Scene{
			ID:        m.id,
			Visual:    p.extractVisual(body),
			Narration: p.extractNarration(body),
		}
		if scene.Visual == "" && scene.Narration == "" {
			continue
		}
		scenes = append(scenes, scene)
	}

	if len(scenes) == 0 {
		return nil, &ParseError{TextLen: len(text)}
	}
	return scenes, nil
}

// scanMarkers finds scene boundary markers, keeping only the last
// occurrence of each index. Generators often echo the instruction template
// before the real script; the real content comes last.
func scanMarkers(text string) []marker {
	matches := markerRe.FindAllStringSubmatchIndex(text, -1)
	last := make(map[int]marker)
	for _, loc := range matches {
		id := 0
		for _, c := range text[loc[2]:loc[3]] {
			id = id*10 + int(c-'0')
		}
		last[id] = marker{id: id, start: loc[0], end: loc[1]}
	}

	markers := make([]marker, 0, len(last))
	for _, m := range last {
		markers = append(markers, m)
	}
	// Textual position is authoritative, not index value: malformed output
	// need not number scenes monotonically.
	sort.Slice(markers, func(i, j int) bool { return markers[i].start < markers[j].start })
	return markers
}

func (p *Parser) extractVisual(body string) string {
	label := visualLabelRe.FindStringIndex(body)
	if label == nil {
		return ""
	}
	rest := body[label[1]:]
	if cut := p.cutRe.FindStringIndex(rest); cut != nil {
		rest = rest[:cut[0]]
	}
	visual := textclean.Inline(rest)
	if runes := []rune(visual); len(runes) > MaxVisualLen {
		visual = string(runes[:MaxVisualLen])
	}
	return visual
}

func (p *Parser) extractNarration(body string) string {
	var parts []string
	for _, m := range p.narratorRe.FindAllStringSubmatch(body, -1) {
		parts = append(parts, m[1])
	}
	for _, m := range p.speakerRe.FindAllStringSubmatch(body, -1) {
		parts = append(parts, m[1])
	}
	if len(parts) == 0 {
		// No labeled lines: fall back to any quoted span long enough to be
		// an utterance.
		for _, m := range quotedSpanRe.FindAllStringSubmatch(body, -1) {
			parts = append(parts, m[1])
		}
	}

	var cleaned []string
	for _, part := range parts {
		if c := textclean.Strip(part); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	// The separator keeps utterance boundaries visible for audio timing.
	return strings.Join(cleaned, " ... ")
}
