// Package textscan extracts candidate vocabulary from free text and subtitles.
package textscan

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span is a byte range [Start, End) into the scanned text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Occurrence groups every position of one lowercased word.
type Occurrence struct {
	Word  string `json:"word"`
	Spans []Span `json:"spans"`
}

// Result is the outcome of a scan.
type Result struct {
	Text string `json:"-"`
	// Words is ordered by frequency, most frequent first; ties are alphabetical.
	Words       []Occurrence `json:"words"`
	WordsCount  int          `json:"words_count"`
	UniqueCount int          `json:"unique_count"`
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || r == '\'' || r == '-'
}

// Scan splits text into words made of letters, apostrophes and hyphens.
func Scan(text string) Result {
	spans := make(map[string][]Span)
	count := 0
	start := -1
	var word strings.Builder

	flush := func(end int) {
		if start < 0 {
			return
		}
		w := word.String()
		spans[w] = append(spans[w], Span{Start: start, End: end})
		count++
		start = -1
		word.Reset()
	}

	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			word.WriteString(strings.ToLower(string(r)))
			continue
		}
		flush(i)
	}
	flush(len(text))

	words := make([]Occurrence, 0, len(spans))
	for w, s := range spans {
		words = append(words, Occurrence{Word: w, Spans: s})
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i].Spans) != len(words[j].Spans) {
			return len(words[i].Spans) > len(words[j].Spans)
		}
		return words[i].Word < words[j].Word
	})

	return Result{Text: text, Words: words, WordsCount: count, UniqueCount: len(words)}
}

// Context returns the text around a span, widened by radius bytes on each
// side and snapped to rune boundaries. Line breaks become spaces.
func (r Result) Context(span Span, radius int) string {
	from := max(0, span.Start-radius)
	to := min(len(r.Text), span.End+radius)
	for from > 0 && !utf8.RuneStart(r.Text[from]) {
		from--
	}
	for to < len(r.Text) && !utf8.RuneStart(r.Text[to]) {
		to++
	}
	return strings.Join(strings.Fields(r.Text[from:to]), " ")
}

// Cue is one subtitle entry.
type Cue struct {
	Index int
	Start string
	End   string
	Text  string
}

// ParseSRT reads SubRip subtitles. Cues are separated by blank lines; each
// starts with a numeric index followed by a timing line.
func ParseSRT(data string) ([]Cue, error) {
	var cues []Cue
	sc := bufio.NewScanner(strings.NewReader(strings.TrimPrefix(data, "\ufeff")))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	var cur *Cue
	var lines []string
	line := 0
	finish := func() {
		if cur != nil {
			cur.Text = strings.Join(lines, "\n")
			cues = append(cues, *cur)
		}
		cur, lines = nil, nil
	}

	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		switch {
		case strings.TrimSpace(text) == "":
			finish()
		case cur == nil:
			idx, err := strconv.Atoi(strings.TrimSpace(text))
			if err != nil {
				return nil, fmt.Errorf("srt line %d: expected cue index, got %q", line, text)
			}
			cur = &Cue{Index: idx}
			if !sc.Scan() {
				return nil, fmt.Errorf("srt line %d: cue %d has no timing", line, idx)
			}
			line++
			start, end, ok := strings.Cut(strings.TrimRight(sc.Text(), "\r"), "-->")
			if !ok {
				return nil, fmt.Errorf("srt line %d: malformed timing %q", line, sc.Text())
			}
			cur.Start, cur.End = strings.TrimSpace(start), strings.TrimSpace(end)
		default:
			lines = append(lines, text)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	finish()
	return cues, nil
}

// ScanSRT scans the text of every cue, joined by newlines.
func ScanSRT(data string) (Result, error) {
	cues, err := ParseSRT(data)
	if err != nil {
		return Result{}, err
	}
	texts := make([]string, len(cues))
	for i, c := range cues {
		texts[i] = c.Text
	}
	return Scan(strings.Join(texts, "\n")), nil
}
