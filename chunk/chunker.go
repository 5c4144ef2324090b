// Package chunk implements the markdown chunker (spec.md §4.3, C3).
//
// It is a pure function: no store, embedder, or I/O dependency. Input is
// markdown text; output is an ordered sequence of titled, size-bounded
// sections with overlap.
package chunk

import (
	"regexp"
	"strings"
)

// Section is one chunk produced by Chunk.
type Section struct {
	Title   string
	Content string
}

// Options configures chunking. Zero values fall back to spec.md §4.3
// defaults (target 2000, overlap 200, heading levels {1,2,3}).
type Options struct {
	Target        int
	Overlap       int
	HeadingLevels map[int]bool
}

func (o Options) withDefaults() Options {
	out := o
	if out.Target <= 0 {
		out.Target = 2000
	}
	if out.Overlap <= 0 {
		out.Overlap = 200
	}
	if out.HeadingLevels == nil {
		out.HeadingLevels = map[int]bool{1: true, 2: true, 3: true}
	}
	return out
}

var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*$`)
var sentenceEndRe = regexp.MustCompile(`[.!?](\s|$)`)

type heading struct {
	level int
	title string
	// line index (into the split lines slice) of the heading line itself.
	lineIdx int
}

// Chunk splits markdown into titled sections per spec.md §4.3.
func Chunk(markdown string, opts Options) []Section {
	o := opts.withDefaults()
	lines := strings.Split(markdown, "\n")

	var headings []heading
	for i, line := range lines {
		m := headingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		level := len(m[1])
		if !o.HeadingLevels[level] {
			continue
		}
		headings = append(headings, heading{level: level, title: m[2], lineIdx: i})
	}

	if len(headings) == 0 {
		return splitBySize(strings.TrimSpace(markdown), o)
	}

	// Detect the "document title" case: the very first non-empty line is an
	// H1 heading of a permitted level.
	firstNonEmpty := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			firstNonEmpty = i
			break
		}
	}

	docTitleIdx := -1
	if firstNonEmpty >= 0 && headings[0].lineIdx == firstNonEmpty && headings[0].level == 1 {
		docTitleIdx = 0
	}

	var sections []Section
	var intro string

	startHeadingIdx := 0
	if docTitleIdx == 0 {
		// Content between the H1 and the next heading (or EOF) is the intro.
		bodyStart := headings[0].lineIdx + 1
		bodyEnd := len(lines)
		if len(headings) > 1 {
			bodyEnd = headings[1].lineIdx
		}
		intro = strings.TrimSpace(strings.Join(lines[bodyStart:bodyEnd], "\n"))
		startHeadingIdx = 1

		if len(headings) == 1 {
			// No subsequent heading: the intro becomes its own chunk titled
			// by the H1.
			if intro != "" {
				sections = append(sections, Section{Title: headings[0].title, Content: intro})
			}
			return expandOversized(sections, o)
		}
	}

	for hi := startHeadingIdx; hi < len(headings); hi++ {
		h := headings[hi]
		bodyStart := h.lineIdx + 1
		bodyEnd := len(lines)
		if hi+1 < len(headings) {
			bodyEnd = headings[hi+1].lineIdx
		}
		body := strings.TrimSpace(strings.Join(lines[bodyStart:bodyEnd], "\n"))

		if hi == startHeadingIdx && intro != "" {
			if body != "" {
				body = intro + "\n\n" + body
			} else {
				body = intro
			}
			intro = ""
		}

		sections = append(sections, Section{Title: h.title, Content: body})
	}

	return expandOversized(sections, o)
}

// expandOversized splits any chunk whose body exceeds 1.5x target, per
// spec.md §4.3 step 4, inheriting the parent title with a " (Part N)"
// suffix for parts >= 2.
func expandOversized(sections []Section, o Options) []Section {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		if len(s.Content) <= o.Target*3/2 || s.Content == "" {
			out = append(out, s)
			continue
		}
		parts := splitBySize(s.Content, o)
		for i, p := range parts {
			title := s.Title
			if i >= 1 {
				title = s.Title + " (Part " + itoa(i+1) + ")"
			}
			out = append(out, Section{Title: title, Content: p.Content})
		}
	}
	return out
}

// splitBySize performs size-based splitting over the entire content, used
// both as the fallback when no headings are found and as the oversized-chunk
// splitter.
func splitBySize(text string, o Options) []Section {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var out []Section
	minProgress := 50
	cursor := 0
	n := len(text)
	partNum := 1

	for cursor < n {
		end := cursor + o.Target
		if end > n {
			end = n
		} else {
			end = rewindToSentenceBoundary(text, cursor, end)
		}

		raw := strings.TrimSpace(text[cursor:end])
		if len(raw) >= 50 {
			out = append(out, Section{Title: synthesizeTitle(raw, partNum), Content: raw})
			partNum++
		}

		if end >= n {
			break
		}

		next := end - o.Overlap
		if next < cursor+minProgress {
			next = cursor + minProgress
		}
		if next <= cursor {
			next = cursor + 1
		}
		cursor = next
	}

	return out
}

// rewindToSentenceBoundary looks for a sentence-ending character followed
// by whitespace/EOF within the last 20% of the [start,end) window and, if
// found, rewinds end to just after it.
func rewindToSentenceBoundary(text string, start, end int) int {
	windowLen := end - start
	lookback := start + windowLen*8/10
	if lookback < start {
		lookback = start
	}

	segment := text[lookback:end]
	locs := sentenceEndRe.FindAllStringIndex(segment, -1)
	if len(locs) == 0 {
		return end
	}
	last := locs[len(locs)-1]
	// Cut right after the punctuation character (locs gives [start,end) of
	// the punctuation+following-whitespace-or-EOF match; we want just past
	// the punctuation byte).
	cut := lookback + last[0] + 1
	if cut <= start {
		return end
	}
	return cut
}

func synthesizeTitle(body string, partNum int) string {
	if m := headingRe.FindStringSubmatch(firstLine(body)); m != nil {
		return m[2]
	}
	if s := firstSentence(body); s != "" {
		return s
	}
	return "Section " + itoa(partNum)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func firstSentence(s string) string {
	loc := sentenceEndRe.FindStringIndex(s)
	var sentence string
	if loc != nil {
		sentence = strings.TrimSpace(s[:loc[0]+1])
	} else {
		sentence = strings.TrimSpace(s)
	}
	if sentence == "" {
		return ""
	}
	const maxLen = 100
	if len(sentence) <= maxLen {
		return sentence
	}
	return strings.TrimSpace(sentence[:maxLen]) + "..."
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b [20]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}
