// Package mathfmt converts text containing LaTeX-like math spans into HTML
// fragments. Spans are delimited by $$...$$ (display) or $...$ (inline);
// their content is rewritten with a fixed, ordered set of rules and the
// delimiters are dropped. Text outside spans is copied verbatim.
package mathfmt

import (
	"regexp"
	"strings"
)

// Kind distinguishes display math ($$...$$) from inline math ($...$).
type Kind int

const (
	Inline Kind = iota
	Display
)

func (k Kind) String() string {
	if k == Display {
		return "display"
	}
	return "inline"
}

// Segment is a math span found in the input.
type Segment struct {
	Kind Kind

	// Content is the raw text strictly between the delimiters.
	Content string

	// Start and End are byte offsets of the span in the input,
	// delimiters included.
	Start int
	End   int
}

// segmentPattern tries $$ before $ at each position so a double-dollar
// pair is never split into two inline spans. RE2 guarantees linear-time
// matching, so unterminated delimiters cannot cause runaway backtracking.
var segmentPattern = regexp.MustCompile(`(?s)\$\$(.*?)\$\$|\$(.*?)\$`)

// Segments returns the math spans of text in the order Format visits them.
func Segments(text string) []Segment {
	matches := segmentPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	out := make([]Segment, 0, len(matches))
	for _, m := range matches {
		seg := Segment{Start: m[0], End: m[1]}
		if m[2] >= 0 {
			seg.Kind = Display
			seg.Content = text[m[2]:m[3]]
		} else {
			seg.Kind = Inline
			seg.Content = text[m[4]:m[5]]
		}
		out = append(out, seg)
	}
	return out
}

// Format replaces every math span in text with its transformed content.
// It never fails: unknown commands pass through literally and a stray $
// with no partner is left as plain text. The output is not HTML-escaped.
func Format(text string) string {
	segs := Segments(text)
	if len(segs) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	last := 0
	for _, seg := range segs {
		b.WriteString(text[last:seg.Start])
		b.WriteString(FormatContent(seg.Content))
		last = seg.End
	}
	b.WriteString(text[last:])

	return b.String()
}

// FormatContent applies the rewrite rules to the content of a single
// math span (without delimiters).
func FormatContent(content string) string {
	if content == "" {
		return ""
	}
	for _, r := range rules {
		content = r.apply(content)
	}
	return content
}
