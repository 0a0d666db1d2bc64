// Package render turns tutor text (Markdown with embedded TeX math) into
// HTML fragments or terminal-friendly plain text.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/abhisek/olytutor/internal/mathfmt"
)

// Placeholders use Unicode private-use runes so Markdown parsing and HTML
// escaping leave them intact.
const (
	placeholderOpen  = "\uE000"
	placeholderClose = "\uE001"
)

// markdown leaves goldhtml.WithUnsafe off, so raw HTML in model output is
// omitted rather than passed through.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(goldhtml.WithHardWraps()),
)

// HTML renders Markdown with $…$ and $$…$$ math to an HTML fragment.
// Math spans are cut out before Markdown parsing so emphasis markers inside
// them survive, then HTML-escaped, formatted and wrapped in
// <span class="math inline|display">.
func HTML(src string) (string, error) {
	protected, spans := protectMath(src)

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(protected), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	return restoreMath(buf.String(), spans), nil
}

// protectMath replaces every math segment with a numbered placeholder and
// returns the rendered span for each.
func protectMath(src string) (string, []string) {
	segs := mathfmt.Segments(src)
	if len(segs) == 0 {
		return src, nil
	}

	var b strings.Builder
	spans := make([]string, 0, len(segs))
	last := 0
	for _, seg := range segs {
		b.WriteString(src[last:seg.Start])
		last = seg.End

		formatted := mathfmt.FormatContent(html.EscapeString(seg.Content))
		if formatted == "" {
			continue
		}
		b.WriteString(placeholderOpen)
		b.WriteString(strconv.Itoa(len(spans)))
		b.WriteString(placeholderClose)
		spans = append(spans, fmt.Sprintf(`<span class="math %s">%s</span>`, seg.Kind, formatted))
	}
	b.WriteString(src[last:])
	return b.String(), spans
}

func restoreMath(rendered string, spans []string) string {
	if len(spans) == 0 {
		return rendered
	}

	var b strings.Builder
	for {
		i := strings.Index(rendered, placeholderOpen)
		if i < 0 {
			break
		}
		j := strings.Index(rendered[i:], placeholderClose)
		if j < 0 {
			break
		}
		n, err := strconv.Atoi(rendered[i+len(placeholderOpen) : i+j])
		b.WriteString(rendered[:i])
		if err == nil && n >= 0 && n < len(spans) {
			b.WriteString(spans[n])
		}
		rendered = rendered[i+j+len(placeholderClose):]
	}
	b.WriteString(rendered)
	return b.String()
}
