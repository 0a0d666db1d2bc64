package render

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/olytutor/internal/mathfmt"
)

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	'+': '⁺', '-': '⁻', '=': '⁼', '(': '⁽', ')': '⁾',
	'a': 'ᵃ', 'b': 'ᵇ', 'c': 'ᶜ', 'd': 'ᵈ', 'e': 'ᵉ', 'f': 'ᶠ', 'g': 'ᵍ',
	'h': 'ʰ', 'i': 'ⁱ', 'j': 'ʲ', 'k': 'ᵏ', 'l': 'ˡ', 'm': 'ᵐ', 'n': 'ⁿ',
	'o': 'ᵒ', 'p': 'ᵖ', 'r': 'ʳ', 's': 'ˢ', 't': 'ᵗ', 'u': 'ᵘ', 'v': 'ᵛ',
	'w': 'ʷ', 'x': 'ˣ', 'y': 'ʸ', 'z': 'ᶻ',
	'A': 'ᴬ', 'B': 'ᴮ', 'D': 'ᴰ', 'E': 'ᴱ', 'G': 'ᴳ', 'H': 'ᴴ', 'I': 'ᴵ',
	'J': 'ᴶ', 'K': 'ᴷ', 'L': 'ᴸ', 'M': 'ᴹ', 'N': 'ᴺ', 'O': 'ᴼ', 'P': 'ᴾ',
	'R': 'ᴿ', 'T': 'ᵀ', 'U': 'ᵁ', 'V': 'ⱽ', 'W': 'ᵂ',
}

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄',
	'5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
	'+': '₊', '-': '₋', '=': '₌', '(': '₍', ')': '₎',
	'a': 'ₐ', 'e': 'ₑ', 'h': 'ₕ', 'i': 'ᵢ', 'j': 'ⱼ', 'k': 'ₖ', 'l': 'ₗ',
	'm': 'ₘ', 'n': 'ₙ', 'o': 'ₒ', 'p': 'ₚ', 'r': 'ᵣ', 's': 'ₛ', 't': 'ₜ',
	'u': 'ᵤ', 'v': 'ᵥ', 'x': 'ₓ',
}

// Innermost tags only; Terminal applies them until none remain.
var (
	supTag = regexp.MustCompile(`<sup>([^<]*)</sup>`)
	subTag = regexp.MustCompile(`<sub>([^<]*)</sub>`)
)

// Terminal formats math in text and converts the resulting <sup>/<sub>
// markup to Unicode super/subscripts. Content with no Unicode form falls
// back to ^X / _X, parenthesized when longer than one rune.
func Terminal(text string) string {
	out := mathfmt.Format(text)
	for {
		next := supTag.ReplaceAllStringFunc(out, func(m string) string {
			return script(supTag.FindStringSubmatch(m)[1], superscripts, "^")
		})
		next = subTag.ReplaceAllStringFunc(next, func(m string) string {
			return script(subTag.FindStringSubmatch(m)[1], subscripts, "_")
		})
		if next == out {
			return out
		}
		out = next
	}
}

func script(s string, table map[rune]rune, marker string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range s {
		mapped, ok := table[r]
		if !ok {
			if utf8.RuneCountInString(s) == 1 {
				return marker + s
			}
			return marker + "(" + s + ")"
		}
		b.WriteRune(mapped)
	}
	return b.String()
}
