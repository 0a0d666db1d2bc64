package mathfmt

import (
	"regexp"
	"strings"
)

// rule is one rewrite step applied to span content.
type rule struct {
	name  string
	apply func(string) string
}

// rules run in this order for every span.
var rules = []rule{
	{name: "superscript", apply: scriptRule(`\^`, "sup")},
	{name: "subscript", apply: scriptRule(`_`, "sub")},
	{name: "fraction", apply: templateRule(`(?s)\\frac\{(.*?)\}\{(.*?)\}`, "(${1})/(${2})")},
	{name: "nth-root", apply: templateRule(`(?s)\\sqrt\[(.*?)\]\{(.*?)\}`, "<sup>${1}</sup>√(${2})")},
	{name: "square-root", apply: templateRule(`(?s)\\sqrt\{(.*?)\}`, "√(${1})")},
	{name: "symbols", apply: symbolReplacer.Replace},
}

// scriptRule wraps the argument of marker (a word run or a brace group)
// in an HTML tag. A brace group loses its outer braces exactly once.
func scriptRule(marker, tag string) func(string) string {
	re := regexp.MustCompile(marker + `(\w+|(?s:\{.*?\}))`)
	open, closing := "<"+tag+">", "</"+tag+">"
	return func(s string) string {
		return re.ReplaceAllStringFunc(s, func(m string) string {
			arg := m[1:]
			if strings.HasPrefix(arg, "{") && strings.HasSuffix(arg, "}") {
				arg = arg[1 : len(arg)-1]
			}
			return open + arg + closing
		})
	}
}

func templateRule(pattern, template string) func(string) string {
	re := regexp.MustCompile(pattern)
	return func(s string) string {
		return re.ReplaceAllString(s, template)
	}
}
