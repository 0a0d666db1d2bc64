package mathfmt

import "strings"

// Symbol maps a literal LaTeX command to its display replacement.
type Symbol struct {
	Command     string
	Replacement string
}

// symbolTable is matched in a single left-to-right pass. At any position
// the first entry in table order wins, so a command that is a prefix of
// another (\cdot and \cdots, \in and \int) is listed after the longer one.
var symbolTable = []Symbol{
	// Operators.
	{`\cdots`, "⋯"},
	{`\cdot`, "·"},
	{`\times`, "×"},

	// Greek letters.
	{`\alpha`, "α"},
	{`\beta`, "β"},
	{`\gamma`, "γ"},
	{`\Gamma`, "Γ"},
	{`\delta`, "δ"},
	{`\Delta`, "Δ"},
	{`\epsilon`, "ε"},
	{`\zeta`, "ζ"},
	{`\eta`, "η"},
	{`\theta`, "θ"},
	{`\Theta`, "Θ"},
	{`\iota`, "ι"},
	{`\kappa`, "κ"},
	{`\lambda`, "λ"},
	{`\Lambda`, "Λ"},
	{`\mu`, "μ"},
	{`\nu`, "ν"},
	{`\xi`, "ξ"},
	{`\Xi`, "Ξ"},
	{`\pi`, "π"},
	{`\Pi`, "Π"},
	{`\rho`, "ρ"},
	{`\sigma`, "σ"},
	{`\Sigma`, "Σ"},
	{`\tau`, "τ"},
	{`\upsilon`, "υ"},
	{`\Upsilon`, "Υ"},
	{`\phi`, "φ"},
	{`\Phi`, "Φ"},
	{`\chi`, "χ"},
	{`\psi`, "ψ"},
	{`\Psi`, "Ψ"},
	{`\omega`, "ω"},
	{`\Omega`, "Ω"},

	// Relations.
	{`\leq`, "≤"},
	{`\geq`, "≥"},
	{`\neq`, "≠"},
	{`\approx`, "≈"},
	{`\pm`, "±"},

	// Calculus and sets.
	{`\sum`, "∑"},
	{`\int`, "∫"},
	{`\partial`, "∂"},
	{`\nabla`, "∇"},
	{`\infty`, "∞"},
	{`\forall`, "∀"},
	{`\exists`, "∃"},
	{`\in`, "∈"},
	{`\notin`, "∉"},
	{`\subseteq`, "⊆"},
	{`\supseteq`, "⊇"},
	{`\subset`, "⊂"},
	{`\supset`, "⊃"},
	{`\cup`, "∪"},
	{`\cap`, "∩"},
	{`\emptyset`, "∅"},
	{`\therefore`, "∴"},
	{`\because`, "∵"},
	{`\ldots`, "..."},
	{`\vdots`, "⋮"},
	{`\ddots`, "⋱"},

	// Number sets.
	{`\mathbb{R}`, "ℝ"},
	{`\mathbb{Z}`, "ℤ"},
	{`\mathbb{N}`, "ℕ"},
	{`\mathbb{Q}`, "ℚ"},
	{`\mathbb{C}`, "ℂ"},
	{`\ R `, " ℝ "},
	{`\ Z `, " ℤ "},
	{`\ N `, " ℕ "},
	{`\ Q `, " ℚ "},
	{`\ C `, " ℂ "},

	// Arrows.
	{`\rightarrow`, "→"},
	{`\leftarrow`, "←"},
	{`\leftrightarrow`, "↔"},
	{`\Rightarrow`, "⇒"},
	{`\Leftarrow`, "⇐"},
	{`\Leftrightarrow`, "⇔"},
}

var symbolReplacer = newSymbolReplacer(symbolTable)

func newSymbolReplacer(table []Symbol) *strings.Replacer {
	pairs := make([]string, 0, 2*len(table))
	for _, s := range table {
		pairs = append(pairs, s.Command, s.Replacement)
	}
	return strings.NewReplacer(pairs...)
}

// Symbols returns a copy of the symbol table in match-priority order.
func Symbols() []Symbol {
	out := make([]Symbol, len(symbolTable))
	copy(out, symbolTable)
	return out
}
