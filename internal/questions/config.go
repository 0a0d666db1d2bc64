package questions

// Config controls question generation and caching.
type Config struct {
	// Validators run in order on every generated set. The first failure
	// stops the pipeline.
	Validators []Validator

	// Count is the number of questions generated per day.
	Count int

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&DuplicateValidator{},
		},
		Count:       3,
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}
