package tutor

// Config holds sampling settings per tutor operation.
type Config struct {
	EvaluateTemperature float64
	FollowUpTemperature float64
	SolveTemperature    float64

	// MaxTokens is the token budget for every response.
	MaxTokens int
}

// DefaultConfig returns the recommended settings.
func DefaultConfig() Config {
	return Config{
		EvaluateTemperature: 0.5,
		FollowUpTemperature: 0.6,
		SolveTemperature:    0.5,
		MaxTokens:           4096,
	}
}
