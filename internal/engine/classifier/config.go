package classifier

import "time"

// Config holds classifier tunables.
type Config struct {
	Timeout    time.Duration // per provider attempt
	MaxRetries int
	MaxTokens  int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:    15 * time.Second,
		MaxRetries: 2,
		MaxTokens:  512,
	}
}
