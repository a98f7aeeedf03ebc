package autoreply

import "time"

type Config struct {
	Timeout     time.Duration
	MaxRetries  int
	MaxTokens   int
	Temperature float32
}

func DefaultConfig() Config {
	return Config{
		Timeout:     15 * time.Second,
		MaxRetries:  1,
		MaxTokens:   1024,
		Temperature: 0.4,
	}
}
