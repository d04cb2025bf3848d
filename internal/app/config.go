package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Definition is the operation (or pipeline) to apply, in kord's
	// operator definition syntax.
	Definition string

	// ResourcePaths are directories or single files with macro and
	// globals definitions. Empty means the in-memory Minimal provider.
	ResourcePaths []string

	// Inverse applies the operation in the inverse direction; Roundtrip
	// applies forward-then-inverse and reports the distance from the
	// input, for numerical quality checking.
	Inverse   bool
	Roundtrip bool

	// Degrees marks angular input and output as degrees in
	// latitude-longitude order, converting around the application.
	Degrees bool

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.Definition == "" {
		return nil, errors.New("Definition is a required configuration field and cannot be empty")
	}
	if cfg.Inverse && cfg.Roundtrip {
		return nil, errors.New("Inverse and Roundtrip are mutually exclusive")
	}
	return &cfg, nil
}
