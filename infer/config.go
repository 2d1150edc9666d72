package infer

// Config is the whole tunable surface of the engine.
type Config struct {
	// SampleSize caps how many records are folded into the profiles.
	// 0 means unbounded. Records past the cap still count as submitted.
	SampleSize int

	// MinFieldFrequency drops fields observed in less than this fraction
	// of sampled records at finalize time. In [0, 1].
	MinFieldFrequency float64

	// DetectFormats runs the semantic format detector on string values.
	DetectFormats bool

	// MaxDepth bounds recursive expansion of nested objects and arrays.
	// A container deeper than this is still recorded with its own type
	// but its children are not profiled. 0 means unbounded.
	MaxDepth int

	// CollectExamples keeps up to MaxExamples distinct scalar values
	// per field.
	CollectExamples bool
	MaxExamples     int

	// FormatMatchThreshold is the fraction of a field's string
	// observations that must match a single format for the field to be
	// annotated with it. In [0, 1].
	FormatMatchThreshold float64
}

func DefaultConfig() Config {
	return Config{
		SampleSize:           0,
		MinFieldFrequency:    0.0,
		DetectFormats:        true,
		MaxDepth:             0,
		CollectExamples:      true,
		MaxExamples:          5,
		FormatMatchThreshold: 0.9,
	}
}

func (c Config) validate() error {
	if c.SampleSize < 0 {
		return &ConfigError{Option: "SampleSize", Reason: "must not be negative"}
	}
	if c.MinFieldFrequency < 0 || c.MinFieldFrequency > 1 {
		return &ConfigError{Option: "MinFieldFrequency", Reason: "must be in [0, 1]"}
	}
	if c.MaxDepth < 0 {
		return &ConfigError{Option: "MaxDepth", Reason: "must not be negative"}
	}
	if c.MaxExamples < 0 {
		return &ConfigError{Option: "MaxExamples", Reason: "must not be negative"}
	}
	if c.FormatMatchThreshold < 0 || c.FormatMatchThreshold > 1 {
		return &ConfigError{Option: "FormatMatchThreshold", Reason: "must be in [0, 1]"}
	}
	return nil
}
