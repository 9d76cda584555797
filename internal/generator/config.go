package generator

// Config drives the synthetic data generator.
type Config struct {
	VerticesPerTag int
	EdgesPerType   int
	// NullChance is the probability that a property is left out and renders
	// as NULL.
	NullChance float64
	// ShareChance is the probability that a string property reuses a value
	// generated earlier.
	ShareChance float64
	Seed        int64
}

// DefaultConfig returns baseline settings for a quick local load.
func DefaultConfig() Config {
	return Config{
		VerticesPerTag: 1000,
		EdgesPerType:   5000,
		NullChance:     0.05,
		ShareChance:    0.3,
		Seed:           42,
	}
}
