package ngql

// Options configures an engine. The zero value renders every entity of a
// batch into a single statement with escaped strings.
type Options struct {
	// BatchSize caps the number of entities per statement. Zero or negative
	// means the whole batch goes into one statement.
	BatchSize int

	// RawStrings disables escaping inside string literals. Values are then
	// inserted between the quotes as-is and must not contain quotes or
	// backslashes.
	RawStrings bool
}

// Option mutates Options.
type Option func(*Options)

// WithBatchSize caps the number of entities per statement.
func WithBatchSize(n int) Option {
	return func(o *Options) { o.BatchSize = n }
}

// WithRawStrings turns off string escaping.
func WithRawStrings() Option {
	return func(o *Options) { o.RawStrings = true }
}

// WithOptions replaces all options at once, typically from configuration.
func WithOptions(opts Options) Option {
	return func(o *Options) { *o = opts }
}

// NewOptions applies opts to the zero Options.
func NewOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Formatter returns the literal formatter matching the options.
func (o Options) Formatter() Formatter {
	return Formatter{RawStrings: o.RawStrings}
}
