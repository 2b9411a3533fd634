package programs

import (
	"github.com/rs/zerolog"
	"github.com/vocdoni/mutator-set-programs/mutatorset"
)

type config struct {
	logger zerolog.Logger
	params mutatorset.Parameters
}

func defaultConfig() config {
	return config{
		logger: zerolog.Nop(),
		params: mutatorset.DefaultParameters(),
	}
}

// Option configures a program.
type Option func(*config)

// WithLogger sets the logger of the program. Programs log every phase at
// debug level. The default logger discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithParameters sets the mutator set parameters used to derive and check
// the Bloom filter indices.
func WithParameters(p mutatorset.Parameters) Option {
	return func(c *config) {
		c.params = p
	}
}
