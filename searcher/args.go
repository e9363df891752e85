package searcher

// Hyperparameters for the belief-tree search

// Tiny is the tolerance used for bound comparisons and tie-breaking.
const Tiny = 1e-6

// Config holds the search hyperparameters. NewSolver starts from the
// defaults below and applies the functional options; each option ignores a
// non-positive input, and NewSolver panics on values outside the ranges
// noted on the fields.
type Config struct {
	NumParticles    int     // Scenarios per belief node (K)
	SearchDepth     int     // Max depth of any trial
	Discount        float64 // Reward discount, 0 < discount <= 1
	PruningConstant float64 // >= 0; 0 disables pruning
	Xi              float64 // Excess-uncertainty regularization, 0 < Xi < 1
	MaxTrials       int     // 0 means bounded by the time budget only
	CollectMetrics  bool
}

type Option func(*Config)

func WithNumParticles(k int) Option {
	return func(c *Config) {
		if k > 0 {
			c.NumParticles = k
		}
	}
}

func WithSearchDepth(depth int) Option {
	return func(c *Config) {
		if depth > 0 {
			c.SearchDepth = depth
		}
	}
}

func WithDiscount(discount float64) Option {
	return func(c *Config) {
		if discount > 0 {
			c.Discount = discount
		}
	}
}

func WithPruningConstant(constant float64) Option {
	return func(c *Config) {
		if constant > 0 {
			c.PruningConstant = constant
		}
	}
}

func WithXi(xi float64) Option {
	return func(c *Config) {
		if xi > 0 {
			c.Xi = xi
		}
	}
}

func WithMaxTrials(trials int) Option {
	return func(c *Config) {
		if trials > 0 {
			c.MaxTrials = trials
		}
	}
}

func WithMetrics() Option {
	return func(c *Config) {
		c.CollectMetrics = true
	}
}

func defaultConfig() Config {
	return Config{
		NumParticles: 500,
		SearchDepth:  90,
		Discount:     0.95,
		Xi:           0.95,
	}
}
