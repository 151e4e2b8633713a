// Package config holds the tunable parameters of the DEFLATE block
// optimizer: DP width caps, iteration counts, evolutionary search sizes,
// and embed-awareness toggles.
package config

// Config holds every tunable named by the optimizer's components. The
// commands read only NumIteration, Seed, PopulationSize and CrossoverSize
// from it; no code reads the other fields.
type Config struct {
	// MaxWidthLit caps the literal/length code-length DP (component E).
	// RFC 1951 allows up to 15; the optimizer defaults lower because a
	// shallower tree costs less to describe in the CL meta-encoding.
	MaxWidthLit int
	// MaxWidthDist caps the distance code-length DP (component F).
	MaxWidthDist int
	// MaxWidthCL caps the CL-alphabet chooser (component D). RFC 1951
	// allows up to 7.
	MaxWidthCL int
	// KraftBudgetCLBits is log2 of the Kraft budget unit used by the
	// CL-alphabet DP; 10 means a budget of 2^10.
	KraftBudgetCLBits int

	// NumIteration bounds the block coordinator's outer round count
	// (component H).
	NumIteration int
	// NumPerturbation bounds how many CL-perturbation moves (component I)
	// are tried in a row before the coordinator gives up on a round.
	NumPerturbation int

	// PopulationSize is the evolutionary search's population count
	// (component K).
	PopulationSize int
	// CrossoverSize is the number of crossover attempts per generation.
	CrossoverSize int
	// Seed initializes the process-wide xorshift PRNG. Zero means
	// "use the default seed", not "unseeded".
	Seed uint64

	// EmbedAware turns on the host-string-escape cost model (component L).
	EmbedAware bool
	// MaxSplitAttempts bounds the two-block splitter's exhaustive sweep
	// over candidate split positions; 0 means unbounded (try every
	// position, as the original does).
	MaxSplitAttempts int
}

// Default returns the configuration matching the constants hard-coded in
// the C++ and Python originals: W_L=9, W_D=6, W_CL=7, Kraft budget 2^10,
// POPULATION_SIZE=100, CROSSOVER_SIZE=100.
func Default() *Config {
	return &Config{
		MaxWidthLit:       9,
		MaxWidthDist:      6,
		MaxWidthCL:        7,
		KraftBudgetCLBits: 10,
		NumIteration:      10,
		NumPerturbation:   5,
		PopulationSize:    100,
		CrossoverSize:     100,
		Seed:              0xdeadbeefcafebabe,
		EmbedAware:        false,
		MaxSplitAttempts:  0,
	}
}
