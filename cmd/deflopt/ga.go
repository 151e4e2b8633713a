package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daanv2/deflopt/internal/block"
	"github.com/daanv2/deflopt/internal/config"
	"github.com/daanv2/deflopt/internal/dump"
	"github.com/daanv2/deflopt/internal/embed"
	"github.com/daanv2/deflopt/internal/ga"
	"github.com/daanv2/deflopt/internal/rle"
	"github.com/daanv2/deflopt/internal/rng"
	"github.com/daanv2/deflopt/internal/variable"
)

type gaFlags struct {
	inBlock       string
	inVariables   string
	outBlock      string
	outVariables  string
	generations   int
	seed          uint64
}

func newGACmd(root *rootFlags) *cobra.Command {
	flags := &gaFlags{}
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "ga",
		Short: "Run the evolutionary outer search (component K) over a block and its variables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGA(root, flags, cfg)
		},
	}

	cmd.Flags().StringVar(&flags.inBlock, "in-block", "", "input block dump path (required)")
	cmd.Flags().StringVar(&flags.inVariables, "in-variables", "", "input variable dump path")
	cmd.Flags().StringVar(&flags.outBlock, "out-block", "", "output block dump path (required)")
	cmd.Flags().StringVar(&flags.outVariables, "out-variables", "", "output variable dump path")
	cmd.Flags().IntVar(&flags.generations, "generations", 20, "generation cap")
	cmd.Flags().Uint64Var(&flags.seed, "seed", cfg.Seed, "GA RNG seed")
	cmd.MarkFlagRequired("in-block")
	cmd.MarkFlagRequired("out-block")

	return cmd
}

func runGA(root *rootFlags, flags *gaFlags, cfg *config.Config) error {
	logger, err := newLogger(root.logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	blockFile, err := os.Open(flags.inBlock)
	if err != nil {
		return errors.Wrap(err, "opening input block dump")
	}
	raw, err := dump.ReadBlock(blockFile)
	blockFile.Close()
	if err != nil {
		return errors.Wrap(err, "reading block dump")
	}
	d, ok := raw.(*block.Dynamic)
	if !ok {
		return errors.New("ga: only dynamic blocks are supported")
	}

	var vars []variable.Variable
	var conflict [][]bool
	if flags.inVariables != "" {
		varFile, err := os.Open(flags.inVariables)
		if err != nil {
			return errors.Wrap(err, "opening input variable dump")
		}
		vars, conflict, err = dump.ReadVariables(varFile, true)
		varFile.Close()
		if err != nil {
			return errors.Wrap(err, "reading variable dump")
		}
	}

	cache := rle.NewCache()
	src := rng.New(flags.seed)

	opts := ga.DefaultOptions()
	opts.PopulationSize = cfg.PopulationSize
	opts.CrossoverSize = cfg.CrossoverSize
	opts.ConflictMatrix = conflict
	if root.embedAware {
		opts.Escaper = embed.PythonEscaper{}
	}

	initial := ga.State{Block: d, Variables: vars}
	initialBits, err := initial.BitLength(cache, opts.Escaper)
	if err != nil {
		return errors.Wrap(err, "computing initial bit length")
	}
	logger.Info("starting evolutionary search", zap.Int("bits_before", initialBits), zap.Int("population", opts.PopulationSize))

	result, err := ga.Run(src, cache, opts, initial, flags.generations)
	if err != nil {
		return errors.Wrap(err, "evolutionary search")
	}

	finalBits, err := result.Best.BitLength(cache, opts.Escaper)
	if err != nil {
		return errors.Wrap(err, "computing final bit length")
	}
	logger.Info("evolutionary search complete",
		zap.Int("bits_before", initialBits),
		zap.Int("bits_after", finalBits),
		zap.Int("generations", result.Generations))

	outBlock, err := os.Create(flags.outBlock)
	if err != nil {
		return errors.Wrap(err, "creating output block dump")
	}
	writeErr := dump.WriteBlock(outBlock, result.Best.Block)
	outBlock.Close()
	if writeErr != nil {
		return errors.Wrap(writeErr, "writing output block dump")
	}

	if flags.outVariables != "" {
		outVars, err := os.Create(flags.outVariables)
		if err != nil {
			return errors.Wrap(err, "creating output variable dump")
		}
		writeErr := dump.WriteVariables(outVars, result.Best.Variables, conflict)
		outVars.Close()
		if writeErr != nil {
			return errors.Wrap(writeErr, "writing output variable dump")
		}
	}
	return nil
}
