package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daanv2/deflopt/internal/block"
	"github.com/daanv2/deflopt/internal/config"
	"github.com/daanv2/deflopt/internal/coordinator"
	"github.com/daanv2/deflopt/internal/dump"
	"github.com/daanv2/deflopt/internal/embed"
	"github.com/daanv2/deflopt/internal/rle"
	"github.com/daanv2/deflopt/internal/rng"
)

type optimizeFlags struct {
	in           string
	out          string
	numIteration int
	seed         uint64
}

func newOptimizeCmd(root *rootFlags) *cobra.Command {
	flags := &optimizeFlags{}
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Run the coordinator (components E-I) over a dynamic block dump",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(root, flags, cfg)
		},
	}

	cmd.Flags().StringVar(&flags.in, "in", "", "input block dump path (required)")
	cmd.Flags().StringVar(&flags.out, "out", "", "output block dump path (required)")
	cmd.Flags().IntVar(&flags.numIteration, "num-iteration", cfg.NumIteration, "coordinator round cap")
	cmd.Flags().Uint64Var(&flags.seed, "seed", cfg.Seed, "perturbation RNG seed")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")

	return cmd
}

func runOptimize(root *rootFlags, flags *optimizeFlags, cfg *config.Config) error {
	logger, err := newLogger(root.logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	in, err := os.Open(flags.in)
	if err != nil {
		return errors.Wrap(err, "opening input dump")
	}
	defer in.Close()

	raw, err := dump.ReadBlock(in)
	if err != nil {
		return errors.Wrap(err, "reading block dump")
	}
	d, ok := raw.(*block.Dynamic)
	if !ok {
		return errors.New("optimize: only dynamic blocks are supported")
	}

	cache := rle.NewCache()
	src := rng.New(flags.seed)

	opts := coordinator.DefaultOptions()
	opts.NumIteration = flags.numIteration

	before, err := d.BitLength(cache)
	if err != nil {
		return errors.Wrap(err, "computing initial bit length")
	}
	logger.Info("starting optimization", zap.Int("bits_before", before))

	if err := coordinator.Optimize(d, nil, cache, src, opts); err != nil {
		return errors.Wrap(err, "coordinator")
	}

	after, err := d.BitLength(cache)
	if err != nil {
		return errors.Wrap(err, "computing final bit length")
	}
	logFields := []zap.Field{zap.Int("bits_before", before), zap.Int("bits_after", after)}
	if root.embedAware {
		embedded, err := d.BitLengthWithEmbedOverhead(cache, embed.PythonEscaper{})
		if err != nil {
			return errors.Wrap(err, "computing embed-aware bit length")
		}
		logFields = append(logFields, zap.Int("bits_after_embed", embedded))
	}
	logger.Info("optimization complete", logFields...)

	out, err := os.Create(flags.out)
	if err != nil {
		return errors.Wrap(err, "creating output dump")
	}
	defer out.Close()
	if err := dump.WriteBlock(out, d); err != nil {
		return errors.Wrap(err, "writing output dump")
	}
	return nil
}
