package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daanv2/deflopt/internal/block"
	"github.com/daanv2/deflopt/internal/coordinator"
	"github.com/daanv2/deflopt/internal/dump"
	"github.com/daanv2/deflopt/internal/rle"
	"github.com/daanv2/deflopt/internal/rng"
)

type splitFlags struct {
	in         string
	outFirst   string
	outSecond  string
	maxAttempt int
}

func newSplitCmd(root *rootFlags) *cobra.Command {
	flags := &splitFlags{}

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Search split points for the two-block optimizer (component 4.M)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(root, flags)
		},
	}

	cmd.Flags().StringVar(&flags.in, "in", "", "input block dump path (required)")
	cmd.Flags().StringVar(&flags.outFirst, "out-first", "", "first-half output dump path, or the whole block when no split wins (required)")
	cmd.Flags().StringVar(&flags.outSecond, "out-second", "", "second-half output dump path (required)")
	cmd.Flags().IntVar(&flags.maxAttempt, "max-attempts", 0, "cap on split points tried (0 = try every position)")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out-first")
	cmd.MarkFlagRequired("out-second")

	return cmd
}

func runSplit(root *rootFlags, flags *splitFlags) error {
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
		return errors.New("split: only dynamic blocks are supported")
	}

	text, err := d.Reconstruct(nil)
	if err != nil {
		return errors.Wrap(err, "reconstructing text")
	}

	cache := rle.NewCache()
	src := rng.New(0)
	opts := coordinator.DefaultOptions()

	if err := coordinator.Optimize(d, nil, cache, src, opts); err != nil {
		return errors.Wrap(err, "optimizing unsplit block")
	}
	originalBits, err := d.BitLength(cache)
	if err != nil {
		return errors.Wrap(err, "computing unsplit bit length")
	}

	bestBits := originalBits
	var bestFirst, bestSecond *block.Dynamic

	step := 1
	positions := len(text) - 1
	if flags.maxAttempt > 0 && positions > flags.maxAttempt {
		step = (positions + flags.maxAttempt - 1) / flags.maxAttempt
		if step < 1 {
			step = 1
		}
	}

	for pos := 1; pos < len(text); pos += step {
		first, second, err := d.SplitAtPosition(pos, cache)
		if err != nil {
			continue
		}
		if err := coordinator.Optimize(first, nil, cache, src, opts); err != nil {
			continue
		}
		firstText, err := first.Reconstruct(nil)
		if err != nil {
			continue
		}
		if err := coordinator.Optimize(second, firstText, cache, src, opts); err != nil {
			continue
		}
		firstBits, err := first.BitLength(cache)
		if err != nil {
			continue
		}
		secondBits, err := second.BitLength(cache)
		if err != nil {
			continue
		}
		total := firstBits + secondBits
		if total < bestBits {
			bestBits = total
			bestFirst, bestSecond = first, second
			logger.Debug("improved split", zap.Int("position", pos), zap.Int("total_bits", total))
		}
	}

	if bestFirst == nil {
		logger.Info("no split improved on the single block", zap.Int("bits", originalBits))
		outFirst, err := os.Create(flags.outFirst)
		if err != nil {
			return errors.Wrap(err, "creating first output dump")
		}
		defer outFirst.Close()
		return errors.Wrap(dump.WriteBlock(outFirst, d), "writing first output dump")
	}
	logger.Info("split search complete", zap.Int("bits_before", originalBits), zap.Int("bits_after", bestBits))

	outFirst, err := os.Create(flags.outFirst)
	if err != nil {
		return errors.Wrap(err, "creating first output dump")
	}
	defer outFirst.Close()
	if err := dump.WriteBlock(outFirst, bestFirst); err != nil {
		return errors.Wrap(err, "writing first output dump")
	}

	outSecond, err := os.Create(flags.outSecond)
	if err != nil {
		return errors.Wrap(err, "creating second output dump")
	}
	defer outSecond.Close()
	return errors.Wrap(dump.WriteBlock(outSecond, bestSecond), "writing second output dump")
}
