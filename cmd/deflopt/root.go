package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootFlags struct {
	logLevel   string
	embedAware bool
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	return cfg.Build()
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{logLevel: "info"}

	cmd := &cobra.Command{
		Use:   "deflopt",
		Short: "Optimizing re-encoder for a single compressed DEFLATE block",
	}

	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&flags.embedAware, "embed-aware", false, "account for host-language string-escape overhead when scoring blocks")

	cmd.AddCommand(newOptimizeCmd(flags))
	cmd.AddCommand(newSplitCmd(flags))
	cmd.AddCommand(newGACmd(flags))

	return cmd
}
