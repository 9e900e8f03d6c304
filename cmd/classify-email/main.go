package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/di"
)

func main() {
	flags := &di.CLIFlags{}

	rootCmd := &cobra.Command{
		Use:   "classify-email",
		Short: "Classify a raw email or an mbox archive and print the results as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.InputFile != "" && flags.Mbox != "" {
				return fmt.Errorf("--file and --mbox are mutually exclusive")
			}

			container, err := di.BuildCLIContainer(flags)
			if err != nil {
				return fmt.Errorf("failed to build dependency container: %w", err)
			}

			return container.Invoke(func(
				logger *zap.Logger,
				service *core.ClassificationService,
				resources di.Resources,
			) error {
				defer logger.Sync()
				defer resources.Close()

				if !service.Available() {
					return errors.New("no model client configured, set the provider API key")
				}
				return run(cmd.Context(), flags, service, logger, cmd.OutOrStdout())
			})
		},
	}

	rootCmd.Flags().StringVar(&flags.Provider, "provider", "", "LLM provider (openai, gemini, bedrock)")
	rootCmd.Flags().StringVar(&flags.Model, "model", "", "Model name for the selected provider")
	rootCmd.Flags().StringVar(&flags.InputFile, "file", "", "Input email file (stdin if neither --file nor --mbox is given)")
	rootCmd.Flags().StringVar(&flags.Mbox, "mbox", "", "Classify every message of an mbox archive")
	rootCmd.Flags().StringVar(&flags.UserID, "user-id", "cli", "User id recorded with each classification")
	rootCmd.Flags().BoolVar(&flags.Log, "log", false, "Write results to the configured classification store")
	rootCmd.Flags().BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	rootCmd.Flags().BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	rootCmd.Flags().StringVar(&flags.ConfigFile, "config", "", "Path to config file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, flags *di.CLIFlags, service *core.ClassificationService, logger *zap.Logger, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c := newClassifyRunner(service, logger, flags.UserID, out)

	if flags.Mbox != "" {
		f, err := os.Open(flags.Mbox)
		if err != nil {
			return fmt.Errorf("failed to open mbox file: %w", err)
		}
		defer f.Close()
		logger.Info("Reading messages from mbox", zap.String("file", flags.Mbox))
		return c.classifyMbox(ctx, f)
	}

	var in io.Reader = os.Stdin
	if flags.InputFile != "" {
		f, err := os.Open(flags.InputFile)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		in = f
		logger.Info("Reading email from file", zap.String("file", flags.InputFile))
	} else {
		logger.Info("Reading email from stdin")
	}
	return c.classifyMessage(ctx, in)
}
