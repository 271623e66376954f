package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "BATCHRUN"

var (
	cfgFile string
)

// Execute runs the root command with the provided context
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "batchrun",
		Short: "batchrun - run a registered function over many inputs in parallel",
		Long: `batchrun executes a registered function once per keyword-argument set,
in fixed-size batches on a pool of threads or worker processes.

A failing task aborts the run: pending tasks are cancelled and the
original error is reported.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "defaults file (default is $HOME/.batchrun.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (table, json, jsonl, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output with debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))
	_ = viper.BindPFlag("log-json", rootCmd.PersistentFlags().Lookup("log-json"))

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newFuncsCmd())
	rootCmd.AddCommand(newWorkerCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// initConfig wires environment overrides and logging. The defaults file
// itself is read by the commands that need it.
func initConfig(cmd *cobra.Command) error {
	// BATCHRUN_VERBOSE=true and friends
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	setupLogging(cmd.ErrOrStderr())
	return nil
}

// setupLogging configures structured logging with slog
func setupLogging(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	logLevel := slog.LevelInfo
	if viper.GetBool("verbose") {
		logLevel = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if viper.GetBool("log-json") || viper.GetBool("no-color") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))

	if viper.GetBool("verbose") {
		slog.Debug("verbose logging enabled")
	}
}
