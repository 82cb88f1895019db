// Package main provides the vibe-burden command-line tool.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-burden/internal/table"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const configName = ".vibe-burden"

// usageError marks errors caused by invalid command-line usage.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// minArgs is cobra.MinimumNArgs reporting a usage error.
func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usagef("%s requires at least %d argument(s), received %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("%s accepts %d argument(s), received %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

// maxArgs is cobra.MaximumNArgs reporting a usage error.
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return usagef("%s accepts at most %d argument(s), received %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	viper.Reset()
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		return reportError(stderr, err)
	}
	return ExitSuccess
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		cfgFile string
		verbose bool
	)

	root := &cobra.Command{
		Use:   "vibe-burden",
		Short: "Aggregate annotated variants into units for gene-based burden tests",
		Long: `vibe-burden groups annotated variants into aggregate units (genes or merged
transcript regions), filters them by deleteriousness score and consequence,
and writes the units for a rare-variant burden test.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfgFile); err != nil {
				return err
			}
			if err := bindFlags(cmd); err != nil {
				return err
			}
			logger = newLogger(stderr, verbose || viper.GetBool("verbose"))
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/"+configName+".yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages to stderr")

	root.AddCommand(
		newAggregateCmd(),
		newRegionsCmd(),
		newImportCmd(),
		newDownloadCmd(),
		newSummaryCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// bindFlags binds the flags a command declares to viper keys of the same
// name. Cobra's help flag is not a setting.
func bindFlags(cmd *cobra.Command) error {
	var err error
	cmd.LocalNonPersistentFlags().VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Name == "help" {
			return
		}
		if berr := viper.BindPFlag(f.Name, f); berr != nil {
			err = fmt.Errorf("bind flag %s: %w", f.Name, berr)
		}
	})
	return err
}

// initConfig loads the config file and environment. A missing default
// config file is not an error.
func initConfig(cfgFile string) error {
	viper.SetEnvPrefix("VIBE_BURDEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// logger is the command logger, set before any command runs.
var logger = zap.NewNop()

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}

// reportError prints err with a hint where one applies and returns the exit code.
func reportError(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %v\n", err)

	var (
		usage    *usageError
		mi       *table.MalformedInputError
		mismatch *table.SchemaMismatchError
	)
	switch {
	case errors.As(err, &usage), strings.HasPrefix(err.Error(), "unknown command"):
		fmt.Fprintf(w, "Hint: Run 'vibe-burden --help' for usage\n")
		return ExitUsage
	case errors.As(err, &mismatch):
		fmt.Fprintf(w, "Hint: All input tables must have the same header as %s\n", filepath.Base(mismatch.Path))
	case errors.As(err, &mi) && mi.Column != "" && mi.Line == 0 && mi.Group == "":
		fmt.Fprintf(w, "Hint: Set the column name with a flag or in ~/%s.yaml\n", configName)
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintf(w, "Hint: Check that the file path is correct\n")
	}
	return ExitError
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vibe-burden version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// openOutput returns stdout for "" or "-", otherwise creates path.
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
