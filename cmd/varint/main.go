package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/varint/internal/config"
	"github.com/vango-dev/varint/internal/errors"
	"github.com/vango-dev/varint/pkg/varint"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if os.Getenv("NO_COLOR") != "" {
		errors.DisableColors()
	}
	if err := execute(newRootCmd()); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs cmd. Failures that are not already an *errors.Error, such
// as cobra's flag and argument errors, are reported as usage errors.
func execute(cmd *cobra.Command) error {
	if err := cmd.Execute(); err != nil {
		return errors.FromError(err, errors.CodeUsage)
	}
	return nil
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "varint",
		Short: "Encode and decode LEB128 varints",
		Long: `varint encodes and decodes integers in the LEB128 variable-length
format: 7 payload bits per byte, high bit set on every byte but the last.
Signed types are ZigZag-mapped first so small magnitudes stay short.

Types: u8 u16 u32 u64 i8 i16 i32 i64

Examples:
  varint encode --type u32 300 1
  varint decode --type u16 --hex ac02
  varint size --type i64 -1
  varint serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to "+config.ConfigFileName+" (default ./"+config.ConfigFileName+" if present)")

	cfg := func() (*config.Config, error) {
		return loadConfig(configPath)
	}

	rootCmd.AddCommand(
		encodeCmd(cfg),
		decodeCmd(cfg),
		sizeCmd(),
		serveCmd(cfg),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig reads path, or ./varint.json when path is empty and the
// file exists, then applies environment overrides.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(".")
		if errors.Code(err) == errors.CodeConfigNotFound {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from the log section.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if strings.EqualFold(cfg.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// parseKindFlag resolves the --type flag.
func parseKindFlag(s string) (varint.Kind, error) {
	kind, err := varint.ParseKind(s)
	if err != nil {
		return 0, errors.FromDecode(err, kind)
	}
	return kind, nil
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
