// cpogen generates and validates C++ customization point objects that use
// the tag_invoke pattern: boilerplate generation from a compact spec,
// structural verification of generated or hand-written CPOs, a registry
// scanner, and a banner compliance checker.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sandialabs/TInCuP/internal/config"
)

var (
	// Global flags
	verbose bool

	// Logger and layered configuration, built once in PersistentPreRunE.
	logger *zap.Logger
	cfg    config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cpogen",
	Short: "CPO generator and verifier for C++ tag_invoke customization points",
	Long: `cpogen is a source-code generation and verification toolkit for C++
customization point objects (CPOs) built on the tag_invoke pattern.

It parses a compact JSON/YAML specification of a function-like object's
name, arguments, and generic parameters, renders the CPO boilerplate, and
separately re-checks generated or hand-written source for the structural
conventions every CPO must follow.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load()
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(registryCmd)
	rootCmd.AddCommand(bannerCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
