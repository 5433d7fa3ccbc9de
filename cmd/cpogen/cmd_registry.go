package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sandialabs/TInCuP/internal/registry"
)

var (
	registryRoot string
	registryOut  string
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Scan headers for CPO tags and write the registry",
	Long: `Registry walks a header tree for CPO tag declarations and writes
cpo_registry.json and cpo_registry.md into the output directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := registry.Scan(registryRoot)
		if err != nil {
			return err
		}
		logger.Debug("scanned registry", zap.Int("entries", len(entries)))
		if err := registry.WriteOutputs(entries, registryOut); err != nil {
			return err
		}
		fmt.Printf("Wrote %d registry entries to %s\n", len(entries), registryOut)
		return nil
	},
}

func init() {
	registryCmd.Flags().StringVar(&registryRoot, "root", "include", "Header tree to scan")
	registryCmd.Flags().StringVar(&registryOut, "out", "docs", "Output directory for registry files")
}
