package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sandialabs/TInCuP/internal/banner"
)

var (
	bannerRoot     string
	bannerFix      bool
	bannerFile     string
	bannerExamples bool
)

var bannerCmd = &cobra.Command{
	Use:   "banner",
	Short: "Check or fix copyright banners",
	Long: `Banner scans the tree for C++, Python, and CMake files missing the
required copyright banner, honoring .gitignore patterns. With --fix the
banner is inserted in place.`,
	Args: cobra.NoArgs,
	RunE: runBanner,
}

func init() {
	bannerCmd.Flags().StringVar(&bannerRoot, "root", ".", "Directory tree to scan")
	bannerCmd.Flags().BoolVar(&bannerFix, "fix", false, "Insert the banner where missing")
	bannerCmd.Flags().StringVar(&bannerFile, "banner-file", "", "File holding banner text overriding the default")
	bannerCmd.Flags().BoolVar(&bannerExamples, "examples", false, "Print the expected banner formats and exit")
}

func runBanner(cmd *cobra.Command, args []string) error {
	text := ""
	if bannerFile != "" {
		data, err := os.ReadFile(bannerFile)
		if err != nil {
			return fmt.Errorf("reading banner file: %w", err)
		}
		text = string(data)
	}

	patterns := banner.LoadGitignore(filepath.Join(bannerRoot, ".gitignore"))
	checker := banner.NewChecker(text, patterns)

	if bannerExamples {
		fmt.Print(checker.Examples())
		return nil
	}

	result, err := checker.ScanDirectory(bannerRoot)
	if err != nil {
		return err
	}
	logger.Debug("banner scan finished",
		zap.Int("compliant", len(result.Compliant)),
		zap.Int("non_compliant", len(result.NonCompliant)))

	if len(result.NonCompliant) == 0 {
		fmt.Printf("All %d checked files carry the banner\n", len(result.Compliant))
		return nil
	}

	if bannerFix {
		fixed := 0
		for _, p := range result.NonCompliant {
			changed, err := checker.FixFile(p)
			if err != nil {
				return fmt.Errorf("fixing %s: %w", p, err)
			}
			if changed {
				fmt.Printf("Fixed %s\n", p)
				fixed++
			}
		}
		fmt.Printf("Inserted banner into %d file(s)\n", fixed)
		return nil
	}

	fmt.Printf("%d file(s) missing the banner:\n", len(result.NonCompliant))
	for _, p := range result.NonCompliant {
		fmt.Printf("  %s\n", p)
	}
	return fmt.Errorf("%d file(s) missing banner", len(result.NonCompliant))
}
