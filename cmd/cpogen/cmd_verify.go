package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sandialabs/TInCuP/internal/verify"
)

var (
	verifyRoot  string
	verifyWatch bool
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	defectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	pathStyle   = lipgloss.NewStyle().Bold(true)
)

var verifyCmd = &cobra.Command{
	Use:   "verify [file...]",
	Short: "Verify CPO definitions for structural defects",
	Long: `Verify audits C++ source for customization point objects and checks each
discovered construct against the structural conventions: tag macro, the
positive/negative requires pair, the alias triple, noexcept propagation,
forwarding correctness, constraint-family consistency, and the variadic
flag.

With --root the whole tree is swept for CPO-bearing files; with --watch
the given files are re-verified on every save.`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyRoot, "root", "", "Sweep this directory tree instead of naming files")
	verifyCmd.Flags().BoolVar(&verifyWatch, "watch", false, "Re-verify files as they change")
}

func runVerify(cmd *cobra.Command, args []string) error {
	if verifyRoot == "" && len(args) == 0 {
		return fmt.Errorf("name files to verify or pass --root")
	}

	if verifyRoot != "" {
		results, err := verify.Sweep(verifyRoot)
		if err != nil {
			return err
		}
		return printResults(results)
	}

	results := make([]verify.FileResult, 0, len(args))
	for _, path := range args {
		report, err := verify.VerifyFile(path)
		results = append(results, verify.FileResult{Path: path, Report: report, Err: err})
	}
	if err := printResults(results); err != nil && !verifyWatch {
		return err
	}

	if verifyWatch {
		return watchFiles(args)
	}
	return nil
}

// printResults renders per-file reports and returns an error iff any defect
// or file error was seen, which drives the nonzero exit status.
func printResults(results []verify.FileResult) error {
	totalDefects := 0
	failedFiles := 0
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("%s %s: %v\n", failStyle.Render("ERROR"), pathStyle.Render(r.Path), r.Err)
			failedFiles++
			continue
		}
		defects := applyDeviations(r.Report.Defects)
		switch {
		case len(defects) > 0:
			fmt.Printf("%s %s (%d construct(s), %d defect(s))\n",
				failStyle.Render("FAIL"), pathStyle.Render(r.Path), r.Report.Constructs, len(defects))
			for _, d := range defects {
				fmt.Printf("  %s %s\n", defectStyle.Render("-"), d)
			}
			totalDefects += len(defects)
		case r.Report.Constructs == 0:
			fmt.Printf("%s %s (no CPO constructs found)\n", defectStyle.Render("SKIP"), pathStyle.Render(r.Path))
			if cfg.Verification.Strict {
				failedFiles++
			}
		default:
			fmt.Printf("%s %s (%d construct(s))\n", okStyle.Render("OK"), pathStyle.Render(r.Path), r.Report.Constructs)
		}
	}

	if totalDefects > 0 || failedFiles > 0 {
		return fmt.Errorf("%d defect(s), %d file(s) failed", totalDefects, failedFiles)
	}
	return nil
}

// applyDeviations drops defects matching a configured allowed deviation.
func applyDeviations(defects []string) []string {
	if len(cfg.Verification.AllowedDeviations) == 0 {
		return defects
	}
	kept := defects[:0:0]
	for _, d := range defects {
		allowed := false
		for _, dev := range cfg.Verification.AllowedDeviations {
			if dev != "" && strings.Contains(d, dev) {
				allowed = true
				break
			}
		}
		if !allowed {
			kept = append(kept, d)
		}
	}
	return kept
}

// watchFiles blocks, re-verifying each file on save until interrupted.
func watchFiles(files []string) error {
	w, err := verify.NewWatcher(files, logger, func(path string) {
		report, err := verify.VerifyFile(path)
		_ = printResults([]verify.FileResult{{Path: path, Report: report, Err: err}})
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	w.Start(ctx)
	logger.Info("watching for changes", zap.Strings("files", files))
	fmt.Println("Watching for changes (Ctrl-C to stop)...")
	<-ctx.Done()
	w.Stop()
	return nil
}
