package verify

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileResult is the per-file outcome of a batch sweep. A failed file never
// aborts the sweep; the error travels in the result instead.
type FileResult struct {
	Path   string
	Report Report
	Err    error
}

var sourceExtensions = map[string]bool{
	".hpp": true,
	".h":   true,
	".cpp": true,
	".cc":  true,
}

// FindCPOFiles walks root and returns every source file that mentions the
// CRTP base, i.e. plausibly contains CPO definitions.
func FindCPOFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !sourceExtensions[filepath.Ext(path)] {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			// Unreadable files are skipped, consistent with per-file error
			// isolation: the sweep must not die on one bad file.
			return nil
		}
		if strings.Contains(string(data), "cpo_base<") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Sweep verifies every CPO-bearing file under root, strictly sequentially,
// accumulating one result per file.
func Sweep(root string) ([]FileResult, error) {
	files, err := FindCPOFiles(root)
	if err != nil {
		return nil, err
	}
	results := make([]FileResult, 0, len(files))
	for _, path := range files {
		report, err := VerifyFile(path)
		results = append(results, FileResult{Path: path, Report: report, Err: err})
	}
	return results, nil
}
