// Package registry scans header trees for CPO tag declarations and emits a
// registry in JSON and Markdown for documentation tooling.
package registry

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Entry is one discovered tag declaration.
type Entry struct {
	Name      string `json:"name"`
	Qualified string `json:"qualified"`
	Header    string `json:"header"`
	Struct    string `json:"struct,omitempty"`
	Line      int    `json:"line"`
}

var (
	tagRe    = regexp.MustCompile(`\b(TINCUP_CPO_TAG|CPO_TAG)\s*\(\s*"([^"]+)"\s*\)`)
	structRe = regexp.MustCompile(`\bstruct\s+([a-zA-Z_][a-zA-Z0-9_]*)\b`)
)

var headerExtensions = map[string]bool{
	".hpp": true,
	".hh":  true,
	".h":   true,
}

// ScanFile extracts tag entries from one file, associating each with the
// nearest preceding struct declaration.
func ScanFile(path string) []Entry {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var entries []Entry
	structName := ""
	for i, line := range strings.Split(string(data), "\n") {
		if s := structRe.FindStringSubmatch(line); s != nil {
			structName = s[1]
		}
		if m := tagRe.FindStringSubmatch(line); m != nil {
			entries = append(entries, Entry{
				Name:      m[2],
				Qualified: "tincup::" + m[2],
				Header:    path,
				Struct:    structName,
				Line:      i + 1,
			})
		}
	}
	return entries
}

// Scan walks root for header files and returns the deduplicated, sorted
// entry list.
func Scan(root string) ([]Entry, error) {
	var all []Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !headerExtensions[filepath.Ext(path)] {
			return nil
		}
		all = append(all, ScanFile(path)...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	uniq := make([]Entry, 0, len(all))
	for _, e := range all {
		key := fmt.Sprintf("%s\x00%s\x00%d", e.Name, e.Header, e.Line)
		if seen[key] {
			continue
		}
		seen[key] = true
		uniq = append(uniq, e)
	}
	sort.Slice(uniq, func(i, j int) bool {
		if uniq[i].Name != uniq[j].Name {
			return uniq[i].Name < uniq[j].Name
		}
		if uniq[i].Header != uniq[j].Header {
			return uniq[i].Header < uniq[j].Header
		}
		return uniq[i].Line < uniq[j].Line
	})
	return uniq, nil
}

// WriteOutputs emits cpo_registry.json and cpo_registry.md into outDir.
func WriteOutputs(entries []Entry, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "cpo_registry.json"), append(data, '\n'), 0o644); err != nil {
		return err
	}

	var md strings.Builder
	md.WriteString("# CPO Registry\n\n")
	fmt.Fprintf(&md, "Total: %d\n\n", len(entries))
	for _, e := range entries {
		structNote := ""
		if e.Struct != "" {
			structNote = fmt.Sprintf(" (struct %s)", e.Struct)
		}
		fmt.Fprintf(&md, "- `%s`: `%s` - %s:%d%s\n", e.Name, e.Qualified, e.Header, e.Line, structNote)
	}
	return os.WriteFile(filepath.Join(outDir, "cpo_registry.md"), []byte(md.String()), 0o644)
}

// ResolveName maps a registry key (tag name or functor struct name) to the
// bare construct name, stripping the _ftor suffix. Falls back to the key
// itself when the registry has no match.
func ResolveName(entries []Entry, key string) string {
	for _, e := range entries {
		if key == e.Struct || key == e.Name {
			if e.Struct != "" {
				return strings.TrimSuffix(e.Struct, "_ftor")
			}
			return e.Name
		}
	}
	return strings.TrimSuffix(key, "_ftor")
}
