// Package banner checks that source files begin with the required copyright
// banner and can insert it where missing. C++ files use a block comment
// form; Python and CMake files use '#'-commented lines, shebang-aware.
package banner

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultBanner is the embedded banner text used when no override is given.
const DefaultBanner = "TInCuP - A library for generating and validating C++ customization point objects that use `tag_invoke`\n\n" +
	"Copyright (c) National Technology & Engineering Solutions of Sandia, \n" +
	"LLC (NTESS). Under the terms of Contract DE-NA0003525 with NTESS, the U.S. \n" +
	"Government retains certain rights in this software.\n\n" +
	"Questions? Contact Greg von Winckel (gvonwin@sandia.gov)\n"

var (
	cppExtensions    = map[string]bool{".hpp": true, ".cpp": true}
	pythonExtensions = map[string]bool{".py": true}
	cmakeExtensions  = map[string]bool{".cmake": true}
)

// Checker scans files for the banner.
type Checker struct {
	bannerText string
	cppRe      *regexp.Regexp
	ignore     []string
}

// NewChecker builds a Checker. bannerText overrides the default when
// non-empty; gitignorePatterns filters scanned files.
func NewChecker(bannerText string, gitignorePatterns []string) *Checker {
	text := strings.TrimSpace(bannerText)
	if text == "" {
		text = strings.TrimSpace(DefaultBanner)
	}
	return &Checker{
		bannerText: text,
		cppRe:      regexp.MustCompile(`(?s)/\*\*\s*` + regexp.QuoteMeta(text) + `\s*\*/`),
		ignore:     gitignorePatterns,
	}
}

// LoadGitignore reads gitignore-style patterns from the given file. A
// missing file yields no patterns.
func LoadGitignore(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns
}

// commentedBanner renders the banner with a leading '#' per line.
func (c *Checker) commentedBanner() string {
	lines := strings.Split(c.bannerText, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			out = append(out, "#")
		} else {
			out = append(out, strings.TrimRight("# "+line, " "))
		}
	}
	return strings.Join(out, "\n")
}

func shouldCheck(p string) bool {
	ext := filepath.Ext(p)
	return cppExtensions[ext] || pythonExtensions[ext] || cmakeExtensions[ext] ||
		filepath.Base(p) == "CMakeLists.txt"
}

func (c *Checker) ignored(rel string) bool {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for _, pattern := range c.ignore {
		if strings.HasSuffix(pattern, "/") {
			dirPattern := strings.TrimSuffix(pattern, "/")
			for _, part := range parts {
				if ok, _ := path.Match(dirPattern, part); ok {
					return true
				}
			}
			continue
		}
		if ok, _ := path.Match(pattern, filepath.ToSlash(rel)); ok {
			return true
		}
		if ok, _ := path.Match(pattern, filepath.Base(rel)); ok {
			return true
		}
		for _, part := range parts {
			if ok, _ := path.Match(pattern, part); ok {
				return true
			}
		}
	}
	return false
}

// CheckFile reports whether the file carries the banner. Files outside the
// checked set pass trivially.
func (c *Checker) CheckFile(p string) (bool, error) {
	ext := filepath.Ext(p)
	switch {
	case cppExtensions[ext]:
		data, err := os.ReadFile(p)
		if err != nil {
			return false, err
		}
		return c.cppRe.Match(data), nil
	case pythonExtensions[ext], cmakeExtensions[ext], filepath.Base(p) == "CMakeLists.txt":
		data, err := os.ReadFile(p)
		if err != nil {
			return false, err
		}
		content := string(data)
		if ext == ".py" {
			content = skipShebang(content)
		}
		return strings.HasPrefix(content, c.commentedBanner()), nil
	}
	return true, nil
}

// skipShebang drops a leading shebang line and any blank lines right after.
func skipShebang(content string) string {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "#!") {
		return content
	}
	i := 1
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	return strings.Join(lines[i:], "\n")
}

// ScanResult partitions scanned files by compliance.
type ScanResult struct {
	Compliant    []string
	NonCompliant []string
}

// ScanDirectory recursively checks every eligible file under root.
func (c *Checker) ScanDirectory(root string) (ScanResult, error) {
	var result ScanResult
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !shouldCheck(p) {
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr == nil && c.ignored(rel) {
			return nil
		}
		ok, checkErr := c.CheckFile(p)
		if checkErr != nil {
			return fmt.Errorf("checking %s: %w", p, checkErr)
		}
		if ok {
			result.Compliant = append(result.Compliant, p)
		} else {
			result.NonCompliant = append(result.NonCompliant, p)
		}
		return nil
	})
	return result, err
}

// FixFile inserts the banner when missing. Returns true when the file was
// modified.
func (c *Checker) FixFile(p string) (bool, error) {
	ok, err := c.CheckFile(p)
	if err != nil || ok {
		return false, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return false, err
	}
	text := string(data)

	ext := filepath.Ext(p)
	var fixed string
	switch {
	case cppExtensions[ext]:
		fixed = "/**\n" + c.bannerText + "\n*/\n\n" + text
	case pythonExtensions[ext], cmakeExtensions[ext], filepath.Base(p) == "CMakeLists.txt":
		block := c.commentedBanner() + "\n\n"
		if ext == ".py" && strings.HasPrefix(text, "#!") {
			if idx := strings.Index(text, "\n"); idx >= 0 {
				fixed = text[:idx+1] + block + text[idx+1:]
			} else {
				fixed = text + "\n" + block
			}
		} else {
			fixed = block + text
		}
	default:
		return false, nil
	}

	if err := os.WriteFile(p, []byte(fixed), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// Examples renders the expected banner formats for each file family.
func (c *Checker) Examples() string {
	var sb strings.Builder
	sb.WriteString("Expected banner formats:\n\nC++ files (.hpp, .cpp):\n")
	sb.WriteString("/**\n" + c.bannerText + "\n*/\n")
	sb.WriteString("\nPython (.py), CMake (.cmake), and CMakeLists.txt files:\n")
	sb.WriteString(c.commentedBanner() + "\n")
	return sb.String()
}
