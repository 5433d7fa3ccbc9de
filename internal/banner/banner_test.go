package banner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const customBanner = "Example Project\n\nCopyright (c) Example Org\n"

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckFileCpp(t *testing.T) {
	c := NewChecker(customBanner, nil)
	dir := t.TempDir()

	good := write(t, dir, "good.hpp", "/**\n"+strings.TrimSpace(customBanner)+"\n*/\n\nint x;\n")
	bad := write(t, dir, "bad.hpp", "int x;\n")

	if ok, err := c.CheckFile(good); err != nil || !ok {
		t.Errorf("good.hpp: ok=%v err=%v", ok, err)
	}
	if ok, err := c.CheckFile(bad); err != nil || ok {
		t.Errorf("bad.hpp: ok=%v err=%v", ok, err)
	}
}

func TestCheckFilePythonShebang(t *testing.T) {
	c := NewChecker(customBanner, nil)
	dir := t.TempDir()

	content := "#!/usr/bin/env python3\n\n" + c.commentedBanner() + "\n\nprint('hi')\n"
	good := write(t, dir, "tool.py", content)
	if ok, err := c.CheckFile(good); err != nil || !ok {
		t.Errorf("tool.py: ok=%v err=%v", ok, err)
	}
}

func TestCheckFileOutsideScopePasses(t *testing.T) {
	c := NewChecker(customBanner, nil)
	dir := t.TempDir()
	readme := write(t, dir, "README.md", "no banner needed\n")
	if ok, err := c.CheckFile(readme); err != nil || !ok {
		t.Errorf("README.md: ok=%v err=%v", ok, err)
	}
}

func TestScanDirectoryHonorsIgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "src/main.cpp", "int main() {}\n")
	write(t, dir, "build/gen.cpp", "int gen() {}\n")

	c := NewChecker(customBanner, []string{"build/"})
	result, err := c.ScanDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.NonCompliant) != 1 {
		t.Fatalf("non-compliant = %v, want only src/main.cpp", result.NonCompliant)
	}
	if filepath.Base(result.NonCompliant[0]) != "main.cpp" {
		t.Errorf("unexpected non-compliant file %s", result.NonCompliant[0])
	}
}

func TestFixFile(t *testing.T) {
	c := NewChecker(customBanner, nil)
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"code.hpp", "int x;\n"},
		{"tool.py", "#!/usr/bin/env python3\nprint('hi')\n"},
		{"CMakeLists.txt", "project(example)\n"},
	}
	for _, tt := range tests {
		path := write(t, dir, tt.name, tt.content)
		changed, err := c.FixFile(path)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if !changed {
			t.Errorf("%s: FixFile reported no change", tt.name)
		}
		if ok, err := c.CheckFile(path); err != nil || !ok {
			t.Errorf("%s: not compliant after fix (ok=%v err=%v)", tt.name, ok, err)
		}
	}

	// Fixing a compliant file is a no-op.
	fixed := filepath.Join(dir, "code.hpp")
	changed, err := c.FixFile(fixed)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("FixFile modified an already compliant file")
	}
}

func TestFixFilePreservesShebang(t *testing.T) {
	c := NewChecker(customBanner, nil)
	dir := t.TempDir()
	path := write(t, dir, "tool.py", "#!/usr/bin/env python3\nprint('hi')\n")

	if _, err := c.FixFile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "#!/usr/bin/env python3\n") {
		t.Errorf("shebang not preserved:\n%s", data)
	}
}

func TestLoadGitignore(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, ".gitignore", "# comment\n\nbuild/\n*.o\n")
	patterns := LoadGitignore(path)
	if len(patterns) != 2 || patterns[0] != "build/" || patterns[1] != "*.o" {
		t.Errorf("patterns = %v", patterns)
	}

	if got := LoadGitignore(filepath.Join(dir, "missing")); got != nil {
		t.Errorf("missing file should yield nil, got %v", got)
	}
}

func TestDefaultBannerUsedWhenEmpty(t *testing.T) {
	c := NewChecker("", nil)
	if !strings.Contains(c.Examples(), "TInCuP") {
		t.Error("default banner text not applied")
	}
}
