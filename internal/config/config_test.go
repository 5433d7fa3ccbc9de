package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and PWD for the test and restores both on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Style.Indent != 2 || cfg.Style.BraceStyle != "allman" || cfg.Style.Namespace != "cpo" {
		t.Errorf("unexpected defaults: %+v", cfg.Style)
	}
	if cfg.Verification.Strict {
		t.Error("strict verification must default to off")
	}
}

func TestLoadLayering(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	t.Setenv("HOME", home)
	chdir(t, project)

	userCfg := filepath.Join(home, UserConfigPath)
	if err := os.MkdirAll(filepath.Dir(userCfg), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(userCfg, []byte("style:\n  indent: 4\n  namespace: mylib\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// The project file overrides the user file where both set a key.
	if err := os.WriteFile(filepath.Join(project, ProjectConfigName),
		[]byte("style:\n  indent: 8\nverification:\n  strict: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Style.Indent != 8 {
		t.Errorf("Indent = %d, want project override 8", cfg.Style.Indent)
	}
	if cfg.Style.Namespace != "mylib" {
		t.Errorf("Namespace = %q, want user value mylib", cfg.Style.Namespace)
	}
	if cfg.Style.BraceStyle != "allman" {
		t.Errorf("BraceStyle = %q, want untouched default", cfg.Style.BraceStyle)
	}
	if !cfg.Verification.Strict {
		t.Error("Strict = false, want project value true")
	}
}

func TestLoadMissingFilesKeepDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("cfg mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ProjectConfigName), []byte(":\n:\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
