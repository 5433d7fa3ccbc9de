package render

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sandialabs/TInCuP/internal/compiler"
)

// StubSignature builds the tag_invoke signature matching the construct.
func StubSignature(ctx *compiler.Context) string {
	sig := fmt.Sprintf("constexpr auto tag_invoke(%s_ftor, %s)", ctx.Name, ctx.ArgPairs)
	if ctx.HasGenerics {
		sig = fmt.Sprintf("template<%s>\n%s", ctx.GenericDecls, sig)
	}
	return sig
}

// TagInvokeStub emits a declaration-only tag_invoke stub. When guard is
// non-empty a definition wrapped in #ifdef is appended; for non-void returns
// that definition intentionally fails to compile so it gets replaced.
func TagInvokeStub(ctx *compiler.Context, guard string) string {
	sig := StubSignature(ctx)
	stub := sig + ";\n"
	if guard == "" {
		return stub
	}

	returnsVoid := ctx.Pattern != nil && ctx.Pattern.ReturnConstraint == "returns_void_c"
	body := " {\n    // TODO: implement\n}"
	if !returnsVoid {
		body = " {\n" +
			"#  if defined(__clang__) || defined(__GNUC__) || defined(_MSC_VER)\n" +
			"    static_assert(true == false, \"Provide implementation or disable guard\");\n" +
			"#  endif\n" +
			"}"
	}
	return stub + fmt.Sprintf("\n#ifdef %s\n%s%s\n#endif\n", guard, sig, body)
}

// Wrap prepends #pragma once and optionally the library include, then wraps
// the code in a namespace.
func Wrap(code, namespace string, withInclude bool) string {
	lines := []string{"#pragma once"}
	if withInclude {
		lines = append(lines, "#include <tincup/tincup.hpp>")
	}
	lines = append(lines, "")
	if namespace != "" {
		lines = append(lines,
			"namespace "+namespace+" {",
			"",
			code,
			"",
			"} // namespace "+namespace)
	} else {
		lines = append(lines, code)
	}
	return strings.Join(lines, "\n")
}

// Clean strips the shorthand markers that are not valid C++. The '$' and
// quote characters only ever exist to drive parsing.
func Clean(code string) string {
	code = strings.ReplaceAll(code, "$", "")
	return strings.ReplaceAll(code, "'", "")
}

// Write sends the generated code to a file, creating parent directories, or
// to stdout when path is empty.
func Write(path, code string, appendTo bool) error {
	if path == "" {
		fmt.Println(code)
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if appendTo {
		if existing, err := os.ReadFile(path); err == nil {
			sep := ""
			if len(existing) > 0 && existing[len(existing)-1] != '\n' {
				sep = "\n"
			}
			return os.WriteFile(path, append(existing, []byte(sep+code)...), 0o644)
		}
	}
	return os.WriteFile(path, []byte(code), 0o644)
}

// FormatFile runs clang-format in place. A missing binary is reported as an
// error for the caller to downgrade to a warning.
func FormatFile(path, clangFormat string) error {
	bin := clangFormat
	if bin == "" {
		found, err := exec.LookPath("clang-format")
		if err != nil {
			return fmt.Errorf("clang-format not found in PATH")
		}
		bin = found
	}
	if out, err := exec.Command(bin, "-i", path).CombinedOutput(); err != nil {
		return fmt.Errorf("clang-format failed: %v: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
