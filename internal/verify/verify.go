// Package verify re-derives structural facts from CPO source text and
// cross-checks the invariants every construct must satisfy. It is a
// regex/brace-depth re-parser, not a C++ front end: ambiguous formatting can
// produce false negatives. It only understands the narrow idiom the
// generator emits.
package verify

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Construct is a discovered span between a recognized CPO header and its
// matching closing point. Offsets index into the comment-stripped text.
type Construct struct {
	Name    string
	Content string
	Start   int
	End     int
}

// Report is the outcome of verifying one body of text. An empty defect list
// with Constructs == 0 means nothing was discovered, which callers must
// distinguish from "all constructs clean".
type Report struct {
	Constructs int
	Defects    []string
}

// Clean reports whether constructs were found and none had defects.
func (r Report) Clean() bool {
	return r.Constructs > 0 && len(r.Defects) == 0
}

var (
	lineCommentRe  = regexp.MustCompile(`(?m)//.*$`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)

	// CRTP self-reference header: struct <name>_ftor final : [ns::]cpo_base<<name>_ftor>.
	// RE2 has no backreferences, so both names are captured and compared in code.
	headerRe = regexp.MustCompile(`struct\s+(\w+)_ftor\s+final\s*:\s*(?:[\w:]+::)?cpo_base<(\w+)_ftor>`)
)

// Verifier holds one text under audit.
type Verifier struct {
	content string
	cleaned string
}

// NewVerifier prepares the text, stripping comments so they cannot produce
// false matches. The stripper is best-effort: literal "//" or "/*" inside
// string literals can misfire.
func NewVerifier(content string) *Verifier {
	cleaned := blockCommentRe.ReplaceAllString(content, "")
	cleaned = lineCommentRe.ReplaceAllString(cleaned, "")
	return &Verifier{content: content, cleaned: cleaned}
}

// Constructs locates every CPO definition in the text.
func (v *Verifier) Constructs() []Construct {
	var out []Construct
	for _, m := range headerRe.FindAllStringSubmatchIndex(v.cleaned, -1) {
		name := v.cleaned[m[2]:m[3]]
		base := v.cleaned[m[4]:m[5]]
		if name != base {
			continue
		}
		start := m[0]
		end := v.findEnd(start)
		out = append(out, Construct{
			Name:    name,
			Content: v.cleaned[start:end],
			Start:   start,
			End:     end,
		})
	}
	return out
}

// findEnd walks brace depth from the header to the closing brace, then skips
// whitespace looking for the terminating semicolon.
func (v *Verifier) findEnd(start int) int {
	depth := 0
	foundFirst := false
	for i := start; i < len(v.cleaned); i++ {
		switch v.cleaned[i] {
		case '{':
			depth++
			foundFirst = true
		case '}':
			depth--
			if foundFirst && depth == 0 {
				j := i + 1
				for j < len(v.cleaned) && isSpace(v.cleaned[j]) {
					j++
				}
				if j < len(v.cleaned) && v.cleaned[j] == ';' {
					return j + 1
				}
				return i + 1
			}
		}
	}
	return len(v.cleaned)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// Verify runs every structural check against every discovered construct and
// returns the accumulated defect list. Verification is a reporting pass: it
// never aborts on the first failure.
func (v *Verifier) Verify() Report {
	constructs := v.Constructs()
	report := Report{Constructs: len(constructs)}
	for _, c := range constructs {
		report.Defects = append(report.Defects, v.checkStructure(c)...)
		report.Defects = append(report.Defects, v.checkAliases(c)...)
		report.Defects = append(report.Defects, checkNoexcept(c)...)
		report.Defects = append(report.Defects, checkForwarding(c)...)
		report.Defects = append(report.Defects, checkFamilyConsistency(c)...)
		report.Defects = append(report.Defects, checkVariadicFlag(c)...)
	}
	return report
}

// VerifyFile reads and verifies a single file.
func VerifyFile(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return NewVerifier(string(data)).Verify(), nil
}

// checkStructure validates the tag declaration and the dual operator()
// requirement clauses (the tag-dispatch double-overload idiom).
func (v *Verifier) checkStructure(c Construct) []string {
	var defects []string

	if !strings.Contains(c.Content, fmt.Sprintf("TINCUP_CPO_TAG(%q)", c.Name)) {
		defects = append(defects, fmt.Sprintf("Missing or incorrect TINCUP_CPO_TAG for %s", c.Name))
	}

	quoted := regexp.QuoteMeta(c.Name)
	posRe := regexp.MustCompile(`requires\s+(?:[\w:]+::)?(?:tag_)?invocable_c<` + quoted + `_ftor`)
	negRe := regexp.MustCompile(`requires\s+\(\s*!\s*(?:[\w:]+::)?(?:tag_)?invocable_c<` + quoted + `_ftor`)

	if !posRe.MatchString(c.Content) {
		defects = append(defects, fmt.Sprintf("Missing positive requires clause for %s", c.Name))
	}
	if !negRe.MatchString(c.Content) {
		defects = append(defects, fmt.Sprintf("Missing negative requires clause for %s", c.Name))
	}
	return defects
}

// checkAliases requires the three derived-name aliases. Concept aliases
// cannot live inside the struct in C++, so the search covers the whole
// comment-stripped file rather than the construct span alone.
func (v *Verifier) checkAliases(c Construct) []string {
	var defects []string
	for _, suffix := range []string{"_invocable_c", "_nothrow_invocable_c", "_return_t"} {
		alias := c.Name + suffix
		if !strings.Contains(v.cleaned, alias) {
			defects = append(defects, fmt.Sprintf("Missing concept alias: %s", alias))
		}
	}
	return defects
}
