package verify

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	noexceptRe = regexp.MustCompile(`noexcept\((?:[\w:]+::)?nothrow(?:_tag)?_invocable_c<([^>]+)>\)`)

	forwardingParamRe = regexp.MustCompile(`(\w+)&&\s+(\w+)`)

	familyRe = regexp.MustCompile(`tincup::(invocable_c|nothrow_invocable_c|invocable_t)<([^>]+)>`)

	// Combined operator signature with requires/noexcept/trailing-return all
	// adjacent. Layout-dependent; used only for the stricter localized check.
	combinedOperatorRe = regexp.MustCompile(`(?s)requires\s+tincup::invocable_c<([^>]+)>\s*` +
		`constexpr\s+auto\s+operator\(\)\s*\([^)]*\)\s*const\s*` +
		`noexcept\(tincup::nothrow_invocable_c<([^>]+)>\)\s*` +
		`->\s*tincup::invocable_t<([^>]+)>`)

	variadicFlagRe = regexp.MustCompile(`\binline\s+static\s+constexpr\s+bool\s+is_variadic\s*=\s*(true|false)\s*;`)
	legacyFlagRe   = regexp.MustCompile(`\binline\s+static\s+constexpr\s+bool\s+has_variadic_params\s*=\s*(true|false)\s*;`)

	operatorParamsRe = regexp.MustCompile(`operator\(\)\s*\(([^)]*)\)`)

	whitespaceRe = regexp.MustCompile(`\s+`)
)

// checkNoexcept requires exactly one no-throw-invocability expression, and
// it must reference the construct's own functor type. Zero is missing
// propagation; more than one is ambiguous.
func checkNoexcept(c Construct) []string {
	matches := noexceptRe.FindAllStringSubmatch(c.Content, -1)
	if len(matches) != 1 {
		return []string{fmt.Sprintf("%s: incorrect number of noexcept specifications (want 1, found %d)", c.Name, len(matches))}
	}
	if !strings.Contains(matches[0][1], c.Name+"_ftor") {
		return []string{fmt.Sprintf("%s: noexcept specification doesn't reference %s_ftor", c.Name, c.Name)}
	}
	return nil
}

// checkForwarding demands a std::forward expression for every
// rvalue-reference-typed parameter found in the construct text.
func checkForwarding(c Construct) []string {
	var defects []string
	seen := make(map[string]bool)
	for _, m := range forwardingParamRe.FindAllStringSubmatch(c.Content, -1) {
		typeName, paramName := m[1], m[2]
		key := typeName + "/" + paramName
		if seen[key] {
			continue
		}
		seen[key] = true
		want := fmt.Sprintf("std::forward<%s>(%s)", typeName, paramName)
		if !strings.Contains(c.Content, want) {
			defects = append(defects, fmt.Sprintf("%s: missing %s for forwarding reference", c.Name, want))
		}
	}
	return defects
}

func normalizeArgs(args string) string {
	return whitespaceRe.ReplaceAllString(args, "")
}

// checkFamilyConsistency enforces that every constraint-family use
// (invocable_c, nothrow_invocable_c, invocable_t) carries one identical
// argument substitution, whitespace-insensitive. When the combined operator
// signature can be located, each of its three positions is additionally
// checked against the canonical form; absent that layout the stricter check
// is skipped.
func checkFamilyConsistency(c Construct) []string {
	var defects []string

	matches := familyRe.FindAllStringSubmatch(c.Content, -1)
	if len(matches) == 0 {
		return nil
	}

	all := make([]string, 0, len(matches))
	distinct := make(map[string]bool)
	for _, m := range matches {
		// Negated requires clauses arrive as "(!tincup::invocable_c<...".
		n := normalizeArgs(m[2])
		all = append(all, n)
		distinct[n] = true
	}

	if len(distinct) > 1 {
		forms := make([]string, 0, len(distinct))
		for f := range distinct {
			forms = append(forms, f)
		}
		sort.Strings(forms)
		if len(forms) > 2 {
			forms = forms[:2]
		}
		defects = append(defects, fmt.Sprintf(
			"Inconsistent argument substitution in %s concept family. Found %d different patterns: %v...",
			c.Name, len(distinct), forms))
	}

	canonical := all[0]
	if om := combinedOperatorRe.FindStringSubmatch(c.Content); om != nil {
		requiresArgs := normalizeArgs(om[1])
		noexceptArgs := normalizeArgs(om[2])
		returnArgs := normalizeArgs(om[3])
		if !(requiresArgs == canonical && noexceptArgs == canonical && returnArgs == canonical) {
			defects = append(defects, fmt.Sprintf(
				"operator() concept family arguments are inconsistent in %s. Expected all to be: '%s'",
				c.Name, canonical))
		}
	}

	return defects
}

// checkVariadicFlag requires the declared is_variadic flag (or its legacy
// name) and checks it against the presence of a pack ellipsis in any
// operator() parameter list.
func checkVariadicFlag(c Construct) []string {
	flagMatch := variadicFlagRe.FindStringSubmatch(c.Content)
	if flagMatch == nil {
		flagMatch = legacyFlagRe.FindStringSubmatch(c.Content)
	}
	if flagMatch == nil {
		return []string{fmt.Sprintf("%s: missing inline static constexpr bool is_variadic flag (or legacy has_variadic_params)", c.Name)}
	}
	flagValue := flagMatch[1] == "true"

	hasEllipsis := false
	for _, m := range operatorParamsRe.FindAllStringSubmatch(c.Content, -1) {
		if strings.Contains(m[1], "...") {
			hasEllipsis = true
			break
		}
	}

	switch {
	case flagValue && !hasEllipsis:
		return []string{fmt.Sprintf("%s: is_variadic=true but no parameter pack ('...') found in operator() signatures", c.Name)}
	case !flagValue && hasEllipsis:
		return []string{fmt.Sprintf("%s: is_variadic=false but parameter pack ('...') detected in operator() signatures", c.Name)}
	}
	return nil
}
