// Package target analyzes specialization-target type expressions such as
// "std::vector<$T, $Alloc>" or "Kokkos::View<...>". Markers inside the
// outermost bracketed region declare template parameters; everything else is
// concrete and passes through untouched.
package target

import (
	"fmt"
	"regexp"
	"strings"
)

// Param is one declared template parameter of the analyzed target.
type Param struct {
	Name   string
	IsPack bool
}

// Analysis holds the declared parameters and the rewritten target expression
// with all markers replaced by parameter names.
type Analysis struct {
	Params    []Param
	Rewritten string
}

// MalformedTargetError reports an ambiguous or unparseable target token.
type MalformedTargetError struct {
	Token  string
	Reason string
}

func (e *MalformedTargetError) Error() string {
	return fmt.Sprintf("invalid target token %q: %s", e.Token, e.Reason)
}

var bareIdentPackRe = regexp.MustCompile(`^[A-Za-z_]\w*\.\.\.$`)

// Analyze parses a target type expression. Only the single outermost
// bracketed region is substituted; nested angle-bracket regions are not
// recursively processed.
func Analyze(targetExpr string) (Analysis, error) {
	expr := strings.TrimSpace(targetExpr)

	open := strings.Index(expr, "<")
	if open < 0 {
		return Analysis{Rewritten: expr}, nil
	}
	end := matchingAngle(expr, open)
	if end < 0 {
		return Analysis{}, &MalformedTargetError{Token: expr, Reason: "unbalanced '<' in target expression"}
	}

	head := expr[:open]
	tail := expr[end+1:]
	inner := expr[open+1 : end]

	a := Analysis{}
	seen := make(map[string]bool)
	anonCount := 0

	tokens := splitTopLevel(inner)
	rewritten := make([]string, 0, len(tokens))
	for _, raw := range tokens {
		tok := strings.TrimSpace(raw)
		switch {
		case tok == "...":
			anonCount++
			name := "P"
			if anonCount > 1 {
				name = fmt.Sprintf("P%d", anonCount)
			}
			a.addParam(seen, Param{Name: name, IsPack: true})
			rewritten = append(rewritten, name+"...")

		case strings.HasPrefix(tok, "$"):
			body := strings.TrimSpace(tok[1:])
			isPack := strings.HasSuffix(body, "...")
			name := strings.TrimSpace(strings.TrimSuffix(body, "..."))
			if name == "" {
				return Analysis{}, &MalformedTargetError{Token: tok, Reason: "missing parameter name after '$'"}
			}
			a.addParam(seen, Param{Name: name, IsPack: isPack})
			if isPack {
				rewritten = append(rewritten, name+"...")
			} else {
				rewritten = append(rewritten, name)
			}

		case bareIdentPackRe.MatchString(tok):
			// An unmarked pack-looking token is ambiguous: the caller must
			// write '$Name...' to declare it or spell a concrete type.
			return Analysis{}, &MalformedTargetError{Token: tok, Reason: "bare identifier with '...' must be marked '$" + tok + "'"}

		default:
			rewritten = append(rewritten, tok)
		}
	}

	a.Rewritten = head + "<" + strings.Join(rewritten, ", ") + ">" + tail
	return a, nil
}

// addParam records a parameter once, keeping plain parameters ahead of packs.
func (a *Analysis) addParam(seen map[string]bool, p Param) {
	if seen[p.Name] {
		return
	}
	seen[p.Name] = true
	if p.IsPack {
		a.Params = append(a.Params, p)
		return
	}
	// Insert before the first pack so declarations stay well-formed.
	idx := len(a.Params)
	for i, q := range a.Params {
		if q.IsPack {
			idx = i
			break
		}
	}
	a.Params = append(a.Params, Param{})
	copy(a.Params[idx+1:], a.Params[idx:])
	a.Params[idx] = p
}

// TemplateHeader renders the template parameter declaration for the analyzed
// target, or "" when the target declares no parameters.
func (a Analysis) TemplateHeader() string {
	if len(a.Params) == 0 {
		return ""
	}
	decls := make([]string, 0, len(a.Params))
	for _, p := range a.Params {
		if p.IsPack {
			decls = append(decls, "typename... "+p.Name)
		} else {
			decls = append(decls, "typename "+p.Name)
		}
	}
	return "template<" + strings.Join(decls, ", ") + ">"
}

// matchingAngle returns the index of the '>' closing the '<' at open, or -1.
func matchingAngle(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits on commas at the top angle-bracket depth so nested
// concrete types like std::map<int, double> stay in one token.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
