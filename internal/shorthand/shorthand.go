// Package shorthand parses the compact argument notation used by the CPO
// generator. Each argument is written as "type: name"; a leading '$' marks
// the type as a template parameter, a trailing '&&' on a generic type makes
// it a forwarding reference, and an embedded '...' makes it a pack.
package shorthand

import (
	"fmt"
	"regexp"
	"strings"
)

// Argument is one formal parameter derived from a shorthand string.
// Immutable once parsed; all derived strings are computed from these fields.
type Argument struct {
	Name         string
	IsGeneric    bool
	IsVariadic   bool
	IsForwarding bool // implies IsGeneric
	BaseType     string // bare template-parameter name, generic args only
	RenderedType string // type expression as emitted in a parameter list
}

// MalformedArgumentError reports a shorthand string that could not be split
// into a type part and a name part.
type MalformedArgumentError struct {
	Input string
}

func (e *MalformedArgumentError) Error() string {
	return fmt.Sprintf("invalid argument format %q, expected 'type: name'", e.Input)
}

var qualifierRe = regexp.MustCompile(`\b(const|volatile)\b`)

// baseTypeName strips cv-qualifiers, reference/pointer markers and pack
// ellipses to find the bare template-parameter name.
func baseTypeName(fullType string) string {
	s := qualifierRe.ReplaceAllString(fullType, "")
	s = strings.ReplaceAll(s, "&", "")
	s = strings.ReplaceAll(s, "*", "")
	s = strings.ReplaceAll(s, "...", "")
	return strings.TrimSpace(s)
}

// Parse converts a single shorthand string into an Argument.
// The split happens on the last colon so namespaced types (std::string)
// survive intact.
func Parse(entry string) (Argument, error) {
	idx := strings.LastIndex(entry, ":")
	if idx < 0 {
		return Argument{}, &MalformedArgumentError{Input: entry}
	}
	fullType := strings.TrimSpace(entry[:idx])
	name := strings.TrimSpace(entry[idx+1:])
	if fullType == "" || name == "" {
		return Argument{}, &MalformedArgumentError{Input: entry}
	}

	arg := Argument{
		Name:       name,
		IsGeneric:  strings.HasPrefix(fullType, "$"),
		IsVariadic: strings.Contains(fullType, "..."),
	}

	if arg.IsGeneric {
		typeName := strings.TrimSpace(fullType[1:])
		arg.BaseType = baseTypeName(typeName)
		if strings.HasSuffix(typeName, "&&") || strings.HasSuffix(typeName, "&&...") {
			// Forwarding references are always a bare rvalue reference to the
			// deduced parameter; qualifiers are dropped.
			arg.IsForwarding = true
			arg.RenderedType = arg.BaseType + "&&"
		} else {
			arg.RenderedType = strings.TrimSpace(strings.ReplaceAll(typeName, "...", ""))
		}
	} else {
		arg.RenderedType = strings.TrimSpace(strings.ReplaceAll(fullType, "...", ""))
	}

	return arg, nil
}

// ParseAll parses an ordered list of shorthand strings, failing on the first
// malformed entry.
func ParseAll(entries []string) ([]Argument, error) {
	args := make([]Argument, 0, len(entries))
	for _, entry := range entries {
		arg, err := Parse(entry)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

// ParameterList renders the full parameter-list string, appending the pack
// ellipsis per argument ("T&&... args", "int value").
func ParameterList(args []Argument) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		pack := ""
		if a.IsVariadic {
			pack = "..."
		}
		parts = append(parts, fmt.Sprintf("%s%s %s", a.RenderedType, pack, a.Name))
	}
	return strings.Join(parts, ", ")
}

// ForwardingList renders the call-site argument expressions: forwarding
// references become std::forward<Base>(name), everything else is the bare
// name, pack-expanded when variadic.
func ForwardingList(args []Argument) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		pack := ""
		if a.IsVariadic {
			pack = "..."
		}
		if a.IsForwarding {
			parts = append(parts, fmt.Sprintf("std::forward<%s>(%s)%s", a.BaseType, a.Name, pack))
		} else {
			parts = append(parts, a.Name+pack)
		}
	}
	return strings.Join(parts, ", ")
}

// ConstraintTypes returns the type expressions used in constraint positions.
// Forwarding references contribute their deduced parameter name rather than
// the reference-qualified call-site type; constraint checks operate on
// deduced parameter identity.
func ConstraintTypes(args []Argument) []string {
	types := make([]string, 0, len(args))
	for _, a := range args {
		t := a.RenderedType
		if a.IsForwarding {
			t = a.BaseType
		}
		if a.IsVariadic {
			t += "..."
		}
		types = append(types, t)
	}
	return types
}

// HasVariadic reports whether any argument is a pack.
func HasVariadic(args []Argument) bool {
	for _, a := range args {
		if a.IsVariadic {
			return true
		}
	}
	return false
}
