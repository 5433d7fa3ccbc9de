// Package catalog holds the fixed table of semantic operation patterns.
// Each pattern expands to a predetermined shorthand argument list plus
// descriptive metadata; the set is closed and unknown names are rejected at
// the boundary.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Pattern is one predefined operation shape.
type Pattern struct {
	Name                string
	Description         string
	Args                []string
	ReturnConstraint    string
	Example             string
	ImplementationHint  string
	SemanticConstraints []string
	RequiresConstSafe   bool
	RequiresMutable     []string
}

// UnknownPatternError lists the valid pattern names alongside the rejected one.
type UnknownPatternError struct {
	Name  string
	Valid []string
}

func (e *UnknownPatternError) Error() string {
	return fmt.Sprintf("unknown operation_type %q, available: %s", e.Name, strings.Join(e.Valid, ", "))
}

var patterns = map[string]Pattern{
	"mutating_binary": {
		Name:             "mutating_binary",
		Description:      "Modifies first object using second object",
		Args:             []string{"$T&: target", "$const U&: source"},
		ReturnConstraint: "returns_void_c",
		SemanticConstraints: []string{
			"std::is_move_constructible_v<T>",
		},
		RequiresMutable: []string{"target"},
		Example:         "// Implement your binary modification logic here",
	},
	"scalar_mutating": {
		Name:             "scalar_mutating",
		Description:      "Modifies object using a scalar value",
		Args:             []string{"$T&: target", "$S: scalar"},
		ReturnConstraint: "returns_void_c",
		Example:          "// Implement your scalar modification logic here",
	},
	"unary_mutating": {
		Name:               "unary_mutating",
		Description:        "Modifies object using a unary function",
		Args:               []string{"$T&: target", "$F: func"},
		ReturnConstraint:   "returns_void_c",
		Example:            "// Apply func to modify target",
		ImplementationHint: "Apply the function to modify the target object",
	},
	"binary_query": {
		Name:             "binary_query",
		Description:      "Computes value from two objects",
		Args:             []string{"$const T&: lhs", "$const U&: rhs"},
		ReturnConstraint: "returns_value_c",
		Example:          "// Implement your binary computation logic here",
	},
	"unary_query": {
		Name:             "unary_query",
		Description:      "Computes value from one object",
		Args:             []string{"$const T&: obj"},
		ReturnConstraint: "returns_value_c",
		SemanticConstraints: []string{
			"std::is_copy_constructible_v<T>",
			"!std::is_void_v<tincup::invocable_t<{cpo_name}_ftor, const T&>>",
		},
		RequiresConstSafe: true,
		Example:           "// Implement your query logic here",
	},
	"generator": {
		Name:             "generator",
		Description:      "Creates new object from existing object",
		Args:             []string{"$const T&: source"},
		ReturnConstraint: "returns_new_object_c",
		SemanticConstraints: []string{
			"std::is_copy_constructible_v<T>",
			"!std::is_void_v<tincup::invocable_t<{cpo_name}_ftor, const T&>>",
		},
		RequiresConstSafe: true,
		Example:           "// Create and return a new object based on source",
	},
	"binary_transform": {
		Name:               "binary_transform",
		Description:        "Applies a binary function to transform two objects",
		Args:               []string{"$T&: target", "$const U&: source", "$F: func"},
		ReturnConstraint:   "returns_void_c",
		Example:            "// Apply func to transform target using source",
		ImplementationHint: "Use the function to transform target based on source",
	},
}

// Names returns the valid pattern names in sorted order.
func Names() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every pattern, sorted by name.
func All() []Pattern {
	out := make([]Pattern, 0, len(patterns))
	for _, name := range Names() {
		out = append(out, patterns[name])
	}
	return out
}

// Lookup resolves a pattern by name.
func Lookup(name string) (Pattern, error) {
	p, ok := patterns[name]
	if !ok {
		return Pattern{}, &UnknownPatternError{Name: name, Valid: Names()}
	}
	return p, nil
}
