// Package compiler turns a parsed generation request into a renderer-ready
// context: canonical argument strings, deduplicated template-parameter
// declarations, forwarding expressions, and dispatch injection.
package compiler

import (
	"sort"
	"strings"

	"github.com/sandialabs/TInCuP/internal/catalog"
	"github.com/sandialabs/TInCuP/internal/shorthand"
)

// Context is the compiled, renderer-ready representation of one construct.
// It is built fresh per request and never mutated after compilation.
type Context struct {
	Name string
	Args []shorthand.Argument

	// ArgPairs is the rendered parameter list, including any synthesized
	// dispatch parameter.
	ArgPairs string
	// ArgNames is the call-site forwarding expression list.
	ArgNames string
	// ConceptTypes is the constraint-argument type list.
	ConceptTypes string
	// CanonicalConceptArgs is the single source of truth interpolated into
	// every constraint, noexcept, and return-type position. It is computed
	// exactly once.
	CanonicalConceptArgs string

	// Variants with the dispatch argument removed, for constraint positions
	// that must not see the dispatch selector.
	ArgPairsNoDispatch     string
	ArgNamesNoDispatch     string
	ConceptTypesNoDispatch string

	HasGenerics  bool
	GenericDecls string // "typename T, typename U, typename... Args"
	HasVariadic  bool

	Dispatch *Dispatch
	Pattern  *catalog.Pattern
	Semantic *SemanticInfo
	Doxygen  bool
}

// SemanticInfo carries the processed semantic-constraint metadata of a
// pattern. Descriptive only; nothing here is executable.
type SemanticInfo struct {
	Constraints       []string
	ReturnConstraint  string
	RequiresConstSafe bool
	RequiresMutable   []string
}

var returnConstraintTraits = map[string]string{
	"returns_void_c":       "std::is_void_v",
	"returns_value_c":      "!std::is_void_v",
	"returns_new_object_c": "!std::is_void_v",
}

// Compile validates the spec and produces the rendering context.
// Any error aborts the whole request; no partial context is returned.
func Compile(spec Spec) (*Context, error) {
	var pat *catalog.Pattern
	args := spec.Args
	if spec.OperationType != "" {
		p, err := catalog.Lookup(spec.OperationType)
		if err != nil {
			return nil, err
		}
		pat = &p
		args = p.Args
	} else if spec.Args == nil {
		return nil, ErrInvalidSpec
	}

	if err := spec.RuntimeDispatch.validate(); err != nil {
		return nil, err
	}

	parsed, err := shorthand.ParseAll(args)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		Name:        spec.Name,
		Args:        parsed,
		Dispatch:    spec.RuntimeDispatch,
		Pattern:     pat,
		Doxygen:     spec.Doxygen || pat != nil,
		HasVariadic: shorthand.HasVariadic(parsed),
	}

	ctx.ArgPairs = shorthand.ParameterList(parsed)
	ctx.ArgNames = shorthand.ForwardingList(parsed)
	conceptTypes := shorthand.ConstraintTypes(parsed)
	ctx.ConceptTypes = strings.Join(conceptTypes, ", ")

	ctx.ArgPairsNoDispatch = ctx.ArgPairs
	ctx.ArgNamesNoDispatch = ctx.ArgNames
	ctx.ConceptTypesNoDispatch = ctx.ConceptTypes
	if d := spec.RuntimeDispatch; d != nil {
		ctx.ConceptTypesNoDispatch = strings.Join(withoutDispatchArg(parsed, conceptTypes, d.Arg), ", ")
		if d.Kind == "bool" {
			// The selector is appended to the rendered parameter list only;
			// it has no bearing on the advertised type-level constraint.
			param := "bool " + d.Arg + " = false"
			if ctx.ArgPairs != "" {
				ctx.ArgPairs += ", " + param
			} else {
				ctx.ArgPairs = param
			}
		}
	}

	// Canonical constraint-argument string: computed here and nowhere else.
	ctx.CanonicalConceptArgs = spec.Name + "_ftor"
	if ctx.ConceptTypes != "" {
		ctx.CanonicalConceptArgs += ", " + ctx.ConceptTypes
	}

	ctx.HasGenerics, ctx.GenericDecls = genericDecls(parsed)
	ctx.Semantic = processSemantic(pat, spec.Name, ctx.ConceptTypes)

	return ctx, nil
}

// withoutDispatchArg drops the constraint type of the argument whose name
// matches the declared dispatch argument.
func withoutDispatchArg(args []shorthand.Argument, types []string, dispatchArg string) []string {
	out := make([]string, 0, len(types))
	for i, a := range args {
		if a.Name == dispatchArg {
			continue
		}
		out = append(out, types[i])
	}
	return out
}

// genericDecls deduplicates the template-parameter base names and renders
// the declaration list: plain parameters alphabetically, then packs
// alphabetically.
func genericDecls(args []shorthand.Argument) (bool, string) {
	plain := make(map[string]bool)
	packs := make(map[string]bool)
	for _, a := range args {
		if !a.IsGeneric {
			continue
		}
		if a.IsVariadic {
			packs[a.BaseType] = true
		} else {
			plain[a.BaseType] = true
		}
	}
	if len(plain) == 0 && len(packs) == 0 {
		return false, ""
	}

	decls := make([]string, 0, len(plain)+len(packs))
	for _, name := range sortedKeys(plain) {
		decls = append(decls, "typename "+name)
	}
	for _, name := range sortedKeys(packs) {
		decls = append(decls, "typename... "+name)
	}
	return true, strings.Join(decls, ", ")
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// processSemantic expands a pattern's semantic-constraint templates with the
// concrete construct name and constraint types.
func processSemantic(pat *catalog.Pattern, name, conceptTypes string) *SemanticInfo {
	if pat == nil {
		return nil
	}
	info := &SemanticInfo{
		RequiresConstSafe: pat.RequiresConstSafe,
		RequiresMutable:   pat.RequiresMutable,
		ReturnConstraint:  returnConstraintTraits[pat.ReturnConstraint],
	}
	for _, c := range pat.SemanticConstraints {
		c = strings.ReplaceAll(c, "{cpo_name}", name)
		c = strings.ReplaceAll(c, "{concept_types}", conceptTypes)
		info.Constraints = append(info.Constraints, c)
	}
	return info
}
