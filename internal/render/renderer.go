// Package render expands the compiled context into C++ source text. The
// templates are the only place that decides layout; all semantic strings
// arrive pre-computed from the compiler.
package render

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/sandialabs/TInCuP/internal/compiler"
	"github.com/sandialabs/TInCuP/internal/target"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Renderer holds the parsed template set.
type Renderer struct {
	t *template.Template
}

// New parses the embedded template set.
func New() (*Renderer, error) {
	t := template.New("cpo").Funcs(template.FuncMap{
		"join": strings.Join,
	})
	t, err := t.ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Renderer{t: t}, nil
}

func (r *Renderer) render(name string, data any) (string, error) {
	var sb strings.Builder
	if err := r.t.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return sb.String(), nil
}

// CPODefinition renders the construct definition, choosing the constrained
// (generic) or minimal CRTP (concrete) form.
func (r *Renderer) CPODefinition(ctx *compiler.Context) (string, error) {
	name := "concrete_cpo.hpp.tmpl"
	if ctx.HasGenerics {
		name = "generic_cpo.hpp.tmpl"
	}
	return r.render(name, ctx)
}

type doxygenData struct {
	Name               string
	Description        string
	ImplementationHint string
	ParamDocs          string
	Definition         string
	TagInvokeSignature string
}

// Doxygen wraps an already-rendered definition with a documentation block
// and the suggested tag_invoke signature.
func (r *Renderer) Doxygen(ctx *compiler.Context, definition string) (string, error) {
	data := doxygenData{
		Name:      ctx.Name,
		ParamDocs: paramDocs(ctx),
		Definition: definition,
		// The signature spans two lines for generic constructs; keep both
		// inside the comment.
		TagInvokeSignature: strings.ReplaceAll(StubSignature(ctx), "\n", "\n// "),
	}
	if ctx.Pattern != nil {
		data.Description = ctx.Pattern.Description
		data.ImplementationHint = ctx.Pattern.ImplementationHint
	}
	return r.render("doxygen.hpp.tmpl", data)
}

func paramDocs(ctx *compiler.Context) string {
	lines := make([]string, 0, len(ctx.Args))
	for _, a := range ctx.Args {
		lines = append(lines, fmt.Sprintf(" * @param %s [TODO: Description for %s]", a.Name, a.Name))
	}
	return strings.Join(lines, "\n")
}

type traitData struct {
	CpoName            string
	Target             string
	TemplateHeader     string
	ShimTemplateHeader string
	ShimNamespace      string
}

func analyzeTarget(cpoName, targetExpr string) (traitData, error) {
	a, err := target.Analyze(targetExpr)
	if err != nil {
		return traitData{}, err
	}
	data := traitData{
		CpoName:        cpoName,
		Target:         a.Rewritten,
		TemplateHeader: a.TemplateHeader(),
	}
	// The shim always adds a trailing Args pack for the forwarded call.
	decls := make([]string, 0, len(a.Params)+1)
	for _, p := range a.Params {
		if p.IsPack {
			decls = append(decls, "typename... "+p.Name)
		} else {
			decls = append(decls, "typename "+p.Name)
		}
	}
	decls = append(decls, "typename... Args")
	data.ShimTemplateHeader = "template<" + strings.Join(decls, ", ") + ">"
	return data, nil
}

// TraitImpl renders a cpo_impl<CPO, Target> specialization skeleton.
func (r *Renderer) TraitImpl(cpoName, targetExpr string) (string, error) {
	data, err := analyzeTarget(cpoName, targetExpr)
	if err != nil {
		return "", err
	}
	return r.render("trait_impl.hpp.tmpl", data)
}

// ADLShim renders a tag_invoke shim forwarding to the trait specialization,
// optionally wrapped in a namespace.
func (r *Renderer) ADLShim(cpoName, targetExpr, shimNamespace string) (string, error) {
	data, err := analyzeTarget(cpoName, targetExpr)
	if err != nil {
		return "", err
	}
	data.ShimNamespace = shimNamespace
	return r.render("adl_shim.hpp.tmpl", data)
}
