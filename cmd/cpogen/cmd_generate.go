package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sandialabs/TInCuP/internal/compiler"
	"github.com/sandialabs/TInCuP/internal/registry"
	"github.com/sandialabs/TInCuP/internal/render"
)

var (
	genFrom          string
	genFormat        string
	genDoxygen       bool
	genEmitStub      bool
	genBodyGuard     string
	genEmitTraitImpl bool
	genTraitOnly     bool
	genImplTarget    string
	genImplGuard     string
	genEmitADLShim   bool
	genShimNamespace string
	genFromRegistry  string
	genRegistryPath  string
	genNamespace     string
	genWithInclude   bool
	genOut           string
	genAppend        bool
	genFormatCode    bool
	genClangFormat   string
)

var generateCmd = &cobra.Command{
	Use:   "generate [spec]",
	Short: "Generate CPO boilerplate from a JSON/YAML spec",
	Long: `Generate renders a complete customization point object from a compact
spec given as an inline argument, a file (--from), or stdin.

Optional emissions stack onto the definition: a Doxygen block, a
declaration-only tag_invoke stub, a cpo_impl trait specialization for a
concrete target type, and an ADL shim forwarding to that trait.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genFrom, "from", "", "Read the spec from a file instead of an argument")
	f.StringVar(&genFormat, "format", "auto", "Spec encoding: auto, json, or yaml")
	f.BoolVar(&genDoxygen, "doxygen", false, "Wrap the definition in a Doxygen block")
	f.BoolVar(&genEmitStub, "emit-tag-invoke", false, "Append a declaration-only tag_invoke stub")
	f.StringVar(&genBodyGuard, "emit-body-guard", "", "Guard macro for a compile-blocked stub body")
	f.BoolVar(&genEmitTraitImpl, "emit-trait-impl", false, "Append a cpo_impl trait specialization skeleton")
	f.BoolVar(&genTraitOnly, "trait-impl-only", false, "Emit only the trait specialization, no definition")
	f.StringVar(&genImplTarget, "impl-target", "", "Target type expression for the trait, e.g. 'Vec<$T>' (implies --emit-trait-impl)")
	f.StringVar(&genImplGuard, "impl-guard", "", "Wrap the trait specialization in #ifdef GUARD")
	f.BoolVar(&genEmitADLShim, "emit-adl-shim", false, "Append a tag_invoke shim forwarding to the trait")
	f.StringVar(&genShimNamespace, "shim-namespace", "", "Namespace for the ADL shim")
	f.StringVar(&genFromRegistry, "from-registry", "", "Resolve the CPO name from a registry key instead of a spec")
	f.StringVar(&genRegistryPath, "registry-path", "docs/cpo_registry.json", "Registry JSON used by --from-registry")
	f.StringVar(&genNamespace, "namespace", "", "Wrap output in a namespace")
	f.BoolVar(&genWithInclude, "with-include", false, "Prepend the tincup library include")
	f.StringVarP(&genOut, "out", "o", "", "Output file (stdout when empty)")
	f.BoolVar(&genAppend, "append", false, "Append to --out instead of overwriting")
	f.BoolVar(&genFormatCode, "format-code", false, "Run clang-format on the output file")
	f.StringVar(&genClangFormat, "clang-format", "", "clang-format binary to use")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if genImplTarget != "" {
		genEmitTraitImpl = true
	}
	if (genTraitOnly || genEmitTraitImpl || genEmitADLShim) && genImplTarget == "" {
		return errors.New("trait and shim emission require --impl-target")
	}

	spec, err := loadSpec(args)
	if err != nil {
		return err
	}
	name := spec.Name

	// Trait-only emission never needs a compiled context, only the name;
	// registry-resolved specs carry no argument shorthand to compile.
	var ctx *compiler.Context
	if !genTraitOnly {
		ctx, err = compiler.Compile(spec)
		if err != nil {
			return err
		}
		logger.Debug("compiled spec",
			zap.String("name", ctx.Name),
			zap.Bool("generic", ctx.HasGenerics),
			zap.Bool("variadic", ctx.HasVariadic))
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}

	var code string
	if !genTraitOnly {
		code, err = renderer.CPODefinition(ctx)
		if err != nil {
			return err
		}
		if genDoxygen || ctx.Doxygen {
			code, err = renderer.Doxygen(ctx, code)
			if err != nil {
				return err
			}
		}
		if genEmitStub || genBodyGuard != "" {
			code += "\n" + render.TagInvokeStub(ctx, genBodyGuard)
		}
	}

	if genEmitTraitImpl {
		trait, err := renderer.TraitImpl(name, genImplTarget)
		if err != nil {
			return err
		}
		if genImplGuard != "" {
			trait = fmt.Sprintf("#ifdef %s\n%s\n#endif // %s\n", genImplGuard, trait, genImplGuard)
		}
		if code != "" {
			code += "\n"
		}
		code += trait
	}

	if genEmitADLShim {
		shim, err := renderer.ADLShim(name, genImplTarget, genShimNamespace)
		if err != nil {
			return err
		}
		if code != "" {
			code += "\n"
		}
		code += shim
	}

	if genNamespace != "" || genWithInclude {
		code = render.Wrap(code, genNamespace, genWithInclude)
	}
	code = render.Clean(code)

	if err := render.Write(genOut, code, genAppend); err != nil {
		return err
	}

	if genFormatCode && genOut != "" {
		if err := render.FormatFile(genOut, genClangFormat); err != nil {
			logger.Warn("formatting skipped", zap.Error(err))
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	return nil
}

// loadSpec assembles the generation request from the inline argument, --from,
// stdin, or a registry key for trait-only emission.
func loadSpec(args []string) (compiler.Spec, error) {
	if genFromRegistry != "" {
		name, err := resolveRegistryName(genFromRegistry)
		if err != nil {
			return compiler.Spec{}, err
		}
		// Registry keys carry no argument shorthand, so only the trait and
		// shim forms can be produced from them.
		if !genTraitOnly {
			return compiler.Spec{}, errors.New("--from-registry requires --trait-impl-only")
		}
		return compiler.Spec{Name: name}, nil
	}

	format, err := compiler.FormatFromName(genFormat)
	if err != nil {
		return compiler.Spec{}, err
	}

	var data []byte
	switch {
	case len(args) == 1:
		data = []byte(args[0])
	case genFrom != "":
		data, err = os.ReadFile(genFrom)
		if err != nil {
			return compiler.Spec{}, fmt.Errorf("reading spec file: %w", err)
		}
	default:
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return compiler.Spec{}, fmt.Errorf("reading stdin: %w", err)
		}
	}
	return compiler.DecodeSpec(data, format)
}

func resolveRegistryName(key string) (string, error) {
	data, err := os.ReadFile(genRegistryPath)
	if err != nil {
		return "", fmt.Errorf("reading registry %s: %w", genRegistryPath, err)
	}
	var entries []registry.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return "", fmt.Errorf("parsing registry %s: %w", genRegistryPath, err)
	}
	return registry.ResolveName(entries, key), nil
}
