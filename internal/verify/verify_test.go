package verify

import (
	"strings"
	"testing"

	"github.com/sandialabs/TInCuP/internal/compiler"
	"github.com/sandialabs/TInCuP/internal/render"
)

const goodConstruct = `
inline constexpr struct advance_ftor final : tincup::cpo_base<advance_ftor> {
  TINCUP_CPO_TAG("advance")
  using tincup::cpo_base<advance_ftor>::operator();
  inline static constexpr bool is_variadic = false;

  template<typename T>
    requires tincup::invocable_c<advance_ftor, T&>
  constexpr auto operator()(T& state) const
    noexcept(tincup::nothrow_invocable_c<advance_ftor, T&>)
    -> tincup::invocable_t<advance_ftor, T&> {
    return tag_invoke(*this, state);
  }

  template<typename T>
    requires (!tincup::invocable_c<advance_ftor, T&>)
  constexpr void operator()(T& state) const {
    this->enhanced_fail(state);
  }
} advance;

template<typename T>
concept advance_invocable_c = tincup::invocable_c<advance_ftor, T&>;

template<typename T>
concept advance_nothrow_invocable_c = tincup::nothrow_invocable_c<advance_ftor, T&>;

template<typename T>
using advance_return_t = tincup::invocable_t<advance_ftor, T&>;
`

func TestVerifyCleanConstruct(t *testing.T) {
	report := NewVerifier(goodConstruct).Verify()
	if report.Constructs != 1 {
		t.Fatalf("Constructs = %d, want 1", report.Constructs)
	}
	if len(report.Defects) != 0 {
		t.Fatalf("unexpected defects: %v", report.Defects)
	}
	if !report.Clean() {
		t.Error("Clean() = false for defect-free construct")
	}
}

func TestConstructDiscovery(t *testing.T) {
	v := NewVerifier(goodConstruct)
	constructs := v.Constructs()
	if len(constructs) != 1 {
		t.Fatalf("found %d constructs, want 1", len(constructs))
	}
	c := constructs[0]
	if c.Name != "advance" {
		t.Errorf("Name = %q, want advance", c.Name)
	}
	if !strings.HasSuffix(strings.TrimSpace(c.Content), "} advance;") {
		t.Errorf("construct content should end at the closing semicolon, got tail %q",
			c.Content[len(c.Content)-20:])
	}
}

// A header whose CRTP base names a different functor is not a CPO definition.
func TestConstructDiscoveryMismatchedBase(t *testing.T) {
	src := `struct foo_ftor final : tincup::cpo_base<bar_ftor> { };`
	if got := NewVerifier(src).Constructs(); len(got) != 0 {
		t.Errorf("found %d constructs, want 0", len(got))
	}
}

func TestConstructDiscoveryIgnoresComments(t *testing.T) {
	src := "// struct old_ftor final : tincup::cpo_base<old_ftor> {\n" +
		"/* struct dead_ftor final : tincup::cpo_base<dead_ftor> { */\n" +
		goodConstruct
	constructs := NewVerifier(src).Constructs()
	if len(constructs) != 1 || constructs[0].Name != "advance" {
		t.Errorf("constructs = %+v, want only advance", constructs)
	}
}

func TestReportNotCleanWithoutConstructs(t *testing.T) {
	report := NewVerifier("int main() { return 0; }").Verify()
	if report.Constructs != 0 {
		t.Fatalf("Constructs = %d, want 0", report.Constructs)
	}
	if report.Clean() {
		t.Error("Clean() must be false when nothing was discovered")
	}
}

func TestCheckStructureDefects(t *testing.T) {
	src := `
inline constexpr struct bump_ftor final : tincup::cpo_base<bump_ftor> {
  inline static constexpr bool is_variadic = false;
  constexpr void operator()(int v) const { tag_invoke(*this, v); }
} bump;
`
	report := NewVerifier(src).Verify()
	wantDefects := []string{
		"Missing or incorrect TINCUP_CPO_TAG for bump",
		"Missing positive requires clause for bump",
		"Missing negative requires clause for bump",
		"Missing concept alias: bump_invocable_c",
		"Missing concept alias: bump_nothrow_invocable_c",
		"Missing concept alias: bump_return_t",
	}
	for _, want := range wantDefects {
		if !containsDefect(report.Defects, want) {
			t.Errorf("missing defect %q in %v", want, report.Defects)
		}
	}
}

func TestCheckNoexcept(t *testing.T) {
	missing := strings.Replace(goodConstruct,
		"noexcept(tincup::nothrow_invocable_c<advance_ftor, T&>)", "", 1)
	report := NewVerifier(missing).Verify()
	if !containsDefect(report.Defects, "incorrect number of noexcept specifications (want 1, found 0)") {
		t.Errorf("defects = %v, want noexcept count defect", report.Defects)
	}

	wrongTarget := strings.Replace(goodConstruct,
		"noexcept(tincup::nothrow_invocable_c<advance_ftor, T&>)",
		"noexcept(tincup::nothrow_invocable_c<other_ftor, T&>)", 1)
	report = NewVerifier(wrongTarget).Verify()
	if !containsDefect(report.Defects, "noexcept specification doesn't reference advance_ftor") {
		t.Errorf("defects = %v, want wrong-target defect", report.Defects)
	}
}

func TestCheckForwarding(t *testing.T) {
	src := `
inline constexpr struct push_ftor final : tincup::cpo_base<push_ftor> {
  TINCUP_CPO_TAG("push")
  inline static constexpr bool is_variadic = false;

  template<typename T>
    requires tincup::invocable_c<push_ftor, T>
  constexpr auto operator()(T&& value) const
    noexcept(tincup::nothrow_invocable_c<push_ftor, T>)
    -> tincup::invocable_t<push_ftor, T> {
    return tag_invoke(*this, value);
  }

  template<typename T>
    requires (!tincup::invocable_c<push_ftor, T>)
  constexpr void operator()(T&& value) const {}
} push;
concept push_invocable_c = int;
concept push_nothrow_invocable_c = int;
using push_return_t = int;
`
	report := NewVerifier(src).Verify()
	if !containsDefect(report.Defects, "missing std::forward<T>(value) for forwarding reference") {
		t.Errorf("defects = %v, want forwarding defect", report.Defects)
	}
}

func TestCheckFamilyConsistency(t *testing.T) {
	// One constraint position substitutes T& while the others use T.
	src := strings.Replace(goodConstruct,
		"-> tincup::invocable_t<advance_ftor, T&>",
		"-> tincup::invocable_t<advance_ftor, T>", 1)
	report := NewVerifier(src).Verify()
	if !containsDefect(report.Defects, "Inconsistent argument substitution in advance concept family") {
		t.Errorf("defects = %v, want family inconsistency", report.Defects)
	}
}

// Whitespace differences alone are not an inconsistency.
func TestCheckFamilyConsistencyNormalizesWhitespace(t *testing.T) {
	src := strings.Replace(goodConstruct,
		"noexcept(tincup::nothrow_invocable_c<advance_ftor, T&>)",
		"noexcept(tincup::nothrow_invocable_c<advance_ftor,  T&>)", 1)
	report := NewVerifier(src).Verify()
	if len(report.Defects) != 0 {
		t.Errorf("unexpected defects: %v", report.Defects)
	}
}

func TestCheckVariadicFlag(t *testing.T) {
	wrongFlag := strings.Replace(goodConstruct,
		"is_variadic = false", "is_variadic = true", 1)
	report := NewVerifier(wrongFlag).Verify()
	if !containsDefect(report.Defects, "is_variadic=true but no parameter pack") {
		t.Errorf("defects = %v, want variadic flag defect", report.Defects)
	}

	noFlag := strings.Replace(goodConstruct,
		"inline static constexpr bool is_variadic = false;", "", 1)
	report = NewVerifier(noFlag).Verify()
	if !containsDefect(report.Defects, "missing inline static constexpr bool is_variadic flag") {
		t.Errorf("defects = %v, want missing flag defect", report.Defects)
	}
}

func TestCheckVariadicLegacyFlag(t *testing.T) {
	legacy := strings.Replace(goodConstruct,
		"inline static constexpr bool is_variadic = false;",
		"inline static constexpr bool has_variadic_params = false;", 1)
	report := NewVerifier(legacy).Verify()
	if len(report.Defects) != 0 {
		t.Errorf("unexpected defects with legacy flag: %v", report.Defects)
	}
}

// Generated output must verify clean: the generator and verifier agree on the
// structural conventions.
func TestGeneratedConstructVerifiesClean(t *testing.T) {
	specs := []compiler.Spec{
		{Name: "process", Args: []string{"$T&&: obj", "$Args&&...: rest"}},
		{Name: "assign", Args: []string{"$T&: dst", "$const U&: src"}},
		{Name: "scale", OperationType: "scalar_mutating"},
	}
	r, err := render.New()
	if err != nil {
		t.Fatal(err)
	}
	for _, spec := range specs {
		ctx, err := compiler.Compile(spec)
		if err != nil {
			t.Fatalf("%s: %v", spec.Name, err)
		}
		code, err := r.CPODefinition(ctx)
		if err != nil {
			t.Fatalf("%s: %v", spec.Name, err)
		}
		code = render.Clean(code)

		report := NewVerifier(code).Verify()
		if report.Constructs != 1 {
			t.Errorf("%s: constructs = %d, want 1", spec.Name, report.Constructs)
		}
		if len(report.Defects) != 0 {
			t.Errorf("%s: generated code has defects: %v", spec.Name, report.Defects)
		}
	}
}

func containsDefect(defects []string, fragment string) bool {
	for _, d := range defects {
		if strings.Contains(d, fragment) {
			return true
		}
	}
	return false
}
