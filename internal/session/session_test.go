package session

import (
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	astro "github.com/kodla-dev/renit-sub000/internal"
	"github.com/kodla-dev/renit-sub000/internal/testutil"
)

func TestCompile_ReactiveCounter_CSR(t *testing.T) {
	// Scenario A, end to end: script analysis must discover that `count`
	// is mutated inside inc() before the printer ever sees the template.
	src := `<script>
let count = 0;
function inc() {
	count++;
}
</script>
<button @click="inc()">{count}</button>
`
	s := New()
	out := s.Compile("Counter.rn", src, astro.Options{Target: astro.CSR})

	if len(out.Errors) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", out.Errors)
	}
	for _, want := range []string{
		"$.component($option => {",
		"const $u = $.update();",
		"let count = 0;",
		"function inc() {",
		`$.event($0, "click", () => inc())`,
		"$.text(",
	} {
		if !strings.Contains(out.Result.JS, want) {
			t.Errorf("Compile().Result.JS missing %q in:\n%s", want, out.Result.JS)
		}
	}
}

func TestCompile_Conditional_SSR(t *testing.T) {
	// Scenario B, ssr target.
	src := `{#if x > 0} <b>pos</b> {:else} <i>np</i> {/if}`
	s := New()
	out := s.Compile("Sign.rn", src, astro.Options{Target: astro.SSR})

	if len(out.Errors) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", out.Errors)
	}
	for _, want := range []string{
		"$.ssrComponent($option => {",
		"if (x > 0) {",
		"$parent += `",
		"<b>pos</b>",
		"} else {",
		"<i>np</i>",
	} {
		if !strings.Contains(out.Result.JS, want) {
			t.Errorf("Compile().Result.JS missing %q in:\n%s", want, out.Result.JS)
		}
	}
}

func TestCompile_ScopedStyleThisSelector(t *testing.T) {
	// §4.4's special `this` selector must land on the root element as a
	// class, not leak into the generated stylesheet's rename table.
	src := `<div>hi</div>
<style>
.this { color: red; }
</style>
`
	s := New()
	out := s.Compile("Box.rn", src, astro.Options{Target: astro.CSR})

	if len(out.Errors) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", out.Errors)
	}
	if !strings.Contains(out.Result.JS, `class="`) {
		t.Errorf("Compile().Result.JS missing root class attribute:\n%s", out.Result.JS)
	}
	if !strings.Contains(out.Result.JS, "$.style(") {
		t.Errorf("Compile().Result.JS missing inline style injection:\n%s", out.Result.JS)
	}
}

func TestCompile_ExternalStyle_OmitsInlineInjection(t *testing.T) {
	src := `<div class="box">hi</div>
<style>
.box { color: blue; }
</style>
`
	s := New()
	out := s.Compile("Box.rn", src, astro.Options{
		Target: astro.CSR,
		CSS:    astro.CSSOptions{Compile: astro.CSSExternal},
	})

	if strings.Contains(out.Result.JS, "$.style(") {
		t.Errorf("external mode should omit inline style call:\n%s", out.Result.JS)
	}
	if out.Result.CSS == "" {
		t.Errorf("external mode should return the stylesheet in Result.CSS")
	}
}

func TestCompile_CacheMemory_ReusesResultForUnchangedSource(t *testing.T) {
	src := `<p>{1 + 1}</p>`
	s := New()
	opts := astro.Options{Target: astro.CSR, CacheMemory: true}

	first := s.Compile("Static.rn", src, opts)
	second := s.Compile("Static.rn", src, opts)

	if first.Result.JS != second.Result.JS {
		t.Errorf("cached recompile produced different output:\nfirst:  %q\nsecond: %q", first.Result.JS, second.Result.JS)
	}
}

func TestCompile_CacheMemory_RecompilesOnChange(t *testing.T) {
	s := New()
	opts := astro.Options{Target: astro.CSR, CacheMemory: true}

	s.Compile("Changing.rn", `<p>{1 + 1}</p>`, opts)
	out := s.Compile("Changing.rn", `<p>{2 + 2}</p>`, opts)

	if !strings.Contains(out.Result.JS, "2 + 2") {
		t.Errorf("expected recompiled output to reflect the new source:\n%s", out.Result.JS)
	}
}

func TestCompile_EachFileInjectsOwnScopedStyle(t *testing.T) {
	s := New()
	opts := astro.Options{Target: astro.CSR}

	a := s.Compile("A.rn", `<div class="shared">a</div><style>.shared{color:red}</style>`, opts)
	b := s.Compile("B.rn", `<div class="shared">b</div><style>.shared{color:red}</style>`, opts)

	if len(a.Errors) != 0 || len(b.Errors) != 0 {
		t.Fatalf("unexpected diagnostics: %+v / %+v", a.Errors, b.Errors)
	}
	// Same component name was never given, so each file's own table
	// seeds the hash differently; both are still expected to compile and
	// to inject their own scoped stylesheet.
	if !strings.Contains(a.Result.JS, "$.style(") || !strings.Contains(b.Result.JS, "$.style(") {
		t.Errorf("expected both files to carry an injected style call")
	}
}

func TestCompile_PropsDestructuredFromExportLet(t *testing.T) {
	src := `<script>
export let name = "world";
</script>
<p>hi {name}</p>
`
	s := New()
	out := s.Compile("Greeting.rn", src, astro.Options{Target: astro.CSR})

	assert.Assert(t, strings.Contains(out.Result.JS, "let {name} = ($option.props || {});"),
		"Compile().Result.JS missing props destructuring:\n%s", out.Result.JS)
}

func TestCompile_JSONRoundTrip(t *testing.T) {
	s := New()
	out := s.Compile("Plain.rn", `<p>{1 + 1}</p>`, astro.Options{Target: astro.CSR})

	data, err := EncodeJSON(out)
	assert.NilError(t, err)

	roundTripped, err := DecodeJSON(data)
	assert.NilError(t, err)
	assert.Equal(t, roundTripped.Result.JS, out.Result.JS)
	assert.Equal(t, len(roundTripped.Errors), len(out.Errors))
}

func TestCompile_SSRMatchesCSRControlFlow(t *testing.T) {
	// Regression coverage for the ssr `$parent +=` bug found while
	// wiring the printer package: both targets must describe the same
	// if/else branches, just emitted through different runtime calls.
	src := `{#if x > 0} <b>pos</b> {:else} <i>np</i> {/if}`
	s := New()

	csr := s.Compile("SignCSR.rn", src, astro.Options{Target: astro.CSR})
	ssr := s.Compile("SignSSR.rn", src, astro.Options{Target: astro.SSR})

	if !strings.Contains(csr.Result.JS, "$.ifBlock(") {
		diff := testutil.UnifiedDiff(t, "csr", "ssr", csr.Result.JS, ssr.Result.JS)
		t.Fatalf("csr output missing $.ifBlock call:\n%s", diff)
	}
	if !strings.Contains(ssr.Result.JS, "if (x > 0) {") {
		diff := testutil.UnifiedDiff(t, "csr", "ssr", csr.Result.JS, ssr.Result.JS)
		t.Fatalf("ssr output missing if-statement lowering:\n%s", diff)
	}
}
