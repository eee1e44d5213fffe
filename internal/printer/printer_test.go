package printer_test

import (
	"strings"
	"testing"

	astro "github.com/kodla-dev/renit-sub000/internal"
	"github.com/kodla-dev/renit-sub000/internal/compiler"
	"github.com/kodla-dev/renit-sub000/internal/handler"
	"github.com/kodla-dev/renit-sub000/internal/ir"
	"github.com/kodla-dev/renit-sub000/internal/parser"
	"github.com/kodla-dev/renit-sub000/internal/printer"
	"github.com/kodla-dev/renit-sub000/internal/source"
)

func build(t *testing.T, src string, target astro.Target, script string, updatedDeps ...string) *ir.Component {
	t.Helper()
	file := source.New("test.rn", src)
	h := handler.New(file)
	doc := parser.Parse(file, h)
	if h.HasErrors() {
		t.Fatalf("parse errors for %q", src)
	}
	opts := astro.Options{Target: target, Component: astro.ComponentOptions{Name: "Test"}}
	comp := ir.NewComponent("Test", string(target))
	comp.UpdatedDependencies.AddAll(updatedDeps)
	comp.ScriptStatement = script
	d := compiler.New(opts, h)
	d.Compile(comp, doc, "", "")
	return comp
}

func TestReactiveCounter_CSR(t *testing.T) {
	// Scenario A.
	comp := build(t, `<button @click="inc()">{count}</button>`, astro.CSR,
		"let count = 0; function inc(){ count++;\n$u(); }", "count")

	got := printer.PrintCSR(comp, printer.CSROptions{})

	for _, want := range []string{
		"$.component($option => {",
		"const $u = $.update();",
		"let count = 0;",
		"$u();",
		`$.event($0, "click", () => inc())`,
		"$.text($1, () => (count))",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("PrintCSR() missing %q in:\n%s", want, got)
		}
	}
}

func TestConditional_SSR(t *testing.T) {
	// Scenario B.
	comp := build(t, `{#if x > 0} <b>pos</b> {:else} <i>np</i> {/if}`, astro.SSR, "")

	got := printer.PrintSSR(comp, printer.SSROptions{})

	for _, want := range []string{
		"$.ssrComponent($option => {",
		"let $parent",
		"if (x > 0) {",
		"$parent += `",
		"<b>pos</b>",
		"} else {",
		"<i>np</i>",
		"return $parent;",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("PrintSSR() missing %q in:\n%s", want, got)
		}
	}
}

func TestKeyedFor_CSR(t *testing.T) {
	// Scenario C.
	comp := build(t, `<ul>{#each items as item (item.id)}<li>{item.name}</li>{/each}</ul>`, astro.CSR, "")

	got := printer.PrintCSR(comp, printer.CSROptions{})
	for _, want := range []string{
		"$.forBlock(",
		"item.id",
		"$.text(",
		"item.name",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("PrintCSR() missing %q in:\n%s", want, got)
		}
	}
}

func TestScopedStyle_Injected(t *testing.T) {
	// Scenario D.
	comp := build(t, `<div class="H">hi</div>`, astro.CSR, "")
	comp.Style = ".H{color:red}"

	got := printer.PrintCSR(comp, printer.CSROptions{StyleHash: "abc123"})
	if !strings.Contains(got, `$.style("abc123", `) || !strings.Contains(got, ".H{color:red}") {
		t.Errorf("PrintCSR() missing injected style call:\n%s", got)
	}
}

func TestScopedStyle_External(t *testing.T) {
	comp := build(t, `<div class="H">hi</div>`, astro.CSR, "")
	comp.Style = ".H{color:red}"

	got := printer.PrintCSR(comp, printer.CSROptions{StyleHash: "abc123", External: true})
	if strings.Contains(got, "$.style(") {
		t.Errorf("PrintCSR() should omit inline style call in external mode:\n%s", got)
	}
}

func TestReferenceContiguity(t *testing.T) {
	comp := build(t, `<div><span>{a}</span><span>{b}</span></div>`, astro.CSR, "")

	got := printer.PrintCSR(comp, printer.CSROptions{})
	n := comp.ReferenceCount()
	names := make([]string, n)
	for i := range names {
		names[i] = "$el" + string(rune('0'+i))
	}
	want := "let [" + strings.Join(names, ", ") + "] = $.reference($parent);"
	if !strings.Contains(got, want) {
		t.Errorf("PrintCSR() = %q, want reference binding %q", got, want)
	}
}

func TestSlotFallback_SSR(t *testing.T) {
	// Scenario F, ssr path.
	comp := build(t, `<X><b slot="title">T</b></X>`, astro.SSR, "")

	got := printer.PrintSSR(comp, printer.SSROptions{})
	if !strings.Contains(got, `X.ssr(`) {
		t.Errorf("PrintSSR() missing ssr component call:\n%s", got)
	}
	if !strings.Contains(got, "<b>") || !strings.Contains(got, "T</b>") {
		t.Errorf("PrintSSR() missing slot markup:\n%s", got)
	}
}
