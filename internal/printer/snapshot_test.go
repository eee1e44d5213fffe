package printer_test

import (
	"testing"

	astro "github.com/kodla-dev/renit-sub000/internal"
	"github.com/kodla-dev/renit-sub000/internal/printer"
	"github.com/kodla-dev/renit-sub000/internal/testutil"
)

func snapshotCSR(t *testing.T, name, src, script string, updatedDeps ...string) {
	t.Helper()
	comp := build(t, src, astro.CSR, script, updatedDeps...)
	out := printer.PrintCSR(comp, printer.CSROptions{StyleHash: "snap0001"})
	testutil.MatchSnapshot(&testutil.SnapshotOptions{
		Testing:      t,
		TestCaseName: name,
		Input:        src,
		Output:       out,
		Kind:         testutil.JSOutput,
	})
}

func snapshotSSR(t *testing.T, name, src, script string, updatedDeps ...string) {
	t.Helper()
	comp := build(t, src, astro.SSR, script, updatedDeps...)
	out := printer.PrintSSR(comp, printer.SSROptions{StyleHash: "snap0001"})
	testutil.MatchSnapshot(&testutil.SnapshotOptions{
		Testing:      t,
		TestCaseName: name,
		Input:        src,
		Output:       out,
		Kind:         testutil.JSOutput,
	})
}

func TestSnapshot_ReactiveCounter_CSR(t *testing.T) {
	snapshotCSR(t, "ReactiveCounter_CSR",
		`<button @click="inc()">{count}</button>`,
		"let count = 0; function inc(){ count++;\n$u(); }", "count")
}

func TestSnapshot_Conditional_SSR(t *testing.T) {
	snapshotSSR(t, "Conditional_SSR",
		`{#if x > 0} <b>pos</b> {:else} <i>np</i> {/if}`, "")
}

func TestSnapshot_KeyedFor_CSR(t *testing.T) {
	snapshotCSR(t, "KeyedFor_CSR",
		`<ul>{#each items as item (item.id)}<li>{item.name}</li>{/each}</ul>`, "")
}
