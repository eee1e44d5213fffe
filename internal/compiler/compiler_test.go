package compiler

import (
	"strings"
	"testing"

	astro "github.com/kodla-dev/renit-sub000/internal"
	"github.com/kodla-dev/renit-sub000/internal/handler"
	"github.com/kodla-dev/renit-sub000/internal/ir"
	"github.com/kodla-dev/renit-sub000/internal/parser"
	"github.com/kodla-dev/renit-sub000/internal/source"
)

// compile parses src for the given target and runs it through the
// driver, seeding updatedDeps into the component before the markup walk
// the way the script pass would (§4.3/§4.7 ordering).
func compile(t *testing.T, src string, target astro.Target, updatedDeps ...string) (*ir.Component, *astro.Node) {
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

	d := New(opts, h)
	d.Compile(comp, doc, "", "")
	return comp, doc
}

func firstOf(spots []ir.Spot, kind ir.SpotKind) ir.Spot {
	for _, s := range spots {
		if s.Kind() == kind {
			return s
		}
	}
	return nil
}

func TestReactiveText_CSR(t *testing.T) {
	// Scenario A: a dependency the script marks as updated renders as a
	// reactive text spot rather than a one-time static spot.
	comp, _ := compile(t, `<button @click="inc()">{count}</button>`, astro.CSR, "count")

	if !strings.Contains(comp.Block(), domPlaceholder) {
		t.Fatalf("expected csr skeleton to contain placeholder, got %q", comp.Block())
	}

	attr, _ := firstOf(comp.Spots(), ir.KindAttribute).(*ir.AttributeSpot)
	if attr == nil {
		t.Fatalf("expected an AttributeSpot for the reactive text, spots: %#v", comp.Spots())
	}
	got := attr.Generate(comp)
	want := "$.text($1, () => (count))"
	if got != want {
		t.Errorf("Generate() = %q, want %q", got, want)
	}

	evt, _ := firstOf(comp.Spots(), ir.KindEvent).(*ir.EventSpot)
	if evt == nil {
		t.Fatalf("expected an EventSpot for @click")
	}
	if got := evt.Generate(comp); got != `$.event($0, "click", () => inc())` {
		t.Errorf("event Generate() = %q", got)
	}
}

func TestStaticText_NoReactivity(t *testing.T) {
	comp, _ := compile(t, `<p>{1 + 1}</p>`, astro.CSR)

	s, _ := firstOf(comp.Spots(), ir.KindStatic).(*ir.StaticSpot)
	if s == nil {
		t.Fatalf("expected a StaticSpot, spots: %#v", comp.Spots())
	}
	if got := s.Generate(comp); got != "$.text($1, 1 + 1)" {
		t.Errorf("Generate() = %q", got)
	}
}

func TestConditional_SSR(t *testing.T) {
	// Scenario B.
	comp, _ := compile(t, `{#if x > 0} <b>pos</b> {:else} <i>np</i> {/if}`, astro.SSR)

	ifSpot, _ := firstOf(comp.Spots(), ir.KindIf).(*ir.IfSpot)
	if ifSpot == nil {
		t.Fatalf("expected an IfSpot, spots: %#v", comp.Spots())
	}
	got := ifSpot.Generate(comp)
	if !strings.Contains(got, "if (x > 0) {") || !strings.Contains(got, "<b>pos</b>") {
		t.Errorf("missing if branch in %q", got)
	}
	if !strings.Contains(got, "} else {") || !strings.Contains(got, "<i>np</i>") {
		t.Errorf("missing else branch in %q", got)
	}
}

func TestKeyedFor_CSR(t *testing.T) {
	// Scenario C.
	comp, _ := compile(t, `<ul>{#each items as item (item.id)}<li>{item.name}</li>{/each}</ul>`, astro.CSR)

	forSpot, _ := firstOf(comp.Spots(), ir.KindFor).(*ir.ForSpot)
	if forSpot == nil {
		t.Fatalf("expected a ForSpot, spots: %#v", comp.Spots())
	}
	if forSpot.AsName != "item" || forSpot.Value != "items" || forSpot.Key != "item.id" {
		t.Errorf("unexpected ForSpot fields: %+v", forSpot)
	}
	got := forSpot.Generate(comp)
	if !strings.Contains(got, "$.forBlock(") || !strings.Contains(got, "item.id") {
		t.Errorf("Generate() = %q", got)
	}
}

func TestSlotFallback(t *testing.T) {
	// Scenario F.
	comp, _ := compile(t, `<X><b slot="title">T</b></X>`, astro.CSR)

	cs, _ := firstOf(comp.Spots(), ir.KindComponent).(*ir.ComponentSpot)
	if cs == nil {
		t.Fatalf("expected a ComponentSpot, spots: %#v", comp.Spots())
	}
	if cs.Name != "X" {
		t.Errorf("Name = %q, want X", cs.Name)
	}
	if len(cs.Slots) != 1 || cs.Slots[0].Name != "title" {
		t.Fatalf("expected one named slot \"title\", got %#v", cs.Slots)
	}
	if got := cs.Slots[0].Generate(comp); !strings.Contains(got, "<b>") || !strings.Contains(got, "T</b>") {
		t.Errorf("slot content Generate() = %q", got)
	}
}

func TestSlotDefinitionFallbackContent(t *testing.T) {
	comp, _ := compile(t, `<slot name="title">default</slot>`, astro.CSR)

	slot, _ := firstOf(comp.Spots(), ir.KindSlot).(*ir.SlotSpot)
	if slot == nil {
		t.Fatalf("expected a SlotSpot, spots: %#v", comp.Spots())
	}
	if slot.Name != "title" {
		t.Errorf("Name = %q, want title", slot.Name)
	}
	got := slot.Generate(comp)
	if !strings.Contains(got, `"title"`) {
		t.Errorf("Generate() = %q", got)
	}
}

func TestBindAttribute(t *testing.T) {
	comp, _ := compile(t, `<input :value="name">`, astro.CSR)

	in, _ := firstOf(comp.Spots(), ir.KindInput).(*ir.InputSpot)
	if in == nil {
		t.Fatalf("expected an InputSpot, spots: %#v", comp.Spots())
	}
	if in.Identifier != "name" || in.Getter != "name" {
		t.Errorf("unexpected InputSpot fields: %+v", in)
	}
}

func TestEventModifiers(t *testing.T) {
	comp, _ := compile(t, `<form @submit.prevent.stop="save()">x</form>`, astro.CSR)

	evt, _ := firstOf(comp.Spots(), ir.KindEvent).(*ir.EventSpot)
	if evt == nil {
		t.Fatalf("expected an EventSpot, spots: %#v", comp.Spots())
	}
	got := evt.Generate(comp)
	for _, want := range []string{"event.preventDefault();", "event.stopPropagation();", "save()"} {
		if !strings.Contains(got, want) {
			t.Errorf("Generate() = %q, missing %q", got, want)
		}
	}
}

func TestRefAttribute(t *testing.T) {
	comp, _ := compile(t, `<div #el></div>`, astro.CSR)

	ref, _ := firstOf(comp.Spots(), ir.KindRef).(*ir.RefSpot)
	if ref == nil {
		t.Fatalf("expected a RefSpot, spots: %#v", comp.Spots())
	}
	if ref.Identifier != "el" {
		t.Errorf("Identifier = %q, want el", ref.Identifier)
	}
}

func TestThisSelectorAttachesToRoot(t *testing.T) {
	file := source.New("test.rn", `<div class="x">hi</div>`)
	h := handler.New(file)
	doc := parser.Parse(file, h)

	opts := astro.Options{Target: astro.CSR, Component: astro.ComponentOptions{Name: "Test"}}
	comp := ir.NewComponent("Test", string(astro.CSR))
	d := New(opts, h)
	d.Compile(comp, doc, "abc123", "class")

	if !strings.Contains(comp.Block(), `class="x abc123"`) {
		t.Errorf("Block() = %q, expected merged class attribute", comp.Block())
	}
}
