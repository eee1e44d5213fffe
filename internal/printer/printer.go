// Package printer implements C8 (csr) and C9 (ssr): given a fully
// compiled Component (§4.6's Figure/Spot IR, built by C7), it produces
// the component's final JS source text. Both emitters share the
// teacher's output + print(text) accumulator idiom (internal/printer/
// printer.go in the teacher; here the output is a strings.Builder
// rather than a []byte), stripped of the
// teacher's sourcemap.ChunkBuilder field since source maps are an
// explicit spec.md Non-goal.
package printer

import (
	"fmt"
	"strings"

	"github.com/kodla-dev/renit-sub000/internal/ir"
)

// RuntimeModule is the import specifier emitted code loads the runtime
// API from (§6). The runtime itself is an external collaborator this
// compiler never implements — only its contractual call shapes are
// referenced as string templates.
const RuntimeModule = "renit/runtime"

type printer struct {
	output strings.Builder
}

func (p *printer) print(text string) { p.output.WriteString(text) }

func (p *printer) printf(format string, a ...any) {
	fmt.Fprintf(&p.output, format, a...)
}

func (p *printer) println(text string) {
	p.output.WriteString(text)
	p.output.WriteByte('\n')
}

// eventGuards and other leaf-level templates live on the Spot types
// themselves (internal/ir); the printer only assembles the enclosing
// component factory and drives top-level reference/style/prop wiring.

func backtick(s string) string { return ir.Backtick(s) }
