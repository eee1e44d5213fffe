package printer

import (
	"fmt"
	"strings"

	"github.com/kodla-dev/renit-sub000/internal/ir"
)

// CSROptions carries the handful of emission choices that live outside
// the Component IR itself: the scope hash §4.4's "this"/style-injection
// rule needs, and whether the inline style call is skipped. Whether the
// component is the default export comes from Component.Flags.Default.
type CSROptions struct {
	StyleHash string
	External  bool // css.compile == external: skip the inline $.style(...) call
}

// PrintCSR emits the csr component factory described in §4.8. c must
// already carry the result of the script pass (ScriptStatement,
// UpdatedDependencies, Props, …) and a fully walked skeleton/spot list
// (C7's driver output).
func PrintCSR(c *ir.Component, opts CSROptions) string {
	p := &printer{}
	p.printf("import * as $ from %q;\n\n", RuntimeModule)

	exportKw := "export const"
	if c.Flags.Default {
		exportKw = "export default const"
	}
	p.printf("%s %s = $.component($option => {\n", exportKw, c.Name)

	needsUpdate := c.Flags.HasUpdate || c.UpdatedDependencies.Len() > 0 || len(c.Props) > 0
	if needsUpdate {
		p.println("const $u = $.update();")
	}
	if c.Flags.Current {
		p.println("const $current = $.current;")
	}
	if c.Flags.Context {
		p.println("const $context = $.context;")
	}

	if len(c.Props) > 0 {
		p.printf("let {%s} = ($option.props || {});\n", strings.Join(c.Props, ", "))
		assigns := make([]string, len(c.Props))
		for i, name := range c.Props {
			assigns[i] = fmt.Sprintf("%s=%s", name, name)
		}
		p.printf(
			"$.current.apply = $$props => (({%s} = ($props = $$props)));\n",
			strings.Join(assigns, ", "),
		)
	}

	if c.ScriptStatement != "" {
		p.println(c.ScriptStatement)
	}

	blockFn := "$.block"
	if c.Flags.Embed {
		blockFn = "$.embed"
	}
	p.printf("const $parent = %s(%s);\n", blockFn, backtick(c.Block()))

	if c.Flags.RootEvent {
		p.println("const $rootEvent = $.rootEvent($parent);")
	}

	if n := c.ReferenceCount(); n > 0 {
		names := make([]string, n)
		for i := range names {
			names[i] = fmt.Sprintf("$el%d", i)
		}
		p.printf("let [%s] = $.reference($parent);\n", strings.Join(names, ", "))
	}

	for _, s := range c.Spots() {
		if s.Kind() == ir.KindBlock {
			continue
		}
		if out := s.Generate(c); out != "" {
			p.printf("%s;\n", out)
		}
	}

	if c.Style != "" && !opts.External {
		p.printf("$.style(%q, %s);\n", opts.StyleHash, backtick(c.Style))
	}

	p.println("return $parent;")
	p.println("});")
	return p.output.String()
}
