package printer

import (
	"strings"

	"github.com/kodla-dev/renit-sub000/internal/ir"
)

// SSROptions mirrors CSROptions for the string-building target.
type SSROptions struct {
	StyleHash string
	External  bool
}

// PrintSSR emits the ssr component factory described in §4.9: a single
// growing $parent string, with static skeleton segments and spot output
// interleaved in document order via the BlockSpot markers C7 inserted.
func PrintSSR(c *ir.Component, opts SSROptions) string {
	p := &printer{}
	p.printf("export const %s = $.ssrComponent($option => {\n", c.Name)

	if len(c.Props) > 0 {
		p.printf("let {%s} = ($option.props || {});\n", strings.Join(c.Props, ", "))
	}
	if c.ScriptStatement != "" {
		p.println(c.ScriptStatement)
	}

	blocks := c.Blocks()
	p.printf("let $parent = %s;\n", backtick(blocks[0]))

	blockIdx := 0
	for _, s := range c.Spots() {
		if bs, ok := s.(*ir.BlockSpot); ok {
			blockIdx = bs.Index + 1
			if blockIdx < len(blocks) && blocks[blockIdx] != "" {
				p.printf("$parent += %s;\n", backtick(blocks[blockIdx]))
			}
			continue
		}
		out := s.Generate(c)
		if out == "" {
			continue
		}
		switch s.Kind() {
		case ir.KindIf, ir.KindFor:
			p.println(out)
		default:
			p.printf("$parent += %s;\n", out)
		}
	}

	if c.Style != "" && !opts.External {
		p.printf("$.style(%q, %s);\n", opts.StyleHash, backtick(c.Style))
	}

	p.println("return $parent;")
	p.println("});")
	return p.output.String()
}
