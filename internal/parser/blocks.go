package parser

import (
	"strings"

	astro "github.com/kodla-dev/renit-sub000/internal"
	"github.com/kodla-dev/renit-sub000/internal/loc"
)

// parseBraceRegion handles every construct that opens with `{`: control
// blocks (`{#if}`, `{#for}`), and plain expression interpolation (`{expr}`).
func (p *Parser) parseBraceRegion(parent *astro.Node) {
	if p.hasPrefix("{#if") || p.hasPrefix("{#if}") {
		p.parseIfBlock(parent)
		return
	}
	if p.hasPrefix("{#for") || p.hasPrefix("{#each") {
		p.parseForBlock(parent)
		return
	}
	p.parseExpressionNode(parent)
}

// parseBlockHeader parses `{#tag value}` or `{:tag value}`, returning the
// tag name (normalized) and the trimmed value expression text.
func (p *Parser) parseBlockHeader(sigil byte) (tag, value string) {
	start := p.pos
	end := findMatchingBrace(p.src, p.pos)
	if end == -1 {
		p.errorf(loc.ERROR_UNCLOSED_EXPRESSION, start, "unterminated block tag")
		p.pos = len(p.src)
		return "", ""
	}
	inner := p.src[p.pos+2 : end-1] // strip `{#` / `{:` and trailing `}`
	p.pos = end
	inner = strings.TrimSpace(inner)
	fields := strings.SplitN(inner, " ", 2)
	tag = normalizeBlockTag(fields[0])
	if len(fields) > 1 {
		value = strings.TrimSpace(fields[1])
	}
	return tag, value
}

func (p *Parser) parseIfBlock(parent *astro.Node) {
	_, cond := p.parseBlockHeader('#')
	ifNode := &astro.Node{Type: astro.IfNode, Condition: cond, Data: "if"}
	p.parseChildren(ifNode, "if")
	parent.AppendChild(ifNode)

	cur := ifNode
	for p.hasPrefix("{:elseif") {
		_, cond := p.parseBlockHeader(':')
		branch := &astro.Node{Type: astro.ElseIfNode, Condition: cond, Data: "elseif"}
		p.parseChildren(branch, "if")
		parent.AppendChild(branch)
		cur = branch
	}
	_ = cur
	if p.hasPrefix("{:else}") {
		p.pos += len("{:else}")
		elseNode := &astro.Node{Type: astro.ElseNode, Data: "else"}
		p.parseChildren(elseNode, "if")
		parent.AppendChild(elseNode)
	} else if p.hasPrefix("{:else ") {
		// `{:else if ...}` sugar is out of scope; treat the remainder as a
		// plain else branch, consuming through the next `}`.
		end := strings.IndexByte(p.src[p.pos:], '}')
		if end != -1 {
			p.pos += end + 1
		}
		elseNode := &astro.Node{Type: astro.ElseNode, Data: "else"}
		p.parseChildren(elseNode, "if")
		parent.AppendChild(elseNode)
	}
}

func (p *Parser) parseForBlock(parent *astro.Node) {
	closer := "for"
	if p.hasPrefix("{#each") {
		closer = "each"
	}
	_, value := p.parseBlockHeader('#')
	forNode := &astro.Node{Type: astro.ForNode, Data: "for"}
	parseForHeader(forNode, value)
	p.parseChildren(forNode, closer)
	parent.AppendChild(forNode)
}

// parseForHeader decodes `items as item, i (item.id)` / `items as {a,b} (a)`.
func parseForHeader(n *astro.Node, value string) {
	rest := value
	if idx := strings.Index(rest, "("); idx != -1 && strings.HasSuffix(strings.TrimSpace(rest), ")") {
		keyPart := strings.TrimSpace(rest[idx+1:])
		keyPart = strings.TrimSuffix(keyPart, ")")
		n.ForKey = strings.TrimSpace(keyPart)
		rest = strings.TrimSpace(rest[:idx])
	}
	asIdx := strings.Index(rest, " as ")
	if asIdx == -1 {
		n.ForValue = strings.TrimSpace(rest)
		return
	}
	n.ForValue = strings.TrimSpace(rest[:asIdx])
	binding := strings.TrimSpace(rest[asIdx+len(" as "):])
	parts := strings.SplitN(binding, ",", 2)
	name := strings.TrimSpace(parts[0])
	if strings.HasPrefix(name, "{") && strings.HasSuffix(name, "}") {
		inner := strings.TrimSuffix(strings.TrimPrefix(name, "{"), "}")
		for _, field := range strings.Split(inner, ",") {
			f := strings.TrimSpace(field)
			if f != "" {
				n.ForComputed = append(n.ForComputed, f)
			}
		}
	} else {
		n.ForAsName = name
	}
	if len(parts) > 1 {
		n.ForIndex = strings.TrimSpace(parts[1])
	}
}

// parseExpressionNode handles a bare `{expr}` interpolation, recognizing
// the leading directive tags from §4.2: `@html `, `>`, `=`, `*`.
func (p *Parser) parseExpressionNode(parent *astro.Node) {
	start := p.pos
	end := findMatchingBrace(p.src, p.pos)
	if end == -1 {
		p.errorf(loc.ERROR_UNCLOSED_EXPRESSION, start, "unterminated expression")
		p.pos = len(p.src)
		return
	}
	inner := p.src[p.pos+1 : end-1]
	p.pos = end

	directive := astro.NoDirective
	content := inner
	switch {
	case strings.HasPrefix(inner, "@html "):
		directive = astro.HTMLDirective
		content = inner[len("@html "):]
	case strings.HasPrefix(inner, ">"):
		directive = astro.StaticDirective
		content = inner[1:]
	case strings.HasPrefix(inner, "="):
		directive = astro.LiteralDirective
		content = inner[1:]
	case strings.HasPrefix(inner, "*"):
		directive = astro.DynamicDirective
		content = inner[1:]
	}

	expr := &astro.Node{
		Type:       astro.TextNode,
		Data:       strings.TrimSpace(content),
		Loc:        []loc.Loc{{Start: start}},
		Expression: true,
		Directive:  directive,
	}
	parent.AppendChild(expr)
}
