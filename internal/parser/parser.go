// Package parser implements C2: it turns single-file-component source text
// into the internal.Node document tree. It is a hand-written
// recursive-descent scanner over the raw bytes, in the spirit of the
// teacher's internal.Tokenizer (itself a fork of golang.org/x/net/html's
// tokenizer) but simplified to a single forward cursor, since renit-go's
// markup grammar layers expression interpolation and block syntax on top
// of HTML rather than reusing HTML5's full tokenizer state machine.
//
// Recovery posture matches §7: a malformed tag, an unclosed brace, or an
// unmatched bracket is recorded via the Handler and parsing continues with
// a best-effort node.
package parser

import (
	"strings"

	astro "github.com/kodla-dev/renit-sub000/internal"
	"github.com/kodla-dev/renit-sub000/internal/handler"
	"github.com/kodla-dev/renit-sub000/internal/loc"
	"github.com/kodla-dev/renit-sub000/internal/source"
	a "golang.org/x/net/html/atom"
)

// Section 12.1.2 "Elements" of the HTML spec: elements that can't have content.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// blockTags is the closed set of non-standard control tags from §4.2. The
// concrete authored syntax wraps them in `{#tag}`/`{:tag}`/`{/tag}`
// delimiters (`{#each}` is accepted as an alias for `for`, matching the
// spelling used in §8 scenario C).
var blockTags = map[string]bool{"if": true, "elseif": true, "else": true, "for": true}

func normalizeBlockTag(name string) string {
	if name == "each" {
		return "for"
	}
	return name
}

type Parser struct {
	file *source.File
	h    *handler.Handler
	src  string
	pos  int
}

func New(file *source.File, h *handler.Handler) *Parser {
	return &Parser{file: file, h: h, src: file.Code, pos: 0}
}

// Parse consumes the whole source and returns the Document root.
func Parse(file *source.File, h *handler.Handler) *astro.Node {
	p := New(file, h)
	return p.parseDocument()
}

func (p *Parser) errorf(code loc.DiagnosticCode, at int, text string) {
	p.h.AppendError(&loc.ErrorWithRange{
		Code: code,
		Text: text,
		Range: loc.Range{Loc: loc.Loc{Start: at}},
	})
}

func (p *Parser) warnf(code loc.DiagnosticCode, at int, text string) {
	p.h.AppendWarning(&loc.ErrorWithRange{
		Code: code,
		Text: text,
		Range: loc.Range{Loc: loc.Loc{Start: at}},
	})
}

func (p *Parser) eof() bool { return p.pos >= len(p.src) }

func (p *Parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *Parser) peekAt(n int) byte {
	if p.pos+n >= len(p.src) {
		return 0
	}
	return p.src[p.pos+n]
}

func (p *Parser) hasPrefix(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *Parser) parseDocument() *astro.Node {
	doc := &astro.Node{Type: astro.DocumentNode}
	p.parseChildren(doc, "")

	visible := 0
	hasGhost := false
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if isGhost(c) {
			hasGhost = true
		}
		if isMarkupVisible(c) {
			visible++
		}
	}
	if visible > 1 || hasGhost {
		wrapInSyntheticDiv(doc)
	}
	return doc
}

func isGhost(n *astro.Node) bool {
	switch n.Type {
	case astro.IfNode, astro.ForNode:
		return true
	case astro.TextNode:
		return len(strings.TrimSpace(n.Data)) > 0
	}
	return false
}

func isMarkupVisible(n *astro.Node) bool {
	switch n.Type {
	case astro.ElementNode, astro.ComponentNode, astro.IfNode, astro.ForNode:
		return true
	case astro.TextNode:
		return len(strings.TrimSpace(n.Data)) > 0
	}
	return false
}

func wrapInSyntheticDiv(doc *astro.Node) {
	div := &astro.Node{Type: astro.ElementNode, Data: "div", DataAtom: a.Div}
	children := make([]*astro.Node, 0)
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == astro.ScriptNode || c.Type == astro.StyleNode {
			continue
		}
		children = append(children, c)
	}
	for _, c := range children {
		doc.RemoveChild(c)
		c.PrevSibling, c.NextSibling, c.Parent = nil, nil, nil
		div.AppendChild(c)
	}
	doc.AppendChild(div)
}

// parseChildren parses nodes until EOF or, when closeTag is non-empty,
// until the matching `</closeTag>` or `{/closeTag}` is consumed.
func (p *Parser) parseChildren(parent *astro.Node, closeTag string) {
	for !p.eof() {
		if closeTag != "" && p.atCloseFor(closeTag) {
			p.consumeCloseFor(closeTag)
			return
		}
		if closeTag != "" && (p.atBlockContinuation()) {
			return
		}
		switch {
		case p.hasPrefix("<!--"):
			p.parseComment(parent)
		case p.hasPrefix("<"):
			p.parseTagOpen(parent)
		case p.hasPrefix("{"):
			p.parseBraceRegion(parent)
		default:
			p.parseText(parent)
		}
	}
}

func (p *Parser) atCloseFor(tag string) bool {
	return p.hasPrefix("</"+tag) || p.hasPrefix("{/"+tag+"}")
}

func (p *Parser) atBlockContinuation() bool {
	return p.hasPrefix("{:elseif") || p.hasPrefix("{:else}") || p.hasPrefix("{:else ")
}

func (p *Parser) consumeCloseFor(tag string) {
	if p.hasPrefix("</" + tag) {
		end := strings.IndexByte(p.src[p.pos:], '>')
		if end == -1 {
			p.pos = len(p.src)
			return
		}
		p.pos += end + 1
		return
	}
	// {/tag}
	p.pos += len("{/" + tag + "}")
}

func (p *Parser) parseText(parent *astro.Node) {
	start := p.pos
	for !p.eof() {
		if p.hasPrefix("<") || p.hasPrefix("{") {
			break
		}
		p.pos++
	}
	if p.pos > start {
		parent.AppendChild(&astro.Node{
			Type: astro.TextNode,
			Data: p.src[start:p.pos],
			Loc:  []loc.Loc{{Start: start}},
		})
	}
}

func (p *Parser) parseComment(parent *astro.Node) {
	start := p.pos
	p.pos += len("<!--")
	end := strings.Index(p.src[p.pos:], "-->")
	if end == -1 {
		p.warnf(loc.WARNING_UNCLOSED_COMMENT, start, "unterminated HTML comment")
		parent.AppendChild(&astro.Node{Type: astro.CommentNode, Data: p.src[p.pos:], Loc: []loc.Loc{{Start: start}}})
		p.pos = len(p.src)
		return
	}
	data := p.src[p.pos : p.pos+end]
	parent.AppendChild(&astro.Node{Type: astro.CommentNode, Data: data, Loc: []loc.Loc{{Start: start}}})
	p.pos += end + len("-->")
}

// findMatchingBrace returns the index (relative to p.src) just past the
// closing `}` that matches the `{` at open, respecting nested braces and
// quoted strings so that `{ {nested} }` and `{ "}" }` both work.
func findMatchingBrace(src string, open int) int {
	depth := 0
	i := open
	var quote byte
	for i < len(src) {
		c := src[i]
		if quote != 0 {
			if c == '\\' {
				i += 2
				continue
			}
			if c == quote {
				quote = 0
			}
			i++
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
		i++
	}
	return -1
}
