package parser

import (
	"strings"

	astro "github.com/kodla-dev/renit-sub000/internal"
	"github.com/kodla-dev/renit-sub000/internal/loc"
	a "golang.org/x/net/html/atom"
)

func isNameByte(c byte) bool {
	return c != 0 && c != ' ' && c != '\t' && c != '\n' && c != '\r' &&
		c != '/' && c != '>' && c != '=' && c != '"' && c != '\''
}

func (p *Parser) skipWhitespace() {
	for !p.eof() {
		c := p.peek()
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			p.pos++
			continue
		}
		break
	}
}

// parseTagOpen parses a start tag, end tag, or a self-closing element
// beginning at `<`. Component tags are distinguished from HTML elements by
// a leading uppercase letter or a `.` in the name (namespaced import use),
// matching common SFC-framework convention.
func (p *Parser) parseTagOpen(parent *astro.Node) {
	start := p.pos
	if p.peekAt(1) == '/' {
		// Stray end tag with no matching open recorded by our caller;
		// best-effort: skip it.
		end := strings.IndexByte(p.src[p.pos:], '>')
		if end == -1 {
			p.pos = len(p.src)
			return
		}
		p.warnf(loc.WARNING_UNCLOSED_COMMENT, start, "unexpected closing tag")
		p.pos += end + 1
		return
	}

	p.pos++ // consume '<'
	nameStart := p.pos
	for !p.eof() && isNameByte(p.peek()) {
		p.pos++
	}
	name := p.src[nameStart:p.pos]
	if name == "" {
		p.errorf(loc.ERROR_UNCLOSED_TAG, start, "malformed tag")
		p.pos = start + 1
		return
	}

	isComponent := len(name) > 0 && (isUpper(name[0]) || strings.Contains(name, "."))

	n := &astro.Node{Data: name, Loc: []loc.Loc{{Start: start}}}
	if isComponent {
		n.Type = astro.ComponentNode
	} else {
		n.Type = astro.ElementNode
		n.DataAtom = a.Lookup([]byte(strings.ToLower(name)))
	}

	selfClosing := p.parseAttributes(n)

	isVoid := voidElements[strings.ToLower(name)]
	if isVoid {
		n.VoidElement = true
	}

	parent.AppendChild(n)

	if selfClosing || isVoid {
		return
	}

	if n.DataAtom == a.Script {
		p.parseRawText(n, "script")
		return
	}
	if n.DataAtom == a.Style {
		p.parseRawText(n, "style")
		return
	}

	p.parseChildren(n, name)
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

// parseAttributes consumes attributes until `>` or `/>`, returning true if
// the tag was self-closed.
func (p *Parser) parseAttributes(n *astro.Node) (selfClosing bool) {
	for {
		p.skipWhitespace()
		if p.eof() {
			p.errorf(loc.ERROR_UNCLOSED_TAG, p.pos, "unclosed tag")
			return false
		}
		if p.hasPrefix("/>") {
			p.pos += 2
			return true
		}
		if p.peek() == '>' {
			p.pos++
			return false
		}
		p.parseOneAttribute(n)
	}
}

func (p *Parser) parseOneAttribute(n *astro.Node) {
	start := p.pos

	// Spread: {...expr}
	if p.hasPrefix("{...") {
		end := findMatchingBrace(p.src, p.pos)
		if end == -1 {
			p.errorf(loc.ERROR_UNCLOSED_EXPRESSION, start, "unterminated spread attribute")
			p.pos = len(p.src)
			return
		}
		expr := strings.TrimSpace(p.src[p.pos+4 : end-1])
		n.Attr = append(n.Attr, astro.Attribute{Kind: astro.PlainAttribute, Key: "...", Val: expr, KeyLoc: loc.Loc{Start: start}})
		p.pos = end
		return
	}

	// Shorthand: {name}
	if p.peek() == '{' {
		end := findMatchingBrace(p.src, p.pos)
		if end == -1 {
			p.errorf(loc.ERROR_UNCLOSED_EXPRESSION, start, "unterminated shorthand attribute")
			p.pos = len(p.src)
			return
		}
		name := strings.TrimSpace(p.src[p.pos+1 : end-1])
		n.Attr = append(n.Attr, astro.Attribute{Kind: astro.PlainAttribute, Key: name, Val: name, Static: false, KeyLoc: loc.Loc{Start: start}})
		p.pos = end
		return
	}

	// Bracket attributes: [.name], [:name], [=name]
	if p.peek() == '[' {
		end := strings.IndexByte(p.src[p.pos:], ']')
		if end == -1 {
			p.errorf(loc.ERROR_UNMATCHED_BRACKET, start, "unmatched bracket attribute")
			p.pos = len(p.src)
			return
		}
		inner := p.src[p.pos+1 : p.pos+end]
		p.pos += end + 1
		kind := astro.LinkAttribute
		sigil := byte(0)
		if len(inner) > 0 {
			sigil = inner[0]
		}
		switch sigil {
		case '.':
			kind = astro.LinkAttribute
			inner = inner[1:]
		case ':':
			kind = astro.TranslateAttribute
			inner = inner[1:]
		case '=':
			kind = astro.PlainAttribute
			inner = inner[1:]
		}
		val := ""
		if p.peek() == '=' {
			p.pos++
			val = p.parseAttributeRawValue()
		}
		n.Attr = append(n.Attr, astro.Attribute{Kind: kind, Key: inner, Val: val, KeyLoc: loc.Loc{Start: start}})
		return
	}

	var prefix byte
	if c := p.peek(); c == ':' || c == '@' || c == '|' || c == '#' || c == '*' {
		prefix = c
		p.pos++
	}

	nameStart := p.pos
	for !p.eof() && isNameByte(p.peek()) && !(prefix != 0 && p.peek() == '.') {
		p.pos++
	}
	name := p.src[nameStart:p.pos]
	if name == "" {
		// Nothing recognizable; skip one byte to make progress.
		p.errorf(loc.ERROR_UNCLOSED_TAG, start, "malformed attribute")
		p.pos++
		return
	}

	var suffixes []astro.Suffix
	for p.peek() == '.' {
		p.pos++
		sufStart := p.pos
		for !p.eof() && isNameByte(p.peek()) && p.peek() != '.' {
			p.pos++
		}
		suffixes = append(suffixes, astro.Suffix{Name: p.src[sufStart:p.pos]})
	}

	kind := astro.PlainAttribute
	switch prefix {
	case ':':
		kind = astro.BindAttribute
	case '@':
		kind = astro.EventAttribute
	case '|':
		kind = astro.ModifierAttribute
	case '#':
		kind = astro.RefAttribute
	case '*':
		kind = astro.ActionAttribute
	}

	attr := astro.Attribute{Kind: kind, Prefix: prefix, Key: name, Suffix: suffixes, KeyLoc: loc.Loc{Start: nameStart}}

	p.skipWhitespace()
	if p.peek() == '=' {
		p.pos++
		p.skipWhitespace()
		valStart := p.pos
		if p.peek() == '{' {
			end := findMatchingBrace(p.src, p.pos)
			if end == -1 {
				p.errorf(loc.ERROR_UNCLOSED_EXPRESSION, valStart, "unterminated attribute expression")
				p.pos = len(p.src)
				n.Attr = append(n.Attr, attr)
				return
			}
			attr.Val = strings.TrimSpace(p.src[p.pos+1 : end-1])
			attr.Pieces = []astro.ValuePiece{{Kind: astro.ExpressionPiece, Data: attr.Val}}
			attr.ValLoc = loc.Loc{Start: valStart}
			p.pos = end
		} else {
			raw := p.parseAttributeRawValue()
			attr.Val = raw
			attr.ValLoc = loc.Loc{Start: valStart}
			attr.Pieces, attr.Static = splitValuePieces(raw)
		}
	} else {
		attr.Pieces = nil
	}

	n.Attr = append(n.Attr, attr)
}

// parseAttributeRawValue reads a quoted or bare attribute value and
// returns its unescaped text.
func (p *Parser) parseAttributeRawValue() string {
	if p.peek() == '"' || p.peek() == '\'' {
		quote := p.peek()
		p.pos++
		start := p.pos
		for !p.eof() && p.peek() != quote {
			p.pos++
		}
		val := p.src[start:p.pos]
		if !p.eof() {
			p.pos++ // consume closing quote
		}
		return val
	}
	start := p.pos
	for !p.eof() && isNameByte(p.peek()) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// splitValuePieces splits an attribute/text value into alternating string
// and `{expr}` pieces per §4.2, reporting whether every piece is a literal.
func splitValuePieces(raw string) ([]astro.ValuePiece, bool) {
	var pieces []astro.ValuePiece
	static := true
	i := 0
	for i < len(raw) {
		brace := strings.IndexByte(raw[i:], '{')
		if brace == -1 {
			pieces = append(pieces, astro.ValuePiece{Kind: astro.StringPiece, Data: raw[i:]})
			break
		}
		brace += i
		if brace > i {
			pieces = append(pieces, astro.ValuePiece{Kind: astro.StringPiece, Data: raw[i:brace]})
		}
		end := findMatchingBrace(raw, brace)
		if end == -1 {
			pieces = append(pieces, astro.ValuePiece{Kind: astro.StringPiece, Data: raw[brace:]})
			break
		}
		inner := raw[brace+1 : end-1]
		static = false
		pieces = append(pieces, astro.ValuePiece{Kind: astro.ExpressionPiece, Data: strings.TrimSpace(inner)})
		i = end
	}
	if len(pieces) == 0 {
		pieces = append(pieces, astro.ValuePiece{Kind: astro.StringPiece, Data: ""})
	}
	return pieces, static
}

func (p *Parser) parseRawText(n *astro.Node, closeTag string) {
	closer := "</" + closeTag
	idx := strings.Index(p.src[p.pos:], closer)
	var body string
	if idx == -1 {
		p.warnf(loc.WARNING_UNCLOSED_COMMENT, p.pos, "unterminated <"+closeTag+">")
		body = p.src[p.pos:]
		p.pos = len(p.src)
	} else {
		body = p.src[p.pos : p.pos+idx]
		p.pos += idx
		end := strings.IndexByte(p.src[p.pos:], '>')
		if end == -1 {
			p.pos = len(p.src)
		} else {
			p.pos += end + 1
		}
	}
	kind := astro.ScriptNode
	if closeTag == "style" {
		kind = astro.StyleNode
	}
	n.Type = kind
	n.AppendChild(&astro.Node{Type: astro.TextNode, Data: body})
}
