// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package projection

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse parses a projection expression:
//
//	projection := [ "[" attr ("," attr)* "]" ] "(" node ("," node)* ")"
//	node       := path transform* nodeattr*
//	path       := ident ("." ident | "[" index? "]" | "[*]")*
//	transform  := "." ident "(" arg ("," arg)* ")"
//	nodeattr   := ":" ident ("=" literal)?
func Parse(input string) (*Projection, error) {
	p := &parser{input: input}
	proj := &Projection{}

	p.space()
	hasAttrs := p.peek() == '['
	if hasAttrs {
		if err := p.parseAttrs(&proj.Attrs); err != nil {
			return nil, err
		}
	}
	p.space()
	if p.pos == len(p.input) && hasAttrs {
		// Attribute-only expressions like "[no-undefined]" are valid.
		return proj, nil
	}
	if !p.accept('(') {
		return nil, p.errorf("expected '('")
	}
	if !p.accept(')') {
		for {
			node, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			proj.Nodes = append(proj.Nodes, node)
			p.space()
			if p.accept(',') {
				continue
			}
			break
		}
		if !p.accept(')') {
			return nil, p.errorf("expected ')'")
		}
	}
	p.space()
	if p.pos != len(p.input) {
		return nil, p.errorf("trailing input")
	}
	return proj, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("projection: %s at offset %d in %q", msg, p.pos, p.input)
}

func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) accept(c byte) bool {
	p.space()
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) space() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t' || p.input[p.pos] == '\n') {
		p.pos++
	}
}

func identChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_' || c == '-'
}

func (p *parser) ident() string {
	p.space()
	start := p.pos
	for p.pos < len(p.input) && identChar(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

// literal reads a quoted or bare value. Bare values end at any byte in
// stop; quotes are stripped.
func (p *parser) literal(stop string) (string, error) {
	p.space()
	if q := p.peek(); q == '"' || q == '\'' {
		p.pos++
		start := p.pos
		for p.pos < len(p.input) && p.input[p.pos] != q {
			p.pos++
		}
		if p.pos >= len(p.input) {
			return "", p.errorf("unterminated quote")
		}
		val := p.input[start:p.pos]
		p.pos++
		return val, nil
	}
	start := p.pos
	for p.pos < len(p.input) && !strings.ContainsRune(stop, rune(p.input[p.pos])) {
		p.pos++
	}
	return strings.TrimSpace(p.input[start:p.pos]), nil
}

func (p *parser) parseAttrs(attrs *Attributes) error {
	p.pos++ // consume '['
	for {
		name := p.ident()
		if name == "" {
			return p.errorf("expected attribute name")
		}
		val := ""
		if p.accept('=') {
			var err error
			if val, err = p.literal(",]"); err != nil {
				return err
			}
		}
		switch name {
		case "no-pad":
			attrs.NoPad = true
		case "separator":
			attrs.Separator = val
		case "no-undefined":
			attrs.NoUndefined = true
		case "null":
			attrs.Null = val
		case "private":
			attrs.Private = true
		case "version":
			attrs.Version = val
		default:
			return p.errorf("unknown projection attribute %q", name)
		}
		if p.accept(',') {
			continue
		}
		break
	}
	if !p.accept(']') {
		return p.errorf("expected ']'")
	}
	return nil
}

func (p *parser) parseNode() (*Node, error) {
	node := &Node{}

	name := p.ident()
	if name == "" {
		return nil, p.errorf("expected key path")
	}
	node.Path = append(node.Path, Segment{Key: name})

	// Path continues with .key and [index] segments until a .ident( is
	// seen, which starts the transform chain.
	for {
		p.space()
		switch p.peek() {
		case '[':
			seg, err := p.parseIndex()
			if err != nil {
				return nil, err
			}
			node.Path = append(node.Path, seg)
			continue
		case '.':
			save := p.pos
			p.pos++
			name := p.ident()
			if name == "" {
				return nil, p.errorf("expected key or transform after '.'")
			}
			if p.peek() == '(' {
				p.pos = save
			} else {
				node.Path = append(node.Path, Segment{Key: name})
				continue
			}
		}
		break
	}

	for p.peek() == '.' {
		p.pos++
		name := p.ident()
		if name == "" {
			return nil, p.errorf("expected transform name")
		}
		if !p.accept('(') {
			return nil, p.errorf("expected '(' after transform %q", name)
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		if !p.accept(')') {
			return nil, p.errorf("expected ')' closing transform %q", name)
		}
		if name == "always" {
			node.Always = true
			continue
		}
		if name != "map" && lookupTransform(name) == nil {
			return nil, p.errorf("unknown transform %q", name)
		}
		node.Transforms = append(node.Transforms, TransformCall{Name: name, Args: args})
	}

	for p.accept(':') {
		name := p.ident()
		if name == "" {
			return nil, p.errorf("expected node attribute name")
		}
		val := ""
		if p.accept('=') {
			var err error
			if val, err = p.literal(",):"); err != nil {
				return nil, err
			}
		}
		switch name {
		case "label":
			node.Label = val
		case "align":
			switch val {
			case "left":
				node.Align = AlignLeft
			case "center":
				node.Align = AlignCenter
			case "right":
				node.Align = AlignRight
			default:
				return nil, p.errorf("bad alignment %q", val)
			}
		case "wrap":
			node.Wrap = val == "" || val == "true"
		default:
			return nil, p.errorf("unknown node attribute %q", name)
		}
	}

	if node.Label == "" {
		node.Label = defaultLabel(node.Path)
	}
	return node, nil
}

func (p *parser) parseIndex() (Segment, error) {
	p.pos++ // consume '['
	p.space()
	switch {
	case p.peek() == ']':
		p.pos++
		return Segment{Wildcard: true}, nil
	case p.peek() == '*':
		p.pos++
		if !p.accept(']') {
			return Segment{}, p.errorf("expected ']'")
		}
		return Segment{Wildcard: true}, nil
	default:
		start := p.pos
		for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
			p.pos++
		}
		idx, err := strconv.Atoi(p.input[start:p.pos])
		if err != nil {
			return Segment{}, p.errorf("bad list index")
		}
		if !p.accept(']') {
			return Segment{}, p.errorf("expected ']'")
		}
		return Segment{Index: idx, HasIndex: true}, nil
	}
}

func (p *parser) parseArgs() ([]string, error) {
	p.space()
	if p.peek() == ')' {
		return nil, nil
	}
	var args []string
	for {
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.accept(',') {
			continue
		}
		return args, nil
	}
}

// parseArg reads one transform argument. A name=value argument may
// quote its value, so the '=' is handled here rather than left to the
// bare-literal scan.
func (p *parser) parseArg() (string, error) {
	p.space()
	if q := p.peek(); q == '"' || q == '\'' {
		return p.literal(",)")
	}
	name, err := p.literal(",)=")
	if err != nil {
		return "", err
	}
	if p.peek() != '=' {
		return name, nil
	}
	p.pos++
	val, err := p.literal(",)")
	if err != nil {
		return "", err
	}
	return name + "=" + val, nil
}
