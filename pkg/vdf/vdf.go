package vdf

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/errors"
)

// Node is a single entry in a key-value document. A node carries either a
// scalar value or an ordered list of children, never both.
type Node struct {
	Name     string
	Value    string
	HasValue bool
	Children []*Node
}

// Child returns the first child with the given name (case-insensitive),
// or nil if no such child exists. Order of appearance decides ties.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// String returns the scalar value of the first child with the given name.
// The second return is false when the child is absent or has no scalar.
func (n *Node) String(name string) (string, bool) {
	c := n.Child(name)
	if c == nil || !c.HasValue {
		return "", false
	}
	return c.Value, true
}

// Parse reads a full key-value document from r and returns its root node.
// The document must contain exactly one top-level entry.
func Parse(r io.Reader) (*Node, error) {
	p := &parser{scan: newScanner(r)}

	root, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, errors.New(errors.ErrVDFParse, "document is empty")
	}

	// Trailing garbage after the single top-level node is malformed.
	if tok, err := p.scan.next(); err != nil {
		return nil, err
	} else if tok.kind != tokenEOF {
		return nil, errors.Newf(errors.ErrVDFParse, "unexpected %q after top-level entry (line %d)", tok.text, tok.line)
	}

	return root, nil
}

// ParseString parses a document held in memory. Mostly a test convenience.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

type parser struct {
	scan *scanner
}

// parseNode parses one "name" { ... } or "name" "value" entry.
// Returns nil when the input is exhausted.
func (p *parser) parseNode() (*Node, error) {
	tok, err := p.scan.next()
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenEOF:
		return nil, nil
	case tokenString:
		// fall through to the value/body below
	default:
		return nil, errors.Newf(errors.ErrVDFParse, "expected key, got %q (line %d)", tok.text, tok.line)
	}

	node := &Node{Name: tok.text}

	next, err := p.scan.next()
	if err != nil {
		return nil, err
	}
	switch next.kind {
	case tokenString:
		node.Value = next.text
		node.HasValue = true
		return node, nil
	case tokenOpenBrace:
		if err := p.parseChildren(node); err != nil {
			return nil, err
		}
		return node, nil
	default:
		return nil, errors.Newf(errors.ErrVDFParse, "key %q has no value or body (line %d)", node.Name, next.line)
	}
}

func (p *parser) parseChildren(parent *Node) error {
	for {
		tok, err := p.scan.next()
		if err != nil {
			return err
		}
		switch tok.kind {
		case tokenCloseBrace:
			return nil
		case tokenEOF:
			return errors.Newf(errors.ErrVDFParse, "unbalanced braces: block %q is never closed", parent.Name)
		case tokenString:
			p.scan.pushBack(tok)
			child, err := p.parseNode()
			if err != nil {
				return err
			}
			parent.Children = append(parent.Children, child)
		default:
			return errors.Newf(errors.ErrVDFParse, "unexpected %q inside %q (line %d)", tok.text, parent.Name, tok.line)
		}
	}
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenString
	tokenOpenBrace
	tokenCloseBrace
)

type token struct {
	kind tokenKind
	text string
	line int
}

type scanner struct {
	r      *bufio.Reader
	line   int
	pushed *token
}

func newScanner(r io.Reader) *scanner {
	return &scanner{r: bufio.NewReader(r), line: 1}
}

func (s *scanner) pushBack(t token) {
	s.pushed = &t
}

func (s *scanner) next() (token, error) {
	if s.pushed != nil {
		t := *s.pushed
		s.pushed = nil
		return t, nil
	}

	for {
		c, _, err := s.r.ReadRune()
		if err == io.EOF {
			return token{kind: tokenEOF, line: s.line}, nil
		}
		if err != nil {
			return token{}, errors.Wrap(err, errors.ErrVDFRead, "reading document")
		}

		switch {
		case c == '\n':
			s.line++
		case c == ' ' || c == '\t' || c == '\r':
			// skip
		case c == '{':
			return token{kind: tokenOpenBrace, text: "{", line: s.line}, nil
		case c == '}':
			return token{kind: tokenCloseBrace, text: "}", line: s.line}, nil
		case c == '/':
			if err := s.skipComment(); err != nil {
				return token{}, err
			}
		case c == '"':
			return s.quotedString()
		default:
			return s.bareString(c)
		}
	}
}

// skipComment consumes a // comment to end of line.
func (s *scanner) skipComment() error {
	c, _, err := s.r.ReadRune()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrVDFRead, "reading document")
	}
	if c != '/' {
		return errors.Newf(errors.ErrVDFParse, "stray '/' (line %d)", s.line)
	}
	for {
		c, _, err := s.r.ReadRune()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, errors.ErrVDFRead, "reading document")
		}
		if c == '\n' {
			s.line++
			return nil
		}
	}
}

func (s *scanner) quotedString() (token, error) {
	startLine := s.line
	var b strings.Builder
	for {
		c, _, err := s.r.ReadRune()
		if err == io.EOF {
			return token{}, errors.Newf(errors.ErrVDFParse, "unterminated string (line %d)", startLine)
		}
		if err != nil {
			return token{}, errors.Wrap(err, errors.ErrVDFRead, "reading document")
		}
		switch c {
		case '"':
			return token{kind: tokenString, text: b.String(), line: startLine}, nil
		case '\\':
			esc, _, err := s.r.ReadRune()
			if err != nil {
				return token{}, errors.Newf(errors.ErrVDFParse, "unterminated escape (line %d)", s.line)
			}
			switch esc {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case '\\', '"':
				b.WriteRune(esc)
			default:
				// Steam tolerates unknown escapes by keeping them verbatim.
				b.WriteRune('\\')
				b.WriteRune(esc)
			}
		case '\n':
			s.line++
			b.WriteRune(c)
		default:
			b.WriteRune(c)
		}
	}
}

func (s *scanner) bareString(first rune) (token, error) {
	startLine := s.line
	var b strings.Builder
	b.WriteRune(first)
	for {
		c, _, err := s.r.ReadRune()
		if err == io.EOF {
			return token{kind: tokenString, text: b.String(), line: startLine}, nil
		}
		if err != nil {
			return token{}, errors.Wrap(err, errors.ErrVDFRead, "reading document")
		}
		if isBareDelimiter(c) {
			if err := s.r.UnreadRune(); err != nil {
				return token{}, fmt.Errorf("unread rune: %w", err)
			}
			return token{kind: tokenString, text: b.String(), line: startLine}, nil
		}
		b.WriteRune(c)
	}
}

func isBareDelimiter(c rune) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '{', '}', '"':
		return true
	}
	return false
}
