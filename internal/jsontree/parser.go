package jsontree

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"fortio.org/safecast"
	"github.com/tidwall/jsonc"

	"templint/internal/source"
)

// Parse builds a tree for the document. On malformed input it returns the
// partial tree built so far together with the error; callers decide whether a
// partial tree is usable.
func Parse(file *source.File) (*Tree, error) {
	if file == nil {
		return nil, fmt.Errorf("jsontree: nil file")
	}

	p := &parser{
		tree: &Tree{File: file, Root: NoNode},
		// jsonc.ToJSON replaces comments and trailing commas with
		// whitespace, so offsets into buf are offsets into the document.
		buf:  jsonc.ToJSON(file.Content),
		file: file.ID,
	}

	p.skipSpace()
	if p.eof() {
		return p.tree, fmt.Errorf("jsontree: empty document")
	}
	root, err := p.parseValue(NoNode)
	if err != nil {
		p.tree.Root = root
		return p.tree, err
	}
	p.tree.Root = root
	p.skipSpace()
	if !p.eof() {
		return p.tree, p.errorf("unexpected trailing content")
	}
	return p.tree, nil
}

type parser struct {
	tree *Tree
	buf  []byte
	file source.FileID
	pos  int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.buf)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.buf[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.buf[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("jsontree: offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) offset(i int) uint32 {
	off, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return off
}

func (p *parser) addNode(n Node) NodeID {
	id, err := safecast.Conv[uint32](len(p.tree.nodes))
	if err != nil {
		panic(fmt.Errorf("node count overflow: %w", err))
	}
	p.tree.nodes = append(p.tree.nodes, n)
	return NodeID(id)
}

func (p *parser) parseValue(parent NodeID) (NodeID, error) {
	p.skipSpace()
	if p.eof() {
		return NoNode, p.errorf("unexpected end of input")
	}
	switch c := p.peek(); {
	case c == '{':
		return p.parseObject(parent)
	case c == '[':
		return p.parseArray(parent)
	case c == '"':
		return p.parseString(parent)
	case c == 't' || c == 'f':
		return p.parseBool(parent)
	case c == 'n':
		return p.parseNull(parent)
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber(parent)
	default:
		return NoNode, p.errorf("unexpected character %q", c)
	}
}

func (p *parser) parseObject(parent NodeID) (NodeID, error) {
	start := p.pos
	p.pos++ // '{'
	id := p.addNode(Node{Kind: KindObject, Parent: parent})

	for {
		p.skipSpace()
		if p.eof() {
			p.finish(id, start, p.pos)
			return id, p.errorf("unterminated object")
		}
		if p.peek() == '}' {
			p.pos++
			break
		}
		if len(p.tree.nodes[id].Children) > 0 {
			if p.peek() != ',' {
				p.finish(id, start, p.pos)
				return id, p.errorf("expected ',' or '}' in object")
			}
			p.pos++
			p.skipSpace()
			if p.peek() == '}' { // trailing commas are blanked by jsonc, but stay tolerant
				p.pos++
				break
			}
		}

		propID, err := p.parseProperty(id)
		if propID != NoNode {
			p.tree.nodes[id].Children = append(p.tree.nodes[id].Children, propID)
		}
		if err != nil {
			p.finish(id, start, p.pos)
			return id, err
		}
	}
	p.finish(id, start, p.pos)
	return id, nil
}

func (p *parser) parseProperty(parent NodeID) (NodeID, error) {
	p.skipSpace()
	start := p.pos
	if p.peek() != '"' {
		return NoNode, p.errorf("expected object key")
	}
	id := p.addNode(Node{Kind: KindProperty, Parent: parent})
	keyID, err := p.parseString(id)
	if keyID != NoNode {
		p.tree.nodes[id].Children = append(p.tree.nodes[id].Children, keyID)
	}
	if err != nil {
		p.finish(id, start, p.pos)
		return id, err
	}

	p.skipSpace()
	if p.eof() || p.peek() != ':' {
		p.finish(id, start, p.pos)
		return id, p.errorf("expected ':' after object key")
	}
	p.pos++

	valID, err := p.parseValue(id)
	if valID != NoNode {
		p.tree.nodes[id].Children = append(p.tree.nodes[id].Children, valID)
	}
	p.finish(id, start, p.pos)
	return id, err
}

func (p *parser) parseArray(parent NodeID) (NodeID, error) {
	start := p.pos
	p.pos++ // '['
	id := p.addNode(Node{Kind: KindArray, Parent: parent})

	for {
		p.skipSpace()
		if p.eof() {
			p.finish(id, start, p.pos)
			return id, p.errorf("unterminated array")
		}
		if p.peek() == ']' {
			p.pos++
			break
		}
		if len(p.tree.nodes[id].Children) > 0 {
			if p.peek() != ',' {
				p.finish(id, start, p.pos)
				return id, p.errorf("expected ',' or ']' in array")
			}
			p.pos++
			p.skipSpace()
			if p.peek() == ']' {
				p.pos++
				break
			}
		}

		elemID, err := p.parseValue(id)
		if elemID != NoNode {
			p.tree.nodes[id].Children = append(p.tree.nodes[id].Children, elemID)
		}
		if err != nil {
			p.finish(id, start, p.pos)
			return id, err
		}
	}
	p.finish(id, start, p.pos)
	return id, nil
}

func (p *parser) parseString(parent NodeID) (NodeID, error) {
	start := p.pos
	p.pos++ // opening quote
	var sb strings.Builder
	for {
		if p.eof() {
			id := p.addNode(Node{Kind: KindString, Parent: parent, Str: sb.String()})
			p.finish(id, start, p.pos)
			return id, p.errorf("unterminated string")
		}
		c := p.buf[p.pos]
		if c == '"' {
			p.pos++
			break
		}
		if c == '\\' {
			if err := p.parseEscape(&sb); err != nil {
				id := p.addNode(Node{Kind: KindString, Parent: parent, Str: sb.String()})
				p.finish(id, start, p.pos)
				return id, err
			}
			continue
		}
		sb.WriteByte(c)
		p.pos++
	}
	id := p.addNode(Node{Kind: KindString, Parent: parent, Str: sb.String()})
	p.finish(id, start, p.pos)
	return id, nil
}

func (p *parser) parseEscape(sb *strings.Builder) error {
	p.pos++ // backslash
	if p.eof() {
		return p.errorf("unterminated escape")
	}
	c := p.buf[p.pos]
	p.pos++
	switch c {
	case '"', '\\', '/':
		sb.WriteByte(c)
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'u':
		r, err := p.parseHexRune()
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) && p.pos+6 <= len(p.buf) && p.buf[p.pos] == '\\' && p.buf[p.pos+1] == 'u' {
			p.pos += 2
			r2, err := p.parseHexRune()
			if err != nil {
				return err
			}
			r = utf16.DecodeRune(r, r2)
		}
		sb.WriteRune(r)
	default:
		return p.errorf("invalid escape character %q", c)
	}
	return nil
}

func (p *parser) parseHexRune() (rune, error) {
	if p.pos+4 > len(p.buf) {
		return 0, p.errorf("truncated unicode escape")
	}
	hex := string(p.buf[p.pos : p.pos+4])
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, p.errorf("invalid unicode escape %q", hex)
	}
	p.pos += 4
	return rune(v), nil
}

func (p *parser) parseNumber(parent NodeID) (NodeID, error) {
	start := p.pos
	for !p.eof() {
		c := p.buf[p.pos]
		if (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' {
			p.pos++
			continue
		}
		break
	}
	raw := string(p.buf[start:p.pos])
	num, err := strconv.ParseFloat(raw, 64)
	id := p.addNode(Node{Kind: KindNumber, Parent: parent, Num: num})
	p.finish(id, start, p.pos)
	if err != nil {
		return id, p.errorf("invalid number %q", raw)
	}
	return id, nil
}

func (p *parser) parseBool(parent NodeID) (NodeID, error) {
	start := p.pos
	var val bool
	switch {
	case bytes.HasPrefix(p.buf[p.pos:], []byte("true")):
		val = true
		p.pos += 4
	case bytes.HasPrefix(p.buf[p.pos:], []byte("false")):
		p.pos += 5
	default:
		return NoNode, p.errorf("invalid literal")
	}
	id := p.addNode(Node{Kind: KindBool, Parent: parent, Bool: val})
	p.finish(id, start, p.pos)
	return id, nil
}

func (p *parser) parseNull(parent NodeID) (NodeID, error) {
	start := p.pos
	if !bytes.HasPrefix(p.buf[p.pos:], []byte("null")) {
		return NoNode, p.errorf("invalid literal")
	}
	p.pos += 4
	id := p.addNode(Node{Kind: KindNull, Parent: parent})
	p.finish(id, start, p.pos)
	return id, nil
}

// finish stamps the node's span once its extent is known.
func (p *parser) finish(id NodeID, start, end int) {
	p.tree.nodes[id].Span = source.Span{
		File:  p.file,
		Start: p.offset(start),
		End:   p.offset(end),
	}
}
