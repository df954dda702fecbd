package pdf

import (
	"bytes"
	"strconv"
)

type operandKind int

const (
	operandNumber operandKind = iota
	operandName
	operandString
	operandArray
	operandOther
)

// operand is one value preceding a content stream operator.
type operand struct {
	kind  operandKind
	num   float64
	str   string
	items []operand
}

// instruction is an operator with its operands, in stream order.
type instruction struct {
	op   string
	args []operand
}

// lexer splits a decoded content stream into instructions. It understands
// enough of the syntax to skip dictionaries and inline images safely.
type lexer struct {
	data []byte
	pos  int
}

func newLexer(data []byte) *lexer {
	return &lexer{data: data}
}

// instructions returns every instruction in the stream. Malformed trailing
// input is dropped.
func (l *lexer) instructions() []instruction {
	var out []instruction
	var args []operand

	for {
		v, op, ok := l.next()
		if !ok {
			return out
		}
		if op == "" {
			args = append(args, v)
			continue
		}
		if op == "BI" {
			l.skipInlineImage()
			args = nil
			continue
		}
		out = append(out, instruction{op: op, args: args})
		args = nil
	}
}

// next returns either an operand or, when op is non-empty, an operator.
func (l *lexer) next() (operand, string, bool) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return operand{}, "", false
	}

	c := l.data[l.pos]
	switch {
	case c == '/':
		l.pos++
		return operand{kind: operandName, str: l.regular()}, "", true
	case c == '(':
		l.pos++
		return operand{kind: operandString, str: l.literal()}, "", true
	case c == '<' && l.peek(1) == '<':
		l.pos += 2
		l.skipDict()
		return operand{kind: operandOther}, "", true
	case c == '<':
		l.pos++
		return operand{kind: operandString, str: l.hex()}, "", true
	case c == '[':
		l.pos++
		return l.array(), "", true
	case c == ']' || c == '>' || c == ')' || c == '{' || c == '}':
		l.pos++
		return operand{kind: operandOther}, "", true
	case c == '+' || c == '-' || c == '.' || isDigit(c):
		word := l.regular()
		if n, err := strconv.ParseFloat(word, 64); err == nil {
			return operand{kind: operandNumber, num: n}, "", true
		}
		return operand{kind: operandOther}, "", true
	default:
		word := l.regular()
		if word == "" {
			l.pos++
			return operand{kind: operandOther}, "", true
		}
		if word == "true" || word == "false" || word == "null" {
			return operand{kind: operandOther, str: word}, "", true
		}
		return operand{}, word, true
	}
}

func (l *lexer) array() operand {
	arr := operand{kind: operandArray}
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return arr
		}
		if l.data[l.pos] == ']' {
			l.pos++
			return arr
		}
		v, op, ok := l.next()
		if !ok {
			return arr
		}
		if op != "" {
			continue
		}
		arr.items = append(arr.items, v)
	}
}

func (l *lexer) literal() string {
	var b bytes.Buffer
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
			b.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return b.String()
			}
			b.WriteByte(c)
		case '\\':
			if l.pos >= len(l.data) {
				return b.String()
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case '\r':
				if l.peek(0) == '\n' {
					l.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for range 2 {
						if d := l.peek(0); d >= '0' && d <= '7' {
							v = v*8 + int(d-'0')
							l.pos++
						}
					}
					b.WriteByte(byte(v))
				} else {
					b.WriteByte(e)
				}
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (l *lexer) hex() string {
	var digits []byte
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			break
		}
		if isHex(c) {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		v, _ := strconv.ParseUint(string(digits[2*i:2*i+2]), 16, 8)
		out[i] = byte(v)
	}
	return string(out)
}

func (l *lexer) skipDict() {
	depth := 1
	for l.pos < len(l.data) && depth > 0 {
		switch {
		case l.data[l.pos] == '<' && l.peek(1) == '<':
			depth++
			l.pos += 2
		case l.data[l.pos] == '>' && l.peek(1) == '>':
			depth--
			l.pos += 2
		case l.data[l.pos] == '(':
			l.pos++
			l.literal()
		default:
			l.pos++
		}
	}
}

// skipInlineImage advances past "ID <data> EI".
func (l *lexer) skipInlineImage() {
	i := bytes.Index(l.data[l.pos:], []byte("ID"))
	if i < 0 {
		l.pos = len(l.data)
		return
	}
	l.pos += i + 2
	for l.pos < len(l.data) {
		j := bytes.Index(l.data[l.pos:], []byte("EI"))
		if j < 0 {
			l.pos = len(l.data)
			return
		}
		end := l.pos + j
		l.pos = end + 2
		if end > 0 && isSpace(l.data[end-1]) && (l.pos >= len(l.data) || isSpace(l.data[l.pos]) || isDelim(l.data[l.pos])) {
			return
		}
	}
}

func (l *lexer) regular() string {
	start := l.pos
	for l.pos < len(l.data) && !isSpace(l.data[l.pos]) && !isDelim(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		if !isSpace(c) {
			return
		}
		l.pos++
	}
}

func (l *lexer) peek(off int) byte {
	if l.pos+off < len(l.data) {
		return l.data[l.pos+off]
	}
	return 0
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
