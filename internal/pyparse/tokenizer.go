package pyparse

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gnolang/hintstrip/internal/pygram"
)

type token struct {
	typ    pygram.Type
	value  string
	prefix string
	line   int
	col    int
}

// operators longest first
var operators = func() [3][]string {
	var ops [3][]string
	for op := range pygram.OpMap {
		if op == "." {
			continue
		}
		ops[3-len(op)] = append(ops[3-len(op)], op)
	}
	return ops
}()

type tokenizer struct {
	src     string
	pos     int
	line    int
	lineOff int // offset of the current line start
	lastEnd int // end of the previous significant token

	indents   []int
	depth     int
	lineStart bool
	tokens    []token
}

func tokenize(src string) ([]token, error) {
	tz := &tokenizer{src: src, line: 1, indents: []int{0}, lineStart: true}
	if err := tz.run(); err != nil {
		return nil, err
	}
	return tz.tokens, nil
}

func (tz *tokenizer) errorf(msg string) error {
	return &ParseError{Line: tz.line, Column: tz.pos - tz.lineOff, Msg: msg}
}

func (tz *tokenizer) emit(t pygram.Type, start, end int) {
	tz.tokens = append(tz.tokens, token{
		typ:    t,
		value:  tz.src[start:end],
		prefix: tz.src[tz.lastEnd:start],
		line:   tz.line,
		col:    start - tz.lineOff,
	})
	tz.lastEnd = end
}

// emitMarker adds a zero width INDENT or DEDENT. The pending prefix stays
// pending for the next real token.
func (tz *tokenizer) emitMarker(t pygram.Type) {
	tz.tokens = append(tz.tokens, token{typ: t, line: tz.line, col: tz.pos - tz.lineOff})
}

func (tz *tokenizer) newline(end int) {
	tz.line++
	tz.lineOff = end
}

func (tz *tokenizer) run() error {
	for {
		if tz.lineStart && tz.depth == 0 {
			blank, err := tz.indentation()
			if err != nil {
				return err
			}
			if blank {
				continue
			}
		}
		tz.skipSpace()
		if tz.pos >= len(tz.src) {
			break
		}

		start := tz.pos
		c := tz.src[tz.pos]
		switch {
		case c == '\n' || (c == '\r' && strings.HasPrefix(tz.src[tz.pos:], "\r\n")):
			n := 1
			if c == '\r' {
				n = 2
			}
			tz.pos += n
			if tz.depth > 0 {
				tz.newline(tz.pos)
				continue
			}
			tz.emit(pygram.NEWLINE, start, tz.pos)
			tz.newline(tz.pos)
			tz.lineStart = true

		case tz.isStringStart():
			if err := tz.scanString(); err != nil {
				return err
			}
			tz.emit(pygram.STRING, start, tz.pos)

		case isDigit(c) || (c == '.' && tz.pos+1 < len(tz.src) && isDigit(tz.src[tz.pos+1])):
			tz.scanNumber()
			tz.emit(pygram.NUMBER, start, tz.pos)

		case isIdentStart(tz.src[tz.pos:]):
			tz.scanName()
			tz.emit(pygram.NAME, start, tz.pos)

		default:
			if err := tz.scanOp(); err != nil {
				return err
			}
		}
	}

	if n := len(tz.tokens); n > 0 && tz.tokens[n-1].typ != pygram.NEWLINE && tz.tokens[n-1].typ != pygram.DEDENT {
		tz.emit(pygram.NEWLINE, tz.pos, tz.pos)
	}
	for len(tz.indents) > 1 {
		tz.indents = tz.indents[:len(tz.indents)-1]
		tz.emitMarker(pygram.DEDENT)
	}
	tz.emit(pygram.ENDMARKER, len(tz.src), len(tz.src))
	return nil
}

// indentation measures the indentation of the line at tz.pos. Blank and
// comment only lines are consumed whole and reported as blank; they end up
// in the prefix of the next token.
func (tz *tokenizer) indentation() (blank bool, err error) {
	col := 0
	p := tz.pos
	for p < len(tz.src) {
		switch tz.src[p] {
		case ' ':
			col++
		case '\t':
			col = (col/8 + 1) * 8
		case '\f':
			col = 0
		default:
			goto measured
		}
		p++
	}
measured:
	if p >= len(tz.src) {
		tz.pos = p
		tz.lineStart = false
		return false, nil
	}
	switch tz.src[p] {
	case '#', '\n', '\r':
		for p < len(tz.src) && tz.src[p] != '\n' {
			p++
		}
		if p < len(tz.src) {
			p++
		}
		tz.pos = p
		tz.newline(p)
		return true, nil
	}

	tz.pos = p
	tz.lineStart = false
	top := tz.indents[len(tz.indents)-1]
	switch {
	case col > top:
		tz.indents = append(tz.indents, col)
		tz.emitMarker(pygram.INDENT)
	case col < top:
		for col < tz.indents[len(tz.indents)-1] {
			tz.indents = tz.indents[:len(tz.indents)-1]
			tz.emitMarker(pygram.DEDENT)
		}
		if col != tz.indents[len(tz.indents)-1] {
			return false, tz.errorf("unindent does not match any outer indentation level")
		}
	}
	return false, nil
}

// skipSpace moves over whitespace, comments and line continuations. Inside
// brackets newlines are skipped by run.
func (tz *tokenizer) skipSpace() {
	for tz.pos < len(tz.src) {
		switch c := tz.src[tz.pos]; c {
		case ' ', '\t', '\f':
			tz.pos++
		case '#':
			for tz.pos < len(tz.src) && tz.src[tz.pos] != '\n' && tz.src[tz.pos] != '\r' {
				tz.pos++
			}
		case '\\':
			rest := tz.src[tz.pos+1:]
			switch {
			case strings.HasPrefix(rest, "\n"):
				tz.pos += 2
			case strings.HasPrefix(rest, "\r\n"):
				tz.pos += 3
			default:
				return
			}
			tz.newline(tz.pos)
		default:
			return
		}
	}
}

func (tz *tokenizer) isStringStart() bool {
	s := tz.src[tz.pos:]
	for i := 0; i < 3 && i < len(s); i++ {
		switch s[i] {
		case '\'', '"':
			return true
		case 'r', 'R', 'b', 'B', 'u', 'U', 'f', 'F':
		default:
			return false
		}
	}
	return false
}

func (tz *tokenizer) scanString() error {
	for tz.src[tz.pos] != '\'' && tz.src[tz.pos] != '"' {
		tz.pos++
	}
	q := tz.src[tz.pos]
	triple := strings.Repeat(string(q), 3)
	if strings.HasPrefix(tz.src[tz.pos:], triple) {
		tz.pos += 3
		for tz.pos < len(tz.src) {
			switch {
			case tz.src[tz.pos] == '\\':
				tz.pos += 2
				continue
			case strings.HasPrefix(tz.src[tz.pos:], triple):
				tz.pos += 3
				return nil
			case tz.src[tz.pos] == '\n':
				tz.newline(tz.pos + 1)
			}
			tz.pos++
		}
		return tz.errorf("unterminated triple-quoted string")
	}

	tz.pos++
	for tz.pos < len(tz.src) {
		switch tz.src[tz.pos] {
		case '\\':
			tz.pos++
			if tz.pos < len(tz.src) && tz.src[tz.pos] == '\n' {
				tz.newline(tz.pos + 1)
			}
		case q:
			tz.pos++
			return nil
		case '\n':
			return tz.errorf("unterminated string literal")
		}
		tz.pos++
	}
	return tz.errorf("unterminated string literal")
}

func (tz *tokenizer) scanNumber() {
	s := tz.src
	if s[tz.pos] == '0' && tz.pos+1 < len(s) && strings.ContainsRune("xXoObB", rune(s[tz.pos+1])) {
		tz.pos += 2
		for tz.pos < len(s) && (isHex(s[tz.pos]) || s[tz.pos] == '_') {
			tz.pos++
		}
	} else {
		tz.digits()
		if tz.pos < len(s) && s[tz.pos] == '.' {
			tz.pos++
			tz.digits()
		}
		if tz.pos < len(s) && (s[tz.pos] == 'e' || s[tz.pos] == 'E') {
			p := tz.pos + 1
			if p < len(s) && (s[p] == '+' || s[p] == '-') {
				p++
			}
			if p < len(s) && isDigit(s[p]) {
				tz.pos = p
				tz.digits()
			}
		}
	}
	if tz.pos < len(s) && strings.ContainsRune("jJlL", rune(s[tz.pos])) {
		tz.pos++
	}
}

func (tz *tokenizer) digits() {
	for tz.pos < len(tz.src) && (isDigit(tz.src[tz.pos]) || tz.src[tz.pos] == '_') {
		tz.pos++
	}
}

func (tz *tokenizer) scanName() {
	for tz.pos < len(tz.src) {
		r, size := utf8.DecodeRuneInString(tz.src[tz.pos:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return
		}
		tz.pos += size
	}
}

func (tz *tokenizer) scanOp() error {
	start := tz.pos
	rest := tz.src[tz.pos:]
	if rest[0] == '.' {
		tz.pos++
		tz.emit(pygram.DOT, start, tz.pos)
		return nil
	}
	for _, group := range operators {
		for _, op := range group {
			if !strings.HasPrefix(rest, op) {
				continue
			}
			tz.pos += len(op)
			switch op {
			case "(", "[", "{":
				tz.depth++
			case ")", "]", "}":
				if tz.depth > 0 {
					tz.depth--
				}
			}
			tz.emit(pygram.OpMap[op], start, tz.pos)
			return nil
		}
	}
	return tz.errorf("unexpected character " + string(rest[0]))
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r == '_' || unicode.IsLetter(r)
}
