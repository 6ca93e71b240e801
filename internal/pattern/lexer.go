package pattern

import "strings"

// TokenType classifies pattern tokens.
type TokenType int

const (
	TokenName   TokenType = iota // identifiers, including "not" and "any"
	TokenString                  // 'quoted' or "quoted"
	TokenNumber                  // repeat bounds
	TokenOp                      // one of ( ) [ ] < > | = * + { } ,
	TokenEOF
)

// Token is one lexeme of a pattern.
type Token struct {
	Type     TokenType
	Value    string // unquoted for strings
	Position int
}

// Lexer splits a pattern string into tokens.
type Lexer struct {
	input    string
	position int
	tokens   []Token
}

// NewLexer returns a lexer over input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize consumes the whole input. The token list always ends in
// TokenEOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.position < len(l.input) {
		start := l.position
		c := l.input[l.position]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.position++
		case c == '#':
			for l.position < len(l.input) && l.input[l.position] != '\n' {
				l.position++
			}
		case isNameStart(c):
			for l.position < len(l.input) && isNameChar(l.input[l.position]) {
				l.position++
			}
			l.add(TokenName, l.input[start:l.position], start)
		case c >= '0' && c <= '9':
			for l.position < len(l.input) && l.input[l.position] >= '0' && l.input[l.position] <= '9' {
				l.position++
			}
			l.add(TokenNumber, l.input[start:l.position], start)
		case c == '\'' || c == '"':
			s, err := l.lexString(c)
			if err != nil {
				return nil, err
			}
			l.add(TokenString, s, start)
		case strings.IndexByte("()[]<>|=*+{},", c) >= 0:
			l.position++
			l.add(TokenOp, string(c), start)
		default:
			return nil, &CompileError{Pattern: l.input, Pos: start, Msg: "unexpected character " + string(c)}
		}
	}
	l.add(TokenEOF, "", l.position)
	return l.tokens, nil
}

func (l *Lexer) add(t TokenType, value string, pos int) {
	l.tokens = append(l.tokens, Token{Type: t, Value: value, Position: pos})
}

func (l *Lexer) lexString(quote byte) (string, error) {
	start := l.position
	l.position++
	var sb strings.Builder
	for l.position < len(l.input) {
		c := l.input[l.position]
		switch c {
		case quote:
			l.position++
			return sb.String(), nil
		case '\\':
			if l.position+1 >= len(l.input) {
				return "", &CompileError{Pattern: l.input, Pos: start, Msg: "unterminated string"}
			}
			l.position++
			switch e := l.input[l.position]; e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(e)
			}
			l.position++
		case '\n':
			return "", &CompileError{Pattern: l.input, Pos: start, Msg: "unterminated string"}
		default:
			sb.WriteByte(c)
			l.position++
		}
	}
	return "", &CompileError{Pattern: l.input, Pos: start, Msg: "unterminated string"}
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}
