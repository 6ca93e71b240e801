package pygram

import "unicode"

// OpMap maps operator text to its token tag.
var OpMap = map[string]Type{
	"(":   LPAR,
	")":   RPAR,
	"[":   LSQB,
	"]":   RSQB,
	":":   COLON,
	",":   COMMA,
	";":   SEMI,
	"+":   PLUS,
	"-":   MINUS,
	"*":   STAR,
	"/":   SLASH,
	"|":   VBAR,
	"&":   AMPER,
	"<":   LESS,
	">":   GREATER,
	"=":   EQUAL,
	".":   DOT,
	"%":   PERCENT,
	"`":   BACKQUOTE,
	"{":   LBRACE,
	"}":   RBRACE,
	"@":   AT,
	"@=":  ATEQUAL,
	"==":  EQEQUAL,
	"!=":  NOTEQUAL,
	"<>":  NOTEQUAL,
	"<=":  LESSEQUAL,
	">=":  GREATEREQUAL,
	"~":   TILDE,
	"^":   CIRCUMFLEX,
	"<<":  LEFTSHIFT,
	">>":  RIGHTSHIFT,
	"**":  DOUBLESTAR,
	"+=":  PLUSEQUAL,
	"-=":  MINEQUAL,
	"*=":  STAREQUAL,
	"/=":  SLASHEQUAL,
	"%=":  PERCENTEQUAL,
	"&=":  AMPEREQUAL,
	"|=":  VBAREQUAL,
	"^=":  CIRCUMFLEXEQUAL,
	"<<=": LEFTSHIFTEQUAL,
	">>=": RIGHTSHIFTEQUAL,
	"**=": DOUBLESTAREQUAL,
	"//":  DOUBLESLASH,
	"//=": DOUBLESLASHEQUAL,
	"->":  RARROW,
	":=":  COLONEQUAL,
	"!":   BANG,
}

// Keywords cannot start an expression. "not", "lambda", "await" and the
// constants are deliberately absent.
var Keywords = map[string]bool{
	"and":      true,
	"as":       true,
	"assert":   true,
	"async":    true,
	"break":    true,
	"class":    true,
	"continue": true,
	"def":      true,
	"del":      true,
	"elif":     true,
	"else":     true,
	"except":   true,
	"finally":  true,
	"for":      true,
	"from":     true,
	"global":   true,
	"if":       true,
	"import":   true,
	"in":       true,
	"is":       true,
	"nonlocal": true,
	"or":       true,
	"pass":     true,
	"raise":    true,
	"return":   true,
	"try":      true,
	"while":    true,
	"with":     true,
	"yield":    true,
}

// LiteralType infers the token tag of a literal leaf value: identifiers
// and keywords are NAME, operators map through OpMap, anything else is
// Invalid (matches a leaf of any type).
func LiteralType(value string) Type {
	if value == "" {
		return Invalid
	}
	if r := []rune(value)[0]; unicode.IsLetter(r) || r == '_' {
		return NAME
	}
	if t, ok := OpMap[value]; ok {
		return t
	}
	return Invalid
}
