// Package pygram defines the token and symbol type tags of the Python
// concrete syntax trees built by pyparse and rewritten by the fixers.
//
// Tags below 256 are tokens (leaves), tags from 256 upward are grammar
// symbols (branches). The numbering is private to this package; patterns
// refer to tags by name.
package pygram

import "strconv"

// Type is the type tag of a syntax tree node.
type Type int

// Invalid is the zero Type. Pattern matchers treat it as "any type".
const Invalid Type = 0

// Tokens.
const (
	ENDMARKER Type = iota + 1
	NAME
	NUMBER
	STRING
	NEWLINE
	INDENT
	DEDENT
	LPAR
	RPAR
	LSQB
	RSQB
	COLON
	COMMA
	SEMI
	PLUS
	MINUS
	STAR
	SLASH
	VBAR
	AMPER
	LESS
	GREATER
	EQUAL
	DOT
	PERCENT
	BACKQUOTE
	LBRACE
	RBRACE
	EQEQUAL
	NOTEQUAL
	LESSEQUAL
	GREATEREQUAL
	TILDE
	CIRCUMFLEX
	LEFTSHIFT
	RIGHTSHIFT
	DOUBLESTAR
	PLUSEQUAL
	MINEQUAL
	STAREQUAL
	SLASHEQUAL
	PERCENTEQUAL
	AMPEREQUAL
	VBAREQUAL
	CIRCUMFLEXEQUAL
	LEFTSHIFTEQUAL
	RIGHTSHIFTEQUAL
	DOUBLESTAREQUAL
	DOUBLESLASH
	DOUBLESLASHEQUAL
	AT
	ATEQUAL
	RARROW
	COLONEQUAL
	BANG
	OP
	COMMENT
	NL
	ERRORTOKEN

	numTokens
)

// NTokens is the first symbol tag.
const NTokens Type = 256

// Symbols.
const (
	FileInput Type = iota + NTokens
	AndExpr
	AndTest
	Annassign
	Arglist
	Argument
	ArithExpr
	AsexprTest
	AssertStmt
	AsyncFuncdef
	AsyncStmt
	Atom
	Classdef
	CompFor
	CompIf
	CompOp
	Comparison
	Decorated
	Decorator
	Decorators
	DelStmt
	Dictsetmaker
	DottedAsName
	DottedAsNames
	DottedName
	ExceptClause
	Expr
	ExprStmt
	Exprlist
	Factor
	ForStmt
	Funcdef
	GlobalStmt
	IfStmt
	ImportAsName
	ImportAsNames
	ImportFrom
	ImportName
	Lambdef
	Listmaker
	NamedexprTest
	NotTest
	OrTest
	Parameters
	Power
	RaiseStmt
	ReturnStmt
	ShiftExpr
	SimpleStmt
	Sliceop
	StarExpr
	Subscript
	Subscriptlist
	Suite
	Term
	Test
	TestlistGexp
	TestlistStarExpr
	Testlist
	Tname
	Trailer
	TryStmt
	Typedargslist
	Varargslist
	WhileStmt
	WithStmt
	XorExpr
	YieldArg
	YieldExpr

	numSymbols
)

var tokenNames = map[Type]string{
	ENDMARKER:        "ENDMARKER",
	NAME:             "NAME",
	NUMBER:           "NUMBER",
	STRING:           "STRING",
	NEWLINE:          "NEWLINE",
	INDENT:           "INDENT",
	DEDENT:           "DEDENT",
	LPAR:             "LPAR",
	RPAR:             "RPAR",
	LSQB:             "LSQB",
	RSQB:             "RSQB",
	COLON:            "COLON",
	COMMA:            "COMMA",
	SEMI:             "SEMI",
	PLUS:             "PLUS",
	MINUS:            "MINUS",
	STAR:             "STAR",
	SLASH:            "SLASH",
	VBAR:             "VBAR",
	AMPER:            "AMPER",
	LESS:             "LESS",
	GREATER:          "GREATER",
	EQUAL:            "EQUAL",
	DOT:              "DOT",
	PERCENT:          "PERCENT",
	BACKQUOTE:        "BACKQUOTE",
	LBRACE:           "LBRACE",
	RBRACE:           "RBRACE",
	EQEQUAL:          "EQEQUAL",
	NOTEQUAL:         "NOTEQUAL",
	LESSEQUAL:        "LESSEQUAL",
	GREATEREQUAL:     "GREATEREQUAL",
	TILDE:            "TILDE",
	CIRCUMFLEX:       "CIRCUMFLEX",
	LEFTSHIFT:        "LEFTSHIFT",
	RIGHTSHIFT:       "RIGHTSHIFT",
	DOUBLESTAR:       "DOUBLESTAR",
	PLUSEQUAL:        "PLUSEQUAL",
	MINEQUAL:         "MINEQUAL",
	STAREQUAL:        "STAREQUAL",
	SLASHEQUAL:       "SLASHEQUAL",
	PERCENTEQUAL:     "PERCENTEQUAL",
	AMPEREQUAL:       "AMPEREQUAL",
	VBAREQUAL:        "VBAREQUAL",
	CIRCUMFLEXEQUAL:  "CIRCUMFLEXEQUAL",
	LEFTSHIFTEQUAL:   "LEFTSHIFTEQUAL",
	RIGHTSHIFTEQUAL:  "RIGHTSHIFTEQUAL",
	DOUBLESTAREQUAL:  "DOUBLESTAREQUAL",
	DOUBLESLASH:      "DOUBLESLASH",
	DOUBLESLASHEQUAL: "DOUBLESLASHEQUAL",
	AT:               "AT",
	ATEQUAL:          "ATEQUAL",
	RARROW:           "RARROW",
	COLONEQUAL:       "COLONEQUAL",
	BANG:             "BANG",
	OP:               "OP",
	COMMENT:          "COMMENT",
	NL:               "NL",
	ERRORTOKEN:       "ERRORTOKEN",
}

var symbolNames = map[Type]string{
	FileInput:        "file_input",
	AndExpr:          "and_expr",
	AndTest:          "and_test",
	Annassign:        "annassign",
	Arglist:          "arglist",
	Argument:         "argument",
	ArithExpr:        "arith_expr",
	AsexprTest:       "asexpr_test",
	AssertStmt:       "assert_stmt",
	AsyncFuncdef:     "async_funcdef",
	AsyncStmt:        "async_stmt",
	Atom:             "atom",
	Classdef:         "classdef",
	CompFor:          "comp_for",
	CompIf:           "comp_if",
	CompOp:           "comp_op",
	Comparison:       "comparison",
	Decorated:        "decorated",
	Decorator:        "decorator",
	Decorators:       "decorators",
	DelStmt:          "del_stmt",
	Dictsetmaker:     "dictsetmaker",
	DottedAsName:     "dotted_as_name",
	DottedAsNames:    "dotted_as_names",
	DottedName:       "dotted_name",
	ExceptClause:     "except_clause",
	Expr:             "expr",
	ExprStmt:         "expr_stmt",
	Exprlist:         "exprlist",
	Factor:           "factor",
	ForStmt:          "for_stmt",
	Funcdef:          "funcdef",
	GlobalStmt:       "global_stmt",
	IfStmt:           "if_stmt",
	ImportAsName:     "import_as_name",
	ImportAsNames:    "import_as_names",
	ImportFrom:       "import_from",
	ImportName:       "import_name",
	Lambdef:          "lambdef",
	Listmaker:        "listmaker",
	NamedexprTest:    "namedexpr_test",
	NotTest:          "not_test",
	OrTest:           "or_test",
	Parameters:       "parameters",
	Power:            "power",
	RaiseStmt:        "raise_stmt",
	ReturnStmt:       "return_stmt",
	ShiftExpr:        "shift_expr",
	SimpleStmt:       "simple_stmt",
	Sliceop:          "sliceop",
	StarExpr:         "star_expr",
	Subscript:        "subscript",
	Subscriptlist:    "subscriptlist",
	Suite:            "suite",
	Term:             "term",
	Test:             "test",
	TestlistGexp:     "testlist_gexp",
	TestlistStarExpr: "testlist_star_expr",
	Testlist:         "testlist",
	Tname:            "tname",
	Trailer:          "trailer",
	TryStmt:          "try_stmt",
	Typedargslist:    "typedargslist",
	Varargslist:      "varargslist",
	WhileStmt:        "while_stmt",
	WithStmt:         "with_stmt",
	XorExpr:          "xor_expr",
	YieldArg:         "yield_arg",
	YieldExpr:        "yield_expr",
}

var (
	tokensByName  = invert(tokenNames)
	symbolsByName = invert(symbolNames)
)

func invert(m map[Type]string) map[string]Type {
	out := make(map[string]Type, len(m))
	for t, name := range m {
		out[name] = t
	}
	return out
}

// IsToken reports whether t tags a leaf.
func (t Type) IsToken() bool { return t > Invalid && t < NTokens }

// IsSymbol reports whether t tags a branch.
func (t Type) IsSymbol() bool { return t >= NTokens }

func (t Type) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	if name, ok := symbolNames[t]; ok {
		return name
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// TokenByName returns the token tag called name, e.g. "NAME" or "LPAR".
func TokenByName(name string) (Type, bool) {
	t, ok := tokensByName[name]
	return t, ok
}

// SymbolByName returns the symbol tag called name, e.g. "funcdef".
func SymbolByName(name string) (Type, bool) {
	t, ok := symbolsByName[name]
	return t, ok
}
