package pygram

// Python resolves pattern names against the tags of this package. It
// satisfies pattern.Grammar.
var Python python

type python struct{}

func (python) Symbol(name string) (Type, bool) { return SymbolByName(name) }

func (python) Token(name string) (Type, bool) { return TokenByName(name) }

func (python) LiteralType(value string) Type { return LiteralType(value) }

func (python) TypeName(t Type) string { return t.String() }
