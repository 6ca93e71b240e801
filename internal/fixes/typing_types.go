package fixes

import "strings"

type typingAction int

const (
	// replace the usage with a runtime equivalent
	actReplace typingAction = iota
	// drop the expression, it has no runtime meaning
	actRemoveExpr
	// drop the statement holding the usage
	actRemoveLine
	// unwrap cast(T, value) to value
	actCast
)

type typingType struct {
	action      typingAction
	replacement string // dotted when it lives in another module
}

// module splits the replacement into the module to import from and the
// imported name. module is empty for builtins.
func (t typingType) module() (module, name string) {
	i := strings.LastIndexByte(t.replacement, '.')
	if i < 0 {
		return "", t.replacement
	}
	return t.replacement[:i], t.replacement[i+1:]
}

func replaceWith(s string) typingType { return typingType{action: actReplace, replacement: s} }

var typingTypes = map[string]typingType{
	"AbstractSet":     replaceWith("collections.abc.Set"),
	"Any":             replaceWith("object"),
	"AsyncIterable":   replaceWith("collections.abc.AsyncIterable"),
	"AsyncIterator":   replaceWith("collections.abc.AsyncIterator"),
	"Awaitable":       replaceWith("collections.abc.Awaitable"),
	"ByteString":      replaceWith("str"),
	"Callable":        {action: actRemoveExpr},
	"cast":            {action: actCast},
	"ClassVar":        {action: actRemoveExpr},
	"Collection":      replaceWith("collections.abc.Collection"),
	"Container":       replaceWith("collections.abc.Container"),
	"Coroutine":       replaceWith("collections.abc.Coroutine"),
	"DefaultDict":     replaceWith("collections.defaultdict"),
	"Dict":            replaceWith("dict"),
	"FrozenSet":       replaceWith("frozenset"),
	"Generator":       replaceWith("types.GeneratorType"),
	"Generic":         {action: actRemoveExpr},
	"Hashable":        replaceWith("collections.abc.Hashable"),
	"ItemsView":       replaceWith("collections.abc.ItemsView"),
	"Iterable":        replaceWith("collections.abc.Iterable"),
	"Iterator":        replaceWith("collections.abc.Iterator"),
	"KeysView":        replaceWith("collections.abc.KeysView"),
	"List":            replaceWith("list"),
	"Mapping":         replaceWith("collections.abc.Mapping"),
	"MappingView":     replaceWith("collections.abc.MappingView"),
	"MutableMapping":  replaceWith("collections.abc.MutableMapping"),
	"MutableSequence": replaceWith("collections.abc.MutableSequence"),
	"MutableSet":      replaceWith("collections.abc.MutableSet"),
	"NamedTuple":      replaceWith("collections.namedtuple"),
	"NewType":         {action: actRemoveLine},
	"Optional":        {action: actRemoveExpr},
	"overload":        {action: actRemoveExpr},
	"Reversible":      replaceWith("collections.abc.Reversible"),
	"Sequence":        replaceWith("collections.abc.Sequence"),
	"Set":             replaceWith("set"),
	"Sized":           replaceWith("collections.abc.Sized"),
	"Tuple":           replaceWith("tuple"),
	"Type":            replaceWith("type"),
	"TypeVar":         {action: actRemoveLine},
	"Union":           {action: actRemoveExpr},
	"ValuesView":      replaceWith("collections.abc.ValuesView"),
}
