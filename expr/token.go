package expr

// tokenKind enumerates the lexical categories of the expression
// grammar (spec.md §4.B): integer literals, identifiers, the
// reserved-but-inert keyword set, operators, and punctuation.
type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIllegal
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokComma

	// Reserved keywords. The tokenizer recognizes them as keywords but
	// the parser only gives true/false/nil first-class meaning (as
	// literals); and/or/not/xor/is are accepted identifiers the parser
	// never treats as operators — spec.md §9's open question leaves
	// either inert-or-promoted consistent with the source, and this
	// implementation keeps them inert.
	tokAnd
	tokOr
	tokNot
	tokXor
	tokTrue
	tokFalse
	tokNil
	tokIs
)

var keywords = map[string]tokenKind{
	"and":   tokAnd,
	"or":    tokOr,
	"not":   tokNot,
	"xor":   tokXor,
	"true":  tokTrue,
	"false": tokFalse,
	"nil":   tokNil,
	"is":    tokIs,
}

type token struct {
	kind tokenKind
	text string
	pos  int
}
