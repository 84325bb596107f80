package board

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// padRefLexer tokenizes pad references such as "U1.20" and pair lists such
// as "U1.62:R29.1, U1.62:C44.1".
var padRefLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[A-Za-z0-9_+#/\-]+`},
	{Name: "Punct", Pattern: `[.:,~]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type padRefAST struct {
	Designator string `@Ident "."`
	Number     string `@Ident`
}

type padPairAST struct {
	Start *padRefAST `@@ ( ":" | "~" )`
	End   *padRefAST `@@`
}

type pairListAST struct {
	Pairs []*padPairAST `( @@ ","? )*`
}

var (
	padRefParser = participle.MustBuild[padRefAST](
		participle.Lexer(padRefLexer),
		participle.Elide("Whitespace"),
	)
	pairListParser = participle.MustBuild[pairListAST](
		participle.Lexer(padRefLexer),
		participle.Elide("Whitespace"),
	)
)

func (r *padRefAST) key() PadKey {
	return PadKey{Designator: r.Designator, Number: r.Number}
}

// ParsePadRef parses "DESIGNATOR.NUMBER", e.g. "U1.20".
func ParsePadRef(s string) (PadKey, error) {
	ast, err := padRefParser.ParseString("", s)
	if err != nil {
		return PadKey{}, fmt.Errorf("invalid pad reference %q: %w", s, err)
	}
	return ast.key(), nil
}

// ParsePairs parses a comma or whitespace separated list of pad pairs, each
// written "A.n:B.m" (or "A.n~B.m").
func ParsePairs(s string) ([]PadPair, error) {
	ast, err := pairListParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("invalid pad pair list: %w", err)
	}

	pairs := make([]PadPair, 0, len(ast.Pairs))
	for _, p := range ast.Pairs {
		pairs = append(pairs, PadPair{Start: p.Start.key(), End: p.End.key()})
	}
	return pairs, nil
}
