// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/gllgen/internal/grammar"
	"gopkg.microglot.org/gllgen/internal/optional"
)

func TestSimplifyLeaves(t *testing.T) {
	require.Equal(t, grammar.Empty{}, Simplify(grammar.Empty{}))
	require.Equal(t, grammar.Empty{}, Simplify(grammar.Literal{Text: "foo"}))
	require.Equal(t, grammar.SymbolRef{Name: "Foo"}, Simplify(grammar.SymbolRef{Name: "Foo"}))
	require.Equal(t, grammar.CharRange{From: 'a', To: 'z'}, Simplify(grammar.CharRange{From: 'a', To: 'z'}))
}

func TestSimplifyLabeled(t *testing.T) {
	require.Equal(t,
		grammar.Labeled{Label: "foo", Inner: grammar.Empty{}},
		Simplify(grammar.Labeled{Label: "foo", Inner: grammar.Empty{}}),
	)
	require.Equal(t,
		grammar.Labeled{Label: "foo", Inner: grammar.Empty{}},
		Simplify(grammar.Labeled{Label: "foo", Inner: grammar.Literal{Text: "foo"}}),
	)
	require.Equal(t,
		grammar.Labeled{Label: "foo", Inner: grammar.SymbolRef{Name: "Foo"}},
		Simplify(grammar.Labeled{Label: "foo", Inner: grammar.SymbolRef{Name: "Foo"}}),
	)
}

func TestSimplifyConcatenation(t *testing.T) {
	require.Equal(t, grammar.Empty{}, Simplify(grammar.Concatenation{}))
	require.Equal(t,
		grammar.Empty{},
		Simplify(grammar.Concatenation{Items: []grammar.RuleNode{grammar.Empty{}}}),
	)
	require.Equal(t,
		grammar.SymbolRef{Name: "Foo"},
		Simplify(grammar.Concatenation{Items: []grammar.RuleNode{grammar.SymbolRef{Name: "Foo"}}}),
	)
	require.Equal(t,
		grammar.SymbolRef{Name: "Foo"},
		Simplify(grammar.Concatenation{Items: []grammar.RuleNode{
			grammar.Empty{},
			grammar.SymbolRef{Name: "Foo"},
		}}),
	)
	require.Equal(t,
		grammar.Concatenation{Items: []grammar.RuleNode{
			grammar.SymbolRef{Name: "Foo"},
			grammar.SymbolRef{Name: "Bar"},
		}},
		Simplify(grammar.Concatenation{Items: []grammar.RuleNode{
			grammar.SymbolRef{Name: "Foo"},
			grammar.SymbolRef{Name: "Bar"},
		}}),
	)
	// Labeled empties stay; they still bind fields.
	require.Equal(t,
		grammar.Labeled{Label: "foo", Inner: grammar.Empty{}},
		Simplify(grammar.Concatenation{Items: []grammar.RuleNode{
			grammar.Labeled{Label: "foo", Inner: grammar.Literal{Text: "x"}},
			grammar.Literal{Text: "y"},
		}}),
	)
}

func TestSimplifyAlternation(t *testing.T) {
	require.Equal(t,
		grammar.Empty{},
		Simplify(grammar.Alternation{Items: []grammar.RuleNode{grammar.Empty{}}}),
	)
	require.Equal(t,
		grammar.SymbolRef{Name: "Foo"},
		Simplify(grammar.Alternation{Items: []grammar.RuleNode{grammar.SymbolRef{Name: "Foo"}}}),
	)
	require.Equal(t,
		grammar.Alternation{Items: []grammar.RuleNode{
			grammar.Empty{},
			grammar.SymbolRef{Name: "Foo"},
		}},
		Simplify(grammar.Alternation{Items: []grammar.RuleNode{
			grammar.Empty{},
			grammar.SymbolRef{Name: "Foo"},
		}}),
	)
	require.Equal(t,
		grammar.Alternation{Items: []grammar.RuleNode{
			grammar.SymbolRef{Name: "Foo"},
			grammar.SymbolRef{Name: "Bar"},
		}},
		Simplify(grammar.Alternation{Items: []grammar.RuleNode{
			grammar.SymbolRef{Name: "Foo"},
			grammar.SymbolRef{Name: "Bar"},
		}}),
	)
}

func TestSimplifyOption(t *testing.T) {
	require.Equal(t,
		grammar.Option{Item: grammar.Empty{}},
		Simplify(grammar.Option{Item: grammar.Empty{}}),
	)
	require.Equal(t,
		grammar.Option{Item: grammar.Empty{}},
		Simplify(grammar.Option{Item: grammar.Literal{Text: "foo"}}),
	)
	require.Equal(t,
		grammar.Option{Item: grammar.SymbolRef{Name: "Foo"}},
		Simplify(grammar.Option{Item: grammar.SymbolRef{Name: "Foo"}}),
	)
	require.Equal(t,
		grammar.Labeled{Label: "foo", Inner: grammar.Option{Item: grammar.SymbolRef{Name: "Foo"}}},
		Simplify(grammar.Option{Item: grammar.Labeled{Label: "foo", Inner: grammar.SymbolRef{Name: "Foo"}}}),
	)
}

func TestSimplifyRepeated(t *testing.T) {
	require.Equal(t,
		grammar.Repeated{Min: 1, Item: grammar.SymbolRef{Name: "X"}, Separator: optional.Some(","), AllowTrailing: true},
		Simplify(grammar.Repeated{
			Min:           1,
			Item:          grammar.Concatenation{Items: []grammar.RuleNode{grammar.SymbolRef{Name: "X"}}},
			Separator:     optional.Some(","),
			AllowTrailing: true,
		}),
	)
}

func TestSimplifyGrammar(t *testing.T) {
	g, err := grammar.New(
		grammar.Rule{Name: "Paren", Node: grammar.Concatenation{Items: []grammar.RuleNode{
			grammar.Literal{Text: "("},
			grammar.Labeled{Label: "value", Inner: grammar.SymbolRef{Name: "Value"}},
			grammar.Literal{Text: ")"},
		}}},
		grammar.Rule{Name: "Value", Node: grammar.Literal{Text: "v"}},
	)
	require.NoError(t, err)

	simplified, err := SimplifyGrammar(g)
	require.NoError(t, err)

	paren, ok := simplified.Lookup("Paren")
	require.True(t, ok)
	require.Equal(t, grammar.Labeled{Label: "value", Inner: grammar.SymbolRef{Name: "Value"}}, paren)

	value, ok := simplified.Lookup("Value")
	require.True(t, ok)
	require.Equal(t, grammar.Empty{}, value)

	require.Equal(t, "Paren", simplified.Rules()[0].Name)
	require.Equal(t, "Value", simplified.Rules()[1].Name)
}
