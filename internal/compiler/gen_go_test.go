// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/gllgen/internal/grammar"
)

func TestRenderGoLeafGolden(t *testing.T) {
	artifact := compileGrammar(t, grammar.Rule{Name: "Word", Node: grammar.Literal{Text: "foo"}})

	src, err := RenderGo(artifact, "myast")
	require.NoError(t, err)

	expected := `// Code generated by gllgen. DO NOT EDIT.

package myast

import (
	"gopkg.microglot.org/gllgen/gllast"
	"gopkg.microglot.org/gllgen/rawtree"
)

// Word holds the matched text of "foo".
type Word gllast.Leaf

func WordFromTree(tree rawtree.Tree) (Word, error) {
	v, err := gllast.LeafFromTree(tree)
	return Word(v), err
}

// Semantics maps every symbol name to its conversion from raw trees.
var Semantics = map[string]func(tree rawtree.Tree) (any, error){
	"Word": func(tree rawtree.Tree) (any, error) { return WordFromTree(tree) },
}
`
	require.Equal(t, expected, src)
}

func TestRenderGoStruct(t *testing.T) {
	artifact := compileGrammar(t, grammar.Rule{Name: "Pair", Node: grammar.Concatenation{Items: []grammar.RuleNode{
		grammar.Labeled{Label: "a", Inner: grammar.Literal{Text: "x"}},
		grammar.Labeled{Label: "b", Inner: grammar.Option{Item: grammar.Literal{Text: "y"}}},
		grammar.Labeled{Label: "c", Inner: grammar.Repeated{Min: 0, Item: grammar.Literal{Text: "z"}}},
	}}})

	src, err := RenderGo(artifact, "myast")
	require.NoError(t, err)

	require.Contains(t, src, "type Pair struct {")
	require.Contains(t, src, "\tA gllast.Leaf\n")
	require.Contains(t, src, "\tB gllast.Option[gllast.Leaf]\n")
	require.Contains(t, src, "\tC gllast.Seq[gllast.Leaf]\n")
	require.Contains(t, src, "func PairFromTree(tree rawtree.Tree) (Pair, error) {")
	require.Contains(t, src, `f0, err := gllast.LeafFromTree(gllAttr(raw, "a"))`)
	require.Contains(t, src, `f1, err := func(tree rawtree.Tree) (gllast.Option[gllast.Leaf], error) { return gllast.OptionFromTree[gllast.Leaf](tree, gllast.LeafFromTree) }(gllAttr(raw, "b"))`)
	require.Contains(t, src, "out.B = f1")
	require.Contains(t, src, "func gllAttr(node rawtree.Node, name string) rawtree.Tree {")
}

func TestRenderGoUnion(t *testing.T) {
	artifact := compileGrammar(t, grammar.Rule{Name: "Token", Node: grammar.Alternation{Items: []grammar.RuleNode{
		grammar.Labeled{Label: "Bar", Inner: grammar.Literal{Text: "bar"}},
		grammar.Labeled{Label: "Baz", Inner: grammar.Literal{Text: "baz"}},
	}}})

	src, err := RenderGo(artifact, "myast")
	require.NoError(t, err)

	require.Contains(t, src, "type Token interface {")
	require.Contains(t, src, "\tisToken()\n")
	require.Contains(t, src, "type Token_Bar gllast.Leaf")
	require.Contains(t, src, "func (Token_Bar) isToken() {}")
	require.Contains(t, src, "func (Token_Baz) isToken() {}")
	require.Contains(t, src, `case "Bar":`)
	require.Contains(t, src, "return Token_BarFromTree(choice.Sub)")
	require.Contains(t, src, `fmt.Errorf("Token: unknown variant %q", choice.Name)`)
}

func TestRenderGoBuiltinPrelude(t *testing.T) {
	artifact := compileGrammar(t, grammar.Rule{Name: "Id", Node: grammar.SymbolRef{Name: "IDENT"}})

	src, err := RenderGo(artifact, "myast")
	require.NoError(t, err)

	require.Contains(t, src, "type IDENT struct {")
	require.Contains(t, src, "strings.TrimSpace(string(text))")
	require.Contains(t, src, `"IDENT": func(tree rawtree.Tree) (any, error) { return IDENTFromTree(tree) },`)
	require.Contains(t, src, "return IdFromTree(tree) },")
	require.NotContains(t, src, "LIFETIME")
	require.NotContains(t, src, "TOKEN_TREE")
}

func TestRenderGoTokenTree(t *testing.T) {
	artifact := compileGrammar(t, grammar.Rule{Name: "Body", Node: grammar.Concatenation{Items: []grammar.RuleNode{
		grammar.Labeled{Label: "tokens", Inner: grammar.SymbolRef{Name: "TOKEN_TREE"}},
	}}})

	src, err := RenderGo(artifact, "myast")
	require.NoError(t, err)

	require.Contains(t, src, "type TOKEN_TREE struct {")
	require.Contains(t, src, "func tokenTreeList(list rawtree.List) (gllast.Seq[any], error) {")
	require.Contains(t, src, "\tTokens gllast.Seq[any]\n")
}

func TestRenderGoSanitizedNames(t *testing.T) {
	artifact := compileGrammar(t, grammar.Rule{Name: "list-item", Node: grammar.Literal{Text: "x"}})

	src, err := RenderGo(artifact, "myast")
	require.NoError(t, err)

	require.Contains(t, src, "type List_item gllast.Leaf")
	require.Contains(t, src, `"list-item": func(tree rawtree.Tree) (any, error) { return List_itemFromTree(tree) },`)
}

func TestRenderGoNestedTuple(t *testing.T) {
	artifact := compileGrammar(t, grammar.Rule{Name: "Group", Node: grammar.Concatenation{Items: []grammar.RuleNode{
		grammar.Labeled{Label: "pair", Inner: grammar.Concatenation{Items: []grammar.RuleNode{
			grammar.Labeled{Label: "l", Inner: grammar.Literal{Text: "("}},
			grammar.Labeled{Label: "r", Inner: grammar.Literal{Text: ")"}},
		}}},
	}}})

	src, err := RenderGo(artifact, "myast")
	require.NoError(t, err)

	require.Contains(t, src, "type Group_pair struct {")
	require.Contains(t, src, "\tPair Group_pair\n")
	require.Contains(t, src, `f0, err := Group_pairFromTree(gllAttr(raw, "pair"))`)
}

func TestRenderGoWrapper(t *testing.T) {
	artifact := compileGrammar(t,
		grammar.Rule{Name: "Alias", Node: grammar.SymbolRef{Name: "Word"}},
		grammar.Rule{Name: "Word", Node: grammar.Literal{Text: "w"}},
	)

	src, err := RenderGo(artifact, "myast")
	require.NoError(t, err)

	require.Contains(t, src, "type Alias struct {")
	require.Contains(t, src, "\tWord\n")
	require.Contains(t, src, "v, err := WordFromTree(tree)")
	require.Contains(t, src, "return Alias{Word: v}, nil")
}

func TestRenderGoExportCollision(t *testing.T) {
	artifact := compileGrammar(t,
		grammar.Rule{Name: "word", Node: grammar.Literal{Text: "a"}},
		grammar.Rule{Name: "Word", Node: grammar.Literal{Text: "b"}},
	)

	_, err := RenderGo(artifact, "myast")
	require.ErrorContains(t, err, "duplicate generated type name Word")
}

func TestRenderGoDefaultPackage(t *testing.T) {
	artifact := compileGrammar(t)

	src, err := RenderGo(artifact, "")
	require.NoError(t, err)
	require.Contains(t, src, "package ast\n")
	require.Contains(t, src, "var Semantics = map[string]func(tree rawtree.Tree) (any, error){")
}
