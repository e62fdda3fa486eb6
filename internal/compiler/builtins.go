// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"fmt"
	"strings"

	"gopkg.microglot.org/gllgen/gllast"
	"gopkg.microglot.org/gllgen/internal/schema"
	"gopkg.microglot.org/gllgen/rawtree"
)

// Builtin is a terminal the execution engine matches natively instead of
// through a grammar rule. Builtins occupy symbol names exactly like rules
// do: they get declarations, entries in the dispatch table, and collision
// checks against rule names.
type Builtin struct {
	Name    string
	Decl    schema.Decl
	Convert Converter
}

// DefaultBuiltins returns the token-level terminals a Rust-flavored engine
// supplies: identifiers, lifetimes, punctuation, literals, and balanced
// token trees. Each converts to a single-field record so that references to
// builtins look no different from references to rules.
func DefaultBuiltins() []Builtin {
	return []Builtin{
		{
			Name: "TOKEN_TREE",
			Decl: schema.StructDecl{Name: "TOKEN_TREE", Fields: []schema.FieldDecl{
				{Name: "tokens", Type: schema.SeqType{Elem: schema.LeafType{}}},
			}},
			Convert: convertTokenTree,
		},
		{
			Name: "IDENT",
			Decl: schema.StructDecl{Name: "IDENT", Fields: []schema.FieldDecl{
				{Name: "ident", Type: schema.LeafType{}},
			}},
			Convert: builtinText("IDENT", "ident", strings.TrimSpace),
		},
		{
			Name: "LIFETIME",
			Decl: schema.StructDecl{Name: "LIFETIME", Fields: []schema.FieldDecl{
				{Name: "lifetime", Type: schema.LeafType{}},
			}},
			Convert: builtinText("LIFETIME", "lifetime", cleanLifetime),
		},
		{
			Name: "PUNCT",
			Decl: schema.StructDecl{Name: "PUNCT", Fields: []schema.FieldDecl{
				{Name: "punct", Type: schema.LeafType{}},
			}},
			Convert: builtinText("PUNCT", "punct", strings.TrimSpace),
		},
		{
			Name: "LITERAL",
			Decl: schema.StructDecl{Name: "LITERAL", Fields: []schema.FieldDecl{
				{Name: "literal", Type: schema.LeafType{}},
			}},
			Convert: builtinText("LITERAL", "literal", strings.TrimSpace),
		},
	}
}

// builtinText converts the matched text of a token terminal into the
// builtin's single-field record, cleaning the text first.
func builtinText(name string, field string, clean func(string) string) Converter {
	return func(tree rawtree.Tree) (gllast.Value, error) {
		text, ok := tree.(rawtree.Text)
		if !ok {
			return nil, fmt.Errorf("builtin %s: expected matched text, got %T", name, tree)
		}
		return gllast.NewRecord(name, gllast.Field{Name: field, Value: gllast.Leaf(clean(string(text)))}), nil
	}
}

// cleanLifetime strips the leading apostrophe off a lifetime token, so 'a
// converts to a.
func cleanLifetime(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "'")
	return strings.TrimSpace(s)
}

// convertTokenTree converts a balanced token stream. The engine reports the
// stream as a list whose entries are either matched text or nested lists
// for bracketed groups, and the nesting carries through to the record's
// tokens field.
func convertTokenTree(tree rawtree.Tree) (gllast.Value, error) {
	list, ok := tree.(rawtree.List)
	if !ok {
		return nil, fmt.Errorf("builtin TOKEN_TREE: expected a match list, got %T", tree)
	}
	tokens, err := convertTokens(list)
	if err != nil {
		return nil, fmt.Errorf("builtin TOKEN_TREE: %w", err)
	}
	return gllast.NewRecord("TOKEN_TREE", gllast.Field{Name: "tokens", Value: tokens}), nil
}

func convertTokens(list rawtree.List) (gllast.Value, error) {
	out := make(gllast.Seq[gllast.Value], 0, len(list))
	for index, item := range list {
		switch t := item.(type) {
		case rawtree.Text:
			out = append(out, gllast.Leaf(t))
		case rawtree.List:
			nested, err := convertTokens(t)
			if err != nil {
				return nil, fmt.Errorf("token %d: %w", index, err)
			}
			out = append(out, nested)
		default:
			return nil, fmt.Errorf("token %d: expected token text or a token list, got %T", index, item)
		}
	}
	return out, nil
}
