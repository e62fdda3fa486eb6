// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package gllast

import (
	"fmt"

	"gopkg.microglot.org/gllgen/rawtree"
)

// The FromTree helpers project raw engine trees onto containers. They are
// shared by the conversion routines the compiler assembles in memory and by
// generated source, so the two paths cannot drift apart. Each helper accepts
// exactly one raw shape and rejects everything else.

// LeafFromTree converts the matched text of a terminal or literal.
func LeafFromTree(tree rawtree.Tree) (Leaf, error) {
	text, ok := tree.(rawtree.Text)
	if !ok {
		return "", fmt.Errorf("expected matched text, got %T", tree)
	}
	return Leaf(text), nil
}

// UnitFromTree converts a match that carries no content. The raw tree is
// ignored entirely; engines disagree on what they emit for empty matches.
func UnitFromTree(tree rawtree.Tree) (Unit, error) {
	return Unit{}, nil
}

// OptionFromTree converts an optional match. A missing match arrives as
// rawtree.Absent or a nil tree; anything else is handed to elem.
func OptionFromTree[T any](tree rawtree.Tree, elem func(rawtree.Tree) (T, error)) (Option[T], error) {
	if tree == nil {
		return None[T](), nil
	}
	if _, ok := tree.(rawtree.Absent); ok {
		return None[T](), nil
	}
	v, err := elem(tree)
	if err != nil {
		return None[T](), err
	}
	return Some(v), nil
}

// SeqFromTree converts a repetition match, applying elem to every entry of
// the match list in order.
func SeqFromTree[T any](tree rawtree.Tree, elem func(rawtree.Tree) (T, error)) (Seq[T], error) {
	list, ok := tree.(rawtree.List)
	if !ok {
		return nil, fmt.Errorf("expected a match list, got %T", tree)
	}
	out := make(Seq[T], 0, len(list))
	for i, item := range list {
		v, err := elem(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
