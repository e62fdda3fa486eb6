// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package rawtree models the untyped parse trees produced by a GLL or PEG
// execution engine. The shapes mirror how such engines report matches: plain
// matched text for terminals, a name-keyed record for concatenations, a
// single selected branch for alternations, an ordered list for repetitions,
// and an absence marker for options that did not match.
//
// The set of shapes is closed. Conversion routines produced by the compiler
// reject any value outside of it.
package rawtree

// Tree is a single node of an untyped parse tree.
type Tree interface {
	tree()
}

// Text is the matched source text of a terminal or literal.
type Text string

// Node is the attribute record produced by a concatenation match. Keys are
// the field names assigned during compilation. A missing key and a nil value
// both read as an absent attribute.
type Node map[string]Tree

// Choice records which branch of an alternation matched and carries the
// branch's own tree.
type Choice struct {
	Name string
	Sub  Tree
}

// List is the ordered sequence of matches produced by a repetition.
type List []Tree

// Absent marks an optional match that did not occur. Engines may report a
// nil Tree instead; both are accepted.
type Absent struct{}

func (Text) tree()   {}
func (Node) tree()   {}
func (Choice) tree() {}
func (List) tree()   {}
func (Absent) tree() {}
