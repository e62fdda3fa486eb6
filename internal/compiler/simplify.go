// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"gopkg.microglot.org/gllgen/internal/grammar"
)

// SimplifyGrammar rewrites every rule of a grammar with Simplify, keeping
// rule order.
func SimplifyGrammar(g *grammar.Grammar) (*grammar.Grammar, error) {
	rules := g.Rules()
	out := make([]grammar.Rule, 0, len(rules))
	for _, rule := range rules {
		out = append(out, grammar.Rule{Name: rule.Name, Node: Simplify(rule.Node)})
	}
	return grammar.New(out...)
}

// Simplify rewrites a rule node into an equivalent that compiles to less
// noisy types. Matched literal text carries no information, so literals
// reduce to empty matches and concatenations shed them. Labels always
// survive, and a label directly under an option hoists above it so the
// field keeps its name when the option does not match.
func Simplify(node grammar.RuleNode) grammar.RuleNode {
	switch n := node.(type) {
	case grammar.Labeled:
		return grammar.Labeled{Label: n.Label, Inner: Simplify(n.Inner)}
	case grammar.Literal:
		return grammar.Empty{}
	case grammar.Concatenation:
		items := make([]grammar.RuleNode, 0, len(n.Items))
		for _, item := range n.Items {
			simplified := Simplify(item)
			if _, isEmpty := simplified.(grammar.Empty); isEmpty {
				continue
			}
			items = append(items, simplified)
		}
		switch len(items) {
		case 0:
			return grammar.Empty{}
		case 1:
			return items[0]
		default:
			return grammar.Concatenation{Items: items}
		}
	case grammar.Alternation:
		// Variants are never dropped, even empty ones; which branch
		// matched is information in itself.
		items := make([]grammar.RuleNode, 0, len(n.Items))
		for _, item := range n.Items {
			items = append(items, Simplify(item))
		}
		if len(items) == 1 {
			return items[0]
		}
		return grammar.Alternation{Items: items}
	case grammar.Option:
		inner := Simplify(n.Item)
		if labeled, isLabeled := inner.(grammar.Labeled); isLabeled {
			return grammar.Labeled{Label: labeled.Label, Inner: grammar.Option{Item: labeled.Inner}}
		}
		return grammar.Option{Item: inner}
	case grammar.Repeated:
		return grammar.Repeated{
			Min:           n.Min,
			Item:          Simplify(n.Item),
			Separator:     n.Separator,
			AllowTrailing: n.AllowTrailing,
		}
	default:
		return node
	}
}
