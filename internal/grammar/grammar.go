// Package grammar defines the rule algebra that GLL grammar files are
// parsed into and that the compiler consumes. A grammar is an ordered set
// of named rules; each rule body is a tree of RuleNode values.
package grammar

import (
	"fmt"
	"strings"

	"gopkg.microglot.org/gllgen/internal/optional"
)

// RuleNode is one node of a rule body. Every node renders itself back to
// GLL notation through String, and the rendered form parses to an
// equivalent node.
type RuleNode interface {
	ruleNode()
	fmt.Stringer
}

// Labeled assigns a field or variant name to the node it wraps.
type Labeled struct {
	Label string
	Inner RuleNode
}

// Literal matches a fixed string of source text.
type Literal struct {
	Text string
}

// CharRange matches any single character between From and To inclusive.
type CharRange struct {
	From rune
	To   rune
}

// SymbolRef refers to another rule by name. References may point at rules
// defined later in the grammar.
type SymbolRef struct {
	Name string
}

// Concatenation matches each item in order.
type Concatenation struct {
	Items []RuleNode
}

// Alternation matches exactly one of its items.
type Alternation struct {
	Items []RuleNode
}

// Option matches its item zero or one times.
type Option struct {
	Item RuleNode
}

// Repeated matches its item Min or more times, optionally with a separator
// between repetitions. AllowTrailing permits a dangling separator after the
// final item.
type Repeated struct {
	Min           int
	Item          RuleNode
	Separator     optional.Optional[string]
	AllowTrailing bool
}

// Empty matches nothing and carries no content.
type Empty struct{}

// Rule pairs a rule name with its body.
type Rule struct {
	Name string
	Node RuleNode
}

// Grammar is an ordered collection of uniquely named rules. Order is
// preserved from the source text and determines the order of emitted
// declarations.
type Grammar struct {
	rules []Rule
	index map[string]int
}

// New builds a grammar from rules, rejecting duplicate names.
func New(rules ...Rule) (*Grammar, error) {
	g := &Grammar{
		rules: make([]Rule, 0, len(rules)),
		index: make(map[string]int, len(rules)),
	}
	for _, rule := range rules {
		if _, ok := g.index[rule.Name]; ok {
			return nil, fmt.Errorf("duplicate symbol: %s", rule.Name)
		}
		g.index[rule.Name] = len(g.rules)
		g.rules = append(g.rules, rule)
	}
	return g, nil
}

// Rules returns the rules in declaration order. The returned slice must
// not be modified.
func (self *Grammar) Rules() []Rule {
	return self.rules
}

// Lookup returns the body of the named rule.
func (self *Grammar) Lookup(name string) (RuleNode, bool) {
	if i, ok := self.index[name]; ok {
		return self.rules[i].Node, true
	}
	return nil, false
}

func (self *Grammar) Len() int {
	return len(self.rules)
}

// Walk visits every node nested inside node, children before parents.
func Walk(node RuleNode, f func(RuleNode)) {
	switch n := node.(type) {
	case Labeled:
		Walk(n.Inner, f)
	case Concatenation:
		for _, item := range n.Items {
			Walk(item, f)
		}
	case Alternation:
		for _, item := range n.Items {
			Walk(item, f)
		}
	case Option:
		Walk(n.Item, f)
	case Repeated:
		Walk(n.Item, f)
	}
	f(node)
}

func (Labeled) ruleNode()       {}
func (Literal) ruleNode()       {}
func (CharRange) ruleNode()     {}
func (SymbolRef) ruleNode()     {}
func (Concatenation) ruleNode() {}
func (Alternation) ruleNode()   {}
func (Option) ruleNode()        {}
func (Repeated) ruleNode()      {}
func (Empty) ruleNode()         {}

// String renders every rule in GLL notation, one per line.
func (self *Grammar) String() string {
	var builder strings.Builder
	for _, rule := range self.rules {
		builder.WriteString(rule.String())
		builder.WriteString("\n")
	}
	return builder.String()
}

// String renders the rule in GLL notation. An alternation of labeled
// variants uses the named-rules form, matching how such rules are written
// in source.
func (self Rule) String() string {
	if alt, ok := self.Node.(Alternation); ok && len(alt.Items) > 0 {
		named := true
		for _, item := range alt.Items {
			if _, ok := item.(Labeled); !ok {
				named = false
				break
			}
		}
		if named {
			parts := make([]string, 0, len(alt.Items))
			for _, item := range alt.Items {
				parts = append(parts, item.String())
			}
			return self.Name + " = | " + strings.Join(parts, " | ") + ";"
		}
	}
	return self.Name + " = " + sequenceString(self.Node) + ";"
}

func (self Labeled) String() string {
	return self.Label + ": " + itemString(self.Inner)
}

// Quotes inside literal text already carry their backslash, so the raw
// text re-lexes to the same value.
func (self Literal) String() string {
	return `"` + self.Text + `"`
}

func (self CharRange) String() string {
	return fmt.Sprintf("'%c'..'%c'", self.From, self.To)
}

func (self SymbolRef) String() string {
	return self.Name
}

func (self Concatenation) String() string {
	parts := make([]string, 0, len(self.Items))
	for _, item := range self.Items {
		parts = append(parts, itemString(item))
	}
	return strings.Join(parts, " ")
}

func (self Alternation) String() string {
	parts := make([]string, 0, len(self.Items))
	for _, item := range self.Items {
		parts = append(parts, sequenceString(item))
	}
	return "{" + strings.Join(parts, " | ") + "}"
}

func (self Option) String() string {
	return primaryString(self.Item) + "?"
}

func (self Repeated) String() string {
	var builder strings.Builder
	builder.WriteString(primaryString(self.Item))
	if self.Min >= 1 {
		builder.WriteString("+")
	} else {
		builder.WriteString("*")
	}
	if self.Separator.IsPresent() {
		if self.AllowTrailing {
			builder.WriteString(" %% ")
		} else {
			builder.WriteString(" % ")
		}
		builder.WriteString(`"` + self.Separator.Value() + `"`)
	}
	return builder.String()
}

func (self Empty) String() string {
	return "{}"
}

// sequenceString renders a node standing where the notation expects a
// sequence of items, which is the one place an empty match renders as
// nothing at all.
func sequenceString(node RuleNode) string {
	if _, ok := node.(Empty); ok {
		return ""
	}
	return node.String()
}

// itemString renders a node standing as a single sequence item. A
// concatenation is not an item on its own and gets grouping braces.
func itemString(node RuleNode) string {
	if _, ok := node.(Concatenation); ok {
		return "{" + node.String() + "}"
	}
	return node.String()
}

// primaryString renders the operand of a postfix operator, bracing any
// node the postfix would otherwise bind into.
func primaryString(node RuleNode) string {
	switch node.(type) {
	case Literal, SymbolRef, CharRange, Empty, Alternation:
		return node.String()
	}
	return "{" + node.String() + "}"
}
