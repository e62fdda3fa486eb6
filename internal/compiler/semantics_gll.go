package compiler

import (
	"fmt"

	"gopkg.microglot.org/gllgen/gllast"
	"gopkg.microglot.org/gllgen/internal/exc"
	"gopkg.microglot.org/gllgen/internal/grammar"
	"gopkg.microglot.org/gllgen/internal/schema"
	"gopkg.microglot.org/gllgen/rawtree"
)

// ruleCompiler compiles a single grammar rule into its schema declaration
// and its conversion from raw parse trees. The names map covers every
// symbol of the grammar up front, so references resolve regardless of rule
// order. The table is the dispatch table shared by all converters of the
// artifact; it is only read when a converter runs, after the compiler has
// filled it in.
type ruleCompiler struct {
	rule     grammar.Rule
	names    map[string]string
	table    map[string]Converter
	reporter exc.Reporter
}

func (self *ruleCompiler) report(code string, message string) {
	_ = self.reporter.Report(exc.New(exc.Location{}, code, message))
}

// compile resolves the rule body to a declaration and a converter. Returns
// nils after reporting when the body uses an unsupported construct.
func (self *ruleCompiler) compile() (schema.Decl, Converter) {
	return self.compileBody(self.names[self.rule.Name], self.rule.Node)
}

// compileBody compiles a node in body position: a whole rule body, or one
// variant of an alternation. Alternations are only legal here; everything
// that is legal in field position is legal here too, except bare options
// and repetitions, which have no body form.
func (self *ruleCompiler) compileBody(typeName string, node grammar.RuleNode) (schema.Decl, Converter) {
	switch n := node.(type) {
	case grammar.Labeled:
		// A label on an entire body names nothing the declaration doesn't
		// already name.
		return self.compileBody(typeName, n.Inner)
	case grammar.Literal:
		return schema.LeafDecl{Name: typeName, Text: n.Text}, func(tree rawtree.Tree) (gllast.Value, error) {
			return gllast.LeafFromTree(tree)
		}
	case grammar.CharRange:
		self.report(exc.CodeUnsupportedConstruct, fmt.Sprintf("rule %s: character ranges are not supported", self.rule.Name))
		return nil, nil
	case grammar.SymbolRef:
		targetName, ok := self.names[n.Name]
		if !ok {
			self.report(exc.CodeUndefinedReference, fmt.Sprintf("rule %s references undefined symbol %s", self.rule.Name, n.Name))
			return nil, nil
		}
		return schema.WrapperDecl{Name: typeName, Target: schema.RefType{Name: targetName}}, self.symbolConverter(n.Name)
	case grammar.Concatenation:
		fields := self.fieldsOf(n.Items)
		if fields == nil {
			return nil, nil
		}
		return schema.StructDecl{Name: typeName, Fields: fields}, self.recordConverter(typeName, n.Items)
	case grammar.Alternation:
		return self.compileUnion(typeName, n)
	case grammar.Option:
		self.report(exc.CodeUnsupportedConstruct, fmt.Sprintf("rule %s: a bare option cannot form a rule body", self.rule.Name))
		return nil, nil
	case grammar.Repeated:
		self.report(exc.CodeUnsupportedConstruct, fmt.Sprintf("rule %s: a bare repetition cannot form a rule body", self.rule.Name))
		return nil, nil
	case grammar.Empty:
		return schema.UnitDecl{Name: typeName}, func(tree rawtree.Tree) (gllast.Value, error) {
			return gllast.UnitFromTree(tree)
		}
	default:
		self.report(exc.CodeUnsupportedConstruct, fmt.Sprintf("rule %s: unsupported grammar node %T", self.rule.Name, node))
		return nil, nil
	}
}

// compileUnion compiles an alternation body into a closed union. Variant
// names come from labels when present and are synthesized from the type
// name and position otherwise, matching the names the engine tags choice
// nodes with.
func (self *ruleCompiler) compileUnion(typeName string, alt grammar.Alternation) (schema.Decl, Converter) {
	variants := make([]schema.VariantDecl, 0, len(alt.Items))
	caseNames := make([]string, 0, len(alt.Items))
	convs := make(map[string]Converter, len(alt.Items))
	seen := make(map[string]bool, len(alt.Items))
	ok := true
	for index, item := range alt.Items {
		caseName := fmt.Sprintf("%s_%d", typeName, index)
		variantTypeName := caseName
		body := item
		if labeled, isLabeled := item.(grammar.Labeled); isLabeled {
			caseName = labeled.Label
			variantTypeName = sanitizeName(typeName + "_" + labeled.Label)
			body = labeled.Inner
		}
		if seen[caseName] {
			self.report(exc.CodeNameCollision, fmt.Sprintf("rule %s: duplicate variant name %s", self.rule.Name, caseName))
			ok = false
			continue
		}
		seen[caseName] = true
		decl, convert := self.compileBody(variantTypeName, body)
		if decl == nil || convert == nil {
			ok = false
			continue
		}
		variants = append(variants, schema.VariantDecl{Name: caseName, Decl: decl})
		caseNames = append(caseNames, caseName)
		convs[caseName] = convert
	}
	if !ok {
		return nil, nil
	}
	union := gllast.NewUnion(typeName, caseNames...)
	ruleName := self.rule.Name
	return schema.UnionDecl{Name: typeName, Variants: variants}, func(tree rawtree.Tree) (gllast.Value, error) {
		choice, isChoice := tree.(rawtree.Choice)
		if !isChoice {
			return nil, fmt.Errorf("rule %s: expected a variant choice, got %T", ruleName, tree)
		}
		convert, known := convs[choice.Name]
		if !known {
			return nil, fmt.Errorf("rule %s: unknown variant %s", ruleName, choice.Name)
		}
		payload, err := convert(choice.Sub)
		if err != nil {
			return nil, fmt.Errorf("rule %s, variant %s: %w", ruleName, choice.Name, err)
		}
		return union.Case(choice.Name, payload)
	}
}

// newConverter builds the conversion for a node in field position. The
// shape mirrors typeOf, which validates the node first; an unsupported node
// yields nil without reporting again.
func (self *ruleCompiler) newConverter(node grammar.RuleNode) Converter {
	switch n := node.(type) {
	case grammar.Labeled:
		return self.newConverter(n.Inner)
	case grammar.Literal:
		return func(tree rawtree.Tree) (gllast.Value, error) {
			return gllast.LeafFromTree(tree)
		}
	case grammar.SymbolRef:
		return self.symbolConverter(n.Name)
	case grammar.Concatenation:
		return self.recordConverter("", n.Items)
	case grammar.Option:
		elem := self.newConverter(n.Item)
		if elem == nil {
			return nil
		}
		return func(tree rawtree.Tree) (gllast.Value, error) {
			return gllast.OptionFromTree[gllast.Value](tree, elem)
		}
	case grammar.Repeated:
		elem := self.newConverter(n.Item)
		if elem == nil {
			return nil
		}
		return func(tree rawtree.Tree) (gllast.Value, error) {
			return gllast.SeqFromTree[gllast.Value](tree, elem)
		}
	case grammar.Empty:
		return func(tree rawtree.Tree) (gllast.Value, error) {
			return gllast.UnitFromTree(tree)
		}
	default:
		return nil
	}
}

// symbolConverter delegates to the converter registered for another symbol.
// The lookup happens when the converter runs, not when it is built, because
// the referenced rule may not be compiled yet.
func (self *ruleCompiler) symbolConverter(symbol string) Converter {
	table := self.table
	ruleName := self.rule.Name
	return func(tree rawtree.Tree) (gllast.Value, error) {
		convert, ok := table[symbol]
		if !ok {
			return nil, fmt.Errorf("rule %s: no conversion for symbol %s", ruleName, symbol)
		}
		return convert(tree)
	}
}

// recordConverter builds the conversion for a concatenation. The engine
// represents a concatenation match as a node keyed by field name; a key the
// engine omitted converts as an absent subtree, which is how empty options
// arrive. An empty typeName produces the anonymous records used for nested
// tuples.
func (self *ruleCompiler) recordConverter(typeName string, items []grammar.RuleNode) Converter {
	type fieldPlan struct {
		name    string
		convert Converter
	}
	plans := make([]fieldPlan, 0, len(items))
	for index, item := range items {
		convert := self.newConverter(item)
		if convert == nil {
			return nil
		}
		plans = append(plans, fieldPlan{name: fieldNameOf(item, index), convert: convert})
	}
	ruleName := self.rule.Name
	return func(tree rawtree.Tree) (gllast.Value, error) {
		raw, ok := tree.(rawtree.Node)
		if !ok {
			return nil, fmt.Errorf("rule %s: expected a match record, got %T", ruleName, tree)
		}
		fields := make([]gllast.Field, 0, len(plans))
		for _, plan := range plans {
			sub, present := raw[plan.name]
			if !present {
				sub = rawtree.Absent{}
			}
			value, err := plan.convert(sub)
			if err != nil {
				return nil, fmt.Errorf("rule %s, field %s: %w", ruleName, plan.name, err)
			}
			fields = append(fields, gllast.Field{Name: plan.name, Value: value})
		}
		return gllast.NewRecord(typeName, fields...), nil
	}
}
