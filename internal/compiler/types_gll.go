package compiler

import (
	"fmt"

	"gopkg.microglot.org/gllgen/internal/exc"
	"gopkg.microglot.org/gllgen/internal/grammar"
	"gopkg.microglot.org/gllgen/internal/schema"
)

// typeOf derives the schema type a rule node denotes in field position,
// meaning inside a concatenation or behind a postfix operator. Alternations
// and character ranges have no field-position type. Returns nil after
// reporting when derivation fails.
func (self *ruleCompiler) typeOf(node grammar.RuleNode) schema.Type {
	switch n := node.(type) {
	case grammar.Labeled:
		return self.typeOf(n.Inner)
	case grammar.Literal:
		return schema.LeafType{}
	case grammar.CharRange:
		self.report(exc.CodeUnsupportedConstruct, fmt.Sprintf("rule %s: character ranges are not supported", self.rule.Name))
		return nil
	case grammar.SymbolRef:
		typeName, ok := self.names[n.Name]
		if !ok {
			self.report(exc.CodeUndefinedReference, fmt.Sprintf("rule %s references undefined symbol %s", self.rule.Name, n.Name))
			return nil
		}
		return schema.RefType{Name: typeName}
	case grammar.Concatenation:
		fields := self.fieldsOf(n.Items)
		if fields == nil {
			return nil
		}
		return schema.TupleType{Fields: fields}
	case grammar.Alternation:
		self.report(exc.CodeUnsupportedConstruct, fmt.Sprintf("rule %s: an alternation cannot be nested inside a rule body", self.rule.Name))
		return nil
	case grammar.Option:
		elem := self.typeOf(n.Item)
		if elem == nil {
			return nil
		}
		return schema.OptionType{Elem: elem}
	case grammar.Repeated:
		elem := self.typeOf(n.Item)
		if elem == nil {
			return nil
		}
		return schema.SeqType{Elem: elem}
	case grammar.Empty:
		return schema.UnitType{}
	default:
		self.report(exc.CodeUnsupportedConstruct, fmt.Sprintf("rule %s: unsupported grammar node %T", self.rule.Name, node))
		return nil
	}
}

// fieldNameOf names the field a concatenation item binds to. Labels win and
// unlabeled items are numbered by position.
func fieldNameOf(node grammar.RuleNode, index int) string {
	if labeled, ok := node.(grammar.Labeled); ok {
		return labeled.Label
	}
	return fmt.Sprintf("field_%d", index)
}

// fieldsOf derives the field declarations of a concatenation. The field
// names double as lookup keys into the engine's match records, so they stay
// exactly as written in the grammar. Returns nil after reporting when an
// item fails to derive or two items bind the same field name.
func (self *ruleCompiler) fieldsOf(items []grammar.RuleNode) []schema.FieldDecl {
	fields := make([]schema.FieldDecl, 0, len(items))
	seen := make(map[string]bool, len(items))
	ok := true
	for index, item := range items {
		name := fieldNameOf(item, index)
		if seen[name] {
			self.report(exc.CodeNameCollision, fmt.Sprintf("rule %s: duplicate field name %s", self.rule.Name, name))
			ok = false
			continue
		}
		seen[name] = true
		fieldType := self.typeOf(item)
		if fieldType == nil {
			ok = false
			continue
		}
		fields = append(fields, schema.FieldDecl{Name: name, Type: fieldType})
	}
	if !ok {
		return nil
	}
	return fields
}
