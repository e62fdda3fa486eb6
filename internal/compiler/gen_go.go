// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"fmt"
	"go/format"
	"sort"
	"strings"

	"gopkg.microglot.org/gllgen/internal/schema"
)

// RenderGo renders an artifact as a Go source file. Where the in-memory
// artifact dispatches through records and variants at run time, the
// rendered source declares native types: one struct, interface, or defined
// type per declaration, a FromTree function per type, and a static
// Semantics map keyed by symbol name. Unions become sealed interfaces whose
// variant types carry unexported marker methods, so a switch over variants
// is checkable by the Go compiler.
//
// Type names are exported forms of the declaration names. Two declarations
// whose names differ only in the case of the first letter collide here even
// though the in-memory artifact keeps them apart; rendering fails rather
// than emit source that silently merged them.
func RenderGo(artifact *Artifact, packageName string) (string, error) {
	if packageName == "" {
		packageName = "ast"
	}
	r := &goRenderer{
		artifact: artifact,
		emitted:  map[string]bool{},
	}
	// Helper and dispatch names are fixed; a declaration may not take them.
	r.emitted["Semantics"] = true
	r.emitted["gllAttr"] = true
	r.emitted["tokenTreeList"] = true

	for _, decl := range artifact.Decls {
		if err := r.renderDecl(decl, nil); err != nil {
			return "", err
		}
		if err := r.flushSynthesized(); err != nil {
			return "", err
		}
	}
	if err := r.renderBuiltins(); err != nil {
		return "", err
	}
	if r.needAttr {
		r.printf("func gllAttr(node rawtree.Node, name string) rawtree.Tree {\n")
		r.printf("\tif sub, ok := node[name]; ok && sub != nil {\n")
		r.printf("\t\treturn sub\n")
		r.printf("\t}\n")
		r.printf("\treturn rawtree.Absent{}\n")
		r.printf("}\n\n")
	}
	r.renderSemantics()

	var out strings.Builder
	out.WriteString("// Code generated by gllgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&out, "package %s\n\n", packageName)
	out.WriteString("import (\n")
	if r.needFmt {
		out.WriteString("\t\"fmt\"\n")
	}
	if r.needStrings {
		out.WriteString("\t\"strings\"\n")
	}
	if r.needFmt || r.needStrings {
		out.WriteString("\n")
	}
	if r.needGllast {
		out.WriteString("\t\"gopkg.microglot.org/gllgen/gllast\"\n")
	}
	out.WriteString("\t\"gopkg.microglot.org/gllgen/rawtree\"\n")
	out.WriteString(")\n\n")
	out.WriteString(r.body.String())

	formatted, err := format.Source([]byte(out.String()))
	if err != nil {
		return "", fmt.Errorf("formatting generated source: %w", err)
	}
	return string(formatted), nil
}

type goRenderer struct {
	artifact    *Artifact
	body        strings.Builder
	emitted     map[string]bool
	synthesized []schema.StructDecl
	needFmt     bool
	needStrings bool
	needGllast  bool
	needAttr    bool
}

func (self *goRenderer) printf(format string, args ...any) {
	fmt.Fprintf(&self.body, format, args...)
}

func (self *goRenderer) define(name string) error {
	if self.emitted[name] {
		return fmt.Errorf("duplicate generated type name %s", name)
	}
	self.emitted[name] = true
	return nil
}

func (self *goRenderer) flushSynthesized() error {
	for len(self.synthesized) > 0 {
		next := self.synthesized[0]
		self.synthesized = self.synthesized[1:]
		if err := self.renderDecl(next, nil); err != nil {
			return err
		}
	}
	return nil
}

// renderDecl emits the type, marker methods, and FromTree function for one
// declaration. markers lists the union membership methods the type must
// carry; it grows when unions nest.
func (self *goRenderer) renderDecl(decl schema.Decl, markers []string) error {
	switch d := decl.(type) {
	case schema.LeafDecl:
		name := exportName(d.Name)
		if err := self.define(name); err != nil {
			return err
		}
		self.needGllast = true
		self.printf("// %s holds the matched text of %q.\n", name, d.Text)
		self.printf("type %s gllast.Leaf\n\n", name)
		self.renderMarkers(name, markers)
		self.printf("func %sFromTree(tree rawtree.Tree) (%s, error) {\n", name, name)
		self.printf("\tv, err := gllast.LeafFromTree(tree)\n")
		self.printf("\treturn %s(v), err\n", name)
		self.printf("}\n\n")
		return nil
	case schema.UnitDecl:
		name := exportName(d.Name)
		if err := self.define(name); err != nil {
			return err
		}
		self.needGllast = true
		self.printf("// %s marks a match that carries no content.\n", name)
		self.printf("type %s gllast.Unit\n\n", name)
		self.renderMarkers(name, markers)
		self.printf("func %sFromTree(tree rawtree.Tree) (%s, error) {\n", name, name)
		self.printf("\treturn %s{}, nil\n", name)
		self.printf("}\n\n")
		return nil
	case schema.WrapperDecl:
		name := exportName(d.Name)
		if err := self.define(name); err != nil {
			return err
		}
		target := exportName(d.Target.Name)
		self.printf("// %s wraps a %s match under its own name.\n", name, target)
		self.printf("type %s struct {\n\t%s\n}\n\n", name, target)
		self.renderMarkers(name, markers)
		self.printf("func %sFromTree(tree rawtree.Tree) (%s, error) {\n", name, name)
		self.printf("\tv, err := %sFromTree(tree)\n", target)
		self.printf("\tif err != nil {\n\t\treturn %s{}, err\n\t}\n", name)
		self.printf("\treturn %s{%s: v}, nil\n", name, target)
		self.printf("}\n\n")
		return nil
	case schema.StructDecl:
		return self.renderStruct(d, markers)
	case schema.UnionDecl:
		return self.renderUnion(d, markers)
	default:
		return fmt.Errorf("unsupported declaration %T", decl)
	}
}

func (self *goRenderer) renderMarkers(typeName string, markers []string) {
	for _, marker := range markers {
		self.printf("func (%s) %s() {}\n", typeName, marker)
	}
	if len(markers) > 0 {
		self.printf("\n")
	}
}

func (self *goRenderer) renderStruct(d schema.StructDecl, markers []string) error {
	name := exportName(d.Name)
	if err := self.define(name); err != nil {
		return err
	}
	self.needFmt = true

	type fieldPlan struct {
		raw      string
		exported string
		goType   string
		fn       string
	}
	plans := make([]fieldPlan, 0, len(d.Fields))
	seen := make(map[string]bool, len(d.Fields))
	for _, field := range d.Fields {
		exported := exportName(field.Name)
		if seen[exported] {
			return fmt.Errorf("type %s: fields collide on %s after export", name, exported)
		}
		seen[exported] = true
		goType, fn, err := self.convExpr(field.Type, name, field.Name)
		if err != nil {
			return err
		}
		plans = append(plans, fieldPlan{raw: field.Name, exported: exported, goType: goType, fn: fn})
	}

	self.printf("type %s struct {\n", name)
	for _, plan := range plans {
		self.printf("\t%s %s\n", plan.exported, plan.goType)
	}
	self.printf("}\n\n")
	self.renderMarkers(name, markers)

	self.printf("func %sFromTree(tree rawtree.Tree) (%s, error) {\n", name, name)
	if len(plans) == 0 {
		self.printf("\tif _, ok := tree.(rawtree.Node); !ok {\n")
		self.printf("\t\treturn %s{}, fmt.Errorf(\"%s: expected a match record, got %%T\", tree)\n", name, name)
		self.printf("\t}\n")
		self.printf("\treturn %s{}, nil\n", name)
		self.printf("}\n\n")
		return nil
	}
	self.needAttr = true
	self.printf("\traw, ok := tree.(rawtree.Node)\n")
	self.printf("\tif !ok {\n")
	self.printf("\t\treturn %s{}, fmt.Errorf(\"%s: expected a match record, got %%T\", tree)\n", name, name)
	self.printf("\t}\n")
	self.printf("\tvar out %s\n", name)
	for index, plan := range plans {
		self.printf("\tf%d, err := %s(gllAttr(raw, %q))\n", index, plan.fn, plan.raw)
		self.printf("\tif err != nil {\n")
		self.printf("\t\treturn %s{}, fmt.Errorf(\"%s.%s: %%w\", err)\n", name, name, plan.raw)
		self.printf("\t}\n")
		self.printf("\tout.%s = f%d\n", plan.exported, index)
	}
	self.printf("\treturn out, nil\n")
	self.printf("}\n\n")
	return nil
}

func (self *goRenderer) renderUnion(d schema.UnionDecl, markers []string) error {
	name := exportName(d.Name)
	if err := self.define(name); err != nil {
		return err
	}
	self.needFmt = true
	own := "is" + name
	all := make([]string, 0, len(markers)+1)
	all = append(all, markers...)
	all = append(all, own)

	self.printf("// %s is a closed union; exactly one variant type satisfies it.\n", name)
	self.printf("type %s interface {\n", name)
	for _, marker := range all {
		self.printf("\t%s()\n", marker)
	}
	self.printf("}\n\n")

	for _, variant := range d.Variants {
		if err := self.renderDecl(variant.Decl, all); err != nil {
			return err
		}
	}

	self.printf("func %sFromTree(tree rawtree.Tree) (%s, error) {\n", name, name)
	self.printf("\tchoice, ok := tree.(rawtree.Choice)\n")
	self.printf("\tif !ok {\n")
	self.printf("\t\treturn nil, fmt.Errorf(\"%s: expected a variant choice, got %%T\", tree)\n", name)
	self.printf("\t}\n")
	self.printf("\tswitch choice.Name {\n")
	for _, variant := range d.Variants {
		self.printf("\tcase %q:\n", variant.Name)
		self.printf("\t\treturn %sFromTree(choice.Sub)\n", exportName(variant.Decl.DeclName()))
	}
	self.printf("\t}\n")
	self.printf("\treturn nil, fmt.Errorf(\"%s: unknown variant %%q\", choice.Name)\n", name)
	self.printf("}\n\n")
	return nil
}

// convExpr resolves a field type to its Go type expression and a function
// expression converting one raw tree into it. Tuples synthesize a named
// struct from the enclosing type and field name, queued for rendering after
// the current declaration.
func (self *goRenderer) convExpr(t schema.Type, parent string, field string) (string, string, error) {
	switch ft := t.(type) {
	case schema.LeafType:
		self.needGllast = true
		return "gllast.Leaf", "gllast.LeafFromTree", nil
	case schema.UnitType:
		self.needGllast = true
		return "gllast.Unit", "gllast.UnitFromTree", nil
	case schema.RefType:
		name := exportName(ft.Name)
		return name, name + "FromTree", nil
	case schema.OptionType:
		elemType, elemFn, err := self.convExpr(ft.Elem, parent, field)
		if err != nil {
			return "", "", err
		}
		self.needGllast = true
		goType := "gllast.Option[" + elemType + "]"
		fn := fmt.Sprintf("func(tree rawtree.Tree) (%s, error) { return gllast.OptionFromTree[%s](tree, %s) }", goType, elemType, elemFn)
		return goType, fn, nil
	case schema.SeqType:
		elemType, elemFn, err := self.convExpr(ft.Elem, parent, field)
		if err != nil {
			return "", "", err
		}
		self.needGllast = true
		goType := "gllast.Seq[" + elemType + "]"
		fn := fmt.Sprintf("func(tree rawtree.Tree) (%s, error) { return gllast.SeqFromTree[%s](tree, %s) }", goType, elemType, elemFn)
		return goType, fn, nil
	case schema.TupleType:
		name := exportName(parent + "_" + field)
		self.synthesized = append(self.synthesized, schema.StructDecl{Name: name, Fields: ft.Fields})
		return name, name + "FromTree", nil
	default:
		return "", "", fmt.Errorf("unsupported field type %T", t)
	}
}

// renderBuiltins emits declarations for the builtins the artifact's rules
// actually reference. The renderer knows the conversion source for the
// stock builtins only; referencing a custom builtin is an error here even
// though the in-memory artifact handles it fine.
func (self *goRenderer) renderBuiltins() error {
	refs := map[string]bool{}
	for _, decl := range self.artifact.Decls {
		collectDeclRefs(decl, refs)
	}
	for _, builtin := range self.artifact.Builtins {
		if !refs[sanitizeName(builtin.Name)] {
			continue
		}
		if err := self.define(exportName(builtin.Name)); err != nil {
			return err
		}
		switch builtin.Name {
		case "IDENT":
			self.renderTextBuiltin("IDENT", "Ident", nil)
		case "LIFETIME":
			self.renderTextBuiltin("LIFETIME", "Lifetime", []string{
				"value = strings.TrimPrefix(value, \"'\")",
				"value = strings.TrimSpace(value)",
			})
		case "PUNCT":
			self.renderTextBuiltin("PUNCT", "Punct", nil)
		case "LITERAL":
			self.renderTextBuiltin("LITERAL", "Literal", nil)
		case "TOKEN_TREE":
			self.renderTokenTreeBuiltin()
		default:
			return fmt.Errorf("cannot render builtin %s", builtin.Name)
		}
	}
	return nil
}

func (self *goRenderer) renderTextBuiltin(name string, field string, extra []string) {
	self.needFmt = true
	self.needStrings = true
	self.needGllast = true
	self.printf("type %s struct {\n\t%s gllast.Leaf\n}\n\n", name, field)
	self.printf("func %sFromTree(tree rawtree.Tree) (%s, error) {\n", name, name)
	self.printf("\ttext, ok := tree.(rawtree.Text)\n")
	self.printf("\tif !ok {\n")
	self.printf("\t\treturn %s{}, fmt.Errorf(\"%s: expected matched text, got %%T\", tree)\n", name, name)
	self.printf("\t}\n")
	self.printf("\tvalue := strings.TrimSpace(string(text))\n")
	for _, line := range extra {
		self.printf("\t%s\n", line)
	}
	self.printf("\treturn %s{%s: gllast.Leaf(value)}, nil\n", name, field)
	self.printf("}\n\n")
}

func (self *goRenderer) renderTokenTreeBuiltin() {
	self.needFmt = true
	self.needGllast = true
	self.printf("type TOKEN_TREE struct {\n\tTokens gllast.Seq[any]\n}\n\n")
	self.printf("func TOKEN_TREEFromTree(tree rawtree.Tree) (TOKEN_TREE, error) {\n")
	self.printf("\tlist, ok := tree.(rawtree.List)\n")
	self.printf("\tif !ok {\n")
	self.printf("\t\treturn TOKEN_TREE{}, fmt.Errorf(\"TOKEN_TREE: expected a match list, got %%T\", tree)\n")
	self.printf("\t}\n")
	self.printf("\ttokens, err := tokenTreeList(list)\n")
	self.printf("\tif err != nil {\n")
	self.printf("\t\treturn TOKEN_TREE{}, fmt.Errorf(\"TOKEN_TREE: %%w\", err)\n")
	self.printf("\t}\n")
	self.printf("\treturn TOKEN_TREE{Tokens: tokens}, nil\n")
	self.printf("}\n\n")
	self.printf("func tokenTreeList(list rawtree.List) (gllast.Seq[any], error) {\n")
	self.printf("\tout := make(gllast.Seq[any], 0, len(list))\n")
	self.printf("\tfor index, item := range list {\n")
	self.printf("\t\tswitch t := item.(type) {\n")
	self.printf("\t\tcase rawtree.Text:\n")
	self.printf("\t\t\tout = append(out, gllast.Leaf(t))\n")
	self.printf("\t\tcase rawtree.List:\n")
	self.printf("\t\t\tnested, err := tokenTreeList(t)\n")
	self.printf("\t\t\tif err != nil {\n")
	self.printf("\t\t\t\treturn nil, fmt.Errorf(\"token %%d: %%w\", index, err)\n")
	self.printf("\t\t\t}\n")
	self.printf("\t\t\tout = append(out, nested)\n")
	self.printf("\t\tdefault:\n")
	self.printf("\t\t\treturn nil, fmt.Errorf(\"token %%d: expected token text or a token list, got %%T\", index, item)\n")
	self.printf("\t\t}\n")
	self.printf("\t}\n")
	self.printf("\treturn out, nil\n")
	self.printf("}\n\n")
}

// renderSemantics emits the static dispatch map. Keys are the raw symbol
// names the engine reports, including symbols whose type names differ after
// sanitization.
func (self *goRenderer) renderSemantics() {
	keys := make([]string, 0, len(self.artifact.Semantics))
	for key := range self.artifact.Semantics {
		if !self.emitted[exportName(key)] {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	self.printf("// Semantics maps every symbol name to its conversion from raw trees.\n")
	self.printf("var Semantics = map[string]func(tree rawtree.Tree) (any, error){\n")
	for _, key := range keys {
		self.printf("\t%q: func(tree rawtree.Tree) (any, error) { return %sFromTree(tree) },\n", key, exportName(key))
	}
	self.printf("}\n")
}

func collectDeclRefs(decl schema.Decl, refs map[string]bool) {
	switch d := decl.(type) {
	case schema.WrapperDecl:
		refs[d.Target.Name] = true
	case schema.StructDecl:
		for _, field := range d.Fields {
			collectTypeRefs(field.Type, refs)
		}
	case schema.UnionDecl:
		for _, variant := range d.Variants {
			collectDeclRefs(variant.Decl, refs)
		}
	}
}

func collectTypeRefs(t schema.Type, refs map[string]bool) {
	switch ft := t.(type) {
	case schema.RefType:
		refs[ft.Name] = true
	case schema.OptionType:
		collectTypeRefs(ft.Elem, refs)
	case schema.SeqType:
		collectTypeRefs(ft.Elem, refs)
	case schema.TupleType:
		for _, field := range ft.Fields {
			collectTypeRefs(field.Type, refs)
		}
	}
}
