// Package schema describes the typed declarations derived from a grammar.
// It is the shared output language of the compiler: renderers turn these
// declarations into Go source or protobuf descriptors, and the conversion
// routines are built to match them shape for shape.
package schema

import (
	"fmt"
	"strings"
)

// Type is the shape of a value in field position.
type Type interface {
	typeShape()
	String() string
}

// LeafType is a string of matched source text.
type LeafType struct{}

// UnitType is a value with no content.
type UnitType struct{}

// OptionType is zero or one value of Elem.
type OptionType struct {
	Elem Type
}

// SeqType is an ordered sequence of Elem values.
type SeqType struct {
	Elem Type
}

// TupleType is an anonymous product of named fields, produced by a
// concatenation nested inside another rule body.
type TupleType struct {
	Fields []FieldDecl
}

// RefType refers to another declared type by name.
type RefType struct {
	Name string
}

func (LeafType) String() string {
	return "Leaf"
}

func (UnitType) String() string {
	return "Unit"
}

func (self OptionType) String() string {
	return fmt.Sprintf("Option[%s]", self.Elem)
}

func (self SeqType) String() string {
	return fmt.Sprintf("Seq[%s]", self.Elem)
}

func (self TupleType) String() string {
	parts := make([]string, 0, len(self.Fields))
	for _, field := range self.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field.Name, field.Type))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (self RefType) String() string {
	return self.Name
}

// FieldDecl is one named member of a struct or tuple.
type FieldDecl struct {
	Name string
	Type Type
}

// Decl is a single derived type declaration.
type Decl interface {
	decl()
	DeclName() string
}

// LeafDecl declares a type holding the matched text of a fixed literal.
type LeafDecl struct {
	Name string
	Text string
}

// UnitDecl declares a type with no content.
type UnitDecl struct {
	Name string
}

// WrapperDecl declares a distinct type that nominally wraps another
// declared type.
type WrapperDecl struct {
	Name   string
	Target RefType
}

// StructDecl declares a product type with one member per concatenation
// item.
type StructDecl struct {
	Name   string
	Fields []FieldDecl
}

// VariantDecl is one case of a union. Name is the case name used for
// dispatch; Decl is the declaration of the case's payload type.
type VariantDecl struct {
	Name string
	Decl Decl
}

// UnionDecl declares a closed variant type with one case per alternation
// item.
type UnionDecl struct {
	Name     string
	Variants []VariantDecl
}

func (self LeafDecl) DeclName() string {
	return self.Name
}

func (self UnitDecl) DeclName() string {
	return self.Name
}

func (self WrapperDecl) DeclName() string {
	return self.Name
}

func (self StructDecl) DeclName() string {
	return self.Name
}

func (self UnionDecl) DeclName() string {
	return self.Name
}

func (LeafType) typeShape()   {}
func (UnitType) typeShape()   {}
func (OptionType) typeShape() {}
func (SeqType) typeShape()    {}
func (TupleType) typeShape()  {}
func (RefType) typeShape()    {}

func (LeafDecl) decl()    {}
func (UnitDecl) decl()    {}
func (WrapperDecl) decl() {}
func (StructDecl) decl()  {}
func (UnionDecl) decl()   {}
