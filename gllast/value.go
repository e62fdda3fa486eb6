// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package gllast provides the value containers that typed syntax trees are
// built from: leaves of matched text, unit values, options, sequences,
// records, and closed variants. The containers are plain immutable data with
// structural equality and carry no parsing machinery of their own.
package gllast

import "fmt"

// Value is implemented by every typed syntax tree value.
type Value interface {
	// Equal reports structural equality. Values of different kinds are
	// never equal.
	Equal(other Value) bool
}

// Equal compares two values, treating nil as equal only to nil.
func Equal(a Value, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// valueEqual compares two container elements. Elements must implement Value
// to compare as equal; the containers are generic so that generated code can
// instantiate them with concrete types, but equality is defined over values.
func valueEqual(a any, b any) bool {
	av, aok := a.(Value)
	bv, bok := b.(Value)
	if !aok || !bok {
		return false
	}
	return av.Equal(bv)
}

// Leaf is a string of matched source text.
type Leaf string

func (self Leaf) Equal(other Value) bool {
	o, ok := other.(Leaf)
	return ok && self == o
}

func (self Leaf) String() string {
	return string(self)
}

// Unit is the value of a rule or field that carries no content. All Unit
// values are equal to each other.
type Unit struct{}

func (Unit) Equal(other Value) bool {
	_, ok := other.(Unit)
	return ok
}

// Option holds either no value or exactly one. An empty option is never
// equal to a populated one.
type Option[T any] struct {
	present bool
	value   T
}

func Some[T any](v T) Option[T] {
	return Option[T]{
		present: true,
		value:   v,
	}
}

func None[T any]() Option[T] {
	return Option[T]{}
}

func (self Option[T]) IsPresent() bool {
	return self.present
}

// Get returns the contained value, or the zero value when absent.
func (self Option[T]) Get() T {
	return self.value
}

func (self Option[T]) Equal(other Value) bool {
	o, ok := other.(Option[T])
	if !ok || self.present != o.present {
		return false
	}
	if !self.present {
		return true
	}
	return valueEqual(self.value, o.value)
}

// Seq is an ordered sequence of values. Any plain slice of the element type
// converts directly via Seq[T](items); equality is elementwise.
type Seq[T any] []T

func (self Seq[T]) Equal(other Value) bool {
	o, ok := other.(Seq[T])
	if !ok || len(self) != len(o) {
		return false
	}
	for i := range self {
		if !valueEqual(self[i], o[i]) {
			return false
		}
	}
	return true
}

// Field is one named member of a Record.
type Field struct {
	Name  string
	Value Value
}

// Record is an ordered product of named fields. Records with an empty type
// name are anonymous tuples. Field order is significant for equality.
type Record struct {
	typeName string
	fields   []Field
}

func NewRecord(typeName string, fields ...Field) Record {
	return Record{
		typeName: typeName,
		fields:   append([]Field(nil), fields...),
	}
}

func (self Record) TypeName() string {
	return self.typeName
}

// Fields returns the record's fields in declaration order. The returned
// slice must not be modified.
func (self Record) Fields() []Field {
	return self.fields
}

// Field returns the value of the named field.
func (self Record) Field(name string) (Value, bool) {
	for _, f := range self.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

func (self Record) Equal(other Value) bool {
	o, ok := other.(Record)
	if !ok || self.typeName != o.typeName || len(self.fields) != len(o.fields) {
		return false
	}
	for i := range self.fields {
		if self.fields[i].Name != o.fields[i].Name {
			return false
		}
		if !Equal(self.fields[i].Value, o.fields[i].Value) {
			return false
		}
	}
	return true
}

// Union describes a closed set of variant cases. The union itself is a
// descriptor, not a value; every value of the union is a Variant constructed
// through Case, which is the only way to build one.
type Union struct {
	name  string
	cases []string
}

func NewUnion(name string, cases ...string) *Union {
	return &Union{
		name:  name,
		cases: append([]string(nil), cases...),
	}
}

func (self *Union) Name() string {
	return self.name
}

// Cases returns the case names in declaration order. The returned slice
// must not be modified.
func (self *Union) Cases() []string {
	return self.cases
}

func (self *Union) Has(name string) bool {
	for _, c := range self.cases {
		if c == name {
			return true
		}
	}
	return false
}

// Case constructs the Variant value for one of the union's cases. Names
// outside the declared case set are rejected.
func (self *Union) Case(name string, payload Value) (Variant, error) {
	if !self.Has(name) {
		return Variant{}, fmt.Errorf("union %s has no case %q", self.name, name)
	}
	return Variant{
		union:    self.name,
		caseName: name,
		payload:  payload,
	}, nil
}

// Variant is a value of a closed variant type. Variants of different cases
// are never equal, regardless of payload.
type Variant struct {
	union    string
	caseName string
	payload  Value
}

func (self Variant) Union() string {
	return self.union
}

func (self Variant) Case() string {
	return self.caseName
}

func (self Variant) Payload() Value {
	return self.payload
}

func (self Variant) Equal(other Value) bool {
	o, ok := other.(Variant)
	if !ok || self.union != o.union || self.caseName != o.caseName {
		return false
	}
	return Equal(self.payload, o.payload)
}
