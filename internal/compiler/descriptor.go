package compiler

import (
	"fmt"

	"google.golang.org/protobuf/types/descriptorpb"

	"gopkg.microglot.org/gllgen/internal/schema"
)

// ToFileDescriptorSet maps the derived schema onto protobuf descriptors so
// consumers outside Go can mirror the generated types. Declarations become
// messages in declaration order, closed unions become messages holding a
// oneof with one message-typed field per variant, optional fields use proto3
// presence, and repetition becomes a repeated field. Anonymous tuples are
// promoted to top-level messages named after the enclosing declaration and
// field.
func (self *Artifact) ToFileDescriptorSet(uri string, packageName string) (*descriptorpb.FileDescriptorSet, error) {
	if packageName == "" {
		packageName = "ast"
	}
	converter := descriptorConverter{
		artifact:    self,
		packageName: packageName,
		names:       map[string]bool{},
	}
	file, err := converter.convert(uri)
	if err != nil {
		return nil, err
	}
	return &descriptorpb.FileDescriptorSet{
		File: []*descriptorpb.FileDescriptorProto{file},
	}, nil
}

type descriptorConverter struct {
	artifact    *Artifact
	packageName string
	messages    []*descriptorpb.DescriptorProto
	pending     []schema.StructDecl
	names       map[string]bool
	needsEmpty  bool
}

func (c *descriptorConverter) convert(uri string) (*descriptorpb.FileDescriptorProto, error) {
	for _, decl := range c.artifact.Decls {
		if err := c.fromDecl(decl); err != nil {
			return nil, err
		}
		if err := c.flushPending(); err != nil {
			return nil, err
		}
	}

	refs := map[string]bool{}
	for _, decl := range c.artifact.Decls {
		collectDeclRefs(decl, refs)
	}
	for _, builtin := range c.artifact.Builtins {
		if !refs[sanitizeName(builtin.Name)] {
			continue
		}
		if err := c.fromDecl(builtin.Decl); err != nil {
			return nil, err
		}
		if err := c.flushPending(); err != nil {
			return nil, err
		}
	}

	var dependencies []string
	if c.needsEmpty {
		dependencies = append(dependencies, "google/protobuf/empty.proto")
	}

	syntax := "proto3"
	return &descriptorpb.FileDescriptorProto{
		Name:        &uri,
		Package:     &c.packageName,
		Dependency:  dependencies,
		MessageType: c.messages,
		// EnumType
		// Service
		// Extension
		// Options
		// SourceCodeInfo
		Syntax: &syntax,
	}, nil
}

func (c *descriptorConverter) flushPending() error {
	for len(c.pending) > 0 {
		next := c.pending[0]
		c.pending = c.pending[1:]
		if err := c.fromDecl(next); err != nil {
			return err
		}
	}
	return nil
}

func (c *descriptorConverter) define(name string) error {
	if c.names[name] {
		return fmt.Errorf("duplicate descriptor message name %s", name)
	}
	c.names[name] = true
	return nil
}

func (c *descriptorConverter) qualified(name string) string {
	return fmt.Sprintf(".%s.%s", c.packageName, name)
}

func (c *descriptorConverter) fromDecl(decl schema.Decl) error {
	if err := c.define(decl.DeclName()); err != nil {
		return err
	}
	switch d := decl.(type) {
	case schema.LeafDecl:
		name := d.Name
		fieldName := "value"
		number := int32(1)
		type_ := descriptorpb.FieldDescriptorProto_TYPE_STRING
		c.messages = append(c.messages, &descriptorpb.DescriptorProto{
			Name: &name,
			Field: []*descriptorpb.FieldDescriptorProto{{
				Name:   &fieldName,
				Number: &number,
				Type:   &type_,
			}},
		})
		return nil
	case schema.UnitDecl:
		name := d.Name
		c.messages = append(c.messages, &descriptorpb.DescriptorProto{
			Name: &name,
		})
		return nil
	case schema.WrapperDecl:
		name := d.Name
		fieldName := "value"
		number := int32(1)
		type_ := descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
		typeName := c.qualified(d.Target.Name)
		c.messages = append(c.messages, &descriptorpb.DescriptorProto{
			Name: &name,
			Field: []*descriptorpb.FieldDescriptorProto{{
				Name:     &fieldName,
				Number:   &number,
				Type:     &type_,
				TypeName: &typeName,
			}},
		})
		return nil
	case schema.StructDecl:
		message, err := c.fromStruct(d)
		if err != nil {
			return err
		}
		c.messages = append(c.messages, message)
		return nil
	case schema.UnionDecl:
		return c.fromUnion(d)
	default:
		return fmt.Errorf("unsupported declaration %T", decl)
	}
}

func (c *descriptorConverter) fromStruct(d schema.StructDecl) (*descriptorpb.DescriptorProto, error) {
	fields := make([]*descriptorpb.FieldDescriptorProto, 0, len(d.Fields))
	var oneofs []*descriptorpb.OneofDescriptorProto
	seen := make(map[string]bool, len(d.Fields))
	for index, field := range d.Fields {
		name := sanitizeName(field.Name)
		if seen[name] {
			return nil, fmt.Errorf("type %s: fields collide on %s in the descriptor", d.Name, name)
		}
		seen[name] = true
		label, type_, typeName, err := c.fromType(field.Type, d.Name, field.Name)
		if err != nil {
			return nil, err
		}
		number := int32(index + 1)
		converted := &descriptorpb.FieldDescriptorProto{
			Name:     &name,
			Number:   &number,
			Label:    label,
			Type:     type_,
			TypeName: typeName,
		}
		// Proto3 presence requires a synthetic oneof per optional field,
		// named after the field with a leading underscore.
		if label != nil && *label == descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL {
			proto3Optional := true
			converted.Proto3Optional = &proto3Optional
			oneofName := "_" + name
			oneofs = append(oneofs, &descriptorpb.OneofDescriptorProto{
				Name: &oneofName,
			})
			oneofIndex := int32(len(oneofs) - 1)
			converted.OneofIndex = &oneofIndex
		}
		fields = append(fields, converted)
	}
	name := d.Name
	return &descriptorpb.DescriptorProto{
		Name:      &name,
		Field:     fields,
		OneofDecl: oneofs,
		// NestedType
		// EnumType
		// ReservedRange
		// ReservedName
	}, nil
}

func (c *descriptorConverter) fromUnion(d schema.UnionDecl) error {
	for _, variant := range d.Variants {
		if err := c.fromDecl(variant.Decl); err != nil {
			return err
		}
	}
	oneofName := "kind"
	oneofs := []*descriptorpb.OneofDescriptorProto{{
		Name: &oneofName,
	}}
	fields := make([]*descriptorpb.FieldDescriptorProto, 0, len(d.Variants))
	seen := map[string]bool{oneofName: true}
	for index, variant := range d.Variants {
		name := sanitizeName(variant.Name)
		if seen[name] {
			return fmt.Errorf("type %s: variants collide on %s in the descriptor", d.Name, name)
		}
		seen[name] = true
		number := int32(index + 1)
		type_ := descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
		typeName := c.qualified(variant.Decl.DeclName())
		oneofIndex := int32(0)
		fields = append(fields, &descriptorpb.FieldDescriptorProto{
			Name:       &name,
			Number:     &number,
			Type:       &type_,
			TypeName:   &typeName,
			OneofIndex: &oneofIndex,
		})
	}
	name := d.Name
	c.messages = append(c.messages, &descriptorpb.DescriptorProto{
		Name:      &name,
		Field:     fields,
		OneofDecl: oneofs,
	})
	return nil
}

// fromType resolves a field type to its descriptor label, wire type, and
// qualified type name. Optional and repeated wrap exactly one level; protobuf
// has no direct form for nesting them.
func (c *descriptorConverter) fromType(t schema.Type, parent string, field string) (*descriptorpb.FieldDescriptorProto_Label, *descriptorpb.FieldDescriptorProto_Type, *string, error) {
	switch ft := t.(type) {
	case schema.LeafType:
		type_ := descriptorpb.FieldDescriptorProto_TYPE_STRING
		return nil, &type_, nil, nil
	case schema.UnitType:
		c.needsEmpty = true
		type_ := descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
		typeName := ".google.protobuf.Empty"
		return nil, &type_, &typeName, nil
	case schema.RefType:
		type_ := descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
		typeName := c.qualified(ft.Name)
		return nil, &type_, &typeName, nil
	case schema.OptionType:
		label, type_, typeName, err := c.fromType(ft.Elem, parent, field)
		if err != nil {
			return nil, nil, nil, err
		}
		if label != nil {
			return nil, nil, nil, fmt.Errorf("type %s, field %s: optional and repeated do not nest in a descriptor", parent, field)
		}
		optional := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
		return &optional, type_, typeName, nil
	case schema.SeqType:
		label, type_, typeName, err := c.fromType(ft.Elem, parent, field)
		if err != nil {
			return nil, nil, nil, err
		}
		if label != nil {
			return nil, nil, nil, fmt.Errorf("type %s, field %s: optional and repeated do not nest in a descriptor", parent, field)
		}
		repeated := descriptorpb.FieldDescriptorProto_LABEL_REPEATED
		return &repeated, type_, typeName, nil
	case schema.TupleType:
		name := sanitizeName(parent + "_" + field)
		c.pending = append(c.pending, schema.StructDecl{Name: name, Fields: ft.Fields})
		type_ := descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
		typeName := c.qualified(name)
		return nil, &type_, &typeName, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported field type %T", t)
	}
}
