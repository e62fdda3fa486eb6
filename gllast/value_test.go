// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package gllast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueEquality(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		left     Value
		right    Value
		expected bool
	}{
		{
			name:     "equal leaves",
			left:     Leaf("foo"),
			right:    Leaf("foo"),
			expected: true,
		},
		{
			name:     "unequal leaves",
			left:     Leaf("foo"),
			right:    Leaf("bar"),
			expected: false,
		},
		{
			name:     "leaf never equals unit",
			left:     Leaf(""),
			right:    Unit{},
			expected: false,
		},
		{
			name:     "units are always equal",
			left:     Unit{},
			right:    Unit{},
			expected: true,
		},
		{
			name:     "empty options are equal",
			left:     None[Value](),
			right:    None[Value](),
			expected: true,
		},
		{
			name:     "empty option never equals populated option",
			left:     None[Value](),
			right:    Some[Value](Leaf("foo")),
			expected: false,
		},
		{
			name:     "populated options compare their values",
			left:     Some[Value](Leaf("foo")),
			right:    Some[Value](Leaf("foo")),
			expected: true,
		},
		{
			name:     "populated options with unequal values",
			left:     Some[Value](Leaf("foo")),
			right:    Some[Value](Leaf("bar")),
			expected: false,
		},
		{
			name:     "sequences compare elementwise",
			left:     Seq[Value]{Leaf("a"), Leaf("b")},
			right:    Seq[Value]{Leaf("a"), Leaf("b")},
			expected: true,
		},
		{
			name:     "sequences of different lengths",
			left:     Seq[Value]{Leaf("a")},
			right:    Seq[Value]{Leaf("a"), Leaf("b")},
			expected: false,
		},
		{
			name:     "sequence order is significant",
			left:     Seq[Value]{Leaf("a"), Leaf("b")},
			right:    Seq[Value]{Leaf("b"), Leaf("a")},
			expected: false,
		},
		{
			name:     "empty sequences are equal",
			left:     Seq[Value]{},
			right:    Seq[Value]{},
			expected: true,
		},
		{
			name:     "records compare name and fields",
			left:     NewRecord("Pair", Field{Name: "x", Value: Leaf("1")}, Field{Name: "y", Value: Leaf("2")}),
			right:    NewRecord("Pair", Field{Name: "x", Value: Leaf("1")}, Field{Name: "y", Value: Leaf("2")}),
			expected: true,
		},
		{
			name:     "records with different type names",
			left:     NewRecord("Pair", Field{Name: "x", Value: Leaf("1")}),
			right:    NewRecord("Point", Field{Name: "x", Value: Leaf("1")}),
			expected: false,
		},
		{
			name:     "records with different field values",
			left:     NewRecord("Pair", Field{Name: "x", Value: Leaf("1")}),
			right:    NewRecord("Pair", Field{Name: "x", Value: Leaf("2")}),
			expected: false,
		},
		{
			name:     "anonymous records are comparable",
			left:     NewRecord("", Field{Name: "field_0", Value: Leaf("1")}),
			right:    NewRecord("", Field{Name: "field_0", Value: Leaf("1")}),
			expected: true,
		},
		{
			name:     "anonymous record never equals named record",
			left:     NewRecord("", Field{Name: "x", Value: Leaf("1")}),
			right:    NewRecord("Pair", Field{Name: "x", Value: Leaf("1")}),
			expected: false,
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, testCase.left.Equal(testCase.right))
			require.Equal(t, testCase.expected, testCase.right.Equal(testCase.left))
		})
	}
}

func TestSeqFromPlainSlice(t *testing.T) {
	t.Parallel()

	// Conversions produce Seq values, but callers often hold plain slices.
	// The two representations must compare as equal.
	plain := []Value{Leaf("a"), Leaf("b"), Leaf("c")}
	require.True(t, Seq[Value](plain).Equal(Seq[Value]{Leaf("a"), Leaf("b"), Leaf("c")}))
}

func TestRecordFields(t *testing.T) {
	t.Parallel()

	record := NewRecord("Pair",
		Field{Name: "x", Value: Leaf("1")},
		Field{Name: "y", Value: Leaf("2")},
	)
	require.Equal(t, "Pair", record.TypeName())
	require.Len(t, record.Fields(), 2)

	x, ok := record.Field("x")
	require.True(t, ok)
	require.True(t, Equal(x, Leaf("1")))

	_, ok = record.Field("z")
	require.False(t, ok)
}

func TestUnionCase(t *testing.T) {
	t.Parallel()

	union := NewUnion("Expr", "Lit", "Add")
	require.Equal(t, "Expr", union.Name())
	require.Equal(t, []string{"Lit", "Add"}, union.Cases())

	lit, err := union.Case("Lit", Leaf("1"))
	require.NoError(t, err)
	require.Equal(t, "Expr", lit.Union())
	require.Equal(t, "Lit", lit.Case())
	require.True(t, Equal(lit.Payload(), Leaf("1")))

	_, err = union.Case("Mul", Leaf("1"))
	require.Error(t, err)
}

func TestVariantEquality(t *testing.T) {
	t.Parallel()

	union := NewUnion("Expr", "Lit", "Add")
	litA, err := union.Case("Lit", Leaf("1"))
	require.NoError(t, err)
	litB, err := union.Case("Lit", Leaf("1"))
	require.NoError(t, err)
	litC, err := union.Case("Lit", Leaf("2"))
	require.NoError(t, err)
	add, err := union.Case("Add", Leaf("1"))
	require.NoError(t, err)

	require.True(t, litA.Equal(litB))
	require.False(t, litA.Equal(litC))
	// Different cases are never equal, even with equal payloads.
	require.False(t, litA.Equal(add))

	other := NewUnion("Stmt", "Lit")
	otherLit, err := other.Case("Lit", Leaf("1"))
	require.NoError(t, err)
	require.False(t, litA.Equal(otherLit))
}

func TestEqualNil(t *testing.T) {
	t.Parallel()

	require.True(t, Equal(nil, nil))
	require.False(t, Equal(Leaf("x"), nil))
	require.False(t, Equal(nil, Leaf("x")))
}

func TestOptionGet(t *testing.T) {
	t.Parallel()

	absent := None[Value]()
	require.False(t, absent.IsPresent())
	require.Nil(t, absent.Get())

	present := Some[Value](Leaf("x"))
	require.True(t, present.IsPresent())
	require.True(t, Equal(present.Get(), Leaf("x")))
}
