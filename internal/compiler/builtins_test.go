// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/gllgen/gllast"
	"gopkg.microglot.org/gllgen/rawtree"
)

func builtinByName(t *testing.T, name string) Builtin {
	t.Helper()
	for _, builtin := range DefaultBuiltins() {
		if builtin.Name == name {
			return builtin
		}
	}
	t.Fatalf("no builtin named %s", name)
	return Builtin{}
}

func TestDefaultBuiltinNames(t *testing.T) {
	names := make([]string, 0, 5)
	for _, builtin := range DefaultBuiltins() {
		names = append(names, builtin.Name)
	}
	require.Equal(t, []string{"TOKEN_TREE", "IDENT", "LIFETIME", "PUNCT", "LITERAL"}, names)
}

func TestBuiltinIdent(t *testing.T) {
	convert := builtinByName(t, "IDENT").Convert

	value, err := convert(rawtree.Text("  main  "))
	require.NoError(t, err)
	expected := gllast.NewRecord("IDENT", gllast.Field{Name: "ident", Value: gllast.Leaf("main")})
	require.True(t, gllast.Equal(expected, value))

	_, err = convert(rawtree.List{})
	require.Error(t, err)
}

func TestBuiltinLifetime(t *testing.T) {
	convert := builtinByName(t, "LIFETIME").Convert

	testCases := []struct {
		in       string
		expected string
	}{
		{in: "'static", expected: "static"},
		{in: " 'a ", expected: "a"},
		{in: "'_", expected: "_"},
	}
	for _, testCase := range testCases {
		value, err := convert(rawtree.Text(testCase.in))
		require.NoError(t, err)
		lifetime, ok := value.(gllast.Record).Field("lifetime")
		require.True(t, ok)
		require.Equal(t, gllast.Leaf(testCase.expected), lifetime)
	}
}

func TestBuiltinPunct(t *testing.T) {
	convert := builtinByName(t, "PUNCT").Convert

	value, err := convert(rawtree.Text("::"))
	require.NoError(t, err)
	punct, ok := value.(gllast.Record).Field("punct")
	require.True(t, ok)
	require.Equal(t, gllast.Leaf("::"), punct)
}

func TestBuiltinLiteral(t *testing.T) {
	convert := builtinByName(t, "LITERAL").Convert

	value, err := convert(rawtree.Text(" 42 "))
	require.NoError(t, err)
	literal, ok := value.(gllast.Record).Field("literal")
	require.True(t, ok)
	require.Equal(t, gllast.Leaf("42"), literal)
}

func TestBuiltinTokenTree(t *testing.T) {
	convert := builtinByName(t, "TOKEN_TREE").Convert

	value, err := convert(rawtree.List{
		rawtree.Text("fn"),
		rawtree.Text("main"),
		rawtree.List{rawtree.Text("("), rawtree.Text(")")},
	})
	require.NoError(t, err)
	record := value.(gllast.Record)
	require.Equal(t, "TOKEN_TREE", record.TypeName())
	tokens, ok := record.Field("tokens")
	require.True(t, ok)
	expected := gllast.Seq[gllast.Value]{
		gllast.Leaf("fn"),
		gllast.Leaf("main"),
		gllast.Seq[gllast.Value]{gllast.Leaf("("), gllast.Leaf(")")},
	}
	require.True(t, gllast.Equal(expected, tokens))

	_, err = convert(rawtree.Text("fn"))
	require.Error(t, err)

	_, err = convert(rawtree.List{rawtree.Node{}})
	require.ErrorContains(t, err, "token 0")
}
