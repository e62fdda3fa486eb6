// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package gllast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/gllgen/rawtree"
)

func TestLeafFromTree(t *testing.T) {
	t.Parallel()

	leaf, err := LeafFromTree(rawtree.Text("foo"))
	require.NoError(t, err)
	require.Equal(t, Leaf("foo"), leaf)

	_, err = LeafFromTree(rawtree.List{rawtree.Text("foo")})
	require.Error(t, err)
	_, err = LeafFromTree(nil)
	require.Error(t, err)
}

func TestUnitFromTree(t *testing.T) {
	t.Parallel()

	// The raw tree is ignored, whatever shape the engine chose for an
	// empty match.
	for _, tree := range []rawtree.Tree{nil, rawtree.Text(""), rawtree.Node{}, rawtree.Absent{}} {
		unit, err := UnitFromTree(tree)
		require.NoError(t, err)
		require.Equal(t, Unit{}, unit)
	}
}

func TestOptionFromTree(t *testing.T) {
	t.Parallel()

	absent, err := OptionFromTree(nil, LeafFromTree)
	require.NoError(t, err)
	require.False(t, absent.IsPresent())

	absent, err = OptionFromTree(rawtree.Absent{}, LeafFromTree)
	require.NoError(t, err)
	require.False(t, absent.IsPresent())

	present, err := OptionFromTree(rawtree.Text("foo"), LeafFromTree)
	require.NoError(t, err)
	require.True(t, present.IsPresent())
	require.Equal(t, Leaf("foo"), present.Get())

	_, err = OptionFromTree(rawtree.List{}, LeafFromTree)
	require.Error(t, err)
}

func TestSeqFromTree(t *testing.T) {
	t.Parallel()

	seq, err := SeqFromTree(rawtree.List{rawtree.Text("a"), rawtree.Text("b")}, LeafFromTree)
	require.NoError(t, err)
	require.Equal(t, Seq[Leaf]{"a", "b"}, seq)

	empty, err := SeqFromTree(rawtree.List{}, LeafFromTree)
	require.NoError(t, err)
	require.Len(t, empty, 0)

	_, err = SeqFromTree(rawtree.Text("a"), LeafFromTree)
	require.Error(t, err)

	_, err = SeqFromTree(rawtree.List{rawtree.Text("a"), rawtree.Node{}}, LeafFromTree)
	require.ErrorContains(t, err, "element 1")
}
