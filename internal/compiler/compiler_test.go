package compiler

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/gllgen/gllast"
	"gopkg.microglot.org/gllgen/internal/exc"
	"gopkg.microglot.org/gllgen/internal/grammar"
	"gopkg.microglot.org/gllgen/internal/schema"
	"gopkg.microglot.org/gllgen/rawtree"
)

func TestCompileDeclOrder(t *testing.T) {
	// Rules compile concurrently but declarations come out in rule order.
	rules := make([]grammar.Rule, 0, 24)
	for i := 0; i < 24; i = i + 1 {
		rules = append(rules, grammar.Rule{Name: fmt.Sprintf("R%02d", i), Node: grammar.Literal{Text: "x"}})
	}
	artifact := compileGrammar(t, rules...)

	require.Len(t, artifact.Decls, 24)
	for i, decl := range artifact.Decls {
		require.Equal(t, fmt.Sprintf("R%02d", i), decl.DeclName())
	}
}

func TestCompileEmptyGrammar(t *testing.T) {
	artifact := compileGrammar(t)
	require.Empty(t, artifact.Decls)
	require.NotNil(t, artifact.Semantics["IDENT"])
}

func TestCompileCancelled(t *testing.T) {
	g, err := grammar.New(grammar.Rule{Name: "R", Node: grammar.Literal{Text: "x"}})
	require.NoError(t, err)
	c, err := New(OptionWithMaxConcurrency(1))
	require.NoError(t, err)

	// Hold the only concurrency slot so no rule can finish before the
	// cancellation is observed.
	impl := c.(*compiler)
	impl.Semaphore.Lock()
	defer impl.Semaphore.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	artifact, err := c.Compile(ctx, g)
	require.Nil(t, artifact)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCompileMultiError(t *testing.T) {
	g, err := grammar.New(
		grammar.Rule{Name: "A", Node: grammar.CharRange{From: 'a', To: 'z'}},
		grammar.Rule{Name: "B", Node: grammar.SymbolRef{Name: "Missing"}},
	)
	require.NoError(t, err)
	rep := exc.NewReporter(nil)
	c, err := New(OptionWithExcReporter(rep))
	require.NoError(t, err)

	artifact, err := c.Compile(context.Background(), g)
	require.Nil(t, artifact)
	var multi MultiException
	require.ErrorAs(t, err, &multi)
	require.Len(t, multi, 2)
	require.Contains(t, multi.Error(), "; ")
}

func TestCompileWithoutBuiltins(t *testing.T) {
	g, err := grammar.New(grammar.Rule{Name: "IDENT", Node: grammar.Literal{Text: "x"}})
	require.NoError(t, err)
	c, err := New(OptionWithBuiltins([]Builtin{}))
	require.NoError(t, err)

	artifact, err := c.Compile(context.Background(), g)
	require.NoError(t, err)
	decl, ok := artifact.Decl("IDENT")
	require.True(t, ok)
	require.Equal(t, schema.LeafDecl{Name: "IDENT", Text: "x"}, decl)
}

func TestCompileBuiltinDispatch(t *testing.T) {
	artifact := compileGrammar(t, grammar.Rule{Name: "Id", Node: grammar.SymbolRef{Name: "IDENT"}})

	value, err := artifact.Semantics["Id"](rawtree.Text("  main  "))
	require.NoError(t, err)
	record := value.(gllast.Record)
	require.Equal(t, "IDENT", record.TypeName())
	ident, ok := record.Field("ident")
	require.True(t, ok)
	require.True(t, gllast.Equal(gllast.Leaf("main"), ident))
}

func TestArtifactDeclLookup(t *testing.T) {
	artifact := compileGrammar(t, grammar.Rule{Name: "W", Node: grammar.Literal{Text: "x"}})

	_, ok := artifact.Decl("W")
	require.True(t, ok)
	_, ok = artifact.Decl("PUNCT")
	require.True(t, ok)
	_, ok = artifact.Decl("Nope")
	require.False(t, ok)
}
