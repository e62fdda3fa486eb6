package compiler

import (
	"context"
	"fmt"

	"gopkg.microglot.org/gllgen/internal/compiler/gll"
	"gopkg.microglot.org/gllgen/internal/exc"
	"gopkg.microglot.org/gllgen/internal/grammar"
	"gopkg.microglot.org/gllgen/internal/idl"
)

type SubCompilerGLL struct{}

func (self *SubCompilerGLL) CompileFile(ctx context.Context, r exc.Reporter, file idl.File, dumpTokens bool, dumpTree bool) (*grammar.Grammar, error) {
	lexer := gll.NewLexerGLL(r)
	parser := gll.NewParserGLL(r)
	lf, err := lexer.Lex(ctx, file)
	if err != nil {
		return nil, err
	}
	if dumpTokens {
		// The token stream re-reads the file body on each call, so dumping
		// does not consume the tokens the parser needs.
		stream, err := lf.Tokens(ctx)
		if err != nil {
			return nil, err
		}
		for tok := stream.Next(ctx); tok.IsPresent(); tok = stream.Next(ctx) {
			token := tok.Value()
			fmt.Printf("%-24s", token.Type)
			if token.Type != idl.TokenTypeNewline {
				fmt.Printf("'%s'", token.Value)
			}
			fmt.Println()
		}
	}
	parsed, err := parser.PrepareParse(ctx, lf)
	if err != nil {
		return nil, err
	}
	g := parsed.ParseDocument()
	if g == nil {
		return nil, MultiException(r.Reported())
	}
	if dumpTree {
		fmt.Print(g)
	}
	return g, nil
}
