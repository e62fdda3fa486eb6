package compiler

import (
	"context"

	"gopkg.microglot.org/gllgen/internal/exc"
	"gopkg.microglot.org/gllgen/internal/grammar"
	"gopkg.microglot.org/gllgen/internal/idl"
)

// SubCompiler parses one source file into a grammar.
type SubCompiler interface {
	CompileFile(ctx context.Context, r exc.Reporter, file idl.File, dumpTokens bool, dumpTree bool) (*grammar.Grammar, error)
}

func DefaultSubCompilers() map[idl.FileKind]SubCompiler {
	return map[idl.FileKind]SubCompiler{
		idl.FileKindGLL: &SubCompilerGLL{},
	}
}

// CompileFiles parses each file and merges the results into one grammar.
// Rules keep their order within a file, files keep their argument order,
// and rule names must be unique across the whole input set.
func CompileFiles(ctx context.Context, r exc.Reporter, files []idl.File, dumpTokens bool, dumpTree bool) (*grammar.Grammar, error) {
	subcompilers := DefaultSubCompilers()
	rules := []grammar.Rule{}
	for _, file := range files {
		sc := subcompilers[file.Kind(ctx)]
		if sc == nil {
			e := exc.New(exc.Location{URI: file.Path(ctx)}, exc.CodeUnsupportedFileFormat, "Unsupported file format")
			if err := r.Report(e); err != nil {
				return nil, err
			}
			continue
		}
		g, err := sc.CompileFile(ctx, r, file, dumpTokens, dumpTree)
		if err != nil {
			return nil, err
		}
		rules = append(rules, g.Rules()...)
	}
	merged, err := grammar.New(rules...)
	if err != nil {
		// A cross-file duplicate has no single source location to report.
		e := exc.New(exc.Location{}, exc.CodeDuplicateSymbol, err.Error())
		if rerr := r.Report(e); rerr != nil {
			return nil, rerr
		}
		return nil, MultiException(r.Reported())
	}
	if caught := r.Reported(); len(caught) > 0 {
		return merged, MultiException(caught)
	}
	return merged, nil
}
