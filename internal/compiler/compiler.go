package compiler

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"gopkg.microglot.org/gllgen/gllast"
	"gopkg.microglot.org/gllgen/internal/exc"
	"gopkg.microglot.org/gllgen/internal/grammar"
	"gopkg.microglot.org/gllgen/internal/schema"
	"gopkg.microglot.org/gllgen/rawtree"
)

// Converter projects one raw engine tree onto a typed value.
type Converter func(tree rawtree.Tree) (gllast.Value, error)

type Option func(c *compiler) error

func OptionWithExcReporter(reporter exc.Reporter) Option {
	return func(c *compiler) error {
		c.Reporter = reporter
		return nil
	}
}

func OptionWithBuiltins(builtins []Builtin) Option {
	return func(c *compiler) error {
		c.Builtins = builtins
		return nil
	}
}

func OptionWithMaxConcurrency(max int) Option {
	return func(c *compiler) error {
		c.MaxConcurrency = max
		return nil
	}
}

func New(opts ...Option) (Compiler, error) {
	c := &compiler{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.MaxConcurrency == 0 {
		max := runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if max > cpus {
			max = cpus
		}
		c.MaxConcurrency = max
	}
	if c.Semaphore == nil {
		c.Semaphore = newSemaphore(c.MaxConcurrency)
	}
	if c.Reporter == nil {
		c.Reporter = exc.NewReporter(nil)
	}
	if c.Builtins == nil {
		c.Builtins = DefaultBuiltins()
	}
	return c, nil
}

// Compiler turns a grammar into an artifact. A compilation either produces
// the whole artifact or reports why it cannot; there is no partial output.
type Compiler interface {
	Compile(ctx context.Context, g *grammar.Grammar) (*Artifact, error)
}

// Artifact is the complete output of compiling a grammar: one declaration
// per rule in rule order, the builtins the grammar may reference, and the
// dispatch table mapping every symbol name to its conversion.
type Artifact struct {
	Decls     []schema.Decl
	Builtins  []Builtin
	Semantics map[string]Converter
}

// Decl finds a top-level declaration by name, checking rules first and
// builtins second.
func (self *Artifact) Decl(name string) (schema.Decl, bool) {
	for _, decl := range self.Decls {
		if decl.DeclName() == name {
			return decl, true
		}
	}
	for _, builtin := range self.Builtins {
		if builtin.Decl.DeclName() == name {
			return builtin.Decl, true
		}
	}
	return nil, false
}

type compiler struct {
	MaxConcurrency int
	Semaphore      *semaphore
	Reporter       exc.Reporter
	Builtins       []Builtin
}

func (self *compiler) Compile(ctx context.Context, g *grammar.Grammar) (*Artifact, error) {
	names := buildTypeNames(g, self.Builtins, self.Reporter)
	if names == nil {
		return nil, MultiException(self.Reporter.Reported())
	}
	table := make(map[string]Converter, g.Len()+len(self.Builtins))
	rules := g.Rules()
	decls := make([]schema.Decl, len(rules))
	convs := make([]Converter, len(rules))
	expectedResults := len(rules)
	results := make(chan ruleResult, expectedResults)

	for index, rule := range rules {
		go func(index int, rule grammar.Rule) {
			self.Semaphore.Lock()
			defer self.Semaphore.Unlock()
			rc := &ruleCompiler{
				rule:     rule,
				names:    names,
				table:    table,
				reporter: self.Reporter,
			}
			decl, convert := rc.compile()
			results <- ruleResult{index: index, decl: decl, convert: convert}
		}(index, rule)
	}

	failed := false
	for x := 0; x < expectedResults; x = x + 1 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result := <-results:
			if result.decl == nil || result.convert == nil {
				failed = true
				continue
			}
			decls[result.index] = result.decl
			convs[result.index] = result.convert
		}
	}
	if !failed {
		failed = !self.checkDeclNames(decls)
	}
	caught := self.Reporter.Reported()
	if failed || len(caught) > 0 {
		return nil, MultiException(caught)
	}

	// The dispatch table is filled only once every rule has compiled, so a
	// converter never observes a partial table at run time.
	for index, rule := range rules {
		table[rule.Name] = convs[index]
	}
	for _, builtin := range self.Builtins {
		table[builtin.Name] = builtin.Convert
	}
	return &Artifact{
		Decls:     decls,
		Builtins:  self.Builtins,
		Semantics: table,
	}, nil
}

// checkDeclNames verifies that every declaration of the artifact, including
// the declarations nested inside unions and the builtins, carries a unique
// name. Synthesized variant names can collide with rule names that the
// symbol-level check cannot see.
func (self *compiler) checkDeclNames(decls []schema.Decl) bool {
	seen := make(map[string]bool, len(decls))
	ok := true
	var visit func(decl schema.Decl)
	visit = func(decl schema.Decl) {
		name := decl.DeclName()
		if seen[name] {
			_ = self.Reporter.Report(exc.New(exc.Location{}, exc.CodeNameCollision, fmt.Sprintf("duplicate declaration name %s", name)))
			ok = false
		} else {
			seen[name] = true
		}
		if union, isUnion := decl.(schema.UnionDecl); isUnion {
			for _, variant := range union.Variants {
				visit(variant.Decl)
			}
		}
	}
	for _, decl := range decls {
		visit(decl)
	}
	for _, builtin := range self.Builtins {
		visit(builtin.Decl)
	}
	return ok
}

type ruleResult struct {
	index   int
	decl    schema.Decl
	convert Converter
}

type MultiException []exc.Exception

func (self MultiException) Error() string {
	var b strings.Builder
	for _, err := range self[:len(self)-1] {
		b.WriteString(err.Error())
		b.WriteString("; ")
	}
	b.WriteString(self[len(self)-1].Error())
	return b.String()
}
