package gll

import (
	"context"
	"fmt"
	"unicode/utf8"

	"gopkg.microglot.org/gllgen/internal/exc"
	"gopkg.microglot.org/gllgen/internal/grammar"
	"gopkg.microglot.org/gllgen/internal/idl"
	"gopkg.microglot.org/gllgen/internal/iter"
	"gopkg.microglot.org/gllgen/internal/optional"
)

type ParserGLL struct {
	reporter exc.Reporter
}

func NewParserGLL(reporter exc.Reporter) *ParserGLL {
	return &ParserGLL{reporter: reporter}
}

func (self *ParserGLL) PrepareParse(ctx context.Context, f idl.LexerFile) (*parserGLLTokens, error) {
	ft, err := f.Tokens(ctx)
	if err != nil {
		return nil, err
	}

	// newlines and comments carry no meaning in GLL notation, so the parser
	// never sees them. Semicolons terminate symbols and stay in the stream.
	filteredTokens := iter.NewIteratorFilter(ft, idl.Filter[*idl.Token](iter.FilterFunc[*idl.Token](func(ctx context.Context, t *idl.Token) bool {
		switch t.Type {
		case idl.TokenTypeNewline, idl.TokenTypeComment:
			return false
		default:
			return true
		}
	})))

	tokens := iter.NewLookahead(filteredTokens, 8)

	return &parserGLLTokens{
		reporter: self.reporter,
		ctx:      ctx,
		tokens:   tokens,
		uri:      f.Path(ctx),
	}, nil
}

type parserGLLTokens struct {
	reporter exc.Reporter
	ctx      context.Context
	uri      string
	// this is the .Span.End of the last successfully parsed token; we keep track of it
	// so that we can give a meaningful location to "unexpected EOF" errors.
	loc    idl.Location
	tokens idl.Lookahead[*idl.Token]
}

func (p *parserGLLTokens) report(code string, message string) {
	_ = p.reporter.Report(exc.New(exc.Location{
		URI:      p.uri,
		Location: p.loc,
	}, code, message))
}

func (p *parserGLLTokens) advance() {
	maybeToken := p.tokens.Lookahead(p.ctx, 0)
	if maybeToken.IsPresent() {
		p.loc = *maybeToken.Value().Span.End
	}
	_ = p.tokens.Next(p.ctx)
}

func (p *parserGLLTokens) peekN(n uint8) *idl.Token {
	maybeToken := p.tokens.Lookahead(p.ctx, n)
	if !maybeToken.IsPresent() {
		return nil
	}
	return maybeToken.Value()
}

func (p *parserGLLTokens) peek() *idl.Token {
	return p.peekN(0)
}

// reports an error if there is no current token, or the current token isn't of the expected type
// advances on success
func (p *parserGLLTokens) expectOne(expectedType idl.TokenType) *idl.Token {
	return p.expectOneOf([]idl.TokenType{expectedType})
}

// reports an error if current token isn't one of the given expected types.
// advances on success
func (p *parserGLLTokens) expectOneOf(expectedTypes []idl.TokenType) *idl.Token {
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, fmt.Sprintf("unexpected EOF (expecting %v)", expectedTypes))
		return nil
	}
	for _, expectedType := range expectedTypes {
		if maybeToken.Type == expectedType {
			p.advance()
			return maybeToken
		}
	}
	p.report(exc.CodeUnexpectedToken, fmt.Sprintf("unexpected %s (expecting %v)", maybeToken.Value, expectedTypes))
	return nil
}

// Document = { Symbol }
func (p *parserGLLTokens) ParseDocument() *grammar.Grammar {
	rules := []grammar.Rule{}
	seen := map[string]bool{}
	for {
		maybeToken := p.peek()
		if maybeToken == nil {
			break
		}
		maybeRule := p.parseSymbol()
		if maybeRule == nil {
			return nil
		}
		if seen[maybeRule.Name] {
			p.report(exc.CodeDuplicateSymbol, fmt.Sprintf("duplicate symbol: %s", maybeRule.Name))
			return nil
		}
		seen[maybeRule.Name] = true
		rules = append(rules, *maybeRule)
	}
	g, err := grammar.New(rules...)
	if err != nil {
		p.report(exc.CodeDuplicateSymbol, err.Error())
		return nil
	}
	return g
}

// Symbol = identifier "=" SymbolBody ";"
func (p *parserGLLTokens) parseSymbol() *grammar.Rule {
	name := p.expectOne(idl.TokenTypeIdentifier)
	if name == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeEqual) == nil {
		return nil
	}
	node := p.parseSymbolBody(name.Value)
	if node == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeSemicolon) == nil {
		return nil
	}
	return &grammar.Rule{
		Name: name.Value,
		Node: node,
	}
}

// SymbolBody = NamedRules | Sequence
func (p *parserGLLTokens) parseSymbolBody(symbol string) grammar.RuleNode {
	maybeToken := p.peek()
	if maybeToken != nil && maybeToken.Type == idl.TokenTypePipe {
		return p.parseNamedRules(symbol)
	}
	return p.parseSequence()
}

// NamedRules = "|" identifier ":" Sequence { "|" identifier ":" Sequence }
// Named rules become an alternation of labeled variants so the rule names
// survive as variant names.
func (p *parserGLLTokens) parseNamedRules(symbol string) grammar.RuleNode {
	items := []grammar.RuleNode{}
	seen := map[string]bool{}
	for {
		maybeToken := p.peek()
		if maybeToken == nil || maybeToken.Type != idl.TokenTypePipe {
			break
		}
		p.advance()
		name := p.expectOne(idl.TokenTypeIdentifier)
		if name == nil {
			return nil
		}
		if p.expectOne(idl.TokenTypeColon) == nil {
			return nil
		}
		node := p.parseSequence()
		if node == nil {
			return nil
		}
		if seen[name.Value] {
			p.report(exc.CodeDuplicateRule, fmt.Sprintf("duplicate rule for symbol %s: %s", symbol, name.Value))
			return nil
		}
		seen[name.Value] = true
		items = append(items, grammar.Labeled{
			Label: name.Value,
			Inner: node,
		})
	}
	return grammar.Alternation{Items: items}
}

// Sequence = { Item }
// An empty sequence is an empty match; a single item stands alone rather
// than wrapped in a concatenation.
func (p *parserGLLTokens) parseSequence() grammar.RuleNode {
	items := []grammar.RuleNode{}
	for {
		maybeToken := p.peek()
		if maybeToken == nil {
			break
		}
		switch maybeToken.Type {
		case idl.TokenTypeText, idl.TokenTypeIdentifier, idl.TokenTypeCharLiteral, idl.TokenTypeCurlyOpen:
			item := p.parseItem()
			if item == nil {
				return nil
			}
			items = append(items, item)
			continue
		}
		break
	}
	switch len(items) {
	case 0:
		return grammar.Empty{}
	case 1:
		return items[0]
	}
	return grammar.Concatenation{Items: items}
}

// Item = [identifier ":"] Primary [Postfix]
// A label binds after the postfix, so "xs: foo*" names the whole
// repetition rather than its element.
func (p *parserGLLTokens) parseItem() grammar.RuleNode {
	label := ""
	hasLabel := false
	maybeToken := p.peek()
	if maybeToken != nil && maybeToken.Type == idl.TokenTypeIdentifier {
		next := p.peekN(1)
		if next != nil && next.Type == idl.TokenTypeColon {
			label = maybeToken.Value
			hasLabel = true
			p.advance()
			p.advance()
		}
	}
	node := p.parsePrimary()
	if node == nil {
		return nil
	}
	node = p.parsePostfix(node)
	if node == nil {
		return nil
	}
	if hasLabel {
		return grammar.Labeled{
			Label: label,
			Inner: node,
		}
	}
	return node
}

// Primary = text | identifier | charliteral ".." charliteral | "{" Group "}"
func (p *parserGLLTokens) parsePrimary() grammar.RuleNode {
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected EOF (expecting a rule item)")
		return nil
	}
	switch maybeToken.Type {
	case idl.TokenTypeText:
		p.advance()
		return grammar.Literal{Text: maybeToken.Value}
	case idl.TokenTypeIdentifier:
		p.advance()
		return grammar.SymbolRef{Name: maybeToken.Value}
	case idl.TokenTypeCharLiteral:
		p.advance()
		if p.expectOne(idl.TokenTypeDotDot) == nil {
			return nil
		}
		to := p.expectOne(idl.TokenTypeCharLiteral)
		if to == nil {
			return nil
		}
		from, _ := utf8.DecodeRuneInString(maybeToken.Value)
		toRune, _ := utf8.DecodeRuneInString(to.Value)
		return grammar.CharRange{
			From: from,
			To:   toRune,
		}
	case idl.TokenTypeCurlyOpen:
		p.advance()
		return p.parseGroup()
	}
	p.report(exc.CodeUnexpectedToken, fmt.Sprintf("unexpected %s (expecting a rule item)", maybeToken.Value))
	return nil
}

// Group = Sequence { "|" Sequence } "}"
// A group with pipes is an alternation of its branches; a group without
// pipes is just its content.
func (p *parserGLLTokens) parseGroup() grammar.RuleNode {
	alternatives := []grammar.RuleNode{}
	first := p.parseSequence()
	if first == nil {
		return nil
	}
	alternatives = append(alternatives, first)
	for {
		maybeToken := p.peek()
		if maybeToken == nil || maybeToken.Type != idl.TokenTypePipe {
			break
		}
		p.advance()
		next := p.parseSequence()
		if next == nil {
			return nil
		}
		alternatives = append(alternatives, next)
	}
	if p.expectOne(idl.TokenTypeCurlyClose) == nil {
		return nil
	}
	if len(alternatives) == 1 {
		return alternatives[0]
	}
	return grammar.Alternation{Items: alternatives}
}

// Postfix = "?" | ("*" | "+") [("%" | "%%") text]
func (p *parserGLLTokens) parsePostfix(item grammar.RuleNode) grammar.RuleNode {
	maybeToken := p.peek()
	if maybeToken == nil {
		return item
	}
	switch maybeToken.Type {
	case idl.TokenTypeQuestion:
		p.advance()
		return grammar.Option{Item: item}
	case idl.TokenTypeStar:
		p.advance()
		return p.parseSeparator(grammar.Repeated{Min: 0, Item: item})
	case idl.TokenTypePlus:
		p.advance()
		return p.parseSeparator(grammar.Repeated{Min: 1, Item: item})
	}
	return item
}

// Separator = ("%" | "%%") text
// A double percent allows a trailing separator after the final element.
func (p *parserGLLTokens) parseSeparator(rep grammar.Repeated) grammar.RuleNode {
	maybeToken := p.peek()
	if maybeToken == nil {
		return rep
	}
	switch maybeToken.Type {
	case idl.TokenTypePercent:
		p.advance()
		sep := p.expectOne(idl.TokenTypeText)
		if sep == nil {
			return nil
		}
		rep.Separator = optional.Some(sep.Value)
	case idl.TokenTypeDoublePercent:
		p.advance()
		sep := p.expectOne(idl.TokenTypeText)
		if sep == nil {
			return nil
		}
		rep.Separator = optional.Some(sep.Value)
		rep.AllowTrailing = true
	}
	return rep
}
