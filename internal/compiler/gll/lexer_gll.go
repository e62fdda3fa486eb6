// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package gll

import (
	"context"
	"strings"
	"unicode"

	"gopkg.microglot.org/gllgen/internal/exc"
	"gopkg.microglot.org/gllgen/internal/idl"
	"gopkg.microglot.org/gllgen/internal/iter"
	"gopkg.microglot.org/gllgen/internal/optional"
)

const (
	lexerGLLLookahead = 8
)

// LexerGLL implements a tokenizer for the GLL grammar notation.
type LexerGLL struct {
	reporter exc.Reporter
}

func NewLexerGLL(reporter exc.Reporter) *LexerGLL {
	return &LexerGLL{reporter: reporter}
}

func (self *LexerGLL) Lex(ctx context.Context, f idl.File) (idl.LexerFile, error) {
	return &lexerFileGLL{
		File:     f,
		reporter: self.reporter,
	}, nil
}

type lexerFileGLL struct {
	idl.File
	reporter exc.Reporter
}

func (self *lexerFileGLL) Tokens(ctx context.Context) (idl.Iterator[*idl.Token], error) {
	b, err := self.File.Body(ctx)
	if err != nil {
		return nil, err
	}
	points := iter.NewLookahead(iter.NewUnicodeFileBodyCtx(ctx, b), lexerGLLLookahead)
	return &lexerFileGLLTokens{
		uri:      self.File.Path(ctx),
		body:     points,
		reporter: self.reporter,
		line:     1,
		col:      0,
		offset:   -1,
	}, nil
}

type lexerFileGLLTokens struct {
	uri      string
	body     idl.Lookahead[idl.CodePoint]
	reporter exc.Reporter
	line     int32
	col      int32
	offset   int64
}

func (self *lexerFileGLLTokens) Next(ctx context.Context) optional.Optional[*idl.Token] {
	for point := self.next(ctx); point.IsPresent(); point = self.next(ctx) {
		r := rune(point.Value())
		switch r {
		case 0x00:
			return optional.None[*idl.Token]() // Treat null byte as EOF as it's not allowed.
		case 0x0009, 0x0020:
			continue // Generally ignore space and tab.
		case '\n':
			return self.newLineToken("\n", 1)
		case '\r':
			if n := self.body.Lookahead(ctx, 1); n.IsPresent() && n.Value() == '\n' {
				_ = self.next(ctx)
				return self.newLineToken("\r\n", 2)
			}
			return self.newLineToken("\r", 1)
		case '"':
			return self.readText(ctx)
		case '\'':
			return self.readCharLiteral(ctx)
		case '/':
			n := self.body.Lookahead(ctx, 1)
			if !n.IsPresent() {
				t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeUnknown, "/")
				return optional.Some(t)
			}
			switch n.Value() {
			case '/':
				_ = self.next(ctx)
				return self.readCommentLine(ctx)
			case '*':
				_ = self.next(ctx)
				return self.readCommentBlock(ctx)
			default:
				t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeUnknown, "/")
				return optional.Some(t)
			}
		case '.':
			n := self.body.Lookahead(ctx, 1)
			if n.IsPresent() && n.Value() == '.' {
				_ = self.next(ctx)
				t := newTokenLineSpan(self.line, self.col, self.offset, 2, idl.TokenTypeDotDot, "..")
				return optional.Some(t)
			}
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeUnknown, ".")
			return optional.Some(t)
		case '%':
			n := self.body.Lookahead(ctx, 1)
			if n.IsPresent() && n.Value() == '%' {
				_ = self.next(ctx)
				t := newTokenLineSpan(self.line, self.col, self.offset, 2, idl.TokenTypeDoublePercent, "%%")
				return optional.Some(t)
			}
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypePercent, "%")
			return optional.Some(t)
		case '{':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeCurlyOpen, "{")
			return optional.Some(t)
		case '}':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeCurlyClose, "}")
			return optional.Some(t)
		case '|':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypePipe, "|")
			return optional.Some(t)
		case '?':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeQuestion, "?")
			return optional.Some(t)
		case '*':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeStar, "*")
			return optional.Some(t)
		case '+':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypePlus, "+")
			return optional.Some(t)
		case ';':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeSemicolon, ";")
			return optional.Some(t)
		case ':':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeColon, ":")
			return optional.Some(t)
		case '=':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeEqual, "=")
			return optional.Some(t)
		case '_':
			// an underscore with no other known context is treated as an identifier
			// it may be either a free standing underscore or the beginning of a
			// longer identifier
			return self.readIdentifier(ctx, string(r))
		default:
			if unicode.IsLetter(r) {
				return self.readIdentifier(ctx, string(r))
			}
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeUnknown, string(r))
			return optional.Some(t)
		}
	}
	return optional.None[*idl.Token]()
}

func (self *lexerFileGLLTokens) readIdentifier(ctx context.Context, prefix string) optional.Optional[*idl.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString(prefix)
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), idl.TokenTypeIdentifier, builder.String())
			return optional.Some(t)
		}
		if unicode.IsLetter(rune(n.Value())) || unicode.IsDigit(rune(n.Value())) || n.Value() == '_' {
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			continue
		}
		t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), idl.TokenTypeIdentifier, builder.String())
		return optional.Some(t)
	}
}

func (self *lexerFileGLLTokens) readCommentLine(ctx context.Context) optional.Optional[*idl.Token] {
	var builder strings.Builder
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), idl.TokenTypeComment, builder.String())
			return optional.Some(t)
		}
		switch n.Value() {
		case '\r', '\n':
			t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), idl.TokenTypeComment, builder.String())
			return optional.Some(t)
		default:
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		}
	}
}

func (self *lexerFileGLLTokens) readCommentBlock(ctx context.Context) optional.Optional[*idl.Token] {
	var builder strings.Builder
	startLine := self.line
	startCol := self.col
	startOffset := self.offset
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, "EOF while reading comment block"))
			t := newToken(startLine, startCol, startOffset, self.line, self.col, self.offset, idl.TokenTypeComment, builder.String())
			return optional.Some(t)
		}
		switch n.Value() {
		case '\n':
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			self.newLine()
		case '\r':
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			nn := self.body.Lookahead(ctx, 2)
			if nn.IsPresent() && nn.Value() == '\n' {
				_ = self.next(ctx)
				_, _ = builder.WriteRune(rune(nn.Value()))
			}
			self.newLine()
		case '*':
			nn := self.body.Lookahead(ctx, 2)
			if !nn.IsPresent() {
				_ = self.next(ctx)
				_, _ = builder.WriteRune(rune(n.Value()))
			}
			if nn.Value() == '/' {
				_ = self.next(ctx)
				_ = self.next(ctx)
				t := newToken(startLine, startCol, startOffset, self.line, self.col, self.offset, idl.TokenTypeComment, builder.String())
				return optional.Some(t)
			}
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		default:
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		}
	}
}

// readText reads a quoted literal. GLL literals have no escape sequences
// beyond a backslash-quote pair, which carries the quote into the text.
func (self *lexerFileGLLTokens) readText(ctx context.Context) optional.Optional[*idl.Token] {
	var builder strings.Builder
	startLine := self.line
	startCol := self.col + 1       // Adjust one to account for the leading quotation
	startOffset := self.offset + 1 // Adjust one to account for the leading quotation
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			_ = self.reporter.Report(self.exc(exc.CodeUnclosedLiteral, "EOF while reading text literal"))
			t := newToken(startLine, startCol, startOffset, self.line, self.col, self.offset, idl.TokenTypeText, builder.String())
			return optional.Some(t)
		}
		switch n.Value() {
		case '\n':
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			self.newLine()
		case '\r':
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			nn := self.body.Lookahead(ctx, 2)
			if nn.IsPresent() && nn.Value() == '\n' {
				_ = self.next(ctx)
				_, _ = builder.WriteRune(rune(nn.Value()))
			}
			self.newLine()
		case '"':
			_ = self.next(ctx)
			t := newToken(startLine, startCol, startOffset, self.line, self.col, self.offset, idl.TokenTypeText, builder.String())
			return optional.Some(t)
		case '\\':
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			nn := self.body.Lookahead(ctx, 1)
			if !nn.IsPresent() {
				_ = self.reporter.Report(self.exc(exc.CodeUnclosedLiteral, "EOF while reading text literal"))
				t := newToken(startLine, startCol, startOffset, self.line, self.col, self.offset, idl.TokenTypeText, builder.String())
				return optional.Some(t)
			}
			if nn.Value() == '"' {
				_ = self.next(ctx)
				_, _ = builder.WriteRune('"')
			}
		default:
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		}
	}
}

// readCharLiteral reads a single quoted character, as used by the bounds of
// a character range.
func (self *lexerFileGLLTokens) readCharLiteral(ctx context.Context) optional.Optional[*idl.Token] {
	n := self.body.Lookahead(ctx, 1)
	if !n.IsPresent() {
		_ = self.reporter.Report(self.exc(exc.CodeUnclosedLiteral, "EOF while reading character literal"))
		return optional.None[*idl.Token]()
	}
	r := rune(n.Value())
	_ = self.next(ctx)
	nn := self.body.Lookahead(ctx, 1)
	if !nn.IsPresent() || nn.Value() != '\'' {
		_ = self.reporter.Report(self.exc(exc.CodeUnclosedLiteral, "missing closing quote in character literal"))
		return optional.None[*idl.Token]()
	}
	_ = self.next(ctx)
	return optional.Some(newTokenLineSpan(self.line, self.col, self.offset, 2+len(string(r)), idl.TokenTypeCharLiteral, string(r)))
}

func (self *lexerFileGLLTokens) next(ctx context.Context) optional.Optional[idl.CodePoint] {
	n := self.body.Next(ctx)
	if n.IsPresent() {
		self.addCol(rune(n.Value()))
	}
	return n
}

func (self *lexerFileGLLTokens) exc(code string, message string) exc.Exception {
	return exc.New(exc.Location{URI: self.uri, Location: idl.Location{Line: self.line, Column: self.col, Offset: self.offset}}, code, message)
}

func (self *lexerFileGLLTokens) newLine() {
	self.line = self.line + 1
	self.col = 0
	self.offset = self.offset + 1
}

func (self *lexerFileGLLTokens) newLineToken(v string, size int) optional.Optional[*idl.Token] {
	t := newToken(self.line, self.col-int32(size-1), self.offset-int64(size), self.line+1, 1, self.offset, idl.TokenTypeNewline, v)
	self.newLine()
	return optional.Some(t)
}

func (self *lexerFileGLLTokens) addCol(r rune) {
	self.col = self.col + 1
	self.offset = self.offset + int64(len(string(r)))
}

func (self *lexerFileGLLTokens) Close(ctx context.Context) error {
	return self.body.Close(ctx)
}

func newTokenLineSpan(line int32, col int32, offset int64, size int, kind idl.TokenType, value string) *idl.Token {
	return &idl.Token{
		Span: &idl.Span{
			Start: &idl.Location{
				Line:   line,
				Column: col - int32(size),
				Offset: offset - int64(size),
			},
			End: &idl.Location{
				Line:   line,
				Column: col,
				Offset: offset,
			},
		},
		Type:  kind,
		Value: value,
	}
}

func newToken(startLine int32, startCol int32, startOffset int64, endLine int32, endCol int32, endOffset int64, kind idl.TokenType, value string) *idl.Token {
	return &idl.Token{
		Span: &idl.Span{
			Start: &idl.Location{
				Line:   startLine,
				Column: startCol,
				Offset: startOffset,
			},
			End: &idl.Location{
				Line:   endLine,
				Column: endCol,
				Offset: endOffset,
			},
		},
		Type:  kind,
		Value: value,
	}
}
