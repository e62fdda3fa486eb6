// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package idl contains the contracts shared by the stages of the grammar
// compiler: source files, code points, tokens, and the iterators that move
// them between stages.
package idl

import (
	"context"
	"fmt"

	"gopkg.microglot.org/gllgen/internal/optional"
)

// CodePoint is a single unicode code point from a source file.
type CodePoint rune

// Location is a position within a source file. Lines and columns are
// 1-indexed, offsets are 0-indexed bytes from the start of the file.
type Location struct {
	Line   int32
	Column int32
	Offset int64
}

func (self Location) String() string {
	return fmt.Sprintf("%d:%d", self.Line, self.Column)
}

// Span is the start and end of a range of source text.
type Span struct {
	Start *Location
	End   *Location
}

// TokenType identifies the lexical class of a token.
type TokenType uint16

const (
	TokenTypeUnknown TokenType = iota
	TokenTypeEOF
	TokenTypeNewline
	TokenTypeComment
	TokenTypeIdentifier
	TokenTypeText
	TokenTypeCharLiteral
	TokenTypeDotDot
	TokenTypeEqual
	TokenTypeColon
	TokenTypeSemicolon
	TokenTypePipe
	TokenTypeQuestion
	TokenTypeStar
	TokenTypePlus
	TokenTypePercent
	TokenTypeDoublePercent
	TokenTypeCurlyOpen
	TokenTypeCurlyClose
)

var tokenTypeNames = map[TokenType]string{
	TokenTypeUnknown:       "Unknown",
	TokenTypeEOF:           "EOF",
	TokenTypeNewline:       "Newline",
	TokenTypeComment:       "Comment",
	TokenTypeIdentifier:    "Identifier",
	TokenTypeText:          "Text",
	TokenTypeCharLiteral:   "CharLiteral",
	TokenTypeDotDot:        "DotDot",
	TokenTypeEqual:         "Equal",
	TokenTypeColon:         "Colon",
	TokenTypeSemicolon:     "Semicolon",
	TokenTypePipe:          "Pipe",
	TokenTypeQuestion:      "Question",
	TokenTypeStar:          "Star",
	TokenTypePlus:          "Plus",
	TokenTypePercent:       "Percent",
	TokenTypeDoublePercent: "DoublePercent",
	TokenTypeCurlyOpen:     "CurlyOpen",
	TokenTypeCurlyClose:    "CurlyClose",
}

func (self TokenType) String() string {
	if name, ok := tokenTypeNames[self]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", uint16(self))
}

// Token is a single lexical element of a grammar file.
type Token struct {
	Span  *Span
	Type  TokenType
	Value string
}

func (self *Token) String() string {
	return fmt.Sprintf("%s(%q)", self.Type, self.Value)
}

// Iterator is a generic iterator of values.
type Iterator[T any] interface {
	Next(ctx context.Context) optional.Optional[T]
	Close(ctx context.Context) error
}

// Filter selects the values an iterator keeps.
type Filter[T any] interface {
	Keep(ctx context.Context, value T) bool
}

// Lookahead is an iterator that can peek at upcoming values without
// consuming them.
type Lookahead[T any] interface {
	Iterator[T]
	Lookahead(ctx context.Context, n uint8) optional.Optional[T]
}

// FileKind identifies the content type of a source file.
type FileKind uint16

const (
	FileKindNone FileKind = iota
	FileKindGLL
)

// FileBody is a readable stream of file content.
type FileBody interface {
	Read(ctx context.Context, size int32) ([]byte, error)
	Close(ctx context.Context) error
}

// File is any source input to the compiler.
type File interface {
	Path(ctx context.Context) string
	Kind(ctx context.Context) FileKind
	Body(ctx context.Context) (FileBody, error)
}

// LexerFile is a File that can produce its own token stream.
type LexerFile interface {
	File
	Tokens(ctx context.Context) (Iterator[*Token], error)
}

// FileSystem opens and writes files by path.
type FileSystem interface {
	Open(ctx context.Context, uri string) ([]File, error)
	Write(ctx context.Context, uri string, content string) error
}
