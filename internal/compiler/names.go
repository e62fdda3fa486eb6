// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"fmt"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.microglot.org/gllgen/internal/exc"
	"gopkg.microglot.org/gllgen/internal/grammar"
)

// sanitizeName converts a symbol name into a valid Go identifier. Runes
// outside the identifier set become underscores, a leading digit gains an
// underscore prefix, and Go keywords gain an underscore suffix.
func sanitizeName(name string) string {
	var builder strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			_, _ = builder.WriteRune(r)
			continue
		}
		_, _ = builder.WriteRune('_')
	}
	out := builder.String()
	if out == "" {
		return "_"
	}
	first, _ := utf8.DecodeRuneInString(out)
	if unicode.IsDigit(first) {
		out = "_" + out
	}
	if token.IsKeyword(out) {
		out = out + "_"
	}
	return out
}

// exportName is the exported form of a sanitized name, as used by the Go
// source renderer.
func exportName(name string) string {
	name = sanitizeName(name)
	first, size := utf8.DecodeRuneInString(name)
	if first == '_' || unicode.IsUpper(first) {
		return name
	}
	return string(unicode.ToUpper(first)) + name[size:]
}

// buildTypeNames maps every symbol of the grammar, and every supplied
// builtin terminal, to the type name its declaration will carry. The map is
// complete before any rule is compiled because references may point forward.
// Returns nil after reporting when two symbols collide on a type name.
func buildTypeNames(g *grammar.Grammar, builtins []Builtin, reporter exc.Reporter) map[string]string {
	names := make(map[string]string, g.Len()+len(builtins))
	byType := make(map[string]string, g.Len()+len(builtins))
	ok := true
	record := func(symbol string) {
		typeName := sanitizeName(symbol)
		if prev, exists := byType[typeName]; exists {
			_ = reporter.Report(exc.New(exc.Location{}, exc.CodeNameCollision, fmt.Sprintf("symbols %s and %s both map to the type name %s", prev, symbol, typeName)))
			ok = false
			return
		}
		byType[typeName] = symbol
		names[symbol] = typeName
	}
	for _, rule := range g.Rules() {
		record(rule.Name)
	}
	for _, builtin := range builtins {
		record(builtin.Name)
	}
	if !ok {
		return nil
	}
	return names
}
