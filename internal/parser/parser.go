// Package parser extracts code cells, definition cells, the module doc
// comment, and external dependency declarations from one notebook source
// file (spec §4.1).
//
// The notebook's host language is Go itself: a cell is a top-level
// function compiled straight into a cgo-shared-object wrapper
// (internal/cellcompile), so its body must already be valid Go. No
// example repo in this codebase's dependency graph ships a Go parser
// usable as a library for this (see SPEC_FULL.md's standard-library
// justification for go/parser's absence from this list), so this package
// is a hand-written, brace-balanced line scanner rather than a full
// parser. It recognizes exactly the surface the spec requires: a leading
// `//venus:cell` directive comment, doc comments, function signatures,
// and item boundaries - not arbitrary Go.
package parser

import (
	"fmt"
	"strings"

	"github.com/venus-notebooks/venus/internal/notebook"
	"github.com/venus-notebooks/venus/internal/tfdiags"
)

// cellDirective marks the top-level function immediately below it as a
// code cell, the Go-idiomatic analogue of a `//go:generate` directive
// rather than a language-level attribute.
const cellDirective = "//venus:cell"

// Parse extracts (cells, definitions, module doc, dependencies) from a
// notebook source file. A hard parse error (a directive with no item
// after it, a cell with no body, a malformed signature or unterminated
// parameter list) is reported with file+line per spec §4.1; an item whose
// braces never close runs to the end of the file without an error.
// Functions missing the cell directive are silently folded into
// definition cells.
func Parse(sourceFile, source string) (*notebook.ParsedFile, error) {
	lines := strings.Split(source, "\n")

	result := &notebook.ParsedFile{
		ModuleDoc:    moduleDoc(lines),
		Dependencies: ParseDependencies(source),
	}

	i := 0
	var pendingDoc []string
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])

		switch {
		case trimmed == "":
			i++
			continue
		case strings.HasPrefix(trimmed, "//!"):
			// Module doc comment line; already consumed by moduleDoc, but
			// it may also appear interleaved (defensive skip).
			i++
			continue
		case trimmed == cellDirective:
			// Handled by the directive-gathering loop below: don't
			// consume it here, so itemStart still lands on it.
		case strings.HasPrefix(trimmed, "//"):
			pendingDoc = append(pendingDoc, strings.TrimSpace(strings.TrimPrefix(trimmed, "//")))
			i++
			continue
		}

		// Gather any //venus:... directive lines immediately preceding
		// the item.
		var directives []string
		for i < len(lines) && strings.TrimSpace(lines[i]) == cellDirective {
			directives = append(directives, strings.TrimSpace(lines[i]))
			i++
		}
		if i >= len(lines) {
			return nil, &tfdiags.Diagnostic{
				Kind:    tfdiags.Parse,
				Message: fmt.Sprintf("%s:%d: directive with no following item", sourceFile, len(lines)),
			}
		}

		itemStart := i
		end, text := consumeItem(lines, itemStart)
		i = end + 1

		doc := strings.Join(pendingDoc, "\n")
		pendingDoc = nil

		itemFirstLine := strings.TrimSpace(lines[itemStart])

		if isFn(itemFirstLine) {
			if len(directives) > 0 {
				cell, err := parseCell(sourceFile, itemStart, text, doc)
				if err != nil {
					return nil, err
				}
				result.Cells = append(result.Cells, *cell)
			} else {
				result.Definitions = append(result.Definitions, notebook.DefinitionCell{
					Content:    text,
					Kind:       classifyDefinition(itemFirstLine),
					DocComment: doc,
					Span:       lineSpan(itemStart, end),
				})
			}
			continue
		}

		result.Definitions = append(result.Definitions, notebook.DefinitionCell{
			Content:    text,
			Kind:       classifyDefinition(itemFirstLine),
			DocComment: doc,
			Span:       lineSpan(itemStart, end),
		})
	}

	return result, nil
}

func moduleDoc(lines []string) string {
	var doc []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "//!") {
			break
		}
		doc = append(doc, strings.TrimPrefix(strings.TrimPrefix(trimmed, "//!"), " "))
	}
	return strings.Join(doc, "\n")
}

// isFn reports whether line opens a Go function or method declaration,
// with or without a receiver.
func isFn(line string) bool {
	return strings.HasPrefix(line, "func ")
}

// classifyDefinition mirrors internal/universe's lifted-type convention:
// a struct definition is `type Name struct { ... }`, an enum is flattened
// to a plain `type Name int` or `type Name string` (internal/universe's
// "enum-as-tagged-struct convention"), anything else under `type ` is a
// plain alias, and a function with a receiver (`func (recv Type) ...`)
// stands in for a Rust `impl` block's individual method.
func classifyDefinition(firstLine string) notebook.DefinitionKind {
	switch {
	case strings.HasPrefix(firstLine, "import "):
		return notebook.KindImport
	case strings.HasPrefix(firstLine, "type ") && strings.Contains(firstLine, "struct"):
		return notebook.KindStruct
	case strings.HasPrefix(firstLine, "type ") && (strings.Contains(firstLine, " int") || strings.Contains(firstLine, " string")):
		return notebook.KindEnum
	case strings.HasPrefix(firstLine, "type "):
		return notebook.KindTypeAlias
	case strings.HasPrefix(firstLine, "func ("):
		return notebook.KindImpl
	case isFn(firstLine):
		return notebook.KindHelperFn
	default:
		return notebook.KindMixed
	}
}

func lineSpan(start, end int) notebook.SourceSpan {
	return notebook.SourceSpan{StartLine: start + 1, StartCol: 1, EndLine: end + 1, EndCol: 1}
}

// consumeItem scans from lines[start] until the item closes: either the
// line at which an opened brace/paren count returns to zero, or (for an
// opener-free single statement like `type Alias = int` or `import "fmt"`)
// the first line that doesn't end in a dangling continuation token.
func consumeItem(lines []string, start int) (end int, text string) {
	braceDepth, parenDepth := 0, 0
	sawOpener := false
	for i := start; i < len(lines); i++ {
		for _, ch := range lines[i] {
			switch ch {
			case '{':
				braceDepth++
				sawOpener = true
			case '}':
				braceDepth--
			case '(':
				parenDepth++
				sawOpener = true
			case ')':
				parenDepth--
			}
		}
		if sawOpener {
			if braceDepth <= 0 && parenDepth <= 0 {
				return i, strings.Join(lines[start:i+1], "\n")
			}
			continue
		}
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" && !endsWithContinuation(trimmed) {
			return i, strings.Join(lines[start:i+1], "\n")
		}
	}
	last := len(lines) - 1
	return last, strings.Join(lines[start:], "\n")
}

// endsWithContinuation reports whether line's last byte implies another
// line completes the same statement (a dangling operator, comma, or
// open-bracket with no matching close on this line).
func endsWithContinuation(line string) bool {
	switch line[len(line)-1] {
	case ',', '+', '-', '*', '/', '=', '&', '|':
		return true
	default:
		return false
	}
}
