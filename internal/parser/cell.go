package parser

import (
	"fmt"
	"strings"

	"github.com/venus-notebooks/venus/internal/notebook"
	"github.com/venus-notebooks/venus/internal/tfdiags"
)

// parseCell extracts the name, dependencies, and return type from a cell
// function's text. itemStart is the zero-based line index of `text`'s
// first line, used for error reporting and span calculation.
func parseCell(sourceFile string, itemStart int, text, doc string) (*notebook.CodeCell, error) {
	sigEnd := strings.Index(text, "{")
	if sigEnd < 0 {
		return nil, &tfdiags.Diagnostic{
			Kind:    tfdiags.Parse,
			Message: fmt.Sprintf("%s:%d: cell function has no body", sourceFile, itemStart+1),
		}
	}
	signature := text[:sigEnd]

	name, params, returnType, err := parseSignature(sourceFile, itemStart, signature)
	if err != nil {
		return nil, err
	}

	deps := make([]notebook.Dependency, 0, len(params))
	for _, p := range params {
		dep, ok := extractDependency(p)
		if ok {
			deps = append(deps, dep)
		}
	}

	lineCount := strings.Count(text, "\n") + 1
	return &notebook.CodeCell{
		Name:         name,
		DisplayName:  name,
		Dependencies: deps,
		ReturnType:   returnType,
		DocComment:   doc,
		SourceCode:   text,
		SourceFile:   sourceFile,
		Span: notebook.SourceSpan{
			StartLine: itemStart + 1,
			StartCol:  1,
			EndLine:   itemStart + lineCount,
			EndCol:    1,
		},
	}, nil
}

// parseSignature extracts the function name, raw parameter strings, and
// return type from everything up to (not including) the opening brace.
// Go function syntax has no `->` arrow: whatever follows the parameter
// list's closing paren, up to the brace, is the return type - empty for
// no return value, a bare type for one, or a parenthesized list
// (`(DataFrame, error)`) for more than one.
func parseSignature(sourceFile string, itemStart int, signature string) (name string, params []string, returnType string, err error) {
	open := strings.Index(signature, "(")
	if open < 0 {
		return "", nil, "", &tfdiags.Diagnostic{
			Kind:    tfdiags.Parse,
			Message: fmt.Sprintf("%s:%d: malformed cell signature: %q", sourceFile, itemStart+1, signature),
		}
	}

	nameSection := signature[:open]
	fields := strings.Fields(nameSection)
	if len(fields) == 0 {
		return "", nil, "", &tfdiags.Diagnostic{
			Kind:    tfdiags.Parse,
			Message: fmt.Sprintf("%s:%d: malformed cell signature: %q", sourceFile, itemStart+1, signature),
		}
	}
	name = fields[len(fields)-1]

	close := matchParen(signature, open)
	if close < 0 {
		return "", nil, "", &tfdiags.Diagnostic{
			Kind:    tfdiags.Parse,
			Message: fmt.Sprintf("%s:%d: unterminated parameter list", sourceFile, itemStart+1),
		}
	}

	paramList := strings.TrimSpace(signature[open+1 : close])
	if paramList != "" {
		params = splitTopLevel(paramList, ',')
	}

	returnType = strings.TrimSpace(signature[close+1:])

	return name, params, returnType, nil
}

// matchParen returns the index of the ')' matching the '(' at openIdx.
func matchParen(s string, openIdx int) int {
	depth := 0
	for i := openIdx; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside (),
// <>, or [] - needed because Go generic type parameters and slice/map
// types nest brackets (e.g. `data map[string]int`, `items []Row`, a
// generic `[T any]`).
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '<', '[':
			depth++
		case ')', '>', ']':
			depth--
		default:
			if s[i] == sep && depth == 0 {
				parts = append(parts, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[last:]))
	return parts
}

// extractDependency parses one raw Go parameter string ("name Type",
// "name *Type") into a Dependency, filtering out the reserved context
// parameter `ctx`/`_ctx` per spec §4.1. Go has no `&`/`&mut` distinction:
// a pointer parameter (`*Type`) is both the reference and the mutable
// case, so IsRef and IsMut always agree.
func extractDependency(param string) (notebook.Dependency, bool) {
	param = strings.TrimSpace(param)
	if param == "" {
		return notebook.Dependency{}, false
	}

	fields := strings.Fields(param)
	if len(fields) < 2 {
		return notebook.Dependency{}, false
	}
	paramName := fields[0]
	paramType := strings.Join(fields[1:], " ")

	if paramName == "ctx" || paramName == "_ctx" {
		return notebook.Dependency{}, false
	}

	isPointer := strings.HasPrefix(paramType, "*")
	if isPointer {
		paramType = strings.TrimSpace(strings.TrimPrefix(paramType, "*"))
	}

	return notebook.Dependency{
		ParamName: paramName,
		ParamType: paramType,
		IsRef:     isPointer,
		IsMut:     isPointer,
	}, true
}
