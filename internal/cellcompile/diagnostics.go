package cellcompile

import (
	"regexp"
	"strconv"
)

// compilerLineRef matches a "file.go:LINE:COL:" prefix as emitted by the
// Go toolchain (and most systems-language compilers in the same
// "path:line:col: message" convention).
var compilerLineRef = regexp.MustCompile(`^[^:]+:(\d+):(\d+):\s*(.*)$`)

// mapDiagnostics parses raw compiler output line by line and remaps any
// generated-wrapper line reference back to the cell's original source
// line using mappings, so a user sees an error against their own code
// rather than the synthesized wrapper (spec §4.5's "user-visible failure
// behavior").
func mapDiagnostics(raw string, mappings []LineMapping) []Diagnostic {
	var diags []Diagnostic
	for _, line := range splitLines(raw) {
		m := compilerLineRef.FindStringSubmatch(line)
		if m == nil {
			if line != "" {
				diags = append(diags, Diagnostic{Message: line, Severity: "error"})
			}
			continue
		}
		genLine, _ := strconv.Atoi(m[1])
		col, _ := strconv.Atoi(m[2])
		diags = append(diags, Diagnostic{
			Message:    m[3],
			SourceLine: resolveSourceLine(genLine, mappings),
			Column:     col,
			Severity:   "error",
		})
	}
	if len(diags) == 0 && raw != "" {
		diags = append(diags, Diagnostic{Message: raw, Severity: "error"})
	}
	return diags
}

func resolveSourceLine(generatedLine int, mappings []LineMapping) int {
	best := 0
	for _, m := range mappings {
		if m.GeneratedLine <= generatedLine {
			best = m.SourceLine
		}
	}
	return best
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
