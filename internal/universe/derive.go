package universe

import "strings"

// marker stands in for the original's #[derive(Archive, RkyvSerialize,
// RkyvDeserialize)] insertion: every lifted struct/enum needs to round-trip
// through the msgpack codec used at the IPC boundary (internal/ipc/codec.go).
const marker = "//msgpack:generate"

// AugmentDerives inserts the marker comment above every struct/enum
// definition in content that doesn't already carry it, immediately above
// the "type" keyword that introduces the definition. It is idempotent:
// a definition already marked is left untouched, and running it twice on
// the same content produces the same output.
func AugmentDerives(content string) string {
	lines := strings.Split(content, "\n")
	var out []string
	for i, line := range lines {
		if isTypeDefLine(line) && !precededByMarker(lines, i) {
			out = append(out, marker)
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func isTypeDefLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "type ") &&
		(strings.Contains(trimmed, "struct {") || strings.Contains(trimmed, "struct{") ||
			hasEnumShape(trimmed))
}

// hasEnumShape recognizes the notebook's enum-as-tagged-struct convention:
// a lifted Rust enum is flattened to a Go type alias of an underlying kind.
func hasEnumShape(trimmed string) bool {
	return strings.Contains(trimmed, " int") || strings.Contains(trimmed, " string")
}

func precededByMarker(lines []string, i int) bool {
	j := i - 1
	for j >= 0 && strings.TrimSpace(lines[j]) == "" {
		j--
	}
	return j >= 0 && strings.TrimSpace(lines[j]) == marker
}
