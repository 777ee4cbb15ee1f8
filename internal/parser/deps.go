package parser

import (
	"strings"

	"github.com/venus-notebooks/venus/internal/notebook"
)

// ParseDependencies extracts the fenced `cargo`-style dependency block from
// a notebook's `//!` doc-comment lines (every `//!` line in the file is
// scanned, not only the leading ones). Absence of the block means no external dependencies,
// per spec §6.1.
func ParseDependencies(source string) []notebook.ExternalDependency {
	var deps []notebook.ExternalDependency

	inBlock := false
	inDeps := false
	var toml strings.Builder

	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "//!") {
			continue
		}
		content := strings.TrimSpace(strings.TrimPrefix(trimmed, "//!"))

		switch {
		case content == "```cargo":
			inBlock = true
			continue
		case content == "```" && inBlock:
			inBlock = false
			inDeps = false
			continue
		case !inBlock:
			continue
		case content == "[dependencies]":
			inDeps = true
			continue
		case strings.HasPrefix(content, "["):
			inDeps = false
			continue
		case inDeps && content != "":
			toml.WriteString(content)
			toml.WriteByte('\n')
		}
	}

	if toml.Len() > 0 {
		deps = parseTOMLDependencies(toml.String())
	}
	return deps
}

func parseTOMLDependencies(toml string) []notebook.ExternalDependency {
	var deps []notebook.ExternalDependency
	for _, line := range strings.Split(toml, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)

		switch {
		case strings.HasPrefix(value, `"`):
			deps = append(deps, notebook.ExternalDependency{
				Name:    name,
				Version: strings.Trim(value, `"`),
			})
		case strings.HasPrefix(value, "{"):
			deps = append(deps, parseTableDependency(name, value))
		}
	}
	return deps
}

func parseTableDependency(name, value string) notebook.ExternalDependency {
	dep := notebook.ExternalDependency{Name: name}
	content := strings.TrimSuffix(strings.TrimPrefix(value, "{"), "}")

	for _, part := range strings.Split(content, ",") {
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		switch key {
		case "version":
			dep.Version = strings.Trim(val, `"`)
		case "path":
			dep.LocalPath = strings.Trim(val, `"`)
		case "features":
			arr := strings.TrimSuffix(strings.TrimPrefix(val, "["), "]")
			for _, feat := range strings.Split(arr, ",") {
				feat = strings.Trim(strings.TrimSpace(feat), `"`)
				if feat != "" {
					dep.Features = append(dep.Features, feat)
				}
			}
		}
	}
	return dep
}
