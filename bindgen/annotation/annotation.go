// Package annotation extracts permission expressions and documentation text
// from declarations, verbatim.
package annotation

import (
	"strings"
	"unicode"

	"github.com/broady/hostbind"
	"github.com/broady/hostbind/bindgen/decl"
)

// Annotation names recognized on methods.
const (
	Permission = "permission"
	Named      = "named"
	Method     = "method"
)

// ExtractPermissions returns the argument text of every annotation on m
// named marker, in declaration order. Duplicates are kept. An empty marker
// means Permission.
//
// The text is captured exactly as written (trimmed of surrounding space) and
// never evaluated.
func ExtractPermissions(m decl.Method, marker string) []hostbind.RawExpr {
	if marker == "" {
		marker = Permission
	}
	var perms []hostbind.RawExpr
	for _, a := range m.Annotations {
		if a.Name != marker {
			continue
		}
		perms = append(perms, hostbind.RawExpr{
			Text: strings.TrimSpace(a.Args),
			Pos:  a.Source.String(),
		})
	}
	return perms
}

// Find returns the annotations named name, in declaration order.
func Find(annotations []decl.Annotation, name string) []decl.Annotation {
	var out []decl.Annotation
	for _, a := range annotations {
		if a.Name == name {
			out = append(out, a)
		}
	}
	return out
}

// ExtractDescription returns the text of a documentation comment.
//
// Comment markers are stripped from each line: "//" and one following space
// for line comments; "/*", "*/" and a leading " * " for block comments.
// Directive lines ("//hostbind:permission ...", "//go:generate ...") are
// dropped, as are leading and trailing blank lines. Lines are joined with
// "\n".
func ExtractDescription(doc decl.Doc) string {
	lines := make([]string, 0, len(doc))
	for _, raw := range doc {
		if isDirective(raw) {
			continue
		}
		lines = append(lines, stripMarker(raw)...)
	}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func stripMarker(raw string) []string {
	line := strings.TrimSpace(raw)

	if rest, ok := strings.CutPrefix(line, "//"); ok {
		return []string{strings.TrimRightFunc(strings.TrimPrefix(rest, " "), unicode.IsSpace)}
	}

	if rest, ok := strings.CutPrefix(line, "/*"); ok {
		rest = strings.TrimSuffix(rest, "*/")
		var out []string
		for _, l := range strings.Split(rest, "\n") {
			out = append(out, stripBlockLine(l))
		}
		return out
	}

	// Continuation lines of a block comment split by the provider.
	return []string{stripBlockLine(strings.TrimSuffix(line, "*/"))}
}

func stripBlockLine(l string) string {
	l = strings.TrimSpace(l)
	if l == "*" {
		return ""
	}
	if rest, ok := strings.CutPrefix(l, "* "); ok {
		return rest
	}
	return l
}

// isDirective reports whether raw is a line comment of the form
// "//name:args" with no space after the slashes, the way the go tool
// defines directives.
func isDirective(raw string) bool {
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), "//")
	if !ok {
		return false
	}
	colon := strings.IndexByte(rest, ':')
	if colon <= 0 {
		return false
	}
	for _, r := range rest[:colon] {
		if !('a' <= r && r <= 'z' || '0' <= r && r <= '9') {
			return false
		}
	}
	return colon+1 < len(rest) && 'a' <= rest[colon+1] && rest[colon+1] <= 'z'
}
