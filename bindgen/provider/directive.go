package provider

import (
	"fmt"
	"go/ast"
	"go/token"
	"slices"
	"strings"

	"github.com/broady/hostbind/bindgen/annotation"
	"github.com/broady/hostbind/bindgen/decl"
)

// Directive names.
const (
	DirectiveNamespace = "namespace"
)

// methodDirectives may appear on methods of namespace types.
var methodDirectives = []string{annotation.Permission, annotation.Named, annotation.Method}

// directive is one parsed "//<marker>:<name> <args>" line.
type directive struct {
	name string
	args string
	pos  token.Position
}

// directiveSet holds the directives of one file, keyed by the comment group
// they appear in, so they can be matched to declarations.
type directiveSet struct {
	byGroup map[*ast.CommentGroup][]directive
	used    map[*ast.CommentGroup]bool
}

// parseDirectives collects every directive with the given marker in f.
// Unknown directive names are errors.
func parseDirectives(fset *token.FileSet, f *ast.File, marker string, known []string) (*directiveSet, error) {
	prefix := "//" + marker + ":"
	set := &directiveSet{
		byGroup: make(map[*ast.CommentGroup][]directive),
		used:    make(map[*ast.CommentGroup]bool),
	}

	for _, cg := range f.Comments {
		for _, c := range cg.List {
			text, ok := strings.CutPrefix(c.Text, prefix)
			if !ok {
				continue
			}
			name, args, _ := strings.Cut(text, " ")
			pos := fset.Position(c.Pos())
			if !slices.Contains(known, name) {
				return nil, fmt.Errorf("%s: unknown directive %s%s", pos, prefix, name)
			}
			set.byGroup[cg] = append(set.byGroup[cg], directive{
				name: name,
				args: strings.TrimSpace(args),
				pos:  pos,
			})
		}
	}
	return set, nil
}

// take returns the directives in doc and marks them as matched.
func (s *directiveSet) take(doc *ast.CommentGroup) []directive {
	if doc == nil {
		return nil
	}
	ds := s.byGroup[doc]
	if len(ds) > 0 {
		s.used[doc] = true
	}
	return ds
}

// unmatched returns an error for the first directive that was not attached
// to a declaration, in source order.
func (s *directiveSet) unmatched(marker string) error {
	var first *directive
	for cg, ds := range s.byGroup {
		if s.used[cg] {
			continue
		}
		if first == nil || ds[0].pos.Offset < first.pos.Offset {
			first = &ds[0]
		}
	}
	if first == nil {
		return nil
	}
	return fmt.Errorf("%s: //%s:%s directive must be in the doc comment of a type or method",
		first.pos, marker, first.name)
}

func toAnnotations(ds []directive) []decl.Annotation {
	out := make([]decl.Annotation, 0, len(ds))
	for _, d := range ds {
		out = append(out, decl.Annotation{
			Name: d.name,
			Args: d.args,
			Source: decl.Source{
				File:   d.pos.Filename,
				Line:   d.pos.Line,
				Column: d.pos.Column,
			},
		})
	}
	return out
}

func splitDirectives(ds []directive, name string) (match, rest []directive) {
	for _, d := range ds {
		if d.name == name {
			match = append(match, d)
		} else {
			rest = append(rest, d)
		}
	}
	return match, rest
}

func docLines(cg *ast.CommentGroup) decl.Doc {
	if cg == nil {
		return nil
	}
	doc := make(decl.Doc, 0, len(cg.List))
	for _, c := range cg.List {
		doc = append(doc, c.Text)
	}
	return doc
}
