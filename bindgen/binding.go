package bindgen

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/broady/hostbind"
	"github.com/broady/hostbind/bindgen/annotation"
	"github.com/broady/hostbind/bindgen/decl"
	"github.com/broady/hostbind/bindgen/ir"
	"github.com/broady/hostbind/bindgen/translate"
)

// BuildOptions tune how declarations become bindings.
type BuildOptions struct {
	// PermissionMarker is the annotation name holding permission
	// expressions. Default: "permission".
	PermissionMarker string
}

// BuildSchema builds the namespaces of one package and groups them by source
// file, in the order given. Namespace names must be unique in the package.
func BuildSchema(pkg decl.PackageInfo, namespaces []decl.Namespace, opts BuildOptions) (*ir.Schema, error) {
	schema := &ir.Schema{Package: pkg}
	files := make(map[string]int)
	seen := make(map[string]decl.Source)
	idents := make(map[string]string)

	for _, d := range namespaces {
		ns, err := BuildNamespace(d, opts)
		if err != nil {
			return nil, err
		}
		if first, dup := seen[ns.Name]; dup {
			return nil, &DuplicateNamespaceError{Name: ns.Name, First: first, Second: ns.Source}
		}
		seen[ns.Name] = ns.Source

		for _, ident := range []string{ns.GoTypeName(), ns.RegistryName()} {
			if _, declared := slices.BinarySearch(pkg.Scope, ident); declared {
				return nil, &IdentifierConflictError{
					Ident:  ident,
					Type:   ns.TypeName,
					With:   "a declaration of package " + pkg.Name,
					Source: ns.Source,
				}
			}
			if other, dup := idents[ident]; dup {
				return nil, &IdentifierConflictError{
					Ident:  ident,
					Type:   ns.TypeName,
					With:   "the same identifier generated for " + other,
					Source: ns.Source,
				}
			}
			idents[ident] = ns.TypeName
		}

		i, ok := files[d.File]
		if !ok {
			i = len(schema.Files)
			files[d.File] = i
			schema.Files = append(schema.Files, ir.File{Path: d.File})
		}
		schema.Files[i].Namespaces = append(schema.Files[i].Namespaces, ns)
	}
	return schema, nil
}

// BuildNamespace builds the bindings of one annotated declaration.
//
// Every exported method declared directly on the type becomes a binding, in
// declaration order. Any error aborts the whole declaration.
func BuildNamespace(d decl.Namespace, opts BuildOptions) (ir.Namespace, error) {
	if d.Target != decl.TargetType {
		return ir.Namespace{}, &InvalidAnnotationTargetError{Name: d.TypeName, Target: d.Target, Source: d.Source}
	}

	ns := ir.Namespace{
		Name:        d.Name,
		Description: annotation.ExtractDescription(d.Doc),
		TypeName:    d.TypeName,
		Package:     d.Package,
		Source:      d.Source,
	}
	if ns.Name == "" {
		ns.Name = DefaultNamespaceName(d.File)
	}

	seen := make(map[string]decl.Source)
	for _, m := range d.Methods {
		if !m.Exported || m.Promoted {
			continue
		}

		b, skip, err := buildBinding(m, opts)
		if err != nil {
			return ir.Namespace{}, &MethodError{Type: d.TypeName, Method: m.Name, Source: m.Source, Err: err}
		}
		if skip {
			continue
		}

		if first, dup := seen[b.Descriptor.Name]; dup {
			return ir.Namespace{}, &DuplicateBindingError{
				Namespace: ns.Name,
				Binding:   b.Descriptor.Name,
				First:     first,
				Second:    m.Source,
			}
		}
		seen[b.Descriptor.Name] = m.Source
		ns.Bindings = append(ns.Bindings, b)
	}

	if err := checkMethodSet(ns); err != nil {
		return ir.Namespace{}, err
	}
	return ns, nil
}

// checkMethodSet reports a method name declared twice on the generated
// namespace type.
func checkMethodSet(ns ir.Namespace) error {
	owner := make(map[string]string)
	for _, name := range ir.NamespaceMethods {
		owner[name] = "the generated method " + name
	}
	for _, b := range ns.Bindings {
		for _, ident := range []string{b.AccessorName(), b.PredicateName()} {
			if other, dup := owner[ident]; dup {
				return &IdentifierConflictError{Ident: ident, Type: ns.TypeName, With: other, Source: b.Source}
			}
			owner[ident] = "a method generated for " + ns.TypeName + "." + b.Method
		}
	}
	return nil
}

// DefaultNamespaceName is the namespace name used when the marker gives
// none: the source file's base name without ".go".
func DefaultNamespaceName(file string) string {
	return strings.TrimSuffix(filepath.Base(file), ".go")
}

// BindingName is the script-visible name of a Go method: the method name
// with its first letter lowered ("Add" → "add", "URLFor" → "uRLFor").
func BindingName(method string) string {
	r, size := utf8.DecodeRuneInString(method)
	if r == utf8.RuneError {
		return method
	}
	return string(unicode.ToLower(r)) + method[size:]
}

func buildBinding(m decl.Method, opts BuildOptions) (ir.Binding, bool, error) {
	mopts, err := annotation.ParseMethod(annotationArgs(m, annotation.Method))
	if err != nil {
		return ir.Binding{}, false, fmt.Errorf("method directive: %w", err)
	}
	if mopts.Skip {
		return ir.Binding{}, true, nil
	}

	desc := hostbind.MethodBinding{
		Name:        BindingName(m.Name),
		Description: annotation.ExtractDescription(m.Doc),
		Permissions: annotation.ExtractPermissions(m, opts.PermissionMarker),
	}
	if mopts.Name != "" {
		desc.Name = mopts.Name
	}

	desc.PositionalParams, desc.NamedParams, err = buildParams(m)
	if err != nil {
		return ir.Binding{}, false, err
	}

	desc.ReturnType, err = buildReturn(m.Results)
	if err != nil {
		return ir.Binding{}, false, err
	}

	return ir.Binding{Method: m.Name, Descriptor: desc, Source: m.Source}, false, nil
}

func buildParams(m decl.Method) (positional, named hostbind.Params, err error) {
	params := m.Params
	if len(params) > 0 && isContext(params[0].Type) {
		params = params[1:]
	}

	namedNames := annotation.ParseNamed(annotationArgs(m, annotation.Named))
	for _, name := range namedNames {
		if !slices.ContainsFunc(params, func(p decl.Param) bool { return p.Name == name }) {
			return nil, nil, fmt.Errorf("named parameter %q is not a parameter of %s", name, m.Name)
		}
	}

	for i, p := range params {
		typ, err := translate.Translate(p.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("parameter %s: %w", paramName(p, i), err)
		}
		if slices.Contains(namedNames, p.Name) {
			named = append(named, hostbind.Param{Name: hostbind.NamedParamPrefix + p.Name, Type: typ})
			continue
		}
		positional = append(positional, hostbind.Param{Name: paramName(p, i), Type: typ})
	}
	return positional, named, nil
}

func buildReturn(results []decl.Type) (hostbind.TypeDescriptor, error) {
	if n := len(results); n > 0 && isError(results[n-1]) {
		results = results[:n-1]
	}

	switch len(results) {
	case 0:
		return hostbind.Primitive(hostbind.Null), nil
	case 1:
		typ, err := translate.TranslateReturn(results[0])
		if err != nil {
			return nil, fmt.Errorf("result: %w", err)
		}
		return typ, nil
	default:
		names := make([]string, len(results))
		for i, r := range results {
			names[i] = r.String()
		}
		return nil, &InvalidSignatureError{Results: names}
	}
}

func annotationArgs(m decl.Method, name string) []string {
	var args []string
	for _, a := range annotation.Find(m.Annotations, name) {
		args = append(args, a.Args)
	}
	return args
}

func paramName(p decl.Param, i int) string {
	if p.Name == "" || p.Name == "_" {
		return fmt.Sprintf("arg%d", i)
	}
	return p.Name
}

func isContext(t decl.Type) bool {
	return !t.Nullable && t.QualifiedName() == "context.Context"
}

func isError(t decl.Type) bool {
	return !t.Nullable && t.Path == "" && t.Name == "error"
}

