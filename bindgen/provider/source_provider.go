// Package provider extracts annotated declarations from Go source code and
// converts them to the declaration model.
package provider

import (
	"cmp"
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/broady/hostbind/bindgen/annotation"
	"github.com/broady/hostbind/bindgen/decl"
	"github.com/broady/hostbind/bindgen/golang"
)

// HostbindPath is the import path of the runtime package whose Future type
// marks asynchronous results.
const HostbindPath = "github.com/broady/hostbind"

// SourceProvider loads packages with go/packages and extracts the types
// carrying the namespace directive.
type SourceProvider struct {
	// Marker is the directive prefix: "hostbind" for //hostbind:namespace.
	Marker string

	// Suffix identifies generated files. Generated files with this suffix
	// are replaced by an empty file while loading, so stale output never
	// breaks type checking. Empty disables the replacement.
	Suffix string

	// Dir is the directory patterns are resolved in; empty means the
	// current directory.
	Dir string

	// Tags are extra build tags.
	Tags []string

	// PermissionMarker is an extra method directive name accepted in place
	// of "permission".
	PermissionMarker string
}

// Package is the result of loading one package.
type Package struct {
	Info decl.PackageInfo

	// Namespaces are the annotated declarations, in file and source order.
	Namespaces []decl.Namespace
}

// Load loads the packages matching patterns and extracts their namespaces.
func (p *SourceProvider) Load(ctx context.Context, patterns ...string) ([]Package, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no packages specified")
	}

	overlay, err := p.overlay(ctx, patterns)
	if err != nil {
		return nil, err
	}

	cfg := &packages.Config{
		Context: ctx,
		Dir:     p.Dir,
		Overlay: overlay,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedImports |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo,
	}
	if len(p.Tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(p.Tags, ",")}
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found matching %s", strings.Join(patterns, " "))
	}

	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s has errors: %v", pkg.PkgPath, pkg.Errors)
		}
	}

	out := make([]Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		extracted, err := p.extract(pkg)
		if err != nil {
			return nil, err
		}
		out = append(out, extracted)
	}
	return out, nil
}

// directives returns every directive name the provider accepts.
func (p *SourceProvider) directives() []string {
	known := append([]string{DirectiveNamespace}, methodDirectives...)
	if p.PermissionMarker != "" && !slices.Contains(known, p.PermissionMarker) {
		known = append(known, p.PermissionMarker)
	}
	return known
}

func (p *SourceProvider) marker() string {
	if p.Marker == "" {
		return "hostbind"
	}
	return p.Marker
}

// overlay lists the previously generated files of the matched packages and
// maps each to a file holding only its package clause.
func (p *SourceProvider) overlay(ctx context.Context, patterns []string) (map[string][]byte, error) {
	if p.Suffix == "" {
		return nil, nil
	}

	cfg := &packages.Config{
		Context: ctx,
		Dir:     p.Dir,
		Mode:    packages.NeedName | packages.NeedFiles,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}

	overlay := make(map[string][]byte)
	for _, pkg := range pkgs {
		for _, file := range pkg.GoFiles {
			if !strings.HasSuffix(file, p.Suffix) {
				continue
			}
			src, err := os.ReadFile(file)
			if err != nil || !golang.IsGenerated(src) {
				continue
			}
			overlay[file] = []byte("// " + golang.Header + "\n\npackage " + pkg.Name + "\n")
		}
	}
	return overlay, nil
}

// extractor holds the state for extracting one package.
type extractor struct {
	marker string
	known  []string
	pkg    *packages.Package
	info   decl.PackageInfo

	// methodDecls maps method objects to their declarations.
	methodDecls map[types.Object]*ast.FuncDecl

	// namespaceTypes are the type names carrying the namespace directive.
	namespaceTypes map[*types.TypeName]bool
}

func (p *SourceProvider) extract(pkg *packages.Package) (Package, error) {
	e := &extractor{
		marker:         p.marker(),
		known:          p.directives(),
		pkg:            pkg,
		info:           decl.PackageInfo{Path: pkg.PkgPath, Name: pkg.Name, Dir: pkg.Dir},
		methodDecls:    make(map[types.Object]*ast.FuncDecl),
		namespaceTypes: make(map[*types.TypeName]bool),
	}
	if pkg.Types != nil {
		e.info.Scope = pkg.Types.Scope().Names()
	}
	if e.info.Dir == "" && len(pkg.GoFiles) > 0 {
		e.info.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	for _, f := range pkg.Syntax {
		for _, d := range f.Decls {
			fd, ok := d.(*ast.FuncDecl)
			if !ok || fd.Recv == nil {
				continue
			}
			if obj := pkg.TypesInfo.Defs[fd.Name]; obj != nil {
				e.methodDecls[obj] = fd
			}
		}
	}

	result := Package{Info: e.info}
	sets := make([]*directiveSet, len(pkg.Syntax))
	for i, f := range pkg.Syntax {
		namespaces, set, err := e.extractFile(f)
		if err != nil {
			return Package{}, err
		}
		sets[i] = set
		result.Namespaces = append(result.Namespaces, namespaces...)
	}

	// Method directives are checked once every namespace type is known,
	// since methods may be declared in other files than their type.
	for i, f := range pkg.Syntax {
		if err := e.checkMethodDirectives(f, sets[i]); err != nil {
			return Package{}, err
		}
	}
	return result, nil
}

func (e *extractor) extractFile(f *ast.File) ([]decl.Namespace, *directiveSet, error) {
	set, err := parseDirectives(e.pkg.Fset, f, e.marker, e.known)
	if err != nil {
		return nil, nil, err
	}
	if len(set.byGroup) == 0 {
		return nil, set, nil
	}

	filename := e.pkg.Fset.Position(f.Package).Filename
	var namespaces []decl.Namespace

	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				doc := specDoc(d, spec)
				ds := set.take(doc)
				if len(ds) == 0 {
					continue
				}
				markers, rest := splitDirectives(ds, DirectiveNamespace)
				if len(rest) > 0 {
					return nil, nil, fmt.Errorf("%s: //%s:%s directive must be on a method", rest[0].pos, e.marker, rest[0].name)
				}
				if len(markers) > 1 {
					return nil, nil, fmt.Errorf("%s: duplicate //%s:%s directive", markers[1].pos, e.marker, DirectiveNamespace)
				}

				ns, obj, err := e.namespace(filename, spec, doc, markers[0])
				if err != nil {
					return nil, nil, err
				}
				if obj != nil {
					e.namespaceTypes[obj] = true
				}
				namespaces = append(namespaces, ns)
			}

		case *ast.FuncDecl:
			ds := set.take(d.Doc)
			if len(ds) == 0 {
				continue
			}
			if markers, _ := splitDirectives(ds, DirectiveNamespace); len(markers) > 0 {
				namespaces = append(namespaces, decl.Namespace{
					TypeName: d.Name.Name,
					Target:   decl.TargetFunc,
					File:     filename,
					Package:  e.info,
					Doc:      docLines(d.Doc),
					Source:   e.source(d.Name.Pos()),
				})
			}
		}
	}

	if err := set.unmatched(e.marker); err != nil {
		return nil, nil, err
	}
	return namespaces, set, nil
}

// checkMethodDirectives rejects method directives on methods of types that
// are not namespaces, where they would be silently ignored.
func (e *extractor) checkMethodDirectives(f *ast.File, set *directiveSet) error {
	for _, d := range f.Decls {
		fd, ok := d.(*ast.FuncDecl)
		if !ok || fd.Doc == nil || len(set.byGroup[fd.Doc]) == 0 {
			continue
		}
		ds := set.byGroup[fd.Doc]
		if fd.Recv == nil {
			if _, rest := splitDirectives(ds, DirectiveNamespace); len(rest) > 0 {
				return fmt.Errorf("%s: //%s:%s directive on function %s: only methods of namespace types take it",
					rest[0].pos, e.marker, rest[0].name, fd.Name.Name)
			}
			continue
		}
		if markers, _ := splitDirectives(ds, DirectiveNamespace); len(markers) > 0 {
			// Reported as an invalid namespace target by the generator.
			continue
		}
		fn, _ := e.pkg.TypesInfo.Defs[fd.Name].(*types.Func)
		if fn == nil {
			continue
		}
		recv := receiverTypeName(fn)
		if recv == nil || !e.namespaceTypes[recv] {
			return fmt.Errorf("%s: //%s:%s directive on method %s, whose receiver is not a namespace type",
				ds[0].pos, e.marker, ds[0].name, fd.Name.Name)
		}
	}
	return nil
}

func (e *extractor) namespace(filename string, spec ast.Spec, doc *ast.CommentGroup, marker directive) (decl.Namespace, *types.TypeName, error) {
	opts, err := annotation.ParseNamespace(marker.args)
	if err != nil {
		return decl.Namespace{}, nil, fmt.Errorf("%s: //%s:%s: %w", marker.pos, e.marker, DirectiveNamespace, err)
	}

	ns := decl.Namespace{
		Name:    opts.Name,
		File:    filename,
		Package: e.info,
		Doc:     docLines(doc),
	}

	ts, ok := spec.(*ast.TypeSpec)
	if !ok {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			return decl.Namespace{}, nil, fmt.Errorf("%s: //%s:%s directive on an import", marker.pos, e.marker, DirectiveNamespace)
		}
		ns.TypeName = vs.Names[0].Name
		ns.Target = decl.TargetValue
		ns.Source = e.source(vs.Names[0].Pos())
		return ns, nil, nil
	}

	ns.TypeName = ts.Name.Name
	ns.Source = e.source(ts.Name.Pos())

	obj, _ := e.pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
	switch {
	case ts.Assign.IsValid() || obj == nil || obj.IsAlias():
		ns.Target = decl.TargetAlias
		return ns, nil, nil
	case ts.TypeParams != nil && len(ts.TypeParams.List) > 0:
		ns.Target = decl.TargetGeneric
		return ns, nil, nil
	}

	named, ok := obj.Type().(*types.Named)
	if !ok {
		ns.Target = decl.TargetAlias
		return ns, nil, nil
	}
	if types.IsInterface(named) {
		ns.Target = decl.TargetInterface
		return ns, obj, nil
	}

	ns.Target = decl.TargetType
	ns.Methods, err = e.methods(named)
	if err != nil {
		return decl.Namespace{}, nil, err
	}
	return ns, obj, nil
}

// methods returns the declared methods of named in source order, followed by
// the methods promoted from embedded fields, sorted by name.
func (e *extractor) methods(named *types.Named) ([]decl.Method, error) {
	var declared []*types.Func
	for i := range named.NumMethods() {
		declared = append(declared, named.Method(i))
	}
	slices.SortFunc(declared, func(a, b *types.Func) int { return cmp.Compare(a.Pos(), b.Pos()) })

	methods := make([]decl.Method, 0, len(declared))
	for _, fn := range declared {
		m, err := e.method(fn, false)
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}

	mset := types.NewMethodSet(types.NewPointer(named))
	var promoted []decl.Method
	for sel := range mset.Methods() {
		if len(sel.Index()) < 2 {
			continue
		}
		m, err := e.method(sel.Obj().(*types.Func), true)
		if err != nil {
			return nil, err
		}
		promoted = append(promoted, m)
	}
	slices.SortFunc(promoted, func(a, b decl.Method) int { return strings.Compare(a.Name, b.Name) })

	return append(methods, promoted...), nil
}

func (e *extractor) method(fn *types.Func, promoted bool) (decl.Method, error) {
	sig := fn.Type().(*types.Signature)
	m := decl.Method{
		Name:     fn.Name(),
		Exported: fn.Exported(),
		Promoted: promoted,
		Source:   e.source(fn.Pos()),
	}

	for i := range sig.Params().Len() {
		v := sig.Params().At(i)
		m.Params = append(m.Params, decl.Param{
			Name:     v.Name(),
			Type:     e.convertType(v.Type()),
			Variadic: sig.Variadic() && i == sig.Params().Len()-1,
		})
	}
	for i := range sig.Results().Len() {
		m.Results = append(m.Results, e.convertType(sig.Results().At(i).Type()))
	}

	if promoted {
		return m, nil
	}
	if fd, ok := e.methodDecls[fn]; ok && fd.Doc != nil {
		m.Doc = docLines(fd.Doc)
		m.Annotations = e.methodAnnotations(fd.Doc)
	}
	return m, nil
}

// methodAnnotations returns the method directives of doc. A namespace
// directive on a method is reported separately as an invalid target.
func (e *extractor) methodAnnotations(doc *ast.CommentGroup) []decl.Annotation {
	var ds []directive
	for _, c := range doc.List {
		text, ok := strings.CutPrefix(c.Text, "//"+e.marker+":")
		if !ok {
			continue
		}
		name, args, _ := strings.Cut(text, " ")
		if name == DirectiveNamespace {
			continue
		}
		ds = append(ds, directive{
			name: name,
			args: strings.TrimSpace(args),
			pos:  e.pkg.Fset.Position(c.Pos()),
		})
	}
	return toAnnotations(ds)
}

// convertType converts a go/types type to the declaration model.
func (e *extractor) convertType(t types.Type) decl.Type {
	name := types.TypeString(t, e.qualifier)

	switch t := types.Unalias(t).(type) {
	case *types.Pointer:
		inner := e.convertType(t.Elem())
		inner.Nullable = true
		return inner

	case *types.Basic:
		if t.Kind() == types.UntypedNil {
			return decl.Basic("untyped nil")
		}
		return decl.Type{Kind: decl.KindBasic, Name: name}

	case *types.Named:
		obj := t.Obj()
		if obj.Pkg() == nil {
			// Predeclared: error, comparable.
			return decl.Type{Kind: decl.KindNamed, Name: obj.Name()}
		}
		if obj.Pkg().Path() == HostbindPath && obj.Name() == "Future" && t.TypeArgs().Len() == 1 {
			elem := e.convertType(t.TypeArgs().At(0))
			return decl.Type{Kind: decl.KindFuture, Name: name, Path: HostbindPath, Obj: obj.Name(), Elem: &elem}
		}
		return decl.Type{Kind: decl.KindNamed, Name: name, Path: obj.Pkg().Path(), Obj: obj.Name()}

	case *types.Slice:
		elem := e.convertType(t.Elem())
		return decl.Type{Kind: decl.KindList, Name: name, Elem: &elem}

	case *types.Array:
		elem := e.convertType(t.Elem())
		return decl.Type{Kind: decl.KindList, Name: name, Elem: &elem}

	case *types.Map:
		key := e.convertType(t.Key())
		elem := e.convertType(t.Elem())
		return decl.Type{Kind: decl.KindMap, Name: name, Key: &key, Elem: &elem}

	case *types.Interface:
		return decl.Type{Kind: decl.KindInterface, Name: name, Empty: t.Empty()}
	}

	return decl.Type{Kind: decl.KindOther, Name: name}
}

// qualifier prints types of the loaded package unqualified and other types
// with their package name.
func (e *extractor) qualifier(p *types.Package) string {
	if p == e.pkg.Types {
		return ""
	}
	return p.Name()
}

func (e *extractor) source(pos token.Pos) decl.Source {
	if !pos.IsValid() {
		return decl.Source{}
	}
	position := e.pkg.Fset.Position(pos)
	return decl.Source{
		File:   position.Filename,
		Line:   position.Line,
		Column: position.Column,
	}
}

// specDoc returns the doc comment of a spec: its own, or the declaration's
// when the declaration is not parenthesized.
func specDoc(gd *ast.GenDecl, spec ast.Spec) *ast.CommentGroup {
	var doc *ast.CommentGroup
	switch s := spec.(type) {
	case *ast.TypeSpec:
		doc = s.Doc
	case *ast.ValueSpec:
		doc = s.Doc
	}
	if doc == nil && !gd.Lparen.IsValid() {
		doc = gd.Doc
	}
	return doc
}

func receiverTypeName(fn *types.Func) *types.TypeName {
	recv := fn.Type().(*types.Signature).Recv()
	if recv == nil {
		return nil
	}
	t := recv.Type()
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	if named, ok := types.Unalias(t).(*types.Named); ok {
		return named.Origin().Obj()
	}
	return nil
}
