// Package golang renders binding schemas as Go source files.
//
// For each namespace type T the generated file declares a TNamespace type
// implementing hostbind.Namespace, a package-level struct holding one
// hostbind.Middlewares per binding, one accessor and one structural-equality
// predicate per binding, and the RegisterGlobalMiddlewares router.
package golang

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/broady/hostbind/bindgen/ir"
	"github.com/broady/hostbind/bindgen/sink"
)

// Header is the first line of every generated file.
const Header = "Code generated by hostbind. DO NOT EDIT."

// DefaultSuffix replaces ".go" in a source file name to name its generated
// file.
const DefaultSuffix = "_hostbind.go"

// GenerateOptions configures Generate.
type GenerateOptions struct {
	// Sink receives generated files, named relative to the package directory.
	Sink sink.OutputSink

	// Suffix names generated files. Default: DefaultSuffix.
	Suffix string
}

// GenerateResult lists what Generate wrote.
type GenerateResult struct {
	Files []OutputFile

	// Namespaces is the number of namespaces rendered.
	Namespaces int

	// Bindings is the number of bindings rendered.
	Bindings int
}

// OutputFile describes a generated file.
type OutputFile struct {
	// Path is the file name relative to the package directory.
	Path string

	// Source is the source file the output was generated from.
	Source string

	// Size is the number of bytes written.
	Size int64
}

// Generate renders one file per source file of schema and writes them to
// opts.Sink.
func Generate(ctx context.Context, schema *ir.Schema, opts GenerateOptions) (*GenerateResult, error) {
	if opts.Sink == nil {
		return nil, fmt.Errorf("no output sink")
	}
	suffix := opts.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}

	res := &GenerateResult{}
	for _, file := range schema.Files {
		src, err := EmitFile(schema, file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file.Path, err)
		}
		path := file.OutputName(suffix)
		if err := opts.Sink.WriteFile(ctx, path, src); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		res.Files = append(res.Files, OutputFile{Path: path, Source: file.Path, Size: int64(len(src))})
		res.Namespaces += len(file.Namespaces)
		for _, ns := range file.Namespaces {
			res.Bindings += len(ns.Bindings)
		}
	}
	return res, nil
}

// EmitFile renders the generated companion of one source file.
func EmitFile(schema *ir.Schema, file ir.File) ([]byte, error) {
	f := jen.NewFilePathName(schema.Package.Path, schema.Package.Name)
	f.HeaderComment(Header)
	f.ImportName(HostbindPath, "hostbind")

	for _, ns := range file.Namespaces {
		if err := emitNamespace(f, ns); err != nil {
			return nil, fmt.Errorf("namespace %s: %w", ns.Name, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func emitNamespace(f *jen.File, ns ir.Namespace) error {
	nsType := ns.GoTypeName()
	registry := ns.RegistryName()

	f.Commentf("%s exposes %s to scripts as the %q namespace.", nsType, ns.TypeName, ns.Name)
	f.Type().Id(nsType).Struct()
	f.Line()

	f.Var().Id("_").Qual(HostbindPath, "Namespace").Op("=").Id(nsType).Values()
	f.Line()

	f.Commentf("%s holds the middleware of each %s binding.", registry, nsType)
	f.Var().Id(registry).StructFunc(func(g *jen.Group) {
		for _, b := range ns.Bindings {
			g.Id(b.Method).Qual(HostbindPath, "Middlewares")
		}
	})
	f.Line()

	f.Func().Params(jen.Id("ns").Id(nsType)).Id("Name").Params().String().Block(
		jen.Return(jen.Lit(ns.Name)),
	)
	f.Line()

	f.Func().Params(jen.Id("ns").Id(nsType)).Id("Description").Params().String().Block(
		jen.Return(jen.Lit(ns.Description)),
	)
	f.Line()

	f.Func().Params(jen.Id("ns").Id(nsType)).Id("Bindings").Params().Index().Qual(HostbindPath, "MethodBinding").Block(
		jen.Return(jen.Index().Qual(HostbindPath, "MethodBinding").ValuesFunc(func(g *jen.Group) {
			for _, b := range ns.Bindings {
				g.Line().Id("ns").Dot(b.AccessorName()).Call()
			}
			if len(ns.Bindings) > 0 {
				g.Line()
			}
		})),
	)
	f.Line()

	for _, b := range ns.Bindings {
		if err := emitAccessor(f, ns, b); err != nil {
			return fmt.Errorf("binding %s: %w", b.Descriptor.Name, err)
		}
		emitPredicate(f, ns, b)
	}

	emitRouter(f, ns)
	return nil
}

// emitAccessor writes <Method>Binding, which builds a fresh MethodBinding
// value for the method on every call.
func emitAccessor(f *jen.File, ns ir.Namespace, b ir.Binding) error {
	d := b.Descriptor

	ret, err := TypeExpr(d.ReturnType)
	if err != nil {
		return fmt.Errorf("return type: %w", err)
	}
	positional, err := paramsExpr(d.PositionalParams)
	if err != nil {
		return err
	}
	named, err := paramsExpr(d.NamedParams)
	if err != nil {
		return err
	}

	fields := []jen.Code{
		jen.Line().Id("Name").Op(":").Lit(d.Name),
		jen.Line().Id("Description").Op(":").Lit(d.Description),
		jen.Line().Id("ReturnType").Op(":").Add(ret),
		jen.Line().Id("PositionalParams").Op(":").Add(positional),
		jen.Line().Id("NamedParams").Op(":").Add(named),
	}
	if len(d.Permissions) > 0 {
		fields = append(fields, jen.Line().Id("Permissions").Op(":").Add(permissionsExpr(d.Permissions)))
	}
	fields = append(fields,
		jen.Line().Id("Function").Op(":").Parens(jen.Op("*").Id(ns.TypeName)).Dot(b.Method),
		jen.Line().Id("Middlewares").Op(":").Op("&").Id(ns.RegistryName()).Dot(b.Method),
		jen.Line(),
	)

	f.Commentf("%s describes %s.%s.", b.AccessorName(), ns.TypeName, b.Method)
	f.Func().
		Params(jen.Id("ns").Id(ns.GoTypeName())).
		Id(b.AccessorName()).
		Params().
		Qual(HostbindPath, "MethodBinding").
		Block(jen.Return(jen.Qual(HostbindPath, "MethodBinding").Values(fields...)))
	f.Line()
	return nil
}

// IsGenerated reports whether src starts with the generated-file header.
func IsGenerated(src []byte) bool {
	return strings.HasPrefix(string(src), "// "+Header)
}
