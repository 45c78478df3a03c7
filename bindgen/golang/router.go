package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/broady/hostbind/bindgen/ir"
)

// structuralKey lists the MethodBinding fields compared by the predicates,
// with how each pair is compared.
var structuralKey = []struct {
	field string
	eq    func(a, b jen.Code) jen.Code
}{
	{"Name", opEqual},
	{"Description", opEqual},
	{"ReturnType", func(a, b jen.Code) jen.Code { return jen.Qual(HostbindPath, "EqualType").Call(a, b) }},
	{"PositionalParams", methodEqual},
	{"NamedParams", methodEqual},
	{"Permissions", func(a, b jen.Code) jen.Code { return jen.Qual(HostbindPath, "EqualPermissions").Call(a, b) }},
}

func opEqual(a, b jen.Code) jen.Code     { return jen.Add(a).Op("==").Add(b) }
func methodEqual(a, b jen.Code) jen.Code { return jen.Add(a).Dot("Equal").Call(b) }

// emitPredicate writes <Method>BindingMatches, which reports whether a binding
// value has the structural key of the canonical binding returned by the
// accessor. The accessor is re-invoked on every call.
//
//	func (ns CalculatorNamespace) AddBindingMatches(b hostbind.MethodBinding) bool {
//		c := ns.AddBinding()
//		return b.Name == c.Name &&
//			...
//	}
func emitPredicate(f *jen.File, ns ir.Namespace, b ir.Binding) {
	f.Commentf("%s reports whether b has the structural key of the %s binding.",
		b.PredicateName(), b.Descriptor.Name)

	var cond *jen.Statement
	for _, k := range structuralKey {
		eq := k.eq(jen.Id("b").Dot(k.field), jen.Id("c").Dot(k.field))
		if cond == nil {
			cond = jen.Add(eq)
			continue
		}
		cond.Op("&&").Line().Add(eq)
	}

	f.Func().
		Params(jen.Id("ns").Id(ns.GoTypeName())).
		Id(b.PredicateName()).
		Params(jen.Id("b").Qual(HostbindPath, "MethodBinding")).
		Bool().
		Block(
			jen.Id("c").Op(":=").Id("ns").Dot(b.AccessorName()).Call(),
			jen.Return(cond),
		)
	f.Line()
}

// emitRouter writes RegisterGlobalMiddlewares, which appends pre and post to
// the middleware of the first binding whose predicate matches, trying
// bindings in declaration order.
func emitRouter(f *jen.File, ns ir.Namespace) {
	f.Comment("RegisterGlobalMiddlewares appends pre and post to the middleware of the")
	f.Comment("binding matching b. It returns a *hostbind.UnmatchedBindingError, and")
	f.Comment("changes nothing, when b matches no binding of the namespace.")

	registry := ns.RegistryName()
	f.Func().
		Params(jen.Id("ns").Id(ns.GoTypeName())).
		Id("RegisterGlobalMiddlewares").
		Params(
			jen.Id("b").Qual(HostbindPath, "MethodBinding"),
			jen.List(jen.Id("pre"), jen.Id("post")).Index().Qual(HostbindPath, "Middleware"),
		).
		Error().
		Block(
			jen.Switch().BlockFunc(func(g *jen.Group) {
				for _, b := range ns.Bindings {
					g.Case(jen.Id("ns").Dot(b.PredicateName()).Call(jen.Id("b"))).Block(
						jen.Id(registry).Dot(b.Method).Dot("Append").Call(jen.Id("pre"), jen.Id("post")),
					)
				}
				g.Default().Block(
					jen.Return(jen.Op("&").Qual(HostbindPath, "UnmatchedBindingError").Values(
						jen.Line().Id("Namespace").Op(":").Id("ns").Dot("Name").Call(),
						jen.Line().Id("Binding").Op(":").Id("b").Dot("Name"),
						jen.Line().Id("Known").Op(":").Qual(HostbindPath, "BindingNames").Call(jen.Id("ns")),
						jen.Line(),
					)),
				)
			}),
			jen.Return(jen.Nil()),
		)
	f.Line()
}
