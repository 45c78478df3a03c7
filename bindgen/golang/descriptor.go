package golang

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/broady/hostbind"
)

// HostbindPath is the import path of the runtime package referenced by
// generated code.
const HostbindPath = "github.com/broady/hostbind"

// TypeExpr returns the Go expression that constructs t at run time, e.g.
// hostbind.List(hostbind.Primitive(hostbind.Integer)).
func TypeExpr(t hostbind.TypeDescriptor) (jen.Code, error) {
	switch t := t.(type) {
	case hostbind.DynamicType:
		return jen.Qual(HostbindPath, "Dynamic").Call(), nil

	case hostbind.PrimitiveType:
		name := t.Primitive.String()
		if _, ok := hostbind.ParsePrimitiveKind(name); !ok {
			return nil, fmt.Errorf("unknown primitive kind %d", int(t.Primitive))
		}
		return jen.Qual(HostbindPath, "Primitive").Call(jen.Qual(HostbindPath, name)), nil

	case hostbind.ListType:
		elem, err := TypeExpr(t.Element)
		if err != nil {
			return nil, err
		}
		return jen.Qual(HostbindPath, "List").Call(elem), nil

	case hostbind.MapType:
		key, err := TypeExpr(t.Key)
		if err != nil {
			return nil, err
		}
		value, err := TypeExpr(t.Value)
		if err != nil {
			return nil, err
		}
		return jen.Qual(HostbindPath, "Map").Call(key, value), nil

	case hostbind.OpaqueType:
		return jen.Qual(HostbindPath, "Opaque").Call(jen.Lit(t.Name)), nil

	case hostbind.NullableType:
		inner, err := TypeExpr(t.Inner)
		if err != nil {
			return nil, err
		}
		return jen.Qual(HostbindPath, "Nullable").Call(inner), nil

	case nil:
		return nil, fmt.Errorf("nil type descriptor")
	}
	return nil, fmt.Errorf("unsupported type descriptor %T", t)
}

// paramsExpr renders an ordered Params literal, one parameter per line.
func paramsExpr(params hostbind.Params) (jen.Code, error) {
	if len(params) == 0 {
		return jen.Qual(HostbindPath, "Params").Values(), nil
	}
	items := make([]jen.Code, 0, len(params)+1)
	for _, p := range params {
		typ, err := TypeExpr(p.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		items = append(items, jen.Line().Values(
			jen.Id("Name").Op(":").Lit(p.Name),
			jen.Id("Type").Op(":").Add(typ),
		))
	}
	items = append(items, jen.Line())
	return jen.Qual(HostbindPath, "Params").Values(items...), nil
}

// permissionsExpr renders the permission expressions as RawExpr literals.
func permissionsExpr(perms []hostbind.RawExpr) jen.Code {
	items := make([]jen.Code, 0, len(perms)+1)
	for _, p := range perms {
		items = append(items, jen.Line().Values(
			jen.Id("Text").Op(":").Lit(p.Text),
			jen.Id("Pos").Op(":").Lit(p.Pos),
		))
	}
	items = append(items, jen.Line())
	return jen.Index().Qual(HostbindPath, "RawExpr").Values(items...)
}
