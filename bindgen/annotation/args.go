package annotation

import (
	"fmt"
	"strings"

	"github.com/gorilla/schema"
)

var argsDecoder = schema.NewDecoder()

// NamespaceOptions are the arguments of the namespace marker:
//
//	//hostbind:namespace calc
//	//hostbind:namespace name=calc
type NamespaceOptions struct {
	Name string `schema:"name"`
}

// MethodOptions are the arguments of the method directive:
//
//	//hostbind:method name=plus
//	//hostbind:method skip=true
type MethodOptions struct {
	Name string `schema:"name"`
	Skip bool   `schema:"skip"`
}

// DecodeArgs decodes the key=value fields of a directive's argument text
// into dst, a pointer to an options struct, and returns the remaining bare
// fields in order. Unknown keys are errors.
func DecodeArgs(args string, dst any) (positional []string, err error) {
	values := make(map[string][]string)
	for _, field := range strings.Fields(args) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			positional = append(positional, field)
			continue
		}
		if key == "" {
			return nil, fmt.Errorf("malformed argument %q", field)
		}
		values[key] = append(values[key], value)
	}
	if len(values) == 0 {
		return positional, nil
	}
	if err := argsDecoder.Decode(dst, values); err != nil {
		return nil, err
	}
	return positional, nil
}

// ParseNamespace decodes the namespace marker arguments. A single bare
// field is the name.
func ParseNamespace(args string) (NamespaceOptions, error) {
	var opts NamespaceOptions
	rest, err := DecodeArgs(args, &opts)
	if err != nil {
		return opts, err
	}
	switch {
	case len(rest) > 1:
		return opts, fmt.Errorf("expected at most one name, got %q", strings.Join(rest, " "))
	case len(rest) == 1 && opts.Name != "":
		return opts, fmt.Errorf("name given twice: %q and name=%q", rest[0], opts.Name)
	case len(rest) == 1:
		opts.Name = rest[0]
	}
	return opts, nil
}

// ParseMethod decodes the arguments of every method directive in order;
// later directives override earlier ones.
func ParseMethod(directives []string) (MethodOptions, error) {
	var opts MethodOptions
	for _, args := range directives {
		rest, err := DecodeArgs(args, &opts)
		if err != nil {
			return opts, err
		}
		if len(rest) > 0 {
			return opts, fmt.Errorf("unexpected argument %q", rest[0])
		}
	}
	return opts, nil
}

// ParseNamed returns the parameter names listed by named directives, in
// order.
func ParseNamed(directives []string) []string {
	var names []string
	for _, args := range directives {
		names = append(names, strings.Fields(args)...)
	}
	return names
}
