package quickjs

import (
	"fmt"
	"strings"

	"github.com/broady/idlbind/bindgen/backend"
	"github.com/broady/idlbind/bindgen/decl"
	"github.com/broady/idlbind/bindgen/naming"
	"github.com/broady/idlbind/bindgen/typeinfo"
)

// callKind is how a binding body reaches its implementation.
type callKind int

const (
	callInstance callKind = iota
	callStatic
	callConstructor
	callGlobal
)

// bodyView is the template context of one callback body.
type bodyView struct {
	// Name is the member name used in diagnostics.
	Name string
	// Member is the profiler label, "Class::member".
	Member string

	// Arity and Index identify an overload.
	Arity int
	Index int

	Illegal     bool
	CheckArity  bool
	Required    int
	Clamp       bool
	MaxArgc     int
	ReturnInit  string
	Steps       []stepView
	Constructor bool
	Result      string
}

// stepView is one rendered binding step: either a conversion or a call.
type stepView struct {
	Convert string
	Call    string
	Gated   bool
	Argc    int
}

func (g *Generator) body(className string, fn *decl.FunctionDeclaration, kind callKind) (*bodyView, error) {
	plan := backend.PlanArguments(fn)
	b := &bodyView{
		Name:        fn.Name,
		Member:      className + "::" + fn.Name,
		Arity:       len(fn.Args),
		CheckArity:  plan.CheckArity(),
		Required:    plan.Required,
		Clamp:       plan.ClampArgc(),
		MaxArgc:     plan.MaxArgc,
		Constructor: kind == callConstructor,
	}
	if kind == callConstructor && typeinfo.IsVoid(fn.Type) {
		b.Illegal = true
		return b, nil
	}

	var err error
	if kind == callConstructor {
		b.ReturnInit = className + "* return_value = nullptr;"
	} else if b.ReturnInit, err = g.returnInit(fn.Type); err != nil {
		return nil, err
	}

	for _, s := range plan.Steps {
		var step stepView
		switch s.Kind {
		case backend.StepConvert:
			required := s.Index < plan.Required || s.Arg.Variadic
			if step.Convert, err = g.convertArgument(s.Arg, s.Index, required); err != nil {
				return nil, err
			}
		case backend.StepCall:
			step.Gated = s.Gated
			step.Argc = s.Argc
			if step.Call, err = g.call(className, fn, kind, s.Args); err != nil {
				return nil, err
			}
		}
		b.Steps = append(b.Steps, step)
	}

	switch {
	case kind == callConstructor:
		b.Result = "return_value->ToQuickJS()"
	case typeinfo.IsVoid(fn.Type):
		b.Result = "JS_NULL"
	default:
		conv, err := g.converter(fn.Type)
		if err != nil {
			return nil, err
		}
		b.Result = "Converter<" + conv + ">::ToValue(ctx, std::move(return_value))"
	}
	return b, nil
}

func (g *Generator) convertArgument(arg *decl.FunctionArgument, i int, required bool) (string, error) {
	var conv string
	var err error
	if required {
		conv, err = g.converter(arg.Type)
	} else {
		conv, err = g.optionalConverter(arg.Type)
	}
	if err != nil {
		return "", err
	}

	var expr string
	switch {
	case arg.Variadic:
		expr = fmt.Sprintf("Converter<%s>::FromValue(ctx, argv + %d, argc - %d, exception_state)", conv, i, i)
	case required && needsArgumentsValue(conv):
		expr = fmt.Sprintf("Converter<%s>::ArgumentsValue(context, argv[%d], %d, exception_state)", conv, i, i)
	default:
		expr = fmt.Sprintf("Converter<%s>::FromValue(ctx, argv[%d], exception_state)", conv, i)
	}
	return fmt.Sprintf("auto&& args_%s = %s;", naming.CppIdentifier(arg.Name), expr), nil
}

func argNames(args []*decl.FunctionArgument) []string {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = "args_" + naming.CppIdentifier(a.Name)
	}
	return names
}

func selfLine(className string) string {
	return fmt.Sprintf("auto* self = toScriptWrappable<%s>(JS_IsUndefined(this_val) ? context->Global() : this_val);", className)
}

func (g *Generator) call(className string, fn *decl.FunctionDeclaration, kind callKind, args []*decl.FunctionArgument) (string, error) {
	if fn.Mode.NativeImpl && kind != callConstructor {
		return g.nativeCall(className, fn, args)
	}

	assign := ""
	if kind == callConstructor || !typeinfo.IsVoid(fn.Type) {
		assign = "return_value = "
	}
	names := argNames(args)
	method := naming.CppIdentifier(fn.Name)

	switch kind {
	case callInstance:
		params := append(names, "exception_state")
		return selfLine(className) + "\n" +
			fmt.Sprintf("%sself->%s(%s);", assign, method, strings.Join(params, ", ")), nil
	case callConstructor:
		method = "Create"
	}
	params := append([]string{"context"}, names...)
	params = append(params, "exception_state")
	return fmt.Sprintf("%s%s::%s(%s);", assign, className, method, strings.Join(params, ", ")), nil
}

// flushReason returns the UI command flush flags of a native-implemented
// member.
func flushReason(mode decl.TypeMode) string {
	r := "FlushUICommandReason::kDependentsOnElement"
	if mode.LayoutDependent {
		r += " | FlushUICommandReason::kDependentsOnLayout"
	}
	return r
}

func nativeValue(t decl.Type, expr string) (string, error) {
	nt, err := nativeType(t)
	if err != nil {
		return "", err
	}
	if nativeNeedsContext(t) {
		return fmt.Sprintf("NativeValueConverter<%s>::ToNativeValue(ctx, %s)", nt, expr), nil
	}
	return fmt.Sprintf("NativeValueConverter<%s>::ToNativeValue(%s)", nt, expr), nil
}

func fromNativeValue(t decl.Type, expr string) (string, error) {
	nt, err := nativeType(t)
	if err != nil {
		return "", err
	}
	if nativeNeedsContext(t) {
		return fmt.Sprintf("NativeValueConverter<%s>::FromNativeValue(ctx, %s)", nt, expr), nil
	}
	return fmt.Sprintf("NativeValueConverter<%s>::FromNativeValue(%s)", nt, expr), nil
}

func (g *Generator) nativeCall(className string, fn *decl.FunctionDeclaration, args []*decl.FunctionArgument) (string, error) {
	var b strings.Builder
	b.WriteString(selfLine(className))
	b.WriteByte('\n')

	names := argNames(args)
	if len(args) == 0 {
		b.WriteString("NativeValue* arguments = nullptr;\n")
	} else {
		b.WriteString("NativeValue arguments[] = {\n")
		for i, a := range args {
			v, err := nativeValue(a.Type, names[i])
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "  %s,\n", v)
		}
		b.WriteString("};\n")
	}

	void := typeinfo.IsVoid(fn.Type)
	if !void {
		b.WriteString("NativeValue native_value = ")
	}
	fmt.Fprintf(&b, "self->InvokeBindingMethod(binding_call_methods::k%s, %d, arguments, %s, exception_state);",
		naming.CppIdentifier(fn.Name), len(args), flushReason(fn.Mode))
	if !void {
		v, err := fromNativeValue(fn.Type, "native_value")
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\nreturn_value = %s;", v)
	}
	return b.String(), nil
}
