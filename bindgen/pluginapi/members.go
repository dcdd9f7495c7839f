package pluginapi

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/idlbind/bindgen/backend"
	"github.com/broady/idlbind/bindgen/decl"
	"github.com/broady/idlbind/bindgen/naming"
	"github.com/broady/idlbind/bindgen/typeinfo"
)

type interfaceView struct {
	ClassName   string
	MethodsName string
	Self        string
	Snake       string
	Parent      string
	Types       []string
	Entries     []*entryView
	Descendants []descendantView
}

// entryView is one slot of the public method table together with the
// static function it points at.
type entryView struct {
	Alias      string
	Field      string
	Static     string
	Return     string
	Params     []string
	ParamTypes []string
	Body       []string
}

type descendantView struct {
	Name    string
	Var     string
	Include string
}

type dictionaryView struct {
	ClassName string
	Fields    []fieldView

	props []*decl.PropsDeclaration
}

type fieldView struct {
	Type string
	Name string
}

func (g *Generator) interfaceView(className string, table *backend.Table) (*interfaceView, error) {
	c := table.Class
	v := &interfaceView{
		ClassName:   className,
		MethodsName: className + "PublicMethods",
		Self:        naming.CppIdentifier(naming.SnakeCase(className)),
		Snake:       naming.SnakeCase(className),
		Parent:      c.Parent,
		Types:       append([]string{className}, table.Descendants...),
	}
	for _, e := range table.Entries {
		ev, err := g.entry(v, e)
		if err != nil {
			return nil, errors.Wrapf(err, "%s.%s", c.Name, e.Name)
		}
		v.Entries = append(v.Entries, ev)
	}
	for _, d := range table.Descendants {
		dc, ok := g.res.Session().Class(d)
		if !ok {
			return nil, errors.Newf("undeclared class %q", d)
		}
		v.Descendants = append(v.Descendants, descendantView{
			Name:    d,
			Var:     naming.CppIdentifier(naming.SnakeCase(d)),
			Include: backend.UnitOf(dc) + ".h",
		})
	}
	return v, nil
}

// dictionaryView lays out a dictionary's fields, inherited ones first,
// farthest ancestor first.
func (g *Generator) dictionaryView(className string, c *decl.ClassObject) (*dictionaryView, error) {
	sess := g.res.Session()
	ancestors, err := backend.Ancestors(sess, c)
	if err != nil {
		return nil, err
	}
	v := &dictionaryView{ClassName: className}
	for i := len(ancestors) - 1; i >= 0; i-- {
		v.props = append(v.props, ancestors[i].Props...)
	}
	v.props = append(v.props, c.Props...)

	for _, p := range v.props {
		spelling, err := g.res.PublicReturn(p.Type, g.opts.Is32Bit)
		if err != nil {
			return nil, errors.Wrapf(err, "%s.%s", c.Name, p.Name)
		}
		v.Fields = append(v.Fields, fieldView{Type: spelling, Name: naming.CppIdentifier(p.Name)})
	}
	return v, nil
}

const exceptionState = "shared_exception_state->exception_state"

func (g *Generator) entry(v *interfaceView, e backend.Entry) (*entryView, error) {
	self := v.ClassName + "* " + v.Self
	ev := &entryView{}

	switch e.Kind {
	case backend.EntryGetter:
		ev.Static = naming.UpperFirst(naming.CppIdentifier(e.Name))
		ev.Field = naming.CppIdentifier(naming.SnakeCase(e.Name))
		ev.Params = []string{self}
		ev.ParamTypes = []string{v.ClassName + "*"}
		if err := g.getter(v, ev, e.Prop); err != nil {
			return nil, err
		}

	case backend.EntrySetter:
		ev.Static = "Set" + naming.UpperFirst(naming.CppIdentifier(e.Name))
		ev.Field = "set_" + naming.CppIdentifier(naming.SnakeCase(e.Name))
		ev.Return = "void"
		if err := g.setter(v, ev, e.Prop); err != nil {
			return nil, err
		}

	case backend.EntryMethod:
		ev.Static = naming.UpperFirst(naming.CppIdentifier(e.Name))
		ev.Field = naming.CppIdentifier(naming.SnakeCase(e.Name))
		if err := g.method(v, ev, e.Func); err != nil {
			return nil, err
		}
	}
	ev.Alias = "Public" + v.ClassName + ev.Static
	return ev, nil
}

func (g *Generator) getter(v *interfaceView, ev *entryView, p *decl.PropsDeclaration) error {
	if p.Mode.NativeImpl {
		ev.Return = "NativeValue"
		ev.Body = []string{
			"ExceptionState exception_state;",
			"return " + v.Self + "->GetBindingProperty(binding_call_methods::k" + naming.CppIdentifier(p.Name) +
				", " + flushReason(p.Mode) + ", exception_state);",
		}
		return nil
	}
	ret, err := g.res.PublicReturn(p.Type, g.opts.Is32Bit)
	if err != nil {
		return err
	}
	ev.Return = ret
	call := v.Self + "->" + naming.CppIdentifier(p.Name) + "()"
	body, err := g.returnLines(v, p.Type, ret, call, "exception_state")
	if err != nil {
		return err
	}
	if ret == "NativeValue" {
		body = append([]string{"ExceptionState exception_state;"}, body...)
	}
	ev.Body = body
	return nil
}

func (g *Generator) setter(v *interfaceView, ev *entryView, p *decl.PropsDeclaration) error {
	prop := naming.CppIdentifier(p.Name)
	value := v.param(p.Name)
	if p.Mode.NativeImpl {
		ev.Params = []string{v.ClassName + "* " + v.Self, "NativeValue " + value, "SharedExceptionState* shared_exception_state"}
		ev.ParamTypes = []string{v.ClassName + "*", "NativeValue", "SharedExceptionState*"}
		ev.Body = []string{
			v.Self + "->SetBindingProperty(binding_call_methods::k" + prop + ", " + value + ", " + exceptionState + ");",
		}
		return nil
	}
	spelling, err := g.res.Public(p.Type, g.opts.Is32Bit)
	if err != nil {
		return err
	}
	ev.Params = []string{v.ClassName + "* " + v.Self, spelling + " " + value, "SharedExceptionState* shared_exception_state"}
	ev.ParamTypes = []string{v.ClassName + "*", spelling, "SharedExceptionState*"}
	prep, pass := g.argument(v, p.Type, value)
	ev.Body = append(prep, v.Self+"->set"+naming.UpperFirst(prop)+"("+pass+", "+exceptionState+");")
	return nil
}

// param returns the C++ parameter name for a member argument. Names that
// would shadow the receiver or the exception state get an _arg suffix.
func (v *interfaceView) param(name string) string {
	id := naming.CppIdentifier(name)
	if id == v.Self || id == "shared_exception_state" {
		return id + "_arg"
	}
	return id
}

func (g *Generator) method(v *interfaceView, ev *entryView, fn *decl.FunctionDeclaration) error {
	ev.Params = []string{v.ClassName + "* " + v.Self}
	ev.ParamTypes = []string{v.ClassName + "*"}
	ev.Body = []string{"MemberMutationScope member_mutation_scope{" + v.Self + "->GetExecutingContext()};"}

	var passed []string
	for _, a := range fn.Args {
		param := v.param(a.Name)
		name := param
		spelling := "NativeValue"
		if !fn.Mode.NativeImpl {
			var err error
			if spelling, err = g.res.Public(a.Type, g.opts.Is32Bit); err != nil {
				return errors.Wrapf(err, "argument %s", a.Name)
			}
			prep, pass := g.argument(v, a.Type, name)
			ev.Body = append(ev.Body, prep...)
			name = pass
		}
		ev.Params = append(ev.Params, spelling+" "+param)
		ev.ParamTypes = append(ev.ParamTypes, spelling)
		passed = append(passed, name)
	}
	ev.Params = append(ev.Params, "SharedExceptionState* shared_exception_state")
	ev.ParamTypes = append(ev.ParamTypes, "SharedExceptionState*")

	if fn.Mode.NativeImpl {
		ev.Return = "NativeValue"
		args := "nullptr"
		if len(passed) > 0 {
			ev.Body = append(ev.Body, "NativeValue arguments[] = {"+strings.Join(passed, ", ")+"};")
			args = "arguments"
		}
		ev.Body = append(ev.Body, "return "+v.Self+"->InvokeBindingMethod(binding_call_methods::k"+
			naming.CppIdentifier(fn.Name)+", "+strconv.Itoa(len(passed))+", "+args+", "+flushReason(fn.Mode)+", "+exceptionState+");")
		return nil
	}

	ret, err := g.res.PublicReturn(fn.Type, g.opts.Is32Bit)
	if err != nil {
		return errors.Wrap(err, "return type")
	}
	ev.Return = ret
	name := fn.Name
	if fn.Mode.SecondaryName != "" {
		name = fn.Mode.SecondaryName
	}
	call := v.Self + "->" + naming.CppIdentifier(name) + "(" + strings.Join(append(passed, exceptionState), ", ") + ")"
	body, err := g.returnLines(v, fn.Type, ret, call, exceptionState)
	if err != nil {
		return err
	}
	ev.Body = append(ev.Body, body...)
	return nil
}

// argument returns the statements converting the public parameter name
// to its core representation and the expression to pass on.
func (g *Generator) argument(v *interfaceView, t decl.Type, name string) ([]string, string) {
	ptr := func(spelling string) string {
		if g.opts.Is32Bit {
			return "reinterpret_cast<" + spelling + ">(" + name + ")"
		}
		return name
	}
	class, _ := typeinfo.Classify(t)
	switch class {
	case typeinfo.ClassString:
		local := name + "_atomic"
		return []string{"webf::AtomicString " + local + " = webf::AtomicString(" + v.Self + "->ctx(), " + ptr("const char*") + ");"}, local
	case typeinfo.ClassScalar:
		if typeinfo.IsTag(t, decl.ArgBoolean) {
			return nil, name + " != 0"
		}
		return nil, name
	case typeinfo.ClassHandle:
		ref, _ := typeinfo.PointerName(t)
		if g.res.IsDictionary(t) {
			local := name + "_dict"
			return []string{"std::shared_ptr<" + ref + "> " + local + " = " + ref + "::Create(" + ptr("WebF"+ref+"*") + ");"}, local
		}
		return nil, name + ".value"
	case typeinfo.ClassValue:
		if typeinfo.IsTag(t, decl.ArgFunction) {
			local := name + "_function"
			return []string{"std::shared_ptr<QJSFunction> " + local + " = QJSFunction::Create(" + v.Self + "->ctx(), " +
				ptr("WebFNativeFunctionContext*") + ");"}, local
		}
	}
	local := name + "_value"
	return []string{"ScriptValue " + local + " = ScriptValue(" + v.Self + "->ctx(), " + name + ");"}, local
}

// returnLines returns the statements that evaluate call and return its
// result in the public spelling ret.
func (g *Generator) returnLines(v *interfaceView, t decl.Type, ret, call, es string) ([]string, error) {
	class, err := typeinfo.Classify(t)
	if err != nil {
		return nil, err
	}
	switch class {
	case typeinfo.ClassVoid:
		return []string{call + ";"}, nil
	case typeinfo.ClassScalar:
		return []string{"return " + call + ";"}, nil
	case typeinfo.ClassString:
		return []string{"return AtomicStringRef(" + call + ");"}, nil
	case typeinfo.ClassHandle:
		name, _ := typeinfo.PointerName(t)
		if g.res.IsDictionary(t) {
			lines := []string{"auto result = " + call + ";"}
			if g.opts.Is32Bit {
				return append(lines, "return reinterpret_cast<int64_t>(result->ToPublic());"), nil
			}
			return append(lines, "return result->ToPublic();"), nil
		}
		lines := []string{"auto* result = " + call + ";"}
		if typeinfo.IsNullable(t) {
			lines = append(lines,
				"if (result == nullptr) {",
				"  return "+ret+"::Null();",
				"}")
		}
		return append(lines,
			"WebFValueStatus* status_block = result->KeepAlive();",
			"return "+ret+"(result, static_cast<const "+name+"PublicMethods*>(result->publicMethods()), status_block);"), nil
	case typeinfo.ClassSequence:
		if ret != "NativeValue" {
			return []string{
				"auto&& result = " + call + ";",
				"return " + ret + "(result);",
			}, nil
		}
	}
	if typeinfo.IsUnionType(t) {
		return []string{"return " + call + "->ToNative(" + v.Self + "->ctx(), " + es + ");"}, nil
	}
	return []string{"return " + call + ".ToNative(" + v.Self + "->ctx(), " + es + ");"}, nil
}

func flushReason(mode decl.TypeMode) string {
	reason := "FlushUICommandReason::kDependentsOnElement"
	if mode.LayoutDependent {
		reason += " | FlushUICommandReason::kDependentsOnLayout"
	}
	return reason
}
