package rustffi

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/idlbind/bindgen/backend"
	"github.com/broady/idlbind/bindgen/decl"
	"github.com/broady/idlbind/bindgen/naming"
	"github.com/broady/idlbind/bindgen/typeinfo"
)

// methodView is one method-table slot: the extern "C" field and the safe
// wrapper method calling through it.
type methodView struct {
	Field     string
	FFIParams []string
	FFIReturn string

	Method string
	Params []string
	Args   []string
	Return string
	Body   []string
}

const (
	exceptionParam = "exception_state: &ExceptionState"
	opaque         = "*const OpaquePtr"
)

var exceptionCheck = []string{
	"if exception_state.has_exception() {",
	"  return Err(exception_state.stringify(self.context()));",
	"}",
}

func (g *Generator) method(e backend.Entry) (*methodView, error) {
	m := &methodView{Method: naming.RustIdentifier(e.Name), FFIParams: []string{opaque}}
	switch e.Kind {
	case backend.EntryGetter:
		m.Field = m.Method
		return m, g.getter(m, e.Prop)
	case backend.EntrySetter:
		m.Method = "set_" + m.Method
		m.Field = m.Method
		return m, g.setter(m, e.Prop)
	}
	m.Field = m.Method
	return m, g.call(m, e.Func)
}

func (g *Generator) getter(m *methodView, p *decl.PropsDeclaration) error {
	if p.Mode.NativeImpl {
		m.FFIReturn = "NativeValue"
		m.Return = "NativeValue"
		m.Body = []string{
			"let value = unsafe {",
			"  ((*self.method_pointer)." + m.Field + ")(self.ptr())",
			"};",
			"value",
		}
		return nil
	}
	var err error
	if m.FFIReturn, err = g.ffiReturn(p.Type); err != nil {
		return err
	}
	ret, conv, err := g.safeReturn(p.Type)
	if err != nil {
		return err
	}
	m.Return = ret
	m.Body = []string{
		"let value = unsafe {",
		"  ((*self.method_pointer)." + m.Field + ")(self.ptr())",
		"};",
		conv,
	}
	return nil
}

func (g *Generator) setter(m *methodView, p *decl.PropsDeclaration) error {
	ffi, param, pass := "NativeValue", "NativeValue", "value"
	if !p.Mode.NativeImpl {
		var err error
		if ffi, err = g.ffiParam(p.Type); err != nil {
			return err
		}
		if param, err = g.safeParam(p.Type); err != nil {
			return err
		}
		pass = g.pass(p.Type, "value")
	}
	m.FFIParams = append(m.FFIParams, ffi, opaque)
	m.FFIReturn = "c_void"
	m.Params = []string{"value: " + param, exceptionParam}
	m.Args = []string{"value", "exception_state"}
	m.Return = "Result<(), String>"
	m.Body = append([]string{
		"unsafe {",
		"  ((*self.method_pointer)." + m.Field + ")(self.ptr(), " + pass + ", exception_state.ptr);",
		"};",
	}, exceptionCheck...)
	m.Body = append(m.Body, "Ok(())")
	return nil
}

func (g *Generator) call(m *methodView, fn *decl.FunctionDeclaration) error {
	passed := []string{"self.ptr()"}
	for _, a := range fn.Args {
		name := naming.RustIdentifier(a.Name)
		if name == "exception_state" {
			name += "_arg"
		}
		ffi, param, pass := "NativeValue", "NativeValue", name
		if !fn.Mode.NativeImpl {
			var err error
			if ffi, err = g.ffiParam(a.Type); err != nil {
				return errors.Wrapf(err, "argument %s", a.Name)
			}
			if param, err = g.safeParam(a.Type); err != nil {
				return errors.Wrapf(err, "argument %s", a.Name)
			}
			pass = g.pass(a.Type, name)
		}
		m.FFIParams = append(m.FFIParams, ffi)
		m.Params = append(m.Params, name+": "+param)
		m.Args = append(m.Args, name)
		passed = append(passed, pass)
	}
	m.FFIParams = append(m.FFIParams, opaque)
	m.Params = append(m.Params, exceptionParam)
	m.Args = append(m.Args, "exception_state")
	passed = append(passed, "exception_state.ptr")
	invoke := "((*self.method_pointer)." + m.Field + ")(" + strings.Join(passed, ", ") + ")"

	ret, conv := "NativeValue", "value"
	m.FFIReturn = "NativeValue"
	if !fn.Mode.NativeImpl {
		var err error
		if m.FFIReturn, err = g.ffiReturn(fn.Type); err != nil {
			return errors.Wrap(err, "return type")
		}
		if ret, conv, err = g.safeReturn(fn.Type); err != nil {
			return errors.Wrap(err, "return type")
		}
	}
	m.Return = "Result<" + ret + ", String>"

	if ret == "()" {
		m.Body = []string{"unsafe {", "  " + invoke + ";", "};"}
	} else {
		m.Body = []string{"let value = unsafe {", "  " + invoke, "};"}
	}
	m.Body = append(m.Body, exceptionCheck...)
	m.Body = append(m.Body, "Ok("+conv+")")
	return nil
}

func (g *Generator) pointerWidth(spelling string) string {
	if g.opts.Is32Bit {
		return "i64"
	}
	return spelling
}

// ffiParam returns the extern "C" spelling of a parameter, matching the
// plugin API's public spelling.
func (g *Generator) ffiParam(t decl.Type) (string, error) {
	class, err := typeinfo.Classify(t)
	if err != nil {
		return "", err
	}
	switch class {
	case typeinfo.ClassScalar:
		return scalar(t, "c_double", "i32"), nil
	case typeinfo.ClassString:
		return g.pointerWidth("*const c_char"), nil
	case typeinfo.ClassHandle:
		c, err := g.res.Lookup(t)
		if err != nil {
			return "", err
		}
		if c.Kind == decl.ClassDictionary {
			return g.pointerWidth("*const " + c.Name), nil
		}
		return "RustValue<" + c.Name + "RustMethods>", nil
	case typeinfo.ClassVoid:
		return "c_void", nil
	case typeinfo.ClassValue:
		if typeinfo.IsTag(t, decl.ArgFunction) {
			return g.pointerWidth("*const WebFNativeFunctionContext"), nil
		}
	}
	return "NativeValue", nil
}

// ffiReturn returns the extern "C" spelling of a return value or
// dictionary field.
func (g *Generator) ffiReturn(t decl.Type) (string, error) {
	class, err := typeinfo.Classify(t)
	if err != nil {
		return "", err
	}
	switch class {
	case typeinfo.ClassString:
		return "AtomicStringRef", nil
	case typeinfo.ClassSequence:
		if name, ok := g.handleElement(t); ok {
			return "VectorValueRef<" + name + "RustMethods>", nil
		}
		return "NativeValue", nil
	case typeinfo.ClassValue:
		return "NativeValue", nil
	}
	return g.ffiParam(t)
}

func (g *Generator) safeParam(t decl.Type) (string, error) {
	class, err := typeinfo.Classify(t)
	if err != nil {
		return "", err
	}
	switch class {
	case typeinfo.ClassScalar:
		return scalar(t, "f64", "bool"), nil
	case typeinfo.ClassString:
		return "&str", nil
	case typeinfo.ClassHandle:
		c, err := g.res.Lookup(t)
		if err != nil {
			return "", err
		}
		if typeinfo.IsNullable(t) {
			return "Option<&" + c.Name + ">", nil
		}
		return "&" + c.Name, nil
	}
	return g.ffiParam(t)
}

const nullValue = "RustValue { value: std::ptr::null(), method_pointer: std::ptr::null(), status: std::ptr::null() }"

// pass returns the expression handing the safe argument name to the
// extern "C" function.
func (g *Generator) pass(t decl.Type, name string) string {
	class, _ := typeinfo.Classify(t)
	switch class {
	case typeinfo.ClassScalar:
		if typeinfo.IsTag(t, decl.ArgBoolean) {
			return "i32::from(" + name + ")"
		}
	case typeinfo.ClassString:
		return g.cast("CString::new(" + name + ").unwrap().as_ptr()")
	case typeinfo.ClassHandle:
		nullable := typeinfo.IsNullable(t)
		if c, err := g.res.Lookup(t); err == nil && c.Kind == decl.ClassDictionary {
			if nullable {
				return g.cast(name + ".map_or(std::ptr::null(), |v| v as *const " + c.Name + ")")
			}
			return g.cast(name + " as *const " + c.Name)
		}
		if nullable {
			return name + ".map_or(" + nullValue + ", |v| v.raw())"
		}
		return name + ".raw()"
	case typeinfo.ClassValue:
		if typeinfo.IsTag(t, decl.ArgFunction) {
			return g.cast(name)
		}
	}
	return name
}

func (g *Generator) cast(expr string) string {
	if g.opts.Is32Bit {
		return expr + " as i64"
	}
	return expr
}

// safeReturn returns the wrapper's return type and the expression
// converting the extern "C" result named value into it.
func (g *Generator) safeReturn(t decl.Type) (string, string, error) {
	class, err := typeinfo.Classify(t)
	if err != nil {
		return "", "", err
	}
	switch class {
	case typeinfo.ClassVoid:
		return "()", "()", nil
	case typeinfo.ClassScalar:
		if typeinfo.IsTag(t, decl.ArgBoolean) {
			return "bool", "value != 0", nil
		}
		return scalar(t, "f64", "bool"), "value", nil
	case typeinfo.ClassString:
		return "String", "value.to_string()", nil
	case typeinfo.ClassHandle:
		c, err := g.res.Lookup(t)
		if err != nil {
			return "", "", err
		}
		if c.Kind == decl.ClassDictionary {
			return g.pointerWidth("*const " + c.Name), "value", nil
		}
		return c.Name, c.Name + "::initialize(value.value, self.context, value.method_pointer, value.status)", nil
	case typeinfo.ClassSequence:
		if name, ok := g.handleElement(t); ok {
			return "Vec<" + name + ">", "value.to_vec().into_iter().map(|item| " + name +
				"::initialize(item.value, self.context, item.method_pointer, item.status)).collect()", nil
		}
	}
	return "NativeValue", "value", nil
}

// handleElement reports whether t is a sequence of interface handles and
// returns the element class.
func (g *Generator) handleElement(t decl.Type) (string, bool) {
	arr, ok := typeinfo.TrimNull(t).(*decl.Array)
	if !ok || !typeinfo.IsPointerType(arr.Element) || g.res.IsDictionary(arr.Element) {
		return "", false
	}
	c, err := g.res.Lookup(arr.Element)
	if err != nil {
		return "", false
	}
	return c.Name, true
}

func scalar(t decl.Type, double, boolean string) string {
	switch {
	case typeinfo.IsTag(t, decl.ArgDouble):
		return double
	case typeinfo.IsTag(t, decl.ArgBoolean):
		return boolean
	}
	return "i64"
}
