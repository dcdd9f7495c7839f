package typeinfo

import (
	"github.com/cockroachdb/errors"

	"github.com/broady/idlbind/bindgen/decl"
	"github.com/broady/idlbind/bindgen/naming"
)

// Resolver spells types against a frozen session. Every reference must
// name a registered class.
type Resolver struct {
	sess *decl.Session
}

// NewResolver returns a Resolver over sess.
func NewResolver(sess *decl.Session) *Resolver {
	return &Resolver{sess: sess}
}

// Session returns the session the resolver reads from.
func (r *Resolver) Session() *decl.Session { return r.sess }

// Lookup returns the class a pointer type refers to.
func (r *Resolver) Lookup(t decl.Type) (*decl.ClassObject, error) {
	name, err := PointerName(t)
	if err != nil {
		return nil, err
	}
	c, ok := r.sess.Class(name)
	if !ok {
		return nil, errors.WithHint(
			errors.Newf("type %s references undeclared class %q", t, name),
			"declare the interface in one of the input units")
	}
	return c, nil
}

// IsDictionary reports whether t, ignoring null, names a dictionary.
func (r *Resolver) IsDictionary(t decl.Type) bool {
	if !IsPointerType(t) {
		return false
	}
	c, err := r.Lookup(t)
	return err == nil && c.Kind == decl.ClassDictionary
}

var corePrimitives = map[decl.ArgumentKind]string{
	decl.ArgInt32:             "int32_t",
	decl.ArgInt64:             "int64_t",
	decl.ArgDouble:            "double",
	decl.ArgBoolean:           "bool",
	decl.ArgString:            "AtomicString",
	decl.ArgLegacyString:      "AtomicString",
	decl.ArgVoid:              "void",
	decl.ArgAny:               "ScriptValue",
	decl.ArgObject:            "ScriptValue",
	decl.ArgNull:              "ScriptValue",
	decl.ArgUndefined:         "ScriptValue",
	decl.ArgArrayProtoMethods: "ScriptValue",
	decl.ArgPromise:           "ScriptPromise",
	decl.ArgFunction:          "std::shared_ptr<QJSFunction>",
}

// Core returns the engine-internal spelling used by the QuickJS bindings.
func (r *Resolver) Core(t decl.Type) (string, error) {
	class, err := Classify(t)
	if err != nil {
		return "", err
	}
	switch trimmed := TrimNull(t).(type) {
	case *decl.Primitive:
		return corePrimitives[trimmed.Tag], nil
	case *decl.Union:
		return "std::shared_ptr<" + naming.UnionClassName(trimmed) + ">", nil
	case *decl.Array:
		elem, err := r.Core(trimmed.Element)
		if err != nil {
			return "", err
		}
		return "std::vector<" + elem + ">", nil
	case *decl.Reference:
		c, err := r.Lookup(trimmed)
		if err != nil {
			return "", err
		}
		if c.Kind == decl.ClassDictionary {
			return "std::shared_ptr<" + c.Name + ">", nil
		}
		return c.Name + "*", nil
	}
	return "", errors.Newf("no core spelling for %s type %s", class, t)
}

// Raw returns the wire spelling used for native binding calls. Pointer-width
// values become int64_t on 32-bit targets.
func (r *Resolver) Raw(t decl.Type, is32Bit bool) (string, error) {
	class, err := Classify(t)
	if err != nil {
		return "", err
	}
	switch class {
	case ClassScalar:
		if IsTag(t, decl.ArgDouble) {
			return "double", nil
		}
		return "int64_t", nil
	case ClassString:
		return pointerWidth("SharedNativeString*", is32Bit), nil
	case ClassHandle:
		if _, err := r.Lookup(t); err != nil {
			return "", err
		}
		return pointerWidth("NativeBindingObject*", is32Bit), nil
	case ClassVoid:
		return "void", nil
	case ClassSequence, ClassValue:
		return "NativeValue", nil
	}
	return "", errors.Newf("no raw spelling for %s", t)
}

// Public returns the plugin API spelling of a parameter of type t.
func (r *Resolver) Public(t decl.Type, is32Bit bool) (string, error) {
	class, err := Classify(t)
	if err != nil {
		return "", err
	}
	switch class {
	case ClassScalar:
		return publicScalar(t), nil
	case ClassString:
		return pointerWidth("const char*", is32Bit), nil
	case ClassHandle:
		c, err := r.Lookup(t)
		if err != nil {
			return "", err
		}
		if c.Kind == decl.ClassDictionary {
			return pointerWidth("WebF"+c.Name+"*", is32Bit), nil
		}
		return handleValue(c.Name), nil
	case ClassVoid:
		return "void", nil
	case ClassValue:
		if IsTag(t, decl.ArgFunction) {
			return pointerWidth("WebFNativeFunctionContext*", is32Bit), nil
		}
		return "NativeValue", nil
	case ClassSequence:
		return "NativeValue", nil
	}
	return "", errors.Newf("no public spelling for %s", t)
}

// PublicReturn returns the plugin API spelling of a return value of type t.
func (r *Resolver) PublicReturn(t decl.Type, is32Bit bool) (string, error) {
	class, err := Classify(t)
	if err != nil {
		return "", err
	}
	switch class {
	case ClassString:
		return "AtomicStringRef", nil
	case ClassSequence:
		elem := TrimNull(t).(*decl.Array).Element
		if elemClass, err := Classify(elem); err == nil && elemClass == ClassHandle && !r.IsDictionary(elem) {
			c, err := r.Lookup(elem)
			if err != nil {
				return "", err
			}
			return "VectorValueRef<" + c.Name + "PublicMethods>", nil
		}
		return "NativeValue", nil
	case ClassValue:
		return "NativeValue", nil
	}
	return r.Public(t, is32Bit)
}

func publicScalar(t decl.Type) string {
	switch {
	case IsTag(t, decl.ArgDouble):
		return "double"
	case IsTag(t, decl.ArgBoolean):
		return "int32_t"
	default:
		return "int64_t"
	}
}

func handleValue(name string) string {
	return "WebFValue<" + name + ", " + name + "PublicMethods>"
}

func pointerWidth(spelling string, is32Bit bool) string {
	if is32Bit {
		return "int64_t"
	}
	return spelling
}
