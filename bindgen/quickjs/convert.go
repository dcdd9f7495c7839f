package quickjs

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/idlbind/bindgen/decl"
	"github.com/broady/idlbind/bindgen/naming"
	"github.com/broady/idlbind/bindgen/typeinfo"
)

var idlPrimitives = map[decl.ArgumentKind]string{
	decl.ArgInt32:             "IDLInt32",
	decl.ArgInt64:             "IDLInt64",
	decl.ArgDouble:            "IDLDouble",
	decl.ArgBoolean:           "IDLBoolean",
	decl.ArgString:            "IDLDOMString",
	decl.ArgLegacyString:      "IDLLegacyDOMString",
	decl.ArgFunction:          "IDLCallback",
	decl.ArgObject:            "IDLObject",
	decl.ArgPromise:           "IDLPromise",
	decl.ArgAny:               "IDLAny",
	decl.ArgNull:              "IDLAny",
	decl.ArgUndefined:         "IDLAny",
	decl.ArgArrayProtoMethods: "IDLAny",
	decl.ArgVoid:              "IDLAny",
}

// converter returns the IDL converter spelling for t: "IDLDOMString",
// "IDLNullable<Node>", "IDLSequence<IDLDouble>".
func (g *Generator) converter(t decl.Type) (string, error) {
	var out string
	switch trimmed := typeinfo.TrimNull(t).(type) {
	case *decl.Primitive:
		s, ok := idlPrimitives[trimmed.Tag]
		if !ok {
			return "", errors.Newf("no converter for %s", t)
		}
		out = s
	case *decl.Reference:
		c, err := g.res.Lookup(trimmed)
		if err != nil {
			return "", err
		}
		out = c.Name
	case *decl.Union:
		out = naming.UnionClassName(trimmed)
	case *decl.Array:
		elem, err := g.converter(trimmed.Element)
		if err != nil {
			return "", err
		}
		out = "IDLSequence<" + elem + ">"
	default:
		return "", errors.Newf("no converter for %s", t)
	}
	if typeinfo.IsNullable(t) {
		out = "IDLNullable<" + out + ">"
	}
	return out, nil
}

// optionalConverter wraps the converter of an optional argument.
func (g *Generator) optionalConverter(t decl.Type) (string, error) {
	c, err := g.converter(t)
	if err != nil {
		return "", err
	}
	return "IDLOptional<" + c + ">", nil
}

// needsArgumentsValue reports whether a converter spelling names a node-like
// type converted with argument-position diagnostics.
func needsArgumentsValue(conv string) bool {
	return strings.Contains(conv, "Element") ||
		strings.Contains(conv, "Node") ||
		conv == "EventTarget" ||
		strings.Contains(conv, "DOMMatrix")
}

// nativeType returns the NativeValueConverter type for values passed to and
// from native-implemented members.
func nativeType(t decl.Type) (string, error) {
	if typeinfo.IsPointerType(t) {
		name, err := typeinfo.PointerName(t)
		if err != nil {
			return "", err
		}
		return "NativeTypePointer<" + name + ">", nil
	}
	switch {
	case typeinfo.IsTag(t, decl.ArgInt32), typeinfo.IsTag(t, decl.ArgInt64):
		return "NativeTypeInt64", nil
	case typeinfo.IsTag(t, decl.ArgDouble):
		return "NativeTypeDouble", nil
	case typeinfo.IsTag(t, decl.ArgBoolean):
		return "NativeTypeBool", nil
	case typeinfo.IsString(t):
		return "NativeTypeString", nil
	case typeinfo.IsTag(t, decl.ArgAny):
		return "NativeTypeAny", nil
	}
	return "", errors.Newf("type %s cannot cross a native binding call", t)
}

// nativeNeedsContext reports whether the native converter takes the
// JSContext as its first argument.
func nativeNeedsContext(t decl.Type) bool {
	return typeinfo.IsString(t) || typeinfo.IsTag(t, decl.ArgAny)
}

// returnInit declares the return_value slot for a function returning t.
func (g *Generator) returnInit(t decl.Type) (string, error) {
	if typeinfo.IsVoid(t) {
		return "", nil
	}
	switch {
	case typeinfo.IsUnionType(t):
		return "std::shared_ptr<" + naming.UnionClassName(typeinfo.TrimNull(t).(*decl.Union)) + "> return_value = nullptr;", nil
	case typeinfo.IsTag(t, decl.ArgPromise):
		return "ScriptPromise return_value;", nil
	case typeinfo.IsPointerType(t) && !g.res.IsDictionary(t):
		c, err := g.res.Lookup(t)
		if err != nil {
			return "", err
		}
		return c.Name + "* return_value = nullptr;", nil
	}
	conv, err := g.converter(t)
	if err != nil {
		return "", err
	}
	return "typename Converter<" + conv + ">::ImplType return_value;", nil
}
