// Package typeinfo answers questions about declaration types: nullability,
// pointer-ness, and how a type is spelled in each backend's
// representation.
//
// Every spelling goes through Classify first, so a type keeps the same
// representation class (scalar, string, handle, ...) across the core, raw
// and public presentations.
package typeinfo

import (
	"github.com/cockroachdb/errors"

	"github.com/broady/idlbind/bindgen/decl"
)

// Class is the representation class of a type.
type Class int

const (
	ClassScalar   Class = iota // Fixed-width number or boolean
	ClassString                // Text
	ClassHandle                // Object owned across the boundary
	ClassSequence              // Array of another type
	ClassValue                 // Dynamically typed value (any, object, union, callback)
	ClassVoid                  // No value
)

// String returns the string representation of the class.
func (c Class) String() string {
	switch c {
	case ClassScalar:
		return "scalar"
	case ClassString:
		return "string"
	case ClassHandle:
		return "handle"
	case ClassSequence:
		return "sequence"
	case ClassValue:
		return "value"
	case ClassVoid:
		return "void"
	default:
		return "unknown"
	}
}

// TrimNull removes the null tag from a union. A union that collapses to a
// single member is replaced by that member. Non-union types are returned
// unchanged.
func TrimNull(t decl.Type) decl.Type {
	u, ok := t.(*decl.Union)
	if !ok {
		return t
	}
	var members []decl.Type
	for _, m := range u.Members {
		if !decl.IsTag(m, decl.ArgNull) {
			members = append(members, m)
		}
	}
	switch len(members) {
	case 0:
		return decl.Prim(decl.ArgNull)
	case 1:
		return members[0]
	}
	if len(members) == len(u.Members) {
		return u
	}
	return decl.UnionOf(members...)
}

// IsNullable reports whether t is a union with a null member.
func IsNullable(t decl.Type) bool {
	u, ok := t.(*decl.Union)
	if !ok {
		return false
	}
	for _, m := range u.Members {
		if decl.IsTag(m, decl.ArgNull) {
			return true
		}
	}
	return false
}

// IsUnionType reports whether t is still a union after removing null.
func IsUnionType(t decl.Type) bool {
	_, ok := TrimNull(t).(*decl.Union)
	return ok
}

// IsPointerType reports whether t, ignoring null, names another class.
func IsPointerType(t decl.Type) bool {
	_, ok := TrimNull(t).(*decl.Reference)
	return ok
}

// PointerName returns the class name referenced by a pointer type.
func PointerName(t decl.Type) (string, error) {
	ref, ok := TrimNull(t).(*decl.Reference)
	if !ok {
		return "", errors.Newf("type %s is not a pointer type", t)
	}
	return ref.Name, nil
}

// IsTag reports whether t, ignoring null, is the primitive tag k.
func IsTag(t decl.Type, k decl.ArgumentKind) bool {
	return decl.IsTag(TrimNull(t), k)
}

// IsVoid reports whether t is void.
func IsVoid(t decl.Type) bool { return decl.IsTag(t, decl.ArgVoid) }

// IsString reports whether t, ignoring null, is a string tag.
func IsString(t decl.Type) bool {
	return IsTag(t, decl.ArgString) || IsTag(t, decl.ArgLegacyString)
}

// Classify returns the representation class of t.
func Classify(t decl.Type) (Class, error) {
	switch t := TrimNull(t).(type) {
	case *decl.Primitive:
		switch t.Tag {
		case decl.ArgInt32, decl.ArgInt64, decl.ArgDouble, decl.ArgBoolean:
			return ClassScalar, nil
		case decl.ArgString, decl.ArgLegacyString:
			return ClassString, nil
		case decl.ArgVoid:
			return ClassVoid, nil
		case decl.ArgAny, decl.ArgObject, decl.ArgPromise, decl.ArgFunction,
			decl.ArgNull, decl.ArgUndefined, decl.ArgArrayProtoMethods:
			return ClassValue, nil
		}
		return 0, errors.Newf("unknown argument tag %d", int(t.Tag))
	case *decl.Reference:
		return ClassHandle, nil
	case *decl.Array:
		return ClassSequence, nil
	case *decl.Union:
		return ClassValue, nil
	case nil:
		return 0, errors.New("missing type")
	}
	return 0, errors.Newf("unknown type %T", t)
}
