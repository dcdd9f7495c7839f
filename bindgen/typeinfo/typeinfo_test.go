package typeinfo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/idlbind/bindgen/decl"
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	sess := decl.NewSession()
	require.NoError(t, sess.AddClass(&decl.ClassObject{Name: "Node", Kind: decl.ClassInterface}))
	require.NoError(t, sess.AddClass(&decl.ClassObject{Name: "EventInit", Kind: decl.ClassDictionary}))
	sess.Freeze()
	return NewResolver(sess)
}

var (
	str      = decl.Prim(decl.ArgString)
	num      = decl.Prim(decl.ArgDouble)
	null     = decl.Prim(decl.ArgNull)
	node     = decl.Ref("Node")
	nullable = decl.UnionOf(node, null)
)

func TestPredicates(t *testing.T) {
	tests := []struct {
		name        string
		typ         decl.Type
		wantNull    bool
		wantUnion   bool
		wantPointer bool
	}{
		{"primitive", num, false, false, false},
		{"reference", node, false, false, true},
		{"nullable reference", nullable, true, false, true},
		{"nullable number", decl.UnionOf(num, null), true, false, false},
		{"real union", decl.UnionOf(str, num), false, true, false},
		{"nullable union", decl.UnionOf(str, num, null), true, true, false},
		{"array of references", decl.ArrayOf(node), false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantNull, IsNullable(tt.typ), "IsNullable")
			assert.Equal(t, tt.wantUnion, IsUnionType(tt.typ), "IsUnionType")
			assert.Equal(t, tt.wantPointer, IsPointerType(tt.typ), "IsPointerType")
		})
	}
}

func TestTrimNull(t *testing.T) {
	assert.Equal(t, "Node", TrimNull(nullable).String())
	assert.Equal(t, "string | double", TrimNull(decl.UnionOf(str, null, num)).String())
	assert.Equal(t, "null", TrimNull(decl.UnionOf(null)).String())
	assert.Same(t, num, TrimNull(num))
}

func TestPointerName(t *testing.T) {
	name, err := PointerName(nullable)
	require.NoError(t, err)
	assert.Equal(t, "Node", name)

	_, err = PointerName(str)
	assert.Error(t, err)
}

func TestCore(t *testing.T) {
	r := newResolver(t)
	tests := []struct {
		typ  decl.Type
		want string
	}{
		{decl.Prim(decl.ArgInt32), "int32_t"},
		{decl.Prim(decl.ArgInt64), "int64_t"},
		{num, "double"},
		{decl.Prim(decl.ArgBoolean), "bool"},
		{str, "AtomicString"},
		{decl.Prim(decl.ArgAny), "ScriptValue"},
		{decl.Prim(decl.ArgVoid), "void"},
		{decl.Prim(decl.ArgFunction), "std::shared_ptr<QJSFunction>"},
		{decl.Prim(decl.ArgPromise), "ScriptPromise"},
		{node, "Node*"},
		{nullable, "Node*"},
		{decl.Ref("EventInit"), "std::shared_ptr<EventInit>"},
		{decl.ArrayOf(node), "std::vector<Node*>"},
		{decl.UnionOf(str, num, null), "std::shared_ptr<QJSUnionStringDouble>"},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			got, err := r.Core(tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRawAndPublic(t *testing.T) {
	r := newResolver(t)
	tests := []struct {
		typ        decl.Type
		wantRaw    string
		wantRaw32  string
		wantPublic string
		wantPub32  string
		wantReturn string
	}{
		{num, "double", "double", "double", "double", "double"},
		{decl.Prim(decl.ArgBoolean), "int64_t", "int64_t", "int32_t", "int32_t", "int32_t"},
		{decl.Prim(decl.ArgInt64), "int64_t", "int64_t", "int64_t", "int64_t", "int64_t"},
		{str, "SharedNativeString*", "int64_t", "const char*", "int64_t", "AtomicStringRef"},
		{node, "NativeBindingObject*", "int64_t", "WebFValue<Node, NodePublicMethods>", "WebFValue<Node, NodePublicMethods>", "WebFValue<Node, NodePublicMethods>"},
		{decl.Ref("EventInit"), "NativeBindingObject*", "int64_t", "WebFEventInit*", "int64_t", "WebFEventInit*"},
		{decl.Prim(decl.ArgFunction), "NativeValue", "NativeValue", "WebFNativeFunctionContext*", "int64_t", "NativeValue"},
		{decl.Prim(decl.ArgAny), "NativeValue", "NativeValue", "NativeValue", "NativeValue", "NativeValue"},
		{decl.UnionOf(str, num), "NativeValue", "NativeValue", "NativeValue", "NativeValue", "NativeValue"},
		{decl.ArrayOf(node), "NativeValue", "NativeValue", "NativeValue", "NativeValue", "VectorValueRef<NodePublicMethods>"},
		{decl.Prim(decl.ArgVoid), "void", "void", "void", "void", "void"},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			check := func(name, want string, got string, err error) {
				t.Helper()
				require.NoError(t, err, name)
				assert.Equal(t, want, got, name)
			}
			got, err := r.Raw(tt.typ, false)
			check("raw", tt.wantRaw, got, err)
			got, err = r.Raw(tt.typ, true)
			check("raw32", tt.wantRaw32, got, err)
			got, err = r.Public(tt.typ, false)
			check("public", tt.wantPublic, got, err)
			got, err = r.Public(tt.typ, true)
			check("public32", tt.wantPub32, got, err)
			got, err = r.PublicReturn(tt.typ, false)
			check("return", tt.wantReturn, got, err)
		})
	}
}

func TestMissingReference(t *testing.T) {
	r := newResolver(t)
	missing := decl.Ref("Ghost")

	for name, fn := range map[string]func() (string, error){
		"core":   func() (string, error) { return r.Core(missing) },
		"raw":    func() (string, error) { return r.Raw(missing, false) },
		"public": func() (string, error) { return r.Public(missing, false) },
		"array":  func() (string, error) { return r.Core(decl.ArrayOf(missing)) },
	} {
		t.Run(name, func(t *testing.T) {
			_, err := fn()
			require.Error(t, err)
			assert.Contains(t, err.Error(), `undeclared class "Ghost"`)
		})
	}
}

// The three presentations of a type must agree on its representation
// class, differing only in spelling.
func TestPresentationsShareClass(t *testing.T) {
	r := newResolver(t)
	types := []decl.Type{
		num, str, node, nullable, decl.Ref("EventInit"),
		decl.Prim(decl.ArgBoolean), decl.Prim(decl.ArgAny),
		decl.UnionOf(str, num), decl.ArrayOf(str),
	}
	classOf := func(spelling string) string {
		switch {
		case strings.Contains(spelling, "String") || strings.Contains(spelling, "char"):
			return "string"
		case strings.HasSuffix(spelling, "*") || strings.HasPrefix(spelling, "std::shared_ptr<") && !strings.Contains(spelling, "Union") || strings.HasPrefix(spelling, "WebFValue"):
			return "handle"
		case spelling == "int32_t" || spelling == "int64_t" || spelling == "double" || spelling == "bool":
			return "scalar"
		default:
			return "value"
		}
	}
	for _, typ := range types {
		t.Run(typ.String(), func(t *testing.T) {
			class, err := Classify(typ)
			require.NoError(t, err)

			core, err := r.Core(typ)
			require.NoError(t, err)
			raw, err := r.Raw(typ, false)
			require.NoError(t, err)
			public, err := r.Public(typ, false)
			require.NoError(t, err)

			switch class {
			case ClassScalar, ClassString, ClassHandle:
				assert.Equal(t, classOf(core), classOf(raw), "core %q vs raw %q", core, raw)
				assert.Equal(t, classOf(core), classOf(public), "core %q vs public %q", core, public)
			case ClassValue, ClassSequence:
				assert.Equal(t, "NativeValue", raw)
			}
		})
	}
}
