package pluginapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/idlbind/bindgen/analyzer"
	"github.com/broady/idlbind/bindgen/backend"
	"github.com/broady/idlbind/bindgen/decl"
	"github.com/broady/idlbind/bindgen/render"
)

type unit struct {
	name string
	src  string
}

func generate(t *testing.T, opts backend.Options, units ...unit) []*backend.Output {
	t.Helper()
	sess := decl.NewSession()
	var blobs []*decl.Blob
	for _, u := range units {
		blob := decl.NewBlob(u.name+".d.ts", u.name, "", u.src)
		res, err := analyzer.AnalyzeSource(blob)
		require.NoError(t, err)
		require.NoError(t, res.Merge(sess))
		blobs = append(blobs, blob)
	}
	sess.Freeze()

	g := New(sess, render.Default(), opts)
	var outs []*backend.Output
	for _, b := range blobs {
		out, err := g.Generate(context.Background(), b)
		require.NoError(t, err)
		outs = append(outs, out)
	}
	return outs
}

const (
	baseSource    = "interface Base { new(): void; width: number; readonly title: string; }"
	derivedSource = "interface Derived extends Base { new(): void; own(a: string, b?: boolean): Base | null; }"
)

func TestBaseListsDescendants(t *testing.T) {
	outs := generate(t, backend.Options{}, unit{"base", baseSource}, unit{"derived", derivedSource})
	base := outs[0]

	assert.Equal(t, "plugin_api/base.h", base.HeaderPath)
	assert.Equal(t, "plugin_api/base.cc", base.SourcePath)
	for _, want := range []string{
		"class Derived;\ntypedef struct DerivedPublicMethods DerivedPublicMethods;",
		"enum class BaseType {\n  kBase = 0,\n  kDerived = 1,\n};",
		"using PublicBaseWidth = double (*)(Base*);",
		"using PublicBaseSetWidth = void (*)(Base*, double, SharedExceptionState*);",
		"using PublicBaseTitle = AtomicStringRef (*)(Base*);",
		"  double version{1.0};\n  PublicBaseWidth width{Width};\n  PublicBaseSetWidth set_width{SetWidth};\n  PublicBaseTitle title{Title};\n" +
			"  PublicBaseRelease release{Release};\n  PublicBaseDynamicTo dynamic_to{DynamicTo};\n};",
	} {
		assert.Contains(t, base.Header, want)
	}
	assert.NotContains(t, base.Header, "PublicBaseSetTitle")

	for _, want := range []string{
		`#include "derived.h"`,
		"case BaseType::kDerived: {",
		"auto* derived = webf::DynamicTo<Derived>(base);",
		"return AtomicStringRef(base->title());",
		"base->setWidth(width, shared_exception_state->exception_state);",
	} {
		assert.Contains(t, base.Source, want)
	}
}

func TestDerivedEmbedsParentTable(t *testing.T) {
	outs := generate(t, backend.Options{}, unit{"base", baseSource}, unit{"derived", derivedSource})
	derived := outs[1]

	assert.Contains(t, derived.Header, `#include "plugin_api/base.h"`)
	assert.Contains(t, derived.Header, "  double version{1.0};\n  BasePublicMethods parent;\n  PublicDerivedOwn own{Own};")
	assert.Contains(t, derived.Header,
		"using PublicDerivedOwn = WebFValue<Base, BasePublicMethods> (*)(Derived*, const char*, int32_t, SharedExceptionState*);")
	assert.Contains(t, derived.Header, "enum class DerivedType {\n  kDerived = 0,\n};")

	for _, want := range []string{
		"webf::AtomicString a_atomic = webf::AtomicString(derived->ctx(), a);",
		"auto* result = derived->own(a_atomic, b != 0, shared_exception_state->exception_state);",
		"return WebFValue<Base, BasePublicMethods>::Null();",
		"return WebFValue<Base, BasePublicMethods>(result, static_cast<const BasePublicMethods*>(result->publicMethods()), status_block);",
	} {
		assert.Contains(t, derived.Source, want)
	}
}

func TestMixinsAndGlobalsEmitNothing(t *testing.T) {
	outs := generate(t, backend.Options{},
		unit{"some_mixin", "@Mixin()\ninterface SomeMixin { remove(): void; }"},
		unit{"window", "declare const alert: (message: string) => void;"},
		unit{"element", "interface Element extends SomeMixin { new(): void; }"},
	)
	assert.Empty(t, outs[0].Artifacts())
	assert.Empty(t, outs[1].Artifacts())

	element := outs[2]
	assert.Contains(t, element.Header, "PublicElementRemove remove{Remove};")
	assert.NotContains(t, element.Header, "SomeMixin")
}

func TestDictionaryStruct(t *testing.T) {
	outs := generate(t, backend.Options{},
		unit{"node", "interface Node { new(): void; }"},
		unit{"event_init", "@Dictionary()\ninterface EventInit { bubbles?: boolean; }"},
		unit{"mouse_event_init", "@Dictionary()\ninterface MouseEventInit extends EventInit { clientX: number; related: Node; }"},
	)
	dict := outs[2]
	require.Len(t, dict.Artifacts(), 1)
	assert.Contains(t, dict.Header,
		"struct WebFMouseEventInit {\n  int32_t bubbles;\n  double clientX;\n  WebFValue<Node, NodePublicMethods> related;\n};")
	assert.Contains(t, dict.Header, "class Node;\ntypedef struct NodePublicMethods NodePublicMethods;")
}

func TestOverloadsAreRenamed(t *testing.T) {
	out := generate(t, backend.Options{}, unit{"list", `
interface List {
  new(): void;
  item(): string;
  item(index: number): string;
}
`})[0]
	assert.Contains(t, out.Header, "PublicListItem item{Item};")
	assert.Contains(t, out.Header, "PublicListItemWithIndex item_with_index{ItemWithIndex};")
}

func TestSkipMembers(t *testing.T) {
	out := generate(t, backend.Options{SkipMembers: []string{"Base.width"}}, unit{"base", baseSource})[0]
	assert.NotContains(t, out.Header, "Width")
	assert.Contains(t, out.Header, "PublicBaseTitle title{Title};")
}

func TestPointerWidthOn32Bit(t *testing.T) {
	out := generate(t, backend.Options{Is32Bit: true},
		unit{"foo", "interface Foo { new(): void; say(text: string): void; }"})[0]
	assert.Contains(t, out.Header, "using PublicFooSay = void (*)(Foo*, int64_t, SharedExceptionState*);")
	assert.Contains(t, out.Source, "webf::AtomicString(foo->ctx(), reinterpret_cast<const char*>(text));")
}

func TestNativeImplMembers(t *testing.T) {
	out := generate(t, backend.Options{}, unit{"element", `
interface Element {
  new(): void;
  readonly offsetWidth: DartImpl<DependentsOnLayout<number>>;
  scrollTo(x: number, y?: number): DartImpl<void>;
}
`})[0]
	assert.Contains(t, out.Header, "using PublicElementOffsetWidth = NativeValue (*)(Element*);")
	assert.Contains(t, out.Header, "using PublicElementScrollTo = NativeValue (*)(Element*, NativeValue, NativeValue, SharedExceptionState*);")
	assert.Contains(t, out.Source, "NativeValue arguments[] = {x, y};")
	assert.Contains(t, out.Source,
		"return element->InvokeBindingMethod(binding_call_methods::kscrollTo, 2, arguments, FlushUICommandReason::kDependentsOnElement, shared_exception_state->exception_state);")
}

func TestGenerateSharedIsEmpty(t *testing.T) {
	sess := decl.NewSession()
	sess.Freeze()
	arts, err := New(sess, render.Default(), backend.Options{}).GenerateShared(context.Background())
	require.NoError(t, err)
	assert.Empty(t, arts)
}

func TestArgumentNamedAfterReceiver(t *testing.T) {
	out := generate(t, backend.Options{},
		unit{"node", "interface Node { new(): void; appendChild(node: Node): Node; shared_exception_state: number; }"},
	)[0]

	assert.Contains(t, out.Header, "AppendChild(Node* node, WebFValue<Node, NodePublicMethods> node_arg, SharedExceptionState* shared_exception_state);")
	assert.NotContains(t, out.Header, "NodePublicMethods> node,")
	assert.Contains(t, out.Source, "node->appendChild(node_arg.value, shared_exception_state->exception_state)")
	assert.Contains(t, out.Source, "node->setShared_exception_state(shared_exception_state_arg, shared_exception_state->exception_state);")
}
