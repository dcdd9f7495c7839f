package rustffi

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/idlbind/bindgen/analyzer"
	"github.com/broady/idlbind/bindgen/backend"
	"github.com/broady/idlbind/bindgen/decl"
	"github.com/broady/idlbind/bindgen/pluginapi"
	"github.com/broady/idlbind/bindgen/render"
)

type unit struct {
	name string
	src  string
}

func session(t *testing.T, units ...unit) (*decl.Session, []*decl.Blob) {
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
	return sess, blobs
}

func generate(t *testing.T, opts backend.Options, units ...unit) []*backend.Output {
	t.Helper()
	sess, blobs := session(t, units...)
	g := New(sess, render.Default(), opts)
	var outs []*backend.Output
	for _, b := range blobs {
		out, err := g.Generate(context.Background(), b)
		require.NoError(t, err)
		outs = append(outs, out)
	}
	return outs
}

var hierarchy = []unit{
	{"event_target", "interface EventTarget { new(): void; dispatch(name: string): boolean; }"},
	{"node", "interface Node extends EventTarget { new(): void; readonly parentNode: Node | null; textContent: string; }"},
	{"element", "interface Element extends Node { new(): void; children(): Node[]; toggle(name: string, force?: boolean): boolean; }"},
}

func TestRootClass(t *testing.T) {
	out := generate(t, backend.Options{}, hierarchy...)[0]
	assert.Equal(t, "event_target.rs", out.SourcePath)
	assert.Empty(t, out.HeaderPath)

	src := out.Source
	for _, want := range []string{
		"#[repr(C)]\npub enum EventTargetType {\n  EventTarget = 0,\n  Node = 1,\n  Element = 2,\n}",
		"  pub version: c_double,\n  pub dispatch: extern \"C\" fn(*const OpaquePtr, *const c_char, *const OpaquePtr) -> i32,\n" +
			"  pub release: extern \"C\" fn(*const OpaquePtr) -> c_void,",
		"pub fn dispatch(&self, name: &str, exception_state: &ExceptionState) -> Result<bool, String> {",
		"((*self.method_pointer).dispatch)(self.ptr(), CString::new(name).unwrap().as_ptr(), exception_state.ptr)",
		"Ok(value != 0)",
		"pub fn as_element(&self) -> Result<Element, &str> {",
		"((*self.method_pointer).dynamic_to)(self.ptr, EventTargetType::Element)",
		"pub trait EventTargetMethods {",
		"impl Drop for EventTarget {",
	} {
		assert.Contains(t, src, want)
	}
}

func TestDerivedClassDelegatesToAncestors(t *testing.T) {
	out := generate(t, backend.Options{}, hierarchy...)[2]
	src := out.Source

	for _, want := range []string{
		"  pub version: c_double,\n  pub parent: NodeRustMethods,\n  pub children: extern \"C\" fn(*const OpaquePtr, *const OpaquePtr) -> VectorValueRef<NodeRustMethods>,",
		"parent: Node::initialize(ptr, context, &(method_pointer).as_ref().unwrap().parent, status),",
		"pub fn children(&self, exception_state: &ExceptionState) -> Result<Vec<Node>, String> {",
		"Ok(value.to_vec().into_iter().map(|item| Node::initialize(item.value, self.context, item.method_pointer, item.status)).collect())",
		"((*self.method_pointer).toggle)(self.ptr(), CString::new(name).unwrap().as_ptr(), i32::from(force), exception_state.ptr)",
		"pub trait ElementMethods: NodeMethods {",
		"impl NodeMethods for Element {",
		"    self.parent.text_content()",
		"  fn set_text_content(&self, value: &str, exception_state: &ExceptionState) -> Result<(), String> {\n    self.parent.set_text_content(value, exception_state)\n  }",
		"  fn parent_node(&self) -> Node {",
		"impl EventTargetMethods for Element {",
		"  fn as_event_target(&self) -> &EventTarget {\n    self.parent.as_event_target()\n  }",
	} {
		assert.Contains(t, src, want)
	}
	assert.NotContains(t, src, "impl Drop for Element")
	assert.NotContains(t, src, "pub fn as_")
}

func TestHandleReturnsAreWrapped(t *testing.T) {
	src := generate(t, backend.Options{}, hierarchy...)[1].Source
	assert.Contains(t, src, "pub parent_node: extern \"C\" fn(*const OpaquePtr) -> RustValue<NodeRustMethods>,")
	assert.Contains(t, src, "Node::initialize(value.value, self.context, value.method_pointer, value.status)")
	assert.Contains(t, src, "pub fn text_content(&self) -> String {")
	assert.Contains(t, src, "value.to_string()")
}

func TestOverloadsAreRenamed(t *testing.T) {
	src := generate(t, backend.Options{}, unit{"list", `
interface List {
  new(): void;
  item(): string;
  item(index: number, fallback: string): string;
}
`})[0].Source
	assert.Contains(t, src, "pub item: extern")
	assert.Contains(t, src, "pub item_with_index_and_fallback: extern")
	assert.Contains(t, src, "pub fn item_with_index_and_fallback(&self, index: f64, fallback: &str, exception_state: &ExceptionState) -> Result<String, String> {")
}

func TestDictionaryIncludesInheritedFields(t *testing.T) {
	outs := generate(t, backend.Options{},
		unit{"event_init", "@Dictionary()\ninterface EventInit { bubbles?: boolean; }"},
		unit{"mouse_event_init", "@Dictionary()\ninterface MouseEventInit extends EventInit { clientX: number; label: string; }"},
	)
	assert.Contains(t, outs[1].Source,
		"#[repr(C)]\npub struct MouseEventInit {\n  pub bubbles: i32,\n  pub client_x: c_double,\n  pub label: AtomicStringRef,\n}")
}

func TestMixinsAndGlobalsEmitNothing(t *testing.T) {
	outs := generate(t, backend.Options{},
		unit{"some_mixin", "@Mixin()\ninterface SomeMixin { remove(): void; }"},
		unit{"window", "declare const alert: (message: string) => void;"},
	)
	for _, out := range outs {
		assert.Empty(t, out.Artifacts())
	}
}

func TestNullableHandleArguments(t *testing.T) {
	src := generate(t, backend.Options{},
		unit{"scroll_options", "@Dictionary()\ninterface ScrollOptions { top: number; }"},
		unit{"node", `
interface Node {
  new(): void;
  insertBefore(new_node: Node, ref_node: Node | null): Node;
  scroll(options: ScrollOptions | null): void;
}
`})[1].Source

	assert.Contains(t, src, "pub fn insert_before(&self, new_node: &Node, ref_node: Option<&Node>, exception_state: &ExceptionState) -> Result<Node, String> {")
	assert.Contains(t, src, "new_node.raw(), ref_node.map_or(RustValue { value: std::ptr::null(), method_pointer: std::ptr::null(), status: std::ptr::null() }, |v| v.raw())")
	assert.Contains(t, src, "pub insert_before: extern \"C\" fn(*const OpaquePtr, RustValue<NodeRustMethods>, RustValue<NodeRustMethods>, *const OpaquePtr) -> RustValue<NodeRustMethods>,")
	assert.Contains(t, src, "options: Option<&ScrollOptions>")
	assert.Contains(t, src, "options.map_or(std::ptr::null(), |v| v as *const ScrollOptions)")
}

func TestKeywordsAreEscaped(t *testing.T) {
	src := generate(t, backend.Options{}, unit{"widget", "interface Widget { new(): void; move(type: string): void; }"})[0].Source
	assert.Contains(t, src, "pub fn move_(&self, type_: &str, exception_state: &ExceptionState) -> Result<(), String> {")
}

func TestPointerWidthOn32Bit(t *testing.T) {
	src := generate(t, backend.Options{Is32Bit: true},
		unit{"foo", "interface Foo { new(): void; say(text: string): void; }"})[0].Source
	assert.Contains(t, src, "pub say: extern \"C\" fn(*const OpaquePtr, i64, *const OpaquePtr) -> c_void,")
	assert.Contains(t, src, "CString::new(text).unwrap().as_ptr() as i64")
}

// The Rust method struct must list its slots in the same order as the
// plugin API's C struct.
func TestSlotsMatchPluginAPI(t *testing.T) {
	sess, blobs := session(t, hierarchy...)
	rs, err := New(sess, render.Default(), backend.Options{}).Generate(context.Background(), blobs[1])
	require.NoError(t, err)
	c, err := pluginapi.New(sess, render.Default(), backend.Options{}).Generate(context.Background(), blobs[1])
	require.NoError(t, err)

	assert.Equal(t, []string{"version", "parent", "parent_node", "text_content", "set_text_content", "release", "dynamic_to"},
		fields(rs.Source, "pub struct NodeRustMethods {", "  pub ", ":"))
	assert.Equal(t, []string{"version", "parent", "parent_node", "text_content", "set_text_content", "release", "dynamic_to"},
		fields(c.Header, "struct NodePublicMethods : public WebFPublicMethods {", "  ", "{"))
}

// fields returns the field names of the struct opened by start, taking
// the last word before sep on each member line.
func fields(src, start, prefix, sep string) []string {
	body := src[strings.Index(src, start)+len(start):]
	body = body[:strings.Index(body, "\n}")]
	var out []string
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, prefix) || strings.Contains(line, "static ") {
			continue
		}
		decl, _, ok := strings.Cut(strings.TrimPrefix(line, prefix), sep)
		if !ok {
			if strings.HasSuffix(line, ";") {
				decl = strings.TrimSuffix(strings.TrimPrefix(line, prefix), ";")
			} else {
				continue
			}
		}
		words := strings.Fields(decl)
		if len(words) > 0 {
			out = append(out, words[len(words)-1])
		}
	}
	return out
}
