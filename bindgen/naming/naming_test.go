package naming

import (
	"reflect"
	"testing"

	"github.com/broady/idlbind/bindgen/decl"
)

func TestWords(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"html_iframe_element", []string{"html", "iframe", "element"}},
		{"HTMLElement", []string{"HTML", "Element"}},
		{"eventTarget", []string{"event", "Target"}},
		{"h1Title", []string{"h", "1", "Title"}},
		{"--leading--", []string{"leading"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Words(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Words(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCaseConversions(t *testing.T) {
	tests := []struct {
		input     string
		wantCamel string
		wantSnake string
		wantUpper string
	}{
		{"event_target", "eventTarget", "event_target", "EVENT_TARGET"},
		{"HTMLElement", "htmlElement", "html_element", "HTML_ELEMENT"},
		{"DOMMatrix", "domMatrix", "dom_matrix", "DOM_MATRIX"},
		{"addEventListener", "addEventListener", "add_event_listener", "ADD_EVENT_LISTENER"},
		{"int64", "int64", "int_64", "INT_64"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CamelCase(tt.input); got != tt.wantCamel {
				t.Errorf("CamelCase(%q) = %q, want %q", tt.input, got, tt.wantCamel)
			}
			if got := SnakeCase(tt.input); got != tt.wantSnake {
				t.Errorf("SnakeCase(%q) = %q, want %q", tt.input, got, tt.wantSnake)
			}
			if got := UpperSnakeCase(tt.input); got != tt.wantUpper {
				t.Errorf("UpperSnakeCase(%q) = %q, want %q", tt.input, got, tt.wantUpper)
			}
		})
	}
}

func TestClassName(t *testing.T) {
	tests := []struct {
		filename string
		prefix   string
		want     string
	}{
		{"html_iframe_element", "", "HTMLIFrameElement"},
		{"html_div_element", "", "HTMLDivElement"},
		{"svg_svg_element", "", "SVGSVGElement"},
		{"svg_rect_element", "", "SVGRectElement"},
		{"dom_matrix", "", "DOMMatrix"},
		{"css_style_declaration", "", "CSSStyleDeclaration"},
		{"ui_event", "", "UIEvent"},
		{"event_target", "", "EventTarget"},
		{"document", "", "Document"},
		{"uint8_list", "", "UInt8List"},
		{"ui", "", "UI"},
		{"cssom_view", "", "CSSomView"},
		{"domain_event", "", "DOMainEvent"},
		{"webf_event_target", "webf", "EventTarget"},
		{"webf_event_target", "other", "WebfEventTarget"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := ClassName(tt.filename, tt.prefix); got != tt.want {
				t.Errorf("ClassName(%q, %q) = %q, want %q", tt.filename, tt.prefix, got, tt.want)
			}
		})
	}
}

func TestClassID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"EventTarget", "JS_CLASS_EVENT_TARGET"},
		{"HTMLIFrameElement", "JS_CLASS_HTML_IFRAME_ELEMENT"},
		{"SVGSVGElement", "JS_CLASS_SVG_SVG_ELEMENT"},
		{"DOMMatrix", "JS_CLASS_DOM_MATRIX"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ClassID(tt.input); got != tt.want {
				t.Errorf("ClassID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRustIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"type", "type_"},
		{"self", "self_"},
		{"async", "async_"},
		{"addEventListener", "add_event_listener"},
		{"innerHTML", "inner_html"},
		{"Symbol_iterator", "symbol_iterator"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := RustIdentifier(tt.input); got != tt.want {
				t.Errorf("RustIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCppIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"delete", "delete_"},
		{"new", "new_"},
		{"value", "value"},
		{"1st", "_1st"},
		{"data-id", "data_id"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CppIdentifier(tt.input); got != tt.want {
				t.Errorf("CppIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestUnionNames(t *testing.T) {
	u := decl.UnionOf(decl.Prim(decl.ArgString), decl.Prim(decl.ArgDouble), decl.Prim(decl.ArgNull))
	if got := UnionClassName(u); got != "QJSUnionStringDouble" {
		t.Errorf("UnionClassName = %q", got)
	}
	if got := UnionFileName(u); got != "qjs_union_string_double" {
		t.Errorf("UnionFileName = %q", got)
	}

	// Null never contributes to the name.
	same := decl.UnionOf(decl.Prim(decl.ArgString), decl.Prim(decl.ArgDouble))
	if UnionClassName(same) != UnionClassName(u) {
		t.Errorf("null-filtered unions should share a name")
	}

	seq := decl.UnionOf(decl.ArrayOf(decl.Ref("Node")), decl.Prim(decl.ArgLegacyString))
	if got := UnionClassName(seq); got != "QJSUnionNodeSequenceLegacyDomString" {
		t.Errorf("UnionClassName = %q", got)
	}
	if got := UnionFileName(seq); got != "qjs_union_node_sequence_legacy_dom_string" {
		t.Errorf("UnionFileName = %q", got)
	}
}
