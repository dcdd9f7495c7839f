package naming

import "strings"

// exceptional names that the prefix rules would get wrong.
var exceptionalClassNames = map[string]string{
	"htmlIframeElement": "HTMLIFrameElement",
	"svgSvgElement":     "SVGSVGElement",
}

// prefixRules re-capitalize standard API family prefixes, longest first.
// They apply to any name starting with the prefix: "uint8_list" becomes
// "UInt8List".
var prefixRules = []struct {
	prefix string
	upper  string
}{
	{"html", "HTML"},
	{"dom", "DOM"},
	{"svg", "SVG"},
	{"css", "CSS"},
	{"ui", "UI"},
}

// ClassName derives the exported class name from a unit identifier.
//
//	ClassName("html_iframe_element", "")  == "HTMLIFrameElement"
//	ClassName("webf_event_target", "webf") == "EventTarget"
func ClassName(filename, prefix string) string {
	name := filename
	if prefix != "" && strings.HasPrefix(name, prefix) {
		name = strings.TrimLeft(strings.TrimPrefix(name, prefix), "_-")
	}
	camel := CamelCase(name)
	if exact, ok := exceptionalClassNames[camel]; ok {
		return exact
	}
	for _, rule := range prefixRules {
		if rest, ok := strings.CutPrefix(camel, rule.prefix); ok {
			return rule.upper + rest
		}
	}
	return UpperFirst(camel)
}

var exceptionalClassIDs = map[string]string{
	"HTMLIFrameElement": "HTML_IFRAME_ELEMENT",
	"SVGSVGElement":     "SVG_SVG_ELEMENT",
}

// ClassID returns the engine class-id constant for a class,
// JS_CLASS_<UPPER_SNAKE_CLASS_NAME>.
func ClassID(className string) string {
	if exact, ok := exceptionalClassIDs[className]; ok {
		return "JS_CLASS_" + exact
	}
	return "JS_CLASS_" + UpperSnakeCase(className)
}

// QJSClassName returns the name of the engine binding class for className.
func QJSClassName(className string) string {
	return "QJS" + className
}
