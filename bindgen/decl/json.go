package decl

import "github.com/goccy/go-json"

// JSON and YAML serialization for the declaration model.
// Types and objects carry a "kind" field for discrimination.

type primitiveView struct {
	Kind string `json:"kind" yaml:"kind"`
	Tag  string `json:"tag" yaml:"tag"`
}

type referenceView struct {
	Kind string `json:"kind" yaml:"kind"`
	Name string `json:"name" yaml:"name"`
}

type arrayView struct {
	Kind    string `json:"kind" yaml:"kind"`
	Element Type   `json:"element" yaml:"element"`
}

type unionView struct {
	Kind    string `json:"kind" yaml:"kind"`
	Members []Type `json:"members" yaml:"members"`
}

func (t *Primitive) view() primitiveView { return primitiveView{Kind: "primitive", Tag: t.Tag.String()} }
func (t *Reference) view() referenceView { return referenceView{Kind: "reference", Name: t.Name} }
func (t *Array) view() arrayView         { return arrayView{Kind: "array", Element: t.Element} }
func (t *Union) view() unionView         { return unionView{Kind: "union", Members: t.Members} }

// MarshalJSON implements json.Marshaler for Primitive.
func (t *Primitive) MarshalJSON() ([]byte, error) { return json.Marshal(t.view()) }

// MarshalJSON implements json.Marshaler for Reference.
func (t *Reference) MarshalJSON() ([]byte, error) { return json.Marshal(t.view()) }

// MarshalJSON implements json.Marshaler for Array.
func (t *Array) MarshalJSON() ([]byte, error) { return json.Marshal(t.view()) }

// MarshalJSON implements json.Marshaler for Union.
func (t *Union) MarshalJSON() ([]byte, error) { return json.Marshal(t.view()) }

// MarshalYAML implements yaml.Marshaler for Primitive.
func (t *Primitive) MarshalYAML() (any, error) { return t.view(), nil }

// MarshalYAML implements yaml.Marshaler for Reference.
func (t *Reference) MarshalYAML() (any, error) { return t.view(), nil }

// MarshalYAML implements yaml.Marshaler for Array.
func (t *Array) MarshalYAML() (any, error) { return t.view(), nil }

// MarshalYAML implements yaml.Marshaler for Union.
func (t *Union) MarshalYAML() (any, error) { return t.view(), nil }

// MarshalJSON implements json.Marshaler for FunctionObject.
func (f *FunctionObject) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind    string               `json:"kind"`
		Declare *FunctionDeclaration `json:"declare"`
	}{
		Kind:    "function",
		Declare: f.Declare,
	})
}

// MarshalYAML implements yaml.Marshaler for FunctionObject.
func (f *FunctionObject) MarshalYAML() (any, error) {
	return &struct {
		Kind    string               `yaml:"kind"`
		Declare *FunctionDeclaration `yaml:"declare"`
	}{
		Kind:    "function",
		Declare: f.Declare,
	}, nil
}
