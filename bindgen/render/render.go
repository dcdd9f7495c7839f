// Package render provides the default backend.Renderer: text/template files
// embedded in the binary, addressed by their path under templates/ without
// the .tmpl suffix ("quickjs/interface.cc").
package render

import (
	"bytes"
	"embed"
	"io/fs"
	"slices"
	"strings"
	"sync"
	"text/template"

	"github.com/cockroachdb/errors"
)

//go:embed templates
var templateFS embed.FS

const suffix = ".tmpl"

// Renderer executes named templates. Whitespace-only lines are dropped from
// the output and the result always ends in a newline.
type Renderer struct {
	tmpl *template.Template
}

// New parses every template under fsys. A nil fsys selects the embedded
// templates.
func New(fsys fs.FS) (*Renderer, error) {
	if fsys == nil {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}

	root := template.New("").Funcs(funcs)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, suffix) {
			return nil
		}
		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		if _, err := root.New(strings.TrimSuffix(p, suffix)).Parse(string(src)); err != nil {
			return errors.Wrapf(err, "parsing template %s", p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: root}, nil
}

var (
	defaultOnce     sync.Once
	defaultRenderer *Renderer
)

// Default returns the renderer over the embedded templates. It panics if
// they fail to parse, which only a broken build can cause.
func Default() *Renderer {
	defaultOnce.Do(func() {
		r, err := New(nil)
		if err != nil {
			panic(err)
		}
		defaultRenderer = r
	})
	return defaultRenderer
}

// Render executes the template called name with data.
func (r *Renderer) Render(name string, data any) (string, error) {
	t := r.tmpl.Lookup(name)
	if t == nil {
		return "", errors.Newf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "rendering %s", name)
	}
	return Compact(buf.String()), nil
}

// Templates returns the names of all parsed templates, sorted.
func (r *Renderer) Templates() []string {
	var names []string
	for _, t := range r.tmpl.Templates() {
		if t.Name() != "" {
			names = append(names, t.Name())
		}
	}
	slices.Sort(names)
	return names
}

// Compact removes whitespace-only lines and terminates the text with a
// single newline. Empty input stays empty.
func Compact(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString(strings.TrimRight(line, " \t"))
		b.WriteByte('\n')
	}
	return b.String()
}
