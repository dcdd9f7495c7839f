package bindgen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/broady/idlbind/bindgen/analyzer"
	"github.com/broady/idlbind/bindgen/backend"
	"github.com/broady/idlbind/bindgen/decl"
)

// loadArchive returns the .d.ts units of a testdata archive, in archive
// order, and its want file.
func loadArchive(t *testing.T, name string) ([]Unit, string) {
	t.Helper()
	ar, err := txtar.ParseFile(filepath.Join("testdata", name))
	require.NoError(t, err)

	var units []Unit
	var want string
	for _, f := range ar.Files {
		switch {
		case strings.HasSuffix(f.Name, ".d.ts"):
			units = append(units, Unit{Path: f.Name, Source: string(f.Data)})
		case f.Name == "want":
			want = string(f.Data)
		}
	}
	return units, want
}

func TestArchives(t *testing.T) {
	archives, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, archives)

	for _, path := range archives {
		name := filepath.Base(path)
		t.Run(strings.TrimSuffix(name, ".txtar"), func(t *testing.T) {
			units, want := loadArchive(t, name)
			res, err := Build(context.Background(), &Config{}, units, nil)
			require.NoError(t, err)

			for _, line := range strings.Split(strings.TrimSpace(want), "\n") {
				absent := strings.HasPrefix(line, "!")
				backendName, file, ok := strings.Cut(strings.TrimPrefix(line, "!"), " ")
				require.True(t, ok, "bad want line %q", line)
				if absent {
					assert.NotContains(t, res.Paths(backendName), file)
				} else {
					assert.Contains(t, res.Paths(backendName), file)
				}
			}
		})
	}
}

func TestDeterministic(t *testing.T) {
	units, _ := loadArchive(t, "hierarchy.txtar")
	units2, _ := loadArchive(t, "unions.txtar")
	units = append(units, units2...)

	serial, err := Build(context.Background(), &Config{Parallelism: 1}, units, nil)
	require.NoError(t, err)
	for range 5 {
		parallel, err := Build(context.Background(), &Config{Parallelism: 8}, units, nil)
		require.NoError(t, err)
		require.Equal(t, len(serial.Files), len(parallel.Files))
		for name, files := range serial.Files {
			other := parallel.Files[name]
			require.Len(t, other, len(files), name)
			for i := range files {
				assert.Equal(t, files[i].Path, other[i].Path)
				assert.True(t, bytes.Equal(files[i].Content, other[i].Content), "%s %s differs", name, files[i].Path)
			}
		}
	}
}

func TestArtifactsAreSorted(t *testing.T) {
	units, _ := loadArchive(t, "hierarchy.txtar")
	res, err := Build(context.Background(), &Config{}, units, nil)
	require.NoError(t, err)
	for _, name := range Backends {
		paths := res.Paths(name)
		assert.IsIncreasing(t, paths, name)
	}
}

func TestMixinUnitIsNotABindingFile(t *testing.T) {
	units, _ := loadArchive(t, "hierarchy.txtar")
	res, err := Build(context.Background(), &Config{Backends: []string{"quickjs"}}, units, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"base", "derived"}, res.Session.Defined().Files)
	props := res.File("quickjs", "qjs_defined_properties.h")
	assert.Contains(t, props, "V(derived)")
	assert.NotContains(t, props, "V(some_mixin)")
}

func TestUnionsAreShared(t *testing.T) {
	units, _ := loadArchive(t, "unions.txtar")
	res, err := Build(context.Background(), &Config{Backends: []string{"quickjs"}}, units, nil)
	require.NoError(t, err)

	var unions []string
	for _, p := range res.Paths("quickjs") {
		if strings.HasPrefix(p, "qjs_union_") {
			unions = append(unions, p)
		}
	}
	assert.Equal(t, []string{"qjs_union_string_double.cc", "qjs_union_string_double.h"}, unions)
	assert.Len(t, res.Session.Unions(), 1)
	assert.Contains(t, res.File("quickjs", "qjs_union_string_double.h"), "class QJSUnionStringDouble")
}

func TestAnalysisErrorStopsRun(t *testing.T) {
	_, err := Build(context.Background(), &Config{}, []Unit{
		{Path: "good.d.ts", Source: "interface Good { new(): void; }"},
		{Path: "bad.d.ts", Source: "interface Bad { name: string; }"},
	}, nil)
	require.Error(t, err)

	var aerr *analyzer.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "bad.d.ts", aerr.Pos.File)
}

func TestDuplicateUnits(t *testing.T) {
	_, err := Build(context.Background(), &Config{}, []Unit{
		{Path: "a/node.d.ts", Source: "interface A { new(): void; }"},
		{Path: "b/node.d.ts", Source: "interface B { new(): void; }"},
	}, nil)
	assert.ErrorContains(t, err, `unit "node" is declared by both a/node.d.ts and b/node.d.ts`)
}

func TestUnknownBackend(t *testing.T) {
	_, err := Build(context.Background(), &Config{Backends: []string{"wasm"}}, nil, nil)
	assert.ErrorContains(t, err, `unknown backend "wasm"`)
}

func TestGenerateRequiresFrozenSession(t *testing.T) {
	cfg := applyConfigDefaults(&Config{})
	_, err := Generate(context.Background(), decl.NewSession(), nil, cfg)
	assert.ErrorContains(t, err, "frozen session")

	sess, blobs, err := Analyze(context.Background(), []Unit{{Path: "a.d.ts", Source: "interface A { new(): void; }"}}, "", 1)
	require.NoError(t, err)
	assert.True(t, sess.Frozen())
	_, err = Generate(context.Background(), sess, blobs, cfg)
	require.NoError(t, err)
}

func TestCustomRenderer(t *testing.T) {
	var names []string
	r := backend.RendererFunc(func(name string, data any) (string, error) {
		names = append(names, name)
		return "// " + name + "\n", nil
	})
	res, err := Build(context.Background(), &Config{Backends: []string{"rust"}, Renderer: r, Parallelism: 1},
		[]Unit{{Path: "a.d.ts", Source: "interface A { new(): void; }"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"rustffi/source.rs"}, names)
	assert.Equal(t, "// rustffi/source.rs\n", res.File("rust", "a.rs"))
}

func TestRun(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	rust := filepath.Join(t.TempDir(), "rust")
	units, _ := loadArchive(t, "hierarchy.txtar")
	for _, u := range units {
		require.NoError(t, os.WriteFile(filepath.Join(in, u.Path), []byte(u.Source), 0644))
	}

	res, err := Run(context.Background(), &Config{
		Inputs:  []string{in},
		OutDir:  out,
		RustDir: rust,
	}, nil)
	require.NoError(t, err)
	assert.Len(t, res.Units, 3)

	for _, p := range []string{"qjs_base.h", "qjs_derived.cc", "plugin_api/derived.h"} {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(p)))
	}
	assert.FileExists(t, filepath.Join(rust, "derived.rs"))
	assert.NoFileExists(t, filepath.Join(out, "derived.rs"))
}

func TestRunWritesNothingOnError(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "good.d.ts"), []byte("interface Good { new(): void; }"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "bad.d.ts"), []byte("interface Bad extends MissingMixin { new(): void; }"), 0644))

	_, err := Run(context.Background(), &Config{Inputs: []string{in}, OutDir: out}, nil)
	require.Error(t, err)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFluentGenerator(t *testing.T) {
	res, err := FromSource("webf_node.d.ts", "interface Node { new(): void; remove(): void; }").
		Source("webf_element.d.ts", "interface Element extends Node { new(): void; }").
		Prefix("webf").
		WithBackends("plugin").
		SkipMember("Node", "remove").
		Generate()
	require.NoError(t, err)

	assert.Nil(t, res.Files["quickjs"])
	assert.Equal(t, []string{
		"plugin_api/webf_element.cc", "plugin_api/webf_element.h",
		"plugin_api/webf_node.cc", "plugin_api/webf_node.h",
	}, res.Paths("plugin"))
	assert.NotContains(t, res.File("plugin", "plugin_api/webf_node.h"), "remove")
}

func TestFluentToDir(t *testing.T) {
	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "foo.d.ts"), []byte("interface Foo { new(): void; bar(a: number, b?: string): void; }"), 0644))

	out := t.TempDir()
	_, err := FromInputs(in).Is32Bit().Parallelism(2).ToDir(out)
	require.NoError(t, err)

	src, err := os.ReadFile(filepath.Join(out, "foo.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "as i64")
	assert.FileExists(t, filepath.Join(out, "qjs_foo.cc"))
}
