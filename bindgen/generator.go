package bindgen

import (
	"context"

	"go.uber.org/zap"

	"github.com/broady/idlbind/bindgen/backend"
	"github.com/broady/idlbind/bindgen/sink"
)

// Generator provides a fluent API for code generation.
// Create with FromInputs() or FromSource() and configure with method
// chaining.
//
// Example:
//
//	bindgen.FromInputs("./bridge/core").
//	    Prefix("webf").
//	    WithBackends("quickjs", "plugin").
//	    ToDir("./bridge/out")
type Generator struct {
	units []Unit
	cfg   Config
	log   *zap.Logger
}

// FromInputs creates a Generator reading .d.ts files and directories.
func FromInputs(inputs ...string) *Generator {
	return &Generator{cfg: Config{Inputs: inputs}}
}

// FromSource creates a Generator for one in-memory unit. Path names the
// unit, e.g. "dom/node.d.ts". Add more units with Source.
func FromSource(path, src string) *Generator {
	return (&Generator{}).Source(path, src)
}

// Source adds an in-memory unit.
func (g *Generator) Source(path, src string) *Generator {
	g.units = append(g.units, Unit{Path: path, Source: src})
	return g
}

// WithBackends restricts generation to the named backends.
// Valid values: "quickjs", "plugin", "rust".
func (g *Generator) WithBackends(names ...string) *Generator {
	g.cfg.Backends = append(g.cfg.Backends, names...)
	return g
}

// Prefix sets the platform prefix stripped from unit identifiers.
func (g *Generator) Prefix(p string) *Generator {
	g.cfg.Prefix = p
	return g
}

// Is32Bit selects 32-bit pointer-width spellings.
func (g *Generator) Is32Bit() *Generator {
	g.cfg.Is32Bit = true
	return g
}

// SkipMember leaves className.member out of the plugin API and Rust
// surfaces.
func (g *Generator) SkipMember(className, member string) *Generator {
	g.cfg.SkipMembers = append(g.cfg.SkipMembers, className+"."+member)
	return g
}

// Parallelism bounds the number of concurrent workers.
func (g *Generator) Parallelism(n int) *Generator {
	g.cfg.Parallelism = n
	return g
}

// Renderer replaces the embedded templates.
func (g *Generator) Renderer(r backend.Renderer) *Generator {
	g.cfg.Renderer = r
	return g
}

// Logger sets the logger. The default discards everything.
func (g *Generator) Logger(l *zap.Logger) *Generator {
	g.log = l
	return g
}

// ToDir generates files below dir, one subtree per backend as configured.
// This is a terminal operation that writes files to disk.
func (g *Generator) ToDir(dir string) (*Result, error) {
	g.cfg.OutDir = dir
	res, err := g.Generate()
	if err != nil {
		return nil, err
	}
	cfg := applyConfigDefaults(&g.cfg)
	err = res.Write(context.Background(), func(name string) sink.OutputSink {
		return sink.NewFilesystemSink(cfg.Dir(name))
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Generate returns generated files in memory without writing to disk.
// Use ToDir() to write files to disk instead.
func (g *Generator) Generate() (*Result, error) {
	units := g.units
	if len(g.cfg.Inputs) > 0 {
		read, err := ReadUnits(g.cfg.Inputs)
		if err != nil {
			return nil, err
		}
		units = append(read, units...)
	}
	return Build(context.Background(), &g.cfg, units, g.log)
}
