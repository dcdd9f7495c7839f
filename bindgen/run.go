// Package bindgen compiles IDL declaration files into native binding code.
//
// A run has two phases. Phase 1 parses and analyzes every input unit in
// parallel and merges the results into a decl.Session in input order, then
// freezes it. Phase 2 runs every enabled backend over every unit in
// parallel against the frozen session. Files are written only after both
// phases succeed, sorted by path.
package bindgen

import (
	"context"
	"os"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/broady/idlbind/bindgen/analyzer"
	"github.com/broady/idlbind/bindgen/backend"
	"github.com/broady/idlbind/bindgen/decl"
	"github.com/broady/idlbind/bindgen/pluginapi"
	"github.com/broady/idlbind/bindgen/quickjs"
	"github.com/broady/idlbind/bindgen/render"
	"github.com/broady/idlbind/bindgen/rustffi"
	"github.com/broady/idlbind/bindgen/sink"
	"github.com/broady/idlbind/internal/discover"
	"github.com/broady/idlbind/internal/logging"
)

// Unit is one IDL source text.
type Unit struct {
	// Path names the unit; its basename without ".d.ts" is the unit
	// identifier.
	Path   string
	Source string
}

// Result is the outcome of a successful run.
type Result struct {
	// Session is the frozen declaration model.
	Session *decl.Session

	// Units are the analyzed units in input order.
	Units []*decl.Blob

	// Files maps a backend name to its artifacts, sorted by path.
	Files map[string][]backend.Artifact
}

// File returns the content of the artifact at path from backend, or "".
func (r *Result) File(backendName, path string) string {
	for _, a := range r.Files[backendName] {
		if a.Path == path {
			return string(a.Content)
		}
	}
	return ""
}

// Paths returns the sorted artifact paths of backend.
func (r *Result) Paths(backendName string) []string {
	var out []string
	for _, a := range r.Files[backendName] {
		out = append(out, a.Path)
	}
	return out
}

// Write hands every artifact to the sink chosen for its backend.
func (r *Result) Write(ctx context.Context, sinkFor func(backendName string) sink.OutputSink) error {
	for _, name := range Backends {
		files, ok := r.Files[name]
		if !ok {
			continue
		}
		out := sinkFor(name)
		for _, a := range files {
			if err := out.WriteFile(ctx, a.Path, a.Content); err != nil {
				return errors.Wrapf(err, "%s: writing %s", name, a.Path)
			}
		}
	}
	return nil
}

// ReadUnits discovers and reads the units named by inputs.
func ReadUnits(inputs []string) ([]Unit, error) {
	found, err := discover.Find(inputs...)
	if err != nil {
		return nil, err
	}
	units := make([]Unit, len(found))
	for i, f := range found {
		src, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", f.Path)
		}
		units[i] = Unit{Path: f.Path, Source: string(src)}
	}
	return units, nil
}

// Run reads cfg.Inputs, generates every enabled backend and writes the
// files below each backend's directory.
func Run(ctx context.Context, cfg *Config, log *zap.Logger) (*Result, error) {
	cfg = applyConfigDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	units, err := ReadUnits(cfg.Inputs)
	if err != nil {
		return nil, err
	}
	res, err := Build(ctx, cfg, units, log)
	if err != nil {
		return nil, err
	}
	err = res.Write(ctx, func(name string) sink.OutputSink {
		return sink.NewFilesystemSink(cfg.Dir(name))
	})
	if err != nil {
		return nil, err
	}
	logging.Nop(log).Info("generated bindings",
		zap.Int("units", len(res.Units)),
		zap.Strings("backends", cfg.Backends))
	return res, nil
}

// Build runs both phases over units without writing anything. cfg.Inputs
// and cfg.OutDir are not consulted.
func Build(ctx context.Context, cfg *Config, units []Unit, log *zap.Logger) (*Result, error) {
	cfg = applyConfigDefaults(cfg)
	log = logging.Nop(log)
	for _, name := range cfg.Backends {
		if !slices.Contains(Backends, name) {
			return nil, errors.Newf("unknown backend %q (expected one of %s)", name, strings.Join(Backends, ", "))
		}
	}

	sess, blobs, err := Analyze(ctx, units, cfg.Prefix, cfg.Parallelism)
	if err != nil {
		return nil, err
	}
	log.Debug("analysis complete",
		zap.Int("units", len(blobs)),
		zap.Int("classes", len(sess.Classes())),
		zap.Int("unions", len(sess.Unions())))

	files, err := Generate(ctx, sess, blobs, cfg)
	if err != nil {
		return nil, err
	}
	for _, name := range cfg.Backends {
		log.Debug("backend complete", zap.String("backend", name), zap.Int("files", len(files[name])))
	}
	return &Result{Session: sess, Units: blobs, Files: files}, nil
}

// Analyze is phase 1: it analyzes units concurrently, merges the results
// in input order and returns the frozen session.
func Analyze(ctx context.Context, units []Unit, prefix string, parallelism int) (*decl.Session, []*decl.Blob, error) {
	blobs := make([]*decl.Blob, len(units))
	owner := make(map[string]string, len(units))
	for i, u := range units {
		name := discover.Name(u.Path)
		if prev, ok := owner[name]; ok {
			return nil, nil, errors.Newf("unit %q is declared by both %s and %s", name, prev, u.Path)
		}
		owner[name] = u.Path
		blobs[i] = decl.NewBlob(u.Path, name, prefix, u.Source)
	}

	results := make([]*analyzer.Result, len(blobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallelism, 1))
	for i, blob := range blobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := analyzer.AnalyzeSource(blob)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sess := decl.NewSession()
	for _, res := range results {
		if err := res.Merge(sess); err != nil {
			return nil, nil, err
		}
	}
	sess.Freeze()
	return sess, blobs, nil
}

// Generators returns the enabled backends reading sess.
func Generators(sess *decl.Session, cfg *Config) []backend.Generator {
	r := cfg.Renderer
	if r == nil {
		r = render.Default()
	}
	opts := backend.Options{Is32Bit: cfg.Is32Bit, SkipMembers: cfg.SkipMembers}

	var gens []backend.Generator
	for _, name := range Backends {
		if !cfg.Enabled(name) {
			continue
		}
		switch name {
		case quickjs.Name:
			gens = append(gens, quickjs.New(sess, r, opts))
		case pluginapi.Name:
			gens = append(gens, pluginapi.New(sess, r, opts))
		case rustffi.Name:
			gens = append(gens, rustffi.New(sess, r, opts))
		}
	}
	return gens
}

// Generate is phase 2: every enabled backend renders every unit and its
// shared artifacts concurrently. The frozen session is read-only here.
func Generate(ctx context.Context, sess *decl.Session, blobs []*decl.Blob, cfg *Config) (map[string][]backend.Artifact, error) {
	if !sess.Frozen() {
		return nil, errors.New("generation requires a frozen session")
	}
	gens := Generators(sess, cfg)

	// One slot per unit plus one for shared artifacts.
	slots := make([][][]backend.Artifact, len(gens))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Parallelism, 1))
	for gi, gen := range gens {
		slots[gi] = make([][]backend.Artifact, len(blobs)+1)
		for bi, blob := range blobs {
			g.Go(func() error {
				out, err := gen.Generate(gctx, blob)
				if err != nil {
					return err
				}
				slots[gi][bi] = out.Artifacts()
				return nil
			})
		}
		g.Go(func() error {
			shared, err := gen.GenerateShared(gctx)
			if err != nil {
				return errors.Wrapf(err, "%s: shared files", gen.Name())
			}
			slots[gi][len(blobs)] = shared
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := make(map[string][]backend.Artifact, len(gens))
	for gi, gen := range gens {
		var all []backend.Artifact
		for _, s := range slots[gi] {
			all = append(all, s...)
		}
		slices.SortFunc(all, func(a, b backend.Artifact) int {
			return strings.Compare(a.Path, b.Path)
		})
		for i := 1; i < len(all); i++ {
			if all[i].Path == all[i-1].Path {
				return nil, errors.Newf("%s: two units generate %s", gen.Name(), all[i].Path)
			}
		}
		files[gen.Name()] = all
	}
	return files, nil
}
