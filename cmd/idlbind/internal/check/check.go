package check

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/broady/idlbind/bindgen"
	"github.com/broady/idlbind/bindgen/sink"
	"github.com/broady/idlbind/cmd/idlbind/internal/options"
)

type Cmd struct {
	options.Common `embed:""`
}

func (c *Cmd) Run(ctx context.Context, log *zap.Logger, stdout io.Writer) error {
	cfg, err := c.Load()
	if err != nil {
		return err
	}
	return Check(ctx, cfg, log, stdout)
}

// Check regenerates cfg in memory and fails when any file on disk differs.
func Check(ctx context.Context, cfg *bindgen.Config, log *zap.Logger, stdout io.Writer) error {
	units, err := bindgen.ReadUnits(cfg.Inputs)
	if err != nil {
		return err
	}
	res, err := bindgen.Build(ctx, cfg, units, log)
	if err != nil {
		return err
	}

	checks := make(map[string]*sink.CheckSink)
	err = res.Write(ctx, func(name string) sink.OutputSink {
		s := sink.NewCheckSink(cfg.Dir(name))
		checks[name] = s
		return s
	})
	if err != nil {
		return err
	}

	var stale []string
	total := 0
	for _, name := range bindgen.Backends {
		s, ok := checks[name]
		if !ok {
			continue
		}
		total += len(res.Files[name])
		for _, p := range s.Stale() {
			stale = append(stale, path.Join(filepath.ToSlash(cfg.Dir(name)), p))
		}
	}

	if len(stale) == 0 {
		fmt.Fprintf(stdout, "✓ %d units, %d files up to date\n", len(res.Units), total)
		return nil
	}
	for _, p := range stale {
		fmt.Fprintf(stdout, "✗ %s\n", p)
	}
	return errors.WithHint(
		errors.Newf("%d of %d generated files are stale", len(stale), total),
		"run: idlbind gen "+strings.Join(cfg.Inputs, " "))
}
