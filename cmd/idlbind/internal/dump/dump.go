package dump

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/broady/idlbind/bindgen"
	"github.com/broady/idlbind/bindgen/decl"
	"github.com/broady/idlbind/cmd/idlbind/internal/options"
)

type Cmd struct {
	options.Common `embed:""`

	Format string `help:"Output format." enum:"json,yaml" default:"json" short:"f"`
}

func (c *Cmd) Run(ctx context.Context, stdout io.Writer) error {
	cfg, err := c.Load()
	if err != nil {
		return err
	}
	units, err := bindgen.ReadUnits(cfg.Inputs)
	if err != nil {
		return err
	}
	model, err := Analyze(ctx, units, cfg)
	if err != nil {
		return err
	}
	return Write(stdout, model, c.Format)
}

// Model is the analyzed declaration model as printed by dump.
type Model struct {
	Units   []*decl.Blob  `json:"units" yaml:"units"`
	Unions  []*decl.Union `json:"unions,omitempty" yaml:"unions,omitempty"`
	Defined decl.Defined  `json:"defined" yaml:"defined"`
}

// Analyze runs analysis only.
func Analyze(ctx context.Context, units []bindgen.Unit, cfg *bindgen.Config) (*Model, error) {
	sess, blobs, err := bindgen.Analyze(ctx, units, cfg.Prefix, cfg.Parallelism)
	if err != nil {
		return nil, err
	}
	return &Model{Units: blobs, Unions: sess.Unions(), Defined: sess.Defined()}, nil
}

// Write encodes m to w as json or yaml.
func Write(w io.Writer, m *Model, format string) error {
	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(m), "encoding json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return errors.Wrap(err, "encoding yaml")
		}
		return errors.Wrap(enc.Close(), "encoding yaml")
	}
	return errors.Newf("unknown format %q", format)
}
