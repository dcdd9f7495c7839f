// Package options holds the flags shared by the generating commands and
// merges them over the config file and environment.
package options

import (
	"github.com/broady/idlbind/bindgen"
)

// Common are the input and output flags of gen, check and dump.
type Common struct {
	Inputs  []string `arg:"" optional:"" type:"path" help:"IDL files or directories (default: inputs from the config file)."`
	Config  string   `help:"Config file (default: ./idlbind.{yaml,toml,json})." short:"c" type:"path"`
	Out     string   `help:"Output directory for generated files." short:"o" type:"path"`
	Backend []string `help:"Backends to run: quickjs, plugin, rust." short:"b"`
	Prefix  string   `help:"Platform prefix stripped from unit names (e.g. webf)."`
	Bits32  bool     `help:"Use 32-bit pointer-width spellings." name:"32bit"`
	Jobs    int      `help:"Number of parallel workers (default: GOMAXPROCS)." short:"j"`
}

// Load reads the config file and IDLBIND_* environment, applies the flags
// that were set and validates the result.
func (c *Common) Load() (*bindgen.Config, error) {
	v, err := bindgen.NewViper(c.Config)
	if err != nil {
		return nil, err
	}
	cfg, err := bindgen.LoadConfig(v)
	if err != nil {
		return nil, err
	}
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Common) apply(cfg *bindgen.Config) {
	if len(c.Inputs) > 0 {
		cfg.Inputs = c.Inputs
	}
	if c.Out != "" {
		cfg.OutDir = c.Out
	}
	if len(c.Backend) > 0 {
		cfg.Backends = c.Backend
	}
	if c.Prefix != "" {
		cfg.Prefix = c.Prefix
	}
	if c.Bits32 {
		cfg.Is32Bit = true
	}
	if c.Jobs > 0 {
		cfg.Parallelism = c.Jobs
	}
}
