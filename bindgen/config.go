package bindgen

import (
	"runtime"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/broady/idlbind/bindgen/backend"
	"github.com/broady/idlbind/bindgen/pluginapi"
	"github.com/broady/idlbind/bindgen/quickjs"
	"github.com/broady/idlbind/bindgen/rustffi"
)

// Backends lists the known backend names in output order.
var Backends = []string{quickjs.Name, pluginapi.Name, rustffi.Name}

// Config holds the configuration for a generation run.
type Config struct {
	// Inputs are .d.ts files or directories searched for them.
	Inputs []string `mapstructure:"inputs" yaml:"inputs" validate:"required,min=1,dive,required"`

	// OutDir is the default output directory of every backend.
	OutDir string `mapstructure:"out_dir" yaml:"out_dir" validate:"required"`

	// QuickJSDir, PluginDir and RustDir override OutDir per backend.
	QuickJSDir string `mapstructure:"quickjs_dir" yaml:"quickjs_dir,omitempty"`
	PluginDir  string `mapstructure:"plugin_dir" yaml:"plugin_dir,omitempty"`
	RustDir    string `mapstructure:"rust_dir" yaml:"rust_dir,omitempty"`

	// Backends selects the generators to run.
	// Default: all of quickjs, plugin and rust.
	Backends []string `mapstructure:"backends" yaml:"backends" validate:"min=1,unique,dive,oneof=quickjs plugin rust"`

	// Prefix is the platform prefix tag stripped from unit identifiers
	// when deriving class names, e.g. "webf" for webf_event_target.d.ts.
	Prefix string `mapstructure:"prefix" yaml:"prefix,omitempty"`

	// Is32Bit selects pointer-width spellings for 32-bit targets.
	Is32Bit bool `mapstructure:"is_32bit" yaml:"is_32bit,omitempty"`

	// Parallelism bounds the number of concurrent workers.
	// Default: GOMAXPROCS.
	Parallelism int `mapstructure:"parallelism" yaml:"parallelism" validate:"gte=1"`

	// SkipMembers lists "Class.member" pairs left out of the plugin API and
	// Rust surfaces.
	SkipMembers []string `mapstructure:"skip_members" yaml:"skip_members,omitempty" validate:"dive,contains=."`

	// Renderer overrides the embedded templates.
	Renderer backend.Renderer `mapstructure:"-" yaml:"-" validate:"-"`
}

// Dir returns the output directory of backend.
func (c *Config) Dir(backend string) string {
	var dir string
	switch backend {
	case quickjs.Name:
		dir = c.QuickJSDir
	case pluginapi.Name:
		dir = c.PluginDir
	case rustffi.Name:
		dir = c.RustDir
	}
	if dir == "" {
		return c.OutDir
	}
	return dir
}

// Enabled reports whether backend is selected.
func (c *Config) Enabled(backend string) bool {
	return slices.Contains(c.Backends, backend)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks c after defaults have been applied.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validating config")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.WithHint(
		errors.Newf("invalid config: %s", strings.Join(msgs, "; ")),
		"see idlbind gen --help for the accepted values")
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must have at least " + fe.Param() + " entries"
	case "oneof":
		return field + " must be one of " + fe.Param() + ", got " + toString(fe.Value())
	case "unique":
		return field + " must not repeat entries"
	case "gte":
		return field + " must be at least " + fe.Param()
	case "contains":
		return field + " entries must look like Class.member, got " + toString(fe.Value())
	}
	return field + " failed " + fe.Tag()
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return `"` + s + `"`
	}
	return "a non-string value"
}

// applyConfigDefaults applies default values to Config.
func applyConfigDefaults(cfg *Config) *Config {
	// Copy so the caller's config is left untouched.
	result := *cfg

	if len(result.Backends) == 0 {
		result.Backends = slices.Clone(Backends)
	}
	if result.Parallelism == 0 {
		result.Parallelism = runtime.GOMAXPROCS(0)
	}
	return &result
}

// SetDefaults registers the configuration defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("out_dir", ".")
	v.SetDefault("backends", Backends)
	v.SetDefault("parallelism", runtime.GOMAXPROCS(0))
}

// NewViper returns a viper instance reading IDLBIND_* environment
// variables and, when present, a config file. With file empty it looks
// for idlbind.{yaml,toml,json} in the working directory.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("IDLBIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", file)
		}
		return v, nil
	}

	v.SetConfigName("idlbind")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading idlbind config")
		}
	}
	return v, nil
}

// LoadConfig decodes v into a Config with defaults applied. The result is
// not validated; callers apply flag overrides first.
func LoadConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	return applyConfigDefaults(&cfg), nil
}
