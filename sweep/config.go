// Package sweep - Rebuilds the benchmark programs under several compiler flag
// sets, runs them and collects their timings.
package sweep

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var (
	// ErrNoPrograms is returned for a configuration without programs.
	ErrNoPrograms = errors.New("no programs configured")
	// ErrNoVariants is returned for a configuration without variants.
	ErrNoVariants = errors.New("no variants configured")
	// ErrInvalidEnv is returned for an environment entry not of the form KEY=VALUE.
	ErrInvalidEnv = errors.New("environment entry must be KEY=VALUE")
)

// Variant is one compiler configuration the programs are rebuilt with.
type Variant struct {
	// Name labels the variant in samples and plots.
	Name string `json:"name" mapstructure:"name"`
	// GCFlags is passed to go build as -gcflags. Empty means the default build.
	GCFlags string `json:"gcflags" mapstructure:"gcflags"`
	// Env holds KEY=VALUE entries added to the program's environment.
	Env []string `json:"env" mapstructure:"env"`
}

// Config describes a sweep.
type Config struct {
	Programs       []string  `json:"programs" mapstructure:"programs"`
	Variants       []Variant `json:"variants" mapstructure:"variants"`
	OutputDir      string    `json:"output_dir" mapstructure:"output_dir"`
	GoBinary       string    `json:"go_binary" mapstructure:"go_binary"`
	TimeoutSeconds int       `json:"timeout_seconds" mapstructure:"timeout_seconds"`
	Plot           bool      `json:"plot" mapstructure:"plot"`
}

// DefaultPrograms are the benchmark packages of this module.
var DefaultPrograms = []string{
	"github.com/nvr-ai/go-microbench/cmd/arithmetic",
	"github.com/nvr-ai/go-microbench/cmd/vector",
	"github.com/nvr-ai/go-microbench/cmd/matrix",
}

// DefaultVariants builds with the default flags, without optimisation or
// inlining, and without bounds checks.
func DefaultVariants() []Variant {
	return []Variant{
		{Name: "default"},
		{Name: "noopt", GCFlags: "-N -l"},
		{Name: "nobounds", GCFlags: "-B"},
	}
}

// DefaultConfig returns a configuration sweeping every program over the
// default variants.
func DefaultConfig() *Config {
	return &Config{
		Programs:       append([]string(nil), DefaultPrograms...),
		Variants:       DefaultVariants(),
		OutputDir:      "results",
		GoBinary:       "go",
		TimeoutSeconds: 600,
		Plot:           true,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if len(c.Programs) == 0 {
		return ErrNoPrograms
	}
	if len(c.Variants) == 0 {
		return ErrNoVariants
	}
	for _, v := range c.Variants {
		if v.Name == "" {
			return errors.New("variant name cannot be empty")
		}
		for _, kv := range v.Env {
			if k, _, ok := strings.Cut(kv, "="); !ok || k == "" {
				return errors.Wrapf(ErrInvalidEnv, "variant %s: %q", v.Name, kv)
			}
		}
	}
	if c.TimeoutSeconds < 0 {
		return errors.Errorf("timeout cannot be negative: %d", c.TimeoutSeconds)
	}
	return nil
}

func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("programs", c.Programs)
	v.SetDefault("output_dir", c.OutputDir)
	v.SetDefault("go_binary", c.GoBinary)
	v.SetDefault("timeout_seconds", c.TimeoutSeconds)
	v.SetDefault("plot", c.Plot)
}

// LoadConfig reads a configuration file. Keys absent from the file keep
// their DefaultConfig value; variants are replaced as a whole.
//
// Arguments:
//   - path: YAML, JSON or TOML file, chosen by extension.
//
// Returns:
//   - *Config: The validated configuration.
//   - error: When the file cannot be read, decoded or validated.
func LoadConfig(path string) (*Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v, def)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode config %s", path)
	}
	if !v.IsSet("variants") {
		cfg.Variants = def.Variants
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// SaveConfig writes the configuration to path in the format given by its
// extension.
func SaveConfig(c *Config, path string) error {
	v := viper.New()
	v.Set("programs", c.Programs)
	v.Set("output_dir", c.OutputDir)
	v.Set("go_binary", c.GoBinary)
	v.Set("timeout_seconds", c.TimeoutSeconds)
	v.Set("plot", c.Plot)

	variants := make([]map[string]interface{}, 0, len(c.Variants))
	for _, variant := range c.Variants {
		env := variant.Env
		if env == nil {
			env = []string{}
		}
		variants = append(variants, map[string]interface{}{
			"name":    variant.Name,
			"gcflags": variant.GCFlags,
			"env":     env,
		})
	}
	v.Set("variants", variants)

	if err := v.WriteConfigAs(path); err != nil {
		return errors.Wrapf(err, "failed to write config %s", path)
	}
	return nil
}
