package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"strings"

	"github.com/arthur-debert/remnant/pkg/errors"
	"github.com/arthur-debert/remnant/pkg/logging"
	"github.com/arthur-debert/remnant/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "REMNANT_"

//go:embed embedded/defaults.toml
var defaultConfig []byte

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// Options selects the user configuration file
type Options struct {
	// File is the user configuration file; a missing file is skipped
	// unless Required is set
	File     string
	Required bool

	// Overrides are applied last, e.g. from command line flags
	Overrides map[string]interface{}
}

// Default returns the embedded defaults with no user file or environment
func Default() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse embedded defaults")
	}
	return unmarshal(k)
}

// Load layers defaults, the user file, the environment and overrides
func Load(opts Options) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse embedded defaults")
	}

	// 2. User file
	if opts.File != "" {
		path := paths.ExpandHome(opts.File)
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
			}
			logger.Debug().Str("file", path).Msg("Loaded user configuration")
		} else if opts.Required {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not found", path)
		}
	}

	// 3. Environment
	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment variables")
	}

	// 4. Explicit overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps REMNANT_SPOTLIGHT_TIMEOUT to spotlight.timeout. Directory
// overrides handled by the paths package are not configuration keys.
func envKey(s string) string {
	switch s {
	case paths.EnvRemnantDataDir, paths.EnvRemnantConfigDir:
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	postProcess(&cfg)
	return &cfg, nil
}

func postProcess(cfg *Config) {
	locations := make([]string, 0, len(cfg.Search.Locations))
	for _, loc := range cfg.Search.Locations {
		if loc = strings.TrimSpace(loc); loc != "" {
			locations = append(locations, paths.ExpandHome(loc))
		}
	}
	cfg.Search.Locations = locations
	cfg.Registry.Path = paths.ExpandHome(cfg.Registry.Path)
	cfg.Conditions.File = paths.ExpandHome(cfg.Conditions.File)
}

func validate(cfg *Config) error {
	if cfg.Spotlight.Timeout < 0 {
		return errors.Newf(errors.ErrConfigValid, "spotlight.timeout must not be negative, got %v", cfg.Spotlight.Timeout)
	}
	if cfg.Sizes.Chunk < 0 {
		return errors.Newf(errors.ErrConfigValid, "sizes.chunk must not be negative, got %d", cfg.Sizes.Chunk)
	}
	if cfg.Sizes.Workers < 0 {
		return errors.Newf(errors.ErrConfigValid, "sizes.workers must not be negative, got %d", cfg.Sizes.Workers)
	}
	return nil
}
