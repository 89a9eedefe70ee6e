package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/paths"
)

// EnvPrefix prefixes every environment override, e.g. LINKVAULT_LINK_WORKERS
const EnvPrefix = "LINKVAULT_"

// Load builds the configuration from, in increasing precedence: the embedded
// defaults, the user config file and LINKVAULT_* environment variables.
func Load(p paths.Paths) (*Config, error) {
	var files []string
	if p != nil {
		files = append(files, p.ConfigFilePath())
	}

	cfg, err := loadFrom(files, true)
	if err != nil {
		return nil, err
	}

	if cfg.Store.Path == "" && p != nil {
		cfg.Store.Path = p.DatabasePath()
	}
	cfg.Store.Path = paths.ExpandHome(cfg.Store.Path)

	return cfg, nil
}

func loadFrom(files []string, useEnv bool) (*Config, error) {
	k := koanf.New(".")

	// 1. Load system defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Load user config files that exist
	for _, path := range files {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path)
		}
	}

	// 3. Load env vars
	if useEnv {
		err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	// 4. Unmarshal
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
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal configuration")
	}

	// 5. Validate
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps LINKVAULT_LINK_INCLUDE_SYMLINKS to link.include_symlinks: the
// first segment is the section, the rest is the key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, rest, found := strings.Cut(key, "_")
	if !found {
		return key
	}
	return section + "." + rest
}

func validate(cfg *Config) error {
	switch cfg.Store.Backend {
	case BackendBadger, BackendSQLite:
	default:
		return errors.Newf(errors.ErrConfigLoad, "unknown store backend %q", cfg.Store.Backend)
	}

	switch cfg.Store.Compression {
	case CompressionZstd, CompressionSnappy, CompressionGzip, CompressionNone:
	default:
		return errors.Newf(errors.ErrConfigLoad, "unknown store compression %q", cfg.Store.Compression)
	}

	if cfg.IDs.BatchLength <= 0 || cfg.IDs.FilesLength <= 0 {
		return errors.New(errors.ErrConfigLoad, "id lengths must be positive")
	}
	if cfg.IDs.BatchLength == cfg.IDs.FilesLength {
		return errors.Newf(errors.ErrConfigLoad,
			"batch id length and files id length must differ (both %d)", cfg.IDs.BatchLength)
	}
	if cfg.IDs.EntryDigits < 1 || cfg.IDs.EntryDigits > 19 {
		return errors.Newf(errors.ErrConfigLoad, "entry digits must be between 1 and 19, got %d", cfg.IDs.EntryDigits)
	}
	if cfg.Link.Workers < 0 {
		return errors.Newf(errors.ErrConfigLoad, "link workers cannot be negative, got %d", cfg.Link.Workers)
	}

	return nil
}

// String renders a one-line summary, used in debug logs
func (c *Config) String() string {
	return fmt.Sprintf("backend=%s compression=%s path=%s workers=%d include_symlinks=%t",
		c.Store.Backend, c.Store.Compression, c.Store.Path, c.WorkerCount(), c.Link.IncludeSymlinks)
}
