package config

import (
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/linkvault/pkg/errors"
)

// Output formats for Marshal
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Marshal renders the effective configuration in the given format
func (c *Config) Marshal(format string) ([]byte, error) {
	switch format {
	case FormatYAML, "":
		return yaml.Marshal(c)
	case FormatTOML:
		return toml.Marshal(c)
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown config format %q", format)
	}
}
