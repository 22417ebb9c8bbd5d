package config

import (
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// AttributeMap is a loosely typed set of config values, such as flags collected from a command
// line or a decoded JSON object.
type AttributeMap map[string]interface{}

// Has returns whether the key is set.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}

// FromAttributes builds a config from attributes keyed by their JSON names, on top of the defaults.
// Unknown keys are rejected.
func FromAttributes(attributes AttributeMap) (*Config, error) {
	cfg := Default()
	if err := cfg.Merge(attributes); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overwrites the fields named in attributes.
func (c *Config) Merge(attributes AttributeMap) error {
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:  "json",
		Result:   c,
		Metadata: &md,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(map[string]interface{}(attributes)); err != nil {
		return errors.Wrap(err, "failed to decode config attributes")
	}
	if len(md.Unused) != 0 {
		sort.Strings(md.Unused)
		return errors.Errorf("unknown config attributes: %s", strings.Join(md.Unused, ", "))
	}
	return nil
}
