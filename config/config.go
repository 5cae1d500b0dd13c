// Package config loads flag defaults from a TOML or YAML file for kong.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

const dirName = "djangogen"

var ErrUnsupportedFormat = errors.New("config file is neither TOML nor YAML")

// DefaultPaths lists the per-user config files, in the order kong should consult them.
func DefaultPaths() []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}

	return []string{
		filepath.Join(dir, dirName, "config.toml"),
		filepath.Join(dir, dirName, "config.yaml"),
	}
}

// Loader is a kong.ConfigurationLoader. Keys are flag names; dashes and underscores are
// interchangeable.
func Loader(r io.Reader) (kong.Resolver, error) {
	values, err := Values(r)
	if err != nil {
		return nil, err
	}

	var f kong.ResolverFunc = func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		if v, ok := values[flag.Name]; ok {
			return v, nil
		}

		if v, ok := values[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
			return v, nil
		}

		return nil, nil
	}

	return f, nil
}

// Values decodes a config document into flag values rendered the way they would be typed on
// the command line. Lists become comma separated.
func Values(r io.Reader) (map[string]string, error) {
	contents, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	raw := make(map[string]any)

	tomlErr := toml.Unmarshal(contents, &raw)
	if tomlErr != nil {
		raw = make(map[string]any)

		if yamlErr := yaml.Unmarshal(contents, &raw); yamlErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, errors.Join(tomlErr, yamlErr))
		}
	}

	values := make(map[string]string, len(raw))

	for k, v := range raw {
		values[k] = render(v)
	}

	return values, nil
}

func render(v any) string {
	switch v := v.(type) {
	case []any:
		parts := make([]string, 0, len(v))

		for _, item := range v {
			parts = append(parts, render(item))
		}

		return strings.Join(parts, ",")
	case map[string]any:
		keys := make([]string, 0, len(v))

		for k := range v {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		parts := make([]string, 0, len(v))

		for _, k := range keys {
			parts = append(parts, k+"="+render(v[k]))
		}

		return strings.Join(parts, ",")
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
