package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Map layers an in-memory settings tree.
func Map(settings map[string]any) Source {
	return SourceFunc(func(v *viper.Viper, _ afero.Fs) error {
		return v.MergeConfigMap(settings)
	})
}

// YAML layers raw YAML bytes.
func YAML(data []byte) Source {
	return SourceFunc(func(v *viper.Viper, _ afero.Fs) error {
		settings := map[string]any{}
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return fmt.Errorf("parsing yaml source: %w", err)
		}
		return v.MergeConfigMap(settings)
	})
}

// File layers a configuration file. The format is taken from the file
// extension (yaml, yml, json, or toml). A missing file is an error; use
// OptionalFile when the layer may be absent.
func File(path string) Source {
	return fileSource(path, false)
}

// OptionalFile is File, except a missing file applies as an empty layer.
func OptionalFile(path string) Source {
	return fileSource(path, true)
}

func fileSource(path string, optional bool) Source {
	return SourceFunc(func(v *viper.Viper, fs afero.Fs) error {
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if ext == "" {
			return fmt.Errorf("config file %q has no extension to infer a format from", path)
		}
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			if optional {
				return nil
			}
			return fmt.Errorf("reading config file %q: %w", path, err)
		}
		layer := viper.New()
		layer.SetConfigType(ext)
		if err := layer.ReadConfig(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("parsing config file %q: %w", path, err)
		}
		return v.MergeConfigMap(layer.AllSettings())
	})
}

// Env layers process environment variables. Keys are matched live with the
// given prefix; "." in config keys maps to "_" in variable names, so
// HT_SERVER_PORT satisfies "server.port" under prefix "HT".
func Env(prefix string) Source {
	return SourceFunc(func(v *viper.Viper, _ afero.Fs) error {
		if prefix != "" {
			v.SetEnvPrefix(prefix)
		}
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
		return nil
	})
}

// DotEnv layers a dotenv file. Keys are lowercased and kept flat, so
// LOG_LEVEL=debug is read back as GetString("log_level").
func DotEnv(path string) Source {
	return SourceFunc(func(v *viper.Viper, fs afero.Fs) error {
		f, err := fs.Open(path)
		if err != nil {
			return fmt.Errorf("opening dotenv file %q: %w", path, err)
		}
		defer func() { _ = f.Close() }()

		pairs, err := godotenv.Parse(f)
		if err != nil {
			return fmt.Errorf("parsing dotenv file %q: %w", path, err)
		}
		settings := make(map[string]any, len(pairs))
		for k, val := range pairs {
			settings[strings.ToLower(k)] = val
		}
		return v.MergeConfigMap(settings)
	})
}

// FromConfig layers the settings of an existing snapshot. The host builder
// uses this to seed app configuration with host configuration.
func FromConfig(c *Config) Source {
	return SourceFunc(func(v *viper.Viper, _ afero.Fs) error {
		if c == nil {
			return nil
		}
		return v.MergeConfigMap(c.AllSettings())
	})
}
