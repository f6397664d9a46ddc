// Package config loads hapticrec settings from a YAML file and HAPTICREC_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"hapticrec/transport"
)

const (
	EnvPrefix = "HAPTICREC"
	fileName  = "config.yaml"
)

type Config struct {
	Capture   CaptureConfig   `mapstructure:"capture" yaml:"capture"`
	Transport TransportConfig `mapstructure:"transport" yaml:"transport"`
	Export    ExportConfig    `mapstructure:"export" yaml:"export"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Haptics   ToggleConfig    `mapstructure:"haptics" yaml:"haptics"`
	Hotkey    ToggleConfig    `mapstructure:"hotkey" yaml:"hotkey"`

	// Path is the file the config was read from, if any.
	Path string `mapstructure:"-" yaml:"-"`
}

type CaptureConfig struct {
	Dir        string `mapstructure:"dir" yaml:"dir" validate:"required"`
	Device     string `mapstructure:"device" yaml:"device"`
	SampleRate int    `mapstructure:"sample_rate" yaml:"sample_rate" validate:"oneof=8000 16000 22050 32000 44100 48000 96000"`
	Channels   int    `mapstructure:"channels" yaml:"channels" validate:"oneof=1 2"`
	Quality    string `mapstructure:"quality" yaml:"quality" validate:"oneof=pcm lossless"`
}

type TransportConfig struct {
	RotationPeriod time.Duration `mapstructure:"rotation_period" yaml:"rotation_period" validate:"gt=0"`
	RotationStep   float64       `mapstructure:"rotation_step" yaml:"rotation_step" validate:"gt=0,lte=360"`
	VelocityScale  float64       `mapstructure:"velocity_scale" yaml:"velocity_scale" validate:"gt=0"`
	SamplePeriod   time.Duration `mapstructure:"sample_period" yaml:"sample_period" validate:"gt=0"`
	Segments       int           `mapstructure:"segments" yaml:"segments" validate:"min=1,max=100"`
}

type ExportConfig struct {
	Dirs        []string `mapstructure:"dirs" yaml:"dirs" validate:"dive,required"`
	Clipboard   bool     `mapstructure:"clipboard" yaml:"clipboard"`
	ImportDir   string   `mapstructure:"import_dir" yaml:"import_dir" validate:"required"`
	ImportKinds []string `mapstructure:"import_kinds" yaml:"import_kinds" validate:"min=1,dive,oneof=.wav .flac"`
}

type LogConfig struct {
	MaxSizeMB  int `mapstructure:"max_size_mb" yaml:"max_size_mb" validate:"min=1"`
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups" validate:"min=0"`
}

type ToggleConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// MarshalYAML renders durations in their string form.
func (t TransportConfig) MarshalYAML() (any, error) {
	return map[string]any{
		"rotation_period": t.RotationPeriod.String(),
		"rotation_step":   t.RotationStep,
		"velocity_scale":  t.VelocityScale,
		"sample_period":   t.SamplePeriod.String(),
		"segments":        t.Segments,
	}, nil
}

// DefaultPath is $XDG_CONFIG_HOME/hapticrec/config.yaml or the OS equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "hapticrec", fileName)
}

func musicDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "hapticrec-exports")
	}
	return filepath.Join(home, "Music", "hapticrec")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("capture.dir", filepath.Join(os.TempDir(), "hapticrec"))
	v.SetDefault("capture.device", "")
	v.SetDefault("capture.sample_rate", 44100)
	v.SetDefault("capture.channels", 2)
	v.SetDefault("capture.quality", "pcm")

	v.SetDefault("transport.rotation_period", transport.DefaultRotationPeriod)
	v.SetDefault("transport.rotation_step", transport.DefaultRotationStep)
	v.SetDefault("transport.velocity_scale", transport.DefaultVelocityScale)
	v.SetDefault("transport.sample_period", transport.DefaultSamplePeriod)
	v.SetDefault("transport.segments", transport.DefaultSegments)

	v.SetDefault("export.dirs", []string{musicDir()})
	v.SetDefault("export.clipboard", true)
	v.SetDefault("export.import_dir", musicDir())
	v.SetDefault("export.import_kinds", []string{".wav", ".flac"})

	v.SetDefault("log.max_size_mb", 5)
	v.SetDefault("log.max_backups", 3)

	v.SetDefault("haptics.enabled", true)
	v.SetDefault("hotkey.enabled", true)
}

// Load reads path, or the default location when path is empty. A missing
// default file is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	var used string
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		err := v.ReadInConfig()
		switch {
		case err == nil:
			used = path
		case !explicit && errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	cfg.Path = used
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) expandPaths() {
	c.Capture.Dir = expandHome(c.Capture.Dir)
	c.Export.ImportDir = expandHome(c.Export.ImportDir)
	for i, d := range c.Export.Dirs {
		c.Export.Dirs[i] = expandHome(d)
	}
	for i, k := range c.Export.ImportKinds {
		k = strings.ToLower(k)
		if !strings.HasPrefix(k, ".") {
			k = "." + k
		}
		c.Export.ImportKinds[i] = k
	}
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate reports every invalid field, named by its config key.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		key := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", key, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", key, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Config) TransportOptions() transport.Options {
	return transport.Options{
		CaptureDir:     c.Capture.Dir,
		SampleRate:     c.Capture.SampleRate,
		Channels:       c.Capture.Channels,
		Quality:        c.Capture.Quality,
		RotationPeriod: c.Transport.RotationPeriod,
		RotationStep:   c.Transport.RotationStep,
		VelocityScale:  c.Transport.VelocityScale,
		SamplePeriod:   c.Transport.SamplePeriod,
		Segments:       c.Transport.Segments,
		ImportKinds:    c.Export.ImportKinds,
		Now:            time.Now,
	}
}
