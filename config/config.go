// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config contains the configuration of the glam runtime,
// read from TOML or YAML files and GLAM_ environment variables.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cogentcore.org/glam/base/errors"
	"cogentcore.org/glam/base/logx"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of the environment variables read by [Config.LoadEnv].
const EnvPrefix = "GLAM_"

// Config is the configuration of the glam runtime.
type Config struct {

	// FPS is the frame rate of the render loop.
	FPS int `toml:"fps" yaml:"fps" validate:"gt=0,lte=1000"`

	// Frames is the number of frames to run before stopping; 0 runs until canceled.
	Frames int `toml:"frames" yaml:"frames" validate:"gte=0"`

	// LoadTimeout is the time limit of each model load; 0 for none.
	LoadTimeout Duration `toml:"load_timeout" yaml:"load_timeout" validate:"gte=0"`

	// BaseURL is the url or directory that model urls are relative to.
	// It defaults to the directory of the document.
	BaseURL string `toml:"base_url" yaml:"base_url"`

	// MaxLoads is the number of models fetched at once.
	MaxLoads int `toml:"max_loads" yaml:"max_loads" validate:"gte=0"`

	// LogLevel is the minimum level logged: debug, info, warn or error.
	LogLevel string `toml:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`

	// Watch is whether view reloads the documents when they change.
	Watch bool `toml:"watch" yaml:"watch"`

	// Engine configures the rendering engine.
	Engine Engine `toml:"engine" yaml:"engine"`
}

// Engine is the configuration of the rendering engine.
type Engine struct {

	// Name is the engine to use. Only offscreen is built in.
	Name string `toml:"name" yaml:"name" validate:"required"`

	// Dump is whether to print the engine scene graph on exit.
	Dump bool `toml:"dump" yaml:"dump"`
}

// Duration is a [time.Duration] read from strings such as "30s".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) String() string { return time.Duration(d).String() }

// New returns a new config with default values.
func New() *Config {
	c := &Config{}
	c.Defaults()
	return c
}

// Defaults sets the default values.
func (c *Config) Defaults() {
	c.FPS = 60
	c.Frames = 0
	c.LoadTimeout = Duration(30 * time.Second)
	c.BaseURL = ""
	c.MaxLoads = 4
	c.LogLevel = "info"
	c.Watch = false
	c.Engine = Engine{Name: "offscreen"}
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	cp := &Config{}
	errors.Log(copier.CopyWithOption(cp, c, copier.Option{DeepCopy: true}))
	return cp
}

var validate = validator.New()

// Validate checks that all values are in range.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Level returns the [slog.Level] of LogLevel, info if it is not set.
func (c *Config) Level() slog.Level {
	if lv, ok := logx.LevelFromString(c.LogLevel); ok {
		return lv
	}
	return slog.LevelInfo
}

// Open reads the config file into c, as TOML or YAML by its extension.
// Unknown keys are an error. Values not in the file are left unchanged.
func (c *Config) Open(file string) error {
	b, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(file)); ext {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		err = dec.Decode(c)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		err = dec.Decode(c)
	default:
		return fmt.Errorf("config: unsupported file type %q for %s", ext, file)
	}
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", file, err)
	}
	return nil
}

// Save writes c to the file, as TOML or YAML by its extension.
func (c *Config) Save(file string) error {
	var b []byte
	var err error
	switch ext := strings.ToLower(filepath.Ext(file)); ext {
	case ".toml":
		b, err = toml.Marshal(c)
	case ".yaml", ".yml":
		b, err = yaml.Marshal(c)
	default:
		return fmt.Errorf("config: unsupported file type %q for %s", ext, file)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(file, b, 0o644)
}

// LoadEnv sets values from GLAM_ environment variables, such as
// GLAM_FPS, GLAM_WATCH or GLAM_LOAD_TIMEOUT. The given .env files are loaded into
// the environment first, without overriding variables already set.
func (c *Config) LoadEnv(envFiles ...string) error {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	var errs []error
	setInt := func(name string, v *int) {
		if s, ok := os.LookupEnv(EnvPrefix + name); ok {
			n, err := strconv.Atoi(s)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err))
				return
			}
			*v = n
		}
	}
	setString := func(name string, v *string) {
		if s, ok := os.LookupEnv(EnvPrefix + name); ok {
			*v = s
		}
	}
	setInt("FPS", &c.FPS)
	setInt("FRAMES", &c.Frames)
	setInt("MAX_LOADS", &c.MaxLoads)
	setString("BASE_URL", &c.BaseURL)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("ENGINE", &c.Engine.Name)
	if s, ok := os.LookupEnv(EnvPrefix + "WATCH"); ok {
		w, err := strconv.ParseBool(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: %sWATCH: %w", EnvPrefix, err))
		} else {
			c.Watch = w
		}
	}
	if s, ok := os.LookupEnv(EnvPrefix + "LOAD_TIMEOUT"); ok {
		if err := c.LoadTimeout.UnmarshalText([]byte(s)); err != nil {
			errs = append(errs, fmt.Errorf("config: %sLOAD_TIMEOUT: %w", EnvPrefix, err))
		}
	}
	return errors.Join(errs...)
}
