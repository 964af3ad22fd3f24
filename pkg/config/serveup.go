// Copyright 2025 Serveup Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"github.com/serveup-dev/serveup/pkg/logger"
	"github.com/serveup-dev/serveup/pkg/util"
)

const (
	ServeupTOMLFile = "serveup.toml"

	DefaultAppDir   = "src"
	DefaultModule   = "main:app"
	DefaultEnvDir   = "venv"
	DefaultManifest = "requirements.txt"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration file")
	ErrUnknownKeys   = fmt.Errorf("unknown keys: %w", ErrInvalidConfig)

	// module.path:attribute, dotted module segments
	moduleRefPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)*:[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// ServeupTOML is the per-project configuration file. Every field has a
// zero-config default matching the conventional layout (venv at the root,
// requirements.txt beside it, the entry module under src/), so the file
// is only needed for projects that deviate. The development server's bind
// address, port, and reload switch are deliberately not part of the
// schema.
type ServeupTOML struct {
	App   *AppConfig   `toml:"app"`
	Env   *EnvConfig   `toml:"env"`
	Hooks *HooksConfig `toml:"hooks"`
}

type AppConfig struct {
	// Subdirectory holding the entry module; the server starts with this
	// as its working directory.
	Dir string `toml:"dir"`
	// ASGI entry point, "module:attribute".
	Module string `toml:"module"`
	// Additional directories the reloader watches, relative to Dir.
	ReloadDirs []string `toml:"reload_dirs"`
}

type EnvConfig struct {
	// Virtual environment directory, relative to the project root.
	Dir string `toml:"dir"`
	// Requirements manifest, relative to the project root.
	Manifest string `toml:"manifest"`
	// Lowest interpreter version the project accepts, e.g. "3.10".
	// Empty disables the gate.
	MinPython string `toml:"min_python"`
	// Seeded into the server environment unless already set by the
	// operator.
	Defaults map[string]string `toml:"defaults"`
}

type HooksConfig struct {
	// Taskfile task to run after a successful dependency sync.
	PostSync string `toml:"post_sync"`
}

func NewServeupTOML() *ServeupTOML {
	return &ServeupTOML{
		App: &AppConfig{
			Dir:    DefaultAppDir,
			Module: DefaultModule,
		},
		Env: &EnvConfig{
			Dir:      DefaultEnvDir,
			Manifest: DefaultManifest,
		},
	}
}

func (c *ServeupTOML) applyDefaults() {
	if c.App == nil {
		c.App = &AppConfig{}
	}
	if c.App.Dir == "" {
		c.App.Dir = DefaultAppDir
	}
	if c.App.Module == "" {
		c.App.Module = DefaultModule
	}
	if c.Env == nil {
		c.Env = &EnvConfig{}
	}
	if c.Env.Dir == "" {
		c.Env.Dir = DefaultEnvDir
	}
	if c.Env.Manifest == "" {
		c.Env.Manifest = DefaultManifest
	}
}

func (c *ServeupTOML) Validate() error {
	for field, p := range map[string]string{
		"app.dir":      c.App.Dir,
		"env.dir":      c.Env.Dir,
		"env.manifest": c.Env.Manifest,
	} {
		if !filepath.IsLocal(p) {
			return fmt.Errorf("%s must be a relative path inside the project: %w", field, ErrInvalidConfig)
		}
	}
	for _, dir := range c.App.ReloadDirs {
		if !filepath.IsLocal(dir) {
			return fmt.Errorf("app.reload_dirs entry %q must be a relative path: %w", dir, ErrInvalidConfig)
		}
	}
	if !moduleRefPattern.MatchString(c.App.Module) {
		return fmt.Errorf("app.module %q is not a module:attribute reference: %w", c.App.Module, ErrInvalidConfig)
	}
	if c.Env.MinPython != "" {
		if _, err := semver.NewVersion(c.Env.MinPython); err != nil {
			return fmt.Errorf("env.min_python %q is not a version: %w", c.Env.MinPython, ErrInvalidConfig)
		}
	}
	for key := range c.Env.Defaults {
		if strings.TrimSpace(key) == "" || strings.ContainsAny(key, "= \t") {
			return fmt.Errorf("env.defaults key %q is not a variable name: %w", key, ErrInvalidConfig)
		}
	}
	return nil
}

func (c *ServeupTOML) PostSyncHook() string {
	if c.Hooks == nil {
		return ""
	}
	return c.Hooks.PostSync
}

func (c *ServeupTOML) SaveTOMLFile(dir string, tomlFileName string) error {
	f, err := os.Create(filepath.Join(dir, tomlFileName))
	if err != nil {
		return err
	}
	defer f.Close()
	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("error encoding TOML: %w", err)
	}
	fmt.Printf("Saving config file [%s]\n", util.Accented(tomlFileName))
	return nil
}

// LoadTOMLFile reads the project configuration from dir. A missing file
// is not an error: the returned config carries the defaults and exists
// is false. Unknown keys are rejected so typos do not silently fall back
// to defaults.
func LoadTOMLFile(dir string, tomlFileName string) (*ServeupTOML, bool, error) {
	logger.Debugw(fmt.Sprintf("loading %s file", tomlFileName))

	config := &ServeupTOML{}
	tomlFile := filepath.Join(dir, tomlFileName)

	if _, err := os.Stat(tomlFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config.applyDefaults()
			return config, false, nil
		}
		return nil, false, err
	}

	md, err := toml.DecodeFile(tomlFile, config)
	if err != nil {
		return nil, true, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, true, fmt.Errorf("%s: %s: %w", tomlFileName, strings.Join(keys, ", "), ErrUnknownKeys)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, true, fmt.Errorf("%s: %w", tomlFileName, err)
	}

	return config, true, nil
}
