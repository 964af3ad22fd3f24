// Copyright 2024 Serveup Authors
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

package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/serveup-dev/serveup/pkg/config"
	"github.com/serveup-dev/serveup/pkg/logger"
	"github.com/serveup-dev/serveup/pkg/python"
	"github.com/serveup-dev/serveup/pkg/requirements"
	"github.com/serveup-dev/serveup/pkg/util"
)

// Runner drives the bootstrap sequence for one project: ensure the
// virtual environment, install the manifest, then hand off to the
// server. Steps always run in that order; the installer decides for
// itself whether anything needs doing.
type Runner struct {
	RootDir string
	Verbose bool

	conf *config.ServeupTOML
	env  *python.Env
}

func NewRunner(rootDir string, conf *config.ServeupTOML) *Runner {
	return &Runner{
		RootDir: rootDir,
		conf:    conf,
		env:     python.NewEnv(filepath.Join(rootDir, conf.Env.Dir)),
	}
}

func (r *Runner) Env() *python.Env {
	return r.env
}

func (r *Runner) Config() *config.ServeupTOML {
	return r.conf
}

// AppDir is the directory the server runs in, regardless of where the
// CLI was invoked from.
func (r *Runner) AppDir() string {
	return filepath.Join(r.RootDir, r.conf.App.Dir)
}

func (r *Runner) ManifestPath() string {
	return filepath.Join(r.RootDir, r.conf.Env.Manifest)
}

// Run performs the full sequence: env, install, launch. It blocks
// until the server exits and returns an ExitError carrying the
// server's status when that status is non-zero.
func (r *Runner) Run(ctx context.Context, opts RunOptions) error {
	environ, err := r.Sync(ctx)
	if err != nil {
		return err
	}
	return r.launch(ctx, environ, opts)
}

// Sync runs everything up to but not including the launch, and returns
// the activated environment for a caller that does go on to launch.
func (r *Runner) Sync(ctx context.Context) ([]string, error) {
	if err := r.EnsureEnv(ctx); err != nil {
		return nil, err
	}

	fmt.Println(util.Accented("Activating virtual environment..."))
	environ := r.env.Activate(os.Environ())

	if !util.FileExists(r.RootDir, r.conf.Env.Manifest) {
		return nil, errors.Errorf("no %s found in %s", r.conf.Env.Manifest, r.RootDir)
	}

	if err := r.installRequirements(ctx, environ); err != nil {
		return nil, err
	}

	// advisory only, installs never key off it
	if err := r.writeSyncStamp(); err != nil {
		logger.Warnw("failed to record sync stamp", err)
	}

	if err := SeedDefaults(r.RootDir, r.conf.Env.Defaults); err != nil {
		return nil, errors.Wrap(err, "failed to seed .env defaults")
	}

	if hook := r.conf.PostSyncHook(); hook != "" {
		if err := r.runHook(ctx, hook); err != nil {
			return nil, errors.Wrapf(err, "post_sync hook %q failed", hook)
		}
	}

	return environ, nil
}

// EnsureEnv creates the virtual environment if it is not already
// there. An existing environment is left untouched, so running this
// repeatedly is safe.
func (r *Runner) EnsureEnv(ctx context.Context) error {
	if r.env.Exists() {
		if !r.env.HasInterpreter() {
			return errors.Errorf(
				"%s exists but has no interpreter; delete the directory and run again",
				r.conf.Env.Dir,
			)
		}
		fmt.Println(util.Accented("Using existing virtual environment (" + r.conf.Env.Dir + ")."))
		logger.Debugw("virtual environment present", "dir", r.env.Dir)
		return nil
	}

	basePython, err := python.Find()
	if err != nil {
		return err
	}
	interp, err := python.Probe(ctx, basePython)
	if err != nil {
		return errors.Wrapf(err, "failed to probe %s", basePython)
	}
	if min := r.conf.Env.MinPython; min != "" {
		ok, err := interp.Meets(min)
		if err != nil {
			return errors.Wrapf(err, "invalid python version requirement %q", min)
		}
		if !ok {
			return errors.Errorf("%s is %s, project requires >= %s", basePython, interp.Version, min)
		}
	}

	fmt.Println(util.Accented("Creating virtual environment in " + r.conf.Env.Dir + "..."))
	if err := r.env.Create(ctx, basePython); err != nil {
		return err
	}
	logger.Infow("virtual environment created", "dir", r.env.Dir, "python", interp.String())
	return nil
}

func (r *Runner) installRequirements(ctx context.Context, environ []string) error {
	fmt.Println(util.Accented("Installing requirements from " + r.conf.Env.Manifest + "..."))

	cmd := exec.CommandContext(ctx, r.env.Interpreter(), "-m", "pip", "install", "-r", r.conf.Env.Manifest)
	cmd.Dir = r.RootDir
	cmd.Env = environ
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if code, ok := exitStatus(err); ok {
			return errors.Wrap(ExitError{Code: code}, "pip install failed")
		}
		return errors.Wrap(err, "failed to run pip")
	}

	if m, err := requirements.ParseFile(r.ManifestPath()); err == nil {
		fmt.Println(util.Accented(fmt.Sprintf("Requirements synced (%d packages).", m.Count())))
	}
	return nil
}

func (r *Runner) runHook(ctx context.Context, name string) error {
	if !util.FileExists(r.RootDir, TaskFile) {
		return errors.Errorf("hook configured but no %s found", TaskFile)
	}
	tf, err := ParseTaskfile(r.RootDir)
	if err != nil {
		return err
	}
	run, err := NewTask(ctx, tf, r.RootDir, name, r.Verbose)
	if err != nil {
		return err
	}
	fmt.Println(util.Accented("Running " + name + " hook..."))
	return run()
}

func (r *Runner) stampPath() string {
	return filepath.Join(r.env.Dir, SyncStampFile)
}

func (r *Runner) writeSyncStamp() error {
	fingerprint, err := requirements.Fingerprint(r.ManifestPath())
	if err != nil {
		return err
	}
	return os.WriteFile(r.stampPath(), []byte(fingerprint+"\n"), 0644)
}

// SyncStamp returns the manifest fingerprint recorded by the last
// successful sync, if any.
func (r *Runner) SyncStamp() (string, bool) {
	data, err := os.ReadFile(r.stampPath())
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// InSync reports whether the manifest is unchanged since the last
// recorded sync.
func (r *Runner) InSync() bool {
	stamp, ok := r.SyncStamp()
	if !ok {
		return false
	}
	current, err := requirements.Fingerprint(r.ManifestPath())
	if err != nil {
		return false
	}
	return stamp == current
}
