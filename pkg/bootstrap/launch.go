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
	"strconv"
	"syscall"
	"time"

	"github.com/frostbyte73/core"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/serveup-dev/serveup/pkg/logger"
	"github.com/serveup-dev/serveup/pkg/util"
)

// Dev server parameters. These are deliberately constants, not
// configuration: every run binds the same address with reload on.
const (
	ServeHost = "0.0.0.0"
	ServePort = 8000

	LocalServerURL = "http://127.0.0.1:8000"

	shutdownGrace = 10 * time.Second
)

type RunOptions struct {
	OpenBrowser bool
}

// uvicornArgs builds the interpreter arguments for the server. Host,
// port, and reload are fixed; only the module reference and extra
// reload dirs vary by project.
func uvicornArgs(module string, reloadDirs []string) []string {
	args := []string{
		"-m", "uvicorn", module,
		"--host", ServeHost,
		"--port", strconv.Itoa(ServePort),
		"--reload",
	}
	for _, dir := range reloadDirs {
		args = append(args, "--reload-dir", dir)
	}
	return args
}

// launch starts uvicorn in the app directory and blocks until it
// exits. The server's stdio is the caller's stdio; its exit status
// comes back as an ExitError.
func (r *Runner) launch(ctx context.Context, environ []string, opts RunOptions) error {
	appDir := r.AppDir()
	if !util.DirExists(appDir) {
		return errors.Errorf("app directory %s does not exist", appDir)
	}

	cmd := exec.Command(r.env.Interpreter(), uvicornArgs(r.conf.App.Module, r.conf.App.ReloadDirs)...)
	cmd.Dir = appDir
	cmd.Env = environ
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	configureProcAttr(cmd)

	fmt.Println(util.Accented(fmt.Sprintf(
		"Starting %s from %s on http://%s:%d (reload enabled)...",
		r.conf.App.Module, r.conf.App.Dir, ServeHost, ServePort,
	)))

	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "failed to start uvicorn")
	}
	logger.Debugw("server started", "pid", cmd.Process.Pid, "dir", appDir)

	done := new(core.Fuse)
	ready := atomic.NewBool(false)

	watcher := newManifestWatcher(r.RootDir, r.conf.Env.Manifest)
	if err := watcher.Start(); err != nil {
		logger.Debugw("manifest watch unavailable", "error", err)
	}

	aux, auxCtx := errgroup.WithContext(ctx)
	aux.Go(func() error {
		probeServer(auxCtx, done, ready, opts.OpenBrowser)
		return nil
	})
	aux.Go(func() error {
		forwardShutdown(auxCtx, done, cmd)
		return nil
	})

	err := cmd.Wait()
	done.Break()
	watcher.Stop()
	_ = aux.Wait()

	if err != nil {
		code, ok := exitStatus(err)
		if !ok {
			return err
		}
		if !ready.Load() {
			logger.Warnw("server exited before becoming ready", nil, "status", code)
		}
		return ExitError{Code: code}
	}
	return nil
}

// forwardShutdown relays a cancel to the server's process group, then
// escalates if the group is still around after the grace period.
func forwardShutdown(ctx context.Context, done *core.Fuse, cmd *exec.Cmd) {
	select {
	case <-done.Watch():
		return
	case <-ctx.Done():
	}

	logger.Debugw("stopping server", "pid", cmd.Process.Pid)
	if err := signalServer(cmd, syscall.SIGINT); err != nil {
		return
	}

	select {
	case <-done.Watch():
	case <-time.After(shutdownGrace):
		_ = signalServer(cmd, syscall.SIGKILL)
	}
}
