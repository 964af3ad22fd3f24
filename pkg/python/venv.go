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

package python

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/serveup-dev/serveup/pkg/logger"
)

// Env is a virtual environment rooted at Dir. Dir may or may not exist
// yet; Create brings it into being and is never called when it does.
type Env struct {
	Dir string
}

func NewEnv(dir string) *Env {
	return &Env{Dir: dir}
}

func (e *Env) Exists() bool {
	info, err := os.Stat(e.Dir)
	return err == nil && info.IsDir()
}

// ScriptsDir returns the directory holding the environment's
// executables: bin on POSIX systems, Scripts on Windows.
func (e *Env) ScriptsDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(e.Dir, "Scripts")
	}
	return filepath.Join(e.Dir, "bin")
}

func (e *Env) Interpreter() string {
	name := "python"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(e.ScriptsDir(), name)
}

// HasInterpreter reports whether the environment looks usable, not just
// present. A half-created directory fails this.
func (e *Env) HasInterpreter() bool {
	info, err := os.Stat(e.Interpreter())
	return err == nil && !info.IsDir()
}

// Create builds the environment with the base interpreter's venv
// module. Output is captured and surfaced only on failure; the module
// is silent when it succeeds.
func (e *Env) Create(ctx context.Context, basePython string) error {
	logger.Debugw("creating virtual environment", "dir", e.Dir, "python", basePython)
	cmd := exec.CommandContext(ctx, basePython, "-m", "venv", e.Dir)
	if out, err := cmd.CombinedOutput(); err != nil {
		if len(out) > 0 {
			return fmt.Errorf("failed to create virtual environment: %w\n%s", err, strings.TrimSpace(string(out)))
		}
		return fmt.Errorf("failed to create virtual environment: %w", err)
	}
	return nil
}

// Activate returns a copy of environ adjusted the way the environment's
// activate script would adjust a shell: VIRTUAL_ENV set, the scripts
// directory prepended to PATH, and PYTHONHOME dropped.
func (e *Env) Activate(environ []string) []string {
	scripts := e.ScriptsDir()
	out := make([]string, 0, len(environ)+2)
	out = append(out, "VIRTUAL_ENV="+e.Dir)

	pathSeen := false
	for _, kv := range environ {
		key, value, found := strings.Cut(kv, "=")
		if !found {
			out = append(out, kv)
			continue
		}
		switch {
		case strings.EqualFold(key, "PYTHONHOME"), key == "VIRTUAL_ENV":
			// dropped
		case strings.EqualFold(key, "PATH"):
			pathSeen = true
			out = append(out, key+"="+scripts+string(os.PathListSeparator)+value)
		default:
			out = append(out, kv)
		}
	}
	if !pathSeen {
		out = append(out, "PATH="+scripts)
	}

	return out
}
