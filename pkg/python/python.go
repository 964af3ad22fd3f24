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

// Package python locates base interpreters and manages virtual
// environments. It shells out for everything: version resolution,
// environment creation, and package installation stay the
// interpreter's job.
package python

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/serveup-dev/serveup/pkg/logger"
)

var (
	ErrNotFound = errors.New("no python interpreter found in PATH")

	versionOutputPattern = regexp.MustCompile(`Python\s+(\S+)`)
)

// Interpreter is a resolved python executable.
type Interpreter struct {
	Path    string
	Version *semver.Version
}

func candidates() []string {
	if runtime.GOOS == "windows" {
		return []string{"py", "python", "python3"}
	}
	return []string{"python3", "python"}
}

// Find locates a base interpreter on PATH, preferring python3.
func Find() (string, error) {
	for _, name := range candidates() {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		logger.Debugw("found python interpreter", "name", name, "path", path)
		return path, nil
	}
	return "", ErrNotFound
}

// Probe runs `path --version` and parses the reported version. Release
// candidates and other PyPI-style prerelease forms are accepted.
func Probe(ctx context.Context, path string) (*Interpreter, error) {
	out, err := exec.CommandContext(ctx, path, "--version").CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("failed to run %s --version: %w", path, err)
	}

	matches := versionOutputPattern.FindStringSubmatch(string(out))
	if matches == nil {
		return nil, fmt.Errorf("unexpected version output from %s: %q", path, strings.TrimSpace(string(out)))
	}

	version, err := semver.NewVersion(normalizeVersion(matches[1]))
	if err != nil {
		return nil, fmt.Errorf("unparseable interpreter version %q: %w", matches[1], err)
	}

	return &Interpreter{Path: path, Version: version}, nil
}

// Meets reports whether the interpreter satisfies the configured
// minimum version. An empty minimum always passes.
func (i *Interpreter) Meets(minVersion string) (bool, error) {
	if minVersion == "" {
		return true, nil
	}
	return Satisfies(i.Version.Original(), minVersion)
}

func (i *Interpreter) String() string {
	return fmt.Sprintf("%s (%s)", i.Path, i.Version)
}
