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

package python

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"

	"github.com/serveup-dev/serveup/pkg/util"
)

type ProjectType string

const (
	ProjectTypePip     ProjectType = "python.pip"
	ProjectTypeUV      ProjectType = "python.uv"
	ProjectTypePoetry  ProjectType = "python.poetry"
	ProjectTypeNode    ProjectType = "node"
	ProjectTypeUnknown ProjectType = "unknown"
)

func (p ProjectType) IsPython() bool {
	return p == ProjectTypePip || p == ProjectTypeUV || p == ProjectTypePoetry
}

func (p ProjectType) Lang() string {
	switch {
	case p.IsPython():
		return "Python"
	case p == ProjectTypeNode:
		return "Node.js"
	default:
		return ""
	}
}

// LocateLockfile returns the highest-priority dependency file present
// for the project type. Actual lock files win over manifests.
func LocateLockfile(dir string, p ProjectType) (bool, string) {
	var filesToCheck []string

	switch p {
	case ProjectTypePip:
		filesToCheck = []string{
			"requirements.lock",
			"pyproject.toml",
			"requirements.txt",
		}
	case ProjectTypeUV:
		filesToCheck = []string{
			"uv.lock",
			"pyproject.toml",
			"requirements.txt",
		}
	case ProjectTypePoetry:
		filesToCheck = []string{
			"poetry.lock",
			"pyproject.toml",
		}
	default:
		return false, ""
	}

	for _, filename := range filesToCheck {
		if util.FileExists(dir, filename) {
			return true, filename
		}
	}

	return false, ""
}

// DetectProjectType determines how a project declares its dependencies
// by checking for lock files and manifest content in priority order.
func DetectProjectType(dir string) (ProjectType, error) {
	// A Node project is not servable here, but naming it beats "unknown"
	if util.FileExists(dir, "package.json") || util.FileExists(dir, "yarn.lock") || util.FileExists(dir, "package-lock.json") {
		return ProjectTypeNode, nil
	}

	// 1. uv.lock is the most definitive UV indicator
	if util.FileExists(dir, "uv.lock") {
		return ProjectTypeUV, nil
	}

	// 2. poetry.lock likewise for Poetry
	if util.FileExists(dir, "poetry.lock") {
		return ProjectTypePoetry, nil
	}

	// 3. Pipenv and PDM locks are pip-compatible for our purposes
	if util.FileExists(dir, "Pipfile.lock") || util.FileExists(dir, "pdm.lock") {
		return ProjectTypePip, nil
	}

	// 4. classic pip setup
	if util.FileExists(dir, "requirements.txt") {
		return ProjectTypePip, nil
	}

	// 5. fall back to pyproject.toml tool tables
	if util.FileExists(dir, "pyproject.toml") {
		data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
		if err == nil {
			var doc map[string]any
			if err := toml.Unmarshal(data, &doc); err == nil {
				if tool, ok := doc["tool"].(map[string]any); ok {
					if _, hasPoetry := tool["poetry"]; hasPoetry {
						return ProjectTypePoetry, nil
					}
					if _, hasPdm := tool["pdm"]; hasPdm {
						return ProjectTypePip, nil
					}
					if _, hasHatch := tool["hatch"]; hasHatch {
						return ProjectTypePip, nil
					}
					if _, hasUv := tool["uv"]; hasUv {
						return ProjectTypeUV, nil
					}
				}

				if isUVByContent(string(data)) {
					return ProjectTypeUV, nil
				}
			}
		}
		// pyproject.toml present but not informative
		return ProjectTypePip, nil
	}

	return ProjectTypeUnknown, errors.New("project type could not be identified; expected requirements.txt, pyproject.toml, or a lock file")
}

// isUVByContent identifies UV projects by pyproject.toml content without
// misclassifying setuptools or poetry projects.
func isUVByContent(content string) bool {
	// [dependency-groups] and [tool.uv] are UV-only sections; "uv sync"
	// shows up in script definitions.
	return strings.Contains(content, "[dependency-groups]") ||
		strings.Contains(content, "uv sync") ||
		strings.Contains(content, "[tool.uv]")
}
