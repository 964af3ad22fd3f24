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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Routes the registry into a throwaway home directory.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func TestLoadOrCreateEmpty(t *testing.T) {
	home := isolateHome(t)

	conf, err := LoadOrCreate()
	require.NoError(t, err)
	assert.Empty(t, conf.Projects)
	assert.Empty(t, conf.DefaultProject)

	// nothing registered, nothing to write
	require.NoError(t, conf.PersistIfNeeded())
	_, err = os.Stat(filepath.Join(home, ".serveup", "cli-config.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestRegistryRoundTrip(t *testing.T) {
	isolateHome(t)

	conf, err := LoadOrCreate()
	require.NoError(t, err)
	conf.Projects = append(conf.Projects, ProjectConfig{Name: "todo-api", Dir: "/home/dev/todo/backend"})
	conf.DefaultProject = "todo-api"
	require.NoError(t, conf.PersistIfNeeded())

	reloaded, err := LoadOrCreate()
	require.NoError(t, err)
	require.Len(t, reloaded.Projects, 1)
	assert.Equal(t, "todo-api", reloaded.Projects[0].Name)
	assert.Equal(t, "/home/dev/todo/backend", reloaded.Projects[0].Dir)
	assert.Equal(t, "todo-api", reloaded.DefaultProject)

	byName, err := LoadProject("todo-api")
	require.NoError(t, err)
	assert.Equal(t, "/home/dev/todo/backend", byName.Dir)

	_, err = LoadProject("nope")
	assert.Error(t, err)
}

func TestProjectExistsIsCaseInsensitive(t *testing.T) {
	conf := &CLIConfig{Projects: []ProjectConfig{{Name: "Todo-API", Dir: "/tmp/x"}}}
	assert.True(t, conf.ProjectExists("todo-api"))
	assert.False(t, conf.ProjectExists("other"))
}

func TestRemoveProjectClearsDefault(t *testing.T) {
	isolateHome(t)

	conf, err := LoadOrCreate()
	require.NoError(t, err)
	conf.Projects = append(conf.Projects,
		ProjectConfig{Name: "one", Dir: "/tmp/one"},
		ProjectConfig{Name: "two", Dir: "/tmp/two"},
	)
	conf.DefaultProject = "one"
	require.NoError(t, conf.PersistIfNeeded())

	require.NoError(t, conf.RemoveProject("one"))

	reloaded, err := LoadOrCreate()
	require.NoError(t, err)
	require.Len(t, reloaded.Projects, 1)
	assert.Equal(t, "two", reloaded.Projects[0].Name)
	assert.Empty(t, reloaded.DefaultProject)
}
