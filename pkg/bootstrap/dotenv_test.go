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

package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstantiateDotEnv(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(root, ".env.example"),
		[]byte("API_URL=http://localhost:8000\nSECRET_KEY=changeme\n"),
		0644,
	))
	sub := filepath.Join(root, "worker")
	require.NoError(t, os.MkdirAll(sub, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(sub, ".env.example"),
		[]byte("SECRET_KEY=changeme\n"),
		0644,
	))
	skipped := filepath.Join(root, "venv")
	require.NoError(t, os.MkdirAll(skipped, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(skipped, ".env.example"),
		[]byte("IGNORED=yes\n"),
		0644,
	))

	prompted := 0
	err := InstantiateDotEnv(context.Background(), root,
		map[string]string{"API_URL": "http://localhost:9000"},
		false,
		func(key, value string) (string, error) {
			prompted++
			assert.Equal(t, "SECRET_KEY", key)
			assert.Equal(t, "changeme", value)
			return "s3cret", nil
		})
	require.NoError(t, err)

	// one prompt, reused for the second occurrence of the same key
	assert.Equal(t, 1, prompted)

	envMap, err := godotenv.Read(filepath.Join(root, ".env"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", envMap["API_URL"])
	assert.Equal(t, "s3cret", envMap["SECRET_KEY"])

	subMap, err := godotenv.Read(filepath.Join(sub, ".env"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", subMap["SECRET_KEY"])

	_, err = os.Stat(filepath.Join(skipped, ".env"))
	assert.True(t, os.IsNotExist(err), "env dirs are not instantiated")
}

func TestSeedDefaults(t *testing.T) {
	root := t.TempDir()
	envPath := filepath.Join(root, ".env")

	// creates the file when absent
	require.NoError(t, SeedDefaults(root, map[string]string{"DEBUG": "true"}))
	envMap, err := godotenv.Read(envPath)
	require.NoError(t, err)
	assert.Equal(t, "true", envMap["DEBUG"])

	// fills gaps without clobbering what the user set
	require.NoError(t, os.WriteFile(envPath, []byte("DEBUG=false\n"), 0644))
	require.NoError(t, SeedDefaults(root, map[string]string{"DEBUG": "true", "PORT_HINT": "8000"}))
	envMap, err = godotenv.Read(envPath)
	require.NoError(t, err)
	assert.Equal(t, "false", envMap["DEBUG"])
	assert.Equal(t, "8000", envMap["PORT_HINT"])
}

func TestSeedDefaultsNoop(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, SeedDefaults(root, nil))
	_, err := os.Stat(filepath.Join(root, ".env"))
	assert.True(t, os.IsNotExist(err), "nothing to seed, nothing written")
}
