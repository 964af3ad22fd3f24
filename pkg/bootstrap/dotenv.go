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
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/joho/godotenv"
)

type PromptFunc func(key string, value string) (string, error)

// Recursively walk the project, reading in any .env.example file if
// present in that directory, replacing all `substitutions`, prompting
// for others, and writing to .env in that directory.
func InstantiateDotEnv(ctx context.Context, rootDir string, substitutions map[string]string, verbose bool, prompt PromptFunc) error {
	promptedVars := map[string]string{}

	return filepath.WalkDir(rootDir, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() && isSkippedDir(d.Name()) {
			return filepath.SkipDir
		}

		if d.Name() == EnvExampleFile {
			envMap, err := godotenv.Read(filePath)
			if err != nil {
				return err
			}

			for key, oldValue := range envMap {
				// if key is a substitution, replace it
				if value, ok := substitutions[key]; ok {
					envMap[key] = value
					// if key was already prompted, use that value
				} else if alreadyPromptedValue, ok := promptedVars[key]; ok {
					envMap[key] = alreadyPromptedValue
				} else {
					// prompt for value
					newValue, err := prompt(key, oldValue)
					if err != nil {
						return err
					}
					envMap[key] = newValue
					promptedVars[key] = newValue
				}
			}

			envContents, err := godotenv.Marshal(envMap)
			if err != nil {
				return err
			}

			envLocalPath := path.Join(path.Dir(filePath), EnvLocalFile)
			if err := os.WriteFile(envLocalPath, []byte(envContents), 0600); err != nil {
				return err
			}
		}

		return nil
	})
}

// SeedDefaults fills missing keys of the project's .env file from the
// configured defaults, never touching keys the user already set. A
// missing .env file is created when there is anything to write.
func SeedDefaults(rootDir string, defaults map[string]string) error {
	if len(defaults) == 0 {
		return nil
	}

	envPath := path.Join(rootDir, EnvLocalFile)
	envMap := map[string]string{}
	if _, err := os.Stat(envPath); err == nil {
		envMap, err = godotenv.Read(envPath)
		if err != nil {
			return err
		}
	}

	changed := false
	for key, value := range defaults {
		if _, ok := envMap[key]; !ok {
			envMap[key] = value
			changed = true
		}
	}
	if !changed {
		return nil
	}

	envContents, err := godotenv.Marshal(envMap)
	if err != nil {
		return err
	}
	return os.WriteFile(envPath, []byte(envContents), 0600)
}

// directories that never hold an .env.example worth instantiating
func isSkippedDir(name string) bool {
	switch name {
	case ".git", "node_modules", "__pycache__", ".venv", "venv":
		return true
	}
	return false
}
