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

package main

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/serveup-dev/serveup/pkg/python"
	"github.com/serveup-dev/serveup/pkg/util"
)

var EnvCommands = []*cli.Command{
	{
		Name:     "env",
		Usage:    "Inspect the project's virtual environment",
		Category: "Core",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show the environment's location, interpreter, and sync state",
				UsageText: "serveup env show",
				Action:    showEnv,
				Flags: []cli.Flag{
					jsonFlag,
				},
			},
		},
	},
}

type envDetails struct {
	Dir         string            `json:"dir"`
	Exists      bool              `json:"exists"`
	Interpreter string            `json:"interpreter,omitempty"`
	Python      string            `json:"python,omitempty"`
	ScriptsDir  string            `json:"scripts_dir,omitempty"`
	Defaults    map[string]string `json:"defaults,omitempty"`
	Synced      bool              `json:"synced"`
}

func showEnv(ctx context.Context, cmd *cli.Command) error {
	if err := noArgs(cmd); err != nil {
		return err
	}
	runner, err := newRunner(cmd)
	if err != nil {
		return err
	}

	env := runner.Env()
	details := envDetails{
		Dir:      env.Dir,
		Exists:   env.Exists() && env.HasInterpreter(),
		Defaults: runner.Config().Env.Defaults,
		Synced:   runner.InSync(),
	}
	if details.Exists {
		details.Interpreter = env.Interpreter()
		details.ScriptsDir = env.ScriptsDir()
		if interp, err := python.Probe(ctx, env.Interpreter()); err == nil {
			details.Python = interp.Version.Original()
		}
	}

	if cmd.Bool("json") {
		util.PrintJSON(details)
		return nil
	}

	fmt.Println("Environment:", util.Accented(details.Dir))
	if !details.Exists {
		fmt.Println(util.WarningStyle.Render("Not created yet. It will be on the next `serveup run` or `serveup sync`."))
		return nil
	}
	fmt.Println("Interpreter:", details.Interpreter)
	if details.Python != "" {
		fmt.Println("Python:     ", details.Python)
	}
	fmt.Println("PATH entry: ", details.ScriptsDir)
	if details.Synced {
		fmt.Println("Requirements:", util.SuccessStyle.Render("in sync"))
	} else {
		fmt.Println("Requirements:", util.WarningStyle.Render("out of sync, run `serveup sync`"))
	}
	if len(details.Defaults) > 0 {
		fmt.Println("Seeded defaults:")
		for _, key := range slices.Sorted(maps.Keys(details.Defaults)) {
			fmt.Println("  " + key + "=" + details.Defaults[key])
		}
	}
	return nil
}
