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

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/serveup-dev/serveup/pkg/bootstrap"
	"github.com/serveup-dev/serveup/pkg/config"
	"github.com/serveup-dev/serveup/pkg/util"
)

var (
	tomlFilename string = config.ServeupTOMLFile

	jsonFlag = &cli.BoolFlag{
		Name:    "json",
		Aliases: []string{"j"},
		Usage:   "Output as JSON",
	}
	openFlag = &cli.BoolFlag{
		Name:  "open",
		Usage: "Open the server in your browser once it responds",
	}

	globalFlags = []cli.Flag{
		&cli.StringFlag{
			Name:    "project",
			Usage:   "`NAME` of a registered project to run instead of the current directory",
			Sources: cli.EnvVars("SERVEUP_PROJECT"),
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Config `TOML` to use in the project directory",
			Value:       config.ServeupTOMLFile,
			Destination: &tomlFilename,
			Required:    false,
		},
		&cli.BoolFlag{
			Name:     "verbose",
			Required: false,
		},
		&cli.BoolFlag{
			Name:  "silent",
			Usage: "Suppress status output",
		},
		&cli.BoolFlag{
			Name:    "json-logs",
			Usage:   "Emit diagnostics as JSON lines",
			Sources: cli.EnvVars("SERVEUP_JSON_LOGS"),
		},
	}
)

// resolveProjectDir decides which project the command acts on:
//  1. the --project flag (or SERVEUP_PROJECT), via the registry
//  2. the current working directory
func resolveProjectDir(cmd *cli.Command) (string, error) {
	if name := cmd.String("project"); name != "" {
		pc, err := config.LoadProject(name)
		if err != nil {
			return "", err
		}
		if !cmd.Bool("silent") {
			fmt.Println("Using project [" + util.Accented(pc.Name) + "]")
		}
		return pc.Dir, nil
	}

	return os.Getwd()
}

// newRunner loads the project's config, defaults and all, and prepares
// a runner rooted at the resolved project directory.
func newRunner(cmd *cli.Command) (*bootstrap.Runner, error) {
	dir, err := resolveProjectDir(cmd)
	if err != nil {
		return nil, err
	}

	conf, exists, err := config.LoadTOMLFile(dir, tomlFilename)
	if err != nil {
		return nil, err
	}
	if exists && cmd.Bool("verbose") {
		fmt.Println("Using config [" + util.Accented(filepath.Join(dir, tomlFilename)) + "]")
	}

	runner := bootstrap.NewRunner(dir, conf)
	runner.Verbose = cmd.Bool("verbose")
	return runner, nil
}

func noArgs(cmd *cli.Command) error {
	if cmd.NArg() > 0 {
		return errors.New(cmd.Name + " takes no arguments")
	}
	return nil
}
