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
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/serveup-dev/serveup/pkg/bootstrap"
	"github.com/serveup-dev/serveup/pkg/config"
	"github.com/serveup-dev/serveup/pkg/logger"
	"github.com/serveup-dev/serveup/pkg/util"
)

var (
	initName     string
	initRegister bool
	nameRegex    = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)

	InitCommands = []*cli.Command{
		{
			Name:      "init",
			Usage:     "Scaffold a runnable project in a new directory",
			UsageText: "serveup init PROJECT_NAME",
			ArgsUsage: "`PROJECT_NAME`",
			Category:  "Core",
			Action:    initProject,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "register",
					Usage:       "Register the project so it can be run from anywhere with --project",
					Destination: &initRegister,
				},
			},
		},
	}
)

const starterApp = `from fastapi import FastAPI

app = FastAPI()


@app.get("/api/health")
async def health() -> dict[str, str]:
    return {"status": "ok"}
`

const starterRequirements = `fastapi
uvicorn[standard]
`

const starterEnvExample = `APP_NAME=myapp
DEBUG=true
`

func initProject(ctx context.Context, cmd *cli.Command) error {
	var prompts []huh.Field

	validateName := func(s string) error {
		if len(s) < 3 {
			return errors.New("name is too short")
		}
		if !nameRegex.MatchString(s) {
			return errors.New("try a simpler name")
		}
		if s, _ := os.Stat(s); s != nil {
			return errors.New("that name is in use")
		}
		return nil
	}

	initName = cmd.Args().First()
	if initName == "" {
		if !util.Interactive() {
			return errors.New("project name is required")
		}
		prompts = append(prompts, huh.NewInput().
			Title("Project Name").
			Placeholder("my-app").
			Value(&initName).
			Validate(validateName).
			WithTheme(util.Theme))
	} else if err := validateName(initName); err != nil {
		return err
	}

	if !cmd.IsSet("register") && util.Interactive() {
		prompts = append(prompts, huh.NewConfirm().
			Title("Register the project for use with --project?").
			Value(&initRegister).
			Inline(true).
			WithTheme(util.Theme))
	}

	if len(prompts) > 0 {
		var groups []*huh.Group
		for _, p := range prompts {
			groups = append(groups, huh.NewGroup(p))
		}
		if err := huh.NewForm(groups...).
			WithTheme(util.Theme).
			RunWithContext(ctx); err != nil {
			return err
		}
	}

	if err := writeScaffold(initName); err != nil {
		return err
	}

	// turn the example into a live .env, substituting what we know
	if err := bootstrap.InstantiateDotEnv(ctx, initName,
		map[string]string{"APP_NAME": initName},
		cmd.Bool("verbose"),
		func(key, value string) (string, error) {
			return value, nil
		}); err != nil {
		return err
	}

	// the scaffold ships a .gitignore, so start the repository too
	if bootstrap.CommandExists("git") {
		gitInit := exec.Command("git", "init", "--quiet")
		gitInit.Dir = initName
		if err := gitInit.Run(); err != nil {
			logger.Debugw("git init failed", "error", err)
		}
	}

	if initRegister {
		if err := registerProject(initName); err != nil {
			return err
		}
	}

	fmt.Println(util.SuccessStyle.Render("Project created."))
	fmt.Printf("Next: cd %s && serveup run\n", initName)
	return nil
}

func writeScaffold(name string) error {
	conf := config.NewServeupTOML()

	// assemble in a temporary directory so a failed scaffold leaves
	// nothing half-written behind
	tmp, relocate, cleanup := util.UseTempPath(name)
	defer cleanup()

	appDir := filepath.Join(tmp, conf.App.Dir)
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return err
	}

	files := []struct {
		path    string
		content string
	}{
		{filepath.Join(appDir, "main.py"), starterApp},
		{filepath.Join(tmp, conf.Env.Manifest), starterRequirements},
		{filepath.Join(tmp, ".env.example"), starterEnvExample},
		{filepath.Join(tmp, ".gitignore"), conf.Env.Dir + "/\n.env\n__pycache__/\n"},
	}
	for _, f := range files {
		if err := os.WriteFile(f.path, []byte(f.content), 0644); err != nil {
			return err
		}
	}
	if err := conf.SaveTOMLFile(tmp, config.ServeupTOMLFile); err != nil {
		return err
	}

	return relocate()
}

func registerProject(name string) error {
	cliConfig, err := config.LoadOrCreate()
	if err != nil {
		return err
	}
	if cliConfig.ProjectExists(name) {
		return fmt.Errorf("a project named %q is already registered", name)
	}

	dir, err := filepath.Abs(name)
	if err != nil {
		return err
	}
	cliConfig.Projects = append(cliConfig.Projects, config.ProjectConfig{
		Name: name,
		Dir:  dir,
	})
	if cliConfig.DefaultProject == "" {
		cliConfig.DefaultProject = name
	}
	return cliConfig.PersistIfNeeded()
}
