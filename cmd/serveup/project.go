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
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"

	"github.com/serveup-dev/serveup/pkg/config"
	"github.com/serveup-dev/serveup/pkg/util"
)

var (
	ProjectCommands = []*cli.Command{
		{
			Name:   "project",
			Usage:  "Register project directories so they can be run from anywhere",
			Before: loadProjectConfig,
			Commands: []*cli.Command{
				{
					Name:      "add",
					Usage:     "Register an existing project directory under a name",
					UsageText: "serveup project add PROJECT_NAME",
					ArgsUsage: "PROJECT_NAME",
					Action:    addProject,
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "dir",
							Usage: "`PATH` to the project root, defaults to the current directory",
						},
						&cli.BoolFlag{
							Name:  "default",
							Usage: "Set this project as the default",
						},
					},
				},
				{
					Name:      "list",
					Usage:     "List all registered projects",
					UsageText: "serveup project list",
					Action:    listProjects,
					Flags:     []cli.Flag{jsonFlag},
				},
				{
					Name:      "remove",
					Usage:     "Remove a project from the registry",
					UsageText: "serveup project remove PROJECT_NAME",
					ArgsUsage: "PROJECT_NAME",
					Action:    removeProject,
				},
				{
					Name:      "set-default",
					Usage:     "Set a project as default to use with other commands",
					UsageText: "serveup project set-default PROJECT_NAME",
					ArgsUsage: "PROJECT_NAME",
					Action:    setDefaultProject,
				},
			},
		},
	}

	cliConfig      *config.CLIConfig
	defaultProject *config.ProjectConfig
)

func loadProjectConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	conf, err := config.LoadOrCreate()
	if err != nil {
		return ctx, err
	}
	cliConfig = conf

	if cliConfig.DefaultProject != "" {
		for _, p := range cliConfig.Projects {
			if p.Name == cliConfig.DefaultProject {
				defaultProject = &p
				break
			}
		}
	}
	return ctx, nil
}

func addProject(ctx context.Context, cmd *cli.Command) error {
	p := config.ProjectConfig{}
	var err error
	var prompts []huh.Field

	validateName := func(val string) error {
		if !nameRegex.MatchString(val) {
			return errors.New("name can only contain alphanumeric characters, dashes and underscores")
		}
		if cliConfig.ProjectExists(val) {
			return errors.New("name already exists")
		}
		return nil
	}

	if p.Name = cmd.Args().Get(0); p.Name != "" {
		if err = validateName(p.Name); err != nil {
			return err
		}
		fmt.Println("  Project Name:", p.Name)
	} else {
		prompts = append(prompts, huh.NewInput().
			Title("Project Name").
			Placeholder("my-project").
			Validate(validateName).
			Value(&p.Name))
	}

	validateDir := func(val string) error {
		abs, err := filepath.Abs(val)
		if err != nil {
			return err
		}
		if !util.DirExists(abs) {
			return errors.New("directory does not exist")
		}
		return nil
	}
	if p.Dir = cmd.String("dir"); p.Dir != "" {
		if err = validateDir(p.Dir); err != nil {
			return err
		}
		fmt.Println("  Directory:", p.Dir)
	} else if !util.Interactive() {
		p.Dir = "."
	} else {
		prompts = append(prompts, huh.NewInput().
			Title("Project Directory").
			Placeholder(".").
			Validate(validateDir).
			Value(&p.Dir))
	}

	isDefault := false
	if cmd.Bool("default") || defaultProject == nil {
		cliConfig.DefaultProject = p.Name
	} else if !cmd.IsSet("default") {
		prompts = append(prompts, huh.NewConfirm().
			Title("Make this project default?").
			Value(&isDefault).
			Inline(true).
			WithTheme(util.Theme))
	}

	if len(prompts) > 0 {
		var groups []*huh.Group
		for _, p := range prompts {
			groups = append(groups, huh.NewGroup(p))
		}
		err = huh.NewForm(groups...).
			WithTheme(util.Theme).
			RunWithContext(ctx)
		if err != nil {
			return err
		}
		if isDefault {
			cliConfig.DefaultProject = p.Name
		}
	}

	if p.Dir == "" {
		p.Dir = "."
	}
	// store absolute paths, entries must resolve from any working directory
	if p.Dir, err = filepath.Abs(p.Dir); err != nil {
		return err
	}

	cliConfig.Projects = append(cliConfig.Projects, p)

	if err = cliConfig.PersistIfNeeded(); err != nil {
		return err
	}

	listProjects(ctx, cmd)

	return nil
}

func listProjects(ctx context.Context, cmd *cli.Command) error {
	if len(cliConfig.Projects) == 0 {
		fmt.Println("No projects registered, use `serveup project add` or `serveup init`.")
		return nil
	}

	baseStyle := util.FormBaseStyle
	headerStyle := util.FormHeaderStyle
	selectedStyle := util.Theme.Focused.Title.Padding(0, 1)

	if cmd.Bool("json") {
		util.PrintJSON(cliConfig.Projects)
	} else {
		t := util.CreateTable().
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headerStyle
				case cliConfig.Projects[row].Name == cliConfig.DefaultProject:
					return selectedStyle
				default:
					return baseStyle
				}
			}).
			Headers("Name", "Directory")
		for _, p := range cliConfig.Projects {
			var pName string
			if p.Name == cliConfig.DefaultProject {
				pName = "* " + p.Name
			} else {
				pName = "  " + p.Name
			}
			t.Row(pName, util.EllipsizeTo(p.Dir, 56))
		}
		fmt.Println(t)
	}

	return nil
}

func removeProject(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() == 0 {
		_ = cli.ShowSubcommandHelp(cmd)
		return errors.New("project name is required")
	}
	name := cmd.Args().First()
	return cliConfig.RemoveProject(name)
}

func setDefaultProject(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() == 0 {
		_ = cli.ShowSubcommandHelp(cmd)
		return errors.New("project name is required")
	}
	name := cmd.Args().First()

	for _, p := range cliConfig.Projects {
		if p.Name != name {
			continue
		}

		cliConfig.DefaultProject = p.Name
		if err := cliConfig.PersistIfNeeded(); err != nil {
			return err
		}
		fmt.Println("Default project set to [" + util.Theme.Focused.Title.Render(p.Name) + "]")
		return nil
	}

	return errors.New("project not found")
}
