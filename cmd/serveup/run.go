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
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/serveup-dev/serveup/pkg/bootstrap"
	"github.com/serveup-dev/serveup/pkg/util"
)

var RunCommands = []*cli.Command{
	{
		Name:      "run",
		Usage:     "Prepare the environment and start the dev server in the foreground",
		UsageText: "serveup run",
		Category:  "Core",
		Action:    runServer,
		Flags: []cli.Flag{
			openFlag,
		},
	},
	{
		Name:      "sync",
		Usage:     "Create the environment and install requirements without starting the server",
		UsageText: "serveup sync",
		Category:  "Core",
		Action:    syncProject,
	},
}

func runServer(ctx context.Context, cmd *cli.Command) error {
	if err := noArgs(cmd); err != nil {
		return err
	}
	runner, err := newRunner(cmd)
	if err != nil {
		return err
	}
	return runner.Run(ctx, bootstrap.RunOptions{
		OpenBrowser: cmd.Bool("open"),
	})
}

func syncProject(ctx context.Context, cmd *cli.Command) error {
	if err := noArgs(cmd); err != nil {
		return err
	}
	runner, err := newRunner(cmd)
	if err != nil {
		return err
	}
	if _, err := runner.Sync(ctx); err != nil {
		return err
	}
	if !cmd.Bool("silent") {
		fmt.Println(util.SuccessStyle.Render("Project is ready. Start it with `serveup run`."))
	}
	return nil
}
