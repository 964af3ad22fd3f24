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
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	serveup "github.com/serveup-dev/serveup"
	"github.com/serveup-dev/serveup/pkg/bootstrap"
	"github.com/serveup-dev/serveup/pkg/logger"
)

func main() {
	app := &cli.Command{
		Name:                   "serveup",
		Usage:                  "Zero-setup dev server for Python web projects",
		Description:            "Creates the virtual environment, installs the requirements manifest, and starts uvicorn with reload, replacing the usual run script. Projects following the conventional layout need no configuration at all.",
		Version:                serveup.Version,
		EnableShellCompletion:  true,
		Suggest:                true,
		HideHelpCommand:        true,
		UseShortOptionHandling: true,
		Flags:                  globalFlags,
		Commands: []*cli.Command{
			{
				Name:   "generate-fish-completion",
				Action: generateFishCompletion,
				Hidden: true,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
					},
				},
			},
		},
		Before: initLogger,
	}

	app.Commands = append(app.Commands, RunCommands...)
	app.Commands = append(app.Commands, DoctorCommands...)
	app.Commands = append(app.Commands, EnvCommands...)
	app.Commands = append(app.Commands, InitCommands...)
	app.Commands = append(app.Commands, ProjectCommands...)

	// Register cleanup hook for SIGINT, SIGTERM, SIGQUIT
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	// Cleanup on hooked signals, remembering to flush stdout
	// before exit to prevent line rag in case of SIGINT
	go func() {
		<-ctx.Done()
		stop()
	}()

	if err := app.Run(ctx, os.Args); err != nil {
		// a child's status passes through as our own; the bare status
		// alone is not worth a line, the child already said its piece
		var exitErr bootstrap.ExitError
		if errors.As(err, &exitErr) {
			if err.Error() != exitErr.Error() {
				fmt.Fprintln(os.Stderr, err)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	logConfig := &logger.Config{
		Level: "info",
		JSON:  cmd.Bool("json-logs"),
	}
	if cmd.Bool("verbose") {
		logConfig.Level = "debug"
	}
	logger.InitFromConfig(logConfig, "serveup")

	return nil, nil
}

func generateFishCompletion(ctx context.Context, cmd *cli.Command) error {
	fishScript, err := cmd.ToFishCompletion()
	if err != nil {
		return err
	}

	outPath := cmd.String("out")
	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(fishScript), 0o644); err != nil {
			return err
		}
	} else {
		fmt.Println(fishScript)
	}

	return nil
}
