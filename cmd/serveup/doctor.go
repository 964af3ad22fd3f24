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
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"

	"github.com/serveup-dev/serveup/pkg/doctor"
	"github.com/serveup-dev/serveup/pkg/util"
)

var DoctorCommands = []*cli.Command{
	{
		Name:      "doctor",
		Usage:     "Check that the project and this machine are ready to run",
		UsageText: "serveup doctor",
		Category:  "Core",
		Action:    runDoctor,
		Flags: []cli.Flag{
			jsonFlag,
		},
	},
}

func runDoctor(ctx context.Context, cmd *cli.Command) error {
	if err := noArgs(cmd); err != nil {
		return err
	}
	runner, err := newRunner(cmd)
	if err != nil {
		return err
	}

	var report *doctor.Report
	diagnose := func(ctx context.Context) error {
		report = doctor.Diagnose(ctx, runner)
		return nil
	}
	if cmd.Bool("json") {
		_ = diagnose(ctx)
	} else if err := util.Await("Checking project...", ctx, diagnose); err != nil {
		return err
	}

	if cmd.Bool("json") {
		util.PrintJSON(report)
	} else {
		printReport(report)
	}

	if report.Failed() {
		return errors.New("some checks failed")
	}
	return nil
}

func printReport(report *doctor.Report) {
	t := util.CreateTable().
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return util.FormHeaderStyle
			}
			if col == 1 {
				switch report.Checks[row].Status {
				case doctor.StatusOK:
					return util.SuccessStyle.Padding(0, 1)
				case doctor.StatusWarn:
					return util.WarningStyle.Padding(0, 1)
				default:
					return util.ErrorStyle.Padding(0, 1)
				}
			}
			return util.FormBaseStyle
		}).
		Headers("Check", "Status", "Detail")
	for _, c := range report.Checks {
		detail := strings.Join(util.WrapToLines(c.Detail, 56), "\n")
		t.Row(c.Name, string(c.Status), detail)
	}
	fmt.Println(t)

	host := report.Host
	fmt.Println(util.Dimmed(fmt.Sprintf(
		"%s (%s), %d CPUs at %.0f%%, %s available of %s",
		host.OS, host.Platform, host.CPUs, host.CPUPercent,
		formatBytes(host.MemAvailable), formatBytes(host.MemTotal),
	)))
}

func formatBytes(b uint64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(b)/(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(b)/(1<<20))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
