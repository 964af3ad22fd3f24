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

// Package doctor inspects a project and the machine it runs on,
// reporting anything that would make `serveup run` fail before it
// does.
package doctor

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/serveup-dev/serveup/pkg/bootstrap"
	"github.com/serveup-dev/serveup/pkg/python"
	"github.com/serveup-dev/serveup/pkg/requirements"
	"github.com/serveup-dev/serveup/pkg/util"
)

type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

type Check struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail"`
}

type HostInfo struct {
	OS           string  `json:"os"`
	Platform     string  `json:"platform"`
	CPUs         int     `json:"cpus"`
	CPUPercent   float64 `json:"cpu_percent"`
	MemTotal     uint64  `json:"mem_total"`
	MemAvailable uint64  `json:"mem_available"`
}

type Report struct {
	Checks []Check  `json:"checks"`
	Host   HostInfo `json:"host"`
}

// Failed reports whether any check would stop a run outright.
func (r *Report) Failed() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return true
		}
	}
	return false
}

func (r *Report) add(name string, status Status, format string, args ...any) {
	r.Checks = append(r.Checks, Check{
		Name:   name,
		Status: status,
		Detail: fmt.Sprintf(format, args...),
	})
}

// Diagnose runs every check against the runner's project. It never
// modifies anything.
func Diagnose(ctx context.Context, runner *bootstrap.Runner) *Report {
	r := &Report{}
	conf := runner.Config()

	checkInterpreter(ctx, r, conf.Env.MinPython)
	checkEnv(r, runner)
	checkManifest(r, runner)
	checkSyncState(r, runner)
	checkAppModule(r, runner)
	checkProjectType(r, runner.RootDir)
	checkPort(r)
	r.Host = collectHostInfo(ctx)

	return r
}

func checkInterpreter(ctx context.Context, r *Report, minPython string) {
	path, err := python.Find()
	if err != nil {
		r.add("python", StatusFail, "no python interpreter on PATH")
		return
	}
	interp, err := python.Probe(ctx, path)
	if err != nil {
		r.add("python", StatusFail, "%s did not report a version: %v", path, err)
		return
	}
	if minPython != "" {
		ok, err := interp.Meets(minPython)
		if err != nil {
			r.add("python", StatusWarn, "cannot evaluate requirement %q: %v", minPython, err)
			return
		}
		if !ok {
			r.add("python", StatusFail, "%s but project requires >= %s", interp, minPython)
			return
		}
	}
	r.add("python", StatusOK, "%s", interp)
}

func checkEnv(r *Report, runner *bootstrap.Runner) {
	env := runner.Env()
	switch {
	case !env.Exists():
		r.add("virtualenv", StatusWarn, "%s missing, created on next run", runner.Config().Env.Dir)
	case !env.HasInterpreter():
		r.add("virtualenv", StatusFail, "%s has no interpreter, delete it and run again", runner.Config().Env.Dir)
	default:
		r.add("virtualenv", StatusOK, "%s", env.Dir)
	}
}

func checkManifest(r *Report, runner *bootstrap.Runner) {
	name := runner.Config().Env.Manifest
	if !util.FileExists(runner.RootDir, name) {
		r.add("manifest", StatusFail, "no %s in project root", name)
		return
	}
	m, err := requirements.ParseFile(runner.ManifestPath())
	if err != nil {
		r.add("manifest", StatusFail, "unreadable %s: %v", name, err)
		return
	}
	r.add("manifest", StatusOK, "%s (%d packages)", name, m.Count())
}

func checkSyncState(r *Report, runner *bootstrap.Runner) {
	if _, ok := runner.SyncStamp(); !ok {
		r.add("sync", StatusWarn, "never synced, run `serveup sync`")
		return
	}
	if !runner.InSync() {
		r.add("sync", StatusWarn, "manifest changed since last sync")
		return
	}
	r.add("sync", StatusOK, "requirements in sync")
}

func checkAppModule(r *Report, runner *bootstrap.Runner) {
	conf := runner.Config()
	appDir := runner.AppDir()
	if !util.DirExists(appDir) {
		r.add("app", StatusFail, "app directory %s does not exist", conf.App.Dir)
		return
	}
	candidates := moduleCandidates(conf.App.Module)
	for _, candidate := range candidates {
		if util.FileExists(appDir, candidate) {
			r.add("app", StatusOK, "%s (%s)", conf.App.Module, filepath.Join(conf.App.Dir, candidate))
			return
		}
	}
	wanted := strings.Join(util.MapStrings(candidates, util.WrapWith("\"")), " or ")
	r.add("app", StatusFail, "module %s not found under %s, expected %s", conf.App.Module, conf.App.Dir, wanted)
}

// moduleCandidates maps a module reference to the files that could
// define it, in import preference order.
func moduleCandidates(module string) []string {
	modPath := module
	if idx := strings.Index(modPath, ":"); idx >= 0 {
		modPath = modPath[:idx]
	}
	base := filepath.Join(strings.Split(modPath, ".")...)
	return []string{
		base + ".py",
		filepath.Join(base, "__init__.py"),
	}
}

func checkProjectType(r *Report, rootDir string) {
	projectType, err := python.DetectProjectType(rootDir)
	if err != nil {
		r.add("project", StatusWarn, "could not detect project type: %v", err)
		return
	}
	if !projectType.IsPython() {
		if lang := projectType.Lang(); lang != "" {
			r.add("project", StatusWarn, "this looks like a %s project, not Python", lang)
		} else {
			r.add("project", StatusWarn, "detected %s, expected a python project", projectType)
		}
		return
	}
	if found, lockfile := python.LocateLockfile(rootDir, projectType); found {
		r.add("project", StatusOK, "%s (%s)", projectType, lockfile)
		return
	}
	r.add("project", StatusOK, "%s", projectType)
}

func checkPort(r *Report) {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(bootstrap.ServePort))
	l, err := net.Listen("tcp", addr)
	if err != nil {
		r.add("port", StatusWarn, "port %d is busy, maybe a server is already running", bootstrap.ServePort)
		return
	}
	l.Close()
	r.add("port", StatusOK, "port %d is free", bootstrap.ServePort)
}

func collectHostInfo(ctx context.Context) HostInfo {
	info := HostInfo{
		OS:   runtime.GOOS,
		CPUs: runtime.NumCPU(),
	}
	if hi, err := host.InfoWithContext(ctx); err == nil {
		info.Platform = strings.TrimSpace(hi.Platform + " " + hi.PlatformVersion)
	}
	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		info.CPUPercent = cpuPercent[0]
	}
	if memInfo, err := mem.VirtualMemory(); err == nil {
		info.MemTotal = memInfo.Total
		info.MemAvailable = memInfo.Available
	}
	return info
}
