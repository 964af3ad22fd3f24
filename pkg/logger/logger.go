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

// Package logger is a thin wrapper around zap. Diagnostics go to stderr
// so operator-facing output on stdout stays clean.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

var base = zap.NewNop().Sugar()

// Replaces the global logger. Called once from the CLI's Before hook;
// the zero value (nop) is in effect until then.
func InitFromConfig(conf *Config, name string) {
	level := zapcore.InfoLevel
	if conf.Level != "" {
		if parsed, err := zapcore.ParseLevel(conf.Level); err == nil {
			level = parsed
		}
	}

	zapConf := zap.NewDevelopmentConfig()
	if conf.JSON {
		zapConf = zap.NewProductionConfig()
	}
	zapConf.Level = zap.NewAtomicLevelAt(level)
	zapConf.OutputPaths = []string{"stderr"}
	zapConf.ErrorOutputPaths = []string{"stderr"}

	l, err := zapConf.Build()
	if err != nil {
		return
	}
	base = l.Named(name).Sugar()
}

func GetLogger() *zap.SugaredLogger {
	return base
}

func Debugw(msg string, keysAndValues ...any) {
	base.Debugw(msg, keysAndValues...)
}

func Infow(msg string, keysAndValues ...any) {
	base.Infow(msg, keysAndValues...)
}

func Warnw(msg string, err error, keysAndValues ...any) {
	if err != nil {
		keysAndValues = append(keysAndValues, "error", err)
	}
	base.Warnw(msg, keysAndValues...)
}

func Errorw(msg string, err error, keysAndValues ...any) {
	if err != nil {
		keysAndValues = append(keysAndValues, "error", err)
	}
	base.Errorw(msg, keysAndValues...)
}
