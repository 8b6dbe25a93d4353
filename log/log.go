// Copyright 2026 The Witness Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"fmt"
)

var log Logger = SilentLogger{}

// Logger is used by go-dast to emit log messages. Any logging library that satisfies
// this interface can be installed with SetLogger.
type Logger interface {
	Errorf(format string, args ...interface{})
	Error(args ...interface{})
	Warnf(format string, args ...interface{})
	Warn(args ...interface{})
	Debugf(format string, args ...interface{})
	Debug(args ...interface{})
	Infof(format string, args ...interface{})
	Info(args ...interface{})
}

// SetLogger sets the logger used by every package in go-dast.
func SetLogger(l Logger) {
	if l == nil {
		l = SilentLogger{}
	}

	log = l
}

// GetLogger returns the currently installed logger.
func GetLogger() Logger {
	return log
}

// Errorf uses fmt.Errorf to construct an error from the provided message and passes it to
// the installed logger, so %w directives behave as they do for errors.
func Errorf(format string, args ...interface{}) {
	err := fmt.Errorf(format, args...)
	log.Error(err)
}

func Error(args ...interface{}) {
	log.Error(args...)
}

// Warnf behaves like Errorf at warning level.
func Warnf(format string, args ...interface{}) {
	err := fmt.Errorf(format, args...)
	log.Warn(err)
}

func Warn(args ...interface{}) {
	log.Warn(args...)
}

func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

func Debug(args ...interface{}) {
	log.Debug(args...)
}

func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func Info(args ...interface{}) {
	log.Info(args...)
}
