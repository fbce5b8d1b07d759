// Copyright 2021 Erigon contributors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Package log wraps zap.SugaredLogger behind a small key-value interface,
// the way Erigon's own log/v3 package insulates the rest of the codebase
// from the concrete logging library.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the narrow logging surface every package in this module takes
// a dependency on. Fields are passed as alternating key/value pairs,
// matching zap's SugaredLogger convention.
type Logger interface {
	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	// Crit logs at fatal level and then terminates the process. It is
	// reserved for internal invariant violations the mempool cannot
	// recover from.
	Crit(msg string, ctx ...interface{})
}

type zapLogger struct {
	s *zap.SugaredLogger
}

// New builds a development-friendly console logger, the default this
// module's cmd/txpooldemo wires up.
func New() Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(os.Stderr), zapcore.DebugLevel)
	return &zapLogger{s: zap.New(core).Sugar()}
}

// NewNop returns a Logger that discards everything, used by tests that
// don't want log output cluttering `go test -v`.
func NewNop() Logger {
	return &zapLogger{s: zap.NewNop().Sugar()}
}

func (l *zapLogger) Trace(msg string, ctx ...interface{}) { l.s.Debugw(msg, ctx...) }
func (l *zapLogger) Debug(msg string, ctx ...interface{}) { l.s.Debugw(msg, ctx...) }
func (l *zapLogger) Info(msg string, ctx ...interface{})  { l.s.Infow(msg, ctx...) }
func (l *zapLogger) Warn(msg string, ctx ...interface{})  { l.s.Warnw(msg, ctx...) }
func (l *zapLogger) Error(msg string, ctx ...interface{}) { l.s.Errorw(msg, ctx...) }
func (l *zapLogger) Crit(msg string, ctx ...interface{})  { l.s.Fatalw(msg, ctx...) }
