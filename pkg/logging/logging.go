// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Stagecraft - A Go-based CLI for orchestrating local-first multi-service deployments using Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// Feature: CORE_LOGGING
// Spec: spec/core/logging.md

// Level represents a log level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger provides structured logging.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	WithFields(fields ...Field) Logger
}

// Field represents a key-value pair in structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// NewField creates a new field.
func NewField(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// zlogger is the default Logger, backed by rs/zerolog for structured,
// leveled JSON output (spec.md §2.10 ambient stack).
type zlogger struct {
	logger zerolog.Logger
}

// NewLogger creates a new logger writing JSON lines to stdout.
// If verbose is true, Debug level logs are shown.
func NewLogger(verbose bool) Logger {
	level := LevelInfo
	if verbose {
		level = LevelDebug
	}

	z := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level.zerolog())
	return &zlogger{logger: z}
}

// NewConsoleLogger creates a logger writing human-readable, colorized
// lines to stderr, suited to interactive CLI use (the one-shot CLI
// commands use this; serve uses the JSON logger).
func NewConsoleLogger(verbose bool) Logger {
	level := LevelInfo
	if verbose {
		level = LevelDebug
	}

	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	z := zerolog.New(writer).With().Timestamp().Logger().Level(level.zerolog())
	return &zlogger{logger: z}
}

func (l *zlogger) log(level Level, msg string, fields ...Field) {
	ev := l.logger.WithLevel(level.zerolog())
	for _, f := range fields {
		ev = ev.Interface(f.Key, f.Value)
	}
	ev.Msg(msg)
}

func (l *zlogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields...) }
func (l *zlogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields...) }
func (l *zlogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields...) }
func (l *zlogger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields...) }

// WithFields returns a new logger with additional fields bound into its
// zerolog context.
func (l *zlogger) WithFields(fields ...Field) Logger {
	ctx := l.logger.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &zlogger{logger: ctx.Logger()}
}
