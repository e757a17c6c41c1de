// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/rusq/tracer"

	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/cfg"
	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/golang/base"
)

// initLog initialises the logging and sets the default logger.  If the
// filename is not empty, the file is opened, and the messages are written
// to it in addition to STDERR.  The file is closed on exit.
func initLog(filename string, jsonHandler bool, verbose bool) (*slog.Logger, error) {
	level := slog.LevelInfo
	if verbose {
		cfg.SetDebugLevel()
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var w io.Writer = os.Stderr
	if filename != "" {
		slog.Debug("log messages will be written to file", "filename", filename)
		lf, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o666)
		if err != nil {
			return slog.Default(), fmt.Errorf("failed to create the log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, lf)
		log.SetOutput(w) // panics and standard log messages end up in the file too.
		base.AtExit(func() {
			if err := lf.Close(); err != nil {
				slog.Error("failed to close the log file", "error", err)
			}
		})
	}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if jsonHandler {
		h = slog.NewJSONHandler(w, opts)
	}
	sl := slog.New(h)
	slog.SetDefault(sl)
	return sl, nil
}

// initTrace initialises the tracing.  If the filename is not empty, the file
// will be opened, trace will write to that file.  Returns the stop function
// that must be called in the deferred call.
func initTrace(filename string) (stop func()) {
	stop = func() {}
	if filename == "" {
		return
	}

	slog.Info("trace will be written to", "filename", filename)

	trc := tracer.New(filename)
	if err := trc.Start(); err != nil {
		slog.Warn("failed to start the trace", "filename", filename, "error", err)
		return
	}

	stop = func() {
		if err := trc.End(); err != nil {
			slog.Warn("failed to write the trace file", "filename", filename, "error", err)
		}
	}
	return
}
