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

// Package cfg contains common configuration variables.
package cfg

import (
	"flag"
	"log/slog"
	"time"

	"github.com/rusq/osenv/v2"

	"github.com/ishaanbajpai/Atlassian-mcp/internal/app"
)

const (
	DefaultOutputDir   = "output_content"
	DefaultCallTimeout = 5 * time.Minute
)

var (
	TraceFile   string
	LogFile     string
	Verbose     bool
	JSONHandler bool

	OutputDir   string
	ConfigFile  string
	Server      string
	Token       string
	Rate        float64
	CallTimeout time.Duration

	// Log is the logger that commands should use.
	Log = slog.Default()
)

type FlagMask int

const (
	DefaultFlags    FlagMask = 0
	OmitServerFlags FlagMask = 1 << iota
	OmitOutputFlag

	OmitAll = OmitServerFlags | OmitOutputFlag
)

// SetBaseFlags sets base flags
func SetBaseFlags(fs *flag.FlagSet, mask FlagMask) {
	fs.StringVar(&TraceFile, "trace", osenv.Value("TRACE_FILE", ""), "trace `filename`")
	fs.StringVar(&LogFile, "log", osenv.Value("LOG_FILE", ""), "log `file`, if specified, messages are written to it in addition to STDERR")
	fs.BoolVar(&Verbose, "v", osenv.Value("DEBUG", false), "verbose messages")
	fs.BoolVar(&JSONHandler, "log-json", osenv.Value("JSON_LOG", false), "log in JSON format")

	if mask&OmitServerFlags == 0 {
		fs.StringVar(&ConfigFile, "config", osenv.Value("MCP_CONFIG", ""), "MCP servers configuration `file` (TOML).  If not specified,\nthe Atlassian remote MCP server is started with npx.")
		fs.StringVar(&Server, "server", osenv.Value("MCP_SERVER", ""), "`name` of the MCP server from the configuration file")
		fs.StringVar(&Token, "token", osenv.Secret("MCP_TOKEN", ""), "bearer `token` for the sse and http transports (environment: MCP_TOKEN)")
		fs.Float64Var(&Rate, "rate", osenv.Value("TOOL_RATE", 0.0), "maximum tool `calls` per second, 0 means unlimited")
		fs.DurationVar(&CallTimeout, "call-timeout", osenv.Value("TOOL_CALL_TIMEOUT", DefaultCallTimeout), "single tool call `timeout`, 0 disables")
	}
	if mask&OmitOutputFlag == 0 {
		fs.StringVar(&OutputDir, "output", osenv.Value("OUTPUT_DIR", DefaultOutputDir), "output `directory` for the saved content")
	}
}

// AppOptions returns the application options from the flag values.
func AppOptions() app.Options {
	return app.Options{
		OutputDir:   OutputDir,
		ConfigFile:  ConfigFile,
		Server:      Server,
		Token:       Token,
		Rate:        Rate,
		CallTimeout: CallTimeout,
	}
}

// SetDebugLevel sets the default logger level to debug.
func SetDebugLevel() {
	slog.SetLogLoggerLevel(slog.LevelDebug)
}
