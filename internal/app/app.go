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

// Package app holds the long-lived handles shared by all requests: the MCP
// client sessions and the output directory.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/ishaanbajpai/Atlassian-mcp/internal/atlassian"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/config"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/crawl"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/osext"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/persist"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/toolexec"
)

// Options are the application parameters.
type Options struct {
	// OutputDir is the directory for the exported content.
	OutputDir string
	// ConfigFile is the MCP servers configuration file, if empty, the
	// built-in Atlassian server definition is used.
	ConfigFile string
	// Server is the name of the server to use.
	Server string
	// Token is the bearer token for the HTTP transports, used if the
	// server definition has none.
	Token string
	// Rate is the tool calls per second limit, 0 is unlimited.
	Rate float64
	// CallTimeout is the timeout of a single tool call, 0 is none.
	CallTimeout time.Duration
}

// App is the application context.  It is created once on startup and
// closed on shutdown.
type App struct {
	server string
	mgr    *toolexec.Manager
	api    *atlassian.Client
	saver  *persist.Persister
	lg     *slog.Logger
}

// New loads the configuration and connects to the MCP server.  Failure to
// connect is not fatal: the App is returned, and the tool calls fail with
// toolexec.ErrNotConnected.
func New(ctx context.Context, opts Options, lg *slog.Logger) (*App, error) {
	if lg == nil {
		lg = slog.Default()
	}
	if opts.OutputDir != "" {
		if err := osext.EnsureDir(opts.OutputDir); err != nil {
			return nil, fmt.Errorf("output directory: %w", err)
		}
	}
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	name, srv, err := cfg.Pick(opts.Server)
	if err != nil {
		return nil, err
	}
	if srv.Token == "" {
		srv.Token = opts.Token
	}

	mgr := toolexec.NewManager(
		toolexec.WithLogger(lg),
		toolexec.WithRate(opts.Rate),
		toolexec.WithCallTimeout(opts.CallTimeout),
	)
	if err := mgr.Connect(ctx, name, srv); err != nil {
		lg.ErrorContext(ctx, "MCP server is not available, tool calls will fail", "server", name, "error", err)
	}
	return NewWithManager(mgr, name, opts.OutputDir, lg), nil
}

// NewWithManager returns the App that uses the sessions of mgr.
func NewWithManager(mgr *toolexec.Manager, server, outputDir string, lg *slog.Logger) *App {
	if lg == nil {
		lg = slog.Default()
	}
	return &App{
		server: server,
		mgr:    mgr,
		api:    atlassian.New(mgr, server, atlassian.WithLogger(lg)),
		saver:  persist.New(outputDir, persist.WithLogger(lg)),
		lg:     lg,
	}
}

// Server returns the name of the MCP server.
func (a *App) Server() string {
	return a.server
}

// Connected reports whether the MCP server session is open.
func (a *App) Connected() bool {
	return slices.Contains(a.mgr.Servers(), a.server)
}

// Manager returns the MCP session manager.
func (a *App) Manager() *toolexec.Manager {
	return a.mgr
}

// OutputDir returns the output directory.
func (a *App) OutputDir() string {
	return a.saver.Root()
}

// Walker returns a new Walker.
func (a *App) Walker(opts ...crawl.Option) *crawl.Walker {
	return crawl.NewWalker(a.api, a.saver, append([]crawl.Option{crawl.WithLogger(a.lg)}, opts...)...)
}

// Close closes the MCP sessions.
func (a *App) Close() error {
	return a.mgr.Close()
}
