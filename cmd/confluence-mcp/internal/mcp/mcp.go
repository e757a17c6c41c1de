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

// Package mcp contains the CLI command for starting the export MCP server.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/cfg"
	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/golang/base"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/app"
	internalmcp "github.com/ishaanbajpai/Atlassian-mcp/internal/mcp"
)

// CmdMCP is the "mcp" command.
var CmdMCP = &base.Command{
	UsageLine: base.CmdName + " mcp [flags]",
	Short:     "start the MCP server with the export tools",
	Long: `
# MCP Command

Starts an MCP server that exposes the content export as tools:

    export_space   save all pages of a space
    export_page    save a page and, optionally, its descendants
    export_all     save all pages of all accessible spaces

With the stdio transport, the logs are written to STDERR, or to the log file,
if -log is given.
`,
	FlagMask:   cfg.DefaultFlags,
	PrintFlags: true,
	Run:        runMCP,
}

var (
	listenAddr string
	transport  string
)

func init() {
	CmdMCP.Flag.StringVar(&transport, "transport", "stdio", "MCP transport: \"stdio\" or \"http\"")
	CmdMCP.Flag.StringVar(&listenAddr, "listen", "127.0.0.1:8483", "address to listen on when -transport=http")
}

func runMCP(ctx context.Context, cmd *base.Command, args []string) error {
	lg := cfg.Log

	t, err := parseTransport(transport)
	if err != nil {
		base.SetExitStatus(base.SInvalidParameters)
		return err
	}

	a, err := app.New(ctx, cfg.AppOptions(), lg)
	if err != nil {
		base.SetExitStatus(base.SInitializationError)
		return err
	}
	defer a.Close()

	srv := internalmcp.New(a.Walker(), internalmcp.WithLogger(lg))
	if err := srv.Serve(ctx, t, listenAddr); err != nil {
		base.SetExitStatus(base.SApplicationError)
		return err
	}
	return nil
}

func parseTransport(s string) (internalmcp.Transport, error) {
	switch strings.ToLower(s) {
	case "stdio", "":
		return internalmcp.TransportStdio, nil
	case "http":
		return internalmcp.TransportHTTP, nil
	default:
		return "", fmt.Errorf("mcp: unknown transport %q (use \"stdio\" or \"http\")", s)
	}
}
