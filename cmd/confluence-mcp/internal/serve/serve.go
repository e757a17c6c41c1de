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

// Package serve contains the command that runs the HTTP API.
package serve

import (
	"context"
	"errors"

	"github.com/rusq/osenv/v2"

	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/cfg"
	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/golang/base"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/app"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/server"
)

// DefaultListen is the default API address.
const DefaultListen = "localhost:8000"

var CmdServe = &base.Command{
	UsageLine: base.CmdName + " serve [flags]",
	Short:     "run the content export HTTP API",
	Long: `
# Serve Command

Serve runs the HTTP API that saves the Confluence content on request:

    POST /space/content   {"space_name": "..."}
    POST /page/content    {"page_id": "...", "recursive": false}
    POST /all/content     {}
    GET  /healthcheck

The content is saved under the output directory.  The MCP server connection
is opened on startup, if it fails, the API still starts and the export
requests return 503 Service Unavailable.
`,
	Run:        runServe,
	PrintFlags: true,
	FlagMask:   cfg.DefaultFlags,
}

var listenAddr string

func init() {
	CmdServe.Flag.StringVar(&listenAddr, "listen", osenv.Value("API_LISTEN", DefaultListen), "API listen `address`")
}

func runServe(ctx context.Context, cmd *base.Command, args []string) error {
	if len(args) > 0 {
		base.SetExitStatus(base.SInvalidParameters)
		return errors.New("serve does not accept arguments")
	}
	lg := cfg.Log

	a, err := app.New(ctx, cfg.AppOptions(), lg)
	if err != nil {
		base.SetExitStatus(base.SInitializationError)
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			lg.WarnContext(ctx, "failed to close MCP sessions", "error", err)
		}
	}()
	lg.InfoContext(ctx, "content will be saved", "output", a.OutputDir(), "server", a.Server(), "connected", a.Connected())

	srv := server.New(listenAddr, a.Walker(), server.WithLogger(lg))
	if err := srv.ListenAndServe(ctx); err != nil {
		base.SetExitStatus(base.SApplicationError)
		return err
	}
	return nil
}
