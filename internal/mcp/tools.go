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

package mcp

// In this file: MCP tool definitions and handler implementations.

import (
	"context"
	"errors"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/ishaanbajpai/Atlassian-mcp/internal/crawl"
	apiserver "github.com/ishaanbajpai/Atlassian-mcp/internal/server"
)

// envelope is the same response the HTTP API returns.
type envelope = apiserver.Response

// toolErr returns the error result with the same detail as the HTTP API
// would return.
func (s *Server) toolErr(ctx context.Context, tool string, err error) *mcplib.CallToolResult {
	code, detail := apiserver.Status(err)
	s.logger.ErrorContext(ctx, "mcp: export failed", "tool", tool, "status", code, "error", err)
	return resultErr(errors.New(detail))
}

// ─── export_space ─────────────────────────────────────────────────────────────

func (s *Server) toolExportSpace() mcpsrv.ServerTool {
	tool := mcplib.NewTool("export_space",
		mcplib.WithDescription(`Save the content of all pages of a Confluence space.

The space is matched by its name or key, ignoring case.  Returns the space ID
and the list of pages with the saved file paths.`),
		mcplib.WithString("space_name",
			mcplib.Description("Name or key of the space, e.g. \"Engineering\" or \"ENG\"."),
			mcplib.Required(),
		),
		mcplib.WithIdempotentHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleExportSpace}
}

func (s *Server) handleExportSpace(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	name, ok := stringArg(req, "space_name")
	if !ok || name == "" {
		return resultErr(errors.New("export_space: space_name is required")), nil
	}
	s.logger.InfoContext(ctx, "mcp: export_space", "space_name", name)
	rep, err := s.exp.Space(ctx, name)
	if err != nil {
		return s.toolErr(ctx, "export_space", err), nil
	}
	return resultJSON(envelope{Data: rep, Message: rep.Message()})
}

// ─── export_page ──────────────────────────────────────────────────────────────

func (s *Server) toolExportPage() mcpsrv.ServerTool {
	tool := mcplib.NewTool("export_page",
		mcplib.WithDescription(`Save the content of a Confluence page.

If recursive is true, all descendants of the page are saved as well, in the
"page_<page_id>_descendants" directory.  Lookup by the page name is not
supported, the page_name is only used as the title if the page has none.`),
		mcplib.WithString("page_id",
			mcplib.Description("ID of the page."),
			mcplib.Required(),
		),
		mcplib.WithString("page_name",
			mcplib.Description("Title to use if the page response has none."),
		),
		mcplib.WithBoolean("recursive",
			mcplib.Description("Also save all descendants of the page. Default: false."),
		),
		mcplib.WithIdempotentHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleExportPage}
}

func (s *Server) handleExportPage(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	q := crawl.PageQuery{
		PageID:    idArg(req, "page_id"),
		Recursive: boolArg(req, "recursive", false),
	}
	q.PageName, _ = stringArg(req, "page_name")
	s.logger.InfoContext(ctx, "mcp: export_page", "page_id", q.PageID, "recursive", q.Recursive)
	rep, err := s.exp.Page(ctx, q)
	if err != nil {
		return s.toolErr(ctx, "export_page", err), nil
	}
	return resultJSON(envelope{Data: rep, Message: rep.Message()})
}

// ─── export_all ───────────────────────────────────────────────────────────────

func (s *Server) toolExportAll() mcpsrv.ServerTool {
	tool := mcplib.NewTool("export_all",
		mcplib.WithDescription(`Save the content of all pages in all accessible Confluence spaces.

Failures in individual spaces are reported in the space summary and do not
stop the export.`),
		mcplib.WithIdempotentHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleExportAll}
}

func (s *Server) handleExportAll(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	s.logger.InfoContext(ctx, "mcp: export_all")
	rep, err := s.exp.AllSpaces(ctx)
	if err != nil {
		return s.toolErr(ctx, "export_all", err), nil
	}
	return resultJSON(envelope{Data: rep, Message: rep.Message()})
}
