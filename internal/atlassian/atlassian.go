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

// Package atlassian calls the Confluence tools of the Atlassian remote MCP
// server and decodes their responses.
package atlassian

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ishaanbajpai/Atlassian-mcp/internal/toolexec"
)

// Remote tool names.
const (
	ToolAccessibleResources = "getAccessibleAtlassianResources"
	ToolSpaces              = "getConfluenceSpaces"
	ToolPagesInSpace        = "getPagesInConfluenceSpace"
	ToolPage                = "getConfluencePage"
	ToolPageDescendants     = "getConfluencePageDescendants"
)

// ErrBadResponse is returned when the tool result can't be decoded or has
// an unexpected shape.
var ErrBadResponse = errors.New("unexpected tool response")

// logLimit is the number of response bytes included in log messages.
const logLimit = 200

// Space is a Confluence space summary.
type Space struct {
	ID   ID     `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// PageSummary is an entry in the page or descendant listing.
type PageSummary struct {
	ID    ID     `json:"id"`
	Title string `json:"title"`
}

// Client calls the Confluence tools on a single MCP server.
type Client struct {
	exec   toolexec.Executor
	server string
	lg     *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(c *Client) {
		if lg != nil {
			c.lg = lg
		}
	}
}

// New returns a Client that runs the tools on the server using exec.
func New(exec toolexec.Executor, server string, opts ...Option) *Client {
	c := &Client{
		exec:   exec,
		server: server,
		lg:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Server returns the name of the MCP server.
func (c *Client) Server() string {
	return c.server
}

func (c *Client) call(ctx context.Context, tool string, args map[string]any) (string, error) {
	c.lg.DebugContext(ctx, "calling tool", "server", c.server, "tool", tool, "args", args)
	resp, err := c.exec.CallTool(ctx, c.server, tool, args)
	if err != nil {
		return "", fmt.Errorf("%s: %w", tool, err)
	}
	return resp, nil
}

func (c *Client) badResponse(ctx context.Context, tool, resp string, err error) error {
	c.lg.ErrorContext(ctx, "unexpected tool response", "tool", tool, "error", err, "response", truncate(resp, logLimit))
	return fmt.Errorf("%s: %w: %w", tool, ErrBadResponse, err)
}

// CloudID returns the ID of the first accessible Atlassian resource.  Any
// failure is logged and reported as ok == false.
func (c *Client) CloudID(ctx context.Context) (id string, ok bool) {
	resp, err := c.call(ctx, ToolAccessibleResources, map[string]any{})
	if err != nil {
		c.lg.ErrorContext(ctx, "failed to get accessible resources", "error", err)
		return "", false
	}
	var resources []struct {
		ID ID `json:"id"`
	}
	if err := json.Unmarshal([]byte(resp), &resources); err != nil {
		c.lg.ErrorContext(ctx, "failed to parse accessible resources", "error", err, "response", truncate(resp, logLimit))
		return "", false
	}
	if len(resources) == 0 || resources[0].ID == "" {
		c.lg.ErrorContext(ctx, "no cloud id in accessible resources", "response", truncate(resp, logLimit))
		return "", false
	}
	c.lg.InfoContext(ctx, "resolved cloud id", "cloud_id", resources[0].ID)
	return string(resources[0].ID), true
}

// Spaces lists the spaces.
func (c *Client) Spaces(ctx context.Context, cloudID string) ([]Space, error) {
	resp, err := c.call(ctx, ToolSpaces, map[string]any{"cloudId": cloudID})
	if err != nil {
		return nil, err
	}
	items, err := results(resp)
	if err != nil {
		return nil, c.badResponse(ctx, ToolSpaces, resp, err)
	}
	return decodeItems[Space](ctx, c.lg, ToolSpaces, items), nil
}

// Pages lists the pages in the space.
func (c *Client) Pages(ctx context.Context, cloudID, spaceID string) ([]PageSummary, error) {
	resp, err := c.call(ctx, ToolPagesInSpace, map[string]any{"cloudId": cloudID, "spaceId": spaceID})
	if err != nil {
		return nil, err
	}
	items, err := results(resp)
	if err != nil {
		return nil, c.badResponse(ctx, ToolPagesInSpace, resp, err)
	}
	return decodeItems[PageSummary](ctx, c.lg, ToolPagesInSpace, items), nil
}

// Page returns the page as the undecoded object.
func (c *Client) Page(ctx context.Context, cloudID, pageID string) (map[string]any, error) {
	resp, err := c.call(ctx, ToolPage, map[string]any{"cloudId": cloudID, "pageId": pageID})
	if err != nil {
		return nil, err
	}
	var page map[string]any
	if err := json.Unmarshal([]byte(resp), &page); err != nil {
		return nil, c.badResponse(ctx, ToolPage, resp, err)
	}
	if page == nil {
		return nil, c.badResponse(ctx, ToolPage, resp, errors.New("null page"))
	}
	return page, nil
}

// Descendants lists the descendants of the page.  The server may return
// either a list, or an object with the "results" list.
func (c *Client) Descendants(ctx context.Context, cloudID, pageID string) ([]PageSummary, error) {
	resp, err := c.call(ctx, ToolPageDescendants, map[string]any{"cloudId": cloudID, "pageId": pageID})
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if trimmed := bytes.TrimSpace([]byte(resp)); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &items)
	} else {
		items, err = results(resp)
	}
	if err != nil {
		return nil, c.badResponse(ctx, ToolPageDescendants, resp, err)
	}
	return decodeItems[PageSummary](ctx, c.lg, ToolPageDescendants, items), nil
}

var errNoResults = errors.New(`expected an object with the "results" list`)

// results returns the elements of the "results" list of the response
// object.
func results(resp string) ([]json.RawMessage, error) {
	var v struct {
		Results *[]json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal([]byte(resp), &v); err != nil {
		return nil, err
	}
	if v.Results == nil {
		return nil, errNoResults
	}
	return *v.Results, nil
}

// decodeItems decodes each of the items into T, skipping the ones that
// are not objects.
func decodeItems[T any](ctx context.Context, lg *slog.Logger, tool string, items []json.RawMessage) []T {
	out := make([]T, 0, len(items))
	for _, raw := range items {
		if t := bytes.TrimSpace(raw); len(t) == 0 || t[0] != '{' {
			lg.WarnContext(ctx, "skipping non-object item", "tool", tool, "item", truncate(string(raw), 100))
			continue
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			lg.WarnContext(ctx, "skipping malformed item", "tool", tool, "error", err, "item", truncate(string(raw), 100))
			continue
		}
		out = append(out, v)
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
