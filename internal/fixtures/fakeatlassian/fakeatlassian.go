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

// Package fakeatlassian is an in-memory MCP server that mimics the
// Confluence tools of the Atlassian remote MCP server.
package fakeatlassian

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type Space struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

type Page struct {
	ID       string
	SpaceID  string
	ParentID string
	Title    string
	HTML     string
}

// Site is the content served by the fake.
type Site struct {
	CloudID string
	Spaces  []Space
	Pages   []Page
	// Fail maps the tool name to the error text it returns.
	Fail map[string]string
}

// Sample returns a small site with two spaces and a page tree.
func Sample() Site {
	return Site{
		CloudID: "cloud-1",
		Spaces: []Space{
			{ID: "S1", Key: "ENG", Name: "Engineering"},
			{ID: "S2", Key: "HR", Name: "People Ops"},
		},
		Pages: []Page{
			{ID: "100", SpaceID: "S1", Title: "Handbook", HTML: "Here is the HTML content for the page with ID '100': <h1>Handbook</h1>"},
			{ID: "101", SpaceID: "S1", ParentID: "100", Title: "Setup", HTML: "<p>setup</p>"},
			{ID: "102", SpaceID: "S1", ParentID: "101", Title: "Q&A: Setup!", HTML: "<p>faq</p>"},
			{ID: "200", SpaceID: "S2", Title: "Benefits", HTML: "<p>benefits</p>"},
		},
	}
}

// New returns the MCP server for the site.
func New(site Site) *server.MCPServer {
	s := server.NewMCPServer("fake-atlassian", "0.0.1", server.WithToolCapabilities(false))
	f := &fake{site: site}
	s.AddTools(
		server.ServerTool{
			Tool:    mcp.NewTool("getAccessibleAtlassianResources"),
			Handler: f.guard("getAccessibleAtlassianResources", f.resources),
		},
		server.ServerTool{
			Tool:    mcp.NewTool("getConfluenceSpaces", mcp.WithString("cloudId", mcp.Required())),
			Handler: f.guard("getConfluenceSpaces", f.spaces),
		},
		server.ServerTool{
			Tool: mcp.NewTool("getPagesInConfluenceSpace",
				mcp.WithString("cloudId", mcp.Required()),
				mcp.WithString("spaceId", mcp.Required()),
			),
			Handler: f.guard("getPagesInConfluenceSpace", f.pages),
		},
		server.ServerTool{
			Tool: mcp.NewTool("getConfluencePage",
				mcp.WithString("cloudId", mcp.Required()),
				mcp.WithString("pageId", mcp.Required()),
			),
			Handler: f.guard("getConfluencePage", f.page),
		},
		server.ServerTool{
			Tool: mcp.NewTool("getConfluencePageDescendants",
				mcp.WithString("cloudId", mcp.Required()),
				mcp.WithString("pageId", mcp.Required()),
			),
			Handler: f.guard("getConfluencePageDescendants", f.descendants),
		},
	)
	return s
}

// Client returns a started in-process client connected to the fake.  The
// client is not initialised.
func Client(ctx context.Context, site Site) (*client.Client, error) {
	c, err := client.NewInProcessClient(New(site))
	if err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

type fake struct {
	site Site
}

type handler func(args map[string]any) (any, error)

func (f *fake) guard(tool string, h handler) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if msg, ok := f.site.Fail[tool]; ok {
			return mcp.NewToolResultError(msg), nil
		}
		args := req.GetArguments()
		if tool != "getAccessibleAtlassianResources" {
			if cid, _ := args["cloudId"].(string); cid != f.site.CloudID {
				return mcp.NewToolResultError(fmt.Sprintf("cloud %q not found", cid)), nil
			}
		}
		v, err := h(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func (f *fake) resources(map[string]any) (any, error) {
	if f.site.CloudID == "" {
		return []any{}, nil
	}
	return []map[string]string{{"id": f.site.CloudID, "name": "fake", "url": "https://fake.atlassian.net"}}, nil
}

func (f *fake) spaces(map[string]any) (any, error) {
	return map[string]any{"results": f.site.Spaces}, nil
}

type summary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (f *fake) pages(args map[string]any) (any, error) {
	spaceID, _ := args["spaceId"].(string)
	results := []summary{}
	for _, p := range f.site.Pages {
		if p.SpaceID == spaceID {
			results = append(results, summary{ID: p.ID, Title: p.Title})
		}
	}
	return map[string]any{"results": results}, nil
}

func (f *fake) page(args map[string]any) (any, error) {
	id, _ := args["pageId"].(string)
	for _, p := range f.site.Pages {
		if p.ID == id {
			return map[string]any{
				"id":    p.ID,
				"title": p.Title,
				"body": map[string]any{
					"storage": map[string]any{"value": p.HTML, "representation": "storage"},
				},
			}, nil
		}
	}
	return nil, fmt.Errorf("page %s does not exist", id)
}

// descendants returns all pages below the page, depth first.
func (f *fake) descendants(args map[string]any) (any, error) {
	id, _ := args["pageId"].(string)
	results := []summary{}
	var walk func(parent string)
	walk = func(parent string) {
		for _, p := range f.site.Pages {
			if p.ParentID == parent {
				results = append(results, summary{ID: p.ID, Title: p.Title})
				walk(p.ID)
			}
		}
	}
	walk(id)
	return results, nil
}
