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

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishaanbajpai/Atlassian-mcp/internal/app"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/crawl"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/fixtures/fakeatlassian"
	apiserver "github.com/ishaanbajpai/Atlassian-mcp/internal/server"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/toolexec"
)

// stubExporter records the calls and returns the canned results.
type stubExporter struct {
	space   crawl.SpaceReport
	page    crawl.PageReport
	all     crawl.AllReport
	err     error
	gotName string
	gotQ    crawl.PageQuery
}

func (s *stubExporter) Space(_ context.Context, name string) (crawl.SpaceReport, error) {
	s.gotName = name
	return s.space, s.err
}

func (s *stubExporter) Page(_ context.Context, q crawl.PageQuery) (crawl.PageReport, error) {
	s.gotQ = q
	return s.page, s.err
}

func (s *stubExporter) AllSpaces(context.Context) (crawl.AllReport, error) {
	return s.all, s.err
}

// firstText returns the text of the first TextContent in the result.
func firstText(t *testing.T, r *mcplib.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, r.Content, "result has no content")
	txt, ok := r.Content[0].(mcplib.TextContent)
	require.True(t, ok, "first content item is not TextContent")
	return txt.Text
}

// decodeEnvelope decodes the JSON result into a generic envelope.
func decodeEnvelope(t *testing.T, r *mcplib.CallToolResult) map[string]any {
	t.Helper()
	require.False(t, r.IsError, firstText(t, r))
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(firstText(t, r)), &v))
	return v
}

// ─── handleExportSpace ────────────────────────────────────────────────────────

func TestHandleExportSpace(t *testing.T) {
	tests := []struct {
		name        string
		args        map[string]any
		exp         *stubExporter
		wantIsError bool
		wantText    string // substring expected in first text content
	}{
		{
			name: "returns the space report",
			args: map[string]any{"space_name": "ENG"},
			exp: &stubExporter{space: crawl.SpaceReport{
				SpaceID:        "S1",
				SpaceName:      "ENG",
				PagesProcessed: 1,
				PageDetails:    []crawl.PageResult{{ID: "100", Title: "Handbook", Saved: true}},
			}},
			wantText: "Content for space 'ENG' (ID: S1) processed. 1 pages saved.",
		},
		{
			name:        "missing space_name",
			args:        map[string]any{},
			exp:         &stubExporter{},
			wantIsError: true,
			wantText:    "space_name is required",
		},
		{
			name:        "space not found",
			args:        map[string]any{"space_name": "Marketing"},
			exp:         &stubExporter{err: fmt.Errorf("%w: Marketing", crawl.ErrSpaceNotFound)},
			wantIsError: true,
			wantText:    "Marketing",
		},
		{
			name:        "connectivity error",
			args:        map[string]any{"space_name": "ENG"},
			exp:         &stubExporter{err: toolexec.ErrNotConnected},
			wantIsError: true,
			wantText:    apiserver.AdminMessage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(tt.exp)
			result, err := srv.handleExportSpace(t.Context(), toolReq(tt.args))
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.wantIsError, result.IsError)
			assert.Contains(t, firstText(t, result), tt.wantText)
		})
	}
}

// ─── handleExportPage ─────────────────────────────────────────────────────────

func TestHandleExportPage(t *testing.T) {
	t.Run("passes the query", func(t *testing.T) {
		exp := &stubExporter{page: crawl.PageReport{
			Pages:     []crawl.PageResult{{ID: "100", Saved: true}},
			Recursive: true,
		}}
		srv := New(exp)
		result, err := srv.handleExportPage(t.Context(), toolReq(map[string]any{
			"page_id":   100.0,
			"page_name": "Handbook",
			"recursive": true,
		}))
		require.NoError(t, err)
		v := decodeEnvelope(t, result)
		assert.Equal(t, "Page content retrieval complete. Processed 1 page(s).", v["message"])
		assert.Equal(t, crawl.PageQuery{PageID: "100", PageName: "Handbook", Recursive: true}, exp.gotQ)
	})
	t.Run("invalid request", func(t *testing.T) {
		exp := &stubExporter{err: fmt.Errorf("%w: page_id is required", crawl.ErrInvalidRequest)}
		srv := New(exp)
		result, err := srv.handleExportPage(t.Context(), toolReq(nil))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, firstText(t, result), "page_id is required")
	})
}

// ─── handleExportAll ──────────────────────────────────────────────────────────

func TestHandleExportAll(t *testing.T) {
	t.Run("returns the summary", func(t *testing.T) {
		exp := &stubExporter{all: crawl.AllReport{
			TotalSpaces: 1,
			Spaces:      []crawl.SpaceSummary{{SpaceID: "S1", SpaceName: "Engineering"}},
		}}
		result, err := New(exp).handleExportAll(t.Context(), toolReq(nil))
		require.NoError(t, err)
		v := decodeEnvelope(t, result)
		assert.Equal(t, "Processed all accessible spaces. 1 spaces attempted.", v["message"])
	})
	t.Run("unexpected error", func(t *testing.T) {
		exp := &stubExporter{err: errors.New("boom")}
		result, err := New(exp).handleExportAll(t.Context(), toolReq(nil))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "Error processing request: boom", firstText(t, result))
	})
}

// ─── end to end ───────────────────────────────────────────────────────────────

func TestTools_fakeAtlassian(t *testing.T) {
	c, err := fakeatlassian.Client(t.Context(), fakeatlassian.Sample())
	require.NoError(t, err)
	mgr := toolexec.NewManager()
	require.NoError(t, mgr.Attach(t.Context(), "atlassian", c))
	a := app.NewWithManager(mgr, "atlassian", t.TempDir(), nil)
	t.Cleanup(func() { _ = a.Close() })

	srv := New(a.Walker())

	result, err := srv.handleExportPage(t.Context(), toolReq(map[string]any{"page_id": "101", "recursive": true}))
	require.NoError(t, err)
	v := decodeEnvelope(t, result)
	data := v["data"].(map[string]any)
	pages := data["pages_processed_details"].([]any)
	require.Len(t, pages, 2)
	assert.Equal(t, "101", pages[0].(map[string]any)["id"])
	assert.Equal(t, "102", pages[1].(map[string]any)["id"])
	assert.Equal(t, "page_101_descendants", pages[1].(map[string]any)["path_segment"])

	result, err = srv.handleExportSpace(t.Context(), toolReq(map[string]any{"space_name": "hr"}))
	require.NoError(t, err)
	v = decodeEnvelope(t, result)
	assert.Equal(t, "S2", v["data"].(map[string]any)["space_id"])
}
