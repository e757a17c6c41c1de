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
	"errors"
	"net"
	"slices"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toolReq builds a CallToolRequest with the given arguments.
func toolReq(args map[string]any) mcplib.CallToolRequest {
	var req mcplib.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestNew_nilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		srv := New(&stubExporter{}, WithLogger(nil))
		assert.NotNil(t, srv.logger)
		assert.NotNil(t, srv.MCPServer())
	})
}

func TestNew_registersTools(t *testing.T) {
	srv := New(&stubExporter{})

	c, err := client.NewInProcessClient(srv.MCPServer())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Start(t.Context()))

	var init mcplib.InitializeRequest
	init.Params.ProtocolVersion = mcplib.LATEST_PROTOCOL_VERSION
	init.Params.ClientInfo = mcplib.Implementation{Name: "test", Version: "0"}
	ir, err := c.Initialize(t.Context(), init)
	require.NoError(t, err)
	assert.Equal(t, serverName, ir.ServerInfo.Name)
	assert.Contains(t, ir.Instructions, "export_space")

	lr, err := c.ListTools(t.Context(), mcplib.ListToolsRequest{})
	require.NoError(t, err)
	var names []string
	for _, tool := range lr.Tools {
		names = append(names, tool.Name)
	}
	slices.Sort(names)
	assert.Equal(t, []string{"export_all", "export_page", "export_space"}, names)
}

func TestServe_unknownTransport(t *testing.T) {
	srv := New(&stubExporter{})
	err := srv.Serve(t.Context(), Transport("carrier-pigeon"), "")
	assert.ErrorContains(t, err, "unknown transport")
}

func TestServeHTTP_shutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	srv := New(&stubExporter{})
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, TransportHTTP, addr) }()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

// ─── result helpers ───────────────────────────────────────────────────────────

func TestResultErr(t *testing.T) {
	r := resultErr(errors.New("something went wrong"))
	require.NotNil(t, r)
	assert.True(t, r.IsError)
	require.Len(t, r.Content, 1)
	txt, ok := r.Content[0].(mcplib.TextContent)
	require.True(t, ok)
	assert.Equal(t, "something went wrong", txt.Text)
}

func TestResultJSON(t *testing.T) {
	type payload struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	r, err := resultJSON(payload{ID: "100", Title: "Handbook"})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.False(t, r.IsError)
	require.NotEmpty(t, r.Content)
	txt, ok := r.Content[0].(mcplib.TextContent)
	require.True(t, ok)
	assert.Contains(t, txt.Text, "100")
	assert.Contains(t, txt.Text, "Handbook")
}

// ─── argument helpers ─────────────────────────────────────────────────────────

func TestStringArg(t *testing.T) {
	tests := []struct {
		name   string
		args   map[string]any
		want   string
		wantOK bool
	}{
		{"present", map[string]any{"space_name": "ENG"}, "ENG", true},
		{"missing", map[string]any{}, "", false},
		{"nil args", nil, "", false},
		{"wrong type", map[string]any{"space_name": 42.0}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := stringArg(toolReq(tt.args), "space_name")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestIDArg(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"string", map[string]any{"page_id": "100"}, "100"},
		{"number", map[string]any{"page_id": 12345.0}, "12345"},
		{"large number", map[string]any{"page_id": 2147483648.0}, "2147483648"},
		{"missing", map[string]any{}, ""},
		{"nil args", nil, ""},
		{"bool", map[string]any{"page_id": true}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, idArg(toolReq(tt.args), "page_id"))
		})
	}
}

func TestBoolArg(t *testing.T) {
	tests := []struct {
		name       string
		args       map[string]any
		defaultVal bool
		want       bool
	}{
		{"true value", map[string]any{"recursive": true}, false, true},
		{"false value", map[string]any{"recursive": false}, true, false},
		{"missing key uses default", map[string]any{}, true, true},
		{"nil args uses default", nil, true, true},
		{"wrong type uses default", map[string]any{"recursive": "yes"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, boolArg(toolReq(tt.args), "recursive", tt.defaultVal))
		})
	}
}
