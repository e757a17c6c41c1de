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

// Package toolexec runs tools on the connected MCP servers.
package toolexec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/time/rate"
)

//go:generate mockgen -destination=mock_toolexec/mock_toolexec.go . Executor

// Executor calls a tool on the named MCP server and returns the text of the
// result.
type Executor interface {
	CallTool(ctx context.Context, server, tool string, args map[string]any) (string, error)
}

// ErrNotConnected is returned when there is no session for the server.
var ErrNotConnected = errors.New("mcp server is not connected")

const (
	clientName    = "confluence-mcp"
	clientVersion = "1.0.0"
)

// ToolError is returned when the server reports that the tool has failed.
type ToolError struct {
	Server string
	Tool   string
	Text   string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s on %s returned an error: %s", e.Tool, e.Server, e.Text)
}

// Manager holds the client sessions, one per server.  Sessions are
// attached once during startup, and are safe for concurrent use afterwards.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*client.Client

	lim     *rate.Limiter
	timeout time.Duration
	lg      *slog.Logger
}

var _ Executor = (*Manager)(nil)

// Option configures the Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(m *Manager) {
		if lg != nil {
			m.lg = lg
		}
	}
}

// WithRate limits the tool calls to perSec calls per second across all
// servers.  Zero or negative value disables the limit.
func WithRate(perSec float64) Option {
	return func(m *Manager) {
		if perSec <= 0 {
			m.lim = nil
			return
		}
		m.lim = rate.NewLimiter(rate.Limit(perSec), 1)
	}
}

// WithCallTimeout sets the timeout for a single tool call.  Zero disables
// the timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d >= 0 {
			m.timeout = d
		}
	}
}

// NewManager returns a Manager without sessions.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*client.Client),
		lg:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Attach initialises the started client c and registers it under name.
// The previous session with the same name, if any, is closed.  On error c
// is closed.
func (m *Manager) Attach(ctx context.Context, name string, c *client.Client) error {
	var req mcp.InitializeRequest
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    clientName,
		Version: clientVersion,
	}
	res, err := c.Initialize(ctx, req)
	if err != nil {
		_ = c.Close()
		return fmt.Errorf("initialize %s: %w", name, err)
	}
	m.lg.InfoContext(ctx, "connected to MCP server",
		"server", name,
		"remote", res.ServerInfo.Name,
		"remote_version", res.ServerInfo.Version,
		"protocol", res.ProtocolVersion,
	)

	m.mu.Lock()
	old := m.sessions[name]
	m.sessions[name] = c
	m.mu.Unlock()
	if old != nil {
		if err := old.Close(); err != nil {
			m.lg.WarnContext(ctx, "failed to close the replaced session", "server", name, "error", err)
		}
	}
	return nil
}

// Servers returns the sorted names of the connected servers.
func (m *Manager) Servers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.sessions))
}

func (m *Manager) session(name string) (*client.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.sessions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, name)
	}
	return c, nil
}

// CallTool calls the tool with args on the server.  If the server flags
// the result as an error, the returned error is a *ToolError.
func (m *Manager) CallTool(ctx context.Context, server, tool string, args map[string]any) (string, error) {
	c, err := m.session(server)
	if err != nil {
		return "", err
	}
	if m.lim != nil {
		if err := m.lim.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	lg := m.lg.With("server", server, "tool", tool)

	var req mcp.CallToolRequest
	req.Params.Name = tool
	req.Params.Arguments = args

	start := time.Now()
	res, err := c.CallTool(ctx, req)
	if err != nil {
		lg.ErrorContext(ctx, "tool call failed", "error", err, "took", time.Since(start))
		return "", fmt.Errorf("call %s: %w", tool, err)
	}
	text, err := resultText(res)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", tool, err)
	}
	if res.IsError {
		lg.WarnContext(ctx, "tool reported an error", "text", text, "took", time.Since(start))
		return "", &ToolError{Server: server, Tool: tool, Text: text}
	}
	lg.DebugContext(ctx, "tool call", "took", time.Since(start), "size", len(text))
	return text, nil
}

// resultText concatenates the text content of the result.  If there is
// none, the structured content is returned encoded as JSON.
func resultText(res *mcp.CallToolResult) (string, error) {
	if res == nil {
		return "", nil
	}
	var sb strings.Builder
	var found bool
	for _, c := range res.Content {
		switch tc := c.(type) {
		case mcp.TextContent:
			sb.WriteString(tc.Text)
			found = true
		case *mcp.TextContent:
			sb.WriteString(tc.Text)
			found = true
		}
	}
	if found || res.StructuredContent == nil {
		return sb.String(), nil
	}
	data, err := json.Marshal(res.StructuredContent)
	if err != nil {
		return "", fmt.Errorf("encode structured content: %w", err)
	}
	return string(data), nil
}

// Tools lists the tools available on the server.
func (m *Manager) Tools(ctx context.Context, server string) ([]mcp.Tool, error) {
	c, err := m.session(server)
	if err != nil {
		return nil, err
	}
	res, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools on %s: %w", server, err)
	}
	return res.Tools, nil
}

// Close closes all sessions.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs error
	for name, c := range m.sessions {
		if err := c.Close(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("close %s: %w", name, err))
		}
		delete(m.sessions, name)
	}
	return errs
}
