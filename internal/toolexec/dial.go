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

package toolexec

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"

	"github.com/ishaanbajpai/Atlassian-mcp/internal/config"
)

var errNoTarget = errors.New("no target")

// Connect starts the client for srv and attaches it under name.
func (m *Manager) Connect(ctx context.Context, name string, srv config.Server) error {
	m.lg.DebugContext(ctx, "connecting", "server", name, "transport", srv.Transport, "target", target(srv))
	c, err := newClient(ctx, srv)
	if err != nil {
		return fmt.Errorf("connect %s (%s): %w", name, target(srv), err)
	}
	return m.Attach(ctx, name, c)
}

func newClient(ctx context.Context, srv config.Server) (*client.Client, error) {
	switch srv.Transport {
	case config.TransportStdio:
		if srv.Command == "" {
			return nil, errNoTarget
		}
		// stdio client is started by the constructor.
		return client.NewStdioMCPClient(srv.Command, srv.Env, srv.Args...)
	case config.TransportSSE:
		if srv.URL == "" {
			return nil, errNoTarget
		}
		c, err := client.NewSSEMCPClient(srv.URL, transport.WithHeaders(authHeaders(srv.Token)))
		if err != nil {
			return nil, err
		}
		return start(ctx, c)
	case config.TransportHTTP:
		if srv.URL == "" {
			return nil, errNoTarget
		}
		c, err := client.NewStreamableHttpClient(srv.URL, transport.WithHTTPHeaders(authHeaders(srv.Token)))
		if err != nil {
			return nil, err
		}
		return start(ctx, c)
	default:
		return nil, fmt.Errorf("unsupported transport %q", srv.Transport)
	}
}

func start(ctx context.Context, c *client.Client) (*client.Client, error) {
	if err := c.Start(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func authHeaders(token string) map[string]string {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

func target(srv config.Server) string {
	if srv.Transport == config.TransportStdio {
		return strings.TrimSpace(srv.Command + " " + strings.Join(srv.Args, " "))
	}
	return srv.URL
}
