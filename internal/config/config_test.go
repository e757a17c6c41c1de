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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishaanbajpai/Atlassian-mcp/internal/validation"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "mcp.toml")
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
	return name
}

func TestLoad(t *testing.T) {
	t.Run("empty filename returns default", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		require.NoError(t, cfg.Validate())
	})
	t.Run("valid file", func(t *testing.T) {
		name := writeFile(t, `
default_server = "direct"

[servers.local]
transport = "stdio"
command = "npx"
args = ["-y", "mcp-remote", "https://mcp.atlassian.com/v1/sse"]
env = ["DEBUG=1"]

[servers.direct]
transport = "http"
url = "https://mcp.example.com/mcp"
token = "secret"
`)
		cfg, err := Load(name)
		require.NoError(t, err)
		assert.Equal(t, "direct", cfg.DefaultServer)
		assert.Equal(t, []string{"direct", "local"}, cfg.Names())
		assert.Equal(t, Server{
			Transport: TransportHTTP,
			URL:       "https://mcp.example.com/mcp",
			Token:     "secret",
		}, cfg.Servers["direct"])
		assert.Equal(t, []string{"DEBUG=1"}, cfg.Servers["local"].Env)
	})
	t.Run("unknown keys are rejected", func(t *testing.T) {
		name := writeFile(t, `
[servers.local]
transport = "stdio"
command = "npx"
comand = "typo"
`)
		_, err := Load(name)
		assert.ErrorIs(t, err, ErrUnknownKeys)
		assert.ErrorContains(t, err, "comand")
	})
	t.Run("invalid transport", func(t *testing.T) {
		name := writeFile(t, `
[servers.local]
transport = "carrier-pigeon"
command = "npx"
`)
		_, err := Load(name)
		var vErr *validation.Error
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Error(), "transport")
	})
	t.Run("stdio without command", func(t *testing.T) {
		name := writeFile(t, `
[servers.local]
transport = "stdio"
`)
		_, err := Load(name)
		assert.ErrorContains(t, err, "command")
	})
	t.Run("http without url", func(t *testing.T) {
		name := writeFile(t, `
[servers.remote]
transport = "http"
`)
		_, err := Load(name)
		assert.ErrorContains(t, err, "url")
	})
	t.Run("no servers", func(t *testing.T) {
		name := writeFile(t, `default_server = "x"`)
		_, err := Load(name)
		assert.Error(t, err)
	})
	t.Run("unknown default server", func(t *testing.T) {
		name := writeFile(t, `
default_server = "missing"

[servers.local]
transport = "stdio"
command = "npx"
`)
		_, err := Load(name)
		assert.ErrorIs(t, err, ErrUnknownServer)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})
}

func TestConfig_Pick(t *testing.T) {
	cfg := Config{
		Servers: map[string]Server{
			"b": {Transport: TransportStdio, Command: "b"},
			"a": {Transport: TransportStdio, Command: "a"},
		},
	}
	tests := []struct {
		name      string
		cfg       Config
		preferred string
		want      string
		wantErr   error
	}{
		{"first alphabetically", cfg, "", "a", nil},
		{"preferred", cfg, "b", "b", nil},
		{"default server", Config{DefaultServer: "b", Servers: cfg.Servers}, "", "b", nil},
		{"preferred beats default", Config{DefaultServer: "b", Servers: cfg.Servers}, "a", "a", nil},
		{"unknown", cfg, "c", "", ErrUnknownServer},
		{"empty config", Config{}, "", "", ErrUnknownServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, srv, err := tt.cfg.Pick(tt.preferred)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, name)
			assert.Equal(t, tt.want, srv.Command)
		})
	}
}
