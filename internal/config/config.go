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

// Package config loads the MCP server definitions.
//
// The file is TOML:
//
//	default_server = "atlassian"
//
//	[servers.atlassian]
//	transport = "stdio"
//	command = "npx"
//	args = ["-y", "mcp-remote", "https://mcp.atlassian.com/v1/sse"]
//
//	[servers.direct]
//	transport = "http"
//	url = "https://mcp.example.com/mcp"
//	token = "..."
package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ishaanbajpai/Atlassian-mcp/internal/validation"
)

// Transport is the way the client talks to the MCP server.
type Transport string

const (
	TransportStdio Transport = "stdio" // spawn a local process
	TransportSSE   Transport = "sse"   // legacy HTTP+SSE
	TransportHTTP  Transport = "http"  // streamable HTTP
)

// DefaultServerName is the name of the built-in server definition.
const DefaultServerName = "atlassian"

var (
	ErrUnknownKeys   = errors.New("unknown configuration keys")
	ErrUnknownServer = errors.New("unknown server")
)

// Server describes a single MCP server.
type Server struct {
	Transport Transport `toml:"transport" validate:"required,oneof=stdio sse http"`
	Command   string    `toml:"command" validate:"required_if=Transport stdio"`
	Args      []string  `toml:"args"`
	// Env is a list of "KEY=value" pairs passed to the stdio process.
	Env   []string `toml:"env"`
	URL   string   `toml:"url" validate:"required_unless=Transport stdio,omitempty,url"`
	Token string   `toml:"token"`
}

// Config is the set of known MCP servers.
type Config struct {
	DefaultServer string            `toml:"default_server"`
	Servers       map[string]Server `toml:"servers" validate:"required,min=1,dive"`
}

var validate = validation.New("toml")

// Default returns the configuration used when no file is given: the
// Atlassian remote server bridged through mcp-remote.
func Default() Config {
	return Config{
		DefaultServer: DefaultServerName,
		Servers: map[string]Server{
			DefaultServerName: {
				Transport: TransportStdio,
				Command:   "npx",
				Args:      []string{"-y", "mcp-remote", "https://mcp.atlassian.com/v1/sse"},
			},
		},
	}
}

// Load reads the configuration file.  If filename is empty, it returns
// [Default].
func Load(filename string) (Config, error) {
	if filename == "" {
		return Default(), nil
	}
	var cfg Config
	md, err := toml.DecodeFile(filename, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", filename, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s: %w: %s", filename, ErrUnknownKeys, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", filename, err)
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.DefaultServer != "" {
		if _, ok := c.Servers[c.DefaultServer]; !ok {
			return fmt.Errorf("default_server: %w: %q", ErrUnknownServer, c.DefaultServer)
		}
	}
	return nil
}

// Names returns sorted server names.
func (c Config) Names() []string {
	return slices.Sorted(maps.Keys(c.Servers))
}

// Pick returns the name and definition of the server to use.  The
// preferred name wins if set, then the default_server, and lastly the
// first server in the alphabetical order.
func (c Config) Pick(preferred string) (string, Server, error) {
	name := preferred
	if name == "" {
		name = c.DefaultServer
	}
	if name == "" {
		names := c.Names()
		if len(names) == 0 {
			return "", Server{}, ErrUnknownServer
		}
		name = names[0]
	}
	srv, ok := c.Servers[name]
	if !ok {
		return "", Server{}, fmt.Errorf("%w: %q", ErrUnknownServer, name)
	}
	return name, srv, nil
}
