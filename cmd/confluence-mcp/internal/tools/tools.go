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

// Package tools contains the command that checks the MCP server connection.
package tools

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/cfg"
	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/golang/base"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/app"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/atlassian"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/toolexec"
)

var CmdTools = &base.Command{
	UsageLine: base.CmdName + " tools [flags]",
	Short:     "connect to the MCP server and list its tools",
	Long: `
# Tools Command

Tools connects to the configured MCP server, prints the tools it offers and
the Atlassian Cloud ID of the first accessible site.  Use it to check the
server configuration and the authentication.
`,
	FlagMask:   cfg.OmitOutputFlag,
	PrintFlags: true,
	Run:        runTools,
}

var verbose bool

func init() {
	CmdTools.Flag.BoolVar(&verbose, "long", false, "print the tool descriptions")
}

func runTools(ctx context.Context, cmd *base.Command, args []string) error {
	lg := cfg.Log
	a, err := app.New(ctx, cfg.AppOptions(), lg)
	if err != nil {
		base.SetExitStatus(base.SInitializationError)
		return err
	}
	defer a.Close()

	tools, err := a.Manager().Tools(ctx, a.Server())
	if err != nil {
		if toolexec.NeedsAdmin(err) {
			base.SetExitStatus(base.SConnectionError)
		} else {
			base.SetExitStatus(base.SApplicationError)
		}
		return err
	}
	printTools(os.Stdout, a.Server(), tools, verbose)

	api := atlassian.New(a.Manager(), a.Server(), atlassian.WithLogger(lg))
	if id, ok := api.CloudID(ctx); ok {
		fmt.Fprintf(os.Stdout, "\nCloud ID: %s\n", color.GreenString(id))
	} else {
		fmt.Fprintf(os.Stdout, "\nCloud ID: %s\n", color.RedString("not available"))
	}
	return nil
}

// printTools prints the tool names, and, if long is true, the first line of
// their descriptions.
func printTools(w io.Writer, server string, tools []mcp.Tool, long bool) {
	bold := color.New(color.Bold)
	fmt.Fprintf(w, "%s: %d tools\n", bold.Sprint(server), len(tools))
	for _, t := range tools {
		name := t.Name
		if isRequired(name) {
			name = color.CyanString(name)
		}
		if !long {
			fmt.Fprintf(w, "  %s\n", name)
			continue
		}
		desc, _, _ := strings.Cut(strings.TrimSpace(t.Description), "\n")
		fmt.Fprintf(w, "  %s\t%s\n", name, desc)
	}
}

// required are the tools the export uses.
var required = []string{
	atlassian.ToolAccessibleResources,
	atlassian.ToolSpaces,
	atlassian.ToolPagesInSpace,
	atlassian.ToolPage,
	atlassian.ToolPageDescendants,
}

func isRequired(name string) bool {
	return slices.Contains(required, name)
}
