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

// Command confluence-mcp exports Confluence content through the Atlassian
// remote MCP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/cfg"
	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/export"
	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/golang/base"
	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/golang/help"
	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/mcp"
	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/serve"
	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/tools"
)

// secrets defines the names of the supported secret files that we load our
// secrets from.  Inexperienced windows users might have bad experience trying
// to create .env file with the notepad as it will battle for having the
// "txt" extension.  Let it have it.
var secrets = []string{".env", ".env.txt", "secrets.txt"}

func init() {
	base.Root.Commands = []*base.Command{
		serve.CmdServe,
		export.CmdExport,
		mcp.CmdMCP,
		tools.CmdTools,
		CmdVersion,
		help.CmdHelp,
	}
}

func main() {
	loadSecrets(secrets)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := invoke(ctx, os.Args[1:]); err != nil {
		if base.GetExitStatus() == base.SNoError {
			base.SetExitStatus(base.SGenericError)
		}
		slog.ErrorContext(ctx, "command failed", "error", err)
	}
	stop()
	base.Exit()
}

var errUnknownCommand = errors.New("unknown command")

// invoke parses the flags of the command named by the first argument and
// runs it.
func invoke(ctx context.Context, args []string) error {
	if len(args) == 0 {
		base.SetExitStatus(base.SHelpRequested)
		return help.PrintUsage(os.Stderr, base.Root)
	}
	cmd := base.Root.Lookup(args[0])
	if cmd == nil || !cmd.Runnable() {
		base.SetExitStatus(base.SInvalidParameters)
		return fmt.Errorf("%s %s: %w, run '%s help'", base.CmdName, args[0], errUnknownCommand, base.CmdName)
	}
	args = args[1:]
	if !cmd.CustomFlags {
		cfg.SetBaseFlags(&cmd.Flag, cmd.FlagMask)
		cmd.Flag.Usage = cmd.Usage
		if err := cmd.Flag.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				base.SetExitStatus(base.SHelpRequested)
				return nil
			}
			base.SetExitStatus(base.SInvalidParameters)
			return err
		}
		args = cmd.Flag.Args()
	}

	lg, err := initLog(cfg.LogFile, cfg.JSONHandler, cfg.Verbose)
	if err != nil {
		base.SetExitStatus(base.SInitializationError)
		return err
	}
	cfg.Log = lg

	stopTrace := initTrace(cfg.TraceFile)
	defer stopTrace()

	return cmd.Run(ctx, cmd, args)
}

// loadSecrets load secrets from the files in secrets slice.
func loadSecrets(files []string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}
