// This package is based on the Golang source code with some modifications.
//
// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package help implements the "help" command.
package help

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/cfg"
	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/golang/base"
)

// CmdHelp is the "help" pseudo-command, it is dispatched by main.
var CmdHelp = &base.Command{
	UsageLine:   base.CmdName + " help [command]",
	Short:       "show help for a command",
	CustomFlags: true,
	Long: `
Help prints the usage of the command and its flags.  Without arguments, it
lists all commands.
`,
}

// PrintUsage prints the list of the subcommands of cmd.
func PrintUsage(w io.Writer, cmd *base.Command) error {
	bw := bufio.NewWriter(w)
	if err := tmpl(bw, usageTemplate, cmd); err != nil {
		return err
	}
	return bw.Flush()
}

// tmpl executes the given template text on data, writing the result to w.
func tmpl(w io.Writer, text string, data any) error {
	t := template.New("top")
	t.Funcs(template.FuncMap{"trim": strings.TrimSpace, "capitalize": capitalize, "cmdName": func() string { return base.CmdName }})
	template.Must(t.Parse(text))
	return t.Execute(w, data)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToTitle(r)) + s[n:]
}

// Help implements the 'help' command.  It writes the help on the command
// named by args to w.
func Help(w io.Writer, args []string) error {
	cmd := base.Root
Args:
	for i, arg := range args {
		if sub := cmd.Lookup(arg); sub != nil {
			cmd = sub
			continue Args
		}

		// helpSuccess is the help command using as many args as possible that would succeed.
		helpSuccess := base.CmdName + " help"
		if i > 0 {
			helpSuccess += " " + strings.Join(args[:i], " ")
		}
		base.SetExitStatus(base.SInvalidParameters)
		return fmt.Errorf("%s help %s: unknown help topic. Run '%s'", base.CmdName, strings.Join(args, " "), helpSuccess)
	}

	if len(cmd.Commands) > 0 {
		return PrintUsage(w, cmd)
	}
	if err := tmpl(w, helpTemplate, cmd); err != nil {
		return err
	}
	if cmd.PrintFlags {
		fmt.Fprintln(w, "\nFlags:")
		if !cmd.CustomFlags {
			cfg.SetBaseFlags(&cmd.Flag, cmd.FlagMask)
		}
		cmd.Flag.SetOutput(w)
		cmd.Flag.PrintDefaults()
	}
	return nil
}

func init() {
	CmdHelp.Run = func(ctx context.Context, cmd *base.Command, args []string) error {
		return Help(os.Stdout, args)
	}
}
