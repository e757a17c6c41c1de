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

// Package base defines shared basic pieces of the confluence-mcp command,
// in particular logging and the Command structure.
package base

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/cfg"
)

// CmdName is the name of the executable.
const CmdName = "confluence-mcp"

// A Command is an implementation of a confluence-mcp command.
type Command struct {
	// Run runs the command.
	// The args are the arguments after the command name.
	Run func(ctx context.Context, cmd *Command, args []string) error

	// UsageLine is the one-line usage message.
	UsageLine string

	// Short is the short description shown in the 'help' output.
	Short string

	// Long is the long message shown in the 'help <this-command>' output.
	Long string

	// Flag is a set of flags specific to this command.
	Flag flag.FlagSet

	// FlagMask selects the common flags that are not applicable to this
	// command.
	FlagMask cfg.FlagMask

	// CustomFlags indicates that the command will do its own
	// flag parsing.
	CustomFlags bool

	// PrintFlags indicates that generic help handler should print the
	// flags in the flagset.
	PrintFlags bool

	// Commands lists the available commands and help topics.
	// The order here is the order in which they are printed by 'help'.
	Commands []*Command
}

// Root is the top level command.
var Root = &Command{
	UsageLine: CmdName,
	Long:      `Confluence-mcp exports Confluence pages through the Atlassian MCP server.`,
	// Commands initialised in main.
}

var (
	exitStatus = 0
	exitMu     sync.Mutex
)

// SetExitStatus sets the exit status, if n is greater than the current one.
func SetExitStatus(n StatusCode) {
	exitMu.Lock()
	if exitStatus < int(n) {
		exitStatus = int(n)
	}
	exitMu.Unlock()
}

// GetExitStatus returns the current exit status.
func GetExitStatus() StatusCode {
	exitMu.Lock()
	defer exitMu.Unlock()
	return StatusCode(exitStatus)
}

var atExitFuncs []func()

// AtExit registers the function to be called on Exit.
func AtExit(f func()) {
	atExitFuncs = append(atExitFuncs, f)
}

// Exit runs the registered AtExit functions and exits with the exit status.
func Exit() {
	for _, f := range atExitFuncs {
		f()
	}
	os.Exit(exitStatus)
}

// Runnable reports whether the command can be run; otherwise
// it is a documentation pseudo-command.
func (c *Command) Runnable() bool {
	return c.Run != nil
}

// LongName returns the command's long name: all the words in the usage line
// between the executable name and a flag or argument.
func (c *Command) LongName() string {
	name := c.UsageLine
	if i := strings.Index(name, " ["); i >= 0 {
		name = name[:i]
	}
	if name == CmdName {
		return ""
	}
	return strings.TrimPrefix(name, CmdName+" ")
}

// Name returns the command's short name: the last word in the usage line
// before a flag or argument.
func (c *Command) Name() string {
	name := c.LongName()
	if i := strings.LastIndex(name, " "); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Usage prints the usage line of the command and its flags to the flag set
// output.
func (c *Command) Usage() {
	w := c.Flag.Output()
	fmt.Fprintf(w, "usage: %s\n", c.UsageLine)
	fmt.Fprintf(w, "Run '%s help %s' for details.\n", CmdName, c.LongName())
	c.Flag.PrintDefaults()
}

// Lookup returns the subcommand with the given name, or nil.
func (c *Command) Lookup(name string) *Command {
	for _, sub := range c.Commands {
		if sub.Name() == name {
			return sub
		}
	}
	return nil
}
