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

// Package export contains the command that exports the content from the
// command line.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/cfg"
	"github.com/ishaanbajpai/Atlassian-mcp/cmd/confluence-mcp/internal/golang/base"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/app"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/crawl"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/osext"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/server"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/toolexec"
)

var CmdExport = &base.Command{
	UsageLine: base.CmdName + " export [flags]",
	Short:     "export Confluence content from the command line",
	Long: `
# Export Command

Export saves the Confluence content in the output directory, the same way
the HTTP API does.  Exactly one of the flags must be given:

    -space <name or key>    all pages of the space
    -page <id>              a single page, with -recursive, its descendants
    -all                    all pages of all accessible spaces

The report is printed to STDOUT as JSON with -json.
`,
	Run:        runExport,
	PrintFlags: true,
	FlagMask:   cfg.DefaultFlags,
}

type flags struct {
	space     string
	pageID    string
	pageName  string
	recursive bool
	all       bool
	json      bool
}

var params flags

func init() {
	CmdExport.Flag.StringVar(&params.space, "space", "", "space `name` or key")
	CmdExport.Flag.StringVar(&params.pageID, "page", "", "page `id`")
	CmdExport.Flag.StringVar(&params.pageName, "page-name", "", "page `title` to use if the page has none")
	CmdExport.Flag.BoolVar(&params.recursive, "recursive", false, "also export the page descendants")
	CmdExport.Flag.BoolVar(&params.all, "all", false, "export all accessible spaces")
	CmdExport.Flag.BoolVar(&params.json, "json", false, "print the report as JSON")
}

var errMode = errors.New("exactly one of -space, -page or -all must be specified")

func (f flags) validate() error {
	var n int
	if f.space != "" {
		n++
	}
	if f.pageID != "" || f.pageName != "" {
		n++
	}
	if f.all {
		n++
	}
	if n != 1 {
		return errMode
	}
	return nil
}

func runExport(ctx context.Context, cmd *base.Command, args []string) error {
	if err := params.validate(); err != nil {
		base.SetExitStatus(base.SInvalidParameters)
		return err
	}
	lg := cfg.Log

	a, err := app.New(ctx, cfg.AppOptions(), lg)
	if err != nil {
		base.SetExitStatus(base.SInitializationError)
		return err
	}
	defer a.Close()
	if !a.Connected() {
		base.SetExitStatus(base.SConnectionError)
		return fmt.Errorf("%s: %w", a.Server(), toolexec.ErrNotConnected)
	}

	pb := newProgressBar(ctx, lg)
	start := time.Now()
	resp, results, err := run(ctx, a.Walker(crawl.WithProgress(func(pr crawl.PageResult) {
		pb.Describe(pr.Title)
		_ = pb.Add(1)
	})), params)
	_ = pb.Finish()
	if err != nil {
		_, detail := server.Status(err)
		base.SetExitStatus(base.SApplicationError)
		return fmt.Errorf("%s: %w", detail, err)
	}
	lg.InfoContext(ctx, resp.Message)

	if params.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
	summary(os.Stderr, a.OutputDir(), results, time.Since(start))
	return nil
}

// exporter runs the exports.
type exporter interface {
	Space(ctx context.Context, name string) (crawl.SpaceReport, error)
	Page(ctx context.Context, q crawl.PageQuery) (crawl.PageReport, error)
	AllSpaces(ctx context.Context) (crawl.AllReport, error)
}

// run runs the export selected by f and returns the response and all page
// results.
func run(ctx context.Context, e exporter, f flags) (server.Response, []crawl.PageResult, error) {
	switch {
	case f.space != "":
		rep, err := e.Space(ctx, f.space)
		if err != nil {
			return server.Response{}, nil, err
		}
		return server.Response{Data: rep, Message: rep.Message()}, rep.PageDetails, nil
	case f.all:
		rep, err := e.AllSpaces(ctx)
		if err != nil {
			return server.Response{}, nil, err
		}
		var results []crawl.PageResult
		for _, s := range rep.Spaces {
			results = append(results, s.PageResults...)
		}
		return server.Response{Data: rep, Message: rep.Message()}, results, nil
	default:
		rep, err := e.Page(ctx, crawl.PageQuery{PageID: f.pageID, PageName: f.pageName, Recursive: f.recursive})
		if err != nil {
			return server.Response{}, nil, err
		}
		return server.Response{Data: rep, Message: rep.Message()}, rep.Pages, nil
	}
}

// summary prints the number of the saved and failed pages, and the size of
// the saved files.
func summary(w io.Writer, root string, results []crawl.PageResult, took time.Duration) {
	var (
		saved, failed int64
		size          uint64
	)
	for _, r := range results {
		if !r.Saved {
			failed++
			continue
		}
		saved++
		if fi, err := os.Stat(filepath.Join(root, r.Path)); err == nil {
			size += uint64(fi.Size())
		}
	}
	fmt.Fprintf(w, "Saved %s pages (%s) to %s in %s", humanize.Comma(saved), humanize.Bytes(size), root, took.Round(time.Second))
	if failed > 0 {
		fmt.Fprintf(w, ", %s failed", humanize.Comma(failed))
	}
	fmt.Fprintln(w)
}

func newProgressBar(ctx context.Context, lg *slog.Logger) *progressbar.ProgressBar {
	if lg.Enabled(ctx, slog.LevelDebug) || !osext.IsTerminal(os.Stderr) {
		return progressbar.DefaultSilent(-1)
	}
	pb := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Exporting"),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSpinnerType(8),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(os.Stderr),
	)
	_ = pb.RenderBlank()
	return pb
}
