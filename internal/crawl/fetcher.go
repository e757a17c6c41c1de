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

package crawl

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/ishaanbajpai/Atlassian-mcp/internal/atlassian"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/content"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/persist"
)

const (
	errNoContent = "no HTML content found"
	errParse     = "failed to parse response for " + atlassian.ToolPage
)

// FetchRequest describes a single page to fetch.
type FetchRequest struct {
	CloudID   string
	PageID    string
	TitleHint string
	// BaseDir is the directory, relative to the output directory, where the
	// page is saved.
	BaseDir string
	// ParentID, if set, puts the page into the "page_<ParentID>_descendants"
	// subdirectory of BaseDir.
	ParentID string
}

// Fetcher gets a page and saves its content.
type Fetcher struct {
	api   API
	saver Saver
	lg    *slog.Logger
}

// NewFetcher returns a new Fetcher.
func NewFetcher(api API, s Saver, lg *slog.Logger) *Fetcher {
	if lg == nil {
		lg = slog.Default()
	}
	return &Fetcher{api: api, saver: s, lg: lg}
}

func (f *Fetcher) withLogger(lg *slog.Logger) *Fetcher {
	cp := *f
	cp.lg = lg
	return &cp
}

// DescendantsDir returns the name of the directory for the descendants of
// the page parentID.
func DescendantsDir(parentID string) string {
	return "page_" + persist.Sanitize(parentID) + "_descendants"
}

// Fetch gets the page, extracts and saves its content.  It never fails,
// the errors are reported in the PageResult.
func (f *Fetcher) Fetch(ctx context.Context, req FetchRequest) PageResult {
	lg := f.lg.With("page_id", req.PageID)

	resp, err := f.api.Page(ctx, req.CloudID, req.PageID)
	if err != nil {
		lg.ErrorContext(ctx, "failed to get page", "error", err)
		msg := err.Error()
		if errors.Is(err, atlassian.ErrBadResponse) {
			msg = errParse
		}
		return PageResult{ID: req.PageID, Title: req.TitleHint, Error: msg}
	}

	html, strategy, ok := content.Extract(resp)
	if !ok {
		lg.WarnContext(ctx, "no content in the page response", "keys", keys(resp))
		return PageResult{ID: req.PageID, Title: req.TitleHint, Error: errNoContent}
	}
	html = content.Normalize(html)

	title := firstOf(stringField(resp, "title"), req.TitleHint, content.Title(html), "page_"+req.PageID)
	id := firstOf(idField(resp, "id"), req.PageID)

	dir := req.BaseDir
	var segment string
	if req.ParentID != "" {
		segment = DescendantsDir(req.ParentID)
		dir = filepath.Join(dir, segment)
	}
	base := filepath.Join(dir, "page_"+persist.Sanitize(id)+persist.Ext)

	path, err := f.saver.Save(html, base, title, id)
	if err != nil {
		return PageResult{ID: id, Title: title, Error: err.Error(), PathSegment: segment}
	}
	lg.DebugContext(ctx, "page saved", "strategy", strategy, "path", path)
	return PageResult{ID: id, Title: title, Saved: true, PathSegment: segment, Path: path}
}

func firstOf(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// idField returns the string or numeric field as a string.
func idField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	return ""
}

func keys(m map[string]any) []string {
	kk := make([]string, 0, len(m))
	for k := range m {
		kk = append(kk, k)
	}
	return kk
}
