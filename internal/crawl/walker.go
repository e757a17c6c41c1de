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
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ishaanbajpai/Atlassian-mcp/internal/atlassian"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/persist"
)

const (
	errMissingID      = "missing ID"
	errMissingSpaceID = "missing space ID"
	unknownTitle      = "Unknown (missing ID)"
)

// Walker exports spaces and page trees.  Pages are processed one at a
// time, in the listing order.
type Walker struct {
	api      API
	fetcher  *Fetcher
	lg       *slog.Logger
	progress func(PageResult)
}

// Option configures the Walker.
type Option func(*Walker)

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(w *Walker) {
		if lg != nil {
			w.lg = lg
		}
	}
}

// WithProgress sets the function that is called after each page.
func WithProgress(fn func(PageResult)) Option {
	return func(w *Walker) {
		w.progress = fn
	}
}

// NewWalker returns a Walker that gets the data through api and saves the
// pages with s.
func NewWalker(api API, s Saver, opts ...Option) *Walker {
	w := &Walker{
		api: api,
		lg:  slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.fetcher = NewFetcher(api, s, w.lg)
	return w
}

// run holds the state of a single export.
type run struct {
	*Walker
	lg      *slog.Logger
	fetcher *Fetcher
	cloudID string
}

// start resolves the cloud ID and returns the run, all log messages of the
// run carry the run_id.
func (w *Walker) start(ctx context.Context, flow string, attrs ...any) (*run, error) {
	lg := w.lg.With(append([]any{"run_id", uuid.NewString(), "flow", flow}, attrs...)...)
	lg.InfoContext(ctx, "export started")
	cloudID, ok := w.api.CloudID(ctx)
	if !ok {
		lg.ErrorContext(ctx, "cloud id is not available")
		return nil, ErrNoCloudID
	}
	return &run{
		Walker:  w,
		lg:      lg,
		fetcher: w.fetcher.withLogger(lg),
		cloudID: cloudID,
	}, nil
}

func (r *run) fetch(ctx context.Context, req FetchRequest) PageResult {
	req.CloudID = r.cloudID
	res := r.fetcher.Fetch(ctx, req)
	if r.progress != nil {
		r.progress(res)
	}
	return res
}

// missing records the page summary without ID.
func (r *run) missing(ctx context.Context, ps atlassian.PageSummary) PageResult {
	r.lg.WarnContext(ctx, "skipping page with missing ID", "title", ps.Title)
	res := PageResult{Title: firstOf(ps.Title, unknownTitle), Error: errMissingID}
	if r.progress != nil {
		r.progress(res)
	}
	return res
}

// pages fetches all pages in the listing into base.
func (r *run) pages(ctx context.Context, base, parentID string, list []atlassian.PageSummary) ([]PageResult, error) {
	results := make([]PageResult, 0, len(list))
	for _, ps := range list {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if ps.ID == "" {
			results = append(results, r.missing(ctx, ps))
			continue
		}
		id := ps.ID.String()
		results = append(results, r.fetch(ctx, FetchRequest{
			PageID:    id,
			TitleHint: firstOf(ps.Title, "page_"+id),
			BaseDir:   base,
			ParentID:  parentID,
		}))
	}
	return results, nil
}

// listingErr wraps the listing error.  The malformed listings are reported
// as ErrInvalidResponse, other errors are returned as is to be classified
// by the caller.
func listingErr(err error) error {
	if errors.Is(err, atlassian.ErrBadResponse) {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return err
}

// Space exports all pages of the space with the given name or key.
func (w *Walker) Space(ctx context.Context, name string) (SpaceReport, error) {
	if strings.TrimSpace(name) == "" {
		return SpaceReport{}, fmt.Errorf("%w: space_name is required", ErrInvalidRequest)
	}
	r, err := w.start(ctx, "space", "space_name", name)
	if err != nil {
		return SpaceReport{}, err
	}
	spaces, err := r.api.Spaces(ctx, r.cloudID)
	if err != nil {
		return SpaceReport{}, listingErr(err)
	}
	sp, ok := findSpace(spaces, name)
	if !ok {
		r.lg.WarnContext(ctx, "space not found", "spaces_checked", len(spaces))
		return SpaceReport{}, fmt.Errorf("%w: %q", ErrSpaceNotFound, name)
	}
	spaceID := sp.ID.String()
	r.lg.InfoContext(ctx, "space found", "space_id", spaceID, "space_key", sp.Key)

	list, err := r.api.Pages(ctx, r.cloudID, spaceID)
	if err != nil {
		return SpaceReport{}, listingErr(err)
	}
	r.lg.InfoContext(ctx, "pages listed", "count", len(list))

	results, err := r.pages(ctx, filepath.Join(DirSpaces, persist.Sanitize(name)), "", list)
	if err != nil {
		return SpaceReport{}, err
	}
	rep := SpaceReport{
		SpaceID:        spaceID,
		SpaceName:      name,
		PagesProcessed: len(results),
		PageDetails:    results,
	}
	r.lg.InfoContext(ctx, "export finished", "pages", len(results), "saved", savedCount(results))
	return rep, nil
}

// findSpace returns the first space with ID that has the name or key
// equal to name, ignoring case.
func findSpace(spaces []atlassian.Space, name string) (atlassian.Space, bool) {
	for _, s := range spaces {
		if s.ID == "" {
			continue
		}
		if strings.EqualFold(s.Name, name) || strings.EqualFold(s.Key, name) {
			return s, true
		}
	}
	return atlassian.Space{}, false
}

// Validate checks that the query can be served.  Lookup by the page name
// is not supported.
func (q PageQuery) Validate() error {
	switch {
	case q.PageID == "" && q.PageName == "":
		return fmt.Errorf("%w: either page_id or page_name must be provided", ErrInvalidRequest)
	case q.Recursive && q.PageID == "":
		return fmt.Errorf("%w: page_id is required for recursive fetching", ErrInvalidRequest)
	case q.PageID == "":
		return fmt.Errorf("%w: page_id is required when page_name is used, search by name is not supported", ErrInvalidRequest)
	}
	return nil
}

// Page exports the page and, if the query is recursive, all of its
// descendants.  The main page comes first in the report.
func (w *Walker) Page(ctx context.Context, q PageQuery) (PageReport, error) {
	if err := q.Validate(); err != nil {
		return PageReport{}, err
	}
	r, err := w.start(ctx, "page", "page_id", q.PageID, "recursive", q.Recursive)
	if err != nil {
		return PageReport{}, err
	}
	rep := PageReport{Recursive: q.Recursive}
	rep.Pages = append(rep.Pages, r.fetch(ctx, FetchRequest{
		PageID:    q.PageID,
		TitleHint: q.PageName,
		BaseDir:   DirPages,
	}))
	if !q.Recursive {
		return rep, nil
	}

	list, err := r.api.Descendants(ctx, r.cloudID, q.PageID)
	if err != nil {
		if !errors.Is(err, atlassian.ErrBadResponse) {
			return PageReport{}, err
		}
		r.lg.ErrorContext(ctx, "descendants listing is unusable, returning the main page only", "error", err)
		return rep, nil
	}
	r.lg.InfoContext(ctx, "descendants listed", "count", len(list))
	results, err := r.pages(ctx, DirPages, q.PageID, list)
	if err != nil {
		return PageReport{}, err
	}
	rep.Pages = append(rep.Pages, results...)
	r.lg.InfoContext(ctx, "export finished", "pages", len(rep.Pages), "saved", savedCount(rep.Pages))
	return rep, nil
}

// AllSpaces exports all pages of all accessible spaces.  Failure to list
// the pages of a space is recorded in its summary.
func (w *Walker) AllSpaces(ctx context.Context) (AllReport, error) {
	r, err := w.start(ctx, "all")
	if err != nil {
		return AllReport{}, err
	}
	spaces, err := r.api.Spaces(ctx, r.cloudID)
	if err != nil {
		return AllReport{}, listingErr(err)
	}
	r.lg.InfoContext(ctx, "spaces listed", "count", len(spaces))

	rep := AllReport{TotalSpaces: len(spaces), Spaces: make([]SpaceSummary, 0, len(spaces))}
	for _, sp := range spaces {
		if err := ctx.Err(); err != nil {
			return AllReport{}, err
		}
		rep.Spaces = append(rep.Spaces, r.space(ctx, sp))
	}
	r.lg.InfoContext(ctx, "export finished", "spaces", len(rep.Spaces))
	return rep, nil
}

func (r *run) space(ctx context.Context, sp atlassian.Space) SpaceSummary {
	id := sp.ID.String()
	sum := SpaceSummary{
		SpaceID:     id,
		SpaceName:   sp.Name,
		SpaceKey:    sp.Key,
		PageResults: []PageResult{},
	}
	if id == "" {
		r.lg.WarnContext(ctx, "skipping space with missing ID", "space_name", sp.Name, "space_key", sp.Key)
		sum.Error = errMissingSpaceID
		return sum
	}
	if sum.SpaceName == "" {
		sum.SpaceName = "space_" + id
	}
	lg := r.lg.With("space_id", id, "space_key", sp.Key)

	list, err := r.api.Pages(ctx, r.cloudID, id)
	if err != nil {
		lg.ErrorContext(ctx, "failed to list pages", "error", err)
		sum.Error = err.Error()
		return sum
	}
	sum.PagesFound = len(list)
	results, err := r.pages(ctx, filepath.Join(DirAllSpaces, persist.Sanitize(sum.SpaceName)), "", list)
	if err != nil {
		sum.Error = err.Error()
	}
	sum.PageResults = results
	lg.InfoContext(ctx, "space processed", "pages", len(results), "saved", savedCount(results))
	return sum
}
