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

// Package crawl walks Confluence spaces and page trees, and saves the
// content of every page it visits.
package crawl

import (
	"context"
	"errors"
	"fmt"

	"github.com/ishaanbajpai/Atlassian-mcp/internal/atlassian"
)

// Output areas, relative to the output directory.
const (
	DirSpaces    = "spaces_direct_tool"
	DirPages     = "pages_direct_tool"
	DirAllSpaces = "all_spaces_direct_tool"
)

var (
	// ErrNoCloudID is returned when the cloud ID could not be resolved.
	ErrNoCloudID = errors.New("failed to retrieve necessary Cloud ID from Atlassian")
	// ErrSpaceNotFound is returned when no space matches the name or key.
	ErrSpaceNotFound = errors.New("space not found")
	// ErrInvalidRequest is returned when the request parameters are
	// incomplete or unsupported.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidResponse is returned when a listing, required to identify
	// the target, has an unexpected shape.
	ErrInvalidResponse = errors.New("invalid response")
)

// API is the subset of the Atlassian tools the walker uses.
type API interface {
	CloudID(ctx context.Context) (string, bool)
	Spaces(ctx context.Context, cloudID string) ([]atlassian.Space, error)
	Pages(ctx context.Context, cloudID, spaceID string) ([]atlassian.PageSummary, error)
	Page(ctx context.Context, cloudID, pageID string) (map[string]any, error)
	Descendants(ctx context.Context, cloudID, pageID string) ([]atlassian.PageSummary, error)
}

var _ API = (*atlassian.Client)(nil)

// Saver persists the page content.
type Saver interface {
	Save(content, base, title, id string) (string, error)
}

// PageResult is the outcome of a single page fetch.
type PageResult struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
	Saved bool   `json:"saved"`
	Error string `json:"error,omitempty"`
	// PathSegment is the "page_<parent>_descendants" directory for the
	// descendant pages.
	PathSegment string `json:"path_segment,omitempty"`
	// Path is the file path relative to the output directory.
	Path string `json:"path,omitempty"`
}

// SpaceSummary is the outcome of a single space in the all-spaces export.
type SpaceSummary struct {
	SpaceID     string       `json:"space_id,omitempty"`
	SpaceName   string       `json:"space_name"`
	SpaceKey    string       `json:"space_key,omitempty"`
	PagesFound  int          `json:"pages_found"`
	PageResults []PageResult `json:"page_results"`
	Error       string       `json:"error,omitempty"`
}

// SpaceReport is the outcome of the single space export.
type SpaceReport struct {
	SpaceID        string       `json:"space_id"`
	SpaceName      string       `json:"space_name"`
	PagesProcessed int          `json:"pages_processed"`
	PageDetails    []PageResult `json:"page_details"`
}

// Message returns the human readable summary.
func (r SpaceReport) Message() string {
	return fmt.Sprintf("Content for space '%s' (ID: %s) processed. %d pages saved.", r.SpaceName, r.SpaceID, savedCount(r.PageDetails))
}

// PageQuery selects the page to export.
type PageQuery struct {
	PageID    string
	PageName  string
	SpaceName string
	Recursive bool
}

// PageReport is the outcome of the page export.
type PageReport struct {
	Pages     []PageResult `json:"pages_processed_details"`
	Recursive bool         `json:"recursive_request"`
}

// Message returns the human readable summary.
func (r PageReport) Message() string {
	return fmt.Sprintf("Page content retrieval complete. Processed %d page(s).", len(r.Pages))
}

// AllReport is the outcome of the all-spaces export.
type AllReport struct {
	TotalSpaces int            `json:"total_spaces_scanned"`
	Spaces      []SpaceSummary `json:"spaces_summary"`
}

// Message returns the human readable summary.
func (r AllReport) Message() string {
	return fmt.Sprintf("Processed all accessible spaces. %d spaces attempted.", len(r.Spaces))
}

func savedCount(rr []PageResult) int {
	var n int
	for _, r := range rr {
		if r.Saved {
			n++
		}
	}
	return n
}
