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

package tools

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"

	"github.com/ishaanbajpai/Atlassian-mcp/internal/atlassian"
)

func TestPrintTools(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })

	tools := []mcp.Tool{
		{Name: atlassian.ToolPage, Description: "Get a page.\nMore details."},
		{Name: "createJiraIssue", Description: "Create an issue."},
	}
	t.Run("short", func(t *testing.T) {
		var buf bytes.Buffer
		printTools(&buf, "atlassian", tools, false)
		assert.Equal(t, "atlassian: 2 tools\n  getConfluencePage\n  createJiraIssue\n", buf.String())
	})
	t.Run("long", func(t *testing.T) {
		var buf bytes.Buffer
		printTools(&buf, "atlassian", tools, true)
		assert.Contains(t, buf.String(), "  getConfluencePage\tGet a page.\n")
		assert.NotContains(t, buf.String(), "More details")
	})
}

func TestIsRequired(t *testing.T) {
	assert.True(t, isRequired(atlassian.ToolSpaces))
	assert.False(t, isRequired("createJiraIssue"))
}
