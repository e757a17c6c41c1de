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

package atlassian

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ishaanbajpai/Atlassian-mcp/internal/toolexec/mock_toolexec"
)

const testServer = "atlassian"

func TestClient_CloudID(t *testing.T) {
	tests := []struct {
		name   string
		resp   string
		err    error
		want   string
		wantOK bool
	}{
		{"first resource", `[{"id":"c1","name":"site"},{"id":"c2"}]`, nil, "c1", true},
		{"numeric id", `[{"id":12345}]`, nil, "12345", true},
		{"empty list", `[]`, nil, "", false},
		{"missing id", `[{"name":"site"}]`, nil, "", false},
		{"not json", `Sorry, I can't do that`, nil, "", false},
		{"not a list", `{"id":"c1"}`, nil, "", false},
		{"tool error", "", errors.New("401 unauthorized"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			exec := mock_toolexec.NewMockExecutor(ctrl)
			exec.EXPECT().
				CallTool(gomock.Any(), testServer, ToolAccessibleResources, map[string]any{}).
				Return(tt.resp, tt.err)

			got, ok := New(exec, testServer).CloudID(t.Context())
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Spaces(t *testing.T) {
	t.Run("decodes results", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		exec := mock_toolexec.NewMockExecutor(ctrl)
		exec.EXPECT().
			CallTool(gomock.Any(), testServer, ToolSpaces, map[string]any{"cloudId": "c1"}).
			Return(`{"results":[{"id":1,"key":"ENG","name":"Engineering"},"junk",{"id":"2","key":"HR","name":"People"}]}`, nil)

		got, err := New(exec, testServer).Spaces(t.Context(), "c1")
		require.NoError(t, err)
		assert.Equal(t, []Space{
			{ID: "1", Key: "ENG", Name: "Engineering"},
			{ID: "2", Key: "HR", Name: "People"},
		}, got)
	})
	t.Run("missing results", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		exec := mock_toolexec.NewMockExecutor(ctrl)
		exec.EXPECT().CallTool(gomock.Any(), testServer, ToolSpaces, gomock.Any()).Return(`[{"id":1}]`, nil)

		_, err := New(exec, testServer).Spaces(t.Context(), "c1")
		assert.ErrorIs(t, err, ErrBadResponse)
	})
	t.Run("tool error is passed through", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		exec := mock_toolexec.NewMockExecutor(ctrl)
		errConn := errors.New("connection refused")
		exec.EXPECT().CallTool(gomock.Any(), testServer, ToolSpaces, gomock.Any()).Return("", errConn)

		_, err := New(exec, testServer).Spaces(t.Context(), "c1")
		assert.ErrorIs(t, err, errConn)
		assert.NotErrorIs(t, err, ErrBadResponse)
	})
}

func TestClient_Pages(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mock_toolexec.NewMockExecutor(ctrl)
	exec.EXPECT().
		CallTool(gomock.Any(), testServer, ToolPagesInSpace, map[string]any{"cloudId": "c1", "spaceId": "S1"}).
		Return(`{"results":[{"id":"10","title":"Home"},{"title":"orphan"}]}`, nil)

	got, err := New(exec, testServer).Pages(t.Context(), "c1", "S1")
	require.NoError(t, err)
	assert.Equal(t, []PageSummary{{ID: "10", Title: "Home"}, {Title: "orphan"}}, got)
}

func TestClient_Page(t *testing.T) {
	tests := []struct {
		name    string
		resp    string
		want    map[string]any
		wantErr bool
	}{
		{"object", `{"id":"10","title":"Home","body":"<p>x</p>"}`, map[string]any{"id": "10", "title": "Home", "body": "<p>x</p>"}, false},
		{"list", `[1,2]`, nil, true},
		{"null", `null`, nil, true},
		{"prose", `Here is the page`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			exec := mock_toolexec.NewMockExecutor(ctrl)
			exec.EXPECT().
				CallTool(gomock.Any(), testServer, ToolPage, map[string]any{"cloudId": "c1", "pageId": "10"}).
				Return(tt.resp, nil)

			got, err := New(exec, testServer).Page(t.Context(), "c1", "10")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Descendants(t *testing.T) {
	tests := []struct {
		name    string
		resp    string
		want    []PageSummary
		wantErr bool
	}{
		{"list", ` [{"id":"D1","title":"One"},{"id":2}]`, []PageSummary{{ID: "D1", Title: "One"}, {ID: "2"}}, false},
		{"results object", `{"results":[{"id":"D1"}]}`, []PageSummary{{ID: "D1"}}, false},
		{"empty list", `[]`, []PageSummary{}, false},
		{"broken", `[{"id":`, nil, true},
		{"object without results", `{"size":0}`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			exec := mock_toolexec.NewMockExecutor(ctrl)
			exec.EXPECT().
				CallTool(gomock.Any(), testServer, ToolPageDescendants, map[string]any{"cloudId": "c1", "pageId": "P"}).
				Return(tt.resp, nil)

			got, err := New(exec, testServer).Descendants(t.Context(), "c1", "P")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    ID
		wantErr bool
	}{
		{"string", `"abc"`, "abc", false},
		{"integer", `42`, "42", false},
		{"large integer", `98765432101234`, "98765432101234", false},
		{"null", `null`, "", false},
		{"bool", `true`, "", true},
		{"object", `{}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			err := json.Unmarshal([]byte(tt.in), &id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
}
