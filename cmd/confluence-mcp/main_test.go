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

package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_loadSecrets(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CONFLUENCE_MCP_TEST_SECRET=xyzzy\n"), 0o600))
	t.Setenv("CONFLUENCE_MCP_TEST_SECRET", "")
	require.NoError(t, os.Unsetenv("CONFLUENCE_MCP_TEST_SECRET"))

	loadSecrets([]string{filepath.Join(dir, "missing.txt"), envFile})
	assert.Equal(t, "xyzzy", os.Getenv("CONFLUENCE_MCP_TEST_SECRET"))
}

func Test_invoke(t *testing.T) {
	t.Run("unknown command", func(t *testing.T) {
		err := invoke(t.Context(), []string{"frobnicate"})
		assert.ErrorIs(t, err, errUnknownCommand)
	})
	t.Run("version", func(t *testing.T) {
		assert.NoError(t, invoke(t.Context(), []string{"version"}))
	})
	t.Run("bad flag", func(t *testing.T) {
		err := invoke(t.Context(), []string{"export", "-no-such-flag"})
		assert.Error(t, err)
	})
}

func Test_initLog(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	logFile := filepath.Join(t.TempDir(), "app.log")
	lg, err := initLog(logFile, true, false)
	require.NoError(t, err)
	lg.Info("hello", "who", "world")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"who":"world"`)
}

func Test_initTrace(t *testing.T) {
	t.Run("initialises trace file", func(t *testing.T) {
		testTraceFile := filepath.Join(t.TempDir(), "trace.out")
		stop := initTrace(testTraceFile)
		t.Cleanup(stop)
		assert.FileExists(t, testTraceFile)
	})
	t.Run("no file", func(t *testing.T) {
		stop := initTrace("")
		assert.NotPanics(t, stop)
	})
}
