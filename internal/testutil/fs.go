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

// Package testutil contains the test helpers.
package testutil

import (
	"io/fs"
	"os"
	"slices"
	"testing"
)

// FileInfo is the summary of a file collected by CollectFiles.
type FileInfo struct {
	Name string
	Size int64
}

// CollectFiles returns a map of slash-separated file paths under dir to the
// file info.  Directories are not included.
func CollectFiles(t *testing.T, dir string) map[string]FileInfo {
	t.Helper()
	ret := make(map[string]FileInfo)
	if err := fs.WalkDir(os.DirFS(dir), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		ret[path] = FileInfo{Name: d.Name(), Size: fi.Size()}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	return ret
}

// Paths returns the sorted paths of the collected files.
func Paths(files map[string]FileInfo) []string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}
