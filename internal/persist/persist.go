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

// Package persist writes exported page content under the output directory.
package persist

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/rusq/fsadapter"
)

// Ext is the extension of the saved page files.
const Ext = ".html"

const filePerm = 0o644

// ErrEmptyPath is returned when Save is called without a target path.
var ErrEmptyPath = errors.New("empty file path")

// Persister saves content to files relative to the root directory.
type Persister struct {
	fs   fsadapter.FS
	root string
	lg   *slog.Logger
}

// Option configures the Persister.
type Option func(*Persister)

// WithLogger sets the logger.  nil is ignored.
func WithLogger(lg *slog.Logger) Option {
	return func(p *Persister) {
		if lg != nil {
			p.lg = lg
		}
	}
}

// WithFS replaces the filesystem adapter, the default is a directory adapter
// rooted at the root directory.
func WithFS(fs fsadapter.FS) Option {
	return func(p *Persister) {
		if fs != nil {
			p.fs = fs
		}
	}
}

// New returns a Persister that writes under root.
func New(root string, opts ...Option) *Persister {
	p := &Persister{
		fs:   fsadapter.NewDirectory(root),
		root: root,
		lg:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Root returns the output root directory.
func (p *Persister) Root() string {
	return p.root
}

// Target returns the path the content would be saved to.  If both title and
// id are given, the file name in base is replaced with
// "<title>_<id>.html", otherwise base is returned unchanged.
func Target(base, title, id string) string {
	if title == "" || id == "" {
		return base
	}
	return filepath.Join(filepath.Dir(base), Sanitize(title)+"_"+Sanitize(id)+Ext)
}

// Save writes content to the target path derived from base, title and id
// (see [Target]), creating the missing directories and overwriting the
// existing file.  It returns the path relative to the root directory.
func (p *Persister) Save(content, base, title, id string) (string, error) {
	if base == "" {
		return "", ErrEmptyPath
	}
	name := Target(base, title, id)
	if err := p.fs.WriteFile(name, []byte(content), filePerm); err != nil {
		p.lg.Error("failed to save content", "path", name, "error", err)
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	p.lg.Info("content saved", "path", name, "size", humanize.Bytes(uint64(len(content))))
	return name, nil
}
