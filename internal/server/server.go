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

// Package server implements the HTTP API for the content export.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/ishaanbajpai/Atlassian-mcp/internal/crawl"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/validation"
)

const (
	shutdownTimeout = 10 * time.Second
	maxBodySize     = 1 << 20
)

// Walker runs the exports.
type Walker interface {
	Space(ctx context.Context, name string) (crawl.SpaceReport, error)
	Page(ctx context.Context, q crawl.PageQuery) (crawl.PageReport, error)
	AllSpaces(ctx context.Context) (crawl.AllReport, error)
}

var _ Walker = (*crawl.Walker)(nil)

// Server is the HTTP API server.
type Server struct {
	w        Walker
	srv      *http.Server
	validate *validation.Validator
	lg       *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(s *Server) {
		if lg != nil {
			s.lg = lg
		}
	}
}

// New returns a server that listens on addr once
// [Server.ListenAndServe] is called.
func New(addr string, w Walker, opts ...Option) *Server {
	s := &Server{
		w:        w,
		validate: validation.New("json"),
		lg:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthcheck", healthcheck)
	r.Get("/favicon.ico", favicon)
	r.Post("/space/content", s.spaceContent)
	r.Post("/page/content", s.pageContent)
	r.Post("/all/content", s.allContent)
	return r
}

// ListenAndServe serves the API until ctx is cancelled, then shuts the
// server down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		s.lg.InfoContext(ctx, "api server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		s.lg.InfoContext(ctx, "api server shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.srv.Shutdown(sctx)
	})
	return eg.Wait()
}
