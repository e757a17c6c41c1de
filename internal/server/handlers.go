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

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ishaanbajpai/Atlassian-mcp/internal/atlassian"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/crawl"
	"github.com/ishaanbajpai/Atlassian-mcp/internal/toolexec"
)

// AdminMessage is the error detail for the authentication and connectivity
// failures.
const AdminMessage = "MCP authentication/connectivity error. Administrator action may be required."

// SpaceRequest is the body of POST /space/content.
type SpaceRequest struct {
	SpaceName string `json:"space_name" validate:"required"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// PageRequest is the body of POST /page/content.
type PageRequest struct {
	PageID    atlassian.ID `json:"page_id,omitempty"`
	PageName  string       `json:"page_name,omitempty"`
	SpaceName string       `json:"space_name,omitempty"`
	StartDate string       `json:"start_date,omitempty"`
	EndDate   string       `json:"end_date,omitempty"`
	Recursive bool         `json:"recursive"`
}

// AllRequest is the body of POST /all/content.
type AllRequest struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// Response is the successful response envelope.
type Response struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func healthcheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func favicon(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) spaceContent(w http.ResponseWriter, r *http.Request) {
	var req SpaceRequest
	if !s.decode(w, r, &req, false) {
		return
	}
	s.lg.InfoContext(r.Context(), "space content requested", "space_name", req.SpaceName, "start_date", req.StartDate, "end_date", req.EndDate)
	rep, err := s.w.Space(r.Context(), req.SpaceName)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, Response{Data: rep, Message: rep.Message()})
}

func (s *Server) pageContent(w http.ResponseWriter, r *http.Request) {
	var req PageRequest
	if !s.decode(w, r, &req, false) {
		return
	}
	s.lg.InfoContext(r.Context(), "page content requested", "page_id", req.PageID, "page_name", req.PageName, "recursive", req.Recursive, "start_date", req.StartDate, "end_date", req.EndDate)
	rep, err := s.w.Page(r.Context(), crawl.PageQuery{
		PageID:    req.PageID.String(),
		PageName:  req.PageName,
		SpaceName: req.SpaceName,
		Recursive: req.Recursive,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, Response{Data: rep, Message: rep.Message()})
}

func (s *Server) allContent(w http.ResponseWriter, r *http.Request) {
	var req AllRequest
	if !s.decode(w, r, &req, true) {
		return
	}
	s.lg.InfoContext(r.Context(), "all content requested", "start_date", req.StartDate, "end_date", req.EndDate)
	rep, err := s.w.AllSpaces(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, Response{Data: rep, Message: rep.Message()})
}

// decode reads the JSON body into v and validates it.  It writes the error
// response and returns false if the body is unusable.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Detail: "invalid request body: " + err.Error()})
			return false
		}
	}
	if err := s.validate.Struct(v); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Detail: err.Error()})
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, resp Response) {
	s.writeJSON(w, r, http.StatusOK, resp)
}

// fail writes the error response with the status matching err.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, detail := Status(err)
	switch {
	case code == http.StatusServiceUnavailable:
		s.lg.ErrorContext(r.Context(), "administrator action may be required", "error", err)
	case code >= http.StatusInternalServerError:
		s.lg.ErrorContext(r.Context(), "request failed", "error", err)
	default:
		s.lg.WarnContext(r.Context(), "request rejected", "status", code, "error", err)
	}
	s.writeJSON(w, r, code, errorResponse{Detail: detail})
}

// Status returns the HTTP status code and the error detail for err.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, crawl.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, crawl.ErrSpaceNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, crawl.ErrNoCloudID):
		return http.StatusServiceUnavailable, "Failed to retrieve necessary Cloud ID from Atlassian."
	case errors.Is(err, crawl.ErrInvalidResponse):
		return http.StatusInternalServerError, err.Error()
	case toolexec.NeedsAdmin(err):
		return http.StatusServiceUnavailable, AdminMessage
	default:
		return http.StatusInternalServerError, fmt.Sprintf("Error processing request: %s", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.lg.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}
