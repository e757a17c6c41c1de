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

package toolexec

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

var (
	authMarkers = []string{"401", "unauthorized", "authentication failed", "token", "credential"}
	connMarkers = []string{"connection refused", "service unavailable", "503", "proxy error", "failed to connect"}
)

// IsAuthError reports whether err looks like an authentication failure.
func IsAuthError(err error) bool {
	return containsAny(err, authMarkers)
}

// IsConnectivityError reports whether err means that the MCP server could
// not be reached.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConnected) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return containsAny(err, connMarkers)
}

// NeedsAdmin reports whether the failure should be reported as the service
// being unavailable, as it can't be fixed by the caller.
func NeedsAdmin(err error) bool {
	return IsAuthError(err) || IsConnectivityError(err)
}

func containsAny(err error, markers []string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, m := range markers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
