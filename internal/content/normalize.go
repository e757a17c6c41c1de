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

package content

// In this file: conversational prefix removal.

import (
	"regexp"
	"strings"
	"unicode"
)

// prefixes are the known conversational lead-ins, in the order they are
// tried.  Each one is anchored at the start of the text.
var prefixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^Here is the HTML content for the page with ID '[\p{L}\p{N}_-]+':\s*`),
	regexp.MustCompile(`(?i)^Here's the HTML content for the page titled '[^']+'(?: in space '[^']+')?:\s*`),
	regexp.MustCompile(`(?i)^The HTML content for page ID '[\p{L}\p{N}_-]+' is:\s*`),
	regexp.MustCompile(`(?i)^Okay, here is the content:\s*`),
	regexp.MustCompile(`(?i)^Sure, here's the HTML:\s*`),
}

// Normalize strips at most one occurrence of every known prefix, in order,
// and then trims the leading whitespace.
func Normalize(s string) string {
	for _, re := range prefixes {
		if loc := re.FindStringIndex(s); loc != nil {
			s = s[loc[1]:]
		}
	}
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}
