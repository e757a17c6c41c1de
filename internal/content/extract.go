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

// Package content locates page HTML inside loosely shaped tool responses and
// cleans it up before it is written to disk.
package content

// In this file: HTML extraction strategies.

// Strategy locates the page HTML in a decoded tool response.  Find returns
// false if the response does not have the shape the strategy is looking for.
type Strategy struct {
	Name string
	Find func(resp map[string]any) (string, bool)
}

// Strategies is the ordered list of extraction strategies.  The first
// strategy that finds a string wins.  New response shapes go at the position
// matching their priority.
var Strategies = []Strategy{
	{Name: "html", Find: stringAt("html")},
	{Name: "body", Find: stringAt("body")},
	{Name: "body.view.value", Find: stringAt("body", "view", "value")},
	{Name: "body.storage.value", Find: stringAt("body", "storage", "value")},
	{Name: "body.raw", Find: stringAt("body", "raw")},
}

// Extract returns the page HTML from resp and the name of the strategy that
// found it.  ok is false if no strategy matched.
func Extract(resp map[string]any) (html string, strategy string, ok bool) {
	if resp == nil {
		return "", "", false
	}
	for _, s := range Strategies {
		if v, found := s.Find(resp); found {
			return v, s.Name, true
		}
	}
	return "", "", false
}

// stringAt returns a Find function that walks the nested maps along path and
// reports the leaf if it is a string.
func stringAt(path ...string) func(map[string]any) (string, bool) {
	return func(m map[string]any) (string, bool) {
		var cur any = m
		for _, key := range path {
			obj, ok := cur.(map[string]any)
			if !ok {
				return "", false
			}
			if cur, ok = obj[key]; !ok {
				return "", false
			}
		}
		s, ok := cur.(string)
		return s, ok
	}
}
