// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package filters

import "strings"

// ClauseSeparator joins query clauses.
const ClauseSeparator = " AND "

// QueryFields are the clause fields the upstream search understands.
var QueryFields = []string{"theme", "actor", "country", "source"}

// Clauses are the structured toolbar inputs a query string is built from.
type Clauses struct {
	SearchType  string `json:"searchType" validate:"omitempty,oneof=theme actor country source"`
	SearchValue string `json:"searchValue" validate:"max=200"`
	Country     string `json:"country" validate:"max=100"`
	Actor       string `json:"actor" validate:"max=200"`
}

// BuildQueryString joins the non-empty clauses in the fixed order
// searchType:searchValue, country, actor. All-empty input yields "".
func BuildQueryString(c Clauses) string {
	parts := make([]string, 0, 3)
	searchType := strings.TrimSpace(c.SearchType)
	if v := strings.TrimSpace(c.SearchValue); searchType != "" && v != "" {
		parts = append(parts, searchType+":"+v)
	}
	if v := strings.TrimSpace(c.Country); v != "" {
		parts = append(parts, "country:"+v)
	}
	if v := strings.TrimSpace(c.Actor); v != "" {
		parts = append(parts, "actor:"+v)
	}
	return strings.Join(parts, ClauseSeparator)
}

// Clause is one parsed field:value pair.
type Clause struct {
	Field string
	Value string
}

// ParseQuery splits q into clauses, dropping malformed ones: clauses without
// a colon, with an unknown field, or with an empty value.
func ParseQuery(q string) []Clause {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	var out []Clause
	for _, raw := range strings.Split(q, ClauseSeparator) {
		field, value, ok := strings.Cut(strings.TrimSpace(raw), ":")
		if !ok {
			continue
		}
		field = strings.ToLower(strings.TrimSpace(field))
		value = strings.TrimSpace(value)
		if value == "" || !isQueryField(field) {
			continue
		}
		out = append(out, Clause{Field: field, Value: value})
	}
	return out
}

// NormalizeQuery rewrites q as a well-formed conjunction, or "".
func NormalizeQuery(q string) string {
	clauses := ParseQuery(q)
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = c.Field + ":" + c.Value
	}
	return strings.Join(parts, ClauseSeparator)
}

func isQueryField(f string) bool {
	for _, known := range QueryFields {
		if f == known {
			return true
		}
	}
	return false
}
