// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package fetch

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/worldsense/internal/filters"
)

// Endpoint names one of the three upstream read endpoints.
type Endpoint string

const (
	EndpointMap    Endpoint = "map"
	EndpointStats  Endpoint = "stats"
	EndpointSearch Endpoint = "search"
)

// Endpoints lists every endpoint in a stable order.
var Endpoints = []Endpoint{EndpointMap, EndpointStats, EndpointSearch}

// Valid reports whether e is a known endpoint.
func (e Endpoint) Valid() bool {
	return e == EndpointMap || e == EndpointStats || e == EndpointSearch
}

// FixedParams are per-endpoint parameters that are not part of the filter state.
type FixedParams struct {
	MapSize        int
	SearchPage     int
	SearchPageSize int
}

// DefaultFixedParams matches the dashboard: 500 map features, 10 results per page.
func DefaultFixedParams() FixedParams {
	return FixedParams{MapSize: 500, SearchPage: 1, SearchPageSize: 10}
}

// queryParams accumulates query parameters, skipping empty values.
type queryParams struct {
	values url.Values
}

func newQueryParams() *queryParams {
	return &queryParams{values: url.Values{}}
}

func (q *queryParams) add(key, value string) *queryParams {
	if value != "" {
		q.values.Set(key, value)
	}
	return q
}

func (q *queryParams) addInt(key string, value int) *queryParams {
	if value > 0 {
		q.values.Set(key, strconv.Itoa(value))
	}
	return q
}

func (q *queryParams) addFloat(key string, value *float64) *queryParams {
	if value != nil {
		q.values.Set(key, strconv.FormatFloat(*value, 'f', -1, 64))
	}
	return q
}

// BuildURL derives the request URL for ep. It is a pure function of its
// inputs. Parameters with empty values are omitted entirely, so an empty query
// never becomes q= on the wire. An empty base yields "" and the endpoint stays idle.
func BuildURL(base string, ep Endpoint, st filters.State, fixed FixedParams) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" || !ep.Valid() {
		return ""
	}

	q := newQueryParams().
		add("gte", st.DateFrom).
		add("lte", st.DateTo).
		add("bbox", st.BBoxParam()).
		add("q", st.Query)

	switch ep {
	case EndpointMap:
		q.addFloat("toneMin", st.ToneMin).
			addFloat("toneMax", st.ToneMax).
			addInt("size", fixed.MapSize)
	case EndpointSearch:
		q.addFloat("toneMin", st.ToneMin).
			addFloat("toneMax", st.ToneMax).
			addInt("page", fixed.SearchPage).
			addInt("pageSize", fixed.SearchPageSize)
	case EndpointStats:
	}

	encoded := q.values.Encode()
	if encoded == "" {
		return base + "/" + string(ep)
	}
	return base + "/" + string(ep) + "?" + encoded
}
