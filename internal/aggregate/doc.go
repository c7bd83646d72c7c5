// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

/*
Package aggregate derives the dashboard's chart data from fetched panels.

Everything here is pure: functions take decoded /map, /stats and /search
bodies and return plain values ready to be serialized to the browser.

# Tone

A single five-level scale labels individual events:

	Very Positive  tone > 5
	Positive       tone > 2
	Neutral        -2 <= tone <= 2
	Negative       tone > -5
	Very Negative  tone <= -5

The three-bucket tone chart collapses that scale (both positive levels,
both negative levels), so a marker label and the chart never disagree.

# Grouping

TopN counts a categorical field, sorts by count descending and then by
value ascending, and keeps the first n entries. The remainder is omitted;
no "Other" bucket is synthesized.
*/
package aggregate
