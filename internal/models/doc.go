// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

/*
Package models defines the data shared between packages:

  - BBox: a geographic bounding box, rounded to BBoxPrecision decimals on
    the wire
  - FeatureCollection, StatsResponse, SearchResponse: the three GDELT REST
    payloads (/map, /stats, /search)
  - LikedEvent: a persisted like
  - Pagination: the search panel page window
*/
package models
