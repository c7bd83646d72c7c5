// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package aggregate

import "github.com/tomtom215/worldsense/internal/models"

// Summary is every derived chart for one set of panel results. Nil inputs
// leave their charts empty.
type Summary struct {
	Stats     SeriesSummary `json:"stats"`
	ToneTrend []TonePoint   `json:"toneTrend,omitempty"`
	Tones     ToneCounts    `json:"tones"`
	Countries []Count       `json:"countries"`
	Themes    []ThemeHeat   `json:"themes"`
}

// Summarize builds the chart data. The search hits drive the tone, country
// and theme charts when present; otherwise the map features are used, and
// the tone chart finally falls back to the stats series.
func Summarize(fc *models.FeatureCollection, stats *models.StatsResponse, search *models.SearchResponse) Summary {
	var s Summary
	if stats != nil {
		s.Stats = SummarizeSeries(stats.Series)
		s.ToneTrend = ToneSeries(stats.Series)
	}

	var countries, themes []string
	var tones []float64
	switch {
	case search != nil && len(search.Items) > 0:
		for i := range search.Items {
			it := &search.Items[i]
			countries = append(countries, CountryLabel(it.Country))
			themes = append(themes, it.Theme)
			tones = append(tones, it.Tone)
		}
	case fc != nil && len(fc.Features) > 0:
		for i := range fc.Features {
			p := &fc.Features[i].Properties
			countries = append(countries, CountryLabel(p.Country))
			themes = append(themes, p.Theme)
			tones = append(tones, p.Tone)
		}
	}

	if len(tones) > 0 {
		s.Tones = BucketTones(tones)
	} else if stats != nil {
		s.Tones = SeriesTones(stats.Series)
	}
	s.Countries = TopN(countries, DefaultTopN)
	s.Themes = ThemeHeatmap(themes, DefaultTopN)
	return s
}
