// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package aggregate

import (
	"math"

	"github.com/tomtom215/worldsense/internal/models"
)

// SeriesSummary backs the statistics cards above the charts.
type SeriesSummary struct {
	TotalEvents  int64 `json:"totalEvents"`
	DailyAverage int64 `json:"dailyAverage"`
	PeakDay      int64 `json:"peakDay"`
	LowestDay    int64 `json:"lowestDay"`
	Days         int   `json:"days"`
}

// SummarizeSeries totals a /stats series. The daily average is rounded half
// away from zero. An empty series yields the zero summary.
func SummarizeSeries(series []models.SeriesPoint) SeriesSummary {
	if len(series) == 0 {
		return SeriesSummary{}
	}
	s := SeriesSummary{
		Days:      len(series),
		PeakDay:   series[0].Count,
		LowestDay: series[0].Count,
	}
	for _, p := range series {
		s.TotalEvents += p.Count
		if p.Count > s.PeakDay {
			s.PeakDay = p.Count
		}
		if p.Count < s.LowestDay {
			s.LowestDay = p.Count
		}
	}
	s.DailyAverage = int64(math.Round(float64(s.TotalEvents) / float64(len(series))))
	return s
}

// TonePoint is one day of the tone trend. ToneAvg is nil when the upstream
// series carries no average for that day.
type TonePoint struct {
	Date    string   `json:"date"`
	ToneAvg *float64 `json:"toneAvg"`
	Level   Level    `json:"level,omitempty"`
}

// ToneSeries extracts the per-day tone trend from a /stats series.
func ToneSeries(series []models.SeriesPoint) []TonePoint {
	out := make([]TonePoint, len(series))
	for i, p := range series {
		out[i] = TonePoint{Date: p.Date}
		if p.ToneAvg != nil {
			v := *p.ToneAvg
			out[i].ToneAvg = &v
			out[i].Level = ToneLevel(v)
		}
	}
	return out
}

// SeriesTones buckets the days of a series by their average tone. Days
// without an average are skipped.
func SeriesTones(series []models.SeriesPoint) ToneCounts {
	var c ToneCounts
	for _, p := range series {
		if p.ToneAvg != nil {
			c.Add(*p.ToneAvg)
		}
	}
	return c
}
