// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package aggregate

import "math"

// Tone boundaries of the five-level scale.
const (
	ToneStrongThreshold = 5.0
	ToneThreshold       = 2.0
)

// Level is a tone label on the five-level scale.
type Level string

const (
	LevelVeryPositive Level = "Very Positive"
	LevelPositive     Level = "Positive"
	LevelNeutral      Level = "Neutral"
	LevelNegative     Level = "Negative"
	LevelVeryNegative Level = "Very Negative"
)

// Bucket is one bar of the three-bucket tone chart.
type Bucket string

const (
	BucketNegative Bucket = "negative"
	BucketNeutral  Bucket = "neutral"
	BucketPositive Bucket = "positive"
)

// ToneLevel labels a tone value. NaN is treated as neutral.
func ToneLevel(tone float64) Level {
	switch {
	case math.IsNaN(tone):
		return LevelNeutral
	case tone > ToneStrongThreshold:
		return LevelVeryPositive
	case tone > ToneThreshold:
		return LevelPositive
	case tone >= -ToneThreshold:
		return LevelNeutral
	case tone > -ToneStrongThreshold:
		return LevelNegative
	default:
		return LevelVeryNegative
	}
}

// Bucket collapses a level onto the three-bucket scale.
func (l Level) Bucket() Bucket {
	switch l {
	case LevelVeryPositive, LevelPositive:
		return BucketPositive
	case LevelVeryNegative, LevelNegative:
		return BucketNegative
	default:
		return BucketNeutral
	}
}

// ToneBucket returns the chart bucket for a tone value.
func ToneBucket(tone float64) Bucket {
	return ToneLevel(tone).Bucket()
}

// ToneCounts is the tone chart.
type ToneCounts struct {
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
	Positive int `json:"positive"`
}

// Total returns the number of bucketed values.
func (c ToneCounts) Total() int {
	return c.Negative + c.Neutral + c.Positive
}

// Add counts one tone value.
func (c *ToneCounts) Add(tone float64) {
	switch ToneBucket(tone) {
	case BucketNegative:
		c.Negative++
	case BucketPositive:
		c.Positive++
	default:
		c.Neutral++
	}
}

// BucketTones partitions tone values into the three chart buckets.
func BucketTones(tones []float64) ToneCounts {
	var c ToneCounts
	for _, t := range tones {
		c.Add(t)
	}
	return c
}
