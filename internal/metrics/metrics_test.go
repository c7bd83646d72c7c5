// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	m, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatal("observer is not a metric")
	}
	var pb io_prometheus_client.Metric
	if err := m.Write(&pb); err != nil {
		t.Fatal(err)
	}
	return pb.GetHistogram().GetSampleCount()
}

func TestRecordUpstreamRequest(t *testing.T) {
	before := histogramCount(t, UpstreamRequestDuration.WithLabelValues("map", "success"))
	RecordUpstreamRequest("map", "success", 25*time.Millisecond)
	after := histogramCount(t, UpstreamRequestDuration.WithLabelValues("map", "success"))
	if after != before+1 {
		t.Errorf("sample count = %d, want %d", after, before+1)
	}
}

func TestRecordFetchResult(t *testing.T) {
	tests := []struct {
		success bool
		label   string
	}{
		{true, "success"},
		{false, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			c := FetchResults.WithLabelValues("stats", tt.label)
			before := testutil.ToFloat64(c)
			RecordFetchResult("stats", tt.success)
			if got := testutil.ToFloat64(c); got != before+1 {
				t.Errorf("counter = %v, want %v", got, before+1)
			}
		})
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("gauge = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("gauge = %v, want %v", got, before)
	}
}

func TestRecordFilterUpdate(t *testing.T) {
	c := SessionFilterUpdates.WithLabelValues("viewport", "noop")
	before := testutil.ToFloat64(c)
	RecordFilterUpdate("viewport", "noop")
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("counter = %v, want %v", got, before+1)
	}
}
