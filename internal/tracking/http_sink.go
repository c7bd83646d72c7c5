// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package tracking

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// HTTPSink posts records to the tracking API.
type HTTPSink struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSink returns a sink posting under baseURL.
func NewHTTPSink(baseURL string, timeout time.Duration) *HTTPSink {
	return &HTTPSink{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Name implements Sink.
func (s *HTTPSink) Name() string { return "http" }

// SendActivity posts to /activity.
func (s *HTTPSink) SendActivity(ctx context.Context, a *Activity) error {
	return s.post(ctx, "/activity", a)
}

// SendPreference posts to /preferences.
func (s *HTTPSink) SendPreference(ctx context.Context, p *Preference) error {
	return s.post(ctx, "/preferences", p)
}

func (s *HTTPSink) post(ctx context.Context, path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // drain for connection reuse

	if resp.StatusCode >= 300 {
		return fmt.Errorf("post %s: status %d", path, resp.StatusCode)
	}
	return nil
}

// Close implements Sink.
func (s *HTTPSink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
