// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService is a controllable suture.Service.
type mockService struct {
	name     string
	starts   atomic.Int32
	fails    atomic.Int32
	maxFails int32
}

func newMockService(name string, failures int32) *mockService {
	return &mockService{name: name, maxFails: failures}
}

// Serve fails maxFails times, then runs until ctx is cancelled.
func (m *mockService) Serve(ctx context.Context) error {
	m.starts.Add(1)
	if m.fails.Add(1) <= m.maxFails {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) StartCount() int32 { return m.starts.Load() }

func (m *mockService) String() string { return m.name }
