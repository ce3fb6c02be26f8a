// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package contacts

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jcodagnone/contactmap/roles"
	"github.com/jcodagnone/contactmap/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIgnoresSupersededPasses(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, StateIdle, r.Status().State)
	assert.Nil(t, r.Status().StartedAt)

	assert.False(t, r.Publish(Snapshot{Contacts: fixture, Done: 4, Total: 4, Final: true}))
	assert.False(t, r.Fail(uuid.Nil, errors.New("no pass")))
	assert.Equal(t, StateIdle, r.Status().State)
	assert.Empty(t, r.Contacts())

	old := r.Begin()
	current := r.Begin()
	require.NotEqual(t, old, current)

	assert.False(t, r.Publish(Snapshot{Pass: old, Contacts: fixture, Done: 4, Total: 4, Final: true}))
	assert.Empty(t, r.Contacts())
	assert.False(t, r.Fail(old, errors.New("late failure")))

	assert.True(t, r.Publish(Snapshot{Pass: current, Contacts: fixture[:1], Done: 1, Total: 4}))

	s := r.Status()
	assert.Equal(t, current, s.Pass)
	assert.Equal(t, StateLoading, s.State)
	assert.Equal(t, 1, s.Contacts)
	assert.NotNil(t, s.StartedAt)

	assert.True(t, r.Publish(Snapshot{Pass: current, Contacts: fixture, Done: 4, Total: 4, Final: true}))
	assert.Equal(t, StateReady, r.Status().State)
	assert.Len(t, r.Contacts(), 4)
}

func TestRegistryQueries(t *testing.T) {
	r := NewRegistry()
	pass := r.Begin()
	r.Publish(Snapshot{Pass: pass, Contacts: fixture, Done: 4, Total: 4, Final: true})

	assert.Len(t, r.FilteredContacts(FilterState{Roles: []string{roles.Contractor}}), 2)
	assert.Len(t, r.Suggestions(FilterState{}, DefaultSuggestionLimit), 3)
	assert.Len(t, r.Suggestions(FilterState{}, 0), 4)

	v := r.Views(FilterState{Location: "springfield"}, 1)
	assert.Len(t, v.Filtered, 2)
	assert.Len(t, v.Suggestions, 1)
	assert.Equal(t, 4, v.Total)

	c, ok := r.Contact("3")
	require.True(t, ok)
	assert.Equal(t, "Cy Fox", c.Name)

	_, ok = r.Contact("missing")
	assert.False(t, ok)
}

func TestRegistryFail(t *testing.T) {
	r := NewRegistry()
	pass := r.Begin()
	r.Publish(Snapshot{Pass: pass, Contacts: fixture, Done: 1, Total: 4})

	err := &source.Error{Kind: source.KindAuth, StatusCode: 401, Message: source.MsgAuth}
	assert.True(t, r.Fail(pass, err))

	s := r.Status()
	assert.Equal(t, StateFailed, s.State)
	assert.Equal(t, source.MsgAuth, s.Error)
	assert.Equal(t, "auth", s.ErrorKind)
	assert.Zero(t, s.Contacts)
	assert.Empty(t, r.FilteredContacts(FilterState{}))
	assert.ErrorIs(t, r.Err(), err)
}

type fakeSource struct {
	records []source.RawRecord
	err     error
}

func (s *fakeSource) Fetch(_ context.Context) ([]source.RawRecord, error) {
	return s.records, s.err
}

func TestServiceRun(t *testing.T) {
	svc := NewService(&fakeSource{records: testRecords()}, newTestPipeline(5), NewRegistry())

	pass, err := svc.Run(context.Background())
	require.NoError(t, err)

	s := svc.Registry().Status()
	assert.Equal(t, pass, s.Pass)
	assert.Equal(t, StateReady, s.State)
	assert.Equal(t, 7, s.Contacts)
	assert.Equal(t, 7, s.Done)
}

func TestServiceMetricsAccumulate(t *testing.T) {
	svc := NewService(&fakeSource{records: testRecords()}, newTestPipeline(5), NewRegistry())
	assert.Equal(t, PipelineMetrics{}, svc.Metrics())

	for range 2 {
		_, err := svc.Run(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, PipelineMetrics{Records: 14, Geocoded: 4, Fallbacks: 10, Renamed: 4}, svc.Metrics())
}

func TestServiceRunSourceUnavailable(t *testing.T) {
	srcErr := &source.Error{Kind: source.KindNetwork, Message: source.MsgNetwork}
	svc := NewService(&fakeSource{err: srcErr}, newTestPipeline(5), NewRegistry())

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.True(t, source.IsUnavailable(err))

	s := svc.Registry().Status()
	assert.Equal(t, StateFailed, s.State)
	assert.Equal(t, "network", s.ErrorKind)
	assert.Zero(t, s.Contacts)
}

func TestServiceRunWrapsOtherErrors(t *testing.T) {
	svc := NewService(&fakeSource{err: errors.New("disk on fire")}, newTestPipeline(5), NewRegistry())

	_, err := svc.Run(context.Background())
	assert.True(t, source.IsUnavailable(err))
	assert.Equal(t, StateFailed, svc.Registry().Status().State)
}

func TestServiceRefreshSupersedes(t *testing.T) {
	svc := NewService(&fakeSource{records: testRecords()}, newTestPipeline(5), NewRegistry())

	first := svc.Refresh(context.Background())
	second := svc.Refresh(context.Background())
	svc.Wait()

	require.NotEqual(t, first, second)

	s := svc.Registry().Status()
	assert.Equal(t, second, s.Pass)
	assert.Equal(t, StateReady, s.State)
	assert.Equal(t, 7, s.Contacts)

	svc.Close()
}
