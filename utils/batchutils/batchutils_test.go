// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package batchutils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialKeepsOrder(t *testing.T) {
	items := []int{1, 2, 3, 4}

	var calls []int

	results, err := Sequential(context.Background(), items, Options{},
		func(_ context.Context, i int, item int) int {
			calls = append(calls, i)

			return item * 10
		}, nil)

	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30, 40}, results)
	assert.Equal(t, []int{0, 1, 2, 3}, calls)
}

func TestSequentialProgressCadence(t *testing.T) {
	items := make([]string, 12)

	var (
		dones    []int
		partials []int
	)

	_, err := Sequential(context.Background(), items, Options{Every: 5},
		func(_ context.Context, _ int, _ string) bool { return true },
		func(done, total int, partial []bool) {
			assert.Equal(t, 12, total)

			dones = append(dones, done)
			partials = append(partials, len(partial))
		})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 6, 11, 12}, dones)
	assert.Equal(t, dones, partials)
}

func TestSequentialInterval(t *testing.T) {
	var slept []time.Duration

	opts := Options{
		Interval: time.Second,
		Sleep: func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)

			return nil
		},
	}

	_, err := Sequential(context.Background(), []int{1, 2, 3}, opts,
		func(_ context.Context, _ int, item int) int { return item }, nil)

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, slept)
}

func TestSequentialStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	opts := Options{Interval: time.Hour}

	results, err := Sequential(ctx, []int{1, 2, 3}, opts,
		func(_ context.Context, _ int, item int) int {
			cancel()

			return item
		}, nil)

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []int{1}, results)
}

func TestShouldNotify(t *testing.T) {
	assert.True(t, ShouldNotify(0, 3, 0))
	assert.True(t, ShouldNotify(1, 3, 1))
	assert.True(t, ShouldNotify(0, 10, 5))
	assert.False(t, ShouldNotify(1, 10, 5))
	assert.True(t, ShouldNotify(5, 10, 5))
	assert.True(t, ShouldNotify(9, 10, 5))
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, SleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
}
