// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package batchutils processes slices one item at a time, with an optional
// pause between items and progress notifications along the way.
package batchutils

import (
	"context"
	"time"
)

// Options configures Sequential.
type Options struct {
	// Interval is the minimum pause between two consecutive items.
	Interval time.Duration

	// Every controls how often Progress is called: after the first item,
	// after every Every items thereafter, and after the last one. Zero or
	// negative means after every item.
	Every int

	// Sleep waits for d or until ctx is done. Defaults to SleepContext.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Progress receives the number of processed items, the total, and the
// results gathered so far. The slice must not be retained.
type Progress[R any] func(done, total int, partial []R)

// Sequential applies fn to every item in order, never running two calls at
// the same time. It stops early only when ctx is done, returning the results
// produced so far together with the context error.
func Sequential[T, R any](
	ctx context.Context,
	items []T,
	opts Options,
	fn func(ctx context.Context, i int, item T) R,
	progress Progress[R],
) ([]R, error) {
	sleep := opts.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	n := len(items)
	results := make([]R, 0, n)

	for i, item := range items {
		if i > 0 && opts.Interval > 0 {
			if err := sleep(ctx, opts.Interval); err != nil {
				return results, err
			}
		}

		results = append(results, fn(ctx, i, item))

		if progress != nil && ShouldNotify(i, n, opts.Every) {
			progress(i+1, n, results)
		}
	}

	return results, nil
}

// ShouldNotify reports whether progress is due after the item at index i of
// n: the first one, every `every` thereafter, and the last one.
func ShouldNotify(i, n, every int) bool {
	if every <= 1 {
		return true
	}

	return i%every == 0 || i == n-1
}

// SleepContext waits for d, returning early with ctx.Err() if ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
