// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode turns free-text postal addresses into coordinates. Provider
// failures never reach callers of Resolver: they degrade to a jittered
// fallback point.
package geocode

import (
	"context"

	"github.com/jcodagnone/contactmap/spatial"
)

// Result represents a geocoding result from any provider.
type Result struct {
	Point       spatial.Point
	Confidence  string // high, medium, low
	Provider    string
	DisplayName string
}

// Geocoder interface for different geocoding providers.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Result, error)
}
