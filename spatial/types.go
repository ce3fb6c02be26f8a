// Copyright 2025 The ChapaUY Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/uber/h3-go/v4"
)

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Offset returns p displaced by dLat and dLng degrees.
func (p Point) Offset(dLat, dLng float64) Point {
	return Point{Lat: p.Lat + dLat, Lng: p.Lng + dLng}
}

// Validate checks that the point lies within the valid WGS84 ranges.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90 (got: %f)", p.Lat)
	}

	if math.IsNaN(p.Lng) || p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180 (got: %f)", p.Lng)
	}

	return nil
}

// Envelope is a rectangular area around Center, extending LatSpan degrees
// north and south and LngSpan degrees east and west.
type Envelope struct {
	Center  Point   `json:"center"`
	LatSpan float64 `json:"lat_span"`
	LngSpan float64 `json:"lng_span"`
}

// Contains reports whether p lies inside the envelope, borders included.
func (e Envelope) Contains(p Point) bool {
	return math.Abs(p.Lat-e.Center.Lat) <= e.LatSpan &&
		math.Abs(p.Lng-e.Center.Lng) <= e.LngSpan
}

// Jitter returns a point drawn uniformly from the envelope.
func (e Envelope) Jitter(r *rand.Rand) Point {
	return e.Center.Offset(
		(r.Float64()*2-1)*e.LatSpan,
		(r.Float64()*2-1)*e.LngSpan,
	)
}

// Cell returns the H3 cell containing p at the given resolution.
func Cell(p Point, res int) (h3.Cell, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
	}

	return cell, nil
}

// Cells returns the H3 cells containing p for resolutions 1 through 8.
func Cells(p Point) ([8]int64, error) {
	var cells [8]int64

	for res := 1; res <= 8; res++ {
		cell, err := Cell(p, res)
		if err != nil {
			return cells, err
		}

		cells[res-1] = int64(cell)
	}

	return cells, nil
}
