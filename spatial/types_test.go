// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/h3-go/v4"
)

func TestPointOffset(t *testing.T) {
	p := Point{Lat: 37, Lng: -95}.Offset(0.01, -0.02)

	assert.InDelta(t, 37.01, p.Lat, 1e-9)
	assert.InDelta(t, -95.02, p.Lng, 1e-9)
}

func TestPointValidate(t *testing.T) {
	tests := []struct {
		name  string
		point Point
		fail  bool
	}{
		{"springfield", Point{Lat: 39.7817, Lng: -89.6501}, false},
		{"poles and antimeridian", Point{Lat: -90, Lng: 180}, false},
		{"latitude too large", Point{Lat: 91, Lng: 0}, true},
		{"longitude too small", Point{Lat: 0, Lng: -181}, true},
		{"nan", Point{Lat: math.NaN(), Lng: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.point.Validate()
			if tt.fail {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEnvelopeJitterStaysInside(t *testing.T) {
	env := Envelope{Center: Point{Lat: 37, Lng: -95}, LatSpan: 5, LngSpan: 5}
	r := rand.New(rand.NewPCG(1, 2))

	for range 1000 {
		p := env.Jitter(r)
		require.True(t, env.Contains(p), "point %v outside %v", p, env)
	}
}

func TestEnvelopeJitterIsDeterministic(t *testing.T) {
	env := Envelope{Center: Point{Lat: 37, Lng: -95}, LatSpan: 5, LngSpan: 5}

	a := env.Jitter(rand.New(rand.NewPCG(42, 42)))
	b := env.Jitter(rand.New(rand.NewPCG(42, 42)))

	assert.Equal(t, a, b)
}

func TestEnvelopeContains(t *testing.T) {
	env := Envelope{Center: Point{Lat: 0, Lng: 0}, LatSpan: 1, LngSpan: 2}

	assert.True(t, env.Contains(Point{Lat: 1, Lng: -2}))
	assert.False(t, env.Contains(Point{Lat: 1.01, Lng: 0}))
	assert.False(t, env.Contains(Point{Lat: 0, Lng: 2.5}))
}

func TestCells(t *testing.T) {
	p := Point{Lat: 39.7817, Lng: -89.6501}

	cells, err := Cells(p)
	require.NoError(t, err)

	for i, c := range cells {
		cell := h3.Cell(c)
		assert.True(t, cell.IsValid(), "res %d", i+1)
		assert.Equal(t, i+1, cell.Resolution())
	}

	cell, err := Cell(p, 7)
	require.NoError(t, err)
	assert.Equal(t, cells[6], int64(cell))
}
