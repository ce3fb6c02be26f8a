// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/jcodagnone/contactmap/spatial"
	"github.com/jcodagnone/contactmap/utils/batchutils"
	"github.com/jcodagnone/contactmap/utils/httputils"
)

// DefaultDelay is the pause before every provider request. The public
// Nominatim instance allows one request per second.
const DefaultDelay = time.Second

// DefaultFallback covers the continental United States.
var DefaultFallback = spatial.Envelope{
	Center:  spatial.Point{Lat: 37, Lng: -95},
	LatSpan: 5,
	LngSpan: 5,
}

// Origin tells where a resolved point came from.
type Origin string

// Origins.
const (
	OriginGeocoder Origin = "geocoder"
	OriginCache    Origin = "cache"
	OriginFallback Origin = "fallback"
)

// Resolution is the outcome of resolving one address. It is always usable.
type Resolution struct {
	Point    spatial.Point `json:"point"`
	Origin   Origin        `json:"origin"`
	Provider string        `json:"provider,omitempty"`
}

// Geocoded reports whether the point is a real answer rather than a fallback.
func (r Resolution) Geocoded() bool {
	return r.Origin != OriginFallback
}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	// Delay before each provider request. Zero selects DefaultDelay; use a
	// negative value to disable pacing.
	Delay time.Duration

	// Fallback is the envelope jittered points are drawn from. The zero
	// value selects DefaultFallback.
	Fallback spatial.Envelope

	// Seed of the jitter generator; zero seeds from the clock.
	Seed uint64

	// Cache is optional.
	Cache Cache

	// Sleep waits for the pacing delay; defaults to batchutils.SleepContext.
	Sleep func(ctx context.Context, d time.Duration) error
}

// ResolverMetrics tracks how addresses were resolved.
type ResolverMetrics struct {
	Requests  int
	Geocoded  int
	CacheHits int
	Fallbacks int
	Failures  int
}

// Resolver resolves addresses serially with pacing, caching and fallback.
type Resolver struct {
	geocoder Geocoder
	options  ResolverOptions

	mu      sync.Mutex
	rand    *rand.Rand
	metrics ResolverMetrics
}

// NewResolver creates a Resolver. A nil geocoder resolves every address to
// a fallback point (offline mode).
func NewResolver(geocoder Geocoder, options ResolverOptions) *Resolver {
	if options.Delay == 0 {
		options.Delay = DefaultDelay
	}

	if options.Fallback == (spatial.Envelope{}) {
		options.Fallback = DefaultFallback
	}

	if options.Sleep == nil {
		options.Sleep = batchutils.SleepContext
	}

	seed := options.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &Resolver{
		geocoder: geocoder,
		options:  options,
		rand:     rand.New(rand.NewPCG(seed, seed)),
	}
}

// Envelope returns the fallback envelope in use.
func (r *Resolver) Envelope() spatial.Envelope {
	return r.options.Fallback
}

// Metrics returns a copy of the counters collected so far.
func (r *Resolver) Metrics() ResolverMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.metrics
}

// Fallback returns a point jittered inside the fallback envelope.
func (r *Resolver) Fallback() spatial.Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.metrics.Fallbacks++

	return r.options.Fallback.Jitter(r.rand)
}

func (r *Resolver) fallback() Resolution {
	return Resolution{Point: r.Fallback(), Origin: OriginFallback}
}

func (r *Resolver) count(f func(m *ResolverMetrics)) {
	r.mu.Lock()
	f(&r.metrics)
	r.mu.Unlock()
}

// Resolve returns the coordinates of address. It never fails: blank
// addresses, provider errors, empty answers and out of range coordinates
// all resolve to Fallback.
func (r *Resolver) Resolve(ctx context.Context, address string) Resolution {
	address = strings.TrimSpace(address)
	if address == "" || r.geocoder == nil {
		return r.fallback()
	}

	if r.options.Cache != nil {
		res, ok, err := r.options.Cache.Get(ctx, address)
		if err != nil {
			log.Printf("Geocode cache lookup failed for %q: %s", address, err)
		} else if ok {
			r.count(func(m *ResolverMetrics) { m.CacheHits++ })

			return Resolution{Point: res.Point, Origin: OriginCache, Provider: res.Provider}
		}
	}

	if r.options.Delay > 0 {
		if err := r.options.Sleep(ctx, r.options.Delay); err != nil {
			log.Printf("Geocoding skipped for %q: %s", address, err)
			r.count(func(m *ResolverMetrics) { m.Failures++ })

			return r.fallback()
		}
	}

	r.count(func(m *ResolverMetrics) { m.Requests++ })

	res, err := r.geocoder.Geocode(ctx, address)
	if err == nil {
		if verr := res.Point.Validate(); verr != nil {
			err = parseError(verr)
		}
	}

	if err != nil {
		log.Printf("Geocoding error for %q [%s]: %s", address, ClassifyError(err), httputils.RedactSecrets(err.Error()))
		r.count(func(m *ResolverMetrics) { m.Failures++ })

		return r.fallback()
	}

	r.count(func(m *ResolverMetrics) { m.Geocoded++ })

	if r.options.Cache != nil {
		if err := r.options.Cache.Put(ctx, address, res); err != nil {
			log.Printf("Geocode cache store failed for %q: %s", address, err)
		}
	}

	return Resolution{Point: res.Point, Origin: OriginGeocoder, Provider: res.Provider}
}

// ResolveAll resolves addresses one at a time, in order. progress, when not
// nil, observes partial results after the first address, every `every`
// addresses thereafter and after the last one.
func (r *Resolver) ResolveAll(
	ctx context.Context,
	addresses []string,
	every int,
	progress batchutils.Progress[Resolution],
) []Resolution {
	results, _ := batchutils.Sequential(ctx, addresses, batchutils.Options{Every: every},
		func(ctx context.Context, _ int, address string) Resolution {
			return r.Resolve(ctx, address)
		}, progress)

	return results
}
