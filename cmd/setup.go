// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/contactmap/contacts"
	"github.com/jcodagnone/contactmap/geocode"
	"github.com/jcodagnone/contactmap/markers"
	"github.com/jcodagnone/contactmap/roles"
	"github.com/jcodagnone/contactmap/source"
	"github.com/jcodagnone/contactmap/spatial"
	"github.com/jcodagnone/contactmap/utils/httputils"
	"github.com/spf13/viper"
)

func userAgent() string {
	if ua := strings.TrimSpace(viper.GetString("user-agent")); ua != "" {
		return ua
	}

	return fmt.Sprintf("contactmap/%s (+https://github.com/jcodagnone/contactmap)", Version)
}

func newSource() (source.Source, error) {
	switch kind := viper.GetString("source"); kind {
	case "hubspot":
		token := strings.TrimSpace(viper.GetString("hubspot-token"))
		if token == "" {
			return nil, errors.New("hubspot-token is required (or set " + envPrefix + "_HUBSPOT_TOKEN)")
		}

		return source.NewHubSpotSource(source.HubSpotOptions{
			Token:               token,
			BaseURL:             viper.GetString("hubspot-url"),
			UserAgent:           userAgent(),
			MaxPages:            viper.GetInt("hubspot-max-pages"),
			EnableHTTPTrace:     viper.GetBool("trace-http"),
			EnableHTTPBodyTrace: viper.GetBool("trace-http-body"),
		}), nil
	case "file":
		return source.NewFileSource(viper.GetString("source-file")), nil
	default:
		return nil, fmt.Errorf("unknown source %q", kind)
	}
}

func newGeocoder(ctx context.Context) (geocode.Geocoder, error) {
	client := httputils.NewClient(httputils.ClientOptions{
		UserAgent:           userAgent(),
		EnableHTTPTrace:     viper.GetBool("trace-http"),
		EnableHTTPBodyTrace: viper.GetBool("trace-http-body"),
	})

	switch kind := viper.GetString("geocoder"); kind {
	case "nominatim":
		log.Println("Geocoding: Nominatim")

		return geocode.NewNominatimGeocoder(viper.GetString("nominatim-url"), client), nil
	case "google":
		apiKey := viper.GetString("google-maps-api-key")
		if apiKey == "" {
			log.Println("google-maps-api-key is not set. Attempting to retrieve via ADC...")

			var err error

			apiKey, err = geocode.APIKeyFromADC(ctx, geocode.GoogleMapsKeyDisplayName, viper.GetString("google-project"))
			if err != nil {
				return nil, fmt.Errorf("retrieving Google Maps API key: %w", err)
			}
		}

		log.Println("Geocoding: Google Maps")

		return geocode.NewGoogleMapsGeocoder(apiKey, viper.GetString("google-region"), client), nil
	case "none":
		log.Println("Geocoding disabled, every contact gets a fallback point")

		return nil, nil
	default:
		return nil, fmt.Errorf("unknown geocoder %q", kind)
	}
}

// openCache opens the duckdb geocode cache. The returned closer is never nil.
func openCache() (geocode.Cache, func() error, error) {
	noop := func() error { return nil }

	if viper.GetBool("no-cache") {
		return nil, noop, nil
	}

	path := viper.GetString("cache-path")
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, noop, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, noop, fmt.Errorf("opening cache: %w", err)
	}

	cache := geocode.NewSQLCache(db)
	if err := cache.CreateSchema(); err != nil {
		return nil, noop, errors.Join(fmt.Errorf("creating cache schema: %w", err), db.Close())
	}

	if n, err := cache.Count(context.Background()); err == nil {
		log.Printf("Geocode cache %s holds %d addresses", path, n)
	}

	return cache, db.Close, nil
}

func fallbackEnvelope() spatial.Envelope {
	span := viper.GetFloat64("fallback-span")

	return spatial.Envelope{
		Center:  spatial.Point{Lat: viper.GetFloat64("fallback-lat"), Lng: viper.GetFloat64("fallback-lng")},
		LatSpan: span,
		LngSpan: span,
	}
}

func newPlacer() markers.Placer {
	return markers.Placer{Scale: viper.GetFloat64("marker-scale")}
}

// newService wires source, geocoder, cache, pipeline and registry. The
// returned closer releases the cache.
func newService(ctx context.Context, onContact func(done, total int, c *contacts.Contact)) (*contacts.Service, func() error, error) {
	src, err := newSource()
	if err != nil {
		return nil, nil, err
	}

	geocoder, err := newGeocoder(ctx)
	if err != nil {
		return nil, nil, err
	}

	cache, closer, err := openCache()
	if err != nil {
		return nil, nil, err
	}

	seed := viper.GetUint64("seed")

	resolver := geocode.NewResolver(geocoder, geocode.ResolverOptions{
		Delay:    viper.GetDuration("geocode-delay"),
		Fallback: fallbackEnvelope(),
		Seed:     seed,
		Cache:    cache,
	})

	pipeline := contacts.NewPipeline(
		roles.NewNormalizer(roles.NewSeededPicker(seed)),
		resolver,
		contacts.PipelineOptions{
			SnapshotEvery: viper.GetInt("snapshot-every"),
			H3Resolution:  viper.GetInt("h3-resolution"),
			OnContact:     onContact,
		},
	)

	return contacts.NewService(src, pipeline, contacts.NewRegistry()), closer, nil
}

// logResolverMetrics prints the geocoding summary of a run.
func logResolverMetrics(m geocode.ResolverMetrics) {
	log.Printf(
		"Geocoding complete - %d requests, %d geocoded, %d cache hits, %d fallbacks, %d failures",
		m.Requests, m.Geocoded, m.CacheHits, m.Fallbacks, m.Failures,
	)
}
