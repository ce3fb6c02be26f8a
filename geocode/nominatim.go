// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jcodagnone/contactmap/spatial"
)

// DefaultNominatimURL is the public OpenStreetMap search endpoint.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"

// NominatimGeocoder uses the OpenStreetMap Nominatim search API. The public
// instance allows one request per second and requires an identifying
// User-Agent, which callers set on the http.Client.
type NominatimGeocoder struct {
	baseURL    string
	httpClient *http.Client
}

// NewNominatimGeocoder creates a new Nominatim geocoder. An empty baseURL
// selects DefaultNominatimURL.
func NewNominatimGeocoder(baseURL string, httpClient *http.Client) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &NominatimGeocoder{baseURL: baseURL, httpClient: httpClient}
}

// coordinates come back as strings.
type nominatimPlace struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (*Result, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("q", address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "building request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, requestError(err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, parseError(err)
	}

	if len(places) == 0 {
		return nil, notFoundError(address)
	}

	place := places[0]

	lat, err := strconv.ParseFloat(place.Lat, 64)
	if err != nil {
		return nil, parseError(fmt.Errorf("latitude %q: %w", place.Lat, err))
	}

	lng, err := strconv.ParseFloat(place.Lon, 64)
	if err != nil {
		return nil, parseError(fmt.Errorf("longitude %q: %w", place.Lon, err))
	}

	// Nominatim has no precision field; importance is the closest signal.
	confidence := "low"

	switch {
	case place.Importance >= 0.5:
		confidence = "high"
	case place.Importance >= 0.2:
		confidence = "medium"
	}

	return &Result{
		Point:       spatial.Point{Lat: lat, Lng: lng},
		Confidence:  confidence,
		Provider:    "nominatim",
		DisplayName: place.DisplayName,
	}, nil
}
