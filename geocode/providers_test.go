// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestNominatimGeocode(t *testing.T) {
	srv := serve(t, http.StatusOK,
		`[{"lat":"39.7990175","lon":"-89.6439575","display_name":"Springfield, Illinois","importance":0.71}]`,
		func(r *http.Request) {
			assert.Equal(t, "json", r.URL.Query().Get("format"))
			assert.Equal(t, "Springfield, IL", r.URL.Query().Get("q"))
		})

	g := NewNominatimGeocoder(srv.URL, srv.Client())

	res, err := g.Geocode(context.Background(), "Springfield, IL")
	require.NoError(t, err)
	assert.InDelta(t, 39.7990175, res.Point.Lat, 1e-9)
	assert.InDelta(t, -89.6439575, res.Point.Lng, 1e-9)
	assert.Equal(t, "high", res.Confidence)
	assert.Equal(t, "nominatim", res.Provider)
	assert.Equal(t, "Springfield, Illinois", res.DisplayName)
}

func TestNominatimGeocodeFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType ErrorType
	}{
		{"empty results", http.StatusOK, `[]`, ErrorTypeNotFound},
		{"bad latitude", http.StatusOK, `[{"lat":"north","lon":"1"}]`, ErrorTypeParse},
		{"bad longitude", http.StatusOK, `[{"lat":"1","lon":""}]`, ErrorTypeParse},
		{"malformed json", http.StatusOK, `{"oops"`, ErrorTypeParse},
		{"rate limited", http.StatusTooManyRequests, ``, ErrorTypeRateLimit},
		{"unavailable", http.StatusServiceUnavailable, ``, ErrorTypeNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body, nil)
			g := NewNominatimGeocoder(srv.URL, srv.Client())

			res, err := g.Geocode(context.Background(), "Springfield")

			assert.Nil(t, res)
			assert.Equal(t, tt.wantType, ClassifyError(err))
		})
	}
}

func TestNominatimNetworkFailure(t *testing.T) {
	srv := serve(t, http.StatusOK, `[]`, nil)
	url := srv.URL
	srv.Close()

	_, err := NewNominatimGeocoder(url, nil).Geocode(context.Background(), "Springfield")
	assert.Equal(t, ErrorTypeNetworkError, ClassifyError(err))
}

func TestGoogleMapsGeocode(t *testing.T) {
	srv := serve(t, http.StatusOK, `{
		"status": "OK",
		"results": [{
			"geometry": {"location": {"lat": 39.78, "lng": -89.65}, "location_type": "GEOMETRIC_CENTER"},
			"formatted_address": "Springfield, IL, USA"
		}]
	}`, func(r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "us", r.URL.Query().Get("region"))
		assert.Equal(t, "Springfield, IL", r.URL.Query().Get("address"))
	})

	g := NewGoogleMapsGeocoder("secret", "us", srv.Client())
	g.baseURL = srv.URL

	res, err := g.Geocode(context.Background(), "Springfield, IL")
	require.NoError(t, err)
	assert.InDelta(t, 39.78, res.Point.Lat, 1e-9)
	assert.InDelta(t, -89.65, res.Point.Lng, 1e-9)
	assert.Equal(t, "medium", res.Confidence)
	assert.Equal(t, "google_maps", res.Provider)
}

func TestGoogleMapsGeocodeStatuses(t *testing.T) {
	tests := []struct {
		body     string
		wantType ErrorType
	}{
		{`{"status":"ZERO_RESULTS","results":[]}`, ErrorTypeNotFound},
		{`{"status":"OVER_QUERY_LIMIT"}`, ErrorTypeQuotaExceeded},
		{`{"status":"REQUEST_DENIED","error_message":"bad key"}`, ErrorTypeInvalidRequest},
		{`{"status":"UNKNOWN_ERROR"}`, ErrorTypeUnknown},
		{`{"status":"OK","results":[]}`, ErrorTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			srv := serve(t, http.StatusOK, tt.body, nil)
			g := NewGoogleMapsGeocoder("secret", "", srv.Client())
			g.baseURL = srv.URL

			_, err := g.Geocode(context.Background(), "Springfield")
			assert.Equal(t, tt.wantType, ClassifyError(err))
		})
	}
}
