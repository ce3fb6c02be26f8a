// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/contactmap/contacts"
	"github.com/jcodagnone/contactmap/geocode"
	"github.com/jcodagnone/contactmap/markers"
	"github.com/jcodagnone/contactmap/roles"
	"github.com/jcodagnone/contactmap/source"
	"github.com/jcodagnone/contactmap/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource []source.RawRecord

func (s staticSource) Fetch(_ context.Context) ([]source.RawRecord, error) {
	return s, nil
}

var fixture = []contacts.Contact{
	{
		ID: "1", Name: "Ann Lee", Email: "a@b.com",
		Address: "12 Elm St, Springfield, IL",
		Roles:   []string{roles.Contractor, roles.GeoTech},
		Point:   spatial.Point{Lat: 39.78, Lng: -89.65},
	},
	{
		ID: "2", Name: "Bob Ray",
		Address: "4 Oak Ave, Springfield, MO",
		Roles:   []string{roles.HomeOwner},
		Point:   spatial.Point{Lat: 37.2, Lng: -93.29},
	},
	{
		ID: "3", Name: "Cy Fox", Phone: "555",
		Address: "9 Pine Rd, Portland, OR",
		Roles:   []string{roles.Affiliate},
		Point:   spatial.Point{Lat: 45.5, Lng: -122.6},
	},
	{
		ID: "4", Name: "Di Wu", Email: "d@b.com", Phone: "556",
		Address: "1 Main St, Austin, TX",
		Roles:   []string{roles.Contractor},
		Point:   spatial.Point{Lat: 30.27, Lng: -97.74},
	},
}

func setupServerTest(t *testing.T, records []source.RawRecord) (*gin.Engine, *contacts.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := contacts.NewRegistry()
	pass := registry.Begin()
	registry.Publish(contacts.Snapshot{Pass: pass, Contacts: fixture, Done: 4, Total: 4, Final: true})

	pipeline := contacts.NewPipeline(
		roles.NewNormalizer(roles.FixedPicker(roles.Affiliate)),
		geocode.NewResolver(nil, geocode.ResolverOptions{Seed: 1}),
		contacts.PipelineOptions{OnContact: func(int, int, *contacts.Contact) {}},
	)

	service := contacts.NewService(staticSource(records), pipeline, registry)
	t.Cleanup(service.Close)

	return NewServer(service, markers.Placer{}).Router(), service
}

func get(t *testing.T, router *gin.Engine, url string, out any) int {
	t.Helper()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	router.ServeHTTP(w, req)

	if out != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}

	return w.Code
}

func TestListRolesAPI(t *testing.T) {
	router, _ := setupServerTest(t, nil)

	var resp struct {
		Roles   []roles.Descriptor `json:"roles"`
		Unknown roles.Descriptor   `json:"unknown"`
	}

	assert.Equal(t, http.StatusOK, get(t, router, "/api/roles", &resp))
	assert.Len(t, resp.Roles, 6)
	assert.Equal(t, roles.Contractor, resp.Roles[0].Role)
	assert.Equal(t, "#808080", resp.Unknown.Color)
}

func TestListContactsAPI(t *testing.T) {
	router, _ := setupServerTest(t, nil)

	tests := []struct {
		url     string
		ids     []string
		summary string
	}{
		{"/api/contacts", []string{"1", "2", "3", "4"}, "Showing 4 of 4 contacts"},
		{"/api/contacts?role=Contractor", []string{"1", "4"}, "Showing 2 of 4 contacts"},
		{"/api/contacts?role=affiliate&role=Home%20Owner", []string{"2", "3"}, "Showing 2 of 4 contacts"},
		{"/api/contacts?role=Contractor&location=springfield", []string{"1"}, "Showing 1 of 4 contacts"},
		{"/api/contacts?role=Home%20Owner&location=Austin", []string{}, "Showing 0 of 4 contacts"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			var resp contactsResponse

			require.Equal(t, http.StatusOK, get(t, router, tt.url, &resp))

			ids := []string{}
			for _, c := range resp.Contacts {
				ids = append(ids, c.ID)
			}

			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, tt.summary, resp.Summary)
			assert.Equal(t, 4, resp.Total)
		})
	}
}

func TestGetContactAPI(t *testing.T) {
	router, _ := setupServerTest(t, nil)

	var c contacts.Contact

	assert.Equal(t, http.StatusOK, get(t, router, "/api/contacts/3", &c))
	assert.Equal(t, "Cy Fox", c.Name)

	assert.Equal(t, http.StatusNotFound, get(t, router, "/api/contacts/99", nil))
	assert.Equal(t, http.StatusNotFound, get(t, router, "/api/contacts/99/markers", nil))
}

func TestMarkersAPI(t *testing.T) {
	router, _ := setupServerTest(t, nil)

	var group markers.Group

	require.Equal(t, http.StatusOK, get(t, router, "/api/contacts/1/markers", &group))
	require.Len(t, group.Markers, 2)
	assert.NotNil(t, group.Markers[0].Popup)
	assert.Nil(t, group.Markers[1].Popup)
	assert.NotEqual(t, group.Markers[0].Point, group.Markers[1].Point)

	var all struct {
		Groups  []markers.Group `json:"groups"`
		Markers int             `json:"markers"`
	}

	require.Equal(t, http.StatusOK, get(t, router, "/api/markers?role=Contractor", &all))
	assert.Len(t, all.Groups, 2)
	assert.Equal(t, 3, all.Markers)
}

func TestSuggestionsAPI(t *testing.T) {
	router, _ := setupServerTest(t, nil)

	type response struct {
		Suggestions []contacts.Suggestion `json:"suggestions"`
		Total       int                   `json:"total"`
	}

	var resp response

	require.Equal(t, http.StatusOK, get(t, router, "/api/suggestions?role=Geo%20Tech", &resp))
	require.NotEmpty(t, resp.Suggestions)
	assert.Equal(t, "1", resp.Suggestions[0].ID)
	assert.Equal(t, 7, resp.Suggestions[0].Score)
	assert.Equal(t, "Springfield", resp.Suggestions[0].City)

	resp = response{}
	require.Equal(t, http.StatusOK, get(t, router, "/api/suggestions", &resp))
	assert.Len(t, resp.Suggestions, contacts.DefaultSuggestionLimit)
	assert.Equal(t, 4, resp.Total)

	resp = response{}
	require.Equal(t, http.StatusOK, get(t, router, "/api/suggestions?limit=0", &resp))
	assert.Len(t, resp.Suggestions, 4)

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/suggestions?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/suggestions?limit=all", nil))
}

func TestStatusAPI(t *testing.T) {
	router, _ := setupServerTest(t, nil)

	tests := []struct {
		url     string
		summary string
	}{
		{"/api/status", "Showing 4 of 4 contacts"},
		{"/api/status?role=Contractor", "Showing 2 of 4 contacts"},
		{"/api/status?role=Contractor&location=springfield", "Showing 1 of 4 contacts"},
	}

	for _, test := range tests {
		t.Run(test.url, func(t *testing.T) {
			var resp struct {
				Status  contacts.Status `json:"status"`
				Summary string          `json:"summary"`
			}

			require.Equal(t, http.StatusOK, get(t, router, test.url, &resp))
			assert.Equal(t, contacts.StateReady, resp.Status.State)
			assert.Equal(t, 4, resp.Status.Contacts)
			assert.Equal(t, test.summary, resp.Summary)
		})
	}
}

func TestIngestAPI(t *testing.T) {
	records := []source.RawRecord{{ID: "x", FirstName: "Xi", Role: source.Text("Geo Tech")}}
	router, service := setupServerTest(t, records)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/ingest", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	service.Wait()

	var resp struct {
		Status  contacts.Status `json:"status"`
		Summary string          `json:"summary"`
	}

	require.Equal(t, http.StatusOK, get(t, router, "/api/status", &resp))
	assert.Equal(t, contacts.StateReady, resp.Status.State)
	assert.Equal(t, 1, resp.Status.Contacts)
	assert.Equal(t, "Showing 1 of 1 contacts", resp.Summary)

	var c contacts.Contact

	require.Equal(t, http.StatusOK, get(t, router, "/api/contacts/x", &c))
	assert.Equal(t, []string{roles.GeoTech}, c.Roles)
	assert.False(t, c.Geocoded)
}
