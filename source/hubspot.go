// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jcodagnone/contactmap/utils/htmlutils"
	"github.com/jcodagnone/contactmap/utils/httputils"
)

// DefaultHubSpotURL is the HubSpot API base URL.
const DefaultHubSpotURL = "https://api.hubapi.com"

const contactsPath = "/crm/v3/objects/contacts"

// Properties requested for every contact.
var hubspotProperties = []string{"firstname", "lastname", "email", "phone", "address", "project_role"}

// HubSpotOptions configures HubSpotSource.
type HubSpotOptions struct {
	// Token is a private app access token, sent as a bearer token
	Token string

	// BaseURL defaults to DefaultHubSpotURL
	BaseURL string

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// PageSize is the number of contacts per request (max 100)
	PageSize int

	// MaxPages stops paging after that many pages. Zero means no limit.
	MaxPages int

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool
}

// HubSpotSource reads contacts from the HubSpot CRM objects API.
type HubSpotSource struct {
	options HubSpotOptions
	client  *http.Client
}

// NewHubSpotSource creates a HubSpot source.
func NewHubSpotSource(options HubSpotOptions) *HubSpotSource {
	if options.BaseURL == "" {
		options.BaseURL = DefaultHubSpotURL
	}

	if options.PageSize <= 0 || options.PageSize > 100 {
		options.PageSize = 100
	}

	headers := map[string]string{}
	if options.Token != "" {
		headers["Authorization"] = "Bearer " + options.Token
	}

	return &HubSpotSource{
		options: options,
		client: httputils.NewClient(httputils.ClientOptions{
			UserAgent:           options.UserAgent,
			Headers:             headers,
			EnableHTTPTrace:     options.EnableHTTPTrace,
			EnableHTTPBodyTrace: options.EnableHTTPBodyTrace,
		}),
	}
}

// hubspotContact is a CRM object as the API (and its exports) encode it.
type hubspotContact struct {
	ID         string `json:"id"`
	Properties struct {
		FirstName   *string        `json:"firstname"`
		LastName    *string        `json:"lastname"`
		Email       *string        `json:"email"`
		Phone       *string        `json:"phone"`
		Address     *string        `json:"address"`
		ProjectRole RoleAnnotation `json:"project_role"`
	} `json:"properties"`
}

type hubspotPage struct {
	Results *[]hubspotContact `json:"results"`
	Paging  *struct {
		Next *struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

func plain(s *string) string {
	if s == nil {
		return ""
	}

	return htmlutils.PlainText(*s)
}

func (c *hubspotContact) record() RawRecord {
	p := &c.Properties

	role := p.ProjectRole
	if !role.IsList() {
		role = Text(htmlutils.PlainText(role.Text))
	}

	return RawRecord{
		ID:        c.ID,
		FirstName: plain(p.FirstName),
		LastName:  plain(p.LastName),
		Email:     plain(p.Email),
		Phone:     plain(p.Phone),
		Address:   plain(p.Address),
		Role:      role,
	}
}

func (s *HubSpotSource) pageURL(after string) string {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(s.options.PageSize))
	params.Set("properties", strings.Join(hubspotProperties, ","))

	if after != "" {
		params.Set("after", after)
	}

	return strings.TrimRight(s.options.BaseURL, "/") + contactsPath + "?" + params.Encode()
}

func (s *HubSpotSource) fetchPage(ctx context.Context, after string) (*hubspotPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL(after), nil)
	if err != nil {
		return nil, fmt.Errorf("building contacts request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, networkError(err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode)
	}

	var page hubspotPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, malformedError(err)
	}

	if page.Results == nil {
		return nil, malformedError(errors.New("missing results"))
	}

	return &page, nil
}

// Fetch implements Source. It follows the paging cursor until the last page.
func (s *HubSpotSource) Fetch(ctx context.Context) ([]RawRecord, error) {
	var (
		records []RawRecord
		after   string
	)

	for i := 1; ; i++ {
		page, err := s.fetchPage(ctx, after)
		if err != nil {
			return nil, err
		}

		for j := range *page.Results {
			records = append(records, (*page.Results)[j].record())
		}

		log.Printf("[page %d] %d contacts fetched", i, len(records))

		if page.Paging == nil || page.Paging.Next == nil || page.Paging.Next.After == "" {
			break
		}

		if s.options.MaxPages > 0 && i >= s.options.MaxPages {
			log.Printf("Stopping after %d pages", i)

			break
		}

		after = page.Paging.Next.After
	}

	return records, nil
}
