// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package contacts

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jcodagnone/contactmap/utils/textutils"
)

// DefaultSuggestionLimit is how many suggestions are shown before the user
// asks for all of them.
const DefaultSuggestionLimit = 3

// Suggestion is a contact ranked under the current filters.
type Suggestion struct {
	Contact `yaml:",inline"`

	Score int    `json:"score" yaml:"score"`
	City  string `json:"city,omitempty" yaml:"city,omitempty"`
}

// City is the second to last comma separated part of address, the city in
// "street, city, state" addresses.
func City(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return ""
	}

	return strings.TrimSpace(parts[len(parts)-2])
}

// Suggestions scores every contact and keeps those above
// SuggestionThreshold, best first. Ties keep input order.
func Suggestions(cs []Contact, f FilterState) []Suggestion {
	out := make([]Suggestion, 0, len(cs))

	for i := range cs {
		score := Score(&cs[i], f)
		if score <= SuggestionThreshold {
			continue
		}

		out = append(out, Suggestion{Contact: cs[i], Score: score, City: City(cs[i].Address)})
	}

	slices.SortStableFunc(out, func(a, b Suggestion) int {
		return b.Score - a.Score
	})

	return out
}

// Limit returns at most n suggestions; n <= 0 means all of them.
func Limit(s []Suggestion, n int) []Suggestion {
	if n <= 0 || n >= len(s) {
		return s
	}

	return s[:n]
}

// Views is everything the presentation layer shows for a filter.
type Views struct {
	Filtered    []Contact    `json:"filtered" yaml:"filtered"`
	Suggestions []Suggestion `json:"suggestions" yaml:"suggestions"`
	Total       int          `json:"total" yaml:"total"`
}

// Summary is the "Showing X of Y contacts" header.
func (v *Views) Summary() string {
	return Summary(len(v.Filtered), v.Total)
}

// Summary formats the header line for shown out of total contacts.
func Summary(shown, total int) string {
	return fmt.Sprintf("Showing %s of %s contacts", textutils.FormatInt(int64(shown)), textutils.FormatInt(int64(total)))
}

// DeriveViews computes the filtered set and the suggestions of cs under f.
// It has no side effects; call it again whenever cs or f change.
func DeriveViews(cs []Contact, f FilterState) Views {
	return Views{
		Filtered:    Filter(cs, f),
		Suggestions: Suggestions(cs, f),
		Total:       len(cs),
	}
}
