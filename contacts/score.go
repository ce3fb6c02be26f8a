// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package contacts

import (
	"strings"

	"github.com/jcodagnone/contactmap/roles"
	"github.com/jcodagnone/contactmap/utils/textutils"
)

// Score weights.
const (
	RoleMatchScore     = 5
	LocationMatchScore = 3
	NoFilterScore      = 1
	CompletenessScore  = 1

	// SuggestionThreshold is the score a contact must exceed to be suggested.
	SuggestionThreshold = 1
)

func matchesRoles(c *Contact, f FilterState) bool {
	return roles.Intersects(c.Roles, f.Roles)
}

func matchesLocation(c *Contact, f FilterState) bool {
	return textutils.ContainsFold(c.Address, strings.TrimSpace(f.Location))
}

// Score rates how relevant c is under f. Inactive filters add
// NoFilterScore; active ones add their match score only when they match.
// Email and phone add CompletenessScore each.
func Score(c *Contact, f FilterState) int {
	score := 0

	switch {
	case !f.HasRoles():
		score += NoFilterScore
	case matchesRoles(c, f):
		score += RoleMatchScore
	}

	switch {
	case !f.HasLocation():
		score += NoFilterScore
	case matchesLocation(c, f):
		score += LocationMatchScore
	}

	if c.Email != "" {
		score += CompletenessScore
	}

	if c.Phone != "" {
		score += CompletenessScore
	}

	return score
}

// Matches reports whether c passes every active filter.
func Matches(c *Contact, f FilterState) bool {
	if f.HasRoles() && !matchesRoles(c, f) {
		return false
	}

	if f.HasLocation() && !matchesLocation(c, f) {
		return false
	}

	return true
}

// Filter returns the contacts matching f, in input order.
func Filter(cs []Contact, f FilterState) []Contact {
	out := make([]Contact, 0, len(cs))

	for i := range cs {
		if Matches(&cs[i], f) {
			out = append(out, cs[i])
		}
	}

	return out
}
