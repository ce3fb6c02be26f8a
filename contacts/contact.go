// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package contacts builds normalized, located contacts out of raw CRM
// records and derives the filtered and suggested views served to the map.
package contacts

import (
	"strings"

	"github.com/jcodagnone/contactmap/roles"
	"github.com/jcodagnone/contactmap/spatial"
)

// Contact is a normalized CRM contact with a resolved location. Contacts are
// built once per ingestion pass and never modified afterwards.
type Contact struct {
	ID       string        `json:"id" yaml:"id"`
	Name     string        `json:"name" yaml:"name"`
	Email    string        `json:"email,omitempty" yaml:"email,omitempty"`
	Phone    string        `json:"phone,omitempty" yaml:"phone,omitempty"`
	Address  string        `json:"address,omitempty" yaml:"address,omitempty"`
	Roles    []string      `json:"roles" yaml:"roles"`
	Point    spatial.Point `json:"point" yaml:"point"`
	Geocoded bool          `json:"geocoded" yaml:"geocoded"`
	Cell     string        `json:"cell,omitempty" yaml:"cell,omitempty"`
}

// HasRole reports whether the contact holds role, ignoring case and accents.
func (c *Contact) HasRole(role string) bool {
	for _, r := range c.Roles {
		if roles.Equal(r, role) {
			return true
		}
	}

	return false
}

// FilterState is the user selection applied to the contact set. The zero
// value selects everything.
type FilterState struct {
	Roles    []string `json:"roles,omitempty" yaml:"roles,omitempty"`
	Location string   `json:"location,omitempty" yaml:"location,omitempty"`
}

// NewFilterState builds a FilterState dropping blank roles and trimming the
// location.
func NewFilterState(selected []string, location string) FilterState {
	f := FilterState{Location: strings.TrimSpace(location)}

	for _, r := range selected {
		if r = strings.TrimSpace(r); r != "" {
			f.Roles = append(f.Roles, r)
		}
	}

	return f
}

// HasRoles reports whether a role filter is active.
func (f FilterState) HasRoles() bool {
	return len(f.Roles) > 0
}

// HasLocation reports whether a location filter is active.
func (f FilterState) HasLocation() bool {
	return strings.TrimSpace(f.Location) != ""
}

// IsEmpty reports whether no filter is active.
func (f FilterState) IsEmpty() bool {
	return !f.HasRoles() && !f.HasLocation()
}
