// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package markers places one map marker per role of a contact, fanning them
// out around the contact location so they do not overlap.
package markers

import (
	"log"

	"github.com/jcodagnone/contactmap/contacts"
	"github.com/jcodagnone/contactmap/roles"
	"github.com/jcodagnone/contactmap/spatial"
)

// DefaultScale converts role offset units to degrees.
const DefaultScale = 0.001

// BaseZIndex is the z-index of the first marker of a contact.
const BaseZIndex = 1000

// Popup is the detail card attached to the first marker of a contact.
type Popup struct {
	Name    string   `json:"name" yaml:"name"`
	Roles   []string `json:"roles" yaml:"roles"`
	Email   string   `json:"email,omitempty" yaml:"email,omitempty"`
	Phone   string   `json:"phone,omitempty" yaml:"phone,omitempty"`
	Address string   `json:"address,omitempty" yaml:"address,omitempty"`
}

// PlacedMarker is a marker ready for the map renderer.
type PlacedMarker struct {
	ContactID string           `json:"contact_id" yaml:"contact_id"`
	Role      string           `json:"role" yaml:"role"`
	Offset    roles.Offset     `json:"offset" yaml:"offset"`
	Point     spatial.Point    `json:"point" yaml:"point"`
	Icon      roles.Descriptor `json:"icon" yaml:"icon"`
	ZIndex    int              `json:"z_index" yaml:"z_index"`
	Popup     *Popup           `json:"popup,omitempty" yaml:"popup,omitempty"`
}

// Group holds the markers of one contact.
type Group struct {
	ContactID string         `json:"contact_id" yaml:"contact_id"`
	Cell      string         `json:"cell,omitempty" yaml:"cell,omitempty"`
	Markers   []PlacedMarker `json:"markers" yaml:"markers"`
}

// Placer computes marker placements.
type Placer struct {
	// Scale converts role offset units to degrees. Zero selects DefaultScale.
	Scale float64
}

func (p Placer) scale() float64 {
	if p.Scale == 0 {
		return DefaultScale
	}

	return p.Scale
}

// PopupOf builds the popup payload of c.
func PopupOf(c *contacts.Contact) *Popup {
	return &Popup{
		Name:    c.Name,
		Roles:   c.Roles,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
	}
}

// Place returns one marker per role of c, in role order. A single role sits
// on the contact point; with several roles each marker moves by its role
// offset. Unknown roles have no offset and share the contact point. Only
// the first marker carries the popup.
func (p Placer) Place(c *contacts.Contact) []PlacedMarker {
	out := make([]PlacedMarker, 0, len(c.Roles))
	fanOut := len(c.Roles) > 1

	for i, role := range c.Roles {
		icon := roles.Describe(role)
		if !icon.Known {
			log.Printf("Contact %s: unknown role %q, using default icon", c.ID, role)
		}

		m := PlacedMarker{
			ContactID: c.ID,
			Role:      role,
			Point:     c.Point,
			Icon:      icon,
			ZIndex:    BaseZIndex + i,
		}

		if fanOut {
			m.Offset = icon.Offset
			m.Point = c.Point.Offset(icon.Offset.Y*p.scale(), icon.Offset.X*p.scale())
		}

		if i == 0 {
			m.Popup = PopupOf(c)
		}

		out = append(out, m)
	}

	return out
}

// Group places the markers of c together with its H3 cell.
func (p Placer) Group(c *contacts.Contact) Group {
	return Group{ContactID: c.ID, Cell: c.Cell, Markers: p.Place(c)}
}

// PlaceAll groups the markers of every contact, in input order.
func (p Placer) PlaceAll(cs []contacts.Contact) []Group {
	out := make([]Group, 0, len(cs))

	for i := range cs {
		out = append(out, p.Group(&cs[i]))
	}

	return out
}

// Count returns the number of markers in groups.
func Count(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Markers)
	}

	return n
}
