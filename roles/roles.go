// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package roles owns the project role tags assigned to contacts: parsing of
// free-text role annotations and the descriptor table (color, glyph and
// marker offset) that renderers consume.
package roles

import (
	"github.com/jcodagnone/contactmap/utils/textutils"
)

// Known role tags.
const (
	Contractor       = "Contractor"
	HomeOwner        = "Home Owner"
	Affiliate        = "Affiliate"
	ReferralPartner  = "Referral Partner"
	CommunityPartner = "Community Partner"
	GeoTech          = "Geo Tech"
)

// Glyph shapes.
const (
	ShapeStar     = "star"
	ShapeHome     = "home"
	ShapeCircle   = "circle"
	ShapeDiamond  = "diamond"
	ShapeSquare   = "square"
	ShapeTriangle = "triangle"
)

// Offset is a unit displacement used to fan out markers of a contact with
// several roles. X moves along longitude, Y along latitude.
type Offset struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Descriptor is the presentation data bound to a role.
type Descriptor struct {
	Role   string `json:"role" yaml:"role"`
	Color  string `json:"color" yaml:"color"`
	Shape  string `json:"shape" yaml:"shape"`
	Offset Offset `json:"offset" yaml:"offset"`
	Known  bool   `json:"known" yaml:"known"`
}

// Unknown describes any tag outside the known set.
var Unknown = Descriptor{Color: "#808080", Shape: ShapeCircle}

var table = []Descriptor{
	{Role: Contractor, Color: "#3388ff", Shape: ShapeStar, Offset: Offset{-10, -10}, Known: true},
	{Role: HomeOwner, Color: "#33cc33", Shape: ShapeHome, Offset: Offset{10, -10}, Known: true},
	{Role: Affiliate, Color: "#ffcc00", Shape: ShapeCircle, Offset: Offset{-10, 10}, Known: true},
	{Role: ReferralPartner, Color: "#9933cc", Shape: ShapeDiamond, Offset: Offset{10, 10}, Known: true},
	{Role: CommunityPartner, Color: "#ff9900", Shape: ShapeSquare, Offset: Offset{0, -15}, Known: true},
	{Role: GeoTech, Color: "#ff66cc", Shape: ShapeTriangle, Offset: Offset{0, 15}, Known: true},
}

var byKey = func() map[string]Descriptor {
	m := make(map[string]Descriptor, len(table))
	for _, d := range table {
		m[Key(d.Role)] = d
	}

	return m
}()

// Key returns the comparison key of a tag: accents removed, lower case,
// trimmed.
func Key(tag string) string {
	return textutils.LowerASCIIFolding(tag)
}

// Equal reports whether two tags name the same role.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}

// Known returns the known role tags in canonical order.
func Known() []string {
	out := make([]string, len(table))
	for i, d := range table {
		out[i] = d.Role
	}

	return out
}

// Legend returns the descriptor of every known role in canonical order.
func Legend() []Descriptor {
	out := make([]Descriptor, len(table))
	copy(out, table)

	return out
}

// Lookup finds the descriptor of a known role, ignoring case and accents.
func Lookup(tag string) (Descriptor, bool) {
	d, ok := byKey[Key(tag)]

	return d, ok
}

// Describe returns the descriptor for tag, falling back to Unknown. The
// returned Role is always tag as given.
func Describe(tag string) Descriptor {
	d, ok := Lookup(tag)
	if !ok {
		d = Unknown
	}

	d.Role = tag

	return d
}

// Intersects reports whether any tag of a is also in b.
func Intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}

	keys := make(map[string]struct{}, len(b))
	for _, tag := range b {
		keys[Key(tag)] = struct{}{}
	}

	for _, tag := range a {
		if _, ok := keys[Key(tag)]; ok {
			return true
		}
	}

	return false
}
