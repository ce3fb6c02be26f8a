// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package source fetches raw contact records from the CRM or from an export
// file on disk.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Source returns every raw contact record available.
type Source interface {
	Fetch(ctx context.Context) ([]RawRecord, error)
}

// RawRecord is a contact as delivered by a source, before normalization.
type RawRecord struct {
	ID        string         `json:"id"`
	FirstName string         `json:"firstname"`
	LastName  string         `json:"lastname"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Address   string         `json:"address"`
	Role      RoleAnnotation `json:"project_role"`
}

// UnknownName is shown for records without first nor last name.
const UnknownName = "Unknown"

// Name joins first and last name.
func (r *RawRecord) Name() string {
	name := strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
	if name == "" {
		return UnknownName
	}

	return name
}

// RoleAnnotation is the role property of a record. CRMs export it either as
// free text ("Contractor; Home Owner") or as a list of tags.
type RoleAnnotation struct {
	Text string
	List []string
}

// Text builds a free-text annotation.
func Text(s string) RoleAnnotation {
	return RoleAnnotation{Text: s}
}

// List builds a structured annotation.
func List(tags ...string) RoleAnnotation {
	if tags == nil {
		tags = []string{}
	}

	return RoleAnnotation{List: tags}
}

// IsList reports whether the annotation arrived as a list.
func (a RoleAnnotation) IsList() bool {
	return a.List != nil
}

// IsZero reports whether the annotation carries nothing at all.
func (a RoleAnnotation) IsZero() bool {
	return a.Text == "" && len(a.List) == 0
}

// UnmarshalJSON accepts a string, an array of strings or null.
func (a *RoleAnnotation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*a = RoleAnnotation{}

		return nil
	case len(data) > 0 && data[0] == '[':
		var tags []string
		if err := json.Unmarshal(data, &tags); err != nil {
			return fmt.Errorf("role list: %w", err)
		}

		*a = List(tags...)

		return nil
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("role annotation must be a string or a list: %w", err)
		}

		*a = Text(s)

		return nil
	}
}

// MarshalJSON writes the annotation back in the form it was read.
func (a RoleAnnotation) MarshalJSON() ([]byte, error) {
	if a.IsList() {
		return json.Marshal(a.List)
	}

	return json.Marshal(a.Text)
}

func (a RoleAnnotation) String() string {
	if a.IsList() {
		return strings.Join(a.List, "; ")
	}

	return a.Text
}
