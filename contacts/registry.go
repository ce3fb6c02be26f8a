// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package contacts

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jcodagnone/contactmap/source"
)

// State of the current pass.
type State string

// States.
const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Status describes the current pass.
type Status struct {
	Pass      uuid.UUID  `json:"pass" yaml:"pass"`
	State     State      `json:"state" yaml:"state"`
	Done      int        `json:"done" yaml:"done"`
	Total     int        `json:"total" yaml:"total"`
	Contacts  int        `json:"contacts" yaml:"contacts"`
	Error     string     `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind string     `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Registry holds the contacts of the latest ingestion pass. Snapshots of
// superseded passes are ignored. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	pass     uuid.UUID
	state    State
	contacts []Contact
	done     int
	total    int
	err      error
	started  time.Time
	updated  time.Time
	now      func() time.Time
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{state: StateIdle, contacts: []Contact{}, now: time.Now}
}

// Begin starts a new pass, superseding the current one. The contacts of
// the previous pass stay visible until the first snapshot arrives.
func (r *Registry) Begin() uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pass = uuid.New()
	r.state = StateLoading
	r.done, r.total = 0, 0
	r.err = nil
	r.started = r.now()
	r.updated = r.started

	return r.pass
}

// Publish replaces the contact set with the snapshot ones. It returns false
// when the snapshot belongs to a superseded pass or to none.
func (r *Registry) Publish(s Snapshot) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.Pass == uuid.Nil || s.Pass != r.pass {
		return false
	}

	r.contacts = s.Contacts
	if r.contacts == nil {
		r.contacts = []Contact{}
	}

	r.done, r.total = s.Done, s.Total
	r.updated = r.now()

	if s.Final {
		r.state = StateReady
	}

	return true
}

// Fail records that the source of pass is unavailable. The contact set is
// emptied.
func (r *Registry) Fail(pass uuid.UUID, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pass == uuid.Nil || pass != r.pass {
		return false
	}

	r.contacts = []Contact{}
	r.done, r.total = 0, 0
	r.err = err
	r.state = StateFailed
	r.updated = r.now()

	return true
}

// Contacts returns the current contact set.
func (r *Registry) Contacts() []Contact {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.contacts)
}

// FilteredContacts returns the current contacts matching f.
func (r *Registry) FilteredContacts(f FilterState) []Contact {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return Filter(r.contacts, f)
}

// Suggestions returns up to limit suggestions under f; limit <= 0 means all.
func (r *Registry) Suggestions(f FilterState, limit int) []Suggestion {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return Limit(Suggestions(r.contacts, f), limit)
}

// Views derives both views under f from the same contact set.
func (r *Registry) Views(f FilterState, limit int) Views {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v := DeriveViews(r.contacts, f)
	v.Suggestions = Limit(v.Suggestions, limit)

	return v
}

// Contact finds a contact by id.
func (r *Registry) Contact(id string) (Contact, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.contacts {
		if c.ID == id {
			return c, true
		}
	}

	return Contact{}, false
}

// Err returns the error of the current pass, if any.
func (r *Registry) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.err
}

// Status describes the current pass.
func (r *Registry) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Status{
		Pass:     r.pass,
		State:    r.state,
		Done:     r.done,
		Total:    r.total,
		Contacts: len(r.contacts),
	}

	if r.err != nil {
		s.Error = r.err.Error()
		s.ErrorKind = source.KindOf(r.err).String()
	}

	if !r.started.IsZero() {
		started, updated := r.started, r.updated
		s.StartedAt, s.UpdatedAt = &started, &updated
	}

	return s
}
