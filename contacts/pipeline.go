// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package contacts

import (
	"context"
	"log"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jcodagnone/contactmap/geocode"
	"github.com/jcodagnone/contactmap/roles"
	"github.com/jcodagnone/contactmap/source"
	"github.com/jcodagnone/contactmap/spatial"
	"github.com/jcodagnone/contactmap/utils/batchutils"
)

// Pipeline defaults.
const (
	DefaultSnapshotEvery = 5
	DefaultH3Resolution  = 7
)

// Snapshot is the state of an ingestion pass after Done of Total contacts.
type Snapshot struct {
	Pass     uuid.UUID `json:"pass"`
	Contacts []Contact `json:"contacts"`
	Done     int       `json:"done"`
	Total    int       `json:"total"`
	Final    bool      `json:"final"`
}

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	// SnapshotEvery controls the snapshot cadence: after the first contact,
	// every SnapshotEvery contacts and after the last one.
	SnapshotEvery int

	// H3Resolution of Contact.Cell.
	H3Resolution int

	// OnContact is called after every located contact. When nil each
	// contact is logged.
	OnContact func(done, total int, c *Contact)
}

// PipelineMetrics summarizes an ingestion pass.
type PipelineMetrics struct {
	Records   int
	Geocoded  int
	Fallbacks int
	Renamed   int
}

// Merge combines two PipelineMetrics.
func (m *PipelineMetrics) Merge(o *PipelineMetrics) *PipelineMetrics {
	m.Records += o.Records
	m.Geocoded += o.Geocoded
	m.Fallbacks += o.Fallbacks
	m.Renamed += o.Renamed

	return m
}

// Pipeline turns raw records into located contacts.
type Pipeline struct {
	normalizer *roles.Normalizer
	resolver   *geocode.Resolver
	options    PipelineOptions
}

// NewPipeline creates a Pipeline.
func NewPipeline(normalizer *roles.Normalizer, resolver *geocode.Resolver, options PipelineOptions) *Pipeline {
	if normalizer == nil {
		normalizer = roles.NewNormalizer(nil)
	}

	if resolver == nil {
		resolver = geocode.NewResolver(nil, geocode.ResolverOptions{})
	}

	if options.SnapshotEvery <= 0 {
		options.SnapshotEvery = DefaultSnapshotEvery
	}

	if options.H3Resolution <= 0 || options.H3Resolution > 15 {
		options.H3Resolution = DefaultH3Resolution
	}

	return &Pipeline{normalizer: normalizer, resolver: resolver, options: options}
}

// Resolver returns the geocode resolver in use.
func (p *Pipeline) Resolver() *geocode.Resolver {
	return p.resolver
}

// Normalize builds the contact of a record, without location.
func (p *Pipeline) Normalize(r *source.RawRecord) Contact {
	var tags []string
	if r.Role.IsList() {
		tags = p.normalizer.NormalizeList(r.Role.List)
	} else {
		tags = p.normalizer.Normalize(r.Role.Text)
	}

	return Contact{
		ID:      strings.TrimSpace(r.ID),
		Name:    r.Name(),
		Email:   strings.TrimSpace(r.Email),
		Phone:   strings.TrimSpace(r.Phone),
		Address: strings.TrimSpace(r.Address),
		Roles:   tags,
	}
}

// uniqueIDs makes record ids non-empty and unique, appending the record
// position to blank or repeated ones and a counter when that is taken too.
func uniqueIDs(cs []Contact) int {
	seen := make(map[string]struct{}, len(cs))
	renamed := 0

	for i := range cs {
		id := cs[i].ID
		if _, dup := seen[id]; dup || id == "" {
			pos := strconv.Itoa(i + 1)
			if id == "" {
				id = pos
			} else {
				id += "-" + pos
			}

			base := id
			for n := 2; ; n++ {
				if _, taken := seen[id]; !taken {
					break
				}

				id = base + "-" + strconv.Itoa(n)
			}

			log.Printf("Contact %q renamed to %q", cs[i].ID, id)

			renamed++
		}

		seen[id] = struct{}{}
		cs[i].ID = id
	}

	return renamed
}

func (p *Pipeline) locate(ctx context.Context, c Contact) Contact {
	res := p.resolver.Resolve(ctx, c.Address)

	c.Point = res.Point
	c.Geocoded = res.Geocoded()

	cell, err := spatial.Cell(c.Point, p.options.H3Resolution)
	if err != nil {
		log.Printf("Contact %s: %s", c.ID, err)
	} else {
		c.Cell = cell.String()
	}

	return c
}

// Ingest normalizes records and resolves their addresses one at a time, in
// order. publish, when not nil, receives a snapshot after the first contact,
// every SnapshotEvery contacts and after the last one (an empty input
// publishes a single final snapshot). Address failures never abort the
// pass; they resolve to fallback points. Ingest returns the full set.
func (p *Pipeline) Ingest(
	ctx context.Context,
	records []source.RawRecord,
	publish func(Snapshot),
) ([]Contact, PipelineMetrics) {
	pending := make([]Contact, len(records))
	for i := range records {
		pending[i] = p.Normalize(&records[i])
	}

	metrics := PipelineMetrics{Records: len(records), Renamed: uniqueIDs(pending)}

	n := len(pending)
	if n == 0 {
		if publish != nil {
			publish(Snapshot{Contacts: []Contact{}, Final: true})
		}

		return []Contact{}, metrics
	}

	progress := func(done, total int, partial []Contact) {
		if publish != nil {
			publish(Snapshot{
				Contacts: slices.Clone(partial),
				Done:     done,
				Total:    total,
				Final:    done == total,
			})
		}
	}

	// Sequential only fails when its own pacing is interrupted, and the
	// pacing here belongs to the resolver.
	located, _ := batchutils.Sequential(ctx, pending, batchutils.Options{Every: p.options.SnapshotEvery},
		func(ctx context.Context, i int, c Contact) Contact {
			c = p.locate(ctx, c)

			if c.Geocoded {
				metrics.Geocoded++
			} else {
				metrics.Fallbacks++
			}

			if p.options.OnContact != nil {
				p.options.OnContact(i+1, n, &c)
			} else {
				log.Printf("[%d/%d] %s located at %s (geocoded: %t)", i+1, n, c.Name, c.Point, c.Geocoded)
			}

			return c
		}, progress)

	return located, metrics
}

// Stream runs Ingest in a goroutine and delivers its snapshots, stamped
// with a fresh pass id, on the returned channel, which is closed after the
// final one. Snapshots are dropped once ctx is done.
func (p *Pipeline) Stream(ctx context.Context, records []source.RawRecord) <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	pass := uuid.New()

	go func() {
		defer close(ch)

		p.Ingest(ctx, records, func(s Snapshot) {
			s.Pass = pass

			select {
			case ch <- s:
			case <-ctx.Done():
			}
		})
	}()

	return ch
}
