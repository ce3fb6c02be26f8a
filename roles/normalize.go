// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package roles

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jcodagnone/contactmap/utils/textutils"
)

const (
	stringSeparators = ",;:"
	listSeparators   = ";:"
)

// Split parses a free-text role annotation such as
// "Contractor; Home Owner:Affiliate". Pieces are trimmed, empty ones
// dropped and later case-variants of an already seen tag discarded, so the
// first-seen casing is the one kept for display.
func Split(raw string) []string {
	return dedupe(textutils.SplitAny(raw, stringSeparators))
}

// SplitList re-parses an already structured list of tags. Elements may still
// carry ";" or ":" separated values (double encoded exports); commas are
// kept as part of the tag.
func SplitList(tags []string) []string {
	var out []string

	for _, tag := range tags {
		out = append(out, textutils.SplitAny(tag, listSeparators)...)
	}

	return dedupe(out)
}

func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))

	for _, tag := range tags {
		k := Key(tag)
		if _, ok := seen[k]; ok {
			continue
		}

		seen[k] = struct{}{}

		out = append(out, tag)
	}

	return out
}

// Picker chooses the role assigned to contacts without any annotation.
type Picker interface {
	Pick(known []string) string
}

// SeededPicker draws uniformly from the known roles with a PCG source.
type SeededPicker struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededPicker returns a deterministic picker. A zero seed is replaced by
// the current time.
func NewSeededPicker(seed uint64) *SeededPicker {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &SeededPicker{r: rand.New(rand.NewPCG(seed, seed))}
}

// Pick implements Picker.
func (p *SeededPicker) Pick(known []string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return known[p.r.IntN(len(known))]
}

// FixedPicker always assigns the same role.
type FixedPicker string

// Pick implements Picker.
func (p FixedPicker) Pick(_ []string) string {
	return string(p)
}

// Normalizer turns role annotations into a non-empty ordered list of tags.
type Normalizer struct {
	picker Picker
}

// NewNormalizer returns a Normalizer; a nil picker means a clock seeded one.
func NewNormalizer(picker Picker) *Normalizer {
	if picker == nil {
		picker = NewSeededPicker(0)
	}

	return &Normalizer{picker: picker}
}

// Normalize parses a free-text annotation.
func (n *Normalizer) Normalize(raw string) []string {
	return n.orFallback(Split(raw))
}

// NormalizeList parses an already split annotation.
func (n *Normalizer) NormalizeList(tags []string) []string {
	return n.orFallback(SplitList(tags))
}

func (n *Normalizer) orFallback(tags []string) []string {
	if len(tags) > 0 {
		return tags
	}

	return []string{n.picker.Pick(Known())}
}
