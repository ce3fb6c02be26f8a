// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package contacts

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/jcodagnone/contactmap/source"
)

// Service runs ingestion passes from a source into a registry.
type Service struct {
	source   source.Source
	pipeline *Pipeline
	registry *Registry

	mu      sync.Mutex
	cancel  context.CancelFunc
	metrics PipelineMetrics
	wg      sync.WaitGroup
}

// NewService creates a Service.
func NewService(src source.Source, pipeline *Pipeline, registry *Registry) *Service {
	return &Service{source: src, pipeline: pipeline, registry: registry}
}

// Pipeline returns the pipeline of every pass.
func (s *Service) Pipeline() *Pipeline {
	return s.pipeline
}

// Registry returns the registry fed by the service.
func (s *Service) Registry() *Registry {
	return s.registry
}

// start begins a new pass and interrupts the pacing of the previous one,
// which then completes on fallback points and is ignored by the registry.
func (s *Service) start(ctx context.Context) (context.Context, uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	ctx, s.cancel = context.WithCancel(ctx)

	return ctx, s.registry.Begin()
}

func (s *Service) run(ctx context.Context, pass uuid.UUID) error {
	records, err := s.source.Fetch(ctx)
	if err != nil {
		if !source.IsUnavailable(err) {
			err = &source.Error{Kind: source.KindUnknown, Message: "fetching contacts", Err: err}
		}

		s.registry.Fail(pass, err)
		log.Printf("Pass %s failed: %s", pass, err)

		return fmt.Errorf("pass %s: %w", pass, err)
	}

	log.Printf("Pass %s: %d records fetched", pass, len(records))

	_, metrics := s.pipeline.Ingest(ctx, records, func(snap Snapshot) {
		snap.Pass = pass
		s.registry.Publish(snap)
	})

	log.Printf(
		"Pass %s complete - %d contacts, %d geocoded, %d fallbacks",
		pass, metrics.Records, metrics.Geocoded, metrics.Fallbacks,
	)

	s.mu.Lock()
	s.metrics.Merge(&metrics)
	s.mu.Unlock()

	return nil
}

// Metrics returns the counters of every pass run so far, superseded ones
// included.
func (s *Service) Metrics() PipelineMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.metrics
}

// Run fetches and ingests synchronously. The error is the source error, if
// any; the registry records it too.
func (s *Service) Run(ctx context.Context) (uuid.UUID, error) {
	ctx, pass := s.start(ctx)

	return pass, s.run(ctx, pass)
}

// Refresh starts a new pass in the background and returns its id. The pass
// outlives ctx cancellation; only a later Refresh or Close interrupts it.
func (s *Service) Refresh(ctx context.Context) uuid.UUID {
	ctx, pass := s.start(context.WithoutCancel(ctx))

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		_ = s.run(ctx, pass)
	}()

	return pass
}

// Close interrupts the running pass and waits for background passes.
func (s *Service) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Wait blocks until every background pass is done.
func (s *Service) Wait() {
	s.wg.Wait()
}
