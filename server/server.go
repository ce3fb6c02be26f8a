// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the contact views and marker placements over HTTP
// for the map front end.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/contactmap/contacts"
	"github.com/jcodagnone/contactmap/markers"
	"github.com/jcodagnone/contactmap/roles"
)

// DefaultAddr is the listen address of Run.
const DefaultAddr = "localhost:8080"

type Server struct {
	service  *contacts.Service
	registry *contacts.Registry
	placer   markers.Placer
}

func NewServer(service *contacts.Service, placer markers.Placer) *Server {
	return &Server{
		service:  service,
		registry: service.Registry(),
		placer:   placer,
	}
}

// Router returns the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")
	api.GET("/roles", s.listRoles)
	api.GET("/contacts", s.listContacts)
	api.GET("/contacts/:id", s.getContact)
	api.GET("/contacts/:id/markers", s.contactMarkers)
	api.GET("/markers", s.listMarkers)
	api.GET("/suggestions", s.listSuggestions)
	api.GET("/status", s.getStatus)
	api.POST("/ingest", s.ingest)

	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Printf("Listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// filterFromQuery reads repeated role parameters and location.
func filterFromQuery(ctx *gin.Context) contacts.FilterState {
	return contacts.NewFilterState(ctx.QueryArray("role"), ctx.Query("location"))
}

func (s *Server) listRoles(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"roles":   roles.Legend(),
		"unknown": roles.Unknown,
	})
}

type contactsResponse struct {
	Contacts []contacts.Contact   `json:"contacts"`
	Filter   contacts.FilterState `json:"filter"`
	Shown    int                  `json:"shown"`
	Total    int                  `json:"total"`
	Summary  string               `json:"summary"`
}

func (s *Server) listContacts(ctx *gin.Context) {
	f := filterFromQuery(ctx)
	v := s.registry.Views(f, 0)

	ctx.JSON(http.StatusOK, contactsResponse{
		Contacts: v.Filtered,
		Filter:   f,
		Shown:    len(v.Filtered),
		Total:    v.Total,
		Summary:  v.Summary(),
	})
}

func (s *Server) getContact(ctx *gin.Context) {
	c, ok := s.registry.Contact(ctx.Param("id"))
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})

		return
	}

	ctx.JSON(http.StatusOK, c)
}

func (s *Server) contactMarkers(ctx *gin.Context) {
	c, ok := s.registry.Contact(ctx.Param("id"))
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})

		return
	}

	ctx.JSON(http.StatusOK, s.placer.Group(&c))
}

func (s *Server) listMarkers(ctx *gin.Context) {
	groups := s.placer.PlaceAll(s.registry.FilteredContacts(filterFromQuery(ctx)))

	ctx.JSON(http.StatusOK, gin.H{
		"groups":  groups,
		"markers": markers.Count(groups),
	})
}

func (s *Server) listSuggestions(ctx *gin.Context) {
	limit := contacts.DefaultSuggestionLimit

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non negative integer"})

			return
		}

		limit = n
	}

	f := filterFromQuery(ctx)
	all := s.registry.Suggestions(f, 0)

	ctx.JSON(http.StatusOK, gin.H{
		"suggestions": contacts.Limit(all, limit),
		"total":       len(all),
		"filter":      f,
	})
}

// getStatus reports the pass state; the summary honors the filter query.
func (s *Server) getStatus(ctx *gin.Context) {
	views := s.registry.Views(filterFromQuery(ctx), 0)

	ctx.JSON(http.StatusOK, gin.H{
		"status":  s.registry.Status(),
		"summary": views.Summary(),
	})
}

func (s *Server) ingest(ctx *gin.Context) {
	pass := s.service.Refresh(ctx.Request.Context())

	ctx.JSON(http.StatusAccepted, gin.H{"pass": pass})
}
