// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileSource reads an export from disk: either a JSON array of records or a
// HubSpot style {"results": [...]} document. Files ending in .gz are
// decompressed.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Combines multiple closers to ensure all resources are released.
type multiReadCloser struct {
	io.ReadCloser
	underlying io.Closer
}

func (r *multiReadCloser) Close() error {
	return errors.Join(
		r.ReadCloser.Close(),
		r.underlying.Close(),
	)
}

func (s *FileSource) open() (io.ReadCloser, error) {
	f, err := os.Open(filepath.Clean(s.path))
	if err != nil {
		return nil, fmt.Errorf("opening contacts file: %w", err)
	}

	if !strings.HasSuffix(s.path, ".gz") {
		return f, nil
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, errors.Join(malformedError(err), f.Close())
	}

	return &multiReadCloser{ReadCloser: gz, underlying: f}, nil
}

// Fetch implements Source. Records without an id get their 1-based
// position in the file.
func (s *FileSource) Fetch(_ context.Context) ([]RawRecord, error) {
	r, err := s.open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading contacts file: %w", err)
	}

	records, err := Decode(data)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].ID == "" {
			records[i].ID = strconv.Itoa(i + 1)
		}
	}

	return records, nil
}

// Decode parses a contacts document in any of the supported layouts.
func Decode(data []byte) ([]RawRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, malformedError(errors.New("empty document"))
	}

	if data[0] == '[' {
		var records []RawRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, malformedError(err)
		}

		return records, nil
	}

	var page hubspotPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, malformedError(err)
	}

	if page.Results == nil {
		return nil, malformedError(errors.New("missing results"))
	}

	records := make([]RawRecord, 0, len(*page.Results))
	for i := range *page.Results {
		records = append(records, (*page.Results)[i].record())
	}

	return records, nil
}
