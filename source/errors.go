// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"errors"
	"fmt"
)

// Kind classifies why a source could not deliver records.
type Kind int

const (
	// KindUnknown the source answered with an unexpected status.
	KindUnknown Kind = iota
	// KindAuth the credentials were rejected.
	KindAuth
	// KindNetwork no response was received.
	KindNetwork
	// KindMalformed the payload could not be decoded.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindNetwork:
		return "network"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Messages shown to users.
const (
	MsgAuth    = "Authentication failed. Check your HubSpot token."
	MsgNetwork = "No response received from API. Check your network connection."
)

// Error means the source is unavailable; the pass yields no contacts.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err is (or wraps) a source Error.
func IsUnavailable(err error) bool {
	var srcErr *Error

	return errors.As(err, &srcErr)
}

// KindOf returns the Kind of a source error, KindUnknown otherwise.
func KindOf(err error) Kind {
	var srcErr *Error
	if errors.As(err, &srcErr) {
		return srcErr.Kind
	}

	return KindUnknown
}

func statusError(status int) *Error {
	switch status {
	case 401, 403:
		return &Error{Kind: KindAuth, StatusCode: status, Message: MsgAuth}
	default:
		return &Error{Kind: KindUnknown, StatusCode: status, Message: fmt.Sprintf("Failed to load contacts: Status %d", status)}
	}
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: MsgNetwork, Err: err}
}

func malformedError(err error) *Error {
	return &Error{Kind: KindMalformed, Message: "Invalid response format from HubSpot API", Err: err}
}
