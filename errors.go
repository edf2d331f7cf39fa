/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package multipart

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// Kind is the closed set of errors this package and the bind package raise.
type Kind int

const (
	// NoError is never raised; it is the identity value for conversions
	// that cannot fail (e.g. bytes/optional-bytes).
	NoError Kind = iota

	// KindRequiredMissing fires once at end-of-stream, carrying the
	// required part names that were never observed.
	KindRequiredMissing

	// KindSizeLimit fires during a part's body once its cumulative size
	// exceeds the declared max_size.
	KindSizeLimit

	// KindMalformedHeader fires at header-parse time for a header line
	// that does not split into name/value or key/value pairs cleanly.
	// This is an addition over spec.md's closed table: the source this
	// package was ported from panics on this condition; here it is
	// downgraded to a typed, recoverable error (see DESIGN.md, component
	// A).
	KindMalformedHeader

	// KindParseInt fires at part Flush for a field bound to a signed or
	// unsigned integer kind whose accumulated bytes do not parse.
	KindParseInt

	// KindParseFloat fires at part Flush for a field bound to a
	// floating-point kind whose accumulated bytes do not parse.
	KindParseFloat

	// KindParseBool fires at part Flush for a field bound to bool whose
	// accumulated bytes are not accepted by strconv.ParseBool.
	KindParseBool

	// KindParseString fires at part Flush when the accumulated bytes are
	// not valid UTF-8.
	KindParseString

	// KindMalformedBoundary is panicked, never returned: per spec.md §4.F,
	// a malformed first boundary is the one fatal condition in the state
	// machine. Parser.Write recovers nothing itself; callers who want to
	// distinguish this panic from a genuine bug can recover and type-assert
	// to *ParseError.
	KindMalformedBoundary
)

func (k Kind) String() string {
	switch k {
	case NoError:
		return "NoError"
	case KindRequiredMissing:
		return "RequiredMissing"
	case KindSizeLimit:
		return "SizeLimit"
	case KindMalformedHeader:
		return "MalformedHeader"
	case KindMalformedBoundary:
		return "MalformedBoundary"
	case KindParseInt:
		return "ParseIntError"
	case KindParseFloat:
		return "ParseFloatError"
	case KindParseBool:
		return "ParseBoolError"
	case KindParseString:
		return "ParseStrError"
	default:
		return "Unknown"
	}
}

// ParseError is the single error type this package and bind raise. Which
// fields are populated depends on Kind: see the Kind* doc comments.
type ParseError struct {
	Kind Kind

	// PartName is set for KindSizeLimit and the conversion kinds; it is
	// empty for KindRequiredMissing, KindMalformedHeader and
	// KindMalformedBoundary.
	PartName string

	// Missing is set only for KindRequiredMissing.
	Missing []string

	// Limit is set only for KindSizeLimit.
	Limit int64

	// Raw is the part's accumulated bytes, set for every conversion-kind
	// error (KindParseInt, KindParseFloat, KindParseBool, KindParseString,
	// KindMalformedHeader).
	Raw []byte

	// Cause is the underlying library error (a *strconv.NumError, a
	// *strconv.NumError for ParseBool, or a UTF-8 decoding error).
	Cause error
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case KindRequiredMissing:
		return fmt.Sprintf("multipart: required parts missing: %v", e.Missing)
	case KindSizeLimit:
		return fmt.Sprintf("multipart: part %q exceeded max_size %d", e.PartName, e.Limit)
	case KindMalformedHeader:
		return fmt.Sprintf("multipart: malformed header line: %v", e.Cause)
	case KindMalformedBoundary:
		return fmt.Sprintf("multipart: malformed first boundary: %v", e.Cause)
	default:
		return fmt.Sprintf("multipart: part %q: %s: %v", e.PartName, e.Kind, e.Cause)
	}
}

// Unwrap exposes the underlying conversion error so callers may
// errors.As/errors.Is against it (e.g. a *strconv.NumError).
func (e *ParseError) Unwrap() error {
	return e.Cause
}

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalJSON renders a ParseError for structured logging. Raw is included
// as a byte slice (base64-encoded by encoding/json semantics, which
// json-iterator preserves for drop-in compatibility).
func (e *ParseError) MarshalJSON() ([]byte, error) {
	type wire struct {
		Kind     string   `json:"kind"`
		PartName string   `json:"part_name,omitempty"`
		Missing  []string `json:"missing,omitempty"`
		Limit    int64    `json:"limit,omitempty"`
		Raw      []byte   `json:"raw,omitempty"`
		Cause    string   `json:"cause,omitempty"`
	}
	w := wire{
		Kind:     e.Kind.String(),
		PartName: e.PartName,
		Missing:  e.Missing,
		Limit:    e.Limit,
		Raw:      e.Raw,
	}
	if e.Cause != nil {
		w.Cause = e.Cause.Error()
	}
	return jsonAPI.Marshal(w)
}

func newMalformedHeaderError(line string) *ParseError {
	return &ParseError{
		Kind:  KindMalformedHeader,
		Raw:   []byte(line),
		Cause: fmt.Errorf("header line %q does not split cleanly on ':' or '='", line),
	}
}

// OnError is the Target's reply to a recoverable error, selecting the
// disposition for the remainder of the current part.
type OnError int

const (
	// ContinueWithError keeps writing to the Sink; further errors for
	// this part may still fire. This is the disposition a part enters
	// Content with.
	ContinueWithError OnError = iota

	// ContinueSilent keeps writing to the Sink; the Parser raises no
	// further error for the rest of this part. Errors a Sink reports at
	// Flush time (bind's conversion failures) are not suppressed.
	ContinueSilent

	// Skip drops the rest of the part's body: no further Write calls are
	// made, though Flush still fires.
	Skip
)

func newMalformedBoundaryError(got byte, pos int) *ParseError {
	return &ParseError{
		Kind:  KindMalformedBoundary,
		Cause: fmt.Errorf("invalid byte %q at position %d of the first boundary", got, pos),
	}
}
