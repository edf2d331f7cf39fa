/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package bind is the declarative binding layer described in spec.md §4.G:
// given a struct whose fields carry `multipart:"..."` tags, Bind produces a
// multipart.Target that dispatches named parts to per-field sinks, runs a
// typed conversion at each part's Flush, and reports missing required
// fields at end-of-stream.
//
// spec.md frames this as a compile-time code generator (the source it was
// ported from is a Rust derive macro). This implementation builds the same
// {name -> field descriptor} table at Bind time instead, which spec.md §9
// notes is an equally valid reading of the same contract.
package bind

import (
	"reflect"

	. "github.com/Gnitive/multipart"
)

// baseKind is the underlying value kind a field binds to, independent of
// whether the field type is the base type or a pointer to it (spec.md's
// "optional" form).
type baseKind int

const (
	baseBytes baseKind = iota
	baseString
	baseBool
	baseInt8
	baseInt16
	baseInt32
	baseInt64
	baseUint8
	baseUint16
	baseUint32
	baseUint64
	baseFloat32
	baseFloat64
)

// fieldBinder is one field's parsed `multipart:"..."` description.
type fieldBinder struct {
	partName   string
	fieldIndex []int
	base       baseKind
	optional   bool
	required   bool
	maxSize    *int64
}

// ErrorHandler may be implemented by a record passed to Bind to receive
// every recoverable error the Parser and the generated field sinks raise
// (spec.md §7's propagation policy). Records that do not implement it get
// a default handler that logs via glog and never aborts the stream.
type ErrorHandler interface {
	HandleMultipartError(err *ParseError) (OnError, error)
}

// Finisher may be implemented by a record passed to Bind to be notified
// once, at end-of-stream, after any KindRequiredMissing has been reported.
type Finisher interface {
	FinishMultipart()
}

// UnknownPartSink may be implemented by a record passed to Bind to handle
// parts whose name matches no bound field (spec.md §4.G's
// content_parser fallback hook). Returning nil silently consumes the part,
// same as having no UnknownPartSink at all.
type UnknownPartSink interface {
	UnknownPartSink(headers Headers) Sink
}

// Option configures Bind.
type Option func(*config)

type config struct {
	debug bool
}

// WithDebug, when true, logs the generated {part name -> Go field}
// dispatch table at glog.V(1) once Bind returns — the runtime equivalent
// of spec.md §6's build-time `debug` flag (see NewParser's WithDebug for
// why there is no generated source to print here).
func WithDebug(debug bool) Option {
	return func(c *config) { c.debug = debug }
}

// Dispatcher is the multipart.Target produced by Bind. It is safe to reuse
// across multiple Parser runs against the same record only if the record
// itself is reset between runs; Dispatcher keeps no state of its own
// beyond the field table and one Sink instance per bound field.
type Dispatcher struct {
	record     reflect.Value
	recordType reflect.Type
	recordAny  interface{}

	fields        map[string]*fieldBinder
	requiredNames []string
	sinks         map[string]Sink

	errHandler ErrorHandler
	fallback   UnknownPartSink

	debug bool
}
