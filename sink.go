/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package multipart

// PartParams describes a part a Sink wants to receive: the part name it
// is registered under, and an optional cap on the number of bytes the
// parser will deliver to it before consulting the Target's error handler.
// MaxSize of nil means unlimited.
type PartParams struct {
	Name    string
	MaxSize *int64
}

// Sink is driven by the Parser once per part, in strict
// Open, Write* (in byte order), Flush order. A Sink may be reused across
// parts: Open on an already-flushed Sink resets it.
//
// None of the three lifecycle methods return an error. The only way a Sink
// can report a problem is indirectly, through the Target's error handler
// (bind's generated sinks do exactly this at Flush time, for conversion
// failures).
type Sink interface {
	// Open begins a part. Called exactly once per part, before any Write.
	Open(headers Headers)

	// Write appends bytes. May be called zero or more times; ranges are
	// contiguous and in order.
	Write(headers Headers, data []byte)

	// Flush finalizes a part. Called exactly once per part, after all Writes.
	Flush(headers Headers)

	// Params returns this Sink's {name, max_size} declaration.
	Params() PartParams
}

// NullSink discards everything written to it. It is the Parser's implicit
// behavior for parts no Target recognizes, and is also useful as an
// explicit "ignore this part" Target.Sink return value.
type NullSink struct {
	params PartParams
}

// NewNullSink returns a Sink that discards all data for the named part.
func NewNullSink(name string) *NullSink {
	return &NullSink{params: PartParams{Name: name}}
}

func (s *NullSink) Open(Headers)             {}
func (s *NullSink) Write(Headers, []byte)    {}
func (s *NullSink) Flush(Headers)            {}
func (s *NullSink) Params() PartParams       { return s.params }
