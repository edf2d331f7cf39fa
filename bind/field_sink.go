/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package bind

import (
	"reflect"

	. "github.com/Gnitive/multipart"
)

// fieldSink is the Sink bound to one struct field. It accumulates bytes the
// same way multipart.Accumulator does (it embeds one) and, on Flush,
// converts the accumulated bytes per the field's baseKind and reflect-sets
// them into the record. A conversion failure is reported to the
// Dispatcher's error handler; the field is left unchanged (for an optional
// field, no new pointer is stored).
type fieldSink struct {
	*Accumulator

	dispatcher *Dispatcher
	fb         *fieldBinder
}

func newFieldSink(d *Dispatcher, fb *fieldBinder) *fieldSink {
	params := PartParams{Name: fb.partName, MaxSize: fb.maxSize}
	return &fieldSink{
		Accumulator: NewAccumulator(params),
		dispatcher:  d,
		fb:          fb,
	}
}

// Flush converts the accumulated bytes and reflect-sets the bound field,
// then delegates to Accumulator.Flush to mark the part done.
func (fs *fieldSink) Flush(headers Headers) {
	defer fs.Accumulator.Flush(headers)

	field := fs.dispatcher.record.FieldByIndex(fs.fb.fieldIndex)
	raw := fs.Bytes()

	if fs.fb.optional {
		ptr := reflect.New(field.Type().Elem())
		if err := setConverted(ptr.Elem(), fs.fb.base, raw); err != nil {
			fs.dispatcher.reportFieldError(fs.fb, raw, err)
			return
		}
		field.Set(ptr)
		return
	}

	if err := setConverted(field, fs.fb.base, raw); err != nil {
		fs.dispatcher.reportFieldError(fs.fb, raw, err)
	}
}
