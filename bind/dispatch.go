/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package bind

import (
	"github.com/golang/glog"

	. "github.com/Gnitive/multipart"
)

// RequiredNames implements multipart.Target.
func (d *Dispatcher) RequiredNames() []string {
	return d.requiredNames
}

// Sink implements multipart.Target. It selects the field bound to the
// part's name, allocating (and caching) its fieldSink on first use; parts
// whose name matches no bound field fall back to the record's
// UnknownPartSink, or are discarded silently if it implements none.
func (d *Dispatcher) Sink(headers Headers) Sink {
	name, ok := headers.Name()
	if !ok {
		name = ""
	}

	fb, bound := d.fields[name]
	if !bound {
		if d.fallback != nil {
			return d.fallback.UnknownPartSink(headers)
		}
		return NewNullSink(name)
	}

	if s, ok := d.sinks[name]; ok {
		return s
	}
	s := newFieldSink(d, fb)
	d.sinks[name] = s
	return s
}

// HandleError implements multipart.Target. Records that implement
// ErrorHandler decide their own disposition; otherwise every error is
// logged at glog.Warningf and the part's stream continues uninterrupted.
func (d *Dispatcher) HandleError(err *ParseError) (OnError, error) {
	if d.errHandler != nil {
		return d.errHandler.HandleMultipartError(err)
	}
	glog.Warningf("multipart/bind: %v", err)
	return ContinueSilent, nil
}

// Finish implements multipart.Target. If the record implements Finisher,
// it is notified after Parser.Close has already reported any
// KindRequiredMissing through HandleError.
func (d *Dispatcher) Finish() {
	if f, ok := d.recordAny.(Finisher); ok {
		f.FinishMultipart()
	}
}

// reportFieldError routes a field conversion failure through HandleError,
// tagging it with the failing part's name and raw bytes. Its return value
// is intentionally discarded by fieldSink.Flush: Flush has no error return
// of its own (per the Sink contract), so a conversion failure can only
// leave the field unchanged and let the handler decide whether
// that's fatal for the caller some other way (e.g. FinishMultipart
// inspecting the record).
func (d *Dispatcher) reportFieldError(fb *fieldBinder, raw []byte, cause error) {
	_, _ = d.HandleError(&ParseError{
		Kind:     errorKindFor(fb.base),
		PartName: fb.partName,
		Raw:      raw,
		Cause:    cause,
	})
}
