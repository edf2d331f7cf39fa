/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package bind

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/golang/glog"
	jsoniter "github.com/json-iterator/go"
)

// Bind builds a Dispatcher from record, which must be a pointer to a
// struct. Fields are bound by their `multipart:"..."` tag, a
// comma-separated list of:
//
//	name=<string>       part name this field is selected on (default: the
//	                     Go field's identifier)
//	required             this part must be observed by end-of-stream
//	max_size=<uint>      cap on bytes delivered to this field before the
//	                     error handler is consulted
//
// A field with no `multipart` tag is not bound at all. An attribute key
// other than the three above is a Bind-time error (spec.md §4.G: "Unknown
// attribute keys are a generation-time error" — the source this was ported
// from panics here at macro-expansion time; Bind returning an error is the
// runtime-table equivalent).
func Bind(record interface{}, opts ...Option) (*Dispatcher, error) {
	v := reflect.ValueOf(record)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("bind: record must be a pointer to a struct, got %T", record)
	}
	elem := v.Elem()
	t := elem.Type()

	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	d := &Dispatcher{
		record:     elem,
		recordType: t,
		recordAny:  record,
		fields:     make(map[string]*fieldBinder),
		sinks:      make(map[string]Sink),
		debug:      cfg.debug,
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tagValue, ok := sf.Tag.Lookup("multipart")
		if !ok {
			continue
		}

		fb, err := parseFieldTag(sf, tagValue)
		if err != nil {
			return nil, err
		}

		if existing, dup := d.fields[fb.partName]; dup {
			return nil, fmt.Errorf("bind: part name %q bound to both %q and %q",
				fb.partName, d.recordType.FieldByIndex(existing.fieldIndex).Name, sf.Name)
		}
		d.fields[fb.partName] = fb
		if fb.required {
			d.requiredNames = append(d.requiredNames, fb.partName)
		}
	}

	if h, ok := record.(ErrorHandler); ok {
		d.errHandler = h
	}
	if f, ok := record.(UnknownPartSink); ok {
		d.fallback = f
	}

	if d.debug {
		d.logDispatch()
	}

	return d, nil
}

func parseFieldTag(sf reflect.StructField, tag string) (*fieldBinder, error) {
	base, optional, ok := kindForType(sf.Type)
	if !ok {
		return nil, fmt.Errorf("bind: field %q has unsupported type %s", sf.Name, sf.Type)
	}

	fb := &fieldBinder{
		partName:   sf.Name,
		fieldIndex: sf.Index,
		base:       base,
		optional:   optional,
	}

	for _, attr := range strings.Split(tag, ",") {
		if attr == "" {
			continue
		}
		key, val, hasVal := strings.Cut(attr, "=")
		switch key {
		case "name":
			if !hasVal || val == "" {
				return nil, fmt.Errorf("bind: field %q: name attribute requires a value", sf.Name)
			}
			fb.partName = val
		case "required":
			fb.required = !hasVal || val == "true"
		case "max_size":
			if !hasVal {
				return nil, fmt.Errorf("bind: field %q: max_size attribute requires a value", sf.Name)
			}
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("bind: field %q: invalid max_size %q", sf.Name, val)
			}
			fb.maxSize = &n
		default:
			return nil, fmt.Errorf("bind: field %q: unknown multipart attribute %q", sf.Name, key)
		}
	}

	return fb, nil
}

func (d *Dispatcher) logDispatch() {
	type entry struct {
		PartName string `json:"part_name"`
		GoField  string `json:"go_field"`
		Required bool   `json:"required"`
		MaxSize  *int64 `json:"max_size,omitempty"`
	}
	entries := make([]entry, 0, len(d.fields))
	for name, fb := range d.fields {
		entries = append(entries, entry{
			PartName: name,
			GoField:  d.recordType.FieldByIndex(fb.fieldIndex).Name,
			Required: fb.required,
			MaxSize:  fb.maxSize,
		})
	}
	if b, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(entries); err == nil {
		glog.V(1).Infof("multipart/bind: dispatch table for %s: %s", d.recordType, b)
	}
}
