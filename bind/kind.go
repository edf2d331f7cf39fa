/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package bind

import (
	"reflect"

	. "github.com/Gnitive/multipart"
)

var byteSliceType = reflect.TypeOf([]byte(nil))

// kindForType maps a Go field type to its baseKind, reporting whether the
// type is the "optional" (pointer-to-base) form spec.md §4.G describes.
// Unsupported types report ok=false.
func kindForType(t reflect.Type) (base baseKind, optional bool, ok bool) {
	if t == byteSliceType {
		return baseBytes, false, true
	}

	target := t
	if t.Kind() == reflect.Ptr {
		optional = true
		target = t.Elem()
	}

	switch {
	case target == byteSliceType:
		// []byte has no meaningful "optional" pointer form: a nil slice
		// already means absent. Reject *[]byte rather than special-case it.
		return 0, false, false
	case target.Kind() == reflect.String:
		base = baseString
	case target.Kind() == reflect.Bool:
		base = baseBool
	case target.Kind() == reflect.Int8:
		base = baseInt8
	case target.Kind() == reflect.Int16:
		base = baseInt16
	case target.Kind() == reflect.Int32:
		base = baseInt32
	case target.Kind() == reflect.Int64:
		base = baseInt64
	case target.Kind() == reflect.Uint8:
		base = baseUint8
	case target.Kind() == reflect.Uint16:
		base = baseUint16
	case target.Kind() == reflect.Uint32:
		base = baseUint32
	case target.Kind() == reflect.Uint64:
		base = baseUint64
	case target.Kind() == reflect.Float32:
		base = baseFloat32
	case target.Kind() == reflect.Float64:
		base = baseFloat64
	default:
		return 0, false, false
	}
	return base, optional, true
}

func intBitSize(base baseKind) int {
	switch base {
	case baseInt8:
		return 8
	case baseInt16:
		return 16
	case baseInt32:
		return 32
	default:
		return 64
	}
}

func uintBitSize(base baseKind) int {
	switch base {
	case baseUint8:
		return 8
	case baseUint16:
		return 16
	case baseUint32:
		return 32
	default:
		return 64
	}
}

func floatBitSize(base baseKind) int {
	if base == baseFloat32 {
		return 32
	}
	return 64
}

// setConverted decodes raw per base and stores it into field, which must be
// settable and of the base's Go type (or a pointer to it, when optional is
// true — the caller is responsible for allocating the pointee first).
func setConverted(field reflect.Value, base baseKind, raw []byte) error {
	switch base {
	case baseBytes:
		field.SetBytes(ConvertBytes(raw))
		return nil
	case baseString:
		s, err := ConvertString(raw)
		if err != nil {
			return err
		}
		field.SetString(s)
		return nil
	case baseBool:
		b, err := ConvertBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
		return nil
	case baseInt8, baseInt16, baseInt32, baseInt64:
		n, err := ConvertInt(raw, intBitSize(base))
		if err != nil {
			return err
		}
		field.SetInt(n)
		return nil
	case baseUint8, baseUint16, baseUint32, baseUint64:
		n, err := ConvertUint(raw, uintBitSize(base))
		if err != nil {
			return err
		}
		field.SetUint(n)
		return nil
	case baseFloat32, baseFloat64:
		n, err := ConvertFloat(raw, floatBitSize(base))
		if err != nil {
			return err
		}
		field.SetFloat(n)
		return nil
	default:
		return nil
	}
}

// errorKindFor maps a baseKind to the ParseError.Kind its conversion
// failure should carry.
func errorKindFor(base baseKind) Kind {
	switch base {
	case baseString:
		return KindParseString
	case baseBool:
		return KindParseBool
	case baseInt8, baseInt16, baseInt32, baseInt64:
		return KindParseInt
	case baseUint8, baseUint16, baseUint32, baseUint64:
		return KindParseInt
	case baseFloat32, baseFloat64:
		return KindParseFloat
	default:
		return NoError
	}
}
