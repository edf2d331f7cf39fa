/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package bind_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gnitive/multipart"
	"github.com/Gnitive/multipart/bind"
)

type simpleForm struct {
	S string  `multipart:"name=s"`
	N *int32  `multipart:"name=n"`
	F []byte  `multipart:"name=f"`
}

func runParser(t *testing.T, boundary string, target multipart.Target, input string) {
	t.Helper()
	p := multipart.NewParser(boundary, target)
	_, err := p.Write([]byte(input))
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

// Scenario 1/2 (spec §8), driven through the bind layer rather than a hand
// written Target.
func TestBindFillsBoundFields(t *testing.T) {
	t.Parallel()

	var form simpleForm
	d, err := bind.Bind(&form)
	require.NoError(t, err)

	input := "--X\r\n" +
		"Content-Disposition: form-data; name=\"s\"\r\n\r\nhello\r\n" +
		"--X\r\nContent-Disposition: form-data; name=\"n\"\r\n\r\n42\r\n" +
		"--X\r\nContent-Disposition: form-data; name=\"f\"\r\n\r\n\x00\x01\x02\r\n--X--"
	runParser(t, "X", d, input)

	assert.Equal(t, "hello", form.S)
	require.NotNil(t, form.N)
	assert.Equal(t, int32(42), *form.N)
	assert.Equal(t, []byte{0x00, 0x01, 0x02}, form.F)
}

// An optional field whose part never appears is left nil.
func TestBindOptionalFieldLeftNilWhenAbsent(t *testing.T) {
	t.Parallel()

	var form simpleForm
	d, err := bind.Bind(&form)
	require.NoError(t, err)

	input := "--X\r\nContent-Disposition: form-data; name=\"s\"\r\n\r\nonly\r\n--X--"
	runParser(t, "X", d, input)

	assert.Equal(t, "only", form.S)
	assert.Nil(t, form.N)
}

// Scenario 3 (spec §8): missing required part, surfaced through the
// record's own ErrorHandler implementation.
func TestBindMissingRequiredReportsError(t *testing.T) {
	t.Parallel()

	form := &recordingForm{}
	d, err := bind.Bind(form)
	require.NoError(t, err)

	input := "--X\r\n--X--"
	runParser(t, "X", d, input)

	require.NotNil(t, form.lastErr)
	assert.Equal(t, multipart.KindRequiredMissing, form.lastErr.Kind)
	assert.Equal(t, []string{"needed"}, form.lastErr.Missing)
}

type recordingForm struct {
	Needed  string `multipart:"name=needed,required"`
	lastErr *multipart.ParseError
}

func (f *recordingForm) HandleMultipartError(err *multipart.ParseError) (multipart.OnError, error) {
	f.lastErr = err
	return multipart.ContinueSilent, nil
}

// Scenario 6 (spec §8): invalid integer conversion leaves the field at its
// pre-part value and is reported through HandleMultipartError.
func TestBindConversionFailureLeavesFieldUnchanged(t *testing.T) {
	t.Parallel()

	form := &intForm{N: 99}
	d, err := bind.Bind(form)
	require.NoError(t, err)

	input := "--X\r\nContent-Disposition: form-data; name=\"n\"\r\n\r\nnot-a-number\r\n--X--"
	runParser(t, "X", d, input)

	require.NotNil(t, form.lastErr)
	assert.Equal(t, multipart.KindParseInt, form.lastErr.Kind)
	assert.Equal(t, "n", form.lastErr.PartName)
	assert.Equal(t, int32(99), form.N, "field must retain its pre-part value on conversion failure")
}

type intForm struct {
	N       int32 `multipart:"name=n"`
	lastErr *multipart.ParseError
}

func (f *intForm) HandleMultipartError(err *multipart.ParseError) (multipart.OnError, error) {
	f.lastErr = err
	return multipart.ContinueSilent, nil
}

func TestBindDuplicatePartNameIsAnError(t *testing.T) {
	t.Parallel()

	type dup struct {
		A string `multipart:"name=same"`
		B string `multipart:"name=same"`
	}
	var d dup
	_, err := bind.Bind(&d)
	require.Error(t, err)
}

func TestBindUnknownAttributeIsAnError(t *testing.T) {
	t.Parallel()

	type bad struct {
		A string `multipart:"name=a,bogus=1"`
	}
	var b bad
	_, err := bind.Bind(&b)
	require.Error(t, err)
}

func TestBindRejectsNonPointer(t *testing.T) {
	t.Parallel()

	_, err := bind.Bind(simpleForm{})
	require.Error(t, err)
}

func TestBindDefaultsNameToFieldIdentifier(t *testing.T) {
	t.Parallel()

	type noName struct {
		Flavor string `multipart:""`
	}
	var n noName
	d, err := bind.Bind(&n)
	require.NoError(t, err)

	input := "--X\r\nContent-Disposition: form-data; name=\"Flavor\"\r\n\r\nvanilla\r\n--X--"
	runParser(t, "X", d, input)
	assert.Equal(t, "vanilla", n.Flavor)
}
