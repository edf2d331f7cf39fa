/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package multipart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderLine(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		line string
		want Header
	}{
		{
			name: "name only",
			line: `Content-Disposition: form-data; name="s"`,
			want: Header{
				Name:       "Content-Disposition",
				Value:      "form-data",
				Parameters: map[string]string{"name": "s"},
			},
		},
		{
			name: "name and filename",
			line: `Content-Disposition: form-data; name="f"; filename="a.bin"`,
			want: Header{
				Name:  "Content-Disposition",
				Value: "form-data",
				Parameters: map[string]string{
					"name":     "f",
					"filename": "a.bin",
				},
			},
		},
		{
			name: "unquoted parameter value",
			line: `Content-Type: text/plain; charset=utf-8`,
			want: Header{
				Name:       "Content-Type",
				Value:      "text/plain",
				Parameters: map[string]string{"charset": "utf-8"},
			},
		},
		{
			name: "no parameters",
			line: `Content-Type: text/plain`,
			want: Header{Name: "Content-Type", Value: "text/plain"},
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseHeaderLine(c.line)
			require.NoError(t, err)
			assert.Equal(t, c.want.Name, got.Name)
			assert.Equal(t, c.want.Value, got.Value)
			assert.Equal(t, c.want.Parameters, got.Parameters)
		})
	}
}

func TestParseHeaderLineMalformed(t *testing.T) {
	t.Parallel()

	cases := []string{
		"no colon here",
		"Content-Disposition: form-data; name",
		`Content-Disposition: form-data; name="a=b"`,
	}

	for _, line := range cases {
		line := line
		t.Run(line, func(t *testing.T) {
			t.Parallel()
			_, err := parseHeaderLine(line)
			require.Error(t, err)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, KindMalformedHeader, pe.Kind)
		})
	}
}

func TestHeadersNameAndFileName(t *testing.T) {
	t.Parallel()

	hs := Headers{
		ContentDisposition: Header{
			Name:       ContentDisposition,
			Value:      "form-data",
			Parameters: map[string]string{"name": "f", "filename": "a.bin"},
		},
	}

	name, ok := hs.Name()
	assert.True(t, ok)
	assert.Equal(t, "f", name)

	fn, ok := hs.FileName()
	assert.True(t, ok)
	assert.Equal(t, "a.bin", fn)

	_, ok = hs.Get("X-Missing", "whatever")
	assert.False(t, ok)
}

func TestHeaderBuilder(t *testing.T) {
	t.Parallel()

	var hb headerBuilder
	for _, b := range []byte(`Content-Disposition: form-data; name="s"`) {
		hb.writeByte(b)
	}
	hb.flushLine()

	var malformed []error
	headers := hb.build(func(err error) { malformed = append(malformed, err) })

	assert.Empty(t, malformed)
	name, ok := headers.Name()
	assert.True(t, ok)
	assert.Equal(t, "s", name)
}
