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

func TestConvertBytesClones(t *testing.T) {
	t.Parallel()

	src := []byte("hello")
	got := ConvertBytes(src)
	assert.Equal(t, src, got)

	src[0] = 'H'
	assert.Equal(t, byte('h'), got[0], "ConvertBytes must not alias the input")
}

func TestConvertString(t *testing.T) {
	t.Parallel()

	s, err := ConvertString([]byte("héllo"))
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)

	_, err = ConvertString([]byte{0xff, 0xfe})
	require.Error(t, err)
	var invalid *ErrInvalidUTF8
	require.ErrorAs(t, err, &invalid)
}

func TestConvertBool(t *testing.T) {
	t.Parallel()

	b, err := ConvertBool([]byte("true"))
	require.NoError(t, err)
	assert.True(t, b)

	_, err = ConvertBool([]byte("not-a-bool"))
	require.Error(t, err)
}

func TestConvertIntAndUint(t *testing.T) {
	t.Parallel()

	n, err := ConvertInt([]byte("-42"), 32)
	require.NoError(t, err)
	assert.Equal(t, int64(-42), n)

	_, err = ConvertInt([]byte("not-a-number"), 32)
	require.Error(t, err)

	u, err := ConvertUint([]byte("42"), 8)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), u)

	_, err = ConvertUint([]byte("-1"), 8)
	require.Error(t, err)
}

func TestConvertFloat(t *testing.T) {
	t.Parallel()

	f, err := ConvertFloat([]byte("3.5"), 64)
	require.NoError(t, err)
	assert.Equal(t, 3.5, f)

	_, err = ConvertFloat([]byte("not-a-float"), 64)
	require.Error(t, err)
}
