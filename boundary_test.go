/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package multipart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDelimiters(t *testing.T) {
	t.Parallel()

	d := newDelimiters("X")

	assert.Equal(t, []byte("--X\r\n"), d.first)
	assert.Equal(t, []byte("\r\n--X"), d.middle)
	assert.Equal(t, []byte("\r\n"), d.divider)
	assert.Equal(t, []byte("--"), d.epilogue)
	assert.Equal(t, []byte("\r\n"), d.empty)
}
