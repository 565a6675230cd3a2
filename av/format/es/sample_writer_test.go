// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package es

import (
	"bytes"
	"io"
	"testing"

	"github.com/cnotch/omafhevc/av/codec"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, io.ErrShortWrite }

func TestSampleWriter(t *testing.T) {
	var buf bytes.Buffer
	sw := NewSampleWriter(&buf)

	au := testAccessUnit()
	require.NoError(t, sw.WriteFrame(au.Frame()))
	require.NoError(t, sw.WriteFrame(&codec.Frame{MediaType: codec.MediaTypeData, Payload: []byte{1, 2}}))
	require.NoError(t, sw.WriteFrame(au.Frame()))

	sample := au.Sample()
	assert.Equal(t, append(append([]byte{}, sample...), sample...), buf.Bytes())
	assert.Equal(t, 2, sw.Frames())
	assert.Equal(t, int64(2*len(sample)), sw.Bytes())
}

func TestSampleWriter_Error(t *testing.T) {
	sw := NewSampleWriter(failingWriter{})
	err := sw.WriteFrame(testAccessUnit().Frame())
	assert.Equal(t, io.ErrShortWrite, errors.Cause(err))
	assert.Equal(t, 0, sw.Frames())
}
