// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCeilLog2(t *testing.T) {
	tests := []struct {
		x    uint32
		want int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{16, 4},
		{17, 5},
		{240, 8},
		{1 << 31, 31},
		{1<<31 + 1, 32},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CeilLog2(tt.x), "CeilLog2(%d)", tt.x)
	}
}

func TestBitstream_Range(t *testing.T) {
	w := newWriteStream(nil)
	v := uint8(5)
	w.ue8("value", &v, 0, 4)
	assert.Equal(t, ErrMalformedSyntax, errors.Cause(w.Err()))

	// ue(v) 5 = 00110
	r := newReadStream([]byte{0x30})
	v = 9
	r.ue8("value", &v, 0, 4)
	assert.Equal(t, ErrMalformedSyntax, errors.Cause(r.Err()))
	assert.Equal(t, uint8(0), v)

	// 出错后后续读写不再生效
	var f uint8
	r.flag(&f)
	assert.Equal(t, 5, r.offset())
}

func TestBitstream_ReadWrite(t *testing.T) {
	w := newWriteStream(nil)
	var (
		a uint8  = 5
		b int8   = -3
		c uint32 = 0x12345
		d bool   = true
		e int32  = -90 << 16
	)
	w.u8(3, &a)
	w.se8("b", &b, -10, 10)
	w.u32(20, &c)
	w.boolean(&d)
	w.i32(&e)
	w.trailingBits()
	assert.NoError(t, w.Err())
	assert.True(t, w.byteAligned())

	r := newReadStream(w.w.Bytes())
	var (
		ra uint8
		rb int8
		rc uint32
		rd bool
		re int32
	)
	r.u8(3, &ra)
	r.se8("b", &rb, -10, 10)
	r.u32(20, &rc)
	r.boolean(&rd)
	r.i32(&re)
	r.trailingBits()
	assert.NoError(t, r.Err())
	assert.Equal(t, a, ra)
	assert.Equal(t, b, rb)
	assert.Equal(t, c, rc)
	assert.Equal(t, d, rd)
	assert.Equal(t, e, re)
}

func TestBitstream_Overflow(t *testing.T) {
	w := newWriteStream(nil)
	v := uint8(8)
	w.u8(3, &v)
	assert.Equal(t, ErrMalformedSyntax, errors.Cause(w.Err()))
}

func TestH265RawExtensionData(t *testing.T) {
	// 11 位扩展数据 10110011101 + 停止位
	rbsp := []byte{0xb3, 0xb0}
	var ed H265RawExtensionData
	r := newReadStream(rbsp)
	ed.syntax(r)
	r.trailingBits()
	assert.NoError(t, r.Err())
	assert.Equal(t, 11, ed.BitLength)

	w := newWriteStream(nil)
	ed.syntax(w)
	w.trailingBits()
	assert.NoError(t, w.Err())
	assert.Equal(t, rbsp, w.w.Bytes())
}
