// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bits

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var bitsDatas = [][]byte{
	{0x46, 0x4c, 0x56, 0x01, 0x05, 0x00, 0x00, 0x00, 0x09},
	{
		0x47, 0x40, 0x00, 0x10, 0x00,
		0x00, 0xb0, 0x0d, 0x00, 0x01, 0xc1, 0x00, 0x00,
		0x00, 0x01, 0xf0, 0x01,
		0x2e, 0x70, 0x19, 0x05,
	},
}

func TestBitsReader_ReadBit(t *testing.T) {
	r := NewReader(bitsDatas[0])
	gotRet := r.ReadBit()
	wantRet := uint8(0)
	assert.Equal(t, wantRet, gotRet)

	gotRet = r.ReadBit()
	wantRet = 1
	assert.Equal(t, wantRet, gotRet)

	r.Skip(3)
	gotRet = r.ReadBit()
	wantRet = 1
	assert.Equal(t, wantRet, gotRet)

	gotRet = r.ReadBit()
	wantRet = 1
	assert.Equal(t, wantRet, gotRet)

	r.Skip(5)
	gotRet = r.ReadBit()
	wantRet = 1
	assert.Equal(t, wantRet, gotRet)

	gotRet = r.ReadBit()
	wantRet = 1
	assert.Equal(t, wantRet, gotRet)

	gotRet = r.ReadBit()
	wantRet = 0
	assert.Equal(t, wantRet, gotRet)

	gotRet = r.ReadUint8(8)
	wantRet = 0x2b
	assert.Equal(t, wantRet, gotRet)

}

func TestBitsReader_ReadUint16(t *testing.T) {
	r := NewReader(bitsDatas[0])
	gotRet := r.ReadUint16(16)
	wantRet := uint16(0x464c)
	assert.Equal(t, wantRet, gotRet)

	r.Skip(4)
	gotRet = r.ReadUint16(16)
	wantRet = uint16(0x6010)
	assert.Equal(t, wantRet, gotRet)

	r.Skip(1)
	gotRet = r.ReadUint16(2)
	wantRet = uint16(0x2)
	assert.Equal(t, wantRet, gotRet)
}

func TestBitsReader_ReadUint32(t *testing.T) {
	r := NewReader(bitsDatas[1])
	gotRet := r.ReadUint32(32)
	wantRet := uint32(0x47400010)
	assert.Equal(t, wantRet, gotRet)

	r.Skip(4)
	gotRet = r.ReadUint32(32)
	wantRet = uint32(0x000b00d0)
	assert.Equal(t, wantRet, gotRet)

	r.Skip(8)
	gotRet = r.ReadUint32(12)
	wantRet = uint32(0x1c1)
	assert.Equal(t, wantRet, gotRet)
}

func TestBitsReader_ReadUint64(t *testing.T) {
	r := NewReader(bitsDatas[1])
	gotRet := r.ReadUint64(36)
	wantRet := uint64(0x474000100)
	assert.Equal(t, wantRet, gotRet)

	gotRet = r.ReadUint64(32)
	wantRet = uint64(0x000b00d0)
	assert.Equal(t, wantRet, gotRet)

	r.Skip(8)
	gotRet = r.ReadUint64(12)
	wantRet = uint64(0x1c1)
	assert.Equal(t, wantRet, gotRet)
}

func TestBitsReader_ReadUe(t *testing.T) {
	// 1 | 010 | 011 | 00100 | 00111 | 0001000
	r := NewReader([]byte{0xa6, 0x43, 0x88})
	for _, want := range []uint32{0, 1, 2, 3, 6, 7} {
		assert.Equal(t, want, r.ReadUe())
	}
	assert.NoError(t, r.Err())
}

func TestBitsReader_ReadSe(t *testing.T) {
	// ue: 0 1 2 3 4 -> se: 0 1 -1 2 -2
	r := NewReader([]byte{0xa6, 0x42, 0x80})
	for _, want := range []int32{0, 1, -1, 2, -2} {
		assert.Equal(t, want, r.ReadSe())
	}
	assert.NoError(t, r.Err())
}

func TestBitsReader_Underrun(t *testing.T) {
	r := NewReader([]byte{0xff})
	assert.Equal(t, uint8(0xf), r.ReadUint8(4))
	assert.Equal(t, uint32(0), r.Read(5))
	assert.Equal(t, ErrBufferUnderrun, r.Err())
	assert.Equal(t, 8, r.Offset())

	// 出错后读取全部返回 0
	assert.Equal(t, uint8(0), r.ReadBit())
	assert.Equal(t, uint32(0), r.ReadUe())
	assert.Equal(t, ErrBufferUnderrun, r.Err())
}

func TestBitsReader_InvalidExpGolomb(t *testing.T) {
	r := NewReader([]byte{0, 0, 0, 0, 0x80})
	assert.Equal(t, uint32(0), r.ReadUe())
	assert.Equal(t, ErrInvalidExpGolomb, r.Err())
}

func TestBitsReader_MoreRbspData(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		skip int
		want bool
	}{
		{"only stop bit", []byte{0x80}, 0, false},
		{"data before stop bit", []byte{0xc0}, 0, true},
		{"at stop bit", []byte{0xc0}, 1, false},
		{"trailing zero bytes", []byte{0x01, 0x80, 0x00}, 7, true},
		{"trailing zero bytes at stop", []byte{0x01, 0x80, 0x00}, 8, false},
		{"all zero", []byte{0x00, 0x00}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.data)
			r.Skip(tt.skip)
			assert.Equal(t, tt.want, r.MoreRbspData())
		})
	}
}

func TestBitsReader_Offsets(t *testing.T) {
	r := NewReader(bitsDatas[0])
	assert.True(t, r.ByteAligned())
	r.Skip(3)
	assert.False(t, r.ByteAligned())
	assert.Equal(t, 3, r.Offset())
	assert.Equal(t, 1, r.ByteOffset())
	assert.Equal(t, len(bitsDatas[0])*8-3, r.BitsLeft())
}

func BenchmarkReadBit(b *testing.B) {
	r := NewReader(bitsDatas[1])
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.offset = 2
		ret := r.ReadBit()
		_ = ret
	}
}

func BenchmarkReadUint8(b *testing.B) {
	r := NewReader(bitsDatas[1])
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.offset = 2
		ret := r.ReadUint8(7)
		_ = ret
	}
}

func BenchmarkReadUint16(b *testing.B) {
	r := NewReader(bitsDatas[1])
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.offset = 2
		ret := r.ReadUint16(13)
		_ = ret
	}
}

func BenchmarkReadUint32(b *testing.B) {
	r := NewReader(bitsDatas[1])
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.offset = 2
		ret := r.ReadUint32(29)
		_ = ret
	}
}

func BenchmarkReadUint64(b *testing.B) {
	r := NewReader(bitsDatas[1])
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.offset = 2
		ret := r.ReadUint64(61)
		_ = ret
	}
}
