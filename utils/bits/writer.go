// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bits

import mbits "math/bits"

// Writer 按位写入，数据追加到内部缓冲
type Writer struct {
	buf    []byte
	offset int // bit base
}

// NewWriter 创建 Writer，写入从 buf 现有内容之后开始
func NewWriter(buf []byte) *Writer {
	return &Writer{
		buf:    buf,
		offset: len(buf) << 3,
	}
}

// Write write the low n bits of v, n <= 32.
func (w *Writer) Write(v uint32, n int) {
	w.WriteUint64(uint64(v), n)
}

// WriteUint64 write the low n bits of v, n <= 64.
func (w *Writer) WriteUint64(v uint64, n int) {
	for n > 0 {
		if w.offset&0x7 == 0 {
			w.buf = append(w.buf, 0)
		}

		free := 8 - w.offset&0x7
		m := n
		if m > free {
			m = free
		}
		n -= m
		chunk := byte(v>>uint(n)) & bitsMask[m]
		w.buf[w.offset>>3] |= chunk << uint(free-m)
		w.offset += m
	}
}

// WriteBit write a bit.
func (w *Writer) WriteBit(b uint8) {
	w.WriteUint64(uint64(b&1), 1)
}

// WriteBool write one bit bool.
func (w *Writer) WriteBool(b bool) {
	if b {
		w.WriteBit(1)
	} else {
		w.WriteBit(0)
	}
}

// WriteUe 写入无符号指数哥伦布编码 ue(v)
func (w *Writer) WriteUe(v uint32) {
	x := uint64(v) + 1
	n := mbits.Len64(x)
	w.WriteUint64(0, n-1)
	w.WriteUint64(x, n)
}

// WriteSe 写入有符号指数哥伦布编码 se(v)
func (w *Writer) WriteSe(v int32) {
	if v > 0 {
		w.WriteUe(uint32(2*int64(v) - 1))
	} else {
		w.WriteUe(uint32(-2 * int64(v)))
	}
}

// AlignZero 用 0 填充到字节边界
func (w *Writer) AlignZero() {
	if n := w.offset & 0x7; n != 0 {
		w.WriteUint64(0, 8-n)
	}
}

// WriteTrailingBits 写入 rbsp_trailing_bits
func (w *Writer) WriteTrailingBits() {
	w.WriteBit(1)
	w.AlignZero()
}

// ByteAligned 当前位置是否字节对齐
func (w *Writer) ByteAligned() bool {
	return w.offset&0x7 == 0
}

// Offset returns the offset of bits.
func (w *Writer) Offset() int {
	return w.offset
}

// ByteOffset 返回已写入的字节数，不足一个字节按一个字节计
func (w *Writer) ByteOffset() int {
	return (w.offset + 7) >> 3
}

// Bytes 返回已写入的数据
func (w *Writer) Bytes() []byte {
	return w.buf
}
