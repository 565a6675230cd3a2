// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bits

import "github.com/pkg/errors"

// 读取错误
var (
	ErrBufferUnderrun   = errors.New("bits: buffer underrun")
	ErrInvalidExpGolomb = errors.New("bits: invalid exp-golomb code")
)

// Reader .
// 读取越界后 Reader 进入错误状态，后续所有读取返回 0，错误通过 Err 获取。
type Reader struct {
	buf    []byte
	offset int // bit base
	err    error
}

// NewReader retruns a new Reader.
func NewReader(buf []byte) *Reader {
	return &Reader{
		buf: buf,
	}
}

// Err 返回第一次发生的读取错误
func (r *Reader) Err() error {
	return r.err
}

// Skip skip n bits.
func (r *Reader) Skip(n int) {
	if n <= 0 || r.err != nil {
		return
	}
	if r.offset+n > len(r.buf)<<3 {
		r.underrun()
		return
	}
	r.offset += n
}

// Peek peek the uint64 of n bits.
func (r *Reader) Peek(n int) uint64 {
	clone := *r
	return clone.readUint64(n, 64)
}

// Read read the uint32 of n bits.
func (r *Reader) Read(n int) uint32 {
	return uint32(r.readUint64(n, 32))
}

// ReadBit read a bit.
func (r *Reader) ReadBit() uint8 {
	if r.err != nil {
		return 0
	}
	if r.offset >= len(r.buf)<<3 {
		r.underrun()
		return 0
	}

	tmp := (r.buf[r.offset>>3] >> (7 - r.offset&0x7)) & 1
	r.offset++
	return tmp
}

// ReadUe 读取无符号指数哥伦布编码 ue(v)
func (r *Reader) ReadUe() (res uint32) {
	i := 0
	for {
		bit := r.ReadBit()
		if r.err != nil {
			return 0
		}
		if bit == 1 {
			break
		}
		i++
		if i > 31 {
			r.err = ErrInvalidExpGolomb
			return 0
		}
	}

	res = uint32(r.readUint64(i, 32))
	res += (1 << uint(i)) - 1
	return
}

// ReadSe 读取有符号指数哥伦布编码 se(v)
func (r *Reader) ReadSe() (res int32) {
	k := r.ReadUe()
	if k&0x01 != 0 {
		res = int32((k + 1) / 2)
	} else {
		res = -int32(k / 2)
	}
	return
}

// ==== shortcut methods

// ReadBool read one bit bool.
func (r *Reader) ReadBool() bool { return bool(r.ReadBit() == 1) }

// ReadUint8 read the uint8 of n bits.
func (r *Reader) ReadUint8(n int) uint8 { return uint8(r.readUint64(n, 8)) }

// ReadUint16 read the uint16 of n bits.
func (r *Reader) ReadUint16(n int) uint16 { return uint16(r.readUint64(n, 16)) }

// ReadUint32 read the uint32 of n bits.
func (r *Reader) ReadUint32(n int) uint32 { return uint32(r.readUint64(n, 32)) }

// ReadUint64 read the uint64 of n bits.
func (r *Reader) ReadUint64(n int) uint64 { return r.readUint64(n, 64) }

// ReadUe8 read the UE GolombCode of uint8.
func (r *Reader) ReadUe8() uint8 { return uint8(r.ReadUe()) }

// ReadUe16 read the UE GolombCode of uint16.
func (r *Reader) ReadUe16() uint16 { return uint16(r.ReadUe()) }

// ReadSe8 read the SE of int8.
func (r *Reader) ReadSe8() int8 { return int8(r.ReadSe()) }

// ReadSe16 read the SE of int16.
func (r *Reader) ReadSe16() int16 { return int16(r.ReadSe()) }

// Offset returns the offset of bits.
func (r *Reader) Offset() int {
	return r.offset
}

// ByteOffset 返回已消耗的字节数，不足一个字节按一个字节计
func (r *Reader) ByteOffset() int {
	return (r.offset + 7) >> 3
}

// ByteAligned 当前位置是否字节对齐
func (r *Reader) ByteAligned() bool {
	return r.offset&0x7 == 0
}

// BitsLeft returns the number of left bits.
func (r *Reader) BitsLeft() int {
	return len(r.buf)<<3 - r.offset
}

// BytesLeft returns the left byte slice.
func (r *Reader) BytesLeft() []byte {
	return r.buf[r.offset>>3:]
}

// MoreRbspData 判断 rbsp_trailing_bits 之前是否还有数据
func (r *Reader) MoreRbspData() bool {
	if r.err != nil {
		return false
	}

	last := len(r.buf) - 1
	for last >= 0 && r.buf[last] == 0 {
		last--
	}
	if last < 0 {
		return false
	}

	// 最后一个值为 1 的位是 rbsp_stop_one_bit
	stop := last<<3 + 7
	for b := r.buf[last]; b&1 == 0; b >>= 1 {
		stop--
	}
	return r.offset < stop
}

func (r *Reader) underrun() {
	r.err = ErrBufferUnderrun
	r.offset = len(r.buf) << 3
}

var bitsMask = [9]byte{
	0x00,
	0x01, 0x03, 0x07, 0x0f,
	0x1f, 0x3f, 0x7f, 0xff,
}

// readUint64 read the uint64 of n bits.
func (r *Reader) readUint64(n, max int) uint64 {
	if n <= 0 || n > max || r.err != nil {
		return 0
	}

	if r.offset+n > len(r.buf)<<3 {
		r.underrun()
		return 0
	}

	idx := r.offset >> 3
	validBits := 8 - r.offset&0x7
	r.offset += n

	var tmp uint64
	for n >= validBits {
		n -= validBits
		tmp |= uint64(r.buf[idx]&bitsMask[validBits]) << uint(n)
		idx++
		validBits = 8
	}

	if n > 0 {
		tmp |= uint64((r.buf[idx] >> uint(validBits-n)) & bitsMask[n])
	}
	return tmp
}
