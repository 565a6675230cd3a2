// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"encoding/base64"
	"math"
	"runtime/debug"

	"github.com/cnotch/omafhevc/utils"
	"github.com/cnotch/omafhevc/utils/bits"
	"github.com/pkg/errors"
)

// 错误定义
var (
	ErrMissingParameterSet = errors.New("hevc: missing parameter set")
	ErrMalformedSyntax     = errors.New("hevc: malformed syntax")
)

// bitstream 统一的语法读写器。
// 同一份语法描述既用于解析也用于写入，保证两个方向的条件判断完全一致；
// 读取时字段值来自码流，写入时字段值来自结构体。
type bitstream struct {
	r   *bits.Reader
	w   *bits.Writer
	err error
}

func newReadStream(rbsp []byte) *bitstream {
	return &bitstream{r: bits.NewReader(rbsp)}
}

func newWriteStream(buf []byte) *bitstream {
	return &bitstream{w: bits.NewWriter(buf)}
}

func (s *bitstream) reading() bool {
	return s.r != nil
}

// Err 返回第一个错误
func (s *bitstream) Err() error {
	if s.err != nil {
		return s.err
	}
	if s.r != nil {
		if err := s.r.Err(); err != nil {
			return errors.Wrap(err, "hevc")
		}
	}
	return nil
}

func (s *bitstream) failed() bool {
	return s.err != nil || (s.r != nil && s.r.Err() != nil)
}

func (s *bitstream) fail(format string, args ...interface{}) {
	if s.err == nil {
		s.err = errors.Wrapf(ErrMalformedSyntax, format, args...)
	}
}

func (s *bitstream) setErr(err error) {
	if s.err == nil {
		s.err = err
	}
}

// offset 返回当前的位偏移
func (s *bitstream) offset() int {
	if s.r != nil {
		return s.r.Offset()
	}
	return s.w.Offset()
}

func (s *bitstream) byteAligned() bool {
	if s.r != nil {
		return s.r.ByteAligned()
	}
	return s.w.ByteAligned()
}

// u64 读写 n 位定长字段，n <= 64
func (s *bitstream) u64(n int, v *uint64) {
	if s.failed() {
		return
	}
	if s.r != nil {
		*v = s.r.ReadUint64(n)
		return
	}
	if n < 64 && *v>>uint(n) != 0 {
		s.fail("value %d overflows %d bits", *v, n)
		return
	}
	s.w.WriteUint64(*v, n)
}

func (s *bitstream) u32(n int, v *uint32) {
	x := uint64(*v)
	s.u64(n, &x)
	*v = uint32(x)
}

func (s *bitstream) u16(n int, v *uint16) {
	x := uint64(*v)
	s.u64(n, &x)
	*v = uint16(x)
}

func (s *bitstream) u8(n int, v *uint8) {
	x := uint64(*v)
	s.u64(n, &x)
	*v = uint8(x)
}

func (s *bitstream) flag(v *uint8) {
	s.u8(1, v)
}

// boolean 以 bool 形式读写 1 位标志
func (s *bitstream) boolean(v *bool) {
	var x uint8
	if *v {
		x = 1
	}
	s.u8(1, &x)
	*v = x == 1
}

// i32 读写 32 位有符号定长字段
func (s *bitstream) i32(v *int32) {
	x := uint32(*v)
	s.u32(32, &x)
	*v = int32(x)
}

// fixed 读写保留位，读取时忽略其值
func (s *bitstream) fixed(n int, value uint64) {
	s.u64(n, &value)
}

// ue32 读写 ue(v)，并检查取值范围；越界时置为 min
func (s *bitstream) ue32(name string, v *uint32, min, max uint32) {
	if s.failed() {
		return
	}
	if s.r != nil {
		x := s.r.ReadUe()
		if s.r.Err() != nil {
			*v = min
			return
		}
		if x < min || x > max {
			s.fail("%s out of range: %d, expected [%d, %d]", name, x, min, max)
			x = min
		}
		*v = x
		return
	}
	if *v < min || *v > max {
		s.fail("%s out of range: %d, expected [%d, %d]", name, *v, min, max)
		return
	}
	s.w.WriteUe(*v)
}

func (s *bitstream) ue16(name string, v *uint16, min, max uint32) {
	x := uint32(*v)
	s.ue32(name, &x, min, max)
	*v = uint16(x)
}

func (s *bitstream) ue8(name string, v *uint8, min, max uint32) {
	x := uint32(*v)
	s.ue32(name, &x, min, max)
	*v = uint8(x)
}

// se32 读写 se(v)，并检查取值范围；越界时置为 min
func (s *bitstream) se32(name string, v *int32, min, max int32) {
	if s.failed() {
		return
	}
	if s.r != nil {
		x := s.r.ReadSe()
		if s.r.Err() != nil {
			*v = min
			return
		}
		if x < min || x > max {
			s.fail("%s out of range: %d, expected [%d, %d]", name, x, min, max)
			x = min
		}
		*v = x
		return
	}
	if *v < min || *v > max {
		s.fail("%s out of range: %d, expected [%d, %d]", name, *v, min, max)
		return
	}
	s.w.WriteSe(*v)
}

func (s *bitstream) se16(name string, v *int16, min, max int32) {
	x := int32(*v)
	s.se32(name, &x, min, max)
	*v = int16(x)
}

func (s *bitstream) se8(name string, v *int8, min, max int32) {
	x := int32(*v)
	s.se32(name, &x, min, max)
	*v = int8(x)
}

// trailingBits rbsp_trailing_bits 及 byte_alignment 的语法相同：1 个 1，0 填充到字节边界
func (s *bitstream) trailingBits() {
	if s.failed() {
		return
	}
	if s.r != nil {
		if s.r.ReadBit() != 1 && s.r.Err() == nil {
			s.fail("alignment bit equal to one expected")
			return
		}
		for !s.r.ByteAligned() {
			s.r.ReadBit()
		}
		return
	}
	s.w.WriteTrailingBits()
}

// moreRbspData 读取时判断码流中是否还有数据，写入时由调用方提供的 present 决定
func (s *bitstream) moreRbspData(present bool) bool {
	if s.r != nil {
		return s.r.MoreRbspData()
	}
	return present
}

// H265RawExtensionData *_extension_data_flag 序列，原样保存
type H265RawExtensionData struct {
	Data      []byte
	BitLength int
}

func (ed *H265RawExtensionData) syntax(s *bitstream) {
	if s.failed() {
		return
	}
	if s.r != nil {
		w := bits.NewWriter(nil)
		ed.BitLength = 0
		for s.r.MoreRbspData() {
			w.WriteBit(s.r.ReadBit())
			ed.BitLength++
		}
		ed.Data = w.Bytes()
		return
	}

	if ed.BitLength > len(ed.Data)<<3 {
		s.fail("extension data too short")
		return
	}
	r := bits.NewReader(ed.Data)
	for i := 0; i < ed.BitLength; i++ {
		s.w.WriteBit(r.ReadBit())
	}
}

// recoverSyntax 将语法处理中的 panic 转换为错误
func recoverSyntax(err *error, name string) {
	if r := recover(); r != nil {
		*err = errors.Wrapf(ErrMalformedSyntax, "%s panic: %v\n%s", name, r, debug.Stack())
	}
}

// nalPayload 去除起始码并转换为 RBSP
func nalPayload(data []byte) []byte {
	return utils.ToRBSP(data, utils.StartCodeLen(data) > 0)
}

func decodeBase64(b64 string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	return data, errors.WithStack(err)
}

// CeilLog2 返回满足 x <= 2^i 的最小 i
func CeilLog2(x uint32) int {
	i := 0
	for x > 1<<uint(i) && i < 32 {
		i++
	}
	return i
}

// 常用的取值上限
const (
	maxUint8  = math.MaxUint8
	maxUint16 = math.MaxUint16
	maxUe     = math.MaxUint32 - 1
)
