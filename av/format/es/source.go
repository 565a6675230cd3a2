// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package es

import (
	"github.com/pkg/errors"
)

// ErrRewindUnderflow 回退超出了字节源可保证的回看窗口
var ErrRewindUnderflow = errors.New("es: rewind underflow")

// ByteSource 逐字节读取的字节源
type ByteSource interface {
	// NextByte 读取下一个字节，结束后返回 0
	NextByte() byte
	// EOF 是否已没有可读字节
	EOF() bool
	// Rewind 回退 n 个字节
	Rewind(n int) error
}

// MemorySource 内存字节源，可以回退到开头
type MemorySource struct {
	data []byte
	pos  int
}

// NewMemorySource .
func NewMemorySource(data []byte) *MemorySource {
	return &MemorySource{data: data}
}

// NextByte .
func (s *MemorySource) NextByte() byte {
	if s.pos >= len(s.data) {
		return 0
	}
	b := s.data[s.pos]
	s.pos++
	return b
}

// EOF .
func (s *MemorySource) EOF() bool {
	return s.pos >= len(s.data)
}

// Rewind .
func (s *MemorySource) Rewind(n int) error {
	if n < 0 || n > s.pos {
		return errors.Wrapf(ErrRewindUnderflow, "rewind %d bytes at offset %d", n, s.pos)
	}
	s.pos -= n
	return nil
}

// Offset 当前读取位置
func (s *MemorySource) Offset() int { return s.pos }
