// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package es

import (
	"io"

	"github.com/pkg/errors"
)

const (
	// 填充时保留的已读字节数
	streamKeepBytes       = 4
	defaultStreamBlockSize = 64 * 1024
)

// StreamSource 从 io.Reader 按块读取的字节源。
// 每次填充保留之前的最后 4 个字节，保证至少可以回退 4 个字节。
type StreamSource struct {
	r    io.Reader
	buf  []byte
	pos  int
	end  int
	done bool
	err  error
}

// NewStreamSource 创建流字节源，blockSize <= 0 时使用默认块大小
func NewStreamSource(r io.Reader, blockSize int) *StreamSource {
	if blockSize <= 0 {
		blockSize = defaultStreamBlockSize
	}
	return &StreamSource{
		r:   r,
		buf: make([]byte, streamKeepBytes+blockSize),
	}
}

// NextByte .
func (s *StreamSource) NextByte() byte {
	if s.pos >= s.end && !s.fill() {
		return 0
	}
	b := s.buf[s.pos]
	s.pos++
	return b
}

// EOF .
func (s *StreamSource) EOF() bool {
	return s.pos >= s.end && !s.fill()
}

// Rewind .
func (s *StreamSource) Rewind(n int) error {
	if n < 0 || n > s.pos {
		return errors.Wrapf(ErrRewindUnderflow, "rewind %d bytes, %d buffered", n, s.pos)
	}
	s.pos -= n
	return nil
}

// Err 返回读取时遇到的非 io.EOF 错误
func (s *StreamSource) Err() error { return s.err }

// fill 读取下一块数据，没有更多数据时返回 false
func (s *StreamSource) fill() bool {
	if s.done {
		return false
	}

	keep := s.end
	if keep > streamKeepBytes {
		keep = streamKeepBytes
	}
	copy(s.buf, s.buf[s.end-keep:s.end])
	s.pos, s.end = keep, keep

	for s.end == keep {
		n, err := s.r.Read(s.buf[s.end:])
		s.end += n
		if err != nil {
			if err != io.EOF {
				s.err = errors.Wrap(err, "read byte stream")
			}
			s.done = true
			break
		}
	}
	return s.pos < s.end
}
