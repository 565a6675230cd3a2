// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package es

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

// NextSegmentFunc 返回下一个分段的数据，没有更多分段时返回 io.EOF
type NextSegmentFunc func() ([]byte, error)

// SegmentSource 由多个分段依次拼接而成的字节源。
// 当前分段读完后打开下一个分段，并保留前一个分段以支持跨分段回退。
type SegmentSource struct {
	next NextSegmentFunc
	prev []byte
	cur  []byte
	pos  int // 相对 cur 的位置，负数表示位于 prev 中
	done bool
	err  error
}

// NewSegmentSource .
func NewSegmentSource(next NextSegmentFunc) *SegmentSource {
	return &SegmentSource{next: next}
}

// NextByte .
func (s *SegmentSource) NextByte() byte {
	if s.pos < 0 {
		b := s.prev[len(s.prev)+s.pos]
		s.pos++
		return b
	}
	if s.pos >= len(s.cur) && !s.advance() {
		return 0
	}
	b := s.cur[s.pos]
	s.pos++
	return b
}

// EOF .
func (s *SegmentSource) EOF() bool {
	return s.pos >= len(s.cur) && !s.advance()
}

// Rewind .
func (s *SegmentSource) Rewind(n int) error {
	if n < 0 || n > s.pos+len(s.prev) {
		return errors.Wrapf(ErrRewindUnderflow, "rewind %d bytes across segments", n)
	}
	s.pos -= n
	return nil
}

// Err 返回打开分段时遇到的错误
func (s *SegmentSource) Err() error { return s.err }

func (s *SegmentSource) advance() bool {
	for !s.done {
		data, err := s.next()
		if err != nil {
			if err != io.EOF {
				s.err = err
			}
			s.done = true
			break
		}
		if len(data) == 0 {
			continue
		}
		s.prev, s.cur, s.pos = s.cur, data, 0
		return true
	}
	return false
}

var numberPattern = regexp.MustCompile(`\$Number(%0(\d+)d)?\$`)

// FileSegments 按模板依次读取分段文件，从编号 start 开始。
// 模板中的 $Number$ 或 $Number%0Nd$ 替换为分段编号；下一个文件不存在时流结束。
func FileSegments(template string, start int) NextSegmentFunc {
	number := start
	return func() ([]byte, error) {
		name := SegmentName(template, number)
		data, err := ioutil.ReadFile(name)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, io.EOF
			}
			return nil, errors.Wrapf(err, "read segment %s", name)
		}
		number++
		return data, nil
	}
}

// SegmentName 展开分段文件名模板
func SegmentName(template string, number int) string {
	return numberPattern.ReplaceAllStringFunc(template, func(m string) string {
		sub := numberPattern.FindStringSubmatch(m)
		if sub[2] == "" {
			return strconv.Itoa(number)
		}
		width, _ := strconv.Atoi(sub[2])
		return fmt.Sprintf("%0*d", width, number)
	})
}
