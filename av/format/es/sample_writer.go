// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package es

import (
	"io"

	"github.com/cnotch/omafhevc/av/codec"
	"github.com/pkg/errors"
)

// SampleWriter 将视频帧的长度前缀样本顺序写入 io.Writer
type SampleWriter struct {
	w      io.Writer
	frames int
	bytes  int64
}

var _ codec.FrameWriter = (*SampleWriter)(nil)

// NewSampleWriter .
func NewSampleWriter(w io.Writer) *SampleWriter {
	return &SampleWriter{w: w}
}

// WriteFrame 写入帧负载，非视频帧被忽略
func (sw *SampleWriter) WriteFrame(frame *codec.Frame) error {
	if frame.MediaType != codec.MediaTypeVideo {
		return nil
	}

	n, err := sw.w.Write(frame.Payload)
	sw.bytes += int64(n)
	if err != nil {
		return errors.Wrapf(err, "write sample %d", sw.frames)
	}
	sw.frames++
	return nil
}

// Frames 已写入的帧数
func (sw *SampleWriter) Frames() int { return sw.frames }

// Bytes 已写入的字节数
func (sw *SampleWriter) Bytes() int64 { return sw.bytes }
