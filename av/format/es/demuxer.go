// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package es

import (
	"io"

	"github.com/cnotch/omafhevc/av/codec/hevc"
	"github.com/cnotch/omafhevc/utils"
)

// Demuxer 从字节源中按起始码切分 NAL 单元
type Demuxer struct {
	src  ByteSource
	size int // 上一个 NAL 的长度，用于预分配
}

// NewDemuxer .
func NewDemuxer(src ByteSource) *Demuxer {
	return &Demuxer{src: src, size: 1024}
}

// Next 返回下一个 NAL 单元(含自身的起始码)及其类型；没有更多 NAL 时返回 io.EOF。
// 起始码之前的字节被丢弃；下一个起始码前的零字节不属于当前 NAL。
func (d *Demuxer) Next() (nal []byte, nalType uint8, err error) {
	for {
		nal, err = d.scan()
		if err != nil {
			return nil, 0, err
		}
		if nal == nil {
			return nil, 0, io.EOF
		}

		header := utils.StartCodeLen(nal)
		if header < len(nal) {
			d.size = len(nal)
			return nal, hevc.NalType(nal[header]), nil
		}
		// 空 NAL，继续
	}
}

// scan 读取一个起始码及其后直到下一个起始码(或结束)的字节；没有起始码时返回 nil
func (d *Demuxer) scan() ([]byte, error) {
	buf := make([]byte, 0, d.size)
	zeros := 0
	started := false
	for !d.src.EOF() {
		b := d.src.NextByte()
		if b == 0x01 && zeros >= 2 {
			if started {
				buf = buf[:len(buf)-zeros]
				if err := d.src.Rewind(zeros + 1); err != nil {
					return nil, err
				}
				return buf, nil
			}

			// 当前 NAL 的起始码，丢弃前导字节
			if zeros > 3 {
				zeros = 3
			}
			buf = append(buf[:0], make([]byte, zeros)...)
			buf = append(buf, b)
			started = true
			zeros = 0
			continue
		}

		if b == 0 {
			zeros++
		} else {
			zeros = 0
		}
		buf = append(buf, b)
	}

	if !started {
		return nil, nil
	}
	return buf, nil
}
