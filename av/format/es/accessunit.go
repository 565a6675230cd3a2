// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package es

import (
	"time"

	"github.com/cnotch/omafhevc/av/codec"
	"github.com/cnotch/omafhevc/av/codec/hevc"
	"github.com/q191201771/naza/pkg/bele"
)

var startCode = []byte{0x00, 0x00, 0x00, 0x01}

// AccessUnit 一个图像的访问单元。
// NAL 单元均不含起始码。
type AccessUnit struct {
	Nals [][]byte // 按接收顺序的全部 NAL
	Vps  [][]byte
	Sps  [][]byte
	Pps  [][]byte
	Sei  [][]byte // 前缀和后缀 SEI
	Vcl  [][]byte

	CodingIndex int   // 解码顺序
	PresIndex   int64 // 跨 IDR 单调递增的显示序号
	Poc         int32
	Width       int
	Height      int
	IsIdr       bool
	IsCra       bool
	IsBla       bool
	Output      bool

	// 参考图像的解码序号，list0 ∪ list1 去重并保持顺序
	RefDecodeIndices []int
	Duration         time.Duration

	gopViolation bool
}

func (au *AccessUnit) add(nal []byte, nalType uint8) {
	au.Nals = append(au.Nals, nal)
	switch {
	case nalType == hevc.NalVps:
		au.Vps = append(au.Vps, nal)
	case nalType == hevc.NalSps:
		au.Sps = append(au.Sps, nal)
	case nalType == hevc.NalPps:
		au.Pps = append(au.Pps, nal)
	case isSei(nalType):
		au.Sei = append(au.Sei, nal)
	case nalType < hevc.NalVps:
		au.Vcl = append(au.Vcl, nal)
	}
}

// Sample 4 字节大端长度前缀的 SEI 和 VCL NAL，供容器写入
func (au *AccessUnit) Sample() []byte {
	return au.lengthPrefixed(func(nalType uint8) bool {
		return isSei(nalType) || nalType < hevc.NalVps
	})
}

// LengthPrefixed 4 字节大端长度前缀的全部 NAL
func (au *AccessUnit) LengthPrefixed() []byte {
	return au.lengthPrefixed(func(uint8) bool { return true })
}

// AnnexB 带 4 字节起始码的全部 NAL
func (au *AccessUnit) AnnexB() []byte {
	size := 0
	for _, nal := range au.Nals {
		size += len(startCode) + len(nal)
	}

	buf := make([]byte, 0, size)
	for _, nal := range au.Nals {
		buf = append(buf, startCode...)
		buf = append(buf, nal...)
	}
	return buf
}

// Frame 转换成容器写入使用的帧，时间戳单位为纳秒
func (au *AccessUnit) Frame() *codec.Frame {
	return &codec.Frame{
		MediaType: codec.MediaTypeVideo,
		Dts:       int64(au.CodingIndex) * int64(au.Duration),
		Pts:       au.PresIndex * int64(au.Duration),
		Payload:   au.Sample(),
	}
}

func (au *AccessUnit) lengthPrefixed(include func(nalType uint8) bool) []byte {
	size := 0
	for _, nal := range au.Nals {
		if include(hevc.NalType(nal[0])) {
			size += 4 + len(nal)
		}
	}

	buf := make([]byte, size)
	offset := 0
	for _, nal := range au.Nals {
		if !include(hevc.NalType(nal[0])) {
			continue
		}
		bele.BePutUint32(buf[offset:], uint32(len(nal)))
		offset += 4
		offset += copy(buf[offset:], nal)
	}
	return buf
}

func isSei(nalType uint8) bool {
	return nalType == hevc.NalSeiPrefix || nalType == hevc.NalSeiSuffix
}
