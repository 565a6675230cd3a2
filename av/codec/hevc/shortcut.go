// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import "github.com/cnotch/omafhevc/av/codec"

// MetadataIsReady 参数集齐备时返回 true，并在需要时从 SPS(及 VPS)补全宽高和帧率
func MetadataIsReady(vm *codec.VideoMeta) bool {
	vps := vm.Vps
	sps := vm.Sps
	pps := vm.Pps
	if len(vps) == 0 || len(sps) == 0 || len(pps) == 0 {
		return false
	}

	if vm.Width == 0 {
		var rawsps H265RawSPS
		if err := rawsps.Decode(sps); err != nil {
			return false
		}
		vm.Codec = "H265"
		vm.Width = rawsps.Width()
		vm.Height = rawsps.Height()
		vm.FixedFrameRate = rawsps.IsFixedFrameRate()
		vm.FrameRate = rawsps.FrameRate()
		if vm.FrameRate == 0 {
			var rawvps H265RawVPS
			if err := rawvps.Decode(vps); err == nil {
				vm.FrameRate = rawvps.FrameRate()
			}
		}
	}
	return true
}

// NalType 从 NAL 头的第一个字节中取出 NAL 类型
func NalType(b byte) uint8 {
	return (b >> 1) & 0x3f
}
