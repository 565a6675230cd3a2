// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package codec

// MediaType 媒体类型
type MediaType int

// 媒体类型常量
const (
	MediaTypeVideo MediaType = iota
	MediaTypeData            // Opaque data information usually continuous
)

// Frame 完整的一帧，视频帧的载荷为长度前缀的 NAL 单元
type Frame struct {
	MediaType        // 媒体类型
	Dts       int64  // DTS，单位为 ns
	Pts       int64  // PTS，单位为 ns
	Payload   []byte // 媒体数据载荷
}

// FrameWriter 包装 WriteFrame 方法的接口
type FrameWriter interface {
	WriteFrame(frame *Frame) error
}
