// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package codec

// VideoMeta 视频元数据
type VideoMeta struct {
	Codec          string  `json:"codec"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
	FixedFrameRate bool    `json:"fixedframerate,omitempty"`
	FrameRate      float64 `json:"framerate,omitempty"`
	Vps            []byte  `json:"-"` // 最近的 VPS NAL，不含起始码
	Sps            []byte  `json:"-"`
	Pps            []byte  `json:"-"`
}
