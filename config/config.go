// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"flag"
)

// config 命令配置
type config struct {
	Input           string    `json:"input"`                      // 输入的 HEVC 基本流文件
	SegmentTemplate string    `json:"segment_template,omitempty"` // 分段文件模板，支持 $Number$ 和 $Number%0Nd$
	SegmentStart    int       `json:"segment_start"`              // 第一个分段的编号
	TS              bool      `json:"ts"`                         // 输入为 MPEG-TS
	Output          string    `json:"output,omitempty"`           // 长度前缀的样本输出文件
	Report          string    `json:"report,omitempty"`           // JSON 报告文件
	FrameDuration   string    `json:"frame_duration,omitempty"`   // 帧时长，"num/den" 秒
	GopLength       int       `json:"gop_length"`                 // 图像组长度，0 表示不检查
	DpbCapacity     int       `json:"dpb_capacity"`               // DPB 容量，0 表示使用 SPS 的值
	Progress        int       `json:"progress"`                   // 进度日志间隔(秒)
	Log             LogConfig `json:"log"`                        // 日志配置
}

func (c *config) initFlags() {
	flag.StringVar(&c.Input, "input", "", "Set the HEVC elementary stream file to read")
	flag.StringVar(&c.SegmentTemplate, "segment-template", "",
		"Set the segment file template, e.g. seg_$Number%05d$.265")
	flag.IntVar(&c.SegmentStart, "segment-start", 1, "Set the number of the first segment")
	flag.BoolVar(&c.TS, "ts", false, "Determines if the input is an MPEG-TS")
	flag.StringVar(&c.Output, "output", "", "Set the length-prefixed sample file to write")
	flag.StringVar(&c.Report, "report", "", "Set the JSON report file to write")
	flag.StringVar(&c.FrameDuration, "frame-duration", "",
		"Set the frame duration in seconds as num/den, overrides the stream timing")
	flag.IntVar(&c.GopLength, "gop-length", 0,
		"Set the GOP length, non-IDR pictures at GOP boundaries are reported")
	flag.IntVar(&c.DpbCapacity, "dpb-capacity", 0,
		"Set the decoded picture buffer capacity, 0 uses the SPS value")
	flag.IntVar(&c.Progress, "progress", 5, "Set the progress log interval in seconds")

	// 初始化日志配置
	c.Log.initFlags()
}
