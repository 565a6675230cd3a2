// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cnotch/omafhevc/av/format/es"
	cfg "github.com/cnotch/loader"
	"github.com/cnotch/xlog"
	"github.com/pkg/errors"
)

// 程序名
const (
	Vendor  = "CAOHONGJU"
	Name    = "omafhevc"
	Version = "V1.0.0"
)

var globalC *config

// InitConfig 初始化 Config
func InitConfig() {
	exe, err := os.Executable()
	if err != nil {
		xlog.Panic(err.Error())
	}

	configPath := filepath.Join(filepath.Dir(exe), Name+".conf")

	globalC = new(config)
	globalC.initFlags()

	// 创建或加载配置文件
	if err := cfg.Load(globalC,
		&cfg.JSONLoader{Path: configPath, CreatedIfNonExsit: true},
		&cfg.EnvLoader{Prefix: strings.ToUpper(Name)},
		&cfg.FlagLoader{}); err != nil {
		// 异常，直接退出
		xlog.Panic(err.Error())
	}

	// 初始化日志
	globalC.Log.initLogger()
}

// Input 输入文件
func Input() string {
	if globalC == nil {
		return ""
	}
	return globalC.Input
}

// SegmentTemplate 分段文件模板及起始编号
func SegmentTemplate() (string, int) {
	if globalC == nil {
		return "", 0
	}
	return globalC.SegmentTemplate, globalC.SegmentStart
}

// IsTS 输入是否为 MPEG-TS
func IsTS() bool {
	return globalC != nil && globalC.TS
}

// Output 样本输出文件
func Output() string {
	if globalC == nil {
		return ""
	}
	return globalC.Output
}

// Report JSON 报告文件
func Report() string {
	if globalC == nil {
		return ""
	}
	return globalC.Report
}

// ProgressInterval 进度日志间隔
func ProgressInterval() time.Duration {
	if globalC == nil || globalC.Progress <= 0 {
		return time.Second * 5
	}
	return time.Second * time.Duration(globalC.Progress)
}

// AssemblerConfig 访问单元组装配置
func AssemblerConfig() (c es.Config, err error) {
	if globalC == nil {
		return
	}

	if globalC.FrameDuration != "" {
		if c.FrameDuration, err = es.ParseRational(globalC.FrameDuration); err != nil {
			return c, errors.Wrap(err, "frame_duration")
		}
	}
	c.GopLength = globalC.GopLength
	c.DpbCapacity = globalC.DpbCapacity
	return
}
