// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"io"
	"io/ioutil"
	"os"
	"sync/atomic"
	"time"

	"github.com/cnotch/omafhevc/av/codec"
	"github.com/cnotch/omafhevc/av/format/es"
	"github.com/cnotch/omafhevc/config"
	"github.com/cnotch/omafhevc/utils"
	"github.com/cnotch/scheduler"
	"github.com/cnotch/xlog"
	"github.com/pkg/errors"
)

// report 处理结果报告
type report struct {
	Source        string          `json:"source"`
	Meta          codec.VideoMeta `json:"meta"`
	FrameDuration time.Duration   `json:"frame_duration"`
	AccessUnits   int64           `json:"access_units"`
	IdrPictures   int64           `json:"idr_pictures"`
	Bytes         int64           `json:"bytes"`
	GopViolations []int           `json:"gop_violations,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// errSource 带读取错误的字节源
type errSource interface {
	es.ByteSource
	Err() error
}

func main() {
	// 初始化配置
	config.InitConfig()
	// 初始化全局计划任务
	scheduler.SetPanicHandler(func(job *scheduler.ManagedJob, r interface{}) {
		xlog.Errorf("scheduler task panic. tag: %v, recover: %v", job.Tag, r)
	})

	rpt, err := run(context.Background())
	if err != nil {
		rpt.Error = err.Error()
		xlog.Errorf("%s: %v", rpt.Source, err)
	}

	if path := config.Report(); path != "" {
		if werr := utils.EncodeJSONFile(path, rpt); werr != nil {
			xlog.Errorf("write report %s: %v", path, werr)
		}
	}

	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) (rpt *report, err error) {
	rpt = new(report)
	src, name, closer, err := openSource(ctx)
	rpt.Source = name
	if err != nil {
		return
	}
	defer closer.Close()

	logger := xlog.L().With(xlog.Fields(xlog.F("source", name)))
	cfg, err := config.AssemblerConfig()
	if err != nil {
		return
	}

	asm := es.NewAssembler(src, cfg, logger)
	if err = asm.EnsureMetadataLoaded(); err != nil {
		return rpt, sourceError(src, err)
	}
	rpt.Meta, _ = asm.Metadata()
	rpt.FrameDuration, _ = asm.FrameDuration()

	var fw codec.FrameWriter = es.NewSampleWriter(ioutil.Discard)
	if path := config.Output(); path != "" {
		var f *os.File
		if f, err = os.Create(path); err != nil {
			return rpt, errors.Wrap(err, "create output")
		}
		defer f.Close()
		bw := bufio.NewWriter(f)
		defer bw.Flush()
		fw = es.NewSampleWriter(bw)
	}

	// 周期输出进度
	var count int64
	scheduler.PeriodFunc(config.ProgressInterval(), config.ProgressInterval(), func() {
		logger.Infof("%d access units assembled", atomic.LoadInt64(&count))
	}, "omafhevc progress")
	defer func() {
		jobs := scheduler.Jobs()
		for _, job := range jobs {
			job.Cancel()
		}
	}()

	for {
		au, nerr := asm.Next()
		if nerr == io.EOF {
			break
		}
		if nerr != nil {
			if errors.Cause(nerr) != es.ErrGopLengthViolation {
				return rpt, sourceError(src, nerr)
			}
			logger.Warn(nerr.Error())
			rpt.GopViolations = append(rpt.GopViolations, au.CodingIndex)
		}

		frame := au.Frame()
		if err = fw.WriteFrame(frame); err != nil {
			return
		}
		atomic.AddInt64(&count, 1)
		rpt.AccessUnits++
		rpt.Bytes += int64(len(frame.Payload))
		if au.IsIdr {
			rpt.IdrPictures++
		}
	}

	err = sourceError(src, nil)
	logger.Infof("done, %d access units (%d idr), %d bytes",
		rpt.AccessUnits, rpt.IdrPictures, rpt.Bytes)
	return
}

// openSource 根据配置打开字节源
func openSource(ctx context.Context) (src errSource, name string, closer io.Closer, err error) {
	if tpl, start := config.SegmentTemplate(); tpl != "" {
		return es.NewSegmentSource(es.FileSegments(tpl, start)), tpl, ioutil.NopCloser(nil), nil
	}

	name = config.Input()
	if name == "" {
		return nil, name, nil, errors.New("no input, set -input or -segment-template")
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, name, nil, errors.Wrap(err, "open input")
	}
	if config.IsTS() {
		return es.NewTsSource(ctx, bufio.NewReader(f)), name, f, nil
	}
	return es.NewStreamSource(f, 0), name, f, nil
}

// sourceError 优先返回字节源的读取错误
func sourceError(src errSource, err error) error {
	if serr := src.Err(); serr != nil {
		return serr
	}
	return err
}
