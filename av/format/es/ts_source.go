// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package es

import (
	"context"
	"io"

	"github.com/asticode/go-astits"
	"github.com/pkg/errors"
)

// TsSource 从 MPEG-TS 中提取第一个 HEVC 基本流(stream_type 0x24)的字节源。
// 每个 PES 的载荷作为一个分段，前一个载荷保留用于回退。
type TsSource struct {
	*SegmentSource
	dmx   *astits.Demuxer
	pid   uint16
	found bool
}

// NewTsSource .
func NewTsSource(ctx context.Context, r io.Reader) *TsSource {
	ts := &TsSource{dmx: astits.NewDemuxer(ctx, r)}
	ts.SegmentSource = NewSegmentSource(ts.nextPayload)
	return ts
}

// PID HEVC 基本流的 PID，未找到时返回 false
func (ts *TsSource) PID() (uint16, bool) { return ts.pid, ts.found }

func (ts *TsSource) nextPayload() ([]byte, error) {
	for {
		d, err := ts.dmx.NextData()
		if err != nil {
			if err == astits.ErrNoMorePackets {
				return nil, io.EOF
			}
			return nil, errors.Wrap(err, "demux mpeg-ts")
		}

		if d.PMT != nil && !ts.found {
			for _, es := range d.PMT.ElementaryStreams {
				if es.StreamType == astits.StreamTypeH265Video {
					ts.pid, ts.found = es.ElementaryPID, true
					break
				}
			}
			continue
		}

		if ts.found && d.PES != nil && d.PID == ts.pid {
			return d.PES.Data, nil
		}
	}
}
