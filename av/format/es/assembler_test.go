// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package es

import (
	"bytes"
	"encoding/base64"
	"io"
	"testing"
	"time"

	"github.com/cnotch/omafhevc/av/codec/hevc"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testVpsB64 = "QAEMAf//AWAAAAMAkAAAAwAAAwBdlZgJ"
	// 1280x720，VUI 时间信息 1001/24000
	testSpsB64 = "QgEBAWAAAAMAkAAAAwAAAwBdoAKAgC0WWVmkkyuAQAAA+kAAF3AC"
)

// testStream 构造 Annex-B 格式的测试码流
type testStream struct {
	t   testing.TB
	vps []byte
	sps *hevc.H265RawSPS
	pps *hevc.H265RawPPS
	buf bytes.Buffer
}

func newTestStream(t testing.TB, timing bool) *testStream {
	vps, err := base64.StdEncoding.DecodeString(testVpsB64)
	require.NoError(t, err)
	sps := new(hevc.H265RawSPS)
	require.NoError(t, sps.DecodeString(testSpsB64))
	if !timing {
		sps.Vui.Vui_timing_info_present_flag = 0
	}
	return &testStream{
		t:   t,
		vps: vps,
		sps: sps,
		pps: &hevc.H265RawPPS{
			Nal_unit_header: hevc.H265RawNALUnitHeader{Nal_unit_type: hevc.NalPps, Nuh_temporal_id_plus1: 1},
		},
	}
}

func (ts *testStream) nal(data []byte) *testStream {
	ts.buf.Write(startCode)
	ts.buf.Write(data)
	return ts
}

func (ts *testStream) parameterSets() *testStream {
	sps, err := ts.sps.Encode()
	require.NoError(ts.t, err)
	pps, err := ts.pps.Encode()
	require.NoError(ts.t, err)
	return ts.nal(ts.vps).nal(sps).nal(pps)
}

func (ts *testStream) slice(sh *hevc.H265RawSliceHeader) *testStream {
	nal, err := sh.Encode(ts.sps, ts.pps, []byte{0xa5, 0x80})
	require.NoError(ts.t, err)
	return ts.nal(nal)
}

func (ts *testStream) idr() *testStream {
	return ts.slice(&hevc.H265RawSliceHeader{
		Nal_unit_header:                 hevc.H265RawNALUnitHeader{Nal_unit_type: hevc.NalIdrWRadl, Nuh_temporal_id_plus1: 1},
		First_slice_segment_in_pic_flag: 1,
		Slice_type:                      hevc.SliceI,
		Pic_output_flag:                 1,
	})
}

// p 参考前一个图像的 P 图像
func (ts *testStream) p(lsb uint16) *testStream {
	return ts.slice(pHeader(lsb))
}

// pSlice P 图像中从 address 开始的后续独立片
func (ts *testStream) pSlice(lsb uint16, address uint32) *testStream {
	sh := pHeader(lsb)
	sh.First_slice_segment_in_pic_flag = 0
	sh.Slice_segment_address = address
	return ts.slice(sh)
}

func pHeader(lsb uint16) *hevc.H265RawSliceHeader {
	sh := &hevc.H265RawSliceHeader{
		Nal_unit_header:                 hevc.H265RawNALUnitHeader{Nal_unit_type: hevc.NalTrailR, Nuh_temporal_id_plus1: 1},
		First_slice_segment_in_pic_flag: 1,
		Slice_type:                      hevc.SliceP,
		Pic_output_flag:                 1,
		Slice_pic_order_cnt_lsb:         lsb,
	}
	sh.Short_term_ref_pic_set.Num_negative_pics = 1
	sh.Short_term_ref_pic_set.Used_by_curr_pic_s0_flag[0] = 1
	return sh
}

func (ts *testStream) source() ByteSource {
	return NewMemorySource(ts.buf.Bytes())
}

func TestAssembler_EndToEnd(t *testing.T) {
	ts := newTestStream(t, true)
	ts.parameterSets().idr().p(1).p(2)
	ts.nal([]byte{hevc.NalEosNut << 1, 0x01})
	ts.parameterSets().idr().p(1)

	a := NewAssembler(ts.source(), Config{}, nil)
	_, err := a.Metadata()
	assert.Equal(t, ErrNotInitialized, err)
	_, err = a.FrameDuration()
	assert.Equal(t, ErrNotInitialized, err)

	require.NoError(t, a.EnsureMetadataLoaded())
	require.NoError(t, a.EnsureMetadataLoaded())
	meta, err := a.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "H265", meta.Codec)
	assert.Equal(t, 1280, meta.Width)
	assert.Equal(t, 720, meta.Height)
	duration, err := a.FrameDuration()
	require.NoError(t, err)
	assert.Equal(t, 41708333*time.Nanosecond, duration)

	want := []struct {
		poc   int32
		pres  int64
		idr   bool
		refs  []int
		nals  int
		vcl   int
		param int
	}{
		{0, 0, true, nil, 4, 1, 1},
		{1, 1, false, []int{0}, 1, 1, 0},
		{2, 2, false, []int{1}, 2, 1, 0},
		{0, 3, true, nil, 4, 1, 1},
		{1, 4, false, []int{3}, 1, 1, 0},
	}
	for i, w := range want {
		au, err := a.Next()
		require.NoError(t, err, "access unit %d", i)
		assert.Equal(t, i, au.CodingIndex)
		assert.Equal(t, w.poc, au.Poc, "poc of %d", i)
		assert.Equal(t, w.pres, au.PresIndex, "pres of %d", i)
		assert.Equal(t, w.idr, au.IsIdr)
		assert.Equal(t, w.refs, au.RefDecodeIndices, "refs of %d", i)
		assert.Len(t, au.Nals, w.nals)
		assert.Len(t, au.Vcl, w.vcl)
		assert.Len(t, au.Sps, w.param)
		assert.Len(t, au.Vps, w.param)
		assert.Len(t, au.Pps, w.param)
		assert.True(t, au.Output)
		assert.Equal(t, 1280, au.Width)
		assert.Equal(t, 720, au.Height)
		assert.Equal(t, duration, au.Duration)
	}

	_, err = a.Next()
	assert.Equal(t, io.EOF, err)
	_, err = a.Next()
	assert.Equal(t, io.EOF, err)
}

func TestAssembler_MultiSlicePicture(t *testing.T) {
	ts := newTestStream(t, true)
	ts.parameterSets().idr().p(1)
	ts.p(2).pSlice(2, 1).pSlice(2, 2)
	ts.p(3)

	// DPB 只保留两个图像，图像封闭时才移除旧图像
	a := NewAssembler(ts.source(), Config{DpbCapacity: 2}, nil)
	want := []struct {
		refs []int
		vcl  int
	}{
		{nil, 1},
		{[]int{0}, 1},
		{[]int{1}, 3},
		{[]int{2}, 1},
	}
	for i, w := range want {
		au, err := a.Next()
		require.NoError(t, err, "access unit %d", i)
		assert.Equal(t, i, au.CodingIndex)
		assert.Equal(t, int32(i), au.Poc)
		assert.Equal(t, w.refs, au.RefDecodeIndices, "refs of %d", i)
		assert.Len(t, au.Vcl, w.vcl)
	}
	_, err := a.Next()
	assert.Equal(t, io.EOF, err)

	dpb := a.Context().Dpb()
	require.Equal(t, 2, dpb.Len())
	assert.Equal(t, int32(2), dpb.At(0).Poc)
	assert.Equal(t, int32(3), dpb.At(1).Poc)
	assert.Equal(t, 1280, dpb.At(1).Width)
	assert.Equal(t, int32(3), dpb.At(1).PocLsb)
}

func TestAssembler_GopLengthViolation(t *testing.T) {
	ts := newTestStream(t, true)
	ts.parameterSets().idr().p(1).p(2).p(3).parameterSets().idr()

	a := NewAssembler(ts.source(), Config{GopLength: 2}, nil)
	for i := 0; i < 5; i++ {
		au, err := a.Next()
		require.NotNil(t, au)
		assert.Equal(t, i, au.CodingIndex)
		if i == 2 {
			assert.Equal(t, ErrGopLengthViolation, errors.Cause(err))
		} else {
			assert.NoError(t, err, "access unit %d", i)
		}
	}
	_, err := a.Next()
	assert.Equal(t, io.EOF, err)
}

func TestAssembler_FrameDuration(t *testing.T) {
	ts := newTestStream(t, false)
	ts.parameterSets().idr()

	a := NewAssembler(ts.source(), Config{}, nil)
	assert.Equal(t, ErrFrameRateUndetermined, errors.Cause(a.EnsureMetadataLoaded()))

	a = NewAssembler(ts.source(), Config{FrameDuration: Rational{1, 25}}, nil)
	require.NoError(t, a.EnsureMetadataLoaded())
	duration, err := a.FrameDuration()
	require.NoError(t, err)
	assert.Equal(t, 40*time.Millisecond, duration)

	au, err := a.Next()
	require.NoError(t, err)
	assert.Equal(t, 40*time.Millisecond, au.Duration)
}

func TestAssembler_MissingParameterSets(t *testing.T) {
	ts := newTestStream(t, true)
	ts.parameterSets()
	params := append([]byte(nil), ts.buf.Bytes()...)
	ts.idr()
	slice := ts.buf.Bytes()[len(params):]

	// 片引用的 PPS 不存在
	a := NewAssembler(NewMemorySource(slice), Config{}, nil)
	assert.Equal(t, hevc.ErrMissingParameterSet, errors.Cause(a.EnsureMetadataLoaded()))

	// 没有图像
	a = NewAssembler(NewMemorySource(params), Config{}, nil)
	assert.Equal(t, io.ErrUnexpectedEOF, errors.Cause(a.EnsureMetadataLoaded()))
}

func TestAssembler_NonVclUnits(t *testing.T) {
	ts := newTestStream(t, true)
	ts.parameterSets().idr()
	ts.nal([]byte{hevc.NalSeiPrefix << 1, 0x01, 0x96, 0x01, 0xc0, 0x80})
	ts.p(1)
	ts.nal([]byte{hevc.NalFdNut << 1, 0x01, 0xff, 0x80})

	a := NewAssembler(ts.source(), Config{}, nil)
	au, err := a.Next()
	require.NoError(t, err)
	assert.Len(t, au.Nals, 4)

	au, err = a.Next()
	require.NoError(t, err)
	assert.Len(t, au.Nals, 3)
	assert.Len(t, au.Sei, 1)
	assert.Equal(t, []int{0}, au.RefDecodeIndices)

	// Sample 只包含 SEI 和 VCL
	sample := au.Sample()
	assert.Equal(t, []byte{0, 0, 0, 6, hevc.NalSeiPrefix << 1, 0x01}, sample[:6])
	assert.Equal(t, 4+6+4+len(au.Vcl[0]), len(sample))
}
