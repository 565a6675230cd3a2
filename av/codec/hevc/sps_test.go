// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"encoding/base64"
	"testing"

	"github.com/cnotch/omafhevc/utils"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestH265RawSPS_DecodeString(t *testing.T) {
	tests := []struct {
		name    string
		b64     string
		wantW   int
		wantH   int
		wantFR  float64
		wantErr bool
	}{
		{
			"base64_1",
			"QgEBAWAAAAMAkAAAAwAAAwBdoAKAgC0WWVmkkyuAQAAA+kAAF3AC",
			1280,
			720,
			float64(24000) / float64(1001),
			false,
		},
		{
			"base64_2",
			"QgEBBAgAAAMAnQgAAAMAAF2wAoCALRZZWaSTK4BAAAADAEAAAAeC",
			1280,
			720,
			30,
			false,
		},
		{
			"tpl500-265",
			"AAAAAUIBAQFgAAADAAADAAADAAADAJagAWggBln3ja5JMmuWMAgAAAMACAAAAwB4QA==",
			2880,
			1620,
			15,
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sps := &H265RawSPS{}
			if err := sps.DecodeString(tt.b64); (err != nil) != tt.wantErr {
				t.Errorf("RawSPS.Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if sps.Width() != tt.wantW {
				t.Errorf("RawSPS.Parse() Width = %v, wantWidth %v", sps.Width(), tt.wantW)
			}
			if sps.Height() != tt.wantH {
				t.Errorf("RawSPS.Parse() Height = %v, wantHeight %v", sps.Height(), tt.wantH)
			}
			if sps.FrameRate() != tt.wantFR {
				t.Errorf("RawSPS.Parse() FrameRate = %v, wantFrameRate %v", sps.FrameRate(), tt.wantFR)
			}
		})
	}
}

func TestH265RawSPS_Encode(t *testing.T) {
	tests := []string{
		"QgEBAWAAAAMAkAAAAwAAAwBdoAKAgC0WWVmkkyuAQAAA+kAAF3AC",
		"QgEBBAgAAAMAnQgAAAMAAF2wAoCALRZZWaSTK4BAAAADAEAAAAeC",
		"AAAAAUIBAQFgAAADAAADAAADAAADAJagAWggBln3ja5JMmuWMAgAAAMACAAAAwB4QA==",
	}
	for _, b64 := range tests {
		t.Run(b64[:8], func(t *testing.T) {
			data, _ := base64.StdEncoding.DecodeString(b64)
			data = data[utils.StartCodeLen(data):]

			var sps H265RawSPS
			require.NoError(t, sps.Decode(data))
			got, err := sps.Encode()
			require.NoError(t, err)
			assert.Equal(t, data, got)

			rbsp, err := sps.EncodeRbsp()
			require.NoError(t, err)
			assert.Equal(t, utils.ToRBSP(data, false), rbsp)
		})
	}
}

func TestH265RawSPS_Derived(t *testing.T) {
	var sps H265RawSPS
	require.NoError(t, sps.DecodeString("AAAAAUIBAQFgAAADAAADAAADAAADAJagAWggBln3ja5JMmuWMAgAAAMACAAAAwB4QA=="))

	assert.Equal(t, 16, sps.Log2MaxPicOrderCntLsb())
	assert.Equal(t, int32(1<<16), sps.MaxPicOrderCntLsb())
	assert.Equal(t, 64, sps.CtbSizeY())
	assert.Equal(t, 45, sps.PicWidthInCtbsY())
	assert.Equal(t, 26, sps.PicHeightInCtbsY())
	assert.Equal(t, 45*26, sps.PicSizeInCtbsY())
	assert.Equal(t, uint8(1), sps.ChromaArrayType())

	require.Len(t, sps.StRps, 2)
	for _, st := range sps.StRps {
		assert.Equal(t, 1, st.NumNegativePics)
		assert.Equal(t, 0, st.NumPositivePics)
		assert.Equal(t, st.NumNegativePics+st.NumPositivePics, st.NumDeltaPocs)
		assert.Equal(t, []int32{-1}, st.DeltaPocS0)
	}
}

func TestH265RawSPS_Errors(t *testing.T) {
	var sps H265RawSPS
	data, _ := base64.StdEncoding.DecodeString("QgEBAWAAAAMAkAAAAwAAAwBdoAKAgC0WWVmkkyuAQAAA+kAAF3AC")

	err := sps.Decode(data[:12])
	assert.Error(t, err)

	// pps NAL 类型
	bad := append([]byte{0x44, 0x01}, data[2:]...)
	err = sps.Decode(bad)
	assert.Equal(t, ErrMalformedSyntax, errors.Cause(err))
}

func Benchmark_SPSDecode(b *testing.B) {
	spsstr := "QgEBAWAAAAMAkAAAAwAAAwBdoAKAgC0WWVmkkyuAQAAA+kAAF3ACQgEBAWAAAAMAkAAAAwAAAwBdoAKAgC0WWVmkkyuAQAAA+kAAF3AC"

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			sps := &H265RawSPS{}
			_ = sps.DecodeString(spsstr)
		}
	})
}
