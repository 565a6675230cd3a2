// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"encoding/base64"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pocSlice(sps *H265RawSPS, nalType uint8, lsb uint16) *H265RawSliceHeader {
	sh := &H265RawSliceHeader{
		Nal_unit_header:         H265RawNALUnitHeader{Nal_unit_type: nalType, Nuh_temporal_id_plus1: 1},
		Slice_pic_order_cnt_lsb: lsb,
	}
	sh.sps = sps
	return sh
}

func TestContext_DecodePoc(t *testing.T) {
	sps := testSps(t) // MaxPicOrderCntLsb = 256
	c := NewContext(nil)

	steps := []struct {
		name     string
		nalType  uint8
		lsb      uint16
		poc      int32
		noRasl   bool
		skipRasl bool
	}{
		{"idr", NalIdrWRadl, 0, 0, true, false},
		{"trail", NalTrailR, 200, 200, true, false},
		{"lsb_wrap", NalTrailR, 10, 266, true, false},
		{"sub_layer_non_ref", NalTrailN, 250, 250, true, false},
		{"prev_not_updated", NalTrailR, 20, 276, true, false},
		{"cra_in_sequence", NalCraNut, 30, 286, false, false},
		{"rasl", NalRaslR, 25, 281, false, false},
	}
	for _, st := range steps {
		sh := pocSlice(sps, st.nalType, st.lsb)
		poc := c.DecodePoc(sh, &sh.Nal_unit_header)
		assert.Equal(t, st.poc, poc, st.name)
		assert.Equal(t, st.noRasl, c.NoRaslOutputFlag(), st.name)
		assert.Equal(t, st.skipRasl, c.RaslSkipped(&sh.Nal_unit_header), st.name)
	}

	// EOS 之后的 CRA 开始新的序列
	c.EndOfSequence()
	cra := pocSlice(sps, NalCraNut, 5)
	assert.Equal(t, int32(5), c.DecodePoc(cra, &cra.Nal_unit_header))
	assert.True(t, c.NoRaslOutputFlag())
	rasl := pocSlice(sps, NalRaslN, 3)
	assert.Equal(t, int32(3), c.DecodePoc(rasl, &rasl.Nal_unit_header))
	assert.True(t, c.RaslSkipped(&rasl.Nal_unit_header))
}

func TestContext_DecodePoc_NegativeMsb(t *testing.T) {
	sps := testSps(t)
	c := NewContext(nil)
	c.prevPicOrderCntLsb = 2
	c.prevPicOrderCntMsb = 256
	c.firstPicture = false

	sh := pocSlice(sps, NalTrailR, 250)
	assert.Equal(t, int32(250), c.DecodePoc(sh, &sh.Nal_unit_header))

	c.ResetPoc()
	sh = pocSlice(sps, NalTrailR, 200)
	assert.Equal(t, int32(-56), c.DecodePoc(sh, &sh.Nal_unit_header))
}

func TestParameterSetMap(t *testing.T) {
	var m ParameterSetMap
	sps := testSps(t)
	m.PutSps(sps)
	assert.Equal(t, sps, m.Sps(0))
	assert.False(t, sps == m.Sps(0), "stored a copy")

	m.PutPps(testPps(5, nil))
	m.PutPps(testPps(1, nil))
	changed := testPps(5, func(pps *H265RawPPS) { pps.Init_qp_minus26 = 4 })
	m.PutPps(changed)

	assert.Equal(t, []uint8{0}, m.SpsIDs())
	assert.Equal(t, []uint8{1, 5}, m.PpsIDs())
	assert.Equal(t, int8(4), m.Pps(5).Init_qp_minus26)
	assert.Nil(t, m.Pps(2))
	assert.Nil(t, m.Pps(200))
	assert.Nil(t, m.Sps(200))
	assert.Nil(t, m.Vps(0))
}

func TestContext_PutParameterSet(t *testing.T) {
	c := NewContext(nil)

	sps, err := base64.StdEncoding.DecodeString(testSpsB64)
	require.NoError(t, err)
	require.NoError(t, c.PutParameterSet(sps))
	require.NotNil(t, c.Sps(0))
	assert.Equal(t, 1280, c.Sps(0).Width())

	pps, err := testPps(0, nil).Encode()
	require.NoError(t, err)
	require.NoError(t, c.PutParameterSet(append([]byte{0, 0, 1}, pps...)))
	require.NotNil(t, c.Pps(0))

	sei, err := EncodeSeiNal(true, true, &CubemapProjection{})
	require.NoError(t, err)
	err = c.PutParameterSet(sei)
	assert.Equal(t, ErrMalformedSyntax, errors.Cause(err))
}

func TestContext_DecodeSliceHeader(t *testing.T) {
	c := NewContext(nil)
	c.PutSps(testSps(t))
	pps := testPps(0, func(pps *H265RawPPS) { pps.Dependent_slice_segments_enabled_flag = 1 })
	c.PutPps(pps)

	first, err := testIdrSlice().Encode(c.Sps(0), pps, nil)
	require.NoError(t, err)
	dep := &H265RawSliceHeader{
		Nal_unit_header:              H265RawNALUnitHeader{Nal_unit_type: NalIdrWRadl, Nuh_temporal_id_plus1: 1},
		Dependent_slice_segment_flag: 1,
		Slice_segment_address:        100,
	}
	depNal, err := dep.Encode(c.Sps(0), pps, nil)
	require.NoError(t, err)

	sh, err := c.DecodeSliceHeader(first)
	require.NoError(t, err)
	assert.Equal(t, int8(3), sh.Slice_qp_delta)

	sh, err = c.DecodeSliceHeader(depNal)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), sh.Slice_segment_address)
	assert.Equal(t, int8(3), sh.Slice_qp_delta)

	// EOS 之后不再有可继承的独立片段
	c.EndOfSequence()
	_, err = c.DecodeSliceHeader(depNal)
	assert.Equal(t, ErrMalformedSyntax, errors.Cause(err))
}

func addRefs(c *Context, pocs ...int32) {
	for i, poc := range pocs {
		c.Dpb().Add(Picture{Poc: poc, CodingIndex: i, IsReference: true})
	}
}

func TestContext_DecodeRefPicSet(t *testing.T) {
	sps := testSps(t)
	c := NewContext(nil)
	addRefs(c, 0, 1, 2)

	sh := pocSlice(sps, NalTrailR, 3)
	sh.StRps = ShortTermRefPicSet{
		NumNegativePics: 3,
		NumDeltaPocs:    3,
		DeltaPocS0:      []int32{-1, -3, -5},
		UsedByCurrPicS0: []bool{true, false, true},
	}
	rps, err := c.DecodeRefPicSet(sh, 3)
	require.NoError(t, err)

	assert.Equal(t, []int32{2, -2}, rps.PocStCurrBefore)
	assert.Equal(t, []int32{0}, rps.PocStFoll)
	assert.Equal(t, []int{2, NoPicture}, rps.StCurrBefore)
	assert.Equal(t, []int{0}, rps.StFoll)
	assert.Empty(t, rps.StCurrAfter)
	assert.Equal(t, 2, rps.NumPicTotalCurr())

	assert.True(t, c.Dpb().At(0).IsReference)
	assert.False(t, c.Dpb().At(1).IsReference)
	assert.True(t, c.Dpb().At(2).IsReference)

	// 仍在 DPB 中的非参考图像可以被重新标记
	sh.StRps.DeltaPocS0 = []int32{-2, -3, -5}
	rps, err = c.DecodeRefPicSet(sh, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, NoPicture}, rps.StCurrBefore)
	assert.Equal(t, []int{0}, rps.StFoll)
	assert.True(t, c.Dpb().At(1).IsReference)
	assert.False(t, c.Dpb().At(2).IsReference)
}

func TestContext_DecodeRefPicSet_Irap(t *testing.T) {
	sps := testSps(t)
	c := NewContext(nil)
	addRefs(c, 0, 1)

	idr := pocSlice(sps, NalIdrNLp, 0)
	poc := c.DecodePoc(idr, &idr.Nal_unit_header)
	rps, err := c.DecodeRefPicSet(idr, poc)
	require.NoError(t, err)
	assert.Zero(t, rps.NumPicTotalCurr())
	for i := 0; i < c.Dpb().Len(); i++ {
		assert.False(t, c.Dpb().At(i).IsReference)
	}

	// 之前编码视频序列中的图像不再参与匹配
	c.Dpb().Add(Picture{Poc: poc, CodingIndex: 2, IsReference: true})
	p := pocSlice(sps, NalTrailR, 2)
	p.StRps = ShortTermRefPicSet{
		NumNegativePics: 2,
		NumDeltaPocs:    2,
		DeltaPocS0:      []int32{-1, -2},
		UsedByCurrPicS0: []bool{true, true},
	}
	rps, err = c.DecodeRefPicSet(p, c.DecodePoc(p, &p.Nal_unit_header))
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 0}, rps.PocStCurrBefore)
	assert.Equal(t, []int{NoPicture, 2}, rps.StCurrBefore)
	assert.False(t, c.Dpb().At(0).IsReference)
	assert.False(t, c.Dpb().At(1).IsReference)
	assert.True(t, c.Dpb().At(2).IsReference)
}

func TestContext_DecodeRefPicSet_LongTerm(t *testing.T) {
	sps := testSps(t)
	c := NewContext(nil)
	addRefs(c, 0, 257, 258)

	sh := pocSlice(sps, NalTrailR, 44)
	sh.StRps = ShortTermRefPicSet{
		NumNegativePics: 1,
		NumDeltaPocs:    1,
		DeltaPocS0:      []int32{-42},
		UsedByCurrPicS0: []bool{true},
	}
	sh.Num_long_term_pics = 2
	sh.Poc_lsb_lt[0] = 1
	sh.Used_by_curr_pic_lt_flag[0] = 1
	sh.Poc_lsb_lt[1] = 1
	sh.Delta_poc_msb_present_flag[1] = 1
	sh.Delta_poc_msb_cycle_lt[1] = 1

	rps, err := c.DecodeRefPicSet(sh, 300)
	require.NoError(t, err)

	assert.Equal(t, []int32{1}, rps.PocLtCurr)
	assert.Equal(t, []int{1}, rps.LtCurr)
	assert.Equal(t, []int32{1}, rps.PocLtFoll)
	assert.Equal(t, []bool{true}, rps.FollDeltaPocMsbPresentFlag)
	assert.Equal(t, []int{NoPicture}, rps.LtFoll)
	assert.Equal(t, []int{2}, rps.StCurrBefore)
	assert.Equal(t, 2, rps.NumPicTotalCurr())

	assert.False(t, c.Dpb().At(0).IsReference)
	assert.True(t, c.Dpb().At(1).IsLongTerm)
	assert.True(t, c.Dpb().At(2).IsReference)
	assert.False(t, c.Dpb().At(2).IsLongTerm)
}
