// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
//
// Translate from FFmpeg cbs_h265.h cbs_h265_syntax_template.c
//
package hevc

import (
	"github.com/cnotch/omafhevc/utils"
	"github.com/pkg/errors"
)

// ParameterSets 按 ID 查询当前持有的参数集
type ParameterSets interface {
	Sps(id uint8) *H265RawSPS
	Pps(id uint8) *H265RawPPS
}

// H265RawRefPicListsModification ref_pic_lists_modification()
type H265RawRefPicListsModification struct {
	Ref_pic_list_modification_flag_l0 uint8
	List_entry_l0                     [HEVC_MAX_REFS]uint8
	Ref_pic_list_modification_flag_l1 uint8
	List_entry_l1                     [HEVC_MAX_REFS]uint8
}

// H265RawPredWeightTable pred_weight_table()
type H265RawPredWeightTable struct {
	Luma_log2_weight_denom         uint8
	Delta_chroma_log2_weight_denom int8

	Luma_weight_l0_flag    [HEVC_MAX_REFS]uint8
	Chroma_weight_l0_flag  [HEVC_MAX_REFS]uint8
	Delta_luma_weight_l0   [HEVC_MAX_REFS]int8
	Luma_offset_l0         [HEVC_MAX_REFS]int16
	Delta_chroma_weight_l0 [HEVC_MAX_REFS][2]int8
	Delta_chroma_offset_l0 [HEVC_MAX_REFS][2]int16

	Luma_weight_l1_flag    [HEVC_MAX_REFS]uint8
	Chroma_weight_l1_flag  [HEVC_MAX_REFS]uint8
	Delta_luma_weight_l1   [HEVC_MAX_REFS]int8
	Luma_offset_l1         [HEVC_MAX_REFS]int16
	Delta_chroma_weight_l1 [HEVC_MAX_REFS][2]int8
	Delta_chroma_offset_l1 [HEVC_MAX_REFS][2]int16
}

// H265RawSliceHeader slice_segment_header()
type H265RawSliceHeader struct {
	Nal_unit_header H265RawNALUnitHeader

	First_slice_segment_in_pic_flag uint8
	No_output_of_prior_pics_flag    uint8
	Slice_pic_parameter_set_id      uint8

	Dependent_slice_segment_flag uint8
	Slice_segment_address        uint32

	Slice_reserved_flag [8]uint8
	Slice_type          uint8

	Pic_output_flag uint8
	Colour_plane_id uint8

	Slice_pic_order_cnt_lsb uint16

	Short_term_ref_pic_set_sps_flag uint8
	Short_term_ref_pic_set          H265RawSTRefPicSet
	Short_term_ref_pic_set_idx      uint8

	Num_long_term_sps          uint8
	Num_long_term_pics         uint8
	Lt_idx_sps                 [HEVC_MAX_REFS]uint8
	Poc_lsb_lt                 [HEVC_MAX_REFS]uint16
	Used_by_curr_pic_lt_flag   [HEVC_MAX_REFS]uint8
	Delta_poc_msb_present_flag [HEVC_MAX_REFS]uint8
	Delta_poc_msb_cycle_lt     [HEVC_MAX_REFS]uint32

	Slice_temporal_mvp_enabled_flag uint8

	Slice_sao_luma_flag   uint8
	Slice_sao_chroma_flag uint8

	Num_ref_idx_active_override_flag uint8
	Num_ref_idx_l0_active_minus1     uint8
	Num_ref_idx_l1_active_minus1     uint8

	Rpl_modification H265RawRefPicListsModification

	Mvd_l1_zero_flag        uint8
	Cabac_init_flag         uint8
	Collocated_from_l0_flag uint8
	Collocated_ref_idx      uint8

	Pred_weight_table H265RawPredWeightTable

	Five_minus_max_num_merge_cand uint8

	Slice_qp_delta     int8
	Slice_cb_qp_offset int8
	Slice_cr_qp_offset int8

	Cu_chroma_qp_offset_enabled_flag uint8

	Deblocking_filter_override_flag       uint8
	Slice_deblocking_filter_disabled_flag uint8
	Slice_beta_offset_div2                int8
	Slice_tc_offset_div2                  int8

	Slice_loop_filter_across_slices_enabled_flag uint8

	Num_entry_point_offsets   uint16
	Offset_len_minus1         uint8
	Entry_point_offset_minus1 []uint32

	Slice_segment_header_extension_length    uint16
	Slice_segment_header_extension_data_byte []uint8

	// StRps 当前图像使用的短期参考图像集(CurrRpsIdx)
	StRps ShortTermRefPicSet
	// NumPicTotalCurr 当前图像可用的参考图像数
	NumPicTotalCurr int
	// Slice_data_byte_offset 片头(含 NAL 头及 byte_alignment)在 RBSP 中占用的字节数
	Slice_data_byte_offset int

	sps *H265RawSPS
	pps *H265RawPPS
}

// DecodeSliceHeader 解码独立片段的片头，依赖片段的继承由 Context 处理
func DecodeSliceHeader(rbsp []byte, ps ParameterSets) (*H265RawSliceHeader, error) {
	sh := new(H265RawSliceHeader)
	if err := sh.DecodeRbsp(rbsp, ps, nil); err != nil {
		return nil, err
	}
	return sh, nil
}

// Sps 解码或编码片头时使用的 SPS
func (sh *H265RawSliceHeader) Sps() *H265RawSPS { return sh.sps }

// Pps 解码或编码片头时使用的 PPS
func (sh *H265RawSliceHeader) Pps() *H265RawPPS { return sh.pps }

// IsIntra .
func (sh *H265RawSliceHeader) IsIntra() bool { return sh.Slice_type == SliceI }

// NumLongTerm 长期参考图像条目数
func (sh *H265RawSliceHeader) NumLongTerm() int {
	return int(sh.Num_long_term_sps) + int(sh.Num_long_term_pics)
}

// Decode 从字节流格式的 NAL 中解码片头，起始码可选。
// prev 为同一图像中前一个独立片段的片头，依赖片段从中继承字段。
func (sh *H265RawSliceHeader) Decode(data []byte, ps ParameterSets, prev *H265RawSliceHeader) error {
	return sh.DecodeRbsp(nalPayload(data), ps, prev)
}

// DecodeRbsp 从 RBSP(含 NAL 头) 中解码片头，SPS/PPS 从 ps 中按 ID 查找。
func (sh *H265RawSliceHeader) DecodeRbsp(rbsp []byte, ps ParameterSets, prev *H265RawSliceHeader) (err error) {
	defer recoverSyntax(&err, "slice header")

	*sh = H265RawSliceHeader{}
	s := newReadStream(rbsp)
	sh.syntax(s, func(ppsID uint8) (*H265RawSPS, *H265RawPPS, error) {
		pps := ps.Pps(ppsID)
		if pps == nil {
			return nil, nil, errors.Wrapf(ErrMissingParameterSet, "pps %d", ppsID)
		}
		sps := ps.Sps(pps.Pps_seq_parameter_set_id)
		if sps == nil {
			return nil, nil, errors.Wrapf(ErrMissingParameterSet, "sps %d", pps.Pps_seq_parameter_set_id)
		}
		return sps, pps, nil
	}, prev)
	return s.Err()
}

// EncodeRbsp 使用指定的 SPS/PPS 编码片头，结果为含 NAL 头和 byte_alignment 的 RBSP。
// 码流中不出现的字段被置为其推导值。
func (sh *H265RawSliceHeader) EncodeRbsp(sps *H265RawSPS, pps *H265RawPPS) (rbsp []byte, err error) {
	defer recoverSyntax(&err, "slice header")

	s := newWriteStream(make([]byte, 0, 64))
	sh.syntax(s, func(uint8) (*H265RawSPS, *H265RawPPS, error) {
		return sps, pps, nil
	}, nil)
	if err = s.Err(); err != nil {
		return nil, err
	}
	return s.w.Bytes(), nil
}

// Encode 编码片头并追加片数据(RBSP 形式)，返回字节流格式的 NAL(不含起始码)
func (sh *H265RawSliceHeader) Encode(sps *H265RawSPS, pps *H265RawPPS, sliceData []byte) ([]byte, error) {
	rbsp, err := sh.EncodeRbsp(sps, pps)
	if err != nil {
		return nil, err
	}
	return utils.ToByteStream(append(rbsp, sliceData...), false), nil
}

type parameterSetsResolver func(ppsID uint8) (*H265RawSPS, *H265RawPPS, error)

func (sh *H265RawSliceHeader) syntax(s *bitstream, resolve parameterSetsResolver, prev *H265RawSliceHeader) {
	sh.Nal_unit_header.syntax(s)
	if !s.failed() && !sh.Nal_unit_header.IsVcl() {
		s.fail("nal unit type %d is not a slice", sh.Nal_unit_header.Nal_unit_type)
	}
	if s.failed() {
		return
	}
	nh := &sh.Nal_unit_header

	s.flag(&sh.First_slice_segment_in_pic_flag)
	if nh.IsIrap() {
		s.flag(&sh.No_output_of_prior_pics_flag)
	}
	s.ue8("slice_pic_parameter_set_id", &sh.Slice_pic_parameter_set_id, 0, HEVC_MAX_PPS_COUNT-1)
	if s.failed() {
		return
	}

	sps, pps, err := resolve(sh.Slice_pic_parameter_set_id)
	if err != nil {
		s.setErr(err)
		return
	}

	if sh.First_slice_segment_in_pic_flag == 0 {
		if pps.Dependent_slice_segments_enabled_flag == 1 {
			s.flag(&sh.Dependent_slice_segment_flag)
		} else {
			sh.Dependent_slice_segment_flag = 0
		}

		picSizeInCtbsY := sps.PicSizeInCtbsY()
		s.u32(CeilLog2(uint32(picSizeInCtbsY)), &sh.Slice_segment_address)
		if int(sh.Slice_segment_address) >= picSizeInCtbsY {
			s.fail("slice_segment_address out of range: %d", sh.Slice_segment_address)
			return
		}
	} else {
		sh.Dependent_slice_segment_flag = 0
		sh.Slice_segment_address = 0
	}

	if sh.Dependent_slice_segment_flag == 0 {
		sh.independentSyntax(s, sps, pps)
	} else if s.reading() {
		if prev == nil {
			s.fail("dependent slice segment without preceding independent slice segment")
			return
		}
		sh.inherit(prev)
	}
	if s.failed() {
		return
	}
	sh.sps, sh.pps = sps, pps

	if pps.Tiles_enabled_flag == 1 || pps.Entropy_coding_sync_enabled_flag == 1 {
		var maxOffsets int
		switch {
		case pps.Tiles_enabled_flag == 1 && pps.Entropy_coding_sync_enabled_flag == 0:
			maxOffsets = pps.NumTileColumns()*pps.NumTileRows() - 1
		case pps.Tiles_enabled_flag == 0 && pps.Entropy_coding_sync_enabled_flag == 1:
			maxOffsets = sps.PicHeightInCtbsY() - 1
		default:
			maxOffsets = pps.NumTileColumns()*sps.PicHeightInCtbsY() - 1
		}
		if maxOffsets > HEVC_MAX_ENTRY_POINT_OFFSETS {
			maxOffsets = HEVC_MAX_ENTRY_POINT_OFFSETS
		}

		s.ue16("num_entry_point_offsets", &sh.Num_entry_point_offsets, 0, uint32(maxOffsets))
		n := int(sh.Num_entry_point_offsets)
		if n > 0 {
			s.ue8("offset_len_minus1", &sh.Offset_len_minus1, 0, 31)
			if s.reading() {
				sh.Entry_point_offset_minus1 = make([]uint32, n)
			} else if len(sh.Entry_point_offset_minus1) < n {
				s.fail("slice header has %d entry point offsets, %d expected", len(sh.Entry_point_offset_minus1), n)
				return
			}
			for i := 0; i < n; i++ {
				s.u32(int(sh.Offset_len_minus1)+1, &sh.Entry_point_offset_minus1[i])
			}
		}
	}

	if pps.Slice_segment_header_extension_present_flag == 1 {
		s.ue16("slice_segment_header_extension_length", &sh.Slice_segment_header_extension_length, 0, 256)
		n := int(sh.Slice_segment_header_extension_length)
		if s.reading() {
			sh.Slice_segment_header_extension_data_byte = make([]uint8, n)
		} else if len(sh.Slice_segment_header_extension_data_byte) < n {
			s.fail("slice header extension has %d bytes, %d expected", len(sh.Slice_segment_header_extension_data_byte), n)
			return
		}
		for i := 0; i < n; i++ {
			s.u8(8, &sh.Slice_segment_header_extension_data_byte[i])
		}
	}

	s.trailingBits() // byte_alignment()
	if s.reading() {
		sh.Slice_data_byte_offset = s.offset() >> 3
	}
}

// inherit 依赖片段继承前一个独立片段的片头字段
func (sh *H265RawSliceHeader) inherit(prev *H265RawSliceHeader) {
	nh := sh.Nal_unit_header
	first := sh.First_slice_segment_in_pic_flag
	noOutput := sh.No_output_of_prior_pics_flag
	ppsID := sh.Slice_pic_parameter_set_id
	address := sh.Slice_segment_address

	*sh = *prev

	sh.Nal_unit_header = nh
	sh.First_slice_segment_in_pic_flag = first
	sh.No_output_of_prior_pics_flag = noOutput
	sh.Slice_pic_parameter_set_id = ppsID
	sh.Dependent_slice_segment_flag = 1
	sh.Slice_segment_address = address

	sh.Num_entry_point_offsets = 0
	sh.Offset_len_minus1 = 0
	sh.Entry_point_offset_minus1 = nil
	sh.Slice_segment_header_extension_length = 0
	sh.Slice_segment_header_extension_data_byte = nil
	sh.Slice_data_byte_offset = 0
}

func (sh *H265RawSliceHeader) independentSyntax(s *bitstream, sps *H265RawSPS, pps *H265RawPPS) {
	nh := &sh.Nal_unit_header

	for i := 0; i < int(pps.Num_extra_slice_header_bits); i++ {
		s.flag(&sh.Slice_reserved_flag[i])
	}

	s.ue8("slice_type", &sh.Slice_type, 0, 2)
	if nh.IsIrap() && sh.Slice_type != SliceI && !s.failed() {
		s.fail("irap picture with slice_type %d", sh.Slice_type)
		return
	}

	if pps.Output_flag_present_flag == 1 {
		s.flag(&sh.Pic_output_flag)
	} else {
		sh.Pic_output_flag = 1
	}

	if sps.Separate_colour_plane_flag == 1 {
		s.u8(2, &sh.Colour_plane_id)
	}

	if !nh.IsIdr() {
		s.u16(sps.Log2MaxPicOrderCntLsb(), &sh.Slice_pic_order_cnt_lsb)

		numStRps := int(sps.Num_short_term_ref_pic_sets)
		s.flag(&sh.Short_term_ref_pic_set_sps_flag)
		if sh.Short_term_ref_pic_set_sps_flag == 0 {
			sh.Short_term_ref_pic_set.syntax(s, numStRps, numStRps, sps.StRps)
			if s.failed() {
				return
			}
			st, err := sh.Short_term_ref_pic_set.Derive(numStRps, sps.StRps)
			if err != nil {
				s.setErr(err)
				return
			}
			sh.StRps = st
		} else {
			if numStRps == 0 {
				s.fail("short_term_ref_pic_set_sps_flag set without short-term ref pic sets in sps")
				return
			}
			if numStRps > 1 {
				s.u8(CeilLog2(uint32(numStRps)), &sh.Short_term_ref_pic_set_idx)
				if int(sh.Short_term_ref_pic_set_idx) >= numStRps {
					s.fail("short_term_ref_pic_set_idx out of range: %d", sh.Short_term_ref_pic_set_idx)
					return
				}
			} else {
				sh.Short_term_ref_pic_set_idx = 0
			}
			sh.StRps = sps.StRps[sh.Short_term_ref_pic_set_idx]
		}

		if sps.Long_term_ref_pics_present_flag == 1 {
			sh.longTermSyntax(s, sps)
		}

		if sps.Sps_temporal_mvp_enabled_flag == 1 {
			s.flag(&sh.Slice_temporal_mvp_enabled_flag)
		} else {
			sh.Slice_temporal_mvp_enabled_flag = 0
		}
	} else {
		sh.Slice_pic_order_cnt_lsb = 0
		sh.StRps = ShortTermRefPicSet{}
	}

	sh.NumPicTotalCurr = sh.StRps.NumUsedByCurrPic()
	for i := 0; i < sh.NumLongTerm(); i++ {
		if sh.usedByCurrPicLt(i, sps) {
			sh.NumPicTotalCurr++
		}
	}

	if sps.Sample_adaptive_offset_enabled_flag == 1 {
		s.flag(&sh.Slice_sao_luma_flag)
		if sps.ChromaArrayType() != 0 {
			s.flag(&sh.Slice_sao_chroma_flag)
		} else {
			sh.Slice_sao_chroma_flag = 0
		}
	} else {
		sh.Slice_sao_luma_flag = 0
		sh.Slice_sao_chroma_flag = 0
	}

	if sh.Slice_type == SliceP || sh.Slice_type == SliceB {
		s.flag(&sh.Num_ref_idx_active_override_flag)
		if sh.Num_ref_idx_active_override_flag == 1 {
			s.ue8("num_ref_idx_l0_active_minus1", &sh.Num_ref_idx_l0_active_minus1, 0, HEVC_MAX_REFS-2)
			if sh.Slice_type == SliceB {
				s.ue8("num_ref_idx_l1_active_minus1", &sh.Num_ref_idx_l1_active_minus1, 0, HEVC_MAX_REFS-2)
			} else {
				sh.Num_ref_idx_l1_active_minus1 = 0
			}
		} else {
			sh.Num_ref_idx_l0_active_minus1 = pps.Num_ref_idx_l0_default_active_minus1
			sh.Num_ref_idx_l1_active_minus1 = 0
			if sh.Slice_type == SliceB {
				sh.Num_ref_idx_l1_active_minus1 = pps.Num_ref_idx_l1_default_active_minus1
			}
		}

		if pps.Lists_modification_present_flag == 1 && sh.NumPicTotalCurr > 1 {
			sh.Rpl_modification.syntax(s, sh)
		}

		if sh.Slice_type == SliceB {
			s.flag(&sh.Mvd_l1_zero_flag)
		}
		if pps.Cabac_init_present_flag == 1 {
			s.flag(&sh.Cabac_init_flag)
		} else {
			sh.Cabac_init_flag = 0
		}

		if sh.Slice_temporal_mvp_enabled_flag == 1 {
			if sh.Slice_type == SliceB {
				s.flag(&sh.Collocated_from_l0_flag)
			} else {
				sh.Collocated_from_l0_flag = 1
			}
			if (sh.Collocated_from_l0_flag == 1 && sh.Num_ref_idx_l0_active_minus1 > 0) ||
				(sh.Collocated_from_l0_flag == 0 && sh.Num_ref_idx_l1_active_minus1 > 0) {
				max := sh.Num_ref_idx_l0_active_minus1
				if sh.Collocated_from_l0_flag == 0 {
					max = sh.Num_ref_idx_l1_active_minus1
				}
				s.ue8("collocated_ref_idx", &sh.Collocated_ref_idx, 0, uint32(max))
			} else {
				sh.Collocated_ref_idx = 0
			}
		}

		if (pps.Weighted_pred_flag == 1 && sh.Slice_type == SliceP) ||
			(pps.Weighted_bipred_flag == 1 && sh.Slice_type == SliceB) {
			sh.Pred_weight_table.syntax(s, sh, sps)
		}

		s.ue8("five_minus_max_num_merge_cand", &sh.Five_minus_max_num_merge_cand, 0, 4)
	}

	qpBdOffsetY := 6 * int32(sps.Bit_depth_luma_minus8)
	initQp := 26 + int32(pps.Init_qp_minus26)
	s.se8("slice_qp_delta", &sh.Slice_qp_delta, -qpBdOffsetY-initQp, 51-initQp)

	if pps.Pps_slice_chroma_qp_offsets_present_flag == 1 {
		s.se8("slice_cb_qp_offset", &sh.Slice_cb_qp_offset, -12, 12)
		s.se8("slice_cr_qp_offset", &sh.Slice_cr_qp_offset, -12, 12)
	} else {
		sh.Slice_cb_qp_offset = 0
		sh.Slice_cr_qp_offset = 0
	}

	if pps.Chroma_qp_offset_list_enabled_flag == 1 {
		s.flag(&sh.Cu_chroma_qp_offset_enabled_flag)
	} else {
		sh.Cu_chroma_qp_offset_enabled_flag = 0
	}

	if pps.Deblocking_filter_override_enabled_flag == 1 {
		s.flag(&sh.Deblocking_filter_override_flag)
	} else {
		sh.Deblocking_filter_override_flag = 0
	}
	if sh.Deblocking_filter_override_flag == 1 {
		s.flag(&sh.Slice_deblocking_filter_disabled_flag)
		if sh.Slice_deblocking_filter_disabled_flag == 0 {
			s.se8("slice_beta_offset_div2", &sh.Slice_beta_offset_div2, -6, 6)
			s.se8("slice_tc_offset_div2", &sh.Slice_tc_offset_div2, -6, 6)
		}
	} else {
		sh.Slice_deblocking_filter_disabled_flag = pps.Pps_deblocking_filter_disabled_flag
		sh.Slice_beta_offset_div2 = pps.Pps_beta_offset_div2
		sh.Slice_tc_offset_div2 = pps.Pps_tc_offset_div2
	}

	if pps.Pps_loop_filter_across_slices_enabled_flag == 1 &&
		(sh.Slice_sao_luma_flag == 1 || sh.Slice_sao_chroma_flag == 1 ||
			sh.Slice_deblocking_filter_disabled_flag == 0) {
		s.flag(&sh.Slice_loop_filter_across_slices_enabled_flag)
	} else {
		sh.Slice_loop_filter_across_slices_enabled_flag = pps.Pps_loop_filter_across_slices_enabled_flag
	}
}

func (sh *H265RawSliceHeader) longTermSyntax(s *bitstream, sps *H265RawSPS) {
	if sps.Num_long_term_ref_pics_sps > 0 {
		s.ue8("num_long_term_sps", &sh.Num_long_term_sps, 0, uint32(sps.Num_long_term_ref_pics_sps))
	} else {
		sh.Num_long_term_sps = 0
	}
	s.ue8("num_long_term_pics", &sh.Num_long_term_pics, 0, HEVC_MAX_REFS)
	if sh.NumLongTerm()+sh.StRps.NumDeltaPocs > HEVC_MAX_REFS {
		s.fail("too many long-term ref pics: %d", sh.NumLongTerm())
		return
	}

	ltIdxBits := CeilLog2(uint32(sps.Num_long_term_ref_pics_sps))
	for i := 0; i < sh.NumLongTerm(); i++ {
		if i < int(sh.Num_long_term_sps) {
			if sps.Num_long_term_ref_pics_sps > 1 {
				s.u8(ltIdxBits, &sh.Lt_idx_sps[i])
				if sh.Lt_idx_sps[i] >= sps.Num_long_term_ref_pics_sps {
					s.fail("lt_idx_sps out of range: %d", sh.Lt_idx_sps[i])
					return
				}
			} else {
				sh.Lt_idx_sps[i] = 0
			}
		} else {
			s.u16(sps.Log2MaxPicOrderCntLsb(), &sh.Poc_lsb_lt[i])
			s.flag(&sh.Used_by_curr_pic_lt_flag[i])
		}
		s.flag(&sh.Delta_poc_msb_present_flag[i])
		if sh.Delta_poc_msb_present_flag[i] == 1 {
			s.ue32("delta_poc_msb_cycle_lt", &sh.Delta_poc_msb_cycle_lt[i], 0, maxUe)
		} else {
			sh.Delta_poc_msb_cycle_lt[i] = 0
		}
	}
}

// PocLsbLt 第 i 个长期参考图像的 POC lsb (7-52)
func (sh *H265RawSliceHeader) PocLsbLt(i int, sps *H265RawSPS) int32 {
	if i < int(sh.Num_long_term_sps) {
		return int32(sps.Lt_ref_pic_poc_lsb_sps[sh.Lt_idx_sps[i]])
	}
	return int32(sh.Poc_lsb_lt[i])
}

func (sh *H265RawSliceHeader) usedByCurrPicLt(i int, sps *H265RawSPS) bool {
	if i < int(sh.Num_long_term_sps) {
		return sps.Used_by_curr_pic_lt_sps_flag[sh.Lt_idx_sps[i]] == 1
	}
	return sh.Used_by_curr_pic_lt_flag[i] == 1
}

// DeltaPocMsbCycleLt (7-52) 的累加形式：在 0 和 num_long_term_sps 处重新开始累加
func (sh *H265RawSliceHeader) DeltaPocMsbCycleLt() []int32 {
	n := sh.NumLongTerm()
	cycles := make([]int32, n)
	var sum int32
	for i := 0; i < n; i++ {
		if i == 0 || i == int(sh.Num_long_term_sps) {
			sum = 0
		}
		sum += int32(sh.Delta_poc_msb_cycle_lt[i])
		cycles[i] = sum
	}
	return cycles
}

func (rplm *H265RawRefPicListsModification) syntax(s *bitstream, sh *H265RawSliceHeader) {
	entryBits := CeilLog2(uint32(sh.NumPicTotalCurr))

	s.flag(&rplm.Ref_pic_list_modification_flag_l0)
	if rplm.Ref_pic_list_modification_flag_l0 == 1 {
		for i := 0; i <= int(sh.Num_ref_idx_l0_active_minus1); i++ {
			s.u8(entryBits, &rplm.List_entry_l0[i])
		}
	}

	if sh.Slice_type == SliceB {
		s.flag(&rplm.Ref_pic_list_modification_flag_l1)
		if rplm.Ref_pic_list_modification_flag_l1 == 1 {
			for i := 0; i <= int(sh.Num_ref_idx_l1_active_minus1); i++ {
				s.u8(entryBits, &rplm.List_entry_l1[i])
			}
		}
	}
}

func (pwt *H265RawPredWeightTable) syntax(s *bitstream, sh *H265RawSliceHeader, sps *H265RawSPS) {
	chroma := sps.ChromaArrayType() != 0

	s.ue8("luma_log2_weight_denom", &pwt.Luma_log2_weight_denom, 0, 7)
	if chroma {
		denom := int32(pwt.Luma_log2_weight_denom)
		s.se8("delta_chroma_log2_weight_denom", &pwt.Delta_chroma_log2_weight_denom, -denom, 7-denom)
	}

	lumaHalf := int32(1) << 7
	chromaHalf := int32(1) << 7
	if sps.High_precision_offsets_enabled_flag == 1 {
		lumaHalf = int32(1) << uint(sps.Bit_depth_luma_minus8+7)
		chromaHalf = int32(1) << uint(sps.Bit_depth_chroma_minus8+7)
	}

	list := func(n int, lumaFlag, chromaFlag *[HEVC_MAX_REFS]uint8,
		deltaLuma *[HEVC_MAX_REFS]int8, lumaOffset *[HEVC_MAX_REFS]int16,
		deltaChroma *[HEVC_MAX_REFS][2]int8, chromaOffset *[HEVC_MAX_REFS][2]int16) {
		// 单层且不参考当前图像，权重标志总是存在
		for i := 0; i <= n; i++ {
			s.flag(&lumaFlag[i])
		}
		if chroma {
			for i := 0; i <= n; i++ {
				s.flag(&chromaFlag[i])
			}
		}
		for i := 0; i <= n; i++ {
			if lumaFlag[i] == 1 {
				s.se8("delta_luma_weight", &deltaLuma[i], -128, 127)
				s.se16("luma_offset", &lumaOffset[i], -lumaHalf, lumaHalf-1)
			}
			if chromaFlag[i] == 1 {
				for j := 0; j < 2; j++ {
					s.se8("delta_chroma_weight", &deltaChroma[i][j], -128, 127)
					s.se16("delta_chroma_offset", &chromaOffset[i][j], -4*chromaHalf, 4*chromaHalf-1)
				}
			}
		}
	}

	list(int(sh.Num_ref_idx_l0_active_minus1), &pwt.Luma_weight_l0_flag, &pwt.Chroma_weight_l0_flag,
		&pwt.Delta_luma_weight_l0, &pwt.Luma_offset_l0, &pwt.Delta_chroma_weight_l0, &pwt.Delta_chroma_offset_l0)
	if sh.Slice_type == SliceB {
		list(int(sh.Num_ref_idx_l1_active_minus1), &pwt.Luma_weight_l1_flag, &pwt.Chroma_weight_l1_flag,
			&pwt.Delta_luma_weight_l1, &pwt.Luma_offset_l1, &pwt.Delta_chroma_weight_l1, &pwt.Delta_chroma_offset_l1)
	}
}
