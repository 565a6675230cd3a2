// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"github.com/cnotch/omafhevc/utils"
)

// H265RawSPS seq_parameter_set_rbsp()
type H265RawSPS struct {
	Nal_unit_header H265RawNALUnitHeader

	Sps_video_parameter_set_id uint8

	Sps_max_sub_layers_minus1    uint8
	Sps_temporal_id_nesting_flag uint8

	Profile_tier_level H265RawProfileTierLevel

	Sps_seq_parameter_set_id uint8

	Chroma_format_idc          uint8
	Separate_colour_plane_flag uint8

	Pic_width_in_luma_samples  uint16
	Pic_height_in_luma_samples uint16

	Conformance_window_flag uint8
	Conf_win_left_offset    uint16
	Conf_win_right_offset   uint16
	Conf_win_top_offset     uint16
	Conf_win_bottom_offset  uint16

	Bit_depth_luma_minus8   uint8
	Bit_depth_chroma_minus8 uint8

	Log2_max_pic_order_cnt_lsb_minus4 uint8

	Sps_sub_layer_ordering_info_present_flag uint8
	Sps_max_dec_pic_buffering_minus1         [HEVC_MAX_SUB_LAYERS]uint8
	Sps_max_num_reorder_pics                 [HEVC_MAX_SUB_LAYERS]uint8
	Sps_max_latency_increase_plus1           [HEVC_MAX_SUB_LAYERS]uint32

	Log2_min_luma_coding_block_size_minus3      uint8
	Log2_diff_max_min_luma_coding_block_size    uint8
	Log2_min_luma_transform_block_size_minus2   uint8
	Log2_diff_max_min_luma_transform_block_size uint8
	Max_transform_hierarchy_depth_inter         uint8
	Max_transform_hierarchy_depth_intra         uint8

	Scaling_list_enabled_flag          uint8
	Sps_scaling_list_data_present_flag uint8
	Scaling_list                       H265RawScalingList

	Amp_enabled_flag                    uint8
	Sample_adaptive_offset_enabled_flag uint8

	Pcm_enabled_flag                             uint8
	Pcm_sample_bit_depth_luma_minus1             uint8
	Pcm_sample_bit_depth_chroma_minus1           uint8
	Log2_min_pcm_luma_coding_block_size_minus3   uint8
	Log2_diff_max_min_pcm_luma_coding_block_size uint8
	Pcm_loop_filter_disabled_flag                uint8

	Num_short_term_ref_pic_sets uint8
	St_ref_pic_set              []H265RawSTRefPicSet //[HEVC_MAX_SHORT_TERM_REF_PIC_SETS]H265RawSTRefPicSet

	Long_term_ref_pics_present_flag uint8
	Num_long_term_ref_pics_sps      uint8
	Lt_ref_pic_poc_lsb_sps          [HEVC_MAX_LONG_TERM_REF_PICS]uint16
	Used_by_curr_pic_lt_sps_flag    [HEVC_MAX_LONG_TERM_REF_PICS]uint8

	Sps_temporal_mvp_enabled_flag       uint8
	Strong_intra_smoothing_enabled_flag uint8

	Vui_parameters_present_flag uint8
	Vui                         H265RawVUI

	Sps_extension_present_flag    uint8
	Sps_range_extension_flag      uint8
	Sps_multilayer_extension_flag uint8
	Sps_3d_extension_flag         uint8
	Sps_scc_extension_flag        uint8
	Sps_extension_4bits           uint8

	// Range extension.
	Transform_skip_rotation_enabled_flag    uint8
	Transform_skip_context_enabled_flag     uint8
	Implicit_rdpcm_enabled_flag             uint8
	Explicit_rdpcm_enabled_flag             uint8
	Extended_precision_processing_flag      uint8
	Intra_smoothing_disabled_flag           uint8
	High_precision_offsets_enabled_flag     uint8
	Persistent_rice_adaptation_enabled_flag uint8
	Cabac_bypass_alignment_enabled_flag     uint8

	// 多层、3D、屏幕内容编码等扩展不做解析，原样保存
	Extension_data H265RawExtensionData

	// StRps 按索引顺序推导的短期参考图像集
	StRps []ShortTermRefPicSet
}

// Width 视频宽度（像素），已按一致性窗口裁剪
func (sps *H265RawSPS) Width() int {
	subWidthC := 1
	if sps.ChromaArrayType() == 1 || sps.ChromaArrayType() == 2 {
		subWidthC = 2
	}
	return int(sps.Pic_width_in_luma_samples) -
		subWidthC*(int(sps.Conf_win_left_offset)+int(sps.Conf_win_right_offset))
}

// Height 视频高度（像素），已按一致性窗口裁剪
func (sps *H265RawSPS) Height() int {
	subHeightC := 1
	if sps.ChromaArrayType() == 1 {
		subHeightC = 2
	}
	return int(sps.Pic_height_in_luma_samples) -
		subHeightC*(int(sps.Conf_win_top_offset)+int(sps.Conf_win_bottom_offset))
}

// FrameRate Video frame rate
func (sps *H265RawSPS) FrameRate() float64 {
	if sps.Vui.Vui_num_units_in_tick == 0 {
		return 0.0
	}
	return float64(sps.Vui.Vui_time_scale) / float64(sps.Vui.Vui_num_units_in_tick)
}

// IsFixedFrameRate 是否固定帧率
func (sps *H265RawSPS) IsFixedFrameRate() bool {
	vui := &sps.Vui
	if vui.Vui_timing_info_present_flag == 1 && vui.Vui_hrd_parameters_present_flag == 1 {
		return vui.Hrd_parameters.Fixed_pic_rate_within_cvs_flag[sps.Sps_max_sub_layers_minus1] == 1
	}
	return true
}

// Log2MaxPicOrderCntLsb log2_max_pic_order_cnt_lsb_minus4 + 4
func (sps *H265RawSPS) Log2MaxPicOrderCntLsb() int {
	return int(sps.Log2_max_pic_order_cnt_lsb_minus4) + 4
}

// MaxPicOrderCntLsb MaxPicOrderCntLsb
func (sps *H265RawSPS) MaxPicOrderCntLsb() int32 {
	return 1 << uint(sps.Log2MaxPicOrderCntLsb())
}

// MinCbLog2SizeY .
func (sps *H265RawSPS) MinCbLog2SizeY() int {
	return int(sps.Log2_min_luma_coding_block_size_minus3) + 3
}

// CtbLog2SizeY .
func (sps *H265RawSPS) CtbLog2SizeY() int {
	return sps.MinCbLog2SizeY() + int(sps.Log2_diff_max_min_luma_coding_block_size)
}

// CtbSizeY CTU 尺寸
func (sps *H265RawSPS) CtbSizeY() int {
	return 1 << uint(sps.CtbLog2SizeY())
}

// PicWidthInCtbsY 以 CTU 为单位的图像宽度
func (sps *H265RawSPS) PicWidthInCtbsY() int {
	ctb := sps.CtbSizeY()
	return (int(sps.Pic_width_in_luma_samples) + ctb - 1) / ctb
}

// PicHeightInCtbsY 以 CTU 为单位的图像高度
func (sps *H265RawSPS) PicHeightInCtbsY() int {
	ctb := sps.CtbSizeY()
	return (int(sps.Pic_height_in_luma_samples) + ctb - 1) / ctb
}

// PicSizeInCtbsY .
func (sps *H265RawSPS) PicSizeInCtbsY() int {
	return sps.PicWidthInCtbsY() * sps.PicHeightInCtbsY()
}

// ChromaArrayType .
func (sps *H265RawSPS) ChromaArrayType() uint8 {
	if sps.Separate_colour_plane_flag == 1 {
		return 0
	}
	return sps.Chroma_format_idc
}

// DecodeString 从 base64 字串解码 sps NAL
func (sps *H265RawSPS) DecodeString(b64 string) error {
	data, err := decodeBase64(b64)
	if err != nil {
		return err
	}
	return sps.Decode(data)
}

// Decode 从字节流格式的 NAL 中解码 sps，起始码可选
func (sps *H265RawSPS) Decode(data []byte) (err error) {
	return sps.DecodeRbsp(nalPayload(data))
}

// DecodeRbsp 从 RBSP(含 NAL 头) 中解码 sps
func (sps *H265RawSPS) DecodeRbsp(rbsp []byte) (err error) {
	defer recoverSyntax(&err, "sps")

	*sps = H265RawSPS{}
	s := newReadStream(rbsp)
	sps.syntax(s)
	return s.Err()
}

// EncodeRbsp 编码成 RBSP(含 NAL 头)
func (sps *H265RawSPS) EncodeRbsp() (rbsp []byte, err error) {
	defer recoverSyntax(&err, "sps")

	s := newWriteStream(make([]byte, 0, 128))
	sps.syntax(s)
	if err = s.Err(); err != nil {
		return nil, err
	}
	return s.w.Bytes(), nil
}

// Encode 编码成字节流格式的 NAL(不含起始码)
func (sps *H265RawSPS) Encode() ([]byte, error) {
	rbsp, err := sps.EncodeRbsp()
	if err != nil {
		return nil, err
	}
	return utils.ToByteStream(rbsp, false), nil
}

func (sps *H265RawSPS) syntax(s *bitstream) {
	sps.Nal_unit_header.expect(s, NalSps)

	s.u8(4, &sps.Sps_video_parameter_set_id)
	s.u8(3, &sps.Sps_max_sub_layers_minus1)
	s.flag(&sps.Sps_temporal_id_nesting_flag)
	if s.failed() {
		return
	}
	if sps.Sps_max_sub_layers_minus1 >= HEVC_MAX_SUB_LAYERS {
		s.fail("sps_max_sub_layers_minus1 out of range: %d", sps.Sps_max_sub_layers_minus1)
		return
	}
	maxSubLayersMinus1 := int(sps.Sps_max_sub_layers_minus1)

	sps.Profile_tier_level.syntax(s, true, maxSubLayersMinus1)

	s.ue8("sps_seq_parameter_set_id", &sps.Sps_seq_parameter_set_id, 0, HEVC_MAX_SPS_COUNT-1)

	s.ue8("chroma_format_idc", &sps.Chroma_format_idc, 0, 3)
	if sps.Chroma_format_idc == 3 {
		s.flag(&sps.Separate_colour_plane_flag)
	} else if s.reading() {
		sps.Separate_colour_plane_flag = 0
	}

	s.ue16("pic_width_in_luma_samples", &sps.Pic_width_in_luma_samples, 1, HEVC_MAX_WIDTH)
	s.ue16("pic_height_in_luma_samples", &sps.Pic_height_in_luma_samples, 1, HEVC_MAX_HEIGHT)

	s.flag(&sps.Conformance_window_flag)
	if sps.Conformance_window_flag == 1 {
		s.ue16("conf_win_left_offset", &sps.Conf_win_left_offset, 0, uint32(sps.Pic_width_in_luma_samples))
		s.ue16("conf_win_right_offset", &sps.Conf_win_right_offset, 0, uint32(sps.Pic_width_in_luma_samples))
		s.ue16("conf_win_top_offset", &sps.Conf_win_top_offset, 0, uint32(sps.Pic_height_in_luma_samples))
		s.ue16("conf_win_bottom_offset", &sps.Conf_win_bottom_offset, 0, uint32(sps.Pic_height_in_luma_samples))
	}

	s.ue8("bit_depth_luma_minus8", &sps.Bit_depth_luma_minus8, 0, 8)
	s.ue8("bit_depth_chroma_minus8", &sps.Bit_depth_chroma_minus8, 0, 8)

	s.ue8("log2_max_pic_order_cnt_lsb_minus4", &sps.Log2_max_pic_order_cnt_lsb_minus4, 0, 12)

	s.flag(&sps.Sps_sub_layer_ordering_info_present_flag)
	i := maxSubLayersMinus1
	if sps.Sps_sub_layer_ordering_info_present_flag == 1 {
		i = 0
	}
	for ; i <= maxSubLayersMinus1; i++ {
		s.ue8("sps_max_dec_pic_buffering_minus1", &sps.Sps_max_dec_pic_buffering_minus1[i], 0, HEVC_MAX_DPB_SIZE-1)
		s.ue8("sps_max_num_reorder_pics", &sps.Sps_max_num_reorder_pics[i], 0, uint32(sps.Sps_max_dec_pic_buffering_minus1[i]))
		s.ue32("sps_max_latency_increase_plus1", &sps.Sps_max_latency_increase_plus1[i], 0, maxUe)
	}
	if sps.Sps_sub_layer_ordering_info_present_flag == 0 && s.reading() {
		for i := 0; i < maxSubLayersMinus1; i++ {
			sps.Sps_max_dec_pic_buffering_minus1[i] = sps.Sps_max_dec_pic_buffering_minus1[maxSubLayersMinus1]
			sps.Sps_max_num_reorder_pics[i] = sps.Sps_max_num_reorder_pics[maxSubLayersMinus1]
			sps.Sps_max_latency_increase_plus1[i] = sps.Sps_max_latency_increase_plus1[maxSubLayersMinus1]
		}
	}

	s.ue8("log2_min_luma_coding_block_size_minus3", &sps.Log2_min_luma_coding_block_size_minus3, 0, 3)
	s.ue8("log2_diff_max_min_luma_coding_block_size", &sps.Log2_diff_max_min_luma_coding_block_size, 0, 3)
	if s.failed() {
		return
	}
	minCbSizeY := uint16(1) << uint(sps.MinCbLog2SizeY())
	if sps.Pic_width_in_luma_samples%minCbSizeY != 0 ||
		sps.Pic_height_in_luma_samples%minCbSizeY != 0 {
		s.fail("invalid dimensions: %dx%d not divisible by MinCbSizeY = %d",
			sps.Pic_width_in_luma_samples, sps.Pic_height_in_luma_samples, minCbSizeY)
		return
	}

	s.ue8("log2_min_luma_transform_block_size_minus2", &sps.Log2_min_luma_transform_block_size_minus2, 0, 3)
	s.ue8("log2_diff_max_min_luma_transform_block_size", &sps.Log2_diff_max_min_luma_transform_block_size, 0, 3)
	s.ue8("max_transform_hierarchy_depth_inter", &sps.Max_transform_hierarchy_depth_inter, 0, 4)
	s.ue8("max_transform_hierarchy_depth_intra", &sps.Max_transform_hierarchy_depth_intra, 0, 4)

	s.flag(&sps.Scaling_list_enabled_flag)
	if sps.Scaling_list_enabled_flag == 1 {
		s.flag(&sps.Sps_scaling_list_data_present_flag)
		if sps.Sps_scaling_list_data_present_flag == 1 {
			sps.Scaling_list.syntax(s)
		}
	}

	s.flag(&sps.Amp_enabled_flag)
	s.flag(&sps.Sample_adaptive_offset_enabled_flag)

	s.flag(&sps.Pcm_enabled_flag)
	if sps.Pcm_enabled_flag == 1 {
		s.u8(4, &sps.Pcm_sample_bit_depth_luma_minus1)
		s.u8(4, &sps.Pcm_sample_bit_depth_chroma_minus1)
		s.ue8("log2_min_pcm_luma_coding_block_size_minus3", &sps.Log2_min_pcm_luma_coding_block_size_minus3, 0, 2)
		s.ue8("log2_diff_max_min_pcm_luma_coding_block_size", &sps.Log2_diff_max_min_pcm_luma_coding_block_size, 0, 2)
		s.flag(&sps.Pcm_loop_filter_disabled_flag)
	}

	s.ue8("num_short_term_ref_pic_sets", &sps.Num_short_term_ref_pic_sets, 0, HEVC_MAX_SHORT_TERM_REF_PIC_SETS)
	n := int(sps.Num_short_term_ref_pic_sets)
	if s.reading() {
		sps.St_ref_pic_set = make([]H265RawSTRefPicSet, n)
	} else if len(sps.St_ref_pic_set) < n {
		s.fail("sps has %d short-term ref pic sets, %d expected", len(sps.St_ref_pic_set), n)
		return
	}
	sps.StRps = make([]ShortTermRefPicSet, 0, n)
	for i := 0; i < n && !s.failed(); i++ {
		sps.St_ref_pic_set[i].syntax(s, i, n, sps.StRps)
		if s.failed() {
			return
		}
		st, err := sps.St_ref_pic_set[i].Derive(i, sps.StRps)
		if err != nil {
			s.setErr(err)
			return
		}
		sps.StRps = append(sps.StRps, st)
	}

	s.flag(&sps.Long_term_ref_pics_present_flag)
	if sps.Long_term_ref_pics_present_flag == 1 {
		s.ue8("num_long_term_ref_pics_sps", &sps.Num_long_term_ref_pics_sps, 0, HEVC_MAX_LONG_TERM_REF_PICS)
		for i := 0; i < int(sps.Num_long_term_ref_pics_sps); i++ {
			s.u16(sps.Log2MaxPicOrderCntLsb(), &sps.Lt_ref_pic_poc_lsb_sps[i])
			s.flag(&sps.Used_by_curr_pic_lt_sps_flag[i])
		}
	}

	s.flag(&sps.Sps_temporal_mvp_enabled_flag)
	s.flag(&sps.Strong_intra_smoothing_enabled_flag)

	s.flag(&sps.Vui_parameters_present_flag)
	if sps.Vui_parameters_present_flag == 1 {
		sps.Vui.syntax(s, maxSubLayersMinus1)
	} else if s.reading() {
		sps.Vui.SetDefault()
	}

	s.flag(&sps.Sps_extension_present_flag)
	if sps.Sps_extension_present_flag == 1 {
		s.flag(&sps.Sps_range_extension_flag)
		s.flag(&sps.Sps_multilayer_extension_flag)
		s.flag(&sps.Sps_3d_extension_flag)
		s.flag(&sps.Sps_scc_extension_flag)
		s.u8(4, &sps.Sps_extension_4bits)
	}

	if sps.Sps_range_extension_flag == 1 {
		s.flag(&sps.Transform_skip_rotation_enabled_flag)
		s.flag(&sps.Transform_skip_context_enabled_flag)
		s.flag(&sps.Implicit_rdpcm_enabled_flag)
		s.flag(&sps.Explicit_rdpcm_enabled_flag)
		s.flag(&sps.Extended_precision_processing_flag)
		s.flag(&sps.Intra_smoothing_disabled_flag)
		s.flag(&sps.High_precision_offsets_enabled_flag)
		s.flag(&sps.Persistent_rice_adaptation_enabled_flag)
		s.flag(&sps.Cabac_bypass_alignment_enabled_flag)
	}
	if sps.Sps_multilayer_extension_flag == 1 || sps.Sps_3d_extension_flag == 1 ||
		sps.Sps_scc_extension_flag == 1 || sps.Sps_extension_4bits != 0 {
		sps.Extension_data.syntax(s)
	}

	s.trailingBits()
}
