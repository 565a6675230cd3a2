// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"github.com/cnotch/omafhevc/utils"
)

// H265RawPPS pic_parameter_set_rbsp()
type H265RawPPS struct {
	Nal_unit_header H265RawNALUnitHeader

	Pps_pic_parameter_set_id uint8
	Pps_seq_parameter_set_id uint8

	Dependent_slice_segments_enabled_flag uint8
	Output_flag_present_flag              uint8
	Num_extra_slice_header_bits           uint8
	Sign_data_hiding_enabled_flag         uint8
	Cabac_init_present_flag               uint8

	Num_ref_idx_l0_default_active_minus1 uint8
	Num_ref_idx_l1_default_active_minus1 uint8

	Init_qp_minus26 int8

	Constrained_intra_pred_flag              uint8
	Transform_skip_enabled_flag              uint8
	Cu_qp_delta_enabled_flag                 uint8
	Diff_cu_qp_delta_depth                   uint8
	Pps_cb_qp_offset                         int8
	Pps_cr_qp_offset                         int8
	Pps_slice_chroma_qp_offsets_present_flag uint8

	Weighted_pred_flag   uint8
	Weighted_bipred_flag uint8

	Transquant_bypass_enabled_flag   uint8
	Tiles_enabled_flag               uint8
	Entropy_coding_sync_enabled_flag uint8

	Num_tile_columns_minus1               uint8
	Num_tile_rows_minus1                  uint8
	Uniform_spacing_flag                  uint8
	Column_width_minus1                   [HEVC_MAX_TILE_COLUMNS]uint16
	Row_height_minus1                     [HEVC_MAX_TILE_ROWS]uint16
	Loop_filter_across_tiles_enabled_flag uint8

	Pps_loop_filter_across_slices_enabled_flag uint8
	Deblocking_filter_control_present_flag     uint8
	Deblocking_filter_override_enabled_flag    uint8
	Pps_deblocking_filter_disabled_flag        uint8
	Pps_beta_offset_div2                       int8
	Pps_tc_offset_div2                         int8

	Pps_scaling_list_data_present_flag uint8
	Scaling_list                       H265RawScalingList

	Lists_modification_present_flag  uint8
	Log2_parallel_merge_level_minus2 uint8

	Slice_segment_header_extension_present_flag uint8

	Pps_extension_present_flag    uint8
	Pps_range_extension_flag      uint8
	Pps_multilayer_extension_flag uint8
	Pps_3d_extension_flag         uint8
	Pps_scc_extension_flag        uint8
	Pps_extension_4bits           uint8

	// Range extension.
	Log2_max_transform_skip_block_size_minus2 uint8
	Cross_component_prediction_enabled_flag   uint8
	Chroma_qp_offset_list_enabled_flag        uint8
	Diff_cu_chroma_qp_offset_depth            uint8
	Chroma_qp_offset_list_len_minus1          uint8
	Cb_qp_offset_list                         [6]int8
	Cr_qp_offset_list                         [6]int8
	Log2_sao_offset_scale_luma                uint8
	Log2_sao_offset_scale_chroma              uint8

	// 多层、3D、屏幕内容编码等扩展不做解析，原样保存
	Extension_data H265RawExtensionData
}

// NumTileColumns 区块列数
func (pps *H265RawPPS) NumTileColumns() int {
	return int(pps.Num_tile_columns_minus1) + 1
}

// NumTileRows 区块行数
func (pps *H265RawPPS) NumTileRows() int {
	return int(pps.Num_tile_rows_minus1) + 1
}

// ColumnWidths 各区块列的宽度(以 CTU 为单位)
func (pps *H265RawPPS) ColumnWidths(sps *H265RawSPS) []int {
	return tileSizes(pps.Uniform_spacing_flag == 1, pps.NumTileColumns(),
		sps.PicWidthInCtbsY(), pps.Column_width_minus1[:])
}

// RowHeights 各区块行的高度(以 CTU 为单位)
func (pps *H265RawPPS) RowHeights(sps *H265RawSPS) []int {
	return tileSizes(pps.Uniform_spacing_flag == 1, pps.NumTileRows(),
		sps.PicHeightInCtbsY(), pps.Row_height_minus1[:])
}

// tileSizes (6-3) (6-4)
func tileSizes(uniform bool, num, total int, minus1 []uint16) []int {
	sizes := make([]int, num)
	if uniform {
		for i := 0; i < num; i++ {
			sizes[i] = ((i+1)*total)/num - (i*total)/num
		}
		return sizes
	}

	last := total
	for i := 0; i < num-1; i++ {
		sizes[i] = int(minus1[i]) + 1
		last -= sizes[i]
	}
	sizes[num-1] = last
	return sizes
}

// DecodeString 从 base64 字串解码 pps NAL
func (pps *H265RawPPS) DecodeString(b64 string) error {
	data, err := decodeBase64(b64)
	if err != nil {
		return err
	}
	return pps.Decode(data)
}

// Decode 从字节流格式的 NAL 中解码 pps，起始码可选
func (pps *H265RawPPS) Decode(data []byte) (err error) {
	return pps.DecodeRbsp(nalPayload(data))
}

// DecodeRbsp 从 RBSP(含 NAL 头) 中解码 pps
func (pps *H265RawPPS) DecodeRbsp(rbsp []byte) (err error) {
	defer recoverSyntax(&err, "pps")

	*pps = H265RawPPS{}
	s := newReadStream(rbsp)
	pps.syntax(s)
	return s.Err()
}

// EncodeRbsp 编码成 RBSP(含 NAL 头)
func (pps *H265RawPPS) EncodeRbsp() (rbsp []byte, err error) {
	defer recoverSyntax(&err, "pps")

	s := newWriteStream(make([]byte, 0, 64))
	pps.syntax(s)
	if err = s.Err(); err != nil {
		return nil, err
	}
	return s.w.Bytes(), nil
}

// Encode 编码成字节流格式的 NAL(不含起始码)
func (pps *H265RawPPS) Encode() ([]byte, error) {
	rbsp, err := pps.EncodeRbsp()
	if err != nil {
		return nil, err
	}
	return utils.ToByteStream(rbsp, false), nil
}

func (pps *H265RawPPS) syntax(s *bitstream) {
	pps.Nal_unit_header.expect(s, NalPps)

	s.ue8("pps_pic_parameter_set_id", &pps.Pps_pic_parameter_set_id, 0, HEVC_MAX_PPS_COUNT-1)
	s.ue8("pps_seq_parameter_set_id", &pps.Pps_seq_parameter_set_id, 0, HEVC_MAX_SPS_COUNT-1)

	s.flag(&pps.Dependent_slice_segments_enabled_flag)
	s.flag(&pps.Output_flag_present_flag)
	s.u8(3, &pps.Num_extra_slice_header_bits)
	s.flag(&pps.Sign_data_hiding_enabled_flag)
	s.flag(&pps.Cabac_init_present_flag)

	s.ue8("num_ref_idx_l0_default_active_minus1", &pps.Num_ref_idx_l0_default_active_minus1, 0, 14)
	s.ue8("num_ref_idx_l1_default_active_minus1", &pps.Num_ref_idx_l1_default_active_minus1, 0, 14)

	s.se8("init_qp_minus26", &pps.Init_qp_minus26, -(26 + 6*8), 25)

	s.flag(&pps.Constrained_intra_pred_flag)
	s.flag(&pps.Transform_skip_enabled_flag)
	s.flag(&pps.Cu_qp_delta_enabled_flag)
	if pps.Cu_qp_delta_enabled_flag == 1 {
		s.ue8("diff_cu_qp_delta_depth", &pps.Diff_cu_qp_delta_depth, 0, HEVC_MAX_LOG2_CTB_SIZE-3)
	} else if s.reading() {
		pps.Diff_cu_qp_delta_depth = 0
	}

	s.se8("pps_cb_qp_offset", &pps.Pps_cb_qp_offset, -12, 12)
	s.se8("pps_cr_qp_offset", &pps.Pps_cr_qp_offset, -12, 12)
	s.flag(&pps.Pps_slice_chroma_qp_offsets_present_flag)

	s.flag(&pps.Weighted_pred_flag)
	s.flag(&pps.Weighted_bipred_flag)

	s.flag(&pps.Transquant_bypass_enabled_flag)
	s.flag(&pps.Tiles_enabled_flag)
	s.flag(&pps.Entropy_coding_sync_enabled_flag)

	if pps.Tiles_enabled_flag == 1 {
		s.ue8("num_tile_columns_minus1", &pps.Num_tile_columns_minus1, 0, HEVC_MAX_TILE_COLUMNS-1)
		s.ue8("num_tile_rows_minus1", &pps.Num_tile_rows_minus1, 0, HEVC_MAX_TILE_ROWS-1)
		s.flag(&pps.Uniform_spacing_flag)
		if pps.Uniform_spacing_flag == 0 {
			for i := 0; i < int(pps.Num_tile_columns_minus1); i++ {
				s.ue16("column_width_minus1", &pps.Column_width_minus1[i], 0, HEVC_MAX_WIDTH>>HEVC_MIN_LOG2_CTB_SIZE)
			}
			for i := 0; i < int(pps.Num_tile_rows_minus1); i++ {
				s.ue16("row_height_minus1", &pps.Row_height_minus1[i], 0, HEVC_MAX_HEIGHT>>HEVC_MIN_LOG2_CTB_SIZE)
			}
		}
		s.flag(&pps.Loop_filter_across_tiles_enabled_flag)
	} else if s.reading() {
		pps.Num_tile_columns_minus1 = 0
		pps.Num_tile_rows_minus1 = 0
		pps.Uniform_spacing_flag = 1
		pps.Loop_filter_across_tiles_enabled_flag = 1
	}

	s.flag(&pps.Pps_loop_filter_across_slices_enabled_flag)
	s.flag(&pps.Deblocking_filter_control_present_flag)
	if pps.Deblocking_filter_control_present_flag == 1 {
		s.flag(&pps.Deblocking_filter_override_enabled_flag)
		s.flag(&pps.Pps_deblocking_filter_disabled_flag)
		if pps.Pps_deblocking_filter_disabled_flag == 0 {
			s.se8("pps_beta_offset_div2", &pps.Pps_beta_offset_div2, -6, 6)
			s.se8("pps_tc_offset_div2", &pps.Pps_tc_offset_div2, -6, 6)
		}
	}

	s.flag(&pps.Pps_scaling_list_data_present_flag)
	if pps.Pps_scaling_list_data_present_flag == 1 {
		pps.Scaling_list.syntax(s)
	}

	s.flag(&pps.Lists_modification_present_flag)
	s.ue8("log2_parallel_merge_level_minus2", &pps.Log2_parallel_merge_level_minus2, 0, HEVC_MAX_LOG2_CTB_SIZE-2)

	s.flag(&pps.Slice_segment_header_extension_present_flag)

	s.flag(&pps.Pps_extension_present_flag)
	if pps.Pps_extension_present_flag == 1 {
		s.flag(&pps.Pps_range_extension_flag)
		s.flag(&pps.Pps_multilayer_extension_flag)
		s.flag(&pps.Pps_3d_extension_flag)
		s.flag(&pps.Pps_scc_extension_flag)
		s.u8(4, &pps.Pps_extension_4bits)
	}

	if pps.Pps_range_extension_flag == 1 {
		pps.rangeExtension(s)
	}
	if pps.Pps_multilayer_extension_flag == 1 || pps.Pps_3d_extension_flag == 1 ||
		pps.Pps_scc_extension_flag == 1 || pps.Pps_extension_4bits != 0 {
		pps.Extension_data.syntax(s)
	}

	s.trailingBits()
}

// rangeExtension pps_range_extension()
func (pps *H265RawPPS) rangeExtension(s *bitstream) {
	if pps.Transform_skip_enabled_flag == 1 {
		s.ue8("log2_max_transform_skip_block_size_minus2", &pps.Log2_max_transform_skip_block_size_minus2, 0, 3)
	}
	s.flag(&pps.Cross_component_prediction_enabled_flag)
	s.flag(&pps.Chroma_qp_offset_list_enabled_flag)
	if pps.Chroma_qp_offset_list_enabled_flag == 1 {
		s.ue8("diff_cu_chroma_qp_offset_depth", &pps.Diff_cu_chroma_qp_offset_depth, 0, HEVC_MAX_LOG2_CTB_SIZE-3)
		s.ue8("chroma_qp_offset_list_len_minus1", &pps.Chroma_qp_offset_list_len_minus1, 0, 5)
		for i := 0; i <= int(pps.Chroma_qp_offset_list_len_minus1); i++ {
			s.se8("cb_qp_offset_list", &pps.Cb_qp_offset_list[i], -12, 12)
			s.se8("cr_qp_offset_list", &pps.Cr_qp_offset_list[i], -12, 12)
		}
	}
	s.ue8("log2_sao_offset_scale_luma", &pps.Log2_sao_offset_scale_luma, 0, 6)
	s.ue8("log2_sao_offset_scale_chroma", &pps.Log2_sao_offset_scale_chroma, 0, 6)
}
