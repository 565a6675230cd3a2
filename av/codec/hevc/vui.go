// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

// H265RawVUI vui_parameters()
type H265RawVUI struct {
	Aspect_ratio_info_present_flag uint8
	Aspect_ratio_idc               uint8
	Sar_width                      uint16
	Sar_height                     uint16

	Overscan_info_present_flag uint8
	Overscan_appropriate_flag  uint8

	Video_signal_type_present_flag  uint8
	Video_format                    uint8
	Video_full_range_flag           uint8
	Colour_description_present_flag uint8
	Colour_primaries                uint8
	Transfer_characteristics        uint8
	Matrix_coefficients             uint8

	Chroma_loc_info_present_flag        uint8
	Chroma_sample_loc_type_top_field    uint8
	Chroma_sample_loc_type_bottom_field uint8

	Neutral_chroma_indication_flag uint8
	Field_seq_flag                 uint8
	Frame_field_info_present_flag  uint8

	Default_display_window_flag uint8
	Def_disp_win_left_offset    uint16
	Def_disp_win_right_offset   uint16
	Def_disp_win_top_offset     uint16
	Def_disp_win_bottom_offset  uint16

	Vui_timing_info_present_flag        uint8
	Vui_num_units_in_tick               uint32
	Vui_time_scale                      uint32
	Vui_poc_proportional_to_timing_flag uint8
	Vui_num_ticks_poc_diff_one_minus1   uint32
	Vui_hrd_parameters_present_flag     uint8
	Hrd_parameters                      H265RawHRDParameters

	Bitstream_restriction_flag              uint8
	Tiles_fixed_structure_flag              uint8
	Motion_vectors_over_pic_boundaries_flag uint8
	Restricted_ref_pic_lists_flag           uint8
	Min_spatial_segmentation_idc            uint16
	Max_bytes_per_pic_denom                 uint8
	Max_bits_per_min_cu_denom               uint8
	Log2_max_mv_length_horizontal           uint8
	Log2_max_mv_length_vertical             uint8
}

// SetDefault 设置标准规定的缺省值
func (vui *H265RawVUI) SetDefault() {
	*vui = H265RawVUI{}

	vui.Aspect_ratio_idc = 0

	vui.Video_format = 5
	vui.Video_full_range_flag = 0
	vui.Colour_primaries = 2
	vui.Transfer_characteristics = 2
	vui.Matrix_coefficients = 2

	vui.Chroma_sample_loc_type_top_field = 0
	vui.Chroma_sample_loc_type_bottom_field = 0

	vui.Tiles_fixed_structure_flag = 0
	vui.Motion_vectors_over_pic_boundaries_flag = 1
	vui.Min_spatial_segmentation_idc = 0
	vui.Max_bytes_per_pic_denom = 2
	vui.Max_bits_per_min_cu_denom = 1
	vui.Log2_max_mv_length_horizontal = 15
	vui.Log2_max_mv_length_vertical = 15
}

func (vui *H265RawVUI) syntax(s *bitstream, sps_max_sub_layers_minus1 int) {
	if s.reading() {
		vui.SetDefault()
	}

	s.flag(&vui.Aspect_ratio_info_present_flag)
	if vui.Aspect_ratio_info_present_flag == 1 {
		s.u8(8, &vui.Aspect_ratio_idc)
		if vui.Aspect_ratio_idc == 255 {
			s.u16(16, &vui.Sar_width)
			s.u16(16, &vui.Sar_height)
		}
	}

	s.flag(&vui.Overscan_info_present_flag)
	if vui.Overscan_info_present_flag == 1 {
		s.flag(&vui.Overscan_appropriate_flag)
	}

	s.flag(&vui.Video_signal_type_present_flag)
	if vui.Video_signal_type_present_flag == 1 {
		s.u8(3, &vui.Video_format)
		s.flag(&vui.Video_full_range_flag)
		s.flag(&vui.Colour_description_present_flag)
		if vui.Colour_description_present_flag == 1 {
			s.u8(8, &vui.Colour_primaries)
			s.u8(8, &vui.Transfer_characteristics)
			s.u8(8, &vui.Matrix_coefficients)
		}
	}

	s.flag(&vui.Chroma_loc_info_present_flag)
	if vui.Chroma_loc_info_present_flag == 1 {
		s.ue8("chroma_sample_loc_type_top_field", &vui.Chroma_sample_loc_type_top_field, 0, 5)
		s.ue8("chroma_sample_loc_type_bottom_field", &vui.Chroma_sample_loc_type_bottom_field, 0, 5)
	}

	s.flag(&vui.Neutral_chroma_indication_flag)
	s.flag(&vui.Field_seq_flag)
	s.flag(&vui.Frame_field_info_present_flag)

	s.flag(&vui.Default_display_window_flag)
	if vui.Default_display_window_flag == 1 {
		s.ue16("def_disp_win_left_offset", &vui.Def_disp_win_left_offset, 0, maxUint16)
		s.ue16("def_disp_win_right_offset", &vui.Def_disp_win_right_offset, 0, maxUint16)
		s.ue16("def_disp_win_top_offset", &vui.Def_disp_win_top_offset, 0, maxUint16)
		s.ue16("def_disp_win_bottom_offset", &vui.Def_disp_win_bottom_offset, 0, maxUint16)
	}

	s.flag(&vui.Vui_timing_info_present_flag)
	if vui.Vui_timing_info_present_flag == 1 {
		s.u32(32, &vui.Vui_num_units_in_tick)
		s.u32(32, &vui.Vui_time_scale)
		s.flag(&vui.Vui_poc_proportional_to_timing_flag)
		if vui.Vui_poc_proportional_to_timing_flag == 1 {
			s.ue32("vui_num_ticks_poc_diff_one_minus1", &vui.Vui_num_ticks_poc_diff_one_minus1, 0, maxUe)
		}

		s.flag(&vui.Vui_hrd_parameters_present_flag)
		if vui.Vui_hrd_parameters_present_flag == 1 {
			vui.Hrd_parameters.syntax(s, true, sps_max_sub_layers_minus1)
		}
	}

	s.flag(&vui.Bitstream_restriction_flag)
	if vui.Bitstream_restriction_flag == 1 {
		s.flag(&vui.Tiles_fixed_structure_flag)
		s.flag(&vui.Motion_vectors_over_pic_boundaries_flag)
		s.flag(&vui.Restricted_ref_pic_lists_flag)
		s.ue16("min_spatial_segmentation_idc", &vui.Min_spatial_segmentation_idc, 0, 4095)
		s.ue8("max_bytes_per_pic_denom", &vui.Max_bytes_per_pic_denom, 0, 16)
		s.ue8("max_bits_per_min_cu_denom", &vui.Max_bits_per_min_cu_denom, 0, 16)
		s.ue8("log2_max_mv_length_horizontal", &vui.Log2_max_mv_length_horizontal, 0, 15)
		s.ue8("log2_max_mv_length_vertical", &vui.Log2_max_mv_length_vertical, 0, 15)
	}
}
