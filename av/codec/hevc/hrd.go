// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

// H265RawSubLayerHRDParameters sub_layer_hrd_parameters()
type H265RawSubLayerHRDParameters struct {
	Bit_rate_value_minus1    [HEVC_MAX_CPB_CNT]uint32
	Cpb_size_value_minus1    [HEVC_MAX_CPB_CNT]uint32
	Cpb_size_du_value_minus1 [HEVC_MAX_CPB_CNT]uint32
	Bit_rate_du_value_minus1 [HEVC_MAX_CPB_CNT]uint32
	Cbr_flag                 [HEVC_MAX_CPB_CNT]uint8
}

func (shrd *H265RawSubLayerHRDParameters) syntax(s *bitstream,
	sub_pic_hrd_params_present_flag bool, cpb_cnt_minus1 int) {
	for i := 0; i <= cpb_cnt_minus1; i++ {
		s.ue32("bit_rate_value_minus1", &shrd.Bit_rate_value_minus1[i], 0, maxUe)
		s.ue32("cpb_size_value_minus1", &shrd.Cpb_size_value_minus1[i], 0, maxUe)
		if sub_pic_hrd_params_present_flag {
			s.ue32("cpb_size_du_value_minus1", &shrd.Cpb_size_du_value_minus1[i], 0, maxUe)
			s.ue32("bit_rate_du_value_minus1", &shrd.Bit_rate_du_value_minus1[i], 0, maxUe)
		}
		s.flag(&shrd.Cbr_flag[i])
	}
}

// H265RawHRDParameters hrd_parameters()
type H265RawHRDParameters struct {
	Nal_hrd_parameters_present_flag uint8
	Vcl_hrd_parameters_present_flag uint8

	Sub_pic_hrd_params_present_flag              uint8
	Tick_divisor_minus2                          uint8
	Du_cpb_removal_delay_increment_length_minus1 uint8
	Sub_pic_cpb_params_in_pic_timing_sei_flag    uint8
	Dpb_output_delay_du_length_minus1            uint8

	Bit_rate_scale    uint8
	Cpb_size_scale    uint8
	Cpb_size_du_scale uint8

	Initial_cpb_removal_delay_length_minus1 uint8
	Au_cpb_removal_delay_length_minus1      uint8
	Dpb_output_delay_length_minus1          uint8

	Fixed_pic_rate_general_flag     [HEVC_MAX_SUB_LAYERS]uint8
	Fixed_pic_rate_within_cvs_flag  [HEVC_MAX_SUB_LAYERS]uint8
	Elemental_duration_in_tc_minus1 [HEVC_MAX_SUB_LAYERS]uint16
	Low_delay_hrd_flag              [HEVC_MAX_SUB_LAYERS]uint8
	Cpb_cnt_minus1                  [HEVC_MAX_SUB_LAYERS]uint8
	Nal_sub_layer_hrd_parameters    [HEVC_MAX_SUB_LAYERS]H265RawSubLayerHRDParameters
	Vcl_sub_layer_hrd_parameters    [HEVC_MAX_SUB_LAYERS]H265RawSubLayerHRDParameters
}

func (hrd *H265RawHRDParameters) syntax(s *bitstream,
	common_inf_present_flag bool, max_num_sub_layers_minus1 int) {
	if common_inf_present_flag {
		s.flag(&hrd.Nal_hrd_parameters_present_flag)
		s.flag(&hrd.Vcl_hrd_parameters_present_flag)

		if hrd.Nal_hrd_parameters_present_flag == 1 ||
			hrd.Vcl_hrd_parameters_present_flag == 1 {
			s.flag(&hrd.Sub_pic_hrd_params_present_flag)
			if hrd.Sub_pic_hrd_params_present_flag == 1 {
				s.u8(8, &hrd.Tick_divisor_minus2)
				s.u8(5, &hrd.Du_cpb_removal_delay_increment_length_minus1)
				s.flag(&hrd.Sub_pic_cpb_params_in_pic_timing_sei_flag)
				s.u8(5, &hrd.Dpb_output_delay_du_length_minus1)
			}

			s.u8(4, &hrd.Bit_rate_scale)
			s.u8(4, &hrd.Cpb_size_scale)
			if hrd.Sub_pic_hrd_params_present_flag == 1 {
				s.u8(4, &hrd.Cpb_size_du_scale)
			}

			s.u8(5, &hrd.Initial_cpb_removal_delay_length_minus1)
			s.u8(5, &hrd.Au_cpb_removal_delay_length_minus1)
			s.u8(5, &hrd.Dpb_output_delay_length_minus1)
		} else if s.reading() {
			hrd.Sub_pic_hrd_params_present_flag = 0

			hrd.Initial_cpb_removal_delay_length_minus1 = 23
			hrd.Au_cpb_removal_delay_length_minus1 = 23
			hrd.Dpb_output_delay_length_minus1 = 23
		}
	}

	for i := 0; i <= max_num_sub_layers_minus1; i++ {
		s.flag(&hrd.Fixed_pic_rate_general_flag[i])

		if hrd.Fixed_pic_rate_general_flag[i] == 0 {
			s.flag(&hrd.Fixed_pic_rate_within_cvs_flag[i])
		} else if s.reading() {
			hrd.Fixed_pic_rate_within_cvs_flag[i] = 1
		}

		if hrd.Fixed_pic_rate_within_cvs_flag[i] == 1 {
			s.ue16("elemental_duration_in_tc_minus1", &hrd.Elemental_duration_in_tc_minus1[i], 0, 2047)
			if s.reading() {
				hrd.Low_delay_hrd_flag[i] = 0
			}
		} else {
			s.flag(&hrd.Low_delay_hrd_flag[i])
		}

		if hrd.Low_delay_hrd_flag[i] == 0 {
			s.ue8("cpb_cnt_minus1", &hrd.Cpb_cnt_minus1[i], 0, HEVC_MAX_CPB_CNT-1)
		} else if s.reading() {
			hrd.Cpb_cnt_minus1[i] = 0
		}

		if hrd.Nal_hrd_parameters_present_flag == 1 {
			hrd.Nal_sub_layer_hrd_parameters[i].syntax(s,
				hrd.Sub_pic_hrd_params_present_flag == 1, int(hrd.Cpb_cnt_minus1[i]))
		}
		if hrd.Vcl_hrd_parameters_present_flag == 1 {
			hrd.Vcl_sub_layer_hrd_parameters[i].syntax(s,
				hrd.Sub_pic_hrd_params_present_flag == 1, int(hrd.Cpb_cnt_minus1[i]))
		}
	}
}
