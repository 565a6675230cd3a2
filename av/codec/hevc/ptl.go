// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
//
// Translate from FFmpeg cbs_h265.h cbs_h265_syntax_template.c
//
package hevc

// H265RawProfileConstraints 档次兼容及约束标志，general 与 sub_layer 语法相同
type H265RawProfileConstraints struct {
	Profile_space uint8
	Tier_flag     uint8
	Profile_idc   uint8

	Profile_compatibility_flag [32]uint8

	Progressive_source_flag    uint8
	Interlaced_source_flag     uint8
	Non_packed_constraint_flag uint8
	Frame_only_constraint_flag uint8

	Max_12bit_constraint_flag        uint8
	Max_10bit_constraint_flag        uint8
	Max_8bit_constraint_flag         uint8
	Max_422chroma_constraint_flag    uint8
	Max_420chroma_constraint_flag    uint8
	Max_monochrome_constraint_flag   uint8
	Intra_constraint_flag            uint8
	One_picture_only_constraint_flag uint8
	Lower_bit_rate_constraint_flag   uint8
	Max_14bit_constraint_flag        uint8

	Inbld_flag uint8
}

// CompatibilityFlags 32 位兼容标志
func (pc *H265RawProfileConstraints) CompatibilityFlags() (flags uint32) {
	for j := 0; j < 32; j++ {
		flags = flags<<1 | uint32(pc.Profile_compatibility_flag[j]&1)
	}
	return
}

func (pc *H265RawProfileConstraints) compatible(idc uint8) bool {
	return pc.Profile_idc == idc || pc.Profile_compatibility_flag[idc] == 1
}

func (pc *H265RawProfileConstraints) syntax(s *bitstream) {
	s.u8(2, &pc.Profile_space)
	s.flag(&pc.Tier_flag)
	s.u8(5, &pc.Profile_idc)

	for j := 0; j < 32; j++ {
		s.flag(&pc.Profile_compatibility_flag[j])
	}

	s.flag(&pc.Progressive_source_flag)
	s.flag(&pc.Interlaced_source_flag)
	s.flag(&pc.Non_packed_constraint_flag)
	s.flag(&pc.Frame_only_constraint_flag)

	if pc.compatible(4) || pc.compatible(5) ||
		pc.compatible(6) || pc.compatible(7) ||
		pc.compatible(8) || pc.compatible(9) ||
		pc.compatible(10) {
		s.flag(&pc.Max_12bit_constraint_flag)
		s.flag(&pc.Max_10bit_constraint_flag)
		s.flag(&pc.Max_8bit_constraint_flag)
		s.flag(&pc.Max_422chroma_constraint_flag)
		s.flag(&pc.Max_420chroma_constraint_flag)
		s.flag(&pc.Max_monochrome_constraint_flag)
		s.flag(&pc.Intra_constraint_flag)
		s.flag(&pc.One_picture_only_constraint_flag)
		s.flag(&pc.Lower_bit_rate_constraint_flag)

		if pc.compatible(5) || pc.compatible(9) || pc.compatible(10) {
			s.flag(&pc.Max_14bit_constraint_flag)
			s.fixed(33, 0) // reserved_zero_33bits
		} else {
			s.fixed(34, 0) // reserved_zero_34bits
		}
	} else if pc.compatible(2) {
		s.fixed(7, 0) // reserved_zero_7bits
		s.flag(&pc.One_picture_only_constraint_flag)
		s.fixed(35, 0) // reserved_zero_35bits
	} else {
		s.fixed(43, 0) // reserved_zero_43bits
	}

	if pc.compatible(1) || pc.compatible(2) ||
		pc.compatible(3) || pc.compatible(4) ||
		pc.compatible(5) || pc.compatible(9) {
		s.flag(&pc.Inbld_flag)
	} else {
		s.fixed(1, 0) // reserved_zero_bit
	}
}

// H265RawProfileTierLevel profile_tier_level()
type H265RawProfileTierLevel struct {
	General H265RawProfileConstraints

	General_level_idc uint8

	Sub_layer_profile_present_flag [HEVC_MAX_SUB_LAYERS]uint8
	Sub_layer_level_present_flag   [HEVC_MAX_SUB_LAYERS]uint8

	Sub_layer [HEVC_MAX_SUB_LAYERS]H265RawProfileConstraints

	Sub_layer_level_idc [HEVC_MAX_SUB_LAYERS]uint8
}

func (ptl *H265RawProfileTierLevel) syntax(s *bitstream,
	profile_present_flag bool, max_num_sub_layers_minus1 int) {

	if profile_present_flag {
		ptl.General.syntax(s)
	}

	s.u8(8, &ptl.General_level_idc)

	for i := 0; i < max_num_sub_layers_minus1; i++ {
		s.flag(&ptl.Sub_layer_profile_present_flag[i])
		s.flag(&ptl.Sub_layer_level_present_flag[i])
	}

	if max_num_sub_layers_minus1 > 0 {
		for i := max_num_sub_layers_minus1; i < 8; i++ {
			s.fixed(2, 0) // reserved_zero_2bits
		}
	}

	for i := 0; i < max_num_sub_layers_minus1; i++ {
		if ptl.Sub_layer_profile_present_flag[i] == 1 {
			ptl.Sub_layer[i].syntax(s)
		}
		if ptl.Sub_layer_level_present_flag[i] == 1 {
			s.u8(8, &ptl.Sub_layer_level_idc[i])
		}
	}
}
