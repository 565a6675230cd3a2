// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
//
// Translate from FFmpeg cbs_h265.h cbs_h265_syntax_template.c
//
package hevc

import (
	"github.com/cnotch/omafhevc/utils"
)

// H265RawVPS video_parameter_set_rbsp()
type H265RawVPS struct {
	Nal_unit_header H265RawNALUnitHeader

	Vps_video_parameter_set_id uint8

	Vps_base_layer_internal_flag  uint8
	Vps_base_layer_available_flag uint8
	Vps_max_layers_minus1         uint8
	Vps_max_sub_layers_minus1     uint8
	Vps_temporal_id_nesting_flag  uint8

	Profile_tier_level H265RawProfileTierLevel

	Vps_sub_layer_ordering_info_present_flag uint8
	Vps_max_dec_pic_buffering_minus1         [HEVC_MAX_SUB_LAYERS]uint8
	Vps_max_num_reorder_pics                 [HEVC_MAX_SUB_LAYERS]uint8
	Vps_max_latency_increase_plus1           [HEVC_MAX_SUB_LAYERS]uint32

	Vps_max_layer_id          uint8
	Vps_num_layer_sets_minus1 uint16
	Layer_id_included_flag    [][HEVC_MAX_LAYERS]uint8 //[HEVC_MAX_LAYER_SETS][HEVC_MAX_LAYERS]uint8

	Vps_timing_info_present_flag        uint8
	Vps_num_units_in_tick               uint32
	Vps_time_scale                      uint32
	Vps_poc_proportional_to_timing_flag uint8
	Vps_num_ticks_poc_diff_one_minus1   uint32
	Vps_num_hrd_parameters              uint16
	Hrd_layer_set_idx                   []uint16               //[HEVC_MAX_LAYER_SETS]uint16
	Cprms_present_flag                  []uint8                //[HEVC_MAX_LAYER_SETS]uint8
	Hrd_parameters                      []H265RawHRDParameters //[HEVC_MAX_LAYER_SETS]H265RawHRDParameters

	Vps_extension_flag uint8
	Extension_data     H265RawExtensionData
}

// FrameRate VPS 中的帧率，无定时信息时返回 0
func (vps *H265RawVPS) FrameRate() float64 {
	if vps.Vps_timing_info_present_flag == 0 || vps.Vps_num_units_in_tick == 0 {
		return 0.0
	}
	return float64(vps.Vps_time_scale) / float64(vps.Vps_num_units_in_tick)
}

// DecodeString 从 base64 字串解码 vps NAL
func (vps *H265RawVPS) DecodeString(b64 string) error {
	data, err := decodeBase64(b64)
	if err != nil {
		return err
	}
	return vps.Decode(data)
}

// Decode 从字节流格式的 NAL 中解码 vps，起始码可选
func (vps *H265RawVPS) Decode(data []byte) (err error) {
	return vps.DecodeRbsp(nalPayload(data))
}

// DecodeRbsp 从 RBSP(含 NAL 头) 中解码 vps
func (vps *H265RawVPS) DecodeRbsp(rbsp []byte) (err error) {
	defer recoverSyntax(&err, "vps")

	*vps = H265RawVPS{}
	s := newReadStream(rbsp)
	vps.syntax(s)
	return s.Err()
}

// EncodeRbsp 编码成 RBSP(含 NAL 头)
func (vps *H265RawVPS) EncodeRbsp() (rbsp []byte, err error) {
	defer recoverSyntax(&err, "vps")

	s := newWriteStream(make([]byte, 0, 64))
	vps.syntax(s)
	if err = s.Err(); err != nil {
		return nil, err
	}
	return s.w.Bytes(), nil
}

// Encode 编码成字节流格式的 NAL(不含起始码)
func (vps *H265RawVPS) Encode() ([]byte, error) {
	rbsp, err := vps.EncodeRbsp()
	if err != nil {
		return nil, err
	}
	return utils.ToByteStream(rbsp, false), nil
}

func (vps *H265RawVPS) syntax(s *bitstream) {
	vps.Nal_unit_header.expect(s, NalVps)

	s.u8(4, &vps.Vps_video_parameter_set_id)

	s.flag(&vps.Vps_base_layer_internal_flag)
	s.flag(&vps.Vps_base_layer_available_flag)
	s.u8(6, &vps.Vps_max_layers_minus1)
	s.u8(3, &vps.Vps_max_sub_layers_minus1)
	s.flag(&vps.Vps_temporal_id_nesting_flag)
	if s.failed() {
		return
	}

	if vps.Vps_max_sub_layers_minus1 >= HEVC_MAX_SUB_LAYERS {
		s.fail("vps_max_sub_layers_minus1 out of range: %d", vps.Vps_max_sub_layers_minus1)
		return
	}
	if vps.Vps_max_sub_layers_minus1 == 0 &&
		vps.Vps_temporal_id_nesting_flag != 1 {
		s.fail("vps_temporal_id_nesting_flag must be 1 if vps_max_sub_layers_minus1 is 0")
		return
	}

	s.fixed(16, 0xffff) // vps_reserved_0xffff_16bits
	vps.Profile_tier_level.syntax(s, true, int(vps.Vps_max_sub_layers_minus1))

	maxSubLayersMinus1 := int(vps.Vps_max_sub_layers_minus1)
	s.flag(&vps.Vps_sub_layer_ordering_info_present_flag)
	i := maxSubLayersMinus1
	if vps.Vps_sub_layer_ordering_info_present_flag == 1 {
		i = 0
	}
	for ; i <= maxSubLayersMinus1; i++ {
		s.ue8("vps_max_dec_pic_buffering_minus1", &vps.Vps_max_dec_pic_buffering_minus1[i], 0, HEVC_MAX_DPB_SIZE-1)
		s.ue8("vps_max_num_reorder_pics", &vps.Vps_max_num_reorder_pics[i], 0, uint32(vps.Vps_max_dec_pic_buffering_minus1[i]))
		s.ue32("vps_max_latency_increase_plus1", &vps.Vps_max_latency_increase_plus1[i], 0, maxUe)
	}
	if vps.Vps_sub_layer_ordering_info_present_flag == 0 && s.reading() {
		for i := 0; i < maxSubLayersMinus1; i++ {
			vps.Vps_max_dec_pic_buffering_minus1[i] = vps.Vps_max_dec_pic_buffering_minus1[maxSubLayersMinus1]
			vps.Vps_max_num_reorder_pics[i] = vps.Vps_max_num_reorder_pics[maxSubLayersMinus1]
			vps.Vps_max_latency_increase_plus1[i] = vps.Vps_max_latency_increase_plus1[maxSubLayersMinus1]
		}
	}

	s.u8(6, &vps.Vps_max_layer_id)
	s.ue16("vps_num_layer_sets_minus1", &vps.Vps_num_layer_sets_minus1, 0, HEVC_MAX_LAYER_SETS-1)
	if s.reading() {
		vps.Layer_id_included_flag = make([][HEVC_MAX_LAYERS]uint8, int(vps.Vps_num_layer_sets_minus1)+1)
	} else if len(vps.Layer_id_included_flag) <= int(vps.Vps_num_layer_sets_minus1) {
		s.fail("layer_id_included_flag has %d layer sets", len(vps.Layer_id_included_flag))
		return
	}
	for i := 1; i <= int(vps.Vps_num_layer_sets_minus1); i++ {
		for j := 0; j <= int(vps.Vps_max_layer_id) && j < HEVC_MAX_LAYERS; j++ {
			s.flag(&vps.Layer_id_included_flag[i][j])
		}
	}
	if s.reading() {
		// 层集 0 只包含 nuh_layer_id 为 0 的层
		vps.Layer_id_included_flag[0][0] = 1
	}

	s.flag(&vps.Vps_timing_info_present_flag)
	if vps.Vps_timing_info_present_flag == 1 {
		s.u32(32, &vps.Vps_num_units_in_tick)
		s.u32(32, &vps.Vps_time_scale)
		s.flag(&vps.Vps_poc_proportional_to_timing_flag)
		if vps.Vps_poc_proportional_to_timing_flag == 1 {
			s.ue32("vps_num_ticks_poc_diff_one_minus1", &vps.Vps_num_ticks_poc_diff_one_minus1, 0, maxUe)
		}

		s.ue16("vps_num_hrd_parameters", &vps.Vps_num_hrd_parameters, 0, uint32(vps.Vps_num_layer_sets_minus1)+1)
		n := int(vps.Vps_num_hrd_parameters)
		if s.reading() {
			vps.Hrd_layer_set_idx = make([]uint16, n)
			vps.Cprms_present_flag = make([]uint8, n)
			vps.Hrd_parameters = make([]H265RawHRDParameters, n)
		} else if len(vps.Hrd_layer_set_idx) < n || len(vps.Cprms_present_flag) < n || len(vps.Hrd_parameters) < n {
			s.fail("vps has less than %d hrd parameters", n)
			return
		}
		for i := 0; i < n; i++ {
			min := uint32(1)
			if vps.Vps_base_layer_internal_flag == 1 {
				min = 0
			}
			s.ue16("hrd_layer_set_idx", &vps.Hrd_layer_set_idx[i], min, uint32(vps.Vps_num_layer_sets_minus1))
			if i > 0 {
				s.flag(&vps.Cprms_present_flag[i])
			} else if s.reading() {
				vps.Cprms_present_flag[0] = 1
			}
			vps.Hrd_parameters[i].syntax(s, vps.Cprms_present_flag[i] == 1, maxSubLayersMinus1)
		}
	}

	s.flag(&vps.Vps_extension_flag)
	if vps.Vps_extension_flag == 1 {
		vps.Extension_data.syntax(s)
	}

	s.trailingBits()
}
