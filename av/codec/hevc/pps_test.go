// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"testing"

	"github.com/cnotch/omafhevc/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSpsB64 = "QgEBAWAAAAMAkAAAAwAAAwBdoAKAgC0WWVmkkyuAQAAA+kAAF3AC"

// testSps 1280x720, CTB 64x64 (20x12)
func testSps(t testing.TB) *H265RawSPS {
	sps := new(H265RawSPS)
	require.NoError(t, sps.DecodeString(testSpsB64))
	return sps
}

func testPps(id uint8, modify func(pps *H265RawPPS)) *H265RawPPS {
	pps := &H265RawPPS{
		Nal_unit_header:                            H265RawNALUnitHeader{Nal_unit_type: NalPps, Nuh_temporal_id_plus1: 1},
		Pps_pic_parameter_set_id:                   id,
		Init_qp_minus26:                            -2,
		Uniform_spacing_flag:                       1,
		Loop_filter_across_tiles_enabled_flag:      1,
		Pps_loop_filter_across_slices_enabled_flag: 1,
	}
	if modify != nil {
		modify(pps)
	}
	return pps
}

func TestH265RawPPS_RoundTrip(t *testing.T) {
	sps := testSps(t)
	tests := []struct {
		name       string
		modify     func(pps *H265RawPPS)
		wantWidths []int
		wantRows   []int
	}{
		{"default", nil, []int{20}, []int{12}},
		{"explicit_tiles", func(pps *H265RawPPS) {
			pps.Tiles_enabled_flag = 1
			pps.Num_tile_columns_minus1 = 2
			pps.Num_tile_rows_minus1 = 1
			pps.Uniform_spacing_flag = 0
			pps.Column_width_minus1[0] = 4
			pps.Column_width_minus1[1] = 9
			pps.Row_height_minus1[0] = 5
			pps.Loop_filter_across_tiles_enabled_flag = 0
		}, []int{5, 10, 5}, []int{6, 6}},
		{"uniform_tiles", func(pps *H265RawPPS) {
			pps.Tiles_enabled_flag = 1
			pps.Num_tile_columns_minus1 = 2
			pps.Num_tile_rows_minus1 = 0
			pps.Entropy_coding_sync_enabled_flag = 1
		}, []int{6, 7, 7}, []int{12}},
		{"deblocking_and_lists", func(pps *H265RawPPS) {
			pps.Dependent_slice_segments_enabled_flag = 1
			pps.Cabac_init_present_flag = 1
			pps.Num_ref_idx_l0_default_active_minus1 = 3
			pps.Cu_qp_delta_enabled_flag = 1
			pps.Diff_cu_qp_delta_depth = 2
			pps.Pps_cb_qp_offset = -3
			pps.Pps_cr_qp_offset = 4
			pps.Weighted_pred_flag = 1
			pps.Deblocking_filter_control_present_flag = 1
			pps.Deblocking_filter_override_enabled_flag = 1
			pps.Pps_beta_offset_div2 = -2
			pps.Pps_tc_offset_div2 = 3
			pps.Lists_modification_present_flag = 1
			pps.Log2_parallel_merge_level_minus2 = 2
		}, []int{20}, []int{12}},
		{"range_extension", func(pps *H265RawPPS) {
			pps.Transform_skip_enabled_flag = 1
			pps.Pps_extension_present_flag = 1
			pps.Pps_range_extension_flag = 1
			pps.Log2_max_transform_skip_block_size_minus2 = 2
			pps.Chroma_qp_offset_list_enabled_flag = 1
			pps.Diff_cu_chroma_qp_offset_depth = 1
			pps.Chroma_qp_offset_list_len_minus1 = 1
			pps.Cb_qp_offset_list[0] = -2
			pps.Cb_qp_offset_list[1] = 3
			pps.Cr_qp_offset_list[0] = 1
			pps.Cr_qp_offset_list[1] = -1
			pps.Log2_sao_offset_scale_luma = 1
		}, []int{20}, []int{12}},
		{"raw_extension", func(pps *H265RawPPS) {
			pps.Pps_extension_present_flag = 1
			pps.Pps_extension_4bits = 0x3
			pps.Extension_data = H265RawExtensionData{Data: []byte{0xa0}, BitLength: 3}
		}, []int{20}, []int{12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pps := testPps(1, tt.modify)
			data, err := pps.Encode()
			require.NoError(t, err)

			var got H265RawPPS
			require.NoError(t, got.Decode(data))
			assert.Equal(t, *pps, got)
			assert.Equal(t, tt.wantWidths, got.ColumnWidths(sps))
			assert.Equal(t, tt.wantRows, got.RowHeights(sps))

			again, err := got.EncodeRbsp()
			require.NoError(t, err)
			assert.Equal(t, utils.ToRBSP(data, false), again)
		})
	}
}

func TestH265RawPPS_OutOfRange(t *testing.T) {
	pps := testPps(0, func(pps *H265RawPPS) {
		pps.Pps_cb_qp_offset = 13
	})
	_, err := pps.Encode()
	assert.Error(t, err)
}
