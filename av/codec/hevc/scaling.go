// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

// H265RawScalingList scaling_list_data()
type H265RawScalingList struct {
	Scaling_list_pred_mode_flag       [4][6]uint8
	Scaling_list_pred_matrix_id_delta [4][6]uint8
	Scaling_list_dc_coef_minus8       [4][6]int16 // 仅 sizeId > 1 有效
	Scaling_list_delta_coeff          [4][6][64]int8
}

func scalingListNumMatrix(sizeId int) int {
	if sizeId == 3 {
		return 2
	}
	return 6
}

func (sl *H265RawScalingList) syntax(s *bitstream) {
	for sizeId := 0; sizeId < 4; sizeId++ {
		for matrixId := 0; matrixId < scalingListNumMatrix(sizeId); matrixId++ {
			s.flag(&sl.Scaling_list_pred_mode_flag[sizeId][matrixId])
			if sl.Scaling_list_pred_mode_flag[sizeId][matrixId] == 0 {
				s.ue8("scaling_list_pred_matrix_id_delta",
					&sl.Scaling_list_pred_matrix_id_delta[sizeId][matrixId], 0, uint32(matrixId))
			} else {
				n := 1 << uint(4+(sizeId<<1))
				if n > 64 {
					n = 64
				}
				if sizeId > 1 {
					s.se16("scaling_list_dc_coef_minus8",
						&sl.Scaling_list_dc_coef_minus8[sizeId][matrixId], -7, 247)
				}
				for i := 0; i < n; i++ {
					s.se8("scaling_list_delta_coef",
						&sl.Scaling_list_delta_coeff[sizeId][matrixId][i], -128, 127)
				}
			}
		}
	}
}
