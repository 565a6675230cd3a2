// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import "github.com/pkg/errors"

// H265RawSTRefPicSet st_ref_pic_set() 的原始语法
type H265RawSTRefPicSet struct {
	Inter_ref_pic_set_prediction_flag uint8

	Delta_idx_minus1     uint8
	Delta_rps_sign       uint8
	Abs_delta_rps_minus1 uint16

	// j 的取值范围为 0..NumDeltaPocs[RefRpsIdx]
	Used_by_curr_pic_flag [HEVC_MAX_REFS + 1]uint8
	Use_delta_flag        [HEVC_MAX_REFS + 1]uint8

	Num_negative_pics        uint8
	Num_positive_pics        uint8
	Delta_poc_s0_minus1      [HEVC_MAX_REFS]uint16
	Used_by_curr_pic_s0_flag [HEVC_MAX_REFS]uint8
	Delta_poc_s1_minus1      [HEVC_MAX_REFS]uint16
	Used_by_curr_pic_s1_flag [HEVC_MAX_REFS]uint8
}

// ShortTermRefPicSet 推导后的短期参考图像集，DeltaPocS0 为负向，DeltaPocS1 为正向
type ShortTermRefPicSet struct {
	NumNegativePics int
	NumPositivePics int
	NumDeltaPocs    int
	DeltaPocS0      []int32
	UsedByCurrPicS0 []bool
	DeltaPocS1      []int32
	UsedByCurrPicS1 []bool
}

// NumUsedByCurrPic 当前图像使用的参考图像数
func (st *ShortTermRefPicSet) NumUsedByCurrPic() (n int) {
	for _, used := range st.UsedByCurrPicS0 {
		if used {
			n++
		}
	}
	for _, used := range st.UsedByCurrPicS1 {
		if used {
			n++
		}
	}
	return
}

// syntax 读写 st_ref_pic_set(stRpsIdx)，sets 为 SPS 中已推导的集合
func (rps *H265RawSTRefPicSet) syntax(s *bitstream, stRpsIdx, numShortTermRefPicSets int,
	sets []ShortTermRefPicSet) {
	if stRpsIdx != 0 {
		s.flag(&rps.Inter_ref_pic_set_prediction_flag)
	} else if s.reading() {
		rps.Inter_ref_pic_set_prediction_flag = 0
	}

	if rps.Inter_ref_pic_set_prediction_flag == 1 {
		if stRpsIdx == numShortTermRefPicSets {
			s.ue8("delta_idx_minus1", &rps.Delta_idx_minus1, 0, uint32(stRpsIdx-1))
		} else if s.reading() {
			rps.Delta_idx_minus1 = 0
		}

		refRpsIdx := stRpsIdx - int(rps.Delta_idx_minus1) - 1
		if refRpsIdx < 0 || refRpsIdx >= len(sets) {
			s.fail("short-term ref pic set %d refers to unknown set %d", stRpsIdx, refRpsIdx)
			return
		}
		ref := &sets[refRpsIdx]

		s.flag(&rps.Delta_rps_sign)
		s.ue16("abs_delta_rps_minus1", &rps.Abs_delta_rps_minus1, 0, 1<<15-1)
		for j := 0; j <= ref.NumDeltaPocs; j++ {
			s.flag(&rps.Used_by_curr_pic_flag[j])
			if rps.Used_by_curr_pic_flag[j] == 0 {
				s.flag(&rps.Use_delta_flag[j])
			} else if s.reading() {
				rps.Use_delta_flag[j] = 1
			}
		}
		return
	}

	s.ue8("num_negative_pics", &rps.Num_negative_pics, 0, HEVC_MAX_DPB_SIZE-1)
	s.ue8("num_positive_pics", &rps.Num_positive_pics, 0, HEVC_MAX_DPB_SIZE-1)
	if int(rps.Num_negative_pics)+int(rps.Num_positive_pics) > HEVC_MAX_DPB_SIZE-1 {
		s.fail("short-term ref pic set %d contains too many pictures", stRpsIdx)
		return
	}

	for i := 0; i < int(rps.Num_negative_pics); i++ {
		s.ue16("delta_poc_s0_minus1", &rps.Delta_poc_s0_minus1[i], 0, 1<<15-1)
		s.flag(&rps.Used_by_curr_pic_s0_flag[i])
	}
	for i := 0; i < int(rps.Num_positive_pics); i++ {
		s.ue16("delta_poc_s1_minus1", &rps.Delta_poc_s1_minus1[i], 0, 1<<15-1)
		s.flag(&rps.Used_by_curr_pic_s1_flag[i])
	}
}

// Derive 推导参考图像集 (7-61, 7-62)。
// 帧间预测的集合引用 sets 中已推导的集合，推导必须按索引递增的顺序进行。
func (rps *H265RawSTRefPicSet) Derive(stRpsIdx int, sets []ShortTermRefPicSet) (st ShortTermRefPicSet, err error) {
	if rps.Inter_ref_pic_set_prediction_flag == 0 {
		var dPoc int32
		for i := 0; i < int(rps.Num_negative_pics); i++ {
			dPoc -= int32(rps.Delta_poc_s0_minus1[i]) + 1
			st.DeltaPocS0 = append(st.DeltaPocS0, dPoc)
			st.UsedByCurrPicS0 = append(st.UsedByCurrPicS0, rps.Used_by_curr_pic_s0_flag[i] == 1)
		}
		dPoc = 0
		for i := 0; i < int(rps.Num_positive_pics); i++ {
			dPoc += int32(rps.Delta_poc_s1_minus1[i]) + 1
			st.DeltaPocS1 = append(st.DeltaPocS1, dPoc)
			st.UsedByCurrPicS1 = append(st.UsedByCurrPicS1, rps.Used_by_curr_pic_s1_flag[i] == 1)
		}
	} else {
		refRpsIdx := stRpsIdx - int(rps.Delta_idx_minus1) - 1
		if refRpsIdx < 0 || refRpsIdx >= len(sets) {
			return st, errors.Wrapf(ErrMalformedSyntax, "short-term ref pic set %d refers to unknown set %d", stRpsIdx, refRpsIdx)
		}
		ref := &sets[refRpsIdx]
		deltaRps := (1 - 2*int32(rps.Delta_rps_sign)) * (int32(rps.Abs_delta_rps_minus1) + 1)

		for j := ref.NumPositivePics - 1; j >= 0; j-- {
			dPoc := ref.DeltaPocS1[j] + deltaRps
			if dPoc < 0 && rps.Use_delta_flag[ref.NumNegativePics+j] == 1 {
				st.DeltaPocS0 = append(st.DeltaPocS0, dPoc)
				st.UsedByCurrPicS0 = append(st.UsedByCurrPicS0, rps.Used_by_curr_pic_flag[ref.NumNegativePics+j] == 1)
			}
		}
		if deltaRps < 0 && rps.Use_delta_flag[ref.NumDeltaPocs] == 1 {
			st.DeltaPocS0 = append(st.DeltaPocS0, deltaRps)
			st.UsedByCurrPicS0 = append(st.UsedByCurrPicS0, rps.Used_by_curr_pic_flag[ref.NumDeltaPocs] == 1)
		}
		for j := 0; j < ref.NumNegativePics; j++ {
			dPoc := ref.DeltaPocS0[j] + deltaRps
			if dPoc < 0 && rps.Use_delta_flag[j] == 1 {
				st.DeltaPocS0 = append(st.DeltaPocS0, dPoc)
				st.UsedByCurrPicS0 = append(st.UsedByCurrPicS0, rps.Used_by_curr_pic_flag[j] == 1)
			}
		}

		for j := ref.NumNegativePics - 1; j >= 0; j-- {
			dPoc := ref.DeltaPocS0[j] + deltaRps
			if dPoc > 0 && rps.Use_delta_flag[j] == 1 {
				st.DeltaPocS1 = append(st.DeltaPocS1, dPoc)
				st.UsedByCurrPicS1 = append(st.UsedByCurrPicS1, rps.Used_by_curr_pic_flag[j] == 1)
			}
		}
		if deltaRps > 0 && rps.Use_delta_flag[ref.NumDeltaPocs] == 1 {
			st.DeltaPocS1 = append(st.DeltaPocS1, deltaRps)
			st.UsedByCurrPicS1 = append(st.UsedByCurrPicS1, rps.Used_by_curr_pic_flag[ref.NumDeltaPocs] == 1)
		}
		for j := 0; j < ref.NumPositivePics; j++ {
			dPoc := ref.DeltaPocS1[j] + deltaRps
			if dPoc > 0 && rps.Use_delta_flag[ref.NumNegativePics+j] == 1 {
				st.DeltaPocS1 = append(st.DeltaPocS1, dPoc)
				st.UsedByCurrPicS1 = append(st.UsedByCurrPicS1, rps.Used_by_curr_pic_flag[ref.NumNegativePics+j] == 1)
			}
		}
	}

	st.NumNegativePics = len(st.DeltaPocS0)
	st.NumPositivePics = len(st.DeltaPocS1)
	st.NumDeltaPocs = st.NumNegativePics + st.NumPositivePics
	if st.NumDeltaPocs > HEVC_MAX_DPB_SIZE-1 {
		return st, errors.Wrapf(ErrMalformedSyntax, "short-term ref pic set %d contains too many pictures", stRpsIdx)
	}
	return st, nil
}
