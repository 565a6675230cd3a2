// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import "github.com/pkg/errors"

// GenerateRefPicLists 构造片的参考图像列表(8.3.4)，列表元素为 DPB 下标或 NoPicture。
// I 片返回空列表，只有 B 片构造 l1。
func GenerateRefPicLists(sh *H265RawSliceHeader, rps *RefPicSet) (l0, l1 []int, err error) {
	if sh.Slice_type == SliceI {
		return nil, nil, nil
	}

	numPicTotalCurr := rps.NumPicTotalCurr()
	if numPicTotalCurr == 0 {
		return nil, nil, errors.Wrapf(ErrMalformedSyntax, "%s slice without reference picture", sliceTypeName(sh.Slice_type))
	}

	rplm := &sh.Rpl_modification
	l0, err = buildRefPicList(int(sh.Num_ref_idx_l0_active_minus1)+1, numPicTotalCurr,
		rplm.Ref_pic_list_modification_flag_l0 == 1, rplm.List_entry_l0[:],
		rps.StCurrBefore, rps.StCurrAfter, rps.LtCurr)
	if err != nil {
		return nil, nil, err
	}

	if sh.Slice_type == SliceB {
		l1, err = buildRefPicList(int(sh.Num_ref_idx_l1_active_minus1)+1, numPicTotalCurr,
			rplm.Ref_pic_list_modification_flag_l1 == 1, rplm.List_entry_l1[:],
			rps.StCurrAfter, rps.StCurrBefore, rps.LtCurr)
		if err != nil {
			return nil, nil, err
		}
	}
	return
}

func buildRefPicList(numActive, numPicTotalCurr int, modified bool, entries []uint8, sets ...[]int) ([]int, error) {
	numRpsCurrTempList := numActive
	if numPicTotalCurr > numRpsCurrTempList {
		numRpsCurrTempList = numPicTotalCurr
	}

	temp := make([]int, 0, numRpsCurrTempList)
	for len(temp) < numRpsCurrTempList {
		for _, set := range sets {
			for _, idx := range set {
				if len(temp) == numRpsCurrTempList {
					break
				}
				temp = append(temp, idx)
			}
		}
	}

	list := make([]int, numActive)
	for i := range list {
		if !modified {
			list[i] = temp[i]
			continue
		}
		if int(entries[i]) >= len(temp) {
			return nil, errors.Wrapf(ErrMalformedSyntax, "list_entry %d out of range", entries[i])
		}
		list[i] = temp[entries[i]]
	}
	return list, nil
}

func sliceTypeName(t uint8) string {
	switch t {
	case SliceB:
		return "B"
	case SliceP:
		return "P"
	case SliceI:
		return "I"
	}
	return "unknown"
}
