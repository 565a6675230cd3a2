// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"github.com/cnotch/xlog"
	"github.com/pkg/errors"
)

// RefPicSet 当前图像的参考图像集，列表元素为 DPB 下标或 NoPicture
type RefPicSet struct {
	PocStCurrBefore []int32
	PocStCurrAfter  []int32
	PocStFoll       []int32
	PocLtCurr       []int32
	PocLtFoll       []int32

	CurrDeltaPocMsbPresentFlag []bool
	FollDeltaPocMsbPresentFlag []bool

	StCurrBefore []int
	StCurrAfter  []int
	StFoll       []int
	LtCurr       []int
	LtFoll       []int
}

// NumPicTotalCurr 当前图像可用的参考图像数
func (rps *RefPicSet) NumPicTotalCurr() int {
	return len(rps.PocStCurrBefore) + len(rps.PocStCurrAfter) + len(rps.PocLtCurr)
}

// DecodeRefPicSet 推导当前图像的参考图像集(8.3.2)，并重新标记 DPB 中的参考图像。
// 不在 DPB 中的参考图像解析为 NoPicture，这不是错误。
func (c *Context) DecodeRefPicSet(sh *H265RawSliceHeader, poc int32) (*RefPicSet, error) {
	nh := &sh.Nal_unit_header
	rps := new(RefPicSet)

	maxPocLsb := c.maxPicOrderCntLsb(sh)
	// 当前编码视频序列中的任何图像都可以被重新标记，
	// NoRaslOutputFlag 为 1 的 IRAP 图像之前的图像不再用于参考
	candidates := c.dpb.unmarkAll(nh.IsIrap() && c.noRaslOutputFlag)

	if !nh.IsIdr() {
		st := &sh.StRps
		for i := 0; i < st.NumNegativePics; i++ {
			if st.UsedByCurrPicS0[i] {
				rps.PocStCurrBefore = append(rps.PocStCurrBefore, poc+st.DeltaPocS0[i])
			} else {
				rps.PocStFoll = append(rps.PocStFoll, poc+st.DeltaPocS0[i])
			}
		}
		for i := 0; i < st.NumPositivePics; i++ {
			if st.UsedByCurrPicS1[i] {
				rps.PocStCurrAfter = append(rps.PocStCurrAfter, poc+st.DeltaPocS1[i])
			} else {
				rps.PocStFoll = append(rps.PocStFoll, poc+st.DeltaPocS1[i])
			}
		}

		if n := sh.NumLongTerm(); n > 0 {
			sps := c.spsOf(sh)
			if sps == nil {
				return nil, errors.Wrapf(ErrMissingParameterSet, "sps for pps %d", sh.Slice_pic_parameter_set_id)
			}
			cycles := sh.DeltaPocMsbCycleLt()
			for i := 0; i < n; i++ {
				pocLt := sh.PocLsbLt(i, sps)
				msbPresent := sh.Delta_poc_msb_present_flag[i] == 1
				if msbPresent {
					pocLt += poc - cycles[i]*maxPocLsb - (poc & (maxPocLsb - 1))
				}
				if sh.usedByCurrPicLt(i, sps) {
					rps.PocLtCurr = append(rps.PocLtCurr, pocLt)
					rps.CurrDeltaPocMsbPresentFlag = append(rps.CurrDeltaPocMsbPresentFlag, msbPresent)
				} else {
					rps.PocLtFoll = append(rps.PocLtFoll, pocLt)
					rps.FollDeltaPocMsbPresentFlag = append(rps.FollDeltaPocMsbPresentFlag, msbPresent)
				}
			}
		}
	}

	// 长期参考图像先于短期参考图像匹配
	lsbMask := maxPocLsb - 1
	resolveLt := func(pocs []int32, msbPresent []bool) []int {
		idx := make([]int, len(pocs))
		for i, p := range pocs {
			mask := lsbMask
			if msbPresent[i] {
				mask = -1
			}
			idx[i] = c.dpb.find(p, mask, candidates)
		}
		return idx
	}
	rps.LtCurr = resolveLt(rps.PocLtCurr, rps.CurrDeltaPocMsbPresentFlag)
	rps.LtFoll = resolveLt(rps.PocLtFoll, rps.FollDeltaPocMsbPresentFlag)
	for _, lt := range [][]int{rps.LtCurr, rps.LtFoll} {
		for _, i := range lt {
			if i != NoPicture {
				c.dpb.pics[i].IsReference = true
				c.dpb.pics[i].IsLongTerm = true
				candidates[i] = false
			}
		}
	}

	resolveSt := func(pocs []int32) []int {
		idx := make([]int, len(pocs))
		for i, p := range pocs {
			idx[i] = c.dpb.find(p, -1, candidates)
			if idx[i] != NoPicture {
				c.dpb.pics[idx[i]].IsReference = true
			}
		}
		return idx
	}
	rps.StCurrBefore = resolveSt(rps.PocStCurrBefore)
	rps.StCurrAfter = resolveSt(rps.PocStCurrAfter)
	rps.StFoll = resolveSt(rps.PocStFoll)

	if c.logger.LevelEnabled(xlog.DebugLevel) {
		c.logger.Debugf("rps poc %d: st before %v after %v foll %v, lt curr %v foll %v",
			poc, rps.PocStCurrBefore, rps.PocStCurrAfter, rps.PocStFoll, rps.PocLtCurr, rps.PocLtFoll)
	}
	for i, idx := range rps.StCurrBefore {
		if idx == NoPicture && !nh.IsIrap() {
			c.logger.Warnf("poc %d: short-term reference %d missing in dpb", poc, rps.PocStCurrBefore[i])
		}
	}
	return rps, nil
}
