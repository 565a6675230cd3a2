// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

// NoPicture 参考图像不在 DPB 中
const NoPicture = -1

// Picture DPB 中的已解码图像
type Picture struct {
	Poc         int32
	PocLsb      int32 // 片头中的 slice_pic_order_cnt_lsb
	Width       int
	Height      int
	CodingIndex int  // 解码顺序
	IsReference bool // 用于参考
	IsLongTerm  bool // 长期参考
	Output      bool

	stale bool // 属于之前的编码视频序列，不再参与匹配
}

// Dpb 解码图像缓冲区，图像按加入顺序存放并以下标访问。
// Prune 之后，之前返回的下标失效。
type Dpb struct {
	pics []Picture
}

// Add 加入图像并返回其下标
func (d *Dpb) Add(pic Picture) int {
	d.pics = append(d.pics, pic)
	return len(d.pics) - 1
}

// At 返回下标对应的图像，下标无效时返回 nil
func (d *Dpb) At(i int) *Picture {
	if i < 0 || i >= len(d.pics) {
		return nil
	}
	return &d.pics[i]
}

// Len .
func (d *Dpb) Len() int { return len(d.pics) }

// Reset 清空缓冲区
func (d *Dpb) Reset() {
	d.pics = d.pics[:0]
}

// Prune 从最旧的开始移除非参考图像，直到图像数不超过 max；返回移除的图像数。
// max <= 0 时不做限制。
func (d *Dpb) Prune(max int) (removed int) {
	if max <= 0 || len(d.pics) <= max {
		return 0
	}

	excess := len(d.pics) - max
	kept := d.pics[:0]
	for _, pic := range d.pics {
		if removed < excess && !pic.IsReference {
			removed++
			continue
		}
		kept = append(kept, pic)
	}
	for i := len(kept); i < len(d.pics); i++ {
		d.pics[i] = Picture{}
	}
	d.pics = kept
	return
}

// unmarkAll 清除所有参考标记，返回可供重新标记的图像。
// newSequence 为 true 时，已有图像都属于之前的编码视频序列。
func (d *Dpb) unmarkAll(newSequence bool) []bool {
	candidates := make([]bool, len(d.pics))
	for i := range d.pics {
		pic := &d.pics[i]
		pic.IsReference = false
		pic.IsLongTerm = false
		if newSequence {
			pic.stale = true
		}
		candidates[i] = !pic.stale
	}
	return candidates
}

// find 从最新的图像开始查找，mask 为 POC 比较时使用的掩码
func (d *Dpb) find(poc int32, mask int32, candidates []bool) int {
	for i := len(d.pics) - 1; i >= 0; i-- {
		if candidates[i] && d.pics[i].Poc&mask == poc {
			return i
		}
	}
	return NoPicture
}
