// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"github.com/cnotch/omafhevc/utils"
	"github.com/cnotch/xlog"
	"github.com/pkg/errors"
)

// ParameterSetMap 按 ID 保存的参数集，相同 ID 的参数集后者覆盖前者
type ParameterSetMap struct {
	vps [HEVC_MAX_VPS_COUNT]*H265RawVPS
	sps [HEVC_MAX_SPS_COUNT]*H265RawSPS
	pps [HEVC_MAX_PPS_COUNT]*H265RawPPS
}

// PutVps 保存 vps 的副本
func (m *ParameterSetMap) PutVps(vps *H265RawVPS) {
	v := *vps
	m.vps[vps.Vps_video_parameter_set_id] = &v
}

// PutSps 保存 sps 的副本
func (m *ParameterSetMap) PutSps(sps *H265RawSPS) {
	v := *sps
	m.sps[sps.Sps_seq_parameter_set_id] = &v
}

// PutPps 保存 pps 的副本
func (m *ParameterSetMap) PutPps(pps *H265RawPPS) {
	v := *pps
	m.pps[pps.Pps_pic_parameter_set_id] = &v
}

// Vps .
func (m *ParameterSetMap) Vps(id uint8) *H265RawVPS {
	if int(id) >= len(m.vps) {
		return nil
	}
	return m.vps[id]
}

// Sps .
func (m *ParameterSetMap) Sps(id uint8) *H265RawSPS {
	if int(id) >= len(m.sps) {
		return nil
	}
	return m.sps[id]
}

// Pps .
func (m *ParameterSetMap) Pps(id uint8) *H265RawPPS {
	if int(id) >= len(m.pps) {
		return nil
	}
	return m.pps[id]
}

// SpsIDs 按 ID 升序返回已保存的 sps
func (m *ParameterSetMap) SpsIDs() (ids []uint8) {
	for id, sps := range m.sps {
		if sps != nil {
			ids = append(ids, uint8(id))
		}
	}
	return
}

// PpsIDs 按 ID 升序返回已保存的 pps
func (m *ParameterSetMap) PpsIDs() (ids []uint8) {
	for id, pps := range m.pps {
		if pps != nil {
			ids = append(ids, uint8(id))
		}
	}
	return
}

// Context 单个基本流的解码上下文，包含参数集、DPB 及 POC 状态。
// 非并发安全。
type Context struct {
	ParameterSetMap

	dpb Dpb

	prevPicOrderCntLsb int32
	prevPicOrderCntMsb int32
	// 下一个 IRAP 图像是否为序列的首个图像(流开始或 EOS 之后)
	firstPicture bool
	// 当前关联 IRAP 图像的 NoRaslOutputFlag
	noRaslOutputFlag bool

	prevSlice *H265RawSliceHeader // 前一个独立片段的片头
	logger    *xlog.Logger
}

// NewContext 创建解码上下文，logger 为 nil 时使用全局日志
func NewContext(logger *xlog.Logger) *Context {
	if logger == nil {
		logger = xlog.L()
	}
	return &Context{
		firstPicture: true,
		logger:       logger,
	}
}

// Dpb 解码图像缓冲区
func (c *Context) Dpb() *Dpb { return &c.dpb }

// PutParameterSet 解码字节流格式的 VPS/SPS/PPS NAL 并保存，起始码可选
func (c *Context) PutParameterSet(nal []byte) error {
	rbsp := nalPayload(nal)
	nh, err := ParseNALUnitHeader(rbsp)
	if err != nil {
		return err
	}

	switch nh.Nal_unit_type {
	case NalVps:
		var vps H265RawVPS
		if err = vps.DecodeRbsp(rbsp); err != nil {
			return err
		}
		c.PutVps(&vps)
	case NalSps:
		var sps H265RawSPS
		if err = sps.DecodeRbsp(rbsp); err != nil {
			return err
		}
		c.PutSps(&sps)
		if c.logger.LevelEnabled(xlog.DebugLevel) {
			c.logger.Debugf("sps %d: %dx%d, poc lsb %d bits, %d short-term rps",
				sps.Sps_seq_parameter_set_id, sps.Width(), sps.Height(),
				sps.Log2MaxPicOrderCntLsb(), sps.Num_short_term_ref_pic_sets)
		}
	case NalPps:
		var pps H265RawPPS
		if err = pps.DecodeRbsp(rbsp); err != nil {
			return err
		}
		c.PutPps(&pps)
	default:
		return errors.Wrapf(ErrMalformedSyntax, "nal unit type %d is not a parameter set", nh.Nal_unit_type)
	}
	return nil
}

// DecodeSliceHeader 解码字节流格式的片 NAL 的片头，起始码可选。
// 依赖片段继承前一个独立片段的字段。
func (c *Context) DecodeSliceHeader(nal []byte) (*H265RawSliceHeader, error) {
	return c.DecodeSliceHeaderRbsp(utils.ToRBSP(nal, utils.StartCodeLen(nal) > 0))
}

// DecodeSliceHeaderRbsp 从 RBSP(含 NAL 头) 中解码片头
func (c *Context) DecodeSliceHeaderRbsp(rbsp []byte) (*H265RawSliceHeader, error) {
	sh := new(H265RawSliceHeader)
	if err := sh.DecodeRbsp(rbsp, c, c.prevSlice); err != nil {
		return nil, err
	}
	if sh.Dependent_slice_segment_flag == 0 {
		c.prevSlice = sh
	}
	return sh, nil
}

// DecodePoc 计算图像的 POC，每个图像只能用其第一个片调用一次
func (c *Context) DecodePoc(sh *H265RawSliceHeader, nh *H265RawNALUnitHeader) int32 {
	lsb := int32(sh.Slice_pic_order_cnt_lsb)

	if nh.IsIrap() {
		c.noRaslOutputFlag = nh.IsIdr() || nh.IsBla() || c.firstPicture
	}
	c.firstPicture = false

	var msb int32
	if !(nh.IsIrap() && c.noRaslOutputFlag) {
		maxPocLsb := c.maxPicOrderCntLsb(sh)
		prevLsb, prevMsb := c.prevPicOrderCntLsb, c.prevPicOrderCntMsb
		switch {
		case lsb < prevLsb && prevLsb-lsb >= maxPocLsb/2:
			msb = prevMsb + maxPocLsb
		case lsb > prevLsb && lsb-prevLsb > maxPocLsb/2:
			msb = prevMsb - maxPocLsb
		default:
			msb = prevMsb
		}
	}
	poc := msb + lsb

	if nh.IsIdr() {
		c.prevPicOrderCntLsb, c.prevPicOrderCntMsb = 0, 0
	}
	if nh.TemporalID() == 0 && !nh.IsRadl() && !nh.IsRasl() && !nh.IsSubLayerNonReference() {
		c.prevPicOrderCntLsb, c.prevPicOrderCntMsb = lsb, msb
	}
	return poc
}

// spsOf 片头使用的 SPS
func (c *Context) spsOf(sh *H265RawSliceHeader) *H265RawSPS {
	if sh.sps != nil {
		return sh.sps
	}
	if pps := c.Pps(sh.Slice_pic_parameter_set_id); pps != nil {
		return c.Sps(pps.Pps_seq_parameter_set_id)
	}
	return nil
}

func (c *Context) maxPicOrderCntLsb(sh *H265RawSliceHeader) int32 {
	sps := c.spsOf(sh)
	if sps == nil {
		return 1 << 4
	}
	return sps.MaxPicOrderCntLsb()
}

// ResetPoc 将 POC 的前值清零
func (c *Context) ResetPoc() {
	c.prevPicOrderCntLsb, c.prevPicOrderCntMsb = 0, 0
}

// EndOfSequence 处理 EOS NAL，其后的 IRAP 图像开始新的编码视频序列
func (c *Context) EndOfSequence() {
	c.firstPicture = true
	c.prevSlice = nil
}

// NoRaslOutputFlag 当前关联 IRAP 图像的 NoRaslOutputFlag
func (c *Context) NoRaslOutputFlag() bool { return c.noRaslOutputFlag }

// RaslSkipped RASL 图像关联的 IRAP 图像 NoRaslOutputFlag 为 1 时，该图像不输出
func (c *Context) RaslSkipped(nh *H265RawNALUnitHeader) bool {
	return nh.IsRasl() && c.noRaslOutputFlag
}
