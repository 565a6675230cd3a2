// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import "github.com/pkg/errors"

// H265RawNALUnitHeader NAL 单元头
type H265RawNALUnitHeader struct {
	Nal_unit_type         uint8
	Nuh_layer_id          uint8
	Nuh_temporal_id_plus1 uint8
}

// ParseNALUnitHeader 从 NAL 的前两个字节解析 NAL 头(不含起始码)
func ParseNALUnitHeader(nal []byte) (h H265RawNALUnitHeader, err error) {
	if len(nal) < 2 {
		return h, errors.Wrap(ErrMalformedSyntax, "nal unit header too short")
	}
	s := newReadStream(nal[:2])
	h.syntax(s)
	return h, s.Err()
}

func (h *H265RawNALUnitHeader) syntax(s *bitstream) {
	s.fixed(1, 0) // forbidden_zero_bit
	s.u8(6, &h.Nal_unit_type)
	s.u8(6, &h.Nuh_layer_id)
	s.u8(3, &h.Nuh_temporal_id_plus1)
	if h.Nuh_temporal_id_plus1 == 0 {
		s.fail("nuh_temporal_id_plus1 must not be 0")
	}
}

// expect 读写 NAL 头并检查类型
func (h *H265RawNALUnitHeader) expect(s *bitstream, types ...uint8) {
	h.syntax(s)
	if s.failed() {
		return
	}
	for _, t := range types {
		if h.Nal_unit_type == t {
			return
		}
	}
	s.fail("unexpected nal unit type %d", h.Nal_unit_type)
}

// TemporalID 时域层 ID
func (h *H265RawNALUnitHeader) TemporalID() uint8 {
	if h.Nuh_temporal_id_plus1 == 0 {
		return 0
	}
	return h.Nuh_temporal_id_plus1 - 1
}

// IsVcl 是否为视频编码层 NAL
func (h *H265RawNALUnitHeader) IsVcl() bool { return h.Nal_unit_type < NalVps }

// IsIrap 是否为随机接入点图像 (BLA/IDR/CRA)
func (h *H265RawNALUnitHeader) IsIrap() bool {
	return h.Nal_unit_type >= NalBlaWLp && h.Nal_unit_type <= NalIrapVcl23
}

// IsIdr .
func (h *H265RawNALUnitHeader) IsIdr() bool {
	return h.Nal_unit_type == NalIdrWRadl || h.Nal_unit_type == NalIdrNLp
}

// IsBla .
func (h *H265RawNALUnitHeader) IsBla() bool {
	return h.Nal_unit_type >= NalBlaWLp && h.Nal_unit_type <= NalBlaNLp
}

// IsCra .
func (h *H265RawNALUnitHeader) IsCra() bool { return h.Nal_unit_type == NalCraNut }

// IsRadl .
func (h *H265RawNALUnitHeader) IsRadl() bool {
	return h.Nal_unit_type == NalRadlN || h.Nal_unit_type == NalRadlR
}

// IsRasl .
func (h *H265RawNALUnitHeader) IsRasl() bool {
	return h.Nal_unit_type == NalRaslN || h.Nal_unit_type == NalRaslR
}

// IsSubLayerNonReference 子层非参考图像，类型号为偶数的 N 类图像
func (h *H265RawNALUnitHeader) IsSubLayerNonReference() bool {
	return h.Nal_unit_type <= NalVclN14 && h.Nal_unit_type%2 == 0
}
