// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"github.com/cnotch/omafhevc/utils"
	"github.com/cnotch/omafhevc/utils/bits"
	"github.com/pkg/errors"
)

// SeiPayload 可序列化的 SEI 负载
type SeiPayload interface {
	PayloadType() int
	syntax(s *bitstream)
}

// SeiRawPayload 未解析的 SEI 负载
type SeiRawPayload struct {
	Type int
	Data []byte
}

// PayloadType .
func (p *SeiRawPayload) PayloadType() int { return p.Type }

func (p *SeiRawPayload) syntax(s *bitstream) {
	if s.reading() {
		p.Data = s.r.BytesLeft()
		s.r.Skip(len(p.Data) << 3)
		return
	}
	for i := range p.Data {
		s.u8(8, &p.Data[i])
	}
}

// FramePackingArrangement frame_packing_arrangement()
type FramePackingArrangement struct {
	ID                        uint32
	Cancel                    bool
	Type                      uint8
	QuincunxSampling          bool
	ContentInterpretationType uint8
	SpatialFlipping           bool
	Frame0Flipped             bool
	FieldViews                bool
	CurrentFrameIsFrame0      bool
	Frame0SelfContained       bool
	Frame1SelfContained       bool
	Frame0GridPositionX       uint8
	Frame0GridPositionY       uint8
	Frame1GridPositionX       uint8
	Frame1GridPositionY       uint8
	Persistence               bool
	UpsampledAspectRatio      bool
}

// PayloadType .
func (fpa *FramePackingArrangement) PayloadType() int { return SeiFramePackingArrangement }

func (fpa *FramePackingArrangement) syntax(s *bitstream) {
	s.ue32("frame_packing_arrangement_id", &fpa.ID, 0, maxUe-1)
	s.boolean(&fpa.Cancel)
	if !fpa.Cancel {
		s.u8(7, &fpa.Type)
		s.boolean(&fpa.QuincunxSampling)
		s.u8(6, &fpa.ContentInterpretationType)
		s.boolean(&fpa.SpatialFlipping)
		s.boolean(&fpa.Frame0Flipped)
		s.boolean(&fpa.FieldViews)
		s.boolean(&fpa.CurrentFrameIsFrame0)
		s.boolean(&fpa.Frame0SelfContained)
		s.boolean(&fpa.Frame1SelfContained)
		if !fpa.QuincunxSampling && fpa.Type != 5 {
			s.u8(4, &fpa.Frame0GridPositionX)
			s.u8(4, &fpa.Frame0GridPositionY)
			s.u8(4, &fpa.Frame1GridPositionX)
			s.u8(4, &fpa.Frame1GridPositionY)
		}
		s.fixed(8, 0) // frame_packing_arrangement_reserved_byte
		s.boolean(&fpa.Persistence)
	}
	s.boolean(&fpa.UpsampledAspectRatio)
}

// EquirectangularProjection equirectangular_projection()
type EquirectangularProjection struct {
	Cancel              bool
	Persistence         bool
	GuardBand           bool
	GuardBandType       uint8
	LeftGuardBandWidth  uint8
	RightGuardBandWidth uint8
}

// PayloadType .
func (erp *EquirectangularProjection) PayloadType() int { return SeiEquirectangularProjection }

func (erp *EquirectangularProjection) syntax(s *bitstream) {
	s.boolean(&erp.Cancel)
	if erp.Cancel {
		return
	}
	s.boolean(&erp.Persistence)
	s.boolean(&erp.GuardBand)
	s.fixed(2, 0) // erp_reserved_zero_2bits
	if erp.GuardBand {
		s.u8(3, &erp.GuardBandType)
		s.u8(8, &erp.LeftGuardBandWidth)
		s.u8(8, &erp.RightGuardBandWidth)
	}
}

// CubemapProjection cubemap_projection()
type CubemapProjection struct {
	Cancel      bool
	Persistence bool
}

// PayloadType .
func (cmp *CubemapProjection) PayloadType() int { return SeiCubemapProjection }

func (cmp *CubemapProjection) syntax(s *bitstream) {
	s.boolean(&cmp.Cancel)
	if !cmp.Cancel {
		s.boolean(&cmp.Persistence)
	}
}

// SphereRotation sphere_rotation()，角度单位为 2^-16 度
type SphereRotation struct {
	Cancel      bool
	Persistence bool
	Yaw         int32
	Pitch       int32
	Roll        int32
}

// PayloadType .
func (sr *SphereRotation) PayloadType() int { return SeiSphereRotation }

func (sr *SphereRotation) syntax(s *bitstream) {
	s.boolean(&sr.Cancel)
	if sr.Cancel {
		return
	}
	s.boolean(&sr.Persistence)
	s.fixed(6, 0) // sphere_rotation_reserved_zero_6bits
	s.i32(&sr.Yaw)
	s.i32(&sr.Pitch)
	s.i32(&sr.Roll)
}

// PackedRegion 区域打包中的一个区域
type PackedRegion struct {
	TransformType uint8
	GuardBand     bool

	ProjRegionWidth  uint32
	ProjRegionHeight uint32
	ProjRegionTop    uint32
	ProjRegionLeft   uint32

	PackedRegionWidth  uint16
	PackedRegionHeight uint16
	PackedRegionTop    uint16
	PackedRegionLeft   uint16

	LeftGuardBandWidth      uint8
	RightGuardBandWidth     uint8
	TopGuardBandHeight      uint8
	BottomGuardBandHeight   uint8
	GuardBandNotUsedForPred bool
	GuardBandType           [4]uint8
}

// RegionWisePacking regionwise_packing()
type RegionWisePacking struct {
	Cancel                     bool
	Persistence                bool
	ConstituentPictureMatching bool
	ProjPictureWidth           uint32
	ProjPictureHeight          uint32
	PackedPictureWidth         uint16
	PackedPictureHeight        uint16
	Regions                    []PackedRegion
}

// PayloadType .
func (rwp *RegionWisePacking) PayloadType() int { return SeiRegionwisePacking }

func (rwp *RegionWisePacking) syntax(s *bitstream) {
	s.boolean(&rwp.Cancel)
	if rwp.Cancel {
		return
	}
	s.boolean(&rwp.Persistence)
	s.boolean(&rwp.ConstituentPictureMatching)
	s.fixed(5, 0) // rwp_reserved_zero_5bits

	if !s.reading() && len(rwp.Regions) > maxUint8 {
		s.fail("too many packed regions: %d", len(rwp.Regions))
		return
	}
	numRegions := uint8(len(rwp.Regions))
	s.u8(8, &numRegions)
	s.u32(32, &rwp.ProjPictureWidth)
	s.u32(32, &rwp.ProjPictureHeight)
	s.u16(16, &rwp.PackedPictureWidth)
	s.u16(16, &rwp.PackedPictureHeight)
	if s.failed() {
		return
	}

	if s.reading() {
		rwp.Regions = make([]PackedRegion, numRegions)
	}
	for i := range rwp.Regions {
		r := &rwp.Regions[i]
		s.fixed(4, 0) // rwp_reserved_zero_4bits
		s.u8(3, &r.TransformType)
		s.boolean(&r.GuardBand)
		s.u32(32, &r.ProjRegionWidth)
		s.u32(32, &r.ProjRegionHeight)
		s.u32(32, &r.ProjRegionTop)
		s.u32(32, &r.ProjRegionLeft)
		s.u16(16, &r.PackedRegionWidth)
		s.u16(16, &r.PackedRegionHeight)
		s.u16(16, &r.PackedRegionTop)
		s.u16(16, &r.PackedRegionLeft)
		if r.GuardBand {
			s.u8(8, &r.LeftGuardBandWidth)
			s.u8(8, &r.RightGuardBandWidth)
			s.u8(8, &r.TopGuardBandHeight)
			s.u8(8, &r.BottomGuardBandHeight)
			s.boolean(&r.GuardBandNotUsedForPred)
			for j := 0; j < 4; j++ {
				s.u8(3, &r.GuardBandType[j])
			}
			s.fixed(3, 0) // rwp_guard_band_reserved_zero_3bits
		}
	}
}

// EncodeSeiRbsp 编码 SEI NAL 的 RBSP(含 NAL 头及 rbsp_trailing_bits)，
// prefix 决定 NAL 类型为前缀或后缀 SEI
func EncodeSeiRbsp(prefix bool, msgs ...SeiPayload) (rbsp []byte, err error) {
	defer recoverSyntax(&err, "sei")

	if len(msgs) == 0 {
		return nil, errors.Wrap(ErrMalformedSyntax, "sei without message")
	}

	nh := H265RawNALUnitHeader{Nal_unit_type: NalSeiSuffix, Nuh_temporal_id_plus1: 1}
	if prefix {
		nh.Nal_unit_type = NalSeiPrefix
	}
	s := newWriteStream(make([]byte, 0, 64))
	nh.syntax(s)
	if err = s.Err(); err != nil {
		return nil, err
	}

	for _, msg := range msgs {
		payload, err := encodeSeiPayload(msg)
		if err != nil {
			return nil, err
		}
		writeSeiValue(s.w, msg.PayloadType())
		writeSeiValue(s.w, len(payload))
		for _, b := range payload {
			s.w.Write(uint32(b), 8)
		}
	}
	s.w.WriteTrailingBits()
	return s.w.Bytes(), nil
}

// EncodeSeiNal 编码成字节流格式的 SEI NAL，withStartCode 时添加 4 字节起始码
func EncodeSeiNal(prefix, withStartCode bool, msgs ...SeiPayload) ([]byte, error) {
	rbsp, err := EncodeSeiRbsp(prefix, msgs...)
	if err != nil {
		return nil, err
	}
	return utils.ToByteStream(rbsp, withStartCode), nil
}

func encodeSeiPayload(msg SeiPayload) ([]byte, error) {
	s := newWriteStream(make([]byte, 0, 32))
	msg.syntax(s)
	if err := s.Err(); err != nil {
		return nil, errors.WithMessagef(err, "sei payload %d", msg.PayloadType())
	}
	// payload_bit_equal_to_one, payload_bit_equal_to_zero
	if !s.w.ByteAligned() {
		s.w.WriteTrailingBits()
	}
	return s.w.Bytes(), nil
}

// writeSeiValue payload_type / payload_size：0xFF 续传字节加最后一个小于 0xFF 的字节
func writeSeiValue(w *bits.Writer, v int) {
	for ; v >= 0xff; v -= 0xff {
		w.Write(0xff, 8)
	}
	w.Write(uint32(v), 8)
}

// DecodeSeiRbsp 将 SEI NAL 的 RBSP(含 NAL 头) 拆分成原始消息
func DecodeSeiRbsp(rbsp []byte) (msgs []SeiRawPayload, err error) {
	defer recoverSyntax(&err, "sei")

	var nh H265RawNALUnitHeader
	s := newReadStream(rbsp)
	nh.expect(s, NalSeiPrefix, NalSeiSuffix)
	if err = s.Err(); err != nil {
		return nil, err
	}

	r := s.r
	for r.MoreRbspData() {
		payloadType := readSeiValue(r)
		payloadSize := readSeiValue(r)
		if err = r.Err(); err != nil {
			return nil, errors.Wrap(err, "hevc: sei message header")
		}
		if payloadSize > r.BitsLeft()>>3 {
			return nil, errors.Wrapf(ErrMalformedSyntax, "sei payload %d size %d exceeds nal", payloadType, payloadSize)
		}
		data := make([]byte, payloadSize)
		for i := range data {
			data[i] = r.ReadUint8(8)
		}
		msgs = append(msgs, SeiRawPayload{Type: payloadType, Data: data})
	}
	return msgs, nil
}

// DecodeSei 从字节流格式的 SEI NAL 中拆分消息，起始码可选
func DecodeSei(data []byte) ([]SeiRawPayload, error) {
	return DecodeSeiRbsp(nalPayload(data))
}

func readSeiValue(r *bits.Reader) (v int) {
	for {
		b := r.ReadUint8(8)
		v += int(b)
		if b != 0xff || r.Err() != nil {
			return
		}
	}
}

// ParseSeiPayload 解析支持的 SEI 负载，不支持的类型原样返回
func ParseSeiPayload(raw *SeiRawPayload) (p SeiPayload, err error) {
	defer recoverSyntax(&err, "sei payload")

	switch raw.Type {
	case SeiFramePackingArrangement:
		p = new(FramePackingArrangement)
	case SeiEquirectangularProjection:
		p = new(EquirectangularProjection)
	case SeiCubemapProjection:
		p = new(CubemapProjection)
	case SeiSphereRotation:
		p = new(SphereRotation)
	case SeiRegionwisePacking:
		p = new(RegionWisePacking)
	default:
		return raw, nil
	}

	s := newReadStream(raw.Data)
	p.syntax(s)
	if err = s.Err(); err != nil {
		return nil, errors.WithMessagef(err, "sei payload %d", raw.Type)
	}
	return p, nil
}
