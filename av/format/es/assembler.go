// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package es

import (
	"io"
	"time"

	"github.com/cnotch/omafhevc/av/codec"
	"github.com/cnotch/omafhevc/av/codec/hevc"
	"github.com/cnotch/omafhevc/utils"
	"github.com/cnotch/queue"
	"github.com/cnotch/xlog"
	"github.com/pkg/errors"
)

// 组装器错误
var (
	ErrNotInitialized        = errors.New("es: metadata not loaded")
	ErrFrameRateUndetermined = errors.New("es: frame rate undetermined")
	ErrGopLengthViolation    = errors.New("es: gop length violation")
)

// Config 组装器配置
type Config struct {
	// 帧时长(秒)，为零时从 SPS 或 VPS 的时间信息推导
	FrameDuration Rational
	// 大于 0 时，解码序号为其整数倍的图像必须是 IDR 图像
	GopLength int
	// DPB 容量，为 0 时使用 SPS 的 sps_max_dec_pic_buffering_minus1 + 1
	DpbCapacity int
}

type assemblerState int

const (
	stateScanning assemblerState = iota
	stateFirstVclSeen
	stateBetweenPictures
)

// Assembler 把 NAL 单元组装成访问单元，每个图像一个。
// 非并发安全。
type Assembler struct {
	demuxer *Demuxer
	ctx     *hevc.Context
	cfg     Config
	logger  *xlog.Logger

	state   assemblerState
	cur     *AccessUnit
	rps     *hevc.RefPicSet // 当前图像的参考图像集，下标在图像封闭前有效
	dpbMax  int             // 当前图像封闭后 DPB 保留的图像数
	pending queue.Queue     // 已组装但未返回的访问单元
	eof     bool

	codingIndex int
	pocOffset   int64
	groupMaxPoc int32
	groupEmpty  bool

	meta          codec.VideoMeta
	metaLoaded    bool
	frameDuration time.Duration
}

// NewAssembler 创建组装器，logger 为 nil 时使用全局日志
func NewAssembler(src ByteSource, cfg Config, logger *xlog.Logger) *Assembler {
	if logger == nil {
		logger = xlog.L()
	}
	return &Assembler{
		demuxer:    NewDemuxer(src),
		ctx:        hevc.NewContext(logger),
		cfg:        cfg,
		logger:     logger,
		cur:        new(AccessUnit),
		groupEmpty: true,
	}
}

// Context 解码上下文
func (a *Assembler) Context() *hevc.Context { return a.ctx }

// EnsureMetadataLoaded 组装第一个访问单元并据此获取元数据，该访问单元仍由 Next 返回
func (a *Assembler) EnsureMetadataLoaded() error {
	if a.metaLoaded {
		return nil
	}

	if err := a.fill(); err != nil {
		return err
	}
	if a.pending.Len() == 0 {
		return errors.Wrap(io.ErrUnexpectedEOF, "no access unit in stream")
	}
	if !hevc.MetadataIsReady(&a.meta) {
		return errors.Wrap(hevc.ErrMissingParameterSet, "vps, sps and pps are required before the first picture")
	}

	duration, err := a.deriveFrameDuration()
	if err != nil {
		return err
	}
	a.frameDuration = duration
	a.metaLoaded = true

	a.logger.Infof("metadata loaded: %dx%d, frame duration %v", a.meta.Width, a.meta.Height, duration)
	return nil
}

// Metadata 视频元数据
func (a *Assembler) Metadata() (codec.VideoMeta, error) {
	if !a.metaLoaded {
		return codec.VideoMeta{}, ErrNotInitialized
	}
	return a.meta, nil
}

// FrameDuration 帧时长
func (a *Assembler) FrameDuration() (time.Duration, error) {
	if !a.metaLoaded {
		return 0, ErrNotInitialized
	}
	return a.frameDuration, nil
}

func (a *Assembler) deriveFrameDuration() (time.Duration, error) {
	if !a.cfg.FrameDuration.IsZero() {
		return a.cfg.FrameDuration.Duration(), nil
	}

	var sps hevc.H265RawSPS
	if err := sps.Decode(a.meta.Sps); err == nil {
		vui := &sps.Vui
		if vui.Vui_timing_info_present_flag == 1 && vui.Vui_num_units_in_tick > 0 && vui.Vui_time_scale > 0 {
			return Rational{int64(vui.Vui_num_units_in_tick), int64(vui.Vui_time_scale)}.Duration(), nil
		}
	}

	var vps hevc.H265RawVPS
	if err := vps.Decode(a.meta.Vps); err == nil {
		if vps.Vps_timing_info_present_flag == 1 && vps.Vps_num_units_in_tick > 0 && vps.Vps_time_scale > 0 {
			return Rational{int64(vps.Vps_num_units_in_tick), int64(vps.Vps_time_scale)}.Duration(), nil
		}
	}
	return 0, ErrFrameRateUndetermined
}

// Next 返回下一个访问单元，流结束时返回 io.EOF。
// 违反 GopLength 的图像同时返回访问单元和 ErrGopLengthViolation。
func (a *Assembler) Next() (*AccessUnit, error) {
	if a.pending.Len() == 0 {
		if err := a.fill(); err != nil {
			return nil, err
		}
		if a.pending.Len() == 0 {
			return nil, io.EOF
		}
	}

	au := a.pop()
	au.Duration = a.frameDuration
	if au.gopViolation {
		return au, errors.Wrapf(ErrGopLengthViolation,
			"picture %d is not idr, gop length %d", au.CodingIndex, a.cfg.GopLength)
	}
	return au, nil
}

func (a *Assembler) pop() *AccessUnit {
	v, _ := a.pending.Pop()
	return v.(*AccessUnit)
}

// fill 读取 NAL 直到有访问单元完成或流结束
func (a *Assembler) fill() error {
	for a.pending.Len() == 0 && !a.eof {
		nal, nalType, err := a.demuxer.Next()
		if err == io.EOF {
			a.eof = true
			if a.state == stateFirstVclSeen {
				a.seal()
			} else if len(a.cur.Nals) > 0 {
				a.logger.Warnf("drop %d nal units after the last picture", len(a.cur.Nals))
			}
			break
		}
		if err != nil {
			return err
		}

		if err = a.process(utils.RemoveNaluSeparator(nal), nalType); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assembler) process(nal []byte, nalType uint8) error {
	switch {
	case nalType < hevc.NalVps:
		if isReservedVcl(nalType) {
			a.logger.Warnf("drop reserved vcl nal unit type %d", nalType)
			return nil
		}
		return a.processSlice(nal, nalType)

	case nalType == hevc.NalVps || nalType == hevc.NalSps || nalType == hevc.NalPps:
		a.closePicture()
		if err := a.ctx.PutParameterSet(nal); err != nil {
			return errors.Wrapf(err, "parameter set nal type %d", nalType)
		}
		switch nalType {
		case hevc.NalVps:
			a.meta.Vps = nal
		case hevc.NalSps:
			a.meta.Sps = nal
			a.meta.Width = 0 // 重新从新 SPS 获取
		default:
			a.meta.Pps = nal
		}

	case nalType == hevc.NalAud || nalType == hevc.NalSeiPrefix:
		a.closePicture()

	case nalType == hevc.NalEosNut || nalType == hevc.NalEobNut:
		a.cur.add(nal, nalType)
		a.ctx.EndOfSequence()
		a.closePicture()
		return nil

	case nalType == hevc.NalSeiSuffix || nalType == hevc.NalFdNut:

	default:
		a.logger.Warnf("unknown nal unit type %d", nalType)
	}

	a.cur.add(nal, nalType)
	return nil
}

func (a *Assembler) processSlice(nal []byte, nalType uint8) error {
	sh, err := a.ctx.DecodeSliceHeaderRbsp(utils.ToRBSP(nal, false))
	if err != nil {
		return errors.Wrapf(err, "slice header of picture %d", a.codingIndex)
	}

	if sh.First_slice_segment_in_pic_flag == 1 {
		a.closePicture()
		if err = a.beginPicture(sh); err != nil {
			return err
		}
	} else if a.state != stateFirstVclSeen {
		a.logger.Warnf("drop slice segment at address %d without the first slice of its picture", sh.Slice_segment_address)
		return nil
	} else if sh.Dependent_slice_segment_flag == 0 && a.rps != nil {
		if err = a.addRefs(sh); err != nil {
			return err
		}
	}

	a.cur.add(nal, nalType)
	return nil
}

// closePicture 如果当前访问单元已有 VCL，则封闭它
func (a *Assembler) closePicture() {
	if a.state == stateFirstVclSeen {
		a.seal()
	}
}

func (a *Assembler) seal() {
	au := a.cur
	a.pending.Push(au)
	a.cur = new(AccessUnit)
	a.rps = nil
	a.state = stateBetweenPictures

	// 图像的所有片都已解析，此时才能移动 DPB 中的图像
	a.ctx.Dpb().Prune(a.dpbMax)

	if a.logger.LevelEnabled(xlog.DebugLevel) {
		a.logger.Debugf("access unit %d: poc %d, pres %d, %d nal units, refs %v",
			au.CodingIndex, au.Poc, au.PresIndex, len(au.Nals), au.RefDecodeIndices)
	}
}

func (a *Assembler) beginPicture(sh *hevc.H265RawSliceHeader) error {
	nh := &sh.Nal_unit_header
	au := a.cur
	au.CodingIndex = a.codingIndex
	au.IsIdr, au.IsCra, au.IsBla = nh.IsIdr(), nh.IsCra(), nh.IsBla()
	au.Width, au.Height = sh.Sps().Width(), sh.Sps().Height()

	// IDR 重置 POC，显示序号从上一组的最大 POC 之后继续
	if nh.IsIdr() {
		if !a.groupEmpty {
			a.pocOffset += int64(a.groupMaxPoc) + 1
		}
		a.ctx.ResetPoc()
		a.groupEmpty = true
	}

	poc := a.ctx.DecodePoc(sh, nh)
	if a.groupEmpty || poc > a.groupMaxPoc {
		a.groupMaxPoc = poc
	}
	a.groupEmpty = false
	au.Poc = poc
	au.PresIndex = int64(poc) + a.pocOffset
	au.Output = sh.Pic_output_flag == 1 && !a.ctx.RaslSkipped(nh)

	if a.cfg.GopLength > 0 && au.CodingIndex%a.cfg.GopLength == 0 && !nh.IsIdr() {
		au.gopViolation = true
		a.logger.Warnf("picture %d (poc %d) is not idr at gop boundary", au.CodingIndex, poc)
	}

	rps, err := a.ctx.DecodeRefPicSet(sh, poc)
	if err != nil {
		return errors.Wrapf(err, "reference picture set of picture %d", au.CodingIndex)
	}
	a.rps = rps
	if err = a.addRefs(sh); err != nil {
		return err
	}

	a.ctx.Dpb().Add(hevc.Picture{
		Poc:         poc,
		PocLsb:      int32(sh.Slice_pic_order_cnt_lsb),
		Width:       au.Width,
		Height:      au.Height,
		CodingIndex: au.CodingIndex,
		IsReference: true,
		Output:      au.Output,
	})
	a.dpbMax = a.dpbCapacity(sh.Sps())

	a.codingIndex++
	a.state = stateFirstVclSeen
	return nil
}

// addRefs 把片的参考图像列表并入访问单元的参考解码序号
func (a *Assembler) addRefs(sh *hevc.H265RawSliceHeader) error {
	l0, l1, err := hevc.GenerateRefPicLists(sh, a.rps)
	if err != nil {
		return errors.Wrapf(err, "reference picture lists of picture %d", a.cur.CodingIndex)
	}

	dpb := a.ctx.Dpb()
	for _, list := range [][]int{l0, l1} {
		for _, idx := range list {
			pic := dpb.At(idx)
			if pic == nil {
				continue
			}
			if !containsInt(a.cur.RefDecodeIndices, pic.CodingIndex) {
				a.cur.RefDecodeIndices = append(a.cur.RefDecodeIndices, pic.CodingIndex)
			}
		}
	}
	return nil
}

func (a *Assembler) dpbCapacity(sps *hevc.H265RawSPS) int {
	if a.cfg.DpbCapacity > 0 {
		return a.cfg.DpbCapacity
	}
	return int(sps.Sps_max_dec_pic_buffering_minus1[sps.Sps_max_sub_layers_minus1]) + 1
}

func isReservedVcl(nalType uint8) bool {
	return (nalType >= hevc.NalVclN10 && nalType <= hevc.NalVclR15) || nalType > hevc.NalCraNut
}

func containsInt(s []int, v int) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
