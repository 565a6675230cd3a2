// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package utils

import "bytes"

// NalHeaderSize H.265 NAL 头长度
const NalHeaderSize = 2

var (
	startCode3 = []byte{0x0, 0x0, 0x1}
	startCode4 = []byte{0x0, 0x0, 0x0, 0x1}
)

// 去除防竞争字节时的扫描状态
const (
	stateCopying = iota
	stateOneZeroSeen
	stateTwoZerosSeen
)

// ToRBSP 将字节流格式的 NAL 转换成 RBSP，去除防竞争字节 0x03。
// NAL 头原样拷贝；hasStartCode 指示 nal 是否以起始码开头。
func ToRBSP(nal []byte, hasStartCode bool) []byte {
	if hasStartCode {
		nal = RemoveNaluSeparator(nal)
	}

	to := make([]byte, 0, len(nal))
	if len(nal) <= NalHeaderSize {
		return append(to, nal...)
	}
	to = append(to, nal[:NalHeaderSize]...)

	state := stateCopying
	for _, b := range nal[NalHeaderSize:] {
		switch state {
		case stateTwoZerosSeen:
			if b == 0x03 {
				state = stateCopying
				continue
			}
		}

		to = append(to, b)
		if b != 0 {
			state = stateCopying
		} else if state == stateCopying {
			state = stateOneZeroSeen
		} else {
			state = stateTwoZerosSeen
		}
	}
	return to
}

// ToByteStream 将 RBSP 转换成字节流格式，在连续两个 0 之后且值 <= 3 的字节前插入 0x03。
// withStartCode 为 true 时添加 4 字节起始码。
func ToByteStream(rbsp []byte, withStartCode bool) []byte {
	to := make([]byte, 0, len(rbsp)+len(rbsp)/64+len(startCode4))
	if withStartCode {
		to = append(to, startCode4...)
	}
	if len(rbsp) <= NalHeaderSize {
		return append(to, rbsp...)
	}
	to = append(to, rbsp[:NalHeaderSize]...)

	zeros := 0
	for _, b := range rbsp[NalHeaderSize:] {
		if zeros >= 2 && b <= 0x03 {
			to = append(to, 0x03)
			zeros = 0
		}
		to = append(to, b)
		if b == 0 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return to
}

// StartCodeLen 返回 NAL 起始码的长度，没有起始码时返回 0
func StartCodeLen(nalu []byte) int {
	if bytes.HasPrefix(nalu, startCode4) {
		return 4
	}
	if bytes.HasPrefix(nalu, startCode3) {
		return 3
	}
	return 0
}

// RemoveNaluSeparator 移除 NALU 分隔符 0x00000001 或 0x000001
func RemoveNaluSeparator(nalu []byte) []byte {
	return nalu[StartCodeLen(nalu):]
}
