// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package es

import (
	"testing"
	"time"

	"github.com/cnotch/omafhevc/av/codec"
	"github.com/stretchr/testify/assert"
)

func testAccessUnit() *AccessUnit {
	au := &AccessUnit{
		CodingIndex: 3,
		PresIndex:   5,
		Duration:    40 * time.Millisecond,
	}
	au.add([]byte{0x40, 0x01, 0x0c}, 32)
	au.add([]byte{0x46, 0x01, 0x50}, 35)
	au.add([]byte{0x4e, 0x01, 0x96, 0x80}, 39)
	au.add([]byte{0x02, 0x01, 0xd0, 0x80}, 1)
	return au
}

func TestAccessUnit_Layout(t *testing.T) {
	au := testAccessUnit()
	assert.Len(t, au.Vps, 1)
	assert.Len(t, au.Sei, 1)
	assert.Len(t, au.Vcl, 1)
	assert.Len(t, au.Nals, 4)

	assert.Equal(t, []byte{
		0, 0, 0, 4, 0x4e, 0x01, 0x96, 0x80,
		0, 0, 0, 4, 0x02, 0x01, 0xd0, 0x80,
	}, au.Sample())

	assert.Equal(t, []byte{
		0, 0, 0, 3, 0x40, 0x01, 0x0c,
		0, 0, 0, 3, 0x46, 0x01, 0x50,
		0, 0, 0, 4, 0x4e, 0x01, 0x96, 0x80,
		0, 0, 0, 4, 0x02, 0x01, 0xd0, 0x80,
	}, au.LengthPrefixed())

	assert.Equal(t, []byte{
		0, 0, 0, 1, 0x40, 0x01, 0x0c,
		0, 0, 0, 1, 0x46, 0x01, 0x50,
		0, 0, 0, 1, 0x4e, 0x01, 0x96, 0x80,
		0, 0, 0, 1, 0x02, 0x01, 0xd0, 0x80,
	}, au.AnnexB())
}

func TestAccessUnit_Frame(t *testing.T) {
	au := testAccessUnit()
	frame := au.Frame()
	assert.Equal(t, codec.MediaTypeVideo, frame.MediaType)
	assert.Equal(t, int64(120*time.Millisecond), frame.Dts)
	assert.Equal(t, int64(200*time.Millisecond), frame.Pts)
	assert.Equal(t, au.Sample(), frame.Payload)
}
