// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDpb_Prune(t *testing.T) {
	tests := []struct {
		name    string
		refs    []bool
		max     int
		removed int
		pocs    []int32
	}{
		{"unlimited", []bool{false, false, false}, 0, 0, []int32{0, 1, 2}},
		{"within", []bool{false, false, false}, 3, 0, []int32{0, 1, 2}},
		{"oldest_first", []bool{false, false, false, false}, 2, 2, []int32{2, 3}},
		{"skip_reference", []bool{true, false, true, false}, 2, 2, []int32{0, 2}},
		{"all_reference", []bool{true, true, true}, 1, 0, []int32{0, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Dpb
			for i, ref := range tt.refs {
				assert.Equal(t, i, d.Add(Picture{Poc: int32(i), CodingIndex: i, IsReference: ref}))
			}
			assert.Equal(t, tt.removed, d.Prune(tt.max))

			var pocs []int32
			for i := 0; i < d.Len(); i++ {
				pocs = append(pocs, d.At(i).Poc)
			}
			assert.Equal(t, tt.pocs, pocs)
		})
	}
}

func TestDpb_At(t *testing.T) {
	var d Dpb
	assert.Nil(t, d.At(0))
	d.Add(Picture{Poc: 8})
	assert.Equal(t, int32(8), d.At(0).Poc)
	assert.Nil(t, d.At(NoPicture))

	d.Reset()
	assert.Zero(t, d.Len())
	assert.Nil(t, d.At(0))
}
