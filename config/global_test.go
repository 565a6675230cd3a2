// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"testing"
	"time"

	"github.com/cnotch/omafhevc/av/format/es"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemblerConfig(t *testing.T) {
	defer func() { globalC = nil }()

	tests := []struct {
		name    string
		c       config
		want    es.Config
		wantErr bool
	}{
		{"default", config{}, es.Config{}, false},
		{"override", config{FrameDuration: "1001/30000", GopLength: 8, DpbCapacity: 4},
			es.Config{FrameDuration: es.Rational{Num: 1001, Den: 30000}, GopLength: 8, DpbCapacity: 4}, false},
		{"integer", config{FrameDuration: "1"}, es.Config{FrameDuration: es.Rational{Num: 1, Den: 1}}, false},
		{"bad_den", config{FrameDuration: "1/0"}, es.Config{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.c
			globalC = &c
			got, err := AssemblerConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAccessors_Unset(t *testing.T) {
	globalC = nil
	assert.Equal(t, "", Input())
	assert.False(t, IsTS())
	assert.Equal(t, 5*time.Second, ProgressInterval())

	globalC = &config{SegmentTemplate: "seg_$Number$.265", SegmentStart: 3, Progress: 2}
	defer func() { globalC = nil }()
	tpl, start := SegmentTemplate()
	assert.Equal(t, "seg_$Number$.265", tpl)
	assert.Equal(t, 3, start)
	assert.Equal(t, 2*time.Second, ProgressInterval())
}
