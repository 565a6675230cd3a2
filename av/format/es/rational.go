// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package es

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Rational 有理数，用于以秒为单位的帧时长
type Rational struct {
	Num int64
	Den int64
}

// ParseRational 解析 "num/den" 或整数形式
func ParseRational(s string) (r Rational, err error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return r, errors.New("unable to parse rational from empty string")
	case strings.Contains(s, "/"):
		_, err = fmt.Sscanf(s, "%d/%d", &r.Num, &r.Den)
	default:
		r.Den = 1
		_, err = fmt.Sscanf(s, "%d", &r.Num)
	}
	if err != nil {
		return Rational{}, errors.Wrapf(err, "unable to parse rational from %q", s)
	}
	if r.Den <= 0 || r.Num < 0 {
		return Rational{}, errors.Errorf("invalid rational %q", s)
	}
	return
}

// IsZero .
func (r Rational) IsZero() bool { return r.Num == 0 || r.Den == 0 }

// Duration 按秒解释并转换成 time.Duration
func (r Rational) Duration() time.Duration {
	if r.Den == 0 {
		return 0
	}
	return time.Duration(r.Num * int64(time.Second) / r.Den)
}

// String .
func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// MarshalText .
func (r Rational) MarshalText() ([]byte, error) {
	if r.IsZero() {
		return []byte{}, nil
	}
	return []byte(r.String()), nil
}

// UnmarshalText .
func (r *Rational) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*r = Rational{}
		return nil
	}
	v, err := ParseRational(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
