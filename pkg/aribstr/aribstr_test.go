// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package aribstr_test

import (
	"testing"

	"github.com/q191201771/epgdump/pkg/aribstr"
	"github.com/q191201771/naza/pkg/assert"
)

func TestDecodeString(t *testing.T) {
	// 实际广播中的番组名
	b := []byte{27, 36, 59, 15, 122, 107, 27, 36, 57, 15, 50, 62, 76, 76, 27, 124, 233, 164, 192, 249, 234, 208, 164, 185, 33, 33, 66, 104, 14, 49, 15, 79, 67, 251, 50, 72, 66, 50, 14, 33, 15, 55, 64, 76, 115, 14, 33, 15, 48, 45, 75, 98, 27, 125, 181, 181, 228, 175, 14, 33, 252, 27, 36, 59, 15, 122, 88, 122, 86}
	assert.Equal(t, "[新]仮面ライダーリバイス　第1話「家族!契約!悪魔ささやく!」[デ][字]", aribstr.DecodeString(b))
}

func TestDecodeString_Charset(t *testing.T) {
	golden := []struct {
		in       []byte
		expected string
	}{
		// 初始状态GL为漢字
		{[]byte{0x46, 0x7C, 0x4B, 0x5C}, "日本"},
		// LS1切换到英数，SP为半角
		{[]byte{0x0E, 'N', 'H', 'K', 0x20, 'G'}, "NHK G"},
		// 漢字状态下SP为全角
		{[]byte{0x46, 0x7C, 0x20, 0x4B, 0x5C}, "日　本"},
		// 初始状态GR为平仮名
		{[]byte{0xA2, 0xA4, 0xF9, 0xFA}, "あいー。"},
		// SS3单次切换到G3片仮名
		{[]byte{0x0E, 'a', 0x1D, 0x22, 'b'}, "aアb"},
		// LS3R后GR为片仮名
		{[]byte{0x1B, 0x7C, 0xA2, 0xF7}, "アヽ"},
		// G1指定为JIS X 0201片仮名
		{[]byte{0x1B, 0x29, 0x49, 0x0E, 0x31, 0x32}, "ｱｲ"},
		// APR换行
		{[]byte{0x0E, 'a', 0x0D, 'b'}, "a\nb"},
		// C1控制符以及参数被跳过：COL、SZX、TIME
		{[]byte{0x0E, 0x90, 0x48, 'a', 0x8B, 0x60, 'b', 0x9D, 0x20, 0x40, 'c'}, "abc"},
		// CSI直到终止符
		{[]byte{0x0E, 0x9B, 0x31, 0x3B, 0x32, 0x53, 'x'}, "x"},
		// 追加記号
		{[]byte{0x1B, 0x24, 0x3B, 0x7A, 0x56}, "[字]"},
		// 漢字集合中的追加記号区
		{[]byte{0x7A, 0x56}, "[字]"},
		{[]byte{0x7A, 0x50, 0x7A, 0x56}, "[HV][字]"},
		{[]byte{0x1B, 0x24, 0x39, 0x7A, 0x56}, "[字]"},
	}
	for _, item := range golden {
		assert.Equal(t, item.expected, aribstr.DecodeString(item.in))
	}
}

func TestDecodeString_Truncated(t *testing.T) {
	b := []byte{27, 36, 59, 15, 122, 107, 27, 36, 57, 15, 50, 62, 76}
	// 截断在任意位置都不会panic
	for i := 0; i <= len(b); i++ {
		_ = aribstr.DecodeString(b[:i])
	}
	assert.Equal(t, "", aribstr.DecodeString(nil))
	assert.Equal(t, "", aribstr.DecodeString([]byte{0x1B}))
	assert.Equal(t, "", aribstr.DecodeString([]byte{0x1B, 0x24, 0x29}))
	assert.Equal(t, "", aribstr.DecodeString([]byte{0x46}))
}
