// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts_test

import (
	"testing"

	"github.com/q191201771/epgdump/pkg/mpegts"
	"github.com/q191201771/naza/pkg/assert"
)

func TestCalcCrc32(t *testing.T) {
	// CRC-32/MPEG-2 check value
	assert.Equal(t, uint32(0x0376E6E7), mpegts.CalcCrc32(0xFFFFFFFF, []byte("123456789")))

	// 分段计算与一次计算结果一致
	crc := mpegts.CalcCrc32(0xFFFFFFFF, []byte("1234"))
	crc = mpegts.CalcCrc32(crc, []byte("56789"))
	assert.Equal(t, uint32(0x0376E6E7), crc)
}

func TestCheckSectionCrc32(t *testing.T) {
	section := mpegts.PackSection(mpegts.TableIdEitPfActual, 0x0400, 3, 0, 1, []byte("some event information body"))
	assert.Equal(t, true, mpegts.CheckSectionCrc32(section))

	// 任意一个字节被修改都会导致校验失败
	for i := range section {
		for _, x := range []uint8{0x01, 0x80, 0xFF} {
			mutated := make([]byte, len(section))
			copy(mutated, section)
			mutated[i] ^= x
			assert.Equal(t, false, mpegts.CheckSectionCrc32(mutated))
		}
	}
}
