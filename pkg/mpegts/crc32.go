// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

// CRC-32/MPEG-2
//
// 多项式0x04C11DB7，初始值0xFFFFFFFF，不反转，不做最终异或。
// 标准库hash/crc32只支持反转的形式，所以这里自己查表实现。
//
// 对一个完整的section（包含尾部的CRC_32字段）计算，结果为0表示校验通过。

const crc32Polynomial = 0x04C11DB7

var crc32Table [256]uint32

func init() {
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ crc32Polynomial
			} else {
				crc <<= 1
			}
		}
		crc32Table[i] = crc
	}
}

// CalcCrc32 在crc的基础上继续计算 buffer 的CRC
//
// @param crc: 首次计算时传入0xFFFFFFFF
func CalcCrc32(crc uint32, buffer []byte) uint32 {
	for _, b := range buffer {
		crc = (crc << 8) ^ crc32Table[byte(crc>>24)^b]
	}
	return crc
}

// CheckSectionCrc32 对完整section（包含尾部CRC_32）做校验
func CheckSectionCrc32(section []byte) bool {
	return CalcCrc32(0xFFFFFFFF, section) == 0
}
