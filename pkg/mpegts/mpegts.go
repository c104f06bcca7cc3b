// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import "github.com/q191201771/epgdump/pkg/base"

// 本包提供epg相关的TS流解析能力：
//
// - TS packet 同步与包头解析
// - 按PID重组section，并做CRC32校验
// - 解析SDT、EIT以及其中的descriptor
// - 解析MJD日期与BCD时间
// - 反向打包SDT、EIT section，以及将section切分为TS packet
//
// 参考资料：
// <iso13818-1.pdf>
// <ETSI EN 300 468>
// <ARIB STD-B10>

var Log = base.Log

const (
	syncByte uint8 = 0x47

	// TsPacketSize TS packet固定大小
	TsPacketSize = 188

	// TsPacketHeaderSize TS packet header大小
	TsPacketHeaderSize = 4

	// sectionHeaderSize section最前面的3个字节，table_id、section_syntax_indicator、section_length等
	sectionHeaderSize = 3

	// crc32Size section尾部CRC_32的大小
	crc32Size = 4
)

// PID
const (
	PidPat uint16 = 0x0000
	PidSdt uint16 = 0x0011 // SDT, BAT
	PidEit uint16 = 0x0012 // EIT

	// ISDB在以下两个PID上也会发送EIT
	PidEitIsdbL1 uint16 = 0x0026
	PidEitIsdbL2 uint16 = 0x0027
)

// EitPids 携带EIT的PID集合
var EitPids = []uint16{PidEit, PidEitIsdbL1, PidEitIsdbL2}

// table_id
const (
	TableIdSdtActual uint8 = 0x42
	TableIdSdtOther  uint8 = 0x46
	TableIdBat       uint8 = 0x4A

	TableIdEitPfActual uint8 = 0x4E
	TableIdEitPfOther  uint8 = 0x4F

	TableIdEitScheduleStart uint8 = 0x50
	TableIdEitScheduleEnd   uint8 = 0x6F

	// TableIdStuffing 该值出现在section头部位置时，表示后续都是填充数据
	TableIdStuffing uint8 = 0xFF
)

// adaptation_field_control
const (
	AdaptationFieldControlReserved uint8 = 0 // Reserved for future use by ISO/IEC
	AdaptationFieldControlNo       uint8 = 1 // No adaptation_field, payload only
	AdaptationFieldControlOnly     uint8 = 2 // Adaptation_field only, no payload
	AdaptationFieldControlFollowed uint8 = 3 // Adaptation_field followed by payload
)

// descriptor_tag
const (
	DescriptorTagService       uint8 = 0x48
	DescriptorTagShortEvent    uint8 = 0x4d
	DescriptorTagExtendedEvent uint8 = 0x4e
	DescriptorTagContent       uint8 = 0x54
)

// section_length的最小值，小于该值的section被丢弃
const (
	// MinSectionLengthSdt transport_stream_id到reserved_future_use共8字节，加上CRC_32
	MinSectionLengthSdt = 8 + crc32Size

	// MinSectionLengthEit service_id到last_table_id共11字节，加上CRC_32
	MinSectionLengthEit = 11 + crc32Size
)

// TextDecoder 将广播中的字符串字节解码为UTF-8字符串
//
// 日本的ISDB使用ARIB STD-B24编码，见 aribstr.DecodeString
type TextDecoder func(b []byte) string

// RawTextDecoder 不做转换，直接当做UTF-8
func RawTextDecoder(b []byte) string {
	return string(b)
}

// IsEitTableId 是否为EIT的table_id，包含p/f与schedule，actual与other
func IsEitTableId(tableId uint8) bool {
	return tableId >= TableIdEitPfActual && tableId <= TableIdEitScheduleEnd
}

// IsSdtTableId SDT actual或other
func IsSdtTableId(tableId uint8) bool {
	return tableId == TableIdSdtActual || tableId == TableIdSdtOther
}
