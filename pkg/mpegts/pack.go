// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"time"

	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/naza/pkg/nazabits"
)

// 打包section以及切分TS packet，是解析的逆过程。
//
// 解析流程不使用这里的函数，它们用于各个包的测试构造TS数据（SDT、EIT、descriptor以及跨packet的section），
// 也可以用于生成调试用的TS文件。

// SectionPacker 将一个或多个section切分成TS packet
type SectionPacker struct {
	Pid uint16
	Cc  uint8 // continuity_counter of TS Header
}

// Pack 将sections首尾相连，依次写入TS packet
//
// 有section起始的packet设置payload_unit_start_indicator并写入pointer_field，
// 最后一个packet的剩余空间使用0xFF填充。
//
// 注意，内部会增加 SectionPacker.Cc 的值
//
// @return: 内存块为独立申请，调度结束后，内部不再持有
func (packer *SectionPacker) Pack(sections ...[]byte) []byte {
	var stream []byte
	var starts []int
	for _, s := range sections {
		starts = append(starts, len(stream))
		stream = append(stream, s...)
	}

	var out []byte
	pos := 0 // 当前处理到stream的位置
	si := 0  // starts中第一个不小于pos的下标
	for pos < len(stream) {
		for si < len(starts) && starts[si] < pos {
			si++
		}

		packet := make([]byte, TsPacketSize)

		// -----TS Header----------------
		// sync_byte
		// transport_error_indicator    0
		// payload_unit_start_indicator
		// transport_priority           0
		// PID
		// transport_scrambling_control 0
		// adaptation_field_control     1
		// continuity_counter
		// ------------------------------
		packet[0] = syncByte
		packet[1] = uint8((packer.Pid >> 8) & 0x1F)
		packet[2] = uint8(packer.Pid & 0xFF)
		packet[3] = 0x10 | (packer.Cc & 0x0F)
		packer.Cc++
		wpos := TsPacketHeaderSize

		avail := TsPacketSize - wpos
		if si < len(starts) && starts[si]-pos < avail {
			if starts[si]-pos < avail-1 {
				packet[1] |= 0x40
				packet[wpos] = uint8(starts[si] - pos) // pointer_field
				wpos++
				avail--
			} else {
				// section起始位置刚好是payload的最后一个字节，留给下一个packet
				avail--
			}
		}

		n := copy(packet[wpos:wpos+avail], stream[pos:])
		wpos += n
		pos += n
		for ; wpos < TsPacketSize; wpos++ {
			packet[wpos] = 0xFF
		}

		out = append(out, packet...)
	}
	return out
}

// PackSection 为table body加上section头以及尾部的CRC_32
//
// 适用于section_syntax_indicator为1的长格式section，body为last_section_number之后、CRC_32之前的内容
func PackSection(tableId uint8, tableIdExtension uint16, versionNumber, sectionNumber, lastSectionNumber uint8, body []byte) []byte {
	sectionLength := 5 + len(body) + crc32Size
	out := make([]byte, sectionHeaderSize+sectionLength)

	bw := nazabits.NewBitWriter(out)
	bw.WriteBits8(8, tableId)
	bw.WriteBit(1) // section_syntax_indicator
	bw.WriteBit(1) // reserved_future_use
	bw.WriteBits8(2, 0x03)
	bw.WriteBits16(12, uint16(sectionLength))
	bw.WriteBits16(16, tableIdExtension)
	bw.WriteBits8(2, 0x03)
	bw.WriteBits8(5, versionNumber)
	bw.WriteBit(1) // current_next_indicator
	bw.WriteBits8(8, sectionNumber)
	bw.WriteBits8(8, lastSectionNumber)
	copy(out[8:], body)

	crc := CalcCrc32(0xFFFFFFFF, out[:len(out)-crc32Size])
	bele.BePutUint32(out[len(out)-crc32Size:], crc)
	return out
}

// PackSdtSection 使用 sdt 中的header字段，以及 PackSdtService 的结果打包SDT section
func PackSdtSection(sdt Sdt, services ...[]byte) []byte {
	body := make([]byte, 3)
	bele.BePutUint16(body, sdt.OriginalNetworkId)
	body[2] = 0xFF // reserved_future_use
	for _, s := range services {
		body = append(body, s...)
	}
	return PackSection(sdt.TableId, sdt.TransportStreamId, sdt.VersionNumber, sdt.SectionNumber, sdt.LastSectionNumber, body)
}

// PackSdtService 打包SDT中的一个service，忽略 service.Descriptors ，使用 descriptors
func PackSdtService(service SdtService, descriptors ...[]byte) []byte {
	loop := concat(descriptors)
	out := make([]byte, sdtServiceSize, sdtServiceSize+len(loop))
	bw := nazabits.NewBitWriter(out)
	bw.WriteBits16(16, service.ServiceId)
	bw.WriteBits8(3, 0x07)
	bw.WriteBits8(3, service.EitUserDefinedFlags)
	bw.WriteBit(service.EitScheduleFlag)
	bw.WriteBit(service.EitPresentFollowingFlag)
	bw.WriteBits8(3, service.RunningStatus)
	bw.WriteBit(service.FreeCaMode)
	bw.WriteBits16(12, uint16(len(loop)))
	return append(out, loop...)
}

// PackEitSection 使用 eit 中的header字段，以及 PackEitEvent 的结果打包EIT section
func PackEitSection(eit Eit, events ...[]byte) []byte {
	body := make([]byte, 6)
	bele.BePutUint16(body, eit.TransportStreamId)
	bele.BePutUint16(body[2:], eit.OriginalNetworkId)
	body[4] = eit.SegmentLastSectionNumber
	body[5] = eit.LastTableId
	for _, e := range events {
		body = append(body, e...)
	}
	return PackSection(eit.TableId, eit.ServiceId, eit.VersionNumber, eit.SectionNumber, eit.LastSectionNumber, body)
}

// PackEitEvent 打包EIT中的一个event，忽略 event.Descriptors ，使用 descriptors
//
// start_time使用 event.StartTime 所在时区的日期和时间
func PackEitEvent(event EitEvent, descriptors ...[]byte) []byte {
	loop := concat(descriptors)
	out := make([]byte, eitEventSize, eitEventSize+len(loop))
	bele.BePutUint16(out, event.EventId)
	copy(out[2:], EncodeStartTime(event.StartTime))
	copy(out[7:], EncodeBcdDuration(event.Duration))
	bw := nazabits.NewBitWriter(out[10:])
	bw.WriteBits8(3, event.RunningStatus)
	bw.WriteBit(event.FreeCaMode)
	bw.WriteBits16(12, uint16(len(loop)))
	return append(out, loop...)
}

// PackDescriptor 加上descriptor_tag和descriptor_length
func PackDescriptor(tag uint8, body []byte) []byte {
	out := make([]byte, 2, 2+len(body))
	out[0] = tag
	out[1] = uint8(len(body))
	return append(out, body...)
}

func PackDescriptorService(serviceType uint8, providerName, name []byte) []byte {
	body := []byte{serviceType}
	body = appendLengthPrefixed(body, providerName)
	body = appendLengthPrefixed(body, name)
	return PackDescriptor(DescriptorTagService, body)
}

func PackDescriptorShortEvent(language string, eventName, text []byte) []byte {
	body := appendLanguage(nil, language)
	body = appendLengthPrefixed(body, eventName)
	body = appendLengthPrefixed(body, text)
	return PackDescriptor(DescriptorTagShortEvent, body)
}

func PackDescriptorExtendedEvent(number, lastNumber uint8, language string, items []DescriptorExtendedEventItem, text []byte) []byte {
	body := []byte{(number << 4) | (lastNumber & 0x0F)}
	body = appendLanguage(body, language)
	var loop []byte
	for _, item := range items {
		loop = appendLengthPrefixed(loop, item.Description)
		loop = appendLengthPrefixed(loop, item.Value)
	}
	body = appendLengthPrefixed(body, loop)
	body = appendLengthPrefixed(body, text)
	return PackDescriptor(DescriptorTagExtendedEvent, body)
}

func PackDescriptorContent(entries []DescriptorContentEntry) []byte {
	var body []byte
	for _, e := range entries {
		body = append(body, e.Level1<<4|e.Level2&0x0F, e.User1<<4|e.User2&0x0F)
	}
	return PackDescriptor(DescriptorTagContent, body)
}

// EncodeMjd 日期转换为2字节MJD，是 DecodeMjd 的逆过程
//
// 使用 t 所在时区的日期
func EncodeMjd(t time.Time) []byte {
	// 1970-01-01的MJD为40587
	days := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix()/86400 + 40587
	out := make([]byte, 2)
	bele.BePutUint16(out, uint16(days))
	return out
}

// EncodeStartTime 5字节的start_time，是 DecodeStartTime 的逆过程
func EncodeStartTime(t time.Time) []byte {
	out := EncodeMjd(t)
	return append(out, encodeBcd(t.Hour()), encodeBcd(t.Minute()), encodeBcd(t.Second()))
}

// EncodeBcdDuration 3字节BCD表示的时长，超过99小时的部分被截断
func EncodeBcdDuration(d time.Duration) []byte {
	s := int(d / time.Second)
	return []byte{encodeBcd(s / 3600 % 100), encodeBcd(s / 60 % 60), encodeBcd(s % 60)}
}

// ----- private -------------------------------------------------------------------------------------------------------

func encodeBcd(v int) uint8 {
	return uint8(v/10)<<4 | uint8(v%10)
}

func appendLengthPrefixed(out []byte, b []byte) []byte {
	out = append(out, uint8(len(b)))
	return append(out, b...)
}

func appendLanguage(out []byte, language string) []byte {
	lang := []byte(language + "   ")[:3]
	return append(out, lang...)
}

func concat(bs [][]byte) []byte {
	var out []byte
	for _, b := range bs {
		out = append(out, b...)
	}
	return out
}
