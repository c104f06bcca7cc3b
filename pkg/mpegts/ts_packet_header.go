// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"github.com/q191201771/naza/pkg/nazabits"
)

// ------------------------------------------------
// <iso13818-1.pdf> <2.4.3.2> <page 36/174>
// sync_byte                    [8b]  * always 0x47
// transport_error_indicator    [1b]
// payload_unit_start_indicator [1b]
// transport_priority           [1b]
// PID                          [13b] **
// transport_scrambling_control [2b]
// adaptation_field_control     [2b]
// continuity_counter           [4b]  *
// ------------------------------------------------
type TsPacketHeader struct {
	Sync             uint8
	Err              uint8
	PayloadUnitStart uint8
	Prio             uint8
	Pid              uint16
	Scra             uint8
	Adaptation       uint8
	Cc               uint8
}

// ParseTsPacketHeader 解析4字节TS Packet header
//
// 调用方保证 b 的长度不小于 TsPacketHeaderSize
func ParseTsPacketHeader(b []byte) (h TsPacketHeader) {
	br := nazabits.NewBitReader(b)
	h.Sync, _ = br.ReadBits8(8)
	h.Err, _ = br.ReadBits8(1)
	h.PayloadUnitStart, _ = br.ReadBits8(1)
	h.Prio, _ = br.ReadBits8(1)
	h.Pid, _ = br.ReadBits16(13)
	h.Scra, _ = br.ReadBits8(2)
	h.Adaptation, _ = br.ReadBits8(2)
	h.Cc, _ = br.ReadBits8(4)
	return
}

// HasPayload adaptation_field_control表示携带payload
func (h TsPacketHeader) HasPayload() bool {
	return h.Adaptation == AdaptationFieldControlNo || h.Adaptation == AdaptationFieldControlFollowed
}

// ----------------------------------------------------------
// <iso13818-1.pdf> <Table 2-6> <page 40/174>
// adaptation_field_length              [8b] * 不包括自己这1字节
// ...
// ----------------------------------------------------------

// PacketPayload 获取188字节packet中的payload
//
// 有adaptation_field时，根据adaptation_field_length跳过
//
// @return ok: false表示没有payload，或者adaptation_field_length越界
func PacketPayload(h TsPacketHeader, packet []byte) (payload []byte, ok bool) {
	if len(packet) < TsPacketHeaderSize {
		return nil, false
	}
	switch h.Adaptation {
	case AdaptationFieldControlNo:
		return packet[TsPacketHeaderSize:], true
	case AdaptationFieldControlFollowed:
		if len(packet) < TsPacketHeaderSize+1 {
			return nil, false
		}
		index := TsPacketHeaderSize + 1 + int(packet[TsPacketHeaderSize])
		if index >= len(packet) {
			return nil, false
		}
		return packet[index:], true
	}
	return nil, false
}
