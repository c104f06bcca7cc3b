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

	"github.com/q191201771/epgdump/pkg/base"
	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/naza/pkg/nazabits"
)

// ---------------------------------------------------------------------------------------------------
// Event information section
// <ETSI EN 300 468> <5.2.4>
// table_id                    [8b]  * 0x4E-0x6F
// section_syntax_indicator    [1b]
// reserved_future_use         [1b]
// reserved                    [2b]
// section_length              [12b] **
// service_id                  [16b] **
// reserved                    [2b]
// version_number              [5b]
// current_next_indicator      [1b]  *
// section_number              [8b]  *
// last_section_number         [8b]  *
// transport_stream_id         [16b] **
// original_network_id         [16b] **
// segment_last_section_number [8b]  *
// last_table_id               [8b]  *
// -----loop-----
// event_id                    [16b] **
// start_time                  [40b] ***** MJD + BCD
// duration                    [24b] ***   BCD
// running_status              [3b]
// free_CA_mode                [1b]
// descriptors_loop_length     [12b] **
// descriptor()
// --------------
// CRC_32                      [32b] ****
// ---------------------------------------------------------------------------------------------------
type Eit struct {
	TableId                  uint8
	SectionLength            uint16
	ServiceId                uint16
	VersionNumber            uint8
	CurrentNextIndicator     uint8
	SectionNumber            uint8
	LastSectionNumber        uint8
	TransportStreamId        uint16
	OriginalNetworkId        uint16
	SegmentLastSectionNumber uint8
	LastTableId              uint8
	Events                   []EitEvent
}

type EitEvent struct {
	EventId       uint16
	StartTime     time.Time
	Duration      time.Duration
	RunningStatus uint8
	FreeCaMode    uint8
	Descriptors   []Descriptor
}

const (
	eitHeaderSize = 14
	eitEventSize  = 12
)

// ParseEit 解析一个完整的EIT section
//
// @param b: 包含3字节section头以及尾部CRC_32，比如 Section.Data
//
// @param decoder: 用于解码descriptor中的字符串，为nil时使用 RawTextDecoder
//
// @param loc: start_time所在时区，为nil时使用 JstLocation
func ParseEit(b []byte, decoder TextDecoder, loc *time.Location) (eit Eit, err error) {
	if decoder == nil {
		decoder = RawTextDecoder
	}
	if len(b) < sectionHeaderSize+MinSectionLengthEit {
		return eit, base.NewErrMpegtsShortBuffer(sectionHeaderSize+MinSectionLengthEit, len(b), "eit")
	}

	br := nazabits.NewBitReader(b)
	eit.TableId, _ = br.ReadBits8(8)
	_, _ = br.ReadBits8(4)
	eit.SectionLength, _ = br.ReadBits16(12)
	eit.ServiceId, _ = br.ReadBits16(16)
	_, _ = br.ReadBits8(2)
	eit.VersionNumber, _ = br.ReadBits8(5)
	eit.CurrentNextIndicator, _ = br.ReadBits8(1)
	eit.SectionNumber, _ = br.ReadBits8(8)
	eit.LastSectionNumber, _ = br.ReadBits8(8)
	eit.TransportStreamId, _ = br.ReadBits16(16)
	eit.OriginalNetworkId, _ = br.ReadBits16(16)
	eit.SegmentLastSectionNumber, _ = br.ReadBits8(8)
	eit.LastTableId, _ = br.ReadBits8(8)

	if !IsEitTableId(eit.TableId) {
		return eit, base.NewErrMpegtsTableId(eit.TableId, "eit")
	}
	end := sectionHeaderSize + int(eit.SectionLength)
	if end > len(b) || int(eit.SectionLength) < MinSectionLengthEit {
		return eit, base.NewErrMpegtsShortBuffer(end, len(b), "eit section_length")
	}
	end -= crc32Size

	for i := eitHeaderSize; i+eitEventSize <= end; {
		var event EitEvent
		event.EventId = bele.BeUint16(b[i:])
		event.StartTime = DecodeStartTime(b[i+2:i+7], loc)
		event.Duration = DecodeBcdDuration(b[i+7 : i+10])

		br = nazabits.NewBitReader(b[i+10 : i+12])
		event.RunningStatus, _ = br.ReadBits8(3)
		event.FreeCaMode, _ = br.ReadBits8(1)
		loopLength, _ := br.ReadBits16(12)
		i += eitEventSize

		if i+int(loopLength) > end {
			return eit, base.NewErrMpegtsDescriptorLoop(i, int(loopLength), end)
		}
		event.Descriptors, err = parseDescriptors(b[i:i+int(loopLength)], decoder)
		if err != nil {
			return eit, err
		}
		i += int(loopLength)

		eit.Events = append(eit.Events, event)
	}
	return eit, nil
}
