// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"github.com/q191201771/epgdump/pkg/base"
	"github.com/q191201771/naza/pkg/nazabits"
)

// ---------------------------------------------------------------------------------------------------
// Service description section
// <ETSI EN 300 468> <5.2.3>
// table_id                   [8b]  * 0x42 actual, 0x46 other
// section_syntax_indicator   [1b]
// reserved_future_use        [1b]
// reserved                   [2b]
// section_length             [12b] **
// transport_stream_id        [16b] **
// reserved                   [2b]
// version_number             [5b]
// current_next_indicator     [1b]  *
// section_number             [8b]  *
// last_section_number        [8b]  *
// original_network_id        [16b] **
// reserved_future_use        [8b]  *
// -----loop-----
// service_id                 [16b] **
// reserved_future_use        [3b]
// EIT_user_defined_flags     [3b]
// EIT_schedule_flag          [1b]
// EIT_present_following_flag [1b]  *
// running_status             [3b]
// free_CA_mode               [1b]
// descriptors_loop_length    [12b] **
// descriptor()
// --------------
// CRC_32                     [32b] ****
// ---------------------------------------------------------------------------------------------------
type Sdt struct {
	TableId              uint8
	SectionLength        uint16
	TransportStreamId    uint16
	VersionNumber        uint8
	CurrentNextIndicator uint8
	SectionNumber        uint8
	LastSectionNumber    uint8
	OriginalNetworkId    uint16
	Services             []SdtService
}

type SdtService struct {
	ServiceId               uint16
	EitUserDefinedFlags     uint8
	EitScheduleFlag         uint8
	EitPresentFollowingFlag uint8
	RunningStatus           uint8
	FreeCaMode              uint8
	Descriptors             []Descriptor
}

const (
	sdtHeaderSize  = 11
	sdtServiceSize = 5
)

// ParseSdt 解析一个完整的SDT section
//
// @param b: 包含3字节section头以及尾部CRC_32，比如 Section.Data
//
// @param decoder: 用于解码service descriptor中的字符串，为nil时使用 RawTextDecoder
func ParseSdt(b []byte, decoder TextDecoder) (sdt Sdt, err error) {
	if decoder == nil {
		decoder = RawTextDecoder
	}
	if len(b) < sectionHeaderSize+MinSectionLengthSdt {
		return sdt, base.NewErrMpegtsShortBuffer(sectionHeaderSize+MinSectionLengthSdt, len(b), "sdt")
	}

	br := nazabits.NewBitReader(b)
	sdt.TableId, _ = br.ReadBits8(8)
	_, _ = br.ReadBits8(4)
	sdt.SectionLength, _ = br.ReadBits16(12)
	sdt.TransportStreamId, _ = br.ReadBits16(16)
	_, _ = br.ReadBits8(2)
	sdt.VersionNumber, _ = br.ReadBits8(5)
	sdt.CurrentNextIndicator, _ = br.ReadBits8(1)
	sdt.SectionNumber, _ = br.ReadBits8(8)
	sdt.LastSectionNumber, _ = br.ReadBits8(8)
	sdt.OriginalNetworkId, _ = br.ReadBits16(16)

	if !IsSdtTableId(sdt.TableId) {
		return sdt, base.NewErrMpegtsTableId(sdt.TableId, "sdt")
	}
	end := sectionHeaderSize + int(sdt.SectionLength)
	if end > len(b) || int(sdt.SectionLength) < MinSectionLengthSdt {
		return sdt, base.NewErrMpegtsShortBuffer(end, len(b), "sdt section_length")
	}
	end -= crc32Size

	for i := sdtHeaderSize; i+sdtServiceSize <= end; {
		var service SdtService
		br = nazabits.NewBitReader(b[i : i+sdtServiceSize])
		service.ServiceId, _ = br.ReadBits16(16)
		_, _ = br.ReadBits8(3)
		service.EitUserDefinedFlags, _ = br.ReadBits8(3)
		service.EitScheduleFlag, _ = br.ReadBits8(1)
		service.EitPresentFollowingFlag, _ = br.ReadBits8(1)
		service.RunningStatus, _ = br.ReadBits8(3)
		service.FreeCaMode, _ = br.ReadBits8(1)
		loopLength, _ := br.ReadBits16(12)
		i += sdtServiceSize

		if i+int(loopLength) > end {
			return sdt, base.NewErrMpegtsDescriptorLoop(i, int(loopLength), end)
		}
		service.Descriptors, err = parseDescriptors(b[i:i+int(loopLength)], decoder)
		if err != nil {
			return sdt, err
		}
		i += int(loopLength)

		sdt.Services = append(sdt.Services, service)
	}
	return sdt, nil
}

// ServiceDescriptor 第一个service descriptor，没有则返回nil
func (s *SdtService) ServiceDescriptor() *DescriptorService {
	for i := range s.Descriptors {
		if s.Descriptors[i].Service != nil {
			return s.Descriptors[i].Service
		}
	}
	return nil
}
