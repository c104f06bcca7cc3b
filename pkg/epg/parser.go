// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package epg

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/q191201771/epgdump/pkg/base"
	"github.com/q191201771/epgdump/pkg/mpegts"
	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/naza/pkg/nazaerrors"
)

// ParseTs 读取SDT后，回到流的开头再读取EIT
//
// 两遍之间只传递service集合
func ParseTs(rs io.ReadSeeker, modOptions ...ModOption) (listing Listing, err error) {
	option := newOption(modOptions)
	listing.BroadcastType = option.BroadcastType

	listing.Services, listing.SdtPacketCount, err = parseSdt(rs, &option)
	if err != nil {
		return listing, err
	}
	if _, err = rs.Seek(0, io.SeekStart); err != nil {
		return listing, nazaerrors.Wrap(err)
	}
	listing.Events, listing.EitPacketCount, err = parseEit(rs, listing.Services, &option)
	return listing, err
}

// ParseSdt 读取SDT，得到需要输出的service
//
// 同时满足以下条件的service才会被保留：EIT_schedule_flag和EIT_present_following_flag都为1，
// 并且service descriptor中的service_type在 Option.AcceptServiceTypes 中。
//
// 地上波只读取第一个SDT section。
//
// @return services: service_id到service名称
func ParseSdt(r io.Reader, modOptions ...ModOption) (services map[uint16]string, err error) {
	option := newOption(modOptions)
	services, _, err = parseSdt(r, &option)
	return
}

// ParseEit 读取 services 中service的EIT，返回合并后的event列表
func ParseEit(r io.Reader, services map[uint16]string, modOptions ...ModOption) ([]Event, error) {
	option := newOption(modOptions)
	events, _, err := parseEit(r, services, &option)
	return events, err
}

// FindEvent 查找(transport_stream_id, service_id, event_id)对应的event
//
// @return err: 没有找到时返回的错误满足 errors.Is(err, base.ErrEventNotFound)
func FindEvent(events []Event, tsid, sid, eid uint16) (start, end time.Time, err error) {
	for i := range events {
		e := &events[i]
		if e.TransportStreamId == tsid && e.ServiceId == sid && e.EventId == eid {
			return e.StartTime, e.EndTime(), nil
		}
	}
	return start, end, base.NewErrEventNotFound(tsid, sid, eid)
}

// ParseEventKey 解析"transport_stream_id:service_id:event_id"格式的字符串，比如 32736:1024:4660
func ParseEventKey(key string) (tsid, sid, eid uint16, err error) {
	items := strings.Split(key, ":")
	if len(items) != 3 {
		return 0, 0, 0, base.NewErrInvalidEventKey(key)
	}
	var vs [3]uint16
	for i, item := range items {
		v, err := strconv.ParseUint(strings.TrimSpace(item), 10, 16)
		if err != nil {
			return 0, 0, 0, base.NewErrInvalidEventKey(key)
		}
		vs[i] = uint16(v)
	}
	return vs[0], vs[1], vs[2], nil
}

// ----- private -------------------------------------------------------------------------------------------------------

func parseSdt(r io.Reader, option *Option) (map[uint16]string, int, error) {
	services := make(map[uint16]string)
	sp := mpegts.NewSectionParser(r, []uint16{mpegts.PidSdt}, option.sectionParserOption(mpegts.MinSectionLengthSdt))
	for {
		section, err := sp.ReadSection()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return services, sp.PacketCount(), nazaerrors.Wrap(err)
		}
		if !mpegts.IsSdtTableId(section.TableId()) {
			continue
		}

		sdt, err := mpegts.ParseSdt(section.Data, option.TextDecoder)
		if err != nil {
			Log.Debugf("parse sdt failed, drop it. err=%+v", err)
			continue
		}
		for i := range sdt.Services {
			s := &sdt.Services[i]
			if s.EitScheduleFlag != 1 || s.EitPresentFollowingFlag != 1 {
				continue
			}
			sd := s.ServiceDescriptor()
			if sd == nil || !option.acceptServiceType(sd.Type) {
				continue
			}
			services[s.ServiceId] = sd.Name
		}

		if !option.BroadcastType.IsAggregated() {
			break
		}
	}
	Log.Infof("SDT: %d packets read", sp.PacketCount())
	return services, sp.PacketCount(), nil
}

func parseEit(r io.Reader, services map[uint16]string, option *Option) ([]Event, int, error) {
	aggregator := NewAggregator(option.BroadcastType, option.TextDecoder)
	sp := mpegts.NewSectionParser(r, mpegts.EitPids, option.sectionParserOption(mpegts.MinSectionLengthEit))
	for {
		section, err := sp.ReadSection()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, sp.PacketCount(), nazaerrors.Wrap(err)
		}
		if !mpegts.IsEitTableId(section.TableId()) {
			continue
		}
		// 先看service_id，不需要的service不做解析
		if _, ok := services[bele.BeUint16(section.Data[3:])]; !ok {
			continue
		}

		eit, err := mpegts.ParseEit(section.Data, option.TextDecoder, option.Location)
		if err != nil {
			Log.Debugf("parse eit failed, drop it. err=%+v", err)
			continue
		}
		aggregator.Add(eit)
	}
	Log.Infof("EIT: %d packets read", sp.PacketCount())
	return aggregator.Events(), sp.PacketCount(), nil
}
