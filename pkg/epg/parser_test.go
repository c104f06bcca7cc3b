// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package epg_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/q191201771/epgdump/pkg/base"
	"github.com/q191201771/epgdump/pkg/epg"
	"github.com/q191201771/epgdump/pkg/mpegts"
	"github.com/q191201771/naza/pkg/assert"
)

const (
	testTsid = uint16(0x7FE0)
	testOnid = uint16(0x7FE0)
)

// paddingDescriptors n个200字节的descriptor，用于控制section的长度
func paddingDescriptors(n int) [][]byte {
	var out [][]byte
	for i := 0; i < n; i++ {
		out = append(out, mpegts.PackDescriptor(0xCF, make([]byte, 200)))
	}
	return out
}

// packSdt 一个service的SDT section
func packSdt(sid uint16, serviceType uint8, name string, padding int) []byte {
	ds := append([][]byte{mpegts.PackDescriptorService(serviceType, nil, []byte("\x0e"+name))}, paddingDescriptors(padding)...)
	return mpegts.PackSdtSection(
		mpegts.Sdt{TableId: mpegts.TableIdSdtActual, TransportStreamId: testTsid, OriginalNetworkId: testOnid},
		mpegts.PackSdtService(mpegts.SdtService{ServiceId: sid, EitScheduleFlag: 1, EitPresentFollowingFlag: 1, RunningStatus: 4}, ds...),
	)
}

// packEit 一个event的EIT section
func packEit(sid, eid uint16, start time.Time, title string, padding int) []byte {
	ds := append([][]byte{mpegts.PackDescriptorShortEvent("jpn", []byte("\x0e"+title), nil)}, paddingDescriptors(padding)...)
	return mpegts.PackEitSection(
		mpegts.Eit{
			TableId:           mpegts.TableIdEitScheduleStart,
			ServiceId:         sid,
			TransportStreamId: testTsid,
			OriginalNetworkId: testOnid,
			LastTableId:       mpegts.TableIdEitScheduleStart,
		},
		mpegts.PackEitEvent(mpegts.EitEvent{EventId: eid, StartTime: start, Duration: 30 * time.Minute, RunningStatus: 1}, ds...),
	)
}

// newTestTs SDT占3个packet，EIT占2个packet
func newTestTs() []byte {
	sdtPacker := mpegts.SectionPacker{Pid: mpegts.PidSdt}
	eitPacker := mpegts.SectionPacker{Pid: mpegts.PidEit}
	var ts []byte
	ts = append(ts, sdtPacker.Pack(packSdt(1024, 0x01, "NHK", 2))...)
	ts = append(ts, eitPacker.Pack(packEit(1024, 0x1234, testStartTime, "News 7", 1))...)
	return ts
}

func TestParseTs(t *testing.T) {
	ts := newTestTs()
	assert.Equal(t, 5*mpegts.TsPacketSize, len(ts))

	listing, err := epg.ParseTs(bytes.NewReader(ts))
	assert.Equal(t, nil, err)
	assert.Equal(t, epg.BroadcastTypeDigital, listing.BroadcastType)
	assert.Equal(t, map[uint16]string{1024: "NHK"}, listing.Services)
	assert.Equal(t, 3, listing.SdtPacketCount)
	assert.Equal(t, 5, listing.EitPacketCount)
	assert.Equal(t, 1, len(listing.Events))

	e := listing.Events[0]
	assert.Equal(t, "News 7", e.ShortEvent.EventName)
	assert.Equal(t, testTsid, e.TransportStreamId)
	assert.Equal(t, testOnid, e.OriginalNetworkId)
	assert.Equal(t, uint16(1024), e.ServiceId)
	assert.Equal(t, uint16(0x1234), e.EventId)
	assert.Equal(t, true, e.StartTime.Equal(testStartTime))
	assert.Equal(t, 30*time.Minute, e.Duration)
}

func TestParseTs_ServiceFilter(t *testing.T) {
	sdtPacker := mpegts.SectionPacker{Pid: mpegts.PidSdt}
	eitPacker := mpegts.SectionPacker{Pid: mpegts.PidEitIsdbL1}
	var ts []byte
	ts = append(ts, sdtPacker.Pack(
		packSdt(1024, 0x01, "TV", 0),
		packSdt(1025, 0xC0, "DATA", 0),
		packSdt(1026, 0xAD, "4K", 0),
	)...)
	ts = append(ts, eitPacker.Pack(
		packEit(1025, 1, testStartTime, "data", 0),
		packEit(1024, 2, testStartTime, "tv", 0),
		packEit(1026, 3, testStartTime.Add(-time.Hour), "4k", 0),
		packEit(1027, 4, testStartTime, "unknown", 0),
	)...)

	// 地上波只读第一个SDT section
	listing, err := epg.ParseTs(bytes.NewReader(ts))
	assert.Equal(t, nil, err)
	assert.Equal(t, map[uint16]string{1024: "TV"}, listing.Services)
	assert.Equal(t, 1, len(listing.Events))

	listing, err = epg.ParseTs(bytes.NewReader(ts), func(option *epg.Option) {
		option.BroadcastType = epg.BroadcastTypeBs
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, map[uint16]string{1024: "TV", 1026: "4K"}, listing.Services)
	assert.Equal(t, 2, len(listing.Events))
	assert.Equal(t, "tv", listing.Events[0].ShortEvent.EventName)
	assert.Equal(t, "4k", listing.Events[1].ShortEvent.EventName)

	listing, err = epg.ParseTs(bytes.NewReader(ts), func(option *epg.Option) {
		option.BroadcastType = epg.BroadcastTypeBs
		option.AcceptServiceTypes = []uint8{0xC0}
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, map[uint16]string{1025: "DATA"}, listing.Services)
	assert.Equal(t, 1, len(listing.Events))
}

func TestParseTs_MaxPackets(t *testing.T) {
	ts := newTestTs()

	// 只读到SDT，EIT这一遍也只读3个packet，读不到EIT
	listing, err := epg.ParseTs(bytes.NewReader(ts), func(option *epg.Option) {
		option.MaxPackets = 3
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(listing.Services))
	assert.Equal(t, 0, len(listing.Events))
	assert.Equal(t, 3, listing.EitPacketCount)

	listing, err = epg.ParseTs(bytes.NewReader(ts), func(option *epg.Option) {
		option.MaxPackets = 3
		option.ScanAll = true
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(listing.Events))
}

func TestParseSdtAndEit(t *testing.T) {
	ts := newTestTs()
	services, err := epg.ParseSdt(bytes.NewReader(ts))
	assert.Equal(t, nil, err)
	assert.Equal(t, map[uint16]string{1024: "NHK"}, services)

	events, err := epg.ParseEit(bytes.NewReader(ts), services, func(option *epg.Option) {
		option.TextDecoder = mpegts.RawTextDecoder
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(events))
	assert.Equal(t, "\x0eNews 7", events[0].ShortEvent.EventName)

	events, err = epg.ParseEit(bytes.NewReader(ts), map[uint16]string{})
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(events))
}

func TestParseTs_CrcError(t *testing.T) {
	ts := newTestTs()
	// 破坏EIT section的最后一个字节，EIT section的第一个packet中放了183字节，剩余部分在第二个packet中
	broken := make([]byte, len(ts))
	copy(broken, ts)
	eit := packEit(1024, 0x1234, testStartTime, "News 7", 1)
	remain := len(eit) - (mpegts.TsPacketSize - mpegts.TsPacketHeaderSize - 1)
	broken[4*mpegts.TsPacketSize+mpegts.TsPacketHeaderSize+remain-1] ^= 0xFF

	listing, err := epg.ParseTs(bytes.NewReader(broken))
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(listing.Services))
	assert.Equal(t, 0, len(listing.Events))
}

type failSeeker struct {
	*bytes.Reader
}

func (f *failSeeker) Seek(offset int64, whence int) (int64, error) {
	return 0, errors.New("seek failed")
}

func TestParseTs_SeekError(t *testing.T) {
	_, err := epg.ParseTs(&failSeeker{bytes.NewReader(newTestTs())})
	assert.IsNotNil(t, err)
}

func TestFindEvent(t *testing.T) {
	listing, err := epg.ParseTs(bytes.NewReader(newTestTs()))
	assert.Equal(t, nil, err)

	start, end, err := epg.FindEvent(listing.Events, testTsid, 1024, 0x1234)
	assert.Equal(t, nil, err)
	assert.Equal(t, testStartTime.Unix(), start.Unix())
	assert.Equal(t, testStartTime.Add(30*time.Minute).Unix(), end.Unix())

	_, _, err = epg.FindEvent(listing.Events, testTsid, 1024, 0x1235)
	assert.Equal(t, true, errors.Is(err, base.ErrEventNotFound))
	_, _, err = epg.FindEvent(listing.Events, testTsid+1, 1024, 0x1234)
	assert.Equal(t, true, errors.Is(err, base.ErrEventNotFound))
	_, _, err = epg.FindEvent(nil, testTsid, 1024, 0x1234)
	assert.Equal(t, true, errors.Is(err, base.ErrEventNotFound))
}

func TestParseTsFiles(t *testing.T) {
	dir := t.TempDir()

	sdtPacker := mpegts.SectionPacker{Pid: mpegts.PidSdt}
	eitPacker := mpegts.SectionPacker{Pid: mpegts.PidEit}
	var ts1, ts2 []byte
	ts1 = append(ts1, sdtPacker.Pack(packSdt(1024, 0x01, "ONE", 0))...)
	ts1 = append(ts1, eitPacker.Pack(packEit(1024, 1, testStartTime.Add(time.Hour), "one", 0))...)
	ts2 = append(ts2, sdtPacker.Pack(packSdt(2048, 0x01, "TWO", 0))...)
	ts2 = append(ts2, eitPacker.Pack(packEit(2048, 1, testStartTime, "two", 0))...)

	filename1 := filepath.Join(dir, "1.ts")
	filename2 := filepath.Join(dir, "2.ts")
	assert.Equal(t, nil, os.WriteFile(filename1, ts1, 0644))
	assert.Equal(t, nil, os.WriteFile(filename2, ts2, 0644))

	listing, err := epg.ParseTsFiles(context.Background(), []string{filename1, filename2})
	assert.Equal(t, nil, err)
	assert.Equal(t, map[uint16]string{1024: "ONE", 2048: "TWO"}, listing.Services)
	assert.Equal(t, 2, len(listing.Events))
	assert.Equal(t, "two", listing.Events[0].ShortEvent.EventName)
	assert.Equal(t, "one", listing.Events[1].ShortEvent.EventName)

	listing, err = epg.ParseTsFiles(context.Background(), []string{filename1, filename2}, func(option *epg.Option) {
		option.BroadcastType = epg.BroadcastTypeBs
		option.BatchConcurrency = 1
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, uint16(1024), listing.Events[0].ServiceId)
	assert.Equal(t, uint16(2048), listing.Events[1].ServiceId)

	_, err = epg.ParseTsFiles(context.Background(), []string{filename1, filepath.Join(dir, "not_exist.ts")})
	assert.IsNotNil(t, err)

	single, err := epg.ParseTsFile(filename1)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(single.Events))
}

func TestLoadConf(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "epgdump.conf.json")
	assert.Equal(t, nil, os.WriteFile(filename, []byte(`{"broadcast_type": "BS", "max_packets": 1000}`), 0644))

	config, err := epg.LoadConf(filename)
	assert.Equal(t, nil, err)
	assert.Equal(t, "BS", config.BroadcastType)
	assert.Equal(t, 1000, config.MaxPackets)
	assert.Equal(t, false, config.ScanAll)
	assert.Equal(t, []int{0x01, 0xA5, 0xAD}, config.AcceptServiceTypes)
	assert.Equal(t, 9*60*60, config.TimeOffsetSec)
	assert.Equal(t, 4, config.BatchConcurrency)
	assert.Equal(t, true, config.LogConfig.IsToStdout)
	assert.Equal(t, mpegts.JstLocation, config.Location())

	var option epg.Option
	config.ModOption()(&option)
	assert.Equal(t, epg.BroadcastTypeBs, option.BroadcastType)
	assert.Equal(t, 1000, option.MaxPackets)
	assert.Equal(t, []uint8{0x01, 0xA5, 0xAD}, option.AcceptServiceTypes)

	assert.Equal(t, nil, os.WriteFile(filename, []byte(`{"broadcast_type": "XX"}`), 0644))
	_, err = epg.LoadConf(filename)
	assert.Equal(t, true, errors.Is(err, base.ErrInvalidBroadcastType))

	_, err = epg.LoadConf(filepath.Join(dir, "not_exist.json"))
	assert.IsNotNil(t, err)
}

func TestParseBroadcastType(t *testing.T) {
	for _, s := range []string{"GR", "BS", "CS", "TB"} {
		bt, err := epg.ParseBroadcastType(s)
		assert.Equal(t, nil, err)
		assert.Equal(t, s, bt.Prefix())
		assert.Equal(t, s != "GR", bt.IsAggregated())
	}
	_, err := epg.ParseBroadcastType("gr")
	assert.Equal(t, true, errors.Is(err, base.ErrInvalidBroadcastType))
}

func TestParseEventKey(t *testing.T) {
	tsid, sid, eid, err := epg.ParseEventKey("32736:1024:4660")
	assert.Equal(t, nil, err)
	assert.Equal(t, uint16(32736), tsid)
	assert.Equal(t, uint16(1024), sid)
	assert.Equal(t, uint16(4660), eid)

	for _, key := range []string{"", "1:2", "1:2:3:4", "a:2:3", "1:2:65536", "1:-2:3"} {
		_, _, _, err = epg.ParseEventKey(key)
		assert.Equal(t, true, errors.Is(err, base.ErrInvalidEventKey))
	}
}

func TestDefaultConfig(t *testing.T) {
	config := epg.DefaultConfig()
	assert.Equal(t, "GR", config.BroadcastType)
	assert.Equal(t, 0, config.MaxPackets)
	assert.Equal(t, []int{0x01, 0xA5, 0xAD}, config.AcceptServiceTypes)

	config.TimeOffsetSec = 0
	_, offset := time.Now().In(config.Location()).Zone()
	assert.Equal(t, 0, offset)
}
