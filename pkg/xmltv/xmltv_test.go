// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package xmltv_test

import (
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/q191201771/epgdump/pkg/epg"
	"github.com/q191201771/epgdump/pkg/mpegts"
	"github.com/q191201771/epgdump/pkg/xmltv"
	"github.com/q191201771/naza/pkg/assert"
)

var testStartTime = time.Date(2022, 9, 4, 9, 0, 0, 0, mpegts.JstLocation)

func newTestListing() epg.Listing {
	return epg.Listing{
		BroadcastType: epg.BroadcastTypeBs,
		Services:      map[uint16]string{211: "BS11", 101: "NHK BS1"},
		Events: []epg.Event{
			{
				OriginalNetworkId: 4,
				TransportStreamId: 16625,
				ServiceId:         101,
				EventId:           0x1234,
				StartTime:         testStartTime,
				Duration:          90 * time.Minute,
				ShortEvent: &mpegts.DescriptorShortEvent{
					Language:  "jpn",
					EventName: "ニュース!",
					Text:      "  今日の出来事　A  ",
				},
				Content: &mpegts.DescriptorContent{Entries: []mpegts.DescriptorContentEntry{
					{Level1: 0x0, Level2: 0x0, User1: 0xF, User2: 0xF},
					{Level1: 0xC, Level2: 0x1},
				}},
				ExtendedItems: []epg.ExtendedItem{
					{Name: "出演者", Value: "山田 "},
					{Name: "音楽", Value: "田中?"},
				},
			},
			{
				OriginalNetworkId: 4,
				TransportStreamId: 16625,
				ServiceId:         211,
				EventId:           1,
				StartTime:         testStartTime,
				Duration:          30 * time.Minute,
				ShortEvent:        &mpegts.DescriptorShortEvent{EventName: "a < b"},
			},
		},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := xmltv.Write(&buf, newTestListing(), func(option *xmltv.Option) {
		option.ChannelName = "ch"
		option.ExtraInfo = true
		option.Now = testStartTime
	})
	assert.Equal(t, nil, err)
	out := buf.String()

	assert.Equal(t, true, strings.HasPrefix(out, xml.Header))
	assert.Equal(t, true, strings.Contains(out, `<tv date="20220904090000 +0900" generator-info-name="epgdump/`))
	assert.Equal(t, true, strings.Contains(out,
		`<channel id="BS101" name="ch"><display-name lang="ja">NHK BS1</display-name><display-name lang="ja">BS101</display-name><display-name lang="ja">BS101 NHK BS1</display-name></channel>`))
	// channel按service_id排序
	assert.Equal(t, true, strings.Index(out, `id="BS101"`) < strings.Index(out, `id="BS211"`))

	assert.Equal(t, true, strings.Contains(out,
		`<programme start="20220904090000 +0900" stop="20220904103000 +0900" channel="BS101"><length units="minutes">90</length><title lang="ja">ニュース！</title><desc lang="ja">今日の出来事 A</desc>`))
	assert.Equal(t, true, strings.Contains(out,
		`<category content-nibble-set="0" user-nibble-set="255" lang="ja">ニュース／報道 &gt; 定時・総合</category>`))
	assert.Equal(t, true, strings.Contains(out,
		`<category content-nibble-set="193" user-nibble-set="0" lang="ja">UNKNOWN &gt; UNKNOWN</category>`))
	assert.Equal(t, true, strings.Contains(out,
		`<extra-info><transport-stream-id>16625</transport-stream-id><original-network-id>4</original-network-id><service-id>101</service-id><event-id>4660</event-id><extended-event-descriptor lang="ja">《出演者》&#xA;山田&#xA;&#xA;《音楽》&#xA;田中？</extended-event-descriptor></extra-info>`))

	// 没有desc以及extended item
	assert.Equal(t, true, strings.Contains(out,
		`<title lang="ja">a &lt; b</title><extra-info><transport-stream-id>16625</transport-stream-id><original-network-id>4</original-network-id><service-id>211</service-id><event-id>1</event-id></extra-info>`))

	// 输出是合法的xml
	var v struct {
		Channels   []struct{} `xml:"channel"`
		Programmes []struct{} `xml:"programme"`
	}
	assert.Equal(t, nil, xml.Unmarshal(buf.Bytes(), &v))
	assert.Equal(t, 2, len(v.Channels))
	assert.Equal(t, 2, len(v.Programmes))
}

func TestWrite_NoExtraInfo(t *testing.T) {
	var buf bytes.Buffer
	err := xmltv.Write(&buf, newTestListing())
	assert.Equal(t, nil, err)
	out := buf.String()
	assert.Equal(t, false, strings.Contains(out, "extra-info"))
	assert.Equal(t, false, strings.Contains(out, ` name=`))
	// 只有xml header后面有换行
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestWrite_Indent(t *testing.T) {
	var buf bytes.Buffer
	err := xmltv.Write(&buf, newTestListing(), func(option *xmltv.Option) {
		option.Indent = "  "
	})
	assert.Equal(t, nil, err)
	out := buf.String()
	assert.Equal(t, true, strings.Contains(out, "\n  <channel id=\"BS101\">\n    <display-name lang=\"ja\">NHK BS1</display-name>"))
	assert.Equal(t, true, strings.HasSuffix(out, "</tv>\n"))
}

func TestWriteFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "out.xml")
	err := xmltv.WriteFile(filename, newTestListing(), func(option *xmltv.Option) {
		option.Now = testStartTime
	})
	assert.Equal(t, nil, err)

	var buf bytes.Buffer
	_ = xmltv.Write(&buf, newTestListing(), func(option *xmltv.Option) {
		option.Now = testStartTime
	})
	content, err := os.ReadFile(filename)
	assert.Equal(t, nil, err)
	assert.Equal(t, buf.Bytes(), content)

	err = xmltv.WriteFile(filepath.Join(t.TempDir(), "not_exist", "out.xml"), newTestListing())
	assert.IsNotNil(t, err)
}

func TestRegainWidth(t *testing.T) {
	golden := []struct {
		in, out string
	}{
		{"", ""},
		{"abc!", "abc!"},
		{"ニュース!", "ニュース！"},
		{"何?", "何？"},
		{"ｶﾀｶﾅ!", "ｶﾀｶﾅ!"},
		{"第1話　Go!", "第1話 Go!"},
		{"家族!契約!", "家族！契約！"},
		{"　　", "　　"},
	}
	for _, g := range golden {
		assert.Equal(t, g.out, xmltv.RegainWidth(g.in))
	}
}

func TestChannelId(t *testing.T) {
	assert.Equal(t, "GR1024", xmltv.ChannelId(epg.BroadcastTypeDigital, 1024))
	assert.Equal(t, "CS0", xmltv.ChannelId(epg.BroadcastTypeCs, 0))
}
