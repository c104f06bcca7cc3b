// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package xmltv

import (
	"bufio"
	"encoding/xml"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/q191201771/epgdump/pkg/base"
	"github.com/q191201771/epgdump/pkg/epg"
	"github.com/q191201771/epgdump/pkg/genre"
	"github.com/q191201771/naza/pkg/nazaerrors"
)

// 将解析结果输出为XMLTV格式
//
// category以及extra-info两个元素不符合xmltv.dtd，但是包含了很多有用的信息

// TimestampFormat e.g. 20220904090000 +0900
const TimestampFormat = "20060102150405 -0700"

const lang = "ja"

type Option struct {
	// ChannelName 写入channel元素的name属性，为空时不写
	ChannelName string

	// Indent 不为空时换行并使用 Indent 缩进
	Indent string

	// ExtraInfo 是否输出extra-info元素
	ExtraInfo bool

	// Now tv元素的date属性，为零值时使用当前时间
	Now time.Time
}

var defaultOption = Option{
	ChannelName: "",
	Indent:      "",
	ExtraInfo:   false,
}

type ModOption func(option *Option)

// WriteFile 写入文件，文件已存在时覆盖
func WriteFile(filename string, listing epg.Listing, modOptions ...ModOption) error {
	fp, err := os.Create(filename)
	if err != nil {
		return nazaerrors.Wrap(err)
	}
	w := bufio.NewWriter(fp)
	if err = Write(w, listing, modOptions...); err != nil {
		_ = fp.Close()
		return err
	}
	if err = w.Flush(); err != nil {
		_ = fp.Close()
		return nazaerrors.Wrap(err)
	}
	return fp.Close()
}

// Write 输出 listing 中的service和event
func Write(w io.Writer, listing epg.Listing, modOptions ...ModOption) error {
	option := defaultOption
	for _, fn := range modOptions {
		fn(&option)
	}
	if option.Now.IsZero() {
		option.Now = time.Now()
	}

	doc := tv{
		Date:              option.Now.Format(TimestampFormat),
		GeneratorInfoName: base.EpgdumpGeneratorInfoName,
		GeneratorInfoUrl:  base.EpgdumpGithubSite,
		Channels:          newChannels(listing, &option),
	}
	for i := range listing.Events {
		doc.Programmes = append(doc.Programmes, newProgramme(listing.BroadcastType, &listing.Events[i], &option))
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return nazaerrors.Wrap(err)
	}
	enc := xml.NewEncoder(w)
	if option.Indent != "" {
		enc.Indent("", option.Indent)
	}
	if err := enc.Encode(doc); err != nil {
		return nazaerrors.Wrap(err)
	}
	if option.Indent != "" {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return nazaerrors.Wrap(err)
		}
	}
	return nil
}

// ChannelId e.g. GR1024
func ChannelId(broadcastType epg.BroadcastType, serviceId uint16) string {
	return broadcastType.Prefix() + strconv.Itoa(int(serviceId))
}

var (
	regainSpace    = regexp.MustCompile(`　([\x20-\x7e])`)
	regainExclaim  = regexp.MustCompile(`([^\x20-\x7e\x{FF61}-\x{FF9F}])!`)
	regainQuestion = regexp.MustCompile(`([^\x20-\x7e\x{FF61}-\x{FF9F}])\?`)
)

// RegainWidth 恢复全角符号
//
// ARIB的字符串在解码时，全角的英数以及符号被转换成了半角。
// 全角空格后面紧跟半角字符时，替换为半角空格；非半角字符后面的!和?恢复为全角。
func RegainWidth(s string) string {
	s = regainSpace.ReplaceAllString(s, " $1")
	s = regainExclaim.ReplaceAllString(s, "$1！")
	s = regainQuestion.ReplaceAllString(s, "$1？")
	return s
}

// ----- private -------------------------------------------------------------------------------------------------------

type tv struct {
	XMLName           xml.Name    `xml:"tv"`
	Date              string      `xml:"date,attr"`
	GeneratorInfoName string      `xml:"generator-info-name,attr"`
	GeneratorInfoUrl  string      `xml:"generator-info-url,attr"`
	Channels          []channel   `xml:"channel"`
	Programmes        []programme `xml:"programme"`
}

type channel struct {
	Id           string     `xml:"id,attr"`
	Name         string     `xml:"name,attr,omitempty"`
	DisplayNames []langText `xml:"display-name"`
}

type langText struct {
	Lang string `xml:"lang,attr"`
	Text string `xml:",chardata"`
}

type programme struct {
	Start      string     `xml:"start,attr"`
	Stop       string     `xml:"stop,attr"`
	Channel    string     `xml:"channel,attr"`
	Length     length     `xml:"length"`
	Title      langText   `xml:"title"`
	Desc       *langText  `xml:"desc"`
	Categories []category `xml:"category"`
	ExtraInfo  *extraInfo `xml:"extra-info"`
}

type length struct {
	Units string `xml:"units,attr"`
	Value int    `xml:",chardata"`
}

type category struct {
	ContentNibbleSet int    `xml:"content-nibble-set,attr"`
	UserNibbleSet    int    `xml:"user-nibble-set,attr"`
	Lang             string `xml:"lang,attr"`
	Text             string `xml:",chardata"`
}

type extraInfo struct {
	TransportStreamId       uint16    `xml:"transport-stream-id"`
	OriginalNetworkId       uint16    `xml:"original-network-id"`
	ServiceId               uint16    `xml:"service-id"`
	EventId                 uint16    `xml:"event-id"`
	ExtendedEventDescriptor *langText `xml:"extended-event-descriptor"`
}

func newChannels(listing epg.Listing, option *Option) []channel {
	sids := make([]int, 0, len(listing.Services))
	for sid := range listing.Services {
		sids = append(sids, int(sid))
	}
	sort.Ints(sids)

	out := make([]channel, 0, len(sids))
	for _, sid := range sids {
		id := ChannelId(listing.BroadcastType, uint16(sid))
		name := listing.Services[uint16(sid)]
		out = append(out, channel{
			Id:   id,
			Name: option.ChannelName,
			DisplayNames: []langText{
				{Lang: lang, Text: name},
				{Lang: lang, Text: id},
				{Lang: lang, Text: id + " " + name},
			},
		})
	}
	return out
}

func newProgramme(broadcastType epg.BroadcastType, e *epg.Event, option *Option) programme {
	p := programme{
		Start:   e.StartTime.Format(TimestampFormat),
		Stop:    e.EndTime().Format(TimestampFormat),
		Channel: ChannelId(broadcastType, e.ServiceId),
		Length:  length{Units: "minutes", Value: int(e.Duration / time.Minute)},
	}
	if e.ShortEvent != nil {
		p.Title = langText{Lang: lang, Text: RegainWidth(e.ShortEvent.EventName)}
		if desc := RegainWidth(strings.TrimSpace(e.ShortEvent.Text)); desc != "" {
			p.Desc = &langText{Lang: lang, Text: desc}
		}
	}

	if e.Content != nil {
		for _, entry := range e.Content.Entries {
			name1, name2 := genre.Lookup(entry.Level1, entry.Level2)
			p.Categories = append(p.Categories, category{
				ContentNibbleSet: int(entry.Level1)<<4 | int(entry.Level2),
				UserNibbleSet:    int(entry.User1)<<4 | int(entry.User2),
				Lang:             lang,
				Text:             name1 + " > " + name2,
			})
		}
	}

	if option.ExtraInfo {
		ei := &extraInfo{
			TransportStreamId: e.TransportStreamId,
			OriginalNetworkId: e.OriginalNetworkId,
			ServiceId:         e.ServiceId,
			EventId:           e.EventId,
		}
		if text := formatExtendedItems(e.ExtendedItems); text != "" {
			ei.ExtendedEventDescriptor = &langText{Lang: lang, Text: text}
		}
		p.ExtraInfo = ei
	}
	return p
}

// formatExtendedItems e.g. 《出演者》\n...\n\n《音楽》\n...
func formatExtendedItems(items []epg.ExtendedItem) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("《")
		sb.WriteString(strings.TrimSpace(item.Name))
		sb.WriteString("》\n")
		sb.WriteString(RegainWidth(strings.TrimSpace(item.Value)))
		sb.WriteString("\n\n")
	}
	return strings.TrimRightFunc(sb.String(), unicode.IsSpace)
}
