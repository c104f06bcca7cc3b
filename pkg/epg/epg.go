// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package epg

import (
	"time"

	"github.com/q191201771/epgdump/pkg/aribstr"
	"github.com/q191201771/epgdump/pkg/base"
	"github.com/q191201771/epgdump/pkg/mpegts"
)

// 从TS流中提取番组表
//
// 分两遍读取：第一遍从SDT得到需要的service，回到流的开头后，第二遍从EIT得到这些service的event，
// 合并同一个event的多个EIT后，输出按时间排序的event列表。

var Log = base.Log

// BroadcastType 放送波的种类
//
// 地上波（GR）的一个TS中只有一个放送局，event_id即可唯一标识一个event；
// BS、CS、TB的一个TS中有多个放送局，使用(transport_stream_id, service_id, event_id)标识。
// BS、CS、TB之间只有输出时channel id的前缀不同。
type BroadcastType string

const (
	BroadcastTypeDigital BroadcastType = "GR"
	BroadcastTypeBs      BroadcastType = "BS"
	BroadcastTypeCs      BroadcastType = "CS"
	BroadcastTypeTb      BroadcastType = "TB"
)

func ParseBroadcastType(s string) (BroadcastType, error) {
	switch t := BroadcastType(s); t {
	case BroadcastTypeDigital, BroadcastTypeBs, BroadcastTypeCs, BroadcastTypeTb:
		return t, nil
	}
	return "", base.NewErrInvalidBroadcastType(s)
}

// Prefix channel id的前缀，比如GR1024
func (t BroadcastType) Prefix() string {
	return string(t)
}

// IsAggregated 是否是一个TS中有多个放送局的模式
func (t BroadcastType) IsAggregated() bool {
	return t != BroadcastTypeDigital
}

// DefaultAcceptServiceTypes service_type为以下值的service才会被输出
//
// 0x01 デジタルTVサービス
// 0xA5 プロモーション映像サービス
// 0xAD 超高精細度4K専用TVサービス
var DefaultAcceptServiceTypes = []uint8{0x01, 0xA5, 0xAD}

type Option struct {
	BroadcastType BroadcastType

	// MaxPackets SDT、EIT每一遍最多读取多少个TS packet，小于等于0表示不限制
	MaxPackets int

	// ScanAll 为true时忽略 MaxPackets
	ScanAll bool

	AcceptServiceTypes []uint8

	// Location start_time所在的时区
	Location *time.Location

	// TextDecoder 解码descriptor中的字符串
	TextDecoder mpegts.TextDecoder

	// BatchConcurrency ParseTsFiles 同时解析的文件数量，小于等于0表示不限制
	BatchConcurrency int
}

var defaultOption = Option{
	BroadcastType:      BroadcastTypeDigital,
	MaxPackets:         0,
	ScanAll:            false,
	AcceptServiceTypes: DefaultAcceptServiceTypes,
	Location:           mpegts.JstLocation,
	TextDecoder:        aribstr.DecodeString,
	BatchConcurrency:   4,
}

type ModOption func(option *Option)

func newOption(modOptions []ModOption) Option {
	option := defaultOption
	for _, fn := range modOptions {
		fn(&option)
	}
	if option.Location == nil {
		option.Location = mpegts.JstLocation
	}
	if option.TextDecoder == nil {
		option.TextDecoder = aribstr.DecodeString
	}
	return option
}

func (o *Option) acceptServiceType(t uint8) bool {
	for _, v := range o.AcceptServiceTypes {
		if v == t {
			return true
		}
	}
	return false
}

func (o *Option) sectionParserOption(minSectionLength int) mpegts.ModSectionParserOption {
	return func(option *mpegts.SectionParserOption) {
		option.MaxPackets = o.MaxPackets
		option.ScanAll = o.ScanAll
		option.MinSectionLength = minSectionLength
	}
}

// Event 合并后的一个番组
type Event struct {
	OriginalNetworkId uint16
	TransportStreamId uint16
	ServiceId         uint16
	EventId           uint16
	StartTime         time.Time
	Duration          time.Duration
	RunningStatus     uint8
	FreeCaMode        uint8

	// ShortEvent 番組名以及概要，合并后的event一定不为nil
	ShortEvent *mpegts.DescriptorShortEvent

	// Content ジャンル，可能为nil
	Content *mpegts.DescriptorContent

	// ExtendedItems 詳細情報，名称唯一，保持第一次出现的顺序
	ExtendedItems []ExtendedItem
}

type ExtendedItem struct {
	Name  string
	Value string
}

func (e *Event) EndTime() time.Time {
	return e.StartTime.Add(e.Duration)
}

// Listing 一个或多个TS文件的解析结果
type Listing struct {
	BroadcastType BroadcastType

	// Services service_id到service名称
	Services map[uint16]string

	Events []Event

	SdtPacketCount int
	EitPacketCount int
}
