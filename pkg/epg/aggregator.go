// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package epg

import (
	"sort"

	"github.com/q191201771/epgdump/pkg/mpegts"
)

type eventKey struct {
	tsid uint16
	sid  uint16
	eid  uint16
}

type master struct {
	event Event
	items []mpegts.DescriptorExtendedEventItem
}

// Aggregator 将多个EIT section中的同一个event合并成一个
//
// 同一个event会在p/f、schedule以及多个section中重复出现，每次出现时携带的descriptor不同。
// 非并发安全。
type Aggregator struct {
	broadcastType BroadcastType
	decoder       mpegts.TextDecoder

	masters map[eventKey]*master
	order   []*master // 第一次出现的顺序
}

// NewAggregator
//
// @param decoder: 用于解码extended event descriptor的item，为nil时使用 mpegts.RawTextDecoder
func NewAggregator(broadcastType BroadcastType, decoder mpegts.TextDecoder) *Aggregator {
	if decoder == nil {
		decoder = mpegts.RawTextDecoder
	}
	return &Aggregator{
		broadcastType: broadcastType,
		decoder:       decoder,
		masters:       make(map[eventKey]*master),
	}
}

// Add 合并一个EIT section中的所有event
func (a *Aggregator) Add(eit mpegts.Eit) {
	for i := range eit.Events {
		a.addEvent(&eit, &eit.Events[i])
	}
}

// Events 合并完成后的event列表
//
// 没有short event descriptor的event被丢弃。
// 地上波按start_time排序，其他按(service_id, start_time)排序。
func (a *Aggregator) Events() []Event {
	var events []Event
	for _, m := range a.order {
		if m.event.ShortEvent == nil {
			continue
		}
		e := m.event
		e.ExtendedItems = a.fixItems(m.items)
		events = append(events, e)
	}
	SortEvents(a.broadcastType, events)
	return events
}

// SortEvents 稳定排序
func SortEvents(broadcastType BroadcastType, events []Event) {
	if broadcastType.IsAggregated() {
		sort.SliceStable(events, func(i, j int) bool {
			if events[i].ServiceId != events[j].ServiceId {
				return events[i].ServiceId < events[j].ServiceId
			}
			return events[i].StartTime.Before(events[j].StartTime)
		})
		return
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
}

// ----- private -------------------------------------------------------------------------------------------------------

func (a *Aggregator) addEvent(eit *mpegts.Eit, ee *mpegts.EitEvent) {
	key := eventKey{eid: ee.EventId}
	if a.broadcastType.IsAggregated() {
		key.tsid = eit.TransportStreamId
		key.sid = eit.ServiceId
	}

	m, ok := a.masters[key]
	if !ok {
		m = &master{
			event: Event{
				OriginalNetworkId: eit.OriginalNetworkId,
				TransportStreamId: eit.TransportStreamId,
				ServiceId:         eit.ServiceId,
				EventId:           ee.EventId,
				StartTime:         ee.StartTime,
				Duration:          ee.Duration,
				RunningStatus:     ee.RunningStatus,
				FreeCaMode:        ee.FreeCaMode,
			},
		}
		a.masters[key] = m
		a.order = append(a.order, m)
	} else if eit.ServiceId < m.event.ServiceId {
		m.event.ServiceId = eit.ServiceId
	}

	for _, d := range ee.Descriptors {
		switch {
		case d.ShortEvent != nil:
			m.event.ShortEvent = d.ShortEvent
		case d.Content != nil:
			m.event.Content = d.Content
		case d.ExtendedEvent != nil:
			// 后续可能会在Value后面拼接，所以拷贝一份，不和section的内存共用
			for _, item := range d.ExtendedEvent.Items {
				m.items = append(m.items, mpegts.DescriptorExtendedEventItem{
					Description: append([]byte(nil), item.Description...),
					Value:       append([]byte(nil), item.Value...),
				})
			}
		}
	}
}

// fixItems 按到达顺序拼接item，再解码
//
// Description长度为0的item是上一个item的后续部分
func (a *Aggregator) fixItems(items []mpegts.DescriptorExtendedEventItem) []ExtendedItem {
	if len(items) == 0 {
		return nil
	}

	var joined []mpegts.DescriptorExtendedEventItem
	for _, item := range items {
		if len(item.Description) == 0 {
			if len(joined) == 0 {
				continue
			}
			last := &joined[len(joined)-1]
			last.Value = append(last.Value[:len(last.Value):len(last.Value)], item.Value...)
			continue
		}
		joined = append(joined, item)
	}

	var out []ExtendedItem
	index := make(map[string]int)
	for _, item := range joined {
		name := a.decoder(item.Description)
		value := a.decoder(item.Value)
		if i, ok := index[name]; ok {
			out[i].Value = value
			continue
		}
		index[name] = len(out)
		out = append(out, ExtendedItem{Name: name, Value: value})
	}
	return out
}
