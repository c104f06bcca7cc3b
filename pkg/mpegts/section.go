// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"encoding/hex"
	"io"

	"github.com/q191201771/epgdump/pkg/base"
	"github.com/q191201771/naza/pkg/bele"
)

// Section 一个完整的，并且通过了CRC32校验的section
//
// Data 包含section最前面的3字节以及尾部的CRC_32，长度等于3+section_length
type Section struct {
	Pid  uint16
	Data []byte
}

func (s Section) TableId() uint8 {
	return s.Data[0]
}

type SectionParserOption struct {
	// MaxPackets 最多读取多少个TS packet，小于等于0表示不限制
	MaxPackets int

	// ScanAll 为true时忽略 MaxPackets ，一直读到流结束，调试用
	ScanAll bool

	// MinSectionLength section_length小于该值时，认为section不合法并丢弃
	MinSectionLength int
}

var defaultSectionParserOption = SectionParserOption{
	MaxPackets:       0,
	ScanAll:          false,
	MinSectionLength: MinSectionLengthEit,
}

type ModSectionParserOption func(option *SectionParserOption)

// sectionBuffer 某个PID上正在重组的section
type sectionBuffer struct {
	data  []byte
	total int // 3 + section_length，为0表示当前没有正在重组的section
}

func (sb *sectionBuffer) idle() bool {
	return sb.total == 0
}

func (sb *sectionBuffer) need() int {
	return sb.total - len(sb.data)
}

func (sb *sectionBuffer) reset() {
	sb.data = sb.data[:0]
	sb.total = 0
}

// SectionParser 从TS流中按PID重组section
//
// 只处理关心的PID集合，每个PID的重组状态相互独立。
// 非并发安全，一个SectionParser只在一个goroutine中使用。
type SectionParser struct {
	option SectionParserOption

	pr       *PacketReader
	pids     map[uint16]struct{}
	buffers  map[uint16]*sectionBuffer
	sections []Section

	crcErrorCount int
	logDump       base.LogDump
}

// NewSectionParser
//
// @param r: 可以为nil，此时只能通过 FeedPacket 喂入数据
//
// @param pids: 需要重组section的PID集合
func NewSectionParser(r io.Reader, pids []uint16, modOptions ...ModSectionParserOption) *SectionParser {
	option := defaultSectionParserOption
	for _, fn := range modOptions {
		fn(&option)
	}

	sp := &SectionParser{
		option:  option,
		pids:    make(map[uint16]struct{}),
		buffers: make(map[uint16]*sectionBuffer),
		logDump: base.NewLogDump(Log, base.MpegtsDebugDumpMaxNum),
	}
	if r != nil {
		sp.pr = NewPacketReader(r)
	}
	for _, pid := range pids {
		sp.pids[pid] = struct{}{}
	}
	return sp
}

// ReadSection 读取下一个完整的section
//
// @return err: 流结束，或者读取的packet数量达到了上限时，返回 io.EOF
func (sp *SectionParser) ReadSection() (Section, error) {
	for len(sp.sections) == 0 {
		if sp.pr == nil || sp.reachMaxPackets() {
			return Section{}, io.EOF
		}
		packet, err := sp.pr.ReadPacket()
		if err != nil {
			return Section{}, err
		}
		sp.FeedPacket(packet)
	}

	s := sp.sections[0]
	sp.sections = sp.sections[1:]
	return s, nil
}

// FeedPacket 喂入一个188字节的TS packet，重组出的section通过 ReadSection 获取
func (sp *SectionParser) FeedPacket(packet []byte) {
	if len(packet) < TsPacketSize {
		return
	}
	h := ParseTsPacketHeader(packet)
	if _, ok := sp.pids[h.Pid]; !ok {
		return
	}
	payload, ok := PacketPayload(h, packet)
	if !ok {
		sp.dump(h.Pid, "no payload", packet)
		return
	}

	sb := sp.buffer(h.Pid)

	if h.PayloadUnitStart == 0 {
		if sb.idle() {
			return
		}
		need := sb.need()
		if len(payload) < need {
			sb.data = append(sb.data, payload...)
			return
		}
		// need后面的都是填充数据
		sb.data = append(sb.data, payload[:need]...)
		sp.complete(h.Pid, sb)
		return
	}

	pointer := int(payload[0])
	body := payload[1:]

	if !sb.idle() {
		// pointer_field之前的数据属于上一个section
		need := sb.need()
		if pointer != need || pointer > len(body) {
			sp.dump(h.Pid, "pointer_field mismatch with pending section", packet)
			sb.reset()
		} else {
			sb.data = append(sb.data, body[:pointer]...)
			if !sp.complete(h.Pid, sb) {
				return
			}
		}
	}

	if pointer+sectionHeaderSize >= len(body) {
		sp.dump(h.Pid, "pointer_field overflow", packet)
		return
	}
	sp.scan(h.Pid, sb, body, pointer)
}

// PacketCount 已经读取的TS packet数量，包含不关心的PID
func (sp *SectionParser) PacketCount() int {
	if sp.pr == nil {
		return 0
	}
	return sp.pr.Count()
}

// CrcErrorCount CRC32校验失败而被丢弃的section数量
func (sp *SectionParser) CrcErrorCount() int {
	return sp.crcErrorCount
}

// ----- private -------------------------------------------------------------------------------------------------------

// scan 从body的offset位置开始，解析一个或多个section
//
// 放不下的section留在sb中，等待后续packet
func (sp *SectionParser) scan(pid uint16, sb *sectionBuffer, body []byte, offset int) {
	// 至少要放得下3字节的section头加1字节的内容
	for offset+sectionHeaderSize < len(body) {
		if body[offset] == TableIdStuffing {
			return
		}

		sectionLength := int(bele.BeUint16(body[offset+1:]) & 0x0FFF)
		if sectionLength < sp.option.MinSectionLength {
			sp.dump(pid, "section_length too small", body[offset:])
			return
		}

		total := sectionHeaderSize + sectionLength
		if offset+total > len(body) {
			sb.data = append(sb.data[:0], body[offset:]...)
			sb.total = total
			return
		}

		sb.data = append(sb.data[:0], body[offset:offset+total]...)
		sb.total = total
		if !sp.complete(pid, sb) {
			return
		}
		offset += total
	}
}

// complete sb中的section已经完整，做CRC校验
//
// @return 校验失败时返回false，调用方应放弃当前packet中剩余的数据
func (sp *SectionParser) complete(pid uint16, sb *sectionBuffer) bool {
	data := make([]byte, len(sb.data))
	copy(data, sb.data)
	sb.reset()

	if !CheckSectionCrc32(data) {
		sp.crcErrorCount++
		Log.Warnf("section crc32 mismatch, drop it. pid=0x%04x, table_id=0x%02x, len=%d", pid, data[0], len(data))
		return false
	}

	sp.sections = append(sp.sections, Section{
		Pid:  pid,
		Data: data,
	})
	return true
}

func (sp *SectionParser) buffer(pid uint16) *sectionBuffer {
	sb, ok := sp.buffers[pid]
	if !ok {
		sb = &sectionBuffer{}
		sp.buffers[pid] = sb
	}
	return sb
}

func (sp *SectionParser) reachMaxPackets() bool {
	if sp.option.ScanAll || sp.option.MaxPackets <= 0 {
		return false
	}
	return sp.pr.Count() >= sp.option.MaxPackets
}

func (sp *SectionParser) dump(pid uint16, reason string, b []byte) {
	if sp.logDump.ShouldDump() {
		sp.logDump.Outf("[%p] drop. pid=0x%04x, reason=%s, len=%d, hex=\n%s", sp, pid, reason, len(b), hex.Dump(b))
	}
}
