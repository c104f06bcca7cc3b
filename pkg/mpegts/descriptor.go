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
)

// Descriptor
//
// 根据 Tag ，ShortEvent、ExtendedEvent、Content、Service 中最多只有一个不为nil。
// 未识别的tag，或者内部长度字段越界的descriptor，原始内容保存在 Unknown 中。
type Descriptor struct {
	Tag    uint8
	Length uint8

	Service       *DescriptorService
	ShortEvent    *DescriptorShortEvent
	ExtendedEvent *DescriptorExtendedEvent
	Content       *DescriptorContent

	Unknown []byte
}

// ----------------------------------------------------------
// Service descriptor
// <ETSI EN 300 468> <6.2.33>
// descriptor_tag               [8b]
// descriptor_length            [8b]
// service_type                 [8b]
// service_provider_name_length [8b]
// -----loop-----
// char                         [8b]
// --------------
// service_name_length          [8b]
// -----loop-----
// char                         [8b]
// --------------
// ----------------------------------------------------------
type DescriptorService struct {
	Type         uint8
	ProviderName string
	Name         string
}

// ----------------------------------------------------------
// Short event descriptor
// <ETSI EN 300 468> <6.2.37>
// descriptor_tag        [8b]
// descriptor_length     [8b]
// ISO_639_language_code [24b]
// event_name_length     [8b]
// -----loop-----
// event_name_char       [8b]
// --------------
// text_length           [8b]
// -----loop-----
// text_char             [8b]
// --------------
// ----------------------------------------------------------
type DescriptorShortEvent struct {
	Language  string
	EventName string
	Text      string
}

// ----------------------------------------------------------
// Extended event descriptor
// <ETSI EN 300 468> <6.2.15>
// descriptor_tag          [8b]
// descriptor_length       [8b]
// descriptor_number       [4b]
// last_descriptor_number  [4b]
// ISO_639_language_code   [24b]
// length_of_items         [8b]
// -----loop-----
// item_description_length [8b]
// -----loop-----
// item_description_char   [8b]
// --------------
// item_length             [8b]
// -----loop-----
// item_char               [8b]
// --------------
// --------------
// text_length             [8b]
// -----loop-----
// text_char               [8b]
// --------------
// ----------------------------------------------------------
type DescriptorExtendedEvent struct {
	Number     uint8
	LastNumber uint8
	Language   string
	Items      []DescriptorExtendedEventItem
	Text       string
}

// DescriptorExtendedEventItem
//
// 一个item的内容可能被拆分到多个descriptor中，后续部分的 Description 长度为0，
// 所以这里保留原始字节，拼接完成后再解码
type DescriptorExtendedEventItem struct {
	Description []byte
	Value       []byte
}

// ----------------------------------------------------------
// Content descriptor
// <ETSI EN 300 468> <6.2.9>
// descriptor_tag          [8b]
// descriptor_length       [8b]
// -----loop-----
// content_nibble_level_1  [4b]
// content_nibble_level_2  [4b]
// user_byte               [8b]
// --------------
// ----------------------------------------------------------
type DescriptorContent struct {
	Entries []DescriptorContentEntry
}

type DescriptorContentEntry struct {
	Level1 uint8
	Level2 uint8
	User1  uint8
	User2  uint8
}

// parseDescriptors 解析descriptor loop
//
// 某个descriptor的descriptor_length超出了 b 的范围时返回错误，已经解析的descriptor也一并返回
func parseDescriptors(b []byte, decoder TextDecoder) (ds []Descriptor, err error) {
	i := 0
	for i < len(b) {
		if i+2 > len(b) {
			return ds, base.NewErrMpegtsDescriptorLoop(i, 2, len(b))
		}
		tag := b[i]
		length := int(b[i+1])
		if i+2+length > len(b) {
			return ds, base.NewErrMpegtsDescriptorLoop(i, 2+length, len(b))
		}
		ds = append(ds, parseDescriptor(tag, b[i+2:i+2+length], decoder))
		i += 2 + length
	}
	return ds, nil
}

func parseDescriptor(tag uint8, body []byte, decoder TextDecoder) Descriptor {
	d := Descriptor{
		Tag:    tag,
		Length: uint8(len(body)),
	}

	ok := false
	switch tag {
	case DescriptorTagService:
		d.Service, ok = parseDescriptorService(body, decoder)
	case DescriptorTagShortEvent:
		d.ShortEvent, ok = parseDescriptorShortEvent(body, decoder)
	case DescriptorTagExtendedEvent:
		d.ExtendedEvent, ok = parseDescriptorExtendedEvent(body, decoder)
	case DescriptorTagContent:
		d.Content, ok = parseDescriptorContent(body)
	}
	if !ok {
		d.Unknown = body
	}
	return d
}

func parseDescriptorService(b []byte, decoder TextDecoder) (*DescriptorService, bool) {
	var d DescriptorService
	r := byteReader{b: b}
	d.Type = r.readUint8()
	provider := r.readLengthPrefixed()
	name := r.readLengthPrefixed()
	if r.err {
		return nil, false
	}
	d.ProviderName = decoder(provider)
	d.Name = decoder(name)
	return &d, true
}

func parseDescriptorShortEvent(b []byte, decoder TextDecoder) (*DescriptorShortEvent, bool) {
	var d DescriptorShortEvent
	r := byteReader{b: b}
	lang := r.readBytes(3)
	name := r.readLengthPrefixed()
	text := r.readLengthPrefixed()
	if r.err {
		return nil, false
	}
	d.Language = string(lang)
	d.EventName = decoder(name)
	d.Text = decoder(text)
	return &d, true
}

func parseDescriptorExtendedEvent(b []byte, decoder TextDecoder) (*DescriptorExtendedEvent, bool) {
	var d DescriptorExtendedEvent
	r := byteReader{b: b}
	number := r.readUint8()
	d.Number = number >> 4
	d.LastNumber = number & 0x0F
	d.Language = string(r.readBytes(3))

	items := byteReader{b: r.readLengthPrefixed()}
	for !items.err && !items.eof() {
		var item DescriptorExtendedEventItem
		item.Description = items.readLengthPrefixed()
		item.Value = items.readLengthPrefixed()
		d.Items = append(d.Items, item)
	}
	text := r.readLengthPrefixed()
	if r.err || items.err {
		return nil, false
	}
	d.Text = decoder(text)
	return &d, true
}

func parseDescriptorContent(b []byte) (*DescriptorContent, bool) {
	var d DescriptorContent
	// 末尾不足2字节的部分忽略
	for i := 0; i+2 <= len(b); i += 2 {
		d.Entries = append(d.Entries, DescriptorContentEntry{
			Level1: b[i] >> 4,
			Level2: b[i] & 0x0F,
			User1:  b[i+1] >> 4,
			User2:  b[i+1] & 0x0F,
		})
	}
	return &d, true
}

// byteReader 按字节顺序读取，越界后 err 置为true，后续读取都返回零值
type byteReader struct {
	b   []byte
	pos int
	err bool
}

func (r *byteReader) eof() bool {
	return r.pos >= len(r.b)
}

func (r *byteReader) readUint8() uint8 {
	if r.err || r.pos+1 > len(r.b) {
		r.err = true
		return 0
	}
	v := r.b[r.pos]
	r.pos++
	return v
}

func (r *byteReader) readBytes(n int) []byte {
	if r.err || r.pos+n > len(r.b) {
		r.err = true
		return nil
	}
	v := r.b[r.pos : r.pos+n]
	r.pos += n
	return v
}

// readLengthPrefixed 读取1字节长度，以及该长度的内容
func (r *byteReader) readLengthPrefixed() []byte {
	n := int(r.readUint8())
	return r.readBytes(n)
}
