// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"bufio"
	"errors"
	"io"
)

// PacketReader 从字节流中按188字节切分出TS packet
//
// 逐字节寻找sync_byte，找到后读取剩余的187字节。
// 流末尾不足一个完整packet的数据被静默丢弃。
type PacketReader struct {
	r      *bufio.Reader
	packet [TsPacketSize]byte
	count  int
}

func NewPacketReader(r io.Reader) *PacketReader {
	return &PacketReader{
		r: bufio.NewReaderSize(r, 64*TsPacketSize),
	}
}

// ReadPacket 读取下一个packet
//
// 注意，返回的内存块在下次调用时会被覆盖，调用方需要自行拷贝
//
// @return err: 流结束时返回 io.EOF ，其他读取错误原样返回
func (pr *PacketReader) ReadPacket() ([]byte, error) {
	for {
		c, err := pr.r.ReadByte()
		if err != nil {
			return nil, err
		}
		if c == syncByte {
			break
		}
	}

	pr.packet[0] = syncByte
	if _, err := io.ReadFull(pr.r, pr.packet[1:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	pr.count++
	return pr.packet[:], nil
}

// Count 已经读取的packet数量
func (pr *PacketReader) Count() int {
	return pr.count
}
