// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import (
	"errors"
	"fmt"
)

// ----- 通用的 ---------------------------------------------------------------------------------------------------------

var (
	ErrFileNotExist = errors.New("epgdump: file not exist")
)

func NewErrFileNotExist(filename string) error {
	return fmt.Errorf("%w. filename=%s", ErrFileNotExist, filename)
}

// ----- pkg/mpegts ----------------------------------------------------------------------------------------------------

var (
	ErrMpegtsShortBuffer    = errors.New("epgdump.mpegts: buffer too short")
	ErrMpegtsTableId        = errors.New("epgdump.mpegts: unexpected table id")
	ErrMpegtsDescriptorLoop = errors.New("epgdump.mpegts: descriptor loop overrun")
)

func NewErrMpegtsShortBuffer(need, actual int, msg string) error {
	return fmt.Errorf("%w. need=%d, actual=%d, msg=%s", ErrMpegtsShortBuffer, need, actual, msg)
}

func NewErrMpegtsDescriptorLoop(offset, length, size int) error {
	return fmt.Errorf("%w. offset=%d, length=%d, size=%d", ErrMpegtsDescriptorLoop, offset, length, size)
}

func NewErrMpegtsTableId(tableId uint8, msg string) error {
	return fmt.Errorf("%w. table_id=0x%02x, msg=%s", ErrMpegtsTableId, tableId, msg)
}

// ----- pkg/epg -------------------------------------------------------------------------------------------------------

var (
	ErrEventNotFound        = errors.New("epgdump.epg: event not found")
	ErrInvalidEventKey      = errors.New("epgdump.epg: invalid event key")
	ErrInvalidBroadcastType = errors.New("epgdump.epg: invalid broadcast type")
)

func NewErrEventNotFound(tsid, sid, eid uint16) error {
	return fmt.Errorf("%w. tsid=%d, sid=%d, eid=%d", ErrEventNotFound, tsid, sid, eid)
}

func NewErrInvalidEventKey(key string) error {
	return fmt.Errorf("%w. key=%s", ErrInvalidEventKey, key)
}

func NewErrInvalidBroadcastType(t string) error {
	return fmt.Errorf("%w. type=%s", ErrInvalidBroadcastType, t)
}
