// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"time"

	"github.com/q191201771/naza/pkg/bele"
)

// ISDB中的时间都是日本标准时间
var JstLocation = time.FixedZone("JST", 9*60*60)

// SentinelDate MJD无法转换为合法日期时使用的占位日期
var SentinelDate = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)

// SentinelStartTime start_time无法解析时使用的占位时间，9999-01-01 01:01:01
func SentinelStartTime(loc *time.Location) time.Time {
	if loc == nil {
		loc = JstLocation
	}
	return time.Date(9999, 1, 1, 1, 1, 1, 0, loc)
}

// IsSentinelTime 是否为占位日期或时间
func IsSentinelTime(t time.Time) bool {
	return t.Year() == 9999
}

// DecodeMjd 将2字节的MJD（Modified Julian Date）转换为日期
//
// <ETSI EN 300 468> <Annex C>
//
// 转换公式在1900-03-01到2100-02-28之间有效，计算结果不是合法日期时返回 SentinelDate
//
// @return 返回UTC时区的0点
func DecodeMjd(b []byte) time.Time {
	mjd := float64(bele.BeUint16(b))

	// float转int时向0取整
	yy := int((mjd - 15078.2) / 365.25)
	yd := int(float64(yy) * 365.25)
	mm := int((mjd - 14956.1 - float64(yd)) / 30.6001)
	md := int(float64(mm) * 30.6001)
	day := int(mjd) - 14956 - yd - md

	k := 0
	if mm == 14 || mm == 15 {
		k = 1
	}
	year := 1900 + yy + k
	month := mm - 1 - k*12

	if month < 1 || month > 12 || day < 1 {
		return SentinelDate
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date会对溢出的日期做归一化，比如2月30日变成3月2日，这里把这种情况视为非法
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return SentinelDate
	}
	return t
}

// DecodeBcdTime 3字节BCD，分别为时、分、秒
//
// 每个字节的高4位为十位，低4位为个位，不是合法BCD时结果可能超出范围
func DecodeBcdTime(b []byte) (hour, minute, second int) {
	return decodeBcd(b[0]), decodeBcd(b[1]), decodeBcd(b[2])
}

// DecodeBcdDuration 3字节BCD表示的时长
func DecodeBcdDuration(b []byte) time.Duration {
	h, m, s := DecodeBcdTime(b)
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}

// DecodeStartTime 5字节的start_time，2字节MJD加3字节BCD
//
// 日期或时间不合法时（比如全0xFF表示未定义），返回 SentinelStartTime
//
// @param loc: 为nil时使用 JstLocation
func DecodeStartTime(b []byte, loc *time.Location) time.Time {
	if loc == nil {
		loc = JstLocation
	}
	date := DecodeMjd(b[0:2])
	if date.Equal(SentinelDate) {
		return SentinelStartTime(loc)
	}
	h, m, s := DecodeBcdTime(b[2:5])
	if h > 23 || m > 59 || s > 59 {
		return SentinelStartTime(loc)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, s, 0, loc)
}

func decodeBcd(v uint8) int {
	return int(v>>4)*10 + int(v&0x0F)
}
