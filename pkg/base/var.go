// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import "github.com/q191201771/naza/pkg/nazalog"

var Log = nazalog.GetGlobalLogger()

// ----- mpegts --------------------
var (
	// MpegtsDebugDumpMaxNum 日志级别为debug时，解析异常的section最多打印多少次hex dump
	MpegtsDebugDumpMaxNum = 16
)
