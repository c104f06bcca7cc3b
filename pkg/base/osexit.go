// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
)

// OsExitWithMessage 向stderr打印信息后退出进程
//
// windows下双击运行时，等待按键后再退出，避免窗口直接关闭看不到信息
func OsExitWithMessage(code int, format string, v ...interface{}) {
	if format != "" {
		_, _ = fmt.Fprintf(os.Stderr, format, v...)
	}
	if runtime.GOOS == "windows" {
		_, _ = fmt.Fprintf(os.Stderr, "Press Enter to exit...")
		r := bufio.NewReader(os.Stdin)
		_, _ = r.ReadByte()
	}
	os.Exit(code)
}
