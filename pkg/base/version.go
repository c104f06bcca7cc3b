// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import "strings"

// 版本信息相关
// 一部分版本信息使用了naza.bininfo，另外一些信息由本文件提供，
// 并且写入日志以及xmltv输出的generator-info字段中

// 版本，该变量由外部脚本修改维护
const EpgdumpVersion = "v0.3.0"

var (
	EpgdumpLibraryName = "epgdump"
	EpgdumpGithubRepo  = "github.com/q191201771/epgdump"
	EpgdumpGithubSite  = "https://github.com/q191201771/epgdump"

	// e.g. epgdump v0.3.0 (github.com/q191201771/epgdump)
	EpgdumpFullInfo = EpgdumpLibraryName + " " + EpgdumpVersion + " (" + EpgdumpGithubRepo + ")"

	// e.g. 0.3.0
	EpgdumpVersionDot string

	// 写入xmltv的generator-info-name
	// e.g. epgdump/0.3.0
	EpgdumpGeneratorInfoName string
)

func init() {
	EpgdumpVersionDot = strings.TrimPrefix(EpgdumpVersion, "v")
	EpgdumpGeneratorInfoName = EpgdumpLibraryName + "/" + EpgdumpVersionDot
}
