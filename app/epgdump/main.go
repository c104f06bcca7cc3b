// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/q191201771/epgdump/pkg/base"
	"github.com/q191201771/epgdump/pkg/epg"
	"github.com/q191201771/epgdump/pkg/xmltv"
	"github.com/q191201771/naza/pkg/bininfo"
	"github.com/q191201771/naza/pkg/nazalog"
)

// 从录制的TS文件中提取番组表，输出为XMLTV，或者打印某个番组的开始和结束时间
//
// 地上波:
//   ./bin/epgdump -n CHANNEL_NAME -i INPUT_FILE -o OUTPUT_FILE
// BS、CS、TB:
//   ./bin/epgdump -b -i INPUT_FILE -o OUTPUT_FILE
// 打印开始和结束时间（unix秒）:
//   ./bin/epgdump [-b|-cs|-t] -p TRANSPORT_STREAM_ID:SERVICE_ID:EVENT_ID -i INPUT_FILE

const prettyPrintIndent = "  "

type stringSlice []string

func (s *stringSlice) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type cmdOption struct {
	confFile      string
	broadcastType epg.BroadcastType // 为空表示使用配置文件中的值
	channelName   string
	scanAll       bool
	prettyPrint   bool
	inputs        []string
	output        string
	eventKey      string
	extraInfo     bool
	maxPackets    int
}

func main() {
	defer nazalog.Sync()

	opt := parseFlag()
	config := loadConf(opt.confFile)
	initLog(config.LogConfig, opt.eventKey != "")

	nazalog.Infof("bininfo: %s", bininfo.StringifySingleLine())
	nazalog.Infof("version: %s", base.EpgdumpFullInfo)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	modOptions := []epg.ModOption{config.ModOption(), opt.modOption()}
	listing, err := epg.ParseTsFiles(ctx, opt.inputs, modOptions...)
	if err != nil {
		nazalog.Errorf("parse ts failed. inputs=%v, err=%+v", opt.inputs, err)
		base.OsExitWithMessage(1, "parse ts failed. err=%+v\n", err)
	}
	nazalog.Infof("parse ts done. services=%d, events=%d, sdt packets=%d, eit packets=%d",
		len(listing.Services), len(listing.Events), listing.SdtPacketCount, listing.EitPacketCount)

	if opt.eventKey != "" {
		printTime(listing, opt.eventKey)
		return
	}

	err = xmltv.WriteFile(opt.output, listing, func(option *xmltv.Option) {
		option.ChannelName = opt.channelName
		option.ExtraInfo = opt.extraInfo
		if opt.prettyPrint {
			option.Indent = prettyPrintIndent
		}
	})
	if err != nil {
		nazalog.Errorf("write xmltv failed. output=%s, err=%+v", opt.output, err)
		base.OsExitWithMessage(1, "write xmltv failed. err=%+v\n", err)
	}
	nazalog.Infof("write xmltv succ. output=%s", opt.output)
}

func printTime(listing epg.Listing, key string) {
	tsid, sid, eid, _ := epg.ParseEventKey(key)
	start, end, err := epg.FindEvent(listing.Events, tsid, sid, eid)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "not found: transport_stream_id=%d service_id=%d event_id=%d\n", tsid, sid, eid)
		os.Exit(1)
	}
	fmt.Println(start.Unix(), end.Unix())
}

func (opt *cmdOption) modOption() epg.ModOption {
	return func(option *epg.Option) {
		if opt.broadcastType != "" {
			option.BroadcastType = opt.broadcastType
		}
		if opt.scanAll {
			option.ScanAll = true
		}
		if opt.maxPackets > 0 {
			option.MaxPackets = opt.maxPackets
		}
	}
}

func parseFlag() cmdOption {
	var opt cmdOption
	var inputs stringSlice

	binInfoFlag := flag.Bool("v", false, "show bin info")
	bs := flag.Bool("b", false, "input file is BS channel")
	cs := flag.Bool("cs", false, "input file is CS channel")
	tb := flag.Bool("t", false, "input file is TB channel")
	flag.StringVar(&opt.confFile, "conf", "", "specify conf file")
	flag.StringVar(&opt.channelName, "n", "", "specify channel identifier (e.g. ON TV JAPAN code)")
	flag.BoolVar(&opt.scanAll, "d", false, "parse all ts packet")
	flag.BoolVar(&opt.prettyPrint, "f", false, "output formatted xml")
	flag.Var(&inputs, "i", "specify ts file, can be repeated")
	flag.StringVar(&opt.output, "o", "", "specify xml file")
	flag.StringVar(&opt.eventKey, "p", "", "print start time and end time of specified id. TRANSPORT_STREAM_ID:SERVICE_ID:EVENT_ID")
	flag.BoolVar(&opt.extraInfo, "e", false, "output transport_stream_id, service_id and event_id (not compliant with xmltv.dtd)")
	flag.IntVar(&opt.maxPackets, "m", 0, "maximum ts packets of read")
	flag.Parse()

	if *binInfoFlag {
		_, _ = fmt.Fprint(os.Stderr, bininfo.StringifyMultiLine())
		_, _ = fmt.Fprintln(os.Stderr, base.EpgdumpFullInfo)
		os.Exit(0)
	}

	switch {
	case *bs:
		opt.broadcastType = epg.BroadcastTypeBs
	case *cs:
		opt.broadcastType = epg.BroadcastTypeCs
	case *tb:
		opt.broadcastType = epg.BroadcastTypeTb
	}
	opt.inputs = inputs

	if opt.eventKey != "" {
		if _, _, _, err := epg.ParseEventKey(opt.eventKey); err != nil {
			usageAndExit(err)
		}
		if len(opt.inputs) == 0 {
			usageAndExit(nil)
		}
		return opt
	}

	isDigital := opt.broadcastType == "" || opt.broadcastType == epg.BroadcastTypeDigital
	if len(opt.inputs) == 0 || opt.output == "" || (isDigital && opt.confFile == "" && opt.channelName == "") {
		usageAndExit(nil)
	}
	return opt
}

func usageAndExit(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
	}
	flag.Usage()
	_, _ = fmt.Fprintf(os.Stderr, `
Example:
  ./bin/epgdump -n CHANNEL_NAME -i INPUT_FILE -o OUTPUT_FILE
  ./bin/epgdump -b -i INPUT_FILE -o OUTPUT_FILE
  ./bin/epgdump -cs -i INPUT_FILE1 -i INPUT_FILE2 -o OUTPUT_FILE
  ./bin/epgdump -t -p TRANSPORT_STREAM_ID:SERVICE_ID:EVENT_ID -i INPUT_FILE
  ./bin/epgdump -conf ./conf/epgdump.conf.json -n CHANNEL_NAME -i INPUT_FILE -o OUTPUT_FILE
`)
	os.Exit(1)
}

func loadConf(confFile string) *epg.Config {
	if confFile == "" {
		return epg.DefaultConfig()
	}
	config, err := epg.LoadConf(confFile)
	if err != nil {
		base.OsExitWithMessage(1, "load conf failed. file=%s, err=%+v\n", confFile, err)
	}
	return config
}

// initLog 打印时间时，结果输出到stdout，日志只保留warn及以上级别，并且不输出到stdout
func initLog(logConfig nazalog.Option, printTimeMode bool) {
	if err := nazalog.Init(func(option *nazalog.Option) {
		*option = adjustLogOption(logConfig, printTimeMode)
	}); err != nil {
		base.OsExitWithMessage(1, "initial log failed. err=%+v\n", err)
	}
}

func adjustLogOption(logConfig nazalog.Option, printTimeMode bool) nazalog.Option {
	if printTimeMode {
		if logConfig.Level < nazalog.LevelWarn {
			logConfig.Level = nazalog.LevelWarn
		}
		logConfig.IsToStdout = false
	}
	return logConfig
}
