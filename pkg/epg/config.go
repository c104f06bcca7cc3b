// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package epg

import (
	"encoding/json"
	"os"
	"time"

	"github.com/q191201771/epgdump/pkg/mpegts"
	"github.com/q191201771/naza/pkg/nazajson"
	"github.com/q191201771/naza/pkg/nazalog"
)

type Config struct {
	BroadcastType string `json:"broadcast_type"`
	MaxPackets    int    `json:"max_packets"`
	ScanAll       bool   `json:"scan_all"`

	// 注意，这里不使用[]uint8，encoding/json会把[]uint8当作base64字符串
	AcceptServiceTypes []int `json:"accept_service_types"`

	// TimeOffsetSec start_time所在时区相对UTC的秒数，默认为JST
	TimeOffsetSec    int `json:"time_offset_sec"`
	BatchConcurrency int `json:"batch_concurrency"`

	LogConfig nazalog.Option `json:"log"`
}

// LoadConf 加载json格式的配置文件，没有配置的项使用默认值
func LoadConf(confFile string) (*Config, error) {
	rawContent, err := os.ReadFile(confFile)
	if err != nil {
		return nil, err
	}
	return ParseConf(rawContent)
}

// DefaultConfig 所有项都使用默认值
func DefaultConfig() *Config {
	config, _ := ParseConf([]byte("{}"))
	return config
}

func ParseConf(rawContent []byte) (*Config, error) {
	var config Config
	if err := json.Unmarshal(rawContent, &config); err != nil {
		return nil, err
	}

	j, err := nazajson.New(rawContent)
	if err != nil {
		return nil, err
	}
	if !j.Exist("broadcast_type") {
		config.BroadcastType = string(BroadcastTypeDigital)
	}
	if !j.Exist("accept_service_types") {
		for _, t := range DefaultAcceptServiceTypes {
			config.AcceptServiceTypes = append(config.AcceptServiceTypes, int(t))
		}
	}
	if !j.Exist("time_offset_sec") {
		config.TimeOffsetSec = 9 * 60 * 60
	}
	if !j.Exist("batch_concurrency") {
		config.BatchConcurrency = defaultOption.BatchConcurrency
	}
	if !j.Exist("log.level") {
		config.LogConfig.Level = nazalog.LevelInfo
	}
	if !j.Exist("log.is_to_stdout") {
		config.LogConfig.IsToStdout = true
	}
	if !j.Exist("log.short_file_flag") {
		config.LogConfig.ShortFileFlag = true
	}

	if _, err = ParseBroadcastType(config.BroadcastType); err != nil {
		return nil, err
	}
	return &config, nil
}

// ModOption 配置文件中的内容转换为 Option
func (c *Config) ModOption() ModOption {
	return func(option *Option) {
		if t, err := ParseBroadcastType(c.BroadcastType); err == nil {
			option.BroadcastType = t
		}
		option.MaxPackets = c.MaxPackets
		option.ScanAll = c.ScanAll
		option.AcceptServiceTypes = nil
		for _, t := range c.AcceptServiceTypes {
			option.AcceptServiceTypes = append(option.AcceptServiceTypes, uint8(t))
		}
		option.Location = c.Location()
		option.BatchConcurrency = c.BatchConcurrency
	}
}

func (c *Config) Location() *time.Location {
	if c.TimeOffsetSec == 9*60*60 {
		return mpegts.JstLocation
	}
	return time.FixedZone("", c.TimeOffsetSec)
}
