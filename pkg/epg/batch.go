// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package epg

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/q191201771/epgdump/pkg/base"
	"github.com/q191201771/naza/pkg/nazaerrors"
	"golang.org/x/sync/errgroup"
)

// ParseTsFile 打开文件并调用 ParseTs
func ParseTsFile(filename string, modOptions ...ModOption) (Listing, error) {
	return parseTsFile(context.Background(), filename, modOptions)
}

// ParseTsFiles 并发解析多个TS文件，并合并结果
//
// 每个文件在各自的goroutine中独立解析。service取并集，同一个service_id以排在后面的文件为准；
// event直接拼接后重新排序。
// 任何一个文件失败时，取消其他文件的解析，并返回第一个错误。
func ParseTsFiles(ctx context.Context, filenames []string, modOptions ...ModOption) (Listing, error) {
	option := newOption(modOptions)

	listings := make([]Listing, len(filenames))
	g, ctx := errgroup.WithContext(ctx)
	if option.BatchConcurrency > 0 {
		g.SetLimit(option.BatchConcurrency)
	}
	for i := range filenames {
		i := i
		g.Go(func() (err error) {
			listings[i], err = parseTsFile(ctx, filenames[i], modOptions)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Listing{}, err
	}

	return MergeListings(option.BroadcastType, listings...), nil
}

// MergeListings 合并多个解析结果
func MergeListings(broadcastType BroadcastType, listings ...Listing) Listing {
	out := Listing{
		BroadcastType: broadcastType,
		Services:      make(map[uint16]string),
	}
	for _, l := range listings {
		for sid, name := range l.Services {
			out.Services[sid] = name
		}
		out.Events = append(out.Events, l.Events...)
		out.SdtPacketCount += l.SdtPacketCount
		out.EitPacketCount += l.EitPacketCount
	}
	SortEvents(broadcastType, out.Events)
	return out
}

// ----- private -------------------------------------------------------------------------------------------------------

func parseTsFile(ctx context.Context, filename string, modOptions []ModOption) (Listing, error) {
	if err := ctx.Err(); err != nil {
		return Listing{}, err
	}
	fp, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Listing{}, nazaerrors.Wrap(base.NewErrFileNotExist(filename))
		}
		return Listing{}, nazaerrors.Wrap(err)
	}
	defer fp.Close()

	Log.Infof("parse ts file. filename=%s", filename)
	return ParseTs(&ctxReadSeeker{ctx: ctx, rs: fp}, modOptions...)
}

// ctxReadSeeker ctx被取消后，Read返回ctx的错误，用于中止正在进行的解析
type ctxReadSeeker struct {
	ctx context.Context
	rs  io.ReadSeeker
}

func (c *ctxReadSeeker) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.rs.Read(p)
}

func (c *ctxReadSeeker) Seek(offset int64, whence int) (int64, error) {
	return c.rs.Seek(offset, whence)
}
