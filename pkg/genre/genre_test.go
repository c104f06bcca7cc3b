// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package genre_test

import (
	"testing"

	"github.com/q191201771/epgdump/pkg/genre"
	"github.com/q191201771/naza/pkg/assert"
)

func TestLookup(t *testing.T) {
	golden := []struct {
		level1, level2 uint8
		name1, name2   string
	}{
		{0x0, 0x0, "ニュース／報道", "定時・総合"},
		{0x0, 0x1, "ニュース／報道", "天気"},
		{0x1, 0x1, "スポーツ", "野球"},
		{0x3, 0x0, "ドラマ", "国内ドラマ"},
		{0x7, 0x0, "アニメ／特撮", "国内アニメ"},
		{0xA, 0xC, "趣味／教育", "教育問題"},
		{0xF, 0xF, "その他", "その他"},
		{0x3, 0x5, "ドラマ", genre.Unknown},
		{0xC, 0x0, genre.Unknown, genre.Unknown},
		{0xD, 0xF, genre.Unknown, genre.Unknown},
	}
	for _, g := range golden {
		name1, name2 := genre.Lookup(g.level1, g.level2)
		assert.Equal(t, g.name1, name1)
		assert.Equal(t, g.name2, name2)
	}
}
