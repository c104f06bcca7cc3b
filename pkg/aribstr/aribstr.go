// Copyright 2024, Chef.  All rights reserved.
// https://github.com/q191201771/epgdump
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package aribstr

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

// 解码ARIB STD-B24 8单位符号，用于EIT、SDT中descriptor的字符串
//
// <ARIB STD-B24> <第一編 第2部 第7章>
//
// 支持的字符集：漢字、JIS X 0213 第1面、英数、平仮名、片仮名、JIS X 0201片仮名、追加記号。
// 漢字部分转换为EUC-JP后使用golang.org/x/text解码。
// 马赛克、DRCS、宏等无法转换为文本的部分被跳过。

type charset uint8

const (
	charsetUnknown charset = iota
	charsetKanji
	charsetJisX0213Plane2
	charsetAdditionalSymbols
	charsetAlnum
	charsetHiragana
	charsetKatakana
	charsetJisX0201Katakana
	charsetMosaic
	charsetDrcs
)

type graphicSet struct {
	charset charset
	bytes   int
}

// 终止符F到字符集的对应关系
// <ARIB STD-B24> <第一編 第2部 表7-3>
var (
	oneByteFinals = map[byte]charset{
		0x4A: charsetAlnum,
		0x36: charsetAlnum, // 英数（プロポーショナル）
		0x30: charsetHiragana,
		0x37: charsetHiragana, // 平仮名（プロポーショナル）
		0x31: charsetKatakana,
		0x38: charsetKatakana, // 片仮名（プロポーショナル）
		0x49: charsetJisX0201Katakana,
		0x32: charsetMosaic,
		0x33: charsetMosaic,
		0x34: charsetMosaic,
		0x35: charsetMosaic,
	}
	twoByteFinals = map[byte]charset{
		0x42: charsetKanji,
		0x39: charsetKanji, // JIS X 0213 第1面，与JIS X 0208重叠的部分按漢字处理
		0x3A: charsetJisX0213Plane2,
		0x3B: charsetAdditionalSymbols,
	}
)

// 控制符
const (
	codeApr  = 0x0D
	codeLs1  = 0x0E
	codeLs0  = 0x0F
	codePapf = 0x16
	codeSs2  = 0x19
	codeEsc  = 0x1B
	codeAps  = 0x1C
	codeSs3  = 0x1D
	codeSp   = 0x20
	codeDel  = 0x7F

	codeSzx   = 0x8B
	codeCol   = 0x90
	codeFlc   = 0x91
	codeCdc   = 0x92
	codePol   = 0x93
	codeWmm   = 0x94
	codeMacro = 0x95
	codeHlc   = 0x97
	codeRpc   = 0x98
	codeCsi   = 0x9B
	codeTime  = 0x9D
)

// geta 无法转换的2字节字符
const geta = "〓"

type decoder struct {
	g  [4]graphicSet
	gl int
	gr int
	ss int // 单次切换的目标，-1表示没有

	eucjp *encoding.Decoder
	sb    strings.Builder
}

// DecodeString 将ARIB STD-B24编码的字节解码为UTF-8字符串
//
// 每次调用都从初始状态开始：G0=漢字，G1=英数，G2=平仮名，G3=片仮名，GL=G0，GR=G2。
// 输入被截断或者有非法序列时，尽量解码，不会panic。
func DecodeString(b []byte) string {
	d := decoder{
		g: [4]graphicSet{
			{charsetKanji, 2},
			{charsetAlnum, 1},
			{charsetHiragana, 1},
			{charsetKatakana, 1},
		},
		gl:    0,
		gr:    2,
		ss:    -1,
		eucjp: japanese.EUCJP.NewDecoder(),
	}
	d.sb.Grow(len(b) * 2)

	for i := 0; i < len(b); {
		i += d.step(b[i:])
	}
	return d.sb.String()
}

// step 处理一个字符或者一个控制序列，返回消耗的字节数，至少为1
func (d *decoder) step(b []byte) int {
	c := b[0]
	switch {
	case c == codeEsc:
		return 1 + d.escape(b[1:])
	case c == codeLs0:
		d.gl = 0
	case c == codeLs1:
		d.gl = 1
	case c == codeSs2:
		d.ss = 2
	case c == codeSs3:
		d.ss = 3
	case c == codeApr:
		d.sb.WriteByte('\n')
	case c == codeSp:
		if d.g[d.gl].bytes == 2 {
			d.sb.WriteString("　")
		} else {
			d.sb.WriteByte(' ')
		}
	case c == codePapf:
		return min(len(b), 2)
	case c == codeAps:
		return min(len(b), 3)
	case c < 0x20, c == codeDel, c == 0xA0, c == 0xFF:
		// 其他C0控制符，以及不对应字符的位置
	case c < 0x80:
		index := d.gl
		if d.ss >= 0 {
			index = d.ss
			d.ss = -1
		}
		return d.put(d.g[index], b)
	case c < 0xA0:
		return 1 + d.c1Params(c, b[1:])
	default:
		return d.put(d.g[d.gr], b)
	}
	return 1
}

// put 使用gs解码一个字符
func (d *decoder) put(gs graphicSet, b []byte) int {
	if gs.bytes == 2 {
		if len(b) < 2 {
			return len(b)
		}
		d.put2(gs.charset, b[0]&0x7F, b[1]&0x7F)
		return 2
	}
	d.put1(gs.charset, b[0]&0x7F)
	return 1
}

func (d *decoder) put1(cs charset, c byte) {
	switch cs {
	case charsetAlnum:
		d.sb.WriteByte(c)
	case charsetHiragana:
		d.kana(0x3041, 0x73, 'ゝ', 'ゞ', c)
	case charsetKatakana:
		d.kana(0x30A1, 0x76, 'ヽ', 'ヾ', c)
	case charsetJisX0201Katakana:
		if c <= 0x5F {
			d.sb.WriteRune(rune(0xFF61 + int(c) - 0x21))
		}
	}
}

// kana 平仮名和片仮名集合的排列相同：0x21开始连续排列，最后8个位置是共通的符号
//
// <ARIB STD-B24> <第一編 第2部 表7-5 表7-6>
func (d *decoder) kana(first rune, last byte, iter, voicedIter rune, c byte) {
	switch {
	case c <= last:
		d.sb.WriteRune(first + rune(c-0x21))
	case c == 0x77:
		d.sb.WriteRune(iter)
	case c == 0x78:
		d.sb.WriteRune(voicedIter)
	case c >= 0x79:
		d.sb.WriteRune([]rune("ー。「」、・")[c-0x79])
	}
}

func (d *decoder) put2(cs charset, c1, c2 byte) {
	switch cs {
	case charsetAdditionalSymbols:
		if s, ok := additionalSymbols[uint16(c1)<<8|uint16(c2)]; ok {
			d.sb.WriteString(s)
			return
		}
		d.kanji(c1, c2)
	case charsetKanji:
		// 0x7A-0x7E区为追加記号，EUC-JP解码器会将其中一部分映射为IBM扩展漢字
		if c1 >= 0x7A {
			if s, ok := additionalSymbols[uint16(c1)<<8|uint16(c2)]; ok {
				d.sb.WriteString(s)
				return
			}
		}
		d.kanji(c1, c2)
	case charsetJisX0213Plane2:
		d.sb.WriteString(geta)
	}
}

// kanji 转换为EUC-JP后解码，解码失败的字符再查找追加記号
func (d *decoder) kanji(c1, c2 byte) {
	out, err := d.eucjp.Bytes([]byte{c1 | 0x80, c2 | 0x80})
	if err == nil && len(out) > 0 {
		if r, _ := utf8.DecodeRune(out); r != utf8.RuneError {
			d.sb.Write(out)
			return
		}
	}
	if s, ok := additionalSymbols[uint16(c1)<<8|uint16(c2)]; ok {
		d.sb.WriteString(s)
		return
	}
	d.sb.WriteString(geta)
}

// escape 处理ESC之后的序列，返回ESC之后消耗的字节数
//
// <ARIB STD-B24> <第一編 第2部 表7-1 表7-2>
func (d *decoder) escape(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	switch b[0] {
	case 0x6E: // LS2
		d.gl = 2
		return 1
	case 0x6F: // LS3
		d.gl = 3
		return 1
	case 0x7E: // LS1R
		d.gr = 1
		return 1
	case 0x7D: // LS2R
		d.gr = 2
		return 1
	case 0x7C: // LS3R
		d.gr = 3
		return 1
	case 0x28, 0x29, 0x2A, 0x2B:
		// 1字节G集合指定，或者1字节DRCS指定
		index := int(b[0] - 0x28)
		if len(b) < 2 {
			return len(b)
		}
		if b[1] == 0x20 {
			if len(b) < 3 {
				return len(b)
			}
			d.g[index] = graphicSet{charsetDrcs, 1}
			return 3
		}
		d.g[index] = graphicSet{oneByteFinals[b[1]], 1}
		return 2
	case 0x24:
		if len(b) < 2 {
			return len(b)
		}
		if b[1] >= 0x28 && b[1] <= 0x2B {
			// 2字节G集合指定到G0-G3，或者2字节DRCS指定
			index := int(b[1] - 0x28)
			if len(b) < 3 {
				return len(b)
			}
			if b[2] == 0x20 {
				if len(b) < 4 {
					return len(b)
				}
				d.g[index] = graphicSet{charsetDrcs, 2}
				return 4
			}
			d.g[index] = graphicSet{twoByteFinals[b[2]], 2}
			return 3
		}
		// 2字节G集合指定到G0
		d.g[0] = graphicSet{twoByteFinals[b[1]], 2}
		return 2
	}
	return 1
}

// c1Params C1控制符的参数长度
//
// <ARIB STD-B24> <第一編 第2部 表7-16>
func (d *decoder) c1Params(c byte, b []byte) int {
	n := 0
	switch c {
	case codeSzx, codeFlc, codePol, codeWmm, codeHlc, codeRpc, codeMacro:
		n = 1
	case codeCol, codeCdc:
		n = 1
		if len(b) > 0 && b[0] == 0x20 {
			n = 2
		}
	case codeTime:
		n = 2
	case codeCsi:
		// 参数直到终止符（0x40-0x6F）为止
		for i, v := range b {
			if v >= 0x40 && v <= 0x6F {
				return i + 1
			}
		}
		return len(b)
	}
	return min(len(b), n)
}
