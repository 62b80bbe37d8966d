package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// DecodePlainText 将纯文本文档字节解码为字符串
// 按顺序尝试：UTF-8 → 带BOM的UTF-16 (LE/BE) → Latin-1
// 全部失败才返回 ErrEncoding
func DecodePlainText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: 输入为空", ErrEmptyDocument)
	}

	// UTF-8 BOM 直接剥掉
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	if s, ok := decodeUTF16(data); ok {
		return s, nil
	}

	// Latin-1：每个字节一一对应一个码点，永远可解码
	// 留在最后作为兜底，只要文本主要是ASCII就能得到可用结果
	if looksLikeLatin1(data) {
		runes := make([]rune, len(data))
		for i, b := range data {
			runes[i] = rune(b)
		}
		return string(runes), nil
	}

	return "", fmt.Errorf("%w: 尝试了 UTF-8/UTF-16/Latin-1", ErrEncoding)
}

// decodeUTF16 依据BOM解码UTF-16文本
func decodeUTF16(data []byte) (string, bool) {
	if len(data) < 2 || len(data)%2 != 0 {
		return "", false
	}

	var bigEndian bool
	switch {
	case data[0] == 0xFF && data[1] == 0xFE:
		bigEndian = false
	case data[0] == 0xFE && data[1] == 0xFF:
		bigEndian = true
	default:
		return "", false
	}

	data = data[2:]
	u16 := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		if bigEndian {
			u16 = append(u16, uint16(data[i])<<8|uint16(data[i+1]))
		} else {
			u16 = append(u16, uint16(data[i+1])<<8|uint16(data[i]))
		}
	}
	return string(utf16.Decode(u16)), true
}

// looksLikeLatin1 判断是否适合按Latin-1兜底解码
// 控制字符占比过高说明更可能是二进制数据而不是文本
func looksLikeLatin1(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	control := 0
	for _, b := range data {
		if b < 0x20 && b != '\n' && b != '\r' && b != '\t' {
			control++
		}
	}
	return float64(control)/float64(len(data)) < 0.05
}

// NormalizeText 清洗提取出的原始文本
// 折叠行内连续空白、去除控制字符，但保留换行以维持列表/章节结构
func NormalizeText(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	blankRun := 0
	for _, line := range lines {
		var b strings.Builder
		lastSpace := false
		for _, r := range line {
			if r == '\t' || unicode.Is(unicode.Zs, r) {
				if !lastSpace {
					b.WriteRune(' ')
				}
				lastSpace = true
				continue
			}
			if unicode.IsControl(r) || r == utf8.RuneError {
				continue
			}
			b.WriteRune(r)
			lastSpace = false
		}
		cleaned := strings.TrimSpace(b.String())
		if cleaned == "" {
			blankRun++
			// 连续空行折叠为一个，保留段落分隔
			if blankRun == 1 && len(out) > 0 {
				out = append(out, "")
			}
			continue
		}
		blankRun = 0
		out = append(out, cleaned)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

// CheckMinLength 校验正文长度是否达到下游处理的最小阈值
func CheckMinLength(text string, minLen int) error {
	if len(strings.TrimSpace(text)) == 0 {
		return fmt.Errorf("%w: 归一化后无内容", ErrEmptyDocument)
	}
	if utf8.RuneCountInString(text) < minLen {
		return fmt.Errorf("%w: %d 字符，最少需要 %d", ErrInsufficientContent, utf8.RuneCountInString(text), minLen)
	}
	return nil
}
