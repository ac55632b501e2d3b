package animation

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// OverlayNaming 叠加动画命名约定
type OverlayNaming struct {
	Prefix        string            // 如 "smack"
	Default       string            // 空标识符时使用
	ImpactFrame   int               // 默认 impact 帧
	FrameDuration time.Duration     // 叠加动画未指定帧时长时的默认值
	Aliases       map[string]string // 小写短标识符 -> 动画名
}

// Resolve 将动画名或短标识符解析为目录中的动画名
//
// 解析顺序：
//  1. 空标识符 -> 默认叠加动画
//  2. 目录中存在的精确名称 -> 原样返回
//  3. 已带前缀的名称（如 "smackMexico"）-> 原样返回
//  4. 别名表（不区分大小写，如 "canada" -> "smackEastCanada"）
//  5. 其他 -> 前缀 + 首字母大写（如 "greenland" -> "smackGreenland"）
//
// 返回的名称不保证存在于目录中，调用方需要自行检查。
func (n OverlayNaming) Resolve(c *Catalog, id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return n.Default
	}
	if c != nil && c.Has(id) {
		return id
	}
	if n.Prefix != "" && strings.HasPrefix(id, n.Prefix) {
		return id
	}
	if mapped, ok := n.Aliases[strings.ToLower(id)]; ok {
		return mapped
	}
	return n.Prefix + capitalize(id)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
