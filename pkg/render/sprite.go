// Package render 提供基于 ebiten 的渲染表面实现。
//
// 这些类型只负责"把状态画出来"：精灵帧偏移、地图背景、命中区域和新手提示。
// 所有时序和几何计算都在 animation / hitbox 包中完成。
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/decker502/hitsync/pkg/animation"
	"github.com/decker502/hitsync/pkg/geom"
	"github.com/hajimehoshi/ebiten/v2"
)

// SpriteSurface 精灵图表面，实现 animation.Surface
//
// 精灵图是横向排列的帧条，当前帧由背景水平偏移百分比决定
// （0% = 第一帧，100% = 最后一帧）。
type SpriteSurface struct {
	sheets *SheetCache

	sheet      *ebiten.Image
	sheetKey   string
	frameCount int
	offset     float64
	visible    bool

	bounds geom.Rect // 屏幕上的绘制区域
}

var _ animation.Surface = (*SpriteSurface)(nil)

// NewSpriteSurface 创建精灵表面
// visible 指定初始可见性（角色精灵为 true，叠加动画为 false）
func NewSpriteSurface(sheets *SheetCache, visible bool) *SpriteSurface {
	return &SpriteSurface{sheets: sheets, visible: visible, frameCount: 1}
}

// SetSheet 实现 animation.Surface
func (s *SpriteSurface) SetSheet(sheet string, frameCount int) {
	if frameCount < 1 {
		frameCount = 1
	}
	s.sheetKey = sheet
	s.frameCount = frameCount
	s.offset = 0
	if s.sheets != nil {
		s.sheet = s.sheets.Get(sheet, frameCount)
	}
}

// SetFrameOffset 实现 animation.Surface
func (s *SpriteSurface) SetFrameOffset(percent float64) {
	s.offset = math.Max(0, math.Min(100, percent))
}

// SetVisible 实现 animation.Surface
func (s *SpriteSurface) SetVisible(visible bool) {
	s.visible = visible
}

// SetBounds 设置屏幕上的绘制区域（布局变化时调用）
func (s *SpriteSurface) SetBounds(r geom.Rect) {
	s.bounds = r
}

// Sheet 返回当前精灵图标识
func (s *SpriteSurface) Sheet() string {
	return s.sheetKey
}

// Visible 是否可见
func (s *SpriteSurface) Visible() bool {
	return s.visible
}

// FrameIndex 由偏移百分比反推帧序号
func (s *SpriteSurface) FrameIndex() int {
	return FrameFromOffset(s.offset, s.frameCount)
}

// FrameFromOffset 偏移百分比 -> 帧序号
// 单帧精灵图始终为 0
func FrameFromOffset(percent float64, frameCount int) int {
	if frameCount <= 1 {
		return 0
	}
	i := int(math.Round(percent / 100 * float64(frameCount-1)))
	if i < 0 {
		return 0
	}
	if i > frameCount-1 {
		return frameCount - 1
	}
	return i
}

// Draw 绘制当前帧，缩放到绘制区域
func (s *SpriteSurface) Draw(screen *ebiten.Image) {
	if !s.visible || s.sheet == nil || s.bounds.Empty() {
		return
	}

	b := s.sheet.Bounds()
	frameW := b.Dx() / s.frameCount
	if frameW <= 0 {
		return
	}
	x0 := b.Min.X + s.FrameIndex()*frameW
	frame := s.sheet.SubImage(image.Rect(x0, b.Min.Y, x0+frameW, b.Max.Y)).(*ebiten.Image)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(s.bounds.Width/float64(frameW), s.bounds.Height/float64(b.Dy()))
	op.GeoM.Translate(s.bounds.X, s.bounds.Y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(frame, op)
}

// sheetColor 按精灵图标识生成稳定的占位颜色
func sheetColor(key string) color.RGBA {
	var h uint32 = 2166136261
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= 16777619
	}
	return color.RGBA{R: uint8(80 + h%150), G: uint8(80 + (h>>8)%150), B: uint8(80 + (h>>16)%150), A: 255}
}
