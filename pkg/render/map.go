package render

import (
	"image/color"

	"github.com/decker502/hitsync/pkg/geom"
	"github.com/decker502/hitsync/pkg/hitbox"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// 地图原始尺寸（标定坐标的参考）
const (
	MapNaturalWidth  = 3000
	MapNaturalHeight = 3200
)

// MapReference 地图背景，实现 hitbox.Reference
//
// 地图按比例缩放到窗口内并居中，命中区域的缩放比例和偏移都以它为准。
type MapReference struct {
	naturalW, naturalH float64
	rendered           geom.Rect
	background         *ebiten.Image
}

var _ hitbox.Reference = (*MapReference)(nil)

// NewMapReference 创建地图参考表面，尚未布局时渲染尺寸为 0
func NewMapReference(naturalW, naturalH float64) *MapReference {
	return &MapReference{naturalW: naturalW, naturalH: naturalH}
}

// Layout 按窗口尺寸重新计算地图的渲染区域
// 返回值表示渲染区域是否发生变化
func (m *MapReference) Layout(screenW, screenH int) bool {
	next := FitRect(m.naturalW, m.naturalH, float64(screenW), float64(screenH))
	if next == m.rendered {
		return false
	}
	m.rendered = next
	return true
}

// FitRect 把 w×h 等比缩放到 boundsW×boundsH 内并居中
func FitRect(w, h, boundsW, boundsH float64) geom.Rect {
	if w <= 0 || h <= 0 || boundsW <= 0 || boundsH <= 0 {
		return geom.Rect{}
	}
	scale := boundsW / w
	if s := boundsH / h; s < scale {
		scale = s
	}
	rw, rh := w*scale, h*scale
	return geom.Rect{X: (boundsW - rw) / 2, Y: (boundsH - rh) / 2, Width: rw, Height: rh}
}

// RenderedSize 实现 hitbox.Reference
func (m *MapReference) RenderedSize() (float64, float64) {
	return m.rendered.Width, m.rendered.Height
}

// NaturalSize 实现 hitbox.Reference
func (m *MapReference) NaturalSize() (float64, float64) {
	return m.naturalW, m.naturalH
}

// Offset 实现 hitbox.Reference
func (m *MapReference) Offset() (float64, float64) {
	return m.rendered.X, m.rendered.Y
}

// Bounds 返回地图在屏幕上的区域
func (m *MapReference) Bounds() geom.Rect {
	return m.rendered
}

// Draw 绘制占位地图背景
func (m *MapReference) Draw(screen *ebiten.Image) {
	if m.rendered.Empty() {
		return
	}
	if m.background == nil {
		m.background = placeholderMap()
	}
	b := m.background.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(m.rendered.Width/float64(b.Dx()), m.rendered.Height/float64(b.Dy()))
	op.GeoM.Translate(m.rendered.X, m.rendered.Y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(m.background, op)
}

// placeholderMap 生成一张低分辨率的占位地图（海洋 + 三块陆地）
func placeholderMap() *ebiten.Image {
	const w, h = MapNaturalWidth / 10, MapNaturalHeight / 10
	img := ebiten.NewImage(w, h)
	img.Fill(color.RGBA{R: 40, G: 90, B: 160, A: 255})

	land := color.RGBA{R: 90, G: 150, B: 80, A: 255}
	vector.DrawFilledRect(img, 20, 100, 230, 120, land, true) // 加拿大
	vector.DrawFilledRect(img, 190, 30, 90, 70, land, true)   // 格陵兰
	vector.DrawFilledRect(img, 90, 230, 100, 70, land, true)  // 墨西哥
	return img
}
