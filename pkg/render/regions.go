package render

import (
	"image/color"
	"sort"

	"github.com/decker502/hitsync/pkg/geom"
	"github.com/decker502/hitsync/pkg/hitbox"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

var (
	visualFill     = color.RGBA{R: 255, G: 220, B: 0, A: 90}
	visualStroke   = color.RGBA{R: 255, G: 220, B: 0, A: 220}
	debugHitFill   = color.RGBA{R: 255, G: 0, B: 0, A: 50}
	debugHitStroke = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// RegionLayer 命中区域图层，实现 hitbox.View
// 绘制可视提示框；调试模式下额外绘制命中区域轮廓和标识
type RegionLayer struct {
	face    *text.GoXFace
	regions map[string]hitbox.Placement
}

var _ hitbox.View = (*RegionLayer)(nil)

// NewRegionLayer 创建图层
func NewRegionLayer() *RegionLayer {
	return &RegionLayer{
		face:    text.NewGoXFace(basicfont.Face7x13),
		regions: make(map[string]hitbox.Placement),
	}
}

// Place 实现 hitbox.View
func (l *RegionLayer) Place(id string, p hitbox.Placement) {
	l.regions[id] = p
}

// Hide 实现 hitbox.View
func (l *RegionLayer) Hide(id string) {
	delete(l.regions, id)
}

// Placement 返回区域当前位置
func (l *RegionLayer) Placement(id string) (hitbox.Placement, bool) {
	p, ok := l.regions[id]
	return p, ok
}

// IDs 返回所有可见区域（按字母排序）
func (l *RegionLayer) IDs() []string {
	ids := make([]string, 0, len(l.regions))
	for id := range l.regions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Draw 绘制所有可见区域
func (l *RegionLayer) Draw(screen *ebiten.Image) {
	for _, id := range l.IDs() {
		p := l.regions[id]
		fillRect(screen, p.Visual, visualFill)
		strokeRect(screen, p.Visual, 2, visualStroke)

		if p.Outline {
			fillRect(screen, p.Hit, debugHitFill)
			strokeRect(screen, p.Hit, 2, debugHitStroke)

			op := &text.DrawOptions{}
			op.GeoM.Translate(p.Hit.X+4, p.Hit.Y+4)
			op.ColorScale.ScaleWithColor(debugHitStroke)
			text.Draw(screen, id, l.face, op)
		}
	}
}

func fillRect(dst *ebiten.Image, r geom.Rect, clr color.Color) {
	if r.Empty() {
		return
	}
	vector.DrawFilledRect(dst, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), clr, true)
}

func strokeRect(dst *ebiten.Image, r geom.Rect, width float32, clr color.Color) {
	if r.Empty() {
		return
	}
	vector.StrokeRect(dst, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), width, clr, true)
}
