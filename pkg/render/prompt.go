package render

import (
	"image/color"

	"github.com/decker502/hitsync/pkg/geom"
	"github.com/decker502/hitsync/pkg/hitbox"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

// PromptText 新手提示文字
const PromptText = "CLICK HERE!"

// PromptLayer 新手提示，实现 hitbox.Prompt
// 显示在命中区域正上方
type PromptLayer struct {
	face    *text.GoXFace
	visible bool
	anchor  string
	near    geom.Rect
}

var _ hitbox.Prompt = (*PromptLayer)(nil)

// NewPromptLayer 创建提示图层
func NewPromptLayer() *PromptLayer {
	return &PromptLayer{face: text.NewGoXFace(basicfont.Face7x13)}
}

// ShowPrompt 实现 hitbox.Prompt
func (p *PromptLayer) ShowPrompt(id string, near geom.Rect) {
	p.visible = true
	p.anchor = id
	p.near = near
}

// HidePrompt 实现 hitbox.Prompt
func (p *PromptLayer) HidePrompt() {
	p.visible = false
}

// Visible 提示是否可见
func (p *PromptLayer) Visible() bool {
	return p.visible
}

// Position 提示文字左上角（水平居中于区域上方）
func (p *PromptLayer) Position() (float64, float64) {
	w, h := text.Measure(PromptText, p.face, 0)
	cx, _ := p.near.Center()
	return cx - w/2, p.near.Y - h - 6
}

// Draw 绘制提示
func (p *PromptLayer) Draw(screen *ebiten.Image) {
	if !p.visible {
		return
	}
	x, y := p.Position()

	shadow := &text.DrawOptions{}
	shadow.GeoM.Translate(x+1, y+1)
	shadow.ColorScale.ScaleWithColor(color.RGBA{0, 0, 0, 180})
	text.Draw(screen, PromptText, p.face, shadow)

	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(color.RGBA{255, 240, 120, 255})
	text.Draw(screen, PromptText, p.face, op)
}
