package render

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

// 占位帧尺寸
const (
	PlaceholderFrameWidth  = 96
	PlaceholderFrameHeight = 128
)

// SheetCache 精灵图缓存
//
// 图片解码不在本项目范围内：每个精灵图标识生成一张占位帧条，
// 每帧绘制带颜色的边框和帧号，方便观察帧推进。
type SheetCache struct {
	face   *text.GoXFace
	sheets map[string]*ebiten.Image
}

// NewSheetCache 创建缓存
func NewSheetCache() *SheetCache {
	return &SheetCache{
		face:   text.NewGoXFace(basicfont.Face7x13),
		sheets: make(map[string]*ebiten.Image),
	}
}

// Get 返回精灵图，不存在时生成占位图
func (c *SheetCache) Get(key string, frameCount int) *ebiten.Image {
	cacheKey := fmt.Sprintf("%s#%d", key, frameCount)
	if img, ok := c.sheets[cacheKey]; ok {
		return img
	}
	img := c.placeholder(key, frameCount)
	c.sheets[cacheKey] = img
	return img
}

// Len 已缓存的精灵图数量
func (c *SheetCache) Len() int {
	return len(c.sheets)
}

func (c *SheetCache) placeholder(key string, frameCount int) *ebiten.Image {
	img := ebiten.NewImage(PlaceholderFrameWidth*frameCount, PlaceholderFrameHeight)
	clr := sheetColor(key)

	for i := 0; i < frameCount; i++ {
		x := float32(i * PlaceholderFrameWidth)
		vector.DrawFilledRect(img, x+4, 4, PlaceholderFrameWidth-8, PlaceholderFrameHeight-8, clr, true)
		vector.StrokeRect(img, x+4, 4, PlaceholderFrameWidth-8, PlaceholderFrameHeight-8, 2, color.White, true)

		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(x)+10, 10)
		op.ColorScale.ScaleWithColor(color.Black)
		text.Draw(img, key, c.face, op)

		op = &text.DrawOptions{}
		op.GeoM.Translate(float64(x)+10, PlaceholderFrameHeight-26)
		op.ColorScale.ScaleWithColor(color.Black)
		text.Draw(img, fmt.Sprintf("frame %d/%d", i+1, frameCount), c.face, op)
	}
	return img
}
