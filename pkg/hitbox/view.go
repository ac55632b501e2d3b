package hitbox

import "github.com/decker502/hitsync/pkg/geom"

// TargetID 角色命中区域在 View 中的标识
const TargetID = "target"

// Placement 一个命中区域的最终位置
type Placement struct {
	Hit     geom.Rect // 可点击区域
	Visual  geom.Rect // 可视提示框（命中区域居中缩小）
	Outline bool      // 调试模式下绘制轮廓
}

// View 命中区域的显示和输入载体
// render.RegionLayer 负责绘制，input.Dispatcher 负责点击检测
type View interface {
	Place(id string, p Placement)
	Hide(id string)
}

// GameInfo 只读游戏状态
type GameInfo interface {
	IsPaused() bool
	IsPlaying() bool
	SpeedMultiplier() float64
	SuccessfulBlocks() int
}

// Prompt 新手提示（第一次成功格挡之前显示在命中区域旁边）
type Prompt interface {
	ShowPrompt(id string, near geom.Rect)
	HidePrompt()
}

// Random 可注入的随机数源，*rand.Rand 满足该接口
type Random interface {
	Intn(n int) int
}
