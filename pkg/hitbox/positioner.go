package hitbox

import (
	"errors"
	"log"

	"github.com/decker502/hitsync/pkg/animation"
	"github.com/decker502/hitsync/pkg/config"
	"github.com/decker502/hitsync/pkg/geom"
)

// Info 当前命中区域信息
type Info struct {
	Hit       geom.Rect
	Visual    geom.Rect
	Animation string
	Frame     int
}

// PositionerOptions TargetPositioner 的可选依赖
type PositionerOptions struct {
	Device            animation.DeviceInfo
	Game              GameInfo
	Prompt            Prompt
	Logger            animation.Logger
	VisualScaleFactor float64
}

// TargetPositioner 角色命中区域定位器
//
// 实现 animation.TargetTracker：状态机每次换帧都会调用 TrackFrame，
// 定位器按帧选择标定坐标（移动端优先使用专用坐标），换算后交给 View。
type TargetPositioner struct {
	scaler *Scaler
	view   View
	device animation.DeviceInfo
	game   GameInfo
	prompt Prompt
	logger animation.Logger
	visual float64

	debug   bool
	visible bool
	anim    string
	frame   int
	region  *animation.TargetRegion
	last    Info
}

var _ animation.TargetTracker = (*TargetPositioner)(nil)

// NewTargetPositioner 创建命中区域定位器
func NewTargetPositioner(scaler *Scaler, view View, opts PositionerOptions) *TargetPositioner {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	visual := opts.VisualScaleFactor
	if visual <= 0 {
		visual = config.DefaultVisualScaleFactor
	}
	return &TargetPositioner{
		scaler: scaler,
		view:   view,
		device: opts.Device,
		game:   opts.Game,
		prompt: opts.Prompt,
		logger: logger,
		visual: visual,
	}
}

// TrackFrame 实现 animation.TargetTracker
func (p *TargetPositioner) TrackFrame(name string, frame int, region *animation.TargetRegion) {
	p.anim = name
	p.frame = frame
	p.region = region
	p.update()
}

// HideTarget 实现 animation.TargetTracker
func (p *TargetPositioner) HideTarget() {
	p.region = nil
	p.hide()
}

// Reposition 按当前帧重新计算（窗口缩放时调用）
// 参考表面缺失时被隐藏的区域在缩放后恢复显示
func (p *TargetPositioner) Reposition() {
	if p.region != nil {
		p.update()
	}
}

// SetDebugMode 切换调试轮廓，不影响定位
func (p *TargetPositioner) SetDebugMode(enabled bool) {
	p.debug = enabled
	if p.region != nil {
		p.update()
	}
	p.logger.Printf("[TargetPositioner] Debug mode %s", enabledString(enabled))
}

// Info 返回当前命中区域，不可见时 ok 为 false
func (p *TargetPositioner) Info() (Info, bool) {
	if !p.visible {
		return Info{}, false
	}
	return p.last, true
}

// Visible 命中区域是否可见
func (p *TargetPositioner) Visible() bool {
	return p.visible
}

// HandleSuccessfulHit 第一次成功格挡后移除新手提示
func (p *TargetPositioner) HandleSuccessfulHit() {
	if p.prompt != nil {
		p.prompt.HidePrompt()
	}
}

func (p *TargetPositioner) update() {
	if p.region == nil {
		p.hide()
		return
	}

	mobile := p.device != nil && p.device.IsMobile()
	frames := p.region.FramesFor(mobile)
	if p.frame < 0 || p.frame >= len(frames) {
		p.logger.Printf("[TargetPositioner] Error: no coordinates for frame %d in %s", p.frame, p.anim)
		p.hide()
		return
	}

	hit, err := p.scaler.Scale(frames[p.frame])
	if err != nil {
		if errors.Is(err, ErrRenderTargetMissing) {
			p.logger.Printf("[TargetPositioner] Error: reference surface not found, cannot position %s", p.anim)
		}
		p.hide()
		return
	}

	p.last = Info{
		Hit:       hit,
		Visual:    hit.ScaleCentered(p.visual),
		Animation: p.anim,
		Frame:     p.frame,
	}
	p.visible = true
	if p.view != nil {
		p.view.Place(TargetID, Placement{Hit: p.last.Hit, Visual: p.last.Visual, Outline: p.debug})
	}

	if p.prompt != nil && p.game != nil && p.game.SuccessfulBlocks() == 0 {
		p.prompt.ShowPrompt(TargetID, p.last.Visual)
	}
}

func (p *TargetPositioner) hide() {
	if !p.visible {
		return
	}
	p.visible = false
	if p.view != nil {
		p.view.Hide(TargetID)
	}
	if p.prompt != nil {
		p.prompt.HidePrompt()
	}
}

func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
