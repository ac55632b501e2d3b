package hitbox

import (
	"fmt"
	"log"
	"time"

	"github.com/decker502/hitsync/pkg/animation"
	"github.com/decker502/hitsync/pkg/clock"
	"github.com/decker502/hitsync/pkg/config"
	"github.com/decker502/hitsync/pkg/geom"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// growTick 放大动画的推进间隔
const growTick = 16 * time.Millisecond

// SpawnRegions 生成点命中区域
//
// 每个实体一个区域，位置来自 SpawnSelector 的当前选择。
// 区域可以被放大（逐步扩大可点击范围），放大倍率在 Reset 时恢复为 1。
type SpawnRegions struct {
	selector  *SpawnSelector
	scaler    *Scaler
	view      View
	scheduler clock.Scheduler
	logger    animation.Logger
	visual    float64
	growFor   time.Duration

	debug   bool
	regions map[string]*region
}

type region struct {
	visible bool
	scale   float64
	last    geom.Rect
	tween   *gween.Tween
	timer   clock.Timer
}

// SpawnRegionsOptions SpawnRegions 的可选参数
type SpawnRegionsOptions struct {
	Logger            animation.Logger
	VisualScaleFactor float64
	GrowDuration      time.Duration
}

// NewSpawnRegions 创建生成点区域管理器，所有区域初始隐藏
func NewSpawnRegions(selector *SpawnSelector, scaler *Scaler, view View, scheduler clock.Scheduler, opts SpawnRegionsOptions) *SpawnRegions {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	visual := opts.VisualScaleFactor
	if visual <= 0 {
		visual = config.DefaultVisualScaleFactor
	}
	growFor := opts.GrowDuration
	if growFor <= 0 {
		growFor = config.DefaultGrowDurationMs * time.Millisecond
	}
	r := &SpawnRegions{
		selector:  selector,
		scaler:    scaler,
		view:      view,
		scheduler: scheduler,
		logger:    logger,
		visual:    visual,
		growFor:   growFor,
		regions:   make(map[string]*region),
	}
	for _, id := range selector.IDs() {
		r.regions[id] = &region{scale: 1.0}
	}
	return r
}

// Show 显示实体的命中区域
func (r *SpawnRegions) Show(id string) error {
	reg, ok := r.regions[id]
	if !ok {
		r.logger.Printf("[SpawnRegions] Error: invalid entity id: %s", id)
		return fmt.Errorf("show %q: %w", id, ErrUnknownEntity)
	}
	reg.visible = true
	r.position(id, reg)
	r.logger.Printf("[SpawnRegions] Showing region for %s", id)
	return nil
}

// Hide 隐藏实体的命中区域（未知实体忽略）
func (r *SpawnRegions) Hide(id string) {
	reg, ok := r.regions[id]
	if !ok || !reg.visible {
		return
	}
	reg.visible = false
	if r.view != nil {
		r.view.Hide(id)
	}
}

// IsVisible 实体区域是否可见
func (r *SpawnRegions) IsVisible(id string) bool {
	reg, ok := r.regions[id]
	return ok && reg.visible
}

// Rect 返回实体区域最近一次计算的屏幕矩形
func (r *SpawnRegions) Rect(id string) (geom.Rect, bool) {
	reg, ok := r.regions[id]
	if !ok || !reg.visible {
		return geom.Rect{}, false
	}
	return reg.last, true
}

// Scale 返回实体区域当前的放大倍率
func (r *SpawnRegions) Scale(id string) float64 {
	if reg, ok := r.regions[id]; ok {
		return reg.scale
	}
	return 0
}

// RepositionAllVisible 重新计算所有可见区域（窗口缩放时调用）
// 同步执行，最后一次调用的结果总是最终结果
func (r *SpawnRegions) RepositionAllVisible() {
	for _, id := range r.selector.IDs() {
		if reg := r.regions[id]; reg.visible {
			r.position(id, reg)
		}
	}
}

// Reselect 为实体重新选择生成点，可见时立即移动到新位置
func (r *SpawnRegions) Reselect(id string) error {
	if _, err := r.selector.Reselect(id); err != nil {
		r.logger.Printf("[SpawnRegions] Error: %v", err)
		return err
	}
	if reg := r.regions[id]; reg.visible {
		r.position(id, reg)
	}
	return nil
}

// Grow 以中心为锚点把区域逐步放大 factor 倍
// 正在进行的放大动画会被新的目标取代
func (r *SpawnRegions) Grow(id string, factor float64) error {
	reg, ok := r.regions[id]
	if !ok {
		return fmt.Errorf("grow %q: %w", id, ErrUnknownEntity)
	}
	if factor <= 0 {
		return fmt.Errorf("grow %q: invalid factor %v", id, factor)
	}
	r.stopGrow(reg)

	target := reg.scale * factor
	r.logger.Printf("[SpawnRegions] Growing %s from %.2f to %.2f", id, reg.scale, target)

	reg.tween = gween.New(float32(reg.scale), float32(target), float32(r.growFor.Seconds()), ease.OutQuad)
	reg.timer = r.scheduler.Every(growTick, func() {
		current, finished := reg.tween.Update(float32(growTick.Seconds()))
		reg.scale = float64(current)
		if finished {
			reg.scale = target
			r.stopGrow(reg)
		}
		if reg.visible {
			r.position(id, reg)
		}
	})
	return nil
}

// Reset 停止放大动画、恢复倍率、隐藏全部区域并重新选择生成点
func (r *SpawnRegions) Reset() {
	for _, id := range r.selector.IDs() {
		reg := r.regions[id]
		r.stopGrow(reg)
		reg.scale = 1.0
		r.Hide(id)
	}
	r.selector.ResetAll()
	r.logger.Printf("[SpawnRegions] Reset all spawn regions")
}

// SetDebugMode 切换调试轮廓
func (r *SpawnRegions) SetDebugMode(enabled bool) {
	r.debug = enabled
	r.RepositionAllVisible()
	r.logger.Printf("[SpawnRegions] Debug mode %s", enabledString(enabled))
}

func (r *SpawnRegions) position(id string, reg *region) {
	coords, ok := r.selector.Current(id)
	if !ok {
		r.logger.Printf("[SpawnRegions] Error: no coordinates defined for %s", id)
		return
	}
	hit, err := r.scaler.ScaleGrown(coords, reg.scale)
	if err != nil {
		r.logger.Printf("[SpawnRegions] Error: cannot position %s: %v", id, err)
		return
	}
	reg.last = hit
	if r.view != nil {
		r.view.Place(id, Placement{Hit: hit, Visual: hit.ScaleCentered(r.visual), Outline: r.debug})
	}
}

func (r *SpawnRegions) stopGrow(reg *region) {
	if reg.timer != nil {
		reg.timer.Stop()
		reg.timer = nil
	}
	reg.tween = nil
}
