// Package animation 实现逐帧精灵动画的播放：动画目录、主动画状态机和叠加动画序列器。
//
// # 组件
//
//   - Catalog：只读的动画定义注册表，构造后不可变，可被多个组件共享
//   - StateMachine：独占播放状态（当前动画、帧、循环次数、唯一的活动定时器）
//   - OverlaySequencer：独立定时器播放短叠加动画，在 impact 帧触发回调
//
// 所有组件都在单线程上运行，通过注入的 clock.Scheduler 调度，不需要加锁。
package animation

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/decker502/hitsync/pkg/config"
	"github.com/decker502/hitsync/pkg/geom"
)

// ErrUnknownAnimation 请求的动画名不在目录中（配置错误 / 非法状态切换）
var ErrUnknownAnimation = errors.New("animation not found in catalog")

// ErrInvalidDefinition 动画定义不合法
var ErrInvalidDefinition = errors.New("invalid animation definition")

// Definition 动画定义，构造目录后不可变
type Definition struct {
	Name        string
	SpriteSheet string // 精灵图标识，图片数据对本包不透明
	FrameCount  int    // >= 1
	LoopCount   int    // 0 表示无限循环

	// FrameDuration 固定帧时长；0 表示由全局基础时长和速度倍率推导
	FrameDuration time.Duration

	// Target 命中区域；nil 表示该动画没有命中区域
	Target *TargetRegion

	// Overlay 关联的叠加动画名（如抓取动画对应的拍击动画）
	Overlay string
	// ImpactFrame 作为叠加动画播放时的 impact 帧，0 表示使用默认值
	ImpactFrame int
}

// TargetRegion 命中区域的逐帧标定坐标
type TargetRegion struct {
	Frames       []geom.Calibrated // 桌面端标定坐标
	MobileFrames []geom.Calibrated // 可选：移动端专用坐标
}

// FramesFor 按设备选择坐标列表
// 移动端且存在专用坐标时返回移动端列表，否则返回默认列表
func (r *TargetRegion) FramesFor(mobile bool) []geom.Calibrated {
	if mobile && len(r.MobileFrames) > 0 {
		return r.MobileFrames
	}
	return r.Frames
}

// HasTarget 是否有命中区域
func (d *Definition) HasTarget() bool {
	return d.Target != nil
}

// IsInfinite 是否无限循环
func (d *Definition) IsInfinite() bool {
	return d.LoopCount <= 0
}

// ClampFrame 将帧序号限制在 [0, FrameCount-1]
func (d *Definition) ClampFrame(i int) int {
	if i < 0 {
		return 0
	}
	if i > d.FrameCount-1 {
		return d.FrameCount - 1
	}
	return i
}

// FrameOffsetPercent 计算帧对应的背景水平偏移百分比
// 2 帧时为 0% 和 100%；单帧动画分母按 1 处理
func (d *Definition) FrameOffsetPercent(frame int) float64 {
	denom := d.FrameCount - 1
	if denom < 1 {
		denom = 1
	}
	return float64(frame) / float64(denom) * 100
}

// Timing 全局播放参数
type Timing struct {
	BaseFrameDuration      time.Duration
	MinFrameDuration       time.Duration
	MobileMinFrameDuration time.Duration
	DeferredTick           time.Duration
}

// DefaultTiming 返回默认播放参数
func DefaultTiming() Timing {
	return Timing{
		BaseFrameDuration:      config.DefaultBaseFrameDurationMs * time.Millisecond,
		MinFrameDuration:       config.DefaultMinFrameDurationMs * time.Millisecond,
		MobileMinFrameDuration: config.DefaultMobileMinFrameDurationMs * time.Millisecond,
		DeferredTick:           config.DefaultDeferredTickMs * time.Millisecond,
	}
}

// Catalog 只读动画目录
type Catalog struct {
	defs   map[string]*Definition
	timing Timing
	naming OverlayNaming
}

// NewCatalog 用给定定义构建目录
// 名称重复、帧数小于 1 时返回 ErrInvalidDefinition
func NewCatalog(timing Timing, naming OverlayNaming, defs ...Definition) (*Catalog, error) {
	c := &Catalog{
		defs:   make(map[string]*Definition, len(defs)),
		timing: timing,
		naming: naming,
	}
	for i := range defs {
		d := defs[i]
		if d.Name == "" {
			return nil, fmt.Errorf("%w: definition #%d has no name", ErrInvalidDefinition, i)
		}
		if d.FrameCount < 1 {
			return nil, fmt.Errorf("%w: %q frame count %d", ErrInvalidDefinition, d.Name, d.FrameCount)
		}
		if _, dup := c.defs[d.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidDefinition, d.Name)
		}
		c.defs[d.Name] = &d
	}
	return c, nil
}

// NewCatalogFromConfig 从 YAML 配置构建目录
func NewCatalogFromConfig(cfg *config.AnimationConfig) (*Catalog, error) {
	timing := Timing{
		BaseFrameDuration:      time.Duration(cfg.Global.BaseFrameDurationMs) * time.Millisecond,
		MinFrameDuration:       time.Duration(cfg.Global.MinFrameDurationMs) * time.Millisecond,
		MobileMinFrameDuration: time.Duration(cfg.Global.MobileMinFrameDurationMs) * time.Millisecond,
		DeferredTick:           time.Duration(cfg.Global.DeferredTickMs) * time.Millisecond,
	}
	naming := OverlayNaming{
		Prefix:        cfg.Overlay.Prefix,
		Default:       cfg.Overlay.Default,
		ImpactFrame:   cfg.Overlay.ImpactFrame,
		FrameDuration: time.Duration(cfg.Overlay.FrameDurationMs) * time.Millisecond,
		Aliases:       cfg.Overlay.Aliases,
	}

	defs := make([]Definition, 0, len(cfg.Animations))
	for _, entry := range cfg.Animations {
		def := Definition{
			Name:          entry.Name,
			SpriteSheet:   entry.SpriteSheet,
			FrameCount:    entry.FrameCount,
			LoopCount:     entry.LoopCount,
			FrameDuration: time.Duration(entry.FrameDurationMs) * time.Millisecond,
			Overlay:       entry.Overlay,
			ImpactFrame:   entry.ImpactFrame,
		}
		if region := entry.TargetRegion; region != nil {
			def.Target = &TargetRegion{
				Frames:       calibrate(region.Frames, region.CalibrationScale),
				MobileFrames: calibrate(region.MobileFrames, region.CalibrationScale),
			}
		}
		defs = append(defs, def)
	}
	return NewCatalog(timing, naming, defs...)
}

func calibrate(rects []geom.Rect, scale float64) []geom.Calibrated {
	if len(rects) == 0 {
		return nil
	}
	out := make([]geom.Calibrated, len(rects))
	for i, r := range rects {
		out[i] = geom.Calibrated{Rect: r, Scale: scale}
	}
	return out
}

// Lookup 按名称查找定义
func (c *Catalog) Lookup(name string) (*Definition, bool) {
	d, ok := c.defs[name]
	return d, ok
}

// Has 目录中是否存在该动画
func (c *Catalog) Has(name string) bool {
	_, ok := c.defs[name]
	return ok
}

// Names 返回按字母排序的全部动画名
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.defs))
	for name := range c.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithTarget 返回所有带命中区域的动画名（按字母排序）
func (c *Catalog) WithTarget() []string {
	var names []string
	for _, name := range c.Names() {
		if c.defs[name].HasTarget() {
			names = append(names, name)
		}
	}
	return names
}

// Timing 返回全局播放参数
func (c *Catalog) Timing() Timing {
	return c.timing
}

// Naming 返回叠加动画命名约定
func (c *Catalog) Naming() OverlayNaming {
	return c.naming
}
