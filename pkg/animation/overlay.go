package animation

import (
	"log"

	"github.com/decker502/hitsync/pkg/clock"
)

// OverlaySequencer 叠加动画序列器
//
// 与主状态机相互独立：有自己的定时器和帧计数器。
// 任一时刻最多一个叠加动画在播放，新的请求会先取消旧的。
type OverlaySequencer struct {
	catalog   *Catalog
	scheduler clock.Scheduler
	surface   Surface
	logger    Logger

	timer         clock.Timer
	pendingImpact clock.Timer // 已排队、尚未触发的 impact 回调
	current       string
	frame         int
}

// NewOverlaySequencer 创建叠加动画序列器
// surface 为 nil 时仍然推进帧并触发 impact 回调，只是没有视觉效果
func NewOverlaySequencer(catalog *Catalog, scheduler clock.Scheduler, surface Surface, logger Logger) *OverlaySequencer {
	if logger == nil {
		logger = log.Default()
	}
	if surface == nil {
		logger.Printf("[OverlaySequencer] Warning: overlay surface missing, overlays will not be rendered")
	}
	return &OverlaySequencer{
		catalog:   catalog,
		scheduler: scheduler,
		surface:   surface,
		logger:    logger,
	}
}

// PlayOverlay 播放叠加动画
//
// nameOrAlias 可以是目录中的动画名，也可以是短标识符（如 "mexico"），
// 解析规则见 OverlayNaming.Resolve。
// 解析后的动画不在目录中时立即调用 onImpact 并跳过播放，保证调用方的游戏逻辑继续推进。
// 否则在到达 impact 帧时（延迟一个 tick）调用 onImpact 一次，到达最后一帧时停止并隐藏。
func (o *OverlaySequencer) PlayOverlay(nameOrAlias string, onImpact func()) {
	naming := o.catalog.Naming()
	name := naming.Resolve(o.catalog, nameOrAlias)

	def, ok := o.catalog.Lookup(name)
	if !ok {
		o.logger.Printf("[OverlaySequencer] Error: overlay animation '%s' (requested as '%s') not found", name, nameOrAlias)
		if onImpact != nil {
			onImpact()
		}
		return
	}

	o.Stop()

	impact := def.ImpactFrame
	if impact <= 0 {
		impact = naming.ImpactFrame
	}
	if impact > def.FrameCount-1 {
		o.logger.Printf("[OverlaySequencer] Warning: impact frame %d beyond %s (%d frames), using last frame",
			impact, name, def.FrameCount)
		impact = def.FrameCount - 1
	}

	duration := def.FrameDuration
	if duration <= 0 {
		duration = naming.FrameDuration
	}

	o.logger.Printf("[OverlaySequencer] Playing overlay %s (impact at frame %d)", name, impact)

	o.current = name
	o.frame = 0
	if o.surface != nil {
		o.surface.SetSheet(def.SpriteSheet, def.FrameCount)
		o.surface.SetFrameOffset(0)
		o.surface.SetVisible(true)
	}

	fired := false
	o.timer = o.scheduler.Every(duration, func() {
		o.frame = def.ClampFrame(o.frame + 1)
		if o.surface != nil {
			o.surface.SetFrameOffset(def.FrameOffsetPercent(o.frame))
		}

		if !fired && o.frame >= impact {
			fired = true
			if onImpact != nil {
				o.pendingImpact = o.scheduler.AfterFunc(o.catalog.Timing().DeferredTick, func() {
					o.pendingImpact = nil
					onImpact()
				})
			}
		}

		if o.frame >= def.FrameCount-1 {
			o.finish()
		}
	})
}

// Stop 取消正在播放的叠加动画并隐藏（幂等）
// 尚未触发的 impact 回调（包括已到达 impact 帧、仍在延迟中的）不会再被调用
func (o *OverlaySequencer) Stop() {
	if o.pendingImpact != nil {
		o.pendingImpact.Stop()
		o.pendingImpact = nil
	}
	if o.timer == nil {
		return
	}
	o.logger.Printf("[OverlaySequencer] Cancelling overlay %s at frame %d", o.current, o.frame)
	o.finish()
}

// Playing 是否有叠加动画正在播放
func (o *OverlaySequencer) Playing() bool {
	return o.timer != nil
}

// Current 返回正在播放的叠加动画名和帧序号
func (o *OverlaySequencer) Current() (string, int) {
	return o.current, o.frame
}

func (o *OverlaySequencer) finish() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	if o.surface != nil {
		o.surface.SetVisible(false)
	}
	o.current = ""
}
