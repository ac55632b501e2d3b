package game

import (
	"errors"
	"log"
	"time"

	"github.com/decker502/hitsync/pkg/animation"
	"github.com/decker502/hitsync/pkg/clock"
	"github.com/decker502/hitsync/pkg/config"
	"github.com/decker502/hitsync/pkg/device"
	"github.com/decker502/hitsync/pkg/geom"
	"github.com/decker502/hitsync/pkg/hitbox"
)

// ManagerDeps AnimationManager 的依赖
// 所有渲染和输入相关的依赖都通过接口注入，组件内部不查找任何元素
type ManagerDeps struct {
	Catalog   *animation.Catalog
	Hitbox    *config.HitboxConfig
	Scheduler clock.Scheduler
	Device    *device.Provider // 可为 nil：按桌面端处理，不订阅窗口变化

	Surface        animation.Surface // 角色精灵
	OverlaySurface animation.Surface // 叠加动画
	Reference      hitbox.Reference  // 地图背景
	View           hitbox.View       // 命中区域
	Prompt         hitbox.Prompt
	Game           hitbox.GameInfo
	Random         hitbox.Random
	Logger         animation.Logger
}

// AnimationManager 动画与命中区域的统一入口
//
// 组合主状态机、叠加动画序列器、角色命中区域定位器和生成点区域，
// 并把窗口变化转发给所有可见的命中区域。
type AnimationManager struct {
	machine *animation.StateMachine
	overlay *animation.OverlaySequencer
	target  *hitbox.TargetPositioner
	regions *hitbox.SpawnRegions
	logger  animation.Logger
	debug   bool
}

// NewAnimationManager 创建 AnimationManager
func NewAnimationManager(deps ManagerDeps) (*AnimationManager, error) {
	if deps.Catalog == nil {
		return nil, errors.New("animation catalog is required")
	}
	if deps.Scheduler == nil {
		return nil, errors.New("scheduler is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	hb := deps.Hitbox
	if hb == nil {
		hb = &config.HitboxConfig{}
	}

	var dev animation.DeviceInfo
	if deps.Device != nil {
		dev = deps.Device
	}

	scaler := hitbox.NewScaler(deps.Reference, dev, hb.Scaling)
	target := hitbox.NewTargetPositioner(scaler, deps.View, hitbox.PositionerOptions{
		Device:            dev,
		Game:              deps.Game,
		Prompt:            deps.Prompt,
		Logger:            logger,
		VisualScaleFactor: hb.Scaling.VisualScaleFactor,
	})
	selector := hitbox.NewSpawnSelector(hb.SpawnLocations, deps.Random, logger)
	regions := hitbox.NewSpawnRegions(selector, scaler, deps.View, deps.Scheduler, hitbox.SpawnRegionsOptions{
		Logger:            logger,
		VisualScaleFactor: hb.Scaling.VisualScaleFactor,
		GrowDuration:      time.Duration(hb.Scaling.GrowDurationMs) * time.Millisecond,
	})

	m := &AnimationManager{
		machine: animation.NewStateMachine(deps.Catalog, deps.Scheduler, animation.StateMachineOptions{
			Surface: deps.Surface,
			Tracker: target,
			Device:  dev,
			Logger:  logger,
		}),
		overlay: animation.NewOverlaySequencer(deps.Catalog, deps.Scheduler, deps.OverlaySurface, logger),
		target:  target,
		regions: regions,
		logger:  logger,
	}

	if deps.Device != nil {
		deps.Device.OnResize(func(device.Profile) {
			m.RepositionAllVisible()
		})
	}
	return m, nil
}

// ChangeState 切换主动画
func (m *AnimationManager) ChangeState(name string, onEnd func()) error {
	return m.machine.ChangeState(name, onEnd)
}

// Play 从当前帧开始播放
func (m *AnimationManager) Play() { m.machine.Play() }

// Pause 暂停主动画
func (m *AnimationManager) Pause() { m.machine.Pause() }

// Resume 恢复主动画
func (m *AnimationManager) Resume() { m.machine.Resume() }

// Stop 停止主动画
func (m *AnimationManager) Stop() { m.machine.Stop() }

// SetFrame 跳转到指定帧（越界时限制到有效范围）
func (m *AnimationManager) SetFrame(i int) { m.machine.SetFrame(i) }

// SetGameSpeed 实现 SpeedSetter
func (m *AnimationManager) SetGameSpeed(multiplier float64) { m.machine.SetGameSpeed(multiplier) }

// CurrentAnimation 返回当前动画快照
func (m *AnimationManager) CurrentAnimation() animation.Snapshot {
	return m.machine.CurrentAnimation()
}

// CurrentDefinition 返回当前动画定义
func (m *AnimationManager) CurrentDefinition() *animation.Definition {
	return m.machine.Current()
}

// PlayOverlay 播放叠加动画
func (m *AnimationManager) PlayOverlay(nameOrAlias string, onImpact func()) {
	m.overlay.PlayOverlay(nameOrAlias, onImpact)
}

// ShowTargetRegion 显示实体的生成点命中区域
func (m *AnimationManager) ShowTargetRegion(id string) error {
	return m.regions.Show(id)
}

// HideTargetRegion 隐藏实体的生成点命中区域
func (m *AnimationManager) HideTargetRegion(id string) {
	m.regions.Hide(id)
}

// GrowTargetRegion 放大实体的生成点命中区域
func (m *AnimationManager) GrowTargetRegion(id string, factor float64) error {
	return m.regions.Grow(id, factor)
}

// ReselectSpawnLocation 为实体重新选择生成点
func (m *AnimationManager) ReselectSpawnLocation(id string) error {
	return m.regions.Reselect(id)
}

// RepositionAllVisible 重新计算所有可见命中区域
func (m *AnimationManager) RepositionAllVisible() {
	m.target.Reposition()
	m.regions.RepositionAllVisible()
}

// SetDebugMode 切换调试轮廓
func (m *AnimationManager) SetDebugMode(enabled bool) {
	m.debug = enabled
	m.target.SetDebugMode(enabled)
	m.regions.SetDebugMode(enabled)
	if enabled {
		m.logger.Printf("[AnimationManager] Debug mode enabled")
	} else {
		m.logger.Printf("[AnimationManager] Debug mode disabled")
	}
}

// DebugMode 当前是否处于调试模式
func (m *AnimationManager) DebugMode() bool {
	return m.debug
}

// HitboxInfo 返回角色命中区域信息，不可见时 ok 为 false
func (m *AnimationManager) HitboxInfo() (hitbox.Info, bool) {
	return m.target.Info()
}

// TargetRegionRect 返回生成点命中区域的屏幕矩形，不可见时 ok 为 false
func (m *AnimationManager) TargetRegionRect(id string) (geom.Rect, bool) {
	return m.regions.Rect(id)
}

// HandleSuccessfulHit 成功格挡后移除新手提示
func (m *AnimationManager) HandleSuccessfulHit() {
	m.target.HandleSuccessfulHit()
}

// Reset 停止所有动画并重置生成点区域
func (m *AnimationManager) Reset() {
	m.machine.Stop()
	m.overlay.Stop()
	m.target.HideTarget()
	m.regions.Reset()
	m.logger.Printf("[AnimationManager] Reset")
}
