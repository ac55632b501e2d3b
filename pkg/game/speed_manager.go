package game

import (
	"log"
	"time"

	"github.com/decker502/hitsync/pkg/clock"
)

// DefaultSpeedInterval 速度等级提升间隔
const DefaultSpeedInterval = 16 * time.Second

// SpeedLevel 速度等级
type SpeedLevel struct {
	Multiplier float64
	Name       string
}

// DefaultSpeedLevels 默认速度等级
var DefaultSpeedLevels = []SpeedLevel{
	{Multiplier: 1.0, Name: "Normal"},
	{Multiplier: 1.5, Name: "Faster"},
	{Multiplier: 2.0, Name: "Trade War"},
	{Multiplier: 2.5, Name: "All Mine"},
	{Multiplier: 3.0, Name: "Gimme Gimme"},
}

// SpeedSetter 接收速度变化（AnimationManager 实现）
type SpeedSetter interface {
	SetGameSpeed(multiplier float64)
}

// SpeedManager 游戏速度递进
// 游戏进行中且未暂停时，每隔固定间隔提升一个速度等级，直到最高等级
type SpeedManager struct {
	state     *GameState
	target    SpeedSetter
	scheduler clock.Scheduler
	levels    []SpeedLevel
	interval  time.Duration

	index    int
	timer    clock.Timer
	onChange func(SpeedLevel)
}

// NewSpeedManager 创建速度管理器
// levels 为空时使用 DefaultSpeedLevels，interval 不大于 0 时使用 DefaultSpeedInterval
func NewSpeedManager(state *GameState, target SpeedSetter, scheduler clock.Scheduler, levels []SpeedLevel, interval time.Duration) *SpeedManager {
	if len(levels) == 0 {
		levels = DefaultSpeedLevels
	}
	if interval <= 0 {
		interval = DefaultSpeedInterval
	}
	return &SpeedManager{
		state:     state,
		target:    target,
		scheduler: scheduler,
		levels:    levels,
		interval:  interval,
	}
}

// OnChange 注册速度等级变化回调（用于显示提示文字）
func (sm *SpeedManager) OnChange(fn func(SpeedLevel)) {
	sm.onChange = fn
}

// Start 从第一个等级开始递进
func (sm *SpeedManager) Start() {
	sm.Stop()
	sm.index = 0
	sm.apply()
	sm.timer = sm.scheduler.Every(sm.interval, func() {
		if sm.state != nil && (!sm.state.IsPlaying() || sm.state.IsPaused()) {
			return
		}
		sm.Increase()
	})
}

// Stop 停止递进，保持当前速度
func (sm *SpeedManager) Stop() {
	if sm.timer != nil {
		sm.timer.Stop()
		sm.timer = nil
	}
}

// Increase 提升一个等级，已是最高等级时返回 false
func (sm *SpeedManager) Increase() bool {
	if sm.index >= len(sm.levels)-1 {
		return false
	}
	sm.index++
	sm.apply()
	level := sm.levels[sm.index]
	log.Printf("[SpeedManager] Game speed increased to %.2fx (%s)", level.Multiplier, level.Name)
	if sm.onChange != nil {
		sm.onChange(level)
	}
	return true
}

// Current 返回当前等级
func (sm *SpeedManager) Current() SpeedLevel {
	return sm.levels[sm.index]
}

// Reset 停止递进并恢复第一个等级
func (sm *SpeedManager) Reset() {
	sm.Stop()
	sm.index = 0
	sm.apply()
}

func (sm *SpeedManager) apply() {
	m := sm.levels[sm.index].Multiplier
	if sm.state != nil {
		sm.state.SetSpeedMultiplier(m)
	}
	if sm.target != nil {
		sm.target.SetGameSpeed(m)
	}
}
