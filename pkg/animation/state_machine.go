package animation

import (
	"fmt"
	"log"
	"time"

	"github.com/decker502/hitsync/pkg/clock"
)

// State 状态机的播放状态
type State int

const (
	// StateIdle 没有活动定时器（未开始、已停止或循环已完成）
	StateIdle State = iota
	// StatePlaying 有活动定时器（包括等待首帧渲染的延迟启动）
	StatePlaying
	// StatePaused 已暂停，帧和循环计数被保留
	StatePaused
)

// String 返回状态的字符串表示（用于日志）
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// Snapshot 当前动画快照
type Snapshot struct {
	Name  string
	Frame int
	Loop  int
	State State
}

// StateMachine 主动画状态机
//
// 独占播放状态：当前动画、帧序号、循环计数、唯一的活动定时器和完成回调。
// 不变量：
//   - 0 <= frame < FrameCount
//   - 循环计数只在最后一帧回绕到第 0 帧时递增
//   - 任一时刻最多一个活动定时器（延迟启动、帧推进或延迟的完成回调）
type StateMachine struct {
	catalog   *Catalog
	scheduler clock.Scheduler
	surface   Surface
	tracker   TargetTracker
	device    DeviceInfo
	logger    Logger

	current *Definition
	frame   int
	loops   int
	paused  bool
	timer   clock.Timer
	onEnd   func()
	ending  clock.Timer // 已排队、尚未触发的完成回调
	speed   float64
}

// StateMachineOptions 状态机的可选依赖
// Surface/Tracker/Device 为 nil 时对应功能退化为无视觉效果
type StateMachineOptions struct {
	Surface Surface
	Tracker TargetTracker
	Device  DeviceInfo
	Logger  Logger
}

// NewStateMachine 创建状态机
// 初始状态为 Idle，没有当前动画，速度倍率为 1.0
func NewStateMachine(catalog *Catalog, scheduler clock.Scheduler, opts StateMachineOptions) *StateMachine {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.Surface == nil {
		logger.Printf("[AnimationStateMachine] Warning: sprite surface missing, frames will not be rendered")
	}
	return &StateMachine{
		catalog:   catalog,
		scheduler: scheduler,
		surface:   opts.Surface,
		tracker:   opts.Tracker,
		device:    opts.Device,
		logger:    logger,
		speed:     1.0,
	}
}

// ChangeState 切换到指定动画
//
// 动画不存在时记录错误并返回 ErrUnknownAnimation，当前状态保持不变。
// 否则：取消活动定时器，帧和循环计数归零，保存 onEnd，立即渲染第 0 帧，
// 然后延迟一个 tick 再开始播放（保证首帧先被渲染）。
func (m *StateMachine) ChangeState(name string, onEnd func()) error {
	def, ok := m.catalog.Lookup(name)
	if !ok {
		m.logger.Printf("[AnimationStateMachine] Error: animation state '%s' does not exist", name)
		return fmt.Errorf("change state to %q: %w", name, ErrUnknownAnimation)
	}

	if m.current != nil {
		m.logger.Printf("[AnimationStateMachine] Changing from %s (frame %d, loop %d) to %s",
			m.current.Name, m.frame, m.loops, name)
	}

	m.cancelTimer()
	m.cancelEnding()

	m.current = def
	m.frame = 0
	m.loops = 0
	m.onEnd = onEnd

	if m.surface != nil {
		m.surface.SetSheet(def.SpriteSheet, def.FrameCount)
	}
	if m.tracker != nil && !def.HasTarget() {
		m.tracker.HideTarget()
	}
	m.renderFrame(0)

	m.timer = m.scheduler.AfterFunc(m.catalog.Timing().DeferredTick, func() {
		m.timer = nil
		m.Play()
	})
	return nil
}

// Play 从当前帧开始播放
// 先取消已有定时器；暂停中或没有当前动画时不做任何事
func (m *StateMachine) Play() {
	m.cancelTimer()

	if m.current == nil {
		m.logger.Printf("[AnimationStateMachine] Error: no animation selected, cannot play")
		return
	}
	if m.paused {
		return
	}

	d := m.FrameDuration()
	def := m.current
	m.timer = m.scheduler.Every(d, func() { m.tick(def) })
}

// tick 推进一帧
func (m *StateMachine) tick(def *Definition) {
	m.frame++
	if m.frame >= def.FrameCount {
		m.frame = 0
		m.loops++

		if !def.IsInfinite() && m.loops >= def.LoopCount {
			m.logger.Printf("[AnimationStateMachine] Animation %s completed after %d loops", def.Name, m.loops)
			m.cancelTimer()

			// 完成回调只触发一次，延迟一个 tick 保证最后一帧可见
			if cb := m.onEnd; cb != nil {
				m.onEnd = nil
				m.ending = m.scheduler.AfterFunc(m.catalog.Timing().DeferredTick, func() {
					m.ending = nil
					cb()
				})
			}
			return
		}
	}
	m.renderFrame(m.frame)
}

// FrameDuration 计算当前动画的帧时长
//
// 有固定帧时长时直接使用；否则为 max(最小帧时长, 基础帧时长 / 速度倍率)。
// 移动端额外应用移动端最小帧时长。
func (m *StateMachine) FrameDuration() time.Duration {
	timing := m.catalog.Timing()

	var d time.Duration
	if m.current != nil && m.current.FrameDuration > 0 {
		d = m.current.FrameDuration
	} else {
		d = time.Duration(float64(timing.BaseFrameDuration) / m.speed)
		if d < timing.MinFrameDuration {
			d = timing.MinFrameDuration
		}
	}

	if m.device != nil && m.device.IsMobile() && d < timing.MobileMinFrameDuration {
		d = timing.MobileMinFrameDuration
	}
	return d
}

// Pause 暂停播放，保留帧和循环计数
// 重复调用无效果
func (m *StateMachine) Pause() {
	if m.paused {
		return
	}
	m.paused = true
	m.cancelTimer()
	m.logger.Printf("[AnimationStateMachine] Animation paused")
}

// Resume 从保留的帧和循环计数继续播放
// 未暂停时调用无效果
func (m *StateMachine) Resume() {
	if !m.paused {
		return
	}
	m.paused = false
	m.Play()
	m.logger.Printf("[AnimationStateMachine] Animation resumed")
}

// Stop 取消活动定时器和尚未触发的完成回调（幂等）
func (m *StateMachine) Stop() {
	if (m.timer != nil || m.ending != nil) && m.current != nil {
		m.logger.Printf("[AnimationStateMachine] Stopping %s at frame %d, loop %d", m.current.Name, m.frame, m.loops)
	}
	m.cancelTimer()
	m.cancelEnding()
}

// SetFrame 跳转到指定帧
// 帧序号被限制在 [0, FrameCount-1]，不影响循环计数和定时器
func (m *StateMachine) SetFrame(i int) {
	if m.current == nil {
		return
	}
	m.frame = m.current.ClampFrame(i)
	m.renderFrame(m.frame)
}

// SetGameSpeed 设置速度倍率
// 只影响之后 Play() 计算的帧时长，不会改变已调度的定时器间隔
func (m *StateMachine) SetGameSpeed(multiplier float64) {
	if multiplier <= 0 {
		m.logger.Printf("[AnimationStateMachine] Warning: ignoring non-positive game speed %.2f", multiplier)
		return
	}
	m.speed = multiplier
	m.logger.Printf("[AnimationStateMachine] Game speed set to %.2fx", multiplier)
}

// GameSpeed 返回当前速度倍率
func (m *StateMachine) GameSpeed() float64 {
	return m.speed
}

// CurrentAnimation 返回当前动画快照
func (m *StateMachine) CurrentAnimation() Snapshot {
	s := Snapshot{Frame: m.frame, Loop: m.loops, State: m.State()}
	if m.current != nil {
		s.Name = m.current.Name
	}
	return s
}

// Current 返回当前动画定义，没有时返回 nil
func (m *StateMachine) Current() *Definition {
	return m.current
}

// State 返回当前播放状态
func (m *StateMachine) State() State {
	switch {
	case m.paused:
		return StatePaused
	case m.timer != nil:
		return StatePlaying
	default:
		return StateIdle
	}
}

// RefreshTarget 按当前帧重新计算命中区域（如调试模式切换后）
func (m *StateMachine) RefreshTarget() {
	if m.current != nil && m.current.HasTarget() && m.tracker != nil {
		m.tracker.TrackFrame(m.current.Name, m.frame, m.current.Target)
	}
}

func (m *StateMachine) renderFrame(frame int) {
	def := m.current
	if m.surface != nil {
		m.surface.SetFrameOffset(def.FrameOffsetPercent(frame))
	}
	if def.HasTarget() && m.tracker != nil {
		m.tracker.TrackFrame(def.Name, frame, def.Target)
	}
}

func (m *StateMachine) cancelTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *StateMachine) cancelEnding() {
	if m.ending != nil {
		m.ending.Stop()
		m.ending = nil
	}
}
