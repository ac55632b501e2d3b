// Package clock 提供单线程、协作式的定时器调度。
//
// 所有定时器都挂在一个 TickScheduler 上，只有在调用 Advance 推进时间时才会触发。
// 生产环境中由 ebiten 的 Update 每个 tick 推进 1/TPS 秒；
// 测试中直接推进虚拟时间，使循环完成、回调延迟等时序测试确定且快速。
//
// # 调度语义
//
//   - 到期时间相同的定时器按创建顺序触发
//   - 回调中可以创建或取消定时器，新定时器在同一次 Advance 中到期也会触发
//   - Stop 是同步且彻底的：一旦取消，定时器不会再触发
package clock

import "time"

// Timer 是已调度定时器的句柄
type Timer interface {
	// Stop 取消定时器，返回定时器在取消前是否仍处于活动状态
	Stop() bool
}

// Scheduler 定时器调度接口
// 组件通过构造函数注入该接口，而不是直接使用 time.AfterFunc
type Scheduler interface {
	// AfterFunc 在 d 之后调用一次 f
	AfterFunc(d time.Duration, f func()) Timer
	// Every 每隔 d 调用一次 f，直到被取消
	Every(d time.Duration, f func()) Timer
}

// TickScheduler 基于手动推进时间的调度器
type TickScheduler struct {
	now    time.Duration
	seq    uint64
	timers []*tickTimer
}

type tickTimer struct {
	owner    *TickScheduler
	due      time.Duration
	interval time.Duration // 0 表示一次性定时器
	seq      uint64
	fn       func()
	active   bool
}

// NewTickScheduler 创建调度器，当前时间为 0
func NewTickScheduler() *TickScheduler {
	return &TickScheduler{}
}

// Now 返回调度器的当前时间（自创建以来的累计推进时长）
func (s *TickScheduler) Now() time.Duration {
	return s.now
}

// AfterFunc 实现 Scheduler 接口
func (s *TickScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return s.add(d, 0, f)
}

// Every 实现 Scheduler 接口
// 间隔小于 1ms 时按 1ms 处理，避免在一次 Advance 中无限触发
func (s *TickScheduler) Every(d time.Duration, f func()) Timer {
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return s.add(d, d, f)
}

func (s *TickScheduler) add(d, interval time.Duration, f func()) *tickTimer {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &tickTimer{
		owner:    s,
		due:      s.now + d,
		interval: interval,
		seq:      s.seq,
		fn:       f,
		active:   true,
	}
	s.timers = append(s.timers, t)
	return t
}

// Advance 推进时间 d，并按到期顺序触发所有到期的定时器
func (s *TickScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		next := s.nextDue(target)
		if next == nil {
			break
		}
		s.now = next.due
		if next.interval > 0 {
			next.due += next.interval
			// 重新排队，保证同一时刻的其他定时器先于它的下一次触发
			s.seq++
			next.seq = s.seq
		} else {
			next.active = false
			s.remove(next)
		}
		if next.fn != nil {
			next.fn()
		}
	}
	s.now = target
}

// Active 返回当前活动定时器数量
func (s *TickScheduler) Active() int {
	return len(s.timers)
}

func (s *TickScheduler) nextDue(target time.Duration) *tickTimer {
	var best *tickTimer
	for _, t := range s.timers {
		if t.due > target {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (s *TickScheduler) remove(t *tickTimer) {
	for i, candidate := range s.timers {
		if candidate == t {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return
		}
	}
}

// Stop 实现 Timer 接口
func (t *tickTimer) Stop() bool {
	if !t.active {
		return false
	}
	t.active = false
	t.owner.remove(t)
	return true
}
