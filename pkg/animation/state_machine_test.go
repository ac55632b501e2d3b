package animation

import (
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/decker502/hitsync/pkg/clock"
	"github.com/decker502/hitsync/pkg/geom"
)

var quietLogger = log.New(io.Discard, "", 0)

type fakeSurface struct {
	sheet   string
	frames  int
	offsets []float64
	visible bool
}

func (s *fakeSurface) SetSheet(sheet string, frameCount int) {
	s.sheet = sheet
	s.frames = frameCount
}

func (s *fakeSurface) SetFrameOffset(percent float64) {
	s.offsets = append(s.offsets, percent)
}

func (s *fakeSurface) SetVisible(visible bool) {
	s.visible = visible
}

type fakeTracker struct {
	frames []int
	hidden int
}

func (t *fakeTracker) TrackFrame(_ string, frame int, _ *TargetRegion) {
	t.frames = append(t.frames, frame)
}

func (t *fakeTracker) HideTarget() {
	t.hidden++
}

type fakeDevice bool

func (d fakeDevice) IsMobile() bool { return bool(d) }

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	naming := OverlayNaming{
		Prefix:        "smack",
		Default:       "smackMexico",
		ImpactFrame:   3,
		FrameDuration: 120 * time.Millisecond,
		Aliases:       map[string]string{"canada": "smackEastCanada"},
	}
	target := &TargetRegion{Frames: []geom.Calibrated{
		{Rect: geom.Rect{X: 10, Y: 10, Width: 20, Height: 20}, Scale: 1},
		{Rect: geom.Rect{X: 12, Y: 12, Width: 20, Height: 20}, Scale: 1},
	}}
	c, err := NewCatalog(DefaultTiming(), naming,
		Definition{Name: "idle", SpriteSheet: "idle", FrameCount: 2},
		Definition{Name: "grabMexico", SpriteSheet: "grab", FrameCount: 2, LoopCount: 3, Target: target, Overlay: "smackMexico"},
		Definition{Name: "victory", SpriteSheet: "victory", FrameCount: 4, LoopCount: 1},
		Definition{Name: "still", SpriteSheet: "still", FrameCount: 1, LoopCount: 1},
		Definition{Name: "fixed", SpriteSheet: "fixed", FrameCount: 3, FrameDuration: 40 * time.Millisecond},
		Definition{Name: "smackMexico", SpriteSheet: "smack", FrameCount: 5, FrameDuration: 120 * time.Millisecond},
		Definition{Name: "smackEastCanada", SpriteSheet: "smack", FrameCount: 5, FrameDuration: 120 * time.Millisecond},
		Definition{Name: "smackTiny", SpriteSheet: "smack", FrameCount: 2, FrameDuration: 120 * time.Millisecond},
	)
	if err != nil {
		t.Fatalf("NewCatalog error: %v", err)
	}
	return c
}

func newTestMachine(t *testing.T) (*StateMachine, *clock.TickScheduler, *fakeSurface, *fakeTracker) {
	t.Helper()
	sched := clock.NewTickScheduler()
	surface := &fakeSurface{}
	tracker := &fakeTracker{}
	m := NewStateMachine(testCatalog(t), sched, StateMachineOptions{
		Surface: surface,
		Tracker: tracker,
		Device:  fakeDevice(false),
		Logger:  quietLogger,
	})
	return m, sched, surface, tracker
}

// TestChangeStateUnknown 测试未知动画被拒绝且当前状态保持不变
func TestChangeStateUnknown(t *testing.T) {
	m, sched, _, _ := newTestMachine(t)
	if err := m.ChangeState("idle", nil); err != nil {
		t.Fatalf("ChangeState(idle): %v", err)
	}
	sched.Advance(400 * time.Millisecond)
	before := m.CurrentAnimation()

	err := m.ChangeState("dance", nil)
	if !errors.Is(err, ErrUnknownAnimation) {
		t.Fatalf("error: got %v, want ErrUnknownAnimation", err)
	}
	if after := m.CurrentAnimation(); after != before {
		t.Errorf("state changed: before %+v, after %+v", before, after)
	}
}

// TestFirstFrameRenderedBeforePlayback 测试首帧立即渲染，播放延迟一个 tick 开始
func TestFirstFrameRenderedBeforePlayback(t *testing.T) {
	m, sched, surface, _ := newTestMachine(t)
	_ = m.ChangeState("victory", nil)

	if surface.sheet != "victory" || surface.frames != 4 {
		t.Errorf("sheet: got %q/%d", surface.sheet, surface.frames)
	}
	if len(surface.offsets) != 1 || surface.offsets[0] != 0 {
		t.Errorf("offsets after ChangeState: got %v, want [0]", surface.offsets)
	}
	if m.State() != StatePlaying {
		t.Errorf("State: got %v, want Playing", m.State())
	}

	sched.Advance(16 * time.Millisecond)
	sched.Advance(300 * time.Millisecond)
	if got := m.CurrentAnimation().Frame; got != 1 {
		t.Errorf("frame after one tick: got %d, want 1", got)
	}
	if last := surface.offsets[len(surface.offsets)-1]; last < 33.3 || last > 33.4 {
		t.Errorf("offset for frame 1 of 4: got %v", last)
	}
}

// TestFrameBounds 测试任意时刻帧序号都在有效范围内
func TestFrameBounds(t *testing.T) {
	names := []string{"idle", "grabMexico", "victory", "still", "fixed"}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			m, sched, _, _ := newTestMachine(t)
			_ = m.ChangeState(name, nil)
			def := m.Current()
			for i := 0; i < 200; i++ {
				sched.Advance(7 * time.Millisecond)
				f := m.CurrentAnimation().Frame
				if f < 0 || f >= def.FrameCount {
					t.Fatalf("frame %d out of range [0,%d)", f, def.FrameCount)
				}
			}
		})
	}
}

// TestOnEndFiresOnceAfterLoops 测试完成回调在 L 个完整循环后只触发一次
func TestOnEndFiresOnceAfterLoops(t *testing.T) {
	m, sched, _, _ := newTestMachine(t)
	calls := 0
	_ = m.ChangeState("grabMexico", func() { calls++ })

	// 16ms 延迟启动 + 3 个循环 * 2 帧 * 300ms
	sched.Advance(16*time.Millisecond + 6*300*time.Millisecond - time.Millisecond)
	if calls != 0 {
		t.Fatalf("onEnd fired before completion")
	}
	if got := m.CurrentAnimation().Loop; got != 2 {
		t.Errorf("loop before completion: got %d, want 2", got)
	}

	sched.Advance(time.Millisecond)
	if calls != 0 {
		t.Fatalf("onEnd must be deferred by one tick")
	}
	if got := m.CurrentAnimation().Loop; got != 3 {
		t.Errorf("loop at completion: got %d, want 3", got)
	}
	if m.State() != StateIdle {
		t.Errorf("State after completion: got %v, want Idle", m.State())
	}

	sched.Advance(16 * time.Millisecond)
	if calls != 1 {
		t.Fatalf("onEnd calls: got %d, want 1", calls)
	}

	sched.Advance(10 * time.Second)
	if calls != 1 {
		t.Errorf("onEnd fired again: calls=%d", calls)
	}
	if sched.Active() != 0 {
		t.Errorf("timers still active: %d", sched.Active())
	}
}

// TestChangeStateCancelsPriorTimer 测试连续切换后最多只有一个活动定时器
func TestChangeStateCancelsPriorTimer(t *testing.T) {
	m, sched, _, _ := newTestMachine(t)
	ended := 0
	for i := 0; i < 10; i++ {
		_ = m.ChangeState("grabMexico", func() { ended++ })
		if sched.Active() > 1 {
			t.Fatalf("after %d calls: %d timers active", i+1, sched.Active())
		}
	}
	sched.Advance(20 * time.Millisecond)
	if sched.Active() != 1 {
		t.Errorf("Active after start: got %d, want 1", sched.Active())
	}

	_ = m.ChangeState("idle", nil)
	_ = m.ChangeState("victory", nil)
	if sched.Active() != 1 {
		t.Errorf("Active after re-change: got %d, want 1", sched.Active())
	}

	sched.Advance(time.Minute)
	if ended != 0 {
		t.Errorf("superseded onEnd fired %d times", ended)
	}
}

// TestCompletionWindowCancelled 测试完成后、回调触发前切换或停止会取消旧的完成回调
func TestCompletionWindowCancelled(t *testing.T) {
	tests := []struct {
		name   string
		cancel func(m *StateMachine)
	}{
		{"切换状态", func(m *StateMachine) { _ = m.ChangeState("idle", nil) }},
		{"停止后切换", func(m *StateMachine) {
			m.Stop()
			_ = m.ChangeState("idle", nil)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, sched, _, _ := newTestMachine(t)
			ended := 0
			_ = m.ChangeState("grabMexico", func() { ended++ })

			// 最后一个循环已完成，完成回调还在延迟中
			sched.Advance(16*time.Millisecond + 6*300*time.Millisecond)
			if sched.Active() != 1 {
				t.Fatalf("Active in completion window: got %d, want 1", sched.Active())
			}

			tt.cancel(m)
			if sched.Active() != 1 {
				t.Errorf("Active after cancel: got %d, want 1", sched.Active())
			}

			sched.Advance(20 * time.Millisecond)
			if ended != 0 {
				t.Errorf("superseded onEnd fired %d times", ended)
			}
			if got := m.CurrentAnimation().Name; got != "idle" {
				t.Errorf("current: got %q, want idle", got)
			}
		})
	}
}

// TestStopInCompletionWindow 测试完成回调延迟期间 Stop 后不再有活动定时器
func TestStopInCompletionWindow(t *testing.T) {
	m, sched, _, _ := newTestMachine(t)
	ended := 0
	_ = m.ChangeState("grabMexico", func() { ended++ })
	sched.Advance(16*time.Millisecond + 6*300*time.Millisecond)

	m.Stop()
	if sched.Active() != 0 {
		t.Errorf("Active after Stop: got %d, want 0", sched.Active())
	}
	sched.Advance(time.Second)
	if ended != 0 {
		t.Errorf("onEnd fired after Stop: %d", ended)
	}
}

// TestSetFrameClamps 测试越界帧序号被限制而不是报错
func TestSetFrameClamps(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"负数", -5, 0},
		{"超出上限", 99, 1},
		{"有效值", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _, _ := newTestMachine(t)
			_ = m.ChangeState("idle", nil)
			m.SetFrame(tt.in)
			if got := m.CurrentAnimation().Frame; got != tt.want {
				t.Errorf("SetFrame(%d): got %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

// TestSetFrameWithoutAnimation 测试没有当前动画时 SetFrame 不会崩溃
func TestSetFrameWithoutAnimation(t *testing.T) {
	m, _, _, _ := newTestMachine(t)
	m.SetFrame(3)
	m.Play()
	m.Stop()
	if got := m.CurrentAnimation(); got.Name != "" || got.Frame != 0 {
		t.Errorf("snapshot: got %+v", got)
	}
}

// TestPauseResumePreservesProgress 测试暂停/恢复保留帧和循环计数
func TestPauseResumePreservesProgress(t *testing.T) {
	m, sched, _, _ := newTestMachine(t)
	calls := 0
	_ = m.ChangeState("grabMexico", func() { calls++ })

	// 推进到第 2 个循环的第 1 帧：16 + 5*300
	sched.Advance(16*time.Millisecond + 5*300*time.Millisecond)
	snap := m.CurrentAnimation()
	if snap.Frame != 1 || snap.Loop != 2 {
		t.Fatalf("before pause: got frame %d loop %d, want 1/2", snap.Frame, snap.Loop)
	}

	m.Pause()
	m.Pause()
	if m.State() != StatePaused {
		t.Errorf("State: got %v, want Paused", m.State())
	}
	sched.Advance(10 * time.Second)
	if got := m.CurrentAnimation(); got.Frame != 1 || got.Loop != 2 {
		t.Fatalf("while paused: got %+v", got)
	}

	m.Resume()
	if got := m.CurrentAnimation(); got.Frame != 1 || got.Loop != 2 {
		t.Fatalf("after resume: got %+v, want frame 1 loop 2", got)
	}

	sched.Advance(300 * time.Millisecond)
	if calls != 0 {
		t.Fatalf("onEnd fired immediately")
	}
	if got := m.CurrentAnimation().Loop; got != 3 {
		t.Errorf("loop after one tick: got %d, want 3", got)
	}
	sched.Advance(16 * time.Millisecond)
	if calls != 1 {
		t.Errorf("onEnd calls: got %d, want 1", calls)
	}
}

// TestResumeWithoutPause 测试未暂停时 Resume 不产生额外定时器
func TestResumeWithoutPause(t *testing.T) {
	m, sched, _, _ := newTestMachine(t)
	_ = m.ChangeState("idle", nil)
	sched.Advance(20 * time.Millisecond)
	m.Resume()
	if sched.Active() != 1 {
		t.Errorf("Active: got %d, want 1", sched.Active())
	}
}

// TestFrameDuration 测试帧时长计算
func TestFrameDuration(t *testing.T) {
	tests := []struct {
		name   string
		anim   string
		speed  float64
		mobile bool
		want   time.Duration
	}{
		{"基础时长", "idle", 1.0, false, 300 * time.Millisecond},
		{"两倍速", "idle", 2.0, false, 150 * time.Millisecond},
		{"极高速受最小值限制", "idle", 100, false, 50 * time.Millisecond},
		{"移动端最小值", "idle", 5.0, true, 80 * time.Millisecond},
		{"固定帧时长不受速度影响", "fixed", 3.0, false, 40 * time.Millisecond},
		{"移动端固定帧时长", "fixed", 1.0, true, 80 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewStateMachine(testCatalog(t), clock.NewTickScheduler(), StateMachineOptions{
				Surface: &fakeSurface{},
				Device:  fakeDevice(tt.mobile),
				Logger:  quietLogger,
			})
			_ = m.ChangeState(tt.anim, nil)
			m.SetGameSpeed(tt.speed)
			if got := m.FrameDuration(); got != tt.want {
				t.Errorf("FrameDuration: got %v, want %v", got, tt.want)
			}
		})
	}
}

// TestSetGameSpeedRejectsNonPositive 测试非正速度被忽略
func TestSetGameSpeedRejectsNonPositive(t *testing.T) {
	m, _, _, _ := newTestMachine(t)
	m.SetGameSpeed(2)
	m.SetGameSpeed(0)
	m.SetGameSpeed(-1)
	if m.GameSpeed() != 2 {
		t.Errorf("GameSpeed: got %v, want 2", m.GameSpeed())
	}
}

// TestSingleFrameAnimation 测试单帧动画不会除零并能正常完成
func TestSingleFrameAnimation(t *testing.T) {
	m, sched, surface, _ := newTestMachine(t)
	done := false
	_ = m.ChangeState("still", func() { done = true })
	if surface.offsets[0] != 0 {
		t.Errorf("offset: got %v, want 0", surface.offsets[0])
	}
	sched.Advance(16*time.Millisecond + 300*time.Millisecond + 16*time.Millisecond)
	if !done {
		t.Error("single-frame animation did not complete")
	}
}

// TestTargetTracking 测试命中区域随帧更新，无命中区域时隐藏
func TestTargetTracking(t *testing.T) {
	m, sched, _, tracker := newTestMachine(t)
	_ = m.ChangeState("grabMexico", nil)
	sched.Advance(16*time.Millisecond + 300*time.Millisecond)
	if len(tracker.frames) != 2 || tracker.frames[0] != 0 || tracker.frames[1] != 1 {
		t.Errorf("tracked frames: got %v, want [0 1]", tracker.frames)
	}

	_ = m.ChangeState("idle", nil)
	if tracker.hidden != 1 {
		t.Errorf("HideTarget calls: got %d, want 1", tracker.hidden)
	}
}

// TestMissingSurface 测试缺少渲染表面时内部状态仍然推进
func TestMissingSurface(t *testing.T) {
	sched := clock.NewTickScheduler()
	m := NewStateMachine(testCatalog(t), sched, StateMachineOptions{Logger: quietLogger})
	done := false
	_ = m.ChangeState("victory", func() { done = true })
	sched.Advance(16*time.Millisecond + 4*300*time.Millisecond + 16*time.Millisecond)
	if !done {
		t.Error("animation without surface did not complete")
	}
}
