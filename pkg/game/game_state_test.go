package game

import (
	"testing"
	"time"

	"github.com/decker502/hitsync/pkg/clock"
)

// TestGameStateLifecycle 测试开始、暂停和结束
func TestGameStateLifecycle(t *testing.T) {
	gs := NewGameState()
	if gs.IsPlaying() || gs.IsPaused() {
		t.Fatal("new state must be idle")
	}

	gs.SetPaused(true)
	if gs.IsPaused() {
		t.Error("pause before start must be ignored")
	}

	gs.Start()
	gs.RecordBlock()
	gs.RecordMiss()
	gs.SetPaused(true)
	if !gs.IsPaused() || gs.SuccessfulBlocks() != 1 || gs.Stats().Misses != 1 {
		t.Errorf("state: paused=%v stats=%+v", gs.IsPaused(), gs.Stats())
	}

	gs.Start()
	if gs.SuccessfulBlocks() != 0 || gs.IsPaused() {
		t.Errorf("Start must clear stats and pause: %+v", gs.Stats())
	}

	gs.End()
	if gs.IsPlaying() {
		t.Error("still playing after End")
	}
}

type recordingSpeed struct{ values []float64 }

func (r *recordingSpeed) SetGameSpeed(m float64) { r.values = append(r.values, m) }

// TestSpeedProgression 测试速度按间隔递进且暂停时不提升
func TestSpeedProgression(t *testing.T) {
	sched := clock.NewTickScheduler()
	gs := NewGameState()
	gs.Start()
	target := &recordingSpeed{}
	sm := NewSpeedManager(gs, target, sched, nil, 0)

	var names []string
	sm.OnChange(func(l SpeedLevel) { names = append(names, l.Name) })

	sm.Start()
	if gs.SpeedMultiplier() != 1.0 {
		t.Fatalf("initial speed: got %v", gs.SpeedMultiplier())
	}

	sched.Advance(DefaultSpeedInterval)
	if got := sm.Current().Multiplier; got != 1.5 {
		t.Errorf("after one interval: got %v, want 1.5", got)
	}

	gs.SetPaused(true)
	sched.Advance(3 * DefaultSpeedInterval)
	if got := sm.Current().Multiplier; got != 1.5 {
		t.Errorf("paused progression: got %v, want 1.5", got)
	}

	gs.SetPaused(false)
	sched.Advance(10 * DefaultSpeedInterval)
	if got := sm.Current().Multiplier; got != 3.0 {
		t.Errorf("max level: got %v, want 3.0", got)
	}
	if len(names) != 4 {
		t.Errorf("change notifications: got %v", names)
	}
	if last := target.values[len(target.values)-1]; last != 3.0 {
		t.Errorf("last pushed speed: got %v", last)
	}

	sm.Reset()
	if gs.SpeedMultiplier() != 1.0 || sched.Active() != 0 {
		t.Errorf("Reset: speed %v active %d", gs.SpeedMultiplier(), sched.Active())
	}
}

// TestSpeedIncreaseAtMax 测试最高等级时不再提升
func TestSpeedIncreaseAtMax(t *testing.T) {
	levels := []SpeedLevel{{1, "a"}, {2, "b"}}
	sm := NewSpeedManager(nil, nil, clock.NewTickScheduler(), levels, time.Second)
	if !sm.Increase() {
		t.Fatal("first Increase must succeed")
	}
	if sm.Increase() {
		t.Error("Increase at max must return false")
	}
}
