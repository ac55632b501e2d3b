package app

import (
	"io"
	"log"
	"math"
	"math/rand"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/decker502/hitsync/pkg/animation"
	"github.com/decker502/hitsync/pkg/clock"
	"github.com/decker502/hitsync/pkg/config"
	"github.com/decker502/hitsync/pkg/device"
	"github.com/decker502/hitsync/pkg/game"
	"github.com/decker502/hitsync/pkg/geom"
	"github.com/decker502/hitsync/pkg/hitbox"
)

var quietLogger = log.New(io.Discard, "", 0)

type nopSurface struct{}

func (nopSurface) SetSheet(string, int)   {}
func (nopSurface) SetFrameOffset(float64) {}
func (nopSurface) SetVisible(bool)        {}

type halfReference struct{}

func (halfReference) RenderedSize() (float64, float64) { return 1500, 1600 }
func (halfReference) NaturalSize() (float64, float64)  { return 3000, 3200 }
func (halfReference) Offset() (float64, float64)       { return 0, 0 }

type sessionFixture struct {
	session *Session
	sched   *clock.TickScheduler
	manager *game.AnimationManager
	state   *game.GameState
	blocked []geom.Rect
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	animData, err := os.ReadFile("../../data/animations.yaml")
	if err != nil {
		t.Skipf("data/animations.yaml not available: %v", err)
	}
	hitData, err := os.ReadFile("../../data/hitbox.yaml")
	if err != nil {
		t.Skipf("data/hitbox.yaml not available: %v", err)
	}
	animCfg, err := config.ParseAnimationConfig(animData)
	if err != nil {
		t.Fatalf("ParseAnimationConfig: %v", err)
	}
	hitCfg, err := config.ParseHitboxConfig(hitData)
	if err != nil {
		t.Fatalf("ParseHitboxConfig: %v", err)
	}
	catalog, err := animation.NewCatalogFromConfig(animCfg)
	if err != nil {
		t.Fatalf("NewCatalogFromConfig: %v", err)
	}

	f := &sessionFixture{
		sched: clock.NewTickScheduler(),
		state: game.NewGameState(),
	}
	rng := rand.New(rand.NewSource(1))
	f.manager, err = game.NewAnimationManager(game.ManagerDeps{
		Catalog:        catalog,
		Hitbox:         hitCfg,
		Scheduler:      f.sched,
		Device:         device.NewProvider(device.Environment{UserAgent: "Go-linux", ViewportWidth: 1280, ViewportHeight: 720}, quietLogger),
		Surface:        nopSurface{},
		OverlaySurface: nopSurface{},
		Reference:      halfReference{},
		Game:           f.state,
		Random:         rng,
		Logger:         quietLogger,
	})
	if err != nil {
		t.Fatalf("NewAnimationManager: %v", err)
	}

	var ids []string
	for _, e := range hitCfg.SpawnLocations {
		ids = append(ids, e.ID)
	}
	f.session = NewSession(SessionDeps{
		Manager:   f.manager,
		State:     f.state,
		Scheduler: f.sched,
		Catalog:   catalog,
		SpawnIDs:  ids,
		Random:    rng,
		Logger:    quietLogger,
	})
	f.session.OnBlock = func(hit geom.Rect) { f.blocked = append(f.blocked, hit) }
	return f
}

func (f *sessionFixture) current() string {
	return f.manager.CurrentAnimation().Name
}

// TestSessionStartsIdle 测试开局显示所有生成点并进入 idle
func TestSessionStartsIdle(t *testing.T) {
	f := newSessionFixture(t)
	f.session.Start()

	if got := f.current(); got != AnimIdle {
		t.Errorf("current: got %q, want %q", got, AnimIdle)
	}
	for _, id := range []string{"canada", "mexico", "greenland"} {
		if _, ok := f.manager.TargetRegionRect(id); !ok {
			t.Errorf("spawn region %s not visible", id)
		}
	}
	if !f.state.IsPlaying() {
		t.Error("game not playing")
	}
}

// TestSessionGrabUnblocked 测试抓取完整播放后记为失败并播放胜利动画
func TestSessionGrabUnblocked(t *testing.T) {
	f := newSessionFixture(t)
	f.session.Start()

	f.sched.Advance(IdleDelay + 100*time.Millisecond)
	if got := f.current(); !strings.HasPrefix(got, "grab") {
		t.Fatalf("after idle delay: got %q, want a grab animation", got)
	}
	if _, ok := f.manager.HitboxInfo(); !ok {
		t.Error("hand hit region not visible during grab")
	}

	// 2 帧 × 4 次循环 × 300ms，加上开始和完成回调的延迟
	f.sched.Advance(2500 * time.Millisecond)
	if got := f.current(); got != AnimVictory {
		t.Fatalf("after grab: got %q, want %q", got, AnimVictory)
	}
	if stats := f.state.Stats(); stats.Misses != 1 || stats.SuccessfulBlocks != 0 {
		t.Errorf("stats: %+v", stats)
	}

	// 胜利动画结束后回到 idle
	f.sched.Advance(2 * time.Second)
	if got := f.current(); got != AnimIdle {
		t.Errorf("after victory: got %q, want %q", got, AnimIdle)
	}
}

// TestSessionBlock 测试点中手部后播放叠加动画、被打动画，再回到 idle
func TestSessionBlock(t *testing.T) {
	f := newSessionFixture(t)
	f.session.Start()
	f.sched.Advance(IdleDelay + 100*time.Millisecond)

	f.session.HandleTap(hitbox.TargetID, 0, 0)
	f.session.HandleTap(hitbox.TargetID, 0, 0)
	if !f.session.Blocked() {
		t.Fatal("grab not blocked")
	}
	if got := f.state.SuccessfulBlocks(); got != 1 {
		t.Errorf("SuccessfulBlocks: got %d, want 1 (second tap ignored)", got)
	}
	if len(f.blocked) != 1 || f.blocked[0].Empty() {
		t.Errorf("OnBlock: got %v", f.blocked)
	}

	// 叠加动画第 3 帧（360ms）加一个延迟 tick 后切换到被打动画
	f.sched.Advance(400 * time.Millisecond)
	if got := f.current(); got != AnimSlapped {
		t.Fatalf("after impact: got %q, want %q", got, AnimSlapped)
	}
	if _, ok := f.manager.HitboxInfo(); ok {
		t.Error("hand hit region still visible after block")
	}

	f.sched.Advance(2 * time.Second)
	if got := f.current(); got != AnimIdle {
		t.Errorf("after slapped: got %q, want %q", got, AnimIdle)
	}
	if got := f.state.Stats().Misses; got != 0 {
		t.Errorf("Misses: got %d, want 0", got)
	}
}

// TestSessionBlockAfterLastLoop 测试抓取最后一个循环刚结束、完成回调触发前的格挡不再记为失败
func TestSessionBlockAfterLastLoop(t *testing.T) {
	f := newSessionFixture(t)
	f.session.Start()

	// 1500ms 空闲 + 16ms 延迟启动 + 2 帧 × 4 次循环 × 300ms
	f.sched.Advance(IdleDelay + 16*time.Millisecond + 2400*time.Millisecond)
	if got := f.current(); !strings.HasPrefix(got, "grab") {
		t.Fatalf("setup: got %q, want a grab animation", got)
	}

	f.session.HandleTap(hitbox.TargetID, 0, 0)
	if !f.session.Blocked() {
		t.Fatal("grab not blocked")
	}

	f.sched.Advance(400 * time.Millisecond)
	if got := f.current(); got != AnimSlapped {
		t.Fatalf("after impact: got %q, want %q", got, AnimSlapped)
	}
	if stats := f.state.Stats(); stats.Misses != 0 || stats.SuccessfulBlocks != 1 {
		t.Errorf("stats: %+v", stats)
	}
}

// TestSessionTapOutsideGrab 测试 idle 时点中手部区域不计格挡
func TestSessionTapOutsideGrab(t *testing.T) {
	f := newSessionFixture(t)
	f.session.Start()

	f.session.HandleTap(hitbox.TargetID, 0, 0)
	if f.session.Blocked() || f.state.SuccessfulBlocks() != 0 {
		t.Error("tap during idle counted as block")
	}
}

// TestSessionSpawnClicks 测试生成点区域逐步放大，点满后换位置并恢复大小
func TestSessionSpawnClicks(t *testing.T) {
	f := newSessionFixture(t)
	f.session.Start()

	initial, ok := f.manager.TargetRegionRect("canada")
	if !ok {
		t.Fatal("canada not visible")
	}

	f.session.HandleTap("canada", 0, 0)
	f.sched.Advance(300 * time.Millisecond)
	grown, _ := f.manager.TargetRegionRect("canada")
	if grown.Width <= initial.Width {
		t.Errorf("width after click: got %v, want > %v", grown.Width, initial.Width)
	}

	for i := 1; i < SpawnMaxClicks; i++ {
		f.session.HandleTap("canada", 0, 0)
		f.sched.Advance(300 * time.Millisecond)
	}
	restored, ok := f.manager.TargetRegionRect("canada")
	if !ok {
		t.Fatal("canada hidden after reselect")
	}
	if math.Abs(restored.Width-initial.Width) > 1 {
		t.Errorf("width after reselect: got %v, want about %v", restored.Width, initial.Width)
	}
	if got := f.state.Stats().ProtestorClicks; got != SpawnMaxClicks {
		t.Errorf("ProtestorClicks: got %d, want %d", got, SpawnMaxClicks)
	}
}

// TestSessionPause 测试暂停时忽略点击且不开始新的抓取
func TestSessionPause(t *testing.T) {
	f := newSessionFixture(t)
	f.session.Start()

	if !f.session.TogglePause() {
		t.Fatal("TogglePause should report paused")
	}
	f.session.HandleTap("mexico", 0, 0)
	if got := f.state.Stats().ProtestorClicks; got != 0 {
		t.Errorf("click while paused counted: %d", got)
	}

	f.sched.Advance(3 * IdleDelay)
	if got := f.current(); got != AnimIdle {
		t.Errorf("grab started while paused: %q", got)
	}

	if f.session.TogglePause() {
		t.Fatal("TogglePause should report resumed")
	}
	f.sched.Advance(IdleDelay + 100*time.Millisecond)
	if got := f.current(); !strings.HasPrefix(got, "grab") {
		t.Errorf("after resume: got %q, want a grab animation", got)
	}
}

// TestSessionRestart 测试重新开始清空统计并回到 idle
func TestSessionRestart(t *testing.T) {
	f := newSessionFixture(t)
	f.session.Start()
	f.sched.Advance(IdleDelay + 2600*time.Millisecond)
	if f.state.Stats().Misses != 1 {
		t.Fatalf("setup: expected one miss, got %+v", f.state.Stats())
	}

	f.session.TogglePause()
	f.session.Restart()
	if stats := f.state.Stats(); stats != (game.GameStats{}) {
		t.Errorf("stats after restart: %+v", stats)
	}
	if f.state.IsPaused() {
		t.Error("still paused after restart")
	}
	if got := f.current(); got != AnimIdle {
		t.Errorf("current after restart: got %q, want %q", got, AnimIdle)
	}
	f.sched.Advance(IdleDelay + 100*time.Millisecond)
	if got := f.current(); !strings.HasPrefix(got, "grab") {
		t.Errorf("no grab after restart: %q", got)
	}

	f.session.Stop()
	if f.state.IsPlaying() {
		t.Error("still playing after Stop")
	}
	if f.sched.Active() != 0 {
		t.Errorf("timers left after Stop: %d", f.sched.Active())
	}
}
