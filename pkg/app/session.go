package app

import (
	"log"
	"math/rand"
	"time"

	"github.com/decker502/hitsync/pkg/animation"
	"github.com/decker502/hitsync/pkg/clock"
	"github.com/decker502/hitsync/pkg/game"
	"github.com/decker502/hitsync/pkg/geom"
	"github.com/decker502/hitsync/pkg/hitbox"
)

// 演示玩法使用的动画名
const (
	AnimIdle    = "idle"
	AnimSlapped = "slapped"
	AnimVictory = "victory"
	AnimBonus   = "muskAppearance"
)

const (
	// IdleDelay 两次抓取之间的间隔（按游戏速度缩短）
	IdleDelay = 1500 * time.Millisecond
	// SpawnGrowFactor 每次点击生成点区域时的放大倍数
	SpawnGrowFactor = 1.25
	// SpawnMaxClicks 生成点被点击多少次后换到新位置
	SpawnMaxClicks = 3
	// BonusEvery 每成功格挡多少次播放一次奖励动画
	BonusEvery = 5
)

// SessionDeps Session 的依赖
type SessionDeps struct {
	Manager   *game.AnimationManager
	State     *game.GameState
	Speed     *game.SpeedManager // 可为 nil：不做速度递进
	Scheduler clock.Scheduler
	Catalog   *animation.Catalog
	SpawnIDs  []string
	Random    hitbox.Random
	Logger    animation.Logger
}

// Session 演示玩法循环
//
// 空闲一段时间后随机播放一个抓取动画；玩家在抓取结束前点中手部即格挡成功，
// 播放对应的拍打叠加动画，impact 帧切换到被打动画；抓取完整播放则记为失败，
// 切换到胜利动画。生成点区域被点击时逐步放大，点满后换位置。
type Session struct {
	deps   SessionDeps
	logger animation.Logger

	next    clock.Timer
	blocked bool
	clicks  map[string]int

	// OnBlock 格挡成功时调用，参数为当时的角色命中区域
	OnBlock func(hit geom.Rect)
}

// NewSession 创建 Session，Random 为 nil 时使用时间种子
func NewSession(deps SessionDeps) *Session {
	if deps.Random == nil {
		deps.Random = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		deps:   deps,
		logger: logger,
		clicks: make(map[string]int),
	}
}

// Start 开始新的一局
func (s *Session) Start() {
	s.cancelNext()
	s.deps.State.Start()
	s.clicks = make(map[string]int)
	for _, id := range s.deps.SpawnIDs {
		if err := s.deps.Manager.ShowTargetRegion(id); err != nil {
			s.logger.Printf("[Session] Warning: cannot show spawn region %s: %v", id, err)
		}
	}
	if s.deps.Speed != nil {
		s.deps.Speed.Start()
	}
	// 上一局暂停时重新开始，状态机也要解除暂停
	s.deps.Manager.Resume()
	s.logger.Printf("[Session] Started with %d spawn regions", len(s.deps.SpawnIDs))
	s.goIdle()
}

// Stop 结束本局并停止所有动画
func (s *Session) Stop() {
	s.cancelNext()
	if s.deps.Speed != nil {
		s.deps.Speed.Stop()
	}
	s.deps.Manager.Reset()
	s.deps.State.End()
}

// Restart 重置所有区域和速度后重新开始
func (s *Session) Restart() {
	s.cancelNext()
	s.deps.Manager.Reset()
	if s.deps.Speed != nil {
		s.deps.Speed.Reset()
	}
	s.Start()
}

// TogglePause 切换暂停，返回切换后的暂停状态
func (s *Session) TogglePause() bool {
	if !s.deps.State.IsPlaying() {
		return false
	}
	paused := !s.deps.State.IsPaused()
	s.deps.State.SetPaused(paused)
	if paused {
		s.deps.Manager.Pause()
		s.logger.Printf("[Session] Paused")
	} else {
		s.deps.Manager.Resume()
		s.logger.Printf("[Session] Resumed")
	}
	return paused
}

// HandleTap 处理命中某个区域的点击
func (s *Session) HandleTap(id string, x, y int) {
	if !s.deps.State.IsPlaying() || s.deps.State.IsPaused() {
		return
	}
	if id == hitbox.TargetID {
		s.block()
		return
	}
	s.hitSpawn(id)
}

// HandleMiss 处理未命中任何区域的点击
func (s *Session) HandleMiss(x, y int) {
	s.logger.Printf("[Session] Tap at (%d, %d) missed", x, y)
}

func (s *Session) goIdle() {
	if err := s.deps.Manager.ChangeState(AnimIdle, nil); err != nil {
		s.logger.Printf("[Session] Error: %v", err)
	}
	s.scheduleGrab()
}

func (s *Session) scheduleGrab() {
	s.cancelNext()
	delay := IdleDelay
	if m := s.deps.State.SpeedMultiplier(); m > 0 {
		delay = time.Duration(float64(delay) / m)
	}
	s.next = s.deps.Scheduler.AfterFunc(delay, func() {
		s.next = nil
		s.startGrab()
	})
}

func (s *Session) startGrab() {
	if !s.deps.State.IsPlaying() {
		return
	}
	if s.deps.State.IsPaused() {
		s.scheduleGrab()
		return
	}
	grabs := s.deps.Catalog.WithTarget()
	if len(grabs) == 0 {
		s.logger.Printf("[Session] Error: no animation with a target region")
		return
	}
	name := grabs[s.deps.Random.Intn(len(grabs))]
	s.blocked = false
	s.logger.Printf("[Session] Starting grab %s", name)
	if err := s.deps.Manager.ChangeState(name, s.grabCompleted); err != nil {
		s.logger.Printf("[Session] Error: %v", err)
		s.scheduleGrab()
	}
}

// grabCompleted 抓取动画完整播放，玩家没有格挡
func (s *Session) grabCompleted() {
	s.deps.State.RecordMiss()
	s.logger.Printf("[Session] Grab was not blocked")
	if err := s.deps.Manager.ChangeState(AnimVictory, s.goIdle); err != nil {
		s.logger.Printf("[Session] Error: %v", err)
		s.goIdle()
	}
}

func (s *Session) block() {
	def := s.deps.Manager.CurrentDefinition()
	if def == nil || !def.HasTarget() || s.blocked {
		return
	}
	s.blocked = true

	info, visible := s.deps.Manager.HitboxInfo()
	s.deps.State.RecordBlock()
	s.deps.Manager.HandleSuccessfulHit()
	// 停在当前帧等待 impact，抓取的完成回调不会再触发
	s.deps.Manager.Stop()
	if visible && s.OnBlock != nil {
		s.OnBlock(info.Hit)
	}

	overlay := def.Overlay
	if overlay == "" {
		overlay = def.Name
	}
	s.logger.Printf("[Session] Blocked %s, playing overlay %s", def.Name, overlay)
	s.deps.Manager.PlayOverlay(overlay, func() {
		if err := s.deps.Manager.ChangeState(AnimSlapped, s.afterSlapped); err != nil {
			s.logger.Printf("[Session] Error: %v", err)
			s.goIdle()
		}
	})
}

func (s *Session) afterSlapped() {
	blocks := s.deps.State.SuccessfulBlocks()
	if blocks > 0 && blocks%BonusEvery == 0 && s.deps.Catalog.Has(AnimBonus) {
		s.logger.Printf("[Session] %d blocks, playing %s", blocks, AnimBonus)
		if err := s.deps.Manager.ChangeState(AnimBonus, s.goIdle); err == nil {
			return
		}
	}
	s.goIdle()
}

func (s *Session) hitSpawn(id string) {
	s.deps.State.RecordProtestorClick()
	s.clicks[id]++
	if s.clicks[id] < SpawnMaxClicks {
		if err := s.deps.Manager.GrowTargetRegion(id, SpawnGrowFactor); err != nil {
			s.logger.Printf("[Session] Error: %v", err)
		}
		return
	}

	// 点满后换到新位置，并缩回原始大小
	grown := 1.0
	for i := 1; i < SpawnMaxClicks; i++ {
		grown *= SpawnGrowFactor
	}
	s.clicks[id] = 0
	if err := s.deps.Manager.ReselectSpawnLocation(id); err != nil {
		s.logger.Printf("[Session] Error: %v", err)
		return
	}
	if err := s.deps.Manager.GrowTargetRegion(id, 1/grown); err != nil {
		s.logger.Printf("[Session] Error: %v", err)
	}
}

// Blocked 当前抓取是否已被格挡
func (s *Session) Blocked() bool {
	return s.blocked
}

func (s *Session) cancelNext() {
	if s.next != nil {
		s.next.Stop()
		s.next = nil
	}
}
