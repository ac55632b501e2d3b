package game

import "log"

// GameStats 本局统计
type GameStats struct {
	SuccessfulBlocks int // 成功格挡次数（第一次之前显示新手提示）
	Misses           int // 未格挡次数（抓取动画完整播放）
	ProtestorClicks  int // 点击生成点区域次数
}

// GameState 游戏运行状态
//
// 通过构造函数注入到各组件（hitbox.GameInfo），不是全局单例。
// 只在游戏主循环中读写，不需要加锁。
type GameState struct {
	playing bool
	paused  bool
	speed   float64
	stats   GameStats
}

// NewGameState 创建未开始的游戏状态，速度倍率为 1.0
func NewGameState() *GameState {
	return &GameState{speed: 1.0}
}

// Start 开始新的一局，清空统计
func (gs *GameState) Start() {
	gs.playing = true
	gs.paused = false
	gs.stats = GameStats{}
	log.Printf("[GameState] Game started")
}

// End 结束本局
func (gs *GameState) End() {
	gs.playing = false
	gs.paused = false
	log.Printf("[GameState] Game ended (blocks=%d, misses=%d)", gs.stats.SuccessfulBlocks, gs.stats.Misses)
}

// SetPaused 设置暂停标志，未开始时忽略
func (gs *GameState) SetPaused(paused bool) {
	if !gs.playing {
		return
	}
	gs.paused = paused
}

// IsPlaying 实现 hitbox.GameInfo
func (gs *GameState) IsPlaying() bool {
	return gs.playing
}

// IsPaused 实现 hitbox.GameInfo
func (gs *GameState) IsPaused() bool {
	return gs.paused
}

// SpeedMultiplier 实现 hitbox.GameInfo
func (gs *GameState) SpeedMultiplier() float64 {
	return gs.speed
}

// SetSpeedMultiplier 记录当前速度倍率（由 SpeedManager 调用）
func (gs *GameState) SetSpeedMultiplier(m float64) {
	if m > 0 {
		gs.speed = m
	}
}

// SuccessfulBlocks 实现 hitbox.GameInfo
func (gs *GameState) SuccessfulBlocks() int {
	return gs.stats.SuccessfulBlocks
}

// RecordBlock 记录一次成功格挡
func (gs *GameState) RecordBlock() {
	gs.stats.SuccessfulBlocks++
}

// RecordMiss 记录一次未格挡
func (gs *GameState) RecordMiss() {
	gs.stats.Misses++
}

// RecordProtestorClick 记录一次生成点区域点击
func (gs *GameState) RecordProtestorClick() {
	gs.stats.ProtestorClicks++
}

// Stats 返回统计快照
func (gs *GameState) Stats() GameStats {
	return gs.stats
}
