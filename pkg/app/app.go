// Package app 提供游戏应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/hitsync/pkg/animation"
	"github.com/decker502/hitsync/pkg/clock"
	"github.com/decker502/hitsync/pkg/config"
	"github.com/decker502/hitsync/pkg/device"
	"github.com/decker502/hitsync/pkg/game"
	"github.com/decker502/hitsync/pkg/input"
	"github.com/decker502/hitsync/pkg/render"
)

// 默认窗口尺寸
const (
	DefaultScreenWidth  = 1280
	DefaultScreenHeight = 720
)

// CharacterScale 角色精灵相对地图的大小（居中）
const CharacterScale = 0.45

// AppName gdata 存储使用的应用名
const AppName = "hitsync"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Debug 强制显示命中区域轮廓（不写入设置）
	Debug bool
	// ForceMobile 在桌面端按移动设备处理（触摸放大、移动端最小帧时长）
	ForceMobile bool
	// Seed 随机种子，0 表示使用时间种子
	Seed int64
	// ScreenWidth/ScreenHeight 初始窗口尺寸，0 使用默认值
	ScreenWidth  int
	ScreenHeight int
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	scheduler *clock.TickScheduler
	device    *device.Provider

	background *render.MapReference
	sprite     *render.SpriteSurface
	overlay    *render.SpriteSurface
	regions    *render.RegionLayer
	prompt     *render.PromptLayer
	dispatcher *input.Dispatcher

	manager  *game.AnimationManager
	state    *game.GameState
	speed    *game.SpeedManager
	settings *game.SettingsManager
	session  *Session

	screenW, screenH int
	verbose          bool
	speedBanner      string
	bannerTimer      clock.Timer

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化游戏应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	w, h := cfg.ScreenWidth, cfg.ScreenHeight
	if w <= 0 || h <= 0 {
		w, h = DefaultScreenWidth, DefaultScreenHeight
	}

	bundle, err := config.LoadBundle(config.AnimationConfigPath, config.HitboxConfigPath)
	if err != nil {
		return nil, err
	}
	catalog, err := animation.NewCatalogFromConfig(bundle.Animations)
	if err != nil {
		return nil, fmt.Errorf("动画目录构建失败: %w", err)
	}
	log.Printf("[App] Loaded %d animations, %d spawn entities", len(catalog.Names()), len(bundle.Hitbox.SpawnLocations))

	env := device.DetectEnvironment(w, h)
	if cfg.ForceMobile {
		env.UserAgent = "Android (forced)"
		env.TouchEvents = true
		env.MaxTouchPoints = 1
	}

	a := &App{
		scheduler:  clock.NewTickScheduler(),
		device:     device.NewProvider(env, log.Default()),
		background: render.NewMapReference(render.MapNaturalWidth, render.MapNaturalHeight),
		regions:    render.NewRegionLayer(),
		prompt:     render.NewPromptLayer(),
		state:      game.NewGameState(),
		screenW:    w,
		screenH:    h,
		verbose:    cfg.Verbose,
	}
	sheets := render.NewSheetCache()
	a.sprite = render.NewSpriteSurface(sheets, true)
	a.overlay = render.NewSpriteSurface(sheets, false)
	a.dispatcher = input.NewDispatcher(a.regions, w, h, log.Default())
	a.background.Layout(w, h)
	a.sprite.SetBounds(a.background.Bounds().ScaleCentered(CharacterScale))

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	a.manager, err = game.NewAnimationManager(game.ManagerDeps{
		Catalog:        catalog,
		Hitbox:         bundle.Hitbox,
		Scheduler:      a.scheduler,
		Device:         a.device,
		Surface:        a.sprite,
		OverlaySurface: a.overlay,
		Reference:      a.background,
		View:           a.dispatcher,
		Prompt:         a.prompt,
		Game:           a.state,
		Random:         rng,
		Logger:         log.Default(),
	})
	if err != nil {
		return nil, fmt.Errorf("动画管理器初始化失败: %w", err)
	}

	// 设置存储失败时降级为仅内存设置
	gdataManager, err := game.OpenStorage(AppName)
	if err != nil {
		log.Printf("[App] Warning: gdata unavailable: %v (settings will not persist)", err)
		gdataManager = nil
	}
	a.settings = game.NewSettingsManager(gdataManager)
	settings := a.settings.GetSettings()

	if settings.SpeedProgression {
		a.speed = game.NewSpeedManager(a.state, a.manager, a.scheduler, nil, 0)
		a.speed.OnChange(a.showSpeedBanner)
	}
	a.manager.SetDebugMode(cfg.Debug || settings.DebugMode)

	spawnIDs := make([]string, 0, len(bundle.Hitbox.SpawnLocations))
	for _, e := range bundle.Hitbox.SpawnLocations {
		spawnIDs = append(spawnIDs, e.ID)
	}
	a.session = NewSession(SessionDeps{
		Manager:   a.manager,
		State:     a.state,
		Speed:     a.speed,
		Scheduler: a.scheduler,
		Catalog:   catalog,
		SpawnIDs:  spawnIDs,
		Random:    rng,
		Logger:    log.Default(),
	})
	a.session.OnBlock = a.overlay.SetBounds
	a.dispatcher.OnTap(a.session.HandleTap)
	a.dispatcher.OnMiss(a.session.HandleMiss)

	a.session.Start()
	log.Printf("[App] Started (mobile=%v, touch=%v, seed=%d)", a.device.IsMobile(), a.device.IsTouch(), seed)
	return a, nil
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次），调度器按一个 tick 的时长推进
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(DefaultScreenWidth, DefaultScreenHeight)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", DefaultScreenWidth, DefaultScreenHeight)
			a.pendingWindowSizeReset = false
		}
	}

	a.handleKeys()
	a.dispatcher.Update()

	tick := time.Second / time.Duration(ebiten.TPS())
	a.scheduler.Advance(tick)
	return nil
}

func (a *App) handleKeys() {
	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			a.settings.SetFullscreen(false)
			log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
			a.settings.SetFullscreen(true)
		}
		a.saveSettings()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		enabled := !a.manager.DebugMode()
		a.manager.SetDebugMode(enabled)
		a.settings.SetDebugMode(enabled)
		a.saveSettings()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.session.TogglePause()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		a.session.Restart()
	}
}

func (a *App) saveSettings() {
	if err := a.settings.Save(); err != nil {
		log.Printf("[App] Warning: Failed to save settings: %v", err)
	}
}

func (a *App) showSpeedBanner(level game.SpeedLevel) {
	a.speedBanner = fmt.Sprintf("SPEED UP! %s (%.1fx)", level.Name, level.Multiplier)
	if a.bannerTimer != nil {
		a.bannerTimer.Stop()
	}
	a.bannerTimer = a.scheduler.AfterFunc(2*time.Second, func() {
		a.speedBanner = ""
		a.bannerTimer = nil
	})
}

// Draw 绘制游戏画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 24, G: 28, B: 36, A: 255})
	a.background.Draw(screen)
	a.sprite.Draw(screen)
	a.overlay.Draw(screen)
	a.regions.Draw(screen)
	a.prompt.Draw(screen)
	a.drawHUD(screen)
}

func (a *App) drawHUD(screen *ebiten.Image) {
	stats := a.state.Stats()
	msg := fmt.Sprintf("Blocks: %d  Misses: %d  Protestors: %d  Speed: %.1fx",
		stats.SuccessfulBlocks, stats.Misses, stats.ProtestorClicks, a.state.SpeedMultiplier())
	if a.state.IsPaused() {
		msg += "  [PAUSED]"
	}
	if a.speedBanner != "" {
		msg += "\n" + a.speedBanner
	}
	if a.manager.DebugMode() {
		snap := a.manager.CurrentAnimation()
		msg += fmt.Sprintf("\n%s frame=%d loop=%d %s", snap.Name, snap.Frame, snap.Loop, snap.State)
		if info, ok := a.manager.HitboxInfo(); ok {
			msg += fmt.Sprintf("\nhitbox x=%.0f y=%.0f w=%.0f h=%.0f", info.Hit.X, info.Hit.Y, info.Hit.Width, info.Hit.Height)
		}
	}
	ebitenutil.DebugPrintAt(screen, msg, 8, 8)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
// 逻辑尺寸跟随窗口，窗口变化时重新布局地图并通知所有命中区域
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth <= 0 || outsideHeight <= 0 {
		return a.screenW, a.screenH
	}
	if outsideWidth != a.screenW || outsideHeight != a.screenH {
		a.resize(outsideWidth, outsideHeight)
	}
	return a.screenW, a.screenH
}

func (a *App) resize(w, h int) {
	a.screenW, a.screenH = w, h
	a.dispatcher.Resize(w, h)
	if a.background.Layout(w, h) {
		a.sprite.SetBounds(a.background.Bounds().ScaleCentered(CharacterScale))
	}
	// 订阅者（AnimationManager）同步重新计算所有可见区域
	a.device.Resize(w, h)
}

// Fullscreen 返回保存的全屏设置
func (a *App) Fullscreen() bool {
	return a.settings.GetSettings().Fullscreen
}

// Shutdown 结束本局并保存设置
func (a *App) Shutdown() {
	a.session.Stop()
	a.saveSettings()
	log.Printf("[App] Shutdown")
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
