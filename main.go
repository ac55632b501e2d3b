package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/hitsync/pkg/app"
	"github.com/decker502/hitsync/pkg/embedded"
)

var (
	verbose = flag.Bool("verbose", false, "Enable verbose logging")
	debug   = flag.Bool("debug", false, "Show hit region outlines")
	mobile  = flag.Bool("mobile", false, "Treat this device as mobile (touch-enlarged hit regions)")
	seed    = flag.Int64("seed", 0, "Random seed for spawn and grab selection (0 = time based)")
	width   = flag.Int("width", app.DefaultScreenWidth, "Initial window width")
	height  = flag.Int("height", app.DefaultScreenHeight, "Initial window height")
)

func main() {
	flag.Parse()

	// 必须在任何配置加载之前初始化嵌入资源
	embedded.Init(dataFS)

	gameApp, err := app.NewApp(app.Config{
		Verbose:      *verbose,
		Debug:        *debug,
		ForceMobile:  *mobile,
		Seed:         *seed,
		ScreenWidth:  *width,
		ScreenHeight: *height,
	})
	if err != nil {
		// NewApp 可能已经关闭日志输出
		log.SetOutput(os.Stderr)
		log.Fatalf("初始化失败: %v", err)
	}

	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("HitSync")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(gameApp.Fullscreen())

	runErr := ebiten.RunGame(gameApp)
	gameApp.Shutdown()
	if runErr != nil {
		log.SetOutput(os.Stderr)
		log.Fatal(runErr)
	}
}
