//go:build !mobile

package device

import (
	"os"
	"runtime"
)

// emulateEnv 设置为 "1" 时在桌面端模拟移动设备（用于本地调试）
const emulateEnv = "HITSYNC_MOBILE_EMULATE"

// DetectEnvironment 检测桌面端平台信息
// 桌面端没有浏览器 User-Agent，使用 GOOS 组装一个，模拟模式下伪装为 Android
func DetectEnvironment(width, height int) Environment {
	env := Environment{
		UserAgent:      "Go-" + runtime.GOOS,
		ViewportWidth:  width,
		ViewportHeight: height,
	}
	if os.Getenv(emulateEnv) == "1" {
		env.UserAgent = "Android (emulated)"
		env.TouchEvents = true
		env.MaxTouchPoints = 1
	}
	return env
}
