//go:build mobile

package device

import "runtime"

// DetectEnvironment 检测移动端平台信息
// 移动端编译时始终视为触摸设备
func DetectEnvironment(width, height int) Environment {
	ua := "Android"
	if runtime.GOOS == "ios" {
		ua = "iPhone"
	}
	return Environment{
		UserAgent:      ua,
		ViewportWidth:  width,
		ViewportHeight: height,
		MaxTouchPoints: 5,
		TouchEvents:    true,
	}
}
