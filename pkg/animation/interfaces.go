package animation

import "github.com/decker502/hitsync/pkg/device"

// Surface 渲染表面抽象
// 只需要：设置精灵图、设置背景水平偏移、显示/隐藏
type Surface interface {
	// SetSheet 切换精灵图，frameCount 用于计算单帧宽度
	SetSheet(sheet string, frameCount int)
	// SetFrameOffset 设置背景水平偏移百分比（0 = 第一帧，100 = 最后一帧）
	SetFrameOffset(percent float64)
	// SetVisible 显示或隐藏表面（叠加动画使用）
	SetVisible(visible bool)
}

// TargetTracker 接收帧变化并重新计算命中区域
// 由 hitbox.TargetPositioner 实现
type TargetTracker interface {
	// TrackFrame 动画帧变化时调用（仅限有命中区域的动画）
	TrackFrame(animation string, frame int, region *TargetRegion)
	// HideTarget 当前动画没有命中区域时调用
	HideTarget()
}

// DeviceInfo 只读设备信息
type DeviceInfo interface {
	IsMobile() bool
}

var _ DeviceInfo = (*device.Provider)(nil)

// Logger 日志接口，*log.Logger 满足该接口
type Logger interface {
	Printf(format string, v ...any)
}
