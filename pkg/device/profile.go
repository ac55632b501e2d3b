// Package device 提供设备画像：移动端/桌面端分类、触摸能力和视口尺寸。
//
// 分类只在启动时进行一次；视口尺寸随 Resize 更新并通知订阅者。
// 动画和命中区域组件只读取画像，从不修改它。
package device

import (
	"log"
	"regexp"
)

// MobileViewportThreshold 视口宽度小于该值时视为移动设备
const MobileViewportThreshold = 768

// mobileUserAgent 匹配常见移动端 User-Agent
var mobileUserAgent = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)

// Profile 设备画像快照
type Profile struct {
	Mobile         bool
	Touch          bool
	ViewportWidth  int
	ViewportHeight int
}

// Environment 分类所需的平台信息
type Environment struct {
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	MaxTouchPoints int
	TouchEvents    bool // 平台是否支持触摸事件
}

// Logger 日志接口，*log.Logger 满足该接口
type Logger interface {
	Printf(format string, v ...any)
}

// Provider 设备画像提供者
// 唯一的写入方是 Resize（视口变化通知），其余组件只读
type Provider struct {
	profile   Profile
	listeners []func(Profile)
	logger    Logger
}

// NewProvider 根据平台信息创建画像提供者
// 移动端判定：User-Agent 匹配 或 视口宽度低于阈值（任一条件即可）
func NewProvider(env Environment, logger Logger) *Provider {
	if logger == nil {
		logger = log.Default()
	}
	p := &Provider{
		profile: Profile{
			Mobile:         IsMobileUserAgent(env.UserAgent) || (env.ViewportWidth > 0 && env.ViewportWidth < MobileViewportThreshold),
			Touch:          env.TouchEvents || env.MaxTouchPoints > 0,
			ViewportWidth:  env.ViewportWidth,
			ViewportHeight: env.ViewportHeight,
		},
		logger: logger,
	}
	p.logger.Printf("[DeviceProfile] Detected: mobile=%v, touch=%v, viewport=%dx%d",
		p.profile.Mobile, p.profile.Touch, p.profile.ViewportWidth, p.profile.ViewportHeight)
	return p
}

// IsMobileUserAgent 判断 User-Agent 是否来自移动设备
func IsMobileUserAgent(ua string) bool {
	return ua != "" && mobileUserAgent.MatchString(ua)
}

// Profile 返回当前画像快照
func (p *Provider) Profile() Profile {
	return p.profile
}

// IsMobile 是否为移动设备（启动时确定）
func (p *Provider) IsMobile() bool {
	return p.profile.Mobile
}

// IsTouch 是否支持触摸
func (p *Provider) IsTouch() bool {
	return p.profile.Touch
}

// Viewport 返回当前视口尺寸
func (p *Provider) Viewport() (int, int) {
	return p.profile.ViewportWidth, p.profile.ViewportHeight
}

// OnResize 订阅视口变化
func (p *Provider) OnResize(fn func(Profile)) {
	if fn != nil {
		p.listeners = append(p.listeners, fn)
	}
}

// Resize 更新视口尺寸并同步通知所有订阅者
//
// 注意：不会重新计算移动端/触摸分类，分类在启动时固定。
// 尺寸未变化时不通知。
func (p *Provider) Resize(width, height int) {
	if width == p.profile.ViewportWidth && height == p.profile.ViewportHeight {
		return
	}
	p.profile.ViewportWidth = width
	p.profile.ViewportHeight = height
	for _, fn := range p.listeners {
		fn(p.profile)
	}
}
