// Package hitbox 负责把标定坐标换算成屏幕上的命中区域。
//
// 标定坐标是在某个参考表面缩放比例（标定缩放）下测量的像素矩形。
// 运行时按参考表面当前的渲染尺寸重新换算，再加上参考表面在屏幕上的偏移，
// 保证窗口缩放或布局变化后命中区域仍然与画面对齐。
package hitbox

import (
	"errors"

	"github.com/decker502/hitsync/pkg/animation"
	"github.com/decker502/hitsync/pkg/config"
	"github.com/decker502/hitsync/pkg/geom"
)

var (
	// ErrRenderTargetMissing 参考表面缺失或尚未完成布局
	ErrRenderTargetMissing = errors.New("reference surface missing")
	// ErrUnknownEntity 实体没有配置生成点
	ErrUnknownEntity = errors.New("unknown spawn entity")
)

// Reference 参考表面（地图背景）
// 命中区域的缩放比例和屏幕偏移都以它为准
type Reference interface {
	// RenderedSize 当前渲染尺寸（屏幕像素）
	RenderedSize() (w, h float64)
	// NaturalSize 原始图片尺寸
	NaturalSize() (w, h float64)
	// Offset 参考表面左上角在屏幕上的位置
	Offset() (x, y float64)
}

// Scaler 坐标换算器
type Scaler struct {
	ref          Reference
	device       animation.DeviceInfo
	mobileTouch  float64
	desktopTouch float64
}

// DefaultScaling 返回默认缩放参数
func DefaultScaling() config.HitboxScalingConfig {
	return config.HitboxScalingConfig{
		MobileTouchFactor:  config.DefaultMobileTouchFactor,
		DesktopTouchFactor: config.DefaultDesktopTouchFactor,
		VisualScaleFactor:  config.DefaultVisualScaleFactor,
		GrowDurationMs:     config.DefaultGrowDurationMs,
	}
}

// NewScaler 创建坐标换算器
// ref 可以为 nil，此时所有换算返回 ErrRenderTargetMissing
func NewScaler(ref Reference, device animation.DeviceInfo, scaling config.HitboxScalingConfig) *Scaler {
	mobile := scaling.MobileTouchFactor
	if mobile <= 1.0 {
		mobile = config.DefaultMobileTouchFactor
	}
	desktop := scaling.DesktopTouchFactor
	if desktop <= 0 {
		desktop = config.DefaultDesktopTouchFactor
	}
	return &Scaler{
		ref:          ref,
		device:       device,
		mobileTouch:  mobile,
		desktopTouch: desktop,
	}
}

// RenderScale 返回参考表面当前的缩放比例（渲染宽度 / 原始宽度）
func (s *Scaler) RenderScale() (float64, error) {
	if s.ref == nil {
		return 0, ErrRenderTargetMissing
	}
	rw, _ := s.ref.RenderedSize()
	nw, _ := s.ref.NaturalSize()
	if nw <= 0 || rw <= 0 {
		return 0, ErrRenderTargetMissing
	}
	return rw / nw, nil
}

// TouchFactor 返回当前设备的宽高放大系数
func (s *Scaler) TouchFactor() float64 {
	if s.device != nil && s.device.IsMobile() {
		return s.mobileTouch
	}
	return s.desktopTouch
}

// Scale 把标定矩形换算为屏幕矩形
func (s *Scaler) Scale(c geom.Calibrated) (geom.Rect, error) {
	return s.ScaleGrown(c, 1.0)
}

// ScaleGrown 与 Scale 相同，但额外以中心为锚点放大 grow 倍
// 生成点区域的放大动画使用
func (s *Scaler) ScaleGrown(c geom.Calibrated, grow float64) (geom.Rect, error) {
	renderScale, err := s.RenderScale()
	if err != nil {
		return geom.Rect{}, err
	}
	r := ScaleRect(c, renderScale, s.TouchFactor())
	if grow != 1.0 && grow > 0 {
		r = r.ScaleCentered(grow).Round()
	}
	ox, oy := s.ref.Offset()
	return r.Translate(ox, oy), nil
}

// ScaleRect 纯换算函数
//
//	adjustment = renderScale / calibrationScale
//	x, y          *= adjustment
//	width, height *= adjustment * touchFactor
//
// 结果四舍五入到整数像素，不包含屏幕偏移。
func ScaleRect(c geom.Calibrated, renderScale, touchFactor float64) geom.Rect {
	adj := renderScale / c.CalibrationScale()
	return geom.Rect{
		X:      c.X * adj,
		Y:      c.Y * adj,
		Width:  c.Width * adj * touchFactor,
		Height: c.Height * adj * touchFactor,
	}.Round()
}
