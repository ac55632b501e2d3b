// Package geom 提供命中区域使用的矩形类型
package geom

import "math"

// Rect 轴对齐矩形（像素坐标，左上角为原点）
type Rect struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Calibrated 标定矩形
// Scale 是测量坐标时参考表面的缩放比例（标定缩放）
type Calibrated struct {
	Rect  `yaml:",inline"`
	Scale float64 `yaml:"calibration_scale"`
}

// CalibrationScale 返回标定缩放，未设置时按 1.0 处理
func (c Calibrated) CalibrationScale() float64 {
	if c.Scale <= 0 {
		return 1.0
	}
	return c.Scale
}

// Contains 判断点是否在矩形内（包含边界）
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Center 返回矩形中心点
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Translate 平移矩形
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Round 将四个分量四舍五入到整数像素
func (r Rect) Round() Rect {
	return Rect{
		X:      math.Round(r.X),
		Y:      math.Round(r.Y),
		Width:  math.Round(r.Width),
		Height: math.Round(r.Height),
	}
}

// ScaleCentered 以中心为锚点缩放宽高
// factor < 1 时矩形向中心收缩，> 1 时向外扩张
func (r Rect) ScaleCentered(factor float64) Rect {
	w := r.Width * factor
	h := r.Height * factor
	return Rect{
		X:      r.X + (r.Width-w)/2,
		Y:      r.Y + (r.Height-h)/2,
		Width:  w,
		Height: h,
	}
}

// Empty 宽或高不大于 0 时返回 true
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}
