package render

import (
	"testing"

	"github.com/decker502/hitsync/pkg/geom"
	"github.com/decker502/hitsync/pkg/hitbox"
)

// TestFrameFromOffset 测试偏移百分比反推帧序号
func TestFrameFromOffset(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		frames  int
		want    int
	}{
		{"两帧起始", 0, 2, 0},
		{"两帧末尾", 100, 2, 1},
		{"五帧中间", 50, 5, 2},
		{"四帧第二帧", 100.0 / 3, 4, 1},
		{"单帧", 100, 1, 0},
		{"越界", 150, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FrameFromOffset(tt.percent, tt.frames); got != tt.want {
				t.Errorf("FrameFromOffset(%v, %d): got %d, want %d", tt.percent, tt.frames, got, tt.want)
			}
		})
	}
}

// TestSpriteSurfaceState 测试精灵表面记录的状态
func TestSpriteSurfaceState(t *testing.T) {
	s := NewSpriteSurface(nil, false)
	s.SetSheet("smack", 5)
	s.SetFrameOffset(75)
	s.SetVisible(true)

	if s.Sheet() != "smack" || !s.Visible() {
		t.Errorf("state: sheet %q visible %v", s.Sheet(), s.Visible())
	}
	if s.FrameIndex() != 3 {
		t.Errorf("FrameIndex: got %d, want 3", s.FrameIndex())
	}

	s.SetSheet("idle", 2)
	if s.FrameIndex() != 0 {
		t.Errorf("SetSheet must reset frame, got %d", s.FrameIndex())
	}
}

// TestFitRect 测试等比缩放居中
func TestFitRect(t *testing.T) {
	tests := []struct {
		name          string
		w, h, bw, bh  float64
		want          geom.Rect
	}{
		{"宽屏", 3000, 3200, 1280, 720, geom.Rect{X: 302.5, Y: 0, Width: 675, Height: 720}},
		{"竖屏", 3000, 3200, 600, 1000, geom.Rect{X: 0, Y: 180, Width: 600, Height: 640}},
		{"无效尺寸", 0, 3200, 600, 1000, geom.Rect{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FitRect(tt.w, tt.h, tt.bw, tt.bh); got != tt.want {
				t.Errorf("FitRect: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

// TestMapReferenceScaling 测试地图布局驱动命中区域换算
func TestMapReferenceScaling(t *testing.T) {
	m := NewMapReference(MapNaturalWidth, MapNaturalHeight)
	s := hitbox.NewScaler(m, nil, hitbox.DefaultScaling())

	c := geom.Calibrated{Rect: geom.Rect{X: 1000, Y: 1600, Width: 300, Height: 300}, Scale: 1}
	if _, err := s.Scale(c); err == nil {
		t.Error("expected error before layout")
	}

	if !m.Layout(600, 1000) {
		t.Fatal("Layout reported no change")
	}
	if m.Layout(600, 1000) {
		t.Error("repeated Layout reported change")
	}

	got, err := s.Scale(c)
	if err != nil {
		t.Fatalf("Scale error: %v", err)
	}
	want := geom.Rect{X: 200, Y: 500, Width: 60, Height: 60}
	if got != want {
		t.Errorf("Scale: got %+v, want %+v", got, want)
	}
}

// TestRegionLayerPlaceHide 测试区域图层记录位置
func TestRegionLayerPlaceHide(t *testing.T) {
	l := NewRegionLayer()
	l.Place("mexico", hitbox.Placement{Hit: geom.Rect{Width: 10, Height: 10}})
	l.Place("canada", hitbox.Placement{Hit: geom.Rect{Width: 20, Height: 20}, Outline: true})

	if ids := l.IDs(); len(ids) != 2 || ids[0] != "canada" {
		t.Errorf("IDs: got %v", ids)
	}
	l.Hide("mexico")
	if _, ok := l.Placement("mexico"); ok {
		t.Error("mexico still placed")
	}
	if p, ok := l.Placement("canada"); !ok || !p.Outline {
		t.Errorf("canada placement: %+v", p)
	}
}

// TestPromptLayer 测试提示显示和隐藏
func TestPromptLayer(t *testing.T) {
	p := NewPromptLayer()
	p.ShowPrompt(hitbox.TargetID, geom.Rect{X: 100, Y: 100, Width: 40, Height: 40})
	if !p.Visible() {
		t.Fatal("prompt not visible")
	}
	if _, y := p.Position(); y >= 100 {
		t.Errorf("prompt must sit above the region, y=%v", y)
	}
	p.HidePrompt()
	if p.Visible() {
		t.Error("prompt still visible")
	}
}
