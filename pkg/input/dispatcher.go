// Package input 把指针点击分发到命名的命中区域。
package input

import (
	"log"
	"sort"

	"github.com/decker502/hitsync/pkg/animation"
	"github.com/decker502/hitsync/pkg/geom"
	"github.com/decker502/hitsync/pkg/hitbox"
	"github.com/solarlune/resolv"
)

const (
	tagHit    = "hit"
	tagProbe  = "probe"
	spaceCell = 32
	probeSize = 3 // 以点击位置为中心，保证落在区域边界上的点与区域共享网格
)

// TapHandler 点击命中某个区域时调用
type TapHandler func(id string, x, y int)

// MissHandler 点击没有命中任何区域时调用
type MissHandler func(x, y int)

// Dispatcher 输入分发器
//
// 装饰一个 hitbox.View：区域被放置或隐藏时同步维护 resolv 空间中的碰撞对象，
// 点击时先用空间网格做粗筛，再用矩形包含做精确判断。
type Dispatcher struct {
	next   hitbox.View
	logger animation.Logger

	space   *resolv.Space
	probe   *resolv.Object
	objects map[string]*resolv.Object
	rects   map[string]geom.Rect

	onTap  TapHandler
	onMiss MissHandler
}

var _ hitbox.View = (*Dispatcher)(nil)

// NewDispatcher 创建分发器，next 可以为 nil，logger 为 nil 时使用 log.Default()
func NewDispatcher(next hitbox.View, screenW, screenH int, logger animation.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	d := &Dispatcher{
		next:    next,
		logger:  logger,
		probe:   resolv.NewObject(0, 0, probeSize, probeSize, tagProbe),
		objects: make(map[string]*resolv.Object),
		rects:   make(map[string]geom.Rect),
	}
	d.space = newSpace(screenW, screenH)
	d.space.Add(d.probe)
	return d
}

func newSpace(w, h int) *resolv.Space {
	if w < spaceCell {
		w = spaceCell
	}
	if h < spaceCell {
		h = spaceCell
	}
	return resolv.NewSpace(w, h, spaceCell, spaceCell)
}

// OnTap 注册命中回调
func (d *Dispatcher) OnTap(fn TapHandler) {
	d.onTap = fn
}

// OnMiss 注册未命中回调
func (d *Dispatcher) OnMiss(fn MissHandler) {
	d.onMiss = fn
}

// Place 实现 hitbox.View
func (d *Dispatcher) Place(id string, p hitbox.Placement) {
	if d.next != nil {
		d.next.Place(id, p)
	}

	r := p.Hit
	d.rects[id] = r
	obj, ok := d.objects[id]
	if !ok {
		obj = resolv.NewObject(r.X, r.Y, r.Width, r.Height, tagHit)
		obj.Data = id
		d.objects[id] = obj
		d.space.Add(obj)
		return
	}
	obj.X, obj.Y, obj.W, obj.H = r.X, r.Y, r.Width, r.Height
	obj.Update()
}

// Hide 实现 hitbox.View
func (d *Dispatcher) Hide(id string) {
	if d.next != nil {
		d.next.Hide(id)
	}
	if obj, ok := d.objects[id]; ok {
		d.space.Remove(obj)
		delete(d.objects, id)
		delete(d.rects, id)
	}
}

// Resize 窗口尺寸变化时重建空间网格
func (d *Dispatcher) Resize(screenW, screenH int) {
	d.space = newSpace(screenW, screenH)
	d.space.Add(d.probe)
	for _, obj := range d.objects {
		d.space.Add(obj)
	}
}

// HitTest 返回包含该点的区域
// 多个区域重叠时角色命中区域优先，其余按标识排序取第一个
func (d *Dispatcher) HitTest(x, y float64) (string, bool) {
	d.probe.X, d.probe.Y = x-probeSize/2, y-probeSize/2
	d.probe.Update()

	check := d.probe.Check(0, 0, tagHit)
	if check == nil {
		return "", false
	}

	var hits []string
	for _, obj := range check.ObjectsByTags(tagHit) {
		id, ok := obj.Data.(string)
		if !ok {
			continue
		}
		if d.rects[id].Contains(x, y) {
			hits = append(hits, id)
		}
	}
	if len(hits) == 0 {
		return "", false
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i] == hitbox.TargetID {
			return true
		}
		if hits[j] == hitbox.TargetID {
			return false
		}
		return hits[i] < hits[j]
	})
	return hits[0], true
}

// Dispatch 分发一次点击
func (d *Dispatcher) Dispatch(x, y int) {
	id, ok := d.HitTest(float64(x), float64(y))
	if ok {
		d.logger.Printf("[InputDispatcher] Tap at (%d, %d) hit %s", x, y, id)
		if d.onTap != nil {
			d.onTap(id, x, y)
		}
		return
	}
	if d.onMiss != nil {
		d.onMiss(x, y)
	}
}

// Update 读取本帧的指针输入并分发
func (d *Dispatcher) Update() {
	if pressed, x, y := JustTouchedOrClicked(); pressed {
		d.Dispatch(x, y)
	}
}
