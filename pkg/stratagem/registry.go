package stratagem

import (
	"fmt"
	"image"
	"slices"
	"sync"
)

// Registry 按屏幕尺寸缓存缩放后的模板
//
// 缩放比例为 screenWidth / baseWidth，条目创建后不再修改也不会被淘汰。
type Registry struct {
	mu        sync.RWMutex
	base      image.Point
	originals *TemplateSet
	sets      map[image.Point]*TemplateSet
	active    image.Point
	hasActive bool
}

// NewRegistry 创建模板注册表，base 为模板截取时的屏幕尺寸
func NewRegistry(originals *TemplateSet, base image.Point) (*Registry, error) {
	if originals == nil {
		return nil, fmt.Errorf("%w: 模板为空", ErrResizeFailed)
	}
	if base.X <= 0 || base.Y <= 0 {
		return nil, fmt.Errorf("%w: 无效的基准屏幕尺寸 %dx%d", ErrResizeFailed, base.X, base.Y)
	}
	return &Registry{
		base:      base,
		originals: originals,
		sets:      make(map[image.Point]*TemplateSet),
	}, nil
}

// UseScreenSize 切换到指定屏幕尺寸，必要时生成缩放模板
//
// 返回的 created 表示本次调用是否新建了条目。
func (r *Registry) UseScreenSize(w, h int) (created bool, err error) {
	if w <= 0 || h <= 0 {
		return false, fmt.Errorf("%w: 无效的屏幕尺寸 %dx%d", ErrResizeFailed, w, h)
	}
	key := image.Pt(w, h)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sets[key]; !ok {
		scale := float64(w) / float64(r.base.X)
		set, err := r.originals.Scale(scale)
		if err != nil {
			return false, err
		}
		r.sets[key] = set
		created = true
	}
	r.active = key
	r.hasActive = true
	return created, nil
}

// Active 返回当前屏幕尺寸及其模板
func (r *Registry) Active() (image.Point, *TemplateSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.hasActive {
		return image.Point{}, nil, ErrNoActiveScreenSize
	}
	set, ok := r.sets[r.active]
	if !ok {
		return r.active, nil, fmt.Errorf("%w: %dx%d", ErrMissingScale, r.active.X, r.active.Y)
	}
	return r.active, set, nil
}

// Lookup 返回指定屏幕尺寸的模板
func (r *Registry) Lookup(w, h int) (*TemplateSet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.sets[image.Pt(w, h)]
	return set, ok
}

// Sizes 返回已注册的屏幕尺寸（按宽、高排序）
func (r *Registry) Sizes() []image.Point {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sizes := make([]image.Point, 0, len(r.sets))
	for k := range r.sets {
		sizes = append(sizes, k)
	}
	slices.SortFunc(sizes, func(a, b image.Point) int {
		if a.X != b.X {
			return a.X - b.X
		}
		return a.Y - b.Y
	})
	return sizes
}

// Base 返回基准屏幕尺寸
func (r *Registry) Base() image.Point {
	return r.base
}
