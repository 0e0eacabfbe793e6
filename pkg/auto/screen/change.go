package screen

import (
	"image"
	"sync"

	"github.com/corona10/goimagehash"
)

// hashSide 差异哈希的边长，32x32 共 1024 位
const hashSide = 32

// FrameFilter 通过差异哈希跳过与上一帧相近的截图
type FrameFilter struct {
	mu          sync.Mutex
	maxDistance int
	last        *goimagehash.ExtImageHash
}

// NewFrameFilter 创建帧过滤器，汉明距离 <= maxDistance 视为未变化
func NewFrameFilter(maxDistance int) *FrameFilter {
	return &FrameFilter{maxDistance: max(maxDistance, 0)}
}

// Changed 判断帧是否与上一次记录的帧不同，变化时更新记录
//
// 哈希计算失败时视为已变化。
func (f *FrameFilter) Changed(img image.Image) bool {
	hash, err := goimagehash.ExtDifferenceHash(img, hashSide, hashSide)
	if err != nil {
		return true
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.last == nil {
		f.last = hash
		return true
	}
	dist, err := f.last.Distance(hash)
	if err == nil && dist <= f.maxDistance {
		return false
	}
	f.last = hash
	return true
}

// Reset 清除记录，下一帧总是视为变化
func (f *FrameFilter) Reset() {
	f.mu.Lock()
	f.last = nil
	f.mu.Unlock()
}
