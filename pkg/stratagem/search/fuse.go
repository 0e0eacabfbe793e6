package search

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hd2m/hd2m/pkg/vision/scoremap"
)

// ErrShapeMismatch 四张得分矩阵形状不一致
var ErrShapeMismatch = errors.New("得分矩阵形状不一致")

// Cell 融合后的单个像素
//
// Found 为 false 表示该位置没有任何方向达到阈值。
type Cell struct {
	Direction  Direction
	Confidence float32
	Found      bool
}

// FusedMap 融合后的方向矩阵（行优先）
type FusedMap struct {
	Rows  int
	Cols  int
	Cells []Cell
}

// NewFusedMap 创建空的方向矩阵
func NewFusedMap(rows, cols int) *FusedMap {
	return &FusedMap{Rows: rows, Cols: cols, Cells: make([]Cell, rows*cols)}
}

// At 返回 (y, x) 处的单元
func (f *FusedMap) At(y, x int) Cell {
	return f.Cells[y*f.Cols+x]
}

// Set 设置 (y, x) 处的单元
func (f *FusedMap) Set(y, x int, c Cell) {
	f.Cells[y*f.Cols+x] = c
}

// Fuse 将四个方向的得分矩阵逐像素融合为方向矩阵
//
// 每个像素取四个得分的最大值，低于 threshold 时为空；
// 多个方向得分相同时按 Up、Right、Down、Left 的顺序取第一个。
// 行被均分给 workers 个 goroutine，workers <= 0 时使用 GOMAXPROCS。
func Fuse(up, down, right, left *scoremap.Map, threshold float32, workers int) (*FusedMap, error) {
	var maps [4]*scoremap.Map
	maps[Up], maps[Right], maps[Down], maps[Left] = up, right, down, left

	for _, d := range Directions {
		if maps[d] == nil {
			return nil, fmt.Errorf("%w: %s 得分矩阵为空", ErrShapeMismatch, d)
		}
	}
	for _, d := range Directions[1:] {
		if !maps[d].SameShape(maps[Up]) {
			return nil, fmt.Errorf("%w: %s %dx%d, Up %dx%d", ErrShapeMismatch,
				d, maps[d].Rows, maps[d].Cols, maps[Up].Rows, maps[Up].Cols)
		}
	}

	rows, cols := maps[Up].Rows, maps[Up].Cols
	fused := NewFusedMap(rows, cols)

	parallelRange(rows, workers, func(lo, hi int) {
		for i := lo * cols; i < hi*cols; i++ {
			fused.Cells[i] = fuseCell(&maps, i, threshold)
		}
	})

	return fused, nil
}

func fuseCell(maps *[4]*scoremap.Map, i int, threshold float32) Cell {
	var best Cell
	for _, d := range Directions {
		s := maps[d].Data[i]
		if math.IsNaN(float64(s)) {
			continue
		}
		// 严格大于保证平局时保留优先级更高的方向
		if !best.Found || s > best.Confidence {
			best = Cell{Direction: d, Confidence: s, Found: true}
		}
	}
	if !best.Found || best.Confidence < threshold {
		return Cell{}
	}
	return best
}

// parallelRange 将 [0, n) 切分为连续区间并发执行
func parallelRange(n, workers int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers == 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}
