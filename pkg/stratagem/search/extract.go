package search

import (
	"image"
	"math"
	"strings"
)

// DirectionDescriptor 单个已识别的方向箭头
//
// Position 为模板匹配窗口左上角在源图像中的坐标。
type DirectionDescriptor struct {
	Direction  Direction   `json:"direction"`
	Position   image.Point `json:"position"`
	Confidence float32     `json:"confidence"`
}

// Sequence 一行战备指令，按从左到右排列
type Sequence []DirectionDescriptor

// Directions 返回指令的方向序列
func (s Sequence) Directions() []Direction {
	dirs := make([]Direction, len(s))
	for i, d := range s {
		dirs[i] = d.Direction
	}
	return dirs
}

// String 以箭头形式输出指令
func (s Sequence) String() string {
	var b strings.Builder
	for i, d := range s {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(d.Direction.Symbol())
	}
	return b.String()
}

// ExtractOptions 行提取参数
type ExtractOptions struct {
	// WindowHeight 扫描带高度（行数），小于 1 时按 1 处理
	WindowHeight int
	// DuplicateDistance 同方向两次命中的最小欧氏距离
	DuplicateDistance float64
	// Workers 并发扫描带的 goroutine 数，<= 0 时使用 GOMAXPROCS
	Workers int
}

// DefaultExtractOptions 根据模板尺寸计算默认提取参数
func DefaultExtractOptions(templateWidth, templateHeight int) ExtractOptions {
	return ExtractOptions{
		WindowHeight:      templateHeight + 10,
		DuplicateDistance: float64(templateWidth + 3),
	}
}

// ExtractSequences 从方向矩阵中提取指令行
//
// 每个起始行 y 构成一个高度为 WindowHeight 的扫描带，带内逐列取第一个
// 命中单元，并丢弃与同方向上次命中距离过近的结果。各扫描带的命中数量
// 构成直方图，只有局部峰值（hist[y] >= hist[y-1] && hist[y] > hist[y+1]）
// 所在的扫描带会被输出，结果按 y 递增排列。
func ExtractSequences(fused *FusedMap, opts ExtractOptions) []Sequence {
	result := []Sequence{}
	if fused == nil || fused.Rows == 0 || fused.Cols == 0 {
		return result
	}

	window := max(opts.WindowHeight, 1)
	if fused.Rows < window {
		return result
	}

	bands := make([]Sequence, fused.Rows-window+1)
	parallelRange(len(bands), opts.Workers, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			bands[y] = collectBand(fused, y, window, opts.DuplicateDistance)
		}
	})

	for y := range bands {
		if isPeak(bands, y) {
			result = append(result, bands[y])
		}
	}
	return result
}

// collectBand 扫描起始行为 y 的扫描带
func collectBand(fused *FusedMap, y, window int, duplicateDistance float64) Sequence {
	var (
		seq      Sequence
		lastSeen [4]image.Point
		seen     [4]bool
	)

	for x := 0; x < fused.Cols; x++ {
		for k := 0; k < window; k++ {
			cell := fused.At(y+k, x)
			if !cell.Found {
				continue
			}

			pos := image.Pt(x, y+k)
			d := cell.Direction
			if !seen[d] || distance(lastSeen[d], pos) >= duplicateDistance {
				seq = append(seq, DirectionDescriptor{
					Direction:  d,
					Position:   pos,
					Confidence: cell.Confidence,
				})
				lastSeen[d] = pos
				seen[d] = true
			}
			// 每列只取第一个命中
			break
		}
	}
	return seq
}

func isPeak(bands []Sequence, y int) bool {
	cur := len(bands[y])
	prev, next := 0, 0
	if y > 0 {
		prev = len(bands[y-1])
	}
	if y+1 < len(bands) {
		next = len(bands[y+1])
	}
	return cur >= prev && cur > next
}

func distance(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}
