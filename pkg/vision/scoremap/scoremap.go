// Package scoremap 定义模板匹配得分矩阵
//
// 该包不依赖 OpenCV，检索与融合逻辑可以在纯 Go 环境下测试。
package scoremap

import (
	"errors"
	"fmt"
	"math"
)

// ErrDataLength 数据长度与形状不一致
var ErrDataLength = errors.New("得分数据长度与形状不一致")

// Map 二维得分矩阵（行优先）
//
// Map 的形状为 (H-h+1, W-w+1)，(y, x) 处的得分表示模板左上角
// 放在源图像 (x, y) 时的相关系数。
type Map struct {
	Rows int
	Cols int
	Data []float32
}

// New 创建全零得分矩阵
func New(rows, cols int) *Map {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &Map{Rows: rows, Cols: cols, Data: make([]float32, rows*cols)}
}

// FromSlice 使用已有数据创建得分矩阵，数据不会被复制
func FromSlice(rows, cols int, data []float32) (*Map, error) {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %dx%d, len=%d", ErrDataLength, rows, cols, len(data))
	}
	return &Map{Rows: rows, Cols: cols, Data: data}, nil
}

// FromRows 从二维切片创建得分矩阵，主要用于测试
func FromRows(rows [][]float32) (*Map, error) {
	if len(rows) == 0 {
		return New(0, 0), nil
	}
	cols := len(rows[0])
	m := New(len(rows), cols)
	for y, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: 第 %d 行长度 %d, 期望 %d", ErrDataLength, y, len(row), cols)
		}
		copy(m.Data[y*cols:], row)
	}
	return m, nil
}

// At 返回 (y, x) 处的得分
func (m *Map) At(y, x int) float32 {
	return m.Data[y*m.Cols+x]
}

// Set 设置 (y, x) 处的得分
func (m *Map) Set(y, x int, v float32) {
	m.Data[y*m.Cols+x] = v
}

// Empty 判断矩阵是否为空
func (m *Map) Empty() bool {
	return m == nil || m.Rows == 0 || m.Cols == 0
}

// SameShape 判断两个矩阵形状是否一致
func (m *Map) SameShape(o *Map) bool {
	return m.Rows == o.Rows && m.Cols == o.Cols
}

// Sanitize 将 NaN 和 Inf 替换为 0
//
// 模板掩码覆盖区域全黑时归一化分母为 0，OpenCV 会得到 NaN。
func (m *Map) Sanitize() {
	for i, v := range m.Data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			m.Data[i] = 0
		}
	}
}

// Max 返回最大得分及其位置，空矩阵返回 ok=false
func (m *Map) Max() (v float32, y, x int, ok bool) {
	if m.Empty() {
		return 0, 0, 0, false
	}
	v = float32(math.Inf(-1))
	for i, s := range m.Data {
		if s > v {
			v = s
			y, x = i/m.Cols, i%m.Cols
			ok = true
		}
	}
	return v, y, x, ok
}
