package stratagem

import (
	"image"

	"github.com/hd2m/hd2m/internal/logger"
	"github.com/hd2m/hd2m/pkg/stratagem/search"
)

// 默认参数
const (
	// DefaultThreshold 方向融合阈值
	DefaultThreshold float32 = 0.9
	// DefaultWindowPadding 扫描带高度 = 模板高度 + DefaultWindowPadding
	DefaultWindowPadding = 10
	// DefaultDuplicatePadding 重复距离 = 模板宽度 + DefaultDuplicatePadding
	DefaultDuplicatePadding = 3
)

// DefaultBaseScreenSize 模板截取时的屏幕尺寸
var DefaultBaseScreenSize = image.Pt(2560, 1440)

// SearchOptions 识别参数
//
// 数值字段为零时使用默认值：阈值取 DefaultThreshold，
// 扫描带高度和重复距离由当前模板尺寸推导，模板缩放后自动更新。
type SearchOptions struct {
	Threshold         float32 `json:"threshold,omitempty"`
	WindowHeight      int     `json:"window_height,omitempty"`
	DuplicateDistance float64 `json:"duplicate_distance,omitempty"`
	// NoMask 不以模板作为掩码
	NoMask bool `json:"no_mask,omitempty"`
	// EdgeDetect 匹配前对帧和模板做 Canny 边缘提取
	EdgeDetect bool `json:"edge_detect,omitempty"`
}

// resolve 结合模板尺寸计算实际使用的阈值和提取参数
func (o SearchOptions) resolve(tmpl image.Point) (float32, search.ExtractOptions) {
	threshold := o.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	ext := search.ExtractOptions{
		WindowHeight:      tmpl.Y + DefaultWindowPadding,
		DuplicateDistance: float64(tmpl.X + DefaultDuplicatePadding),
	}
	if o.WindowHeight > 0 {
		ext.WindowHeight = o.WindowHeight
	}
	if o.DuplicateDistance > 0 {
		ext.DuplicateDistance = o.DuplicateDistance
	}
	return threshold, ext
}

// Option Manager 配置选项
type Option func(*Manager)

// WithWorkers 设置融合与行提取的并发数，<= 0 时使用 GOMAXPROCS
func WithWorkers(n int) Option {
	return func(m *Manager) {
		m.workers = n
	}
}

// WithLogger 设置日志记录器
func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}
