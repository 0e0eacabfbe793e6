// Package stratagem 从游戏画面中识别战备指令
//
// 流程: RGBA 帧 -> 灰度 -> 四个方向模板并行匹配 -> 逐像素融合 -> 行提取。
//
//	m, err := stratagem.NewManager(stratagem.ManagerConfig{
//	    TemplateUp: up, TemplateDown: down, TemplateRight: right, TemplateLeft: left,
//	    BaseScreenSize: image.Pt(2560, 1440),
//	})
//	rows, err := m.Run(frame, 1920, 1080)
//	for _, row := range rows {
//	    fmt.Println(row)
//	}
package stratagem

import (
	"fmt"
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"github.com/hd2m/hd2m/internal/logger"
	"github.com/hd2m/hd2m/pkg/stratagem/search"
	"github.com/hd2m/hd2m/pkg/vision/cv"
	"github.com/hd2m/hd2m/pkg/vision/scoremap"
)

// ManagerConfig 识别器配置
type ManagerConfig struct {
	TemplateUp    image.Image
	TemplateDown  image.Image
	TemplateRight image.Image
	TemplateLeft  image.Image
	// BaseScreenSize 模板截取时的屏幕尺寸，零值为 2560x1440
	BaseScreenSize image.Point
	Search         SearchOptions
}

// Manager 战备指令识别器
//
// Run 与 UseScreenSize 可以并发调用；同一尺寸的模板只会生成一次。
type Manager struct {
	registry *Registry
	mu       sync.RWMutex
	opts     SearchOptions
	workers  int
	log      *logger.Logger
}

// NewManager 使用四张 RGBA 模板创建识别器
func NewManager(cfg ManagerConfig, opts ...Option) (*Manager, error) {
	set, err := NewTemplateSet(cfg.TemplateUp, cfg.TemplateDown, cfg.TemplateRight, cfg.TemplateLeft)
	if err != nil {
		return nil, err
	}
	return NewManagerWithTemplates(set, cfg.BaseScreenSize, cfg.Search, opts...)
}

// NewManagerWithTemplates 使用已加载的模板组创建识别器
func NewManagerWithTemplates(set *TemplateSet, base image.Point, searchOpts SearchOptions, opts ...Option) (*Manager, error) {
	if base == (image.Point{}) {
		base = DefaultBaseScreenSize
	}
	registry, err := NewRegistry(set, base)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		registry: registry,
		opts:     searchOpts,
		log:      logger.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// UseScreenSize 切换到指定屏幕尺寸，首次使用时按比例缩放模板
func (m *Manager) UseScreenSize(w, h int) error {
	created, err := m.registry.UseScreenSize(w, h)
	if err != nil {
		return err
	}
	if set, ok := m.registry.Lookup(w, h); created && ok {
		size := set.Size()
		m.log.Info("注册屏幕尺寸 %dx%d, 模板 %dx%d", w, h, size.X, size.Y)
	}
	return nil
}

// SetSearchOptions 替换识别参数，零值字段恢复默认
func (m *Manager) SetSearchOptions(opts SearchOptions) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts = opts
}

// SearchOptions 返回当前识别参数
func (m *Manager) SearchOptions() SearchOptions {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.opts
}

// ActiveTemplateSize 返回当前屏幕尺寸下的模板尺寸
func (m *Manager) ActiveTemplateSize() (image.Point, error) {
	_, set, err := m.registry.Active()
	if err != nil {
		return image.Point{}, err
	}
	return set.Size(), nil
}

// Registry 返回模板注册表
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Run 切换到 (w, h) 后识别帧中的全部指令行
func (m *Manager) Run(frame image.Image, w, h int) ([]search.Sequence, error) {
	if err := m.UseScreenSize(w, h); err != nil {
		return nil, err
	}
	// 直接按 (w, h) 取模板，避免并发调用切换当前尺寸
	set, ok := m.registry.Lookup(w, h)
	if !ok {
		return nil, fmt.Errorf("%w: %dx%d", ErrMissingScale, w, h)
	}
	return m.match(frame, set)
}

// RunMatch 使用当前屏幕尺寸的模板识别帧
func (m *Manager) RunMatch(frame image.Image) ([]search.Sequence, error) {
	_, set, err := m.registry.Active()
	if err != nil {
		m.log.LogEvent("MTCH", false, 0, err.Error())
		return nil, err
	}
	return m.match(frame, set)
}

func (m *Manager) match(frame image.Image, set *TemplateSet) ([]search.Sequence, error) {
	start := time.Now()

	seqs, err := m.runMatch(frame, set)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		m.log.LogEvent("MTCH", false, elapsed, err.Error())
		return nil, err
	}
	m.log.LogEvent("MTCH", true, elapsed, fmt.Sprintf("识别到 %d 行", len(seqs)))
	return seqs, nil
}

func (m *Manager) runMatch(frame image.Image, set *TemplateSet) ([]search.Sequence, error) {
	opts := m.SearchOptions()
	threshold, ext := opts.resolve(set.Size())
	ext.Workers = m.workers

	gray, err := cv.FrameToGray(frame)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	source := gray
	if opts.EdgeDetect {
		edges := cv.DetectEdges(gray)
		defer edges.Close()
		source = edges
	}

	var maps [4]*scoremap.Map
	var g errgroup.Group
	for _, d := range search.Directions {
		g.Go(func() error {
			scores, err := matchDirection(source, set.Get(d), opts)
			if err != nil {
				return fmt.Errorf("匹配 %s 模板失败: %w", d, err)
			}
			maps[d] = scores
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return search.FindDirectionCommands(
		maps[search.Up], maps[search.Down], maps[search.Right], maps[search.Left],
		threshold, ext)
}

func matchDirection(source gocv.Mat, tmpl *image.Gray, opts SearchOptions) (*scoremap.Map, error) {
	gray, err := cv.GrayImageToMat(tmpl)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	mat := gray
	if opts.EdgeDetect {
		edges := cv.DetectEdges(gray)
		defer edges.Close()
		mat = edges
	}
	return cv.MatchTemplate(source, mat, cv.MatchOptions{NoMask: opts.NoMask})
}
