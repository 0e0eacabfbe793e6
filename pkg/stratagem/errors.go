package stratagem

import (
	"errors"

	"github.com/hd2m/hd2m/pkg/stratagem/search"
	"github.com/hd2m/hd2m/pkg/vision/cv"
)

var (
	// ErrNoActiveScreenSize 尚未调用 UseScreenSize
	ErrNoActiveScreenSize = errors.New("尚未设置屏幕尺寸")
	// ErrMissingScale 当前屏幕尺寸没有已注册的模板
	ErrMissingScale = errors.New("当前屏幕尺寸的模板未注册")
	// ErrResizeFailed 模板缩放失败或屏幕尺寸无效
	ErrResizeFailed = errors.New("模板缩放失败")
	// ErrTemplateSizeMismatch 四个方向的模板尺寸不一致
	ErrTemplateSizeMismatch = errors.New("模板尺寸不一致")
)

// 下层包的错误，便于调用方只依赖本包做 errors.Is 判断
var (
	ErrShapeMismatch            = search.ErrShapeMismatch
	ErrTemplateLargerThanSource = cv.ErrTemplateLargerThanSource
	ErrImageDecode              = cv.ErrImageDecode
)
