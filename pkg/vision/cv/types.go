package cv

import "errors"

var (
	// ErrTemplateLargerThanSource 模板尺寸大于源图像
	ErrTemplateLargerThanSource = errors.New("模板尺寸大于源图像")
	// ErrImageDecode 图像数据无效或无法转换
	ErrImageDecode = errors.New("图像数据无效")
)

// MatchOptions 模板匹配选项
type MatchOptions struct {
	// NoMask 不使用模板作为掩码，按整个窗口计算相关系数
	NoMask bool
}

// TemplateSizeError 模板尺寸错误
type TemplateSizeError struct {
	SourceSize [2]int // 宽, 高
	SearchSize [2]int // 宽, 高
}

func (e *TemplateSizeError) Error() string {
	return "模板尺寸大于源图像"
}

// Is 使 errors.Is(err, ErrTemplateLargerThanSource) 成立
func (e *TemplateSizeError) Is(target error) bool {
	return target == ErrTemplateLargerThanSource
}
