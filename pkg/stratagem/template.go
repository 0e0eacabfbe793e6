package stratagem

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/hd2m/hd2m/pkg/stratagem/search"
	"github.com/hd2m/hd2m/pkg/vision/cv"
)

// TemplateSet 四个方向的灰度模板，尺寸一致
type TemplateSet struct {
	images [4]*image.Gray
}

// NewTemplateSet 从四张 RGBA 模板创建模板组
func NewTemplateSet(up, down, right, left image.Image) (*TemplateSet, error) {
	var src [4]image.Image
	src[search.Up], src[search.Down], src[search.Right], src[search.Left] = up, down, right, left

	var images [4]*image.Gray
	for _, d := range search.Directions {
		gray, err := cv.ToGrayImage(src[d])
		if err != nil {
			return nil, fmt.Errorf("转换 %s 模板失败: %w", d, err)
		}
		images[d] = gray
	}
	return newTemplateSet(images)
}

func newTemplateSet(images [4]*image.Gray) (*TemplateSet, error) {
	size := images[search.Up].Bounds().Size()
	for _, d := range search.Directions[1:] {
		if s := images[d].Bounds().Size(); s != size {
			return nil, fmt.Errorf("%w: %s %dx%d, Up %dx%d", ErrTemplateSizeMismatch, d, s.X, s.Y, size.X, size.Y)
		}
	}
	return &TemplateSet{images: images}, nil
}

// Get 返回指定方向的模板
func (s *TemplateSet) Get(d search.Direction) *image.Gray {
	return s.images[d]
}

// Size 返回模板尺寸
func (s *TemplateSet) Size() image.Point {
	return s.images[search.Up].Bounds().Size()
}

// Scale 按比例缩放全部模板
func (s *TemplateSet) Scale(factor float64) (*TemplateSet, error) {
	var images [4]*image.Gray
	for _, d := range search.Directions {
		resized, err := cv.ResizeNearestExact(s.images[d], factor)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrResizeFailed, d, err)
		}
		images[d] = resized
	}
	return newTemplateSet(images)
}

// LoadTemplateDir 从目录读取 up.png、down.png、right.png、left.png
func LoadTemplateDir(dir string) (*TemplateSet, error) {
	var src [4]image.Image
	for _, d := range search.Directions {
		path := filepath.Join(dir, strings.ToLower(d.String())+".png")
		img, err := cv.ReadImage(path)
		if err != nil {
			return nil, fmt.Errorf("加载 %s 模板失败: %w", d, err)
		}
		src[d] = img
	}
	return NewTemplateSet(src[search.Up], src[search.Down], src[search.Right], src[search.Left])
}
