// Package screen 提供屏幕截图功能
package screen

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"

	"github.com/hd2m/hd2m/pkg/vision/cv"
)

// CaptureScreen 截取主屏幕
//
// 返回的图像尺寸即物理像素尺寸，可直接作为识别时的屏幕尺寸。
func CaptureScreen() (*image.RGBA, error) {
	img, err := robotgo.CaptureImg()
	if err != nil {
		return nil, fmt.Errorf("截屏失败: %w", err)
	}
	return cv.ToRGBA(img), nil
}

// GetScreenSize 获取主屏幕尺寸
func GetScreenSize() (width, height int) {
	return robotgo.GetScreenSize()
}

// GetDisplayCount 获取显示器数量
func GetDisplayCount() int {
	return robotgo.DisplaysNum()
}
