package screen

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/go-vgo/robotgo"
)

// SaveFrame 将截图保存为 PNG，用于离线调参
func SaveFrame(img image.Image, path string) error {
	if img == nil {
		return fmt.Errorf("图像为空")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	if err := robotgo.SavePng(img, path); err != nil {
		return fmt.Errorf("PNG 保存失败: %w", err)
	}
	return nil
}
