package cv

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"

	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
)

// ReadImage 读取图像文件为 RGBA
func ReadImage(filename string) (*image.RGBA, error) {
	mat := gocv.IMRead(filename, gocv.IMReadColor)
	if mat.Empty() {
		return nil, fmt.Errorf("无法读取图像: %s", filename)
	}
	defer mat.Close()

	rgba := gocv.NewMat()
	defer rgba.Close()
	gocv.CvtColor(mat, &rgba, gocv.ColorBGRToRGBA)

	return &image.RGBA{
		Pix:    rgba.ToBytes(),
		Stride: rgba.Cols() * 4,
		Rect:   image.Rect(0, 0, rgba.Cols(), rgba.Rows()),
	}, nil
}

// WriteImage 保存图像文件
func WriteImage(filename string, img gocv.Mat) error {
	// 确保目录存在
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	if ok := gocv.IMWrite(filename, img); !ok {
		return fmt.Errorf("保存图像失败: %s", filename)
	}
	return nil
}

// ToRGBA 将任意图像转换为从 (0,0) 开始、紧凑排列的 RGBA
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// RGBAToMat 将 RGBA 图像转换为 4 通道 Mat（通道顺序 RGBA）
func RGBAToMat(img image.Image) (gocv.Mat, error) {
	if img == nil {
		return gocv.NewMat(), fmt.Errorf("%w: 图像为空", ErrImageDecode)
	}
	rgba := ToRGBA(img)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	if w == 0 || h == 0 || len(rgba.Pix) < w*h*4 {
		return gocv.NewMat(), fmt.Errorf("%w: 尺寸 %dx%d, 数据长度 %d", ErrImageDecode, w, h, len(rgba.Pix))
	}

	view, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, rgba.Pix[:w*h*4])
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	defer view.Close()

	// view 与 Go 切片共享内存，复制后再返回
	mat := view.Clone()
	runtime.KeepAlive(rgba.Pix)
	return mat, nil
}

// FrameToGray 将 RGBA 帧转换为单通道灰度 Mat
//
// 使用标准亮度公式 Y = 0.299R + 0.587G + 0.114B。
func FrameToGray(img image.Image) (gocv.Mat, error) {
	rgba, err := RGBAToMat(img)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer rgba.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(rgba, &gray, gocv.ColorRGBAToGray)
	return gray, nil
}

// ToGrayImage 将图像转换为 *image.Gray，亮度公式与 FrameToGray 一致
func ToGrayImage(img image.Image) (*image.Gray, error) {
	gray, err := FrameToGray(img)
	if err != nil {
		return nil, err
	}
	defer gray.Close()
	return MatToGrayImage(gray)
}

// GrayImageToMat 将 *image.Gray 转换为单通道 Mat
func GrayImageToMat(img *image.Gray) (gocv.Mat, error) {
	if img == nil || img.Rect.Empty() {
		return gocv.NewMat(), fmt.Errorf("%w: 灰度图为空", ErrImageDecode)
	}
	mat, err := gocv.ImageGrayToMatGray(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return mat, nil
}

// MatToGrayImage 将单通道 Mat 转换为 *image.Gray
func MatToGrayImage(mat gocv.Mat) (*image.Gray, error) {
	if mat.Empty() || mat.Channels() != 1 {
		return nil, fmt.Errorf("%w: 需要单通道 Mat, 实际 %d 通道", ErrImageDecode, mat.Channels())
	}
	w, h := mat.Cols(), mat.Rows()
	return &image.Gray{
		Pix:    mat.ToBytes(),
		Stride: w,
		Rect:   image.Rect(0, 0, w, h),
	}, nil
}
