package cv

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
)

// ResizeNearestExact 按比例缩放灰度图（最近邻，像素中心对齐）
//
// 输出尺寸为 round(w*scale) x round(h*scale)，至少为 1x1。目标像素 dx 取源像素
// floor((dx+0.5)*srcW/dstW)，纵向同理，与 OpenCV INTER_NEAREST_EXACT 一致。
func ResizeNearestExact(src *image.Gray, scale float64) (*image.Gray, error) {
	if src == nil || src.Rect.Empty() {
		return nil, fmt.Errorf("%w: 灰度图为空", ErrImageDecode)
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("无效的缩放比例: %v", scale)
	}

	b := src.Bounds()
	w := max(int(math.Round(float64(b.Dx())*scale)), 1)
	h := max(int(math.Round(float64(b.Dy())*scale)), 1)

	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst, nil
	}
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst, nil
}
