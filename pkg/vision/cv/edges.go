package cv

import (
	"image"

	"gocv.io/x/gocv"
)

// Canny 边缘检测参数
const (
	EdgeBlurSize      = 3
	EdgeLowThreshold  = 150
	EdgeHighThreshold = 300
)

// DetectEdges 对灰度图做 3x3 高斯模糊后提取 Canny 边缘
//
// 返回的 Mat 由调用方负责 Close。
func DetectEdges(gray gocv.Mat) gocv.Mat {
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(EdgeBlurSize, EdgeBlurSize), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	gocv.Canny(blurred, &edges, EdgeLowThreshold, EdgeHighThreshold)
	return edges
}
