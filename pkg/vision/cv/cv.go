// Package cv 提供战备箭头识别所需的图像处理功能
//
// 包含以下能力:
//   - RGBA 帧转灰度 (FrameToGray / ToGrayImage)
//   - 像素中心对齐的最近邻缩放 (ResizeNearestExact)
//   - 以模板为掩码的归一化互相关匹配 (MatchTemplate)
//   - 可选的 Canny 边缘预处理 (DetectEdges)
//
// 基本用法:
//
//	frame, _ := cv.FrameToGray(img)
//	defer frame.Close()
//
//	tmpl, _ := cv.GrayImageToMat(upArrow)
//	defer tmpl.Close()
//
//	scores, err := cv.MatchTemplate(frame, tmpl, cv.MatchOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, y, x, _ := scores.Max()
//	fmt.Printf("最佳位置: (%d, %d) 置信度 %.3f\n", x, y, v)
package cv
