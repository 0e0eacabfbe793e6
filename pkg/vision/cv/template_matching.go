package cv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/hd2m/hd2m/pkg/vision/scoremap"
)

// MatchTemplate 在灰度源图像中计算模板的归一化互相关得分
//
// 默认以模板自身作为二值掩码，只有模板非零像素参与计算:
//
//	score = Σ S·T / sqrt(Σ S² · Σ T²)   (T ≠ 0)
//
// 返回矩阵形状为 (H-h+1, W-w+1)。
func MatchTemplate(source, tmpl gocv.Mat, opts MatchOptions) (*scoremap.Map, error) {
	if source.Empty() || tmpl.Empty() {
		return nil, fmt.Errorf("%w: 源图像或模板为空", ErrImageDecode)
	}
	if err := checkSourceLargerThanSearch(source, tmpl); err != nil {
		return nil, err
	}

	result := gocv.NewMat()
	defer result.Close()

	mask := tmpl
	if opts.NoMask {
		mask = gocv.NewMat()
		defer mask.Close()
	}
	gocv.MatchTemplate(source, tmpl, &result, gocv.TmCcorrNormed, mask)

	return resultToScoreMap(result)
}

// resultToScoreMap 复制 CV_32F 结果矩阵
func resultToScoreMap(result gocv.Mat) (*scoremap.Map, error) {
	rows, cols := result.Rows(), result.Cols()
	data, err := result.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("读取匹配结果失败: %w", err)
	}

	m := scoremap.New(rows, cols)
	copy(m.Data, data)
	m.Sanitize()
	return m, nil
}

// checkSourceLargerThanSearch 检查源图像是否不小于模板
func checkSourceLargerThanSearch(source, search gocv.Mat) error {
	if source.Rows() < search.Rows() || source.Cols() < search.Cols() {
		return &TemplateSizeError{
			SourceSize: [2]int{source.Cols(), source.Rows()},
			SearchSize: [2]int{search.Cols(), search.Rows()},
		}
	}
	return nil
}

// ResultShape 返回模板在源图像上匹配得到的矩阵形状 (rows, cols)
func ResultShape(source, tmpl image.Point) (rows, cols int) {
	return source.Y - tmpl.Y + 1, source.X - tmpl.X + 1
}
