package stratagem

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"gocv.io/x/gocv"

	"github.com/hd2m/hd2m/pkg/stratagem/search"
	"github.com/hd2m/hd2m/pkg/vision/cv"
)

// DirectionColors 标注框颜色
var DirectionColors = [4]color.RGBA{
	search.Up:    {0, 255, 0, 255},
	search.Right: {0, 0, 255, 255},
	search.Down:  {255, 0, 0, 255},
	search.Left:  {255, 255, 0, 255},
}

// Annotate 在帧上为每个识别结果绘制矩形框和行号
//
// 返回 BGR 格式的 Mat，由调用方负责 Close。
func Annotate(frame image.Image, rows []search.Sequence, tmplSize image.Point) (gocv.Mat, error) {
	rgba, err := cv.RGBAToMat(frame)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer rgba.Close()

	img := gocv.NewMat()
	gocv.CvtColor(rgba, &img, gocv.ColorRGBAToBGR)

	for i, row := range rows {
		for _, d := range row {
			rect := image.Rectangle{Min: d.Position, Max: d.Position.Add(tmplSize)}
			gocv.Rectangle(&img, rect, DirectionColors[d.Direction], 1)
		}
		if len(row) > 0 {
			// 行号写在首个箭头上方
			org := row[0].Position.Add(image.Pt(0, -4))
			gocv.PutText(&img, strconv.Itoa(i+1), org, gocv.FontHersheySimplex, 0.4,
				color.RGBA{255, 255, 255, 255}, 1)
		}
	}
	return img, nil
}

// SaveAnnotated 绘制标注并保存为图像文件
func SaveAnnotated(filename string, frame image.Image, rows []search.Sequence, tmplSize image.Point) error {
	img, err := Annotate(frame, rows, tmplSize)
	if err != nil {
		return fmt.Errorf("绘制标注失败: %w", err)
	}
	defer img.Close()
	return cv.WriteImage(filename, img)
}
