package cv

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

// upGlyph 9x9 向上箭头，'#' 为亮像素
var upGlyph = []string{
	"....#....",
	"...#.#...",
	"..#...#..",
	".#.....#.",
	"#...#...#",
	"....#....",
	"....#....",
	"....#....",
	"....#....",
}

func glyphImage(rows []string) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, len(rows[0]), len(rows)))
	for y, row := range rows {
		for x, c := range row {
			if c == '#' {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// pasteGray 将 glyph 贴到黑色背景的 (x, y) 处
func pasteGray(w, h int, glyph *image.Gray, at image.Point) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, w, h))
	b := glyph.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.SetGray(at.X+x, at.Y+y, glyph.GrayAt(x, y))
		}
	}
	return dst
}

func mustMat(t *testing.T, img *image.Gray) gocv.Mat {
	t.Helper()
	mat, err := GrayImageToMat(img)
	if err != nil {
		t.Fatalf("GrayImageToMat 失败: %v", err)
	}
	return mat
}

func TestMatchTemplateShape(t *testing.T) {
	tests := []struct {
		name   string
		source image.Point
		tmpl   image.Point
	}{
		{"普通", image.Pt(20, 15), image.Pt(5, 4)},
		{"同尺寸", image.Pt(9, 9), image.Pt(9, 9)},
		{"单行", image.Pt(30, 4), image.Pt(3, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewGray(image.Rect(0, 0, tt.source.X, tt.source.Y))
			for i := range src.Pix {
				src.Pix[i] = uint8(i * 37 % 251)
			}
			tmpl := image.NewGray(image.Rect(0, 0, tt.tmpl.X, tt.tmpl.Y))
			for i := range tmpl.Pix {
				tmpl.Pix[i] = uint8(1 + i*13%200)
			}

			srcMat := mustMat(t, src)
			defer srcMat.Close()
			tmplMat := mustMat(t, tmpl)
			defer tmplMat.Close()

			scores, err := MatchTemplate(srcMat, tmplMat, MatchOptions{})
			if err != nil {
				t.Fatalf("MatchTemplate 失败: %v", err)
			}
			rows, cols := ResultShape(tt.source, tt.tmpl)
			if scores.Rows != rows || scores.Cols != cols {
				t.Errorf("形状 %dx%d, 期望 %dx%d", scores.Rows, scores.Cols, rows, cols)
			}
		})
	}
}

func TestMatchTemplateLocatesGlyph(t *testing.T) {
	glyph := glyphImage(upGlyph)
	at := image.Pt(7, 3)
	src := pasteGray(40, 24, glyph, at)

	srcMat := mustMat(t, src)
	defer srcMat.Close()
	tmplMat := mustMat(t, glyph)
	defer tmplMat.Close()

	for _, opts := range []MatchOptions{{}, {NoMask: true}} {
		scores, err := MatchTemplate(srcMat, tmplMat, opts)
		if err != nil {
			t.Fatalf("MatchTemplate 失败: %v", err)
		}

		v, y, x, ok := scores.Max()
		if !ok {
			t.Fatal("得分矩阵为空")
		}
		t.Logf("NoMask=%v 最佳位置 (%d, %d) 置信度 %.5f", opts.NoMask, x, y, v)
		if x != at.X || y != at.Y {
			t.Errorf("NoMask=%v 位置 (%d, %d), 期望 (%d, %d)", opts.NoMask, x, y, at.X, at.Y)
		}
		if v < 0.999 {
			t.Errorf("NoMask=%v 完全匹配的置信度过低: %v", opts.NoMask, v)
		}
	}
}

func TestMatchTemplateTooLarge(t *testing.T) {
	srcMat := mustMat(t, image.NewGray(image.Rect(0, 0, 8, 8)))
	defer srcMat.Close()
	tmplMat := mustMat(t, glyphImage(upGlyph))
	defer tmplMat.Close()

	_, err := MatchTemplate(srcMat, tmplMat, MatchOptions{})
	if !errors.Is(err, ErrTemplateLargerThanSource) {
		t.Fatalf("期望 ErrTemplateLargerThanSource, 实际 %v", err)
	}
	var sizeErr *TemplateSizeError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("期望 *TemplateSizeError, 实际 %T", err)
	}
	if sizeErr.SourceSize != [2]int{8, 8} || sizeErr.SearchSize != [2]int{9, 9} {
		t.Errorf("尺寸信息错误: %+v", sizeErr)
	}
}

func TestFrameToGray(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want uint8
	}{
		{"黑", color.RGBA{0, 0, 0, 255}, 0},
		{"白", color.RGBA{255, 255, 255, 255}, 255},
		{"灰", color.RGBA{128, 128, 128, 255}, 128},
		{"红", color.RGBA{255, 0, 0, 255}, 76},
		{"绿", color.RGBA{0, 255, 0, 255}, 150},
		{"蓝", color.RGBA{0, 0, 255, 255}, 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, 3, 2))
			for y := 0; y < 2; y++ {
				for x := 0; x < 3; x++ {
					img.SetRGBA(x, y, tt.c)
				}
			}

			gray, err := ToGrayImage(img)
			if err != nil {
				t.Fatalf("ToGrayImage 失败: %v", err)
			}
			if gray.Bounds().Dx() != 3 || gray.Bounds().Dy() != 2 {
				t.Fatalf("尺寸错误: %v", gray.Bounds())
			}
			if got := gray.GrayAt(2, 1).Y; got != tt.want {
				t.Errorf("亮度 %d, 期望 %d", got, tt.want)
			}
		})
	}
}

func TestFrameToGrayInvalid(t *testing.T) {
	if _, err := FrameToGray(nil); !errors.Is(err, ErrImageDecode) {
		t.Errorf("nil 图像应返回 ErrImageDecode, 实际 %v", err)
	}
	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if _, err := FrameToGray(empty); !errors.Is(err, ErrImageDecode) {
		t.Errorf("空图像应返回 ErrImageDecode, 实际 %v", err)
	}
}

func TestFrameToGraySubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	img.SetRGBA(6, 7, color.RGBA{255, 255, 255, 255})
	sub := img.SubImage(image.Rect(5, 5, 9, 9))

	gray, err := ToGrayImage(sub)
	if err != nil {
		t.Fatalf("ToGrayImage 失败: %v", err)
	}
	if gray.Bounds().Dx() != 4 || gray.GrayAt(1, 2).Y != 255 || gray.GrayAt(0, 0).Y != 0 {
		t.Errorf("子图转换结果错误: %v", gray.Pix)
	}
}

func TestResizeNearestExact(t *testing.T) {
	src := &image.Gray{
		Pix:    []uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
		Stride: 4,
		Rect:   image.Rect(0, 0, 4, 4),
	}
	small := &image.Gray{
		Pix:    []uint8{10, 20, 30, 40},
		Stride: 2,
		Rect:   image.Rect(0, 0, 2, 2),
	}

	tests := []struct {
		name  string
		src   *image.Gray
		scale float64
		want  []uint8
		w, h  int
	}{
		{"不变", small, 1, []uint8{10, 20, 30, 40}, 2, 2},
		{"放大两倍", small, 2, []uint8{
			10, 10, 20, 20,
			10, 10, 20, 20,
			30, 30, 40, 40,
			30, 30, 40, 40,
		}, 4, 4},
		{"缩小一半", src, 0.5, []uint8{5, 7, 13, 15}, 2, 2},
		{"放大 1.5 倍", small, 1.5, []uint8{
			10, 20, 20,
			30, 40, 40,
			30, 40, 40,
		}, 3, 3},
		{"最小 1x1", small, 0.1, []uint8{40}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResizeNearestExact(tt.src, tt.scale)
			if err != nil {
				t.Fatalf("ResizeNearestExact 失败: %v", err)
			}
			if got.Bounds().Dx() != tt.w || got.Bounds().Dy() != tt.h {
				t.Fatalf("尺寸 %v, 期望 %dx%d", got.Bounds(), tt.w, tt.h)
			}
			for i, v := range tt.want {
				x, y := i%tt.w, i/tt.w
				if g := got.GrayAt(x, y).Y; g != v {
					t.Errorf("(%d, %d) = %d, 期望 %d", x, y, g, v)
				}
			}
		})
	}
}

func TestResizeNearestExactInvalid(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	for _, scale := range []float64{0, -1} {
		if _, err := ResizeNearestExact(img, scale); err == nil {
			t.Errorf("scale=%v 应返回错误", scale)
		}
	}
	if _, err := ResizeNearestExact(nil, 1); !errors.Is(err, ErrImageDecode) {
		t.Errorf("nil 图像应返回 ErrImageDecode, 实际 %v", err)
	}
}

func TestDetectEdges(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 10; y < 22; y++ {
		for x := 10; x < 22; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	mat := mustMat(t, img)
	defer mat.Close()

	edges := DetectEdges(mat)
	defer edges.Close()

	if edges.Rows() != 32 || edges.Cols() != 32 {
		t.Fatalf("边缘图尺寸 %dx%d", edges.Rows(), edges.Cols())
	}
	if n := gocv.CountNonZero(edges); n == 0 {
		t.Error("方块边缘未被检测到")
	} else {
		t.Logf("边缘像素数量: %d", n)
	}
}

func TestReadWriteImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 6, 4))
	img.SetRGBA(2, 1, color.RGBA{200, 100, 50, 255})

	mat, err := RGBAToMat(img)
	if err != nil {
		t.Fatalf("RGBAToMat 失败: %v", err)
	}
	defer mat.Close()
	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(mat, &bgr, gocv.ColorRGBAToBGR)

	path := filepath.Join(t.TempDir(), "out", "frame.png")
	if err := WriteImage(path, bgr); err != nil {
		t.Fatalf("WriteImage 失败: %v", err)
	}

	loaded, err := ReadImage(path)
	if err != nil {
		t.Fatalf("ReadImage 失败: %v", err)
	}
	if loaded.Bounds().Dx() != 6 || loaded.Bounds().Dy() != 4 {
		t.Fatalf("尺寸错误: %v", loaded.Bounds())
	}
	if c := loaded.RGBAAt(2, 1); c != (color.RGBA{200, 100, 50, 255}) {
		t.Errorf("像素颜色 %v", c)
	}
}
