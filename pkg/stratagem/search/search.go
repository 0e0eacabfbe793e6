// Package search 将四个方向的模板匹配得分转换为战备指令行
//
// 处理分两步:
//
//	fused, err := search.Fuse(up, down, right, left, 0.9, 0)
//	rows := search.ExtractSequences(fused, search.DefaultExtractOptions(w, h))
//
// FindDirectionCommands 将两步合并为一次调用。
package search

import "github.com/hd2m/hd2m/pkg/vision/scoremap"

// FindDirectionCommands 融合得分矩阵并提取指令行
func FindDirectionCommands(up, down, right, left *scoremap.Map, threshold float32, opts ExtractOptions) ([]Sequence, error) {
	fused, err := Fuse(up, down, right, left, threshold, opts.Workers)
	if err != nil {
		return nil, err
	}
	return ExtractSequences(fused, opts), nil
}
