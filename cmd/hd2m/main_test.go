package main

import (
	"os"
	"reflect"
	"testing"

	"github.com/hd2m/hd2m/pkg/config"
	"github.com/hd2m/hd2m/pkg/process"
	"github.com/hd2m/hd2m/pkg/stratagem"
)

func TestSearchOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.WindowHeight = 40
	cfg.DuplicateDistance = 12.5
	cfg.DisableMask = true
	cfg.EdgeDetect = true

	got := searchOptions(cfg)
	want := stratagem.SearchOptions{
		Threshold:         0.987,
		WindowHeight:      40,
		DuplicateDistance: 12.5,
		NoMask:            true,
		EdgeDetect:        true,
	}
	if got != want {
		t.Errorf("searchOptions = %+v, 期望 %+v", got, want)
	}

	// 默认配置的扫描带和重复距离为零，交给识别器按模板尺寸推导
	def := searchOptions(config.DefaultConfig())
	if def.WindowHeight != 0 || def.DuplicateDistance != 0 || def.NoMask || def.EdgeDetect {
		t.Errorf("默认配置转换结果异常: %+v", def)
	}
}

func TestFlagWarnings(t *testing.T) {
	tests := []struct {
		name string
		opts options
		want []string
	}{
		{
			name: "单次截屏无警告",
			opts: options{dumpPath: "f.png", annotatePath: "a.png", replay: 1},
			want: nil,
		},
		{
			name: "图片模式回放",
			opts: options{imagePath: "shot.png", replay: 2},
			want: []string{"图片模式不回放按键，忽略 -replay"},
		},
		{
			name: "图片模式持续识别和保存原图",
			opts: options{imagePath: "shot.png", watch: true, dumpPath: "f.png"},
			want: []string{"图片模式只识别一次，忽略 -watch", "图片模式没有截屏，-dump 将保存输入图片"},
		},
		{
			name: "持续识别只保存第一帧",
			opts: options{watch: true, annotatePath: "a.png"},
			want: []string{"-dump 和 -annotate 只作用于第一帧"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := flagWarnings(tt.opts); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("flagWarnings = %q, 期望 %q", got, tt.want)
			}
		})
	}
}

func TestGameExited(t *testing.T) {
	if gameExited(nil) {
		t.Error("未找到游戏时不应视为退出")
	}

	self := &process.ProcessInfo{PID: os.Getpid(), Name: "self"}
	if gameExited(self) {
		t.Error("当前进程仍在运行")
	}

	// PID 上限之外的进程不存在
	gone := &process.ProcessInfo{PID: 1 << 30, Name: "gone"}
	if !gameExited(gone) {
		t.Error("不存在的进程应视为已退出")
	}
}
