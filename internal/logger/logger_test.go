package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"DEBUG", DEBUG},
		{"debug", DEBUG},
		{"info", INFO},
		{"WARNING", WARN},
		{"warn", WARN},
		{"error", ERROR},
		{"", INFO},
		{"verbose", INFO},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, 期望 %s", tt.in, got, tt.want)
		}
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)
	l.SetLevel(WARN)

	l.Info("不应输出 %d", 1)
	l.Warn("应当输出 %d", 2)

	out := buf.String()
	if strings.Contains(out, "不应输出") {
		t.Errorf("INFO 日志未被过滤: %s", out)
	}
	if !strings.Contains(out, "应当输出 2") {
		t.Errorf("WARN 日志缺失: %s", out)
	}
}

func TestSetEnabled(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)
	l.SetEnabled(false)
	l.Error("关闭后不输出")
	if buf.Len() != 0 {
		t.Errorf("禁用后仍有输出: %s", buf.String())
	}
}

func TestLogEvent(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.LogEvent("MTCH", true, 12.5, "成功事件")
	if buf.Len() != 0 {
		t.Errorf("INFO 级别下成功事件不应输出: %s", buf.String())
	}

	l.LogEvent("MTCH", false, 3.2, "失败事件")
	out := buf.String()
	if !strings.Contains(out, "失败事件") || !strings.Contains(out, "MTCH") {
		t.Errorf("失败事件输出不完整: %s", out)
	}

	buf.Reset()
	l.SetLevel(DEBUG)
	l.LogEvent("MTCH", true, 12.5, "成功事件")
	if !strings.Contains(buf.String(), "成功事件") {
		t.Errorf("DEBUG 级别下成功事件应输出: %s", buf.String())
	}
}

func TestSetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hd2m.log")

	var buf bytes.Buffer
	l := NewWithWriter(&buf)
	l.SetConsole(false)
	l.SetModule("test")
	if err := l.SetFile(true, path); err != nil {
		t.Fatalf("SetFile 失败: %v", err)
	}

	l.Info("写入文件 %s", "ok")
	if err := l.Close(); err != nil {
		t.Fatalf("Close 失败: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取日志文件失败: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `"message":"写入文件 ok"`) {
		t.Errorf("日志文件内容错误: %s", content)
	}
	if !strings.Contains(content, `"module":"test"`) {
		t.Errorf("缺少 module 字段: %s", content)
	}
	if buf.Len() != 0 {
		t.Errorf("关闭控制台后仍有输出: %s", buf.String())
	}
}

func TestSetFileInvalidPath(t *testing.T) {
	l := NewWithWriter(&bytes.Buffer{})
	if err := l.SetFile(true, filepath.Join(t.TempDir(), "missing", "dir", "x.log")); err == nil {
		t.Error("无效路径应返回错误")
	}
}

func TestZerologFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	zl := l.Zerolog()
	zl.Info().Int("row", 2).Str("commands", "↑ ↓").Msg("指令行")
	out := buf.String()
	if !strings.Contains(out, "row=2") || !strings.Contains(out, "指令行") {
		t.Errorf("结构化字段缺失: %s", out)
	}

	buf.Reset()
	zl.Debug().Msg("INFO 级别下不输出")
	if buf.Len() != 0 {
		t.Errorf("级别过滤失效: %s", buf.String())
	}

	l.SetEnabled(false)
	disabled := l.Zerolog()
	disabled.Error().Msg("禁用后不输出")
	if buf.Len() != 0 {
		t.Errorf("禁用后仍有输出: %s", buf.String())
	}
}
