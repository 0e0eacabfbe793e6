package process

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func selfName() string {
	name := filepath.Base(os.Args[0])
	// Linux 的 comm 最长 15 个字符
	if len(name) > 15 {
		name = name[:15]
	}
	return strings.TrimSuffix(name, ".exe")
}

func TestFindProcessSelf(t *testing.T) {
	matches, err := FindProcess(selfName())
	if err != nil {
		t.Fatalf("FindProcess 失败: %v", err)
	}

	pid := os.Getpid()
	found := false
	for _, m := range matches {
		if m.PID == pid {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("未找到当前进程 %s (PID=%d), 结果: %+v", selfName(), pid, matches)
	}
	if !IsProcessRunning(pid) {
		t.Error("当前进程应处于运行状态")
	}
}

func TestFindGameNotFound(t *testing.T) {
	_, err := FindGame("hd2m-no-such-process-xyz")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("期望 ErrNotFound, 实际 %v", err)
	}

	if _, err := FindProcess(""); err == nil {
		t.Error("空进程名应返回错误")
	}
}

func TestWaitForGameCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := WaitForGame(ctx, "hd2m-no-such-process-xyz", 10*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("期望 DeadlineExceeded, 实际 %v", err)
	}
}
