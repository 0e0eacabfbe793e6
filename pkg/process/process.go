// Package process 定位游戏进程
package process

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/shirou/gopsutil/v4/process"
)

// ErrNotFound 未找到进程
var ErrNotFound = errors.New("process not found")

// ProcessInfo 进程信息
type ProcessInfo struct {
	PID  int    `json:"pid"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// FindProcess 按名称查找进程 (不区分大小写，支持部分匹配)
func FindProcess(name string) ([]ProcessInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("进程名为空")
	}

	pids, err := process.Pids()
	if err != nil {
		return nil, fmt.Errorf("获取进程列表失败: %w", err)
	}

	name = strings.ToLower(name)
	var matches []ProcessInfo

	for _, pid := range pids {
		proc, err := process.NewProcess(pid)
		if err != nil {
			continue
		}

		procName, err := proc.Name()
		if err != nil {
			continue
		}

		if strings.Contains(strings.ToLower(procName), name) {
			exe, _ := proc.Exe()
			matches = append(matches, ProcessInfo{
				PID:  int(pid),
				Name: procName,
				Path: exe,
			})
		}
	}

	return matches, nil
}

// FindGame 返回第一个匹配的进程，找不到时返回 ErrNotFound
func FindGame(name string) (*ProcessInfo, error) {
	matches, err := FindProcess(name)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return &matches[0], nil
}

// IsProcessRunning 检查进程是否正在运行
func IsProcessRunning(pid int) bool {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	running, err := proc.IsRunning()
	if err != nil {
		return false
	}
	return running
}

// IsForeground 检查进程是否拥有前台窗口
func IsForeground(pid int) bool {
	return robotgo.GetPid() == pid
}

// WaitForGame 轮询直到游戏进程出现或 ctx 结束
func WaitForGame(ctx context.Context, name string, interval time.Duration) (*ProcessInfo, error) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		info, err := FindGame(name)
		if err == nil {
			return info, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
