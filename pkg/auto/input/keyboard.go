// Package input 提供键盘输入与战备指令回放
package input

import (
	"context"
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"

	"github.com/hd2m/hd2m/pkg/stratagem/search"
)

// Keyboard 键盘操作
type Keyboard interface {
	Tap(key string) error
	Toggle(key string, down bool) error
}

// robotKeyboard 基于 robotgo 的系统键盘
type robotKeyboard struct{}

// SystemKeyboard 返回操作系统键盘
func SystemKeyboard() Keyboard {
	return robotKeyboard{}
}

func (robotKeyboard) Tap(key string) error {
	return robotgo.KeyTap(key)
}

func (robotKeyboard) Toggle(key string, down bool) error {
	state := "up"
	if down {
		state = "down"
	}
	return robotgo.KeyToggle(key, state)
}

// Replayer 将识别出的指令回放为按键
type Replayer struct {
	keys     [4]string
	menuKey  string
	delay    time.Duration
	keyboard Keyboard
}

// ReplayOption 回放选项
type ReplayOption func(*Replayer)

// WithMenuKey 回放期间按住的菜单键，空字符串表示不按
func WithMenuKey(key string) ReplayOption {
	return func(r *Replayer) {
		r.menuKey = key
	}
}

// WithKeyDelay 两次按键之间的间隔
func WithKeyDelay(d time.Duration) ReplayOption {
	return func(r *Replayer) {
		r.delay = d
	}
}

// WithKeyboard 替换键盘实现
func WithKeyboard(k Keyboard) ReplayOption {
	return func(r *Replayer) {
		r.keyboard = k
	}
}

// NewReplayer 创建回放器，bindings 的键为 up/down/left/right
func NewReplayer(bindings map[string]string, opts ...ReplayOption) (*Replayer, error) {
	r := &Replayer{
		delay:    30 * time.Millisecond,
		keyboard: SystemKeyboard(),
	}
	for name, key := range bindings {
		d, err := search.ParseDirection(name)
		if err != nil {
			return nil, fmt.Errorf("按键绑定无效: %w", err)
		}
		r.keys[d] = key
	}
	for _, d := range search.Directions {
		if r.keys[d] == "" {
			return nil, fmt.Errorf("缺少方向 %s 的按键绑定", d)
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Key 返回方向对应的按键
func (r *Replayer) Key(d search.Direction) string {
	return r.keys[d]
}

// Replay 依次按下方向键，ctx 取消时立即停止并释放菜单键
func (r *Replayer) Replay(ctx context.Context, dirs []search.Direction) (err error) {
	if len(dirs) == 0 {
		return nil
	}

	if r.menuKey != "" {
		if err := r.keyboard.Toggle(r.menuKey, true); err != nil {
			return fmt.Errorf("按下菜单键失败: %w", err)
		}
		defer func() {
			if upErr := r.keyboard.Toggle(r.menuKey, false); upErr != nil && err == nil {
				err = fmt.Errorf("释放菜单键失败: %w", upErr)
			}
		}()
		if err := r.wait(ctx); err != nil {
			return err
		}
	}

	for i, d := range dirs {
		if !d.Valid() {
			return fmt.Errorf("无效方向: %d", int(d))
		}
		if err := r.keyboard.Tap(r.keys[d]); err != nil {
			return fmt.Errorf("第 %d 个按键 %s 失败: %w", i+1, r.keys[d], err)
		}
		if i < len(dirs)-1 {
			if err := r.wait(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Replayer) wait(ctx context.Context) error {
	if r.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
