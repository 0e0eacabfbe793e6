package search

import (
	"fmt"
	"strings"
)

// Direction 战备指令方向
type Direction int

// 常量顺序即融合时的平局优先级: 上 > 右 > 下 > 左
const (
	Up Direction = iota
	Right
	Down
	Left
)

// Directions 按平局优先级排列的全部方向
var Directions = [4]Direction{Up, Right, Down, Left}

func (d Direction) String() string {
	switch d {
	case Up:
		return "Up"
	case Right:
		return "Right"
	case Down:
		return "Down"
	case Left:
		return "Left"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Symbol 返回方向箭头字符
func (d Direction) Symbol() string {
	switch d {
	case Up:
		return "↑"
	case Right:
		return "→"
	case Down:
		return "↓"
	case Left:
		return "←"
	default:
		return "?"
	}
}

// Valid 判断方向取值是否合法
func (d Direction) Valid() bool {
	return d >= Up && d <= Left
}

// ParseDirection 解析方向名称（不区分大小写）
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "right":
		return Right, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	default:
		return Up, fmt.Errorf("未知方向: %q", s)
	}
}
