// Package logger 提供统一的日志工具
//
// 底层使用 zerolog: 控制台输出为易读格式，文件输出为 JSON 行。
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Level 日志级别
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLevel 解析日志级别字符串
func ParseLevel(s string) Level {
	switch s {
	case "DEBUG", "debug":
		return DEBUG
	case "INFO", "info":
		return INFO
	case "WARN", "warn", "WARNING", "warning":
		return WARN
	case "ERROR", "error":
		return ERROR
	default:
		return INFO
	}
}

// Logger 日志记录器
type Logger struct {
	mu       sync.Mutex
	level    Level
	enabled  bool
	console  bool
	file     bool
	filePath string
	module   string
	stdout   io.Writer
	fileOut  *os.File
	zl       zerolog.Logger
}

// 全局默认 logger
var defaultLogger = New()

// New 创建新的 Logger 实例
func New() *Logger {
	l := &Logger{
		level:   INFO,
		enabled: true,
		console: true,
		stdout:  os.Stdout,
	}
	l.updateOutput()
	return l
}

// NewWithWriter 创建输出到指定 writer 的 Logger，主要用于测试
func NewWithWriter(w io.Writer) *Logger {
	l := &Logger{
		level:   INFO,
		enabled: true,
		console: true,
		stdout:  w,
	}
	l.updateOutput()
	return l
}

// Default 获取默认 logger
func Default() *Logger {
	return defaultLogger
}

// SetLevel 设置日志级别
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.zl = l.zl.Level(level.zerolog())
}

// SetEnabled 设置是否启用日志
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

// SetConsole 设置是否输出到控制台
func (l *Logger) SetConsole(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console = enabled
	l.updateOutput()
}

// SetModule 设置模块名，作为 module 字段附加到每条日志
func (l *Logger) SetModule(module string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.module = module
	l.updateOutput()
}

// SetFile 设置是否输出到文件
func (l *Logger) SetFile(enabled bool, path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// 关闭旧文件
	if l.fileOut != nil {
		l.fileOut.Close()
		l.fileOut = nil
	}

	l.file = enabled
	l.filePath = path

	if enabled && path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("无法打开日志文件: %w", err)
		}
		l.fileOut = f
	}

	l.updateOutput()
	return nil
}

// updateOutput 重建 zerolog 输出，调用方需持有锁
func (l *Logger) updateOutput() {
	var writers []io.Writer

	if l.console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        l.stdout,
			TimeFormat: "15:04:05",
			NoColor:    l.stdout != os.Stdout,
		})
	}
	if l.file && l.fileOut != nil {
		writers = append(writers, l.fileOut)
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	ctx := zerolog.New(out).Level(l.level.zerolog()).With().Timestamp()
	if l.module != "" {
		ctx = ctx.Str("module", l.module)
	}
	l.zl = ctx.Logger()
}

// Zerolog 返回底层 zerolog.Logger，用于输出结构化字段
func (l *Logger) Zerolog() zerolog.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled {
		return zerolog.Nop()
	}
	return l.zl
}

// log 内部日志方法
func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || level < l.level {
		return
	}
	l.zl.WithLevel(level.zerolog()).Msgf(format, args...)
}

// Debug 输出 DEBUG 级别日志
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info 输出 INFO 级别日志
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Warn 输出 WARN 级别日志
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error 输出 ERROR 级别日志
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

// LogEvent 记录带分类的事件日志
//
// 成功事件记为 DEBUG（逐帧输出量大），失败事件记为 ERROR。
func (l *Logger) LogEvent(category string, ok bool, elapsedMs float64, detail string) {
	level := DEBUG
	status := "OK"
	if !ok {
		level = ERROR
		status = "NG"
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || level < l.level {
		return
	}
	l.zl.WithLevel(level.zerolog()).
		Str("category", category).
		Str("status", status).
		Float64("elapsed_ms", elapsedMs).
		Msg(detail)
}

// Close 关闭 logger，释放资源
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileOut != nil {
		err := l.fileOut.Close()
		l.fileOut = nil
		l.updateOutput()
		return err
	}
	return nil
}

// 包级别便捷函数
func Debug(format string, args ...interface{}) { defaultLogger.Debug(format, args...) }
func Info(format string, args ...interface{})  { defaultLogger.Info(format, args...) }
func Warn(format string, args ...interface{})  { defaultLogger.Warn(format, args...) }
func Error(format string, args ...interface{}) { defaultLogger.Error(format, args...) }
func LogEvent(category string, ok bool, elapsedMs float64, detail string) {
	defaultLogger.LogEvent(category, ok, elapsedMs, detail)
}
