package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
)

// Config 识别与按键回放配置
type Config struct {
	// TemplateDir 模板目录，需包含 up.png、down.png、right.png、left.png
	TemplateDir      string  `json:"template_dir"`
	BaseScreenWidth  int     `json:"base_screen_width"`
	BaseScreenHeight int     `json:"base_screen_height"`
	Threshold        float32 `json:"threshold"`
	// WindowHeight 扫描带高度，0 表示按模板高度推导
	WindowHeight int `json:"window_height"`
	// DuplicateDistance 重复距离，0 表示按模板宽度推导
	DuplicateDistance float64 `json:"duplicate_distance"`
	DisableMask       bool    `json:"disable_mask"`
	EdgeDetect        bool    `json:"edge_detect"`

	// KeyBindings 方向到按键的映射，键为 up/down/left/right
	KeyBindings map[string]string `json:"key_bindings"`
	// MenuKey 回放期间按住的战备菜单键，为空则不按
	MenuKey    string `json:"menu_key"`
	KeyDelayMs int    `json:"key_delay_ms"`

	GameProcess string `json:"game_process"`
	LogLevel    string `json:"log_level"`
	LogFile     string `json:"log_file,omitempty"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		TemplateDir:      "templates",
		BaseScreenWidth:  2560,
		BaseScreenHeight: 1440,
		Threshold:        0.987,
		KeyBindings: map[string]string{
			"up":    "w",
			"down":  "s",
			"left":  "a",
			"right": "d",
		},
		MenuKey:     "ctrl",
		KeyDelayMs:  30,
		GameProcess: "helldivers2",
		LogLevel:    "INFO",
	}
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	if c.BaseScreenWidth <= 0 || c.BaseScreenHeight <= 0 {
		return fmt.Errorf("无效的基准屏幕尺寸: %dx%d", c.BaseScreenWidth, c.BaseScreenHeight)
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("阈值必须在 0-1 之间: %v", c.Threshold)
	}
	if c.WindowHeight < 0 || c.DuplicateDistance < 0 {
		return fmt.Errorf("扫描带高度和重复距离不能为负数")
	}
	for _, dir := range []string{"up", "down", "left", "right"} {
		if c.KeyBindings[dir] == "" {
			return fmt.Errorf("缺少方向 %s 的按键绑定", dir)
		}
	}
	return nil
}

// ApplyEnv 使用环境变量覆盖配置
//
// 支持 HD2M_TEMPLATE_DIR、HD2M_THRESHOLD、HD2M_LOG_LEVEL、HD2M_GAME_PROCESS。
func (c *Config) ApplyEnv() {
	c.TemplateDir = getEnv("HD2M_TEMPLATE_DIR", c.TemplateDir)
	c.Threshold = getEnvFloat32("HD2M_THRESHOLD", c.Threshold)
	c.LogLevel = getEnv("HD2M_LOG_LEVEL", c.LogLevel)
	c.GameProcess = getEnv("HD2M_GAME_PROCESS", c.GameProcess)
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvFloat32(key string, def float32) float32 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return def
	}
	return float32(f)
}

// Manager 配置管理器
type Manager struct {
	configDir  string
	configFile string
	mu         sync.RWMutex
}

// NewManager 创建配置管理器
func NewManager() *Manager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return NewManagerWithDir(filepath.Join(homeDir, ".hd2m"))
}

// NewManagerWithDir 使用指定目录创建配置管理器
func NewManagerWithDir(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.json"),
	}
}

// ensureDir 确保配置目录存在
func (m *Manager) ensureDir() error {
	return os.MkdirAll(m.configDir, 0755)
}

// Load 加载配置，文件中缺失的字段保留默认值
func (m *Manager) Load() (*Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(m.configFile)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := DefaultConfig()
	if err := sonic.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("解析配置文件失败: %w", err)
	}

	return config, nil
}

// Save 保存配置
func (m *Manager) Save(config *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureDir(); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := sonic.ConfigStd.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(m.configFile, data, 0600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

// Clear 清除配置
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return nil
	}

	return os.Remove(m.configFile)
}

// GetConfigDir 获取配置目录
func (m *Manager) GetConfigDir() string {
	return m.configDir
}

// GetConfigFile 获取配置文件路径
func (m *Manager) GetConfigFile() string {
	return m.configFile
}

// Exists 检查配置文件是否存在
func (m *Manager) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := os.Stat(m.configFile)
	return err == nil
}

// 全局配置管理器
var defaultManager = NewManager()

// GetDefaultManager 获取默认配置管理器
func GetDefaultManager() *Manager {
	return defaultManager
}

// Load 使用默认管理器加载配置
func Load() (*Config, error) {
	return defaultManager.Load()
}

// Save 使用默认管理器保存配置
func Save(config *Config) error {
	return defaultManager.Save(config)
}
