package config

import (
	"fmt"

	"github.com/decker502/hitsync/pkg/embedded"
	"github.com/decker502/hitsync/pkg/geom"
	"gopkg.in/yaml.v3"
)

// 命中区域默认参数
const (
	DefaultMobileTouchFactor  = 1.2
	DefaultDesktopTouchFactor = 1.0
	DefaultVisualScaleFactor  = 0.55
	DefaultGrowDurationMs     = 200
)

// HitboxConfig 命中区域配置文件（data/hitbox.yaml）的顶层结构
type HitboxConfig struct {
	Scaling        HitboxScalingConfig `yaml:"scaling"`
	SpawnLocations []SpawnEntry        `yaml:"spawn_locations"`
}

// HitboxScalingConfig 坐标缩放参数
type HitboxScalingConfig struct {
	// MobileTouchFactor 移动端命中区域宽高放大系数（> 1.0，便于点击）
	MobileTouchFactor float64 `yaml:"mobile_touch_factor"`
	// DesktopTouchFactor 桌面端宽高系数
	DesktopTouchFactor float64 `yaml:"desktop_touch_factor"`
	// VisualScaleFactor 可视提示框相对命中区域的缩放（居中）
	VisualScaleFactor float64 `yaml:"visual_scale_factor"`
	// GrowDurationMs 生成点区域放大动画时长
	GrowDurationMs int `yaml:"grow_duration_ms"`
}

// SpawnEntry 单个实体的候选生成位置
type SpawnEntry struct {
	ID         string            `yaml:"id"`
	Candidates []geom.Calibrated `yaml:"candidates"`
}

// LoadHitboxConfig 从嵌入资源加载命中区域配置
func LoadHitboxConfig(path string) (*HitboxConfig, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取配置文件 %s: %w", path, err)
	}
	cfg, err := ParseHitboxConfig(data)
	if err != nil {
		return nil, fmt.Errorf("配置文件 %s: %w", path, err)
	}
	return cfg, nil
}

// ParseHitboxConfig 解析 YAML 数据，填充默认值并验证
func ParseHitboxConfig(data []byte) (*HitboxConfig, error) {
	var cfg HitboxConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("无法解析命中区域配置: %w", err)
	}

	s := &cfg.Scaling
	if s.MobileTouchFactor == 0 {
		s.MobileTouchFactor = DefaultMobileTouchFactor
	}
	if s.DesktopTouchFactor == 0 {
		s.DesktopTouchFactor = DefaultDesktopTouchFactor
	}
	if s.VisualScaleFactor == 0 {
		s.VisualScaleFactor = DefaultVisualScaleFactor
	}
	if s.GrowDurationMs <= 0 {
		s.GrowDurationMs = DefaultGrowDurationMs
	}

	if s.MobileTouchFactor <= 1.0 {
		return nil, fmt.Errorf("mobile_touch_factor 必须大于 1.0，实际为 %v", s.MobileTouchFactor)
	}
	if s.DesktopTouchFactor <= 0 || s.VisualScaleFactor <= 0 {
		return nil, fmt.Errorf("desktop_touch_factor 和 visual_scale_factor 必须为正数")
	}

	seen := make(map[string]bool, len(cfg.SpawnLocations))
	for i, entry := range cfg.SpawnLocations {
		if entry.ID == "" {
			return nil, fmt.Errorf("生成点 #%d 缺少 'id' 字段", i)
		}
		if seen[entry.ID] {
			return nil, fmt.Errorf("生成点 '%s' 重复定义", entry.ID)
		}
		seen[entry.ID] = true
		if len(entry.Candidates) == 0 {
			return nil, fmt.Errorf("生成点 '%s' 没有候选位置", entry.ID)
		}
	}
	return &cfg, nil
}
