package config

import (
	"fmt"

	"github.com/decker502/hitsync/pkg/embedded"
	"github.com/decker502/hitsync/pkg/geom"
	"gopkg.in/yaml.v3"
)

// 全局播放参数默认值（毫秒）
const (
	DefaultBaseFrameDurationMs      = 300
	DefaultMinFrameDurationMs       = 50
	DefaultMobileMinFrameDurationMs = 80
	DefaultDeferredTickMs           = 16
	DefaultOverlayFrameDurationMs   = 120
	DefaultOverlayImpactFrame       = 3
)

// AnimationConfig 动画目录配置文件（data/animations.yaml）的顶层结构
type AnimationConfig struct {
	Global     AnimationGlobalConfig `yaml:"global"`
	Overlay    OverlayConfig         `yaml:"overlay"`
	Animations []AnimationEntry      `yaml:"animations"`
}

// AnimationGlobalConfig 全局播放参数
type AnimationGlobalConfig struct {
	// BaseFrameDurationMs 未指定固定帧时长的动画使用的基础帧时长，实际时长 = 基础 / 速度倍率
	BaseFrameDurationMs int `yaml:"base_frame_duration_ms"`
	// MinFrameDurationMs 速度倍率再高也不会低于该帧时长
	MinFrameDurationMs int `yaml:"min_frame_duration_ms"`
	// MobileMinFrameDurationMs 移动端的最小帧时长
	MobileMinFrameDurationMs int `yaml:"mobile_min_frame_duration_ms"`
	// DeferredTickMs 首帧渲染与回调的延迟
	DeferredTickMs int `yaml:"deferred_tick_ms"`
}

// OverlayConfig 叠加动画（如拍击效果）的命名约定
type OverlayConfig struct {
	// Prefix 叠加动画名前缀（如 "smack"），实体名按 前缀+首字母大写 转换为动画名
	Prefix string `yaml:"prefix"`
	// Default 空标识符时使用的默认叠加动画
	Default string `yaml:"default"`
	// ImpactFrame 触发 onImpact 的帧序号
	ImpactFrame int `yaml:"impact_frame"`
	// FrameDurationMs 叠加动画未指定帧时长时的默认值
	FrameDurationMs int `yaml:"frame_duration_ms"`
	// Aliases 短标识符（小写）-> 动画名
	Aliases map[string]string `yaml:"aliases,omitempty"`
}

// AnimationEntry 单个动画定义
type AnimationEntry struct {
	Name            string `yaml:"name"`
	SpriteSheet     string `yaml:"sprite_sheet"`
	FrameCount      int    `yaml:"frame_count"`
	LoopCount       int    `yaml:"loop_count,omitempty"`        // 0 或缺省表示无限循环
	FrameDurationMs int    `yaml:"frame_duration_ms,omitempty"` // 0 表示由全局基础时长和速度倍率推导

	// TargetRegion 命中区域，缺省表示该动画没有命中区域
	TargetRegion *TargetRegionConfig `yaml:"target_region,omitempty"`

	// Overlay 关联的叠加动画名
	Overlay string `yaml:"overlay,omitempty"`
	// ImpactFrame 作为叠加动画播放时的 impact 帧（覆盖全局设置）
	ImpactFrame int `yaml:"impact_frame,omitempty"`
}

// TargetRegionConfig 命中区域的逐帧标定坐标
type TargetRegionConfig struct {
	CalibrationScale float64     `yaml:"calibration_scale"`
	Frames           []geom.Rect `yaml:"frames"`
	MobileFrames     []geom.Rect `yaml:"mobile_frames,omitempty"`
}

// LoadAnimationConfig 从嵌入资源加载动画目录配置
//
// 参数：
//   - path: 配置文件路径（如 "data/animations.yaml"）
//
// 返回：
//   - *AnimationConfig: 已填充默认值并通过验证的配置
//   - error: 读取、解析或验证错误
func LoadAnimationConfig(path string) (*AnimationConfig, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取配置文件 %s: %w", path, err)
	}
	cfg, err := ParseAnimationConfig(data)
	if err != nil {
		return nil, fmt.Errorf("配置文件 %s: %w", path, err)
	}
	return cfg, nil
}

// ParseAnimationConfig 解析 YAML 数据，填充默认值并验证
func ParseAnimationConfig(data []byte) (*AnimationConfig, error) {
	var cfg AnimationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("无法解析动画配置: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("动画配置验证失败: %w", err)
	}
	return &cfg, nil
}

func (c *AnimationConfig) applyDefaults() {
	g := &c.Global
	if g.BaseFrameDurationMs <= 0 {
		g.BaseFrameDurationMs = DefaultBaseFrameDurationMs
	}
	if g.MinFrameDurationMs <= 0 {
		g.MinFrameDurationMs = DefaultMinFrameDurationMs
	}
	if g.MobileMinFrameDurationMs <= 0 {
		g.MobileMinFrameDurationMs = DefaultMobileMinFrameDurationMs
	}
	if g.DeferredTickMs <= 0 {
		g.DeferredTickMs = DefaultDeferredTickMs
	}
	if c.Overlay.ImpactFrame <= 0 {
		c.Overlay.ImpactFrame = DefaultOverlayImpactFrame
	}
	if c.Overlay.FrameDurationMs <= 0 {
		c.Overlay.FrameDurationMs = DefaultOverlayFrameDurationMs
	}
}

func (c *AnimationConfig) validate() error {
	if len(c.Animations) == 0 {
		return fmt.Errorf("'animations' 列表为空")
	}

	names := make(map[string]bool, len(c.Animations))
	for i, anim := range c.Animations {
		if anim.Name == "" {
			return fmt.Errorf("动画 #%d 缺少 'name' 字段", i)
		}
		if names[anim.Name] {
			return fmt.Errorf("动画 '%s' 重复定义", anim.Name)
		}
		names[anim.Name] = true

		if anim.FrameCount < 1 {
			return fmt.Errorf("动画 '%s' 的 frame_count 必须 >= 1，实际为 %d", anim.Name, anim.FrameCount)
		}
		if anim.LoopCount < 0 {
			return fmt.Errorf("动画 '%s' 的 loop_count 不能为负数", anim.Name)
		}
		if anim.FrameDurationMs < 0 {
			return fmt.Errorf("动画 '%s' 的 frame_duration_ms 不能为负数", anim.Name)
		}
		if region := anim.TargetRegion; region != nil {
			if len(region.Frames) == 0 {
				return fmt.Errorf("动画 '%s' 声明了 target_region 但没有 frames", anim.Name)
			}
			if region.CalibrationScale < 0 {
				return fmt.Errorf("动画 '%s' 的 calibration_scale 不能为负数", anim.Name)
			}
		}
	}

	// 关联的叠加动画必须存在
	for _, anim := range c.Animations {
		if anim.Overlay != "" && !names[anim.Overlay] {
			return fmt.Errorf("动画 '%s' 引用了不存在的叠加动画 '%s'", anim.Name, anim.Overlay)
		}
	}
	if c.Overlay.Default != "" && !names[c.Overlay.Default] {
		return fmt.Errorf("默认叠加动画 '%s' 不存在", c.Overlay.Default)
	}
	return nil
}
