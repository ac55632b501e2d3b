package config

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// 默认配置路径
const (
	AnimationConfigPath = "data/animations.yaml"
	HitboxConfigPath    = "data/hitbox.yaml"
)

// Bundle 启动时需要的全部配置
type Bundle struct {
	Animations *AnimationConfig
	Hitbox     *HitboxConfig
}

// LoadBundle 并行加载动画目录和命中区域配置
// 任一文件失败即返回错误
func LoadBundle(animationPath, hitboxPath string) (*Bundle, error) {
	var (
		bundle Bundle
		g      errgroup.Group
	)

	g.Go(func() error {
		cfg, err := LoadAnimationConfig(animationPath)
		if err != nil {
			return err
		}
		bundle.Animations = cfg
		return nil
	})
	g.Go(func() error {
		cfg, err := LoadHitboxConfig(hitboxPath)
		if err != nil {
			return err
		}
		bundle.Hitbox = cfg
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	return &bundle, nil
}
