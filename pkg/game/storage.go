package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
)

// OpenStorage 打开设置存储
// Android 上先确保应用数据目录下的子目录存在，gdata 不会自动创建
func OpenStorage(appName string) (*gdata.Manager, error) {
	if err := ensureStorageDir(appName); err != nil {
		return nil, fmt.Errorf("准备存储目录失败: %w", err)
	}
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("打开存储失败: %w", err)
	}
	if p := storagePath(); p != "" {
		log.Printf("[Storage] Using %s", p)
	}
	return m, nil
}
