//go:build !android

package game

// 非 Android 平台 gdata 会自动创建存储目录
func ensureStorageDir(string) error {
	return nil
}

func storagePath() string {
	return ""
}
