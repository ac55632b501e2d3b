//go:build !mobile

// 普通构建时只编译此文件，mobile.go 和 embed.go 需要 -tags mobile。
package mobile

// Dummy 是一个空导出函数，保证包在非移动端构建时也能被引用
func Dummy() {}
