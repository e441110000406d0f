package config

import "context"

// New 创建一个新的配置加载器（不加载，调用方需自行调用 Load）。
func New(opts ...Option) (Loader, error) {
	return newLoader(opts...)
}

// MustLoad 创建配置加载器并立即加载，失败时 panic。
//
// 适用于应用启动阶段：配置错误应尽早暴露而不是被忽略。
func MustLoad(opts ...Option) Loader {
	loader, err := New(opts...)
	if err != nil {
		panic(err)
	}
	if err := loader.Load(context.Background()); err != nil {
		panic(err)
	}
	return loader
}
