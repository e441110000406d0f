package config

// Option 配置选项模式
type Option func(*Options)

// RemoteOptions 远程配置源选项（etcd/consul 等），当前仅存储，
// 具体的远程加载由未来的 provider 实现。
type RemoteOptions struct {
	Provider string
	Endpoint string
}

// Options 配置加载器的内部选项
type Options struct {
	Name       string // 配置文件名称（不含扩展名）
	Paths      []string // 配置文件搜索路径
	FileType   string // 配置文件类型 (yaml, json, etc.)
	EnvPrefix  string // 环境变量前缀
	RemoteOpts *RemoteOptions
}

// defaultOptions 返回默认选项
func defaultOptions() *Options {
	return &Options{
		Name:      "config",
		Paths:     []string{".", "./config"},
		FileType:  "yaml",
		EnvPrefix: "GENESIS",
	}
}

// WithConfigName 设置配置文件名称（不带扩展名）
func WithConfigName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithConfigPath 添加配置文件搜索路径
func WithConfigPath(path string) Option {
	return func(o *Options) {
		o.Paths = append(o.Paths, path)
	}
}

// WithConfigPaths 设置配置文件搜索路径（覆盖默认值）
func WithConfigPaths(paths ...string) Option {
	return func(o *Options) {
		o.Paths = paths
	}
}

// WithConfigType 设置配置文件类型 (yaml, json, etc.)
func WithConfigType(typ string) Option {
	return func(o *Options) {
		o.FileType = typ
	}
}

// WithEnvPrefix 设置环境变量前缀
func WithEnvPrefix(prefix string) Option {
	return func(o *Options) {
		o.EnvPrefix = prefix
	}
}

// WithRemote 设置远程配置源
func WithRemote(provider, endpoint string) Option {
	return func(o *Options) {
		o.RemoteOpts = &RemoteOptions{Provider: provider, Endpoint: endpoint}
	}
}
