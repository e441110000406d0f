package connector

import (
	"fmt"
	"time"
)

// DynamoDBConfig DynamoDB 连接配置
type DynamoDBConfig struct {
	// 基础配置（可选，有默认值）
	Name            string        `mapstructure:"name"`              // 连接器名称 (默认: "default")
	MaxRetries      int           `mapstructure:"max_retries"`       // 最大重试次数 (默认: 3)
	RetryInterval   time.Duration `mapstructure:"retry_interval"`    // 重试间隔 (默认: 1s)
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`   // 连接超时 (默认: 5s)
	HealthCheckFreq time.Duration `mapstructure:"health_check_freq"` // 健康检查频率 (默认: 30s)

	// 核心配置
	Region   string `mapstructure:"region"`   // [必填] AWS 区域，如 "us-east-1"
	Endpoint string `mapstructure:"endpoint"` // [可选] 自定义 endpoint，用于本地 DynamoDB
	Profile  string `mapstructure:"profile"`  // [可选] 共享凭证文件中的 profile 名称

	// 静态凭证（可选；未设置时 SDK 走默认凭证链：环境变量/IMDS/SSO 等）
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token"`
}

// setDefaults 设置默认值
func (c *DynamoDBConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryInterval == 0 {
		c.RetryInterval = time.Second
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	if c.HealthCheckFreq == 0 {
		c.HealthCheckFreq = 30 * time.Second
	}
}

// validate 实现 Configurable 接口
func (c *DynamoDBConfig) validate() error {
	c.setDefaults()
	if c.Region == "" && c.Endpoint == "" {
		return fmt.Errorf("region 不能为空（本地 DynamoDB 可改用 endpoint）")
	}
	return nil
}
