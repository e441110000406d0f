package lease

import (
	"time"

	"github.com/ceyewan/genesis/xerrors"
)

// Config 组件静态配置
//
// 字段名与默认值遵循 spec：ttl 默认 60s，extend_period 默认 ttl 的三分之一，
// acquire_poll_period 默认 150ms（spec 建议的 100-250ms 区间内）。
type Config struct {
	// TableName 远程表名
	TableName string `json:"table_name" yaml:"table_name"`

	// KeyAttribute 哈希键属性名，默认 "key"
	KeyAttribute string `json:"key_attribute" yaml:"key_attribute"`

	// ExpiryAttribute TTL 属性名，默认 "lease_expiry"
	ExpiryAttribute string `json:"expiry_attribute" yaml:"expiry_attribute"`

	// VersionAttribute 版本属性名，默认 "lease_version"
	VersionAttribute string `json:"version_attribute" yaml:"version_attribute"`

	// LeaseTTL 租约的生存时间，必须 > 0。默认 60s。
	LeaseTTL time.Duration `json:"lease_ttl" yaml:"lease_ttl"`

	// ExtendPeriod 后台续约的周期，必须 0 < ExtendPeriod < LeaseTTL。
	// 默认为 LeaseTTL 的三分之一。
	ExtendPeriod time.Duration `json:"extend_period" yaml:"extend_period"`

	// AcquirePollPeriod acquire 在竞争时两次尝试之间的等待时间，必须 > 0。
	// 默认 150ms。每次实际等待会叠加 ±20% 的抖动，避免多个等待者同步轮询。
	AcquirePollPeriod time.Duration `json:"acquire_poll_period" yaml:"acquire_poll_period"`
}

func (c *Config) setDefaults() {
	if c.TableName == "" {
		c.TableName = "leases"
	}
	if c.KeyAttribute == "" {
		c.KeyAttribute = "key"
	}
	if c.ExpiryAttribute == "" {
		c.ExpiryAttribute = "lease_expiry"
	}
	if c.VersionAttribute == "" {
		c.VersionAttribute = "lease_version"
	}
	if c.LeaseTTL == 0 {
		c.LeaseTTL = 60 * time.Second
	}
	if c.ExtendPeriod == 0 {
		c.ExtendPeriod = c.LeaseTTL / 3
	}
	if c.AcquirePollPeriod == 0 {
		c.AcquirePollPeriod = 150 * time.Millisecond
	}
}

func (c *Config) validate() error {
	if c.LeaseTTL <= 0 {
		return xerrors.New("lease: lease_ttl must be > 0")
	}
	if c.ExtendPeriod <= 0 || c.ExtendPeriod >= c.LeaseTTL {
		return xerrors.New("lease: extend_period must satisfy 0 < extend_period < lease_ttl")
	}
	if c.AcquirePollPeriod <= 0 {
		return xerrors.New("lease: acquire_poll_period must be > 0")
	}
	return nil
}
