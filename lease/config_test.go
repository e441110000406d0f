package lease

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	defaultLeaseTTL          = 60 * time.Second
	defaultAcquirePollPeriod = 150 * time.Millisecond
)

func TestConfigSetDefaults(t *testing.T) {
	var c Config
	c.setDefaults()

	assert.Equal(t, "leases", c.TableName)
	assert.Equal(t, "key", c.KeyAttribute)
	assert.Equal(t, "lease_expiry", c.ExpiryAttribute)
	assert.Equal(t, "lease_version", c.VersionAttribute)
	assert.Equal(t, defaultLeaseTTL, c.LeaseTTL)
	assert.Equal(t, c.LeaseTTL/3, c.ExtendPeriod)
	assert.Equal(t, defaultAcquirePollPeriod, c.AcquirePollPeriod)
}

func TestConfigSetDefaultsPreservesOverrides(t *testing.T) {
	c := Config{TableName: "custom", LeaseTTL: 30 * defaultAcquirePollPeriod}
	c.setDefaults()

	assert.Equal(t, "custom", c.TableName)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid",
			cfg:     Config{LeaseTTL: defaultLeaseTTL, ExtendPeriod: defaultLeaseTTL / 3, AcquirePollPeriod: defaultAcquirePollPeriod},
			wantErr: false,
		},
		{
			name:    "zero ttl",
			cfg:     Config{LeaseTTL: 0, ExtendPeriod: defaultLeaseTTL / 3, AcquirePollPeriod: defaultAcquirePollPeriod},
			wantErr: true,
		},
		{
			name:    "extend period equal to ttl",
			cfg:     Config{LeaseTTL: defaultLeaseTTL, ExtendPeriod: defaultLeaseTTL, AcquirePollPeriod: defaultAcquirePollPeriod},
			wantErr: true,
		},
		{
			name:    "extend period zero",
			cfg:     Config{LeaseTTL: defaultLeaseTTL, ExtendPeriod: 0, AcquirePollPeriod: defaultAcquirePollPeriod},
			wantErr: true,
		},
		{
			name:    "poll period zero",
			cfg:     Config{LeaseTTL: defaultLeaseTTL, ExtendPeriod: defaultLeaseTTL / 3, AcquirePollPeriod: 0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
