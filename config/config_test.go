package config

import (
	// Go Internal Packages
	"testing"
	"time"

	// External Packages
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefaults(t *testing.T) Config {
	t.Helper()
	k := koanf.New(".")
	require.NoError(t, k.Load(rawbytes.Provider(DefaultConfig), yaml.Parser()))
	conf := Config{}
	require.NoError(t, k.Unmarshal("", &conf))
	return conf
}

func TestDefaultConfigIsValid(t *testing.T) {
	conf := loadDefaults(t)
	require.NoError(t, conf.Validate())

	assert.Equal(t, 15*time.Second, conf.Pipeline.SettleDelay)
	assert.Equal(t, 3, conf.Pipeline.MaxAttempts)
	assert.Equal(t, time.Second, conf.Pipeline.InitialBackoff)
	assert.Equal(t, 7*24*time.Hour, conf.Pipeline.Retention)
}

func TestValidateCollectsAllFailures(t *testing.T) {
	conf := loadDefaults(t)
	conf.Redis.URI = ""
	conf.Kafka.Brokers = nil

	err := conf.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.uri")
	assert.Contains(t, err.Error(), "kafka.brokers")
}
