package storage

import (
	"testing"

	"github.com/andresuchdata/devicehub/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveObjectKey(t *testing.T) {
	tests := []struct {
		prefix, key, want string
	}{
		{"reports", "sales.csv", "reports/sales.csv"},
		{"reports/", "/sales.csv", "reports/sales.csv"},
		{"reports", "reports/sales.csv", "reports/sales.csv"},
		{"reports", "reportsales.csv", "reports/reportsales.csv"},
		{"", "sales.csv", "sales.csv"},
		{"reports", "", "reports"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveObjectKey(tt.prefix, tt.key), "%q + %q", tt.prefix, tt.key)
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv", ContentType("reports/daily.CSV"))
	assert.Equal(t, "application/json", ContentType("x.json"))
	assert.Equal(t, "application/octet-stream", ContentType("blob"))
}

func TestSplitEndpoint(t *testing.T) {
	host, secure := splitEndpoint("https://s3.example.com/", false)
	assert.Equal(t, "s3.example.com", host)
	assert.True(t, secure)

	host, secure = splitEndpoint("http://localhost:9000", true)
	assert.Equal(t, "localhost:9000", host)
	assert.False(t, secure)

	host, secure = splitEndpoint("minio:9000", true)
	assert.Equal(t, "minio:9000", host)
	assert.True(t, secure)
}

func TestNewMinioClient(t *testing.T) {
	valid := config.StorageConfig{
		Endpoint:  "http://localhost:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "devicehub-reports",
	}

	client, err := NewMinioClient(valid)
	require.NoError(t, err)
	assert.Equal(t, "devicehub-reports", client.bucket)

	missing := []func(*config.StorageConfig){
		func(c *config.StorageConfig) { c.Endpoint = " " },
		func(c *config.StorageConfig) { c.SecretKey = "" },
		func(c *config.StorageConfig) { c.Bucket = "" },
	}
	for _, mutate := range missing {
		cfg := valid
		mutate(&cfg)
		_, err := NewMinioClient(cfg)
		assert.Error(t, err)
	}
}
