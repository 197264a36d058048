//go:build integration

package export

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChromeExporter_PDF(t *testing.T) {
	exp := NewChromeExporter(ChromeConfig{RemoteURL: os.Getenv("CHROME_URL")}, nil)

	data, err := exp.PDF(context.Background(), renderDoc(t, "Jane"), DefaultOptions())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestChromeExporter_Snapshot(t *testing.T) {
	exp := NewChromeExporter(ChromeConfig{RemoteURL: os.Getenv("CHROME_URL")}, nil)

	data, err := exp.Snapshot(context.Background(), renderDoc(t, "Jane"), DefaultOptions())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0xFF, 0xD8}), "JPEG magic")
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	cache, err := NewRedisCacheFromURL(url)
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	require.NoError(t, cache.Ping(ctx))

	key := "cvbuilder:test:" + CacheKey("<p>x</p>", DefaultOptions())
	_, ok, err := cache.Get(ctx, key+":missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, key, []byte("pdf"), DefaultCacheTTL))
	got, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("pdf"), got)
}
