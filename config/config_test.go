package config

import (
	"github.com/stretchr/testify/assert"
	"runtime"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("WORKER_VERSION", "v1.2.3")

	c := New()
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, "v1.2.3", c.Version)
	assert.Equal(t, 4096, c.MaxWidth)
	assert.Equal(t, int64(20<<20), c.OriginMaxBytes)
	assert.Equal(t, 30*time.Second, c.RequestTimeout())
	assert.Equal(t, 10*time.Second, c.OriginTimeout())
	assert.Equal(t, 5*time.Second, c.RateLimitDuration())
	assert.Equal(t, runtime.NumCPU(), c.WorkerSlots())
	assert.Equal(t, 4096*4096, c.MaxOutputPixels)
	assert.Equal(t, "avif,webp,jpeg", c.OutputFormats)
	assert.False(t, c.S3Enabled())
}

func TestNewPanicsOnBadValue(t *testing.T) {
	t.Setenv("MAX_WIDTH", "wide")

	assert.Panics(t, func() { New() })
}

func TestWorkerSlots(t *testing.T) {
	c := &Config{Workers: 3}
	assert.Equal(t, 3, c.WorkerSlots())
}

func TestDragonfly(t *testing.T) {
	d := NewDragonflyConfig()
	assert.False(t, d.Enabled())

	t.Setenv("DRAGONFLY_HOST", "cache.internal")
	t.Setenv("DRAGONFLY_PORT", "6380")
	d = NewDragonflyConfig()
	assert.True(t, d.Enabled())
	assert.Equal(t, "cache.internal:6380", d.Addr())
}
