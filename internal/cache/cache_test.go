package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ali01/trailnet/internal/config"
)

func TestNewReturnsNilWhenDisabled(t *testing.T) {
	c := New(config.RedisConfig{Enabled: false})
	assert.Nil(t, c)
}

// A nil cache must behave as an always-miss, no-op cache so every caller
// works unchanged when redis isn't configured.
func TestNilCacheIsSafeNoOp(t *testing.T) {
	var c *GeometryCache

	_, ok := c.GetIntersections(context.Background(), "a:b")
	assert.False(t, ok)

	c.PutIntersections(context.Background(), "a:b", []Intersection{{PointX: 1}})
	assert.NoError(t, c.Close())
}
