package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChecker(t *testing.T) {
	c := NewChecker(time.Second)
	c.Register("store", func(ctx context.Context) error { return nil })
	c.Register("rpc", func(ctx context.Context) error { return errors.New("connection refused") })

	results := c.Run(context.Background())
	assert.Equal(t, StatusHealthy, results["store"].Status)
	assert.Equal(t, StatusUnhealthy, results["rpc"].Status)
	assert.Equal(t, "connection refused", results["rpc"].Message)

	assert.False(t, c.Healthy(context.Background()))
}

func TestCheckerTimeout(t *testing.T) {
	c := NewChecker(10 * time.Millisecond)
	c.Register("slow", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})

	results := c.Run(context.Background())
	assert.Equal(t, StatusUnhealthy, results["slow"].Status)
}

func TestCheckerAllHealthy(t *testing.T) {
	c := NewChecker(0)
	c.Register("a", func(ctx context.Context) error { return nil })
	assert.True(t, c.Healthy(context.Background()))
}
