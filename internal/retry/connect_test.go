package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/devmarks/internal/logger"
)

func fastOptions() Options {
	return Options{
		ConnectTimeout: 500 * time.Millisecond,
		RetryInterval:  5 * time.Millisecond,
		MaxWait:        20 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestConnectSucceedsAfterRetries(t *testing.T) {
	calls := 0
	ping := func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}

	err := Connect(context.Background(), "postgres", "db:5432", fastOptions(), ping, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestConnectTimesOut(t *testing.T) {
	opts := fastOptions()
	opts.ConnectTimeout = 40 * time.Millisecond

	down := errors.New("connection refused")
	err := Connect(context.Background(), "redis", "cache:6379", opts,
		func(ctx context.Context) error { return down }, logger.Nop())

	require.Error(t, err)
	assert.ErrorIs(t, err, down)
	assert.Contains(t, err.Error(), "redis unavailable at cache:6379")
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"connect timeout", func(o *Options) { o.ConnectTimeout = 0 }},
		{"retry interval", func(o *Options) { o.RetryInterval = -time.Second }},
		{"max wait", func(o *Options) { o.MaxWait = 0 }},
		{"ping timeout", func(o *Options) { o.PingTimeout = 0 }},
		{"warn threshold", func(o *Options) { o.WarnThreshold = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := fastOptions()
			tt.mutate(&o)
			assert.Error(t, o.Validate())
		})
	}
	assert.NoError(t, fastOptions().Validate())
}
