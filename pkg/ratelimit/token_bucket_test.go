package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketAllow(t *testing.T) {
	t.Run("初始容量内直接放行", func(t *testing.T) {
		tb := NewTokenBucket(60, 3)
		assert.True(t, tb.Allow())
		assert.True(t, tb.Allow())
		assert.True(t, tb.Allow())
	})

	t.Run("令牌耗尽后拒绝", func(t *testing.T) {
		// 速率设得极低，避免测试期间自然补充令牌
		tb := NewTokenBucket(1, 2)
		assert.True(t, tb.Allow())
		assert.True(t, tb.Allow())
		assert.False(t, tb.Allow(), "桶空时应拒绝")
	})

	t.Run("未指定容量时按QPM一半兜底", func(t *testing.T) {
		tb := NewTokenBucket(10, 0)
		for i := 0; i < 5; i++ {
			assert.True(t, tb.Allow(), "第%d个请求应放行", i+1)
		}
		assert.False(t, tb.Allow())
	})
}

func TestTokenBucketWait(t *testing.T) {
	t.Run("有令牌时立即返回", func(t *testing.T) {
		tb := NewTokenBucket(60, 1)
		start := time.Now()
		require.NoError(t, tb.Wait(context.Background()))
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("上下文取消中断等待", func(t *testing.T) {
		tb := NewTokenBucket(1, 1)
		require.NoError(t, tb.Wait(context.Background())) // 耗尽唯一令牌

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		err := tb.Wait(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

func TestRetryWithBackoff(t *testing.T) {
	t.Run("成功时只调用一次", func(t *testing.T) {
		tb := NewTokenBucket(600, 10)
		calls := 0
		err := tb.RetryWithBackoff(context.Background(), func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("可重试错误按退避重试", func(t *testing.T) {
		tb := NewTokenBucket(600, 10).WithRetryPolicy(time.Millisecond, 2)
		calls := 0
		err := tb.RetryWithBackoff(context.Background(), func() error {
			calls++
			if calls < 3 {
				return fmt.Errorf("连接失败: timeout")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("不可重试错误直接返回", func(t *testing.T) {
		tb := NewTokenBucket(600, 10).WithRetryPolicy(time.Millisecond, 3)
		sentinel := errors.New("参数非法")
		calls := 0
		err := tb.RetryWithBackoff(context.Background(), func() error {
			calls++
			return sentinel
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("注册的哨兵错误可重试", func(t *testing.T) {
		base := errors.New("评审服务错误")
		tb := NewTokenBucket(600, 10).
			WithRetryPolicy(time.Millisecond, 2).
			WithRetryableErrors(base)

		calls := 0
		err := tb.RetryWithBackoff(context.Background(), func() error {
			calls++
			return fmt.Errorf("%w: 下游不可用", base)
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, base))
		assert.Equal(t, 3, calls, "maxRetries=2意味着总共尝试三次")
	})
}
