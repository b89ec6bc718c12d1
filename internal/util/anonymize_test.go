package util

import (
	"strings"
	"testing"
)

func TestAnonymizerHash(t *testing.T) {
	t.Parallel()

	a := NewAnonymizer("test-salt")

	t.Run("相同输入产生相同令牌", func(t *testing.T) {
		t.Parallel()
		if a.Hash("client-123") != a.Hash("client-123") {
			t.Error("同一(salt, ID)的哈希结果应稳定")
		}
	})

	t.Run("不同输入产生不同令牌", func(t *testing.T) {
		t.Parallel()
		if a.Hash("client-123") == a.Hash("client-124") {
			t.Error("不同ID不应碰撞")
		}
	})

	t.Run("不同盐值产生不同令牌", func(t *testing.T) {
		t.Parallel()
		b := NewAnonymizer("other-salt")
		if a.Hash("client-123") == b.Hash("client-123") {
			t.Error("不同盐值应产生不同令牌")
		}
	})

	t.Run("令牌不含原始ID", func(t *testing.T) {
		t.Parallel()
		raw := "user@example.com"
		token := a.Hash(raw)
		if strings.Contains(token, raw) || strings.Contains(token, "example") {
			t.Errorf("令牌泄露原始ID: %q", token)
		}
		// 32字节哈希的hex编码固定64字符
		if len(token) != 64 {
			t.Errorf("令牌长度期望 64, 实际 %d", len(token))
		}
	})

	t.Run("空ID返回空不哈希", func(t *testing.T) {
		t.Parallel()
		if got := a.Hash(""); got != "" {
			t.Errorf("空ID期望空令牌, 实际 %q", got)
		}
	})

	t.Run("超长盐值正常工作", func(t *testing.T) {
		t.Parallel()
		long := NewAnonymizer(strings.Repeat("x", 200))
		if got := long.Hash("id"); len(got) != 64 {
			t.Errorf("超长盐值哈希异常, 实际 %q", got)
		}
	})
}
