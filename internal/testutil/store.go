package testutil

import (
	"path/filepath"
	"testing"

	"aipulse/internal/storage"
)

// SetupTestStore 在临时目录创建SQLite存储，测试结束自动关闭
func SetupTestStore(t testing.TB) storage.Store {
	t.Helper()

	store, err := storage.CreateSQLiteStore(filepath.Join(t.TempDir(), "aipulse.db"))
	if err != nil {
		t.Fatalf("创建测试数据库失败: %v", err)
	}

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("关闭测试数据库失败: %v", err)
		}
	})

	return store
}
