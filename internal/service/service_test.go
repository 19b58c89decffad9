package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"choreboard/internal/repository"
)

type testEnv struct {
	db    *gorm.DB
	tasks *TaskService
	today *TodayService
	order *OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	taskRepo := repository.NewTaskRepository(db)
	completionRepo := repository.NewCompletionRepository(db)

	return &testEnv{
		db:    db,
		tasks: NewTaskService(db, taskRepo, completionRepo),
		today: NewTodayService(taskRepo, completionRepo),
		order: NewOrderService(db, taskRepo),
	}
}
