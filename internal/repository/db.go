package repository

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"choreboard/internal/model"
)

// NewDB opens a SQLite database and brings the schema up to date.
func NewDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "choreboard.db"
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	// Ignore DSNs with explicit mode=memory or network.
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	// Strip file: prefix if present.
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

// appliedMigration records a schema step that has already run, so each
// step runs exactly once and "already applied" is never confused with a
// genuine failure.
type appliedMigration struct {
	ID        string `gorm:"primaryKey"`
	AppliedAt time.Time
}

func (appliedMigration) TableName() string {
	return "schema_migrations"
}

type migration struct {
	id  string
	run func(tx *gorm.DB) error
}

var migrations = []migration{
	{id: "0001_backfill_sort_order", run: backfillSortOrder},
}

// Migrate creates tables and applies any pending schema steps.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Task{}, &model.Completion{}, &appliedMigration{}); err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}

	for _, m := range migrations {
		var count int64
		if err := db.Model(&appliedMigration{}).Where("id = ?", m.id).Count(&count).Error; err != nil {
			return fmt.Errorf("check migration %s: %w", m.id, err)
		}
		if count > 0 {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.run(tx); err != nil {
				return err
			}
			return tx.Create(&appliedMigration{ID: m.id, AppliedAt: time.Now()}).Error
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", m.id, err)
		}
	}

	return nil
}

// backfillSortOrder assigns a dense 0..N-1 order to tasks created
// before ordering existed. Ranking by (sort_order, id) makes the step
// a no-op on databases that are already dense.
func backfillSortOrder(tx *gorm.DB) error {
	var tasks []model.Task
	if err := tx.Where("active = ?", true).
		Order("sort_order, id").
		Find(&tasks).Error; err != nil {
		return err
	}
	for i, task := range tasks {
		if task.SortOrder == i {
			continue
		}
		if err := tx.Model(&model.Task{}).Where("id = ?", task.ID).
			Update("sort_order", i).Error; err != nil {
			return err
		}
	}
	return nil
}
