package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps the GORM DB handle and exposes repository helpers.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&PromptRecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	return &Database{gorm: db}, nil
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SavePrompt inserts a prompt record.
func (d *Database) SavePrompt(record *PromptRecord) error {
	if d == nil {
		return errors.New("database is nil")
	}
	if record == nil {
		return errors.New("prompt record is nil")
	}
	record.Utterance = strings.TrimSpace(record.Utterance)
	record.Translated = strings.TrimSpace(record.Translated)
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Create(record).Error
}

// ListPrompts returns prompt records newest first along with the total count.
func (d *Database) ListPrompts(offset, limit int) ([]PromptRecord, int64, error) {
	if d == nil {
		return nil, 0, errors.New("database is nil")
	}
	total, err := d.CountPrompts()
	if err != nil {
		return nil, 0, err
	}
	query := d.gorm.Model(&PromptRecord{}).Order("created_at DESC").Order("id DESC")
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []PromptRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountPrompts returns the number of stored prompt records.
func (d *Database) CountPrompts() (int64, error) {
	var count int64
	if err := d.gorm.Model(&PromptRecord{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByOutcome aggregates prompt records per outcome.
func (d *Database) CountByOutcome() (map[string]int64, error) {
	if d == nil {
		return nil, errors.New("database is nil")
	}
	var rows []struct {
		Outcome string
		Total   int64
	}
	if err := d.gorm.Model(&PromptRecord{}).Select("outcome, COUNT(*) AS total").Group("outcome").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Outcome] = row.Total
	}
	return out, nil
}

// ClearPrompts removes every stored prompt record.
func (d *Database) ClearPrompts() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&PromptRecord{}).Error
}
