package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	Name       string     `gorm:"not null" json:"name"`
	KeyPreview string     `json:"key_preview"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table
type APIUsage struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	KeyID             uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date              string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount      int    `gorm:"default:0" json:"request_count"`
	TotalRooms        int    `gorm:"default:0" json:"total_rooms"`
	TotalHousekeepers int    `gorm:"default:0" json:"total_housekeepers"`
}

// AllocationRun keeps a summary of every allocation served, for support
// questions about a past run. The allocation itself is not stored.
type AllocationRun struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	RunID        string    `gorm:"uniqueIndex;size:36;not null" json:"run_id"`
	KeyID        uint      `gorm:"index" json:"key_id"`
	Strategy     string    `json:"strategy"`
	Seed         int64     `json:"seed"`
	Penalty      float64   `json:"penalty"`
	Rooms        int       `json:"rooms"`
	Housekeepers int       `json:"housekeepers"`
	Relaxations  int       `json:"relaxations"`
	DurationMS   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Open connects to Postgres when url is set, otherwise to the SQLite file
// at path, and migrates the schema.
func Open(url, path string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	if url != "" {
		cfg.PrepareStmt = false
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  url,
			PreferSimpleProtocol: true,
		}), cfg)
	} else {
		if path == "" {
			path = "api_keys.db"
		}
		db, err = gorm.Open(sqlite.Open(path), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&APIKey{}, &APIUsage{}, &AllocationRun{}, &MasterUser{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

// Today is the usage bucket for the current UTC day
func Today() string {
	return time.Now().UTC().Format("2006-01-02")
}

// RecordUsage adds one request to a key's daily usage row with a single upsert
func RecordUsage(db *gorm.DB, keyID uint, day string, rooms, housekeepers int) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":      gorm.Expr("request_count + ?", 1),
			"total_rooms":        gorm.Expr("total_rooms + ?", rooms),
			"total_housekeepers": gorm.Expr("total_housekeepers + ?", housekeepers),
		}),
	}).Create(&APIUsage{
		KeyID:             keyID,
		Date:              day,
		RequestCount:      1,
		TotalRooms:        rooms,
		TotalHousekeepers: housekeepers,
	}).Error
}

// UsageHistory returns the latest days of usage for a key, newest first
func UsageHistory(db *gorm.DB, keyID uint, days int) ([]APIUsage, error) {
	var usage []APIUsage
	err := db.Where("key_id = ?", keyID).Order("date desc").Limit(days).Find(&usage).Error
	return usage, err
}

// RecentRuns returns the latest allocation runs of a key, newest first
func RecentRuns(db *gorm.DB, keyID uint, limit int) ([]AllocationRun, error) {
	var runs []AllocationRun
	err := db.Where("key_id = ?", keyID).Order("created_at desc, id desc").Limit(limit).Find(&runs).Error
	return runs, err
}
