// Package testdb opens in-memory SQLite databases carrying the application
// schema for repository and service tests.
package testdb

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var schema = []string{
	`CREATE TABLE crisis_requests (
		id INTEGER PRIMARY KEY,
		raw_text TEXT NOT NULL,
		need_type TEXT,
		quantity INTEGER,
		location_name TEXT,
		latitude REAL,
		longitude REAL,
		extraction TEXT NOT NULL DEFAULT '{}',
		urgency_score INTEGER NOT NULL DEFAULT 0,
		urgency_level TEXT,
		urgency_analysis TEXT NOT NULL DEFAULT '{}',
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE resources (
		id INTEGER PRIMARY KEY,
		resource_type TEXT NOT NULL,
		provider_name TEXT NOT NULL,
		quantity_available INTEGER NOT NULL CHECK (quantity_available >= 0),
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		location_name TEXT NOT NULL,
		availability_status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE dispatch_logs (
		id INTEGER PRIMARY KEY,
		crisis_request_id INTEGER NOT NULL REFERENCES crisis_requests(id),
		resource_id INTEGER NOT NULL REFERENCES resources(id),
		dispatched_quantity INTEGER NOT NULL CHECK (dispatched_quantity > 0),
		dispatched_at DATETIME NOT NULL,
		notes TEXT
	)`,
	`CREATE TABLE feedback_user (
		id INTEGER PRIMARY KEY,
		crisis_request_id INTEGER NOT NULL REFERENCES crisis_requests(id),
		is_correct BOOLEAN NOT NULL,
		corrected_text TEXT,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE feedback_dispatcher (
		id INTEGER PRIMARY KEY,
		crisis_request_id INTEGER NOT NULL REFERENCES crisis_requests(id),
		extraction_rating INTEGER CHECK (extraction_rating BETWEEN 1 AND 5),
		matching_rating INTEGER CHECK (matching_rating BETWEEN 1 AND 5),
		comment TEXT,
		created_at DATETIME NOT NULL
	)`,
}

// Open returns a fresh database private to t with the application schema.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db := OpenEmpty(t)
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

// OpenEmpty returns a fresh database private to t with no tables. SQLite has
// no row locks, so a single connection serialises transactions instead.
func OpenEmpty(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}
