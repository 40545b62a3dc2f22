// Package store persists ADK sessions and archived pipeline runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"google.golang.org/adk/session"
	sessiondb "google.golang.org/adk/session/database"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dsn enables WAL and a busy timeout so the session service and the archive
// can share one database file.
func dsn(path string) string {
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
}

// PipelineRun is one completed write → review → refactor run.
type PipelineRun struct {
	ID             uint   `gorm:"primaryKey"`
	AppName        string `gorm:"index"`
	UserID         string `gorm:"index"`
	SessionID      string `gorm:"index"`
	Request        string
	GeneratedCode  string
	ReviewComments string
	RefactoredCode string
	CreatedAt      time.Time
}

// Store owns the SQLite database holding archived pipeline runs and, via
// SessionService, the ADK sessions. Both share one connection pool.
type Store struct {
	conn *sql.DB
	db   *gorm.DB
}

// Open opens (and migrates) the database at path.
func Open(path string) (*Store, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	conn, err := sql.Open(sqlite.DriverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db, err := gorm.Open(&sqlite.Dialector{Conn: conn}, gormConfig())
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if err := db.AutoMigrate(&PipelineRun{}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return &Store{conn: conn, db: db}, nil
}

// SessionService returns a persistent ADK session service on the store's
// connection. It stops working once the store is closed.
func (s *Store) SessionService() (session.Service, error) {
	svc, err := sessiondb.NewSessionService(&sqlite.Dialector{Conn: s.conn}, gormConfig())
	if err != nil {
		return nil, fmt.Errorf("session service: %w", err)
	}
	if err := sessiondb.AutoMigrate(svc); err != nil {
		return nil, fmt.Errorf("migrate session database: %w", err)
	}
	return svc, nil
}

// Save records a run.
func (s *Store) Save(ctx context.Context, run *PipelineRun) error {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("save pipeline run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]PipelineRun, error) {
	if limit <= 0 {
		limit = 10
	}
	var runs []PipelineRun
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("list pipeline runs: %w", err)
	}
	return runs, nil
}

// Close closes the connection pool shared with the session service.
func (s *Store) Close() error {
	return s.conn.Close()
}
