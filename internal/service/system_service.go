package service

import (
	"database/sql"

	"github.com/koonliang/stocktracker/internal/database"
	"github.com/koonliang/stocktracker/internal/version"
)

// SystemService handles system-level concerns: health checks and version
// reporting.
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService with the provided database connection.
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{db: db}
}

// CheckHealth verifies database connectivity.
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// AppVersion returns the build version stamped at link time.
func (s *SystemService) AppVersion() string {
	return version.Version
}
