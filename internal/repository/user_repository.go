package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/koonliang/stocktracker/internal/model"
)

// UserRepository provides data access methods for the user table.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository with the provided database connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user row.
func (s *UserRepository) Create(u model.User) error {
	query := `
		INSERT INTO user (id, name, email, is_demo, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		u.ID,
		u.Name,
		u.Email,
		u.IsDemo,
		u.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert into user table: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID. Returns sql.ErrNoRows when no such user exists.
func (s *UserRepository) GetByID(userID string) (model.User, error) {
	var u model.User
	var createdAtStr string

	err := s.db.QueryRow(
		`SELECT id, name, email, is_demo, created_at FROM user WHERE id = ?`,
		userID,
	).Scan(&u.ID, &u.Name, &u.Email, &u.IsDemo, &createdAtStr)
	if err == sql.ErrNoRows {
		return model.User{}, err
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to scan user table results: %w", err)
	}

	u.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil || u.CreatedAt.IsZero() {
		return model.User{}, fmt.Errorf("failed to parse date: %w", err)
	}

	return u, nil
}

// ListExpiredDemo retrieves all demo users created before the cutoff time.
func (s *UserRepository) ListExpiredDemo(cutoff time.Time) ([]model.User, error) {
	rows, err := s.db.Query(
		`SELECT id, name, email, is_demo, created_at FROM user WHERE is_demo = 1 AND created_at < ?`,
		cutoff.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query user table: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		var createdAtStr string

		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.IsDemo, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan user table results: %w", err)
		}

		u.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil || u.CreatedAt.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		users = append(users, u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user table: %w", err)
	}

	return users, nil
}

// Delete removes a user row. Holdings and transactions must be removed first;
// the schema enforces this with foreign keys.
func (s *UserRepository) Delete(userID string) error {
	_, err := s.db.Exec(`DELETE FROM user WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete from user table: %w", err)
	}
	return nil
}
