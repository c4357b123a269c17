package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/koonliang/stocktracker/internal/model"
)

// HoldingRepository provides data access methods for the holding table.
// Holdings are a derived cache of the transaction ledger; rows are written
// exclusively by the recalculation path, never by request handlers directly.
type HoldingRepository struct {
	db *sql.DB
}

// NewHoldingRepository creates a new HoldingRepository with the provided database connection.
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

const holdingColumns = `
	id, user_id, symbol, company_name, shares, average_cost, created_at, updated_at
`

// GetByUserAndSymbol retrieves a user's holding for one symbol.
// Returns sql.ErrNoRows when the user holds no position in the symbol.
func (s *HoldingRepository) GetByUserAndSymbol(userID, symbol string) (model.Holding, error) {
	query := `
		SELECT ` + holdingColumns + `
		FROM holding
		WHERE user_id = ? AND symbol = ?
	`

	row := s.db.QueryRow(query, userID, symbol)
	return scanHoldingRow(row.Scan)
}

// ListByUser retrieves all holdings for a user, sorted by symbol.
func (s *HoldingRepository) ListByUser(userID string) ([]model.Holding, error) {
	query := `
		SELECT ` + holdingColumns + `
		FROM holding
		WHERE user_id = ?
		ORDER BY symbol ASC
	`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	holdings := []model.Holding{}
	for rows.Next() {
		h, err := scanHoldingRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}

	return holdings, nil
}

// Insert creates a new holding row. Fails with a unique constraint violation
// if the user already has a holding for the symbol; callers use
// IsUniqueViolation to detect the race against a concurrent recalculation.
func (s *HoldingRepository) Insert(h model.Holding) error {
	query := `
		INSERT INTO holding (` + holdingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		h.ID,
		h.UserID,
		h.Symbol,
		h.CompanyName,
		h.Shares.String(),
		h.AverageCost.String(),
		h.CreatedAt.Format(time.RFC3339),
		h.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert into holding table: %w", err)
	}

	return nil
}

// Update rewrites the derived fields of a user's holding for one symbol.
// Returns the number of rows affected; zero means no holding exists yet.
func (s *HoldingRepository) Update(h model.Holding) (int64, error) {
	query := `
		UPDATE holding
		SET company_name = ?, shares = ?, average_cost = ?, updated_at = ?
		WHERE user_id = ? AND symbol = ?
	`

	result, err := s.db.Exec(query,
		h.CompanyName,
		h.Shares.String(),
		h.AverageCost.String(),
		h.UpdatedAt.Format(time.RFC3339),
		h.UserID,
		h.Symbol,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update holding table: %w", err)
	}

	return result.RowsAffected()
}

// DeleteByUserAndSymbol removes a user's holding for one symbol.
// Deleting a holding that does not exist is not an error.
func (s *HoldingRepository) DeleteByUserAndSymbol(userID, symbol string) error {
	_, err := s.db.Exec(`DELETE FROM holding WHERE user_id = ? AND symbol = ?`, userID, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete from holding table: %w", err)
	}
	return nil
}

// DeleteByUser removes every holding owned by the given user.
// Used when tearing down expired demo accounts.
func (s *HoldingRepository) DeleteByUser(userID string) error {
	_, err := s.db.Exec(`DELETE FROM holding WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete from holding table: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique constraint violation.
// The sqlite driver surfaces constraint failures as plain errors, so the
// check is on the message text.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func scanHoldingRow(scan func(dest ...any) error) (model.Holding, error) {
	var h model.Holding
	var sharesStr, costStr, createdAtStr, updatedAtStr string

	err := scan(
		&h.ID,
		&h.UserID,
		&h.Symbol,
		&h.CompanyName,
		&sharesStr,
		&costStr,
		&createdAtStr,
		&updatedAtStr,
	)
	if err == sql.ErrNoRows {
		return model.Holding{}, err
	}
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to scan holding table results: %w", err)
	}

	h.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil || h.CreatedAt.IsZero() {
		return model.Holding{}, fmt.Errorf("failed to parse date: %w", err)
	}
	h.UpdatedAt, err = ParseTime(updatedAtStr)
	if err != nil || h.UpdatedAt.IsZero() {
		return model.Holding{}, fmt.Errorf("failed to parse date: %w", err)
	}

	if h.Shares, err = ParseDecimal(sharesStr); err != nil {
		return model.Holding{}, err
	}
	if h.AverageCost, err = ParseDecimal(costStr); err != nil {
		return model.Holding{}, err
	}

	return h, nil
}
