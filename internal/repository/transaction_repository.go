package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/koonliang/stocktracker/internal/model"
)

// TransactionRepository provides data access methods for the transaction table.
// It handles storing and querying the buy/sell ledger that all derived state
// (holdings, valuations, history) is rebuilt from.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `
	id, user_id, type, symbol, company_name, transaction_date,
	shares, price_per_share, broker_fee, total_amount, notes,
	created_at, updated_at
`

// Create inserts a new transaction row.
func (s *TransactionRepository) Create(t model.Transaction) error {
	query := `
		INSERT INTO "transaction" (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		t.ID,
		t.UserID,
		string(t.Type),
		t.Symbol,
		t.CompanyName,
		t.TransactionDate.Format("2006-01-02"),
		t.Shares.String(),
		t.PricePerShare.String(),
		t.BrokerFee.String(),
		t.TotalAmount.String(),
		t.Notes,
		t.CreatedAt.Format(time.RFC3339),
		t.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert into transaction table: %w", err)
	}

	return nil
}

// Update rewrites a transaction's mutable fields. The row is matched on both
// id and user_id so a user can never touch another user's ledger.
//
// Returns the number of rows affected; zero means no matching row exists.
func (s *TransactionRepository) Update(t model.Transaction) (int64, error) {
	query := `
		UPDATE "transaction"
		SET type = ?, symbol = ?, company_name = ?, transaction_date = ?,
			shares = ?, price_per_share = ?, broker_fee = ?, total_amount = ?,
			notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := s.db.Exec(query,
		string(t.Type),
		t.Symbol,
		t.CompanyName,
		t.TransactionDate.Format("2006-01-02"),
		t.Shares.String(),
		t.PricePerShare.String(),
		t.BrokerFee.String(),
		t.TotalAmount.String(),
		t.Notes,
		t.UpdatedAt.Format(time.RFC3339),
		t.ID,
		t.UserID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update transaction table: %w", err)
	}

	return result.RowsAffected()
}

// Delete removes a transaction owned by the given user.
// Returns the number of rows affected; zero means no matching row exists.
func (s *TransactionRepository) Delete(transactionID, userID string) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM "transaction" WHERE id = ? AND user_id = ?`, transactionID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from transaction table: %w", err)
	}

	return result.RowsAffected()
}

// DeleteByUser removes every transaction owned by the given user.
// Used when tearing down expired demo accounts.
func (s *TransactionRepository) DeleteByUser(userID string) error {
	_, err := s.db.Exec(`DELETE FROM "transaction" WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete from transaction table: %w", err)
	}
	return nil
}

// GetByIDAndUser retrieves a single transaction owned by the given user.
// Returns sql.ErrNoRows when no matching row exists.
func (s *TransactionRepository) GetByIDAndUser(transactionID, userID string) (model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		WHERE id = ? AND user_id = ?
	`

	row := s.db.QueryRow(query, transactionID, userID)
	return scanTransactionRow(row.Scan)
}

// ListByUser retrieves all transactions for a user, newest first.
// Ties on transaction date are broken by insertion order, newest first.
func (s *TransactionRepository) ListByUser(userID string) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		WHERE user_id = ?
		ORDER BY transaction_date DESC, created_at DESC
	`

	return s.queryTransactions(query, userID)
}

// ListByUserAndSymbol retrieves a user's ledger for one symbol in
// chronological order. Ties on transaction date are broken by insertion
// order, so replaying the result reproduces the order events were recorded.
func (s *TransactionRepository) ListByUserAndSymbol(userID, symbol string) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		WHERE user_id = ? AND symbol = ?
		ORDER BY transaction_date ASC, created_at ASC
	`

	return s.queryTransactions(query, userID, symbol)
}

// ListByUserChronological retrieves a user's full ledger in chronological
// order across all symbols. Used when replaying history.
func (s *TransactionRepository) ListByUserChronological(userID string) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		WHERE user_id = ?
		ORDER BY transaction_date ASC, created_at ASC
	`

	return s.queryTransactions(query, userID)
}

// DistinctSymbols returns the set of symbols appearing in a user's ledger,
// sorted alphabetically.
func (s *TransactionRepository) DistinctSymbols(userID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT symbol FROM "transaction" WHERE user_id = ? ORDER BY symbol ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return symbols, nil
}

// EarliestTransactionDate finds the date of the user's first transaction.
// This is used to determine the starting point for historical calculations.
//
// Returns time.Time{} (zero value) if:
//   - no transactions are found
//   - database query fails
//   - date parsing fails
func (s *TransactionRepository) EarliestTransactionDate(userID string) time.Time {
	var dateStr sql.NullString

	err := s.db.QueryRow(
		`SELECT MIN(transaction_date) FROM "transaction" WHERE user_id = ?`,
		userID,
	).Scan(&dateStr)
	if err != nil || !dateStr.Valid {
		return time.Time{}
	}

	date, err := time.Parse("2006-01-02", dateStr.String)
	if err != nil {
		return time.Time{}
	}

	return date
}

// EarliestBuyDate finds the date of the user's first BUY for a symbol.
// Returns time.Time{} (zero value) when the user has never bought the symbol.
func (s *TransactionRepository) EarliestBuyDate(userID, symbol string) time.Time {
	var dateStr sql.NullString

	err := s.db.QueryRow(
		`SELECT MIN(transaction_date) FROM "transaction" WHERE user_id = ? AND symbol = ? AND type = 'BUY'`,
		userID, symbol,
	).Scan(&dateStr)
	if err != nil || !dateStr.Valid {
		return time.Time{}
	}

	date, err := time.Parse("2006-01-02", dateStr.String)
	if err != nil {
		return time.Time{}
	}

	return date
}

func (s *TransactionRepository) queryTransactions(query string, args ...any) ([]model.Transaction, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransactionRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// scanTransactionRow scans one transaction row through a row.Scan-compatible
// function, converting TEXT columns back into time.Time and decimal values.
func scanTransactionRow(scan func(dest ...any) error) (model.Transaction, error) {
	var t model.Transaction
	var typeStr, dateStr, sharesStr, priceStr, feeStr, totalStr string
	var createdAtStr, updatedAtStr string

	err := scan(
		&t.ID,
		&t.UserID,
		&typeStr,
		&t.Symbol,
		&t.CompanyName,
		&dateStr,
		&sharesStr,
		&priceStr,
		&feeStr,
		&totalStr,
		&t.Notes,
		&createdAtStr,
		&updatedAtStr,
	)
	if err == sql.ErrNoRows {
		return model.Transaction{}, err
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction table results: %w", err)
	}

	t.Type = model.TransactionType(typeStr)

	t.TransactionDate, err = ParseTime(dateStr)
	if err != nil || t.TransactionDate.IsZero() {
		return model.Transaction{}, fmt.Errorf("failed to parse date: %w", err)
	}

	t.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil || t.CreatedAt.IsZero() {
		return model.Transaction{}, fmt.Errorf("failed to parse date: %w", err)
	}
	t.UpdatedAt, err = ParseTime(updatedAtStr)
	if err != nil || t.UpdatedAt.IsZero() {
		return model.Transaction{}, fmt.Errorf("failed to parse date: %w", err)
	}

	if t.Shares, err = ParseDecimal(sharesStr); err != nil {
		return model.Transaction{}, err
	}
	if t.PricePerShare, err = ParseDecimal(priceStr); err != nil {
		return model.Transaction{}, err
	}
	if t.BrokerFee, err = ParseDecimal(feeStr); err != nil {
		return model.Transaction{}, err
	}
	if t.TotalAmount, err = ParseDecimal(totalStr); err != nil {
		return model.Transaction{}, err
	}

	return t, nil
}
