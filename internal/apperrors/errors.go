package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrUserNotFound indicates that a user with the given ID does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does
	// not exist or belongs to a different user.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrHoldingNotFound indicates that no holding exists for a user/symbol pair.
	ErrHoldingNotFound = errors.New("holding not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidTicker indicates that the symbol could not be validated against
	// the market data provider.
	ErrInvalidTicker = errors.New("invalid ticker symbol")

	// ErrNoBuyTransactions indicates a sell was attempted for a symbol that has
	// never been bought.
	ErrNoBuyTransactions = errors.New("no buy transactions exist for symbol")

	// ErrSellBeforeFirstBuy indicates the sell date precedes the symbol's
	// earliest buy date.
	ErrSellBeforeFirstBuy = errors.New("sell date cannot be before first buy date")

	// ErrInsufficientShares indicates that a sell transaction cannot be completed
	// because the user does not hold enough shares of the symbol.
	ErrInsufficientShares = errors.New("insufficient shares for sale")

	// ErrTooManyRows indicates a CSV import request exceeded the per-call row cap.
	ErrTooManyRows = errors.New("too many rows in import request")

	// ErrMissingRequiredMappings indicates that one or more required CSV field
	// mappings are absent from the import request.
	ErrMissingRequiredMappings = errors.New("missing required field mappings")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidRange indicates an unsupported performance history range value.
	ErrInvalidRange = errors.New("invalid history range")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data, as opposed to missing entities or validation issues.
var (
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveTransaction  = errors.New("failed to retrieve transaction")
	ErrFailedToRetrieveHoldings     = errors.New("failed to retrieve holdings")
	ErrFailedToGetPortfolio         = errors.New("failed to get portfolio")
	ErrFailedToGetPerformance       = errors.New("failed to get performance history")
	ErrFailedToImportTransactions   = errors.New("failed to import transactions")
	ErrFailedToExportTransactions   = errors.New("failed to export transactions")
	ErrFailedToCreateDemoAccount    = errors.New("failed to create demo account")
)

// Data integrity errors represent inconsistencies or corruption in the data.
var (
	// ErrDataInconsistency indicates that the data is in an inconsistent state
	// (e.g., a holding row vanished between a uniqueness conflict and the retry).
	ErrDataInconsistency = errors.New("data inconsistency detected")
)
