package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CsvImportError is a row-scoped import failure. Field and Value are empty
// when the error is not attributable to a single column.
type CsvImportError struct {
	RowNumber int    `json:"rowNumber"`
	Field     string `json:"field,omitempty"`
	Message   string `json:"message"`
	Value     string `json:"value,omitempty"`
}

// TransactionPreviewRow is the parsed candidate transaction for one CSV row,
// valid or not. Invalid rows carry every error found in the row, not just the
// first.
type TransactionPreviewRow struct {
	RowNumber       int              `json:"rowNumber"`
	Type            TransactionType  `json:"type,omitempty"`
	Symbol          string           `json:"symbol,omitempty"`
	TransactionDate time.Time        `json:"transactionDate,omitempty"`
	Shares          decimal.Decimal  `json:"shares"`
	PricePerShare   decimal.Decimal  `json:"pricePerShare"`
	Notes           string           `json:"notes,omitempty"`
	Valid           bool             `json:"valid"`
	Errors          []CsvImportError `json:"errors,omitempty"`
}

// CsvMappingSuggestion maps CSV headers to standard field names, with the
// fuzzy-match confidence per mapped header. Headers that matched nothing, or
// that lost the best-header-per-field contest, end up in UnmappedColumns.
type CsvMappingSuggestion struct {
	SuggestedMappings map[string]string  `json:"suggestedMappings"`
	ConfidenceScores  map[string]float64 `json:"confidenceScores"`
	UnmappedColumns   []string           `json:"unmappedColumns"`
}

// CsvImportPreview buckets rows into valid and invalid without writing
// anything.
type CsvImportPreview struct {
	ValidRows  []TransactionPreviewRow `json:"validRows"`
	ErrorRows  []TransactionPreviewRow `json:"errorRows"`
	TotalRows  int                     `json:"totalRows"`
	ValidCount int                     `json:"validCount"`
	ErrorCount int                     `json:"errorCount"`
}

// CsvImportResult is the outcome of a best-effort batch import.
type CsvImportResult struct {
	ImportedCount        int              `json:"importedCount"`
	SkippedCount         int              `json:"skippedCount"`
	Errors               []CsvImportError `json:"errors"`
	ImportedTransactions []Transaction    `json:"importedTransactions"`
}
