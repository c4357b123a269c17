package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/koonliang/stocktracker/internal/apperrors"
	"github.com/koonliang/stocktracker/internal/api/request"
	"github.com/koonliang/stocktracker/internal/model"
	"github.com/koonliang/stocktracker/internal/validation"
)

// maxImportRows bounds a single import request. Requests above the bound
// are rejected wholesale before any row is examined.
const maxImportRows = 1000

// CsvImportService ingests brokerage CSV exports. Incoming headers are
// matched fuzzily against a fixed alias table, each row is validated and
// parsed into a candidate transaction, and execution writes every valid row
// through the same pipeline as a manual create. One bad row never aborts
// the rest of the batch.
type CsvImportService struct {
	transactionService *TransactionService
}

// NewCsvImportService creates a new CsvImportService with the provided dependencies.
func NewCsvImportService(transactionService *TransactionService) *CsvImportService {
	return &CsvImportService{transactionService: transactionService}
}

// SuggestMappings scores every CSV header against the field alias table and
// proposes an assignment of headers to standard fields.
//
// Scoring per header/alias pair: exact match 1.0, substring containment in
// either direction 0.9, otherwise Levenshtein similarity when above 0.7.
// Each standard field keeps only its single best header with confidence of
// at least 0.6; a header displaced by a better match is demoted to the
// unmapped list.
func (s *CsvImportService) SuggestMappings(headers []string) model.CsvMappingSuggestion {
	suggestedMappings := make(map[string]string)
	confidenceScores := make(map[string]float64)
	bestHeaderPerField := make(map[string]string)
	bestConfidencePerField := make(map[string]float64)
	unmappedColumns := []string{}

	for _, header := range headers {
		normalized := strings.ToLower(strings.TrimSpace(header))

		fieldName, confidence := findBestFieldMatch(normalized)
		if fieldName == "" || confidence < 0.6 {
			unmappedColumns = append(unmappedColumns, header)
			continue
		}

		if confidence <= bestConfidencePerField[fieldName] {
			unmappedColumns = append(unmappedColumns, header)
			continue
		}

		// A later header beat the current holder; demote the old one.
		if oldHeader, ok := bestHeaderPerField[fieldName]; ok {
			delete(suggestedMappings, oldHeader)
			delete(confidenceScores, oldHeader)
			unmappedColumns = append(unmappedColumns, oldHeader)
		}

		bestHeaderPerField[fieldName] = header
		bestConfidencePerField[fieldName] = confidence
		suggestedMappings[header] = fieldName
		confidenceScores[header] = confidence
	}

	return model.CsvMappingSuggestion{
		SuggestedMappings: suggestedMappings,
		ConfidenceScores:  confidenceScores,
		UnmappedColumns:   unmappedColumns,
	}
}

// PreviewImport validates every row against the field mappings and buckets
// them into valid and invalid, without writing anything.
func (s *CsvImportService) PreviewImport(req request.CsvImportRequest) (model.CsvImportPreview, error) {
	if len(req.Rows) > maxImportRows {
		return model.CsvImportPreview{}, apperrors.ErrTooManyRows
	}
	if err := checkRequiredMappings(req.FieldMappings); err != nil {
		return model.CsvImportPreview{}, err
	}

	validRows := []model.TransactionPreviewRow{}
	errorRows := []model.TransactionPreviewRow{}

	for _, row := range req.Rows {
		previewRow := validateAndMapRow(row, req.FieldMappings)
		if previewRow.Valid {
			validRows = append(validRows, previewRow)
		} else {
			errorRows = append(errorRows, previewRow)
		}
	}

	return model.CsvImportPreview{
		ValidRows:  validRows,
		ErrorRows:  errorRows,
		TotalRows:  len(req.Rows),
		ValidCount: len(validRows),
		ErrorCount: len(errorRows),
	}, nil
}

// ExecuteImport re-validates every row and writes each valid one through
// the manual-create pipeline, including ticker verification and the sell
// guard. Failures are recorded as row-level errors and the row is skipped;
// the response reports the full breakdown.
func (s *CsvImportService) ExecuteImport(ctx context.Context, userID string, req request.CsvImportRequest) (model.CsvImportResult, error) {
	if len(req.Rows) > maxImportRows {
		return model.CsvImportResult{}, apperrors.ErrTooManyRows
	}
	if err := checkRequiredMappings(req.FieldMappings); err != nil {
		return model.CsvImportResult{}, err
	}

	imported := []model.Transaction{}
	importErrors := []model.CsvImportError{}
	skipped := 0

	for _, row := range req.Rows {
		previewRow := validateAndMapRow(row, req.FieldMappings)
		if !previewRow.Valid {
			importErrors = append(importErrors, previewRow.Errors...)
			skipped++
			continue
		}

		created, err := s.transactionService.CreateTransaction(ctx, userID, request.TransactionRequest{
			Type:            string(previewRow.Type),
			Symbol:          previewRow.Symbol,
			TransactionDate: previewRow.TransactionDate.Format("2006-01-02"),
			Shares:          previewRow.Shares,
			PricePerShare:   previewRow.PricePerShare,
			Notes:           previewRow.Notes,
		})
		if err != nil {
			log.Printf("import row %d failed for user %s: %v", row.RowNumber, userID, err)
			importErrors = append(importErrors, rowImportError(row.RowNumber, err))
			skipped++
			continue
		}

		imported = append(imported, created)
	}

	return model.CsvImportResult{
		ImportedCount:        len(imported),
		SkippedCount:         skipped,
		Errors:               importErrors,
		ImportedTransactions: imported,
	}, nil
}

// rowImportError converts a create failure into a row-scoped import error.
// Validation and guard failures point at the offending field where known.
func rowImportError(rowNumber int, err error) model.CsvImportError {
	importErr := model.CsvImportError{
		RowNumber: rowNumber,
		Message:   err.Error(),
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidTicker):
		importErr.Field = "symbol"
	case errors.Is(err, apperrors.ErrNoBuyTransactions),
		errors.Is(err, apperrors.ErrSellBeforeFirstBuy),
		errors.Is(err, apperrors.ErrInsufficientShares):
		importErr.Field = "shares"
	default:
		var vErr *validation.Error
		if errors.As(err, &vErr) {
			importErr.Field = vErr.FirstField()
		} else {
			importErr.Message = "Import failed: " + err.Error()
		}
	}

	return importErr
}

// checkRequiredMappings verifies that every required standard field appears
// as a target of the header mappings.
func checkRequiredMappings(fieldMappings map[string]string) error {
	mapped := make(map[string]bool, len(fieldMappings))
	for _, field := range fieldMappings {
		mapped[field] = true
	}

	var missing []string
	for _, field := range requiredImportFields {
		if !mapped[field] {
			missing = append(missing, field)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrMissingRequiredMappings, strings.Join(missing, ", "))
	}

	return nil
}

// validateAndMapRow parses one CSV row into a candidate transaction,
// collecting every error found rather than stopping at the first.
//
// Shares are parsed first because they may carry the row's direction: when
// no type column is mapped, a negative share count means SELL and the
// absolute value is the share count. An explicit SELL with negative shares
// is also normalized to a positive count.
func validateAndMapRow(row request.CsvRowData, fieldMappings map[string]string) model.TransactionPreviewRow {
	previewRow := model.TransactionPreviewRow{RowNumber: row.RowNumber}
	rowErrors := []model.CsvImportError{}

	values := extractMappedValues(row.Values, fieldMappings)

	shares := parseSharesWithSign(values["shares"], row.RowNumber, &rowErrors)

	var txType model.TransactionType
	if typeValue := values["type"]; typeValue == "" {
		if shares.IsNegative() {
			txType = model.TransactionTypeSell
			shares = shares.Abs()
		} else {
			txType = model.TransactionTypeBuy
		}
	} else {
		txType = parseImportType(typeValue, row.RowNumber, &rowErrors)
		if txType == model.TransactionTypeSell && shares.IsNegative() {
			shares = shares.Abs()
		}
	}

	previewRow.Type = txType
	previewRow.Symbol = parseImportSymbol(values["symbol"], values["exchange"], row.RowNumber, &rowErrors)
	previewRow.TransactionDate = parseImportDate(values["transactionDate"], row.RowNumber, &rowErrors)
	previewRow.Shares = shares
	previewRow.PricePerShare = parseImportPrice(values["pricePerShare"], row.RowNumber, &rowErrors)
	previewRow.Notes = values["notes"]
	previewRow.Valid = len(rowErrors) == 0
	previewRow.Errors = rowErrors

	return previewRow
}

// extractMappedValues pulls the mapped columns out of a row, keyed by
// standard field name. Empty cells are dropped.
func extractMappedValues(rowValues map[string]string, fieldMappings map[string]string) map[string]string {
	values := make(map[string]string, len(fieldMappings))
	for csvColumn, standardField := range fieldMappings {
		if value := strings.TrimSpace(rowValues[csvColumn]); value != "" {
			values[standardField] = value
		}
	}
	return values
}

func parseImportType(value string, rowNumber int, rowErrors *[]model.CsvImportError) model.TransactionType {
	normalized := strings.ToLower(strings.TrimSpace(value))
	txType, ok := typeSynonyms[normalized]
	if !ok {
		*rowErrors = append(*rowErrors, model.CsvImportError{
			RowNumber: rowNumber,
			Field:     "type",
			Message:   "Invalid type. Must be BUY or SELL (or common variations)",
			Value:     value,
		})
		return ""
	}
	return txType
}

func parseImportSymbol(value, exchange string, rowNumber int, rowErrors *[]model.CsvImportError) string {
	if value == "" {
		*rowErrors = append(*rowErrors, model.CsvImportError{
			RowNumber: rowNumber,
			Field:     "symbol",
			Message:   "Symbol is required",
		})
		return ""
	}

	symbol := strings.ToUpper(strings.TrimSpace(value))

	if exchange != "" {
		suffix := exchangeSuffixes[strings.ToUpper(strings.TrimSpace(exchange))]
		if suffix != "" && !strings.Contains(symbol, ".") {
			symbol += suffix
		}
	}

	if !validation.ValidSymbol(symbol) {
		*rowErrors = append(*rowErrors, model.CsvImportError{
			RowNumber: rowNumber,
			Field:     "symbol",
			Message:   "Invalid symbol format",
			Value:     value,
		})
		return ""
	}

	return symbol
}

func parseImportDate(value string, rowNumber int, rowErrors *[]model.CsvImportError) time.Time {
	if value == "" {
		*rowErrors = append(*rowErrors, model.CsvImportError{
			RowNumber: rowNumber,
			Field:     "transactionDate",
			Message:   "Date is required",
		})
		return time.Time{}
	}

	for _, layout := range dateLayouts {
		date, err := time.Parse(layout, value)
		if err != nil {
			continue
		}

		if date.After(time.Now().UTC()) {
			*rowErrors = append(*rowErrors, model.CsvImportError{
				RowNumber: rowNumber,
				Field:     "transactionDate",
				Message:   "Transaction date cannot be in the future",
				Value:     value,
			})
			return time.Time{}
		}

		return date
	}

	*rowErrors = append(*rowErrors, model.CsvImportError{
		RowNumber: rowNumber,
		Field:     "transactionDate",
		Message:   "Invalid date format. Expected formats: MM/DD/YYYY, YYYY-MM-DD, etc.",
		Value:     value,
	})
	return time.Time{}
}

// parseSharesWithSign parses a share count, keeping a leading sign so the
// caller can infer direction. Zero is rejected.
func parseSharesWithSign(value string, rowNumber int, rowErrors *[]model.CsvImportError) decimal.Decimal {
	if value == "" {
		*rowErrors = append(*rowErrors, model.CsvImportError{
			RowNumber: rowNumber,
			Field:     "shares",
			Message:   "Shares is required",
		})
		return decimal.Zero
	}

	cleaned := stripNumberFormatting(value, false)
	shares, err := decimal.NewFromString(cleaned)
	if err != nil {
		*rowErrors = append(*rowErrors, model.CsvImportError{
			RowNumber: rowNumber,
			Field:     "shares",
			Message:   "Invalid number format for shares",
			Value:     value,
		})
		return decimal.Zero
	}

	if shares.IsZero() {
		*rowErrors = append(*rowErrors, model.CsvImportError{
			RowNumber: rowNumber,
			Field:     "shares",
			Message:   "Shares cannot be zero",
			Value:     value,
		})
		return decimal.Zero
	}

	return shares
}

func parseImportPrice(value string, rowNumber int, rowErrors *[]model.CsvImportError) decimal.Decimal {
	if value == "" {
		*rowErrors = append(*rowErrors, model.CsvImportError{
			RowNumber: rowNumber,
			Field:     "pricePerShare",
			Message:   "Price per share is required",
		})
		return decimal.Zero
	}

	cleaned := stripNumberFormatting(value, true)
	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		*rowErrors = append(*rowErrors, model.CsvImportError{
			RowNumber: rowNumber,
			Field:     "pricePerShare",
			Message:   "Invalid number format for price",
			Value:     value,
		})
		return decimal.Zero
	}

	if !price.IsPositive() {
		*rowErrors = append(*rowErrors, model.CsvImportError{
			RowNumber: rowNumber,
			Field:     "pricePerShare",
			Message:   "Price per share must be greater than zero",
			Value:     value,
		})
		return decimal.Zero
	}

	return price
}

// stripNumberFormatting removes thousands separators and whitespace from a
// numeric cell, and optionally currency symbols for price columns.
func stripNumberFormatting(value string, stripCurrency bool) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r == ',' || r == ' ' || r == '\t':
		case stripCurrency && r == '$':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// findBestFieldMatch scores a normalized header against every alias of
// every standard field and returns the best field with its confidence.
func findBestFieldMatch(normalizedHeader string) (string, float64) {
	bestField := ""
	bestConfidence := 0.0

	for fieldName, aliases := range fieldAliases {
		for _, alias := range aliases {
			confidence := matchConfidence(normalizedHeader, alias)
			if confidence > bestConfidence {
				bestConfidence = confidence
				bestField = fieldName
			}
		}
	}

	return bestField, bestConfidence
}

// matchConfidence scores one header/alias pair: exact 1.0, containment in
// either direction 0.9, otherwise Levenshtein similarity if above 0.7.
func matchConfidence(header, alias string) float64 {
	if header == alias {
		return 1.0
	}

	if strings.Contains(header, alias) || strings.Contains(alias, header) {
		return 0.9
	}

	maxLength := len(header)
	if len(alias) > maxLength {
		maxLength = len(alias)
	}
	if maxLength == 0 {
		return 0.0
	}

	similarity := 1.0 - float64(levenshteinDistance(header, alias))/float64(maxLength)
	if similarity > 0.7 {
		return similarity
	}
	return 0.0
}

// levenshteinDistance computes the edit distance between two strings with
// the standard dynamic programming recurrence, one row at a time.
func levenshteinDistance(s1, s2 string) int {
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)

	for j := 0; j <= len(s2); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}
