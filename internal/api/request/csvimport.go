package request

// CsvMappingSuggestionRequest carries the raw header row of an uploaded CSV.
type CsvMappingSuggestionRequest struct {
	Headers []string `json:"headers"`
}

// CsvRowData is one data row of an uploaded CSV, keyed by the original
// header names. RowNumber is the caller's row index, echoed back in errors.
type CsvRowData struct {
	RowNumber int               `json:"rowNumber"`
	Values    map[string]string `json:"values"`
}

// CsvImportRequest is the body for both import preview and import execute.
// FieldMappings maps CSV header -> standard field name, normally taken from a
// prior mapping suggestion and possibly corrected by the user.
type CsvImportRequest struct {
	Rows          []CsvRowData      `json:"rows"`
	FieldMappings map[string]string `json:"fieldMappings"`
}
