package dto

// RateItem is the wire shape of one rate row. The spaced title-case
// keys are load-bearing: existing consumers parse them verbatim, so
// they must not be renamed to snake_case.
type RateItem struct {
	Country      string   `json:"Country"`
	Weight       float64  `json:"Weight"`
	Type         string   `json:"Type"`
	RetailRate   float64  `json:"Retail Rate"`
	DiscountRate string   `json:"Discount Rate"`
	Student      bool     `json:"Student"`
	Zone         *string  `json:"Zone"`
	AddKG        *float64 `json:"Addkg"`
	Surcharges   *float64 `json:"Surcharges"`
}

// ProvinceRatesResponse carries every rate row of one province store.
type ProvinceRatesResponse struct {
	Province string     `json:"province"`
	Count    int        `json:"count"`
	Rates    []RateItem `json:"rates"`
}

// ProvinceGroup is one province's slice of the combined listing. Error
// is set when that province's store could not be read; the group then
// carries no rows but the aggregate still succeeds.
type ProvinceGroup struct {
	Province string     `json:"province"`
	Count    int        `json:"count"`
	Rates    []RateItem `json:"rates"`
	Error    *string    `json:"error,omitempty"`
}

// AllRatesResponse groups every supported province's rows.
type AllRatesResponse struct {
	Provinces []ProvinceGroup `json:"provinces"`
	Total     int             `json:"total"`
}

// UploadRatesRequest describes a staged spreadsheet upload. FilePath
// points at the server-side temp copy of the uploaded file; handlers
// stage the multipart file before invoking the flow.
type UploadRatesRequest struct {
	Province   string `json:"province" validate:"required"`
	FileType   string `json:"file_type" validate:"required"`
	Student    bool   `json:"student"`
	SheetIndex int    `json:"sheet_index" validate:"min=0"`
	FileName   string `json:"file_name" validate:"required"`
	FilePath   string `json:"-"`
	FileSize   int64  `json:"file_size"`
}

// UploadRatesResponse reports the reconciliation outcome of one import.
type UploadRatesResponse struct {
	ImportID    string   `json:"import_id"`
	Province    string   `json:"province"`
	FileType    string   `json:"file_type"`
	SheetIndex  int      `json:"sheet_index"`
	Inserted    int      `json:"inserted"`
	Updated     int      `json:"updated"`
	Skipped     int      `json:"skipped"`
	SkippedRows []string `json:"skipped_rows,omitempty"`
}

// ClearDatabaseResponse reports how many rows a wipe removed.
type ClearDatabaseResponse struct {
	Province string `json:"province"`
	Deleted  int64  `json:"deleted"`
}

// ImportRecord is one entry of the import audit trail.
type ImportRecord struct {
	ImportID   string  `json:"import_id"`
	FileType   string  `json:"file_type"`
	FileName   string  `json:"file_name"`
	SheetIndex int     `json:"sheet_index"`
	Inserted   int     `json:"inserted"`
	Updated    int     `json:"updated"`
	Skipped    int     `json:"skipped"`
	Status     string  `json:"status"`
	Error      *string `json:"error,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// ImportHistoryResponse lists recent imports for one province.
type ImportHistoryResponse struct {
	Province string         `json:"province"`
	Imports  []ImportRecord `json:"imports"`
}
