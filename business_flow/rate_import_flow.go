package businessflow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/parcelgate/shipping-rates/app/dto"
	"github.com/parcelgate/shipping-rates/config"
	"github.com/parcelgate/shipping-rates/models"
	"github.com/parcelgate/shipping-rates/repository"
	"github.com/parcelgate/shipping-rates/utils"
	"github.com/redis/go-redis/v9"
	"github.com/xuri/excelize/v2"
)

// RateImportFlow handles spreadsheet uploads: validation, parsing,
// normalization, and reconciliation against one province store.
type RateImportFlow interface {
	ImportSpreadsheet(ctx context.Context, req *dto.UploadRatesRequest, metadata *ClientMetadata) (*dto.UploadRatesResponse, error)
}

type RateImportFlowImpl struct {
	stores    repository.ProvinceStores
	uploadCfg config.UploadConfig
	cache     *rateCache
}

// NewRateImportFlow creates a new import flow instance. rc may be nil
// when caching is disabled.
func NewRateImportFlow(stores repository.ProvinceStores, uploadCfg config.UploadConfig, rc *redis.Client, cacheCfg *config.CacheConfig) RateImportFlow {
	return &RateImportFlowImpl{
		stores:    stores,
		uploadCfg: uploadCfg,
		cache:     newRateCache(rc, cacheCfg),
	}
}

func (f *RateImportFlowImpl) ImportSpreadsheet(ctx context.Context, req *dto.UploadRatesRequest, metadata *ClientMetadata) (*dto.UploadRatesResponse, error) {
	started := utils.UTCNow()

	if err := f.validateRequest(req); err != nil {
		return nil, err
	}

	sheet, err := f.parseSpreadsheet(req)
	if err != nil {
		return nil, err
	}

	handle, err := f.stores.Acquire(ctx, req.Province)
	if err != nil {
		return nil, NewBusinessErrorf(CodeUnknownProvince,
			"no rate store for province %q", err, req.Province)
	}
	defer handle.Release()

	rateRepo := repository.NewRateRepository(handle.DB)
	auditRepo := repository.NewImportAuditRepository(handle.DB)

	importID := uuid.New()
	out, reconcileErr := reconcile(ctx, rateRepo, sheet, req.FileName)

	status := models.ImportStatusCompleted
	var errText *string
	if reconcileErr != nil {
		status = models.ImportStatusFailed
		errText = utils.ToPtr(reconcileErr.Error())
	}

	audit := &models.ImportAudit{
		UUID:       importID,
		Province:   req.Province,
		FileType:   req.FileType,
		FileName:   req.FileName,
		SheetIndex: req.SheetIndex,
		Status:     status,
		Error:      errText,
	}
	if out != nil {
		audit.Inserted = out.Inserted
		audit.Updated = out.Updated
		audit.Skipped = out.Skipped
	}
	if err := auditRepo.Save(ctx, audit); err != nil {
		// The import itself already committed row by row; a failed
		// audit write must not mask the import outcome.
		if reconcileErr == nil {
			return nil, NewBusinessError(CodeImportFailed, "failed to record import audit", err)
		}
	}

	observeImport(req.Province, req.FileType, status, out, started)
	f.cache.invalidate(ctx, req.Province)

	if reconcileErr != nil {
		return nil, reconcileErr
	}

	return &dto.UploadRatesResponse{
		ImportID:    importID.String(),
		Province:    req.Province,
		FileType:    req.FileType,
		SheetIndex:  req.SheetIndex,
		Inserted:    out.Inserted,
		Updated:     out.Updated,
		Skipped:     out.Skipped,
		SkippedRows: out.SkipLog,
	}, nil
}

// validateRequest rejects bad uploads before any parsing happens.
func (f *RateImportFlowImpl) validateRequest(req *dto.UploadRatesRequest) error {
	if req.Province == "" {
		return NewBusinessError(CodeValidationError, "province is required", ErrProvinceRequired)
	}
	if !utils.IsSupportedProvince(req.Province) {
		return NewBusinessErrorf(CodeUnknownProvince,
			"unsupported province %q", repository.ErrUnknownProvince, req.Province)
	}
	if req.FilePath == "" || req.FileName == "" {
		return NewBusinessError(CodeValidationError, "spreadsheet file is required", ErrFileRequired)
	}

	ext := strings.ToLower(filepath.Ext(req.FileName))
	allowed := false
	for _, e := range f.uploadCfg.AllowedExtensions {
		if strings.EqualFold(e, ext) {
			allowed = true
			break
		}
	}
	if !allowed {
		return NewBusinessErrorf(CodeValidationError,
			"unsupported file extension %q", ErrUnsupportedExtension, ext)
	}

	if f.uploadCfg.MaxFileSize > 0 && req.FileSize > int64(f.uploadCfg.MaxFileSize) {
		return NewBusinessErrorf(CodeValidationError,
			"file is %d bytes, limit is %d", ErrFileTooLarge, req.FileSize, f.uploadCfg.MaxFileSize)
	}

	if err := validateStudentFlag(req.FileType, req.Student); err != nil {
		return NewBusinessError(CodeValidationError, "student flag does not match file type", err)
	}

	if req.SheetIndex < 1 {
		return NewBusinessErrorf(CodeValidationError,
			"sheet index %d is invalid, indexes start at 1", ErrSheetIndexInvalid, req.SheetIndex)
	}
	return nil
}

// validateStudentFlag enforces that the student flag and the student
// file type always travel together.
func validateStudentFlag(fileType string, student bool) error {
	if fileType == FileTypeStudent && !student {
		return fmt.Errorf("%w: file type %q requires student=true", ErrStudentFlagMismatch, fileType)
	}
	if student && fileType != FileTypeStudent {
		return fmt.Errorf("%w: student=true is only valid for file type %q", ErrStudentFlagMismatch, FileTypeStudent)
	}
	return nil
}

// parseSpreadsheet opens the staged workbook, selects the 1-based
// sheet, and normalizes it.
func (f *RateImportFlowImpl) parseSpreadsheet(req *dto.UploadRatesRequest) (*NormalizedSheet, error) {
	wb, err := excelize.OpenFile(req.FilePath)
	if err != nil {
		return nil, NewBusinessError(CodeValidationError, "failed to open spreadsheet", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if req.SheetIndex > len(sheets) {
		return nil, NewBusinessErrorf(CodeValidationError,
			"sheet index %d is out of range, workbook has %d sheet(s)",
			ErrSheetIndexInvalid, req.SheetIndex, len(sheets))
	}
	sheetName := sheets[req.SheetIndex-1]

	rows, err := wb.GetRows(sheetName)
	if err != nil {
		return nil, NewBusinessErrorf(CodeValidationError,
			"failed to read sheet %q", err, sheetName)
	}

	return normalizeSheet(rows, req.FileType, req.Student)
}
