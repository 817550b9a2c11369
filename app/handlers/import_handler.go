package handlers

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/parcelgate/shipping-rates/app/dto"
	businessflow "github.com/parcelgate/shipping-rates/business_flow"
	"github.com/parcelgate/shipping-rates/config"
	"github.com/parcelgate/shipping-rates/utils"
)

// ImportHandlerInterface defines the contract for spreadsheet uploads
type ImportHandlerInterface interface {
	UploadRates(c fiber.Ctx) error
}

type ImportHandler struct {
	flow      businessflow.RateImportFlow
	uploadCfg config.UploadConfig
	validator *validator.Validate
}

func NewImportHandler(flow businessflow.RateImportFlow, uploadCfg config.UploadConfig) ImportHandlerInterface {
	return &ImportHandler{
		flow:      flow,
		uploadCfg: uploadCfg,
		validator: validator.New(),
	}
}

// ErrorResponse standard JSON error
func (h *ImportHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: errorCode, Details: details}})
}

// SuccessResponse standard JSON success
func (h *ImportHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// UploadRates imports one spreadsheet into a province store. The file
// arrives as multipart form data and is staged to a temp file so the
// parser can reopen it by path; the temp copy is removed on every exit.
func (h *ImportHandler) UploadRates(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "spreadsheet file is required", "VALIDATION_ERROR", nil)
	}

	sheetIndex, err := strconv.Atoi(c.FormValue("sheet", "1"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "sheet must be an integer", "VALIDATION_ERROR", nil)
	}

	student, err := parseStudentField(c.FormValue("student"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "student must be a boolean", "VALIDATION_ERROR", nil)
	}

	req := &dto.UploadRatesRequest{
		Province:   c.FormValue("province"),
		FileType:   c.FormValue("file_type"),
		Student:    student,
		SheetIndex: sheetIndex,
		FileName:   fileHeader.Filename,
		FileSize:   fileHeader.Size,
	}

	if err := h.validator.Struct(req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid upload request", "VALIDATION_ERROR", err.Error())
	}

	stagedPath, err := h.stageUpload(c, fileHeader.Filename)
	if err != nil {
		log.Println("Failed to stage uploaded spreadsheet", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store uploaded file", "UPLOAD_STAGING_FAILED", nil)
	}
	defer os.Remove(stagedPath)

	if err := c.SaveFile(fileHeader, stagedPath); err != nil {
		log.Println("Failed to save uploaded spreadsheet", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store uploaded file", "UPLOAD_STAGING_FAILED", nil)
	}
	req.FilePath = stagedPath

	resp, err := h.flow.ImportSpreadsheet(
		h.createRequestContext(c, "/upload-rates"),
		req,
		businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent")),
	)
	if err != nil {
		status, code := statusForBusinessError(err)
		if status == fiber.StatusInternalServerError {
			log.Println("Spreadsheet import failed", err)
		}
		return h.ErrorResponse(c, status, "Failed to import spreadsheet", code, err.Error())
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Spreadsheet imported successfully", resp)
}

// parseStudentField reads the optional student form field. An absent
// field means false; anything present must parse as a boolean.
func parseStudentField(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

// stageUpload reserves a unique temp path carrying the original
// extension, which the workbook parser relies on.
func (h *ImportHandler) stageUpload(c fiber.Ctx, fileName string) (string, error) {
	dir := h.uploadCfg.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	tmp, err := os.CreateTemp(dir, "rates-upload-*"+filepath.Ext(fileName))
	if err != nil {
		return "", err
	}
	path := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (h *ImportHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx := context.WithValue(c.Context(), utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	return ctx
}
