// Package handlers contains HTTP request handlers for the API layer
package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/parcelgate/shipping-rates/app/dto"
	businessflow "github.com/parcelgate/shipping-rates/business_flow"
	"github.com/parcelgate/shipping-rates/utils"
)

// RatesHandlerInterface defines the contract for rate read operations
type RatesHandlerInterface interface {
	ProvinceRates(province string) fiber.Handler
	AllRates(c fiber.Ctx) error
	ClearDatabase(c fiber.Ctx) error
	ImportHistory(c fiber.Ctx) error
}

type RatesHandler struct {
	flow businessflow.RateQueryFlow
}

func NewRatesHandler(flow businessflow.RateQueryFlow) RatesHandlerInterface {
	return &RatesHandler{flow: flow}
}

// ErrorResponse standard JSON error
func (h *RatesHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: errorCode, Details: details}})
}

// SuccessResponse standard JSON success
func (h *RatesHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// ProvinceRates returns every rate row of one province store. The
// province is fixed at route registration time, one route per province.
func (h *RatesHandler) ProvinceRates(province string) fiber.Handler {
	return func(c fiber.Ctx) error {
		resp, err := h.flow.ListProvinceRates(h.createRequestContext(c, "/"+province+"-rates"), province)
		if err != nil {
			return h.businessError(c, "Failed to list rates", err)
		}
		return h.SuccessResponse(c, fiber.StatusOK, "Rates retrieved successfully", resp)
	}
}

// AllRates returns every province's rows grouped by province
func (h *RatesHandler) AllRates(c fiber.Ctx) error {
	resp, err := h.flow.ListAllRates(h.createRequestContext(c, "/all-rates"))
	if err != nil {
		return h.businessError(c, "Failed to list rates", err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Rates retrieved successfully", resp)
}

// ClearDatabase wipes one province store. The province comes from the
// query string so the route stays a single DELETE endpoint.
func (h *RatesHandler) ClearDatabase(c fiber.Ctx) error {
	province := c.Query("province")
	if province == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "province query parameter is required", "VALIDATION_ERROR", nil)
	}

	resp, err := h.flow.ClearProvince(h.createRequestContext(c, "/clear-database"), province)
	if err != nil {
		return h.businessError(c, "Failed to clear database", err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Database cleared successfully", resp)
}

// ImportHistory lists recent imports for one province
func (h *RatesHandler) ImportHistory(c fiber.Ctx) error {
	province := c.Query("province")
	if province == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "province query parameter is required", "VALIDATION_ERROR", nil)
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	resp, err := h.flow.ImportHistory(h.createRequestContext(c, "/import-history"), province, limit)
	if err != nil {
		return h.businessError(c, "Failed to list import history", err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Import history retrieved successfully", resp)
}

func (h *RatesHandler) businessError(c fiber.Ctx, message string, err error) error {
	status, code := statusForBusinessError(err)
	if status == fiber.StatusInternalServerError {
		log.Println(message, err)
	}
	return h.ErrorResponse(c, status, message, code, err.Error())
}

// statusForBusinessError maps business error codes onto HTTP statuses:
// client errors (validation, unknown province, sheet structure) are
// 400, everything else 500.
func statusForBusinessError(err error) (int, string) {
	var be *businessflow.BusinessError
	if !errors.As(err, &be) {
		return fiber.StatusInternalServerError, "INTERNAL_ERROR"
	}
	if businessflow.IsClientError(err) {
		return fiber.StatusBadRequest, be.Code
	}
	return fiber.StatusInternalServerError, be.Code
}

func (h *RatesHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx := context.WithValue(c.Context(), utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	return ctx
}
