package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ecom-dashboard/internal/errors"
	"ecom-dashboard/internal/observability"
	"ecom-dashboard/internal/services"
)

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// parsePeriod reads the year (required) and month (optional, 1-12) query
// parameters.
func parsePeriod(r *http.Request) (year, month int, err *errors.AppError) {
	rawYear := r.URL.Query().Get("year")
	if rawYear == "" {
		return 0, 0, errors.Validation("year query parameter is required")
	}
	year, convErr := strconv.Atoi(rawYear)
	if convErr != nil || year < 1 {
		return 0, 0, errors.Validation("year must be a positive integer")
	}

	if rawMonth := r.URL.Query().Get("month"); rawMonth != "" {
		month, convErr = strconv.Atoi(rawMonth)
		if convErr != nil || month < 1 || month > 12 {
			return 0, 0, errors.Validation("month must be an integer between 1 and 12")
		}
	}

	return year, month, nil
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

func (h *APIHandlers) HandleRevenueSummary(w http.ResponseWriter, r *http.Request) {
	year, month, appErr := parsePeriod(r)
	if appErr != nil {
		h.fail(w, r, appErr)
		return
	}

	summary, err := h.analytics.RevenueSummary(r.Context(), year, month)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, summary, cacheHeaders)
}

func (h *APIHandlers) HandleMonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	year, _, appErr := parsePeriod(r)
	if appErr != nil {
		h.fail(w, r, appErr)
		return
	}

	errors.WriteSuccessWithHeaders(w, h.analytics.MonthlyRevenue(year), cacheHeaders)
}

func (h *APIHandlers) HandleCategorySales(w http.ResponseWriter, r *http.Request) {
	year, month, appErr := parsePeriod(r)
	if appErr != nil {
		h.fail(w, r, appErr)
		return
	}

	errors.WriteSuccessWithHeaders(w, h.analytics.CategorySales(year, month), cacheHeaders)
}

func (h *APIHandlers) HandleStateSales(w http.ResponseWriter, r *http.Request) {
	year, month, appErr := parsePeriod(r)
	if appErr != nil {
		h.fail(w, r, appErr)
		return
	}

	errors.WriteSuccessWithHeaders(w, h.analytics.SalesByState(year, month), cacheHeaders)
}

func (h *APIHandlers) HandleReviewScores(w http.ResponseWriter, r *http.Request) {
	year, month, appErr := parsePeriod(r)
	if appErr != nil {
		h.fail(w, r, appErr)
		return
	}

	errors.WriteSuccessWithHeaders(w, h.analytics.ReviewScoreDistribution(year, month), cacheHeaders)
}

func (h *APIHandlers) HandleReviewDelivery(w http.ResponseWriter, r *http.Request) {
	year, month, appErr := parsePeriod(r)
	if appErr != nil {
		h.fail(w, r, appErr)
		return
	}

	errors.WriteSuccessWithHeaders(w, h.analytics.ReviewByDeliveryTime(year, month), cacheHeaders)
}

func (h *APIHandlers) HandleStatusDistribution(w http.ResponseWriter, r *http.Request) {
	// year is optional here: without it the distribution covers all orders.
	year := 0
	if rawYear := r.URL.Query().Get("year"); rawYear != "" {
		parsed, err := strconv.Atoi(rawYear)
		if err != nil || parsed < 1 {
			h.fail(w, r, errors.Validation("year must be a positive integer"))
			return
		}
		year = parsed
	}

	errors.WriteSuccessWithHeaders(w, h.analytics.StatusDistribution(year), cacheHeaders)
}

func (h *APIHandlers) HandleYears(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.AvailableYears(), cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}
