package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/stockcast/internal/arima"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/service"
)

type PipelineHandler struct {
	service *service.PipelineService
}

func NewPipelineHandler(service *service.PipelineService) *PipelineHandler {
	return &PipelineHandler{service: service}
}

type dataPointRequest struct {
	Date  string  `json:"date" binding:"required"`
	Sales float64 `json:"sales"`
	Stock float64 `json:"stock"`
}

type trainRequest struct {
	P *int `json:"p"`
	D *int `json:"d"`
	Q *int `json:"q"`
}

// CreateDataPoint stores one observed day and responds with a refreshed
// forecast. A forecast failure after a successful write still returns 200:
// the write must not look failed to the client.
func (h *PipelineHandler) CreateDataPoint(c *gin.Context) {
	var req dataPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	date, err := time.ParseInLocation(domain.DateLayout, strings.TrimSpace(req.Date), time.UTC)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD: "+req.Date)
		return
	}

	record := domain.DailyRecord{Date: date, Sales: req.Sales, Stock: req.Stock}
	if err := h.service.StoreDataPoint(c.Request.Context(), record); err != nil {
		errorResponse(c, statusForError(err), err.Error())
		return
	}

	response := gin.H{"message": "data point stored", "date": req.Date}
	forecast, err := h.service.Forecast(c.Request.Context(), 0)
	if err != nil {
		log.Warn().Err(err).Msg("forecast after ingestion failed")
		response["forecast_error"] = err.Error()
	} else {
		response["forecast"] = forecast
	}

	c.JSON(http.StatusOK, response)
}

// Train runs model selection over the stored history. An optional body fixes
// the order instead of grid searching; p, d and q must all be provided.
func (h *PipelineHandler) Train(c *gin.Context) {
	var fixed *arima.Order
	if c.Request.ContentLength > 0 {
		var req trainRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if req.P != nil || req.D != nil || req.Q != nil {
			if req.P == nil || req.D == nil || req.Q == nil {
				errorResponse(c, http.StatusBadRequest, "fixed order requires p, d and q")
				return
			}
			fixed = &arima.Order{P: *req.P, D: *req.D, Q: *req.Q}
		}
	}

	result, err := h.service.Train(c.Request.Context(), fixed)
	if err != nil {
		errorResponse(c, statusForError(err), err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":     result.Order.String(),
		"mae":       result.MAE,
		"evaluated": result.Evaluated,
		"skipped":   result.Skipped,
	})
}

// Forecast returns the next N days of predicted sales from the persisted model.
func (h *PipelineHandler) Forecast(c *gin.Context) {
	steps := 0
	if raw := c.Query("steps"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "invalid steps: "+raw)
			return
		}
		steps = parsed
	}

	result, err := h.service.Forecast(c.Request.Context(), steps)
	if err != nil {
		errorResponse(c, statusForError(err), err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"forecast": result})
}

// Alerts runs the depletion simulation against the current forecast.
func (h *PipelineHandler) Alerts(c *gin.Context) {
	params := service.AlertParams{}

	if raw := c.Query("initial_stock"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "invalid initial_stock: "+raw)
			return
		}
		params.InitialStock = &value
	}
	if raw := c.Query("multiplier"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "invalid multiplier: "+raw)
			return
		}
		params.Multiplier = value
	}
	if raw := c.Query("first_only"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "invalid first_only: "+raw)
			return
		}
		params.FirstAlertOnly = value
	}

	records, err := h.service.Alerts(c.Request.Context(), params)
	if err != nil {
		errorResponse(c, statusForError(err), err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": records, "count": len(records)})
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter),
		errors.Is(err, domain.ErrInvalidSteps),
		errors.Is(err, domain.ErrDateParse),
		errors.Is(err, domain.ErrSchema):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateDate):
		return http.StatusConflict
	case errors.Is(err, domain.ErrModelLoad):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientData),
		errors.Is(err, domain.ErrEmptySeries),
		errors.Is(err, domain.ErrNoConvergingModel):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
