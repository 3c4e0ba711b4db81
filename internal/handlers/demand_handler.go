package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"loadpulse/internal/models"
	"loadpulse/internal/repositories/interfaces"
	"loadpulse/internal/services"
	"loadpulse/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DemandHandler struct {
	demandService services.DemandService
}

func NewDemandHandler(demandService services.DemandService) *DemandHandler {
	return &DemandHandler{
		demandService: demandService,
	}
}

type recordDemandRequest struct {
	LoadID string `json:"load_id" binding:"required"`
}

// RecordDemand writes the demand footprint for an existing load
func (h *DemandHandler) RecordDemand(c *gin.Context) {
	var request recordDemandRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	loadID, err := primitive.ObjectIDFromHex(request.LoadID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid load ID")
		return
	}

	result, err := h.demandService.RecordLoadDemand(c.Request.Context(), loadID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Load")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "DEMAND_RECORD_FAILED", "Failed to record demand: "+err.Error())
		return
	}

	utils.CreatedResponse(c, "Demand recorded successfully", map[string]interface{}{
		"pickup_record":   result.PickupRecord,
		"delivery_record": result.DeliveryRecord,
		"lane":            result.Lane,
	})
}

type aggregateDemandRequest struct {
	Date         string `json:"date"`
	ForceRefresh bool   `json:"force_refresh"`
}

// TriggerAggregation recomputes the daily rollups for a day (today by default)
func (h *DemandHandler) TriggerAggregation(c *gin.Context) {
	var request aggregateDemandRequest
	// An empty body means "today, throttled".
	if err := c.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	opts := services.AggregateOptions{ForceRefresh: request.ForceRefresh}
	if request.Date != "" {
		date, err := time.Parse("2006-01-02", request.Date)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		opts.Date = &date
	}

	ran, err := h.demandService.AggregateDailyDemand(c.Request.Context(), opts)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "AGGREGATION_FAILED", "Failed to aggregate demand: "+err.Error())
		return
	}

	if !ran {
		utils.SuccessResponse(c, "Aggregation skipped, recent rollup still fresh", map[string]interface{}{
			"aggregated": false,
		})
		return
	}

	utils.SuccessResponse(c, "Aggregation completed successfully", map[string]interface{}{
		"aggregated": true,
	})
}

type creationHookRequest struct {
	LoadID              string `json:"load_id" binding:"required"`
	SkipAggregation     bool   `json:"skip_aggregation"`
	RealTimeUpdates     *bool  `json:"real_time_updates"`
	EnableNotifications bool   `json:"enable_notifications"`
	EnableLLMInsights   bool   `json:"enable_llm_insights"`
}

// RunCreationHook replays the full post-creation pipeline for a load
func (h *DemandHandler) RunCreationHook(c *gin.Context) {
	var request creationHookRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	loadID, err := primitive.ObjectIDFromHex(request.LoadID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid load ID")
		return
	}

	result, err := h.demandService.HookIntoLoadCreation(c.Request.Context(), services.LoadCreationHookOptions{
		LoadID:                loadID,
		SkipAggregation:       request.SkipAggregation,
		EnableRealTimeUpdates: request.RealTimeUpdates,
		EnableNotifications:   request.EnableNotifications,
		EnableLLMInsights:     request.EnableLLMInsights,
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Load")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "DEMAND_HOOK_FAILED", "Demand hook failed: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Demand hook completed", result)
}

// ListAggregations returns the daily rollups for a day, busiest first
func (h *DemandHandler) ListAggregations(c *gin.Context) {
	aggType := models.AggregationType(c.DefaultQuery("type", string(models.AggregationTypeGeohash)))
	if aggType != models.AggregationTypeGeohash && aggType != models.AggregationTypeRegion {
		utils.BadRequestResponse(c, "Invalid aggregation type, expected geohash or region")
		return
	}

	date := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	aggs, err := h.demandService.ListAggregations(c.Request.Context(), aggType, date)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "AGGREGATION_FETCH_FAILED", "Failed to list aggregations: "+err.Error())
		return
	}

	meta := &utils.Meta{Count: len(aggs)}
	utils.SuccessResponseWithMeta(c, "Aggregations retrieved successfully", map[string]interface{}{
		"aggregations": aggs,
	}, meta)
}
