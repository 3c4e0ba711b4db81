package handlers

import (
	"errors"
	"net/http"

	"loadpulse/internal/models"
	"loadpulse/internal/repositories/interfaces"
	"loadpulse/internal/services"
	"loadpulse/internal/utils"
	"loadpulse/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LoadHandler struct {
	loadService services.LoadService
}

func NewLoadHandler(loadService services.LoadService) *LoadHandler {
	return &LoadHandler{
		loadService: loadService,
	}
}

// CreateLoad posts a new load and runs the demand pipeline for it
func (h *LoadHandler) CreateLoad(c *gin.Context) {
	var request validators.CreateLoadRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := validators.ValidateStruct(&request); err != nil {
		var verrs validators.ValidationErrors
		if errors.As(err, &verrs) {
			utils.ValidationErrorResponse(c, verrs.ToMap())
			return
		}
		utils.BadRequestResponse(c, err.Error())
		return
	}

	shipperID, _ := primitive.ObjectIDFromHex(request.ShipperID)
	pickupLocationID, _ := primitive.ObjectIDFromHex(request.PickupLocationID)
	deliveryLocationID, _ := primitive.ObjectIDFromHex(request.DeliveryLocationID)

	load := &models.Load{
		ReferenceNumber:     request.ReferenceNumber,
		ShipperID:           shipperID,
		PickupLocationID:    pickupLocationID,
		DeliveryLocationID:  deliveryLocationID,
		Weight:              request.Weight,
		Rate:                request.Rate,
		EquipmentType:       request.EquipmentType,
		LoadType:            request.LoadType,
		Hazmat:              request.Hazmat,
		Commodity:           request.Commodity,
		PickupWindowStart:   request.PickupWindowStart,
		PickupWindowEnd:     request.PickupWindowEnd,
		DeliveryWindowStart: request.DeliveryWindowStart,
		DeliveryWindowEnd:   request.DeliveryWindowEnd,
	}

	hookOpts := services.LoadCreationHookOptions{
		SkipAggregation:       request.SkipAggregation,
		EnableRealTimeUpdates: request.RealTimeUpdates,
		EnableNotifications:   request.EnableNotifications,
	}

	created, hookResult, err := h.loadService.CreateLoad(c.Request.Context(), load, hookOpts)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.BadRequestResponse(c, err.Error())
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "LOAD_CREATION_FAILED", "Failed to create load: "+err.Error())
		return
	}

	utils.CreatedResponse(c, "Load created successfully", map[string]interface{}{
		"load":   created,
		"demand": hookResult,
	})
}

// GetLoad retrieves load details
func (h *LoadHandler) GetLoad(c *gin.Context) {
	loadID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid load ID")
		return
	}

	load, err := h.loadService.GetLoad(c.Request.Context(), loadID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Load")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "LOAD_FETCH_FAILED", "Failed to get load: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Load retrieved successfully", load)
}

// AcceptLoad assigns the authenticated carrier to the load
func (h *LoadHandler) AcceptLoad(c *gin.Context) {
	loadID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid load ID")
		return
	}

	carrierID, exists := c.Get("user_id")
	if !exists {
		utils.UnauthorizedResponse(c)
		return
	}

	carrierObjectID, ok := carrierID.(primitive.ObjectID)
	if !ok {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	if err := h.loadService.AcceptLoad(c.Request.Context(), loadID, carrierObjectID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Load")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "LOAD_ACCEPT_FAILED", "Failed to accept load: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Load accepted successfully", nil)
}

// RejectLoad marks the load rejected
func (h *LoadHandler) RejectLoad(c *gin.Context) {
	loadID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid load ID")
		return
	}

	if err := h.loadService.RejectLoad(c.Request.Context(), loadID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Load")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "LOAD_REJECT_FAILED", "Failed to reject load: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Load rejected successfully", nil)
}
